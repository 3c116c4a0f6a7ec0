package cashcards

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cashcards/internal/domain"
	"cashcards/internal/repository/cashcard_repo"
)

type CashCardService interface {
	Get(ctx context.Context, id int64, caller string) (*domain.CashCard, error)
	Create(ctx context.Context, amount decimal.Decimal, caller string) (*domain.CashCard, error)
	List(ctx context.Context, caller string, page domain.PageRequest) ([]*domain.CashCard, error)
	Update(ctx context.Context, id int64, amount decimal.Decimal, caller string) error
	Delete(ctx context.Context, id int64, caller string) error
}

type cashCardService struct {
	repo   cashcard_repo.CashCardRepository
	policy AccessPolicy
	logger *zap.Logger
}

func NewCashCardService(repo cashcard_repo.CashCardRepository, logger *zap.Logger) CashCardService {
	return &cashCardService{
		repo:   repo,
		logger: logger,
	}
}

func (s *cashCardService) Get(ctx context.Context, id int64, caller string) (*domain.CashCard, error) {
	card, err := s.findOwned(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	return s.policy.Read(caller, card)
}

func (s *cashCardService) Create(ctx context.Context, amount decimal.Decimal, caller string) (*domain.CashCard, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	card, err := s.repo.Create(ctx, domain.NewCashCard(amount, caller))
	if err != nil {
		s.logger.Error("Failed to create cash card", zap.String("owner", caller), zap.Error(err))
		return nil, fmt.Errorf("failed to create cash card: %w", err)
	}
	s.logger.Info("Cash card created",
		zap.Int64("cash_card_id", card.ID),
		zap.String("owner", card.Owner),
		zap.Stringer("amount", card.Amount))
	return card, nil
}

func (s *cashCardService) List(ctx context.Context, caller string, page domain.PageRequest) ([]*domain.CashCard, error) {
	page = page.Normalize()
	cards, err := s.repo.ListByOwner(ctx, caller, page)
	if err != nil {
		s.logger.Error("Failed to list cash cards", zap.String("owner", caller), zap.Error(err))
		return nil, fmt.Errorf("failed to list cash cards: %w", err)
	}
	return cards, nil
}

func (s *cashCardService) Update(ctx context.Context, id int64, amount decimal.Decimal, caller string) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	card, err := s.findOwned(ctx, id, caller)
	if err != nil {
		return err
	}
	if err := s.policy.AuthorizeMutation(caller, card); err != nil {
		return err
	}

	// Not atomic with the lookup above: a concurrent delete by the same owner
	// surfaces here as ErrCashCardNotFound from the repository.
	if err := s.repo.Update(ctx, card.WithAmount(amount)); err != nil {
		if errors.Is(err, domain.ErrCashCardNotFound) {
			return domain.ErrCashCardNotFound
		}
		s.logger.Error("Failed to update cash card", zap.Int64("cash_card_id", id), zap.Error(err))
		return fmt.Errorf("failed to update cash card %d: %w", id, err)
	}
	s.logger.Info("Cash card updated",
		zap.Int64("cash_card_id", id),
		zap.Stringer("old_amount", card.Amount),
		zap.Stringer("new_amount", amount))
	return nil
}

func (s *cashCardService) Delete(ctx context.Context, id int64, caller string) error {
	owned, err := s.repo.ExistsByIDAndOwner(ctx, id, caller)
	if err != nil {
		s.logger.Error("Failed to check cash card ownership", zap.Int64("cash_card_id", id), zap.Error(err))
		return fmt.Errorf("failed to check cash card %d: %w", id, err)
	}
	if err := s.policy.AuthorizeDelete(caller, owned); err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		s.logger.Error("Failed to delete cash card", zap.Int64("cash_card_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete cash card %d: %w", id, err)
	}
	s.logger.Info("Cash card deleted", zap.Int64("cash_card_id", id))
	return nil
}

// findOwned loads a card through the owner-scoped lookup. Storage failures are
// wrapped; a missing or foreign card is ErrCashCardNotFound.
func (s *cashCardService) findOwned(ctx context.Context, id int64, caller string) (*domain.CashCard, error) {
	card, err := s.repo.FindByIDAndOwner(ctx, id, caller)
	if err != nil {
		if errors.Is(err, domain.ErrCashCardNotFound) {
			return nil, domain.ErrCashCardNotFound
		}
		s.logger.Error("Failed to get cash card", zap.Int64("cash_card_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get cash card %d: %w", id, err)
	}
	return card, nil
}
