package cashcard_repo

import (
	"context"

	"cashcards/internal/domain"
)

// CashCardRepository is the storage port the cash card service depends on.
// Lookups that find nothing return domain.ErrCashCardNotFound.
type CashCardRepository interface {
	Create(ctx context.Context, card *domain.CashCard) (*domain.CashCard, error)
	Update(ctx context.Context, card *domain.CashCard) error
	FindByID(ctx context.Context, id int64) (*domain.CashCard, error)
	FindByIDAndOwner(ctx context.Context, id int64, owner string) (*domain.CashCard, error)
	ExistsByIDAndOwner(ctx context.Context, id int64, owner string) (bool, error)
	ListByOwner(ctx context.Context, owner string, page domain.PageRequest) ([]*domain.CashCard, error)
	DeleteByID(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
