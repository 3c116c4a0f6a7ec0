package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"cashcards/internal/domain"
	"cashcards/internal/repository/cashcard_repo"
)

var _ cashcard_repo.CashCardRepository = (*CashCardRepository)(nil)

var sortColumns = map[domain.SortField]string{
	domain.SortByID:     "id",
	domain.SortByAmount: "amount",
	domain.SortByOwner:  "owner",
}

type CashCardRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCashCardRepository(db *sql.DB, l *zap.Logger) *CashCardRepository {
	return &CashCardRepository{db: db, logger: l}
}

func (r *CashCardRepository) Create(ctx context.Context, card *domain.CashCard) (*domain.CashCard, error) {
	query := `
		INSERT INTO cash_card (amount, owner)
		VALUES ($1, $2)
		RETURNING id
	`
	created := &domain.CashCard{Amount: card.Amount, Owner: card.Owner}
	if err := r.db.QueryRowContext(ctx, query, card.Amount, card.Owner).Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("failed to create cash card for owner %s: %w", card.Owner, describe(err))
	}
	r.logger.Debug("Cash card inserted", zap.Int64("cash_card_id", created.ID))
	return created, nil
}

func (r *CashCardRepository) Update(ctx context.Context, card *domain.CashCard) error {
	query := `
		UPDATE cash_card
		SET amount = $1
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, card.Amount, card.ID)
	if err != nil {
		return fmt.Errorf("failed to update cash card %d: %w", card.ID, describe(err))
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrCashCardNotFound
	}
	return nil
}

func (r *CashCardRepository) FindByID(ctx context.Context, id int64) (*domain.CashCard, error) {
	query := `
		SELECT id, amount, owner
		FROM cash_card
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *CashCardRepository) FindByIDAndOwner(ctx context.Context, id int64, owner string) (*domain.CashCard, error) {
	query := `
		SELECT id, amount, owner
		FROM cash_card
		WHERE id = $1 AND owner = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, owner), id)
}

func (r *CashCardRepository) ExistsByIDAndOwner(ctx context.Context, id int64, owner string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM cash_card WHERE id = $1 AND owner = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id, owner).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check cash card %d: %w", id, describe(err))
	}
	return exists, nil
}

func (r *CashCardRepository) ListByOwner(ctx context.Context, owner string, page domain.PageRequest) ([]*domain.CashCard, error) {
	page = page.Normalize()
	query := `
		SELECT id, amount, owner
		FROM cash_card
		WHERE owner = $1
		` + cashcard_repo.OrderBy(page.Sort, sortColumns) + `
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, owner, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list cash cards for owner %s: %w", owner, describe(err))
	}
	defer rows.Close()

	cards := make([]*domain.CashCard, 0, page.Size)
	for rows.Next() {
		card := &domain.CashCard{}
		if err := rows.Scan(&card.ID, &card.Amount, &card.Owner); err != nil {
			return nil, fmt.Errorf("failed to scan cash card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash cards: %w", describe(err))
	}
	return cards, nil
}

func (r *CashCardRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cash_card WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete cash card %d: %w", id, describe(err))
	}
	return nil
}

func (r *CashCardRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *CashCardRepository) scanOne(row *sql.Row, id int64) (*domain.CashCard, error) {
	card := &domain.CashCard{}
	err := row.Scan(&card.ID, &card.Amount, &card.Owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCashCardNotFound
		}
		return nil, fmt.Errorf("failed to get cash card %d: %w", id, describe(err))
	}
	return card, nil
}

// describe adds the SQLSTATE to postgres errors so logs show what the server rejected.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("postgres %s (%s): %w", pqErr.Code, pqErr.Code.Name(), err)
	}
	return err
}
