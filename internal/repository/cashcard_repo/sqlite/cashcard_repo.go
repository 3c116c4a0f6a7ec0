package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"cashcards/internal/domain"
	"cashcards/internal/repository/cashcard_repo"
)

var _ cashcard_repo.CashCardRepository = (*CashCardRepository)(nil)

// Amounts are stored as decimal text; ordering casts them so 9.5 sorts before 10.
var sortColumns = map[domain.SortField]string{
	domain.SortByID:     "id",
	domain.SortByAmount: "CAST(amount AS REAL)",
	domain.SortByOwner:  "owner",
}

type CashCardRepository struct {
	db *sql.DB
}

func NewCashCardRepository(db *sql.DB) *CashCardRepository {
	return &CashCardRepository{db: db}
}

func (r *CashCardRepository) Create(ctx context.Context, card *domain.CashCard) (*domain.CashCard, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO cash_card (amount, owner) VALUES (?, ?)`, card.Amount.String(), card.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to create cash card for owner %s: %w", card.Owner, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new cash card id: %w", err)
	}
	return &domain.CashCard{ID: id, Amount: card.Amount, Owner: card.Owner}, nil
}

func (r *CashCardRepository) Update(ctx context.Context, card *domain.CashCard) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cash_card SET amount = ? WHERE id = ?`, card.Amount.String(), card.ID)
	if err != nil {
		return fmt.Errorf("failed to update cash card %d: %w", card.ID, err)
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
	row := r.db.QueryRowContext(ctx, `SELECT id, amount, owner FROM cash_card WHERE id = ?`, id)
	return scanOne(row, id)
}

func (r *CashCardRepository) FindByIDAndOwner(ctx context.Context, id int64, owner string) (*domain.CashCard, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, amount, owner FROM cash_card WHERE id = ? AND owner = ?`, id, owner)
	return scanOne(row, id)
}

func (r *CashCardRepository) ExistsByIDAndOwner(ctx context.Context, id int64, owner string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM cash_card WHERE id = ? AND owner = ?)`, id, owner).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check cash card %d: %w", id, err)
	}
	return exists == 1, nil
}

func (r *CashCardRepository) ListByOwner(ctx context.Context, owner string, page domain.PageRequest) ([]*domain.CashCard, error) {
	page = page.Normalize()
	query := `SELECT id, amount, owner FROM cash_card WHERE owner = ? ` +
		cashcard_repo.OrderBy(page.Sort, sortColumns) + ` LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, owner, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list cash cards for owner %s: %w", owner, err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.CashCard, 0, page.Size)
	for rows.Next() {
		card, err := scan(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash cards: %w", err)
	}
	return cards, nil
}

func (r *CashCardRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cash_card WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cash card %d: %w", id, err)
	}
	return nil
}

func (r *CashCardRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*domain.CashCard, error) {
	var (
		card   domain.CashCard
		amount string
	)
	if err := s.Scan(&card.ID, &amount, &card.Owner); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("cash card %d has malformed amount %q: %w", card.ID, amount, err)
	}
	card.Amount = parsed
	return &card, nil
}

func scanOne(row *sql.Row, id int64) (*domain.CashCard, error) {
	card, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCashCardNotFound
		}
		return nil, fmt.Errorf("failed to get cash card %d: %w", id, err)
	}
	return card, nil
}
