package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cashcards/internal/domain"
	"cashcards/internal/repository/cashcard_repo"
)

var _ cashcard_repo.CashCardRepository = (*CashCardRepository)(nil)

// CashCardRepository keeps cards in a map. Ids start at 1 and are never reused.
type CashCardRepository struct {
	mu     sync.RWMutex
	cards  map[int64]domain.CashCard
	nextID int64
}

func NewCashCardRepository() *CashCardRepository {
	return &CashCardRepository{
		cards:  make(map[int64]domain.CashCard),
		nextID: 1,
	}
}

func (r *CashCardRepository) Create(ctx context.Context, card *domain.CashCard) (*domain.CashCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := domain.CashCard{ID: r.nextID, Amount: card.Amount, Owner: card.Owner}
	r.cards[stored.ID] = stored
	r.nextID++
	return &stored, nil
}

func (r *CashCardRepository) Update(ctx context.Context, card *domain.CashCard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.cards[card.ID]
	if !ok {
		return domain.ErrCashCardNotFound
	}
	existing.Amount = card.Amount
	r.cards[card.ID] = existing
	return nil
}

func (r *CashCardRepository) FindByID(ctx context.Context, id int64) (*domain.CashCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[id]
	if !ok {
		return nil, domain.ErrCashCardNotFound
	}
	return &card, nil
}

func (r *CashCardRepository) FindByIDAndOwner(ctx context.Context, id int64, owner string) (*domain.CashCard, error) {
	card, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if card.Owner != owner {
		return nil, domain.ErrCashCardNotFound
	}
	return card, nil
}

func (r *CashCardRepository) ExistsByIDAndOwner(ctx context.Context, id int64, owner string) (bool, error) {
	_, err := r.FindByIDAndOwner(ctx, id, owner)
	if err == domain.ErrCashCardNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *CashCardRepository) ListByOwner(ctx context.Context, owner string, page domain.PageRequest) ([]*domain.CashCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page = page.Normalize()

	r.mu.RLock()
	owned := make([]domain.CashCard, 0)
	for _, card := range r.cards {
		if card.Owner == owner {
			owned = append(owned, card)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(owned, func(i, j int) bool {
		return less(owned[i], owned[j], page.Sort)
	})

	result := make([]*domain.CashCard, 0, page.Size)
	offset := page.Offset()
	if offset < 0 || offset >= len(owned) {
		return result, nil
	}
	for i := offset; i < len(owned) && i < offset+page.Size; i++ {
		card := owned[i]
		result = append(result, &card)
	}
	return result, nil
}

func (r *CashCardRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cards, id)
	return nil
}

func (r *CashCardRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// less orders a before b by the requested keys, falling back to ascending id.
func less(a, b domain.CashCard, orders []domain.SortOrder) bool {
	for _, o := range orders {
		var c int
		switch o.Field {
		case domain.SortByAmount:
			c = a.Amount.Cmp(b.Amount)
		case domain.SortByOwner:
			c = strings.Compare(a.Owner, b.Owner)
		case domain.SortByID:
			c = compareIDs(a.ID, b.ID)
		}
		if c == 0 {
			continue
		}
		if o.Direction == domain.Desc {
			return c > 0
		}
		return c < 0
	}
	return a.ID < b.ID
}

func compareIDs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
