package cashcard_repo

import (
	"context"
	"errors"
	"time"

	"cashcards/internal/domain"
)

// Observer receives the outcome and latency of each storage call.
type Observer interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type instrumentedRepository struct {
	next     CashCardRepository
	observer Observer
}

// Instrument wraps repo so every call is reported to observer. A missing
// card is an ordinary answer and counts as success.
func Instrument(repo CashCardRepository, observer Observer) CashCardRepository {
	return &instrumentedRepository{next: repo, observer: observer}
}

func (r *instrumentedRepository) observe(ctx context.Context, operation string, start time.Time, err error) {
	success := err == nil || errors.Is(err, domain.ErrCashCardNotFound)
	r.observer.Observe(ctx, operation, success, time.Since(start))
}

func (r *instrumentedRepository) Create(ctx context.Context, card *domain.CashCard) (*domain.CashCard, error) {
	start := time.Now()
	created, err := r.next.Create(ctx, card)
	r.observe(ctx, "create", start, err)
	return created, err
}

func (r *instrumentedRepository) Update(ctx context.Context, card *domain.CashCard) error {
	start := time.Now()
	err := r.next.Update(ctx, card)
	r.observe(ctx, "update", start, err)
	return err
}

func (r *instrumentedRepository) FindByID(ctx context.Context, id int64) (*domain.CashCard, error) {
	start := time.Now()
	card, err := r.next.FindByID(ctx, id)
	r.observe(ctx, "find_by_id", start, err)
	return card, err
}

func (r *instrumentedRepository) FindByIDAndOwner(ctx context.Context, id int64, owner string) (*domain.CashCard, error) {
	start := time.Now()
	card, err := r.next.FindByIDAndOwner(ctx, id, owner)
	r.observe(ctx, "find_by_id_and_owner", start, err)
	return card, err
}

func (r *instrumentedRepository) ExistsByIDAndOwner(ctx context.Context, id int64, owner string) (bool, error) {
	start := time.Now()
	ok, err := r.next.ExistsByIDAndOwner(ctx, id, owner)
	r.observe(ctx, "exists_by_id_and_owner", start, err)
	return ok, err
}

func (r *instrumentedRepository) ListByOwner(ctx context.Context, owner string, page domain.PageRequest) ([]*domain.CashCard, error) {
	start := time.Now()
	cards, err := r.next.ListByOwner(ctx, owner, page)
	r.observe(ctx, "list_by_owner", start, err)
	return cards, err
}

func (r *instrumentedRepository) DeleteByID(ctx context.Context, id int64) error {
	start := time.Now()
	err := r.next.DeleteByID(ctx, id)
	r.observe(ctx, "delete_by_id", start, err)
	return err
}

func (r *instrumentedRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
