// Package repotest holds the behaviour every CashCardRepository backend must share.
package repotest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cashcards/internal/domain"
	"cashcards/internal/repository/cashcard_repo"
)

// Factory returns an empty repository. It is called once per subtest.
type Factory func(t *testing.T) cashcard_repo.CashCardRepository

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func create(t *testing.T, repo cashcard_repo.CashCardRepository, value, owner string) *domain.CashCard {
	t.Helper()
	card, err := repo.Create(context.Background(), domain.NewCashCard(amount(value), owner))
	require.NoError(t, err)
	return card
}

func amounts(cards []*domain.CashCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Amount.String()
	}
	return out
}

// Run executes the storage contract against newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("create assigns fresh ids", func(t *testing.T) {
		repo := newRepo(t)
		first := create(t, repo, "123.45", "sarah")
		second := create(t, repo, "100.50", "sarah")

		require.NotZero(t, first.ID)
		require.NotZero(t, second.ID)
		require.NotEqual(t, first.ID, second.ID)
		require.Equal(t, "sarah", first.Owner)
		require.True(t, first.Amount.Equal(amount("123.45")))
	})

	t.Run("create ignores a caller supplied id", func(t *testing.T) {
		repo := newRepo(t)
		existing := create(t, repo, "1", "sarah")

		card, err := repo.Create(ctx, &domain.CashCard{ID: existing.ID, Amount: amount("2"), Owner: "kumar2"})
		require.NoError(t, err)
		require.NotEqual(t, existing.ID, card.ID)

		stored, err := repo.FindByID(ctx, existing.ID)
		require.NoError(t, err)
		require.Equal(t, "sarah", stored.Owner)
	})

	t.Run("find by id", func(t *testing.T) {
		repo := newRepo(t)
		created := create(t, repo, "99.99", "sarah")

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, created.Equal(found))

		_, err = repo.FindByID(ctx, created.ID+1000)
		require.ErrorIs(t, err, domain.ErrCashCardNotFound)
	})

	t.Run("find by id and owner hides other owners", func(t *testing.T) {
		repo := newRepo(t)
		created := create(t, repo, "99.99", "sarah")

		found, err := repo.FindByIDAndOwner(ctx, created.ID, "sarah")
		require.NoError(t, err)
		require.True(t, created.Equal(found))

		_, err = repo.FindByIDAndOwner(ctx, created.ID, "kumar2")
		require.ErrorIs(t, err, domain.ErrCashCardNotFound)

		_, err = repo.FindByIDAndOwner(ctx, created.ID+1000, "sarah")
		require.ErrorIs(t, err, domain.ErrCashCardNotFound)
	})

	t.Run("exists by id and owner", func(t *testing.T) {
		repo := newRepo(t)
		created := create(t, repo, "10", "sarah")

		ok, err := repo.ExistsByIDAndOwner(ctx, created.ID, "sarah")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.ExistsByIDAndOwner(ctx, created.ID, "kumar2")
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = repo.ExistsByIDAndOwner(ctx, created.ID+1000, "sarah")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("update replaces amount only", func(t *testing.T) {
		repo := newRepo(t)
		created := create(t, repo, "10", "sarah")

		err := repo.Update(ctx, &domain.CashCard{ID: created.ID, Amount: amount("19.99"), Owner: "kumar2"})
		require.NoError(t, err)

		stored, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created.ID, stored.ID)
		require.Equal(t, "sarah", stored.Owner)
		require.True(t, stored.Amount.Equal(amount("19.99")))
	})

	t.Run("update of a missing id", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Update(ctx, &domain.CashCard{ID: 4242, Amount: amount("1"), Owner: "sarah"})
		require.ErrorIs(t, err, domain.ErrCashCardNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		created := create(t, repo, "10", "sarah")

		require.NoError(t, repo.DeleteByID(ctx, created.ID))
		_, err := repo.FindByID(ctx, created.ID)
		require.ErrorIs(t, err, domain.ErrCashCardNotFound)

		require.NoError(t, repo.DeleteByID(ctx, created.ID))
	})

	t.Run("list by owner defaults to ascending amount", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, "325.33", "sarah")
		create(t, repo, "123.45", "sarah")
		create(t, repo, "100.5", "sarah")
		create(t, repo, "1.00", "kumar2")

		cards, err := repo.ListByOwner(ctx, "sarah", domain.PageRequest{})
		require.NoError(t, err)
		require.Equal(t, []string{"100.5", "123.45", "325.33"}, amounts(cards))
		for _, c := range cards {
			require.Equal(t, "sarah", c.Owner)
		}
	})

	t.Run("list by owner pages and sorts", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, "123.45", "sarah")
		create(t, repo, "325.33", "sarah")
		create(t, repo, "100.5", "sarah")

		desc := []domain.SortOrder{{Field: domain.SortByAmount, Direction: domain.Desc}}

		cards, err := repo.ListByOwner(ctx, "sarah", domain.PageRequest{Page: 0, Size: 1, Sort: desc})
		require.NoError(t, err)
		require.Equal(t, []string{"325.33"}, amounts(cards))

		cards, err = repo.ListByOwner(ctx, "sarah", domain.PageRequest{Page: 1, Size: 2, Sort: desc})
		require.NoError(t, err)
		require.Equal(t, []string{"100.5"}, amounts(cards))

		cards, err = repo.ListByOwner(ctx, "sarah", domain.PageRequest{Page: 5, Size: 2, Sort: desc})
		require.NoError(t, err)
		require.Empty(t, cards)
	})

	t.Run("list sorts numerically not lexically", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, "9.5", "sarah")
		create(t, repo, "10", "sarah")
		create(t, repo, "100.25", "sarah")

		cards, err := repo.ListByOwner(ctx, "sarah", domain.PageRequest{})
		require.NoError(t, err)
		require.Equal(t, []string{"9.5", "10", "100.25"}, amounts(cards))
	})

	t.Run("list ties broken by id", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "5", "sarah")
		b := create(t, repo, "5", "sarah")

		cards, err := repo.ListByOwner(ctx, "sarah", domain.PageRequest{})
		require.NoError(t, err)
		require.Len(t, cards, 2)
		require.Equal(t, a.ID, cards[0].ID)
		require.Equal(t, b.ID, cards[1].ID)
	})

	t.Run("list far past the last page", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, "5", "sarah")

		cards, err := repo.ListByOwner(ctx, "sarah", domain.PageRequest{Page: 461168601842738791, Size: 20})
		require.NoError(t, err)
		require.Empty(t, cards)
	})

	t.Run("list for an owner without cards", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, "5", "sarah")

		cards, err := repo.ListByOwner(ctx, "nobody", domain.PageRequest{})
		require.NoError(t, err)
		require.Empty(t, cards)
	})

	t.Run("ping", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Ping(ctx))
	})
}
