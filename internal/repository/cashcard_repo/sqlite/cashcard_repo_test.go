package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cashcards/internal/domain"
	"cashcards/internal/infrastructure/database"
	"cashcards/internal/repository/cashcard_repo"
	"cashcards/internal/repository/cashcard_repo/repotest"
)

func newRepo(t *testing.T, path string) *CashCardRepository {
	t.Helper()
	db, err := database.NewSQLiteDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCashCardRepository(db)
}

func TestCashCardRepositoryContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) cashcard_repo.CashCardRepository {
		return newRepo(t, filepath.Join(t.TempDir(), "cashcards.db"))
	})
}

func TestCardsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cashcards.db")
	ctx := context.Background()

	db, err := database.NewSQLiteDB(path)
	require.NoError(t, err)
	created, err := NewCashCardRepository(db).Create(ctx, domain.NewCashCard(decimal.RequireFromString("123.45"), "sarah"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo := newRepo(t, path)
	found, err := repo.FindByIDAndOwner(ctx, created.ID, "sarah")
	require.NoError(t, err)
	require.True(t, created.Equal(found))
}
