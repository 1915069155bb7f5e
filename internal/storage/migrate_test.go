package storage

import (
	"context"
	"path/filepath"
	"testing"

	"expensetracker/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reopening an existing database must re-run migrations as a no-op and
// leave earlier rows untouched.
func TestReopenExistingDatabase(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tracker.db")

	repo, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)

	id, err := repo.AddExpense(ctx, core.Expense{
		Title: "Lunch", Amount: 12.5, Category: "Food", Date: "2024-01-01",
	})
	require.NoError(t, err)
	userID, err := repo.CreateUser(ctx, "alice", "digest", "salt")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	e, err := reopened.GetExpense(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", e.Title)

	got, err := reopened.GetUserID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	// The seed ran once, not twice.
	categories, err := reopened.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 7)
}

func TestNewRepositoryCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "tracker.db")
	repo, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}
