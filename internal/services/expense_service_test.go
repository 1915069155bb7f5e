package services

import (
	"context"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ExpenseServiceTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo *storage.SQLiteRepository
	svc  *ExpenseService
}

func (s *ExpenseServiceTestSuite) SetupTest() {
	repo, err := storage.NewSQLiteRepository(":memory:")
	require.NoError(s.T(), err)
	s.repo = repo
	s.svc = NewExpenseService(repo)
	s.ctx = context.Background()
}

func (s *ExpenseServiceTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *ExpenseServiceTestSuite) TestCreateExpenseRejectsInvalidInput() {
	cases := []struct {
		name string
		e    core.Expense
	}{
		{"empty title", core.Expense{Title: " ", Amount: 1, Category: "Food", Date: "2024-01-01"}},
		{"zero amount", core.Expense{Title: "a", Amount: 0, Category: "Food", Date: "2024-01-01"}},
		{"bad date", core.Expense{Title: "a", Amount: 1, Category: "Food", Date: "yesterday"}},
	}
	for _, tc := range cases {
		_, err := s.svc.CreateExpense(s.ctx, tc.e)
		assert.Error(s.T(), err, tc.name)
	}

	// Nothing reached the store
	expenses, err := s.svc.ListExpenses(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), expenses)
}

func (s *ExpenseServiceTestSuite) TestCategoryLifecycle() {
	// Seeded category with no expenses can be deleted.
	ok, err := s.svc.CanDeleteCategory(s.ctx, "Food")
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	id, err := s.svc.CreateExpense(s.ctx, core.Expense{
		Title: "Lunch", Amount: 12.5, Category: "Food", Date: "2024-01-01",
	})
	require.NoError(s.T(), err)

	ok, err = s.svc.CanDeleteCategory(s.ctx, "Food")
	require.NoError(s.T(), err)
	assert.False(s.T(), ok, "category with an expense cannot be deleted")

	total, err := s.svc.TotalSpent(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 12.5, total)

	require.NoError(s.T(), s.svc.DeleteExpense(s.ctx, id))

	ok, err = s.svc.CanDeleteCategory(s.ctx, "Food")
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	total, err = s.svc.TotalSpent(s.ctx)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), total)
}

func (s *ExpenseServiceTestSuite) TestSumMatchesListing() {
	amounts := []float64{12.5, 3.25, 40}
	ids := make([]int64, 0, len(amounts))
	for i, a := range amounts {
		id, err := s.svc.CreateExpense(s.ctx, core.Expense{
			Title: "e", Amount: a, Category: "Food", Date: "2024-01-01",
		})
		require.NoError(s.T(), err, "expense %d", i)
		ids = append(ids, id)
	}

	s.assertSumConsistent()

	require.NoError(s.T(), s.svc.DeleteExpense(s.ctx, ids[1]))
	s.assertSumConsistent()
}

func (s *ExpenseServiceTestSuite) assertSumConsistent() {
	s.T().Helper()
	expenses, err := s.svc.ListExpenses(s.ctx)
	require.NoError(s.T(), err)
	var want float64
	for _, e := range expenses {
		want += e.Amount
	}
	got, err := s.svc.TotalSpent(s.ctx)
	require.NoError(s.T(), err)
	assert.InDelta(s.T(), want, got, 1e-9)
}

func (s *ExpenseServiceTestSuite) TestCategoryTotalsMatchListing() {
	_, err := s.svc.CreateExpense(s.ctx, core.Expense{Title: "a", Amount: 10, Category: "Food", Date: "2024-01-01"})
	require.NoError(s.T(), err)
	_, err = s.svc.CreateExpense(s.ctx, core.Expense{Title: "b", Amount: 5, Category: "Bills", Date: "2024-01-02"})
	require.NoError(s.T(), err)
	_, err = s.svc.CreateExpense(s.ctx, core.Expense{Title: "c", Amount: 2.5, Category: "Food", Date: "2024-01-03"})
	require.NoError(s.T(), err)

	expenses, err := s.svc.ListExpenses(s.ctx)
	require.NoError(s.T(), err)
	categories, err := s.svc.Categories(s.ctx)
	require.NoError(s.T(), err)

	for _, c := range categories {
		var want float64
		for _, e := range expenses {
			if e.Category == c.Name {
				want += e.Amount
			}
		}
		assert.InDelta(s.T(), want, c.TotalAmount, 1e-9, "category %s", c.Name)
	}
}

func (s *ExpenseServiceTestSuite) TestRecentExpenses() {
	dates := []string{"2024-01-01", "2024-03-01", "2024-02-01", "2024-04-01", "2024-05-01", "2024-06-01"}
	for _, d := range dates {
		_, err := s.svc.CreateExpense(s.ctx, core.Expense{Title: d, Amount: 1, Category: "Food", Date: d})
		require.NoError(s.T(), err)
	}

	recent, err := s.svc.RecentExpenses(s.ctx, 5)
	require.NoError(s.T(), err)
	require.Len(s.T(), recent, 5)
	assert.Equal(s.T(), "2024-06-01", recent[0].Date)
	assert.Equal(s.T(), "2024-02-01", recent[4].Date, "oldest date drops off")

	all, err := s.svc.RecentExpenses(s.ctx, 50)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, len(dates), "fewer than n returns all")

	none, err := s.svc.RecentExpenses(s.ctx, 0)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), none)
}

func (s *ExpenseServiceTestSuite) TestHistoryOrdering() {
	for _, d := range []string{"2024-01-01", "2024-03-01", "2024-02-01"} {
		_, err := s.svc.CreateExpense(s.ctx, core.Expense{Title: d, Amount: 1, Category: "Food", Date: d})
		require.NoError(s.T(), err)
	}

	expenses, err := s.svc.ListExpenses(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), expenses, 3)
	assert.Equal(s.T(), "2024-03-01", expenses[0].Date)
	assert.Equal(s.T(), "2024-02-01", expenses[1].Date)
	assert.Equal(s.T(), "2024-01-01", expenses[2].Date)
}

func (s *ExpenseServiceTestSuite) TestCategoryExistsIsCaseInsensitive() {
	for _, name := range []string{"Food", "food", "FOOD"} {
		exists, err := s.svc.CategoryExists(s.ctx, name)
		require.NoError(s.T(), err)
		assert.True(s.T(), exists, "%q should match the seeded Food", name)
	}

	exists, err := s.svc.CategoryExists(s.ctx, "Travel")
	require.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func (s *ExpenseServiceTestSuite) TestCreateCategory() {
	c, err := s.svc.CreateCategory(s.ctx, "Travel")
	require.NoError(s.T(), err)
	assert.Positive(s.T(), c.ID)
	assert.Equal(s.T(), "Travel", c.Name)
	assert.Contains(s.T(), categoryPalette, c.Color, "color comes from the palette")

	categories, err := s.svc.Categories(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), categories, 8)
}

func (s *ExpenseServiceTestSuite) TestCreateCategoryRejectsDuplicates() {
	_, err := s.svc.CreateCategory(s.ctx, "Travel")
	require.NoError(s.T(), err)

	for _, name := range []string{"Travel", "travel", "  Travel  "} {
		_, err := s.svc.CreateCategory(s.ctx, name)
		assert.ErrorIs(s.T(), err, storage.ErrDuplicateCategory, "%q", name)
	}

	_, err = s.svc.CreateCategory(s.ctx, "   ")
	assert.ErrorIs(s.T(), err, core.ErrEmptyCategory)
}

func (s *ExpenseServiceTestSuite) TestRemoveCategoryGate() {
	c, err := s.svc.CreateCategory(s.ctx, "Travel")
	require.NoError(s.T(), err)

	id, err := s.svc.CreateExpense(s.ctx, core.Expense{
		Title: "Flight", Amount: 199, Category: "Travel", Date: "2024-05-01",
	})
	require.NoError(s.T(), err)

	assert.ErrorIs(s.T(), s.svc.RemoveCategory(s.ctx, c.ID), storage.ErrCategoryInUse)

	require.NoError(s.T(), s.svc.DeleteExpense(s.ctx, id))
	require.NoError(s.T(), s.svc.RemoveCategory(s.ctx, c.ID))

	exists, err := s.svc.CategoryExists(s.ctx, "Travel")
	require.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func (s *ExpenseServiceTestSuite) TestCategoriesCacheInvalidatedByMutation() {
	categories, err := s.svc.Categories(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), categories, 7)

	// Mutation through the service must be visible on the next read
	// even though the previous result was cached.
	_, err = s.svc.CreateCategory(s.ctx, "Travel")
	require.NoError(s.T(), err)

	categories, err = s.svc.Categories(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), categories, 8)
}

func (s *ExpenseServiceTestSuite) TestExpenseRoundTripThroughService() {
	in := core.Expense{
		Title:       "Lunch",
		Description: "pizza",
		Amount:      12.5,
		Category:    "Food",
		Date:        "2024-01-01",
	}
	id, err := s.svc.CreateExpense(s.ctx, in)
	require.NoError(s.T(), err)

	got, err := s.svc.GetExpense(s.ctx, id)
	require.NoError(s.T(), err)

	in.ID = id
	assert.Equal(s.T(), &in, got)
}

func TestExpenseServiceSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}
