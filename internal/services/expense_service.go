// Package services is the policy layer between the presentation glue
// and the store: input validation, the duplicate-category check, the
// category-deletion gate and the derived views live here.
package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

const categoriesCacheKey = "categories"

// categoryPalette holds the predefined colors assigned to user-created
// categories.
var categoryPalette = []string{
	"#FF5722", "#E91E63", "#9C27B0", "#673AB7", "#3F51B5",
	"#2196F3", "#03A9F4", "#00BCD4", "#009688", "#4CAF50",
	"#8BC34A", "#CDDC39", "#FFEB3B", "#FFC107", "#FF9800",
	"#FF5722", "#795548", "#9E9E9E", "#607D8B",
}

type ExpenseService struct {
	storage    *storage.SQLiteRepository
	categories *cache.LRUCache[[]core.Category]
}

func NewExpenseService(storage *storage.SQLiteRepository) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		categories: cache.NewLRUCache[[]core.Category](1, 30*time.Second),
	}
}

// CreateExpense validates and persists a new expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.AddExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	s.invalidateCategories()
	return id, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (*core.Expense, error) {
	return s.storage.GetExpense(ctx, id)
}

// UpdateExpense validates and replaces the stored expense matching e.ID.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateExpense(ctx, e); err != nil {
		return err
	}
	s.invalidateCategories()
	return nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.invalidateCategories()
	return nil
}

// ListExpenses returns the full history, newest date first.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx)
}

// RecentExpenses returns the first n expenses of the newest-first
// history, or all of them when fewer exist.
func (s *ExpenseService) RecentExpenses(ctx context.Context, n int) ([]core.Expense, error) {
	if n <= 0 {
		return nil, nil
	}
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	if len(expenses) > n {
		expenses = expenses[:n]
	}
	return expenses, nil
}

// TotalSpent returns the sum over all expenses, 0 when there are none.
func (s *ExpenseService) TotalSpent(ctx context.Context) (float64, error) {
	return s.storage.SumAllExpenses(ctx)
}

// CategoryTotal returns the sum for a single category name.
func (s *ExpenseService) CategoryTotal(ctx context.Context, name string) (float64, error) {
	return s.storage.SumExpensesForCategory(ctx, name)
}

// Categories lists every category with its derived total. Results are
// cached briefly; every mutation invalidates the cache.
func (s *ExpenseService) Categories(ctx context.Context) ([]core.Category, error) {
	if cached, ok := s.categories.Get(categoriesCacheKey); ok {
		return cached, nil
	}
	categories, err := s.storage.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.categories.Set(categoriesCacheKey, categories)
	return categories, nil
}

// CategoryExists reports case-insensitive membership of name among the
// existing categories.
func (s *ExpenseService) CategoryExists(ctx context.Context, name string) (bool, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return false, err
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// CreateCategory adds a user-defined category with a color picked from
// the palette. Duplicate names are rejected before the insert; the
// store's unique index backs the check.
func (s *ExpenseService) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, core.ErrEmptyCategory
	}

	exists, err := s.CategoryExists(ctx, name)
	if err != nil {
		return core.Category{}, err
	}
	if exists {
		return core.Category{}, storage.ErrDuplicateCategory
	}

	color := categoryPalette[rand.IntN(len(categoryPalette))]
	id, err := s.storage.AddCategory(ctx, name, color)
	if err != nil {
		return core.Category{}, err
	}

	s.invalidateCategories()
	return core.Category{ID: id, Name: name, Color: color}, nil
}

// CanDeleteCategory is the authoritative deletion gate: true only when
// no expense references the category name.
func (s *ExpenseService) CanDeleteCategory(ctx context.Context, name string) (bool, error) {
	total, err := s.storage.SumExpensesForCategory(ctx, name)
	if err != nil {
		return false, err
	}
	return total == 0, nil
}

// RemoveCategory deletes a category by id. The store evaluates the
// has-expenses guard atomically and returns ErrCategoryInUse when the
// gate blocks.
func (s *ExpenseService) RemoveCategory(ctx context.Context, id int64) error {
	if err := s.storage.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidateCategories()
	return nil
}

func (s *ExpenseService) invalidateCategories() {
	s.categories.Delete(categoriesCacheKey)
}
