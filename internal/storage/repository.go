// Package storage persists users, categories and expenses in SQLite and
// answers the aggregation queries built on top of them.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at dbPath and runs
// pending migrations. Use ":memory:" for an ephemeral database.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Single local writer: one connection keeps row mutations serialized
	// and makes ":memory:" behave as one database across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure on the given column reference (e.g. "users.username").
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

// CreateUser inserts a new user row. The caller supplies the digest and
// salt; created_at is assigned by the database.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash, salt string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, salt) VALUES (?, ?, ?)`,
		username, passwordHash, salt,
	)
	if isUniqueViolation(err, "users.username") {
		return 0, ErrUsernameTaken
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "user created", "id", id, "username", username)
	return id, nil
}

// GetUser retrieves a user by exact username match.
func (r *SQLiteRepository) GetUser(ctx context.Context, username string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, salt, created_at FROM users WHERE username = ?`,
		username,
	)

	var u core.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Salt, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// GetUserID resolves a username to its id.
func (r *SQLiteRepository) GetUserID(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = ?`, username,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("scan user id: %w", err)
	}
	return id, nil
}

// AddExpense inserts an expense row and returns its id.
func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (title, description, amount, category, date, is_recurring, recurring_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Description, e.Amount, e.Category, e.Date, e.IsRecurring, string(e.RecurringType),
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "expense saved", "id", id, "title", e.Title, "amount", e.Amount, "category", e.Category)
	return id, nil
}

// GetExpense retrieves a single expense by id.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, amount, category, date, is_recurring, recurring_type
		 FROM expenses WHERE id = ?`, id,
	)

	var e core.Expense
	var rt string
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Amount, &e.Category, &e.Date, &e.IsRecurring, &rt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	e.RecurringType = core.RecurringType(rt)
	return &e, nil
}

// UpdateExpense replaces every field of the row matching e.ID.
// Returns ErrNotFound when the id does not exist.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET title = ?, description = ?, amount = ?, category = ?, date = ?, is_recurring = ?, recurring_type = ?
		 WHERE id = ?`,
		e.Title, e.Description, e.Amount, e.Category, e.Date, e.IsRecurring, string(e.RecurringType), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpense removes an expense by id. Deleting an id that does not
// exist is not an error.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// ListExpenses returns every expense, newest date first. Dates are
// canonical YYYY-MM-DD strings so descending lexical order is
// chronological; rows sharing a date come back in reverse insertion
// order.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, amount, category, date, is_recurring, recurring_type
		 FROM expenses ORDER BY date DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		var rt string
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Amount, &e.Category, &e.Date, &e.IsRecurring, &rt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.RecurringType = core.RecurringType(rt)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// AddCategory inserts a category. Name uniqueness is case-insensitive
// and enforced by a unique index, so concurrent duplicate inserts cannot
// race past a pre-check.
func (r *SQLiteRepository) AddCategory(ctx context.Context, name, color string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, color) VALUES (?, ?)`, name, color,
	)
	if isUniqueViolation(err, "categories.name") {
		return 0, ErrDuplicateCategory
	}
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category insert id: %w", err)
	}

	slog.InfoContext(ctx, "category created", "id", id, "name", name, "color", color)
	return id, nil
}

// DeleteCategory removes a category by id, but only when no expense
// references its name. The guard runs inside the DELETE itself so there
// is no gap between check and mutation. Returns ErrCategoryInUse when
// blocked and ErrNotFound for an unknown id.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories
		 WHERE id = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM expenses e WHERE e.category = categories.name COLLATE NOCASE
		   )`, id,
	)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "category deleted", "id", id)
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if exists {
		return ErrCategoryInUse
	}
	return ErrNotFound
}

// ListCategories returns every category with its derived total: the sum
// of amounts of all expenses whose category field matches the name.
// Categories with no expenses report a total of 0.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.color, COALESCE(SUM(e.amount), 0) AS total
		 FROM categories c
		 LEFT JOIN expenses e ON e.category = c.name COLLATE NOCASE
		 GROUP BY c.id, c.name, c.color
		 ORDER BY c.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SumAllExpenses returns the total amount across all expenses, 0 when
// there are none.
func (r *SQLiteRepository) SumAllExpenses(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// SumExpensesForCategory returns the total for one category name, 0 when
// nothing matches.
func (r *SQLiteRepository) SumExpensesForCategory(ctx context.Context, name string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE category = ? COLLATE NOCASE`,
		name,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum category expenses: %w", err)
	}
	return total, nil
}

// SaveSession upserts the single persisted session record.
func (r *SQLiteRepository) SaveSession(ctx context.Context, username string, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session (id, username, user_id) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET username = excluded.username, user_id = excluded.user_id`,
		username, userID,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the persisted session record, or ErrNotFound when
// nobody is logged in.
func (r *SQLiteRepository) LoadSession(ctx context.Context) (*core.Session, error) {
	var s core.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT username, user_id FROM session WHERE id = 1`,
	).Scan(&s.Username, &s.UserID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s.LoggedIn = true
	return &s, nil
}

// ClearSession removes the persisted session record. Clearing an absent
// session is not an error.
func (r *SQLiteRepository) ClearSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
