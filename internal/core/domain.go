package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	Daily   RecurringType = "Daily"
	Weekly  RecurringType = "Weekly"
	Monthly RecurringType = "Monthly"
)

// DateLayout is the canonical form for expense dates. Lexical order on
// this layout equals chronological order, which the history listing
// relies on.
const DateLayout = "2006-01-02"

type (
	RecurringType string

	Expense struct {
		ID            int64
		Title         string
		Description   string
		Amount        float64
		Category      string
		Date          string // canonical YYYY-MM-DD
		IsRecurring   bool
		RecurringType RecurringType
	}

	Category struct {
		ID    int64
		Name  string
		Color string
		// TotalAmount is derived from the expenses that reference this
		// category by name. It is never stored.
		TotalAmount float64
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		Salt         string
		CreatedAt    time.Time
	}

	Session struct {
		LoggedIn bool
		Username string
		UserID   int64
	}
)

var (
	ErrEmptyTitle           = errors.New("title cannot be empty")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyCategory        = errors.New("empty category")
	ErrInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidRecurringType = errors.New("invalid recurring type")
	ErrInvalidUsername      = errors.New("username must be 3-20 letters, numbers or underscores")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch     = errors.New("passwords do not match")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func (rt RecurringType) Valid() bool {
	switch rt {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := ValidateDate(e.Date); err != nil {
		return err
	}
	if e.IsRecurring {
		if !e.RecurringType.Valid() {
			return ErrInvalidRecurringType
		}
	} else if e.RecurringType != "" {
		return ErrInvalidRecurringType
	}
	return nil
}

// ValidateDate checks that s is a real calendar date in canonical form.
// The round-trip comparison rejects shorthand like 2024-1-1.
func ValidateDate(s string) error {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return ErrInvalidDate
	}
	if t.Format(DateLayout) != s {
		return ErrInvalidDate
	}
	return nil
}

func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 {
		return ErrInvalidUsername
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}
