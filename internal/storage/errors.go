package storage

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when registering an already-used username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrDuplicateCategory is returned when a category name already exists,
	// compared case-insensitively.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrCategoryInUse is returned when deleting a category that still has
	// expenses referencing its name.
	ErrCategoryInUse = errors.New("category has expenses")
)
