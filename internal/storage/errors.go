package storage

import "errors"

// Errors shared by storage backends for constraint violations
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrForeignKey        = errors.New("referenced record does not exist")
)
