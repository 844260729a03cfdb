package auth

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when no user record matches the given email.
var ErrUserNotFound = errors.New("user not found")

// UserRepository provides read access to the remote users table.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}
