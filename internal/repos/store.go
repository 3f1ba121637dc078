package repos

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicate = errors.New("repos: username already exists")
	ErrNotFound  = errors.New("repos: user not found")
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"hashed_password"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the user persistence used by the auth handlers. Implementations
// must be safe for concurrent use.
type Store interface {
	Create(ctx context.Context, u User) (int64, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	Delete(ctx context.Context, username string) error
	Ping(ctx context.Context) error
}
