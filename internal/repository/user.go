package repository

import (
	"context"

	"formdraft/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	// Create inserts the user and fills in its storage ID and timestamps.
	// A taken email yields ErrDuplicate.
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUID(ctx context.Context, uid string) (*domain.User, error)
}
