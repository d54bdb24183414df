package auth

import (
	"context"
	"fmt"

	"formdraft/internal/domain"
)

// UserFinder looks up users by their application uid.
type UserFinder interface {
	GetByUID(ctx context.Context, uid string) (*domain.User, error)
}

// TokenVerifier extracts the uid from a session token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Guard resolves a request credential to the principal it belongs to.
type Guard struct {
	tokens TokenVerifier
	users  UserFinder
}

func NewGuard(tokens TokenVerifier, users UserFinder) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Resolve verifies token and loads its owner. Every failure wraps
// domain.ErrUnauthorized; the wrapped cause stays available for logging.
func (g *Guard) Resolve(ctx context.Context, token string) (*domain.User, error) {
	uid, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	user, err := g.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve principal %s: %w", domain.ErrUnauthorized, uid, err)
	}
	return user, nil
}
