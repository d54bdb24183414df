package repository

import (
	"context"
	"encoding/json"

	"formdraft/internal/domain"
)

// DraftRepository persists one draft per user. Every mutating method is a
// single conditional write keyed by the owner's uid and creates the draft
// when it does not exist yet.
type DraftRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Draft, error)
	// Get returns ErrNotFound when the user has no draft. It never creates one.
	Get(ctx context.Context, userID string) (*domain.Draft, error)
	UpsertStep(ctx context.Context, userID string, step int, payload json.RawMessage) (*domain.Draft, error)
	UpsertProfilePic(ctx context.Context, userID, ref string) (*domain.Draft, error)
	MarkSubmitted(ctx context.Context, userID string) (*domain.Draft, error)
}
