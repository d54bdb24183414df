package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formdraft/internal/domain"
	"formdraft/internal/repository"
)

const draftReturning = `
RETURNING id, user_id, steps, profile_pic, is_submitted, created_at, updated_at`

// DraftRepository keeps one row per user with the steps in a JSONB object.
// Step writes concatenate a single-key object onto the stored document inside
// the ON CONFLICT clause, so concurrent writes to different steps never
// overwrite each other.
type DraftRepository struct {
	db *sql.DB
}

func NewDraftRepository(db *sql.DB) repository.DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Draft, error) {
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `
INSERT INTO drafts (user_id, created_at, updated_at)
VALUES ($1, $2, $2)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id`+draftReturning,
		userID, now,
	)
	draft, err := scanDraft(row)
	if err != nil {
		return nil, fmt.Errorf("get or create draft: %w", err)
	}
	return draft, nil
}

func (r *DraftRepository) Get(ctx context.Context, userID string) (*domain.Draft, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, steps, profile_pic, is_submitted, created_at, updated_at
FROM drafts
WHERE user_id = $1`, userID)
	return scanDraft(row)
}

func (r *DraftRepository) UpsertStep(ctx context.Context, userID string, step int, payload json.RawMessage) (*domain.Draft, error) {
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `
INSERT INTO drafts (user_id, steps, created_at, updated_at)
VALUES ($1, jsonb_build_object($2::text, $3::jsonb), $4, $4)
ON CONFLICT (user_id) DO UPDATE SET
	steps = drafts.steps || jsonb_build_object($2::text, $3::jsonb),
	updated_at = EXCLUDED.updated_at`+draftReturning,
		userID, repository.StepKey(step), string(payload), now,
	)
	draft, err := scanDraft(row)
	if err != nil {
		return nil, fmt.Errorf("upsert step %d: %w", step, err)
	}
	return draft, nil
}

func (r *DraftRepository) UpsertProfilePic(ctx context.Context, userID, ref string) (*domain.Draft, error) {
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `
INSERT INTO drafts (user_id, profile_pic, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (user_id) DO UPDATE SET
	profile_pic = EXCLUDED.profile_pic,
	updated_at = EXCLUDED.updated_at`+draftReturning,
		userID, ref, now,
	)
	draft, err := scanDraft(row)
	if err != nil {
		return nil, fmt.Errorf("upsert profile pic: %w", err)
	}
	return draft, nil
}

func (r *DraftRepository) MarkSubmitted(ctx context.Context, userID string) (*domain.Draft, error) {
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `
INSERT INTO drafts (user_id, is_submitted, created_at, updated_at)
VALUES ($1, TRUE, $2, $2)
ON CONFLICT (user_id) DO UPDATE SET
	updated_at = CASE WHEN drafts.is_submitted THEN drafts.updated_at ELSE EXCLUDED.updated_at END,
	is_submitted = TRUE`+draftReturning,
		userID, now,
	)
	draft, err := scanDraft(row)
	if err != nil {
		return nil, fmt.Errorf("mark submitted: %w", err)
	}
	return draft, nil
}

func scanDraft(row rowScanner) (*domain.Draft, error) {
	var (
		draft domain.Draft
		steps []byte
	)
	if err := row.Scan(
		&draft.ID,
		&draft.UserID,
		&steps,
		&draft.ProfilePic,
		&draft.IsSubmitted,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan draft: %w", err)
	}
	decoded, err := repository.DecodeSteps(steps)
	if err != nil {
		return nil, err
	}
	draft.Steps = decoded
	return &draft, nil
}
