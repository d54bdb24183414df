package sqlite

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

// DraftRepository stores drafts in a single row per user. The steps column
// holds a JSON object keyed by step index and is mutated in place with
// json_set, so each write is one INSERT ... ON CONFLICT statement.
type DraftRepository struct {
	db *sql.DB
}

func NewDraftRepository(db *sql.DB) repository.DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Draft, error) {
	now := time.Now().UTC()
	// the no-op update makes RETURNING yield the existing row on conflict
	row := r.db.QueryRowContext(ctx, `
INSERT INTO drafts (user_id, steps, profile_pic, is_submitted, created_at, updated_at)
VALUES (?, '{}', '', 0, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET user_id = excluded.user_id`+draftReturning,
		userID, now, now,
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
WHERE user_id = ?`,
		userID,
	)
	return scanDraft(row)
}

func (r *DraftRepository) UpsertStep(ctx context.Context, userID string, step int, payload json.RawMessage) (*domain.Draft, error) {
	now := time.Now().UTC()
	key := repository.StepKey(step)
	path := fmt.Sprintf(`$."%s"`, key)
	row := r.db.QueryRowContext(ctx, `
INSERT INTO drafts (user_id, steps, profile_pic, is_submitted, created_at, updated_at)
VALUES (?, json_object(?, json(?)), '', 0, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	steps = json_set(drafts.steps, ?, json(?)),
	updated_at = excluded.updated_at`+draftReturning,
		userID, key, string(payload), now, now,
		path, string(payload),
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
INSERT INTO drafts (user_id, steps, profile_pic, is_submitted, created_at, updated_at)
VALUES (?, '{}', ?, 0, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	profile_pic = excluded.profile_pic,
	updated_at = excluded.updated_at`+draftReturning,
		userID, ref, now, now,
	)
	draft, err := scanDraft(row)
	if err != nil {
		return nil, fmt.Errorf("upsert profile pic: %w", err)
	}
	return draft, nil
}

func (r *DraftRepository) MarkSubmitted(ctx context.Context, userID string) (*domain.Draft, error) {
	now := time.Now().UTC()
	// updated_at only moves on the first transition so a repeated submit is unobservable
	row := r.db.QueryRowContext(ctx, `
INSERT INTO drafts (user_id, steps, profile_pic, is_submitted, created_at, updated_at)
VALUES (?, '{}', '', 1, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	updated_at = CASE WHEN drafts.is_submitted THEN drafts.updated_at ELSE excluded.updated_at END,
	is_submitted = 1`+draftReturning,
		userID, now, now,
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
		timestamp{&draft.CreatedAt},
		timestamp{&draft.UpdatedAt},
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
