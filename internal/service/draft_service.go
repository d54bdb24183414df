package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"formdraft/internal/domain"
	"formdraft/internal/repository"
)

// DraftService manages the per-user form draft. The uid argument must come
// from an authenticated principal.
type DraftService interface {
	GetOrCreate(ctx context.Context, uid string) (*domain.Draft, error)
	SaveStep(ctx context.Context, uid string, step int, payload json.RawMessage) (*domain.Draft, error)
	AttachProfileImage(ctx context.Context, uid, ref string) (*domain.Draft, error)
	Submit(ctx context.Context, uid string) (*domain.Draft, error)
	Status(ctx context.Context, uid string) (bool, error)
}

type draftService struct {
	drafts repository.DraftRepository
}

func NewDraftService(drafts repository.DraftRepository) DraftService {
	return &draftService{drafts: drafts}
}

// ParseStep parses a step index from its path form. Only plain decimal
// digits denoting a positive integer are accepted.
func ParseStep(raw string) (int, error) {
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidStep, raw)
	}
	step, err := strconv.Atoi(raw)
	if err != nil || step <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidStep, raw)
	}
	return step, nil
}

func requireUID(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return domain.Invalid("User id is required")
	}
	return nil
}

func (s *draftService) GetOrCreate(ctx context.Context, uid string) (*domain.Draft, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	return s.drafts.GetOrCreate(ctx, uid)
}

func (s *draftService) SaveStep(ctx context.Context, uid string, step int, payload json.RawMessage) (*domain.Draft, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidStep, step)
	}
	if len(payload) == 0 || !json.Valid(payload) {
		return nil, domain.Invalid("Step payload must be valid JSON")
	}
	return s.drafts.UpsertStep(ctx, uid, step, payload)
}

func (s *draftService) AttachProfileImage(ctx context.Context, uid, ref string) (*domain.Draft, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ref) == "" {
		return nil, domain.Invalid("Image reference is required")
	}
	return s.drafts.UpsertProfilePic(ctx, uid, ref)
}

func (s *draftService) Submit(ctx context.Context, uid string) (*domain.Draft, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	return s.drafts.MarkSubmitted(ctx, uid)
}

func (s *draftService) Status(ctx context.Context, uid string) (bool, error) {
	if err := requireUID(uid); err != nil {
		return false, err
	}
	draft, err := s.drafts.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return draft.IsSubmitted, nil
}
