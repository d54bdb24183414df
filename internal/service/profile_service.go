package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"formdraft/internal/domain"
	"formdraft/internal/storage"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ProfileImage is an uploaded profile picture.
type ProfileImage struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProfileService stores profile images and links them to the owner's draft.
type ProfileService interface {
	Upload(ctx context.Context, uid string, img ProfileImage) (string, error)
}

type profileService struct {
	blobs  storage.Service
	drafts DraftService
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewProfileService(blobs storage.Service, drafts DraftService, logger logrus.FieldLogger) ProfileService {
	return &profileService{
		blobs:  blobs,
		drafts: drafts,
		logger: logger,
		now:    time.Now,
	}
}

// ObjectName builds the stored name <uid>_<unix millis>_<sanitised base name>.
func ObjectName(uid, filename string, at time.Time) string {
	base := filepath.Base(filepath.ToSlash(filename))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%s_%d_%s", uid, at.UnixMilli(), unsafeNameChars.ReplaceAllString(base, "_"))
}

func (s *profileService) Upload(ctx context.Context, uid string, img ProfileImage) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	if img.Body == nil || img.Size <= 0 {
		return "", domain.Invalid("No file uploaded")
	}

	ref, err := s.blobs.Put(ctx, storage.Object{
		Name:        ObjectName(uid, img.Filename, s.now()),
		ContentType: img.ContentType,
		Size:        img.Size,
		Body:        img.Body,
	})
	if err != nil {
		return "", fmt.Errorf("store profile image: %w", err)
	}

	if _, err := s.drafts.AttachProfileImage(ctx, uid, ref); err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			s.logger.WithError(delErr).WithField("ref", ref).Warn("remove orphaned profile image")
		}
		return "", err
	}
	return ref, nil
}
