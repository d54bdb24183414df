package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formdraft/internal/domain"
	"formdraft/internal/storage"
)

type failingDrafts struct {
	DraftService
}

func (failingDrafts) AttachProfileImage(context.Context, string, string) (*domain.Draft, error) {
	return nil, errors.New("db down")
}

func TestObjectName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "uid-1_1700000000123_my_photo__1_.png", ObjectName("uid-1", "my photo (1).png", at))
	assert.Equal(t, "uid-1_1700000000123_passwd", ObjectName("uid-1", "../../etc/passwd", at))
	assert.Equal(t, "uid-1_1700000000123_upload", ObjectName("uid-1", "", at))
}

func TestProfileUpload(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	blobs, err := storage.NewLocalService(dir, "/uploads")
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	svc := NewProfileService(blobs, f.drafts, logger)
	ref, err := svc.Upload(context.Background(), "uid-1", ProfileImage{
		Filename:    "face.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("\x89PNG"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/uid-1_"), ref)
	assert.True(t, strings.HasSuffix(ref, "_face.png"), ref)

	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(ref, "/uploads/")))
	require.NoError(t, err)

	d, err := f.drafts.GetOrCreate(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, ref, d.ProfilePic)
}

func TestProfileUploadRejectsEmpty(t *testing.T) {
	f := newFixture(t)
	blobs, err := storage.NewLocalService(t.TempDir(), "/uploads")
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	svc := NewProfileService(blobs, f.drafts, logger)
	_, err = svc.Upload(context.Background(), "uid-1", ProfileImage{Filename: "a.png"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.count(t, "drafts"))
}

func TestProfileUploadRemovesBlobWhenAttachFails(t *testing.T) {
	dir := t.TempDir()
	blobs, err := storage.NewLocalService(dir, "/uploads")
	require.NoError(t, err)
	logger, hook := test.NewNullLogger()

	svc := NewProfileService(blobs, failingDrafts{}, logger)
	_, err = svc.Upload(context.Background(), "uid-1", ProfileImage{
		Filename: "a.png",
		Size:     1,
		Body:     strings.NewReader("x"),
	})
	require.ErrorContains(t, err, "db down")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, e.Level)
	}
}
