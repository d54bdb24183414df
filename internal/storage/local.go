package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalService keeps blobs in a directory on disk. References take the form
// <urlPrefix>/<name> so the directory can be served statically.
type LocalService struct {
	dir       string
	urlPrefix string
}

func NewLocalService(dir, urlPrefix string) (*LocalService, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	prefix := "/" + strings.Trim(urlPrefix, "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	return &LocalService{dir: filepath.Clean(dir), urlPrefix: prefix}, nil
}

// Dir is the directory blobs are written to.
func (s *LocalService) Dir() string { return s.dir }

// URLPrefix is the path prefix of returned references.
func (s *LocalService) URLPrefix() string { return s.urlPrefix }

func (s *LocalService) Put(ctx context.Context, obj Object) (string, error) {
	if !validName(obj.Name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, obj.Name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, obj.Name)
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, obj.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", obj.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", obj.Name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("move %s into place: %w", obj.Name, err)
	}
	return s.urlPrefix + "/" + obj.Name, nil
}

func (s *LocalService) Delete(_ context.Context, ref string) error {
	name := strings.TrimPrefix(ref, s.urlPrefix+"/")
	if name == ref || !validName(name) {
		return fmt.Errorf("%w: reference %q", ErrInvalidName, ref)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

var _ Service = (*LocalService)(nil)
