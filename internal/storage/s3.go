package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options conveys the upload destination.
type S3Options struct {
	Bucket    string
	KeyPrefix string
	// PublicBaseURL, when set, is used to build references instead of s3:// URIs.
	PublicBaseURL string
}

// S3Service stores blobs in Amazon S3 (or compatible APIs).
type S3Service struct {
	uploader uploader
	client   objectDeleter
	opts     S3Options
}

func NewS3Service(client *s3.Client, opts S3Options) (*S3Service, error) {
	return newS3Service(manager.NewUploader(client), client, opts)
}

func newS3Service(up uploader, client objectDeleter, opts S3Options) (*S3Service, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &S3Service{uploader: up, client: client, opts: opts}, nil
}

func (s *S3Service) key(name string) string {
	if s.opts.KeyPrefix == "" {
		return name
	}
	return s.opts.KeyPrefix + "/" + name
}

func (s *S3Service) Put(ctx context.Context, obj Object) (string, error) {
	if !validName(obj.Name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, obj.Name)
	}

	key := s.key(obj.Name)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
		Body:   obj.Body,
		ACL:    types.ObjectCannedACLPrivate,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	if s.opts.PublicBaseURL != "" {
		return s.opts.PublicBaseURL + "/" + key, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.opts.Bucket, key), nil
}

func (s *S3Service) Delete(ctx context.Context, ref string) error {
	key, err := s.keyFromRef(ref)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Service) keyFromRef(ref string) (string, error) {
	if s.opts.PublicBaseURL != "" && strings.HasPrefix(ref, s.opts.PublicBaseURL+"/") {
		return strings.TrimPrefix(ref, s.opts.PublicBaseURL+"/"), nil
	}
	if !strings.HasPrefix(ref, "s3://") {
		return "", fmt.Errorf("invalid s3 location")
	}
	parts := strings.SplitN(strings.TrimPrefix(ref, "s3://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid s3 location")
	}
	if parts[0] != s.opts.Bucket {
		return "", fmt.Errorf("s3 bucket mismatch")
	}
	return parts[1], nil
}

var _ Service = (*S3Service)(nil)
