// Package storage moves graph files and analysis results between the local
// disk and object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
)

// ErrInvalidTarget is returned for a target that names no bucket or file.
var ErrInvalidTarget = errors.New("storage: invalid target")

// BlobStore defines the interface for abstract storage backends.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Get reads a whole object.
func Get(ctx context.Context, s BlobStore, key string) ([]byte, error) {
	rc, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// SplitS3URL splits s3://bucket/key into its parts. ok is false for
// anything that is not an s3 URL.
func SplitS3URL(target string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(target, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	return bucket, key, true
}

// Resolve returns the store and key for target, which is either an
// s3://bucket/key URL or a local file path.
func Resolve(ctx context.Context, target string) (BlobStore, string, error) {
	if bucket, key, ok := SplitS3URL(target); ok {
		if bucket == "" {
			return nil, "", fmt.Errorf("%w: %q has no bucket", ErrInvalidTarget, target)
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load aws config: %w", err)
		}
		return NewS3Store(cfg, bucket), key, nil
	}
	if target == "" || strings.HasSuffix(target, "/") {
		return nil, "", fmt.Errorf("%w: %q is not a file path", ErrInvalidTarget, target)
	}
	dir, file := splitLocal(target)
	return NewLocalStore(dir), file, nil
}
