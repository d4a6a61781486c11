// Package storage holds animal images in an object store behind a
// backend-agnostic interface.
package storage

import (
	"context"
	"io"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// ImageStore wraps an ObjectStorage backend with a stable API for animal
// pictures.
type ImageStore struct {
	backend ObjectStorage
}

// NewImageStore constructs an ImageStore for the provided backend.
func NewImageStore(backend ObjectStorage) *ImageStore {
	return &ImageStore{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads an image to the configured bucket.
func (s *ImageStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for an image in the configured bucket.
func (s *ImageStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes an image from the configured bucket.
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *ImageStore) Bucket() string {
	return s.backend.Bucket()
}
