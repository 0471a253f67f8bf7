// Package objectstore talks to the bucket storage that holds parking-lot images.
package objectstore

import (
	"context"
	"errors"
	"fmt"
)

var ErrObjectNotFound = errors.New("object not found")

type Store interface {
	Upload(ctx context.Context, bucket, path, contentType string, body []byte) error
	Remove(ctx context.Context, bucket string, paths ...string) error
	PublicURL(bucket, path string) (string, error)
}

// StorageError is a non-2xx answer from the storage API.
type StorageError struct {
	Status  int
	Message string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: status %d: %s", e.Status, e.Message)
}

func validateLocation(bucket, path string) error {
	if bucket == "" {
		return errors.New("storage: bucket is required")
	}
	if path == "" {
		return errors.New("storage: object path is required")
	}
	return nil
}
