package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Download when the key does not exist.
var ErrNotFound = errors.New("object not found")

// Storage stages uploads between the handler and the extractor. Objects are
// transient: every key is deleted once its text has been extracted.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
