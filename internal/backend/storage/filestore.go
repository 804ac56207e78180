package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a path has no stored content.
var ErrNotFound = errors.New("file not found")

// ErrInvalidPath is returned for paths a store refuses to address, e.g. absolute
// paths or paths leaving the local store root.
var ErrInvalidPath = errors.New("invalid path")

// FileStore is the persistence collaborator used by commands.
// Writes overwrite existing content; operations are not atomic.
type FileStore interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	Close() error
}
