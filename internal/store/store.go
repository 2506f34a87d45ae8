// Package store persists small JSON-encoded values under fixed keys.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Store is the non-volatile key-value collaborator. Values are encoded as
// JSON; Get decodes into v, which must be a pointer.
type Store interface {
	Put(ctx context.Context, key string, v any) error
	Get(ctx context.Context, key string, v any) error
	Close() error
}
