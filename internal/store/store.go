// Package store provides the persistent key-value storage the session
// layer writes its small state entries to. One backend is selected at
// process start and never changes mid-session.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// ErrTooLarge is returned by Set when the value exceeds the backend's
// size cap. Native secure-storage backends cap total item size, so
// callers must serialize compactly.
var ErrTooLarge = errors.New("store: value too large")

// Store is a durable string key-value store. Operations may block on
// I/O. Concurrent writes to the same key are not supported; callers
// serialize access through the session layer.
type Store interface {
	Set(ctx context.Context, key, value string) error
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Delete removes the key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// maxValueBytes matches the smallest item cap among the secure-storage
// backends (keychain items are capped around 4 KiB). Enforced uniformly
// so a value accepted on one platform is not rejected on another.
const maxValueBytes = 4096

// Ping verifies the backend is reachable by reading a key that is never
// written. A not-found result counts as reachable.
func Ping(ctx context.Context, s Store) error {
	if _, err := s.Get(ctx, "readiness-probe"); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
