// Package session persists the small per-session state (credential,
// beach selection, post selection) behind the storage backend chosen at
// process start.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viperioribus/shorewatch/internal/domain"
	"github.com/viperioribus/shorewatch/internal/store"
)

// Fixed storage keys. The layout is shared with the mobile clients, so
// the names must not change.
const (
	keyToken = "auth_token"
	keyBeach = "selected_beach"
	keyPost  = "selected_beach_post"
)

// Session wraps a Store with the three fixed session keys. It performs
// no internal queuing; callers serialize competing writes.
type Session struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a Session over the given store.
func New(st store.Store, logger *slog.Logger) *Session {
	return &Session{store: st, logger: logger}
}

// LoadSelection reads the persisted beach/post pair. A missing or
// unparseable entry is treated as absent, never an error: stale local
// state must not block the user from re-selecting.
func (s *Session) LoadSelection(ctx context.Context) domain.Selection {
	var sel domain.Selection

	beach := readJSON[domain.Beach](ctx, s, keyBeach)
	if beach == nil {
		// A post without its parent beach is meaningless.
		return sel
	}
	sel.Beach = beach
	sel.Post = readJSON[domain.BeachPost](ctx, s, keyPost)
	return sel
}

// SaveBeach persists the chosen beach and unconditionally deletes the
// stored post, keeping the selection invariant even if the caller forgot.
func (s *Session) SaveBeach(ctx context.Context, beach domain.Beach) error {
	data, err := json.Marshal(beach)
	if err != nil {
		return fmt.Errorf("serialize beach: %w", err)
	}
	if err := s.store.Set(ctx, keyBeach, string(data)); err != nil {
		return fmt.Errorf("save beach: %w", err)
	}
	if err := s.store.Delete(ctx, keyPost); err != nil {
		return fmt.Errorf("clear post after beach change: %w", err)
	}
	return nil
}

// SavePost persists the chosen post. The cascade controller is
// responsible for having verified the post belongs to the stored beach.
func (s *Session) SavePost(ctx context.Context, post domain.BeachPost) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("serialize post: %w", err)
	}
	if err := s.store.Set(ctx, keyPost, string(data)); err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

// Token returns the stored credential, or false when none is present.
// Store read failures are treated as absent so the caller surfaces a
// normal auth failure instead of a storage error.
func (s *Session) Token(ctx context.Context) (string, bool) {
	v, err := s.store.Get(ctx, keyToken)
	if errors.Is(err, store.ErrNotFound) {
		return "", false
	}
	if err != nil {
		s.logger.Warn("read credential failed", "error", err)
		return "", false
	}
	if v == "" {
		return "", false
	}
	return v, true
}

// SetToken stores the credential produced by a login.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, keyToken, token); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Clear deletes the credential and both selection keys. Used on logout.
func (s *Session) Clear(ctx context.Context) error {
	var firstErr error
	for _, key := range []string{keyToken, keyBeach, keyPost} {
		if err := s.store.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return firstErr
}

// readJSON reads and parses one stored JSON entry, logging and returning
// nil on any failure.
func readJSON[T any](ctx context.Context, s *Session, key string) *T {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("read session entry failed", "key", key, "error", err)
		}
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.logger.Warn("discarding corrupt session entry", "key", key, "error", err)
		return nil
	}
	return &v
}
