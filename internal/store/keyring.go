package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps entries in the OS keystore (macOS Keychain, Windows
// Credential Manager, Secret Service on Linux). Confidentiality at rest
// is whatever the platform keystore provides.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keystore-backed store scoped to the given
// service name.
func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(value) > maxValueBytes {
		return fmt.Errorf("set %s: %w", key, ErrTooLarge)
	}
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

func (s *KeyringStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %s: %w", key, err)
	}
	return v, nil
}

func (s *KeyringStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", key, err)
	}
	return nil
}

// available probes the keystore with a throwaway entry. Used by Open to
// decide whether the keyring backend can serve this environment (headless
// hosts often have no Secret Service).
func (s *KeyringStore) available() bool {
	const probeKey = "shorewatch-probe"
	if err := keyring.Set(s.service, probeKey, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(s.service, probeKey)
	return true
}
