package store

import (
	"fmt"
	"log/slog"
)

// Backend names a storage backend choice.
type Backend string

const (
	// BackendAuto probes the OS keystore and falls back to the file store.
	BackendAuto Backend = "auto"
	// BackendFile forces the plain JSON file store.
	BackendFile Backend = "file"
	// BackendKeyring forces the OS keystore.
	BackendKeyring Backend = "keyring"
	// BackendMemory forces the volatile in-memory store.
	BackendMemory Backend = "memory"
)

// Open selects and constructs the storage backend. Called once at process
// start; the choice is fixed for the life of the process.
func Open(backend Backend, path, service string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendFile:
		return NewFileStore(path)
	case BackendKeyring:
		return NewKeyringStore(service), nil
	case BackendMemory:
		return NewMemStore(), nil
	case BackendAuto, "":
		if ks := NewKeyringStore(service); ks.available() {
			logger.Debug("session store backend selected", "backend", "keyring")
			return ks, nil
		}
		logger.Debug("session store backend selected", "backend", "file", "path", path)
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
