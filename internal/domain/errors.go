package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized marks a request whose credential was absent locally or
// rejected by the backend (401/403). The caller must re-authenticate;
// nothing retries automatically.
var ErrUnauthorized = errors.New("credential missing or rejected")

// RejectionError carries a structured business-rule rejection from the
// backend. The message is passed through verbatim.
type RejectionError struct {
	Status  int
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("backend rejected request (status %d): %s", e.Status, e.Message)
}
