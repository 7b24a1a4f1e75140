package api

import (
	"context"
	"fmt"

	"github.com/viperioribus/shorewatch/internal/domain"
)

// TokenSource yields the stored session credential.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Authed decorates a Client with credential resolution from a
// TokenSource. An absent credential fails fast with ErrUnauthorized, so
// no request a caller cannot authenticate ever leaves the process.
type Authed struct {
	client *Client
	tokens TokenSource
}

// NewAuthed binds a client to a token source.
func NewAuthed(c *Client, ts TokenSource) *Authed {
	return &Authed{client: c, tokens: ts}
}

// Beaches lists beaches using the stored credential.
func (a *Authed) Beaches(ctx context.Context) ([]domain.Beach, error) {
	token, ok := a.tokens.Token(ctx)
	if !ok {
		return nil, fmt.Errorf("list beaches: %w", domain.ErrUnauthorized)
	}
	return a.client.Beaches(ctx, token)
}

// BeachPosts lists the posts of one beach using the stored credential.
// Satisfies the cascade controller's lister dependency.
func (a *Authed) BeachPosts(ctx context.Context, beachID string) ([]domain.BeachPost, error) {
	token, ok := a.tokens.Token(ctx)
	if !ok {
		return nil, fmt.Errorf("list beach posts: %w", domain.ErrUnauthorized)
	}
	return a.client.BeachPosts(ctx, token, beachID)
}
