// Package cascade manages the dependent beach → post selection: a post
// is only a valid choice once its parent beach is chosen, and a beach
// change invalidates the post and restarts the post list fetch.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viperioribus/shorewatch/internal/domain"
	"github.com/viperioribus/shorewatch/internal/observability"
	"github.com/viperioribus/shorewatch/internal/session"
)

// State is the controller's position in the selection cascade.
type State int

const (
	// NoBeach: nothing chosen yet.
	NoBeach State = iota
	// BeachChosen: beach persisted, post fetch not yet in flight.
	BeachChosen
	// LoadingPosts: post list fetch in flight for the chosen beach.
	LoadingPosts
	// PostsLoaded: fresh post list available, no post chosen.
	PostsLoaded
	// PostChosen: beach and post both chosen and persisted.
	PostChosen
	// LoadError: the post fetch failed; Retry re-enters LoadingPosts.
	LoadError
)

func (s State) String() string {
	switch s {
	case NoBeach:
		return "no_beach"
	case BeachChosen:
		return "beach_chosen"
	case LoadingPosts:
		return "loading_posts"
	case PostsLoaded:
		return "posts_loaded"
	case PostChosen:
		return "post_chosen"
	case LoadError:
		return "load_error"
	default:
		return "unknown"
	}
}

// ErrPostMismatch is returned when the chosen post does not belong to
// the current beach. Unreachable through a well-behaved presentation
// layer, but checked, not trusted.
var ErrPostMismatch = errors.New("cascade: post does not belong to the chosen beach")

// ErrNotReady is returned when ChoosePost is called before a post list
// is available.
var ErrNotReady = errors.New("cascade: no post list loaded")

// PostLister fetches the watch posts of one beach. Transport errors are
// treated uniformly as a load error.
type PostLister interface {
	BeachPosts(ctx context.Context, beachID string) ([]domain.BeachPost, error)
}

// Snapshot is an immutable view of the controller state.
type Snapshot struct {
	State State
	Beach *domain.Beach
	Posts []domain.BeachPost
	Post  *domain.BeachPost
	Err   error // load failure reason, set in LoadError
}

// Controller is the selection cascade state machine. All transitions are
// serialized internally; a new ChooseBeach supersedes any in-flight post
// fetch, whose late result is dropped.
type Controller struct {
	lister  PostLister
	session *session.Session
	logger  *slog.Logger
	metrics *observability.Metrics

	mu            sync.Mutex
	state         State
	beach         *domain.Beach
	posts         []domain.BeachPost
	post          *domain.BeachPost
	loadErr       error
	pendingPostID string // restored post identity awaiting list confirmation
	gen           uint64 // fetch generation; stale results are dropped
	settled       chan struct{}
}

// New creates a controller in the NoBeach state.
func New(lister PostLister, sess *session.Session, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	settled := make(chan struct{})
	close(settled) // nothing in flight
	return &Controller{
		lister:  lister,
		session: sess,
		logger:  logger,
		metrics: metrics,
		state:   NoBeach,
		settled: settled,
	}
}

// Restore loads the persisted selection and, when a beach is present,
// re-issues the post fetch. Only the chosen post's identity is restored,
// and only once the fresh list confirms it still exists; a cached post
// list is never trusted across restarts.
func (c *Controller) Restore(ctx context.Context) {
	sel := c.session.LoadSelection(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if sel.Beach == nil {
		c.state = NoBeach
		return
	}

	c.metrics.SessionRestores.Inc()
	c.beach = sel.Beach
	c.state = BeachChosen
	if sel.Post != nil {
		c.pendingPostID = sel.Post.ID
	}
	c.logger.Info("selection restored", "beach_id", sel.Beach.ID, "pending_post", c.pendingPostID != "")
	c.startFetchLocked(ctx)
}

// ChooseBeach persists the beach (clearing any stored post), discards
// any in-flight fetch for the previous beach, and starts the post fetch.
// Valid from any state.
func (c *Controller) ChooseBeach(ctx context.Context, beach domain.Beach) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.session.SaveBeach(ctx, beach); err != nil {
		return err
	}
	c.metrics.SelectionChanges.WithLabelValues("beach").Inc()

	b := beach
	c.beach = &b
	c.pendingPostID = ""
	c.state = BeachChosen
	c.startFetchLocked(ctx)
	return nil
}

// ChoosePost selects a post from the loaded list. Valid only in
// PostsLoaded or PostChosen; a post belonging to another beach is
// rejected without mutating any state.
func (c *Controller) ChoosePost(ctx context.Context, post domain.BeachPost) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != PostsLoaded && c.state != PostChosen {
		return fmt.Errorf("%w (state %s)", ErrNotReady, c.state)
	}
	if post.BeachID != c.beach.ID {
		return fmt.Errorf("%w: post %s belongs to beach %s, current beach is %s",
			ErrPostMismatch, post.ID, post.BeachID, c.beach.ID)
	}

	if err := c.session.SavePost(ctx, post); err != nil {
		return err
	}
	c.metrics.SelectionChanges.WithLabelValues("post").Inc()

	p := post
	c.post = &p
	c.state = PostChosen
	return nil
}

// Retry re-issues the post fetch after a load error.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != LoadError {
		return fmt.Errorf("cascade: nothing to retry (state %s)", c.state)
	}
	c.startFetchLocked(ctx)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{State: c.state, Err: c.loadErr}
	if c.beach != nil {
		b := *c.beach
		snap.Beach = &b
	}
	if c.post != nil {
		p := *c.post
		snap.Post = &p
	}
	if c.posts != nil {
		snap.Posts = make([]domain.BeachPost, len(c.posts))
		copy(snap.Posts, c.posts)
	}
	return snap
}

// WaitSettled blocks until no fetch is in flight, then returns the
// resulting snapshot.
func (c *Controller) WaitSettled(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	ch := c.settled
	c.mu.Unlock()

	select {
	case <-ch:
		return c.Snapshot(), nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// startFetchLocked advances the fetch generation and launches the post
// fetch for the current beach. Caller holds c.mu.
func (c *Controller) startFetchLocked(ctx context.Context) {
	c.gen++
	gen := c.gen
	beach := *c.beach

	c.state = LoadingPosts
	c.posts = nil
	c.post = nil
	c.loadErr = nil

	// Release any waiter of the superseded generation, then open a
	// fresh channel for this one.
	select {
	case <-c.settled:
	default:
		close(c.settled)
	}
	c.settled = make(chan struct{})

	go c.fetchPosts(ctx, gen, beach)
}

// fetchPosts runs the post list fetch and applies the result, unless a
// later ChooseBeach superseded this generation in the meantime.
func (c *Controller) fetchPosts(ctx context.Context, gen uint64, beach domain.Beach) {
	posts, err := c.lister.BeachPosts(ctx, beach.ID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// Late result for a superseded beach: drop it.
		c.metrics.PostFetches.WithLabelValues("superseded").Inc()
		c.logger.Debug("dropping superseded post fetch", "beach_id", beach.ID)
		return
	}
	defer close(c.settled)

	if err != nil {
		c.metrics.PostFetches.WithLabelValues("error").Inc()
		c.logger.Warn("post fetch failed", "beach_id", beach.ID, "error", err)
		c.state = LoadError
		c.loadErr = err
		return
	}

	c.metrics.PostFetches.WithLabelValues("success").Inc()
	c.posts = posts
	c.state = PostsLoaded

	if c.pendingPostID != "" {
		if restored := findPost(posts, c.pendingPostID); restored != nil {
			if err := c.session.SavePost(ctx, *restored); err != nil {
				c.logger.Warn("persist restored post failed", "post_id", restored.ID, "error", err)
			}
			c.post = restored
			c.state = PostChosen
		} else {
			// The stored post no longer exists on this beach; fall back
			// to an open post list.
			c.logger.Info("stored post not in fresh list, discarding",
				"beach_id", beach.ID, "post_id", c.pendingPostID)
		}
		c.pendingPostID = ""
	}
}

func findPost(posts []domain.BeachPost, id string) *domain.BeachPost {
	for i := range posts {
		if posts[i].ID == id {
			p := posts[i]
			return &p
		}
	}
	return nil
}
