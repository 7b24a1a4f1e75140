package cascade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viperioribus/shorewatch/internal/domain"
	"github.com/viperioribus/shorewatch/internal/observability"
	"github.com/viperioribus/shorewatch/internal/session"
	"github.com/viperioribus/shorewatch/internal/store"
)

var (
	santaMonica = domain.Beach{ID: "1", Name: "Santa Monica"}
	venice      = domain.Beach{ID: "2", Name: "Venice Beach"}
	postA       = domain.BeachPost{ID: "a", BeachID: "1", Name: "Post A"}
	postB       = domain.BeachPost{ID: "b", BeachID: "1", Name: "Post B"}
	postV       = domain.BeachPost{ID: "v", BeachID: "2", Name: "Post V"}
)

// fakeLister serves canned post lists and can hold individual fetches
// open via per-beach gates.
type fakeLister struct {
	mu    sync.Mutex
	posts map[string][]domain.BeachPost
	errs  map[string]error
	gates map[string]chan struct{}
	calls []string
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		posts: map[string][]domain.BeachPost{
			"1": {postA, postB},
			"2": {postV},
		},
		errs:  map[string]error{},
		gates: map[string]chan struct{}{},
	}
}

func (f *fakeLister) BeachPosts(_ context.Context, beachID string) ([]domain.BeachPost, error) {
	f.mu.Lock()
	f.calls = append(f.calls, beachID)
	gate := f.gates[beachID]
	err := f.errs[beachID]
	posts := f.posts[beachID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (f *fakeLister) setErr(beachID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[beachID] = err
}

func (f *fakeLister) gate(beachID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[beachID] = ch
	return ch
}

func newTestController(t *testing.T) (*Controller, *fakeLister, *session.Session, *observability.Metrics) {
	t.Helper()
	lister := newFakeLister()
	sess := session.New(store.NewMemStore(), observability.NewTestLogger())
	metrics := observability.NewMetricsForTesting()
	ctrl := New(lister, sess, observability.NewTestLogger(), metrics)
	return ctrl, lister, sess, metrics
}

func TestController_FullScenario(t *testing.T) {
	ctrl, _, sess, _ := newTestController(t)
	ctx := context.Background()

	require.NoError(t, ctrl.ChooseBeach(ctx, santaMonica))
	snap, err := ctrl.WaitSettled(ctx)
	require.NoError(t, err)
	assert.Equal(t, PostsLoaded, snap.State)
	assert.Equal(t, []domain.BeachPost{postA, postB}, snap.Posts)
	assert.Nil(t, snap.Post)

	require.NoError(t, ctrl.ChoosePost(ctx, postA))
	snap = ctrl.Snapshot()
	assert.Equal(t, PostChosen, snap.State)
	require.NotNil(t, snap.Post)
	assert.Equal(t, postA, *snap.Post)

	sel := sess.LoadSelection(ctx)
	require.NotNil(t, sel.Beach)
	require.NotNil(t, sel.Post)
	assert.Equal(t, santaMonica, *sel.Beach)
	assert.Equal(t, postA, *sel.Post)
}

func TestController_ChooseBeachClearsStoredPost(t *testing.T) {
	ctrl, _, sess, _ := newTestController(t)
	ctx := context.Background()

	require.NoError(t, ctrl.ChooseBeach(ctx, santaMonica))
	_, err := ctrl.WaitSettled(ctx)
	require.NoError(t, err)
	require.NoError(t, ctrl.ChoosePost(ctx, postA))

	require.NoError(t, ctrl.ChooseBeach(ctx, venice))

	// Immediately after the beach change, before any post is chosen,
	// no stored post may survive.
	sel := sess.LoadSelection(ctx)
	require.NotNil(t, sel.Beach)
	assert.Equal(t, venice, *sel.Beach)
	assert.Nil(t, sel.Post)

	snap, err := ctrl.WaitSettled(ctx)
	require.NoError(t, err)
	assert.Equal(t, PostsLoaded, snap.State)
	assert.Nil(t, sess.LoadSelection(ctx).Post)
}

func TestController_ChoosePostMismatch(t *testing.T) {
	ctrl, _, sess, _ := newTestController(t)
	ctx := context.Background()

	require.NoError(t, ctrl.ChooseBeach(ctx, santaMonica))
	_, err := ctrl.WaitSettled(ctx)
	require.NoError(t, err)

	err = ctrl.ChoosePost(ctx, postV) // belongs to Venice
	assert.ErrorIs(t, err, ErrPostMismatch)

	// Nothing mutated: state and stored selection are untouched.
	snap := ctrl.Snapshot()
	assert.Equal(t, PostsLoaded, snap.State)
	assert.Nil(t, snap.Post)
	assert.Nil(t, sess.LoadSelection(ctx).Post)
}

func TestController_ChoosePostBeforeListLoaded(t *testing.T) {
	ctrl, _, _, _ := newTestController(t)

	err := ctrl.ChoosePost(context.Background(), postA)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestController_SupersededFetchIsDropped(t *testing.T) {
	ctrl, lister, _, metrics := newTestController(t)
	ctx := context.Background()

	gateA := lister.gate("1")

	require.NoError(t, ctrl.ChooseBeach(ctx, santaMonica))
	require.NoError(t, ctrl.ChooseBeach(ctx, venice))

	snap, err := ctrl.WaitSettled(ctx)
	require.NoError(t, err)
	assert.Equal(t, PostsLoaded, snap.State)
	assert.Equal(t, []domain.BeachPost{postV}, snap.Posts)

	// Let Santa Monica's fetch resolve late; its result must be dropped.
	close(gateA)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.PostFetches.WithLabelValues("superseded")) == 1
	}, time.Second, 5*time.Millisecond)

	snap = ctrl.Snapshot()
	assert.Equal(t, PostsLoaded, snap.State)
	require.NotNil(t, snap.Beach)
	assert.Equal(t, venice, *snap.Beach)
	assert.Equal(t, []domain.BeachPost{postV}, snap.Posts)
}

func TestController_LoadErrorAndRetry(t *testing.T) {
	ctrl, lister, _, _ := newTestController(t)
	ctx := context.Background()

	boom := errors.New("connection refused")
	lister.setErr("1", boom)

	require.NoError(t, ctrl.ChooseBeach(ctx, santaMonica))
	snap, err := ctrl.WaitSettled(ctx)
	require.NoError(t, err)
	assert.Equal(t, LoadError, snap.State)
	assert.ErrorIs(t, snap.Err, boom)

	lister.setErr("1", nil)
	require.NoError(t, ctrl.Retry(ctx))

	snap, err = ctrl.WaitSettled(ctx)
	require.NoError(t, err)
	assert.Equal(t, PostsLoaded, snap.State)
	assert.Equal(t, []domain.BeachPost{postA, postB}, snap.Posts)
}

func TestController_RetryOnlyFromLoadError(t *testing.T) {
	ctrl, _, _, _ := newTestController(t)
	assert.Error(t, ctrl.Retry(context.Background()))
}

func TestController_BeachPersistsEvenWhenFetchFails(t *testing.T) {
	ctrl, lister, sess, _ := newTestController(t)
	ctx := context.Background()

	lister.setErr("1", errors.New("timeout"))
	require.NoError(t, ctrl.ChooseBeach(ctx, santaMonica))
	_, err := ctrl.WaitSettled(ctx)
	require.NoError(t, err)

	sel := sess.LoadSelection(ctx)
	require.NotNil(t, sel.Beach)
	assert.Equal(t, santaMonica, *sel.Beach)
}

func TestController_RestoreEmptyStore(t *testing.T) {
	ctrl, lister, _, _ := newTestController(t)

	ctrl.Restore(context.Background())

	assert.Equal(t, NoBeach, ctrl.Snapshot().State)
	assert.Empty(t, lister.calls)
}

func TestController_RestoreConfirmsStoredPost(t *testing.T) {
	ctrl, _, sess, _ := newTestController(t)
	ctx := context.Background()

	require.NoError(t, sess.SaveBeach(ctx, santaMonica))
	require.NoError(t, sess.SavePost(ctx, postA))

	ctrl.Restore(ctx)
	snap, err := ctrl.WaitSettled(ctx)
	require.NoError(t, err)

	assert.Equal(t, PostChosen, snap.State)
	require.NotNil(t, snap.Post)
	assert.Equal(t, postA, *snap.Post)
	assert.Equal(t, []domain.BeachPost{postA, postB}, snap.Posts)
}

func TestController_RestoreDiscardsVanishedPost(t *testing.T) {
	ctrl, lister, sess, _ := newTestController(t)
	ctx := context.Background()

	gone := domain.BeachPost{ID: "z", BeachID: "1", Name: "Removed Post"}
	require.NoError(t, sess.SaveBeach(ctx, santaMonica))
	require.NoError(t, sess.SavePost(ctx, gone))

	ctrl.Restore(ctx)
	snap, err := ctrl.WaitSettled(ctx)
	require.NoError(t, err)

	assert.Equal(t, PostsLoaded, snap.State)
	assert.Nil(t, snap.Post)
	assert.Equal(t, []string{"1"}, lister.calls)
}
