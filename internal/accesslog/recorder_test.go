package accesslog

import (
	"context"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisnorthcott/sitesinc-offline/internal/auth"
	"github.com/lewisnorthcott/sitesinc-offline/internal/common"
	"github.com/lewisnorthcott/sitesinc-offline/internal/logging"
	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
	"github.com/lewisnorthcott/sitesinc-offline/internal/store"
)

type staticChecker bool

func (s staticChecker) Online() bool { return bool(s) }

type fakeDelivery struct {
	mu     stdsync.Mutex
	errors map[int]error // per resource id

	events []models.AccessEvent
	tokens []string
}

func (f *fakeDelivery) RecordAccess(ctx context.Context, event models.AccessEvent, token auth.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	f.tokens = append(f.tokens, token.Raw())
	return f.errors[event.ResourceID]
}

func (f *fakeDelivery) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func newTestRecorder(t *testing.T, delivery *fakeDelivery, online bool) (*Recorder, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "cache"), filepath.Join(t.TempDir(), "files"), logging.Discard())
	require.NoError(t, err)
	return NewRecorder(st, delivery, staticChecker(online), logging.Discard()), st
}

func queued(t *testing.T, st *store.Store) []QueuedEntry {
	t.Helper()
	var entries []QueuedEntry
	_, err := st.LoadBucket(queueBucket, &entries)
	require.NoError(t, err)
	return entries
}

func TestRecord_DeliveredEventIsNotQueued(t *testing.T) {
	d := &fakeDelivery{}
	r, st := newTestRecorder(t, d, true)

	r.Record(context.Background(), models.AccessEvent{ResourceID: 1019, Type: models.AccessViewed}, auth.New("tok"))

	assert.Equal(t, 1, d.calls())
	assert.Empty(t, queued(t, st))
}

func TestRecord_ServerFailureWhileOnlineIsDropped(t *testing.T) {
	d := &fakeDelivery{errors: map[int]error{1019: common.ErrServerError}}
	r, st := newTestRecorder(t, d, true)

	r.Record(context.Background(), models.AccessEvent{ResourceID: 1019, Type: models.AccessViewed}, auth.New("tok"))

	assert.Empty(t, queued(t, st), "server-side failures are not worth retrying")
}

func TestRecord_OfflineFailureIsQueued(t *testing.T) {
	d := &fakeDelivery{errors: map[int]error{1019: common.ErrNotConnected}}
	r, st := newTestRecorder(t, d, false)

	before := time.Now().Add(-time.Second)
	r.Record(context.Background(), models.AccessEvent{ResourceID: 1019, Type: models.AccessDownloaded}, auth.New("tok-at-event-time"))

	entries := queued(t, st)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 1019, e.ResourceID)
	assert.Equal(t, models.AccessDownloaded, e.EventType)
	assert.Equal(t, "tok-at-event-time", e.AuthToken)
	assert.True(t, e.EnqueuedAt.After(before))
}

func TestRecord_ConnectionDropCountsAsOffline(t *testing.T) {
	// The monitor may still say online when a request fails mid-flight;
	// the error tells the truth.
	d := &fakeDelivery{errors: map[int]error{1019: common.ErrNotConnected}}
	r, st := newTestRecorder(t, d, true)

	r.Record(context.Background(), models.AccessEvent{ResourceID: 1019, Type: models.AccessViewed}, auth.New("tok"))

	assert.Len(t, queued(t, st), 1)
}

func TestFlush_EmptyQueueIsNoOp(t *testing.T) {
	d := &fakeDelivery{}
	r, st := newTestRecorder(t, d, true)

	require.NoError(t, r.Flush(context.Background()))
	require.NoError(t, r.Flush(context.Background()))

	assert.Zero(t, d.calls())
	assert.Empty(t, queued(t, st))
}

func TestFlush_KeepsOnlyFailedEntries(t *testing.T) {
	d := &fakeDelivery{errors: map[int]error{2: common.ErrServerError}}
	r, st := newTestRecorder(t, d, true)

	require.NoError(t, st.SaveBucket(queueBucket, []QueuedEntry{
		{ID: "q1", ResourceID: 1, EventType: models.AccessViewed, AuthToken: "t1", EnqueuedAt: time.Now().UTC()},
		{ID: "q2", ResourceID: 2, EventType: models.AccessViewed, AuthToken: "t2", EnqueuedAt: time.Now().UTC()},
		{ID: "q3", ResourceID: 3, EventType: models.AccessDownloaded, AuthToken: "t3", EnqueuedAt: time.Now().UTC()},
	}))

	require.NoError(t, r.Flush(context.Background()))

	assert.Equal(t, 3, d.calls(), "every entry gets one delivery attempt")

	entries := queued(t, st)
	require.Len(t, entries, 1)
	assert.Equal(t, "q2", entries[0].ID, "only the failed entry survives the flush")

	// A second flush retries just the survivor.
	require.NoError(t, r.Flush(context.Background()))
	assert.Equal(t, 4, d.calls())
	assert.Len(t, queued(t, st), 1)
}

func TestFlush_ReplaysWithTheCapturedToken(t *testing.T) {
	d := &fakeDelivery{}
	r, st := newTestRecorder(t, d, true)

	require.NoError(t, st.SaveBucket(queueBucket, []QueuedEntry{
		{ID: "q1", ResourceID: 1, EventType: models.AccessViewed, AuthToken: "old-session-token", EnqueuedAt: time.Now().UTC()},
	}))

	require.NoError(t, r.Flush(context.Background()))

	require.Len(t, d.tokens, 1)
	assert.Equal(t, "old-session-token", d.tokens[0])
}

func TestFlush_DropsEntriesWithExpiredTokens(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	d := &fakeDelivery{}
	r, st := newTestRecorder(t, d, true)

	require.NoError(t, st.SaveBucket(queueBucket, []QueuedEntry{
		{ID: "stale", ResourceID: 1, EventType: models.AccessViewed, AuthToken: expired, EnqueuedAt: time.Now().UTC()},
		{ID: "fresh", ResourceID: 2, EventType: models.AccessViewed, AuthToken: "opaque", EnqueuedAt: time.Now().UTC()},
	}))

	require.NoError(t, r.Flush(context.Background()))

	assert.Equal(t, 1, d.calls(), "the expired entry is dropped, not delivered")
	require.Len(t, d.events, 1)
	assert.Equal(t, 2, d.events[0].ResourceID)
	assert.Empty(t, queued(t, st))
}

func TestQueueLength(t *testing.T) {
	d := &fakeDelivery{}
	r, st := newTestRecorder(t, d, true)

	n, err := r.QueueLength()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, st.SaveBucket(queueBucket, []QueuedEntry{
		{ID: "q1", ResourceID: 1, EventType: models.AccessViewed, AuthToken: "t", EnqueuedAt: time.Now().UTC()},
	}))

	n, err = r.QueueLength()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
