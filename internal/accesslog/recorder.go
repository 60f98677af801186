// Package accesslog delivers "this resource was viewed/downloaded" events.
// Delivery is fire and forget: this is low-value telemetry and must never
// get in a user's way. Events that fail while the device is offline are
// queued in the local store and retried by Flush, typically on reconnect or
// app foreground.
package accesslog

import (
	"context"
	"errors"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/lewisnorthcott/sitesinc-offline/internal/auth"
	"github.com/lewisnorthcott/sitesinc-offline/internal/common"
	"github.com/lewisnorthcott/sitesinc-offline/internal/logging"
	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
	"github.com/lewisnorthcott/sitesinc-offline/internal/netx"
	"github.com/lewisnorthcott/sitesinc-offline/internal/store"
)

// queueBucket is the store bucket holding undelivered events. It is global,
// not per project: events are tiny and a single flush drains them all.
const queueBucket = "access_log_queue"

// QueuedEntry is one undelivered access event. The token in force when the
// event happened travels with it so a later flush replays the event as the
// user who triggered it.
type QueuedEntry struct {
	ID         string                 `json:"id"`
	ResourceID int                    `json:"resourceId"`
	EventType  models.AccessEventType `json:"eventType"`
	AuthToken  string                 `json:"authToken"`
	EnqueuedAt time.Time              `json:"enqueuedAt"`
}

// Delivery is the slice of the remote API the recorder needs.
type Delivery interface {
	RecordAccess(ctx context.Context, event models.AccessEvent, token auth.Token) error
}

// Recorder owns the queued-event life cycle. The queue's load-modify-save
// cycle is serialized so a flush and a concurrent enqueue cannot lose
// entries.
type Recorder struct {
	store    *store.Store
	delivery Delivery
	net      netx.Checker
	log      logging.Logger

	mu stdsync.Mutex
}

func NewRecorder(st *store.Store, delivery Delivery, net netx.Checker, log logging.Logger) *Recorder {
	return &Recorder{store: st, delivery: delivery, net: net, log: log}
}

// Record attempts to deliver one event. Failures while offline enqueue the
// event for a later Flush; failures while online are dropped, a server that
// rejects telemetry is not worth retrying. Nothing is reported back to the
// caller either way.
func (r *Recorder) Record(ctx context.Context, event models.AccessEvent, token auth.Token) {
	err := r.delivery.RecordAccess(ctx, event, token)
	if err == nil {
		r.log.Debug(ctx, "access event delivered", "resource_id", event.ResourceID, "event", event.Type)
		return
	}

	if r.net.Online() && !errors.Is(err, common.ErrNotConnected) {
		r.log.Warn(ctx, "access event dropped", "resource_id", event.ResourceID, "event", event.Type, "error", err)
		return
	}

	r.enqueue(ctx, event, token)
}

func (r *Recorder) enqueue(ctx context.Context, event models.AccessEvent, token auth.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []QueuedEntry
	if _, err := r.store.LoadBucket(queueBucket, &entries); err != nil {
		// A corrupt queue is replaced rather than blocking new events.
		r.log.Error(ctx, "access log queue unreadable, starting fresh", "error", err)
		entries = nil
	}

	entries = append(entries, QueuedEntry{
		ID:         uuid.NewString(),
		ResourceID: event.ResourceID,
		EventType:  event.Type,
		AuthToken:  token.Raw(),
		EnqueuedAt: time.Now().UTC(),
	})

	if err := r.store.SaveBucket(queueBucket, entries); err != nil {
		r.log.Error(ctx, "access event could not be queued", "resource_id", event.ResourceID, "error", err)
		return
	}
	r.log.Info(ctx, "access event queued for redelivery", "resource_id", event.ResourceID, "queued", len(entries))
}

// Flush redelivers every queued event concurrently and rewrites the queue
// to hold only the ones that failed again. Safe to call redundantly: an
// empty queue is a no-op. Entries whose token has expired are dropped
// without a delivery attempt, the server would reject them anyway.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []QueuedEntry
	ok, err := r.store.LoadBucket(queueBucket, &entries)
	if err != nil {
		return err
	}
	if !ok || len(entries) == 0 {
		return nil
	}

	now := time.Now()
	live := lo.Filter(entries, func(e QueuedEntry, _ int) bool {
		if auth.New(e.AuthToken).Expired(now) {
			r.log.Warn(ctx, "dropping queued access event with expired token", "resource_id", e.ResourceID)
			return false
		}
		return true
	})

	failed := make([]bool, len(live))
	var wg stdsync.WaitGroup
	for i := range live {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := live[i]
			event := models.AccessEvent{ResourceID: e.ResourceID, Type: e.EventType}
			if err := r.delivery.RecordAccess(ctx, event, auth.New(e.AuthToken)); err != nil {
				failed[i] = true
				r.log.Warn(ctx, "queued access event failed again", "resource_id", e.ResourceID, "error", err)
			}
		}(i)
	}
	wg.Wait()

	remaining := lo.Filter(live, func(_ QueuedEntry, i int) bool { return failed[i] })
	if err := r.store.SaveBucket(queueBucket, remaining); err != nil {
		return err
	}

	r.log.Info(ctx, "access log queue flushed", "delivered", len(live)-len(remaining), "remaining", len(remaining))
	return nil
}

// QueueLength reports how many events await redelivery.
func (r *Recorder) QueueLength() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []QueuedEntry
	if _, err := r.store.LoadBucket(queueBucket, &entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
