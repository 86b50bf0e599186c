// Package syncqueue implements the durable outbox between a field office
// and the central inspection registry. Finalized inspection payloads are
// enqueued locally, drained against the registry whenever connectivity
// allows, and swept once delivery is confirmed.
package syncqueue

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/munidigital/transporte/internal/model"
	"github.com/munidigital/transporte/internal/store"
)

// DefaultSubmitTimeout bounds one remote submission attempt. A timeout is
// treated like any other submission failure: the row stays pending.
const DefaultSubmitTimeout = 30 * time.Second

// Submitter delivers one finalized payload to the central registry.
// The queue id accompanies the payload so the registry can deduplicate
// redelivered submissions.
type Submitter interface {
	Submit(ctx context.Context, queueID string, payload []byte) error
}

// Queue is the durable submission queue. The outbox table is owned
// exclusively by this type; nothing else reads or writes it.
type Queue struct {
	db        *sql.DB
	submitter Submitter
	timeout   time.Duration

	mu     sync.Mutex // serializes drain passes
	online chan struct{}
}

// New creates a queue draining against the given submitter.
func New(db *sql.DB, submitter Submitter, timeout time.Duration) *Queue {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Queue{
		db:        db,
		submitter: submitter,
		timeout:   timeout,
		online:    make(chan struct{}, 1),
	}
}

// Enqueue durably stores a finalized inspection payload under a freshly
// generated queue id. A storage error here means the payload is at risk of
// loss and must be surfaced to the caller, not swallowed.
func (q *Queue) Enqueue(ctx context.Context, inspectionID int64, payload []byte) (*model.QueuedSubmission, error) {
	queueID := uuid.NewString()
	sub, err := store.EnqueueSubmission(ctx, q.db, queueID, inspectionID, payload)
	if err != nil {
		return nil, fmt.Errorf("outbox storage: %w", err)
	}
	return sub, nil
}

// Drain attempts delivery of every pending payload in enqueue order. Each
// attempt is bounded by the submit timeout. A failed item stays pending
// and does not block the items behind it; it is retried on the next drain
// pass, never within the same one.
func (q *Queue) Drain(ctx context.Context) (synced, failed int, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := store.ListPendingSubmissions(ctx, q.db)
	if err != nil {
		return 0, 0, err
	}

	for _, sub := range pending {
		submitCtx, cancel := context.WithTimeout(ctx, q.timeout)
		submitErr := q.submitter.Submit(submitCtx, sub.QueueID, sub.Payload)
		cancel()

		if submitErr != nil {
			slog.Warn("submission attempt failed, leaving pending",
				"queue_id", sub.QueueID, "inspection_id", sub.InspectionID, "error", submitErr)
			failed++
			continue
		}

		if err := store.MarkSubmissionSynced(ctx, q.db, sub.QueueID); err != nil {
			// Delivered but not recorded: the registry deduplicates by
			// queue id, so a redelivery on the next pass is harmless.
			slog.Error("failed to mark submission synced", "queue_id", sub.QueueID, "error", err)
			failed++
			continue
		}
		synced++
	}

	return synced, failed, nil
}

// Sweep removes all synced rows from the outbox.
func (q *Queue) Sweep(ctx context.Context) (int64, error) {
	return store.SweepSyncedSubmissions(ctx, q.db)
}

// Pending returns how many payloads still await delivery.
func (q *Queue) Pending(ctx context.Context) (int, error) {
	return store.CountPendingSubmissions(ctx, q.db)
}

// Submitted reports whether the payload with the given queue id has been
// confirmed delivered (marked synced, or already swept).
func (q *Queue) Submitted(ctx context.Context, queueID string) (bool, error) {
	sub, err := store.GetSubmissionByQueueID(ctx, q.db, queueID)
	if err != nil {
		return false, err
	}
	return sub == nil || sub.Synced, nil
}

// NotifyOnline triggers an immediate drain pass from Run. Safe to call
// from any goroutine; redundant notifications coalesce.
func (q *Queue) NotifyOnline() {
	select {
	case q.online <- struct{}{}:
	default:
	}
}

// Run drains the queue on a periodic timer and immediately on an
// offline-to-online transition, until ctx is cancelled. The timer catches
// payloads enqueued while a previous drain pass was in flight.
func (q *Queue) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-q.online:
		}
		q.DrainAndSweep(ctx)
	}
}

// DrainAndSweep runs one drain pass followed by a sweep of delivered rows.
func (q *Queue) DrainAndSweep(ctx context.Context) {
	synced, failed, err := q.Drain(ctx)
	if err != nil {
		slog.Error("drain pass failed", "error", err)
		return
	}
	if synced > 0 || failed > 0 {
		slog.Info("drain pass finished", "synced", synced, "failed", failed)
	}
	if synced > 0 {
		if _, err := q.Sweep(ctx); err != nil {
			slog.Error("sweep failed", "error", err)
		}
	}
}
