package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/munidigital/transporte/internal/model"
)

// EnqueueSubmission stores a finalized inspection payload in the local
// outbox. The row stays until the payload is confirmed delivered to the
// central registry and swept.
func EnqueueSubmission(ctx context.Context, db *sql.DB, queueID string, inspectionID int64, payload []byte) (*model.QueuedSubmission, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO outbox (queue_id, inspection_id, payload) VALUES (?, ?, ?)`,
		queueID, inspectionID, payload,
	)
	if err != nil {
		return nil, fmt.Errorf("enqueueing submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting outbox id: %w", err)
	}

	return getQueuedSubmission(ctx, db, id)
}

func getQueuedSubmission(ctx context.Context, db *sql.DB, id int64) (*model.QueuedSubmission, error) {
	q := &model.QueuedSubmission{}
	err := db.QueryRowContext(ctx,
		`SELECT id, queue_id, inspection_id, payload, synced, enqueued_at, synced_at
		 FROM outbox WHERE id = ?`, id,
	).Scan(&q.ID, &q.QueueID, &q.InspectionID, &q.Payload, &q.Synced, &q.EnqueuedAt, &q.SyncedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting queued submission: %w", err)
	}
	return q, nil
}

// GetSubmissionByQueueID returns an outbox row by its queue id, or nil if
// absent (never enqueued, or already swept).
func GetSubmissionByQueueID(ctx context.Context, db *sql.DB, queueID string) (*model.QueuedSubmission, error) {
	q := &model.QueuedSubmission{}
	err := db.QueryRowContext(ctx,
		`SELECT id, queue_id, inspection_id, payload, synced, enqueued_at, synced_at
		 FROM outbox WHERE queue_id = ?`, queueID,
	).Scan(&q.ID, &q.QueueID, &q.InspectionID, &q.Payload, &q.Synced, &q.EnqueuedAt, &q.SyncedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting queued submission: %w", err)
	}
	return q, nil
}

// ListPendingSubmissions returns all not-yet-synced payloads in enqueue order.
func ListPendingSubmissions(ctx context.Context, db *sql.DB) ([]model.QueuedSubmission, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, queue_id, inspection_id, payload, synced, enqueued_at, synced_at
		 FROM outbox WHERE synced = 0 ORDER BY enqueued_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending submissions: %w", err)
	}
	defer rows.Close()

	var pending []model.QueuedSubmission
	for rows.Next() {
		var q model.QueuedSubmission
		if err := rows.Scan(&q.ID, &q.QueueID, &q.InspectionID, &q.Payload, &q.Synced, &q.EnqueuedAt, &q.SyncedAt); err != nil {
			return nil, fmt.Errorf("scanning queued submission: %w", err)
		}
		pending = append(pending, q)
	}
	return pending, rows.Err()
}

// MarkSubmissionSynced flags a payload as confirmed delivered. The row is
// only flagged, not removed; SweepSyncedSubmissions deletes synced rows.
func MarkSubmissionSynced(ctx context.Context, db *sql.DB, queueID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE outbox SET synced = 1, synced_at = CURRENT_TIMESTAMP WHERE queue_id = ? AND synced = 0`,
		queueID,
	)
	if err != nil {
		return fmt.Errorf("marking submission synced: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("marking submission synced: queue id %q not pending", queueID)
	}
	return nil
}

// SweepSyncedSubmissions deletes all synced outbox rows and returns how
// many were removed.
func SweepSyncedSubmissions(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM outbox WHERE synced = 1`)
	if err != nil {
		return 0, fmt.Errorf("sweeping synced submissions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting swept submissions: %w", err)
	}
	return n, nil
}

// CountPendingSubmissions returns how many payloads still await delivery.
func CountPendingSubmissions(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox WHERE synced = 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting pending submissions: %w", err)
	}
	return count, nil
}
