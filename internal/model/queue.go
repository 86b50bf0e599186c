package model

import "time"

// QueuedSubmission is one finalized inspection payload waiting in the
// local outbox for delivery to the central registry. QueueID is generated
// locally and is independent of any server-assigned identifier; the
// registry uses it to deduplicate redelivered payloads.
type QueuedSubmission struct {
	ID           int64      `json:"id"`
	QueueID      string     `json:"queue_id"`
	InspectionID int64      `json:"inspection_id"`
	Payload      []byte     `json:"-"`
	Synced       bool       `json:"synced"`
	EnqueuedAt   time.Time  `json:"enqueued_at"`
	SyncedAt     *time.Time `json:"synced_at,omitempty"`
}
