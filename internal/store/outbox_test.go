package store

import (
	"context"
	"testing"

	"github.com/munidigital/transporte/internal/db"
	"github.com/munidigital/transporte/internal/model"
)

func TestOutboxLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	insp := openInspection(t, database, model.TransportRemise)

	sub, err := EnqueueSubmission(ctx, database, "q-1", insp.ID, []byte(`{"x":1}`))
	if err != nil {
		t.Fatalf("EnqueueSubmission: %v", err)
	}
	if sub.Synced {
		t.Error("expected pending on enqueue")
	}
	if sub.EnqueuedAt.IsZero() {
		t.Error("expected enqueued_at set")
	}

	pending, err := ListPendingSubmissions(ctx, database)
	if err != nil {
		t.Fatalf("ListPendingSubmissions: %v", err)
	}
	if len(pending) != 1 || string(pending[0].Payload) != `{"x":1}` {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	if err := MarkSubmissionSynced(ctx, database, "q-1"); err != nil {
		t.Fatalf("MarkSubmissionSynced: %v", err)
	}

	// Marking twice must fail: the transition happens exactly once.
	if err := MarkSubmissionSynced(ctx, database, "q-1"); err == nil {
		t.Error("expected error marking an already synced submission")
	}

	count, _ := CountPendingSubmissions(ctx, database)
	if count != 0 {
		t.Errorf("expected 0 pending, got %d", count)
	}

	removed, err := SweepSyncedSubmissions(ctx, database)
	if err != nil {
		t.Fatalf("SweepSyncedSubmissions: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 swept, got %d", removed)
	}
	if row, _ := GetSubmissionByQueueID(ctx, database, "q-1"); row != nil {
		t.Error("expected row removed after sweep")
	}
}

func TestListPendingOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	insp := openInspection(t, database, model.TransportRemise)
	for _, id := range []string{"q-1", "q-2", "q-3"} {
		if _, err := EnqueueSubmission(ctx, database, id, insp.ID, []byte(`{}`)); err != nil {
			t.Fatalf("EnqueueSubmission %s: %v", id, err)
		}
	}
	MarkSubmissionSynced(ctx, database, "q-2")

	pending, _ := ListPendingSubmissions(ctx, database)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].QueueID != "q-1" || pending[1].QueueID != "q-3" {
		t.Errorf("unexpected order: %s, %s", pending[0].QueueID, pending[1].QueueID)
	}
}

func TestDuplicateQueueIDRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	insp := openInspection(t, database, model.TransportRemise)
	EnqueueSubmission(ctx, database, "q-1", insp.ID, []byte(`{}`))
	if _, err := EnqueueSubmission(ctx, database, "q-1", insp.ID, []byte(`{}`)); err == nil {
		t.Error("expected error for duplicate queue id")
	}
}
