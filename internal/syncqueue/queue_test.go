package syncqueue

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/munidigital/transporte/internal/db"
	"github.com/munidigital/transporte/internal/model"
	"github.com/munidigital/transporte/internal/store"
)

// fakeSubmitter records submission attempts and can simulate an offline
// registry or per-payload rejections.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []string // queue ids in attempt order
	failing map[string]bool
	offline bool
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{failing: make(map[string]bool)}
}

func (f *fakeSubmitter) Submit(_ context.Context, queueID string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, queueID)
	if f.offline {
		return errors.New("registry unreachable")
	}
	if f.failing[queueID] {
		return errors.New("registry rejected payload")
	}
	return nil
}

func (f *fakeSubmitter) attempts(queueID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, id := range f.calls {
		if id == queueID {
			n++
		}
	}
	return n
}

func (f *fakeSubmitter) setOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

// newTestInspection creates the minimal records an outbox row references.
func newTestInspection(t *testing.T, database *sql.DB) int64 {
	t.Helper()
	ctx := context.Background()

	inspector, err := store.CreateUser(ctx, database, "inspector", "hash", model.RoleInspector)
	if err != nil {
		t.Fatalf("creating inspector: %v", err)
	}
	licensee, err := store.CreateLicensee(ctx, database, "REM-100", "Carlos Paz", "20123456", model.TransportRemise)
	if err != nil {
		t.Fatalf("creating licensee: %v", err)
	}
	vehicle, err := store.CreateVehicle(ctx, database, licensee.ID, "AB123CD", "Toyota", "Corolla", 2020, 4)
	if err != nil {
		t.Fatalf("creating vehicle: %v", err)
	}
	insp, err := store.OpenInspection(ctx, database, vehicle.ID, inspector.ID, nil)
	if err != nil {
		t.Fatalf("opening inspection: %v", err)
	}
	return insp.ID
}

func TestDrainMarksSyncedAndSweepRemoves(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	inspectionID := newTestInspection(t, database)

	submitter := newFakeSubmitter()
	queue := New(database, submitter, time.Second)

	sub, err := queue.Enqueue(ctx, inspectionID, []byte(`{"verdict":"approved"}`))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if sub.Synced {
		t.Error("freshly enqueued submission must start pending")
	}

	synced, failed, err := queue.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if synced != 1 || failed != 0 {
		t.Errorf("expected 1 synced, 0 failed, got %d/%d", synced, failed)
	}

	row, _ := store.GetSubmissionByQueueID(ctx, database, sub.QueueID)
	if row == nil || !row.Synced {
		t.Fatal("expected submission marked synced after drain")
	}

	// A second drain must not resubmit an already synced payload.
	if _, _, err := queue.Drain(ctx); err != nil {
		t.Fatalf("second Drain: %v", err)
	}
	if n := submitter.attempts(sub.QueueID); n != 1 {
		t.Errorf("expected exactly 1 submission attempt, got %d", n)
	}

	removed, err := queue.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 swept row, got %d", removed)
	}
	if row, _ := store.GetSubmissionByQueueID(ctx, database, sub.QueueID); row != nil {
		t.Error("expected synced row removed by sweep")
	}
}

func TestDrainPartialFailure(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	inspectionID := newTestInspection(t, database)

	submitter := newFakeSubmitter()
	queue := New(database, submitter, time.Second)

	var subs []*model.QueuedSubmission
	for range 3 {
		sub, err := queue.Enqueue(ctx, inspectionID, []byte(`{}`))
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		subs = append(subs, sub)
	}
	submitter.failing[subs[1].QueueID] = true

	synced, failed, err := queue.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if synced != 2 || failed != 1 {
		t.Errorf("expected 2 synced, 1 failed, got %d/%d", synced, failed)
	}

	for i, sub := range subs {
		row, _ := store.GetSubmissionByQueueID(ctx, database, sub.QueueID)
		if row == nil {
			t.Fatalf("submission %d missing", i)
		}
		wantSynced := i != 1
		if row.Synced != wantSynced {
			t.Errorf("submission %d: expected synced=%v, got %v", i, wantSynced, row.Synced)
		}
	}

	// The failed payload is retried on the next pass and recovers.
	submitter.failing[subs[1].QueueID] = false
	synced, failed, err = queue.Drain(ctx)
	if err != nil {
		t.Fatalf("retry Drain: %v", err)
	}
	if synced != 1 || failed != 0 {
		t.Errorf("expected retry to sync 1, got %d/%d", synced, failed)
	}
}

func TestDrainPreservesEnqueueOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	inspectionID := newTestInspection(t, database)

	submitter := newFakeSubmitter()
	queue := New(database, submitter, time.Second)

	var want []string
	for range 3 {
		sub, err := queue.Enqueue(ctx, inspectionID, []byte(`{}`))
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		want = append(want, sub.QueueID)
	}

	if _, _, err := queue.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	if len(submitter.calls) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(submitter.calls))
	}
	for i := range want {
		if submitter.calls[i] != want[i] {
			t.Errorf("attempt %d: expected %s, got %s", i, want[i], submitter.calls[i])
		}
	}
}

func TestOfflineThenOnline(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	inspectionID := newTestInspection(t, database)

	submitter := newFakeSubmitter()
	submitter.setOffline(true)
	queue := New(database, submitter, time.Second)

	sub, err := queue.Enqueue(ctx, inspectionID, []byte(`{}`))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// While offline, drain leaves the payload pending.
	synced, failed, err := queue.Drain(ctx)
	if err != nil {
		t.Fatalf("offline Drain: %v", err)
	}
	if synced != 0 || failed != 1 {
		t.Errorf("expected 0 synced, 1 failed while offline, got %d/%d", synced, failed)
	}
	if pending, _ := queue.Pending(ctx); pending != 1 {
		t.Errorf("expected 1 pending while offline, got %d", pending)
	}

	// Back online: one drain pass delivers and the sweep empties the queue.
	submitter.setOffline(false)
	queue.DrainAndSweep(ctx)

	if pending, _ := queue.Pending(ctx); pending != 0 {
		t.Errorf("expected empty queue after recovery, got %d pending", pending)
	}
	if submitted, _ := queue.Submitted(ctx, sub.QueueID); !submitted {
		t.Error("expected submission confirmed after recovery")
	}

	// Exactly one successful delivery: one offline failure, one online success.
	if n := submitter.attempts(sub.QueueID); n != 2 {
		t.Errorf("expected 2 attempts total, got %d", n)
	}
}

func TestRunDrainsOnOnlineSignal(t *testing.T) {
	database := db.NewTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inspectionID := newTestInspection(t, database)

	submitter := newFakeSubmitter()
	queue := New(database, submitter, time.Second)

	sub, err := queue.Enqueue(ctx, inspectionID, []byte(`{}`))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Long interval so only the online signal can trigger the pass.
		queue.Run(ctx, time.Hour)
	}()

	queue.NotifyOnline()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if submitter.attempts(sub.QueueID) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if submitter.attempts(sub.QueueID) == 0 {
		t.Error("expected online signal to trigger a drain pass")
	}

	cancel()
	<-done
}

func TestEnqueueStorageFailure(t *testing.T) {
	database := db.NewTestDB(t)
	inspectionID := newTestInspection(t, database)
	database.Close()

	queue := New(database, newFakeSubmitter(), time.Second)
	if _, err := queue.Enqueue(context.Background(), inspectionID, []byte(`{}`)); err == nil {
		t.Error("expected storage error when the local store is unavailable")
	}
}
