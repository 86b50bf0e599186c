package api

import (
	"log/slog"
	"net/http"

	"github.com/munidigital/transporte/internal/syncqueue"
)

// SyncHandler exposes the outbox state and a manual drain trigger for
// field offices that regain connectivity.
type SyncHandler struct {
	Queue *syncqueue.Queue
}

// Status handles GET /api/sync/status.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Queue.Pending(r.Context())
	if err != nil {
		slog.Error("failed to count pending submissions", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to read sync status")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"pending": pending})
}

// Drain handles POST /api/sync/drain. It drains synchronously so the
// response reflects the new pending count, and signals the background
// runner for anything that failed mid-drain.
func (h *SyncHandler) Drain(w http.ResponseWriter, r *http.Request) {
	h.Queue.DrainAndSweep(r.Context())
	h.Queue.NotifyOnline()

	pending, err := h.Queue.Pending(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read sync status")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"pending": pending})
}
