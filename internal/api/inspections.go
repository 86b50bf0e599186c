package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/munidigital/transporte/internal/checklist"
	"github.com/munidigital/transporte/internal/imaging"
	"github.com/munidigital/transporte/internal/model"
	"github.com/munidigital/transporte/internal/store"
	"github.com/munidigital/transporte/internal/syncqueue"
)

// InspectionsHandler handles the inspection workflow endpoints.
type InspectionsHandler struct {
	DB    *sql.DB
	Queue *syncqueue.Queue
}

type openInspectionRequest struct {
	VehicleID    int64      `json:"vehicle_id"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// inspectionDetail is the GET response: the inspection with its
// instantiated checklist and aggregate progress.
type inspectionDetail struct {
	*model.Inspection
	Items    []model.InspectionItem `json:"items"`
	Progress checklist.Progress     `json:"progress"`
}

// Open handles POST /api/inspections.
func (h *InspectionsHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openInspectionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VehicleID == 0 {
		jsonError(w, http.StatusBadRequest, "vehicle_id required")
		return
	}

	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	vehicle, err := store.GetVehicle(r.Context(), h.DB, req.VehicleID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to look up vehicle")
		return
	}
	if vehicle == nil {
		jsonError(w, http.StatusNotFound, "vehicle not found")
		return
	}

	inspection, err := store.OpenInspection(r.Context(), h.DB, req.VehicleID, claims.UserID, req.ScheduledFor)
	if err != nil {
		slog.Error("failed to open inspection", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to open inspection")
		return
	}
	jsonResponse(w, http.StatusCreated, inspection)
}

// List handles GET /api/inspections.
func (h *InspectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	var vehicleID int64
	if v := r.URL.Query().Get("vehicle_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid vehicle_id")
			return
		}
		vehicleID = id
	}
	status := r.URL.Query().Get("status")

	inspections, err := store.ListInspections(r.Context(), h.DB, vehicleID, status)
	if err != nil {
		slog.Error("failed to list inspections", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list inspections")
		return
	}
	if inspections == nil {
		inspections = []model.Inspection{}
	}
	jsonResponse(w, http.StatusOK, inspections)
}

// Get handles GET /api/inspections/{id}.
func (h *InspectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	inspection, err := store.GetInspection(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get inspection")
		return
	}
	if inspection == nil {
		jsonError(w, http.StatusNotFound, "inspection not found")
		return
	}

	items, err := store.GetInspectionItems(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get checklist items")
		return
	}

	jsonResponse(w, http.StatusOK, inspectionDetail{
		Inspection: inspection,
		Items:      items,
		Progress:   checklist.ComputeProgress(items),
	})
}

// itemError maps store sentinels for item mutations to HTTP responses.
func itemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInspectionFinalized):
		jsonError(w, http.StatusConflict, "inspection already submitted")
	case errors.Is(err, store.ErrItemNotFound):
		jsonError(w, http.StatusNotFound, "checklist item not found")
	case errors.Is(err, store.ErrInvalidStatus):
		jsonError(w, http.StatusBadRequest, "status must be unrated, pass, warning or fail")
	default:
		slog.Error("checklist item update failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update checklist item")
	}
}

type itemStatusRequest struct {
	Status string `json:"status"`
}

// SetItemStatus handles PUT /api/inspections/{id}/items/{itemID}.
func (h *InspectionsHandler) SetItemStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	var req itemStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetItemStatus(r.Context(), h.DB, id, r.PathValue("itemID"), req.Status); err != nil {
		itemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item rated"})
}

type noteRequest struct {
	Note string `json:"note"`
}

// SetItemNote handles PUT /api/inspections/{id}/items/{itemID}/note.
func (h *InspectionsHandler) SetItemNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetItemNote(r.Context(), h.DB, id, r.PathValue("itemID"), req.Note); err != nil {
		itemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "note saved"})
}

// UploadItemPhoto handles PUT /api/inspections/{id}/items/{itemID}/photo.
func (h *InspectionsHandler) UploadItemPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	result, err := readPhoto(w, r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemPhoto(r.Context(), h.DB, id, r.PathValue("itemID"), result.Data, result.MIME); err != nil {
		itemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetItemPhoto handles GET /api/inspections/{id}/items/{itemID}/photo.
func (h *InspectionsHandler) GetItemPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	data, mime, err := store.GetItemPhoto(r.Context(), h.DB, id, r.PathValue("itemID"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// SetNote handles PUT /api/inspections/{id}/note.
func (h *InspectionsHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetOverallNote(r.Context(), h.DB, id, req.Note); err != nil {
		itemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "note saved"})
}

// SetSignature handles PUT /api/inspections/{id}/signatures/{kind}.
func (h *InspectionsHandler) SetSignature(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	kind := r.PathValue("kind")
	if kind != model.SignatureInspector && kind != model.SignatureSubject {
		jsonError(w, http.StatusBadRequest, "signature kind must be inspector or subject")
		return
	}

	result, err := readPhoto(w, r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetSignature(r.Context(), h.DB, id, kind, result.Data, result.MIME); err != nil {
		itemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "signature saved"})
}

// UploadPhoto handles PUT /api/inspections/{id}/photos/{slot}.
func (h *InspectionsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	result, err := readPhoto(w, r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetInspectionPhoto(r.Context(), h.DB, id, r.PathValue("slot"), result.Data, result.MIME); err != nil {
		itemError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/inspections/{id}/photos/{slot}.
func (h *InspectionsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	data, mime, err := store.GetInspectionPhoto(r.Context(), h.DB, id, r.PathValue("slot"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

type submitResponse struct {
	Inspection *model.Inspection `json:"inspection"`
	Message    string            `json:"message"`
}

// Submit handles POST /api/inspections/{id}/submit. The inspection is
// finalized locally, then queued for the central registry. If the
// registry is reachable the queued entry drains immediately; otherwise
// it stays in the outbox and drains when connectivity returns.
func (h *InspectionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid inspection id")
		return
	}

	inspection, err := store.SubmitInspection(r.Context(), h.DB, id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInspectionFinalized):
			jsonError(w, http.StatusConflict, "inspection already submitted")
		case errors.Is(err, store.ErrIncompleteChecklist):
			jsonError(w, http.StatusConflict, "all checklist items must be rated before submitting")
		case errors.Is(err, store.ErrSignatureRequired):
			jsonError(w, http.StatusConflict, "inspector signature required before submitting")
		default:
			slog.Error("failed to submit inspection", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to submit inspection")
		}
		return
	}

	payload, err := syncqueue.BuildPayload(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to build sync payload", "inspection", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "inspection submitted but could not be queued for sync")
		return
	}

	entry, err := h.Queue.Enqueue(r.Context(), id, payload)
	if err != nil {
		slog.Error("failed to enqueue submission", "inspection", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "inspection submitted but could not be queued for sync")
		return
	}

	h.Queue.DrainAndSweep(r.Context())

	synced, err := h.Queue.Submitted(r.Context(), entry.QueueID)
	if err != nil {
		slog.Warn("failed to check sync status", "queue_id", entry.QueueID, "error", err)
	}

	msg := "inspection submitted successfully"
	if !synced {
		msg = "inspection saved offline, will sync automatically"
	}
	jsonResponse(w, http.StatusOK, submitResponse{Inspection: inspection, Message: msg})
}

// readPhoto reads and normalizes an uploaded image from a multipart form.
func readPhoto(w http.ResponseWriter, r *http.Request) (*imaging.ProcessResult, error) {
	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		return nil, errors.New("file too large or invalid multipart form")
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		return nil, errors.New("photo file required")
	}
	defer file.Close()

	return imaging.Process(file)
}
