package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/munidigital/transporte/internal/store"
)

// VehiclesHandler handles vehicle CRUD and sticker endpoints.
type VehiclesHandler struct {
	DB *sql.DB
}

type vehicleRequest struct {
	LicenseeID int64  `json:"licensee_id"`
	Plate      string `json:"plate"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Year       int    `json:"year"`
	Seats      int    `json:"seats"`
}

// Create handles POST /api/vehicles.
func (h *VehiclesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LicenseeID == 0 || req.Plate == "" {
		jsonError(w, http.StatusBadRequest, "licensee_id and plate required")
		return
	}

	licensee, err := store.GetLicensee(r.Context(), h.DB, req.LicenseeID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to look up licensee")
		return
	}
	if licensee == nil {
		jsonError(w, http.StatusNotFound, "licensee not found")
		return
	}

	vehicle, err := store.CreateVehicle(r.Context(), h.DB, req.LicenseeID, req.Plate, req.Make, req.Model, req.Year, req.Seats)
	if err != nil {
		slog.Error("failed to create vehicle", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create vehicle")
		return
	}
	jsonResponse(w, http.StatusCreated, vehicle)
}

// Get handles GET /api/vehicles/{id}.
func (h *VehiclesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	vehicle, err := store.GetVehicle(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get vehicle")
		return
	}
	if vehicle == nil {
		jsonError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	jsonResponse(w, http.StatusOK, vehicle)
}

// Update handles PUT /api/vehicles/{id}.
func (h *VehiclesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Plate == "" {
		jsonError(w, http.StatusBadRequest, "plate required")
		return
	}

	if err := store.UpdateVehicle(r.Context(), h.DB, id, req.Plate, req.Make, req.Model, req.Year, req.Seats); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update vehicle")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "vehicle updated"})
}

// Delete handles DELETE /api/vehicles/{id}.
func (h *VehiclesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	if err := store.DeleteVehicle(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete vehicle")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "vehicle deleted"})
}

// UploadPhoto handles PUT /api/vehicles/{id}/photo.
func (h *VehiclesHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	result, err := readPhoto(w, r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetVehiclePhoto(r.Context(), h.DB, id, result.Data, result.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/vehicles/{id}/photo.
func (h *VehiclesHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	data, mime, err := store.GetVehiclePhoto(r.Context(), h.DB, id)
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

// IssueSticker handles POST /api/vehicles/{id}/sticker.
func (h *VehiclesHandler) IssueSticker(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	vehicle, err := store.IssueSticker(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, vehicle)
}
