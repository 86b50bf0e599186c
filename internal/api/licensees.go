package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/munidigital/transporte/internal/model"
	"github.com/munidigital/transporte/internal/store"
)

// LicenseesHandler handles licensee CRUD endpoints.
type LicenseesHandler struct {
	DB *sql.DB
}

type createLicenseeRequest struct {
	LicenseNumber string `json:"license_number"`
	HolderName    string `json:"holder_name"`
	DNI           string `json:"dni"`
	TransportType string `json:"transport_type"`
}

type updateLicenseeRequest struct {
	HolderName string `json:"holder_name"`
	DNI        string `json:"dni"`
	Status     string `json:"status"`
}

func validTransportType(t string) bool {
	return t == model.TransportScholastic || t == model.TransportRemise
}

func validLicenseeStatus(s string) bool {
	return s == model.LicenseeStatusActive || s == model.LicenseeStatusSuspended || s == model.LicenseeStatusExpired
}

// List handles GET /api/licensees.
func (h *LicenseesHandler) List(w http.ResponseWriter, r *http.Request) {
	transportType := r.URL.Query().Get("transport_type")
	status := r.URL.Query().Get("status")

	licensees, err := store.ListLicensees(r.Context(), h.DB, transportType, status)
	if err != nil {
		slog.Error("failed to list licensees", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list licensees")
		return
	}
	if licensees == nil {
		licensees = []model.Licensee{}
	}
	jsonResponse(w, http.StatusOK, licensees)
}

// Create handles POST /api/licensees.
func (h *LicenseesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLicenseeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.LicenseNumber == "" || req.HolderName == "" {
		jsonError(w, http.StatusBadRequest, "license_number and holder_name required")
		return
	}
	if !validTransportType(req.TransportType) {
		jsonError(w, http.StatusBadRequest, "transport_type must be scholastic or remise")
		return
	}

	licensee, err := store.CreateLicensee(r.Context(), h.DB, req.LicenseNumber, req.HolderName, req.DNI, req.TransportType)
	if err != nil {
		slog.Error("failed to create licensee", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create licensee")
		return
	}

	jsonResponse(w, http.StatusCreated, licensee)
}

// Get handles GET /api/licensees/{id}.
func (h *LicenseesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid licensee id")
		return
	}

	licensee, err := store.GetLicensee(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get licensee")
		return
	}
	if licensee == nil {
		jsonError(w, http.StatusNotFound, "licensee not found")
		return
	}
	jsonResponse(w, http.StatusOK, licensee)
}

// Update handles PUT /api/licensees/{id}.
func (h *LicenseesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid licensee id")
		return
	}

	var req updateLicenseeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HolderName == "" || !validLicenseeStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "holder_name and a valid status required")
		return
	}

	if err := store.UpdateLicensee(r.Context(), h.DB, id, req.HolderName, req.DNI, req.Status); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update licensee")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "licensee updated"})
}

// Delete handles DELETE /api/licensees/{id}.
func (h *LicenseesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid licensee id")
		return
	}

	if err := store.DeleteLicensee(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "licensee deleted"})
}

// GetVehicles handles GET /api/licensees/{id}/vehicles.
func (h *LicenseesHandler) GetVehicles(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid licensee id")
		return
	}

	vehicles, err := store.ListVehicles(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list vehicles")
		return
	}
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}
	jsonResponse(w, http.StatusOK, vehicles)
}
