package api

import (
	"database/sql"
	"net/http"

	"github.com/munidigital/transporte/internal/model"
	"github.com/munidigital/transporte/internal/syncqueue"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, queue *syncqueue.Queue) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	licenseesHandler := &LicenseesHandler{DB: db}
	vehiclesHandler := &VehiclesHandler{DB: db}
	inspectionsHandler := &InspectionsHandler{DB: db, Queue: queue}
	syncHandler := &SyncHandler{Queue: queue}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireSupervisor := RequireRole(model.RoleSupervisor)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Licensees: read (all roles), write (supervisor+).
	mux.Handle("GET /api/licensees", authMW(http.HandlerFunc(licenseesHandler.List)))
	mux.Handle("POST /api/licensees", authMW(requireSupervisor(http.HandlerFunc(licenseesHandler.Create))))
	mux.Handle("GET /api/licensees/{id}", authMW(http.HandlerFunc(licenseesHandler.Get)))
	mux.Handle("PUT /api/licensees/{id}", authMW(requireSupervisor(http.HandlerFunc(licenseesHandler.Update))))
	mux.Handle("DELETE /api/licensees/{id}", authMW(requireSupervisor(http.HandlerFunc(licenseesHandler.Delete))))
	mux.Handle("GET /api/licensees/{id}/vehicles", authMW(http.HandlerFunc(licenseesHandler.GetVehicles)))

	// Vehicles: read (all roles), write (supervisor+). Sticker issuance
	// is a supervisor action since it commits a serial from the counter.
	mux.Handle("POST /api/vehicles", authMW(requireSupervisor(http.HandlerFunc(vehiclesHandler.Create))))
	mux.Handle("GET /api/vehicles/{id}", authMW(http.HandlerFunc(vehiclesHandler.Get)))
	mux.Handle("PUT /api/vehicles/{id}", authMW(requireSupervisor(http.HandlerFunc(vehiclesHandler.Update))))
	mux.Handle("DELETE /api/vehicles/{id}", authMW(requireSupervisor(http.HandlerFunc(vehiclesHandler.Delete))))
	mux.Handle("PUT /api/vehicles/{id}/photo", authMW(http.HandlerFunc(vehiclesHandler.UploadPhoto)))
	mux.Handle("GET /api/vehicles/{id}/photo", authMW(http.HandlerFunc(vehiclesHandler.GetPhoto)))
	mux.Handle("POST /api/vehicles/{id}/sticker", authMW(requireSupervisor(http.HandlerFunc(vehiclesHandler.IssueSticker))))

	// Inspections (all roles; inspectors do the field work).
	mux.Handle("POST /api/inspections", authMW(http.HandlerFunc(inspectionsHandler.Open)))
	mux.Handle("GET /api/inspections", authMW(http.HandlerFunc(inspectionsHandler.List)))
	mux.Handle("GET /api/inspections/{id}", authMW(http.HandlerFunc(inspectionsHandler.Get)))
	mux.Handle("PUT /api/inspections/{id}/items/{itemID}", authMW(http.HandlerFunc(inspectionsHandler.SetItemStatus)))
	mux.Handle("PUT /api/inspections/{id}/items/{itemID}/note", authMW(http.HandlerFunc(inspectionsHandler.SetItemNote)))
	mux.Handle("PUT /api/inspections/{id}/items/{itemID}/photo", authMW(http.HandlerFunc(inspectionsHandler.UploadItemPhoto)))
	mux.Handle("GET /api/inspections/{id}/items/{itemID}/photo", authMW(http.HandlerFunc(inspectionsHandler.GetItemPhoto)))
	mux.Handle("PUT /api/inspections/{id}/note", authMW(http.HandlerFunc(inspectionsHandler.SetNote)))
	mux.Handle("PUT /api/inspections/{id}/signatures/{kind}", authMW(http.HandlerFunc(inspectionsHandler.SetSignature)))
	mux.Handle("PUT /api/inspections/{id}/photos/{slot}", authMW(http.HandlerFunc(inspectionsHandler.UploadPhoto)))
	mux.Handle("GET /api/inspections/{id}/photos/{slot}", authMW(http.HandlerFunc(inspectionsHandler.GetPhoto)))
	mux.Handle("POST /api/inspections/{id}/submit", authMW(http.HandlerFunc(inspectionsHandler.Submit)))

	// Sync queue.
	mux.Handle("GET /api/sync/status", authMW(http.HandlerFunc(syncHandler.Status)))
	mux.Handle("POST /api/sync/drain", authMW(http.HandlerFunc(syncHandler.Drain)))

	return mux
}
