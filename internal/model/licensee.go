package model

import "time"

// Licensee represents the holder of a municipal transport operating license.
type Licensee struct {
	ID            int64      `json:"id"`
	LicenseNumber string     `json:"license_number"`
	HolderName    string     `json:"holder_name"`
	DNI           string     `json:"dni,omitempty"`
	TransportType string     `json:"transport_type"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// Transport types. The transport type of a licensee determines which
// checklist items apply to its vehicles.
const (
	TransportScholastic = "scholastic"
	TransportRemise     = "remise"
)

// Licensee statuses.
const (
	LicenseeStatusActive    = "active"
	LicenseeStatusSuspended = "suspended"
	LicenseeStatusExpired   = "expired"
)
