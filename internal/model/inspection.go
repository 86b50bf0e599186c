package model

import "time"

// Inspection represents one technical inspection session for a vehicle.
// The transport type is copied from the licensee when the inspection is
// opened and fixed from then on, so the instantiated checklist does not
// change if the license is later recategorized.
type Inspection struct {
	ID            int64      `json:"id"`
	VehicleID     int64      `json:"vehicle_id"`
	LicenseeID    int64      `json:"licensee_id"`
	TransportType string     `json:"transport_type"`
	InspectorID   int64      `json:"inspector_id"`
	ScheduledFor  *time.Time `json:"scheduled_for,omitempty"`
	Status        string     `json:"status"`
	OverallNote   string     `json:"overall_note,omitempty"`
	Verdict       string     `json:"verdict,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`

	// Joined fields (not always populated).
	Plate         string `json:"plate,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
	InspectorName string `json:"inspector_name,omitempty"`
}

// Inspection statuses.
const (
	InspectionStatusOpen      = "open"
	InspectionStatusSubmitted = "submitted"
)

// Item statuses. Unrated is a distinct state, never conflated with pass.
const (
	ItemStatusUnrated = "unrated"
	ItemStatusPass    = "pass"
	ItemStatusWarning = "warning"
	ItemStatusFail    = "fail"
)

// Verdicts.
const (
	VerdictApproved    = "approved"
	VerdictConditional = "conditional"
	VerdictRejected    = "rejected"
)

// InspectionItem is the mutable per-item state of one checklist entry
// within an inspection. ItemID, Label, Category and Position come from
// the checklist catalog at open time and never change afterwards.
type InspectionItem struct {
	InspectionID int64  `json:"inspection_id"`
	ItemID       string `json:"item_id"`
	Label        string `json:"label"`
	Category     string `json:"category"`
	Position     int    `json:"position"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
	PhotoMime    string `json:"photo_mime,omitempty"`
}

// Signature kinds.
const (
	SignatureInspector = "inspector"
	SignatureSubject   = "subject"
)

// Vehicle photo slots. Extra photos use free-form slot names.
const (
	PhotoSlotFront = "front"
	PhotoSlotRear  = "rear"
	PhotoSlotLeft  = "left"
	PhotoSlotRight = "right"
)

// InspectionPhoto is one named vehicle photo attached to an inspection.
type InspectionPhoto struct {
	InspectionID int64  `json:"inspection_id"`
	Slot         string `json:"slot"`
	Mime         string `json:"mime"`
}
