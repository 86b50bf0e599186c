package model

import "time"

// Vehicle represents a vehicle registered under a licensee.
type Vehicle struct {
	ID              int64      `json:"id"`
	LicenseeID      int64      `json:"licensee_id"`
	Plate           string     `json:"plate"`
	Make            string     `json:"make,omitempty"`
	Model           string     `json:"model,omitempty"`
	Year            int        `json:"year,omitempty"`
	Seats           int        `json:"seats,omitempty"`
	PhotoMime       string     `json:"photo_mime,omitempty"`
	StickerSerial   *int64     `json:"sticker_serial,omitempty"`
	StickerIssuedAt *time.Time `json:"sticker_issued_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	LicenseeName  string `json:"licensee_name,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
	TransportType string `json:"transport_type,omitempty"`
}
