package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/munidigital/transporte/internal/model"
)

const vehicleColumns = `v.id, v.licensee_id, v.plate, v.make, v.model, v.year, v.seats,
	v.photo_mime, v.sticker_serial, v.sticker_issued_at, v.created_at, v.updated_at, v.deleted_at,
	l.holder_name, l.license_number, l.transport_type`

// scanVehicle scans one joined vehicle row.
func scanVehicle(row interface{ Scan(...any) error }) (*model.Vehicle, error) {
	v := &model.Vehicle{}
	var vmake, vmodel, photoMime sql.NullString
	var year, seats sql.NullInt64
	err := row.Scan(&v.ID, &v.LicenseeID, &v.Plate, &vmake, &vmodel, &year, &seats,
		&photoMime, &v.StickerSerial, &v.StickerIssuedAt, &v.CreatedAt, &v.UpdatedAt, &v.DeletedAt,
		&v.LicenseeName, &v.LicenseNumber, &v.TransportType)
	if err != nil {
		return nil, err
	}
	v.Make = vmake.String
	v.Model = vmodel.String
	v.Year = int(year.Int64)
	v.Seats = int(seats.Int64)
	v.PhotoMime = photoMime.String
	return v, nil
}

// CreateVehicle registers a vehicle under a licensee.
func CreateVehicle(ctx context.Context, db *sql.DB, licenseeID int64, plate, vmake, vmodel string, year, seats int) (*model.Vehicle, error) {
	licensee, err := GetLicensee(ctx, db, licenseeID)
	if err != nil {
		return nil, err
	}
	if licensee == nil || licensee.DeletedAt != nil {
		return nil, fmt.Errorf("creating vehicle: licensee %d not found", licenseeID)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO vehicles (licensee_id, plate, make, model, year, seats) VALUES (?, ?, ?, ?, ?, ?)`,
		licenseeID, plate, vmake, vmodel, year, seats,
	)
	if err != nil {
		return nil, fmt.Errorf("creating vehicle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting vehicle id: %w", err)
	}

	return GetVehicle(ctx, db, id)
}

// GetVehicle returns a vehicle by ID with licensee details joined.
func GetVehicle(ctx context.Context, db *sql.DB, id int64) (*model.Vehicle, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+`
		 FROM vehicles v JOIN licensees l ON l.id = v.licensee_id
		 WHERE v.id = ?`, id,
	)
	v, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting vehicle: %w", err)
	}
	return v, nil
}

// ListVehicles returns all non-deleted vehicles, optionally filtered by licensee.
func ListVehicles(ctx context.Context, db *sql.DB, licenseeID int64) ([]model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + `
	          FROM vehicles v JOIN licensees l ON l.id = v.licensee_id
	          WHERE v.deleted_at IS NULL`
	var args []any

	if licenseeID != 0 {
		query += ` AND v.licensee_id = ?`
		args = append(args, licenseeID)
	}
	query += ` ORDER BY v.plate`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

// UpdateVehicle updates a vehicle's registration details.
func UpdateVehicle(ctx context.Context, db *sql.DB, id int64, plate, vmake, vmodel string, year, seats int) error {
	_, err := db.ExecContext(ctx,
		`UPDATE vehicles SET plate = ?, make = ?, model = ?, year = ?, seats = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		plate, vmake, vmodel, year, seats, id,
	)
	if err != nil {
		return fmt.Errorf("updating vehicle: %w", err)
	}
	return nil
}

// DeleteVehicle soft-deletes a vehicle.
func DeleteVehicle(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE vehicles SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting vehicle: %w", err)
	}
	return nil
}

// SetVehiclePhoto sets a vehicle's registration photo.
func SetVehiclePhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE vehicles SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting vehicle photo: %w", err)
	}
	return nil
}

// GetVehiclePhoto returns a vehicle's photo data and MIME type.
func GetVehiclePhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM vehicles WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting vehicle photo: %w", err)
	}
	return photo, mime.String, nil
}

// IssueSticker assigns the next windshield sticker serial to a vehicle.
// The vehicle's most recent submitted inspection must have an approved verdict.
func IssueSticker(ctx context.Context, db *sql.DB, vehicleID int64) (*model.Vehicle, error) {
	var verdict sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT verdict FROM inspections
		 WHERE vehicle_id = ? AND status = 'submitted'
		 ORDER BY submitted_at DESC LIMIT 1`, vehicleID,
	).Scan(&verdict)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("issuing sticker: vehicle %d has no submitted inspection", vehicleID)
	}
	if err != nil {
		return nil, fmt.Errorf("checking inspection verdict: %w", err)
	}
	if verdict.String != model.VerdictApproved {
		return nil, fmt.Errorf("issuing sticker: latest inspection verdict is %q, not approved", verdict.String)
	}

	serial, err := NextStickerSerial(ctx, db)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE vehicles SET sticker_serial = ?, sticker_issued_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		serial, vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("issuing sticker: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("issuing sticker: vehicle %d not found", vehicleID)
	}

	return GetVehicle(ctx, db, vehicleID)
}
