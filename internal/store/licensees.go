package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/munidigital/transporte/internal/model"
)

// CreateLicensee creates a new transport license holder.
func CreateLicensee(ctx context.Context, db *sql.DB, licenseNumber, holderName, dni, transportType string) (*model.Licensee, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO licensees (license_number, holder_name, dni, transport_type) VALUES (?, ?, ?, ?)`,
		licenseNumber, holderName, dni, transportType,
	)
	if err != nil {
		return nil, fmt.Errorf("creating licensee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting licensee id: %w", err)
	}

	return GetLicensee(ctx, db, id)
}

// GetLicensee returns a licensee by ID.
func GetLicensee(ctx context.Context, db *sql.DB, id int64) (*model.Licensee, error) {
	l := &model.Licensee{}
	var dni sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, license_number, holder_name, dni, transport_type, status, created_at, updated_at, deleted_at
		 FROM licensees WHERE id = ?`, id,
	).Scan(&l.ID, &l.LicenseNumber, &l.HolderName, &dni, &l.TransportType, &l.Status, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting licensee: %w", err)
	}
	l.DNI = dni.String
	return l, nil
}

// ListLicensees returns all non-deleted licensees, optionally filtered by
// transport type and/or status.
func ListLicensees(ctx context.Context, db *sql.DB, transportType, status string) ([]model.Licensee, error) {
	query := `SELECT id, license_number, holder_name, dni, transport_type, status, created_at, updated_at, deleted_at
	          FROM licensees WHERE deleted_at IS NULL`
	var args []any

	if transportType != "" {
		query += ` AND transport_type = ?`
		args = append(args, transportType)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY license_number`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing licensees: %w", err)
	}
	defer rows.Close()

	var licensees []model.Licensee
	for rows.Next() {
		var l model.Licensee
		var dni sql.NullString
		if err := rows.Scan(&l.ID, &l.LicenseNumber, &l.HolderName, &dni, &l.TransportType, &l.Status, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning licensee: %w", err)
		}
		l.DNI = dni.String
		licensees = append(licensees, l)
	}
	return licensees, rows.Err()
}

// UpdateLicensee updates a licensee's holder details and status.
// The transport type is deliberately not updatable here: recategorizing a
// license is a new license in municipal terms.
func UpdateLicensee(ctx context.Context, db *sql.DB, id int64, holderName, dni, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE licensees SET holder_name = ?, dni = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		holderName, dni, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating licensee: %w", err)
	}
	return nil
}

// DeleteLicensee soft-deletes a licensee. Fails if it still has active vehicles.
func DeleteLicensee(ctx context.Context, db *sql.DB, id int64) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vehicles WHERE licensee_id = ? AND deleted_at IS NULL`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking licensee vehicles: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("cannot delete licensee: still has %d registered vehicles", count)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE licensees SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting licensee: %w", err)
	}
	return nil
}
