package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/munidigital/transporte/internal/checklist"
	"github.com/munidigital/transporte/internal/model"
)

// Sentinel errors surfaced to handlers for user-facing mapping.
var (
	// ErrInspectionFinalized signals a mutation on an already submitted inspection.
	ErrInspectionFinalized = errors.New("inspection already submitted")

	// ErrItemNotFound signals a rating/note/photo operation on an item id
	// that is not part of the inspection's instantiated checklist.
	ErrItemNotFound = errors.New("checklist item not found")

	// ErrInvalidStatus signals a status outside the four-value enum.
	ErrInvalidStatus = errors.New("invalid item status")

	// ErrIncompleteChecklist signals a submission attempt with unrated items.
	ErrIncompleteChecklist = errors.New("checklist has unrated items")

	// ErrSignatureRequired signals a submission attempt without the
	// inspector's signature.
	ErrSignatureRequired = errors.New("inspector signature required")
)

const inspectionColumns = `i.id, i.vehicle_id, i.licensee_id, i.transport_type, i.inspector_id,
	i.scheduled_for, i.status, i.overall_note, i.verdict, i.created_at, i.submitted_at,
	v.plate, l.license_number, u.username`

// scanInspection scans one joined inspection row.
func scanInspection(row interface{ Scan(...any) error }) (*model.Inspection, error) {
	insp := &model.Inspection{}
	var overallNote, verdict sql.NullString
	err := row.Scan(&insp.ID, &insp.VehicleID, &insp.LicenseeID, &insp.TransportType, &insp.InspectorID,
		&insp.ScheduledFor, &insp.Status, &overallNote, &verdict, &insp.CreatedAt, &insp.SubmittedAt,
		&insp.Plate, &insp.LicenseNumber, &insp.InspectorName)
	if err != nil {
		return nil, err
	}
	insp.OverallNote = overallNote.String
	insp.Verdict = verdict.String
	return insp, nil
}

// OpenInspection starts a new inspection session for a vehicle. The
// checklist is instantiated from the catalog for the licensee's transport
// type in a single transaction, so an inspection always has its full item
// set or does not exist at all.
func OpenInspection(ctx context.Context, db *sql.DB, vehicleID, inspectorID int64, scheduledFor *time.Time) (*model.Inspection, error) {
	vehicle, err := GetVehicle(ctx, db, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil || vehicle.DeletedAt != nil {
		return nil, fmt.Errorf("opening inspection: vehicle %d not found", vehicleID)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("opening inspection: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO inspections (vehicle_id, licensee_id, transport_type, inspector_id, scheduled_for)
		 VALUES (?, ?, ?, ?, ?)`,
		vehicleID, vehicle.LicenseeID, vehicle.TransportType, inspectorID, scheduledFor,
	)
	if err != nil {
		return nil, fmt.Errorf("creating inspection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting inspection id: %w", err)
	}

	for position, def := range checklist.Catalog(vehicle.TransportType) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO inspection_items (inspection_id, item_id, label, category, position)
			 VALUES (?, ?, ?, ?, ?)`,
			id, def.ID, def.Label, def.Category, position,
		)
		if err != nil {
			return nil, fmt.Errorf("instantiating checklist item %q: %w", def.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("opening inspection: %w", err)
	}

	return GetInspection(ctx, db, id)
}

// GetInspection returns an inspection by ID with vehicle, license and
// inspector details joined.
func GetInspection(ctx context.Context, db *sql.DB, id int64) (*model.Inspection, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+inspectionColumns+`
		 FROM inspections i
		 JOIN vehicles v ON v.id = i.vehicle_id
		 JOIN licensees l ON l.id = i.licensee_id
		 JOIN users u ON u.id = i.inspector_id
		 WHERE i.id = ?`, id,
	)
	insp, err := scanInspection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inspection: %w", err)
	}
	return insp, nil
}

// ListInspections returns inspections, optionally filtered by vehicle
// and/or status, newest first.
func ListInspections(ctx context.Context, db *sql.DB, vehicleID int64, status string) ([]model.Inspection, error) {
	query := `SELECT ` + inspectionColumns + `
	          FROM inspections i
	          JOIN vehicles v ON v.id = i.vehicle_id
	          JOIN licensees l ON l.id = i.licensee_id
	          JOIN users u ON u.id = i.inspector_id
	          WHERE 1=1`
	var args []any

	if vehicleID != 0 {
		query += ` AND i.vehicle_id = ?`
		args = append(args, vehicleID)
	}
	if status != "" {
		query += ` AND i.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inspections: %w", err)
	}
	defer rows.Close()

	var inspections []model.Inspection
	for rows.Next() {
		insp, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inspection: %w", err)
		}
		inspections = append(inspections, *insp)
	}
	return inspections, rows.Err()
}

// GetInspectionItems returns an inspection's item states in catalog order.
func GetInspectionItems(ctx context.Context, db *sql.DB, inspectionID int64) ([]model.InspectionItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT inspection_id, item_id, label, category, position, status, note, photo_mime
		 FROM inspection_items WHERE inspection_id = ? ORDER BY position`, inspectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inspection items: %w", err)
	}
	defer rows.Close()

	var items []model.InspectionItem
	for rows.Next() {
		var item model.InspectionItem
		var note, photoMime sql.NullString
		if err := rows.Scan(&item.InspectionID, &item.ItemID, &item.Label, &item.Category,
			&item.Position, &item.Status, &note, &photoMime); err != nil {
			return nil, fmt.Errorf("scanning inspection item: %w", err)
		}
		item.Note = note.String
		item.PhotoMime = photoMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// ensureOpen verifies an inspection exists and has not been finalized.
func ensureOpen(ctx context.Context, db *sql.DB, inspectionID int64) error {
	var status string
	err := db.QueryRowContext(ctx,
		`SELECT status FROM inspections WHERE id = ?`, inspectionID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("inspection %d not found", inspectionID)
	}
	if err != nil {
		return fmt.Errorf("checking inspection status: %w", err)
	}
	if status != model.InspectionStatusOpen {
		return ErrInspectionFinalized
	}
	return nil
}

// SetItemStatus rates one checklist item. The status must be one of the
// four enumerated values; rating does not touch the item's note or photo.
func SetItemStatus(ctx context.Context, db *sql.DB, inspectionID int64, itemID, status string) error {
	if !checklist.ValidStatus(status) {
		return ErrInvalidStatus
	}
	if err := ensureOpen(ctx, db, inspectionID); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE inspection_items SET status = ? WHERE inspection_id = ? AND item_id = ?`,
		status, inspectionID, itemID,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SetItemNote sets the free-text note of one checklist item. Notes are
// independent of rating and may be set on an unrated item.
func SetItemNote(ctx context.Context, db *sql.DB, inspectionID int64, itemID, note string) error {
	if err := ensureOpen(ctx, db, inspectionID); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE inspection_items SET note = ? WHERE inspection_id = ? AND item_id = ?`,
		note, inspectionID, itemID,
	)
	if err != nil {
		return fmt.Errorf("setting item note: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SetItemPhoto attaches an evidence photo to one checklist item.
func SetItemPhoto(ctx context.Context, db *sql.DB, inspectionID int64, itemID string, photo []byte, mime string) error {
	if err := ensureOpen(ctx, db, inspectionID); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE inspection_items SET photo = ?, photo_mime = ? WHERE inspection_id = ? AND item_id = ?`,
		photo, mime, inspectionID, itemID,
	)
	if err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// GetItemPhoto returns one item's evidence photo data and MIME type.
func GetItemPhoto(ctx context.Context, db *sql.DB, inspectionID int64, itemID string) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM inspection_items WHERE inspection_id = ? AND item_id = ?`,
		inspectionID, itemID,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", ErrItemNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}

// SetOverallNote sets the inspection's free-text summary note.
func SetOverallNote(ctx context.Context, db *sql.DB, inspectionID int64, note string) error {
	if err := ensureOpen(ctx, db, inspectionID); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx,
		`UPDATE inspections SET overall_note = ? WHERE id = ?`,
		note, inspectionID,
	)
	if err != nil {
		return fmt.Errorf("setting overall note: %w", err)
	}
	return nil
}

// SetSignature stores the inspector or subject signature image.
func SetSignature(ctx context.Context, db *sql.DB, inspectionID int64, kind string, data []byte, mime string) error {
	if err := ensureOpen(ctx, db, inspectionID); err != nil {
		return err
	}

	var query string
	switch kind {
	case model.SignatureInspector:
		query = `UPDATE inspections SET inspector_signature = ?, inspector_sig_mime = ? WHERE id = ?`
	case model.SignatureSubject:
		query = `UPDATE inspections SET subject_signature = ?, subject_sig_mime = ? WHERE id = ?`
	default:
		return fmt.Errorf("unknown signature kind %q", kind)
	}

	_, err := db.ExecContext(ctx, query, data, mime, inspectionID)
	if err != nil {
		return fmt.Errorf("setting %s signature: %w", kind, err)
	}
	return nil
}

// GetSignature returns a signature image and MIME type, or nil if unsigned.
func GetSignature(ctx context.Context, db *sql.DB, inspectionID int64, kind string) ([]byte, string, error) {
	var column, mimeColumn string
	switch kind {
	case model.SignatureInspector:
		column, mimeColumn = "inspector_signature", "inspector_sig_mime"
	case model.SignatureSubject:
		column, mimeColumn = "subject_signature", "subject_sig_mime"
	default:
		return nil, "", fmt.Errorf("unknown signature kind %q", kind)
	}

	var data []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+column+`, `+mimeColumn+` FROM inspections WHERE id = ?`, inspectionID,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("inspection %d not found", inspectionID)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting %s signature: %w", kind, err)
	}
	return data, mime.String, nil
}

// SetInspectionPhoto stores a named vehicle photo slot (front, rear, left,
// right or a free-form extra slot). Re-uploading a slot replaces it.
func SetInspectionPhoto(ctx context.Context, db *sql.DB, inspectionID int64, slot string, photo []byte, mime string) error {
	if err := ensureOpen(ctx, db, inspectionID); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO inspection_photos (inspection_id, slot, photo, mime) VALUES (?, ?, ?, ?)
		 ON CONFLICT (inspection_id, slot) DO UPDATE SET photo = excluded.photo, mime = excluded.mime`,
		inspectionID, slot, photo, mime,
	)
	if err != nil {
		return fmt.Errorf("setting inspection photo %q: %w", slot, err)
	}
	return nil
}

// ListInspectionPhotos returns the filled photo slots (without image data).
func ListInspectionPhotos(ctx context.Context, db *sql.DB, inspectionID int64) ([]model.InspectionPhoto, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT inspection_id, slot, mime FROM inspection_photos WHERE inspection_id = ? ORDER BY slot`,
		inspectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inspection photos: %w", err)
	}
	defer rows.Close()

	var photos []model.InspectionPhoto
	for rows.Next() {
		var p model.InspectionPhoto
		if err := rows.Scan(&p.InspectionID, &p.Slot, &p.Mime); err != nil {
			return nil, fmt.Errorf("scanning inspection photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// GetInspectionPhoto returns one photo slot's image data and MIME type.
func GetInspectionPhoto(ctx context.Context, db *sql.DB, inspectionID int64, slot string) ([]byte, string, error) {
	var photo []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT photo, mime FROM inspection_photos WHERE inspection_id = ? AND slot = ?`,
		inspectionID, slot,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting inspection photo: %w", err)
	}
	return photo, mime, nil
}

// SubmitInspection finalizes an inspection: every item must be rated and
// the inspector must have signed. The verdict is derived from the item
// states and the record becomes immutable.
func SubmitInspection(ctx context.Context, db *sql.DB, inspectionID int64) (*model.Inspection, error) {
	if err := ensureOpen(ctx, db, inspectionID); err != nil {
		return nil, err
	}

	items, err := GetInspectionItems(ctx, db, inspectionID)
	if err != nil {
		return nil, err
	}
	if !checklist.ComputeProgress(items).Complete() {
		return nil, ErrIncompleteChecklist
	}

	signature, _, err := GetSignature(ctx, db, inspectionID, model.SignatureInspector)
	if err != nil {
		return nil, err
	}
	if len(signature) == 0 {
		return nil, ErrSignatureRequired
	}

	verdict := checklist.DeriveVerdict(items)
	_, err = db.ExecContext(ctx,
		`UPDATE inspections SET status = 'submitted', verdict = ?, submitted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'open'`,
		verdict, inspectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("submitting inspection: %w", err)
	}

	return GetInspection(ctx, db, inspectionID)
}
