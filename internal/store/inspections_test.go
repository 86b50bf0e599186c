package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/munidigital/transporte/internal/db"
	"github.com/munidigital/transporte/internal/model"
)

// openInspection creates a user, licensee and vehicle of the given
// transport type and opens an inspection for it.
func openInspection(t *testing.T, database *sql.DB, transportType string) *model.Inspection {
	t.Helper()
	ctx := context.Background()

	inspector, err := CreateUser(ctx, database, "inspector-"+transportType, "hash", model.RoleInspector)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	licensee, err := CreateLicensee(ctx, database, "LIC-"+transportType, "Maria Lopez", "27999888", transportType)
	if err != nil {
		t.Fatalf("CreateLicensee: %v", err)
	}
	vehicle, err := CreateVehicle(ctx, database, licensee.ID, "PLATE-"+transportType, "Mercedes", "Sprinter", 2019, 20)
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	insp, err := OpenInspection(ctx, database, vehicle.ID, inspector.ID, nil)
	if err != nil {
		t.Fatalf("OpenInspection: %v", err)
	}
	return insp
}

// rateAll sets every item of an inspection to the given status.
func rateAll(t *testing.T, database *sql.DB, inspectionID int64, status string) {
	t.Helper()
	ctx := context.Background()
	items, err := GetInspectionItems(ctx, database, inspectionID)
	if err != nil {
		t.Fatalf("GetInspectionItems: %v", err)
	}
	for _, item := range items {
		if err := SetItemStatus(ctx, database, inspectionID, item.ItemID, status); err != nil {
			t.Fatalf("SetItemStatus %s: %v", item.ItemID, err)
		}
	}
}

func TestOpenInspectionInstantiatesChecklist(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	scholastic := openInspection(t, database, model.TransportScholastic)
	items, err := GetInspectionItems(ctx, database, scholastic.ID)
	if err != nil {
		t.Fatalf("GetInspectionItems: %v", err)
	}
	if len(items) != 18 {
		t.Errorf("expected 18 scholastic items, got %d", len(items))
	}
	for i, item := range items {
		if item.Position != i {
			t.Errorf("item %s: expected position %d, got %d", item.ItemID, i, item.Position)
		}
		if item.Status != model.ItemStatusUnrated {
			t.Errorf("item %s: expected unrated, got %s", item.ItemID, item.Status)
		}
	}

	remise := openInspection(t, database, model.TransportRemise)
	items, _ = GetInspectionItems(ctx, database, remise.ID)
	if len(items) != 10 {
		t.Errorf("expected 10 remise items, got %d", len(items))
	}
}

func TestSetItemStatusValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	insp := openInspection(t, database, model.TransportRemise)

	if err := SetItemStatus(ctx, database, insp.ID, "brakes", model.ItemStatusFail); err != nil {
		t.Fatalf("SetItemStatus: %v", err)
	}

	err := SetItemStatus(ctx, database, insp.ID, "brakes", "broken")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	err = SetItemStatus(ctx, database, insp.ID, "taximeter", model.ItemStatusPass)
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound for unknown item, got %v", err)
	}

	// A scholastic-only item is not part of a remise checklist.
	err = SetItemStatus(ctx, database, insp.ID, "school-signage", model.ItemStatusPass)
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound for out-of-catalog item, got %v", err)
	}
}

func TestItemNoteAndPhotoIndependentOfRating(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	insp := openInspection(t, database, model.TransportRemise)

	// Note and photo on a still-unrated item.
	if err := SetItemNote(ctx, database, insp.ID, "lights", "left indicator slow"); err != nil {
		t.Fatalf("SetItemNote: %v", err)
	}
	if err := SetItemPhoto(ctx, database, insp.ID, "lights", []byte{0xff, 0xd8}, "image/jpeg"); err != nil {
		t.Fatalf("SetItemPhoto: %v", err)
	}

	items, _ := GetInspectionItems(ctx, database, insp.ID)
	for _, item := range items {
		if item.ItemID != "lights" {
			continue
		}
		if item.Status != model.ItemStatusUnrated {
			t.Errorf("note/photo must not change status, got %s", item.Status)
		}
		if item.Note != "left indicator slow" {
			t.Errorf("unexpected note %q", item.Note)
		}
		if item.PhotoMime != "image/jpeg" {
			t.Errorf("unexpected photo mime %q", item.PhotoMime)
		}
	}

	photo, mime, err := GetItemPhoto(ctx, database, insp.ID, "lights")
	if err != nil {
		t.Fatalf("GetItemPhoto: %v", err)
	}
	if len(photo) == 0 || mime != "image/jpeg" {
		t.Errorf("unexpected photo %d bytes, mime %q", len(photo), mime)
	}
}

func TestSubmitGates(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	insp := openInspection(t, database, model.TransportRemise)

	// Incomplete checklist blocks submission.
	_, err := SubmitInspection(ctx, database, insp.ID)
	if !errors.Is(err, ErrIncompleteChecklist) {
		t.Errorf("expected ErrIncompleteChecklist, got %v", err)
	}

	rateAll(t, database, insp.ID, model.ItemStatusPass)

	// Complete but unsigned still blocks.
	_, err = SubmitInspection(ctx, database, insp.ID)
	if !errors.Is(err, ErrSignatureRequired) {
		t.Errorf("expected ErrSignatureRequired, got %v", err)
	}

	if err := SetSignature(ctx, database, insp.ID, model.SignatureInspector, []byte{0xff, 0xd8}, "image/jpeg"); err != nil {
		t.Fatalf("SetSignature: %v", err)
	}

	submitted, err := SubmitInspection(ctx, database, insp.ID)
	if err != nil {
		t.Fatalf("SubmitInspection: %v", err)
	}
	if submitted.Status != model.InspectionStatusSubmitted {
		t.Errorf("expected submitted status, got %s", submitted.Status)
	}
	if submitted.Verdict != model.VerdictApproved {
		t.Errorf("expected approved verdict, got %s", submitted.Verdict)
	}
	if submitted.SubmittedAt == nil {
		t.Error("expected submitted_at set")
	}
}

func TestSubmitVerdicts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		statuses map[string]string // overrides on top of all-pass
		want     string
	}{
		{"one fail rejects", map[string]string{"brakes": model.ItemStatusFail}, model.VerdictRejected},
		{"two warnings approved", map[string]string{"tires": model.ItemStatusWarning, "wipers": model.ItemStatusWarning}, model.VerdictApproved},
		{"three warnings conditional", map[string]string{"tires": model.ItemStatusWarning, "wipers": model.ItemStatusWarning, "mirrors": model.ItemStatusWarning}, model.VerdictConditional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := db.NewTestDB(t)
			insp := openInspection(t, database, model.TransportScholastic)
			rateAll(t, database, insp.ID, model.ItemStatusPass)
			for itemID, status := range tt.statuses {
				if err := SetItemStatus(ctx, database, insp.ID, itemID, status); err != nil {
					t.Fatalf("SetItemStatus %s: %v", itemID, err)
				}
			}
			if err := SetSignature(ctx, database, insp.ID, model.SignatureInspector, []byte{0xff, 0xd8}, "image/jpeg"); err != nil {
				t.Fatalf("SetSignature: %v", err)
			}

			submitted, err := SubmitInspection(ctx, database, insp.ID)
			if err != nil {
				t.Fatalf("SubmitInspection: %v", err)
			}
			if submitted.Verdict != tt.want {
				t.Errorf("expected %s, got %s", tt.want, submitted.Verdict)
			}
		})
	}
}

func TestSubmittedInspectionImmutable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	insp := openInspection(t, database, model.TransportRemise)

	rateAll(t, database, insp.ID, model.ItemStatusPass)
	SetSignature(ctx, database, insp.ID, model.SignatureInspector, []byte{0xff, 0xd8}, "image/jpeg")
	if _, err := SubmitInspection(ctx, database, insp.ID); err != nil {
		t.Fatalf("SubmitInspection: %v", err)
	}

	if err := SetItemStatus(ctx, database, insp.ID, "brakes", model.ItemStatusFail); !errors.Is(err, ErrInspectionFinalized) {
		t.Errorf("SetItemStatus after submit: expected ErrInspectionFinalized, got %v", err)
	}
	if err := SetItemNote(ctx, database, insp.ID, "brakes", "late note"); !errors.Is(err, ErrInspectionFinalized) {
		t.Errorf("SetItemNote after submit: expected ErrInspectionFinalized, got %v", err)
	}
	if err := SetOverallNote(ctx, database, insp.ID, "late note"); !errors.Is(err, ErrInspectionFinalized) {
		t.Errorf("SetOverallNote after submit: expected ErrInspectionFinalized, got %v", err)
	}
	if err := SetInspectionPhoto(ctx, database, insp.ID, model.PhotoSlotRear, []byte{0xff, 0xd8}, "image/jpeg"); !errors.Is(err, ErrInspectionFinalized) {
		t.Errorf("SetInspectionPhoto after submit: expected ErrInspectionFinalized, got %v", err)
	}
	if _, err := SubmitInspection(ctx, database, insp.ID); !errors.Is(err, ErrInspectionFinalized) {
		t.Errorf("double submit: expected ErrInspectionFinalized, got %v", err)
	}
}

func TestInspectionPhotoSlots(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	insp := openInspection(t, database, model.TransportRemise)

	for _, slot := range []string{model.PhotoSlotFront, model.PhotoSlotRear, "extra-1"} {
		if err := SetInspectionPhoto(ctx, database, insp.ID, slot, []byte{0xff, 0xd8, 0x01}, "image/jpeg"); err != nil {
			t.Fatalf("SetInspectionPhoto %s: %v", slot, err)
		}
	}

	// Re-uploading a slot replaces, not duplicates.
	if err := SetInspectionPhoto(ctx, database, insp.ID, model.PhotoSlotFront, []byte{0xff, 0xd8, 0x02}, "image/jpeg"); err != nil {
		t.Fatalf("replacing photo: %v", err)
	}

	photos, err := ListInspectionPhotos(ctx, database, insp.ID)
	if err != nil {
		t.Fatalf("ListInspectionPhotos: %v", err)
	}
	if len(photos) != 3 {
		t.Errorf("expected 3 photo slots, got %d", len(photos))
	}

	photo, _, err := GetInspectionPhoto(ctx, database, insp.ID, model.PhotoSlotFront)
	if err != nil {
		t.Fatalf("GetInspectionPhoto: %v", err)
	}
	if len(photo) != 3 || photo[2] != 0x02 {
		t.Error("expected replaced front photo data")
	}
}

func TestListInspectionsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first := openInspection(t, database, model.TransportRemise)
	openInspection(t, database, model.TransportScholastic)

	rateAll(t, database, first.ID, model.ItemStatusPass)
	SetSignature(ctx, database, first.ID, model.SignatureInspector, []byte{0xff, 0xd8}, "image/jpeg")
	if _, err := SubmitInspection(ctx, database, first.ID); err != nil {
		t.Fatalf("SubmitInspection: %v", err)
	}

	all, _ := ListInspections(ctx, database, 0, "")
	if len(all) != 2 {
		t.Errorf("expected 2 inspections, got %d", len(all))
	}

	open, _ := ListInspections(ctx, database, 0, model.InspectionStatusOpen)
	if len(open) != 1 {
		t.Errorf("expected 1 open inspection, got %d", len(open))
	}

	byVehicle, _ := ListInspections(ctx, database, first.VehicleID, "")
	if len(byVehicle) != 1 {
		t.Errorf("expected 1 inspection for vehicle, got %d", len(byVehicle))
	}
}
