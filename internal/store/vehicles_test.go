package store

import (
	"context"
	"testing"

	"github.com/munidigital/transporte/internal/db"
	"github.com/munidigital/transporte/internal/model"
)

func TestVehicleCRUD(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	licensee, _ := CreateLicensee(ctx, database, "ESC-001", "Juan Perez", "", model.TransportScholastic)

	vehicle, err := CreateVehicle(ctx, database, licensee.ID, "AD456EF", "Iveco", "Daily", 2021, 19)
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if vehicle.TransportType != model.TransportScholastic {
		t.Errorf("expected joined transport type, got %q", vehicle.TransportType)
	}
	if vehicle.LicenseNumber != "ESC-001" {
		t.Errorf("expected joined license number, got %q", vehicle.LicenseNumber)
	}

	if err := UpdateVehicle(ctx, database, vehicle.ID, "AD456EF", "Iveco", "Daily 50C", 2021, 19); err != nil {
		t.Fatalf("UpdateVehicle: %v", err)
	}
	updated, _ := GetVehicle(ctx, database, vehicle.ID)
	if updated.Model != "Daily 50C" {
		t.Errorf("expected updated model, got %q", updated.Model)
	}

	if err := DeleteVehicle(ctx, database, vehicle.ID); err != nil {
		t.Fatalf("DeleteVehicle: %v", err)
	}
	listed, _ := ListVehicles(ctx, database, 0)
	if len(listed) != 0 {
		t.Errorf("expected no vehicles after delete, got %d", len(listed))
	}
}

func TestCreateVehicleUnknownLicensee(t *testing.T) {
	database := db.NewTestDB(t)

	if _, err := CreateVehicle(context.Background(), database, 99, "AA000AA", "", "", 0, 0); err == nil {
		t.Error("expected error for unknown licensee")
	}
}

func TestVehiclePhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	licensee, _ := CreateLicensee(ctx, database, "REM-001", "Ana Gomez", "", model.TransportRemise)
	vehicle, _ := CreateVehicle(ctx, database, licensee.ID, "AB123CD", "Toyota", "Corolla", 2020, 4)

	if err := SetVehiclePhoto(ctx, database, vehicle.ID, []byte{0xff, 0xd8, 0xff}, "image/jpeg"); err != nil {
		t.Fatalf("SetVehiclePhoto: %v", err)
	}

	photo, mime, err := GetVehiclePhoto(ctx, database, vehicle.ID)
	if err != nil {
		t.Fatalf("GetVehiclePhoto: %v", err)
	}
	if len(photo) != 3 || mime != "image/jpeg" {
		t.Errorf("unexpected photo %d bytes, mime %q", len(photo), mime)
	}
}

func TestIssueSticker(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	insp := openInspection(t, database, model.TransportRemise)

	// No submitted inspection yet.
	if _, err := IssueSticker(ctx, database, insp.VehicleID); err == nil {
		t.Error("expected error without a submitted inspection")
	}

	rateAll(t, database, insp.ID, model.ItemStatusPass)
	SetSignature(ctx, database, insp.ID, model.SignatureInspector, []byte{0xff, 0xd8}, "image/jpeg")
	if _, err := SubmitInspection(ctx, database, insp.ID); err != nil {
		t.Fatalf("SubmitInspection: %v", err)
	}

	vehicle, err := IssueSticker(ctx, database, insp.VehicleID)
	if err != nil {
		t.Fatalf("IssueSticker: %v", err)
	}
	if vehicle.StickerSerial == nil || *vehicle.StickerSerial != 1 {
		t.Errorf("expected sticker serial 1, got %v", vehicle.StickerSerial)
	}
	if vehicle.StickerIssuedAt == nil {
		t.Error("expected sticker issue date set")
	}
}

func TestIssueStickerRejectedVerdict(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	insp := openInspection(t, database, model.TransportRemise)
	rateAll(t, database, insp.ID, model.ItemStatusPass)
	SetItemStatus(ctx, database, insp.ID, "brakes", model.ItemStatusFail)
	SetSignature(ctx, database, insp.ID, model.SignatureInspector, []byte{0xff, 0xd8}, "image/jpeg")
	if _, err := SubmitInspection(ctx, database, insp.ID); err != nil {
		t.Fatalf("SubmitInspection: %v", err)
	}

	if _, err := IssueSticker(ctx, database, insp.VehicleID); err == nil {
		t.Error("expected error issuing sticker after rejected inspection")
	}
}
