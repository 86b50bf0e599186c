package store

import (
	"context"
	"testing"

	"github.com/munidigital/transporte/internal/db"
	"github.com/munidigital/transporte/internal/model"
)

func TestLicenseeCRUD(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	licensee, err := CreateLicensee(ctx, database, "ESC-001", "Juan Perez", "30111222", model.TransportScholastic)
	if err != nil {
		t.Fatalf("CreateLicensee: %v", err)
	}
	if licensee.Status != model.LicenseeStatusActive {
		t.Errorf("expected active by default, got %s", licensee.Status)
	}
	if licensee.TransportType != model.TransportScholastic {
		t.Errorf("unexpected transport type %s", licensee.TransportType)
	}

	if err := UpdateLicensee(ctx, database, licensee.ID, "Juan Perez", "30111222", model.LicenseeStatusSuspended); err != nil {
		t.Fatalf("UpdateLicensee: %v", err)
	}
	updated, _ := GetLicensee(ctx, database, licensee.ID)
	if updated.Status != model.LicenseeStatusSuspended {
		t.Errorf("expected suspended, got %s", updated.Status)
	}

	if err := DeleteLicensee(ctx, database, licensee.ID); err != nil {
		t.Fatalf("DeleteLicensee: %v", err)
	}
	listed, _ := ListLicensees(ctx, database, "", "")
	if len(listed) != 0 {
		t.Errorf("expected no listed licensees after delete, got %d", len(listed))
	}
}

func TestListLicenseesFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateLicensee(ctx, database, "ESC-001", "Juan Perez", "", model.TransportScholastic)
	CreateLicensee(ctx, database, "REM-001", "Ana Gomez", "", model.TransportRemise)
	CreateLicensee(ctx, database, "REM-002", "Luis Diaz", "", model.TransportRemise)

	remises, _ := ListLicensees(ctx, database, model.TransportRemise, "")
	if len(remises) != 2 {
		t.Errorf("expected 2 remise licensees, got %d", len(remises))
	}

	active, _ := ListLicensees(ctx, database, "", model.LicenseeStatusActive)
	if len(active) != 3 {
		t.Errorf("expected 3 active licensees, got %d", len(active))
	}
}

func TestDeleteLicenseeWithVehiclesRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	licensee, _ := CreateLicensee(ctx, database, "REM-001", "Ana Gomez", "", model.TransportRemise)
	if _, err := CreateVehicle(ctx, database, licensee.ID, "AA000AA", "Fiat", "Cronos", 2022, 4); err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}

	if err := DeleteLicensee(ctx, database, licensee.ID); err == nil {
		t.Error("expected error deleting licensee with registered vehicles")
	}
}

func TestDuplicateLicenseNumberRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateLicensee(ctx, database, "REM-001", "Ana Gomez", "", model.TransportRemise)
	if _, err := CreateLicensee(ctx, database, "REM-001", "Otro Titular", "", model.TransportRemise); err == nil {
		t.Error("expected error for duplicate license number")
	}
}
