package store

import (
	"context"
	"testing"

	"github.com/munidigital/transporte/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// First call should generate a secret.
	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 == "" {
		t.Fatal("expected non-empty secret")
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	// Second call should return the same secret.
	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestNextStickerSerial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		serial, err := NextStickerSerial(ctx, database)
		if err != nil {
			t.Fatalf("NextStickerSerial: %v", err)
		}
		if serial != want {
			t.Errorf("expected serial %d, got %d", want, serial)
		}
	}
}
