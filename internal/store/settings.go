package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	// Try to generate and insert first (safe against races).
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}

// NextStickerSerial atomically increments and returns the windshield
// sticker serial counter. Serials start at 1 on a fresh database.
func NextStickerSerial(ctx context.Context, db *sql.DB) (int64, error) {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('sticker_serial', '0')`,
	)
	if err != nil {
		return 0, fmt.Errorf("initializing sticker counter: %w", err)
	}

	var value string
	err = db.QueryRowContext(ctx,
		`UPDATE settings SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)
		 WHERE key = 'sticker_serial'
		 RETURNING value`,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("incrementing sticker counter: %w", err)
	}

	serial, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing sticker counter %q: %w", value, err)
	}
	return serial, nil
}
