package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'inspector' CHECK (role IN ('admin', 'supervisor', 'inspector')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS licensees (
    id             INTEGER PRIMARY KEY,
    license_number TEXT NOT NULL,
    holder_name    TEXT NOT NULL,
    dni            TEXT,
    transport_type TEXT NOT NULL CHECK (transport_type IN ('scholastic', 'remise')),
    status         TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'suspended', 'expired')),
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at     DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_licensees_number_active
    ON licensees(license_number) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS vehicles (
    id                INTEGER PRIMARY KEY,
    licensee_id       INTEGER NOT NULL REFERENCES licensees(id),
    plate             TEXT NOT NULL,
    make              TEXT,
    model             TEXT,
    year              INTEGER,
    seats             INTEGER,
    photo             BLOB,
    photo_mime        TEXT,
    sticker_serial    INTEGER,
    sticker_issued_at DATETIME,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at        DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_vehicles_plate_active
    ON vehicles(plate) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS inspections (
    id                  INTEGER PRIMARY KEY,
    vehicle_id          INTEGER NOT NULL REFERENCES vehicles(id),
    licensee_id         INTEGER NOT NULL REFERENCES licensees(id),
    transport_type      TEXT NOT NULL,
    inspector_id        INTEGER NOT NULL REFERENCES users(id),
    scheduled_for       DATETIME,
    status              TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'submitted')),
    overall_note        TEXT,
    verdict             TEXT CHECK (verdict IN ('approved', 'conditional', 'rejected')),
    inspector_signature BLOB,
    inspector_sig_mime  TEXT,
    subject_signature   BLOB,
    subject_sig_mime    TEXT,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    submitted_at        DATETIME
);

CREATE TABLE IF NOT EXISTS inspection_items (
    inspection_id INTEGER NOT NULL REFERENCES inspections(id),
    item_id       TEXT NOT NULL,
    label         TEXT NOT NULL,
    category      TEXT NOT NULL,
    position      INTEGER NOT NULL,
    status        TEXT NOT NULL DEFAULT 'unrated' CHECK (status IN ('unrated', 'pass', 'warning', 'fail')),
    note          TEXT,
    photo         BLOB,
    photo_mime    TEXT,
    PRIMARY KEY (inspection_id, item_id)
);

CREATE TABLE IF NOT EXISTS inspection_photos (
    inspection_id INTEGER NOT NULL REFERENCES inspections(id),
    slot          TEXT NOT NULL,
    photo         BLOB NOT NULL,
    mime          TEXT NOT NULL,
    PRIMARY KEY (inspection_id, slot)
);

CREATE TABLE IF NOT EXISTS outbox (
    id            INTEGER PRIMARY KEY,
    queue_id      TEXT NOT NULL UNIQUE,
    inspection_id INTEGER NOT NULL REFERENCES inspections(id),
    payload       BLOB NOT NULL,
    synced        INTEGER NOT NULL DEFAULT 0,
    enqueued_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    synced_at     DATETIME
);

CREATE INDEX IF NOT EXISTS idx_outbox_pending
    ON outbox(enqueued_at) WHERE synced = 0;
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
