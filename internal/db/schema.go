package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS organizations (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    type       TEXT NOT NULL CHECK (type IN ('Agency Partner', 'Public Donor', 'Corporate Donor')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id              INTEGER PRIMARY KEY,
    email           TEXT NOT NULL,
    first_name      TEXT NOT NULL DEFAULT '',
    last_name       TEXT NOT NULL DEFAULT '',
    password_hash   TEXT,
    role            TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    organization_id INTEGER REFERENCES organizations(id),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at      DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id            INTEGER PRIMARY KEY,
    category      TEXT NOT NULL,
    name          TEXT NOT NULL,
    quantity_new  INTEGER NOT NULL DEFAULT 0 CHECK (quantity_new >= 0),
    quantity_used INTEGER NOT NULL DEFAULT 0 CHECK (quantity_used >= 0),
    value_new     REAL NOT NULL DEFAULT 0,
    value_used    REAL NOT NULL DEFAULT 0,
    version       INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS donations (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    direction  TEXT NOT NULL CHECK (direction IN ('incoming', 'outgoing')),
    date       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS donation_details (
    donation_id   INTEGER NOT NULL REFERENCES donations(id) ON DELETE CASCADE,
    item_id       INTEGER NOT NULL REFERENCES items(id),
    new_quantity  INTEGER NOT NULL CHECK (new_quantity >= 0),
    used_quantity INTEGER NOT NULL CHECK (used_quantity >= 0),
    PRIMARY KEY (donation_id, item_id)
);

CREATE TABLE IF NOT EXISTS outgoing_donation_stats (
    donation_id   INTEGER PRIMARY KEY REFERENCES donations(id) ON DELETE CASCADE,
    number_served INTEGER NOT NULL CHECK (number_served > 0),
    white_num     INTEGER NOT NULL DEFAULT 0 CHECK (white_num >= 0),
    latino_num    INTEGER NOT NULL DEFAULT 0 CHECK (latino_num >= 0),
    black_num     INTEGER NOT NULL DEFAULT 0 CHECK (black_num >= 0),
    native_num    INTEGER NOT NULL DEFAULT 0 CHECK (native_num >= 0),
    asian_num     INTEGER NOT NULL DEFAULT 0 CHECK (asian_num >= 0),
    other_num     INTEGER NOT NULL DEFAULT 0 CHECK (other_num >= 0)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
