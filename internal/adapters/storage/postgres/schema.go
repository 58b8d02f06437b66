package postgres

import (
	"context"
	"database/sql"
)

// Los sub-documentos (treatments, vaccinations) y el owner viven en columnas jsonb:
// el pet se lee y escribe entero, igual que un documento.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS pets (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	age          INTEGER NULL,
	gender       TEXT NOT NULL DEFAULT '',
	species      TEXT NOT NULL,
	breed        TEXT NOT NULL DEFAULT '',
	owner        JSONB NOT NULL,
	treatments   JSONB NOT NULL DEFAULT '[]'::jsonb,
	vaccinations JSONB NOT NULL DEFAULT '[]'::jsonb,
	version      INTEGER NOT NULL DEFAULT 0,
	seq          BIGSERIAL
);

CREATE TABLE IF NOT EXISTS appointments (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	pet_name    TEXT NOT NULL,
	owner_name  TEXT NOT NULL,
	owner_phone TEXT NOT NULL,
	date        TIMESTAMPTZ NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	seq         BIGSERIAL
);

CREATE INDEX IF NOT EXISTS appointments_user_idx ON appointments (user_id);
`

// EnsureSchema es idempotente.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}
