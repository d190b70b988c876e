package inventory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL,
	price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
	stock       INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
	description TEXT NOT NULL DEFAULT '',
	image       BYTEA,
	image_mime  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
