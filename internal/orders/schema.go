package orders

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id            TEXT PRIMARY KEY,
	external_id   TEXT UNIQUE,
	user_id       TEXT NOT NULL,
	customer_name TEXT NOT NULL DEFAULT '',
	notes         TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'pending',
	total_cents   BIGINT NOT NULL CHECK (total_cents >= 0),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
	order_id       TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id     TEXT NOT NULL,
	name           TEXT NOT NULL,
	price_cents    BIGINT NOT NULL,
	quantity       INT NOT NULL CHECK (quantity > 0),
	subtotal_cents BIGINT NOT NULL,
	PRIMARY KEY (order_id, product_id)
);

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`

func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
