package payments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS payments (
	id           TEXT PRIMARY KEY,
	order_id     TEXT NOT NULL,
	method       TEXT NOT NULL,
	amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
	status       TEXT NOT NULL DEFAULT 'success',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- Satu pembayaran sukses per order, ditegakkan database (bukan cuma
-- lewat cek status order di jalur request).
CREATE UNIQUE INDEX IF NOT EXISTS uniq_payments_order_success
	ON payments(order_id) WHERE status = 'success';

CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id);
`

func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
