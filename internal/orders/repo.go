package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aurashop/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

// Create menyimpan order + items dalam satu transaksi. Idempotent via
// external_id: kalau sudah ada, order lama yang dikembalikan (existed=true).
func (r *Repo) Create(ctx context.Context, o *Order) (existed bool, err error) {
	if o.ExternalID != "" {
		var id string
		err = r.DB.QueryRow(ctx, `SELECT id FROM orders WHERE external_id=$1`, o.ExternalID).Scan(&id)
		if err == nil {
			existing, gerr := r.Get(ctx, id)
			if gerr != nil {
				return false, gerr
			}
			*o = existing
			return true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return false, err
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var extID any
	if o.ExternalID != "" {
		extID = o.ExternalID
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO orders(id, external_id, user_id, customer_name, notes, status, total_cents)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		o.ID, extID, o.UserID, o.CustomerName, o.Notes, o.Status, o.TotalCents)
	if err := row.Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return false, err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, name, price_cents, quantity, subtotal_cents)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, it.ProductID, it.Name, it.PriceCents, it.Quantity, it.SubtotalCents); err != nil {
			return false, err
		}
	}

	return false, tx.Commit(ctx)
}

const orderCols = `id, COALESCE(external_id,''), user_id, customer_name, notes, status, total_cents, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ExternalID, &o.UserID, &o.CustomerName, &o.Notes,
		&o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, apperr.NotFound("pesanan tidak ditemukan")
	}
	if err != nil {
		return Order{}, err
	}
	o.Items, err = r.items(ctx, id)
	return o, err
}

func (r *Repo) items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, name, price_cents, quantity, subtotal_cents
		FROM order_items WHERE order_id=$1 ORDER BY product_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.PriceCents, &it.Quantity, &it.SubtotalCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.items(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) List(ctx context.Context, status Status) ([]Order, error) {
	if status != "" {
		return r.list(ctx, `SELECT `+orderCols+` FROM orders WHERE status=$1 ORDER BY created_at DESC`, status)
	}
	return r.list(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC`)
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

// UpdateStatus memvalidasi transisi di dalam transaksi yang sama dengan
// update-nya (row di-lock), bukan di handler.
func (r *Repo) UpdateStatus(ctx context.Context, id string, to Status) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("pesanan tidak ditemukan")
	}
	if err != nil {
		return err
	}
	if cur == to {
		return tx.Commit(ctx) // no-op, biar retry idempotent
	}
	if !CanTransition(cur, to) {
		return apperr.Newf(apperr.KindConflict, "status %s tidak bisa diubah ke %s", cur, to)
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, to); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update mengganti customer_name/notes/items. Items sudah di-price ulang
// oleh service sebelum sampai sini.
func (r *Repo) Update(ctx context.Context, o Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE orders SET customer_name=$2, notes=$3, total_cents=$4, updated_at=now()
		WHERE id=$1`, o.ID, o.CustomerName, o.Notes, o.TotalCents)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("pesanan tidak ditemukan")
	}

	if o.Items != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
			return err
		}
		for _, it := range o.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items(order_id, product_id, name, price_cents, quantity, subtotal_cents)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				o.ID, it.ProductID, it.Name, it.PriceCents, it.Quantity, it.SubtotalCents); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("pesanan tidak ditemukan")
	}
	return nil
}
