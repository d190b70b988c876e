package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aurashop/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

const paymentCols = `id, order_id, method, amount_cents, status, created_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Method, &p.AmountCents, &p.Status, &p.CreatedAt)
	return p, err
}

func (r *Repo) Create(ctx context.Context, p *Payment) error {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO payments(id, order_id, method, amount_cents, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		p.ID, p.OrderID, p.Method, p.AmountCents, p.Status)
	err := row.Scan(&p.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return apperr.Conflict("pesanan sudah punya pembayaran sukses")
	}
	return err
}

// isUniqueViolation: 23505 dari partial unique index uniq_payments_order_success.
func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}

func (r *Repo) Get(ctx context.Context, id string) (Payment, error) {
	p, err := scanPayment(r.DB.QueryRow(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, apperr.NotFound("pembayaran tidak ditemukan")
	}
	return p, err
}

func (r *Repo) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	return r.list(ctx, `SELECT `+paymentCols+` FROM payments WHERE order_id=$1 ORDER BY created_at DESC`, orderID)
}

type ListFilter struct {
	Status  string
	Method  string
	OrderID string
	Page    int
	Limit   int
}

// List dengan filter & pagination di sisi database (bukan di handler).
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Payment, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}

	q := `SELECT ` + paymentCols + ` FROM payments WHERE 1=1`
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		q += cond + fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		add(` AND status=`, f.Status)
	}
	if f.Method != "" {
		add(` AND method=`, f.Method)
	}
	if f.OrderID != "" {
		add(` AND order_id=`, f.OrderID)
	}
	q += ` ORDER BY created_at DESC`
	add(` LIMIT `, f.Limit)
	add(` OFFSET `, (f.Page-1)*f.Limit)

	return r.list(ctx, q, args...)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Payment, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) MarkFailed(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `UPDATE payments SET status=$2 WHERE id=$1`, id, StatusFailed)
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM payments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("pembayaran tidak ditemukan")
	}
	return nil
}
