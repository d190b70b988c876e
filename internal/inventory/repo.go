package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aurashop/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, category, price_cents, stock, description, COALESCE(image_mime,''), created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.Stock,
		&p.Description, &p.ImageMime, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) List(ctx context.Context, category Category) ([]Product, error) {
	q := `SELECT ` + productCols + ` FROM products ORDER BY name`
	args := []any{}
	if category != "" {
		q = `SELECT ` + productCols + ` FROM products WHERE category=$1 ORDER BY name`
		args = append(args, category)
	}
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, apperr.NotFound("produk tidak ditemukan")
	}
	return p, err
}

func (r *Repo) Create(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, category, price_cents, stock, description)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Category, p.PriceCents, p.Stock, p.Description)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repo) Update(ctx context.Context, p Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, category=$3, price_cents=$4, stock=$5, description=$6, updated_at=now()
		WHERE id=$1`,
		p.ID, p.Name, p.Category, p.PriceCents, p.Stock, p.Description)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("produk tidak ditemukan")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("produk tidak ditemukan")
	}
	return nil
}

// ReduceStock: satu-satunya mutasi stok yang aman terhadap race; decrement
// bersyarat dilakukan atomik oleh database.
// Zero affected rows dibedakan jadi not-found vs conflict lewat re-read.
func (r *Repo) ReduceStock(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return apperr.Invalid("quantity harus > 0")
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at=now()
		WHERE id=$1 AND stock >= $2`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var stock int
	err = r.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, id).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("produk tidak ditemukan")
	}
	if err != nil {
		return err
	}
	return apperr.Newf(apperr.KindConflict, "stok tidak cukup (tersisa %d, diminta %d)", stock, qty)
}

func (r *Repo) SetImage(ctx context.Context, id string, data []byte, mime string) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE products SET image=$2, image_mime=$3, updated_at=now() WHERE id=$1`,
		id, data, mime)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("produk tidak ditemukan")
	}
	return nil
}

func (r *Repo) GetImage(ctx context.Context, id string) ([]byte, string, error) {
	var data []byte
	var mime *string
	err := r.DB.QueryRow(ctx,
		`SELECT image, image_mime FROM products WHERE id=$1`, id).Scan(&data, &mime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", apperr.NotFound("produk tidak ditemukan")
	}
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", apperr.NotFound("gambar tidak ada")
	}
	m := "application/octet-stream"
	if mime != nil && *mime != "" {
		m = *mime
	}
	return data, m, nil
}
