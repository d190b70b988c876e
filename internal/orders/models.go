package orders

import "time"

type Order struct {
	ID           string    `json:"id"`
	ExternalID   string    `json:"external_id,omitempty"`
	UserID       string    `json:"user_id"`
	CustomerName string    `json:"customer_name"`
	Notes        string    `json:"notes,omitempty"`
	Status       Status    `json:"order_status"` // lihat status.go
	TotalCents   int64     `json:"total_cents"`
	Items        []Item    `json:"items"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Item menyimpan snapshot nama & harga saat order dibuat, supaya perubahan
// produk di inventory tidak mengubah order lama.
type Item struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"price_cents"`
	Quantity      int    `json:"quantity"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

// PaymentRecord: ringkasan pembayaran untuk invoice. Sumbernya kasir
// service (lihat PaymentSource), bukan database order.
type PaymentRecord struct {
	ID          string    `json:"id"`
	Method      string    `json:"paymentMethod"`
	AmountCents int64     `json:"amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Invoice struct {
	Order    Order           `json:"order"`
	Payments []PaymentRecord `json:"payments"`
	IssuedAt time.Time       `json:"issued_at"`
}
