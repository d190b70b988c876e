package payments

import "time"

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type Payment struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	Method      string    `json:"paymentMethod"`
	AmountCents int64     `json:"amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Warning: kegagalan non-fatal yang tetap dilaporkan ke caller
// (kontrak lama kasir: pembayaran sukses, sebagian stok gagal dikurangi).
type Warning struct {
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Warning   string `json:"warning"`
}
