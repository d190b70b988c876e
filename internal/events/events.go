package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated      = "OrderCreated"
	EventOrderPaid         = "OrderPaid"
	EventPaymentRecorded   = "PaymentRecorded"
	EventStockReduced      = "StockReduced"
	EventStockReduceFailed = "StockReduceFailed"
)

// Envelope membungkus semua event lintas service (versi 1).
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderItemRef struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderCreatedPayload struct {
	OrderID    string         `json:"order_id"`
	ExternalID string         `json:"external_id,omitempty"`
	UserID     string         `json:"user_id"`
	Items      []OrderItemRef `json:"items"`
	TotalCents int64          `json:"total_cents"`
}

type OrderPaidPayload struct {
	OrderID    string `json:"order_id"`
	PaymentID  string `json:"payment_id"`
	TotalCents int64  `json:"total_cents"`
}

type PaymentRecordedPayload struct {
	PaymentID   string `json:"payment_id"`
	OrderID     string `json:"order_id"`
	Method      string `json:"method"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

type StockReducedPayload struct {
	ProductID string `json:"product_id"`
	OrderID   string `json:"order_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// StockReduceFailedPayload dipublish kasir saat reduce-stok per item gagal;
// reconciler inventory yang me-retry.
type StockReduceFailedPayload struct {
	ProductID string `json:"product_id"`
	OrderID   string `json:"order_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}
