package redisx

import "time"

const (
	// Idempotency pembayaran: idem:payment:{order_id} -> payment_id
	KeyIdemPayment = "idem:payment:%s"

	// Cache status order: order_status:{order_id} -> status
	KeyOrderStatus = "order_status:%s"

	// Dedup event consumer: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
