package events

const (
	TopicOrderCreated      = "order.created"
	TopicOrderPaid         = "order.paid"
	TopicPaymentRecorded   = "payment.recorded"
	TopicStockReduced      = "stock.reduced"
	TopicStockReduceFailed = "stock.reduce_failed"
)

// Partition key = order_id (atau product_id untuk event stock tanpa order),
// supaya urutan event per entity terjaga.
func PartitionKey(id string) []byte { return []byte(id) }
