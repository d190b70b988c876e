package events

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	key     []byte
	value   []byte
	headers []kafkago.Header
}

type recorder struct{ got []recorded }

func (r *recorder) Publish(key, value []byte, headers ...kafkago.Header) {
	r.got = append(r.got, recorded{key: key, value: value, headers: headers})
}

func TestEmitEnvelope(t *testing.T) {
	rec := &recorder{}
	id := Emit(rec, "kasir", EventPaymentRecorded, "order-1", "trace-1",
		PaymentRecordedPayload{PaymentID: "pay-1", OrderID: "order-1", AmountCents: 3000})
	require.NotEmpty(t, id)
	require.Len(t, rec.got, 1)

	env, err := DecodeEnvelope(rec.got[0].value)
	require.NoError(t, err)
	require.Equal(t, id, env.EventID)
	require.Equal(t, EventPaymentRecorded, env.EventType)
	require.Equal(t, 1, env.EventVersion)
	require.Equal(t, "kasir", env.Producer)
	require.Equal(t, "order-1", env.CorrelationID)
	require.Equal(t, "trace-1", env.TraceID)
	require.False(t, env.OccurredAt.IsZero())

	p, err := DecodePayload[PaymentRecordedPayload](env.Payload)
	require.NoError(t, err)
	require.Equal(t, int64(3000), p.AmountCents)

	// partition key = correlation id, supaya event satu order berurutan
	require.Equal(t, PartitionKey("order-1"), rec.got[0].key)

	var typ string
	for _, h := range rec.got[0].headers {
		if h.Key == "x-event-type" {
			typ = string(h.Value)
		}
	}
	require.Equal(t, EventPaymentRecorded, typ)
}

func TestTopicRouter(t *testing.T) {
	paid := &recorder{}
	created := &recorder{}
	router := TopicRouter{Routes: map[string]Publisher{
		EventOrderPaid:    paid,
		EventOrderCreated: created,
	}}

	Emit(router, "orders", EventOrderPaid, "order-1", "", OrderPaidPayload{OrderID: "order-1"})
	require.Len(t, paid.got, 1)
	require.Empty(t, created.got)

	// event tanpa route dibuang diam-diam
	Emit(router, "orders", EventStockReduced, "order-1", "", StockReducedPayload{ProductID: "p"})
	require.Len(t, paid.got, 1)
	require.Empty(t, created.got)
}
