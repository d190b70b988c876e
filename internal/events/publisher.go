package events

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher dipenuhi oleh kafkax.Producer; test pakai stub.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Emit membungkus payload jadi Envelope lalu publish dengan header standar.
func Emit(p Publisher, producer, eventType, correlationID, traceID string, payload any) string {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       MustMarshal(payload),
	}
	p.Publish(PartitionKey(correlationID), MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return ev.EventID
}

// NopPublisher untuk service yang jalan tanpa Kafka (mis. dev lokal).
type NopPublisher struct{}

func (NopPublisher) Publish(key, value []byte, headers ...kafkago.Header) {}

// TopicRouter mengarahkan event ke producer per-topic berdasarkan header
// x-event-type. Producer kita terikat satu topic (lihat internal/kafka),
// sementara satu service bisa emit beberapa jenis event.
type TopicRouter struct {
	Routes map[string]Publisher // event type -> producer
}

func (t TopicRouter) Publish(key, value []byte, headers ...kafkago.Header) {
	for _, h := range headers {
		if h.Key != "x-event-type" {
			continue
		}
		if p, ok := t.Routes[string(h.Value)]; ok {
			p.Publish(key, value, headers...)
		}
		return
	}
}
