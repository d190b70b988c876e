package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"aurashop/internal/apperr"
	"aurashop/internal/events"
)

type stubReducer struct {
	err   error
	calls []int
}

func (s *stubReducer) ReduceStock(ctx context.Context, id string, qty int) error {
	s.calls = append(s.calls, qty)
	return s.err
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (c *mapCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", errors.New("nil")
	}
	return v, nil
}

func (c *mapCache) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
	return nil
}

func (c *mapCache) SetNX(ctx context.Context, key, val string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = val
	return true, nil
}

func (c *mapCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *mapCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type capturePublisher struct {
	mu   sync.Mutex
	envs []events.Envelope
}

func (p *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if env, err := events.DecodeEnvelope(value); err == nil {
		p.envs = append(p.envs, env)
	}
}

func reduceFailedMessage(t *testing.T, eventID string) kafkago.Message {
	t.Helper()
	env := events.Envelope{
		EventID:       eventID,
		EventType:     events.EventStockReduceFailed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "kasir-test",
		CorrelationID: "order-1",
		Payload: events.MustMarshal(events.StockReduceFailedPayload{
			ProductID: "prod-a",
			OrderID:   "order-1",
			Quantity:  3,
			Reason:    "upstream_unavailable",
		}),
	}
	return kafkago.Message{Value: events.MustMarshal(env)}
}

func newReconciler(red *stubReducer) (*Reconciler, *mapCache, *capturePublisher) {
	cache := newMapCache()
	pub := &capturePublisher{}
	rc := &Reconciler{Repo: red, Cache: cache, Producer: pub, ServiceName: "inventory-test"}
	return rc, cache, pub
}

func TestReconcilerRetriesAndPublishes(t *testing.T) {
	red := &stubReducer{}
	rc, _, pub := newReconciler(red)

	err := rc.HandleReduceFailed(context.Background(), reduceFailedMessage(t, "ev-1"))
	require.NoError(t, err)
	require.Equal(t, []int{3}, red.calls)

	require.Len(t, pub.envs, 1)
	require.Equal(t, events.EventStockReduced, pub.envs[0].EventType)
	payload, err := events.DecodePayload[events.StockReducedPayload](pub.envs[0].Payload)
	require.NoError(t, err)
	require.Equal(t, "prod-a", payload.ProductID)
	require.Equal(t, "order-1", payload.OrderID)
}

func TestReconcilerDedupsByEventID(t *testing.T) {
	red := &stubReducer{}
	rc, _, _ := newReconciler(red)

	require.NoError(t, rc.HandleReduceFailed(context.Background(), reduceFailedMessage(t, "ev-1")))
	require.NoError(t, rc.HandleReduceFailed(context.Background(), reduceFailedMessage(t, "ev-1")))
	require.Len(t, red.calls, 1) // event sama tidak dipotong dua kali

	require.NoError(t, rc.HandleReduceFailed(context.Background(), reduceFailedMessage(t, "ev-2")))
	require.Len(t, red.calls, 2)
}

func TestReconcilerDropsPermanentFailures(t *testing.T) {
	red := &stubReducer{err: apperr.Conflict("stok tidak cukup (tersisa 0, diminta 3)")}
	rc, _, pub := newReconciler(red)

	// return nil = offset di-commit, event tidak diputar ulang
	require.NoError(t, rc.HandleReduceFailed(context.Background(), reduceFailedMessage(t, "ev-1")))
	require.Empty(t, pub.envs)
}

func TestReconcilerRequeuesTransientFailures(t *testing.T) {
	red := &stubReducer{err: errors.New("conn refused")}
	rc, cache, _ := newReconciler(red)

	err := rc.HandleReduceFailed(context.Background(), reduceFailedMessage(t, "ev-1"))
	require.Error(t, err) // offset jangan di-commit

	// belum ditandai dedup, jadi retry berikutnya tetap jalan
	exists, _ := cache.Exists(context.Background(), "dedup:inventory-reconciler:ev-1")
	require.False(t, exists)

	red.err = nil
	require.NoError(t, rc.HandleReduceFailed(context.Background(), reduceFailedMessage(t, "ev-1")))
	require.Len(t, red.calls, 2)
}

func TestReconcilerIgnoresOtherEventTypes(t *testing.T) {
	red := &stubReducer{}
	rc, _, _ := newReconciler(red)

	env := events.Envelope{EventID: "ev-x", EventType: events.EventOrderCreated, Payload: events.MustMarshal(struct{}{})}
	require.NoError(t, rc.HandleReduceFailed(context.Background(), kafkago.Message{Value: events.MustMarshal(env)}))
	require.Empty(t, red.calls)
}
