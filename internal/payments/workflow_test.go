package payments

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
	"aurashop/internal/orders"
)

// ---- stubs ----

type memStore struct {
	mu       sync.Mutex
	payments map[string]Payment
}

func newMemStore() *memStore { return &memStore{payments: map[string]Payment{}} }

func (s *memStore) Create(ctx context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.payments {
		if ex.OrderID == p.OrderID && ex.Status == StatusSuccess && p.Status == StatusSuccess {
			return apperr.Conflict("pesanan sudah punya pembayaran sukses")
		}
	}
	p.CreatedAt = time.Now()
	s.payments[p.ID] = *p
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return Payment{}, apperr.NotFound("pembayaran tidak ditemukan")
	}
	return p, nil
}

func (s *memStore) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Payment
	for _, p := range s.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) List(ctx context.Context, f ListFilter) ([]Payment, error) { return nil, nil }

func (s *memStore) MarkFailed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.payments[id]
	p.Status = StatusFailed
	s.payments[id] = p
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[id]; !ok {
		return apperr.NotFound("pembayaran tidak ditemukan")
	}
	delete(s.payments, id)
	return nil
}

type stubOrders struct {
	order        orders.Order
	getErr       error
	statusErr    error
	deleteErr    error
	statusCalls  []orders.Status
	deleteCalls  []string
}

func (s *stubOrders) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	if s.getErr != nil {
		return orders.Order{}, s.getErr
	}
	return s.order, nil
}

func (s *stubOrders) UpdateStatus(ctx context.Context, id string, st orders.Status) error {
	s.statusCalls = append(s.statusCalls, st)
	if s.statusErr != nil {
		return s.statusErr
	}
	s.order.Status = st
	return nil
}

func (s *stubOrders) DeleteOrder(ctx context.Context, id string) error {
	s.deleteCalls = append(s.deleteCalls, id)
	return s.deleteErr
}

type stubStock struct {
	failFor map[string]error // product id -> error
	reduced map[string]int
}

func (s *stubStock) ReduceStock(ctx context.Context, productID string, qty int) error {
	if err, ok := s.failFor[productID]; ok {
		return err
	}
	if s.reduced == nil {
		s.reduced = map[string]int{}
	}
	s.reduced[productID] += qty
	return nil
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
	env, err := events.DecodeEnvelope(value)
	if err == nil {
		p.envs = append(p.envs, env)
	}
}

func (p *capturePublisher) byType(t string) []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Envelope
	for _, e := range p.envs {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

// ---- fixtures ----

func pendingOrder() orders.Order {
	return orders.Order{
		ID:         "order-1",
		UserID:     "user-1",
		Status:     orders.StatusPending,
		TotalCents: 3000,
		Items: []orders.Item{
			{ProductID: "prod-a", Name: "Teh Hitam", PriceCents: 1000, Quantity: 3, SubtotalCents: 3000},
		},
	}
}

func newWorkflow(og *stubOrders, sg *stubStock) (*Workflow, *memStore, *capturePublisher) {
	store := newMemStore()
	pub := &capturePublisher{}
	wf := &Workflow{
		Repo:        store,
		Orders:      og,
		Inventory:   sg,
		Cache:       newMapCache(),
		Producer:    pub,
		ServiceName: "kasir-test",
	}
	return wf, store, pub
}

// ---- tests ----

func TestPayHappyPath(t *testing.T) {
	og := &stubOrders{order: pendingOrder()}
	sg := &stubStock{}
	wf, _, pub := newWorkflow(og, sg)

	p, warnings, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 3000})
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, StatusSuccess, p.Status)
	require.Equal(t, int64(3000), p.AmountCents)

	// order jadi paid, stok terpotong sesuai qty
	require.Equal(t, []orders.Status{orders.StatusPaid}, og.statusCalls)
	require.Equal(t, 3, sg.reduced["prod-a"])

	require.Len(t, pub.byType(events.EventPaymentRecorded), 1)
	require.Len(t, pub.byType(events.EventOrderPaid), 1)
	require.Empty(t, pub.byType(events.EventStockReduceFailed))
}

func TestPayValidation(t *testing.T) {
	og := &stubOrders{order: pendingOrder()}
	wf, _, _ := newWorkflow(og, &stubStock{})

	_, _, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "", AmountCents: 3000})
	require.True(t, apperr.Is(err, apperr.KindInvalid))

	_, _, err = wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 0})
	require.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestPayAmountMismatch(t *testing.T) {
	og := &stubOrders{order: pendingOrder()}
	sg := &stubStock{}
	wf, store, _ := newWorkflow(og, sg)

	_, _, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 2999})
	require.True(t, apperr.Is(err, apperr.KindInvalid))

	// fail-fast: tidak ada payment tersimpan, tidak ada mutasi lain
	require.Empty(t, store.payments)
	require.Empty(t, og.statusCalls)
	require.Empty(t, sg.reduced)
}

func TestPayOrderNotFound(t *testing.T) {
	og := &stubOrders{getErr: apperr.NotFound("pesanan tidak ditemukan")}
	wf, _, _ := newWorkflow(og, &stubStock{})

	_, _, err := wf.Pay(context.Background(), "nope", PayRequest{Method: "cash", AmountCents: 3000})
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPayAlreadyPaid(t *testing.T) {
	o := pendingOrder()
	o.Status = orders.StatusPaid
	og := &stubOrders{order: o}
	wf, store, _ := newWorkflow(og, &stubStock{})

	_, _, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 3000})
	require.True(t, apperr.Is(err, apperr.KindConflict))
	require.Empty(t, store.payments)
}

func TestPayPartialStockFailure(t *testing.T) {
	o := pendingOrder()
	o.TotalCents = 5000
	o.Items = append(o.Items, orders.Item{
		ProductID: "prod-b", Name: "Teh Oolong", PriceCents: 2000, Quantity: 1, SubtotalCents: 2000,
	})
	og := &stubOrders{order: o}
	sg := &stubStock{failFor: map[string]error{
		"prod-b": apperr.Conflict("stok tidak cukup (tersisa 0, diminta 1)"),
	}}
	wf, store, pub := newWorkflow(og, sg)

	p, warnings, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "qris", AmountCents: 5000})
	require.NoError(t, err)

	// pembayaran & status order tetap sukses (inkonsistensi terdokumentasi),
	// kegagalan per-item hanya jadi warning + event untuk reconciler
	require.Equal(t, StatusSuccess, p.Status)
	require.Equal(t, []orders.Status{orders.StatusPaid}, og.statusCalls)
	require.Len(t, warnings, 1)
	require.Equal(t, "prod-b", warnings[0].ProductID)
	require.Equal(t, 1, warnings[0].Quantity)

	require.Equal(t, 3, sg.reduced["prod-a"])
	require.Zero(t, sg.reduced["prod-b"])

	got, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, got.Status)

	failed := pub.byType(events.EventStockReduceFailed)
	require.Len(t, failed, 1)
	payload, err := events.DecodePayload[events.StockReduceFailedPayload](failed[0].Payload)
	require.NoError(t, err)
	require.Equal(t, "prod-b", payload.ProductID)
	require.Equal(t, "order-1", payload.OrderID)
	require.Equal(t, 1, payload.Quantity)
}

func TestPayStatusUpdateFailureCompensates(t *testing.T) {
	og := &stubOrders{order: pendingOrder(), statusErr: apperr.Upstream("order service tidak bisa dihubungi", errors.New("dial tcp"))}
	sg := &stubStock{}
	wf, store, _ := newWorkflow(og, sg)

	_, _, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 3000})
	require.True(t, apperr.Is(err, apperr.KindUpstream))

	// kompensasi: payment ditandai failed, stok tidak disentuh
	require.Len(t, store.payments, 1)
	for _, p := range store.payments {
		require.Equal(t, StatusFailed, p.Status)
	}
	require.Empty(t, sg.reduced)

	// setelah kompensasi, retry bisa sukses (idem key sudah dilepas)
	og.statusErr = nil
	p, warnings, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 3000})
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, StatusSuccess, p.Status)
}

func TestPayIdempotentReplay(t *testing.T) {
	og := &stubOrders{order: pendingOrder()}
	sg := &stubStock{}
	wf, _, _ := newWorkflow(og, sg)

	p1, _, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 3000})
	require.NoError(t, err)

	// replay: order di stub masih pending (seolah status call belum kelihatan);
	// idempotency key yang mencegah eksekusi ulang
	og.order.Status = orders.StatusPending
	p2, warnings, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 3000})
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, p1.ID, p2.ID)

	// stok cuma terpotong sekali
	require.Equal(t, 3, sg.reduced["prod-a"])
	require.Equal(t, []orders.Status{orders.StatusPaid}, og.statusCalls)
}

func TestDeleteCascadesToOrder(t *testing.T) {
	og := &stubOrders{order: pendingOrder()}
	wf, store, _ := newWorkflow(og, &stubStock{})

	p, _, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 3000})
	require.NoError(t, err)

	warnings, err := wf.Delete(context.Background(), p.ID)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, []string{"order-1"}, og.deleteCalls)

	_, err = store.Get(context.Background(), p.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteOrderFailureIsWarning(t *testing.T) {
	og := &stubOrders{order: pendingOrder(), deleteErr: apperr.Upstream("order service tidak bisa dihubungi", errors.New("dial tcp"))}
	wf, store, _ := newWorkflow(og, &stubStock{})

	p, _, err := wf.Pay(context.Background(), "order-1", PayRequest{Method: "cash", AmountCents: 3000})
	require.NoError(t, err)

	warnings, err := wf.Delete(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	// payment tetap terhapus meski order gagal dihapus
	_, err = store.Get(context.Background(), p.ID)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPaymentsForOrderValidatesOrder(t *testing.T) {
	og := &stubOrders{getErr: apperr.NotFound("pesanan tidak ditemukan")}
	wf, _, _ := newWorkflow(og, &stubStock{})

	_, err := wf.PaymentsForOrder(context.Background(), "nope")
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}
