package payments

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"aurashop/internal/apperr"
	"aurashop/internal/events"
	"aurashop/internal/orders"
	"aurashop/internal/redisx"
)

type Store interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]Payment, error)
	List(ctx context.Context, f ListFilter) ([]Payment, error)
	MarkFailed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type OrderGateway interface {
	GetOrder(ctx context.Context, id string) (orders.Order, error)
	UpdateStatus(ctx context.Context, id string, status orders.Status) error
	DeleteOrder(ctx context.Context, id string) error
}

type StockGateway interface {
	ReduceStock(ctx context.Context, productID string, qty int) error
}

// Workflow: alur bayar lintas service. Urutannya tetap call HTTP sinkron
// (kontrak sistem), ditambah idempotency key + event log + kompensasi
// untuk kegagalan update status.
type Workflow struct {
	Repo        Store
	Orders      OrderGateway
	Inventory   StockGateway
	Cache       redisx.Cache
	Producer    events.Publisher
	ServiceName string
}

type PayRequest struct {
	Method      string `json:"paymentMethod"`
	AmountCents int64  `json:"amount"`
}

// Pay memproses pembayaran untuk satu order.
//
// Langkah 1-4 fail-fast. Setelah payment tersimpan: gagal flip status order
// = kompensasi (payment ditandai failed); gagal reduce-stok per item = non-fatal,
// masuk warnings + event stock.reduce_failed untuk reconciler.
func (w *Workflow) Pay(ctx context.Context, orderID string, req PayRequest) (Payment, []Warning, error) {
	if req.Method == "" {
		return Payment{}, nil, apperr.Invalid("paymentMethod wajib diisi")
	}
	if req.AmountCents <= 0 {
		return Payment{}, nil, apperr.Invalid("jumlah pembayaran tidak valid")
	}

	o, err := w.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return Payment{}, nil, err
	}
	if o.Status == orders.StatusPaid {
		return Payment{}, nil, apperr.Conflict("pesanan sudah dibayar")
	}
	if o.Status != orders.StatusPending {
		return Payment{}, nil, apperr.Newf(apperr.KindConflict, "pesanan berstatus %s, tidak bisa dibayar", o.Status)
	}
	if req.AmountCents != o.TotalCents {
		return Payment{}, nil, apperr.Newf(apperr.KindInvalid,
			"jumlah pembayaran (%d) tidak sesuai total pesanan (%d)", req.AmountCents, o.TotalCents)
	}

	p := Payment{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Method:      req.Method,
		AmountCents: req.AmountCents,
		Status:      StatusSuccess,
	}

	// Idempotency: replay request yang sama mengembalikan payment lama,
	// tanpa mengulang flip status / potong stok.
	idemKey := fmt.Sprintf(redisx.KeyIdemPayment, orderID)
	fresh, err := w.Cache.SetNX(ctx, idemKey, p.ID, redisx.TTLIdempotency)
	if err == nil && !fresh {
		if prevID, gerr := w.Cache.Get(ctx, idemKey); gerr == nil && prevID != "" {
			if prev, gerr := w.Repo.Get(ctx, prevID); gerr == nil && prev.Status == StatusSuccess {
				return prev, nil, nil
			}
		}
		return Payment{}, nil, apperr.Conflict("pembayaran untuk pesanan ini sedang diproses")
	}

	if err := w.Repo.Create(ctx, &p); err != nil {
		_ = w.Cache.Del(ctx, idemKey)
		return Payment{}, nil, err
	}

	trace := middleware.GetReqID(ctx)

	if err := w.Orders.UpdateStatus(ctx, orderID, orders.StatusPaid); err != nil {
		// Kompensasi: payment jangan dibiarkan "success" kalau order
		// tidak pernah tercatat paid.
		_ = w.Repo.MarkFailed(ctx, p.ID)
		_ = w.Cache.Del(ctx, idemKey)
		return Payment{}, nil, apperr.Wrap(apperr.KindUpstream, "gagal memperbarui status pesanan", err)
	}

	var warnings []Warning
	for _, it := range o.Items {
		if err := w.Inventory.ReduceStock(ctx, it.ProductID, it.Quantity); err != nil {
			warnings = append(warnings, Warning{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Warning:   apperr.Message(err),
			})
			events.Emit(w.Producer, w.ServiceName, events.EventStockReduceFailed, orderID, trace,
				events.StockReduceFailedPayload{
					ProductID: it.ProductID,
					OrderID:   orderID,
					Quantity:  it.Quantity,
					Reason:    apperr.KindOf(err).String(),
				})
		}
	}

	events.Emit(w.Producer, w.ServiceName, events.EventPaymentRecorded, orderID, trace,
		events.PaymentRecordedPayload{
			PaymentID:   p.ID,
			OrderID:     orderID,
			Method:      p.Method,
			AmountCents: p.AmountCents,
			Status:      p.Status,
		})
	events.Emit(w.Producer, w.ServiceName, events.EventOrderPaid, orderID, trace,
		events.OrderPaidPayload{OrderID: orderID, PaymentID: p.ID, TotalCents: o.TotalCents})

	return p, warnings, nil
}

// PaymentsForOrder memvalidasi order dulu ke order service (kontrak lama),
// baru baca riwayat lokal.
func (w *Workflow) PaymentsForOrder(ctx context.Context, orderID string) ([]Payment, error) {
	if _, err := w.Orders.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return w.Repo.ListByOrder(ctx, orderID)
}

// Delete menghapus payment lalu order terkait (cascade lintas service).
// Gagal hapus order tidak membatalkan hapus payment; dilaporkan sebagai warning.
func (w *Workflow) Delete(ctx context.Context, id string) ([]Warning, error) {
	p, err := w.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.Repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	_ = w.Cache.Del(ctx, fmt.Sprintf(redisx.KeyIdemPayment, p.OrderID))

	var warnings []Warning
	if err := w.Orders.DeleteOrder(ctx, p.OrderID); err != nil && !apperr.Is(err, apperr.KindNotFound) {
		warnings = append(warnings, Warning{
			Warning: fmt.Sprintf("pembayaran terhapus tapi pesanan %s gagal dihapus: %s", p.OrderID, apperr.Message(err)),
		})
	}
	return warnings, nil
}
