package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"aurashop/internal/apperr"
	"aurashop/internal/events"
	"aurashop/internal/inventory"
	"aurashop/internal/redisx"
)

type Store interface {
	Create(ctx context.Context, o *Order) (existed bool, err error)
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, status Status) ([]Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Update(ctx context.Context, o Order) error
	UpdateStatus(ctx context.Context, id string, to Status) error
	Delete(ctx context.Context, id string) error
}

// ProductSource: harga & nama produk selalu diambil dari inventory service,
// bukan dari input client.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (inventory.Product, error)
}

// PaymentSource: riwayat pembayaran untuk invoice, sumbernya kasir service.
type PaymentSource interface {
	PaymentsByOrder(ctx context.Context, orderID string) ([]PaymentRecord, error)
}

type Service struct {
	Repo        Store
	Products    ProductSource
	Payments    PaymentSource
	Cache       redisx.Cache
	Producer    events.Publisher
	ServiceName string
}

type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateRequest struct {
	ExternalID   string      `json:"external_id"`
	UserID       string      `json:"user_id"`
	CustomerName string      `json:"customer_name"`
	Notes        string      `json:"notes"`
	Items        []ItemInput `json:"items"`
	// TotalCents opsional; kalau diisi harus cocok dengan hasil hitung server.
	TotalCents *int64 `json:"total_cents"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Order, bool, error) {
	if req.UserID == "" {
		return Order{}, false, apperr.Invalid("user_id wajib diisi")
	}
	if len(req.Items) == 0 {
		return Order{}, false, apperr.Invalid("items tidak boleh kosong")
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return Order{}, false, apperr.Invalid("setiap item butuh product_id dan quantity > 0")
		}
	}

	items, total, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return Order{}, false, err
	}
	if req.TotalCents != nil && *req.TotalCents != total {
		return Order{}, false, apperr.Newf(apperr.KindInvalid,
			"total_cents dari client (%d) tidak cocok dengan hasil hitung server (%d)", *req.TotalCents, total)
	}

	o := Order{
		ID:           uuid.NewString(),
		ExternalID:   req.ExternalID,
		UserID:       req.UserID,
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
		Status:       StatusPending,
		TotalCents:   total,
		Items:        items,
	}
	existed, err := s.Repo.Create(ctx, &o)
	if err != nil {
		return Order{}, false, err
	}
	if existed {
		return o, true, nil
	}

	s.cacheStatus(ctx, o.ID, o.Status)

	evItems := make([]events.OrderItemRef, 0, len(items))
	for _, it := range items {
		evItems = append(evItems, events.OrderItemRef{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	events.Emit(s.Producer, s.ServiceName, events.EventOrderCreated, o.ID, middleware.GetReqID(ctx),
		events.OrderCreatedPayload{
			OrderID:    o.ID,
			ExternalID: o.ExternalID,
			UserID:     o.UserID,
			Items:      evItems,
			TotalCents: total,
		})

	return o, false, nil
}

// priceItems ambil produk dari inventory secara paralel (maks 4 sekaligus)
// dan bangun snapshot item. Produk hilang = batalkan seluruh order.
func (s *Service) priceItems(ctx context.Context, in []ItemInput) ([]Item, int64, error) {
	items := make([]Item, len(in))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, it := range in {
		i, it := i, it
		g.Go(func() error {
			p, err := s.Products.GetProduct(gctx, it.ProductID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					return apperr.Newf(apperr.KindNotFound, "produk %s tidak ditemukan", it.ProductID)
				}
				return err
			}
			items[i] = Item{
				ProductID:     p.ID,
				Name:          p.Name,
				PriceCents:    p.PriceCents,
				Quantity:      it.Quantity,
				SubtotalCents: p.PriceCents * int64(it.Quantity),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var total int64
	for _, it := range items {
		total += it.SubtotalCents
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status) ([]Order, error) {
	if status != "" && !ValidStatus(status) {
		return nil, apperr.Newf(apperr.KindInvalid, "status tidak dikenal: %s", status)
	}
	return s.Repo.List(ctx, status)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Status: jalur cepat untuk polling POS; cache dulu, DB belakangan.
func (s *Service) Status(ctx context.Context, id string) (Status, error) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	if v, err := s.Cache.Get(ctx, key); err == nil && v != "" {
		return Status(v), nil
	}
	o, err := s.Repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	s.cacheStatus(ctx, id, o.Status)
	return o.Status, nil
}

type UpdateRequest struct {
	CustomerName *string     `json:"customer_name"`
	Notes        *string     `json:"notes"`
	Items        []ItemInput `json:"items"`
}

func (s *Service) UpdateFields(ctx context.Context, id string, req UpdateRequest) (Order, error) {
	o, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if req.CustomerName != nil {
		o.CustomerName = *req.CustomerName
	}
	if req.Notes != nil {
		o.Notes = *req.Notes
	}
	if req.Items != nil {
		items, total, err := s.priceItems(ctx, req.Items)
		if err != nil {
			return Order{}, err
		}
		o.Items = items
		o.TotalCents = total
	} else {
		o.Items = nil // jangan sentuh order_items
	}
	if err := s.Repo.Update(ctx, o); err != nil {
		return Order{}, err
	}
	return s.Repo.Get(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) error {
	if !ValidStatus(to) {
		return apperr.Newf(apperr.KindInvalid, "status tidak dikenal: %s", to)
	}
	if err := s.Repo.UpdateStatus(ctx, id, to); err != nil {
		return err
	}
	s.cacheStatus(ctx, id, to)
	if to == StatusPaid {
		events.Emit(s.Producer, s.ServiceName, events.EventOrderPaid, id, middleware.GetReqID(ctx),
			events.OrderPaidPayload{OrderID: id})
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// Invoice: order + riwayat pembayaran. Kasir unreachable bukan alasan
// menolak invoice; payments dikosongkan saja (loose coupling khas sistem ini).
func (s *Service) Invoice(ctx context.Context, id string) (Invoice, error) {
	o, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	inv := Invoice{Order: o, IssuedAt: time.Now().UTC()}
	if s.Payments != nil {
		if ps, err := s.Payments.PaymentsByOrder(ctx, id); err == nil {
			inv.Payments = ps
		}
	}
	return inv, nil
}

func (s *Service) cacheStatus(ctx context.Context, id string, st Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	_ = s.Cache.Set(ctx, key, string(st), redisx.TTLStatusCache)
}
