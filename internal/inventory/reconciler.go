package inventory

import (
	"context"
	"fmt"
	"log"

	kafkago "github.com/segmentio/kafka-go"

	"aurashop/internal/apperr"
	"aurashop/internal/events"
	"aurashop/internal/redisx"
)

// StockReducer: subset repo yang dibutuhkan reconciler (stub-able di test).
type StockReducer interface {
	ReduceStock(ctx context.Context, id string, qty int) error
}

// Reconciler me-retry pengurangan stok yang gagal saat pembayaran.
// Kasir mem-publish stock.reduce_failed; kita konsumsi di sini dengan
// dedup per event supaya stok tidak terpotong dobel.
type Reconciler struct {
	Repo        StockReducer
	Cache       redisx.Cache
	Producer    events.Publisher // publish stock.reduced saat retry sukses
	ServiceName string
}

func (rc *Reconciler) HandleReduceFailed(ctx context.Context, m kafkago.Message) error {
	env, err := events.DecodeEnvelope(m.Value)
	if err != nil {
		return err
	}
	if env.EventType != events.EventStockReduceFailed {
		return nil // ignore
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "inventory-reconciler", env.EventID)
	if exists, _ := rc.Cache.Exists(ctx, dkey); exists {
		return nil
	}

	p, err := events.DecodePayload[events.StockReduceFailedPayload](env.Payload)
	if err != nil {
		return err
	}

	err = rc.Repo.ReduceStock(ctx, p.ProductID, p.Quantity)
	switch {
	case err == nil:
		events.Emit(rc.Producer, rc.ServiceName, events.EventStockReduced, p.OrderID, env.TraceID,
			events.StockReducedPayload{ProductID: p.ProductID, OrderID: p.OrderID, Quantity: p.Quantity})
	case apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindConflict):
		// Permanen: produk hilang atau stok memang kurang. Jangan requeue,
		// cukup log untuk ditindak manual.
		log.Printf("reconcile drop order=%s product=%s qty=%d: %v", p.OrderID, p.ProductID, p.Quantity, err)
	default:
		return err // transient -> jangan commit offset, biar diproses ulang
	}

	_ = rc.Cache.Set(ctx, dkey, "1", redisx.TTLDedup)
	return nil
}
