package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"aurashop/internal/config"
	"aurashop/internal/events"
	"aurashop/internal/httpx"
	"aurashop/internal/inventory"
	kafkax "aurashop/internal/kafka"
	"aurashop/internal/orders"
	"aurashop/internal/payments"
	"aurashop/internal/postgres"
	"aurashop/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := payments.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producers per topic.
	pRecorded := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicPaymentRecorded, 1024)
	pRecorded.Start(ctx)
	pPaid := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPaid, 1024)
	pPaid.Start(ctx)
	pFailed := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicStockReduceFailed, 1024)
	pFailed.Start(ctx)

	wf := &payments.Workflow{
		Repo:      &payments.Repo{DB: db},
		Orders:    orders.NewClient(cfg.OrdersBaseURL),
		Inventory: inventory.NewClient(cfg.InventoryBaseURL),
		Cache:     redisx.NewCache(rdb),
		Producer: events.TopicRouter{Routes: map[string]events.Publisher{
			events.EventPaymentRecorded:   pRecorded,
			events.EventOrderPaid:         pPaid,
			events.EventStockReduceFailed: pFailed,
		}},
		ServiceName: cfg.ServiceName + "-kasir",
	}

	router := httpx.NewRouter()
	ph := &httpx.PaymentsHandler{WF: wf}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.KasirAddr, Handler: router}

	go func() {
		log.Printf("kasir HTTP listening at %s", cfg.KasirAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range []*kafkax.Producer{pRecorded, pPaid, pFailed} {
		p.Close()
	}
	cancel()
	for _, p := range []*kafkax.Producer{pRecorded, pPaid, pFailed} {
		p.WaitClosed()
	}
}
