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
	if err := orders.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producers per topic, dirangkai lewat TopicRouter.
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pPaid := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPaid, 1024)
	pPaid.Start(ctx)

	svc := &orders.Service{
		Repo:     &orders.Repo{DB: db},
		Products: inventory.NewClient(cfg.InventoryBaseURL),
		Payments: payments.NewClient(cfg.KasirBaseURL),
		Cache:    redisx.NewCache(rdb),
		Producer: events.TopicRouter{Routes: map[string]events.Publisher{
			events.EventOrderCreated: pCreated,
			events.EventOrderPaid:    pPaid,
		}},
		ServiceName: cfg.ServiceName + "-orders",
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Svc: svc}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.OrdersAddr, Handler: router}

	go func() {
		log.Printf("orders HTTP listening at %s", cfg.OrdersAddr)
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
	pCreated.Close()
	pPaid.Close()
	cancel()
	pCreated.WaitClosed()
	pPaid.WaitClosed()
}
