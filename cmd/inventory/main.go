package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"aurashop/internal/config"
	"aurashop/internal/events"
	"aurashop/internal/httpx"
	"aurashop/internal/inventory"
	kafkax "aurashop/internal/kafka"
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
	if err := inventory.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer: stock.reduced (dipakai handler & reconciler)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicStockReduced, 1024)
	prod.Start(ctx)

	repo := &inventory.Repo{DB: db}
	router := httpx.NewRouter()
	ih := &httpx.InventoryHandler{
		Repo:        repo,
		Producer:    prod,
		ServiceName: cfg.ServiceName + "-inventory",
	}
	ih.Register(router)

	// Reconciler: retry reduce-stok yang gagal saat pembayaran.
	rc := &inventory.Reconciler{
		Repo:        repo,
		Cache:       redisx.NewCache(rdb),
		Producer:    prod,
		ServiceName: cfg.ServiceName + "-inventory",
	}
	group := getenv("RECONCILER_GROUP", "inventory-reconciler")
	workers := mustAtoi(os.Getenv("RECONCILER_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicStockReduceFailed, workers)

	srv := &http.Server{Addr: cfg.InventoryAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("inventory HTTP listening at %s", cfg.InventoryAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("reconciler started: group=%s topic=%s workers=%d", group, events.TopicStockReduceFailed, workers)
		return cons.Start(gctx, rc.HandleReduceFailed)
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	if err := g.Wait(); err != nil {
		log.Printf("exit: %v", err)
	}
	prod.Close()
	prod.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
