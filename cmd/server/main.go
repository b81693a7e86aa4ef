package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comanda-pos/api/internal/catalog"
	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/jobs"
	"github.com/comanda-pos/api/internal/mq"
	"github.com/comanda-pos/api/internal/router"
	"github.com/comanda-pos/api/internal/service"
	"github.com/comanda-pos/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations applied")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Realtime feed
	hub := ws.NewHub()
	go hub.Run(ctx)

	publishers := service.Publishers{hub}
	if cfg.AMQPURL != "" {
		broker, err := mq.Dial(cfg.AMQPURL)
		if err != nil {
			log.Printf("WARN: broker publishing disabled: %v", err)
		} else {
			defer broker.Close()
			publishers = append(publishers, broker)
			log.Printf("Publishing events to exchange %s", mq.Exchange)
		}
	}

	queries := database.New(pool)
	reader := catalog.NewReader(queries)
	var products service.Catalog = reader
	if rdb := newRedisClient(cfg.RedisURL); rdb != nil {
		defer rdb.Close()
		products = catalog.NewCached(reader, rdb, cfg.CatalogCacheTTL)
		log.Printf("Catalog cache enabled (ttl %s)", cfg.CatalogCacheTTL)
	}

	engine := service.NewEngine(
		pool,
		func(db database.DBTX) service.Store { return database.New(db) },
		products,
		service.WithPublisher(publishers),
		service.WithUrgentAfter(cfg.UrgentAfter),
	)

	sweep := jobs.NewOverdueSweepJob(engine, publishers, cfg.OverdueSweep, slog.Default())
	if err := sweep.Start(); err != nil {
		log.Fatalf("Failed to start overdue sweep: %v", err)
	}
	defer sweep.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, engine, reader, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: graceful shutdown: %v", err)
	}
}

// newRedisClient returns nil when url is empty or the server is unreachable;
// the catalog then reads straight from Postgres.
func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("WARN: invalid REDIS_URL, catalog cache disabled: %v", err)
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("WARN: redis unreachable, catalog cache disabled: %v", err)
		_ = client.Close()
		return nil
	}
	return client
}
