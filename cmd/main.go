package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/andressep95/estate-admin/internal/config"
	"github.com/andressep95/estate-admin/internal/repository"
	"github.com/andressep95/estate-admin/internal/repository/file"
	"github.com/andressep95/estate-admin/internal/repository/memory"
	"github.com/andressep95/estate-admin/internal/repository/postgres"
	"github.com/andressep95/estate-admin/internal/repository/redisstore"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize session store
	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.Store.Driver, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp(cfg, store, http.DefaultTransport, os.Stdout, os.Stderr)
	code := a.run(ctx, os.Args[1:])

	stop()
	closeStore()
	os.Exit(code)
}

// openStore selects the key-value store the session lives in
func openStore(cfg *config.Config) (repository.KeyValueStore, func(), error) {
	noop := func() {}

	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Println("[STORE] Using in-memory store, the session ends with the process")
		return memory.NewStore(), noop, nil

	case config.StoreFile:
		store, err := file.NewStore(cfg.Store.Dir, cfg.Store.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case config.StoreRedis:
		redisClient, err := initRedis(cfg)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing Redis connection: %v", err)
			}
		}
		return redisstore.NewStore(redisClient, cfg.Store.Namespace), closer, nil

	case config.StorePostgres:
		db, err := initDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database connection: %v", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			closer()
			return nil, nil, err
		}
		return postgres.NewStoreRepository(db, cfg.Store.Namespace), closer, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// initDB opens the session database with retry logic. DB_DRIVER picks
// lib/pq ("postgres") or pgx's database/sql driver ("pgx").
func initDB(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 3
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect(cfg.Database.Driver, dsn)
		if err == nil {
			break
		}

		log.Printf("[STORE] Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	// A console needs very few connections
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// initRedis initializes Redis client and verifies connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("Error closing Redis after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
