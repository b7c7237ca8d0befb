// Package main our entry point.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/beautyvilla/server/internal"
	"github.com/beautyvilla/server/internal/chat"
	"github.com/beautyvilla/server/internal/chat/cache"
	"github.com/beautyvilla/server/internal/config"
	"github.com/beautyvilla/server/internal/handler"
	ratelimiter "github.com/beautyvilla/server/internal/rate_limiter"
	"github.com/beautyvilla/server/internal/store"
	"github.com/beautyvilla/server/internal/store/memory"
	"github.com/beautyvilla/server/internal/store/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %+v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Println("Starting application...")

	// Init storage. Without DB_URL the server keeps messages in
	// memory, which is enough for local development.
	var (
		st     store.Store
		dbPool *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		log.Println("Initializing Database connection...")

		dbPool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("could not connect to the postgresql database: %v", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			log.Fatalf("failed to set migration dialect: %v", err)
		}
		dbForGoose := stdlib.OpenDBFromPool(dbPool)
		if err := goose.Up(dbForGoose, "sql/schema"); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		if err := dbForGoose.Close(); err != nil {
			log.Printf("failed to close migration connection: %v", err)
		}

		st = postgres.New(dbPool)
	} else {
		log.Println("DB_URL not set; using in-memory store")
		st = memory.New()
	}

	// Init the unread badge cache. Optional; a nil client disables it.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		log.Println("Initializing Redis connection...")

		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("redis unavailable, unread cache disabled: %v", err)
			redisClient = nil
		}
		cancel()
	}

	registry := chat.NewRegistry()
	service := chat.NewService(st, registry, cache.NewUnread(redisClient))

	authLimiter := ratelimiter.NewIPRateLimiter(10, time.Minute, ratelimiter.CleanupOpts{
		TTL:      10 * time.Minute,
		Interval: time.Minute,
	})
	defer authLimiter.Cancel()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "x-auth-token"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.With(authLimiter.Middleware).Post("/auth/register", handler.Register(st, cfg.JWTSecret))
		r.With(authLimiter.Middleware).Post("/auth/login", handler.Login(st, cfg.JWTSecret))
		r.Get("/auth/user", internal.Middleware(handler.CurrentUser(st), cfg.JWTSecret))

		r.Get("/messages", internal.Middleware(handler.ListMessages(service), cfg.JWTSecret))
		r.Post("/messages", internal.Middleware(handler.CreateMessage(service), cfg.JWTSecret))
		r.Patch("/messages/read", internal.Middleware(handler.MarkMessagesRead(service), cfg.JWTSecret))
	})

	// Admission happens inside the handler; the upgrade request
	// carries the token as a query parameter.
	r.Get("/ws", handler.ServeWs(service, registry, cfg.JWTSecret))

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		log.Printf("Server starting at 0.0.0.0:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutdown signal received; shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println(err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("couldn't close redis client: %+v", err)
		}
	}

	if dbPool != nil {
		dbPool.Close()
	}

	log.Println("Server stopped")
}
