package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"dorm-manager-backend/config"
	"dorm-manager-backend/internal/api"
	"dorm-manager-backend/internal/auth"
	"dorm-manager-backend/internal/db"
	"dorm-manager-backend/internal/notification"
	"dorm-manager-backend/internal/overdue"
	"dorm-manager-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "dormd ", log.LstdFlags)

	// A local .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		logger.Println("loaded environment from .env")
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	if err := db.Seed(gormDB, os.Getenv("ADMIN_PASSWORD")); err != nil {
		logger.Fatalf("failed to seed database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	sessions := auth.NewSessions(cfg.Session.TTL, cfg.Session.Cleanup)
	logger.Println("data store and session store initialized")

	// Push notifications are optional; without VAPID keys the pool stays off.
	var pool *notification.WorkerPool
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatalf("push is enabled but VAPID keys are not configured")
		}
		webpushOptions := webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
		pool.Start(ctx)
		logger.Printf("notification worker pool started with %d workers", cfg.WorkerPool.Size)
	}

	// Run the overdue invoice sweep in the background.
	overdueSvc := overdue.NewService(cfg, appStore)
	go overdueSvc.Run(ctx)

	// Initialize router
	router := api.NewRouter(appStore, sessions, pool, cfg)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
