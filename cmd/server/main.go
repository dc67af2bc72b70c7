package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "rentalshop-backend/internal/api/http"
	"rentalshop-backend/internal/config"
	"rentalshop-backend/internal/logger"
	"rentalshop-backend/internal/repository/postgres"
	"rentalshop-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Shop Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	clock := service.Clock(time.Now)
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.ToolRepository,
		store.CustomerRepository,
		store.LedgerRepository,
		store.OutboxRepository,
		clock,
	)
	ledgerSvc := service.NewLedgerService(
		store.LedgerRepository,
		service.LedgerConfig{
			UndoWindow:           time.Duration(cfg.Ledger.UndoWindowMinutes) * time.Minute,
			CarryForwardScanDays: cfg.Ledger.CarryForwardScanDays,
			OpeningLookbackDays:  cfg.Ledger.OpeningLookbackDays,
		},
		clock,
	)
	customerSvc := service.NewCustomerService(
		store.CustomerRepository,
		store.RentalRepository,
		store.LedgerRepository,
		store.OutboxRepository,
		clock,
	)
	toolSvc := service.NewToolService(store.ToolRepository)

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.Services{
		Rentals:   rentalSvc,
		Ledger:    ledgerSvc,
		Customers: customerSvc,
		Tools:     toolSvc,
	})
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
