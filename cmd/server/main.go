package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"eventos-backend/internal/cache"
	"eventos-backend/internal/config"
	"eventos-backend/internal/database"
	"eventos-backend/internal/db"
	"eventos-backend/internal/finance"
	"eventos-backend/internal/handlers"
	"eventos-backend/internal/health"
	h "eventos-backend/internal/http"
	"eventos-backend/internal/middleware"
	"eventos-backend/internal/repositories"
	"eventos-backend/internal/services"
	"eventos-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (snapshots served from Postgres only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	// This automatically creates all required tables on startup
	// Uses embedded migrations for standalone binary operation
	log.Println("Running database migrations...")
	migrator := database.NewMigratorWithFS(pool, migrations.FS, ".")
	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(migrateCtx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)

	// Finance engine: one normalizer at the configured rate, one classifier
	// shared between the aggregator and the alias service.
	tax := finance.NewTaxNormalizer(decimal.NewFromFloat(cfg.Finance.TaxRate))
	classifier := finance.NewClassifier()
	engine := finance.NewEngine(tax)
	aggregator := finance.NewAggregator(classifier)

	// Repositories
	eventRepo := repositories.NewEventRepository(pool)
	ledgerRepo := repositories.NewLedgerRepository(pool)
	snapshotRepo := repositories.NewSnapshotRepository(pool)
	aliasRepo := repositories.NewCategoryAliasRepository(pool)

	// Services
	recalcService := services.NewRecalcService(
		ledgerRepo, eventRepo, snapshotRepo,
		engine, aggregator,
		cfg.Finance.BatchWorkers,
		time.Duration(cfg.Finance.SnapshotTTLSeconds)*time.Second,
	)
	eventService := services.NewEventService(eventRepo, recalcService)
	ledgerService := services.NewLedgerService(ledgerRepo, eventRepo, tax)
	categoryService := services.NewCategoryService(aliasRepo, classifier)
	reportService := services.NewReportService(eventService, recalcService)

	// Merge operator-maintained aliases over the built-in table
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	if err := categoryService.LoadAliases(startupCtx); err != nil {
		log.Printf("[Category] Failed to load aliases: %v (built-in table only)", err)
	}
	cancelStartup()

	// Handlers
	eventHandler := handlers.NewEventHandler(eventService, recalcService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	recalcHandler := handlers.NewRecalcHandler(recalcService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	reportHandler := handlers.NewReportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(eventHandler, ledgerHandler, recalcHandler, categoryHandler, reportHandler, healthHandler)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("Server running on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
