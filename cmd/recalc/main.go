// Command recalc runs one batch recalculation over the event portfolio and
// exits. Meant to run as a cron job or Kubernetes CronJob next to the server.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"eventos-backend/internal/cache"
	"eventos-backend/internal/config"
	"eventos-backend/internal/db"
	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"
	"eventos-backend/internal/repositories"
	"eventos-backend/internal/services"
)

func main() {
	states := flag.String("states", "", "Comma-separated accounting states to recalculate (default: all non-cancelled)")
	limit := flag.Int("limit", 0, "Max events to pick up (0 = config default)")
	excludeTax := flag.Bool("exclude-tax", false, "Reconcile on the tax-exclusive basis")
	flag.Parse()

	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v", err)
	}

	tax := finance.NewTaxNormalizer(decimal.NewFromFloat(cfg.Finance.TaxRate))
	engine := finance.NewEngine(tax)
	classifier := finance.NewClassifier()
	aggregator := finance.NewAggregator(classifier)

	eventRepo := repositories.NewEventRepository(pool)
	ledgerRepo := repositories.NewLedgerRepository(pool)
	snapshotRepo := repositories.NewSnapshotRepository(pool)
	aliasRepo := repositories.NewCategoryAliasRepository(pool)

	// Operator aliases must be live before aggregation classifies expenses
	categoryService := services.NewCategoryService(aliasRepo, classifier)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	if err := categoryService.LoadAliases(loadCtx); err != nil {
		log.Printf("[Category] Failed to load aliases: %v (built-in table only)", err)
	}
	cancelLoad()

	recalcService := services.NewRecalcService(
		ledgerRepo, eventRepo, snapshotRepo,
		engine, aggregator,
		cfg.Finance.BatchWorkers,
		time.Duration(cfg.Finance.SnapshotTTLSeconds)*time.Second,
	)

	filter := models.EventFilter{Limit: *limit}
	if filter.Limit == 0 {
		filter.Limit = cfg.Finance.BatchLimit
	}
	if *states != "" {
		for _, s := range strings.Split(*states, ",") {
			filter.States = append(filter.States, models.AccountingState(strings.ToUpper(strings.TrimSpace(s))))
		}
	} else {
		filter.States = []models.AccountingState{
			models.StateOpen,
			models.StatePendingReview,
			models.StateAwaitingPayment,
			models.StatePaid,
			models.StateOverdue,
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := finance.ReconcileOptions{IncludeTax: !*excludeTax}
	report, err := recalcService.RecalculateAll(ctx, filter, opts)

	var partial *finance.BatchPartialFailure
	switch {
	case errors.As(err, &partial):
		log.Printf("Batch %s finished with failures: %d/%d failed", report.RunID, report.Failed, report.Total)
		os.Exit(1)
	case err != nil:
		log.Fatalf("Batch failed: %v", err)
	default:
		log.Printf("Batch %s complete: %d ok, %d skipped", report.RunID, report.Succeeded, report.Skipped)
	}
}
