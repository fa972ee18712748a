package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"eventos-backend/internal/cache"
	"eventos-backend/internal/finance"
	"eventos-backend/internal/metrics"
	"eventos-backend/internal/models"
	"eventos-backend/internal/timeutil"
)

// LedgerSource provides one consistent cut of an event and its ledger, plus
// the cross-event slice of unsettled commitments the overdue monitor scans.
type LedgerSource interface {
	ReadEventLedger(ctx context.Context, eventID int) (*models.Event, []models.LedgerRecord, error)
	ListUnsettledCommitments(ctx context.Context, before time.Time) ([]models.LedgerRecord, error)
}

// EventStateStore persists derived event state.
type EventStateStore interface {
	List(ctx context.Context, filter models.EventFilter) ([]*models.Event, error)
	UpdateAccountingState(ctx context.Context, id int, state models.AccountingState) error
	MarkSnapshotStale(ctx context.Context, id int, stale bool) error
}

// SnapshotStore persists computed snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap *finance.FinancialSnapshot) error
	Latest(ctx context.Context, eventID int, basis finance.TaxBasis) (*finance.FinancialSnapshot, error)
}

// RecalcService rebuilds financial snapshots from the ledger. Every snapshot
// is recomputed from scratch; nothing is patched incrementally.
type RecalcService struct {
	ledger    LedgerSource
	events    EventStateStore
	snapshots SnapshotStore

	engine     *finance.Engine
	aggregator *finance.Aggregator

	workers     int
	snapshotTTL time.Duration

	// group collapses concurrent recalculations of the same event and basis
	// into one computation.
	group singleflight.Group
}

func NewRecalcService(
	ledger LedgerSource,
	events EventStateStore,
	snapshots SnapshotStore,
	engine *finance.Engine,
	aggregator *finance.Aggregator,
	workers int,
	snapshotTTL time.Duration,
) *RecalcService {
	if workers <= 0 {
		workers = 4
	}
	return &RecalcService{
		ledger:      ledger,
		events:      events,
		snapshots:   snapshots,
		engine:      engine,
		aggregator:  aggregator,
		workers:     workers,
		snapshotTTL: snapshotTTL,
	}
}

// Recalculate rebuilds the snapshot for one event in the requested tax basis,
// persists it and refreshes the cache. Safe to call repeatedly: recalculating
// an unchanged ledger reproduces the same snapshot.
func (s *RecalcService) Recalculate(ctx context.Context, eventID int, opts finance.ReconcileOptions) (*finance.FinancialSnapshot, error) {
	key := fmt.Sprintf("%d:%t", eventID, opts.IncludeTax)
	if opts.AsOf != nil {
		key = fmt.Sprintf("%s:%d", key, opts.AsOf.UnixNano())
	}
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		snap, err := s.recalculateOnce(ctx, eventID, opts)
		if errors.Is(err, finance.ErrConcurrentMutation) {
			// The ledger moved under us; one immediate retry sees the new cut.
			metrics.RecalculationsTotal.WithLabelValues("retry").Inc()
			snap, err = s.recalculateOnce(ctx, eventID, opts)
		}
		return snap, err
	})
	if err != nil {
		metrics.RecalculationsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.RecalculationsTotal.WithLabelValues("success").Inc()
	return v.(*finance.FinancialSnapshot), nil
}

func (s *RecalcService) recalculateOnce(ctx context.Context, eventID int, opts finance.ReconcileOptions) (*finance.FinancialSnapshot, error) {
	start := time.Now()
	defer func() {
		metrics.RecalculationDuration.Observe(time.Since(start).Seconds())
	}()

	event, records, err := s.ledger.ReadEventLedger(ctx, eventID)
	if err != nil {
		return nil, err
	}

	asOf := timeutil.Now()
	if opts.AsOf != nil {
		asOf = *opts.AsOf
	}
	aggs := s.aggregator.Aggregate(records, &asOf)
	snap := s.engine.Reconcile(event, aggs, opts)
	snap.ComputedAt = asOf

	overdue := finance.FindOverdue(records, asOf)
	next := finance.NextAccountingState(event.AccountingState, transitionInput(event, records, snap, overdue))
	snap.AccountingState = next

	// A point-in-time cut describes the past; it never overwrites the stored
	// latest snapshot, drives no state transition, and is not cached.
	if opts.AsOf != nil {
		return snap, nil
	}

	if next != event.AccountingState {
		if err := s.events.UpdateAccountingState(ctx, eventID, next); err != nil {
			return nil, fmt.Errorf("failed to persist state %s for event %d: %w", next, eventID, err)
		}
		log.Printf("[Recalc] Event %d: %s -> %s", eventID, event.AccountingState, next)
	}

	if err := s.snapshots.Save(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.events.MarkSnapshotStale(ctx, eventID, false); err != nil {
		return nil, err
	}
	s.cacheSnapshot(ctx, snap)

	return snap, nil
}

// transitionInput derives the state-machine signals from one ledger cut.
func transitionInput(event *models.Event, records []models.LedgerRecord, snap *finance.FinancialSnapshot, overdue []finance.OverdueRecord) finance.TransitionInput {
	allInvoiced := snap.HasIncomeRecords
	for i := range records {
		r := &records[i]
		if r.SoftDeleted || r.Kind != models.KindIncome {
			continue
		}
		if r.InvoiceRef == "" {
			allInvoiced = false
			break
		}
	}

	return finance.TransitionInput{
		ClosingTriggered:    event.ClosedAt != nil,
		HasUnreviewedIncome: snap.HasIncomeRecords,
		AllIncomesInvoiced:  allInvoiced,
		FullyCollected:      snap.Status.CollectionStatus == finance.CollectionFull,
		HasOverdue:          len(overdue) > 0,
	}
}

// GetSnapshot serves the cached snapshot when fresh, falls back to the stored
// one, and recalculates only when nothing has been computed yet. A stored
// snapshot whose ledger has mutated since it was built is served with the
// Stale flag set rather than blocking the read on a recalculation.
func (s *RecalcService) GetSnapshot(ctx context.Context, event *models.Event, opts finance.ReconcileOptions) (*finance.FinancialSnapshot, error) {
	// Point-in-time reads always recompute; the cache and the stored row only
	// describe the present cut.
	if opts.AsOf != nil {
		return s.Recalculate(ctx, event.ID, opts)
	}

	basis := finance.BasisInclusive
	if !opts.IncludeTax {
		basis = finance.BasisExclusive
	}

	if !event.SnapshotStale {
		if data, ok := cache.GetCached(ctx, cache.SnapshotKey(event.ID, string(basis))); ok {
			var snap finance.FinancialSnapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				metrics.SnapshotCacheHits.Inc()
				return &snap, nil
			}
		}
	}
	metrics.SnapshotCacheMisses.Inc()

	snap, err := s.snapshots.Latest(ctx, event.ID, basis)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return s.Recalculate(ctx, event.ID, opts)
	}

	snap.Stale = event.SnapshotStale
	if !snap.Stale {
		s.cacheSnapshot(ctx, snap)
	}
	return snap, nil
}

func (s *RecalcService) cacheSnapshot(ctx context.Context, snap *finance.FinancialSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	cache.SetCached(ctx, cache.SnapshotKey(snap.EventID, string(snap.TaxBasis)), data, s.snapshotTTL)
}

// FindOverdue lists the event's unsettled commitments past their committed
// payment date as of the given cut.
func (s *RecalcService) FindOverdue(ctx context.Context, eventID int, asOf time.Time) ([]finance.OverdueRecord, error) {
	_, records, err := s.ledger.ReadEventLedger(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return finance.FindOverdue(records, asOf), nil
}

// FindOverdueAcrossEvents lists unsettled commitments past their committed
// payment date across the whole portfolio, for the collections/reminder view.
func (s *RecalcService) FindOverdueAcrossEvents(ctx context.Context, asOf time.Time) ([]finance.OverdueRecord, error) {
	records, err := s.ledger.ListUnsettledCommitments(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return finance.FindOverdue(records, asOf), nil
}

type batchJob struct {
	eventID int
}

// RecalculateAll recalculates every event matching the filter with a fixed
// worker pool. One event failing never stops the others; the report carries
// the per-event outcome. When some events fail, the successful snapshots are
// still persisted and a BatchPartialFailure is returned alongside the report.
func (s *RecalcService) RecalculateAll(ctx context.Context, filter models.EventFilter, opts finance.ReconcileOptions) (*models.BatchReport, error) {
	report := &models.BatchReport{
		RunID:     uuid.New(),
		StartedAt: timeutil.Now(),
	}

	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for batch %s: %w", report.RunID, err)
	}
	report.Total = len(events)
	log.Printf("[Recalc] Batch %s: %d events, %d workers", report.RunID, len(events), s.workers)

	jobs := make(chan batchJob)
	results := make(chan models.RecalcResult)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				result := models.RecalcResult{EventID: job.eventID}
				if _, err := s.Recalculate(ctx, job.eventID, opts); err != nil {
					result.Error = err.Error()
				} else {
					result.Success = true
				}
				results <- result
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, event := range events {
			select {
			case jobs <- batchJob{eventID: event.ID}:
			case <-ctx.Done():
				// Stop dispatching; in-flight events finish on their own.
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		report.Results = append(report.Results, result)
		if result.Success {
			report.Succeeded++
		} else {
			report.Failed++
			log.Printf("[Recalc] Batch %s: event %d failed: %s", report.RunID, result.EventID, result.Error)
		}
	}
	report.Skipped = report.Total - report.Succeeded - report.Failed
	report.FinishedAt = timeutil.Now()

	switch {
	case ctx.Err() != nil:
		metrics.BatchRunsTotal.WithLabelValues("cancelled").Inc()
	case report.Failed > 0:
		metrics.BatchRunsTotal.WithLabelValues("partial").Inc()
	default:
		metrics.BatchRunsTotal.WithLabelValues("complete").Inc()
	}

	log.Printf("[Recalc] Batch %s done: %d ok, %d failed, %d skipped",
		report.RunID, report.Succeeded, report.Failed, report.Skipped)

	if report.Failed > 0 {
		return report, &finance.BatchPartialFailure{
			RunID:  report.RunID,
			Failed: report.Failed,
			Total:  report.Total,
		}
	}
	return report, nil
}
