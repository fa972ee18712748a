package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"eventos-backend/internal/cache"
	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"
	"eventos-backend/internal/repositories"
)

// LedgerService owns ledger mutations. Every write marks the event's snapshot
// stale and drops the cached snapshot, so reads never serve silently outdated
// math.
type LedgerService struct {
	ledger *repositories.LedgerRepository
	events *repositories.EventRepository
	tax    finance.TaxNormalizer
}

func NewLedgerService(ledger *repositories.LedgerRepository, events *repositories.EventRepository, tax finance.TaxNormalizer) *LedgerService {
	return &LedgerService{ledger: ledger, events: events, tax: tax}
}

// Create validates and inserts a new ledger record. When only the
// tax-inclusive total is given, the subtotal and tax are derived by the
// normalizer; explicit triples must already be consistent.
func (s *LedgerService) Create(ctx context.Context, req *models.CreateLedgerRecordRequest) (*models.LedgerRecord, error) {
	switch req.Kind {
	case models.KindIncome, models.KindExpense, models.KindProvision:
	default:
		return nil, fmt.Errorf("unknown record kind %q", req.Kind)
	}

	// Ensure the event exists before writing
	if _, err := s.events.Get(ctx, req.EventID); err != nil {
		return nil, err
	}

	if req.AmountSubtotal.IsZero() && req.TaxAmount.IsZero() && !req.AmountTotal.IsZero() {
		req.AmountSubtotal, req.TaxAmount = s.tax.Split(req.AmountTotal)
	}
	if !finance.ConsistentTriple(req.AmountSubtotal, req.TaxAmount, req.AmountTotal) {
		return nil, fmt.Errorf("amounts are inconsistent: %s + %s != %s",
			req.AmountSubtotal, req.TaxAmount, req.AmountTotal)
	}
	if req.OccursOn.IsZero() {
		req.OccursOn = time.Now()
	}

	rec, err := s.ledger.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.markMutated(ctx, rec.EventID)
	return rec, nil
}

// Update applies a partial update to a ledger record
func (s *LedgerService) Update(ctx context.Context, id int, req *models.UpdateLedgerRecordRequest) (*models.LedgerRecord, error) {
	current, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.SoftDeleted {
		return nil, fmt.Errorf("ledger record %d is deleted", id)
	}

	// Validate the post-update triple when any amount changes
	subtotal, tax, total := current.AmountSubtotal, current.TaxAmount, current.AmountTotal
	if req.AmountSubtotal != nil {
		subtotal = *req.AmountSubtotal
	}
	if req.TaxAmount != nil {
		tax = *req.TaxAmount
	}
	if req.AmountTotal != nil {
		total = *req.AmountTotal
	}
	if !finance.ConsistentTriple(subtotal, tax, total) {
		return nil, fmt.Errorf("amounts are inconsistent: %s + %s != %s", subtotal, tax, total)
	}

	rec, err := s.ledger.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.markMutated(ctx, rec.EventID)
	return rec, nil
}

// Delete soft-deletes a ledger record
func (s *LedgerService) Delete(ctx context.Context, id int) error {
	rec, err := s.ledger.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ledger.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.markMutated(ctx, rec.EventID)
	return nil
}

// ListByEvent returns the live ledger of one event
func (s *LedgerService) ListByEvent(ctx context.Context, eventID int) ([]models.LedgerRecord, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.ledger.ListByEvent(ctx, eventID, false)
}

// ConvertProvision realizes a provision as an actual expense in one
// transaction. The provision stops counting toward liability, the new expense
// starts unsettled.
func (s *LedgerService) ConvertProvision(ctx context.Context, provisionID int) (*models.LedgerRecord, error) {
	expense, err := s.ledger.ConvertProvision(ctx, provisionID)
	if err != nil {
		return nil, err
	}
	log.Printf("[Ledger] Provision %d converted to expense %d (event %d)",
		provisionID, expense.ID, expense.EventID)
	s.markMutated(ctx, expense.EventID)
	return expense, nil
}

func (s *LedgerService) markMutated(ctx context.Context, eventID int) {
	if err := s.events.MarkSnapshotStale(ctx, eventID, true); err != nil {
		log.Printf("[Ledger] Failed to mark event %d stale: %v", eventID, err)
	}
	cache.InvalidateSnapshot(ctx, eventID)
}
