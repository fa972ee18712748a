package services

import (
	"context"
	"fmt"
	"log"

	"eventos-backend/internal/cache"
	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"
	"eventos-backend/internal/repositories"
)

// EventService owns event lifecycle operations. Closing and cancelling both
// feed straight into a recalculation so the derived state catches up
// immediately instead of waiting for the next batch run.
type EventService struct {
	events *repositories.EventRepository
	recalc *RecalcService
}

func NewEventService(events *repositories.EventRepository, recalc *RecalcService) *EventService {
	return &EventService{events: events, recalc: recalc}
}

// Create registers a new event
func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if req.EstimatedIncome.Sign() < 0 {
		return nil, fmt.Errorf("estimated income cannot be negative")
	}

	event, err := s.events.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	cache.InvalidateEventLists(ctx)
	return event, nil
}

// Get returns one event
func (s *EventService) Get(ctx context.Context, id int) (*models.Event, error) {
	return s.events.Get(ctx, id)
}

// List returns events matching the filter
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	return s.events.List(ctx, filter)
}

// Close records the closing trigger and recalculates, which is what actually
// moves the event along the review ladder.
func (s *EventService) Close(ctx context.Context, id int) (*finance.FinancialSnapshot, error) {
	event, err := s.events.Close(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Printf("[Event] Event %d (%s) closed", event.ID, event.Name)
	cache.InvalidateEventLists(ctx)

	return s.recalc.Recalculate(ctx, id, finance.ReconcileOptions{IncludeTax: true})
}

// Cancel moves the event to the terminal Cancelled state and rebuilds its
// snapshot one last time so the stored numbers reflect the final ledger.
func (s *EventService) Cancel(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.events.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Printf("[Event] Event %d (%s) cancelled", event.ID, event.Name)
	cache.InvalidateEventLists(ctx)
	cache.InvalidateSnapshot(ctx, id)

	if _, err := s.recalc.Recalculate(ctx, id, finance.ReconcileOptions{IncludeTax: true}); err != nil {
		// The cancellation itself is committed; a snapshot refresh failure
		// only delays the stored numbers.
		log.Printf("[Event] Post-cancel recalculation for event %d failed: %v", id, err)
	}
	return event, nil
}
