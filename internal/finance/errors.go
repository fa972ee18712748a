package finance

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrMissingEvent is returned when a recalculation is requested for an
	// event that does not exist. Surfaced to the caller, never retried.
	ErrMissingEvent = errors.New("event not found")

	// ErrConcurrentMutation is returned when a recalculation observes the
	// ledger changing mid-computation. Retried once, then surfaced.
	ErrConcurrentMutation = errors.New("ledger changed during recalculation")
)

// InconsistentRecordError reports a ledger record whose stored amounts break
// the total = subtotal + tax invariant beyond rounding tolerance. The record
// is excluded from aggregation and reported so the upstream data-entry bug
// stays visible.
type InconsistentRecordError struct {
	RecordID int             `json:"record_id"`
	EventID  int             `json:"event_id"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func (e *InconsistentRecordError) Error() string {
	return fmt.Sprintf("ledger record %d (event %d): total %s != subtotal %s + tax %s",
		e.RecordID, e.EventID, e.Total, e.Subtotal, e.Tax)
}

// BatchPartialFailure signals that one or more units of a batch recalculation
// failed. The batch report still carries every successful snapshot.
type BatchPartialFailure struct {
	RunID  uuid.UUID
	Failed int
	Total  int
}

func (e *BatchPartialFailure) Error() string {
	return fmt.Sprintf("batch %s: %d of %d recalculations failed", e.RunID, e.Failed, e.Total)
}
