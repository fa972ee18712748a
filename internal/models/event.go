package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountingState is the derived accounting/payment state of an event.
// Transitions are driven by the status classifier and the overdue monitor;
// only cancellation is set from an explicit user action.
type AccountingState string

const (
	StateOpen            AccountingState = "OPEN"
	StatePendingReview   AccountingState = "PENDING_REVIEW"
	StateAwaitingPayment AccountingState = "AWAITING_PAYMENT"
	StatePaid            AccountingState = "PAID"
	StateOverdue         AccountingState = "OVERDUE"
	StateCancelled       AccountingState = "CANCELLED"
)

// Terminal reports whether no further automatic transition applies.
func (s AccountingState) Terminal() bool {
	return s == StateCancelled
}

// Event represents a business event that owns a collection of ledger records.
// EstimatedIncome is tax-inclusive.
type Event struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	EstimatedIncome decimal.Decimal `json:"estimated_income"`
	AccountingState AccountingState `json:"accounting_state"`
	SnapshotStale   bool            `json:"snapshot_stale"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateEventRequest is used when registering a new event
type CreateEventRequest struct {
	Name            string          `json:"name"`
	EstimatedIncome decimal.Decimal `json:"estimated_income"`
}

// EventFilter is used for selecting events in listings and batch recalculation
type EventFilter struct {
	States []AccountingState `json:"states"`
	Limit  int               `json:"limit"`
}
