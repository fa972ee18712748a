package finance

import (
	"github.com/shopspring/decimal"

	"eventos-backend/internal/models"
)

// HealthTier is a coarse classification of an event's margin.
type HealthTier string

const (
	TierExcellent HealthTier = "EXCELLENT"
	TierFair      HealthTier = "FAIR"
	TierLow       HealthTier = "LOW"
	TierNone      HealthTier = "NONE"
)

// CollectionStatus describes how much of the event's income was received.
type CollectionStatus string

const (
	CollectionNoIncome CollectionStatus = "NO_INCOME"
	CollectionFull     CollectionStatus = "FULLY_COLLECTED"
	CollectionPartial  CollectionStatus = "PARTIALLY_COLLECTED"
	CollectionPending  CollectionStatus = "PENDING_COLLECTION"
)

// PaymentStatus describes how much of the event's expenses were paid.
type PaymentStatus string

const (
	PaymentNoExpenses PaymentStatus = "NO_EXPENSES"
	PaymentFull       PaymentStatus = "FULLY_PAID"
	PaymentPartial    PaymentStatus = "PARTIALLY_PAID"
	PaymentPending    PaymentStatus = "PENDING_PAYMENT"
)

// StatusSet is the label triple derived from a snapshot.
type StatusSet struct {
	CollectionStatus CollectionStatus `json:"collection_status"`
	PaymentStatus    PaymentStatus    `json:"payment_status"`
	HealthTier       HealthTier       `json:"health_tier"`
}

// marginRule is one threshold of the health-tier ladder.
type marginRule struct {
	min  decimal.Decimal
	tier HealthTier
}

// marginRules are evaluated in descending order; first match wins. The same
// thresholds apply to both tax variants of margin.
var marginRules = []marginRule{
	{decimal.NewFromInt(35), TierExcellent},
	{decimal.NewFromInt(25), TierFair},
	{decimal.NewFromInt(1), TierLow},
}

// HealthTierFor maps a margin percentage to its tier. Zero and negative
// margins fall through to TierNone.
func HealthTierFor(marginPct decimal.Decimal) HealthTier {
	for _, rule := range marginRules {
		if marginPct.GreaterThanOrEqual(rule.min) {
			return rule.tier
		}
	}
	return TierNone
}

// CollectionStatusFor derives the collection status from the collection
// percentage. "Fully collected" allows the usual rounding tolerance on 100%.
func CollectionStatusFor(hasIncome bool, collectionPct decimal.Decimal) CollectionStatus {
	switch {
	case !hasIncome:
		return CollectionNoIncome
	case collectionPct.GreaterThanOrEqual(hundred.Sub(roundingTolerance)):
		return CollectionFull
	case collectionPct.Sign() > 0:
		return CollectionPartial
	default:
		return CollectionPending
	}
}

// PaymentStatusFor derives the payment status from paid vs total expenses.
func PaymentStatusFor(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case total.Sign() <= 0:
		return PaymentNoExpenses
	case paid.GreaterThanOrEqual(total.Sub(roundingTolerance)):
		return PaymentFull
	case paid.Sign() > 0:
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// ClassifyStatus derives the full label set for a snapshot.
func ClassifyStatus(s *FinancialSnapshot) StatusSet {
	return StatusSet{
		CollectionStatus: CollectionStatusFor(s.HasIncomeRecords, s.CollectionPct),
		PaymentStatus:    PaymentStatusFor(s.ExpensePaid, s.ExpenseTotal),
		HealthTier:       HealthTierFor(s.MarginPct),
	}
}

// TransitionInput carries the signals the accounting-state machine consumes.
type TransitionInput struct {
	// ClosingTriggered is the workflow subsystem's closing signal.
	ClosingTriggered bool
	// HasUnreviewedIncome is true when at least one income record has not
	// been through review yet.
	HasUnreviewedIncome bool
	// AllIncomesInvoiced is true when every income record carries an
	// invoice reference.
	AllIncomesInvoiced bool
	// FullyCollected mirrors CollectionStatus == FULLY_COLLECTED.
	FullyCollected bool
	// HasOverdue is true when the overdue monitor found a commitment past due.
	HasOverdue bool
}

// NextAccountingState applies the transition table to the current state.
// Paid and Cancelled never transition here; cancellation itself is an explicit
// external action, not a computed transition.
func NextAccountingState(current models.AccountingState, in TransitionInput) models.AccountingState {
	if current == models.StateCancelled || current == models.StatePaid {
		return current
	}

	state := current
	if state == models.StateOverdue {
		// The blocking commitments were settled (or deleted); re-derive the
		// position on the ladder from the inputs alone.
		state = deriveLadder(in)
	} else {
		state = advance(state, in)
	}

	if in.HasOverdue && state != models.StatePaid {
		return models.StateOverdue
	}
	return state
}

// advance walks the Open -> PendingReview -> AwaitingPayment -> Paid ladder
// from the given state, taking every transition whose condition holds.
func advance(state models.AccountingState, in TransitionInput) models.AccountingState {
	if state == models.StateOpen && in.ClosingTriggered && in.HasUnreviewedIncome {
		state = models.StatePendingReview
	}
	if state == models.StatePendingReview && in.AllIncomesInvoiced {
		state = models.StateAwaitingPayment
	}
	if state == models.StateAwaitingPayment && in.FullyCollected {
		state = models.StatePaid
	}
	return state
}

func deriveLadder(in TransitionInput) models.AccountingState {
	return advance(models.StateOpen, in)
}
