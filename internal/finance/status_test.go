package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"eventos-backend/internal/models"
)

func TestHealthTierThresholds(t *testing.T) {
	tests := []struct {
		margin string
		want   HealthTier
	}{
		{"60", TierExcellent},
		{"35", TierExcellent}, // boundary: >= 35
		{"34.99", TierFair},
		{"25", TierFair}, // boundary: >= 25
		{"24.99", TierLow},
		{"1", TierLow}, // boundary: >= 1
		{"0.99", TierNone},
		{"0", TierNone},
		{"-12.5", TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.margin, func(t *testing.T) {
			assert.Equal(t, tt.want, HealthTierFor(dec(tt.margin)))
		})
	}
}

func TestCollectionStatusFor(t *testing.T) {
	assert.Equal(t, CollectionNoIncome, CollectionStatusFor(false, decimal.Zero))
	assert.Equal(t, CollectionFull, CollectionStatusFor(true, dec("100")))
	// Within rounding tolerance of 100 still counts as fully collected.
	assert.Equal(t, CollectionFull, CollectionStatusFor(true, dec("99.99")))
	assert.Equal(t, CollectionPartial, CollectionStatusFor(true, dec("45.5")))
	assert.Equal(t, CollectionPending, CollectionStatusFor(true, decimal.Zero))
}

func TestPaymentStatusFor(t *testing.T) {
	assert.Equal(t, PaymentNoExpenses, PaymentStatusFor(decimal.Zero, decimal.Zero))
	assert.Equal(t, PaymentFull, PaymentStatusFor(dec("500"), dec("500")))
	assert.Equal(t, PaymentPartial, PaymentStatusFor(dec("100"), dec("500")))
	assert.Equal(t, PaymentPending, PaymentStatusFor(decimal.Zero, dec("500")))
}

func TestNextAccountingStateLadder(t *testing.T) {
	in := TransitionInput{}

	// Nothing happened yet: stays open.
	assert.Equal(t, models.StateOpen, NextAccountingState(models.StateOpen, in))

	// Closing trigger with unreviewed income moves to pending review.
	in = TransitionInput{ClosingTriggered: true, HasUnreviewedIncome: true}
	assert.Equal(t, models.StatePendingReview, NextAccountingState(models.StateOpen, in))

	// Closing trigger alone, nothing to review: no transition.
	in = TransitionInput{ClosingTriggered: true}
	assert.Equal(t, models.StateOpen, NextAccountingState(models.StateOpen, in))

	// All incomes invoiced moves review to awaiting payment.
	in = TransitionInput{AllIncomesInvoiced: true}
	assert.Equal(t, models.StateAwaitingPayment, NextAccountingState(models.StatePendingReview, in))

	// Full collection pays the event.
	in = TransitionInput{AllIncomesInvoiced: true, FullyCollected: true}
	assert.Equal(t, models.StatePaid, NextAccountingState(models.StateAwaitingPayment, in))

	// The ladder can be walked in one pass when every condition holds.
	in = TransitionInput{
		ClosingTriggered:    true,
		HasUnreviewedIncome: true,
		AllIncomesInvoiced:  true,
		FullyCollected:      true,
	}
	assert.Equal(t, models.StatePaid, NextAccountingState(models.StateOpen, in))
}

func TestNextAccountingStateOverdue(t *testing.T) {
	// Any non-terminal state goes overdue when a commitment is past due.
	in := TransitionInput{HasOverdue: true}
	for _, from := range []models.AccountingState{
		models.StateOpen,
		models.StatePendingReview,
		models.StateAwaitingPayment,
		models.StateOverdue,
	} {
		assert.Equal(t, models.StateOverdue, NextAccountingState(from, in), "from %s", from)
	}

	// Paid and Cancelled never go overdue.
	assert.Equal(t, models.StatePaid, NextAccountingState(models.StatePaid, in))
	assert.Equal(t, models.StateCancelled, NextAccountingState(models.StateCancelled, in))
}

func TestNextAccountingStateOverdueRecovery(t *testing.T) {
	// Once the blocking commitments settle, the position on the ladder is
	// re-derived from the inputs.
	in := TransitionInput{
		ClosingTriggered:    true,
		HasUnreviewedIncome: true,
		AllIncomesInvoiced:  true,
	}
	assert.Equal(t, models.StateAwaitingPayment, NextAccountingState(models.StateOverdue, in))

	in.FullyCollected = true
	assert.Equal(t, models.StatePaid, NextAccountingState(models.StateOverdue, in))

	assert.Equal(t, models.StateOpen, NextAccountingState(models.StateOverdue, TransitionInput{}))
}

func TestNextAccountingStateTerminal(t *testing.T) {
	in := TransitionInput{
		ClosingTriggered:    true,
		HasUnreviewedIncome: true,
		AllIncomesInvoiced:  true,
		FullyCollected:      true,
	}
	// Cancelled is terminal regardless of inputs.
	assert.Equal(t, models.StateCancelled, NextAccountingState(models.StateCancelled, in))
}
