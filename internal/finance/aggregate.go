package finance

import (
	"time"

	"eventos-backend/internal/models"
)

// KindTotals holds the rollups for one record kind, grouped by settlement
// state and by category.
type KindTotals struct {
	Settled    Totals              `json:"settled"` // collected (income) / paid (expense)
	Pending    Totals              `json:"pending"`
	Total      Totals              `json:"total"`
	ByCategory map[Category]Totals `json:"by_category"`
	Count      int                 `json:"count"`
}

func newKindTotals() KindTotals {
	return KindTotals{ByCategory: make(map[Category]Totals)}
}

func (k *KindTotals) add(cat Category, t Totals, settled bool) {
	if settled {
		k.Settled = k.Settled.Add(t)
	} else {
		k.Pending = k.Pending.Add(t)
	}
	k.Total = k.Total.Add(t)
	k.ByCategory[cat] = k.ByCategory[cat].Add(t)
	k.Count++
}

// Aggregates is the output of one aggregation pass over an event's ledger.
type Aggregates struct {
	Income    KindTotals `json:"income"`
	Expense   KindTotals `json:"expense"`
	Provision KindTotals `json:"provision"`
	// Excluded lists records dropped for breaking the tax-split invariant.
	Excluded []InconsistentRecordError `json:"excluded,omitempty"`
}

// Aggregator sums ledger records per kind, per category and per settlement
// state. Addition is commutative, so the result does not depend on record
// order and batched/parallel computation stays correct.
type Aggregator struct {
	classifier *Classifier
}

// NewAggregator returns an aggregator using the given classifier.
func NewAggregator(classifier *Classifier) *Aggregator {
	return &Aggregator{classifier: classifier}
}

// Aggregate rolls up the given records. A non-nil asOf restricts the pass to
// records with occursOn <= asOf, for point-in-time snapshots.
//
// Exclusion rules:
//   - soft-deleted records are skipped unconditionally
//   - a provision with a non-nil ConvertedToExpenseID is skipped; its expense
//     counterpart is counted normally, so the amount is never double counted
//   - records breaking total = subtotal + tax (beyond 0.01) are skipped and
//     reported in Aggregates.Excluded
func (a *Aggregator) Aggregate(records []models.LedgerRecord, asOf *time.Time) Aggregates {
	aggs := Aggregates{
		Income:    newKindTotals(),
		Expense:   newKindTotals(),
		Provision: newKindTotals(),
	}

	for i := range records {
		r := &records[i]
		if r.SoftDeleted {
			continue
		}
		if asOf != nil && r.OccursOn.After(*asOf) {
			continue
		}
		if r.Kind == models.KindProvision && r.ConvertedToExpenseID != nil {
			continue
		}
		if !withinTolerance(r.AmountSubtotal.Add(r.TaxAmount), r.AmountTotal) {
			aggs.Excluded = append(aggs.Excluded, InconsistentRecordError{
				RecordID: r.ID,
				EventID:  r.EventID,
				Subtotal: r.AmountSubtotal,
				Tax:      r.TaxAmount,
				Total:    r.AmountTotal,
			})
			continue
		}

		cat := a.classifier.ClassifyRecord(r)
		t := Totals{Subtotal: r.AmountSubtotal, Tax: r.TaxAmount, Total: r.AmountTotal}

		switch r.Kind {
		case models.KindIncome:
			aggs.Income.add(cat, t, r.Settled)
		case models.KindExpense:
			aggs.Expense.add(cat, t, r.Settled)
		case models.KindProvision:
			// Provisions are committed-but-unpaid by definition.
			aggs.Provision.add(cat, t, false)
		}
	}

	return aggs
}
