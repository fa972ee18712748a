package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"eventos-backend/internal/models"
)

// TaxBasis labels which tax variant a snapshot's aggregate amounts use.
type TaxBasis string

const (
	BasisInclusive TaxBasis = "TAX_INCLUSIVE"
	BasisExclusive TaxBasis = "TAX_EXCLUSIVE"
)

// ReconcileOptions are pure inputs to a reconciliation pass. IncludeTax is a
// parameter, never process-wide state: reconciling the same aggregates twice
// with different flags yields two independently correct snapshots.
type ReconcileOptions struct {
	IncludeTax bool `json:"include_tax"`
	// AsOf restricts the pass to records with occursOn <= AsOf, for
	// point-in-time snapshots. Nil means "all records to date". Historical
	// cuts are computed on demand and never persisted as the latest snapshot.
	AsOf *time.Time `json:"as_of,omitempty"`
}

// FinancialSnapshot is the engine's output for one event. It is rebuilt from
// the underlying ledger on every recalculation, never patched incrementally,
// and is always reproducible from the ledger records alone.
type FinancialSnapshot struct {
	EventID  int             `json:"event_id"`
	TaxBasis TaxBasis        `json:"tax_basis"`
	TaxRate  decimal.Decimal `json:"tax_rate"`

	// Aggregate amounts in the requested tax basis.
	IncomeCollected decimal.Decimal `json:"income_collected"`
	IncomePending   decimal.Decimal `json:"income_pending"`
	IncomeTotal     decimal.Decimal `json:"income_total"`
	ExpensePaid     decimal.Decimal `json:"expense_paid"`
	ExpensePending  decimal.Decimal `json:"expense_pending"`
	ExpenseTotal    decimal.Decimal `json:"expense_total"`
	ProvisionTotal  decimal.Decimal `json:"provision_total"`
	TotalLiability  decimal.Decimal `json:"total_liability"` // expenses + provisions

	// Category breakdowns keep the full {subtotal, tax, total} triples.
	IncomeByCategory    map[Category]Totals `json:"income_by_category"`
	ExpenseByCategory   map[Category]Totals `json:"expense_by_category"`
	ProvisionByCategory map[Category]Totals `json:"provision_by_category"`

	// Utility and margin in both tax variants, computed independently.
	Utility          decimal.Decimal `json:"utility"` // requested basis
	UtilityInclTax   decimal.Decimal `json:"utility_incl_tax"`
	UtilityExclTax   decimal.Decimal `json:"utility_excl_tax"`
	MarginPct        decimal.Decimal `json:"margin_pct"` // requested basis
	MarginInclTaxPct decimal.Decimal `json:"margin_incl_tax_pct"`
	MarginExclTaxPct decimal.Decimal `json:"margin_excl_tax_pct"`

	CollectionPct decimal.Decimal `json:"collection_pct"`

	EstimatedIncome       decimal.Decimal `json:"estimated_income"` // in the requested basis
	VarianceVsEstimate    decimal.Decimal `json:"variance_vs_estimate"`
	VarianceVsEstimatePct decimal.Decimal `json:"variance_vs_estimate_pct"`

	HasIncomeRecords bool `json:"has_income_records"`

	Status          StatusSet              `json:"status"`
	AccountingState models.AccountingState `json:"accounting_state"`

	ExcludedRecords []InconsistentRecordError `json:"excluded_records,omitempty"`

	// ComputedAt is the cut the snapshot was built at. It is the one field
	// two recalculations of an unchanged ledger may differ in; every other
	// field reproduces exactly.
	ComputedAt time.Time `json:"computed_at"`
	// Stale is set when serving a previously computed snapshot that could not
	// be refreshed, or whose ledger has mutated since it was built.
	Stale bool `json:"stale"`
}

// Engine combines aggregates into a financial snapshot.
type Engine struct {
	tax TaxNormalizer
}

// NewEngine returns an engine using the given tax normalizer.
func NewEngine(tax TaxNormalizer) *Engine {
	return &Engine{tax: tax}
}

// Tax exposes the engine's normalizer.
func (e *Engine) Tax() TaxNormalizer {
	return e.tax
}

// Reconcile computes the financial snapshot for an event from its aggregates.
//
//	totalExpense   = paid + pending expenses
//	totalLiability = totalExpense + provisions
//	utility        = totalIncome - totalLiability
//	margin         = utility / totalIncome * 100   (0 when income is 0)
//	collectionPct  = collected / totalIncome * 100 (0 when income is 0)
//	variance       = totalIncome - estimatedIncome
//
// Divisions with a zero denominator short-circuit to 0; they never raise.
func (e *Engine) Reconcile(event *models.Event, aggs Aggregates, opts ReconcileOptions) *FinancialSnapshot {
	incl := opts.IncludeTax

	incomeTotal := aggs.Income.Total.Amount(incl)
	expenseTotal := aggs.Expense.Total.Amount(incl)
	provisionTotal := aggs.Provision.Total.Amount(incl)
	liability := expenseTotal.Add(provisionTotal)

	// Both utility variants come from the stored subtotal/total fields, not
	// from re-deriving one variant out of the other.
	utilityIncl := aggs.Income.Total.Total.
		Sub(aggs.Expense.Total.Total).
		Sub(aggs.Provision.Total.Total)
	utilityExcl := aggs.Income.Total.Subtotal.
		Sub(aggs.Expense.Total.Subtotal).
		Sub(aggs.Provision.Total.Subtotal)

	// EstimatedIncome is stored tax-inclusive; the exclusive variant goes
	// through the normalizer.
	estimate := event.EstimatedIncome
	if !incl {
		estimate = e.tax.ToExclusive(estimate)
	}

	snap := &FinancialSnapshot{
		EventID:  event.ID,
		TaxBasis: BasisInclusive,
		TaxRate:  e.tax.Rate(),

		IncomeCollected: aggs.Income.Settled.Amount(incl),
		IncomePending:   aggs.Income.Pending.Amount(incl),
		IncomeTotal:     incomeTotal,
		ExpensePaid:     aggs.Expense.Settled.Amount(incl),
		ExpensePending:  aggs.Expense.Pending.Amount(incl),
		ExpenseTotal:    expenseTotal,
		ProvisionTotal:  provisionTotal,
		TotalLiability:  liability,

		IncomeByCategory:    copyCategoryTotals(aggs.Income.ByCategory),
		ExpenseByCategory:   copyCategoryTotals(aggs.Expense.ByCategory),
		ProvisionByCategory: copyCategoryTotals(aggs.Provision.ByCategory),

		Utility:          incomeTotal.Sub(liability),
		UtilityInclTax:   utilityIncl,
		UtilityExclTax:   utilityExcl,
		MarginPct:        guardedPct(incomeTotal.Sub(liability), incomeTotal),
		MarginInclTaxPct: guardedPct(utilityIncl, aggs.Income.Total.Total),
		MarginExclTaxPct: guardedPct(utilityExcl, aggs.Income.Total.Subtotal),

		CollectionPct: guardedPct(aggs.Income.Settled.Amount(incl), incomeTotal),

		EstimatedIncome:       estimate,
		VarianceVsEstimate:    incomeTotal.Sub(estimate),
		VarianceVsEstimatePct: guardedPct(incomeTotal.Sub(estimate), estimate),

		HasIncomeRecords: aggs.Income.Count > 0,
		ExcludedRecords:  aggs.Excluded,
	}
	if !incl {
		snap.TaxBasis = BasisExclusive
	}

	snap.Status = ClassifyStatus(snap)
	return snap
}

func copyCategoryTotals(m map[Category]Totals) map[Category]Totals {
	out := make(map[Category]Totals, len(m))
	for cat, t := range m {
		out[cat] = t
	}
	return out
}
