package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventos-backend/internal/models"
)

func testEvent(estimatedIncome string) *models.Event {
	return &models.Event{
		ID:              1,
		Name:            "Expo industrial",
		EstimatedIncome: dec(estimatedIncome),
		AccountingState: models.StateOpen,
	}
}

// Scenario: estimated income 100,000 tax-inclusive, one settled income of
// 100,000, one settled Materials expense of 40,000.
func scenarioARecords() []models.LedgerRecord {
	return []models.LedgerRecord{
		newRecord(1, models.KindIncome, "100000", "", true),
		newRecord(2, models.KindExpense, "40000", "Materials", true),
	}
}

func reconcileRecords(t *testing.T, records []models.LedgerRecord, estimate string, includeTax bool) *FinancialSnapshot {
	t.Helper()
	engine := NewEngine(testTax)
	aggs := NewAggregator(NewClassifier()).Aggregate(records, nil)
	return engine.Reconcile(testEvent(estimate), aggs, ReconcileOptions{IncludeTax: includeTax})
}

func TestReconcileScenarioATaxExclusive(t *testing.T) {
	snap := reconcileRecords(t, scenarioARecords(), "100000", false)

	assert.Equal(t, BasisExclusive, snap.TaxBasis)
	assert.Equal(t, "86206.90", snap.IncomeTotal.StringFixed(2))
	assert.Equal(t, "34482.76", snap.ExpenseTotal.StringFixed(2))
	assert.Equal(t, "51724.14", snap.Utility.StringFixed(2))
	assert.Equal(t, "60.00", snap.MarginPct.StringFixed(2))
	assert.Equal(t, TierExcellent, snap.Status.HealthTier)
	assert.Equal(t, CollectionFull, snap.Status.CollectionStatus)
	assert.Equal(t, PaymentFull, snap.Status.PaymentStatus)
}

func TestReconcileScenarioATaxInclusive(t *testing.T) {
	snap := reconcileRecords(t, scenarioARecords(), "100000", true)

	assert.Equal(t, BasisInclusive, snap.TaxBasis)
	assert.Equal(t, "100000.00", snap.IncomeTotal.StringFixed(2))
	assert.Equal(t, "40000.00", snap.ExpenseTotal.StringFixed(2))
	assert.Equal(t, "60000.00", snap.Utility.StringFixed(2))
	assert.Equal(t, "60.00", snap.MarginPct.StringFixed(2))
	// Estimate matches income exactly, so variance is zero.
	assert.True(t, snap.VarianceVsEstimate.IsZero())
	assert.Equal(t, TierExcellent, snap.Status.HealthTier)
}

func TestReconcileScenarioBProvisionDropsUtility(t *testing.T) {
	records := append(scenarioARecords(),
		newRecord(3, models.KindProvision, "20000", "Fuel/Tolls", false))

	base := reconcileRecords(t, scenarioARecords(), "100000", false)
	snap := reconcileRecords(t, records, "100000", false)

	drop := base.Utility.Sub(snap.Utility)
	assert.Equal(t, "17241.38", drop.StringFixed(2))
	assert.Equal(t, "34482.76", snap.Utility.StringFixed(2))
	assert.Equal(t, "40.00", snap.MarginPct.StringFixed(2))
	// Still Excellent (>= 35) but close to the Fair boundary.
	assert.Equal(t, TierExcellent, snap.Status.HealthTier)
	assert.Equal(t, "17241.38", snap.ProvisionByCategory[CategoryFuelTolls].Subtotal.StringFixed(2))
}

func TestReconcileScenarioCZeroIncome(t *testing.T) {
	records := []models.LedgerRecord{
		newRecord(1, models.KindExpense, "5000", "Materials", false),
	}

	for _, includeTax := range []bool{true, false} {
		snap := reconcileRecords(t, records, "0", includeTax)

		// Division guards: zero income yields zero percentages, no panic, no
		// NaN, no infinity.
		assert.True(t, snap.MarginPct.IsZero())
		assert.True(t, snap.CollectionPct.IsZero())
		assert.Equal(t, CollectionNoIncome, snap.Status.CollectionStatus)
		assert.Equal(t, TierNone, snap.Status.HealthTier)
		assert.True(t, snap.Utility.Sign() < 0)
	}
}

func TestReconcileUtilityFormulaBothVariants(t *testing.T) {
	records := []models.LedgerRecord{
		newRecord(1, models.KindIncome, "232000", "", true),
		newRecord(2, models.KindExpense, "58000", "Materials", true),
		newRecord(3, models.KindProvision, "11600", "RH", false),
	}
	aggs := NewAggregator(NewClassifier()).Aggregate(records, nil)
	snap := NewEngine(testTax).Reconcile(testEvent("232000"), aggs, ReconcileOptions{IncludeTax: true})

	// utility == income - expense - provision, independently in each variant.
	wantIncl := aggs.Income.Total.Total.
		Sub(aggs.Expense.Total.Total).
		Sub(aggs.Provision.Total.Total)
	wantExcl := aggs.Income.Total.Subtotal.
		Sub(aggs.Expense.Total.Subtotal).
		Sub(aggs.Provision.Total.Subtotal)

	assert.True(t, snap.UtilityInclTax.Equal(wantIncl))
	assert.True(t, snap.UtilityExclTax.Equal(wantExcl))
	assert.Equal(t, "162400.00", snap.UtilityInclTax.StringFixed(2))
	assert.Equal(t, "140000.00", snap.UtilityExclTax.StringFixed(2))
}

func TestReconcileIncludeTaxIsPureParameter(t *testing.T) {
	records := scenarioARecords()
	aggs := NewAggregator(NewClassifier()).Aggregate(records, nil)
	engine := NewEngine(testTax)
	event := testEvent("100000")

	// Interleave the two variants; neither run may contaminate the other.
	incl1 := engine.Reconcile(event, aggs, ReconcileOptions{IncludeTax: true})
	excl1 := engine.Reconcile(event, aggs, ReconcileOptions{IncludeTax: false})
	incl2 := engine.Reconcile(event, aggs, ReconcileOptions{IncludeTax: true})
	excl2 := engine.Reconcile(event, aggs, ReconcileOptions{IncludeTax: false})

	require.Equal(t, incl1, incl2)
	require.Equal(t, excl1, excl2)
	assert.Equal(t, "100000.00", incl1.IncomeTotal.StringFixed(2))
	assert.Equal(t, "86206.90", excl1.IncomeTotal.StringFixed(2))
}

func TestReconcileDeterministic(t *testing.T) {
	// Same ledger, same options: bit-identical snapshots.
	a := reconcileRecords(t, scenarioARecords(), "100000", false)
	b := reconcileRecords(t, scenarioARecords(), "100000", false)
	require.Equal(t, a, b)
}

func TestReconcileVarianceVsEstimate(t *testing.T) {
	records := []models.LedgerRecord{
		newRecord(1, models.KindIncome, "120000", "", true),
	}
	snap := reconcileRecords(t, records, "100000", true)

	assert.Equal(t, "20000.00", snap.VarianceVsEstimate.StringFixed(2))
	assert.Equal(t, "20.00", snap.VarianceVsEstimatePct.StringFixed(2))

	// Absent estimate: variance percentage is guarded, not a division error.
	noEstimate := reconcileRecords(t, records, "0", true)
	assert.True(t, noEstimate.VarianceVsEstimatePct.IsZero())
	assert.Equal(t, "120000.00", noEstimate.VarianceVsEstimate.StringFixed(2))
}

func TestReconcileCarriesExcludedRecords(t *testing.T) {
	broken := newRecord(9, models.KindIncome, "1000", "", true)
	broken.TaxAmount = dec("999")
	snap := reconcileRecords(t, []models.LedgerRecord{broken}, "0", true)

	require.Len(t, snap.ExcludedRecords, 1)
	assert.Equal(t, 9, snap.ExcludedRecords[0].RecordID)
	assert.False(t, snap.HasIncomeRecords)
}
