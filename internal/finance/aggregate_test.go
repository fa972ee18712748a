package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventos-backend/internal/models"
)

var testTax = NewTaxNormalizer(DefaultTaxRate)

// newRecord builds a consistent record whose triple comes from splitting a
// tax-inclusive total at the reference rate.
func newRecord(id int, kind models.RecordKind, total, categoryRef string, settled bool) models.LedgerRecord {
	sub, tax := testTax.Split(dec(total))
	return models.LedgerRecord{
		ID:             id,
		EventID:        1,
		Kind:           kind,
		AmountSubtotal: sub,
		TaxAmount:      tax,
		AmountTotal:    dec(total),
		CategoryRef:    categoryRef,
		OccursOn:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Settled:        settled,
	}
}

func TestAggregateGroupsBySettlementAndCategory(t *testing.T) {
	agg := NewAggregator(NewClassifier())

	records := []models.LedgerRecord{
		newRecord(1, models.KindIncome, "100000", "", true),
		newRecord(2, models.KindIncome, "58000", "", false),
		newRecord(3, models.KindExpense, "40000", "Materials", true),
		newRecord(4, models.KindExpense, "11600", "combustible", false),
		newRecord(5, models.KindProvision, "20000", "Recursos Humanos", false),
	}

	aggs := agg.Aggregate(records, nil)

	assert.Equal(t, "100000.00", aggs.Income.Settled.Total.StringFixed(2))
	assert.Equal(t, "58000.00", aggs.Income.Pending.Total.StringFixed(2))
	assert.Equal(t, "158000.00", aggs.Income.Total.Total.StringFixed(2))
	assert.Equal(t, 3, aggs.Income.Count+aggs.Provision.Count)

	assert.Equal(t, "40000.00", aggs.Expense.Settled.Total.StringFixed(2))
	assert.Equal(t, "11600.00", aggs.Expense.Pending.Total.StringFixed(2))
	assert.Equal(t, "40000.00", aggs.Expense.ByCategory[CategoryMaterials].Total.StringFixed(2))
	assert.Equal(t, "11600.00", aggs.Expense.ByCategory[CategoryFuelTolls].Total.StringFixed(2))

	assert.Equal(t, "20000.00", aggs.Provision.Total.Total.StringFixed(2))
	assert.Equal(t, "20000.00", aggs.Provision.ByCategory[CategoryHumanResources].Total.StringFixed(2))
	// Provisions are committed-but-unpaid; nothing lands in Settled.
	assert.True(t, aggs.Provision.Settled.IsZero())
}

func TestAggregateCategorySumInvariant(t *testing.T) {
	agg := NewAggregator(NewClassifier())

	records := []models.LedgerRecord{
		newRecord(1, models.KindExpense, "12345.67", "Materials", true),
		newRecord(2, models.KindExpense, "890.12", "casetas", false),
		newRecord(3, models.KindExpense, "55.55", "catering", true),
		newRecord(4, models.KindExpense, "1000.01", "RH", false),
	}

	aggs := agg.Aggregate(records, nil)

	var sum Totals
	for _, t2 := range aggs.Expense.ByCategory {
		sum = sum.Add(t2)
	}
	assert.True(t, withinTolerance(sum.Total, aggs.Expense.Total.Total))
	assert.True(t, withinTolerance(sum.Subtotal, aggs.Expense.Total.Subtotal))
	assert.True(t, withinTolerance(sum.Tax, aggs.Expense.Total.Tax))
}

func TestAggregateExcludesSoftDeleted(t *testing.T) {
	agg := NewAggregator(NewClassifier())

	deleted := newRecord(1, models.KindExpense, "500", "Materials", true)
	deleted.SoftDeleted = true
	records := []models.LedgerRecord{
		deleted,
		newRecord(2, models.KindExpense, "300", "Materials", true),
	}

	aggs := agg.Aggregate(records, nil)
	assert.Equal(t, "300.00", aggs.Expense.Total.Total.StringFixed(2))
	assert.Equal(t, 1, aggs.Expense.Count)
}

func TestAggregateConvertedProvisionNotDoubleCounted(t *testing.T) {
	agg := NewAggregator(NewClassifier())

	expenseID := 20
	converted := newRecord(10, models.KindProvision, "20000", "combustible", false)
	converted.ConvertedToExpenseID = &expenseID
	records := []models.LedgerRecord{
		converted,
		newRecord(expenseID, models.KindExpense, "20000", "combustible", false),
	}

	aggs := agg.Aggregate(records, nil)

	// The provision contributes 0; the expense contributes exactly its amount.
	assert.True(t, aggs.Provision.Total.IsZero())
	assert.Equal(t, "20000.00", aggs.Expense.Total.Total.StringFixed(2))
}

func TestAggregateAsOfCutoff(t *testing.T) {
	agg := NewAggregator(NewClassifier())

	early := newRecord(1, models.KindIncome, "1000", "", true)
	early.OccursOn = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	onDate := newRecord(2, models.KindIncome, "2000", "", true)
	onDate.OccursOn = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	late := newRecord(3, models.KindIncome, "4000", "", true)
	late.OccursOn = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	asOf := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	aggs := agg.Aggregate([]models.LedgerRecord{early, onDate, late}, &asOf)

	// occursOn <= asOf is included; later records are not.
	assert.Equal(t, "3000.00", aggs.Income.Total.Total.StringFixed(2))
}

func TestAggregateReportsInconsistentRecords(t *testing.T) {
	agg := NewAggregator(NewClassifier())

	broken := newRecord(7, models.KindExpense, "1160", "Materials", true)
	broken.AmountTotal = dec("9999") // total != subtotal + tax
	records := []models.LedgerRecord{
		broken,
		newRecord(8, models.KindExpense, "1160", "Materials", true),
	}

	aggs := agg.Aggregate(records, nil)

	require.Len(t, aggs.Excluded, 1)
	assert.Equal(t, 7, aggs.Excluded[0].RecordID)
	// The broken record is excluded, not silently fixed.
	assert.Equal(t, "1160.00", aggs.Expense.Total.Total.StringFixed(2))
}

func TestAggregateOrderIndependent(t *testing.T) {
	agg := NewAggregator(NewClassifier())

	records := []models.LedgerRecord{
		newRecord(1, models.KindIncome, "100.01", "", true),
		newRecord(2, models.KindIncome, "200.02", "", false),
		newRecord(3, models.KindExpense, "300.03", "Materials", true),
		newRecord(4, models.KindProvision, "400.04", "RH", false),
	}
	reversed := make([]models.LedgerRecord, len(records))
	for i := range records {
		reversed[len(records)-1-i] = records[i]
	}

	a := agg.Aggregate(records, nil)
	b := agg.Aggregate(reversed, nil)

	assert.True(t, a.Income.Total.Total.Equal(b.Income.Total.Total))
	assert.True(t, a.Expense.Total.Subtotal.Equal(b.Expense.Total.Subtotal))
	assert.True(t, a.Provision.Total.Tax.Equal(b.Provision.Total.Tax))
}
