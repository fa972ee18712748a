package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventos-backend/internal/models"
)

func commitmentDate(asOf time.Time, daysBefore int) *time.Time {
	d := asOf.AddDate(0, 0, -daysBefore)
	return &d
}

func TestFindOverdueScenarioD(t *testing.T) {
	asOf := time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC)

	expense := newRecord(1, models.KindExpense, "15000", "Materials", false)
	expense.CommittedPaymentDate = commitmentDate(asOf, 10)

	overdue := FindOverdue([]models.LedgerRecord{expense}, asOf)
	require.Len(t, overdue, 1)
	assert.Equal(t, 1, overdue[0].Record.ID)
	assert.Equal(t, 10, overdue[0].DaysOverdue)

	// Once settled, the record disappears from the list.
	expense.Settled = true
	assert.Empty(t, FindOverdue([]models.LedgerRecord{expense}, asOf))
}

func TestFindOverdueRules(t *testing.T) {
	asOf := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)

	dueToday := newRecord(1, models.KindExpense, "100", "", false)
	dueToday.CommittedPaymentDate = commitmentDate(asOf, 0)

	dueYesterday := newRecord(2, models.KindIncome, "100", "", false)
	dueYesterday.CommittedPaymentDate = commitmentDate(asOf, 1)

	noCommitment := newRecord(3, models.KindExpense, "100", "", false)

	provision := newRecord(4, models.KindProvision, "100", "", false)
	provision.CommittedPaymentDate = commitmentDate(asOf, 30)

	deleted := newRecord(5, models.KindExpense, "100", "", false)
	deleted.CommittedPaymentDate = commitmentDate(asOf, 5)
	deleted.SoftDeleted = true

	overdue := FindOverdue([]models.LedgerRecord{
		dueToday, dueYesterday, noCommitment, provision, deleted,
	}, asOf)

	// Only the income due strictly before asOf qualifies: same-day is not
	// overdue, provisions carry no settlement commitment, soft-deleted and
	// commitment-less records are ignored.
	require.Len(t, overdue, 1)
	assert.Equal(t, 2, overdue[0].Record.ID)
	assert.Equal(t, 1, overdue[0].DaysOverdue)
}
