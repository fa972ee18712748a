package finance

import (
	"time"

	"eventos-backend/internal/models"
	"eventos-backend/internal/timeutil"
)

// OverdueRecord is an unsettled commitment whose committed payment date has
// passed, with the age expressed in whole days.
type OverdueRecord struct {
	Record      models.LedgerRecord `json:"record"`
	DaysOverdue int                 `json:"days_overdue"`
}

// FindOverdue returns every unsettled income or expense whose committed
// payment date is strictly before asOf (by calendar day). Provisions have no
// settlement commitment and are never overdue; a record that settles
// disappears from the list on the next pass.
func FindOverdue(records []models.LedgerRecord, asOf time.Time) []OverdueRecord {
	var overdue []OverdueRecord
	for i := range records {
		r := &records[i]
		if r.SoftDeleted || r.Settled {
			continue
		}
		if r.Kind != models.KindIncome && r.Kind != models.KindExpense {
			continue
		}
		if r.CommittedPaymentDate == nil {
			continue
		}
		days := timeutil.WholeDaysBetween(*r.CommittedPaymentDate, asOf)
		if days < 1 {
			continue
		}
		overdue = append(overdue, OverdueRecord{Record: *r, DaysOverdue: days})
	}
	return overdue
}
