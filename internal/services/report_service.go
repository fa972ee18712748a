package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"
	"eventos-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

// EventReportData holds everything one event report needs
type EventReportData struct {
	Event    *models.Event
	Snapshot *finance.FinancialSnapshot
	Overdue  []finance.OverdueRecord
}

// ReportService renders financial snapshots as PDF and CSV
type ReportService struct {
	events *EventService
	recalc *RecalcService
}

// NewReportService creates a new report service
func NewReportService(events *EventService, recalc *RecalcService) *ReportService {
	return &ReportService{events: events, recalc: recalc}
}

// GetEventReportData loads the event, its current snapshot and overdue list
func (s *ReportService) GetEventReportData(ctx context.Context, eventID int, opts finance.ReconcileOptions) (*EventReportData, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	snap, err := s.recalc.GetSnapshot(ctx, event, opts)
	if err != nil {
		return nil, err
	}

	asOf := timeutil.Now()
	if opts.AsOf != nil {
		asOf = *opts.AsOf
	}
	overdue, err := s.recalc.FindOverdue(ctx, eventID, asOf)
	if err != nil {
		return nil, err
	}

	return &EventReportData{Event: event, Snapshot: snap, Overdue: overdue}, nil
}

func money(d decimal.Decimal) string {
	return "$ " + d.StringFixed(2)
}

// GenerateEventPDF renders one event's financial report
func (s *ReportService) GenerateEventPDF(data *EventReportData) ([]byte, error) {
	snap := data.Snapshot
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Event Financial Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Event Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Event Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", data.Event.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("State: %s", snap.AccountingState), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Tax basis: %s (%s%%)", snap.TaxBasis, snap.TaxRate.Mul(decimal.NewFromInt(100)).StringFixed(0)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Health: %s", snap.Status.HealthTier), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Financial Summary
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Financial Summary", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Income collected: %s", money(snap.IncomeCollected)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Income pending: %s", money(snap.IncomePending)), "1", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Expenses paid: %s", money(snap.ExpensePaid)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Expenses pending: %s", money(snap.ExpensePending)), "1", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Provisions: %s", money(snap.ProvisionTotal)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Total liability: %s", money(snap.TotalLiability)), "1", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Collection: %s%%", snap.CollectionPct.StringFixed(2)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Variance vs estimate: %s", money(snap.VarianceVsEstimate)), "1", 1, "L", false, 0, "")

	// Utility - highlight by sign
	if snap.Utility.Sign() < 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, fmt.Sprintf("Utility: %s (margin %s%%)",
		money(snap.Utility), snap.MarginPct.StringFixed(2)), "1", 1, "C", true, 0, "")
	pdf.Ln(5)

	// Category Breakdown
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Expenses by Category", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(70, 7, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Subtotal", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Tax", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Total", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, cat := range finance.Categories() {
		totals, ok := snap.ExpenseByCategory[cat]
		if !ok || totals.IsZero() {
			continue
		}
		pdf.CellFormat(70, 6, string(cat), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, money(totals.Subtotal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money(totals.Tax), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money(totals.Total), "1", 1, "R", false, 0, "")
	}

	// Overdue commitments if any
	if len(data.Overdue) > 0 {
		pdf.Ln(5)
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(255, 200, 200)
		pdf.CellFormat(190, 8, "Overdue Commitments", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(70, 7, "Description", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 7, "Kind", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Amount", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Committed", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 7, "Days", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, o := range data.Overdue {
			desc := o.Record.Description
			if len(desc) > 32 {
				desc = desc[:29] + "..."
			}
			pdf.CellFormat(70, 6, desc, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 6, string(o.Record.Kind), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 6, money(o.Record.AmountTotal), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, o.Record.CommittedPaymentDate.Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%d", o.DaysOverdue), "1", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateEventCSV renders one event's report as CSV
func (s *ReportService) GenerateEventCSV(data *EventReportData) ([]byte, error) {
	snap := data.Snapshot

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Event Financial Report", data.Event.Name})
	w.Write([]string{"Tax basis", string(snap.TaxBasis)})
	w.Write([]string{"Accounting state", string(snap.AccountingState)})
	w.Write([]string{""})
	w.Write([]string{"Income collected", snap.IncomeCollected.StringFixed(2)})
	w.Write([]string{"Income pending", snap.IncomePending.StringFixed(2)})
	w.Write([]string{"Income total", snap.IncomeTotal.StringFixed(2)})
	w.Write([]string{"Expenses paid", snap.ExpensePaid.StringFixed(2)})
	w.Write([]string{"Expenses pending", snap.ExpensePending.StringFixed(2)})
	w.Write([]string{"Provisions", snap.ProvisionTotal.StringFixed(2)})
	w.Write([]string{"Total liability", snap.TotalLiability.StringFixed(2)})
	w.Write([]string{"Utility", snap.Utility.StringFixed(2)})
	w.Write([]string{"Margin %", snap.MarginPct.StringFixed(2)})
	w.Write([]string{"Collection %", snap.CollectionPct.StringFixed(2)})
	w.Write([]string{"Health tier", string(snap.Status.HealthTier)})
	w.Write([]string{""})

	w.Write([]string{"Category", "Subtotal", "Tax", "Total"})
	for _, cat := range finance.Categories() {
		totals, ok := snap.ExpenseByCategory[cat]
		if !ok || totals.IsZero() {
			continue
		}
		w.Write([]string{
			string(cat),
			totals.Subtotal.StringFixed(2),
			totals.Tax.StringFixed(2),
			totals.Total.StringFixed(2),
		})
	}

	if len(data.Overdue) > 0 {
		w.Write([]string{""})
		w.Write([]string{"Overdue", "Kind", "Amount", "Committed", "Days overdue"})
		for _, o := range data.Overdue {
			w.Write([]string{
				o.Record.Description,
				string(o.Record.Kind),
				o.Record.AmountTotal.StringFixed(2),
				o.Record.CommittedPaymentDate.Format("02-Jan-2006"),
				fmt.Sprintf("%d", o.DaysOverdue),
			})
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// GenerateOverdueCSV renders the cross-event collections list: one line per
// unsettled commitment past its committed payment date as of the cut.
func (s *ReportService) GenerateOverdueCSV(ctx context.Context, asOf time.Time) ([]byte, error) {
	overdue, err := s.recalc.FindOverdueAcrossEvents(ctx, asOf)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Overdue Commitments", asOf.Format("02-Jan-2006")})
	w.Write([]string{"Event", "Description", "Kind", "Amount", "Committed", "Days overdue"})

	names := make(map[int]string)
	for _, o := range overdue {
		name, ok := names[o.Record.EventID]
		if !ok {
			if event, err := s.events.Get(ctx, o.Record.EventID); err == nil {
				name = event.Name
			}
			names[o.Record.EventID] = name
		}
		w.Write([]string{
			name,
			o.Record.Description,
			string(o.Record.Kind),
			o.Record.AmountTotal.StringFixed(2),
			o.Record.CommittedPaymentDate.Format("02-Jan-2006"),
			fmt.Sprintf("%d", o.DaysOverdue),
		})
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// GeneratePortfolioCSV renders a one-line-per-event summary across all events
// matching the filter.
func (s *ReportService) GeneratePortfolioCSV(ctx context.Context, filter models.EventFilter, opts finance.ReconcileOptions) ([]byte, error) {
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{
		"#", "Event", "State", "Income", "Expenses", "Provisions",
		"Utility", "Margin %", "Collection %", "Health",
	})

	for i, event := range events {
		snap, err := s.recalc.GetSnapshot(ctx, event, opts)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", event.ID, err)
		}
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			event.Name,
			string(snap.AccountingState),
			snap.IncomeTotal.StringFixed(2),
			snap.ExpenseTotal.StringFixed(2),
			snap.ProvisionTotal.StringFixed(2),
			snap.Utility.StringFixed(2),
			snap.MarginPct.StringFixed(2),
			snap.CollectionPct.StringFixed(2),
			string(snap.Status.HealthTier),
		})
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
