package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind distinguishes the three ledger record kinds
type RecordKind string

const (
	KindIncome    RecordKind = "INCOME"    // Invoiced/collected money coming in
	KindExpense   RecordKind = "EXPENSE"   // Realized spend
	KindProvision RecordKind = "PROVISION" // Committed-but-unpaid anticipated spend
)

// LedgerRecord is a single income, expense or provision row for an event.
// AmountTotal must equal AmountSubtotal + TaxAmount; rows breaking that
// invariant are excluded from aggregation and reported, never silently fixed.
type LedgerRecord struct {
	ID             int             `json:"id"`
	EventID        int             `json:"event_id"`
	Kind           RecordKind      `json:"kind"`
	Description    string          `json:"description"`
	AmountSubtotal decimal.Decimal `json:"amount_subtotal"` // tax-exclusive
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	AmountTotal    decimal.Decimal `json:"amount_total"` // subtotal + tax
	CategoryRef    string          `json:"category_ref"` // free-form id/name from the upstream catalog
	OccursOn       time.Time       `json:"occurs_on"`
	Settled        bool            `json:"settled"` // collected (income) / paid (expense)
	// CommittedPaymentDate, when set, is the date the settlement was promised;
	// unsettled records past it are overdue.
	CommittedPaymentDate *time.Time `json:"committed_payment_date,omitempty"`
	// InvoiceRef links an income record to its invoice. All income records of
	// an event need one before the event can await payment.
	InvoiceRef string `json:"invoice_ref,omitempty"`
	// ConvertedToExpenseID marks a provision realized as an actual expense.
	// A converted provision contributes nothing to provision totals.
	ConvertedToExpenseID *int      `json:"converted_to_expense_id,omitempty"`
	SoftDeleted          bool      `json:"soft_deleted"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CreateLedgerRecordRequest is used when inserting a new ledger record
type CreateLedgerRecordRequest struct {
	EventID              int             `json:"event_id"`
	Kind                 RecordKind      `json:"kind"`
	Description          string          `json:"description"`
	AmountSubtotal       decimal.Decimal `json:"amount_subtotal"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	AmountTotal          decimal.Decimal `json:"amount_total"`
	CategoryRef          string          `json:"category_ref"`
	OccursOn             time.Time       `json:"occurs_on"`
	Settled              bool            `json:"settled"`
	CommittedPaymentDate *time.Time      `json:"committed_payment_date"`
	InvoiceRef           string          `json:"invoice_ref"`
}

// UpdateLedgerRecordRequest carries the mutable fields of a ledger record
type UpdateLedgerRecordRequest struct {
	Description          *string          `json:"description"`
	AmountSubtotal       *decimal.Decimal `json:"amount_subtotal"`
	TaxAmount            *decimal.Decimal `json:"tax_amount"`
	AmountTotal          *decimal.Decimal `json:"amount_total"`
	CategoryRef          *string          `json:"category_ref"`
	OccursOn             *time.Time       `json:"occurs_on"`
	Settled              *bool            `json:"settled"`
	CommittedPaymentDate *time.Time       `json:"committed_payment_date"`
	InvoiceRef           *string          `json:"invoice_ref"`
}
