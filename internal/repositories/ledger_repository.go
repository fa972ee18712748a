package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	DB *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

const ledgerColumns = `id, event_id, kind, description, amount_subtotal, tax_amount,
	amount_total, category_ref, occurs_on, settled, committed_payment_date,
	invoice_ref, converted_to_expense_id, soft_deleted, created_at, updated_at`

func scanLedgerRecord(row pgx.Row) (*models.LedgerRecord, error) {
	var rec models.LedgerRecord
	err := row.Scan(
		&rec.ID, &rec.EventID, &rec.Kind, &rec.Description,
		&rec.AmountSubtotal, &rec.TaxAmount, &rec.AmountTotal,
		&rec.CategoryRef, &rec.OccursOn, &rec.Settled, &rec.CommittedPaymentDate,
		&rec.InvoiceRef, &rec.ConvertedToExpenseID, &rec.SoftDeleted,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts a new ledger record
func (r *LedgerRepository) Create(ctx context.Context, req *models.CreateLedgerRecordRequest) (*models.LedgerRecord, error) {
	query := `
		INSERT INTO ledger_records
			(event_id, kind, description, amount_subtotal, tax_amount, amount_total,
			 category_ref, occurs_on, settled, committed_payment_date, invoice_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + ledgerColumns

	rec, err := scanLedgerRecord(r.DB.QueryRow(ctx, query,
		req.EventID, req.Kind, req.Description,
		req.AmountSubtotal, req.TaxAmount, req.AmountTotal,
		req.CategoryRef, req.OccursOn, req.Settled,
		req.CommittedPaymentDate, req.InvoiceRef,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger record: %w", err)
	}
	return rec, nil
}

// Get returns one ledger record by id, soft-deleted included
func (r *LedgerRepository) Get(ctx context.Context, id int) (*models.LedgerRecord, error) {
	rec, err := scanLedgerRecord(r.DB.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_records WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ledger record %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies the non-nil fields of the request
func (r *LedgerRepository) Update(ctx context.Context, id int, req *models.UpdateLedgerRecordRequest) (*models.LedgerRecord, error) {
	var sets []string
	var args []interface{}
	argNum := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.AmountSubtotal != nil {
		addSet("amount_subtotal", *req.AmountSubtotal)
	}
	if req.TaxAmount != nil {
		addSet("tax_amount", *req.TaxAmount)
	}
	if req.AmountTotal != nil {
		addSet("amount_total", *req.AmountTotal)
	}
	if req.CategoryRef != nil {
		addSet("category_ref", *req.CategoryRef)
	}
	if req.OccursOn != nil {
		addSet("occurs_on", *req.OccursOn)
	}
	if req.Settled != nil {
		addSet("settled", *req.Settled)
	}
	if req.CommittedPaymentDate != nil {
		addSet("committed_payment_date", *req.CommittedPaymentDate)
	}
	if req.InvoiceRef != nil {
		addSet("invoice_ref", *req.InvoiceRef)
	}

	if len(sets) == 0 {
		return r.Get(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE ledger_records SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argNum, ledgerColumns)
	args = append(args, id)

	rec, err := scanLedgerRecord(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ledger record %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ledger record: %w", err)
	}
	return rec, nil
}

// SoftDelete hides a record from aggregation while keeping the audit trail
func (r *LedgerRepository) SoftDelete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE ledger_records SET soft_deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger record %d not found", id)
	}
	return nil
}

// ListByEvent returns the event's ledger, oldest first
func (r *LedgerRepository) ListByEvent(ctx context.Context, eventID int, includeDeleted bool) ([]models.LedgerRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_records WHERE event_id = $1`
	if !includeDeleted {
		query += ` AND soft_deleted = FALSE`
	}
	query += ` ORDER BY occurs_on ASC, id ASC`

	rows, err := r.DB.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLedgerRows(rows)
}

// ReadEventLedger loads an event together with its full ledger inside a
// repeatable-read, read-only transaction so the recalculation engine sees one
// consistent cut of the data even while writers keep going.
func (r *LedgerRepository) ReadEventLedger(ctx context.Context, eventID int) (*models.Event, []models.LedgerRecord, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin ledger read: %w", err)
	}
	defer tx.Rollback(ctx)

	event, err := scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, finance.ErrMissingEvent
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_records WHERE event_id = $1 ORDER BY occurs_on ASC, id ASC`,
		eventID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	records, err := collectLedgerRows(rows)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to close ledger read: %w", err)
	}
	return event, records, nil
}

// ConvertProvision atomically turns a provision into a real expense. The new
// expense inherits the provision's amounts and category, the provision keeps a
// pointer to it and stops counting toward liability.
func (r *LedgerRepository) ConvertProvision(ctx context.Context, provisionID int) (*models.LedgerRecord, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin conversion: %w", err)
	}
	defer tx.Rollback(ctx)

	provision, err := scanLedgerRecord(tx.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_records WHERE id = $1 FOR UPDATE`, provisionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("provision %d not found", provisionID)
	}
	if err != nil {
		return nil, err
	}

	if provision.Kind != models.KindProvision {
		return nil, fmt.Errorf("ledger record %d is %s, not a provision", provisionID, provision.Kind)
	}
	if provision.SoftDeleted {
		return nil, fmt.Errorf("provision %d is deleted", provisionID)
	}
	if provision.ConvertedToExpenseID != nil {
		return nil, fmt.Errorf("provision %d already converted to expense %d",
			provisionID, *provision.ConvertedToExpenseID)
	}

	expense, err := scanLedgerRecord(tx.QueryRow(ctx, `
		INSERT INTO ledger_records
			(event_id, kind, description, amount_subtotal, tax_amount, amount_total,
			 category_ref, occurs_on, settled, committed_payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)
		RETURNING `+ledgerColumns,
		provision.EventID, models.KindExpense, provision.Description,
		provision.AmountSubtotal, provision.TaxAmount, provision.AmountTotal,
		provision.CategoryRef, provision.OccursOn, provision.CommittedPaymentDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create expense from provision: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE ledger_records SET converted_to_expense_id = $1, updated_at = NOW() WHERE id = $2`,
		expense.ID, provisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to link provision: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit conversion: %w", err)
	}
	return expense, nil
}

// ListUnsettledCommitments returns live income and expense records across all
// events whose committed payment date falls strictly before the cutoff.
func (r *LedgerRepository) ListUnsettledCommitments(ctx context.Context, before time.Time) ([]models.LedgerRecord, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_records
		WHERE settled = FALSE
		  AND soft_deleted = FALSE
		  AND kind IN ($1, $2)
		  AND committed_payment_date IS NOT NULL
		  AND committed_payment_date < $3
		ORDER BY committed_payment_date ASC, id ASC`,
		models.KindIncome, models.KindExpense, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLedgerRows(rows)
}

func collectLedgerRows(rows pgx.Rows) ([]models.LedgerRecord, error) {
	var records []models.LedgerRecord
	for rows.Next() {
		rec, err := scanLedgerRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
