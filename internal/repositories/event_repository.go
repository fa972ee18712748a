package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	DB *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{DB: db}
}

const eventColumns = `id, name, estimated_income, accounting_state, snapshot_stale,
	closed_at, cancelled_at, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID, &e.Name, &e.EstimatedIncome, &e.AccountingState, &e.SnapshotStale,
		&e.ClosedAt, &e.CancelledAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create registers a new event in the Open accounting state
func (r *EventRepository) Create(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	query := `
		INSERT INTO events (name, estimated_income, accounting_state)
		VALUES ($1, $2, $3)
		RETURNING ` + eventColumns

	event, err := scanEvent(r.DB.QueryRow(ctx, query, req.Name, req.EstimatedIncome, models.StateOpen))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// Get returns one event by id
func (r *EventRepository) Get(ctx context.Context, id int) (*models.Event, error) {
	event, err := scanEvent(r.DB.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, finance.ErrMissingEvent
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// List returns events matching the filter, newest first
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if len(filter.States) > 0 {
		placeholders := make([]string, len(filter.States))
		for i, s := range filter.States {
			placeholders[i] = fmt.Sprintf("$%d", argNum)
			args = append(args, s)
			argNum++
		}
		conditions = append(conditions, "accounting_state IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpdateAccountingState writes a new derived accounting state
func (r *EventRepository) UpdateAccountingState(ctx context.Context, id int, state models.AccountingState) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE events SET accounting_state = $1, updated_at = NOW() WHERE id = $2`,
		state, id)
	if err != nil {
		return fmt.Errorf("failed to update accounting state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return finance.ErrMissingEvent
	}
	return nil
}

// MarkSnapshotStale flags whether the stored snapshot still reflects the
// ledger. Set on every ledger mutation, cleared by a successful recalculation.
func (r *EventRepository) MarkSnapshotStale(ctx context.Context, id int, stale bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE events SET snapshot_stale = $1, updated_at = NOW() WHERE id = $2`,
		stale, id)
	return err
}

// Close records the workflow subsystem's closing trigger for the event
func (r *EventRepository) Close(ctx context.Context, id int) (*models.Event, error) {
	event, err := scanEvent(r.DB.QueryRow(ctx, `
		UPDATE events
		SET closed_at = COALESCE(closed_at, NOW()), updated_at = NOW()
		WHERE id = $1
		RETURNING `+eventColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, finance.ErrMissingEvent
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Cancel moves an event to the terminal Cancelled state. Paid events cannot
// be cancelled.
func (r *EventRepository) Cancel(ctx context.Context, id int) (*models.Event, error) {
	event, err := scanEvent(r.DB.QueryRow(ctx, `
		UPDATE events
		SET accounting_state = $1, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND accounting_state <> $3
		RETURNING `+eventColumns,
		models.StateCancelled, id, models.StatePaid))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the event is missing or it is already paid.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("event %d is paid and cannot be cancelled", id)
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}
