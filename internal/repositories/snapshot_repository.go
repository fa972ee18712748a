package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eventos-backend/internal/finance"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepository persists the latest reconciliation snapshot per event
// and tax basis. The whole snapshot goes into a JSONB payload column; the few
// extracted columns exist only for SQL-side reporting.
type SnapshotRepository struct {
	DB *pgxpool.Pool
}

func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{DB: db}
}

// Save upserts the snapshot for its event and tax basis
func (r *SnapshotRepository) Save(ctx context.Context, snap *finance.FinancialSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = r.DB.Exec(ctx, `
		INSERT INTO financial_snapshots
			(event_id, tax_basis, payload, utility, margin_pct, health_tier, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id, tax_basis) DO UPDATE SET
			payload = EXCLUDED.payload,
			utility = EXCLUDED.utility,
			margin_pct = EXCLUDED.margin_pct,
			health_tier = EXCLUDED.health_tier,
			computed_at = EXCLUDED.computed_at`,
		snap.EventID, snap.TaxBasis, payload,
		snap.Utility, snap.MarginPct, snap.Status.HealthTier, snap.ComputedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Latest returns the stored snapshot for the event and basis, or nil when no
// recalculation has run yet.
func (r *SnapshotRepository) Latest(ctx context.Context, eventID int, basis finance.TaxBasis) (*finance.FinancialSnapshot, error) {
	var payload []byte
	err := r.DB.QueryRow(ctx,
		`SELECT payload FROM financial_snapshots WHERE event_id = $1 AND tax_basis = $2`,
		eventID, basis).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap finance.FinancialSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for event %d: %w", eventID, err)
	}
	return &snap, nil
}
