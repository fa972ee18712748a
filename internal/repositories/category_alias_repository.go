package repositories

import (
	"context"
	"fmt"

	"eventos-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryAliasRepository struct {
	DB *pgxpool.Pool
}

func NewCategoryAliasRepository(db *pgxpool.Pool) *CategoryAliasRepository {
	return &CategoryAliasRepository{DB: db}
}

// List returns every stored alias mapping
func (r *CategoryAliasRepository) List(ctx context.Context) ([]models.CategoryAlias, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, alias, category, created_at FROM category_aliases ORDER BY alias ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []models.CategoryAlias
	for rows.Next() {
		var a models.CategoryAlias
		if err := rows.Scan(&a.ID, &a.Alias, &a.Category, &a.CreatedAt); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

// Create upserts an alias mapping. Re-registering an alias repoints it.
func (r *CategoryAliasRepository) Create(ctx context.Context, req *models.CreateCategoryAliasRequest) (*models.CategoryAlias, error) {
	var a models.CategoryAlias
	err := r.DB.QueryRow(ctx, `
		INSERT INTO category_aliases (alias, category)
		VALUES ($1, $2)
		ON CONFLICT (alias) DO UPDATE SET category = EXCLUDED.category
		RETURNING id, alias, category, created_at`,
		req.Alias, req.Category).Scan(&a.ID, &a.Alias, &a.Category, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save category alias: %w", err)
	}
	return &a, nil
}
