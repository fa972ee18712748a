package services

import (
	"context"
	"fmt"
	"log"

	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"
	"eventos-backend/internal/repositories"
)

// CategoryService maintains the alias table behind the classifier. The
// classifier instance is shared with the aggregator, so a registered alias
// takes effect on the next recalculation without a restart.
type CategoryService struct {
	aliases    *repositories.CategoryAliasRepository
	classifier *finance.Classifier
}

func NewCategoryService(aliases *repositories.CategoryAliasRepository, classifier *finance.Classifier) *CategoryService {
	return &CategoryService{aliases: aliases, classifier: classifier}
}

// LoadAliases merges the stored alias rows into the classifier. Called once
// at startup, after the built-in table is seeded.
func (s *CategoryService) LoadAliases(ctx context.Context) error {
	rows, err := s.aliases.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load category aliases: %w", err)
	}
	for _, row := range rows {
		s.classifier.RegisterAlias(row.Alias, finance.Category(row.Category))
	}
	log.Printf("[Category] Loaded %d alias rows", len(rows))
	return nil
}

// RegisterAlias persists a new alias and applies it to the live classifier
func (s *CategoryService) RegisterAlias(ctx context.Context, req *models.CreateCategoryAliasRequest) (*models.CategoryAlias, error) {
	cat := finance.Category(req.Category)
	if !cat.Valid() {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}
	if req.Alias == "" {
		return nil, fmt.Errorf("alias is required")
	}

	row, err := s.aliases.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.classifier.RegisterAlias(row.Alias, cat)
	return row, nil
}

// List returns the stored alias rows
func (s *CategoryService) List(ctx context.Context) ([]models.CategoryAlias, error) {
	return s.aliases.List(ctx)
}

// Categories returns the canonical category set
func (s *CategoryService) Categories() []finance.Category {
	return finance.Categories()
}
