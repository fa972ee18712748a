package finance

import (
	"strings"

	"eventos-backend/internal/models"
)

// Category is one of the closed set of canonical spend/income categories.
type Category string

const (
	CategoryFuelTolls       Category = "FUEL_TOLLS"
	CategoryMaterials       Category = "MATERIALS"
	CategoryHumanResources  Category = "HUMAN_RESOURCES"
	CategoryPaymentRequests Category = "PAYMENT_REQUESTS"
	CategoryUncategorized   Category = "UNCATEGORIZED"
)

// Categories returns the canonical categories in stable display order.
func Categories() []Category {
	return []Category{
		CategoryFuelTolls,
		CategoryMaterials,
		CategoryHumanResources,
		CategoryPaymentRequests,
		CategoryUncategorized,
	}
}

// Valid reports whether c is one of the canonical categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFuelTolls, CategoryMaterials, CategoryHumanResources,
		CategoryPaymentRequests, CategoryUncategorized:
		return true
	}
	return false
}

// builtinAliases maps known upstream catalog spellings to canonical
// categories. The upstream catalog has historically used inconsistent names
// (notably for human resources and payment requests), so classification is a
// table lookup, not string comparisons scattered over call sites. New aliases
// are registered at runtime from the category_aliases table.
var builtinAliases = map[string]Category{
	"fuel/tolls":            CategoryFuelTolls,
	"fuel":                  CategoryFuelTolls,
	"tolls":                 CategoryFuelTolls,
	"combustible":           CategoryFuelTolls,
	"casetas":               CategoryFuelTolls,
	"combustible y casetas": CategoryFuelTolls,
	"gasolina":              CategoryFuelTolls,

	"materials":  CategoryMaterials,
	"material":   CategoryMaterials,
	"materiales": CategoryMaterials,

	"human resources":  CategoryHumanResources,
	"humanresources":   CategoryHumanResources,
	"recursos humanos": CategoryHumanResources,
	"rh":               CategoryHumanResources,
	"hr":               CategoryHumanResources,
	"personal":         CategoryHumanResources,

	"payment requests":      CategoryPaymentRequests,
	"payment request":       CategoryPaymentRequests,
	"solicitudes de pago":   CategoryPaymentRequests,
	"solicitud de pago":     CategoryPaymentRequests,
	"requisiciones de pago": CategoryPaymentRequests,
}

// Classifier maps free-form category references (ids, names, short codes from
// the upstream catalog) to canonical categories. Unknown references classify
// as Uncategorized rather than failing.
type Classifier struct {
	aliases map[string]Category
}

// NewClassifier returns a classifier seeded with the built-in alias table.
func NewClassifier() *Classifier {
	aliases := make(map[string]Category, len(builtinAliases))
	for alias, cat := range builtinAliases {
		aliases[alias] = cat
	}
	return &Classifier{aliases: aliases}
}

// RegisterAlias adds or overrides a single alias. Invalid target categories
// are ignored so a bad catalog row cannot poison the table.
func (c *Classifier) RegisterAlias(alias string, cat Category) {
	if !cat.Valid() {
		return
	}
	key := normalizeAlias(alias)
	if key == "" {
		return
	}
	c.aliases[key] = cat
}

// Classify resolves a raw category reference to a canonical category.
func (c *Classifier) Classify(ref string) Category {
	if cat, ok := c.aliases[normalizeAlias(ref)]; ok {
		return cat
	}
	return CategoryUncategorized
}

// ClassifyRecord classifies a ledger record by its category reference.
func (c *Classifier) ClassifyRecord(r *models.LedgerRecord) Category {
	return c.Classify(r.CategoryRef)
}

// normalizeAlias lowercases, trims and collapses inner whitespace so that
// cosmetic variations of the same catalog name hit one table entry.
func normalizeAlias(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
