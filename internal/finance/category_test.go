package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventos-backend/internal/models"
)

func TestClassifierKnownAliases(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		ref  string
		want Category
	}{
		{"Fuel/Tolls", CategoryFuelTolls},
		{"combustible", CategoryFuelTolls},
		{"CASETAS", CategoryFuelTolls},
		{"Materials", CategoryMaterials},
		{"materiales", CategoryMaterials},
		// The upstream catalog has used both spellings historically.
		{"Human Resources", CategoryHumanResources},
		{"Recursos Humanos", CategoryHumanResources},
		{"RH", CategoryHumanResources},
		{"Payment Requests", CategoryPaymentRequests},
		{"Solicitudes de Pago", CategoryPaymentRequests},
		// Whitespace noise must not defeat the lookup.
		{"  recursos   humanos  ", CategoryHumanResources},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.ref))
		})
	}
}

func TestClassifierUnknownIsUncategorized(t *testing.T) {
	c := NewClassifier()

	assert.Equal(t, CategoryUncategorized, c.Classify("catering"))
	assert.Equal(t, CategoryUncategorized, c.Classify(""))
	assert.Equal(t, CategoryUncategorized, c.Classify("42"))
}

func TestClassifierRegisterAlias(t *testing.T) {
	c := NewClassifier()

	assert.Equal(t, CategoryUncategorized, c.Classify("Peajes"))
	c.RegisterAlias("Peajes", CategoryFuelTolls)
	assert.Equal(t, CategoryFuelTolls, c.Classify("peajes"))

	// Invalid targets and empty aliases are ignored.
	c.RegisterAlias("whatever", Category("BOGUS"))
	assert.Equal(t, CategoryUncategorized, c.Classify("whatever"))
	c.RegisterAlias("   ", CategoryMaterials)
	assert.Equal(t, CategoryUncategorized, c.Classify("   "))
}

func TestClassifyRecord(t *testing.T) {
	c := NewClassifier()
	r := &models.LedgerRecord{CategoryRef: "materiales"}
	assert.Equal(t, CategoryMaterials, c.ClassifyRecord(r))
}
