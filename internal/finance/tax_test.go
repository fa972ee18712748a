package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTaxNormalizerToExclusive(t *testing.T) {
	n := NewTaxNormalizer(DefaultTaxRate)

	tests := []struct {
		name  string
		total string
		want  string
	}{
		{"reference income", "100000", "86206.90"},
		{"reference expense", "40000", "34482.76"},
		{"reference provision", "20000", "17241.38"},
		{"rounds half up", "1.16", "1.00"},
		{"small amount", "116", "100.00"},
		{"zero passes through", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.ToExclusive(dec(tt.total))
			assert.Equal(t, tt.want, got.StringFixed(2), "ToExclusive(%s)", tt.total)
		})
	}
}

func TestTaxNormalizerToInclusive(t *testing.T) {
	n := NewTaxNormalizer(DefaultTaxRate)

	assert.Equal(t, "100000.00", n.ToInclusive(dec("86206.897")).StringFixed(2))
	assert.Equal(t, "116.00", n.ToInclusive(dec("100")).StringFixed(2))
	assert.Equal(t, "1160.00", n.ToInclusive(dec("1000")).StringFixed(2))
}

func TestTaxNormalizerSplit(t *testing.T) {
	n := NewTaxNormalizer(DefaultTaxRate)

	sub, tax := n.Split(dec("100000"))
	assert.Equal(t, "86206.90", sub.StringFixed(2))
	assert.Equal(t, "13793.10", tax.StringFixed(2))

	// The split must always recompose exactly to the input.
	for _, total := range []string{"100000", "40000", "20000", "0.01", "123.45", "999.99"} {
		sub, tax := n.Split(dec(total))
		assert.True(t, sub.Add(tax).Equal(dec(total)), "split of %s does not recompose", total)
	}
}

func TestTaxNormalizerNegativePassThrough(t *testing.T) {
	// Negative amounts are refunds/returns; they keep their sign and are not
	// converted.
	n := NewTaxNormalizer(DefaultTaxRate)

	refund := dec("-500")
	assert.True(t, n.ToExclusive(refund).Equal(refund))
	assert.True(t, n.ToInclusive(refund).Equal(refund))

	sub, tax := n.Split(refund)
	assert.True(t, sub.Equal(refund))
	assert.True(t, tax.IsZero())
}

func TestTaxNormalizerConfigurableRate(t *testing.T) {
	n := NewTaxNormalizer(dec("0.08"))
	assert.Equal(t, "100.00", n.ToExclusive(dec("108")).StringFixed(2))

	// Non-positive rates fall back to the default.
	fallback := NewTaxNormalizer(decimal.Zero)
	require.True(t, fallback.Rate().Equal(DefaultTaxRate))
}
