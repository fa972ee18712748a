// Package finance implements the financial reconciliation and status engine:
// tax normalization, category classification, ledger aggregation, snapshot
// reconciliation, status classification and overdue detection. Everything in
// this package is pure computation over already-loaded ledger records; it
// performs no I/O.
package finance

import "github.com/shopspring/decimal"

// roundingTolerance is the allowed drift (in currency units) when comparing
// amounts that went through independent roundings.
var roundingTolerance = decimal.New(1, -2) // 0.01

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Totals is a {subtotal, tax, total} triple. Amounts are stored already
// rounded to 2 decimals, so summing triples never accumulates cent drift.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Add returns the element-wise sum of two triples.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Subtotal: t.Subtotal.Add(o.Subtotal),
		Tax:      t.Tax.Add(o.Tax),
		Total:    t.Total.Add(o.Total),
	}
}

// IsZero reports whether all three amounts are zero.
func (t Totals) IsZero() bool {
	return t.Subtotal.IsZero() && t.Tax.IsZero() && t.Total.IsZero()
}

// Amount picks the tax-inclusive or tax-exclusive amount of the triple.
func (t Totals) Amount(includeTax bool) decimal.Decimal {
	if includeTax {
		return t.Total
	}
	return t.Subtotal
}

// round2 rounds half-up to 2 decimal places. Conversions round here, at the
// point of conversion, never after aggregation.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// withinTolerance reports whether a and b differ by at most one cent.
func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(roundingTolerance)
}

// ConsistentTriple reports whether total equals subtotal + tax within
// rounding tolerance.
func ConsistentTriple(subtotal, tax, total decimal.Decimal) bool {
	return withinTolerance(subtotal.Add(tax), total)
}

// guardedPct returns numerator/denominator as a percentage rounded to 2
// decimals, or zero when the denominator is zero or negative. It never
// produces NaN or infinity.
func guardedPct(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.Sign() <= 0 {
		return decimal.Zero
	}
	return round2(numerator.Div(denominator).Mul(hundred))
}
