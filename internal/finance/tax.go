package finance

import "github.com/shopspring/decimal"

// DefaultTaxRate is the reference IVA rate (16%).
var DefaultTaxRate = decimal.New(16, -2)

// TaxNormalizer converts between tax-inclusive and tax-exclusive amounts at a
// fixed rate. All methods are pure; zero and negative amounts pass through
// unchanged so refunds keep their sign.
type TaxNormalizer struct {
	rate decimal.Decimal // fraction, e.g. 0.16
}

// NewTaxNormalizer returns a normalizer for the given fractional rate.
// Non-positive rates fall back to DefaultTaxRate.
func NewTaxNormalizer(rate decimal.Decimal) TaxNormalizer {
	if rate.Sign() <= 0 {
		rate = DefaultTaxRate
	}
	return TaxNormalizer{rate: rate}
}

// Rate returns the configured fractional tax rate.
func (n TaxNormalizer) Rate() decimal.Decimal {
	return n.rate
}

// ToExclusive converts a tax-inclusive total to its subtotal,
// rounded half-up to 2 decimals.
func (n TaxNormalizer) ToExclusive(total decimal.Decimal) decimal.Decimal {
	if total.Sign() <= 0 {
		return total
	}
	return round2(total.Div(one.Add(n.rate)))
}

// ToInclusive converts a tax-exclusive subtotal to its total,
// rounded half-up to 2 decimals.
func (n TaxNormalizer) ToInclusive(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 {
		return subtotal
	}
	return round2(subtotal.Mul(one.Add(n.rate)))
}

// Split breaks a tax-inclusive total into {subtotal, tax}. The tax part is the
// exact remainder, so subtotal + tax always reproduces the input.
func (n TaxNormalizer) Split(total decimal.Decimal) (subtotal, tax decimal.Decimal) {
	if total.Sign() <= 0 {
		return total, decimal.Zero
	}
	subtotal = n.ToExclusive(total)
	return subtotal, total.Sub(subtotal)
}
