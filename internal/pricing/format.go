package pricing

import "github.com/shopspring/decimal"

// FormatAmount renders a monetary value for display: two decimal places,
// half away from zero. Internal totals stay unrounded; this is the only
// place amounts are rounded.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(num(v)).Round(2).StringFixed(2)
}
