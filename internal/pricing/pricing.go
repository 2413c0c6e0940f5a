// Package pricing implements the document totals engine: per-line gross,
// discount and net amounts, the document-level discount and tax cascade, and
// client price resolution. All arithmetic is float64 and nothing is rounded
// here; rounding is a presentation concern (see FormatAmount).
package pricing

import "math"

// Line is the pricing view of a sales document line. Zero values stand in
// for missing inputs, so a partially filled line is always computable.
type Line struct {
	Description    string  `json:"description"`
	Qty            float64 `json:"qty"`
	Price          float64 `json:"price"`
	DiscountRate   float64 `json:"discount_rate"`
	DiscountAmount float64 `json:"discount_amount"`
	SaleType       string  `json:"sale_type,omitempty"`
	Code           string  `json:"code,omitempty"`
}

// Header carries the document-level discount and tax inputs.
type Header struct {
	DiscountRate   float64 `json:"discount_rate"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxRate        float64 `json:"tax_rate"`
}

// Totals is the result of the full document cascade.
type Totals struct {
	Gross          float64 `json:"gross"`
	AfterLine      float64 `json:"after_line"`
	GlobalDiscount float64 `json:"global_discount"`
	TaxBase        float64 `json:"tax_base"`
	TaxAmount      float64 `json:"tax_amount"`
	GrandTotal     float64 `json:"grand_total"`
}

// num coerces NaN and infinities to zero so malformed inputs degrade to
// "missing" instead of poisoning every downstream total.
func num(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Gross returns qty x unit price for a line.
func Gross(ln Line) float64 {
	return num(ln.Qty) * num(ln.Price)
}

// LineDiscount returns the line's discount against the given gross. A
// non-zero fixed amount wins over a rate and is taken verbatim, even when it
// exceeds the gross; otherwise a non-zero rate applies as a percentage.
func LineDiscount(ln Line, gross float64) float64 {
	if da := num(ln.DiscountAmount); da != 0 {
		return da
	}
	if dr := num(ln.DiscountRate); dr != 0 {
		return gross * (dr / 100)
	}
	return 0
}

// Net returns the line total after its own discount, clamped at zero.
func Net(ln Line) float64 {
	g := Gross(ln)
	d := LineDiscount(ln, g)
	return math.Max(0, g-d)
}

// SumGross totals Gross over all lines.
func SumGross(lines []Line) float64 {
	var s float64
	for _, ln := range lines {
		s += Gross(ln)
	}
	return s
}

// SumAfterLine totals Net over all lines, the subtotal after line discounts.
func SumAfterLine(lines []Line) float64 {
	var s float64
	for _, ln := range lines {
		s += Net(ln)
	}
	return s
}

// GlobalDiscount returns the document-level discount against the after-line
// subtotal. A positive rate wins; otherwise the fixed amount is used as-is.
func GlobalDiscount(hdr Header, afterLine float64) float64 {
	if rate := num(hdr.DiscountRate); rate > 0 {
		return afterLine * (rate / 100)
	}
	return num(hdr.DiscountAmount)
}

// ComputeTotals runs the full cascade in its fixed order: line discounts,
// then the global discount, then tax on what remains.
func ComputeTotals(hdr Header, lines []Line) Totals {
	gross := SumGross(lines)
	after := SumAfterLine(lines)
	global := GlobalDiscount(hdr, after)
	taxBase := math.Max(0, after-global)
	taxAmount := taxBase * (num(hdr.TaxRate) / 100)
	return Totals{
		Gross:          gross,
		AfterLine:      after,
		GlobalDiscount: global,
		TaxBase:        taxBase,
		TaxAmount:      taxAmount,
		GrandTotal:     taxBase + taxAmount,
	}
}
