package command

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/CarlosJoao1/vivae-erp-console/internal/pricing"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// printTotals renders the document totals block the way the order and
// invoice forms summarise it.
func printTotals(w io.Writer, t pricing.Totals) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Subtotal\t%s\n", pricing.FormatAmount(t.Gross))
	fmt.Fprintf(tw, "Line discount\t%s\n", pricing.FormatAmount(t.Gross-t.AfterLine))
	fmt.Fprintf(tw, "Subtotal (after discount)\t%s\n", pricing.FormatAmount(t.AfterLine))
	if t.GlobalDiscount != 0 {
		fmt.Fprintf(tw, "Global discount\t%s\n", pricing.FormatAmount(t.GlobalDiscount))
	}
	fmt.Fprintf(tw, "Tax\t%s\n", pricing.FormatAmount(t.TaxAmount))
	fmt.Fprintf(tw, "Total\t%s\n", pricing.FormatAmount(t.GrandTotal))
	tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
