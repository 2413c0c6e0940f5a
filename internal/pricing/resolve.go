package pricing

import "time"

// PriceRow is one client price agreement row. A nil date bound means the
// window is open on that side; a zero MinQty row applies to any quantity.
type PriceRow struct {
	SaleType  string     `json:"sale_type"`
	Code      string     `json:"code"`
	MinQty    float64    `json:"min_qty"`
	UnitPrice float64    `json:"unit_price"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// PriceQuery identifies the item, quantity and date to price.
type PriceQuery struct {
	SaleType string
	Code     string
	Qty      float64
	Date     time.Time
}

// ResolveUnitPrice picks the best matching agreement price, or nil when the
// query is incomplete or nothing matches. A row matches when its code equals
// the query code, its sale type is empty or equal, the quantity reaches the
// row's minimum, and the date falls inside the row's window (bounds
// inclusive). Among matches the highest minimum quantity wins; ties go to
// the most recently started row.
func ResolveUnitPrice(rows []PriceRow, q PriceQuery) *float64 {
	if q.SaleType == "" || q.Code == "" || q.Qty <= 0 {
		return nil
	}

	var best *PriceRow
	for i := range rows {
		row := &rows[i]
		if row.Code != q.Code {
			continue
		}
		if row.SaleType != "" && row.SaleType != q.SaleType {
			continue
		}
		if q.Qty < row.MinQty {
			continue
		}
		if row.StartDate != nil && q.Date.Before(*row.StartDate) {
			continue
		}
		if row.EndDate != nil && q.Date.After(*row.EndDate) {
			continue
		}
		if best == nil || betterMatch(row, best) {
			best = row
		}
	}
	if best == nil {
		return nil
	}
	price := best.UnitPrice
	return &price
}

func betterMatch(candidate, current *PriceRow) bool {
	if candidate.MinQty != current.MinQty {
		return candidate.MinQty > current.MinQty
	}
	return startOf(candidate).After(startOf(current))
}

func startOf(r *PriceRow) time.Time {
	if r.StartDate == nil {
		return time.Time{}
	}
	return *r.StartDate
}
