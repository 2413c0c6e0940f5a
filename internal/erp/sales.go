package erp

import (
	"context"

	"github.com/CarlosJoao1/vivae-erp-console/internal/api"
	"github.com/CarlosJoao1/vivae-erp-console/internal/pricing"
)

// Line is a sales document line.
type Line struct {
	Description    string  `json:"description"`
	Qty            float64 `json:"qty"`
	Price          float64 `json:"price"`
	Total          float64 `json:"total,omitempty"`
	DiscountRate   float64 `json:"discount_rate,omitempty"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
}

// Order is a sales order document.
type Order struct {
	ID             string  `json:"id,omitempty"`
	Number         string  `json:"number,omitempty"`
	Date           string  `json:"date,omitempty"`
	Client         string  `json:"client,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	Series         string  `json:"series,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	Lines          []Line  `json:"lines,omitempty"`
	DiscountRate   float64 `json:"discount_rate,omitempty"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
	TaxRate        float64 `json:"tax_rate,omitempty"`
	TaxAmount      float64 `json:"tax_amount,omitempty"`
	Total          float64 `json:"total,omitempty"`
}

// Invoice is a sales invoice document.
type Invoice struct {
	ID             string  `json:"id,omitempty"`
	Number         string  `json:"number,omitempty"`
	Date           string  `json:"date,omitempty"`
	Client         string  `json:"client,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	Series         string  `json:"series,omitempty"`
	Status         string  `json:"status,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	Lines          []Line  `json:"lines,omitempty"`
	DiscountRate   float64 `json:"discount_rate,omitempty"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
	TaxRate        float64 `json:"tax_rate,omitempty"`
	TaxAmount      float64 `json:"tax_amount,omitempty"`
	Total          float64 `json:"total,omitempty"`
}

// EmailRequest addresses a document sent by email.
type EmailRequest struct {
	To  string `json:"to,omitempty"`
	CC  string `json:"cc,omitempty"`
	BCC string `json:"bcc,omitempty"`
}

// PricingLines converts document lines into the pricing engine's shape.
func PricingLines(lines []Line) []pricing.Line {
	out := make([]pricing.Line, len(lines))
	for i, ln := range lines {
		out[i] = pricing.Line{
			Description:    ln.Description,
			Qty:            ln.Qty,
			Price:          ln.Price,
			DiscountRate:   ln.DiscountRate,
			DiscountAmount: ln.DiscountAmount,
		}
	}
	return out
}

// OrderTotals computes the full discount/tax cascade for an order.
func OrderTotals(o *Order) pricing.Totals {
	hdr := pricing.Header{
		DiscountRate:   o.DiscountRate,
		DiscountAmount: o.DiscountAmount,
		TaxRate:        o.TaxRate,
	}
	return pricing.ComputeTotals(hdr, PricingLines(o.Lines))
}

// InvoiceTotals computes the full discount/tax cascade for an invoice.
func InvoiceTotals(inv *Invoice) pricing.Totals {
	hdr := pricing.Header{
		DiscountRate:   inv.DiscountRate,
		DiscountAmount: inv.DiscountAmount,
		TaxRate:        inv.TaxRate,
	}
	return pricing.ComputeTotals(hdr, PricingLines(inv.Lines))
}

// SalesService talks to the /sales endpoint group.
type SalesService struct {
	client *api.Client
}

func NewSalesService(client *api.Client) *SalesService {
	return &SalesService{client: client}
}

func (s *SalesService) ListOrders(ctx context.Context) ([]Order, error) {
	var res struct {
		Items []Order `json:"items"`
	}
	if err := s.client.Get(ctx, "/sales/orders", &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *SalesService) GetOrder(ctx context.Context, id string) (*Order, error) {
	var res struct {
		Order *Order `json:"order"`
	}
	if err := s.client.Get(ctx, "/sales/orders/"+id, &res); err != nil {
		return nil, err
	}
	return res.Order, nil
}

func (s *SalesService) CreateOrder(ctx context.Context, body *Order) (*Order, error) {
	var res struct {
		Order *Order `json:"order"`
	}
	if err := s.client.Post(ctx, "/sales/orders", body, &res); err != nil {
		return nil, err
	}
	return res.Order, nil
}

func (s *SalesService) UpdateOrder(ctx context.Context, id string, body *Order) (*Order, error) {
	var res struct {
		Order *Order `json:"order"`
	}
	if err := s.client.Put(ctx, "/sales/orders/"+id, body, &res); err != nil {
		return nil, err
	}
	return res.Order, nil
}

// OrderPDFURL returns the download URL of the order's PDF rendition.
func (s *SalesService) OrderPDFURL(id string) string {
	return s.client.BaseURL() + "/sales/orders/" + id + "/pdf"
}

func (s *SalesService) SendOrderEmail(ctx context.Context, id string, req EmailRequest) error {
	return s.client.Post(ctx, "/sales/orders/"+id+"/email", req, nil)
}

func (s *SalesService) ListInvoices(ctx context.Context) ([]Invoice, error) {
	var res struct {
		Items []Invoice `json:"items"`
	}
	if err := s.client.Get(ctx, "/sales/invoices", &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *SalesService) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var res struct {
		Invoice *Invoice `json:"invoice"`
	}
	if err := s.client.Get(ctx, "/sales/invoices/"+id, &res); err != nil {
		return nil, err
	}
	return res.Invoice, nil
}

func (s *SalesService) CreateInvoice(ctx context.Context, body *Invoice) (*Invoice, error) {
	var res struct {
		Invoice *Invoice `json:"invoice"`
	}
	if err := s.client.Post(ctx, "/sales/invoices", body, &res); err != nil {
		return nil, err
	}
	return res.Invoice, nil
}

func (s *SalesService) UpdateInvoice(ctx context.Context, id string, body *Invoice) (*Invoice, error) {
	var res struct {
		Invoice *Invoice `json:"invoice"`
	}
	if err := s.client.Put(ctx, "/sales/invoices/"+id, body, &res); err != nil {
		return nil, err
	}
	return res.Invoice, nil
}

// InvoicePDFURL returns the download URL of the invoice's PDF rendition.
func (s *SalesService) InvoicePDFURL(id string) string {
	return s.client.BaseURL() + "/sales/invoices/" + id + "/pdf"
}

func (s *SalesService) SendInvoiceEmail(ctx context.Context, id string, req EmailRequest) error {
	return s.client.Post(ctx, "/sales/invoices/"+id+"/email", req, nil)
}
