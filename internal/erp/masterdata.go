package erp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/CarlosJoao1/vivae-erp-console/internal/api"
	"github.com/CarlosJoao1/vivae-erp-console/internal/pricing"
)

// Client is a customer record (clinic, dentist or other).
type Client struct {
	ID                     string  `json:"id,omitempty"`
	Code                   string  `json:"code,omitempty"`
	Name                   string  `json:"name"`
	Email                  string  `json:"email,omitempty"`
	Phone                  string  `json:"phone,omitempty"`
	Address                string  `json:"address,omitempty"`
	PostalCode             string  `json:"postal_code,omitempty"`
	CountryCode            string  `json:"country_code,omitempty"`
	Type                   string  `json:"type,omitempty"`
	TaxID                  string  `json:"tax_id,omitempty"`
	PaymentTerms           string  `json:"payment_terms,omitempty"`
	Notes                  string  `json:"notes,omitempty"`
	Active                 *bool   `json:"active,omitempty"`
	DefaultShippingAddress string  `json:"default_shipping_address,omitempty"`
	PreferredCurrency      string  `json:"preferred_currency,omitempty"`
	PaymentType            string  `json:"payment_type,omitempty"`
	PaymentForm            string  `json:"payment_form,omitempty"`
	PaymentMethod          string  `json:"payment_method,omitempty"`
	CreatedAt              string  `json:"created_at,omitempty"`
}

// ClientPrice is one price agreement row for a client.
type ClientPrice struct {
	ID        string  `json:"id,omitempty"`
	ClientID  string  `json:"client_id,omitempty"`
	SaleType  string  `json:"sale_type,omitempty"`
	SaleCode  string  `json:"sale_code,omitempty"`
	Code      string  `json:"code,omitempty"`
	UOM       string  `json:"uom,omitempty"`
	MinQty    float64 `json:"min_qty,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	StartDate string  `json:"start_date,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
}

// PriceRow converts the agreement row into the pricing engine's shape,
// parsing the date bounds. Unparseable dates are treated as open bounds.
func (p ClientPrice) PriceRow() pricing.PriceRow {
	return pricing.PriceRow{
		SaleType:  p.SaleType,
		Code:      p.Code,
		MinQty:    p.MinQty,
		UnitPrice: p.UnitPrice,
		StartDate: parseDate(p.StartDate),
		EndDate:   parseDate(p.EndDate),
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ShippingAddress is a client delivery address.
type ShippingAddress struct {
	ID          string `json:"id,omitempty"`
	ClientID    string `json:"client,omitempty"`
	Code        string `json:"code"`
	Address1    string `json:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Patient is a patient record.
type Patient struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Birthdate string `json:"birthdate,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Technician is a lab technician record.
type Technician struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	WorkCenter string `json:"workcenter,omitempty"`
}

// Service is a billable lab service.
type Service struct {
	ID          string  `json:"id,omitempty"`
	Code        string  `json:"code,omitempty"`
	Name        string  `json:"name"`
	Price       float64 `json:"price,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Country is a country catalog entry.
type Country struct {
	ID   string `json:"id,omitempty"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// DocumentType is a document type catalog entry.
type DocumentType struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Extension string `json:"extension,omitempty"`
}

// SimpleNamed covers the small financial catalogs that are just an id, a
// code and a name (currencies, payment types/forms/methods).
type SimpleNamed struct {
	ID   string `json:"id,omitempty"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

// Series is a document numbering series.
type Series struct {
	ID      string `json:"id,omitempty"`
	Code    string `json:"code,omitempty"`
	Name    string `json:"name"`
	Prefix  string `json:"prefix,omitempty"`
	NextNum int    `json:"next_num,omitempty"`
}

// Page is a paginated listing result.
type Page[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// ListQuery carries the common list parameters.
type ListQuery struct {
	Q        string
	Page     int
	PageSize int
}

func (q ListQuery) encode() string {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// MasterDataService talks to the /masterdata endpoint group.
type MasterDataService struct {
	client *api.Client
}

func NewMasterDataService(client *api.Client) *MasterDataService {
	return &MasterDataService{client: client}
}

func (s *MasterDataService) ListClients(ctx context.Context, q ListQuery) (*Page[Client], error) {
	var page Page[Client]
	if err := s.client.Get(ctx, "/masterdata/clients"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *MasterDataService) SearchClients(ctx context.Context, q string) ([]Client, error) {
	var res struct {
		Items []Client `json:"items"`
	}
	query := ""
	if q != "" {
		query = "?q=" + url.QueryEscape(q)
	}
	if err := s.client.Get(ctx, "/masterdata/clients/search"+query, &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *MasterDataService) GetClient(ctx context.Context, id string) (*Client, error) {
	var res struct {
		Client *Client `json:"client"`
	}
	if err := s.client.Get(ctx, "/masterdata/clients/"+id, &res); err != nil {
		return nil, err
	}
	return res.Client, nil
}

func (s *MasterDataService) CreateClient(ctx context.Context, body *Client) (*Client, error) {
	var res struct {
		Client *Client `json:"client"`
	}
	if err := s.client.Post(ctx, "/masterdata/clients", body, &res); err != nil {
		return nil, err
	}
	return res.Client, nil
}

func (s *MasterDataService) UpdateClient(ctx context.Context, id string, body *Client) (*Client, error) {
	var res struct {
		Client *Client `json:"client"`
	}
	if err := s.client.Put(ctx, "/masterdata/clients/"+id, body, &res); err != nil {
		return nil, err
	}
	return res.Client, nil
}

func (s *MasterDataService) DeleteClient(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/masterdata/clients/"+id)
}

func (s *MasterDataService) ListClientShippingAddresses(ctx context.Context, clientID string) ([]ShippingAddress, error) {
	var res struct {
		Items []ShippingAddress `json:"items"`
	}
	if err := s.client.Get(ctx, "/masterdata/clients/"+clientID+"/shipping-addresses", &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *MasterDataService) CreateClientShippingAddress(ctx context.Context, clientID string, body *ShippingAddress) (*ShippingAddress, error) {
	var res struct {
		ShippingAddress *ShippingAddress `json:"shipping_address"`
	}
	if err := s.client.Post(ctx, "/masterdata/clients/"+clientID+"/shipping-addresses", body, &res); err != nil {
		return nil, err
	}
	return res.ShippingAddress, nil
}

func (s *MasterDataService) DeleteClientShippingAddress(ctx context.Context, clientID, id string) error {
	return s.client.Delete(ctx, "/masterdata/clients/"+clientID+"/shipping-addresses/"+id)
}

func (s *MasterDataService) ListClientPrices(ctx context.Context, clientID string) ([]ClientPrice, error) {
	var res struct {
		Items []ClientPrice `json:"items"`
	}
	if err := s.client.Get(ctx, "/masterdata/clients/"+clientID+"/prices", &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *MasterDataService) CreateClientPrice(ctx context.Context, clientID string, body *ClientPrice) (*ClientPrice, error) {
	var res struct {
		Price *ClientPrice `json:"price"`
	}
	if err := s.client.Post(ctx, "/masterdata/clients/"+clientID+"/prices", body, &res); err != nil {
		return nil, err
	}
	return res.Price, nil
}

func (s *MasterDataService) UpdateClientPrice(ctx context.Context, clientID, id string, body *ClientPrice) (*ClientPrice, error) {
	var res struct {
		Price *ClientPrice `json:"price"`
	}
	if err := s.client.Put(ctx, "/masterdata/clients/"+clientID+"/prices/"+id, body, &res); err != nil {
		return nil, err
	}
	return res.Price, nil
}

func (s *MasterDataService) DeleteClientPrice(ctx context.Context, clientID, id string) error {
	return s.client.Delete(ctx, "/masterdata/clients/"+clientID+"/prices/"+id)
}

// ResolvePrice asks the backend to resolve the unit price for an item,
// quantity and date. A nil result means no agreement price applies.
func (s *MasterDataService) ResolvePrice(ctx context.Context, clientID string, q pricing.PriceQuery) (*float64, error) {
	v := url.Values{}
	v.Set("code", q.Code)
	if q.SaleType != "" {
		v.Set("sale_type", q.SaleType)
	}
	if q.Qty > 0 {
		v.Set("qty", strconv.FormatFloat(q.Qty, 'f', -1, 64))
	}
	if !q.Date.IsZero() {
		v.Set("date", q.Date.Format("2006-01-02"))
	}
	var res struct {
		UnitPrice *float64 `json:"unit_price"`
	}
	path := fmt.Sprintf("/masterdata/clients/%s/resolve-price?%s", clientID, v.Encode())
	if err := s.client.Get(ctx, path, &res); err != nil {
		return nil, err
	}
	return res.UnitPrice, nil
}

func (s *MasterDataService) ListPatients(ctx context.Context, q ListQuery) (*Page[Patient], error) {
	var page Page[Patient]
	if err := s.client.Get(ctx, "/masterdata/patients"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *MasterDataService) ListTechnicians(ctx context.Context, q ListQuery) (*Page[Technician], error) {
	var page Page[Technician]
	if err := s.client.Get(ctx, "/masterdata/technicians"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *MasterDataService) ListServices(ctx context.Context, q ListQuery) (*Page[Service], error) {
	var page Page[Service]
	if err := s.client.Get(ctx, "/masterdata/services"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *MasterDataService) ListCountries(ctx context.Context) ([]Country, error) {
	var res struct {
		Items []Country `json:"items"`
	}
	if err := s.client.Get(ctx, "/masterdata/countries", &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *MasterDataService) ListDocumentTypes(ctx context.Context, q ListQuery) (*Page[DocumentType], error) {
	var page Page[DocumentType]
	if err := s.client.Get(ctx, "/masterdata/document-types"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *MasterDataService) ListCurrencies(ctx context.Context) ([]SimpleNamed, error) {
	return s.listNamed(ctx, "/masterdata/financial/currencies")
}

func (s *MasterDataService) ListPaymentTypes(ctx context.Context) ([]SimpleNamed, error) {
	return s.listNamed(ctx, "/masterdata/financial/payment-types")
}

func (s *MasterDataService) ListPaymentForms(ctx context.Context) ([]SimpleNamed, error) {
	return s.listNamed(ctx, "/masterdata/financial/payment-forms")
}

func (s *MasterDataService) ListPaymentMethods(ctx context.Context) ([]SimpleNamed, error) {
	return s.listNamed(ctx, "/masterdata/financial/payment-methods")
}

func (s *MasterDataService) ListSeries(ctx context.Context) ([]Series, error) {
	var res struct {
		Items []Series `json:"items"`
	}
	if err := s.client.Get(ctx, "/masterdata/financial/series", &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *MasterDataService) listNamed(ctx context.Context, path string) ([]SimpleNamed, error) {
	var res struct {
		Items []SimpleNamed `json:"items"`
	}
	if err := s.client.Get(ctx, path, &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}
