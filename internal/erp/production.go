package erp

import (
	"context"

	"github.com/CarlosJoao1/vivae-erp-console/internal/api"
)

// WorkCenter is a production work center.
type WorkCenter struct {
	ID       string  `json:"id,omitempty"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity,omitempty"`
	Blocked  bool    `json:"blocked,omitempty"`
}

// MachineCenter is a machine inside a work center.
type MachineCenter struct {
	ID             string  `json:"id,omitempty"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	WorkCenterCode string  `json:"work_center_code,omitempty"`
	Capacity       float64 `json:"capacity,omitempty"`
	Blocked        bool    `json:"blocked,omitempty"`
}

// BOMLine is one component of a bill of materials.
type BOMLine struct {
	ItemNo      string  `json:"item_no"`
	Description string  `json:"description,omitempty"`
	Qty         float64 `json:"qty"`
	UOM         string  `json:"uom,omitempty"`
}

// BOM is a production bill of materials. Status moves through
// new -> certified -> closed.
type BOM struct {
	ID          string    `json:"id,omitempty"`
	ItemNo      string    `json:"item_no"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	Version     string    `json:"version,omitempty"`
	Lines       []BOMLine `json:"lines,omitempty"`
}

// RoutingOperation is one step of a routing.
type RoutingOperation struct {
	OperationNo    string  `json:"operation_no"`
	Description    string  `json:"description,omitempty"`
	WorkCenterCode string  `json:"work_center_code,omitempty"`
	SetupTime      float64 `json:"setup_time,omitempty"`
	RunTime        float64 `json:"run_time,omitempty"`
}

// Routing is a production routing. Status moves through
// new -> certified -> closed.
type Routing struct {
	ID          string             `json:"id,omitempty"`
	No          string             `json:"no"`
	Description string             `json:"description,omitempty"`
	Status      string             `json:"status,omitempty"`
	Operations  []RoutingOperation `json:"operations,omitempty"`
}

// ProductionOrder is a manufacturing order. Status moves through
// planned -> released -> finished, with cancel and reopen side paths.
type ProductionOrder struct {
	ID          string  `json:"id,omitempty"`
	No          string  `json:"no,omitempty"`
	ItemNo      string  `json:"item_no"`
	Description string  `json:"description,omitempty"`
	Qty         float64 `json:"qty"`
	Status      string  `json:"status,omitempty"`
	DueDate     string  `json:"due_date,omitempty"`
}

// ProductionService talks to the /production endpoint group.
type ProductionService struct {
	client *api.Client
}

func NewProductionService(client *api.Client) *ProductionService {
	return &ProductionService{client: client}
}

func (s *ProductionService) ListWorkCenters(ctx context.Context, q ListQuery) (*Page[WorkCenter], error) {
	var page Page[WorkCenter]
	if err := s.client.Get(ctx, "/production/work-centers"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *ProductionService) GetWorkCenter(ctx context.Context, id string) (*WorkCenter, error) {
	var res struct {
		WorkCenter *WorkCenter `json:"work_center"`
	}
	if err := s.client.Get(ctx, "/production/work-centers/"+id, &res); err != nil {
		return nil, err
	}
	return res.WorkCenter, nil
}

func (s *ProductionService) CreateWorkCenter(ctx context.Context, body *WorkCenter) (*WorkCenter, error) {
	var res struct {
		WorkCenter *WorkCenter `json:"work_center"`
	}
	if err := s.client.Post(ctx, "/production/work-centers", body, &res); err != nil {
		return nil, err
	}
	return res.WorkCenter, nil
}

func (s *ProductionService) UpdateWorkCenter(ctx context.Context, id string, body *WorkCenter) (*WorkCenter, error) {
	var res struct {
		WorkCenter *WorkCenter `json:"work_center"`
	}
	if err := s.client.Put(ctx, "/production/work-centers/"+id, body, &res); err != nil {
		return nil, err
	}
	return res.WorkCenter, nil
}

func (s *ProductionService) ListMachineCenters(ctx context.Context, q ListQuery) (*Page[MachineCenter], error) {
	var page Page[MachineCenter]
	if err := s.client.Get(ctx, "/production/machine-centers"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *ProductionService) GetMachineCenter(ctx context.Context, id string) (*MachineCenter, error) {
	var res struct {
		MachineCenter *MachineCenter `json:"machine_center"`
	}
	if err := s.client.Get(ctx, "/production/machine-centers/"+id, &res); err != nil {
		return nil, err
	}
	return res.MachineCenter, nil
}

func (s *ProductionService) CreateMachineCenter(ctx context.Context, body *MachineCenter) (*MachineCenter, error) {
	var res struct {
		MachineCenter *MachineCenter `json:"machine_center"`
	}
	if err := s.client.Post(ctx, "/production/machine-centers", body, &res); err != nil {
		return nil, err
	}
	return res.MachineCenter, nil
}

func (s *ProductionService) UpdateMachineCenter(ctx context.Context, id string, body *MachineCenter) (*MachineCenter, error) {
	var res struct {
		MachineCenter *MachineCenter `json:"machine_center"`
	}
	if err := s.client.Put(ctx, "/production/machine-centers/"+id, body, &res); err != nil {
		return nil, err
	}
	return res.MachineCenter, nil
}

func (s *ProductionService) ListBOMs(ctx context.Context, q ListQuery) (*Page[BOM], error) {
	var page Page[BOM]
	if err := s.client.Get(ctx, "/production/boms"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *ProductionService) GetBOM(ctx context.Context, id string) (*BOM, error) {
	var res struct {
		BOM *BOM `json:"bom"`
	}
	if err := s.client.Get(ctx, "/production/boms/"+id, &res); err != nil {
		return nil, err
	}
	return res.BOM, nil
}

func (s *ProductionService) CreateBOM(ctx context.Context, body *BOM) (*BOM, error) {
	var res struct {
		BOM *BOM `json:"bom"`
	}
	if err := s.client.Post(ctx, "/production/boms", body, &res); err != nil {
		return nil, err
	}
	return res.BOM, nil
}

// UpdateBOM replaces a bill of materials; the backend rejects edits once the
// document is certified.
func (s *ProductionService) UpdateBOM(ctx context.Context, id string, body *BOM) (*BOM, error) {
	var res struct {
		BOM *BOM `json:"bom"`
	}
	if err := s.client.Put(ctx, "/production/boms/"+id, body, &res); err != nil {
		return nil, err
	}
	return res.BOM, nil
}

// CertifyBOM moves a bill of materials to the certified status.
func (s *ProductionService) CertifyBOM(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/production/boms/"+id+"/certify", nil, nil)
}

// CloseBOM moves a bill of materials to the closed status.
func (s *ProductionService) CloseBOM(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/production/boms/"+id+"/close", nil, nil)
}

func (s *ProductionService) ListRoutings(ctx context.Context, q ListQuery) (*Page[Routing], error) {
	var page Page[Routing]
	if err := s.client.Get(ctx, "/production/routings"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *ProductionService) GetRouting(ctx context.Context, id string) (*Routing, error) {
	var res struct {
		Routing *Routing `json:"routing"`
	}
	if err := s.client.Get(ctx, "/production/routings/"+id, &res); err != nil {
		return nil, err
	}
	return res.Routing, nil
}

func (s *ProductionService) CreateRouting(ctx context.Context, body *Routing) (*Routing, error) {
	var res struct {
		Routing *Routing `json:"routing"`
	}
	if err := s.client.Post(ctx, "/production/routings", body, &res); err != nil {
		return nil, err
	}
	return res.Routing, nil
}

// UpdateRouting replaces a routing; the backend rejects edits once the
// document is certified.
func (s *ProductionService) UpdateRouting(ctx context.Context, id string, body *Routing) (*Routing, error) {
	var res struct {
		Routing *Routing `json:"routing"`
	}
	if err := s.client.Put(ctx, "/production/routings/"+id, body, &res); err != nil {
		return nil, err
	}
	return res.Routing, nil
}

// CertifyRouting moves a routing to the certified status.
func (s *ProductionService) CertifyRouting(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/production/routings/"+id+"/certify", nil, nil)
}

// CloseRouting moves a routing to the closed status.
func (s *ProductionService) CloseRouting(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/production/routings/"+id+"/close", nil, nil)
}

func (s *ProductionService) ListProductionOrders(ctx context.Context, q ListQuery) (*Page[ProductionOrder], error) {
	var page Page[ProductionOrder]
	if err := s.client.Get(ctx, "/production/production-orders"+q.encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *ProductionService) GetProductionOrder(ctx context.Context, id string) (*ProductionOrder, error) {
	var res struct {
		ProductionOrder *ProductionOrder `json:"production_order"`
	}
	if err := s.client.Get(ctx, "/production/production-orders/"+id, &res); err != nil {
		return nil, err
	}
	return res.ProductionOrder, nil
}

func (s *ProductionService) CreateProductionOrder(ctx context.Context, body *ProductionOrder) (*ProductionOrder, error) {
	var res struct {
		ProductionOrder *ProductionOrder `json:"production_order"`
	}
	if err := s.client.Post(ctx, "/production/production-orders", body, &res); err != nil {
		return nil, err
	}
	return res.ProductionOrder, nil
}

// ReleaseProductionOrder moves a production order to the released status.
func (s *ProductionService) ReleaseProductionOrder(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/production/production-orders/"+id+"/release", nil, nil)
}

// FinishProductionOrder moves a production order to the finished status.
func (s *ProductionService) FinishProductionOrder(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/production/production-orders/"+id+"/finish", nil, nil)
}

// CancelProductionOrder cancels a production order.
func (s *ProductionService) CancelProductionOrder(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/production/production-orders/"+id+"/cancel", nil, nil)
}

// ReopenProductionOrder moves a finished or cancelled order back to planned.
func (s *ProductionService) ReopenProductionOrder(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/production/production-orders/"+id+"/reopen", nil, nil)
}
