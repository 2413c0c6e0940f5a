package erp

import (
	"context"

	"github.com/CarlosJoao1/vivae-erp-console/internal/api"
)

// Feature is one gatable application area and its actions.
type Feature struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Actions []string `json:"actions"`
}

// Policies maps role -> feature -> action -> allowed.
type Policies map[string]map[string]map[string]bool

// Allows reports whether the given role may perform action on feature.
func (p Policies) Allows(role, feature, action string) bool {
	return p[role][feature][action]
}

// RolesService talks to the /roles endpoint group.
type RolesService struct {
	client *api.Client
}

func NewRolesService(client *api.Client) *RolesService {
	return &RolesService{client: client}
}

func (s *RolesService) ListFeatures(ctx context.Context) ([]Feature, error) {
	var res struct {
		Items []Feature `json:"items"`
	}
	if err := s.client.Get(ctx, "/roles/features", &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *RolesService) GetPolicies(ctx context.Context) (Policies, error) {
	var res struct {
		Policies Policies `json:"policies"`
	}
	if err := s.client.Get(ctx, "/roles/policies", &res); err != nil {
		return nil, err
	}
	return res.Policies, nil
}

func (s *RolesService) UpdatePolicies(ctx context.Context, policies Policies) error {
	return s.client.Put(ctx, "/roles/policies", map[string]any{"policies": policies}, nil)
}
