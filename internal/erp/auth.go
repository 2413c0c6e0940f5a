// Package erp holds the typed service groups of the backend API: auth,
// master data, sales, production and roles. Each service is a thin wrapper
// over the shared api.Client that knows its endpoints and envelopes.
package erp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CarlosJoao1/vivae-erp-console/internal/api"
)

// TokenPair is the access/refresh token pair issued by the backend.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Tenant is one tenant the user belongs to. Some backend payloads carry the
// id as "_id" instead of "id".
type Tenant struct {
	ID    string `json:"id"`
	AltID string `json:"_id"`
	Name  string `json:"name"`
}

// TenantID returns whichever id field the payload carried.
func (t Tenant) TenantID() string {
	if t.ID != "" {
		return t.ID
	}
	return t.AltID
}

// User is the authenticated user as returned by /auth/me.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	TenantID string   `json:"tenantId,omitempty"`
	Tenants  []Tenant `json:"tenants,omitempty"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// LoginResult is the /auth/login response: the token pair plus the tenants
// available to the user, when the backend includes them.
type LoginResult struct {
	TokenPair
	Tenants []Tenant `json:"tenants,omitempty"`
}

// Preferences are free-form per-user settings.
type Preferences map[string]any

// AuthService talks to the /auth endpoint group.
type AuthService struct {
	client *api.Client
}

func NewAuthService(client *api.Client) *AuthService {
	return &AuthService{client: client}
}

// Login exchanges credentials for a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var res LoginResult
	if err := s.client.Post(ctx, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		return nil, fmt.Errorf("login response is missing tokens")
	}
	return &res, nil
}

// Refresh exchanges the refresh token for a new pair. The refresh token
// rides in the Authorization header; the body is empty.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	if err := s.client.PostWithToken(ctx, "/auth/refresh", refreshToken, nil, &pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("refresh response is missing an access token")
	}
	return &pair, nil
}

// Me fetches the authenticated user with an explicit access token. The
// backend wraps the user in a {"user": ...} envelope on some deployments
// and returns it bare on others, so both shapes are accepted.
func (s *AuthService) Me(ctx context.Context, accessToken string) (*User, error) {
	var raw json.RawMessage
	if err := s.client.GetWithToken(ctx, "/auth/me", accessToken, &raw); err != nil {
		return nil, err
	}
	var envelope struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.User != nil {
		return envelope.User, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user payload: %w", err)
	}
	return &user, nil
}

// GetPreferences loads the user's stored preferences.
func (s *AuthService) GetPreferences(ctx context.Context) (Preferences, error) {
	var res struct {
		Preferences Preferences `json:"preferences"`
	}
	if err := s.client.Get(ctx, "/auth/preferences", &res); err != nil {
		return nil, err
	}
	if res.Preferences == nil {
		return Preferences{}, nil
	}
	return res.Preferences, nil
}

// UpdatePreferences replaces the user's stored preferences.
func (s *AuthService) UpdatePreferences(ctx context.Context, prefs Preferences) (Preferences, error) {
	body := map[string]any{"preferences": prefs}
	var res struct {
		Preferences Preferences `json:"preferences"`
	}
	if err := s.client.Put(ctx, "/auth/preferences", body, &res); err != nil {
		return nil, err
	}
	if res.Preferences == nil {
		return prefs, nil
	}
	return res.Preferences, nil
}
