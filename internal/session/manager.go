// Package session owns the authenticated session: the token pair, its
// persistence, the proactive refresh timer and the single-flight refresh
// exchange shared by every caller that hits an expired token.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CarlosJoao1/vivae-erp-console/internal/api"
	"github.com/CarlosJoao1/vivae-erp-console/internal/erp"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a session and
	// no access token is held.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoRefreshToken is returned by Refresh when no refresh token is held.
	ErrNoRefreshToken = errors.New("no refresh token")
)

// AuthAPI is the slice of the auth service the manager depends on.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*erp.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*erp.TokenPair, error)
	Me(ctx context.Context, accessToken string) (*erp.User, error)
	GetPreferences(ctx context.Context) (erp.Preferences, error)
	UpdatePreferences(ctx context.Context, prefs erp.Preferences) (erp.Preferences, error)
}

// Config configures a Manager.
type Config struct {
	Store TokenStore
	Auth  AuthAPI
	Log   *zap.Logger
	// RefreshLeeway is how long before access-token expiry the proactive
	// refresh fires (default 60s).
	RefreshLeeway time.Duration
	// MinRefreshDelay is the floor for the proactive timer (default 5s).
	MinRefreshDelay time.Duration
}

// refreshCall is one in-flight refresh exchange. Concurrent callers join it
// and read the same outcome once done is closed.
type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// Manager holds the session state. It implements api.TokenSource and
// api.TenantSource, so wiring it into the HTTP client gives every request
// bearer injection and retry-after-refresh for free.
type Manager struct {
	auth     AuthAPI
	store    TokenStore
	log      *zap.Logger
	leeway   time.Duration
	minDelay time.Duration

	mu       sync.Mutex
	access   string
	refresh  string
	tenantID string
	tenants  []erp.Tenant
	user     *erp.User
	prefs    erp.Preferences
	timer    *time.Timer
	inflight *refreshCall
}

// NewManager builds a Manager and loads any session persisted in the store.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Auth == nil {
		return nil, errors.New("session: auth API is required")
	}
	m := &Manager{
		auth:     cfg.Auth,
		store:    cfg.Store,
		log:      cfg.Log,
		leeway:   cfg.RefreshLeeway,
		minDelay: cfg.MinRefreshDelay,
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.leeway <= 0 {
		m.leeway = 60 * time.Second
	}
	if m.minDelay <= 0 {
		m.minDelay = 5 * time.Second
	}

	tokens, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	m.access = tokens.AccessToken
	m.refresh = tokens.RefreshToken
	m.tenantID = tokens.TenantID
	return m, nil
}

// Token returns the current access token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

// TenantID returns the active tenant id, or "" when none is selected.
func (m *Manager) TenantID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tenantID
}

// User returns the profile loaded at login, which may be a stub of just the
// username when the profile fetch failed.
func (m *Manager) User() *erp.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Tenants returns the tenants available to the user.
func (m *Manager) Tenants() []erp.Tenant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tenants
}

// Preferences returns a copy of the loaded user preferences.
func (m *Manager) Preferences() erp.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(erp.Preferences, len(m.prefs))
	for k, v := range m.prefs {
		out[k] = v
	}
	return out
}

// Login authenticates, stores the token pair, schedules the proactive
// refresh and loads the profile, tenants and preferences. A failed profile
// fetch is not fatal: a stub user with just the username is kept so the
// session stays usable.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	res, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.access = res.AccessToken
	m.refresh = res.RefreshToken
	m.persistLocked()
	m.scheduleRefreshLocked()
	m.mu.Unlock()

	user, err := m.auth.Me(ctx, res.AccessToken)
	if err != nil {
		m.log.Debug("profile fetch after login failed", zap.Error(err))
		user = &erp.User{Username: username}
	}

	tenants := res.Tenants
	if len(tenants) == 0 && user != nil {
		tenants = user.Tenants
	}

	m.mu.Lock()
	m.user = user
	m.tenants = tenants
	if chosen := pickTenantID(user, tenants); chosen != "" {
		m.tenantID = chosen
		m.persistLocked()
	}
	m.mu.Unlock()

	m.loadPreferences(ctx)
	return nil
}

// Resume restores a persisted session at startup: probe the stored access
// token against the profile endpoint, fall back to one refresh, and log out
// silently when both fail.
func (m *Manager) Resume(ctx context.Context) error {
	m.mu.Lock()
	access := m.access
	m.mu.Unlock()
	if access == "" {
		return ErrNotAuthenticated
	}

	user, err := m.auth.Me(ctx, access)
	if err != nil {
		newAccess, refreshErr := m.Refresh(ctx)
		if refreshErr != nil {
			m.Logout()
			return err
		}
		user, err = m.auth.Me(ctx, newAccess)
		if err != nil {
			m.Logout()
			return err
		}
	}

	m.mu.Lock()
	m.user = user
	m.tenants = user.Tenants
	m.tenantID = validTenantID(m.tenantID, user)
	m.persistLocked()
	m.scheduleRefreshLocked()
	m.mu.Unlock()

	m.loadPreferences(ctx)
	return nil
}

// Refresh exchanges the refresh token for a new pair. At most one exchange
// is in flight; concurrent callers join it and observe its single outcome.
// On failure the session is terminated: both tokens are cleared and the
// proactive timer cancelled.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if call := m.inflight; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.refresh == "" {
		m.mu.Unlock()
		return "", ErrNoRefreshToken
	}
	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	refreshToken := m.refresh
	m.mu.Unlock()

	pair, err := m.auth.Refresh(ctx, refreshToken)

	m.mu.Lock()
	m.inflight = nil
	if err != nil {
		m.log.Debug("refresh failed, terminating session", zap.Error(err))
		m.clearLocked()
		call.err = err
		m.mu.Unlock()
		close(call.done)
		return "", err
	}
	m.access = pair.AccessToken
	if pair.RefreshToken != "" {
		// Some backends rotate the refresh token, some keep it.
		m.refresh = pair.RefreshToken
	}
	m.persistLocked()
	m.scheduleRefreshLocked()
	call.token = m.access
	m.mu.Unlock()
	close(call.done)
	return call.token, nil
}

// Logout drops the session: tokens, profile and tenant are cleared together
// and the proactive timer is cancelled. No network call is made.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

// SetTenant switches the active tenant and persists the choice.
func (m *Manager) SetTenant(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenantID = id
	m.persistLocked()
}

// SetPreference updates one preference key locally and pushes the full set
// to the backend. The local state keeps the new value even when the push
// fails.
func (m *Manager) SetPreference(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	next := make(erp.Preferences, len(m.prefs)+1)
	for k, v := range m.prefs {
		next[k] = v
	}
	next[key] = value
	m.prefs = next
	m.mu.Unlock()

	if _, err := m.auth.UpdatePreferences(ctx, next); err != nil {
		m.log.Debug("failed to persist preferences", zap.Error(err))
		return err
	}
	return nil
}

// AuthRequest runs fn with the current access token. When fn fails with an
// expired-session error it refreshes once and retries once; any further
// failure propagates. A failed refresh surfaces fn's original error.
func AuthRequest[T any](ctx context.Context, m *Manager, fn func(token string) (T, error)) (T, error) {
	var zero T
	token := m.Token()
	if token == "" {
		return zero, ErrNotAuthenticated
	}
	out, err := fn(token)
	if err == nil || !needsRetry(err) {
		return out, err
	}
	newToken, refreshErr := m.Refresh(ctx)
	if refreshErr != nil {
		return zero, err
	}
	return fn(newToken)
}

func needsRetry(err error) bool {
	if api.IsUnauthorized(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized")
}

func (m *Manager) loadPreferences(ctx context.Context) {
	prefs, err := m.auth.GetPreferences(ctx)
	if err != nil {
		m.log.Debug("failed to load preferences", zap.Error(err))
		return
	}
	m.mu.Lock()
	m.prefs = prefs
	m.mu.Unlock()
}

// scheduleRefreshLocked arms the proactive refresh timer from the access
// token's exp claim: leeway before expiry, never sooner than the floor.
// Tokens without a readable exp are never refreshed proactively.
func (m *Manager) scheduleRefreshLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	exp := tokenExpiry(m.access)
	if exp.IsZero() {
		return
	}
	delay := time.Until(exp) - m.leeway
	if delay < m.minDelay {
		delay = m.minDelay
	}
	m.timer = time.AfterFunc(delay, func() {
		if _, err := m.Refresh(context.Background()); err != nil {
			m.log.Debug("scheduled refresh failed, logging out", zap.Error(err))
			m.Logout()
		}
	})
}

func (m *Manager) persistLocked() {
	err := m.store.Save(Tokens{
		AccessToken:  m.access,
		RefreshToken: m.refresh,
		TenantID:     m.tenantID,
	})
	if err != nil {
		m.log.Warn("failed to persist session", zap.Error(err))
	}
}

func (m *Manager) clearLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.access = ""
	m.refresh = ""
	m.tenantID = ""
	m.tenants = nil
	m.user = nil
	m.prefs = nil
	if err := m.store.Clear(); err != nil {
		m.log.Warn("failed to clear persisted session", zap.Error(err))
	}
}

func pickTenantID(user *erp.User, tenants []erp.Tenant) string {
	if user != nil && user.TenantID != "" {
		return user.TenantID
	}
	if len(tenants) > 0 {
		return tenants[0].TenantID()
	}
	return ""
}

// validTenantID keeps the stored tenant only while the user still belongs
// to it, otherwise falls back to the default pick.
func validTenantID(stored string, user *erp.User) string {
	if user == nil {
		return ""
	}
	if stored != "" {
		for _, t := range user.Tenants {
			if t.TenantID() == stored {
				return stored
			}
		}
	}
	return pickTenantID(user, user.Tenants)
}
