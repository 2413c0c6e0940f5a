package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CarlosJoao1/vivae-erp-console/internal/api"
	"github.com/CarlosJoao1/vivae-erp-console/internal/erp"
)

// mockAuthAPI is a hand-rolled AuthAPI with call counting and an optional
// gate to hold a refresh open while other goroutines pile up behind it.
type mockAuthAPI struct {
	mu sync.Mutex

	loginRes *erp.LoginResult
	loginErr error

	refreshPair  *erp.TokenPair
	refreshErr   error
	refreshCalls int
	refreshGate  chan struct{}

	meUser     *erp.User
	meErr      error
	meFailures int
	meCalls    int

	prefs    erp.Preferences
	prefsErr error
	updated  erp.Preferences
}

func (m *mockAuthAPI) Login(ctx context.Context, username, password string) (*erp.LoginResult, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginRes, nil
}

func (m *mockAuthAPI) Refresh(ctx context.Context, refreshToken string) (*erp.TokenPair, error) {
	m.mu.Lock()
	m.refreshCalls++
	gate := m.refreshGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.refreshPair, nil
}

func (m *mockAuthAPI) Me(ctx context.Context, accessToken string) (*erp.User, error) {
	m.mu.Lock()
	m.meCalls++
	call := m.meCalls
	m.mu.Unlock()
	if m.meErr != nil && (m.meFailures == 0 || call <= m.meFailures) {
		return nil, m.meErr
	}
	return m.meUser, nil
}

func (m *mockAuthAPI) GetPreferences(ctx context.Context) (erp.Preferences, error) {
	if m.prefsErr != nil {
		return nil, m.prefsErr
	}
	return m.prefs, nil
}

func (m *mockAuthAPI) UpdatePreferences(ctx context.Context, prefs erp.Preferences) (erp.Preferences, error) {
	m.mu.Lock()
	m.updated = prefs
	m.mu.Unlock()
	return prefs, nil
}

func (m *mockAuthAPI) refreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshCalls
}

// signedToken mints a JWT expiring at the given time. The manager never
// verifies signatures, it only reads exp.
func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newTestManager(t *testing.T, auth AuthAPI) *Manager {
	t.Helper()
	m, err := NewManager(Config{Store: NewMemoryStore(), Auth: auth})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Logout)
	return m
}

func TestLoginStoresSession(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	auth := &mockAuthAPI{
		loginRes: &erp.LoginResult{
			TokenPair: erp.TokenPair{AccessToken: access, RefreshToken: "refresh-1"},
			Tenants:   []erp.Tenant{{ID: "tenant-1", Name: "Main Lab"}},
		},
		meUser: &erp.User{ID: "u1", Username: "carlos", Roles: []string{"admin"}},
		prefs:  erp.Preferences{"theme": "dark"},
	}
	m := newTestManager(t, auth)

	if err := m.Login(context.Background(), "carlos", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got := m.Token(); got != access {
		t.Errorf("Token() = %q, want the login access token", got)
	}
	if got := m.TenantID(); got != "tenant-1" {
		t.Errorf("TenantID() = %q, want tenant-1", got)
	}
	if user := m.User(); user == nil || user.Username != "carlos" {
		t.Errorf("User() = %+v, want the /auth/me profile", user)
	}
	if prefs := m.Preferences(); prefs["theme"] != "dark" {
		t.Errorf("Preferences() = %v, want loaded preferences", prefs)
	}
}

func TestLoginProfileFailureIsNotFatal(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	auth := &mockAuthAPI{
		loginRes: &erp.LoginResult{
			TokenPair: erp.TokenPair{AccessToken: access, RefreshToken: "refresh-1"},
		},
		meErr:    errors.New("me endpoint down"),
		prefsErr: errors.New("prefs endpoint down"),
	}
	m := newTestManager(t, auth)

	if err := m.Login(context.Background(), "carlos", "secret"); err != nil {
		t.Fatalf("Login should tolerate a failed profile fetch, got %v", err)
	}
	if user := m.User(); user == nil || user.Username != "carlos" {
		t.Errorf("User() = %+v, want a stub with the login username", user)
	}
	if got := m.Token(); got != access {
		t.Errorf("Token() = %q, session must stay usable", got)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	auth := &mockAuthAPI{
		refreshPair: &erp.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"},
	}
	m := newTestManager(t, auth)
	seedSession(t, m, "old-access", "old-refresh")

	got, err := m.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got != "new-access" || m.Token() != "new-access" {
		t.Errorf("Refresh returned %q, want new-access", got)
	}

	tokens, _ := m.store.Load()
	if tokens.AccessToken != "new-access" || tokens.RefreshToken != "new-refresh" {
		t.Errorf("persisted tokens = %+v, want the rotated pair", tokens)
	}
}

func TestRefreshKeepsOldRefreshTokenWhenNotRotated(t *testing.T) {
	auth := &mockAuthAPI{refreshPair: &erp.TokenPair{AccessToken: "new-access"}}
	m := newTestManager(t, auth)
	seedSession(t, m, "old-access", "old-refresh")

	if _, err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	tokens, _ := m.store.Load()
	if tokens.RefreshToken != "old-refresh" {
		t.Errorf("refresh token = %q, want the old one kept", tokens.RefreshToken)
	}
}

func TestRefreshWithoutTokenFails(t *testing.T) {
	m := newTestManager(t, &mockAuthAPI{})
	if _, err := m.Refresh(context.Background()); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("Refresh error = %v, want ErrNoRefreshToken", err)
	}
}

func TestRefreshFailureTerminatesSession(t *testing.T) {
	auth := &mockAuthAPI{refreshErr: errors.New("refresh token revoked")}
	m := newTestManager(t, auth)
	seedSession(t, m, "old-access", "old-refresh")

	if _, err := m.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh should fail")
	}
	if m.Token() != "" {
		t.Error("access token should be cleared after a failed refresh")
	}
	tokens, _ := m.store.Load()
	if tokens.AccessToken != "" || tokens.RefreshToken != "" {
		t.Errorf("persisted tokens = %+v, want everything cleared", tokens)
	}
}

func TestRefreshIsSingleFlight(t *testing.T) {
	auth := &mockAuthAPI{
		refreshPair: &erp.TokenPair{AccessToken: "new-access"},
		refreshGate: make(chan struct{}),
	}
	m := newTestManager(t, auth)
	seedSession(t, m, "old-access", "old-refresh")

	const callers = 20
	results := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := m.Refresh(context.Background())
			if err != nil {
				t.Errorf("Refresh failed: %v", err)
				return
			}
			results <- token
		}()
	}

	// Give the callers time to pile up behind the gated exchange.
	time.Sleep(50 * time.Millisecond)
	close(auth.refreshGate)
	wg.Wait()
	close(results)

	if got := auth.refreshCount(); got != 1 {
		t.Errorf("refresh exchanges = %d, want exactly 1", got)
	}
	for token := range results {
		if token != "new-access" {
			t.Errorf("caller observed %q, want the shared outcome", token)
		}
	}
}

func TestRefreshWaiterHonoursContext(t *testing.T) {
	auth := &mockAuthAPI{
		refreshPair: &erp.TokenPair{AccessToken: "new-access"},
		refreshGate: make(chan struct{}),
	}
	m := newTestManager(t, auth)
	seedSession(t, m, "old-access", "old-refresh")

	go m.Refresh(context.Background())
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("joined waiter error = %v, want context.Canceled", err)
	}

	// The in-flight exchange must still complete for everyone else.
	close(auth.refreshGate)
	deadline := time.Now().Add(time.Second)
	for m.Token() != "new-access" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := m.Token(); got != "new-access" {
		t.Errorf("Token() = %q, a cancelled waiter must not clear the session", got)
	}
}

func TestAuthRequestRetriesOnceAfterRefresh(t *testing.T) {
	auth := &mockAuthAPI{refreshPair: &erp.TokenPair{AccessToken: "new-access"}}
	m := newTestManager(t, auth)
	seedSession(t, m, "stale-access", "refresh-1")

	var seen []string
	got, err := AuthRequest(context.Background(), m, func(token string) (string, error) {
		seen = append(seen, token)
		if token == "stale-access" {
			return "", &api.Error{Status: 401, Message: "token expired"}
		}
		return "payload", nil
	})
	if err != nil {
		t.Fatalf("AuthRequest failed: %v", err)
	}
	if got != "payload" {
		t.Errorf("result = %q, want payload", got)
	}
	if len(seen) != 2 || seen[0] != "stale-access" || seen[1] != "new-access" {
		t.Errorf("tokens seen = %v, want stale then refreshed", seen)
	}
}

func TestAuthRequestKeepsOriginalErrorWhenRefreshFails(t *testing.T) {
	auth := &mockAuthAPI{refreshErr: errors.New("refresh revoked")}
	m := newTestManager(t, auth)
	seedSession(t, m, "stale-access", "refresh-1")

	original := &api.Error{Status: 401, Message: "token expired"}
	_, err := AuthRequest(context.Background(), m, func(token string) (string, error) {
		return "", original
	})
	if !errors.Is(err, original) {
		t.Errorf("error = %v, want the request's original 401", err)
	}
}

func TestAuthRequestDoesNotRetryOtherErrors(t *testing.T) {
	auth := &mockAuthAPI{refreshPair: &erp.TokenPair{AccessToken: "new-access"}}
	m := newTestManager(t, auth)
	seedSession(t, m, "access-1", "refresh-1")

	calls := 0
	boom := &api.Error{Status: 500, Message: "boom"}
	_, err := AuthRequest(context.Background(), m, func(token string) (string, error) {
		calls++
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want the server error untouched", err)
	}
	if calls != 1 {
		t.Errorf("fn calls = %d, want 1", calls)
	}
	if auth.refreshCount() != 0 {
		t.Error("a non-auth failure must not trigger a refresh")
	}
}

func TestAuthRequestWithoutSession(t *testing.T) {
	m := newTestManager(t, &mockAuthAPI{})
	_, err := AuthRequest(context.Background(), m, func(token string) (string, error) {
		t.Fatal("fn must not run without a session")
		return "", nil
	})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("error = %v, want ErrNotAuthenticated", err)
	}
}

func TestScheduledRefreshFires(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	auth := &mockAuthAPI{
		loginRes: &erp.LoginResult{
			TokenPair: erp.TokenPair{AccessToken: access, RefreshToken: "refresh-1"},
		},
		meUser:      &erp.User{Username: "carlos"},
		refreshPair: &erp.TokenPair{AccessToken: "refreshed-access"},
	}
	m, err := NewManager(Config{
		Store: NewMemoryStore(),
		Auth:  auth,
		// The token is far from expiry, so the floor drives the timer.
		RefreshLeeway:   2 * time.Hour,
		MinRefreshDelay: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Logout)

	if err := m.Login(context.Background(), "carlos", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for m.Token() != "refreshed-access" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := m.Token(); got != "refreshed-access" {
		t.Errorf("Token() = %q, want the proactively refreshed token", got)
	}
}

func TestScheduledRefreshFailureLogsOut(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	auth := &mockAuthAPI{
		loginRes: &erp.LoginResult{
			TokenPair: erp.TokenPair{AccessToken: access, RefreshToken: "refresh-1"},
		},
		meUser:     &erp.User{Username: "carlos"},
		refreshErr: errors.New("refresh revoked"),
	}
	m, err := NewManager(Config{
		Store:           NewMemoryStore(),
		Auth:            auth,
		RefreshLeeway:   2 * time.Hour,
		MinRefreshDelay: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Logout)

	if err := m.Login(context.Background(), "carlos", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for m.Token() != "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if m.Token() != "" {
		t.Error("a failed scheduled refresh must end the session silently")
	}
}

func TestLogoutCancelsScheduledRefresh(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	auth := &mockAuthAPI{
		loginRes: &erp.LoginResult{
			TokenPair: erp.TokenPair{AccessToken: access, RefreshToken: "refresh-1"},
		},
		meUser:      &erp.User{Username: "carlos"},
		refreshPair: &erp.TokenPair{AccessToken: "refreshed-access"},
	}
	m, err := NewManager(Config{
		Store:           NewMemoryStore(),
		Auth:            auth,
		RefreshLeeway:   2 * time.Hour,
		MinRefreshDelay: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := m.Login(context.Background(), "carlos", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	m.Logout()

	time.Sleep(120 * time.Millisecond)
	if got := auth.refreshCount(); got != 0 {
		t.Errorf("refresh exchanges after logout = %d, want 0", got)
	}
	if m.Token() != "" {
		t.Error("Token() should be empty after logout")
	}
}

func TestResumeRestoresSession(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	store := NewMemoryStore()
	store.Save(Tokens{AccessToken: access, RefreshToken: "refresh-1", TenantID: "tenant-2"})

	auth := &mockAuthAPI{
		meUser: &erp.User{
			Username: "carlos",
			Tenants:  []erp.Tenant{{ID: "tenant-1"}, {ID: "tenant-2"}},
		},
	}
	m, err := NewManager(Config{Store: store, Auth: auth})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Logout)

	if err := m.Resume(context.Background()); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if user := m.User(); user == nil || user.Username != "carlos" {
		t.Errorf("User() = %+v, want the restored profile", user)
	}
	if got := m.TenantID(); got != "tenant-2" {
		t.Errorf("TenantID() = %q, want the stored tenant kept", got)
	}
}

func TestResumeDropsUnknownStoredTenant(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	store := NewMemoryStore()
	store.Save(Tokens{AccessToken: access, RefreshToken: "refresh-1", TenantID: "gone"})

	auth := &mockAuthAPI{
		meUser: &erp.User{Username: "carlos", Tenants: []erp.Tenant{{ID: "tenant-1"}}},
	}
	m, err := NewManager(Config{Store: store, Auth: auth})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Logout)

	if err := m.Resume(context.Background()); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if got := m.TenantID(); got != "tenant-1" {
		t.Errorf("TenantID() = %q, want fallback to the first tenant", got)
	}
}

func TestResumeFallsBackToRefresh(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	store := NewMemoryStore()
	store.Save(Tokens{AccessToken: access, RefreshToken: "refresh-1"})

	// First Me probe fails, refresh succeeds, second Me succeeds.
	auth := &mockAuthAPI{
		meErr:       errors.New("401 unauthorized"),
		meFailures:  1,
		meUser:      &erp.User{Username: "carlos"},
		refreshPair: &erp.TokenPair{AccessToken: "new-access"},
	}
	m, err := NewManager(Config{Store: store, Auth: auth})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Logout)

	if err := m.Resume(context.Background()); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if user := m.User(); user == nil || user.Username != "carlos" {
		t.Errorf("User() = %+v, want the profile loaded", user)
	}
	if got := m.Token(); got != "new-access" {
		t.Errorf("Token() = %q, want the refreshed token", got)
	}
}

func TestResumeLogsOutWhenEverythingFails(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	store := NewMemoryStore()
	store.Save(Tokens{AccessToken: access, RefreshToken: "refresh-1"})

	auth := &mockAuthAPI{
		meErr:      errors.New("401 unauthorized"),
		refreshErr: errors.New("refresh revoked"),
	}
	m, err := NewManager(Config{Store: store, Auth: auth})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := m.Resume(context.Background()); err == nil {
		t.Fatal("Resume should fail when probe and refresh both fail")
	}
	if m.Token() != "" {
		t.Error("session must be cleared after a failed resume")
	}
}

func TestResumeWithoutStoredSession(t *testing.T) {
	m := newTestManager(t, &mockAuthAPI{})
	if err := m.Resume(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Resume error = %v, want ErrNotAuthenticated", err)
	}
}

func TestSetPreferencePushesFullSet(t *testing.T) {
	auth := &mockAuthAPI{}
	m := newTestManager(t, auth)
	seedSession(t, m, "access-1", "refresh-1")
	m.prefs = erp.Preferences{"theme": "dark"}

	if err := m.SetPreference(context.Background(), "lang", "pt"); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	auth.mu.Lock()
	defer auth.mu.Unlock()
	if auth.updated["theme"] != "dark" || auth.updated["lang"] != "pt" {
		t.Errorf("pushed preferences = %v, want the merged set", auth.updated)
	}
}

// seedSession plants a token pair directly, skipping the login exchange.
func seedSession(t *testing.T, m *Manager, access, refresh string) {
	t.Helper()
	m.mu.Lock()
	m.access = access
	m.refresh = refresh
	m.persistLocked()
	m.mu.Unlock()
}
