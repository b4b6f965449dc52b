package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/oauth"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/session"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/user"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/metrics"
)

type MockSessions struct {
	session.Servicer
	mock.Mock
}

func (m *MockSessions) Validate(ctx context.Context, token string) (session.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(session.Session), args.Error(1)
}

type MockUsers struct {
	user.Servicer
	mock.Mock
}

func (m *MockUsers) TouchLastSeen(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUsers) Get(ctx context.Context, id int) (user.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Error(1)
}

type MockVaults struct {
	vault.Servicer
	mock.Mock
}

func (m *MockVaults) List(ctx context.Context, ownerID int) ([]vault.Vault, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]vault.Vault), args.Error(1)
}

func newTestRouter(t *testing.T, withOAuth bool) (http.Handler, *MockSessions, *MockUsers, *MockVaults) {
	t.Helper()

	sessions := new(MockSessions)
	users := new(MockUsers)
	vaults := new(MockVaults)

	deps := Deps{
		Users:    users,
		Sessions: sessions,
		Vaults:   vaults,
		Metrics:  metrics.New(),
	}
	if withOAuth {
		deps.OAuth = &oauth.Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/auth/google/callback"}
	}

	return New(deps, slog.Default()), sessions, users, vaults
}

func do(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_Health(t *testing.T) {
	h, _, _, _ := newTestRouter(t, false)

	rec := do(h, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"OK"`)
}

func TestNew_Metrics(t *testing.T) {
	h, _, _, _ := newTestRouter(t, false)

	rec := do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNew_OpenAPI(t *testing.T) {
	h, _, _, _ := newTestRouter(t, false)

	rec := do(h, http.MethodGet, "/openapi.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, Title)
	for _, path := range []string{"/api/v1/vaults", "/api/v1/account", "/api/v1/deliveries", "/api/v1/internal/sweep"} {
		assert.Contains(t, body, path)
	}
	for _, schema := range []string{"HealthResponse", "VaultResponse", "RecipientVaultResponse", "ContentResponse"} {
		assert.Contains(t, body, `"`+schema+`"`)
	}
}

func TestNew_RegistersAllOperations(t *testing.T) {
	assert.NotPanics(t, func() {
		New(Deps{
			Users:    new(MockUsers),
			Sessions: new(MockSessions),
			Vaults:   new(MockVaults),
			Metrics:  metrics.New(),
			OAuth:    &oauth.Config{ClientID: "id", ClientSecret: "secret"},
		}, slog.Default())
	})
}

func TestNew_VaultsRequireToken(t *testing.T) {
	h, _, _, _ := newTestRouter(t, false)

	rec := do(h, http.MethodGet, "/api/v1/vaults", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNew_VaultsRequireSecondFactor(t *testing.T) {
	h, sessions, users, _ := newTestRouter(t, false)

	sessions.On("Validate", mock.Anything, "tok").Return(session.Session{UserID: 1, Email: "a@example.com"}, nil)
	users.On("TouchLastSeen", mock.Anything, 1).Return(nil)
	users.On("Get", mock.Anything, 1).Return(user.User{ID: 1, PasswordHash: "hash"}, nil)

	rec := do(h, http.MethodGet, "/api/v1/vaults", "tok")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), user.ErrSecondFactorRequired.Code)
}

func TestNew_VaultsWithVerifiedSession(t *testing.T) {
	h, sessions, users, vaults := newTestRouter(t, false)

	sessions.On("Validate", mock.Anything, "tok").Return(session.Session{UserID: 1, SecondFactor: true}, nil)
	users.On("TouchLastSeen", mock.Anything, 1).Return(nil)
	vaults.On("List", mock.Anything, 1).Return([]vault.Vault{{ID: "v1", Name: "Letters", Scheme: vault.SchemeHashGated}}, nil)

	rec := do(h, http.MethodGet, "/api/v1/vaults", "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Letters")
	vaults.AssertExpectations(t)
}

func TestNew_ExpiredToken(t *testing.T) {
	h, sessions, _, _ := newTestRouter(t, false)
	sessions.On("Validate", mock.Anything, "old").Return(session.Session{}, errs.ErrUnauthorized)

	rec := do(h, http.MethodGet, "/api/v1/account", "old")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNew_OAuthRoutes(t *testing.T) {
	h, _, _, _ := newTestRouter(t, false)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/auth/google/login", "").Code)

	h, _, _, _ = newTestRouter(t, true)
	rec := do(h, http.MethodGet, "/auth/google/login", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://accounts.google.com/"))
}
