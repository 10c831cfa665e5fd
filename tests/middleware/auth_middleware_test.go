package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/config"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthMiddleware() (*auth.Middleware, *auth.TokenIssuer) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-for-unit-tests",
			TokenTTL:  3600,
			Issuer:    "siteops-api",
		},
		ApiKey: config.ApiKeyConfig{Value: "test-api-key"},
	}
	return auth.NewMiddleware(cfg, zap.NewNop()), auth.NewTokenIssuer(&cfg.Auth)
}

func echoUserHandler(t *testing.T, captured **auth.UserContext) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userCtx, ok := auth.FromContext(r.Context()); ok {
			*captured = userCtx
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_BearerToken(t *testing.T) {
	m, issuer := newAuthMiddleware()
	user := &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Name:      "Asha Rao",
		Email:     "asha@example.com",
		Role:      domain.RoleSupervisor,
	}
	token, err := issuer.Issue(user)
	require.NoError(t, err)

	var captured *auth.UserContext
	handler := m.Authenticate(echoUserHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, user.ID, captured.UserID)
	assert.Equal(t, domain.RoleSupervisor, captured.Role)
}

func TestAuthenticate_APIKey(t *testing.T) {
	m, _ := newAuthMiddleware()

	var captured *auth.UserContext
	handler := m.Authenticate(echoUserHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("x-api-key", "test-api-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "System", captured.Name)
	assert.Equal(t, domain.RoleAdmin, captured.Role)
}

func TestAuthenticate_Rejections(t *testing.T) {
	m, _ := newAuthMiddleware()
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no credentials", func(r *http.Request) {}},
		{"wrong api key", func(r *http.Request) { r.Header.Set("x-api-key", "wrong") }},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer not.a.token") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	m, _ := newAuthMiddleware()
	handler := m.RequireRole(domain.RoleManager, domain.RoleAdmin, domain.RoleOwner)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	serve := func(role *domain.Role) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", nil)
		if role != nil {
			ctx := auth.WithUserContext(req.Context(), &auth.UserContext{
				UserID: uuid.New(), Name: "Test", Role: *role,
			})
			req = req.WithContext(ctx)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	manager := domain.RoleManager
	worker := domain.RoleWorker
	assert.Equal(t, http.StatusOK, serve(&manager))
	assert.Equal(t, http.StatusForbidden, serve(&worker))
	assert.Equal(t, http.StatusForbidden, serve(nil))
}

func TestRequireAdmin(t *testing.T) {
	m, _ := newAuthMiddleware()
	handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(role domain.Role) int {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/x/role", nil)
		ctx := auth.WithUserContext(req.Context(), &auth.UserContext{
			UserID: uuid.New(), Name: "Test", Role: role,
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, serve(domain.RoleOwner))
	assert.Equal(t, http.StatusForbidden, serve(domain.RoleManager))
}

func TestOptionalAuthenticate_PassesThroughAnonymous(t *testing.T) {
	m, _ := newAuthMiddleware()

	var captured *auth.UserContext
	handler := m.OptionalAuthenticate(echoUserHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured)
}
