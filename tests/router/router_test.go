package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/nirmaanhq/siteops-api/internal/auth"
	"github.com/nirmaanhq/siteops-api/internal/config"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/nirmaanhq/siteops-api/internal/http/handler"
	"github.com/nirmaanhq/siteops-api/internal/http/middleware"
	"github.com/nirmaanhq/siteops-api/internal/http/router"
	"github.com/nirmaanhq/siteops-api/internal/repository"
	"github.com/nirmaanhq/siteops-api/internal/service"
	"github.com/nirmaanhq/siteops-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupRouter builds the full route tree against a test database. Only the
// audit handler is wired; the remaining handlers are nil because the routes
// under test never dispatch into them.
func setupRouter(t *testing.T) (http.Handler, *auth.TokenIssuer) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{
		App: config.AppConfig{
			Name:        "siteops-api",
			Environment: "development",
		},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-for-unit-tests",
			TokenTTL:  3600,
			Issuer:    "siteops-api",
		},
		ApiKey:    config.ApiKeyConfig{Value: "test-api-key"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	logger := zap.NewNop()
	authMiddleware := auth.NewMiddleware(cfg, logger)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, logger)
	auditHandler := handler.NewAuditHandler(
		service.NewAuditTrailService(repository.NewAuditRepository(db), logger),
		logger,
	)

	rt := router.NewRouter(cfg, logger, db, nil, authMiddleware, rateLimiter,
		nil, nil, nil, nil, nil, nil, nil, auditHandler, nil, nil)
	return rt.Setup(), auth.NewTokenIssuer(&cfg.Auth)
}

func issueToken(t *testing.T, issuer *auth.TokenIssuer, role domain.Role) string {
	t.Helper()
	token, err := issuer.Issue(&domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Name:      "Route Tester",
		Email:     "routes@example.com",
		Role:      role,
	})
	require.NoError(t, err)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestReadinessEndpoint(t *testing.T) {
	handler, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string                            `json:"status"`
		Checks map[string]map[string]interface{} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "healthy", body.Status)
	require.Contains(t, body.Checks, "database")
	assert.Equal(t, "healthy", body.Checks["database"]["status"])

	// No ERP connection configured, so no erp check is reported and
	// readiness does not depend on it.
	assert.NotContains(t, body.Checks, "erp")
}

func TestDatabaseHealthEndpoint(t *testing.T) {
	handler, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string                 `json:"status"`
		Service string                 `json:"service"`
		Stats   map[string]interface{} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "database", body.Service)
	assert.Contains(t, body.Stats, "open_connections")
}

func TestAuditRoutesRequireAdmin(t *testing.T) {
	handler, issuer := setupRouter(t)

	cases := []struct {
		role domain.Role
		want int
	}{
		{domain.RoleSupervisor, http.StatusForbidden},
		{domain.RoleManager, http.StatusForbidden},
		{domain.RoleAdmin, http.StatusOK},
		{domain.RoleOwner, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/", nil)
			req.Header.Set("Authorization", "Bearer "+issueToken(t, issuer, tc.role))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
