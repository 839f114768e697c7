package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outboundhq/salesops-platform/internal/http/handlers"
	httpmiddleware "github.com/outboundhq/salesops-platform/internal/http/middleware"
)

const routerTestSecret = "router-test-secret"

func token(t *testing.T, role string) string {
	t.Helper()
	claims := httpmiddleware.DashboardClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(routerTestSecret))
	require.NoError(t, err)
	return signed
}

func newTestRouter() http.Handler {
	reg := prometheus.NewRegistry()
	return New(&Config{
		Dashboards:     &handlers.DashboardHandler{},
		Meetings:       &handlers.MeetingsHandler{},
		AuthSecret:     routerTestSecret,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func TestHealthIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	paths := []string{
		"/api/manager/dashboard",
		"/api/sdrs/sdr-1/dashboard",
		"/api/clients/cl-1/dashboard",
	}
	r := newTestRouter()
	for _, path := range paths {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestManagerRouteRejectsSDRRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/manager/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "sdr"))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClientRouteRejectsSDRRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/clients/cl-1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "sdr"))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
