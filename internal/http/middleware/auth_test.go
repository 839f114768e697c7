package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role, subject, secret string) string {
	t.Helper()
	claims := DashboardClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protected(t *testing.T, roles ...string) http.Handler {
	t.Helper()
	return RequireRole(testSecret, roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Role", claims.Role)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireRoleAllows(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/manager/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "manager", "mgr-1", testSecret))
	rec := httptest.NewRecorder()

	protected(t, "manager").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "manager", rec.Header().Get("X-Role"))
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/manager/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "client", "cl-1", testSecret))
	rec := httptest.NewRecorder()

	protected(t, "manager", "sdr").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	protected(t, "manager").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleRejectsBadSignature(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "manager", "mgr-1", "other-secret"))
	rec := httptest.NewRecorder()

	protected(t, "manager").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleRejectsExpiredToken(t *testing.T) {
	claims := DashboardClaims{
		Role: "manager",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protected(t, "manager").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleDisabledWithoutSecret(t *testing.T) {
	handler := RequireRole("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
