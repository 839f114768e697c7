package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const claimsKey contextKey = "dashboardClaims"

// DashboardClaims is the token payload issued by the external auth
// service. Role is one of "manager", "sdr", "client"; Subject carries the
// SDR or client id for non-manager roles.
type DashboardClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireRole enforces an HMAC-signed bearer token whose role claim is in
// the allowed set. Token issuance lives outside this service; only
// validation happens here.
func RequireRole(secret string, roles ...string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := &DashboardClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if len(allowed) > 0 && !allowed[claims.Role] {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, *claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the validated dashboard claims if present.
func ClaimsFromContext(ctx context.Context) (DashboardClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(DashboardClaims)
	return claims, ok
}
