package middleware

import (
	"net/http"
	"strings"

	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	"github.com/ShodmonX/taskflow-backend/internal/security"
)

const bearerPrefix = "bearer "

var (
	ErrNotAuthenticated = apperr.New(apperr.KindUnauthenticated, "not authenticated")
	ErrInvalidToken     = apperr.New(apperr.KindUnauthenticated, "invalid token")
)

// Authenticate verifies the Bearer access token and puts the caller's user id
// in the request context. Requests without a valid token get 401; expired and
// forged tokens are reported the same way.
func Authenticate(codec *security.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				httpx.WriteError(w, ErrNotAuthenticated)
				return
			}
			claims, err := codec.Verify(token)
			if err != nil || claims.UserID() == "" {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				httpx.WriteError(w, ErrInvalidToken)
				return
			}
			ctx := WithIdentity(r.Context(), claims.UserID(), claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
