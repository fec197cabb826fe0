package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shainakels/harmonilink-backend/internal/httputil"
)

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth validates the bearer token. A missing token is 401; a
// present-but-invalid or expired token is 403.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondErrorWithCode(w, "Authorization header format must be Bearer {token}", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokenService.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondErrorWithCode(w, "Invalid token.", httputil.CodeTokenExpired, http.StatusForbidden)
				return
			}
			httputil.RespondErrorWithCode(w, "Invalid token.", httputil.CodeInvalidToken, http.StatusForbidden)
			return
		}

		ctx := httputil.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
