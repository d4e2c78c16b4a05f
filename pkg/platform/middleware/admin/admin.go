// Package admin guards operator-only routes with a shared token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"gatekeeper/pkg/platform/httputil"
	"gatekeeper/pkg/requestcontext"
)

// Header carries the operator token.
const Header = "X-Admin-Token"

// RequireAdminToken rejects requests without the expected token. An empty
// expected token rejects everything.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(Header)
			// Use constant-time comparison to prevent timing attacks
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "admin token required",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
