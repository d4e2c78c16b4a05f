// Package requestid tags every request with an id that flows into logs and
// audit events.
package requestid

import (
	"net/http"
	"unicode"

	"github.com/google/uuid"

	"gatekeeper/pkg/requestcontext"
)

// Header carries the request id in both directions.
const Header = "X-Request-ID"

const maxInboundLen = 128

// Middleware reuses a well-formed inbound id or mints a new one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(Header)
		if !acceptable(rid) {
			rid = uuid.NewString()
		}
		w.Header().Set(Header, rid)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), rid)))
	})
}

func acceptable(rid string) bool {
	if rid == "" || len(rid) > maxInboundLen {
		return false
	}
	for _, c := range rid {
		if c > unicode.MaxASCII || !unicode.IsPrint(c) || c == ' ' {
			return false
		}
	}
	return true
}
