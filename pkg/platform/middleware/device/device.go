// Package device classifies the client platform from its User-Agent so
// pages can tailor instructions to phones versus desktops.
package device

import (
	"context"
	"net/http"

	"github.com/mssola/useragent"
)

// Platform is the coarse client class.
type Platform string

const (
	PlatformMobile  Platform = "mobile"
	PlatformDesktop Platform = "desktop"
	PlatformBot     Platform = "bot"
	PlatformUnknown Platform = "unknown"
)

type contextKeyPlatform struct{}

// Classify parses a User-Agent header.
func Classify(userAgent string) Platform {
	if userAgent == "" {
		return PlatformUnknown
	}
	ua := useragent.New(userAgent)
	switch {
	case ua.Bot():
		return PlatformBot
	case ua.Mobile():
		return PlatformMobile
	default:
		return PlatformDesktop
	}
}

// Middleware stores the request's platform in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithPlatform(r.Context(), Classify(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPlatform retrieves the platform from the context.
func GetPlatform(ctx context.Context) Platform {
	if p, ok := ctx.Value(contextKeyPlatform{}).(Platform); ok {
		return p
	}
	return PlatformUnknown
}

// WithPlatform injects a platform into a context.
// Useful for handler tests that don't run the full middleware chain.
func WithPlatform(ctx context.Context, p Platform) context.Context {
	return context.WithValue(ctx, contextKeyPlatform{}, p)
}
