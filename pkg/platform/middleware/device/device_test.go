package device

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	iPhoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	botUA     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, PlatformMobile, Classify(iPhoneUA))
	assert.Equal(t, PlatformMobile, Classify(androidUA))
	assert.Equal(t, PlatformDesktop, Classify(desktopUA))
	assert.Equal(t, PlatformBot, Classify(botUA))
	assert.Equal(t, PlatformUnknown, Classify(""))
}

func TestMiddleware(t *testing.T) {
	var got Platform
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = GetPlatform(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/callback", nil)
	r.Header.Set("User-Agent", iPhoneUA)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, PlatformMobile, got)
}

func TestGetPlatform_Default(t *testing.T) {
	assert.Equal(t, PlatformUnknown, GetPlatform(context.Background()))
	assert.Equal(t, PlatformDesktop, GetPlatform(WithPlatform(context.Background(), PlatformDesktop)))
}
