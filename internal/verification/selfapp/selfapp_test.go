package selfapp

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gatekeeper/pkg/domain"
	dErrors "gatekeeper/pkg/domain-errors"
)

func testApp() App {
	return App{
		Name:         "Self Discord Verification",
		LogoURL:      "https://example.com/self.png",
		Endpoint:     "https://verify.example.com/api/verify",
		MinimumAge:   18,
		CallbackBase: "https://verify.example.com/",
	}
}

func TestHexUserID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0", "0x0000000000000000000000000000000000000000", false},
		{"255", "0x00000000000000000000000000000000000000ff", false},
		{"123456789012345678", "0x00000000000000000000000001b69b4ba630f34e", false},
		{"18446744073709551615", "0x000000000000000000000000ffffffffffffffff", false},
		{"U1", "", true},
		{"-1", "", true},
		{"18446744073709551616", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := HexUserID(id.RequesterID(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 42)
		})
	}
}

func TestBuild(t *testing.T) {
	sid := id.NewSessionID()

	t.Run("fills request fields", func(t *testing.T) {
		req, err := Build(testApp(), sid, "255", "deadbeef")
		require.NoError(t, err)

		assert.Equal(t, 2, req.Version)
		assert.Equal(t, "offchain", req.Scope)
		assert.Equal(t, "https", req.EndpointType)
		assert.Equal(t, "hex", req.UserIDType)
		assert.Equal(t, "0x00000000000000000000000000000000000000ff", req.UserID)
		assert.Equal(t, "deadbeef", req.UserDefinedData)
		assert.Equal(t, sid.String(), req.SessionID)
		assert.Equal(t, 18, req.Disclosures.MinimumAge)
		assert.Equal(t, "https://verify.example.com/callback?session="+sid.String(), req.DeeplinkCallback)
	})

	t.Run("explicit scope wins", func(t *testing.T) {
		app := testApp()
		app.Scope = "gatekeeper"
		req, err := Build(app, sid, "1", "aa")
		require.NoError(t, err)
		assert.Equal(t, "gatekeeper", req.Scope)
	})

	t.Run("no callback when base unset", func(t *testing.T) {
		app := testApp()
		app.CallbackBase = ""
		req, err := Build(app, sid, "1", "aa")
		require.NoError(t, err)
		assert.Empty(t, req.DeeplinkCallback)
	})

	t.Run("endpoint required", func(t *testing.T) {
		app := testApp()
		app.Endpoint = ""
		_, err := Build(app, sid, "1", "aa")
		require.Error(t, err)
	})

	t.Run("non numeric requester rejected", func(t *testing.T) {
		_, err := Build(testApp(), sid, "U1", "aa")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestUniversalLink(t *testing.T) {
	req, err := Build(testApp(), id.NewSessionID(), "42", "cafe")
	require.NoError(t, err)

	link, err := UniversalLink(req)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://redirect.self.xyz?selfApp="))
	assert.NotContains(t, link, "+", "spaces must be percent-encoded")

	u, err := url.Parse(link)
	require.NoError(t, err)
	var decoded Request
	require.NoError(t, json.Unmarshal([]byte(u.Query().Get("selfApp")), &decoded))
	assert.Equal(t, req, decoded)
}
