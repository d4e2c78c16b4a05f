// Package selfapp builds the verification request the provider's mobile app
// consumes, and the universal link that opens it.
package selfapp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	id "gatekeeper/pkg/domain"
	dErrors "gatekeeper/pkg/domain-errors"
)

const (
	// RedirectBase is the provider's universal link host.
	RedirectBase = "https://redirect.self.xyz"

	Version          = 2
	EndpointTypeHTTP = "https"
	UserIDTypeHex    = "hex"
	// DefaultScope marks offchain verification; the scope is not validated onchain.
	DefaultScope = "offchain"
)

// App is the static part of every request.
type App struct {
	Name       string
	LogoURL    string
	Scope      string
	Endpoint   string
	MinimumAge int
	// CallbackBase, when set, is where the mobile app returns the user
	// after proving. The session id is appended as ?session=.
	CallbackBase string
}

// Disclosures lists what the provider must check.
type Disclosures struct {
	MinimumAge int  `json:"minimumAge,omitempty"`
	OFAC       bool `json:"ofac,omitempty"`
}

// Request is the JSON document embedded in the universal link.
type Request struct {
	Version          int         `json:"version"`
	AppName          string      `json:"appName"`
	LogoBase64       string      `json:"logoBase64"`
	Scope            string      `json:"scope"`
	Endpoint         string      `json:"endpoint"`
	EndpointType     string      `json:"endpointType"`
	Header           string      `json:"header"`
	SessionID        string      `json:"sessionId"`
	UserID           string      `json:"userId"`
	UserIDType       string      `json:"userIdType"`
	UserDefinedData  string      `json:"userDefinedData"`
	DevMode          bool        `json:"devMode"`
	DeeplinkCallback string      `json:"deeplinkCallback,omitempty"`
	Disclosures      Disclosures `json:"disclosures"`
}

// Build assembles the request for one session. token is the encoded
// correlation token; the provider echoes it back as userDefinedData.
func Build(app App, sessionID id.SessionID, requesterID id.RequesterID, token string) (Request, error) {
	if strings.TrimSpace(app.Endpoint) == "" {
		return Request{}, dErrors.New(dErrors.CodeInternal, "verification endpoint must be configured")
	}
	userID, err := HexUserID(requesterID)
	if err != nil {
		return Request{}, err
	}
	scope := app.Scope
	if scope == "" {
		scope = DefaultScope
	}

	req := Request{
		Version:         Version,
		AppName:         app.Name,
		LogoBase64:      app.LogoURL,
		Scope:           scope,
		Endpoint:        app.Endpoint,
		EndpointType:    EndpointTypeHTTP,
		SessionID:       sessionID.String(),
		UserID:          userID,
		UserIDType:      UserIDTypeHex,
		UserDefinedData: token,
		Disclosures:     Disclosures{MinimumAge: app.MinimumAge},
	}
	if app.CallbackBase != "" {
		req.DeeplinkCallback = strings.TrimRight(app.CallbackBase, "/") + "/callback?session=" + url.QueryEscape(sessionID.String())
	}
	return req, nil
}

// HexUserID renders a decimal chat-platform snowflake as a 160-bit hex
// identifier: 0x followed by 40 zero-padded lowercase hex digits.
func HexUserID(requesterID id.RequesterID) (string, error) {
	n, err := strconv.ParseUint(requesterID.String(), 10, 64)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "requester ID must be a decimal snowflake")
	}
	return fmt.Sprintf("0x%040x", n), nil
}

// UniversalLink returns the provider link that opens req in the mobile app.
func UniversalLink(req Request) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal verification request: %w", err)
	}
	// Match encodeURIComponent: spaces as %20, not +.
	escaped := strings.ReplaceAll(url.QueryEscape(string(raw)), "+", "%20")
	return RedirectBase + "?selfApp=" + escaped, nil
}
