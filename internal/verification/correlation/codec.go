// Package correlation encodes the token that links a provider callback back
// to the session that requested it.
//
// The token is the JSON payload, hex-encoded so it survives the provider's
// constrained metadata field. Decoding never fails loudly: anything that is
// not a well-formed token for this flow decodes to (zero, false).
package correlation

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"gatekeeper/internal/verification/models"
)

// Encode serializes p and hex-encodes it (lowercase, no prefix).
// The kind tag is always set to this flow's tag.
func Encode(p models.CorrelationPayload) (string, error) {
	p.Kind = models.CorrelationKind
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal correlation payload: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// Decode reverses Encode. A leading 0x is tolerated.
func Decode(token string) (models.CorrelationPayload, bool) {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(strings.TrimPrefix(token, "0x"), "0X")
	if token == "" {
		return models.CorrelationPayload{}, false
	}

	raw, err := hex.DecodeString(token)
	if err != nil {
		return models.CorrelationPayload{}, false
	}
	// The provider may right-pad the field with zero bytes.
	raw = bytes.TrimRight(raw, "\x00")
	if !utf8.Valid(raw) {
		return models.CorrelationPayload{}, false
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.CorrelationPayload{}, false
	}

	var p models.CorrelationPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return models.CorrelationPayload{}, false
	}
	if p.Kind != models.CorrelationKind || p.SessionID == "" {
		return models.CorrelationPayload{}, false
	}
	return p, true
}
