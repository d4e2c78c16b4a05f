// Package httputil holds the JSON response helpers shared by HTTP handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "gatekeeper/pkg/domain-errors"
)

// maxBodyBytes caps inbound JSON bodies. Proof payloads are a few KB.
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON envelope for non-2xx responses.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Validatable is implemented by request bodies that validate and normalize themselves.
type Validatable interface {
	Validate() error
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and JSON envelope.
// Internal errors never leak their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// DecodeJSON decodes a bounded JSON body into T. Callers validate the result.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	var req T
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return &req, nil
}

// DecodeAndPrepare decodes and validates a request body, writing the error
// response itself when either step fails.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, err := DecodeJSON[T](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err, "request_id", requestID)
		WriteError(w, err)
		return nil, false
	}
	if err := PT(req).Validate(); err != nil {
		logger.WarnContext(ctx, "invalid request", "error", err, "request_id", requestID)
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
