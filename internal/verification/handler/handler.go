package handler

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatekeeper/internal/verification/models"
	"gatekeeper/internal/verification/policy"
	"gatekeeper/internal/verification/provider"
	"gatekeeper/internal/verification/service"
	id "gatekeeper/pkg/domain"
	"gatekeeper/pkg/platform/audit"
	"gatekeeper/pkg/platform/httputil"
	"gatekeeper/pkg/platform/middleware/device"
	"gatekeeper/pkg/requestcontext"
)

// VerifyPath is where the provider posts proofs.
const VerifyPath = "/api/verify"

const (
	statusOK      = "ok"
	statusSuccess = "success"
	statusError   = "error"

	reasonMissingFields = "Proof, publicSignals, attestationId and userContextData are required"
	statusMessage       = "Gatekeeper verification backend + Discord verifier bot (offchain)"
)

//go:embed templates/*.html
var templateFS embed.FS

var callbackPage = template.Must(template.ParseFS(templateFS, "templates/callback.html"))

// Service is the verification flow as seen from HTTP.
type Service interface {
	Complete(ctx context.Context, token string, raw models.RawResult) service.Completion
	IsPending(ctx context.Context, sessionID id.SessionID) bool
}

// AuditRecorder writes boundary events.
type AuditRecorder interface {
	Record(ctx context.Context, eventType audit.EventType, message string, kv ...any)
}

// Metrics records verifier round trips.
type Metrics interface {
	ObserveVerifierLatency(result string, d time.Duration)
}

// Handler serves the provider-facing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  Service
	verifier provider.Verifier
	auditor  AuditRecorder
	metrics  Metrics
	endpoint string
}

// New creates a verification Handler. endpoint is the public verify URL
// reported on the status page.
func New(svc Service, verifier provider.Verifier, auditor AuditRecorder, metrics Metrics, logger *slog.Logger, endpoint string) *Handler {
	return &Handler{
		logger:   logger,
		service:  svc,
		verifier: verifier,
		auditor:  auditor,
		metrics:  metrics,
		endpoint: endpoint,
	}
}

// Register registers the verification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleStatus)
	r.Post(VerifyPath, h.handleVerify)
	r.With(device.Middleware).Get("/callback", h.handleCallback)
}

type statusResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	VerifyEndpoint string `json:"verifyEndpoint"`
	Endpoint       string `json:"endpoint"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		Status:         statusOK,
		Message:        statusMessage,
		VerifyEndpoint: VerifyPath,
		Endpoint:       h.endpoint,
	})
}

// verifyRequest is the proof submission from the provider's relayer.
type verifyRequest struct {
	AttestationID   int             `json:"attestationId"`
	Proof           json.RawMessage `json:"proof"`
	PublicSignals   json.RawMessage `json:"publicSignals"`
	UserContextData string          `json:"userContextData"`
}

func (r *verifyRequest) complete() bool {
	return r.AttestationID != 0 &&
		present(r.Proof) &&
		present(r.PublicSignals) &&
		r.UserContextData != ""
}

// present rejects absent, null, and falsy scalar values. Empty objects and
// arrays count as present; the verifier decides whether they are valid.
func present(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", `""`, "false", "0":
		return false
	}
	return true
}

type verifyResponse struct {
	Status            string                  `json:"status"`
	Result            bool                    `json:"result"`
	Reason            string                  `json:"reason,omitempty"`
	Details           *models.ValidityDetails `json:"details,omitempty"`
	CredentialSubject map[string]any          `json:"credentialSubject,omitempty"`
	UserData          *models.UserData        `json:"userData,omitempty"`
}

// handleVerify always answers 200; the provider reads status and result
// from the body.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := httputil.DecodeJSON[verifyRequest](r)
	if err != nil || !req.complete() {
		h.logger.WarnContext(ctx, "incomplete verification request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusOK, verifyResponse{Status: statusError, Reason: reasonMissingFields})
		return
	}

	start := time.Now()
	raw, err := h.verifier.Verify(ctx, provider.VerifyRequest{
		AttestationID:   req.AttestationID,
		Proof:           req.Proof,
		PublicSignals:   req.PublicSignals,
		UserContextData: req.UserContextData,
	})
	if err != nil {
		h.observeVerifier(string(provider.GetCategory(err)), start)
		h.logger.ErrorContext(ctx, "proof verification failed",
			"request_id", requestID,
			"attestation_id", req.AttestationID,
			"category", string(provider.GetCategory(err)),
			"retryable", provider.IsRetryable(err),
			"error", err,
		)
		h.record(ctx, audit.EventVerifierFailed, "exception while verifying proof",
			"attestation_id", req.AttestationID,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusOK, verifyResponse{Status: statusError, Reason: err.Error()})
		return
	}
	h.observeVerifier("ok", start)

	completion := h.service.Complete(ctx, raw.UserData.UserDefinedData, raw)

	h.logger.InfoContext(ctx, "verification result handled",
		"request_id", requestID,
		"attestation_id", raw.AttestationID,
		"accepted", completion.Outcome.Accepted,
		"reason", completion.Outcome.Reason.String(),
		"completion", string(completion.Status),
	)

	if !completion.Outcome.Accepted {
		details := raw.IsValidDetails
		httputil.WriteJSON(w, http.StatusOK, verifyResponse{
			Status:  statusError,
			Reason:  policy.Reason(completion.Outcome.Reason),
			Details: &details,
		})
		return
	}

	userData := raw.UserData
	httputil.WriteJSON(w, http.StatusOK, verifyResponse{
		Status:            statusSuccess,
		Result:            true,
		CredentialSubject: raw.DiscloseOutput,
		UserData:          &userData,
	})
}

type callbackView struct {
	Session  string
	Known    bool
	Pending  bool
	Platform string
}

// handleCallback is where the mobile app returns the user after proving.
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := r.URL.Query().Get("session")
	platform := device.GetPlatform(ctx)

	view := callbackView{Session: raw, Platform: string(platform)}
	if sid, err := id.ParseSessionID(raw); err == nil {
		view.Known = true
		view.Pending = h.service.IsPending(ctx, sid)
	}

	h.record(ctx, audit.EventMobileReturn, "mobile user returned from verification app",
		"session_id", raw,
		"platform", string(platform),
		"pending", view.Pending,
		"user_agent", requestcontext.UserAgent(ctx),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := callbackPage.Execute(w, view); err != nil {
		h.logger.ErrorContext(ctx, "render callback page", "error", err, "request_id", requestcontext.RequestID(ctx))
	}
}

func (h *Handler) observeVerifier(result string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveVerifierLatency(result, time.Since(start))
	}
}

func (h *Handler) record(ctx context.Context, eventType audit.EventType, message string, kv ...any) {
	if h.auditor != nil {
		h.auditor.Record(ctx, eventType, message, kv...)
	}
}
