package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/platform/httputil"
	"gatekeeper/pkg/platform/sentinel"
	"gatekeeper/pkg/requestcontext"
)

// notFoundText is served as plain text so it reads well in a phone browser.
const notFoundText = "Link not found or expired"

// Resolver looks up short codes.
type Resolver interface {
	Resolve(ctx context.Context, code string) (string, error)
}

// Handler redirects short links to their targets.
type Handler struct {
	resolver Resolver
	logger   *slog.Logger
}

// New creates a short-link Handler.
func New(resolver Resolver, logger *slog.Logger) *Handler {
	return &Handler{resolver: resolver, logger: logger}
}

// Register registers the short-link routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v/{code}", h.handleRedirect)
}

func (h *Handler) handleRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	target, err := h.resolver.Resolve(ctx, code)
	if errors.Is(err, sentinel.ErrNotFound) {
		http.Error(w, notFoundText, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "short link lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "short link lookup unavailable"))
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
