package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"gatekeeper/internal/verification/correlation"
	"gatekeeper/internal/verification/models"
	"gatekeeper/internal/verification/selfapp"
	id "gatekeeper/pkg/domain"
	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/platform/audit"
)

// StartRequest asks for a new verification link for one requester.
type StartRequest struct {
	RequesterID string
	OriginID    string
	// DeliveryMode overrides the configured mode when set.
	DeliveryMode models.DeliveryMode
}

// StartResult is everything the chat layer needs to deliver the link.
type StartResult struct {
	Session       models.Session
	Token         string
	UniversalLink string
	// ShortLink is empty when no shortener is configured or shortening failed.
	ShortLink string
	// QR is the PNG for delivery mode qr; QRFileName is its attachment name.
	QR         []byte
	QRFileName string
}

// DisplayLink prefers the short link when one exists.
func (r *StartResult) DisplayLink() string {
	if r.ShortLink != "" {
		return r.ShortLink
	}
	return r.UniversalLink
}

// QRFileName returns the attachment name for a session's QR image.
func QRFileName(sessionID id.SessionID) string {
	return "self-qr-" + sessionID.String() + ".png"
}

// Start registers a session and builds the provider link for it.
func (s *Service) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Start")
	defer span.End()

	requesterID, err := id.ParseRequesterID(req.RequesterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid requester")
	}
	rawOrigin := req.OriginID
	if strings.TrimSpace(rawOrigin) == "" {
		rawOrigin = s.cfg.DefaultOriginID.String()
	}
	originID, err := id.ParseOriginID(rawOrigin)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid origin")
	}
	mode := req.DeliveryMode
	if mode == "" {
		mode = s.cfg.DeliveryMode
	}
	span.SetAttributes(
		attribute.String("requester.id", requesterID.String()),
		attribute.String("origin.id", originID.String()),
		attribute.String("delivery.mode", string(mode)),
	)

	session, err := s.sessions.Create(ctx, requesterID, originID)
	if err != nil {
		span.SetStatus(codes.Error, "create session")
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not create verification session")
	}

	result, err := s.buildLink(ctx, *session, mode)
	if err != nil {
		// Nothing was delivered, so the session can never complete.
		if _, consumeErr := s.sessions.Consume(ctx, session.ID); consumeErr != nil {
			s.logger.WarnContext(ctx, "failed to discard session", "session_id", session.ID.String(), "error", consumeErr)
		}
		span.SetStatus(codes.Error, "build link")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementStarted(string(mode))
	}
	s.observePending()
	s.record(ctx, audit.EventSessionStarted, "verification session started",
		"session_id", session.ID.String(),
		"requester_id", requesterID.String(),
		"origin_id", originID.String(),
		"delivery_mode", string(mode),
		"short_link", result.ShortLink != "",
	)
	return result, nil
}

func (s *Service) buildLink(ctx context.Context, session models.Session, mode models.DeliveryMode) (*StartResult, error) {
	token, err := correlation.Encode(models.NewCorrelationPayload(session))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode correlation token")
	}
	app := s.cfg.App
	if app.MinimumAge == 0 {
		app.MinimumAge = s.cfg.Policy.MinimumAge
	}
	request, err := selfapp.Build(app, session.ID, session.RequesterID, token)
	if err != nil {
		return nil, err
	}
	link, err := selfapp.UniversalLink(request)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build universal link")
	}

	result := &StartResult{
		Session:       session,
		Token:         token,
		UniversalLink: link,
	}

	if mode == models.DeliveryQR && s.renderer != nil {
		png, err := s.renderer.Render(link)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "render QR code")
		}
		result.QR = png
		result.QRFileName = QRFileName(session.ID)
		if err := s.sessions.Attach(ctx, session.ID, result.QRFileName); err != nil {
			return nil, fmt.Errorf("attach QR reference: %w", err)
		}
		result.Session.AuxiliaryRef = result.QRFileName
	}

	if s.shortener != nil {
		short, err := s.shortener.Shorten(ctx, link)
		if err != nil {
			s.logger.WarnContext(ctx, "link shortening failed, using full link",
				"session_id", session.ID.String(),
				"error", err,
			)
		} else {
			result.ShortLink = short
		}
	}
	return result, nil
}
