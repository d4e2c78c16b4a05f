package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gatekeeper/internal/verification/correlation"
	"gatekeeper/internal/verification/models"
	"gatekeeper/internal/verification/policy"
	id "gatekeeper/pkg/domain"
	"gatekeeper/pkg/platform/audit"
	"gatekeeper/pkg/platform/sentinel"
)

// Status is how a completion attempt ended.
type Status string

const (
	// StatusDropped means the token did not decode to one of our sessions.
	StatusDropped Status = "dropped"
	// StatusRejected means the proof failed evaluation. The session stays pending.
	StatusRejected Status = "rejected"
	// StatusUnknownSession means the session was already consumed, swept, or never existed.
	StatusUnknownSession Status = "unknown_session"
	// StatusCompleted means the session was consumed and side effects were dispatched.
	StatusCompleted Status = "completed"
)

// Fault steps reported when a collaborator fails.
const (
	stepFetchMember = "fetch_member"
	stepAddRole     = "add_role"
	stepNotify      = "notify"
)

// Completion is the result of Complete. Session is set only for StatusCompleted.
type Completion struct {
	Status  Status
	Outcome models.Outcome
	Session *models.Session
}

// Complete handles one verification result from the provider. It never
// returns an error: the provider gets its answer from the outcome regardless
// of what happens here.
//
// Order matters: a rejection leaves the session pending so the requester can
// retry, and only the caller that wins Consume dispatches side effects.
func (s *Service) Complete(ctx context.Context, token string, raw models.RawResult) Completion {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "verification.Complete")
	defer span.End()

	completion := s.complete(ctx, token, raw)

	span.SetAttributes(
		attribute.String("completion.status", string(completion.Status)),
		attribute.String("outcome.reason", completion.Outcome.Reason.String()),
	)
	if s.metrics != nil {
		s.metrics.IncrementCompletion(string(completion.Status))
		s.metrics.ObserveCompleteLatency(time.Since(start))
	}
	return completion
}

func (s *Service) complete(ctx context.Context, token string, raw models.RawResult) Completion {
	outcome := s.Evaluate(raw)

	payload, ok := correlation.Decode(token)
	if !ok {
		s.record(ctx, audit.EventTokenDropped, "correlation token could not be decoded",
			"token_length", len(token),
		)
		return Completion{Status: StatusDropped, Outcome: outcome}
	}
	sessionID, err := id.ParseSessionID(payload.SessionID)
	if err != nil {
		s.record(ctx, audit.EventTokenDropped, "correlation token carries an invalid session id",
			"error", err,
		)
		return Completion{Status: StatusDropped, Outcome: outcome}
	}

	if !outcome.Accepted {
		if s.metrics != nil {
			s.metrics.IncrementRejection(outcome.Reason.String())
		}
		s.record(ctx, audit.EventProofRejected, "verification rejected",
			"session_id", sessionID.String(),
			"requester_id", payload.RequesterID,
			"reason", outcome.Reason.String(),
			"reason_text", policy.Reason(outcome.Reason),
		)
		return Completion{Status: StatusRejected, Outcome: outcome}
	}

	session, err := s.sessions.Consume(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "session consume failed", "session_id", sessionID.String(), "error", err)
		}
		s.record(ctx, audit.EventUnknownSession, "verification for unknown or already handled session",
			"session_id", sessionID.String(),
			"requester_id", payload.RequesterID,
		)
		return Completion{Status: StatusUnknownSession, Outcome: outcome}
	}
	s.observePending()

	s.record(ctx, audit.EventCompleted, "verification completed",
		"session_id", session.ID.String(),
		"requester_id", session.RequesterID.String(),
		"origin_id", session.OriginID.String(),
		"attestation_id", raw.AttestationID,
	)

	// Side effects outlive the inbound request; the provider must not wait on
	// or cancel them.
	s.dispatch(context.WithoutCancel(ctx), *session)

	return Completion{Status: StatusCompleted, Outcome: outcome, Session: session}
}

// dispatch runs grant and notify independently. A failure in one never
// skips the other.
func (s *Service) dispatch(ctx context.Context, session models.Session) {
	originID := session.OriginID
	if originID == "" {
		originID = s.cfg.DefaultOriginID
	}
	s.guard(ctx, session, stepAddRole, func() error {
		return s.grantAccess(ctx, session, originID)
	})
	s.guard(ctx, session, stepNotify, func() error {
		return s.notify(ctx, session)
	})
}

func (s *Service) grantAccess(ctx context.Context, session models.Session, originID id.OriginID) error {
	roleID := s.cfg.VerifiedRoleID
	if roleID == "" {
		s.record(ctx, audit.EventNoRoleConfigured, "no verified role configured, skipping role grant",
			"session_id", session.ID.String(),
		)
		return nil
	}
	if s.granter == nil {
		return errors.New("no access granter configured")
	}
	if originID == "" {
		return errors.New("no origin to grant access in")
	}
	member, err := s.granter.FetchMember(ctx, originID, session.RequesterID)
	if err != nil {
		return &stepError{step: stepFetchMember, err: err}
	}
	if err := s.granter.AddRole(ctx, member, roleID); err != nil {
		return err
	}
	s.record(ctx, audit.EventRoleGranted, "verified role granted",
		"session_id", session.ID.String(),
		"requester_id", session.RequesterID.String(),
		"origin_id", originID.String(),
		"role_id", roleID,
	)
	return nil
}

func (s *Service) notify(ctx context.Context, session models.Session) error {
	if s.granter == nil {
		return errors.New("no access granter configured")
	}
	if err := s.granter.SendDirectMessage(ctx, session.RequesterID, s.cfg.SuccessMessage); err != nil {
		return err
	}
	s.record(ctx, audit.EventNotified, "requester notified",
		"session_id", session.ID.String(),
		"requester_id", session.RequesterID.String(),
	)
	return nil
}

type stepError struct {
	step string
	err  error
}

func (e *stepError) Error() string { return e.step + ": " + e.err.Error() }
func (e *stepError) Unwrap() error { return e.err }

// guard runs fn, converting both errors and panics into a logged
// collaborator fault.
func (s *Service) guard(ctx context.Context, session models.Session, step string, fn func() error) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = fn()
	}()
	if err == nil {
		return
	}

	var se *stepError
	if errors.As(err, &se) {
		step = se.step
	}
	eventType := audit.EventNotifyFailed
	if step != stepNotify {
		eventType = audit.EventRoleGrantFailed
	}
	if s.metrics != nil {
		s.metrics.IncrementCollaboratorFault(step)
	}
	s.record(ctx, eventType, "collaborator call failed",
		"session_id", session.ID.String(),
		"requester_id", session.RequesterID.String(),
		"step", step,
		"error", err,
	)
}
