package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks SessionStore,AccessGranter,LinkShortener,QRRenderer,AuditRecorder,Metrics

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gatekeeper/internal/verification/correlation"
	"gatekeeper/internal/verification/models"
	"gatekeeper/internal/verification/policy"
	"gatekeeper/internal/verification/selfapp"
	"gatekeeper/internal/verification/service/mocks"
	"gatekeeper/internal/verification/store/session"
	id "gatekeeper/pkg/domain"
	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/platform/audit"
)

// =============================================================================
// Verification Service Test Suite
// =============================================================================
// Justification for unit tests: Complete is the only path that grants access.
// Tests pin down exactly-once dispatch, rejection leaving the session pending,
// and collaborator failures never leaking out or skipping each other.

const (
	testRequester = "123456789012345678"
	testOrigin    = "987654321098765432"
	testRole      = "555555555555555555"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.EventType
}

func (r *recordingAuditor) Record(_ context.Context, eventType audit.EventType, _ string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *recordingAuditor) types() []audit.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.EventType(nil), r.events...)
}

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *session.InMemorySessionStore
	granter   *mocks.MockAccessGranter
	shortener *mocks.MockLinkShortener
	renderer  *mocks.MockQRRenderer
	auditor   *recordingAuditor
	cfg       Config
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = session.New()
	s.granter = mocks.NewMockAccessGranter(s.ctrl)
	s.shortener = mocks.NewMockLinkShortener(s.ctrl)
	s.renderer = mocks.NewMockQRRenderer(s.ctrl)
	s.auditor = &recordingAuditor{}
	s.cfg = Config{
		Policy: policy.Default(),
		App: selfapp.App{
			Name:     "Gatekeeper",
			Endpoint: "https://verifier.example.test/api/verify",
		},
		DeliveryMode:    models.DeliveryLink,
		VerifiedRoleID:  testRole,
		DefaultOriginID: id.OriginID(testOrigin),
	}
	s.service = s.newService(s.cfg)
}

// SetupSubTest gives each s.Run case an unmodified service; mocks and the
// store are shared across cases within one test.
func (s *ServiceSuite) SetupSubTest() {
	s.service = s.newService(s.cfg)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) newService(cfg Config, opts ...Option) *Service {
	base := []Option{
		WithAccessGranter(s.granter),
		WithAuditor(s.auditor),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	svc, err := New(cfg, s.store, append(base, opts...)...)
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) start() *StartResult {
	res, err := s.service.Start(context.Background(), StartRequest{
		RequesterID: testRequester,
		OriginID:    testOrigin,
	})
	s.Require().NoError(err)
	return res
}

func accepted() models.RawResult {
	return models.RawResult{
		AttestationID: 1,
		IsValidDetails: models.ValidityDetails{
			IsValid:           true,
			IsMinimumAgeValid: true,
		},
	}
}

func (s *ServiceSuite) expectGrantAndNotify() {
	member := &models.Member{OriginID: testOrigin, RequesterID: testRequester}
	s.granter.EXPECT().FetchMember(gomock.Any(), id.OriginID(testOrigin), id.RequesterID(testRequester)).Return(member, nil).Times(1)
	s.granter.EXPECT().AddRole(gomock.Any(), member, testRole).Return(nil).Times(1)
	s.granter.EXPECT().SendDirectMessage(gomock.Any(), id.RequesterID(testRequester), DefaultSuccessMessage).Return(nil).Times(1)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil session store returns error", func() {
		_, err := New(s.cfg, nil)
		s.Require().Error(err)
		s.Contains(err.Error(), "session store is required")
	})

	s.Run("defaults success message and delivery mode", func() {
		svc, err := New(Config{}, s.store)
		s.Require().NoError(err)
		s.Equal(DefaultSuccessMessage, svc.cfg.SuccessMessage)
		s.Equal(models.DeliveryQR, svc.cfg.DeliveryMode)
	})
}

// =============================================================================
// Start Tests
// =============================================================================

func (s *ServiceSuite) TestStart() {
	s.Run("creates pending session and universal link", func() {
		res := s.start()

		s.True(strings.HasPrefix(res.UniversalLink, selfapp.RedirectBase+"?selfApp="))
		s.Equal(res.UniversalLink, res.DisplayLink())
		s.True(s.service.IsPending(context.Background(), res.Session.ID))

		payload, ok := correlation.Decode(res.Token)
		s.Require().True(ok)
		s.Equal(res.Session.ID.String(), payload.SessionID)
		s.Equal(testRequester, payload.RequesterID)
		s.Equal(testOrigin, payload.OriginID)
		s.Contains(s.auditor.types(), audit.EventSessionStarted)
	})

	s.Run("qr delivery renders and attaches artifact", func() {
		s.service = s.newService(s.cfg, WithQRRenderer(s.renderer))
		s.renderer.EXPECT().Render(gomock.Any()).Return([]byte("png"), nil)

		res, err := s.service.Start(context.Background(), StartRequest{
			RequesterID:  testRequester,
			OriginID:     testOrigin,
			DeliveryMode: models.DeliveryQR,
		})
		s.Require().NoError(err)
		s.Equal([]byte("png"), res.QR)
		s.Equal(QRFileName(res.Session.ID), res.QRFileName)

		stored, err := s.store.Lookup(context.Background(), res.Session.ID)
		s.Require().NoError(err)
		s.Equal(res.QRFileName, stored.AuxiliaryRef)
	})

	s.Run("link delivery skips rendering", func() {
		s.service = s.newService(s.cfg, WithQRRenderer(s.renderer))
		res := s.start()
		s.Nil(res.QR)
		s.Empty(res.QRFileName)
	})

	s.Run("short link is preferred for display", func() {
		s.service = s.newService(s.cfg, WithShortener(s.shortener))
		s.shortener.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return("https://gk.test/v/abcd1234", nil)

		res := s.start()
		s.Equal("https://gk.test/v/abcd1234", res.DisplayLink())
	})

	s.Run("shortener failure falls back to full link", func() {
		s.service = s.newService(s.cfg, WithShortener(s.shortener))
		s.shortener.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return("", errors.New("redis down"))

		res := s.start()
		s.Empty(res.ShortLink)
		s.Equal(res.UniversalLink, res.DisplayLink())
	})

	s.Run("empty requester is a bad request", func() {
		before := s.store.Len()
		_, err := s.service.Start(context.Background(), StartRequest{OriginID: testOrigin})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal(before, s.store.Len())
	})

	s.Run("empty origin falls back to default", func() {
		res, err := s.service.Start(context.Background(), StartRequest{RequesterID: testRequester})
		s.Require().NoError(err)
		s.Equal(id.OriginID(testOrigin), res.Session.OriginID)
	})

	s.Run("empty origin without default is a bad request", func() {
		cfg := s.cfg
		cfg.DefaultOriginID = ""
		s.service = s.newService(cfg)
		_, err := s.service.Start(context.Background(), StartRequest{RequesterID: testRequester})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("render failure discards the session", func() {
		cfg := s.cfg
		cfg.DeliveryMode = models.DeliveryQR
		s.service = s.newService(cfg, WithQRRenderer(s.renderer))
		s.renderer.EXPECT().Render(gomock.Any()).Return(nil, errors.New("too long"))
		before := s.store.Len()

		_, err := s.service.Start(context.Background(), StartRequest{RequesterID: testRequester, OriginID: testOrigin})
		s.Require().Error(err)
		s.Equal(before, s.store.Len())
	})

	s.Run("missing endpoint discards the session", func() {
		cfg := s.cfg
		cfg.App.Endpoint = ""
		s.service = s.newService(cfg)
		before := s.store.Len()

		_, err := s.service.Start(context.Background(), StartRequest{RequesterID: testRequester, OriginID: testOrigin})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal(before, s.store.Len())
	})
}

// =============================================================================
// Complete Tests
// =============================================================================

func (s *ServiceSuite) TestComplete() {
	s.Run("accepted proof grants once and repeat is a no-op", func() {
		res := s.start()
		s.expectGrantAndNotify()

		first := s.service.Complete(context.Background(), res.Token, accepted())
		s.Equal(StatusCompleted, first.Status)
		s.True(first.Outcome.Accepted)
		s.Require().NotNil(first.Session)
		s.Equal(res.Session.ID, first.Session.ID)
		s.False(s.service.IsPending(context.Background(), res.Session.ID))

		second := s.service.Complete(context.Background(), res.Token, accepted())
		s.Equal(StatusUnknownSession, second.Status)
		s.True(second.Outcome.Accepted)
		s.Nil(second.Session)
	})

	s.Run("undecodable token is dropped without side effects", func() {
		for _, token := range []string{"", "not-hex", "0x7b7d"} {
			got := s.service.Complete(context.Background(), token, accepted())
			s.Equal(StatusDropped, got.Status, token)
		}
		s.Contains(s.auditor.types(), audit.EventTokenDropped)
	})

	s.Run("undecodable token never reaches the registry", func() {
		// no expectations: any registry or collaborator call fails the test
		strictStore := mocks.NewMockSessionStore(s.ctrl)
		svc, err := New(s.cfg, strictStore,
			WithAccessGranter(s.granter),
			WithAuditor(s.auditor),
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)
		s.Require().NoError(err)

		foreignKind := hex.EncodeToString([]byte(`{"kind":"other-flow","sessionId":"s-1","discordUserId":"` + testRequester + `"}`))
		for _, token := range []string{"", "not-hex", hex.EncodeToString([]byte("{}")), foreignKind} {
			got := svc.Complete(context.Background(), token, accepted())
			s.Equal(StatusDropped, got.Status, token)
			s.Nil(got.Session)
		}
	})

	s.Run("rejection leaves session pending", func() {
		res := s.start()
		raw := accepted()
		raw.IsValidDetails.IsMinimumAgeValid = false

		got := s.service.Complete(context.Background(), res.Token, raw)
		s.Equal(StatusRejected, got.Status)
		s.Equal(models.ReasonAgeBelowMinimum, got.Outcome.Reason)
		s.True(s.service.IsPending(context.Background(), res.Session.ID))

		s.expectGrantAndNotify()
		retry := s.service.Complete(context.Background(), res.Token, accepted())
		s.Equal(StatusCompleted, retry.Status)
	})

	s.Run("grant failure does not skip notify", func() {
		res := s.start()
		s.granter.EXPECT().FetchMember(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("member left"))
		s.granter.EXPECT().SendDirectMessage(gomock.Any(), id.RequesterID(testRequester), gomock.Any()).Return(nil)

		got := s.service.Complete(context.Background(), res.Token, accepted())
		s.Equal(StatusCompleted, got.Status)
		s.Contains(s.auditor.types(), audit.EventRoleGrantFailed)
		s.Contains(s.auditor.types(), audit.EventNotified)
	})

	s.Run("notify failure is recorded after grant", func() {
		res := s.start()
		member := &models.Member{OriginID: testOrigin, RequesterID: testRequester}
		s.granter.EXPECT().FetchMember(gomock.Any(), gomock.Any(), gomock.Any()).Return(member, nil)
		s.granter.EXPECT().AddRole(gomock.Any(), member, testRole).Return(nil)
		s.granter.EXPECT().SendDirectMessage(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("dms closed"))

		got := s.service.Complete(context.Background(), res.Token, accepted())
		s.Equal(StatusCompleted, got.Status)
		s.Contains(s.auditor.types(), audit.EventRoleGranted)
		s.Contains(s.auditor.types(), audit.EventNotifyFailed)
	})

	s.Run("collaborator panic is contained", func() {
		res := s.start()
		member := &models.Member{OriginID: testOrigin, RequesterID: testRequester}
		s.granter.EXPECT().FetchMember(gomock.Any(), gomock.Any(), gomock.Any()).Return(member, nil)
		s.granter.EXPECT().AddRole(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, *models.Member, string) error { panic("gateway exploded") },
		)
		s.granter.EXPECT().SendDirectMessage(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		var got Completion
		s.NotPanics(func() {
			got = s.service.Complete(context.Background(), res.Token, accepted())
		})
		s.Equal(StatusCompleted, got.Status)
	})

	s.Run("missing role skips grant but still notifies", func() {
		cfg := s.cfg
		cfg.VerifiedRoleID = ""
		s.service = s.newService(cfg)
		res := s.start()
		s.granter.EXPECT().SendDirectMessage(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		got := s.service.Complete(context.Background(), res.Token, accepted())
		s.Equal(StatusCompleted, got.Status)
		s.Contains(s.auditor.types(), audit.EventNoRoleConfigured)
	})

	s.Run("session without origin uses default origin", func() {
		created, err := s.store.Create(context.Background(), testRequester, "")
		s.Require().NoError(err)
		token, err := correlation.Encode(models.NewCorrelationPayload(*created))
		s.Require().NoError(err)
		s.expectGrantAndNotify()

		got := s.service.Complete(context.Background(), token, accepted())
		s.Equal(StatusCompleted, got.Status)
	})

	s.Run("cancelled request still dispatches", func() {
		res := s.start()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		member := &models.Member{OriginID: testOrigin, RequesterID: testRequester}
		s.granter.EXPECT().FetchMember(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ id.OriginID, _ id.RequesterID) (*models.Member, error) {
				s.NoError(ctx.Err())
				return member, nil
			},
		)
		s.granter.EXPECT().AddRole(gomock.Any(), member, testRole).Return(nil)
		s.granter.EXPECT().SendDirectMessage(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		got := s.service.Complete(ctx, res.Token, accepted())
		s.Equal(StatusCompleted, got.Status)
	})
}

// TestComplete_ConcurrentCallbacks fires the same accepted token from many
// goroutines. Exactly one caller may dispatch.
func (s *ServiceSuite) TestComplete_ConcurrentCallbacks() {
	res := s.start()
	s.expectGrantAndNotify()

	const callers = 32
	statuses := make(chan Status, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses <- s.service.Complete(context.Background(), res.Token, accepted()).Status
		}()
	}
	wg.Wait()
	close(statuses)

	completed := 0
	for st := range statuses {
		if st == StatusCompleted {
			completed++
		} else {
			s.Equal(StatusUnknownSession, st)
		}
	}
	s.Equal(1, completed)
}

// =============================================================================
// Store Failure Tests (mocked registry)
// =============================================================================

func TestStart_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	store.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("id space exhausted"))

	svc, err := New(Config{App: selfapp.App{Endpoint: "https://v.test"}}, store)
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Start(context.Background(), StartRequest{RequesterID: testRequester, OriginID: testOrigin})
	if !dErrors.HasCode(err, dErrors.CodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestComplete_MetricsAndConsumeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	m := mocks.NewMockMetrics(ctrl)

	sid := id.NewSessionID()
	token, err := correlation.Encode(models.CorrelationPayload{
		SessionID:   sid.String(),
		RequesterID: testRequester,
		OriginID:    testOrigin,
	})
	if err != nil {
		t.Fatal(err)
	}

	store.EXPECT().Consume(gomock.Any(), sid).Return(nil, errors.New("backend unavailable"))
	m.EXPECT().IncrementCompletion(string(StatusUnknownSession))
	m.EXPECT().ObserveCompleteLatency(gomock.Any())

	svc, err := New(Config{Policy: policy.Default()}, store,
		WithMetrics(m),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatal(err)
	}
	got := svc.Complete(context.Background(), token, accepted())
	if got.Status != StatusUnknownSession {
		t.Fatalf("expected unknown session, got %s", got.Status)
	}
}
