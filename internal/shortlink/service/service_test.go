package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"gatekeeper/internal/shortlink/store"
	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/platform/sentinel"
)

type failingStore struct{ err error }

func (f failingStore) PutIfAbsent(context.Context, string, string) (bool, error) { return false, f.err }
func (f failingStore) Get(context.Context, string) (string, error)               { return "", f.err }

type ShortlinkServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	service *Service
}

func TestShortlinkServiceSuite(t *testing.T) {
	suite.Run(t, new(ShortlinkServiceSuite))
}

func (s *ShortlinkServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	svc, err := New(s.store, "https://gk.example.test/",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ShortlinkServiceSuite) TestNew() {
	s.Run("nil store", func() {
		_, err := New(nil, "https://gk.example.test")
		s.Require().Error(err)
	})
	s.Run("empty base URL", func() {
		_, err := New(s.store, "  ")
		s.Require().Error(err)
	})
}

func (s *ShortlinkServiceSuite) TestShortenAndResolve() {
	ctx := context.Background()
	long := "https://redirect.self.xyz?selfApp=%7B%22a%22%3A1%7D"

	short, err := s.service.Shorten(ctx, long)
	s.Require().NoError(err)
	s.True(strings.HasPrefix(short, "https://gk.example.test/v/"))

	code := strings.TrimPrefix(short, "https://gk.example.test/v/")
	s.Len(code, CodeLength)
	s.True(ValidCode(code))

	got, err := s.service.Resolve(ctx, code)
	s.Require().NoError(err)
	s.Equal(long, got)
}

func (s *ShortlinkServiceSuite) TestShorten_EmptyURL() {
	_, err := s.service.Shorten(context.Background(), " ")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ShortlinkServiceSuite) TestShorten_RegeneratesOnCollision() {
	ctx := context.Background()
	_, _ = s.store.PutIfAbsent(ctx, "AAAAAAAA", "taken")

	codes := []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}
	svc, err := New(s.store, "https://gk.example.test", WithCodeGenerator(func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}))
	s.Require().NoError(err)

	short, err := svc.Shorten(ctx, "https://example.test/long")
	s.Require().NoError(err)
	s.Equal("https://gk.example.test/v/BBBBBBBB", short)

	kept, _ := s.store.Get(ctx, "AAAAAAAA")
	s.Equal("taken", kept)
}

func (s *ShortlinkServiceSuite) TestShorten_GivesUpAfterBoundedAttempts() {
	ctx := context.Background()
	_, _ = s.store.PutIfAbsent(ctx, "AAAAAAAA", "taken")

	calls := 0
	svc, err := New(s.store, "https://gk.example.test", WithCodeGenerator(func() (string, error) {
		calls++
		return "AAAAAAAA", nil
	}))
	s.Require().NoError(err)

	_, err = svc.Shorten(ctx, "https://example.test/long")
	s.True(errors.Is(err, sentinel.ErrConflict))
	s.Equal(maxAttempts, calls)
}

func (s *ShortlinkServiceSuite) TestShorten_StoreFailure() {
	svc, err := New(failingStore{err: sentinel.ErrUnavailable}, "https://gk.example.test")
	s.Require().NoError(err)
	_, err = svc.Shorten(context.Background(), "https://example.test/long")
	s.True(errors.Is(err, sentinel.ErrUnavailable))
}

func (s *ShortlinkServiceSuite) TestResolve_Misses() {
	for _, code := range []string{"", "short", "toolongcode", "abc$1234", "Zz9Zz9Zz"} {
		_, err := s.service.Resolve(context.Background(), code)
		s.True(errors.Is(err, sentinel.ErrNotFound), code)
	}
}
