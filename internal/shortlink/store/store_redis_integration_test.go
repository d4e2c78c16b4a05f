//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"gatekeeper/internal/shortlink/store"
	"gatekeeper/pkg/platform/sentinel"
	"gatekeeper/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	ok, err := s.store.PutIfAbsent(ctx, "abcd1234", "https://example.test/long")
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.store.Get(ctx, "abcd1234")
	s.Require().NoError(err)
	s.Equal("https://example.test/long", got)

	ttl, err := s.redis.Client.TTL(ctx, store.KeyPrefix+"abcd1234").Result()
	s.Require().NoError(err)
	s.Equal(int64(-1), int64(ttl), "short links do not expire")
}

func (s *RedisStoreSuite) TestCollision() {
	ctx := context.Background()

	_, err := s.store.PutIfAbsent(ctx, "abcd1234", "first")
	s.Require().NoError(err)
	ok, err := s.store.PutIfAbsent(ctx, "abcd1234", "second")
	s.Require().NoError(err)
	s.False(ok)

	got, err := s.store.Get(ctx, "abcd1234")
	s.Require().NoError(err)
	s.Equal("first", got)
}

func (s *RedisStoreSuite) TestMissing() {
	_, err := s.store.Get(context.Background(), "missing0")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
