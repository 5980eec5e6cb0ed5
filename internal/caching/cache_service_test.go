package caching

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CacheServiceTestSuite struct {
	suite.Suite
	redis *miniredis.Miniredis
	cache CacheService
}

func TestCacheServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CacheServiceTestSuite))
}

func (s *CacheServiceTestSuite) SetupTest() {
	s.redis = miniredis.RunT(s.T())
	s.cache = NewCacheServiceWithClient(redis.NewClient(&redis.Options{Addr: s.redis.Addr()}))
}

func (s *CacheServiceTestSuite) TestListRoundTrip() {
	ctx := context.Background()
	type item struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	var out []item
	hit, err := s.cache.GetList(ctx, "categorias", &out)
	require.NoError(s.T(), err)
	assert.False(s.T(), hit)

	require.NoError(s.T(), s.cache.SetList(ctx, "categorias", []item{{ID: 7, Name: "Ofertas"}}, time.Minute))

	hit, err = s.cache.GetList(ctx, "categorias", &out)
	require.NoError(s.T(), err)
	assert.True(s.T(), hit)
	require.Len(s.T(), out, 1)
	assert.Equal(s.T(), int64(7), out[0].ID)
}

func (s *CacheServiceTestSuite) TestInvalidateListDropsKey() {
	ctx := context.Background()
	require.NoError(s.T(), s.cache.SetList(ctx, "grupos", []string{"a"}, time.Minute))
	require.NoError(s.T(), s.cache.InvalidateList(ctx, "grupos"))

	var out []string
	hit, err := s.cache.GetList(ctx, "grupos", &out)
	require.NoError(s.T(), err)
	assert.False(s.T(), hit)
}

func (s *CacheServiceTestSuite) TestListsAreIsolatedPerEntity() {
	ctx := context.Background()
	require.NoError(s.T(), s.cache.SetList(ctx, "grupos", []string{"a"}, time.Minute))
	require.NoError(s.T(), s.cache.InvalidateList(ctx, "produtos"))

	var out []string
	hit, err := s.cache.GetList(ctx, "grupos", &out)
	require.NoError(s.T(), err)
	assert.True(s.T(), hit)
}

func (s *CacheServiceTestSuite) TestSessionLifecycle() {
	ctx := context.Background()
	require.NoError(s.T(), s.cache.SetSession(ctx, "sid-1", `{"id":"sid-1"}`, time.Minute))

	payload, err := s.cache.GetSession(ctx, "sid-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), `{"id":"sid-1"}`, payload)

	require.NoError(s.T(), s.cache.DeleteSession(ctx, "sid-1"))

	payload, err = s.cache.GetSession(ctx, "sid-1")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), payload)
}

func (s *CacheServiceTestSuite) TestSessionExpires() {
	ctx := context.Background()
	require.NoError(s.T(), s.cache.SetSession(ctx, "sid-2", "payload", time.Minute))

	s.redis.FastForward(2 * time.Minute)

	payload, err := s.cache.GetSession(ctx, "sid-2")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), payload)
}

func (s *CacheServiceTestSuite) TestFlashIsConsumedOnce() {
	ctx := context.Background()
	require.NoError(s.T(), s.cache.SetFlash(ctx, "sid-1", `{"text":"ok"}`, time.Minute))

	payload, err := s.cache.TakeFlash(ctx, "sid-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), `{"text":"ok"}`, payload)

	payload, err = s.cache.TakeFlash(ctx, "sid-1")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), payload)
}

func (s *CacheServiceTestSuite) TestPing() {
	assert.NoError(s.T(), s.cache.Ping(context.Background()))
}
