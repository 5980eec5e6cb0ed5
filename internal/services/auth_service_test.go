package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/upstream"
)

const testJWTSecret = "test-secret-test-secret-test-1234"

type AuthServiceTestSuite struct {
	suite.Suite
	redis *miniredis.Miniredis
	cache caching.CacheService
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.redis = miniredis.RunT(s.T())
	s.cache = caching.NewCacheServiceWithClient(redis.NewClient(&redis.Options{Addr: s.redis.Addr()}))
}

func (s *AuthServiceTestSuite) newService(handler http.HandlerFunc) AuthService {
	server := httptest.NewServer(handler)
	s.T().Cleanup(server.Close)
	api := upstream.NewClient(server.URL, 5*time.Second)
	return NewAuthService(api, s.cache, testJWTSecret, time.Hour)
}

func (s *AuthServiceTestSuite) TestLoginOpensSession() {
	svc := s.newService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(s.T(), "/auth/login", r.URL.Path)
		w.Write([]byte(`{"data":{"token":"upstream-tok","user":{"id":3,"name":"Ana","email":"ana@example.com"}}}`))
	})

	cookie, user, err := svc.Login(context.Background(), "ana@example.com", "senha")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), user)
	assert.Equal(s.T(), "Ana", user.Name)
	assert.NotEmpty(s.T(), cookie)

	// the cookie resolves back into the stored session
	session, err := svc.Authenticate(context.Background(), cookie)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "upstream-tok", session.UpstreamToken)
	assert.Equal(s.T(), "ana@example.com", session.User.Email)
}

func (s *AuthServiceTestSuite) TestLoginRejectsBadCredentials() {
	svc := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, _, err := svc.Login(context.Background(), "ana@example.com", "errada")
	require.Error(s.T(), err)
	assert.Equal(s.T(), "Email ou senha inválidos", err.Error())
}

func (s *AuthServiceTestSuite) TestLoginSurfacesUpstreamMessage() {
	svc := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"Muitas tentativas, aguarde"}`))
	})

	_, _, err := svc.Login(context.Background(), "ana@example.com", "senha")
	require.Error(s.T(), err)
	assert.Equal(s.T(), "Muitas tentativas, aguarde", err.Error())
}

func (s *AuthServiceTestSuite) TestLoginRequiresToken() {
	svc := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"user":{"id":3,"email":"ana@example.com"}}}`))
	})

	_, _, err := svc.Login(context.Background(), "ana@example.com", "senha")
	require.Error(s.T(), err)
	assert.Equal(s.T(), "Token não recebido do servidor", err.Error())
}

func (s *AuthServiceTestSuite) TestAuthenticateRejectsGarbageAndForeignTokens() {
	svc := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"token":"upstream-tok","user":{"id":3,"email":"ana@example.com"}}}`))
	})

	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	assert.ErrorIs(s.T(), err, ErrInvalidSession)

	// a token signed with a different secret must not authenticate
	other := NewAuthService(upstream.NewClient("http://127.0.0.1:1", time.Second), s.cache, "another-secret", time.Hour)
	cookie, _, loginErr := svc.Login(context.Background(), "ana@example.com", "senha")
	require.NoError(s.T(), loginErr)
	_, err = other.Authenticate(context.Background(), cookie)
	assert.ErrorIs(s.T(), err, ErrInvalidSession)
}

func (s *AuthServiceTestSuite) TestAuthenticateRejectsExpiredRedisSession() {
	svc := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"token":"upstream-tok","user":{"id":3,"email":"ana@example.com"}}}`))
	})

	cookie, _, err := svc.Login(context.Background(), "ana@example.com", "senha")
	require.NoError(s.T(), err)

	s.redis.FastForward(2 * time.Hour)

	_, err = svc.Authenticate(context.Background(), cookie)
	assert.ErrorIs(s.T(), err, ErrInvalidSession)
}

func (s *AuthServiceTestSuite) TestLogoutDropsSession() {
	svc := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"token":"upstream-tok","user":{"id":3,"email":"ana@example.com"}}}`))
	})

	cookie, _, err := svc.Login(context.Background(), "ana@example.com", "senha")
	require.NoError(s.T(), err)

	require.NoError(s.T(), svc.Logout(context.Background(), cookie))

	_, err = svc.Authenticate(context.Background(), cookie)
	assert.ErrorIs(s.T(), err, ErrInvalidSession)

	// logging out an unparseable cookie is a no-op, not an error
	assert.NoError(s.T(), svc.Logout(context.Background(), "not-a-jwt"))
}

func (s *AuthServiceTestSuite) TestCurrentUserUnwrapsBothShapes() {
	calls := 0
	svc := s.newService(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.Write([]byte(`{"data":{"token":"upstream-tok","user":{"id":3,"email":"ana@example.com"}}}`))
			return
		}
		calls++
		if calls == 1 {
			w.Write([]byte(`{"data":{"user":{"id":3,"name":"Ana","email":"ana@example.com"}}}`))
			return
		}
		w.Write([]byte(`{"data":{"id":3,"name":"Ana Maria","email":"ana@example.com"}}`))
	})

	cookie, _, err := svc.Login(context.Background(), "ana@example.com", "senha")
	require.NoError(s.T(), err)
	session, err := svc.Authenticate(context.Background(), cookie)
	require.NoError(s.T(), err)

	user, err := svc.CurrentUser(context.Background(), session)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Ana", user.Name)

	user, err = svc.CurrentUser(context.Background(), session)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Ana Maria", user.Name)
}

func (s *AuthServiceTestSuite) TestCurrentUserPropagatesUnauthorized() {
	svc := s.newService(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.Write([]byte(`{"data":{"token":"upstream-tok","user":{"id":3,"email":"ana@example.com"}}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	cookie, _, err := svc.Login(context.Background(), "ana@example.com", "senha")
	require.NoError(s.T(), err)
	session, err := svc.Authenticate(context.Background(), cookie)
	require.NoError(s.T(), err)

	_, err = svc.CurrentUser(context.Background(), session)
	assert.ErrorIs(s.T(), err, upstream.ErrUnauthorized)
}
