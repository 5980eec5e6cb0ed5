package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/upstream"
)

// ErrInvalidSession is returned when a session cookie is missing, expired or
// no longer backed by Redis. Callers redirect to the login page.
var ErrInvalidSession = errors.New("invalid session")

// AuthService exchanges upstream credentials for a local session: the
// upstream bearer token lives in Redis, the browser carries a signed JWT
// referencing it.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Authenticate(ctx context.Context, tokenString string) (*models.Session, error)
	Logout(ctx context.Context, tokenString string) error
	CurrentUser(ctx context.Context, session *models.Session) (*models.User, error)
}

type authService struct {
	api        *upstream.Client
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	sessionTTL time.Duration
}

// SessionClaims is the JWT payload inside the session cookie.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewAuthService(api *upstream.Client, cacheSvc caching.CacheService, jwtSecret string, sessionTTL time.Duration) AuthService {
	return &authService{
		api:        api,
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

type loginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login posts credentials upstream and, on success, opens a local session.
// The error message carries the upstream text when one came back.
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	envelope, err := s.api.Post(ctx, "", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%s", loginErrorMessage(err))
	}

	var result loginResult
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &result); err != nil {
			return "", nil, fmt.Errorf("failed to decode login response: %w", err)
		}
	}
	if result.Token == "" {
		return "", nil, errors.New("Token não recebido do servidor")
	}
	if result.User == nil {
		result.User = &models.User{Email: email}
	}

	session := models.Session{
		ID:            uuid.NewString(),
		UpstreamToken: result.Token,
		User:          *result.User,
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return "", nil, err
	}
	if err := s.cacheSvc.SetSession(ctx, session.ID, string(payload), s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	now := time.Now()
	claims := SessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "disparabot-admin",
			Subject:   fmt.Sprintf("%d", result.User.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        session.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, result.User, nil
}

func loginErrorMessage(err error) string {
	if errors.Is(err, upstream.ErrUnauthorized) {
		return "Email ou senha inválidos"
	}
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Erro ao fazer login"
}

// Authenticate resolves a session cookie back into the server-side session.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*models.Session, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, ErrInvalidSession
	}

	payload, err := s.cacheSvc.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, ErrInvalidSession
	}

	var session models.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, ErrInvalidSession
	}
	return &session, nil
}

// Logout drops the server-side session. The upstream API is not notified.
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil // nothing to tear down
	}
	if err := s.cacheSvc.DeleteSession(ctx, claims.SessionID); err != nil {
		log.Printf("WARN: failed to delete session %s: %v", claims.SessionID, err)
	}
	return nil
}

// CurrentUser re-checks the upstream token by fetching /auth/me. An
// ErrUnauthorized here means the session must be torn down.
func (s *authService) CurrentUser(ctx context.Context, session *models.Session) (*models.User, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, session.UpstreamToken, "/auth/me", &raw); err != nil {
		return nil, err
	}

	// /auth/me answers either {user: {...}} or the bare user object
	var nested struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.User != nil {
		return nested.User, nil
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode /auth/me response: %w", err)
	}
	return &user, nil
}

func (s *authService) parseClaims(tokenString string) (*SessionClaims, error) {
	claims := new(SessionClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
