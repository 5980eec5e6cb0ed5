package common

import (
	"context"

	"github.com/disparabot/admin/internal/models"
)

type contextKey string

const SessionKey contextKey = "session"

// WithSession stores the authenticated session in the request context.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSessionFromContext extracts the authenticated session from the request context.
func GetSessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*models.Session)
	return session, ok
}
