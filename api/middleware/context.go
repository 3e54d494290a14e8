package middleware

import (
	"context"

	"github.com/layali-lounge/qrmenu-backend/internal/session"
)

type contextKey string

const (
	visitContextKey     contextKey = "visit"
	sessionIDContextKey contextKey = "session_id"
)

// VisitFromContext returns the request's visit. The session middleware always
// installs one, so handlers behind it can rely on a non-nil result.
func VisitFromContext(ctx context.Context) *session.Visit {
	if visit, ok := ctx.Value(visitContextKey).(*session.Visit); ok {
		return visit
	}
	return session.NewVisit()
}

// SessionIDFromContext returns the request's session id.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDContextKey).(string); ok {
		return id
	}
	return ""
}

// WithVisit installs the visit and its session id on the context.
func WithVisit(ctx context.Context, sessionID string, visit *session.Visit) context.Context {
	ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
	return context.WithValue(ctx, visitContextKey, visit)
}
