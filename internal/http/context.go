package http

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/session"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeySession
	ctxKeyUser
)

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

func getSession(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxKeySession).(*session.Session)
	return s
}

// getUser returns the authenticated user, or nil for guests.
func getUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(ctxKeyUser).(*domain.User)
	return u
}

func withSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

func withUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}
