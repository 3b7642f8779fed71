package middleware

import (
	"context"

	"github.com/gorilla/sessions"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	userKey
	urlParamsKey
)

// WithSession returns a copy of ctx carrying the request session.
func WithSession(ctx context.Context, s *sessions.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session stored by Session.Enable.
func SessionFromContext(ctx context.Context) (*sessions.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*sessions.Session)
	return s, ok && s != nil
}

// WithUserID returns a copy of ctx carrying the id of the signed in user.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey, id)
}

// UserIDFromContext returns the id stored by UserContext.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey).(string)
	return id, ok && id != ""
}

// WithURLParams returns a copy of ctx carrying the router's path parameters.
func WithURLParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, urlParamsKey, params)
}

// URLParam returns the named path parameter or "".
func URLParam(ctx context.Context, name string) string {
	params, _ := ctx.Value(urlParamsKey).(map[string]string)
	return params[name]
}
