package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/xhandler"
	log "github.com/sirupsen/logrus"
)

// SessionUserKey is the session value holding the signed in user's id.
const SessionUserKey = "user"

// Flash kinds rendered by the layout.
const (
	FlashErrors  = "errors"
	FlashSuccess = "success"
	FlashInfo    = "info"
)

var flashKinds = []string{FlashErrors, FlashSuccess, FlashInfo}

type Session struct {
	store sessions.Store
}

// Init sets up a cookie store. Cookies are http only and live for two weeks.
func (m *Session) Init(hashKey, blockKey []byte, secure bool) {
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	m.store = store
}

// Store returns the underlying store, shared with the oidc clients.
func (m *Session) Store() sessions.Store {
	return m.store
}

func (m *Session) Enable(name string) func(next xhandler.HandlerC) xhandler.HandlerC {
	return func(next xhandler.HandlerC) xhandler.HandlerC {
		return xhandler.HandlerFuncC(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			session, err := m.store.Get(r, name)
			if err != nil {
				log.Infof("Could not decode session %q from %q: %s", name, r.RemoteAddr, err)
			}
			ctx = WithSession(ctx, session)
			next.ServeHTTPC(ctx, w, r)
		})
	}
}

// SessionUserID returns the id of the signed in user, if any.
func SessionUserID(s *sessions.Session) (string, bool) {
	id, ok := s.Values[SessionUserKey].(string)
	return id, ok && id != ""
}

// AddFlash queues a message of the given kind for the next rendered page.
func AddFlash(s *sessions.Session, kind, msg string) {
	s.AddFlash(msg, kind)
}

// Flashes drains all queued messages keyed by kind.
func Flashes(s *sessions.Session) map[string][]string {
	res := make(map[string][]string)
	for _, kind := range flashKinds {
		for _, f := range s.Flashes(kind) {
			if msg, ok := f.(string); ok {
				res[kind] = append(res[kind], msg)
			}
		}
	}
	return res
}
