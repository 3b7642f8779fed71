package middleware

import (
	"context"
	"net/http"

	"github.com/rs/xhandler"
	log "github.com/sirupsen/logrus"
)

func AuthenticatedFilter(loginURL string) func(next xhandler.HandlerC) xhandler.HandlerC {
	return func(next xhandler.HandlerC) xhandler.HandlerC {
		return xhandler.HandlerFuncC(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(ctx)
			if !ok {
				log.Error("Context without valid session")
				http.Error(w, "Something went wrong", http.StatusInternalServerError)
				return
			}
			if _, ok := SessionUserID(session); !ok {
				log.Info("Handler: Is not loggedin")
				AddFlash(session, FlashErrors, "You must be logged in to do that.")
				if r.Method == http.MethodGet {
					session.Values["returnTo"] = r.URL.Path
				}
				session.Save(r, w)
				http.Redirect(w, r, loginURL, http.StatusFound)
				return
			}
			next.ServeHTTPC(ctx, w, r)
		})
	}
}

func UnauthenticatedFilter(loggedInURL string) func(next xhandler.HandlerC) xhandler.HandlerC {
	return func(next xhandler.HandlerC) xhandler.HandlerC {
		return xhandler.HandlerFuncC(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(ctx)
			if !ok {
				log.Error("Context without valid session")
				http.Error(w, "Something went wrong", http.StatusInternalServerError)
				return
			}
			if _, ok := SessionUserID(session); ok {
				log.Info("Handler: Is loggedin")
				http.Redirect(w, r, loggedInURL, http.StatusFound)
				return
			}
			next.ServeHTTPC(ctx, w, r)
		})
	}
}

// UserContext copies the signed in user's id from the session into the context.
// It must run behind AuthenticatedFilter.
func UserContext() func(next xhandler.HandlerC) xhandler.HandlerC {
	return func(next xhandler.HandlerC) xhandler.HandlerC {
		return xhandler.HandlerFuncC(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(ctx)
			if !ok {
				log.Error("Context without valid session")
				http.Error(w, "Something went wrong", http.StatusInternalServerError)
				return
			}
			user, ok := SessionUserID(session)
			if !ok {
				log.Error("Context without valid session")
				http.Error(w, "Something went wrong", http.StatusInternalServerError)
				return
			}
			next.ServeHTTPC(WithUserID(ctx, user), w, r)
		})
	}
}
