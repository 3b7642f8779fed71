package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"camper/middleware"
	"camper/model"
	"camper/view"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	cErrClient int = http.StatusBadRequest
	cErrServer     = http.StatusInternalServerError
)

type errorResponse struct {
	Errors []controllerError `json:"errors"`
}

func jsonError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	log.Warnf("JSON Error: %d %s", code, msg)

	cerr := controllerError{
		Status: code,
		Title:  msg,
	}
	errResp := errorResponse{
		Errors: []controllerError{
			cerr,
		},
	}
	b, err := json.Marshal(errResp)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(code)
	w.Write(b)
}

type controllerError struct {
	Status int    `json:"status,string"`
	Title  string `json:"title"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("Could not encode response: %s", err)
		jsonError(w, r, cErrServer, "")
	}
}

// serverError is the generic error path for page handlers.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Errorf("%s %s: %s", r.Method, r.URL.Path, err)
	http.Error(w, "Something went wrong", http.StatusInternalServerError)
}

var errMissingUser = errors.New("context without user")

func isNotFound(err error) bool {
	return errors.Cause(err) == model.ErrNotFound
}

// session returns the request session. Session.Enable always runs first,
// a missing session is a wiring bug.
func session(ctx context.Context) *sessions.Session {
	s, ok := middleware.SessionFromContext(ctx)
	if !ok {
		panic("controller: request without session")
	}
	return s
}

// flashRedirect queues msgs and redirects to url.
func flashRedirect(w http.ResponseWriter, r *http.Request, s *sessions.Session, kind, url string, msgs ...string) {
	for _, msg := range msgs {
		middleware.AddFlash(s, kind, msg)
	}
	redirect(w, r, s, url)
}

// redirect saves the session and redirects with 302.
func redirect(w http.ResponseWriter, r *http.Request, s *sessions.Session, url string) {
	if err := s.Save(r, w); err != nil {
		log.Warnf("Could not save session: %s", err)
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// signIn stores the user in the session.
func signIn(s *sessions.Session, u *model.User) {
	s.Values[middleware.SessionUserKey] = u.ID
}

func signOut(s *sessions.Session) {
	delete(s.Values, middleware.SessionUserKey)
}

// render drains the flashes into the page and writes it.
func render(w http.ResponseWriter, r *http.Request, rd view.Renderer, s *sessions.Session, name, title string, data interface{}) {
	_, signedIn := middleware.SessionUserID(s)
	page := &view.Page{
		Title:    title,
		SignedIn: signedIn,
		Flashes:  middleware.Flashes(s),
		Data:     data,
	}
	if err := s.Save(r, w); err != nil {
		log.Warnf("Could not save session: %s", err)
	}
	if err := rd.Render(w, http.StatusOK, name, page); err != nil {
		serverError(w, r, err)
	}
}
