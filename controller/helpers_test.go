package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"camper/mailer"
	"camper/middleware"
	"camper/model"
	"camper/view"

	"github.com/gorilla/sessions"
)

type mockAccountData struct {
	getByIDFn         func(id string) (*model.User, error)
	getByEmailFn      func(email string) (*model.User, error)
	getByUsernameFn   func(username string) (*model.User, error)
	getByResetTokenFn func(token string, now time.Time) (*model.User, error)
	getByOAuthIDFn    func(provider, id string) (*model.User, error)
	countByUsernameFn func(username string) (int, error)
	countByEmailFn    func(email string) (int, error)
	updateLastLoginFn func(id string) error
	newUserFn         func() *model.User
	saveNewFn         func(u *model.User) error
	saveFn            func(u *model.User) error
	removeFn          func(id string) error
}

func (m *mockAccountData) GetByID(ctx context.Context, id string) (*model.User, error) {
	return m.getByIDFn(id)
}

func (m *mockAccountData) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.getByEmailFn(email)
}

func (m *mockAccountData) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.getByUsernameFn(username)
}

func (m *mockAccountData) GetByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	return m.getByResetTokenFn(token, now)
}

func (m *mockAccountData) GetByOAuthID(ctx context.Context, provider, id string) (*model.User, error) {
	return m.getByOAuthIDFn(provider, id)
}

func (m *mockAccountData) CountByUsername(ctx context.Context, username string) (int, error) {
	return m.countByUsernameFn(username)
}

func (m *mockAccountData) CountByEmail(ctx context.Context, email string) (int, error) {
	return m.countByEmailFn(email)
}

func (m *mockAccountData) UpdateLastLogin(ctx context.Context, id string) error {
	return m.updateLastLoginFn(id)
}

func (m *mockAccountData) NewUser() *model.User {
	return m.newUserFn()
}

func (m *mockAccountData) SaveNew(ctx context.Context, u *model.User) error {
	return m.saveNewFn(u)
}

func (m *mockAccountData) Save(ctx context.Context, u *model.User) error {
	return m.saveFn(u)
}

func (m *mockAccountData) Remove(ctx context.Context, id string) error {
	return m.removeFn(id)
}

func notFound(string) (*model.User, error) {
	return nil, model.ErrNotFound
}

type mockMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

type mockRenderer struct {
	name string
	page *view.Page
	err  error
}

func (m *mockRenderer) Render(w http.ResponseWriter, status int, name string, page *view.Page) error {
	m.name = name
	m.page = page
	if m.err != nil {
		return m.err
	}
	w.WriteHeader(status)
	return nil
}

var testStore = sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))

// testRequest builds a request with a fresh session, optionally signed in as userID.
func testRequest(method, target string, form url.Values, params map[string]string, userID string) (context.Context, *http.Request, *sessions.Session) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	s, _ := testStore.New(r, "camper")
	ctx := middleware.WithSession(context.Background(), s)
	if params != nil {
		ctx = middleware.WithURLParams(ctx, params)
	}
	if userID != "" {
		s.Values[middleware.SessionUserKey] = userID
		ctx = middleware.WithUserID(ctx, userID)
	}
	return ctx, r, s
}
