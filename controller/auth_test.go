package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"camper/middleware"
	"camper/model"
	"camper/oidc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	identity *oidc.Identity
	err      error
	started  bool
}

func (m *mockProvider) NewAuth(w http.ResponseWriter, r *http.Request) {
	m.started = true
	http.Redirect(w, r, "https://accounts.example.com/auth", http.StatusFound)
}

func (m *mockProvider) Callback(w http.ResponseWriter, r *http.Request) (*oidc.Identity, error) {
	return m.identity, m.err
}

func TestAuthLogin(t *testing.T) {
	provider := &mockProvider{}
	ac := NewAuthController(&mockAccountData{}, provider, "google")
	ctx, r, _ := testRequest("GET", "/auth/google", nil, nil, "")
	w := httptest.NewRecorder()
	ac.Login(ctx, w, r)
	assert.True(t, provider.started)
	assert.Equal(t, "https://accounts.example.com/auth", w.Header().Get("Location"))
}

func TestAuthLoginGoogle(t *testing.T) {
	assert := assert.New(t)
	var updateCalled string
	ts := time.Unix(1448272067, 0)
	mock := &mockAccountData{
		getByOAuthIDFn: func(provider, id string) (*model.User, error) {
			return &model.User{
				OAuthIDs:  map[string]string{provider: id},
				ID:        "uid123",
				CreatedAt: ts,
			}, nil
		},
		updateLastLoginFn: func(id string) error {
			updateCalled = id
			return nil
		},
	}
	ac := &AuthController{
		Data:         mock,
		ProviderName: "google",
	}

	u, err := ac.loginUser(context.Background(), &oidc.Identity{ID: "123"})
	if err != nil {
		t.Fatalf("Error: %s", err)
	}
	assert.Equal("uid123", u.ID)
	assert.Equal("123", u.OAuthIDs["google"])
	assert.Equal(ts.Unix(), u.CreatedAt.Unix(), "CreatedAt does not match")
	assert.Equal("uid123", updateCalled)
}

func TestAuthLoginGoogleCreateUser(t *testing.T) {
	assert := assert.New(t)
	var updateCalled string
	var saveUser *model.User
	mock := &mockAccountData{
		getByOAuthIDFn: func(provider, id string) (*model.User, error) {
			return nil, model.ErrNotFound
		},
		getByEmailFn: notFound,
		updateLastLoginFn: func(id string) error {
			updateCalled = id
			return nil
		},
		newUserFn: func() *model.User {
			return &model.User{ID: "uid123"}
		},
		saveNewFn: func(u *model.User) error {
			saveUser = u
			return nil
		},
	}
	ac := NewAuthController(mock, nil, "google")

	u, err := ac.loginUser(context.Background(), &oidc.Identity{ID: "123", Name: "Camper Bot", Email: "bot@example.com"})
	require.NoError(t, err)
	assert.Equal(saveUser, u)
	assert.Equal("uid123", updateCalled)
	assert.Equal("123", u.OAuthIDs["google"])
	assert.Equal("Camper Bot", u.Profile.Name)
	assert.Equal("bot@example.com", u.Email)
	assert.Equal(model.PlaceholderPicture, u.Profile.Picture)
}

func TestAuthLoginGoogleEmailTaken(t *testing.T) {
	mock := &mockAccountData{
		getByOAuthIDFn: func(provider, id string) (*model.User, error) { return nil, model.ErrNotFound },
		getByEmailFn:   func(string) (*model.User, error) { return &model.User{ID: "local"}, nil },
	}
	ac := NewAuthController(mock, nil, "google")
	_, err := ac.loginUser(context.Background(), &oidc.Identity{ID: "123", Email: "bot@example.com"})
	assert.Equal(t, errEmailTaken, err)
}

func TestAuthCallbackSignsIn(t *testing.T) {
	assert := assert.New(t)
	mock := &mockAccountData{
		getByOAuthIDFn:    func(provider, id string) (*model.User, error) { return &model.User{ID: "uid123"}, nil },
		updateLastLoginFn: func(string) error { return nil },
	}
	ac := NewAuthController(mock, &mockProvider{identity: &oidc.Identity{ID: "123"}}, "google")
	c, r, s := testRequest("GET", "/auth/google/callback", nil, nil, "")
	w := httptest.NewRecorder()
	ac.Callback("/account")(c, w, r)
	assert.Equal("/account", w.Header().Get("Location"))
	id, _ := middleware.SessionUserID(s)
	assert.Equal("uid123", id)
}

func TestAuthCallbackProviderError(t *testing.T) {
	assert := assert.New(t)
	ac := NewAuthController(&mockAccountData{}, &mockProvider{err: errors.New("bad state")}, "google")
	c, r, s := testRequest("GET", "/auth/google/callback", nil, nil, "")
	w := httptest.NewRecorder()
	ac.Callback("/account")(c, w, r)
	assert.Equal("/signin", w.Header().Get("Location"))
	assert.Equal([]string{"Could not sign in with google."}, middleware.Flashes(s)[middleware.FlashErrors])
	_, signedIn := middleware.SessionUserID(s)
	assert.False(signedIn)
}

func TestAuthCallbackLinks(t *testing.T) {
	assert := assert.New(t)
	u := &model.User{ID: "uid1"}
	var saved *model.User
	mock := &mockAccountData{
		getByOAuthIDFn: func(provider, id string) (*model.User, error) { return nil, model.ErrNotFound },
		getByIDFn:      func(string) (*model.User, error) { return u, nil },
		saveFn:         func(u *model.User) error { saved = u; return nil },
	}
	ac := NewAuthController(mock, &mockProvider{identity: &oidc.Identity{ID: "g1", Name: "Camper Bot"}}, "google")
	c, r, s := testRequest("GET", "/auth/google/callback", nil, nil, "uid1")
	w := httptest.NewRecorder()
	ac.Callback("/")(c, w, r)
	assert.Equal("/account", w.Header().Get("Location"))
	require.NotNil(t, saved)
	assert.Equal("g1", saved.OAuthIDs["google"])
	assert.Equal("Camper Bot", saved.Profile.Name)
	assert.Equal([]string{"google account has been linked."}, middleware.Flashes(s)[middleware.FlashInfo])
}

func TestAuthCallbackLinkedElsewhere(t *testing.T) {
	assert := assert.New(t)
	mock := &mockAccountData{
		getByOAuthIDFn: func(provider, id string) (*model.User, error) { return &model.User{ID: "uid2"}, nil },
	}
	ac := NewAuthController(mock, &mockProvider{identity: &oidc.Identity{ID: "g1"}}, "google")
	c, r, s := testRequest("GET", "/auth/google/callback", nil, nil, "uid1")
	w := httptest.NewRecorder()
	ac.Callback("/")(c, w, r)
	assert.Equal("/account", w.Header().Get("Location"))
	assert.Len(middleware.Flashes(s)[middleware.FlashErrors], 1)
}
