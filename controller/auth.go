package controller

import (
	"context"
	"net/http"

	"camper/middleware"
	"camper/model"
	"camper/oidc"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// AuthDataProvider defines a the needed model interactions
type AuthDataProvider interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByOAuthID(ctx context.Context, provider, id string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	NewUser() *model.User
	SaveNew(ctx context.Context, u *model.User) error
	Save(ctx context.Context, u *model.User) error
}

// AuthController handles sign in and account linking using an oidc provider.
type AuthController struct {
	Data         AuthDataProvider
	Provider     oidc.Provider
	ProviderName string
}

// NewAuthController creates a new instance associated with an oidc provider.
func NewAuthController(data AuthDataProvider, provider oidc.Provider, providerName string) *AuthController {
	return &AuthController{
		Data:         data,
		Provider:     provider,
		ProviderName: providerName,
	}
}

// errEmailTaken means a local account owns the email the provider reported.
var errEmailTaken = errors.New("email belongs to another account")

// errLinkedElsewhere means the provider identity belongs to another account.
var errLinkedElsewhere = errors.New("identity linked to another account")

// Login handles login requests and delegates to the oidc provider.
func (c *AuthController) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: Login")
	c.Provider.NewAuth(w, r)
}

// Callback handles the oidc/oauth2 callback after a login attempt from the user.
// A signed in user gets the identity linked to the account, otherwise the owner
// of the identity is signed in, or created first.
func (c *AuthController) Callback(successURL string) func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		log.Info("Handler: Callback")
		s := session(ctx)
		identity, err := c.Provider.Callback(w, r)
		if err != nil {
			log.Warnf("%s callback failed: %s", c.ProviderName, err)
			flashRedirect(w, r, s, middleware.FlashErrors, "/signin", "Could not sign in with "+c.ProviderName+".")
			return
		}

		if id, ok := middleware.SessionUserID(s); ok {
			err := c.linkUser(ctx, id, identity)
			switch {
			case errors.Cause(err) == errLinkedElsewhere:
				flashRedirect(w, r, s, middleware.FlashErrors, "/account",
					"There is already a "+c.ProviderName+" account that belongs to you. Sign in with that account or delete it, then link it with your current account.")
			case err != nil:
				serverError(w, r, err)
			default:
				flashRedirect(w, r, s, middleware.FlashInfo, "/account", c.ProviderName+" account has been linked.")
			}
			return
		}

		u, err := c.loginUser(ctx, identity)
		if errors.Cause(err) == errEmailTaken {
			flashRedirect(w, r, s, middleware.FlashErrors, "/signin",
				"There is already an account using this email address. Sign in to that account and link it with "+c.ProviderName+" manually from Account Settings.")
			return
		}
		if err != nil {
			serverError(w, r, err)
			return
		}
		signIn(s, u)
		flashRedirect(w, r, s, middleware.FlashSuccess, successURL, "Success! You are logged in.")
	}
}

// linkUser attaches identity to the signed in user.
func (c *AuthController) linkUser(ctx context.Context, userID string, identity *oidc.Identity) error {
	owner, err := c.Data.GetByOAuthID(ctx, c.ProviderName, identity.ID)
	if err == nil && owner.ID != userID {
		return errLinkedElsewhere
	}
	if err != nil && !isNotFound(err) {
		return err
	}
	u, err := c.Data.GetByID(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "could not load signed in user")
	}
	u.LinkProvider(c.ProviderName, identity.ID)
	if u.Profile.Name == "" {
		u.Profile.Name = identity.Name
	}
	return c.Data.Save(ctx, u)
}

// loginUser queries the database for the owner of identity and otherwise creates a new user.
// It updates the users last login timestamp and returns the user data.
func (c *AuthController) loginUser(ctx context.Context, identity *oidc.Identity) (*model.User, error) {
	u, err := c.Data.GetByOAuthID(ctx, c.ProviderName, identity.ID)
	if isNotFound(err) {
		if identity.Email != "" {
			if _, err := c.Data.GetByEmail(ctx, identity.Email); err == nil {
				return nil, errEmailTaken
			} else if !isNotFound(err) {
				return nil, err
			}
		}
		u = c.Data.NewUser()
		u.LinkProvider(c.ProviderName, identity.ID)
		u.Email = identity.Email
		u.Profile.Name = identity.Name
		u.Profile.Picture = model.PlaceholderPicture
		log.Infof("User to create: %s:%s", c.ProviderName, identity.ID)
		if err := c.Data.SaveNew(ctx, u); err != nil {
			return nil, errors.Wrap(err, "could not save new user")
		}
	} else if err != nil {
		return nil, err
	}
	if err := c.Data.UpdateLastLogin(ctx, u.ID); err != nil {
		return nil, errors.Wrap(err, "could not update last login")
	}
	return u, nil
}
