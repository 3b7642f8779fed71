package controller

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"camper/clock"
	"camper/mailer"
	"camper/middleware"
	"camper/model"
	"camper/resources"
	"camper/view"

	log "github.com/sirupsen/logrus"
)

// AccountDataProvider defines the user model interactions of the account pages.
type AccountDataProvider interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error)
	CountByUsername(ctx context.Context, username string) (int, error)
	CountByEmail(ctx context.Context, email string) (int, error)
	UpdateLastLogin(ctx context.Context, id string) error
	NewUser() *model.User
	SaveNew(ctx context.Context, u *model.User) error
	Save(ctx context.Context, u *model.User) error
	Remove(ctx context.Context, id string) error
}

// AccountController handles signup, signin, account settings, password
// resets and the public profile.
type AccountController struct {
	Data     AccountDataProvider
	Stories  model.StoryPeer
	Comments model.CommentPeer
	Mailer   mailer.Mailer
	Mail     mailer.Templates
	Renderer view.Renderer
	Clock    clock.Clock
	// Location is the timezone activity days are counted in.
	Location *time.Location
	// BaseURL overrides the request host in emailed links.
	BaseURL string
}

// returnTarget picks where a fresh sign in continues to.
func returnTarget(returnTo string) string {
	switch {
	case strings.Contains(returnTo, "hotStories"):
		return "/news"
	case strings.Contains(returnTo, "field-guide"):
		return "/field-guide"
	case returnTo == "":
		return "/"
	}
	return returnTo
}

func (c *AccountController) now() time.Time {
	return c.Clock.Now()
}

// Signin renders the sign in choices.
func (c *AccountController) Signin(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: Signin")
	render(w, r, c.Renderer, session(ctx), "signin", "Free Code Camp Login", nil)
}

func (c *AccountController) EmailSignin(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: EmailSignin")
	render(w, r, c.Renderer, session(ctx), "email-signin", "Sign in to your Free Code Camp Account", nil)
}

func (c *AccountController) EmailSignup(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: EmailSignup")
	render(w, r, c.Renderer, session(ctx), "email-signup", "Create Your Free Code Camp Account", nil)
}

// PostSignin signs a user in with email and password.
func (c *AccountController) PostSignin(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: PostSignin")
	s := session(ctx)
	form := signinForm{
		Email:    formValue(r, "email"),
		Password: r.PostFormValue("password"),
	}
	if err := form.Validate(); err != nil {
		flashRedirect(w, r, s, middleware.FlashErrors, "/signin", messages(err)...)
		return
	}
	u, err := c.Data.GetByEmail(ctx, form.Email)
	if err != nil && !isNotFound(err) {
		serverError(w, r, err)
		return
	}
	if u == nil || !u.ComparePassword(form.Password) {
		log.Warnf("Failed sign in for %q", form.Email)
		flashRedirect(w, r, s, middleware.FlashErrors, "/signin", "Invalid email or password.")
		return
	}
	if err := c.Data.UpdateLastLogin(ctx, u.ID); err != nil {
		serverError(w, r, err)
		return
	}
	signIn(s, u)
	returnTo, _ := s.Values["returnTo"].(string)
	delete(s.Values, "returnTo")
	flashRedirect(w, r, s, middleware.FlashSuccess, returnTarget(returnTo), "Success! You are logged in.")
}

// Signout forgets the signed in user.
func (c *AccountController) Signout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: Signout")
	s := session(ctx)
	signOut(s)
	redirect(w, r, s, "/")
}

// PostEmailSignup creates a local account and signs it in.
func (c *AccountController) PostEmailSignup(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: PostEmailSignup")
	s := session(ctx)
	form := signupForm{
		Email:    formValue(r, "email"),
		Username: formValue(r, "username"),
		Password: r.PostFormValue("password"),
	}
	if err := form.Validate(); err != nil {
		flashRedirect(w, r, s, middleware.FlashErrors, "/email-signup", messages(err)...)
		return
	}

	if _, err := c.Data.GetByEmail(ctx, form.Email); err == nil {
		flashRedirect(w, r, s, middleware.FlashErrors, "/email-signup", "Account with that email address already exists.")
		return
	} else if !isNotFound(err) {
		serverError(w, r, err)
		return
	}
	if _, err := c.Data.GetByUsername(ctx, form.Username); err == nil {
		flashRedirect(w, r, s, middleware.FlashErrors, "/email-signup", "Account with that username already exists.")
		return
	} else if !isNotFound(err) {
		serverError(w, r, err)
		return
	}

	u := c.Data.NewUser()
	u.Email = form.Email
	u.Profile.Username = form.Username
	u.Profile.Picture = model.PlaceholderPicture
	if err := u.SetPassword(form.Password); err != nil {
		serverError(w, r, err)
		return
	}
	if err := c.Data.SaveNew(ctx, u); err != nil {
		serverError(w, r, err)
		return
	}
	signIn(s, u)
	if err := c.Mailer.Send(ctx, c.Mail.Welcome(u.Email)); err != nil {
		log.Warnf("Could not send welcome mail to %s: %s", u.Email, err)
	}
	redirect(w, r, s, "/")
}

// Account renders the settings page of the signed in user.
func (c *AccountController) Account(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: Account")
	u, ok := c.currentUser(ctx, w, r)
	if !ok {
		return
	}
	render(w, r, c.Renderer, session(ctx), "account", "Manage your Free Code Camp Account", u)
}

type accountUser struct {
	ID                  string                     `json:"id"`
	Email               string                     `json:"email"`
	Profile             model.Profile              `json:"profile"`
	Portfolio           model.Portfolio            `json:"portfolio"`
	ProgressTimestamps  []int64                    `json:"progressTimestamps"`
	CompletedChallenges []model.CompletedChallenge `json:"completedChallenges"`
	LongestStreak       int                        `json:"longestStreak"`
	CurrentStreak       int                        `json:"currentStreak"`
	LinkedProviders     []string                   `json:"linkedProviders"`
}

type accountResponse struct {
	User *accountUser `json:"user,omitempty"`
}

func newAccountUser(u *model.User) *accountUser {
	au := &accountUser{
		ID:                  u.ID,
		Email:               u.Email,
		Profile:             u.Profile,
		Portfolio:           u.Portfolio,
		ProgressTimestamps:  u.ProgressTimestamps,
		CompletedChallenges: u.CompletedChallenges,
		LongestStreak:       u.LongestStreak,
		CurrentStreak:       u.CurrentStreak,
		LinkedProviders:     []string{},
	}
	for p := range u.OAuthIDs {
		au.LinkedProviders = append(au.LinkedProviders, p)
	}
	return au
}

// AccountAPI answers the signed in user without secrets, or an empty object.
func (c *AccountController) AccountAPI(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: AccountAPI")
	var resp accountResponse
	if id, ok := middleware.SessionUserID(session(ctx)); ok {
		u, err := c.Data.GetByID(ctx, id)
		switch {
		case isNotFound(err):
		case err != nil:
			jsonError(w, r, cErrServer, "")
			return
		default:
			resp.User = newAccountUser(u)
		}
	}
	writeJSON(w, r, &resp)
}

func unescapeParam(ctx context.Context, name string) string {
	v := middleware.URLParam(ctx, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// countCheck answers true when exactly one account matches the parameter.
func countCheck(name string, count func(ctx context.Context, v string) (int, error)) func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		n, err := count(ctx, model.NormalizeKey(unescapeParam(ctx, name)))
		if err != nil {
			log.Warnf("Could not count %s: %s", name, err)
			jsonError(w, r, cErrServer, "")
			return
		}
		writeJSON(w, r, n == 1)
	}
}

func (c *AccountController) CheckUniqueUsername(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	countCheck("username", c.Data.CountByUsername)(ctx, w, r)
}

func (c *AccountController) CheckExistingUsername(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	countCheck("username", c.Data.CountByUsername)(ctx, w, r)
}

func (c *AccountController) CheckUniqueEmail(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	countCheck("email", c.Data.CountByEmail)(ctx, w, r)
}

// currentUser loads the user UserContext put into ctx.
func (c *AccountController) currentUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	id, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		serverError(w, r, errMissingUser)
		return nil, false
	}
	u, err := c.Data.GetByID(ctx, id)
	if isNotFound(err) {
		s := session(ctx)
		signOut(s)
		redirect(w, r, s, "/signin")
		return nil, false
	}
	if err != nil {
		serverError(w, r, err)
		return nil, false
	}
	return u, true
}

// PostUpdateProfile saves the profile and portfolio and refreshes the
// author fields on the user's stories and comments.
func (c *AccountController) PostUpdateProfile(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: PostUpdateProfile")
	s := session(ctx)
	u, ok := c.currentUser(ctx, w, r)
	if !ok {
		return
	}
	form := profileForm{
		Email:    formValue(r, "email"),
		Username: formValue(r, "username"),
	}
	if err := form.Validate(); err != nil {
		flashRedirect(w, r, s, middleware.FlashErrors, "/account", messages(err)...)
		return
	}
	if other, err := c.Data.GetByEmail(ctx, form.Email); err == nil && other.ID != u.ID {
		flashRedirect(w, r, s, middleware.FlashErrors, "/account", "An account with that email address already exists.")
		return
	} else if err != nil && !isNotFound(err) {
		serverError(w, r, err)
		return
	}
	if other, err := c.Data.GetByUsername(ctx, form.Username); err == nil && other.ID != u.ID {
		flashRedirect(w, r, s, middleware.FlashErrors, "/account", "An account with that username already exists.")
		return
	} else if err != nil && !isNotFound(err) {
		serverError(w, r, err)
		return
	}

	u.Email = form.Email
	u.Profile = model.Profile{
		Username:        form.Username,
		Name:            formValue(r, "name"),
		Location:        formValue(r, "location"),
		GithubProfile:   formValue(r, "githubProfile"),
		FacebookProfile: formValue(r, "facebookProfile"),
		LinkedinProfile: formValue(r, "linkedinProfile"),
		CodepenProfile:  formValue(r, "codepenProfile"),
		TwitterHandle:   formValue(r, "twitterHandle"),
		Bio:             formValue(r, "bio"),
		Picture:         formValue(r, "picture"),
	}
	if u.Profile.Picture == "" {
		u.Profile.Picture = model.PlaceholderPicture
	}
	for i := range u.Portfolio.Websites {
		prefix := "website" + strconv.Itoa(i+1)
		u.Portfolio.Websites[i] = model.Website{
			Title: formValue(r, prefix+"Title"),
			Link:  formValue(r, prefix+"Link"),
			Image: formValue(r, prefix+"Image"),
		}
	}
	if err := c.Data.Save(ctx, u); err != nil {
		serverError(w, r, err)
		return
	}
	if err := resources.UpdateAuthorPictures(ctx, c.Stories, c.Comments, u.ID, u.Profile.Picture, u.Profile.Username); err != nil {
		serverError(w, r, err)
		return
	}
	flashRedirect(w, r, s, middleware.FlashSuccess, "/account", "Profile information updated.")
}

// PostUpdatePassword replaces the password of the signed in user.
func (c *AccountController) PostUpdatePassword(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: PostUpdatePassword")
	s := session(ctx)
	form := passwordForm{
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	if err := form.Validate(); err != nil {
		flashRedirect(w, r, s, middleware.FlashErrors, "/account", messages(err)...)
		return
	}
	u, ok := c.currentUser(ctx, w, r)
	if !ok {
		return
	}
	if err := u.SetPassword(form.Password); err != nil {
		serverError(w, r, err)
		return
	}
	if err := c.Data.Save(ctx, u); err != nil {
		serverError(w, r, err)
		return
	}
	flashRedirect(w, r, s, middleware.FlashSuccess, "/account", "Password has been changed.")
}

// PostDeleteAccount removes the signed in user and signs out.
func (c *AccountController) PostDeleteAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: PostDeleteAccount")
	s := session(ctx)
	id, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		serverError(w, r, errMissingUser)
		return
	}
	if err := c.Data.Remove(ctx, id); err != nil && !isNotFound(err) {
		serverError(w, r, err)
		return
	}
	signOut(s)
	flashRedirect(w, r, s, middleware.FlashInfo, "/", "Your account has been deleted.")
}

// OAuthUnlink detaches an OAuth provider from the signed in user.
func (c *AccountController) OAuthUnlink(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: OAuthUnlink")
	s := session(ctx)
	provider := middleware.URLParam(ctx, "provider")
	u, ok := c.currentUser(ctx, w, r)
	if !ok {
		return
	}
	u.UnlinkProvider(provider)
	if err := c.Data.Save(ctx, u); err != nil {
		serverError(w, r, err)
		return
	}
	flashRedirect(w, r, s, middleware.FlashInfo, "/account", provider+" account has been unlinked.")
}
