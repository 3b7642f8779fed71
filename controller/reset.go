package controller

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"time"

	"camper/middleware"

	log "github.com/sirupsen/logrus"
)

const resetTokenTTL = time.Hour

var randRead = rand.Read

// newResetToken returns 16 random bytes, hex encoded.
func newResetToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := randRead(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// mailHost is the host emailed links point to.
func (c *AccountController) mailHost(r *http.Request) string {
	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return r.Host
}

func (c *AccountController) Forgot(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: Forgot")
	render(w, r, c.Renderer, session(ctx), "forgot", "Forgot Password", nil)
}

// PostForgot stores a reset token on the account and mails the reset link.
func (c *AccountController) PostForgot(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: PostForgot")
	s := session(ctx)
	form := forgotForm{Email: formValue(r, "email")}
	if err := form.Validate(); err != nil {
		flashRedirect(w, r, s, middleware.FlashErrors, "/forgot", messages(err)...)
		return
	}
	token, err := newResetToken()
	if err != nil {
		serverError(w, r, err)
		return
	}
	u, err := c.Data.GetByEmail(ctx, form.Email)
	if isNotFound(err) {
		flashRedirect(w, r, s, middleware.FlashErrors, "/forgot", "No account with that email address exists.")
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = c.now().Add(resetTokenTTL)
	if err := c.Data.Save(ctx, u); err != nil {
		serverError(w, r, err)
		return
	}
	if err := c.Mailer.Send(ctx, c.Mail.ResetRequest(u.Email, c.mailHost(r), token)); err != nil {
		serverError(w, r, err)
		return
	}
	flashRedirect(w, r, s, middleware.FlashInfo, "/forgot",
		"An e-mail has been sent to "+u.Email+" with further instructions.")
}

// Reset renders the new password form for a live token.
func (c *AccountController) Reset(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: Reset")
	s := session(ctx)
	token := middleware.URLParam(ctx, "token")
	if _, err := c.Data.GetByResetToken(ctx, token, c.now()); isNotFound(err) {
		flashRedirect(w, r, s, middleware.FlashErrors, "/forgot", "Password reset token is invalid or has expired.")
		return
	} else if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, c.Renderer, s, "reset", "Password Reset", token)
}

// PostReset sets the new password, consumes the token and signs the user in.
func (c *AccountController) PostReset(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: PostReset")
	s := session(ctx)
	token := middleware.URLParam(ctx, "token")
	form := passwordForm{
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	if err := form.Validate(); err != nil {
		flashRedirect(w, r, s, middleware.FlashErrors, "/reset/"+url.PathEscape(token), messages(err)...)
		return
	}
	u, err := c.Data.GetByResetToken(ctx, token, c.now())
	if isNotFound(err) {
		flashRedirect(w, r, s, middleware.FlashErrors, "/forgot", "Password reset token is invalid or has expired.")
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	if err := u.SetPassword(form.Password); err != nil {
		serverError(w, r, err)
		return
	}
	u.ClearResetToken()
	if err := c.Data.Save(ctx, u); err != nil {
		serverError(w, r, err)
		return
	}
	signIn(s, u)
	if err := c.Mailer.Send(ctx, c.Mail.PasswordChanged(u.Email)); err != nil {
		log.Warnf("Could not send password change mail to %s: %s", u.Email, err)
	}
	flashRedirect(w, r, s, middleware.FlashSuccess, "/", "Success! Your password has been changed.")
}
