package main

import (
	"context"
	"net/http"
	"time"

	"camper/controller"
	"camper/middleware"

	"github.com/rs/xhandler"
	"github.com/zenazn/goji/web"
)

const defaultSessionName = "camper"

type app struct {
	session     *middleware.Session
	sessionName string
	timeout     time.Duration
	account     *controller.AccountController
	resources   *controller.ResourceController
	// google is nil when Google sign in is not configured.
	google *controller.AuthController
}

func handle(ctx context.Context, handlerc xhandler.HandlerC) web.HandlerFunc {
	return func(c web.C, w http.ResponseWriter, r *http.Request) {
		newctx := middleware.WithURLParams(ctx, c.URLParams)
		handlerc.ServeHTTPC(newctx, w, r)
	}
}

// Obsolete pending pull request: https://github.com/rs/xhandler/pull/3
func handlerC(c xhandler.Chain, xh xhandler.HandlerC) xhandler.HandlerC {
	for i := len(c) - 1; i >= 0; i-- {
		xh = c[i](xh)
	}
	return xh
}

func extend(c xhandler.Chain, more ...func(next xhandler.HandlerC) xhandler.HandlerC) xhandler.Chain {
	res := append(xhandler.Chain{}, c...)
	for _, m := range more {
		res.UseC(m)
	}
	return res
}

func (a *app) router() *web.Mux {
	// Middleware
	pages := xhandler.Chain{}
	pages.UseC(xhandler.TimeoutHandler(a.timeout))
	name := a.sessionName
	if name == "" {
		name = defaultSessionName
	}
	pages.UseC(a.session.Enable(name))
	authed := extend(pages, middleware.AuthenticatedFilter("/signin"), middleware.UserContext())
	signedOut := extend(pages, middleware.UnauthenticatedFilter("/"))
	api := extend(pages, middleware.JSONWrapper())

	mainContext := context.Background()
	route := func(c xhandler.Chain, f xhandler.HandlerFuncC) web.HandlerFunc {
		return handle(mainContext, handlerC(c, f))
	}

	// Router
	mux := web.New()
	mux.Get("/login", http.RedirectHandler("/signin", http.StatusMovedPermanently))
	mux.Get("/logout", http.RedirectHandler("/signout", http.StatusMovedPermanently))

	mux.Get("/", route(pages, a.resources.Home))
	mux.Get("/field-guide", route(pages, a.resources.FieldGuide))
	mux.Get("/api/challenges", route(api, a.resources.Challenges))
	mux.Get("/api/field-guides", route(api, a.resources.FieldGuides))
	mux.Get("/api/nonprofits", route(api, a.resources.Nonprofits))
	mux.Get("/api/url-title", route(api, a.resources.URLTitle))

	ac := a.account
	mux.Get("/signin", route(signedOut, ac.Signin))
	mux.Post("/signin", route(pages, ac.PostSignin))
	mux.Get("/signout", route(pages, ac.Signout))
	mux.Get("/email-signin", route(signedOut, ac.EmailSignin))
	mux.Post("/email-signin", route(pages, ac.PostSignin))
	mux.Get("/email-signup", route(signedOut, ac.EmailSignup))
	mux.Post("/email-signup", route(pages, ac.PostEmailSignup))
	mux.Get("/forgot", route(signedOut, ac.Forgot))
	mux.Post("/forgot", route(pages, ac.PostForgot))
	mux.Get("/reset/:token", route(signedOut, ac.Reset))
	mux.Post("/reset/:token", route(pages, ac.PostReset))

	mux.Get("/account", route(authed, ac.Account))
	mux.Get("/account/api", route(api, ac.AccountAPI))
	mux.Post("/account/profile", route(authed, ac.PostUpdateProfile))
	mux.Post("/account/password", route(authed, ac.PostUpdatePassword))
	mux.Post("/account/delete", route(authed, ac.PostDeleteAccount))
	mux.Get("/account/unlink/:provider", route(authed, ac.OAuthUnlink))

	mux.Get("/api/checkUniqueUsername/:username", route(api, ac.CheckUniqueUsername))
	mux.Get("/api/checkExistingUsername/:username", route(api, ac.CheckExistingUsername))
	mux.Get("/api/checkUniqueEmail/:email", route(api, ac.CheckUniqueEmail))

	if a.google != nil {
		mux.Get("/auth/google", route(pages, a.google.Login))
		mux.Get("/auth/google/callback", route(pages, a.google.Callback("/")))
	}

	// Catches every remaining single segment path
	mux.Get("/:username", route(pages, ac.Show))
	return mux
}
