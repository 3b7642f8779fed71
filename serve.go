package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"camper/clock"
	"camper/config"
	"camper/controller"
	"camper/mailer"
	"camper/middleware"
	"camper/oidc"
	"camper/resources"
	"camper/view"

	"github.com/gorilla/handlers"
	"github.com/gorilla/securecookie"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE:  runServe,
}

func newMailer(cfg config.MailConfig) mailer.Mailer {
	if cfg.Host == "" {
		log.Warn("No mail host configured, mails are discarded")
		return mailer.Discard{}
	}
	return &mailer.SMTP{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	}
}

func newSession(cfg *config.Config) (*middleware.Session, error) {
	hashKey, blockKey, err := cfg.SessionKeys()
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		log.Warn("No session hash key configured, sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(32)
	}
	m := &middleware.Session{}
	m.Init(hashKey, blockKey, cfg.Environment == "production")
	return m, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	idx, err := resources.Load(&resources.DirLoader{Dir: cfg.SeedDir}, cfg.Environment)
	if err != nil {
		return err
	}
	templates, err := view.New(cfg.SiteName)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	sess, err := newSession(cfg)
	if err != nil {
		return err
	}

	a := &app{
		session:     sess,
		sessionName: cfg.Session.Name,
		timeout:     cfg.GetRequestTimeout(),
		account: &controller.AccountController{
			Data:     st.UserPeer(),
			Stories:  st.StoryPeer(),
			Comments: st.CommentPeer(),
			Mailer:   newMailer(cfg.Mail),
			Mail:     mailer.Templates{SiteName: cfg.SiteName, From: cfg.Mail.From},
			Renderer: templates,
			Clock:    clock.NewRealClock(),
			Location: loc,
			BaseURL:  cfg.BaseURL,
		},
		resources: &controller.ResourceController{
			Index:    idx,
			Renderer: templates,
			Client:   &http.Client{Timeout: 10 * time.Second},
		},
	}
	if g := cfg.OIDC.Google; g.ClientID != "" {
		a.google = controller.NewAuthController(st.UserPeer(), &oidc.Google{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURI:  g.RedirectURI,
			SessionStore: sess.Store(),
		}, "google")
	}

	var h http.Handler = a.router()
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	h = handlers.CombinedLoggingHandler(log.StandardLogger().Writer(), h)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", cfg.Listen)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
