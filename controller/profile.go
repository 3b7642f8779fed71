package controller

import (
	"context"
	"net/http"

	"camper/middleware"
	"camper/model"

	log "github.com/sirupsen/logrus"
)

// profileView is the data of the public profile page.
type profileView struct {
	Profile       model.Profile
	Portfolio     model.Portfolio
	LongestStreak string
	CurrentStreak string
	Calendar      map[int64]int
	Challenges    []model.CompletedChallenge
	Bonfires      []model.CompletedChallenge
}

// Show renders the public profile of :username. The streaks are
// recomputed and stored on every view.
func (c *AccountController) Show(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: Show")
	s := session(ctx)
	username := model.NormalizeKey(middleware.URLParam(ctx, "username"))
	u, err := c.Data.GetByUsername(ctx, username)
	if isNotFound(err) {
		flashRedirect(w, r, s, middleware.FlashErrors, "/",
			"404: We couldn't find a page with that url. Please double check the link.")
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	u.RefreshStreaks(c.now(), c.Location)
	if err := c.Data.Save(ctx, u); err != nil {
		serverError(w, r, err)
		return
	}
	view := &profileView{
		Profile:       u.Profile,
		Portfolio:     u.Portfolio,
		LongestStreak: model.FormatStreak(u.LongestStreak),
		CurrentStreak: model.FormatStreak(u.CurrentStreak),
		Calendar:      model.Calendar(u.ProgressTimestamps),
		Challenges:    u.ChallengesOfType(model.ChallengeTypeZipline, model.ChallengeTypeBasejump),
		Bonfires:      u.ChallengesOfType(model.ChallengeTypeBonfire),
	}
	render(w, r, c.Renderer, s, "show", "Camper "+u.Profile.Username+"'s portfolio", view)
}
