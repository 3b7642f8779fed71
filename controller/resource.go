package controller

import (
	"context"
	"net/http"
	"net/url"

	"camper/resources"
	"camper/view"

	log "github.com/sirupsen/logrus"
)

// ResourceController serves the content index.
type ResourceController struct {
	Index    *resources.Index
	Renderer view.Renderer
	// Client fetches pages for URLTitle, nil means http.DefaultClient.
	Client *http.Client
}

type dataResponse struct {
	Data interface{} `json:"data"`
}

// Home renders the challenge map.
func (c *ResourceController) Home(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: Home")
	render(w, r, c.Renderer, session(ctx), "home", "Free Code Camp", c.Index.ChallengeMapForDisplay())
}

func (c *ResourceController) FieldGuide(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log.Info("Handler: FieldGuide")
	render(w, r, c.Renderer, session(ctx), "field-guide", "Field Guide", c.Index.AllFieldGuideNamesAndIDs())
}

func (c *ResourceController) Challenges(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, &dataResponse{Data: c.Index.ChallengeMapForDisplay()})
}

func (c *ResourceController) FieldGuides(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, &dataResponse{Data: c.Index.AllFieldGuideNamesAndIDs()})
}

func (c *ResourceController) Nonprofits(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, &dataResponse{Data: c.Index.AllNonprofitNames()})
}

// URLTitle answers the title, image and description of the page at ?url=.
func (c *ResourceController) URLTitle(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		jsonError(w, r, cErrClient, "Missing url parameter")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		jsonError(w, r, cErrClient, "Invalid url parameter")
		return
	}
	info, err := resources.URLTitle(ctx, c.Client, u.String())
	if err != nil {
		log.Warnf("Could not fetch %s: %s", u, err)
		jsonError(w, r, http.StatusBadGateway, "Could not fetch url")
		return
	}
	writeJSON(w, r, &dataResponse{Data: info})
}
