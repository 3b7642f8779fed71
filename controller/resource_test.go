package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"camper/resources"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct{}

func (stubLoader) LoadChallengeBlocks() ([]resources.ChallengeBlock, error) {
	return []resources.ChallengeBlock{
		{Name: "Basic JavaScript", Order: 2, Challenges: []resources.Challenge{{ID: "c2", Name: "Comment your code"}}},
		{Name: "Getting Started", Order: 1, Challenges: []resources.Challenge{{ID: "c1", Name: "Join our chat"}}},
	}, nil
}

func (stubLoader) LoadFieldGuides() ([]resources.FieldGuide, error) {
	return []resources.FieldGuide{{ID: "f1", Name: "How to Start", DashedName: "how-to-start"}}, nil
}

func (stubLoader) LoadNonprofits() ([]resources.Nonprofit, error) {
	return []resources.Nonprofit{{ID: "n1", Name: "Save the Camps"}}, nil
}

func (stubLoader) LoadPhrases() (*resources.Phrases, error) {
	return &resources.Phrases{}, nil
}

func newResourceController(t *testing.T) (*ResourceController, *mockRenderer) {
	idx, err := resources.Load(stubLoader{}, "test")
	require.NoError(t, err)
	rd := &mockRenderer{}
	return &ResourceController{Index: idx, Renderer: rd}, rd
}

func TestResourceHome(t *testing.T) {
	assert := assert.New(t)
	c, rd := newResourceController(t)
	ctx, r, _ := testRequest("GET", "/", nil, nil, "")
	c.Home(ctx, httptest.NewRecorder(), r)
	assert.Equal("home", rd.name)
	blocks := rd.page.Data.([]resources.DisplayBlock)
	require.Len(t, blocks, 2)
	assert.Equal("Getting Started", blocks[0].Name)

	c.FieldGuide(ctx, httptest.NewRecorder(), r)
	assert.Equal("field-guide", rd.name)
}

func TestResourceJSON(t *testing.T) {
	assert := assert.New(t)
	c, _ := newResourceController(t)
	ctx, r, _ := testRequest("GET", "/api/challenges", nil, nil, "")

	w := httptest.NewRecorder()
	c.Challenges(ctx, w, r)
	var challenges struct {
		Data []resources.DisplayBlock `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenges))
	require.Len(t, challenges.Data, 2)
	assert.Equal("Getting-Started", challenges.Data[0].DashedName)
	assert.Equal(1, challenges.Data[1].Count)

	w = httptest.NewRecorder()
	c.FieldGuides(ctx, w, r)
	assert.JSONEq(`{"data":[{"name":"How to Start","dashedName":"how-to-start","id":"f1"}]}`, w.Body.String())

	w = httptest.NewRecorder()
	c.Nonprofits(ctx, w, r)
	assert.JSONEq(`{"data":[{"name":"Save the Camps"}]}`, w.Body.String())
}

func TestResourceURLTitle(t *testing.T) {
	assert := assert.New(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><head><title>Camp News</title></head></html>`))
	}))
	defer ts.Close()
	c, _ := newResourceController(t)
	c.Client = ts.Client()

	ctx, r, _ := testRequest("GET", "/api/url-title?url="+ts.URL+"/page", nil, nil, "")
	w := httptest.NewRecorder()
	c.URLTitle(ctx, w, r)
	assert.Equal(http.StatusOK, w.Code)
	assert.Contains(w.Body.String(), `"title":"Camp News"`)

	for target, code := range map[string]int{
		"/api/url-title":                          http.StatusBadRequest,
		"/api/url-title?url=ftp://example.com/x":  http.StatusBadRequest,
		"/api/url-title?url=" + ts.URL + "/missing": http.StatusBadGateway,
	} {
		ctx, r, _ := testRequest("GET", target, nil, nil, "")
		w := httptest.NewRecorder()
		c.URLTitle(ctx, w, r)
		assert.Equal(code, w.Code, target)
	}
}
