package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"camper/middleware"

	"github.com/stretchr/testify/assert"
)

func TestJsonError(t *testing.T) {
	assert := assert.New(t)
	const output = `{"errors":[{"status":"400","title":"MyError"}]}`
	w := httptest.NewRecorder()
	jsonError(w, nil, cErrClient, "MyError")
	assert.Equal(output, w.Body.String(), "Invalid response")
	assert.Equal(http.StatusBadRequest, w.Code, "Invalid statuscode")
}

func TestFlashRedirect(t *testing.T) {
	assert := assert.New(t)
	_, r, s := testRequest("POST", "/x", nil, nil, "")
	w := httptest.NewRecorder()
	flashRedirect(w, r, s, middleware.FlashInfo, "/done", "one", "two")
	assert.Equal(http.StatusFound, w.Code)
	assert.Equal("/done", w.Header().Get("Location"))
	assert.NotEmpty(w.Header().Get("Set-Cookie"))
	assert.Equal([]string{"one", "two"}, middleware.Flashes(s)[middleware.FlashInfo])
}

func TestRenderError(t *testing.T) {
	_, r, s := testRequest("GET", "/", nil, nil, "")
	w := httptest.NewRecorder()
	render(w, r, &mockRenderer{err: errors.New("broken template")}, s, "home", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMessages(t *testing.T) {
	assert := assert.New(t)
	err := signupForm{Email: "x", Username: "abc", Password: "short"}.Validate()
	assert.Equal([]string{
		"valid email required",
		"Your password is too short",
		"Your username must be between 5 and 20 characters",
	}, messages(err))
	assert.Equal([]string{"plain"}, messages(errors.New("plain")))
	assert.NoError(signupForm{Email: "camper@example.com", Username: "camper", Password: "longenough"}.Validate())
}
