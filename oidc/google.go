package oidc

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://www.googleapis.com/oauth2/v4/token"
	googleCertsURL = "https://www.googleapis.com/oauth2/v1/certs"

	sessionName = "goidc"
)

// Google represents an OpenID Connect client for http://accounts.google.com
type Google struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	SessionStore sessions.Store

	// Client defaults to http.DefaultClient.
	Client *http.Client
	// Endpoint overrides, empty means Google's.
	AuthURL  string
	TokenURL string
	CertsURL string
}

func (o *Google) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

func or(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

// NewAuth initializes a new OpenID Connect Session and redirects the user
func (o *Google) NewAuth(w http.ResponseWriter, r *http.Request) {
	nonce := uuid.NewV4().String()
	state := uuid.NewV4().String()

	vals := url.Values{}
	vals.Add("client_id", o.ClientID)
	vals.Add("response_type", "code")
	// Profile and email scopes put name and email into the id token, no userinfo request needed
	vals.Add("scope", "openid profile email")
	vals.Add("redirect_uri", o.RedirectURI)
	vals.Add("nonce", nonce)
	vals.Add("state", state)

	// CSRF Prevention using nonce and state
	session, _ := o.SessionStore.Get(r, sessionName)
	session.Values["nonce"] = nonce
	session.Values["state"] = state
	session.Save(r, w)

	http.Redirect(w, r, or(o.AuthURL, googleAuthURL)+"?"+vals.Encode(), http.StatusFound)
}

// Callback handles the callback from the user after the identity provider provided a code to the users agent
func (o *Google) Callback(w http.ResponseWriter, r *http.Request) (*Identity, error) {
	session, _ := o.SessionStore.Get(r, sessionName)
	oidcState, ok := session.Values["state"].(string)
	if !ok {
		return nil, errors.New("session 'state' not found")
	}
	oidcNonce, ok := session.Values["nonce"].(string)
	if !ok {
		return nil, errors.New("session 'nonce' not found")
	}
	// Delete CSRF Tokens afterwards
	defer func() {
		delete(session.Values, "nonce")
		delete(session.Values, "state")
		session.Save(r, w)
	}()

	if err := r.ParseForm(); err != nil {
		return nil, errors.Wrap(err, "could not parse form")
	}
	if e := r.Form.Get("error"); e != "" {
		return nil, errors.Errorf("authorization denied: %s", e)
	}
	code := r.Form.Get("code")
	if code == "" {
		return nil, errors.New("did not receive code")
	}

	// CSRF Prevention using state
	if state := r.Form.Get("state"); state != oidcState {
		return nil, errors.Errorf("could not verify CSRF Token 'state': want: %s, got %s", oidcState, state)
	}

	idToken, err := o.exchange(r, code)
	if err != nil {
		return nil, err
	}
	keys, err := o.certs(r)
	if err != nil {
		return nil, err
	}

	// JWT - Verification including signing method
	token, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("key id not found")
		}
		key, ok := keys[kid]
		if !ok {
			return nil, errors.Errorf("could not find public key for kid: %s", kid)
		}
		return jwt.ParseRSAPublicKeyFromPEM([]byte(key))
	})
	if err != nil || token == nil || !token.Valid {
		if ve, ok := err.(*jwt.ValidationError); ok {
			if ve.Errors&jwt.ValidationErrorMalformed != 0 {
				return nil, errors.New("ID Token is malformed")
			} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
				return nil, errors.Wrap(err, "ID Token is expired or not active yet")
			}
		}
		return nil, errors.Wrap(err, "could not handle ID Token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return o.identity(claims, oidcNonce)
}

// exchange trades the authorization code for an id token.
func (o *Google) exchange(r *http.Request, code string) (string, error) {
	vals := url.Values{}
	vals.Add("code", code)
	vals.Add("redirect_uri", o.RedirectURI)
	vals.Add("client_id", o.ClientID)
	vals.Add("client_secret", o.ClientSecret)
	vals.Add("grant_type", "authorization_code")

	req, err := http.NewRequest("POST", or(o.TokenURL, googleTokenURL), strings.NewReader(vals.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "could not build request")
	}
	req = req.WithContext(r.Context())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := o.client().Do(req)
	if err != nil {
		return "", errors.Wrap(err, "error on token exchange request")
	}
	defer resp.Body.Close()
	var respValues map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&respValues); err != nil {
		return "", errors.Wrap(err, "error decoding token exchange resp to json")
	}
	if _, ok := respValues["error"]; ok {
		return "", errors.Errorf("error returned by the api: %v", respValues)
	}
	idToken, _ := respValues["id_token"].(string)
	if idToken == "" {
		return "", errors.Errorf("no id token received: %#v", respValues)
	}
	return idToken, nil
}

// certs fetches Google's signing certificates keyed by kid.
func (o *Google) certs(r *http.Request) (map[string]string, error) {
	req, err := http.NewRequest("GET", or(o.CertsURL, googleCertsURL), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}
	resp, err := o.client().Do(req.WithContext(r.Context()))
	if err != nil {
		return nil, errors.Wrap(err, "could not get keys from server")
	}
	defer resp.Body.Close()
	var keys map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		return nil, errors.Wrap(err, "error decoding certificates from json")
	}
	return keys, nil
}

func (o *Google) identity(claims jwt.MapClaims, oidcNonce string) (*Identity, error) {
	// CSRF Prevention using nonce
	nonce, ok := claims["nonce"].(string)
	if !ok {
		return nil, errors.Errorf("no nonce in claims: %v", claims)
	}
	if nonce != oidcNonce {
		return nil, errors.Errorf("could not verify CSRF Token 'nonce': want: %s, got %s", oidcNonce, nonce)
	}
	if !claims.VerifyAudience(o.ClientID, true) {
		return nil, errors.Errorf("verification of token 'audience' failed: %v", claims["aud"])
	}
	uid, ok := claims["sub"].(string)
	if !ok || uid == "" {
		return nil, errors.New("could not get a unique user id")
	}
	id := &Identity{ID: uid}
	id.Name, _ = claims["name"].(string)
	id.Email, _ = claims["email"].(string)
	return id, nil
}
