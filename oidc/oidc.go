package oidc

import "net/http"

// Identity is what a provider proved about the user.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// Provider represents an OpenID Connect client
type Provider interface {
	NewAuth(w http.ResponseWriter, r *http.Request)
	Callback(w http.ResponseWriter, r *http.Request) (*Identity, error)
}
