package oauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var ErrNoCredentials = errors.New("no authentication credentials provided")

// Credentials for an upstream API. Client credentials win over basic auth
// when both are present.
type Credentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Username     string
	Password     string
}

func (c Credentials) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c Credentials) HasBasicAuth() bool {
	return c.Username != "" && c.Password != ""
}

// NewHTTPClient returns a client that authenticates every request. A base
// client stored in ctx under oauth2.HTTPClient is used for token requests.
func NewHTTPClient(ctx context.Context, creds Credentials, timeout time.Duration) (*http.Client, error) {
	switch {
	case creds.HasClientCredentials():
		config := &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     creds.TokenURL,
			Scopes:       creds.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		client := config.Client(ctx)
		client.Timeout = timeout
		return client, nil

	case creds.HasBasicAuth():
		base := http.DefaultTransport
		if hc, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && hc.Transport != nil {
			base = hc.Transport
		}
		return &http.Client{
			Transport: &basicAuthTransport{username: creds.Username, password: creds.Password, base: base},
			Timeout:   timeout,
		}, nil
	}
	return nil, ErrNoCredentials
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(clone)
}
