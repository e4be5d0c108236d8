// Package googleauth runs the Google OAuth code flow and returns the
// verified email of the signed-in account.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var ErrEmailNotVerified = errors.New("googleauth: email not verified")

type Profile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

type Client struct {
	config      *oauth2.Config
	userInfoURL string
}

func New(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: defaultUserInfoURL,
	}
}

// WithEndpoints points the client at another provider, e.g. a test server.
func (c *Client) WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) *Client {
	cfg := *c.config
	cfg.Endpoint = endpoint
	return &Client{config: &cfg, userInfoURL: userInfoURL}
}

func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and reads the profile.
// Accounts whose email Google has not verified are rejected.
func (c *Client) Exchange(ctx context.Context, code string) (Profile, error) {
	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	resp, err := c.config.Client(ctx, tok).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Profile{}, fmt.Errorf("fetch userinfo: status %d: %s", resp.StatusCode, body)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if p.Email == "" || !p.EmailVerified {
		return Profile{}, ErrEmailNotVerified
	}
	return p, nil
}
