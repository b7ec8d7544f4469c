package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"redditstats/pkg/config"
	errs "redditstats/pkg/errors"
	"redditstats/pkg/logger"
)

// TokenSource supplies the bearer token attached to API requests
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// tokenResponse is the body of a successful access_token exchange
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
}

// Authenticator obtains access tokens with the OAuth2 password grant. The
// application id and secret are sent as HTTP basic auth.
type Authenticator struct {
	httpClient *http.Client
	authURL    string
	appID      string
	secret     string
	username   string
	password   string
	userAgent  string
	logger     logger.Logger
}

// NewAuthenticator creates an Authenticator from the reddit settings in cfg
func NewAuthenticator(cfg *config.Config, httpClient *http.Client, log logger.Logger) *Authenticator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Authenticator{
		httpClient: httpClient,
		authURL:    cfg.Reddit.AuthURL,
		appID:      cfg.Reddit.AppID,
		secret:     cfg.Reddit.Secret,
		username:   cfg.Reddit.Username,
		password:   cfg.Reddit.Password,
		userAgent:  cfg.UserAgent(),
		logger:     log,
	}
}

// Token exchanges the account credentials for an access token. Any status
// other than 200, or a body without access_token, is an authorization error.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {a.username},
		"password":   {a.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.appID, a.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", a.userAgent)

	a.logger.DebugWithFields("requesting access token", map[string]interface{}{
		"url":      a.authURL,
		"username": a.username,
	})

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", errs.NewNetworkError(a.authURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.NewNetworkError(a.authURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.ErrorWithFields("token request rejected", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return "", errs.NewAuthError(resp.StatusCode, string(body), nil)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", errs.NewAuthError(resp.StatusCode, string(body), err)
	}
	if token.AccessToken == "" {
		var cause error
		if token.Error != "" {
			cause = fmt.Errorf("%s", token.Error)
		}
		return "", errs.NewAuthError(resp.StatusCode, string(body), cause)
	}

	a.logger.InfoWithFields("authorized", map[string]interface{}{
		"username": a.username,
		"scope":    token.Scope,
	})
	return token.AccessToken, nil
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

// Token implements TokenSource
func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}
