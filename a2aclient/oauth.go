// Copyright 2026 The a2acall Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package a2aclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"

	"github.com/agentwire/a2acall/log"
)

// ErrAuthFailed classifies any failure to obtain an access token, including
// a rejected refresh token. Callers treat it as fatal: without a valid
// refresh token there is nothing to retry with.
var ErrAuthFailed = errors.New("authentication failed")

// tokenEndpointPath is the instance-relative OAuth token endpoint.
const tokenEndpointPath = "/oauth_token.do"

// tokenExpiryMargin is subtracted from the reported token lifetime so a
// token is refreshed before it can expire mid-request.
const tokenExpiryMargin = 60 * time.Second

// GrantReply holds the token endpoint's answer to a successful grant.
type GrantReply struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// TokenSourceConfig configures a TokenSource.
type TokenSourceConfig struct {
	// BaseURL is the instance root, e.g. https://example.service-now.com.
	BaseURL string
	// ClientID and ClientSecret identify the OAuth client application.
	ClientID     string
	ClientSecret string
	// RefreshToken is the long-lived credential used to mint access tokens.
	RefreshToken string
	// AccessToken optionally seeds a token obtained elsewhere. It is used
	// until first rejected or expired (its lifetime is unknown).
	AccessToken string
	// HTTPClient overrides the default retrying client.
	HTTPClient *retryablehttp.Client
	// OnRotate is invoked when the endpoint rotates the refresh token, so
	// the caller can persist the replacement. Optional.
	OnRotate func(refreshToken string)
}

// TokenSource produces bearer tokens for outbound requests, refreshing via
// the refresh-token grant as needed. Safe for concurrent use; concurrent
// refreshes collapse into one request and all callers share its outcome.
type TokenSource struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *retryablehttp.Client
	onRotate     func(string)

	group singleflight.Group

	mu           sync.Mutex
	refreshToken string
	accessToken  string
	expiry       time.Time
	seeded       bool

	now func() time.Time
}

// NewTokenSource creates a TokenSource from config.
func NewTokenSource(config TokenSourceConfig) *TokenSource {
	client := config.HTTPClient
	if client == nil {
		client = retryablehttp.NewClient()
		client.RetryMax = 1
		client.Logger = nil
	}
	return &TokenSource{
		baseURL:      strings.TrimSuffix(config.BaseURL, "/"),
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		httpClient:   client,
		onRotate:     config.OnRotate,
		refreshToken: config.RefreshToken,
		accessToken:  config.AccessToken,
		seeded:       config.AccessToken != "",
		now:          time.Now,
	}
}

// Token returns a bearer token valid for at least the expiry margin,
// refreshing first when the cached one is missing or stale.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	if token, ok := ts.cached(); ok {
		return token, nil
	}
	return ts.refresh(ctx)
}

// Invalidate discards the cached access token, forcing the next Token call
// to refresh. Used after the remote agent rejects the bearer.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.accessToken = ""
	ts.expiry = time.Time{}
	ts.seeded = false
}

func (ts *TokenSource) cached() (string, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.accessToken == "" {
		return "", false
	}
	// A seeded token has no known expiry; trust it until invalidated.
	if ts.seeded {
		return ts.accessToken, true
	}
	if ts.now().Add(tokenExpiryMargin).Before(ts.expiry) {
		return ts.accessToken, true
	}
	return "", false
}

// refresh performs the refresh-token grant. Followers arriving while a
// refresh is in flight wait for it instead of issuing their own.
func (ts *TokenSource) refresh(ctx context.Context) (string, error) {
	token, err, _ := ts.group.Do("refresh", func() (any, error) {
		// The leader may have already replaced the token by the time a
		// late follower gets here.
		if token, ok := ts.cached(); ok {
			return token, nil
		}

		ts.mu.Lock()
		refreshToken := ts.refreshToken
		ts.mu.Unlock()

		reply, err := requestGrant(ctx, ts.httpClient, ts.baseURL, url.Values{
			"grant_type":    {"refresh_token"},
			"client_id":     {ts.clientID},
			"client_secret": {ts.clientSecret},
			"refresh_token": {refreshToken},
		})
		if err != nil {
			return "", err
		}

		ts.mu.Lock()
		ts.accessToken = reply.AccessToken
		ts.expiry = ts.now().Add(reply.ExpiresIn)
		ts.seeded = false
		rotated := reply.RefreshToken != "" && reply.RefreshToken != ts.refreshToken
		if rotated {
			ts.refreshToken = reply.RefreshToken
		}
		ts.mu.Unlock()

		if rotated && ts.onRotate != nil {
			ts.onRotate(reply.RefreshToken)
		}

		log.Debug(ctx, "access token refreshed", "expiresIn", reply.ExpiresIn, "rotated", rotated)
		return reply.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// PasswordGrant exchanges user credentials for tokens via the resource owner
// password grant. Used once to bootstrap a refresh token; routine operation
// uses TokenSource.
func PasswordGrant(ctx context.Context, client *retryablehttp.Client, baseURL, clientID, clientSecret, username, password string) (*GrantReply, error) {
	if client == nil {
		client = retryablehttp.NewClient()
		client.RetryMax = 1
		client.Logger = nil
	}
	return requestGrant(ctx, client, strings.TrimSuffix(baseURL, "/"), url.Values{
		"grant_type":    {"password"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"username":      {username},
		"password":      {password},
	})
}

func requestGrant(ctx context.Context, client *retryablehttp.Client, baseURL string, form url.Values) (*GrantReply, error) {
	endpoint := baseURL + tokenEndpointPath
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: building token request: %w", ErrAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, fmt.Errorf("%w: token endpoint returned status %d: %s", ErrAuthFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// expires_in arrives as a number or a numeric string depending on the
	// instance version.
	var payload struct {
		AccessToken  string      `json:"access_token"`
		RefreshToken string      `json:"refresh_token"`
		ExpiresIn    json.Number `json:"expires_in"`
		Error        string      `json:"error"`
		Description  string      `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %w", ErrAuthFailed, err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrAuthFailed, payload.Error, payload.Description)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response contains no access_token", ErrAuthFailed)
	}

	expiresIn := time.Duration(0)
	if seconds, err := payload.ExpiresIn.Int64(); err == nil {
		expiresIn = time.Duration(seconds) * time.Second
	}

	return &GrantReply{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

const errBodyLimit = 2 << 10
