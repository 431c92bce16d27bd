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

// Package config loads client settings from the environment, optionally
// seeded from a .env file. Real environment variables win over file values.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvBaseURL      = "A2A_CLIENT_BASE_URL"
	EnvClientID     = "A2A_CLIENT_ID"
	EnvClientSecret = "A2A_CLIENT_SECRET"
	EnvRefreshToken = "A2A_CLIENT_REFRESH_TOKEN"
	EnvAuthToken    = "A2A_CLIENT_AUTH_TOKEN"
	EnvAgentID      = "A2A_CLIENT_AGENT_ID"
	EnvWebhookURL   = "A2A_WEBHOOK_URL"
)

// ErrMissingConfig indicates required settings are absent.
var ErrMissingConfig = errors.New("missing configuration")

// Config holds everything needed to talk to one remote agent.
type Config struct {
	// BaseURL is the instance root, e.g. https://example.service-now.com.
	BaseURL string
	// ClientID and ClientSecret identify the OAuth client application.
	ClientID     string
	ClientSecret string
	// RefreshToken is the long-lived OAuth credential.
	RefreshToken string
	// AuthToken optionally seeds an access token obtained out-of-band.
	AuthToken string
	// AgentID is the sys_id of the remote agent. May be overridden per run.
	AgentID string
	// WebhookURL is the publicly reachable push notification endpoint.
	WebhookURL string
}

// Load reads settings from the environment after merging in the .env file at
// path, if one exists. Pass an empty path to skip the file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	return c, c.validate(true)
}

// LoadBootstrap is Load for the token bootstrap flow, where no refresh or
// access token exists yet. Only the instance URL and client credentials are
// required.
func LoadBootstrap(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	return c, c.validate(false)
}

func read(path string) (*Config, error) {
	if path != "" {
		// Load never overrides variables already set in the environment.
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	return &Config{
		BaseURL:      strings.TrimSuffix(os.Getenv(EnvBaseURL), "/"),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		RefreshToken: os.Getenv(EnvRefreshToken),
		AuthToken:    os.Getenv(EnvAuthToken),
		AgentID:      os.Getenv(EnvAgentID),
		WebhookURL:   os.Getenv(EnvWebhookURL),
	}, nil
}

func (c *Config) validate(needToken bool) error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, EnvBaseURL)
	}
	if c.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if c.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	// A seeded access token can stand in for a refresh token, but only
	// until it expires.
	if needToken && c.RefreshToken == "" && c.AuthToken == "" {
		missing = append(missing, EnvRefreshToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s is not a valid URL: %q", ErrMissingConfig, EnvBaseURL, c.BaseURL)
	}
	return nil
}
