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

// Package agentcard fetches and decodes remote agent cards.
package agentcard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/agentwire/a2acall/a2a"
)

const defaultAgentCardPath = "/.well-known/agent-card.json"

// errBodyLimit caps how much of an error response is kept for reporting.
const errBodyLimit = 2 << 10

// ErrCardFetch classifies any failure to obtain or decode an agent card.
// Card resolution happens at startup, so callers treat it as fatal.
var ErrCardFetch = errors.New("agent card fetch failed")

// ErrStatusNotOK is returned when the card endpoint answers with a non-200
// status. The response body prefix is retained for diagnostics.
type ErrStatusNotOK struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *ErrStatusNotOK) Error() string {
	return fmt.Sprintf("agent card endpoint returned status %d", e.StatusCode)
}

// Unwrap makes the error match ErrCardFetch.
func (e *ErrStatusNotOK) Unwrap() error {
	return ErrCardFetch
}

type resolveConfig struct {
	path   string
	header http.Header
}

// ResolveOption customizes a single Resolve call.
type ResolveOption func(*resolveConfig)

// WithPath overrides the default well-known card path. A missing leading
// slash is tolerated.
func WithPath(path string) ResolveOption {
	return func(c *resolveConfig) {
		c.path = "/" + strings.TrimPrefix(path, "/")
	}
}

// WithAgentID targets a ServiceNow-style deployment where cards are served
// per agent sys_id instead of at the well-known path.
func WithAgentID(sysID string) ResolveOption {
	return WithPath("/api/sn_aia/a2a/v2/agent_card/id/" + sysID)
}

// WithRequestHeader adds a header to the card request, e.g. Authorization.
func WithRequestHeader(name, value string) ResolveOption {
	return func(c *resolveConfig) {
		if c.header == nil {
			c.header = http.Header{}
		}
		c.header.Add(name, value)
	}
}

// Resolver fetches agent cards over HTTP. The zero value is usable and
// retries transient failures with a default client; card fetches are
// idempotent GETs, so retrying is safe.
type Resolver struct {
	client *retryablehttp.Client
}

// NewResolver creates a Resolver using the provided client. A nil client
// selects a default one.
func NewResolver(client *retryablehttp.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve fetches the agent card published under baseURL.
func (r *Resolver) Resolve(ctx context.Context, baseURL string, opts ...ResolveOption) (*a2a.AgentCard, error) {
	config := resolveConfig{path: defaultAgentCardPath}
	for _, opt := range opts {
		opt(&config)
	}

	url := strings.TrimSuffix(baseURL, "/") + config.path
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %w", ErrCardFetch, url, err)
	}
	for name, values := range config.header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCardFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, &ErrStatusNotOK{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var card a2a.AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("%w: decoding card from %s: %w", ErrCardFetch, url, err)
	}
	return &card, nil
}

func (r *Resolver) httpClient() *retryablehttp.Client {
	if r.client != nil {
		return r.client
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	return client
}
