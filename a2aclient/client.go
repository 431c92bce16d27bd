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

// Package a2aclient sends A2A JSON-RPC requests to a remote agent over HTTPS
// with OAuth2 bearer authentication.
package a2aclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agentwire/a2acall/a2a"
	"github.com/agentwire/a2acall/internal/jsonrpc"
	"github.com/agentwire/a2acall/log"
)

// agentEndpointFormat is the instance-relative execution endpoint, keyed by
// the agent's sys_id.
const agentEndpointFormat = "/api/sn_aia/a2a/v2/agent/id/%s"

// acceptedOutputModes is sent with every request; agents answer with
// structured JSON events.
var acceptedOutputModes = []string{"application/json"}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the instance root, e.g. https://example.service-now.com.
	BaseURL string
	// AgentID is the sys_id of the remote agent.
	AgentID string
	// Tokens supplies bearer tokens for outbound requests.
	Tokens *TokenSource
	// HTTPClient overrides the default client. message/send is not
	// idempotent, so the client must not retry on its own.
	HTTPClient *http.Client
}

// Client dispatches message/send calls to one remote agent.
type Client struct {
	endpoint   string
	tokens     *TokenSource
	httpClient *http.Client
}

// NewClient creates a Client from config.
func NewClient(config ClientConfig) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Minute}
	}
	return &Client{
		endpoint:   strings.TrimSuffix(config.BaseURL, "/") + fmt.Sprintf(agentEndpointFormat, config.AgentID),
		tokens:     config.Tokens,
		httpClient: httpClient,
	}
}

// DispatchConfig selects the delivery mode for one send.
type DispatchConfig struct {
	// WantPush asks the agent to deliver the final result to WebhookURL
	// instead of inline. Some agents demand a push config, others reject
	// one; the caller decides per attempt.
	WantPush bool
	// WebhookURL is the publicly reachable notification endpoint. Required
	// when WantPush is set.
	WebhookURL string
}

// Outcome is the immediate result of a send: either the final answer inline,
// or an acknowledgement that the answer will arrive via push notification.
type Outcome interface {
	isOutcome()
}

// Inline carries a final answer returned in the HTTP response itself: a
// direct message reply, or a task already in a terminal or interrupted state.
type Inline struct {
	Event a2a.Event
}

// Accepted means the agent queued the work. The final answer arrives
// out-of-band, correlated by MessageID or TaskID.
type Accepted struct {
	MessageID string
	TaskID    a2a.TaskID
	ContextID string
}

func (*Inline) isOutcome()   {}
func (*Accepted) isOutcome() {}

// SendMessage dispatches one message/send call. The message must carry a
// client-generated ID. RPC-level failures are returned as *a2a.Error with
// the remote code and message preserved; the call is never retried, since a
// duplicate send could start a second task.
func (c *Client) SendMessage(ctx context.Context, msg *a2a.Message, config DispatchConfig) (Outcome, error) {
	if msg.ID == "" {
		return nil, fmt.Errorf("message has no ID")
	}
	if config.WantPush && config.WebhookURL == "" {
		return nil, fmt.Errorf("push requested without a webhook URL")
	}

	sendConfig := &a2a.SendMessageConfig{AcceptedOutputModes: acceptedOutputModes}
	if config.WantPush {
		sendConfig.PushConfig = a2a.NewPushConfig(config.WebhookURL)
	}

	rpcReq := jsonrpc.ClientRequest{
		JSONRPC: jsonrpc.Version,
		Method:  jsonrpc.MethodMessageSend,
		Params: &a2a.SendMessageRequest{
			Message: msg,
			Config:  sendConfig,
		},
		ID: uuid.NewString(),
	}

	body, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", jsonrpc.ContentJSON)
	httpReq.Header.Set("Accept", jsonrpc.ContentJSON)
	httpReq.Header.Set("Authorization", "Bearer "+token)

	log.Debug(ctx, "dispatching message/send", "messageId", msg.ID, "push", config.WantPush)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			log.Error(ctx, "failed to close http response body", err)
		}
	}()

	if httpResp.StatusCode == http.StatusUnauthorized {
		// The send was not processed; drop the stale token so the next
		// attempt starts with a fresh one.
		c.tokens.Invalidate()
		return nil, fmt.Errorf("%w: agent rejected bearer token (status 401)", ErrAuthFailed)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected HTTP status: %s", httpResp.Status)
	}

	var rpcResp jsonrpc.ClientResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error.ToA2AError()
	}

	event, err := a2a.UnmarshalEvent(rpcResp.Result)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", a2a.ErrInvalidAgentResponse, err)
	}

	return classify(msg, event), nil
}

// classify decides whether the response event is a final inline answer or an
// acknowledgement of queued work.
func classify(msg *a2a.Message, event a2a.Event) Outcome {
	state := a2a.EventState(event)
	if state.Terminal() || state.Interrupted() {
		return &Inline{Event: event}
	}

	info := event.TaskInfo()
	return &Accepted{
		MessageID: msg.ID,
		TaskID:    info.TaskID,
		ContextID: info.ContextID,
	}
}
