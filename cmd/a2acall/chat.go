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

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/agentwire/a2acall/a2a"
	"github.com/agentwire/a2acall/a2aclient"
	"github.com/agentwire/a2acall/a2aclient/agentcard"
	"github.com/agentwire/a2acall/config"
	"github.com/agentwire/a2acall/correlate"
	"github.com/agentwire/a2acall/log"
	"github.com/agentwire/a2acall/webhook"
)

type chatCmd struct {
	AgentID    string        `help:"Agent sys_id, overrides A2A_CLIENT_AGENT_ID." placeholder:"SYS_ID"`
	WebhookURL string        `help:"Public URL of the local webhook endpoint (e.g. a tunnel URL)." placeholder:"URL"`
	Port       int           `default:"5000" help:"Local port the webhook listener binds."`
	NoPush     bool          `help:"Do not request push notifications; only inline replies are shown."`
	Timeout    time.Duration `default:"120s" help:"How long to wait for an asynchronous result."`
}

// session tracks the task continuation state across chat turns.
type session struct {
	info a2a.TaskInfo
}

func (c *chatCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(cli.EnvFile)
	if err != nil {
		return err
	}

	agentID := c.AgentID
	if agentID == "" {
		agentID = cfg.AgentID
	}
	if agentID == "" {
		return fmt.Errorf("no agent selected: set %s or pass --agent-id", config.EnvAgentID)
	}

	webhookURL := c.WebhookURL
	if webhookURL == "" {
		webhookURL = cfg.WebhookURL
	}
	usePush := !c.NoPush
	if usePush && webhookURL == "" {
		return fmt.Errorf("push notifications need a public endpoint: set %s or pass --no-push", config.EnvWebhookURL)
	}

	tokens := a2aclient.NewTokenSource(a2aclient.TokenSourceConfig{
		BaseURL:      cfg.BaseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
		AccessToken:  cfg.AuthToken,
		OnRotate: func(refreshToken string) {
			log.Warn(ctx, "refresh token rotated, update your environment",
				config.EnvRefreshToken, refreshToken)
		},
	})

	card, err := fetchCard(ctx, cfg.BaseURL, agentID, tokens)
	if err != nil {
		return err
	}

	fmt.Printf("Connected to %s", card.Name)
	if card.Version != "" {
		fmt.Printf(" (v%s)", card.Version)
	}
	fmt.Println()
	if card.Description != "" {
		fmt.Println(card.Description)
	}
	if usePush && !card.Capabilities.PushNotifications {
		log.Warn(ctx, "agent card does not advertise push notification support; async results may never arrive")
	}

	registry := correlate.NewRegistry()
	if usePush {
		listener := webhook.NewListener(webhook.ListenerConfig{
			Addr:     fmt.Sprintf(":%d", c.Port),
			Path:     webhookPath(webhookURL),
			Registry: registry,
		})
		if err := listener.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := listener.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "webhook listener shutdown failed", err)
			}
		}()
	}

	client := a2aclient.NewClient(a2aclient.ClientConfig{
		BaseURL: cfg.BaseURL,
		AgentID: agentID,
		Tokens:  tokens,
	})

	fmt.Println(`Type a message and press enter. "exit" quits, "/new" starts a fresh conversation.`)

	sess := &session{}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return nil
		case line == "/new":
			sess.info = a2a.TaskInfo{}
			fmt.Println("Started a new conversation.")
			continue
		}

		if err := c.turn(ctx, client, registry, sess, line, usePush, webhookURL); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
	return scanner.Err()
}

func fetchCard(ctx context.Context, baseURL, agentID string, tokens *a2aclient.TokenSource) (*a2a.AgentCard, error) {
	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resolver := agentcard.NewResolver(nil)
	return resolver.Resolve(ctx, baseURL,
		agentcard.WithAgentID(agentID),
		agentcard.WithRequestHeader("Authorization", "Bearer "+token))
}

// turn runs one request/response exchange. RPC-level rejections are printed
// with the remote agent's own wording and do not end the session; transport
// and auth failures do.
func (c *chatCmd) turn(ctx context.Context, client *a2aclient.Client, registry *correlate.Registry, sess *session, line string, usePush bool, webhookURL string) error {
	msg := a2a.NewMessageForTask(a2a.MessageRoleUser, sess.info, a2a.NewTextPart(line))

	// Registered before dispatch: a notification can beat the HTTP response.
	var pending *correlate.Pending
	if usePush {
		var err error
		if pending, err = registry.Register(msg.ID); err != nil {
			return err
		}
	}

	outcome, err := client.SendMessage(ctx, msg, a2aclient.DispatchConfig{
		WantPush:   usePush,
		WebhookURL: webhookURL,
	})
	if err != nil {
		if pending != nil {
			pending.Cancel()
		}
		var rpcErr *a2a.Error
		if errors.As(err, &rpcErr) {
			fmt.Printf("agent error %d: %s\n", rpcErr.Code, rpcErr.Message)
			return nil
		}
		return err
	}

	switch o := outcome.(type) {
	case *a2aclient.Inline:
		if pending != nil {
			pending.Cancel()
		}
		render(o.Event, sess)

	case *a2aclient.Accepted:
		sess.update(a2a.TaskInfo{TaskID: o.TaskID, ContextID: o.ContextID})
		if pending == nil {
			fmt.Printf("Task %s queued, but push notifications are disabled; its result will not be shown.\n", o.TaskID)
			return nil
		}
		registry.BindTask(o.TaskID, msg.ID)

		fmt.Println("Working...")
		event, err := pending.Wait(ctx, c.Timeout)
		if errors.Is(err, correlate.ErrWaitTimeout) {
			fmt.Printf("No result after %s. The task may still complete; start a new message to continue.\n", c.Timeout)
			return nil
		}
		if err != nil {
			return err
		}
		render(event, sess)
	}
	return nil
}

// render prints the agent's answer and advances the session state.
func render(event a2a.Event, sess *session) {
	text := a2a.EventText(event)
	state := a2a.EventState(event)

	switch {
	case state == a2a.TaskStateFailed && text == "":
		fmt.Println("agent> (task failed)")
	case text == "":
		fmt.Printf("agent> (no text content, state %s)\n", state)
	default:
		fmt.Printf("agent> %s\n", text)
	}

	sess.update(event.TaskInfo())

	if state.Interrupted() {
		fmt.Println("(the agent is waiting for your input)")
		return
	}
	if state.Terminal() {
		// The task is finished; the next message starts a new one in the
		// same context.
		sess.info.TaskID = ""
	}
}

func (s *session) update(info a2a.TaskInfo) {
	if info.TaskID != "" {
		s.info.TaskID = info.TaskID
	}
	if info.ContextID != "" {
		s.info.ContextID = info.ContextID
	}
}

// webhookPath extracts the notification path from the public webhook URL, so
// the local listener serves the same path the tunnel forwards to.
func webhookPath(webhookURL string) string {
	u, err := url.Parse(webhookURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	return u.Path
}
