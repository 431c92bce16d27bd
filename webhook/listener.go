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

// Package webhook runs the inbound HTTP endpoint that receives asynchronous
// push notifications from remote agents and feeds them to the correlator.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentwire/a2acall/a2a"
	"github.com/agentwire/a2acall/correlate"
	"github.com/agentwire/a2acall/log"
)

const (
	defaultPath = "/webhook"

	// maxBodySize caps inbound notification bodies.
	maxBodySize = 4 << 20
)

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	// Addr is the listen address, e.g. ":5000".
	Addr string
	// Path is the notification path. Defaults to /webhook.
	Path string
	// Registry receives parsed notifications.
	Registry *correlate.Registry
}

// Listener is the inbound notification endpoint. It acknowledges every
// well-formed delivery with 200 regardless of whether it correlates to
// anything, so the remote agent never retries into a client that already
// moved on.
type Listener struct {
	registry *correlate.Registry
	router   chi.Router
	addr     string

	server   *http.Server
	listener net.Listener
}

// NewListener creates a Listener. Start must be called before notifications
// can arrive.
func NewListener(config ListenerConfig) *Listener {
	path := config.Path
	if path == "" {
		path = defaultPath
	}

	l := &Listener{
		registry: config.Registry,
		addr:     config.Addr,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post(path, l.handleNotification)
	r.Get("/health", handleHealth)
	l.router = r

	return l
}

// Handler exposes the routing table, mainly for tests.
func (l *Listener) Handler() http.Handler {
	return l.router
}

// Start binds the listen address and begins serving in the background. It
// returns once the socket is bound, so a webhook URL handed to the remote
// agent after Start is immediately reachable.
func (l *Listener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to bind webhook listener on %s: %w", l.addr, err)
	}
	l.listener = ln
	l.server = &http.Server{
		Handler:           l.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "webhook listener stopped", err)
		}
	}()

	log.Info(ctx, "webhook listener started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address. Valid after Start.
func (l *Listener) Addr() string {
	if l.listener == nil {
		return l.addr
	}
	return l.listener.Addr().String()
}

// Shutdown gracefully stops the listener. A Listener that was never started
// shuts down trivially.
func (l *Listener) Shutdown(ctx context.Context) error {
	if l.server == nil {
		return nil
	}
	return l.server.Shutdown(ctx)
}

// pushEnvelope covers the two delivery shapes seen in the wild: a bare event
// object, or the event nested under "result" JSON-RPC style.
type pushEnvelope struct {
	Result json.RawMessage `json:"result"`
}

func (l *Listener) handleNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	event, err := parseNotification(body)
	if err != nil {
		log.Warn(ctx, "rejecting malformed notification", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed notification"})
		return
	}

	// Acknowledge first: delivery status must not depend on correlation.
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})

	n := correlate.Notification{
		TaskID: event.TaskInfo().TaskID,
		Event:  event,
	}
	if msg, ok := event.(*a2a.Message); ok {
		n.MessageID = msg.ID
	}
	l.registry.Deliver(ctx, n)
}

// parseNotification decodes a notification body into an event, unwrapping a
// "result" envelope when present.
func parseNotification(body []byte) (a2a.Event, error) {
	var envelope pushEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Result) > 0 {
		body = envelope.Result
	}
	return a2a.UnmarshalEvent(body)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error(context.Background(), "failed to write response", err)
	}
}
