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

// Package correlate matches asynchronous inbound notifications to the
// outbound requests that caused them.
//
// One entry exists per in-flight message id. An entry is resolved exactly
// once, by the first delivery carrying a terminal or interrupted task state;
// earlier non-terminal deliveries leave it waiting, later ones are dropped.
// A resolve racing a timeout is decided by a single winner under the
// registry lock.
package correlate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agentwire/a2acall/a2a"
	"github.com/agentwire/a2acall/log"
)

var (
	// ErrDuplicateID is returned by Register when the message id is already
	// awaiting a result. Message ids are client-generated and must be unique.
	ErrDuplicateID = errors.New("message id already registered")

	// ErrWaitTimeout is returned by Wait when no terminal result arrived
	// within the caller's budget.
	ErrWaitTimeout = errors.New("timed out waiting for task result")
)

// Notification is a parsed inbound push payload: the event plus whichever
// identifiers the remote agent included.
type Notification struct {
	// MessageID is the originating message id, when the payload carries one.
	MessageID string
	// TaskID is the server-side task id, when the payload carries one.
	TaskID a2a.TaskID
	// Event is the decoded result object.
	Event a2a.Event
}

// Registry is the correlation table shared between the dispatching flow and
// the webhook listener. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	pending map[string]*Pending
	byTask  map[a2a.TaskID]string
}

// NewRegistry creates an empty correlation table.
func NewRegistry() *Registry {
	return &Registry{
		pending: make(map[string]*Pending),
		byTask:  make(map[a2a.TaskID]string),
	}
}

// Pending is the waitable handle for one outstanding request.
type Pending struct {
	registry  *Registry
	messageID string

	// result is written once, before done is closed.
	result a2a.Event
	done   chan struct{}
}

// MessageID returns the client-generated message id the handle waits on.
func (p *Pending) MessageID() string {
	return p.messageID
}

// Register creates a waiting entry for a client-generated message id.
func (r *Registry) Register(messageID string) (*Pending, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[messageID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, messageID)
	}

	p := &Pending{registry: r, messageID: messageID, done: make(chan struct{})}
	r.pending[messageID] = p
	return p, nil
}

// BindTask maps a server-assigned task id back to the message that created
// the task, so notifications keyed only by task id can be correlated.
// Binding to an unknown or already-resolved message id is a no-op.
func (r *Registry) BindTask(taskID a2a.TaskID, messageID string) {
	if taskID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[messageID]; ok {
		r.byTask[taskID] = messageID
	}
}

// Deliver routes an inbound notification to its waiting entry. Deliveries
// that match nothing (late, duplicate, or unknown id) and deliveries with a
// non-terminal state are dropped; neither is an error.
func (r *Registry) Deliver(ctx context.Context, n Notification) {
	r.mu.Lock()

	p := r.lookupLocked(n)
	if p == nil {
		r.mu.Unlock()
		log.Info(ctx, "dropping notification with no pending correlation",
			"messageId", n.MessageID, "taskId", n.TaskID)
		return
	}

	state := a2a.EventState(n.Event)
	if !state.Terminal() && !state.Interrupted() {
		// Progress update: the entry stays waiting for a later delivery.
		if n.TaskID != "" {
			r.byTask[n.TaskID] = p.messageID
		}
		r.mu.Unlock()
		log.Debug(ctx, "non-terminal notification, still waiting",
			"messageId", p.messageID, "state", state)
		return
	}

	p.result = n.Event
	r.removeLocked(p)
	close(p.done)
	r.mu.Unlock()

	log.Debug(ctx, "notification resolved pending request",
		"messageId", p.messageID, "state", state)
}

// Wait blocks until the entry is resolved, the timeout elapses, or the
// context is canceled. On timeout the entry is unregistered, so a later
// delivery for it is dropped as orphaned rather than resolving anything.
func (p *Pending) Wait(ctx context.Context, timeout time.Duration) (a2a.Event, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.result, nil
	case <-timer.C:
		if result, resolved := p.registry.abandon(p); resolved {
			return result, nil
		}
		return nil, fmt.Errorf("%w (budget %s)", ErrWaitTimeout, timeout)
	case <-ctx.Done():
		if result, resolved := p.registry.abandon(p); resolved {
			return result, nil
		}
		return nil, ctx.Err()
	}
}

// Cancel unregisters the entry without waiting. Callers use it when the
// request turned out to be answered inline after all. Canceling a resolved
// entry is a no-op.
func (p *Pending) Cancel() {
	p.registry.abandon(p)
}

// abandon removes the entry unless a concurrent Deliver already resolved it,
// in which case the result is returned. The lock makes resolve-vs-timeout a
// single-winner race.
func (r *Registry) abandon(p *Pending) (a2a.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-p.done:
		return p.result, true
	default:
	}

	r.removeLocked(p)
	return nil, false
}

func (r *Registry) lookupLocked(n Notification) *Pending {
	if p, ok := r.pending[n.MessageID]; ok {
		return p
	}
	if mid, ok := r.byTask[n.TaskID]; ok {
		return r.pending[mid]
	}
	return nil
}

func (r *Registry) removeLocked(p *Pending) {
	delete(r.pending, p.messageID)
	for tid, mid := range r.byTask {
		if mid == p.messageID {
			delete(r.byTask, tid)
		}
	}
}
