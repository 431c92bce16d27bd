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

package correlate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/agentwire/a2acall/a2a"
)

func completedTask(id a2a.TaskID, text string) *a2a.Task {
	return &a2a.Task{
		ID:        id,
		ContextID: "ctx-1",
		Status: a2a.TaskStatus{
			State:   a2a.TaskStateCompleted,
			Message: a2a.NewMessage(a2a.MessageRoleAgent, a2a.NewTextPart(text)),
		},
	}
}

func statusUpdate(id a2a.TaskID, state a2a.TaskState) *a2a.TaskStatusUpdateEvent {
	return &a2a.TaskStatusUpdateEvent{
		TaskID:    id,
		ContextID: "ctx-1",
		Status:    a2a.TaskStatus{State: state},
	}
}

func TestRegisterDuplicateID(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("m1"); err != nil {
		t.Fatalf("first Register() failed: %v", err)
	}
	if _, err := r.Register("m1"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("second Register() = %v, want ErrDuplicateID", err)
	}
}

func TestDeliverResolvesByMessageID(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	want := completedTask("t1", "done")
	r.Deliver(context.Background(), Notification{MessageID: "m1", TaskID: "t1", Event: want})

	got, err := p.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Wait() result mismatch (-want +got):\n%s", diff)
	}
}

func TestDeliverResolvesByBoundTaskID(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	r.BindTask("t1", "m1")

	want := statusUpdate("t1", a2a.TaskStateFailed)
	r.Deliver(context.Background(), Notification{TaskID: "t1", Event: want})

	got, err := p.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Wait() result mismatch (-want +got):\n%s", diff)
	}
}

func TestNonTerminalDeliveryKeepsWaiting(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	r.Deliver(context.Background(), Notification{MessageID: "m1", TaskID: "t1", Event: statusUpdate("t1", a2a.TaskStateWorking)})

	if _, err := p.Wait(context.Background(), 20*time.Millisecond); !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("Wait() after working update = %v, want ErrWaitTimeout", err)
	}
}

func TestWorkingUpdateBindsTaskForLaterDelivery(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	// The working update carries both ids; the terminal one only the task id.
	r.Deliver(context.Background(), Notification{MessageID: "m1", TaskID: "t1", Event: statusUpdate("t1", a2a.TaskStateWorking)})
	r.Deliver(context.Background(), Notification{TaskID: "t1", Event: statusUpdate("t1", a2a.TaskStateCompleted)})

	got, err := p.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if state := a2a.EventState(got); state != a2a.TaskStateCompleted {
		t.Errorf("resolved state = %q, want %q", state, a2a.TaskStateCompleted)
	}
}

func TestInterruptedStateResolves(t *testing.T) {
	for _, state := range []a2a.TaskState{a2a.TaskStateInputRequired, a2a.TaskStateAuthRequired} {
		t.Run(string(state), func(t *testing.T) {
			r := NewRegistry()
			p, err := r.Register("m1")
			if err != nil {
				t.Fatalf("Register() failed: %v", err)
			}

			r.Deliver(context.Background(), Notification{MessageID: "m1", Event: statusUpdate("t1", state)})

			got, err := p.Wait(context.Background(), time.Second)
			if err != nil {
				t.Fatalf("Wait() failed: %v", err)
			}
			if gotState := a2a.EventState(got); gotState != state {
				t.Errorf("resolved state = %q, want %q", gotState, state)
			}
		})
	}
}

func TestBareMessageResolves(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	reply := a2a.NewMessage(a2a.MessageRoleAgent, a2a.NewTextPart("hi"))
	r.Deliver(context.Background(), Notification{MessageID: "m1", Event: reply})

	got, err := p.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if text := a2a.EventText(got); text != "hi" {
		t.Errorf("EventText() = %q, want %q", text, "hi")
	}
}

func TestOrphanDeliveryIsDropped(t *testing.T) {
	r := NewRegistry()

	// Must not panic and must not affect later registrations.
	r.Deliver(context.Background(), Notification{MessageID: "ghost", TaskID: "t9", Event: completedTask("t9", "late")})

	if _, err := r.Register("ghost"); err != nil {
		t.Errorf("Register() after orphan delivery failed: %v", err)
	}
}

func TestWaitTimeoutUnregisters(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	r.BindTask("t1", "m1")

	start := time.Now()
	if _, err := p.Wait(context.Background(), 20*time.Millisecond); !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("Wait() = %v, want ErrWaitTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Wait() took %s, expected prompt timeout", elapsed)
	}

	// The entry is gone: the same id can be registered again and a late
	// delivery keyed either way is an orphan.
	r.Deliver(context.Background(), Notification{TaskID: "t1", Event: completedTask("t1", "late")})
	if _, err := r.Register("m1"); err != nil {
		t.Errorf("Register() after timeout failed: %v", err)
	}
}

func TestWaitContextCanceled(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Wait(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
}

func TestConcurrentDeliveriesResolveOnce(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Deliver(context.Background(), Notification{MessageID: "m1", Event: completedTask("t1", "done")})
		}()
	}

	got, err := p.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if state := a2a.EventState(got); state != a2a.TaskStateCompleted {
		t.Errorf("resolved state = %q, want %q", state, a2a.TaskStateCompleted)
	}
	wg.Wait()
}

func TestCancelUnregisters(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	p.Cancel()

	if _, err := r.Register("m1"); err != nil {
		t.Errorf("Register() after Cancel() failed: %v", err)
	}
}

func TestDeliveryAfterResolveIsDropped(t *testing.T) {
	r := NewRegistry()
	p, err := r.Register("m1")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	first := completedTask("t1", "first")
	r.Deliver(context.Background(), Notification{MessageID: "m1", Event: first})
	r.Deliver(context.Background(), Notification{MessageID: "m1", Event: completedTask("t1", "second")})

	got, err := p.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("Wait() result mismatch (-want +got):\n%s", diff)
	}
}
