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

package a2a

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestEventMarshalJSON tests that event types marshal with their "kind" discriminator.
func TestEventMarshalJSON(t *testing.T) {
	testCases := []struct {
		name           string
		event          Event
		wantSubstrings []string
	}{
		{
			name: "Message",
			event: &Message{
				ID:    "msg-123",
				Role:  MessageRoleUser,
				Parts: ContentParts{NewTextPart("hello")},
			},
			wantSubstrings: []string{`"kind":"message"`, `"messageId":"msg-123"`, `"kind":"text"`},
		},
		{
			name: "Task",
			event: &Task{
				ID:        "task-123",
				ContextID: "ctx-123",
				Status:    TaskStatus{State: TaskStateSubmitted},
			},
			wantSubstrings: []string{`"kind":"task"`, `"id":"task-123"`, `"state":"submitted"`},
		},
		{
			name: "TaskStatusUpdateEvent",
			event: &TaskStatusUpdateEvent{
				TaskID:    "task-123",
				ContextID: "ctx-123",
				Final:     true,
				Status:    TaskStatus{State: TaskStateWorking},
			},
			wantSubstrings: []string{`"kind":"status-update"`, `"taskId":"task-123"`, `"final":true`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			jsonBytes, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatalf("Marshal() failed: %v", err)
			}
			jsonStr := string(jsonBytes)
			for _, want := range tc.wantSubstrings {
				if !strings.Contains(jsonStr, want) {
					t.Errorf("marshaled event %s does not contain %s", jsonStr, want)
				}
			}
		})
	}
}

func TestUnmarshalEvent(t *testing.T) {
	testCases := []struct {
		name string
		data string
		want Event
	}{
		{
			name: "message",
			data: `{"kind":"message","messageId":"m1","role":"agent","parts":[{"kind":"text","text":"hi"}]}`,
			want: &Message{ID: "m1", Role: MessageRoleAgent, Parts: ContentParts{TextPart{Text: "hi"}}},
		},
		{
			name: "task",
			data: `{"kind":"task","id":"t1","contextId":"c1","status":{"state":"completed"},
				"artifacts":[{"artifactId":"a1","parts":[{"kind":"text","text":"42"}]}]}`,
			want: &Task{
				ID:        "t1",
				ContextID: "c1",
				Status:    TaskStatus{State: TaskStateCompleted},
				Artifacts: []*Artifact{{ID: "a1", Parts: ContentParts{TextPart{Text: "42"}}}},
			},
		},
		{
			name: "status update",
			data: `{"kind":"status-update","taskId":"t1","contextId":"c1","final":false,"status":{"state":"working"}}`,
			want: &TaskStatusUpdateEvent{TaskID: "t1", ContextID: "c1", Status: TaskStatus{State: TaskStateWorking}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := UnmarshalEvent([]byte(tc.data))
			if err != nil {
				t.Fatalf("UnmarshalEvent() failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("UnmarshalEvent() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshalEvent_UnknownKind(t *testing.T) {
	if _, err := UnmarshalEvent([]byte(`{"kind":"artifact-update"}`)); err == nil {
		t.Errorf("expected UnmarshalEvent() to fail on unsupported kind")
	}
	if _, err := UnmarshalEvent([]byte(`not json`)); err == nil {
		t.Errorf("expected UnmarshalEvent() to fail on malformed payload")
	}
}

func TestContentParts_UnknownPartKind(t *testing.T) {
	var parts ContentParts
	if err := json.Unmarshal([]byte(`[{"kind":"video","url":"x"}]`), &parts); err == nil {
		t.Errorf("expected parts decoding to fail on unknown kind, got %v", parts)
	}
}

func TestFilePart_Exclusivity(t *testing.T) {
	testCases := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "uri only", data: `{"kind":"file","file":{"uri":"https://host/f.pdf"}}`},
		{name: "bytes only", data: `{"kind":"file","file":{"bytes":"aGk="}}`},
		{name: "both", data: `{"kind":"file","file":{"uri":"https://host/f.pdf","bytes":"aGk="}}`, wantErr: true},
		{name: "neither", data: `{"kind":"file","file":{"name":"f.pdf"}}`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p FilePart
			err := json.Unmarshal([]byte(tc.data), &p)
			if tc.wantErr != (err != nil) {
				t.Errorf("unmarshal error = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestTaskStateClasses(t *testing.T) {
	terminal := []TaskState{TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected}
	for _, ts := range terminal {
		if !ts.Terminal() {
			t.Errorf("expected %s to be terminal", ts)
		}
		if ts.Interrupted() {
			t.Errorf("expected %s not to be interrupted", ts)
		}
	}

	interrupted := []TaskState{TaskStateInputRequired, TaskStateAuthRequired}
	for _, ts := range interrupted {
		if ts.Terminal() {
			t.Errorf("expected %s not to be terminal", ts)
		}
		if !ts.Interrupted() {
			t.Errorf("expected %s to be interrupted", ts)
		}
	}

	for _, ts := range []TaskState{TaskStateSubmitted, TaskStateWorking, TaskStateUnknown, TaskStateUnspecified} {
		if ts.Terminal() || ts.Interrupted() {
			t.Errorf("expected %s to be neither terminal nor interrupted", ts)
		}
	}
}

func TestEventText(t *testing.T) {
	task := &Task{
		ID:     "t1",
		Status: TaskStatus{State: TaskStateCompleted, Message: NewMessage(MessageRoleAgent, NewTextPart("done"))},
		Artifacts: []*Artifact{
			{ID: "a1", Parts: ContentParts{NewTextPart("42"), DataPart{Data: map[string]any{"k": "v"}}}},
		},
	}
	if got, want := EventText(task), "done\n42"; got != want {
		t.Errorf("EventText(task) = %q, want %q", got, want)
	}

	msg := NewMessage(MessageRoleAgent, NewTextPart("hello"))
	if got, want := EventText(msg), "hello"; got != want {
		t.Errorf("EventText(message) = %q, want %q", got, want)
	}
	if got := EventState(msg); got != TaskStateCompleted {
		t.Errorf("EventState(message) = %q, want completed", got)
	}
}
