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

import "strings"

// Text extracts the human-readable text of the message.
func (m *Message) Text() string {
	return m.Parts.Text()
}

// Text extracts the human-readable text of the task: the status message
// followed by any textual artifact content.
func (t *Task) Text() string {
	var texts []string
	if t.Status.Message != nil {
		if s := t.Status.Message.Text(); s != "" {
			texts = append(texts, s)
		}
	}
	for _, artifact := range t.Artifacts {
		if s := artifact.Parts.Text(); s != "" {
			texts = append(texts, s)
		}
	}
	return strings.Join(texts, "\n")
}

// EventText extracts the displayable text of any event.
func EventText(e Event) string {
	switch v := e.(type) {
	case *Message:
		return v.Text()
	case *Task:
		return v.Text()
	case *TaskStatusUpdateEvent:
		if v.Status.Message != nil {
			return v.Status.Message.Text()
		}
	}
	return ""
}

// EventState returns the task state carried by the event. Messages have no
// state machine; a direct message reply is treated as a completed result.
func EventState(e Event) TaskState {
	switch v := e.(type) {
	case *Task:
		return v.Status.State
	case *TaskStatusUpdateEvent:
		return v.Status.State
	case *Message:
		return TaskStateCompleted
	}
	return TaskStateUnspecified
}
