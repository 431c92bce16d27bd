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

// Package a2a defines the A2A v0.x wire types exchanged with a remote agent:
// kind-discriminated messages, tasks and status updates, content parts and
// the message/send request envelope.
package a2a

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskInfo identifies the task and the group of interactions an event belongs to.
// Both fields may be empty, e.g. for the first user message of a conversation.
type TaskInfo struct {
	// TaskID is the id of the task.
	TaskID TaskID
	// ContextID is the id of the interaction group the task belongs to.
	ContextID string
}

// Event is implemented by types a remote agent can return as the result of a
// message/send call or deliver out-of-band to a push notification endpoint.
type Event interface {
	// TaskInfo returns the task and context identifiers carried by the event.
	TaskInfo() TaskInfo

	isEvent()
}

func (*Message) isEvent()               {}
func (*Task) isEvent()                  {}
func (*TaskStatusUpdateEvent) isEvent() {}

// UnmarshalEvent decodes an event object using its "kind" discriminator.
func UnmarshalEvent(data []byte) (Event, error) {
	type typedEvent struct {
		Kind string `json:"kind"`
	}

	var te typedEvent
	if err := json.Unmarshal(data, &te); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	switch te.Kind {
	case "message":
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Message event: %w", err)
		}
		return &msg, nil
	case "task":
		var task Task
		if err := json.Unmarshal(data, &task); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Task event: %w", err)
		}
		return &task, nil
	case "status-update":
		var statusUpdate TaskStatusUpdateEvent
		if err := json.Unmarshal(data, &statusUpdate); err != nil {
			return nil, fmt.Errorf("failed to unmarshal TaskStatusUpdateEvent: %w", err)
		}
		return &statusUpdate, nil
	default:
		return nil, fmt.Errorf("unknown event kind: %q", te.Kind)
	}
}

// MessageRole identifies the message sender.
type MessageRole string

// MessageRole constants.
const (
	// MessageRoleUnspecified is an unspecified message role.
	MessageRoleUnspecified MessageRole = ""
	// MessageRoleAgent is an agent message role.
	MessageRoleAgent MessageRole = "agent"
	// MessageRoleUser is a user message role.
	MessageRoleUser MessageRole = "user"
)

// NewMessageID generates a new random message identifier.
func NewMessageID() string {
	return newUUIDString()
}

var _ Event = (*Message)(nil)

// Message is a single message in the conversation between a user and an agent.
type Message struct {
	// ID is a unique identifier for the message, generated by the sender.
	ID string `json:"messageId"`

	// ContextID groups related interactions. Empty means the message doesn't
	// reference any context.
	ContextID string `json:"contextId,omitempty"`

	// Metadata is optional provider-specific metadata.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Parts is the array of content parts that form the message body.
	Parts ContentParts `json:"parts"`

	// Role identifies the sender of the message.
	Role MessageRole `json:"role"`

	// TaskID is the identifier of the task this message is part of. Omitted
	// for the first message of a new task.
	TaskID TaskID `json:"taskId,omitempty"`
}

// NewMessage creates a new message with a random identifier.
func NewMessage(role MessageRole, parts ...Part) *Message {
	return &Message{
		ID:    NewMessageID(),
		Role:  role,
		Parts: parts,
	}
}

// NewMessageForTask creates a new message with a random identifier that
// continues the task and context identified by info.
func NewMessageForTask(role MessageRole, info TaskInfo, parts ...Part) *Message {
	return &Message{
		ID:        NewMessageID(),
		Role:      role,
		TaskID:    info.TaskID,
		ContextID: info.ContextID,
		Parts:     parts,
	}
}

// MarshalJSON adds the remote-mandated "kind":"message" discriminator.
func (m Message) MarshalJSON() ([]byte, error) {
	type wrapped Message
	type withKind struct {
		Kind string `json:"kind"`
		wrapped
	}
	return json.Marshal(withKind{Kind: "message", wrapped: wrapped(m)})
}

// TaskInfo implements Event.
func (m *Message) TaskInfo() TaskInfo {
	return TaskInfo{TaskID: m.TaskID, ContextID: m.ContextID}
}

// TaskID is a unique identifier for a task, generated by the server.
type TaskID string

// NewTaskID generates a new random task identifier.
func NewTaskID() TaskID {
	return TaskID(newUUIDString())
}

// TaskState defines the set of possible task states.
type TaskState string

const (
	// TaskStateUnspecified represents a missing TaskState value.
	TaskStateUnspecified TaskState = ""
	// TaskStateAuthRequired means the task requires authentication to proceed.
	TaskStateAuthRequired TaskState = "auth-required"
	// TaskStateCanceled means the task has been canceled by the user.
	TaskStateCanceled TaskState = "canceled"
	// TaskStateCompleted means the task has been successfully completed.
	TaskStateCompleted TaskState = "completed"
	// TaskStateFailed means the task failed due to an error during execution.
	TaskStateFailed TaskState = "failed"
	// TaskStateInputRequired means the task is paused and waiting for input from the user.
	TaskStateInputRequired TaskState = "input-required"
	// TaskStateRejected means the task was rejected by the agent and was not started.
	TaskStateRejected TaskState = "rejected"
	// TaskStateSubmitted means the task has been submitted and is awaiting execution.
	TaskStateSubmitted TaskState = "submitted"
	// TaskStateUnknown means the task is in an unknown or indeterminate state.
	TaskStateUnknown TaskState = "unknown"
	// TaskStateWorking means the agent is actively working on the task.
	TaskStateWorking TaskState = "working"
)

// Terminal returns true for states in which a Task becomes immutable, i.e. no
// further changes to the Task are permitted.
func (ts TaskState) Terminal() bool {
	return ts == TaskStateCompleted ||
		ts == TaskStateCanceled ||
		ts == TaskStateFailed ||
		ts == TaskStateRejected
}

// Interrupted returns true for states in which the task is paused waiting for
// the user. An interrupted task produces no further updates until the client
// sends a follow-up message, so for a waiting caller it is a final answer.
func (ts TaskState) Interrupted() bool {
	return ts == TaskStateInputRequired || ts == TaskStateAuthRequired
}

var _ Event = (*Task)(nil)

// Task is a single, stateful operation or conversation between a client and an agent.
type Task struct {
	// ID is a unique identifier for the task, generated by the server.
	ID TaskID `json:"id"`

	// Artifacts is the collection of artifacts generated by the agent during execution.
	Artifacts []*Artifact `json:"artifacts,omitempty"`

	// ContextID is a server-generated identifier maintaining context across
	// multiple related tasks or interactions.
	ContextID string `json:"contextId"`

	// History is the messages exchanged during the task.
	History []*Message `json:"history,omitempty"`

	// Metadata is optional provider-specific metadata.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Status is the current status of the task.
	Status TaskStatus `json:"status"`
}

// MarshalJSON adds the "kind":"task" discriminator.
func (t Task) MarshalJSON() ([]byte, error) {
	type wrapped Task
	type withKind struct {
		Kind string `json:"kind"`
		wrapped
	}
	return json.Marshal(withKind{Kind: "task", wrapped: wrapped(t)})
}

// TaskInfo implements Event.
func (t *Task) TaskInfo() TaskInfo {
	return TaskInfo{TaskID: t.ID, ContextID: t.ContextID}
}

// TaskStatus represents the status of a task at a specific point in time.
type TaskStatus struct {
	// Message is an optional, human-readable message with more detail about the status.
	Message *Message `json:"message,omitempty"`

	// State is the current state of the task's lifecycle.
	State TaskState `json:"state"`

	// Timestamp indicates when this status was recorded.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

var _ Event = (*TaskStatusUpdateEvent)(nil)

// TaskStatusUpdateEvent notifies the client of a change in a task's status.
// Push notification endpoints may receive these for intermediate progress.
type TaskStatusUpdateEvent struct {
	// ContextID is the context ID associated with the task.
	ContextID string `json:"contextId"`

	// Final indicates this is the last update the agent will send for the task.
	Final bool `json:"final"`

	// Status is the new status of the task.
	Status TaskStatus `json:"status"`

	// TaskID is the ID of the task that was updated.
	TaskID TaskID `json:"taskId"`

	// Metadata is optional provider-specific metadata.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON adds the "kind":"status-update" discriminator.
func (e TaskStatusUpdateEvent) MarshalJSON() ([]byte, error) {
	type wrapped TaskStatusUpdateEvent
	type withKind struct {
		Kind string `json:"kind"`
		wrapped
	}
	return json.Marshal(withKind{Kind: "status-update", wrapped: wrapped(e)})
}

// TaskInfo implements Event.
func (e *TaskStatusUpdateEvent) TaskInfo() TaskInfo {
	return TaskInfo{TaskID: e.TaskID, ContextID: e.ContextID}
}

// Artifact is a file, data structure, or other resource generated by an agent
// during a task.
type Artifact struct {
	// ID is a unique identifier for the artifact within the scope of the task.
	ID string `json:"artifactId"`

	// Description is an optional, human-readable description of the artifact.
	Description string `json:"description,omitempty"`

	// Metadata is optional provider-specific metadata.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Name is an optional, human-readable name for the artifact.
	Name string `json:"name,omitempty"`

	// Parts is the array of content parts that make up the artifact.
	Parts ContentParts `json:"parts"`
}

// SendMessageConfig defines configuration options for a message/send request.
type SendMessageConfig struct {
	// AcceptedOutputModes is the list of output MIME types the client accepts.
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`

	// Blocking indicates the client will wait for the task to complete.
	// The server may reject this for long-running tasks.
	Blocking *bool `json:"blocking,omitempty"`

	// PushConfig asks the agent to send push notifications for updates
	// produced after the initial response.
	PushConfig *PushConfig `json:"pushNotificationConfig,omitempty"`
}

// SendMessageRequest is the params object of a message/send call.
type SendMessageRequest struct {
	// Config is an optional configuration for the send request.
	Config *SendMessageConfig `json:"configuration,omitempty"`

	// Message is the message being sent to the agent.
	Message *Message `json:"message"`

	// Metadata is optional provider-specific metadata.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Time-based UUID keeps ids sortable by creation time in remote agent logs.
func newUUIDString() string {
	return uuid.Must(uuid.NewV7()).String()
}
