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

// AgentCapabilities define optional capabilities supported by an agent.
type AgentCapabilities struct {
	// PushNotifications indicates if the agent supports sending push
	// notifications for asynchronous task updates.
	PushNotifications bool `json:"pushNotifications,omitempty"`

	// Streaming indicates if the agent supports streaming responses.
	Streaming bool `json:"streaming,omitempty"`

	// StateTransitionHistory indicates if the agent exposes the history of
	// task state transitions.
	StateTransitionHistory bool `json:"stateTransitionHistory,omitempty"`
}

// AgentCard is a self-describing manifest for an agent: identity,
// capabilities, skills and the endpoint URL. Immutable once fetched.
type AgentCard struct {
	// Capabilities is a declaration of optional capabilities supported by the agent.
	Capabilities AgentCapabilities `json:"capabilities"`

	// DefaultInputModes is the default set of supported input MIME types.
	DefaultInputModes []string `json:"defaultInputModes,omitempty"`

	// DefaultOutputModes is the default set of supported output MIME types.
	DefaultOutputModes []string `json:"defaultOutputModes,omitempty"`

	// Description is a human-readable description of the agent.
	Description string `json:"description,omitempty"`

	// Name is a human-readable name for the agent.
	Name string `json:"name"`

	// Skills is the set of distinct capabilities the agent can perform.
	Skills []AgentSkill `json:"skills,omitempty"`

	// URL is the endpoint where the agent accepts protocol calls.
	URL string `json:"url,omitempty"`

	// Version is the agent's own version number, provider-defined.
	Version string `json:"version,omitempty"`
}

// AgentSkill represents a distinct capability or function an agent can perform.
type AgentSkill struct {
	// Description helps clients and users understand the skill's purpose.
	Description string `json:"description,omitempty"`

	// Examples are prompts or scenarios this skill can handle.
	Examples []string `json:"examples,omitempty"`

	// ID is a unique identifier for the skill.
	ID string `json:"id"`

	// Name is a human-readable name for the skill.
	Name string `json:"name"`

	// Tags is a set of keywords describing the skill's capabilities.
	Tags []string `json:"tags,omitempty"`
}
