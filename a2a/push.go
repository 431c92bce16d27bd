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

// PushConfig defines where and how the agent should deliver asynchronous
// task updates.
type PushConfig struct {
	// ID is an optional client-set identifier supporting multiple
	// notification callbacks.
	ID string `json:"id,omitempty"`

	// Auth describes the authentication the agent must use when calling
	// the notification URL.
	Auth *PushAuthInfo `json:"authentication,omitempty"`

	// Token is an optional unique token to validate incoming push notifications.
	Token string `json:"token,omitempty"`

	// URL is the callback URL where the agent should send push notifications.
	URL string `json:"url"`
}

// PushAuthInfo defines authentication details for a push notification endpoint.
type PushAuthInfo struct {
	// Credentials are optional credentials required by the endpoint.
	Credentials string `json:"credentials,omitempty"`

	// Schemes are the supported authentication schemes (e.g. "Bearer").
	// An empty list means the endpoint accepts unauthenticated calls.
	Schemes []string `json:"schemes"`
}

// NewPushConfig creates an unauthenticated push notification config for url.
func NewPushConfig(url string) *PushConfig {
	return &PushConfig{URL: url, Auth: &PushAuthInfo{Schemes: []string{}}}
}
