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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvBaseURL, EnvClientID, EnvClientSecret, EnvRefreshToken,
		EnvAuthToken, EnvAgentID, EnvWebhookURL,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "https://example.service-now.com/")
	t.Setenv(EnvClientID, "cid")
	t.Setenv(EnvClientSecret, "secret")
	t.Setenv(EnvRefreshToken, "rt-1")
	t.Setenv(EnvAgentID, "agent-1")
	t.Setenv(EnvWebhookURL, "https://client.example/webhook")

	got, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := &Config{
		BaseURL:      "https://example.service-now.com",
		ClientID:     "cid",
		ClientSecret: "secret",
		RefreshToken: "rt-1",
		AgentID:      "agent-1",
		WebhookURL:   "https://client.example/webhook",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		EnvBaseURL + "=https://file.example.com",
		EnvClientID + "=file-cid",
		EnvClientSecret + "=file-secret",
		EnvRefreshToken + "=file-rt",
	}, "\n")
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("writing .env failed: %v", err)
	}

	// A variable already in the environment wins over the file.
	t.Setenv(EnvClientID, "env-cid")

	got, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got.ClientID != "env-cid" {
		t.Errorf("ClientID = %q, environment must override the file", got.ClientID)
	}
	if got.BaseURL != "https://file.example.com" {
		t.Errorf("BaseURL = %q, want file value", got.BaseURL)
	}
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "https://example.service-now.com")
	t.Setenv(EnvClientID, "cid")
	t.Setenv(EnvClientSecret, "secret")
	t.Setenv(EnvAuthToken, "seeded")

	if _, err := Load(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("Load() with absent .env failed: %v", err)
	}
}

func TestLoadBootstrap(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "https://example.service-now.com")
	t.Setenv(EnvClientID, "cid")
	t.Setenv(EnvClientSecret, "secret")

	if _, err := Load(""); !errors.Is(err, ErrMissingConfig) {
		t.Errorf("Load() without tokens = %v, want ErrMissingConfig", err)
	}
	if _, err := LoadBootstrap(""); err != nil {
		t.Errorf("LoadBootstrap() without tokens failed: %v", err)
	}
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name        string
		env         map[string]string
		wantMention string
	}{
		{
			name:        "everything missing",
			env:         map[string]string{},
			wantMention: EnvBaseURL,
		},
		{
			name: "no credentials at all",
			env: map[string]string{
				EnvBaseURL:      "https://example.service-now.com",
				EnvClientID:     "cid",
				EnvClientSecret: "secret",
			},
			wantMention: EnvRefreshToken,
		},
		{
			name: "invalid base url",
			env: map[string]string{
				EnvBaseURL:      "not a url",
				EnvClientID:     "cid",
				EnvClientSecret: "secret",
				EnvRefreshToken: "rt-1",
			},
			wantMention: EnvBaseURL,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			if !errors.Is(err, ErrMissingConfig) {
				t.Fatalf("Load() = %v, want ErrMissingConfig", err)
			}
			if !strings.Contains(err.Error(), tc.wantMention) {
				t.Errorf("error %q does not mention %s", err, tc.wantMention)
			}
		})
	}
}
