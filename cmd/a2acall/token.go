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
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/agentwire/a2acall/a2aclient"
	"github.com/agentwire/a2acall/config"
)

type tokenCmd struct {
	Username string `help:"Instance username. Prompted for when omitted."`
}

// Run exchanges user credentials for a refresh token via the password grant
// and prints the resulting .env lines. The password never touches the
// process arguments or the environment.
func (c *tokenCmd) Run(ctx context.Context) error {
	cfg, err := config.LoadBootstrap(cli.EnvFile)
	if err != nil {
		return err
	}

	username := c.Username
	if username == "" {
		fmt.Fprint(os.Stderr, "Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("a username is required")
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	reply, err := a2aclient.PasswordGrant(ctx, nil, cfg.BaseURL, cfg.ClientID, cfg.ClientSecret, username, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Tokens issued (access token valid for %s). Add to your .env:\n\n", reply.ExpiresIn)
	fmt.Printf("%s=%s\n", config.EnvRefreshToken, reply.RefreshToken)
	fmt.Printf("%s=%s\n", config.EnvAuthToken, reply.AccessToken)
	return nil
}
