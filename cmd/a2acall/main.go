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

// Command a2acall is an interactive CLI client for remote A2A agents. It
// sends user messages over JSON-RPC, receives asynchronous results on a
// local webhook endpoint, and prints agent replies to the terminal.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/agentwire/a2acall/log"
)

var cli struct {
	Debug   bool   `help:"Enable debug logging."`
	EnvFile string `default:".env" help:"Path to a .env file with instance settings."`

	Chat  chatCmd  `cmd:"" default:"withargs" help:"Chat interactively with a remote agent."`
	Token tokenCmd `cmd:"" help:"Bootstrap OAuth tokens from username and password."`
}

func main() {
	parsed := kong.Parse(&cli,
		kong.Name("a2acall"),
		kong.Description("Interactive client for remote A2A agents."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Into(ctx, logger)

	parsed.BindTo(ctx, (*context.Context)(nil))
	parsed.FatalIfErrorf(parsed.Run())
}
