// Copyright 2025 Tom Barlow
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
	"github.com/tombee/chatwoot-connector/internal/cli"
	"github.com/tombee/chatwoot-connector/internal/commands/completion"
	"github.com/tombee/chatwoot-connector/internal/commands/config"
	"github.com/tombee/chatwoot-connector/internal/commands/credentials"
	historycmd "github.com/tombee/chatwoot-connector/internal/commands/history"
	"github.com/tombee/chatwoot-connector/internal/commands/mcpserver"
	"github.com/tombee/chatwoot-connector/internal/commands/operations"
	"github.com/tombee/chatwoot-connector/internal/commands/run"
	versioncmd "github.com/tombee/chatwoot-connector/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// Execution
	rootCmd.AddCommand(run.NewCommand())
	rootCmd.AddCommand(operations.NewCommand())
	rootCmd.AddCommand(historycmd.NewCommand())

	// Setup
	rootCmd.AddCommand(credentials.NewCommand())
	rootCmd.AddCommand(config.NewConfigCommand())

	// Integrations
	rootCmd.AddCommand(mcpserver.NewCommand())

	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
