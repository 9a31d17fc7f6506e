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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/commands/completion"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for the chatwoot CLI
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatwoot",
		Short: "chatwoot - drive the Chatwoot Application, Client and Platform APIs",
		Long: `chatwoot runs operations against a Chatwoot installation.

Every operation is addressed as <resource> <operation> and belongs to one of
three APIs: the Application API (agents and admins), the Client API (end-user
widgets) and the Platform API (installation administration).

Run 'chatwoot credentials set application' to store your access token.
Run 'chatwoot operations list' to see every available operation.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	verbose, quiet, json, config := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format (shorthand for --output json)")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/chatwoot/config.yaml)")
	cmd.PersistentFlags().StringVarP(shared.RegisterOutputFlag(), "output", "o", string(format.Table), "Output format: table, json or yaml")

	_ = cmd.RegisterFlagCompletionFunc("output", completion.CompleteOutputFormats)

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
