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

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and manage configuration",
		Annotations: map[string]string{
			"group": "setup",
		},
		Long: `View and manage the chatwoot configuration file.

Every key can be overridden by an environment variable named CHATWOOT_ plus
the upper-cased key path, e.g. CHATWOOT_CREDENTIALS_APPLICATION_BASE_URL.
Variables in a .env file in the working directory are loaded first.

Subcommands:
  init     - Write a default configuration file
  show     - Display the effective configuration
  path     - Show config file location
  validate - Check the configuration and stored tokens`,
	}

	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigPathCommand())
	cmd.AddCommand(NewValidateCommand())

	// If no subcommand provided, default to 'show'
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd, args)
	}

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write the default configuration to the config file location.

An existing file is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := shared.ConfigFilePath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}

			if err := config.WriteDefault(path, force); err != nil {
				return shared.NewInvalidInputError("config init", err)
			}

			if shared.GetJSON() {
				return shared.WriteJSON(cmd.OutOrStdout(), struct {
					shared.JSONResponse
					Path string `json:"path"`
				}{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "config init", Success: true},
					Path:         path,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Wrote "+path))
			fmt.Fprintln(cmd.OutOrStdout(), shared.Muted.Render("Next: chatwoot credentials set application"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

// newConfigShowCommand creates the 'config show' subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after defaults, the config file, .env files
and CHATWOOT_* variables are applied. Tokens are never part of the
configuration; see 'chatwoot credentials show'.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}
}

// newConfigPathCommand creates the 'config path' subcommand
func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := shared.ConfigFilePath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// runConfigShow displays the current configuration
func runConfigShow(cmd *cobra.Command, args []string) error {
	outputFormat, err := shared.GetOutputFormat()
	if err != nil {
		return err
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	path, err := shared.ConfigFilePath()
	if err != nil {
		return err
	}

	return writeConfig(cmd.OutOrStdout(), outputFormat, path, cfg)
}

func writeConfig(w io.Writer, f format.Format, path string, cfg *config.Config) error {
	out, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	if f != format.Table {
		// Decode the YAML form so JSON keys match the file's keys.
		var doc map[string]interface{}
		if err := yaml.Unmarshal(out, &doc); err != nil {
			return fmt.Errorf("failed to decode config: %w", err)
		}
		return format.Value(w, f, doc, format.IsTTY())
	}

	source := path
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		source = path + " (not created, showing defaults; run 'chatwoot config init')"
	}
	fmt.Fprintln(w, shared.Header.Render("Configuration: ")+source)
	fmt.Fprintln(w)
	_, err = io.WriteString(w, format.Highlight(string(out), "yaml", format.IsTTY()))
	return err
}
