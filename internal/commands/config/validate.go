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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/config"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/secrets"
)

// ValidationResult represents the result of config validation.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the 'config validate' subcommand.
func NewValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration and check that tokens are available.

Checks performed:
  - YAML syntax and known values (log level, exporter, secrets backend)
  - Base URLs use http or https and name a host
  - The account ID is numeric
  - Tokens for the Application and Platform APIs can be resolved
  - The Client API has an inbox identifier

With --strict, warnings are treated as errors.`,
		Example: `  # Validate configuration
  chatwoot config validate

  # Validate with warnings as errors
  chatwoot config validate --strict --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runValidate(ctx, cmd.OutOrStdout(), strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

// runValidate performs configuration validation.
func runValidate(ctx context.Context, w io.Writer, strict bool) error {
	result := ValidationResult{Valid: true}

	cfg, err := shared.LoadConfig()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Warnings = warnings(ctx, cfg)
	}

	if strict && len(result.Warnings) > 0 {
		result.Valid = false
	}

	if shared.GetJSON() {
		if err := shared.WriteJSON(w, result); err != nil {
			return err
		}
	} else {
		writeResult(w, result)
	}

	if !result.Valid {
		return shared.NewInvalidInputError("configuration is invalid", errors.New(firstProblem(result)))
	}
	return nil
}

// warnings lists settings that load but will likely fail at run time.
func warnings(ctx context.Context, cfg *config.Config) []string {
	var out []string

	if cfg.HTTP.TLSInsecure {
		out = append(out, "http.tls_insecure is enabled; server certificates are not verified")
	}
	if cfg.Tracing.Insecure && cfg.Tracing.Exporter != config.ExporterNone && cfg.Tracing.Exporter != config.ExporterConsole {
		out = append(out, "tracing.insecure is enabled; spans are exported without TLS")
	}
	if cfg.Credentials.Client.InboxIdentifier == "" {
		out = append(out, "credentials.client.inbox_identifier is empty; client operations will fail")
	}

	resolver, err := shared.NewSecrets(cfg)
	if err != nil {
		return append(out, fmt.Sprintf("secrets: %v", err))
	}
	for _, api := range []operation.API{operation.APIApplication, operation.APIPlatform} {
		name := chatwoot.CredentialName(api)
		for _, field := range chatwoot.CredentialFields(api) {
			if !chatwoot.IsSecretField(field) {
				continue
			}
			key := secrets.Key(name, field)
			if _, err := resolver.Get(ctx, key); err != nil {
				out = append(out, fmt.Sprintf("%s is not available (export %s or run 'chatwoot credentials set %s')", key, secrets.EnvName(key), api))
			}
		}
	}

	return out
}

func writeResult(w io.Writer, result ValidationResult) {
	for _, e := range result.Errors {
		fmt.Fprintln(w, shared.RenderError(e))
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(w, shared.RenderWarn(warning))
	}
	if result.Valid {
		fmt.Fprintln(w, shared.RenderOK("Configuration is valid"))
	}
}

func firstProblem(result ValidationResult) string {
	if len(result.Errors) > 0 {
		return result.Errors[0]
	}
	if len(result.Warnings) > 0 {
		return result.Warnings[0]
	}
	return "unknown problem"
}
