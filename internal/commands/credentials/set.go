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

package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/commands/completion"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/config"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/secrets"
)

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

type setOptions struct {
	fields        map[string]*string
	token         string
	tokenStdin    bool
	backend       string
	noInteractive bool
}

func newSetCommand() *cobra.Command {
	opts := setOptions{fields: make(map[string]*string)}

	cmd := &cobra.Command{
		Use:   "set <api>",
		Short: "Store a credential record",
		Long: `Store the fields of a credential record.

On a terminal without field flags a form asks for every field, showing the
current values. Otherwise only the fields given as flags change. Prefer
--token-stdin over --token so the token stays out of shell history.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteAPIs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, args[0], opts)
		},
	}

	for field, flag := range fieldFlags {
		opts.fields[field] = cmd.Flags().String(flag, "", fieldLabels[field])
	}
	cmd.Flags().StringVar(&opts.token, "token", "", "Access token")
	cmd.Flags().BoolVar(&opts.tokenStdin, "token-stdin", false, "Read the access token from stdin")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Token backend (keychain, file); defaults to secrets.backend")
	cmd.Flags().BoolVar(&opts.noInteractive, "no-interactive", false, "Never show the form")
	_ = cmd.RegisterFlagCompletionFunc("backend", completion.CompleteSecretsBackend)

	return cmd
}

func runSet(cmd *cobra.Command, arg string, opts setOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	api, err := parseAPI(arg)
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

	values := make(map[string]string)
	targets := configFields(cfg, api)
	for field, target := range targets {
		values[field] = *target
	}

	changed := false
	for field := range targets {
		if cmd.Flags().Changed(fieldFlags[field]) {
			values[field] = strings.TrimSpace(*opts.fields[field])
			changed = true
		}
	}
	for field, flag := range fieldFlags {
		if _, ok := targets[field]; !ok && cmd.Flags().Changed(flag) {
			return shared.NewInvalidInputError(fmt.Sprintf("--%s does not apply to the %s API", flag, api), nil)
		}
	}

	token := opts.token
	if opts.tokenStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return shared.NewInvalidInputError("failed to read token from stdin", err)
		}
		token = strings.TrimSpace(string(data))
	}
	tokenField, hasToken := secretField(api)
	if token != "" && !hasToken {
		return shared.NewInvalidInputError(fmt.Sprintf("the %s API does not use a token", api), nil)
	}

	if !changed && token == "" && !opts.tokenStdin {
		if !shared.CanPrompt(opts.noInteractive) {
			return shared.NewInvalidInputError("nothing to set (pass field flags or run on a terminal)", nil)
		}
		if token, err = runForm(api, values); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderWarn("Aborted."))
				return nil
			}
			return err
		}
	}

	for field, target := range targets {
		*target = values[field]
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	name := chatwoot.CredentialName(api)
	if token != "" {
		resolver, err := shared.NewSecrets(cfg)
		if err != nil {
			return err
		}
		backend := opts.backend
		if backend == "" {
			backend = cfg.Secrets.Backend
		}
		if err := resolver.Set(ctx, secrets.Key(name, tokenField), token, backend); err != nil {
			return shared.NewCredentialsError("failed to store token", err)
		}
	}

	if shared.GetJSON() {
		return shared.WriteJSON(cmd.OutOrStdout(), struct {
			shared.JSONResponse
			Credential  string `json:"credential"`
			ConfigFile  string `json:"config_file"`
			TokenStored bool   `json:"token_stored"`
		}{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "credentials set", Success: true},
			Credential:   name,
			ConfigFile:   path,
			TokenStored:  token != "",
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("Saved %s to %s", name, path)))
	if token != "" {
		fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Token stored"))
	}
	return nil
}

// runForm asks for every field of api's record. values is updated in place
// and the entered token (possibly empty) is returned.
func runForm(api operation.API, values map[string]string) (string, error) {
	var token string
	entered := make(map[string]*string)
	var inputs []huh.Field

	for _, field := range chatwoot.CredentialFields(api) {
		input := huh.NewInput().Title(fieldLabels[field])

		switch {
		case chatwoot.IsSecretField(field):
			input = input.
				Description("Leave empty to keep the stored token").
				EchoMode(huh.EchoModePassword).
				Value(&token)
		default:
			value := values[field]
			entered[field] = &value
			input = input.Value(&value)
			if field == chatwoot.FieldBaseURL {
				input = input.Placeholder(chatwoot.DefaultBaseURL)
			}
			if field == chatwoot.FieldInboxIdentifier {
				input = input.Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("inbox identifier is required")
					}
					return nil
				})
			}
		}

		inputs = append(inputs, input)
	}

	form := huh.NewForm(huh.NewGroup(inputs...)).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		return "", err
	}

	for field, value := range entered {
		values[field] = strings.TrimSpace(*value)
	}
	return strings.TrimSpace(token), nil
}
