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

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/commands/completion"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/config"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/secrets"
)

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <api>",
		Short:             "Show a credential record with its token masked",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteAPIs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			api, err := parseAPI(args[0])
			if err != nil {
				return err
			}
			outputFormat, err := shared.GetOutputFormat()
			if err != nil {
				return err
			}

			cfg, err := shared.LoadConfig()
			if err != nil {
				return err
			}
			resolver, err := shared.NewSecrets(cfg)
			if err != nil {
				return err
			}

			fields, err := describeRecord(ctx, cfg, resolver, api)
			if err != nil {
				return err
			}
			return writeRecord(cmd.OutOrStdout(), outputFormat, api, fields)
		},
	}
}

type fieldView struct {
	Field  string `json:"field" yaml:"field"`
	Value  string `json:"value" yaml:"value"`
	Source string `json:"source" yaml:"source"`
}

// describeRecord lists the fields of api's record in display order. Tokens
// are masked and attributed to the backend that holds them.
func describeRecord(ctx context.Context, cfg *config.Config, resolver *secrets.Resolver, api operation.API) ([]fieldView, error) {
	name := chatwoot.CredentialName(api)
	stored := configFields(cfg, api)

	var views []fieldView
	for _, field := range chatwoot.CredentialFields(api) {
		view := fieldView{Field: field, Source: "config"}

		switch {
		case chatwoot.IsSecretField(field):
			key := secrets.Key(name, field)
			value, err := resolver.Get(ctx, key)
			switch {
			case errors.Is(err, secrets.ErrSecretNotFound):
				view.Value, view.Source = "(not set)", ""
			case err != nil:
				return nil, shared.NewCredentialsError("failed to read token", err)
			default:
				view.Value = log.MaskSecret(value)
				view.Source = tokenSource(ctx, resolver, key)
			}

		case *stored[field] != "":
			view.Value = *stored[field]

		default:
			view.Value, view.Source = defaultValue(field), "default"
		}

		views = append(views, view)
	}
	return views, nil
}

func defaultValue(field string) string {
	switch field {
	case chatwoot.FieldBaseURL:
		return chatwoot.DefaultBaseURL
	case chatwoot.FieldAccountID:
		return chatwoot.DefaultAccountID
	}
	return ""
}

func tokenSource(ctx context.Context, resolver *secrets.Resolver, key string) string {
	list, err := resolver.List(ctx)
	if err != nil {
		return ""
	}
	for _, meta := range list {
		if meta.Key == key {
			return meta.Backend
		}
	}
	return ""
}

func writeRecord(w io.Writer, f format.Format, api operation.API, fields []fieldView) error {
	name := chatwoot.CredentialName(api)

	if f != format.Table {
		return format.Value(w, f, map[string]interface{}{
			"api":        string(api),
			"credential": name,
			"fields":     fields,
		}, format.IsTTY())
	}

	rows := make([][]string, 0, len(fields))
	for _, view := range fields {
		rows = append(rows, []string{view.Field, view.Value, view.Source})
	}
	fmt.Fprintln(w, shared.Header.Render(name))
	return format.WriteTable(w, []string{"Field", "Value", "Source"}, rows)
}

func newDeleteCommand() *cobra.Command {
	var (
		backend    string
		yes        bool
		keepConfig bool
	)

	cmd := &cobra.Command{
		Use:               "delete <api>",
		Short:             "Remove a stored token and the record's config fields",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteAPIs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			api, err := parseAPI(args[0])
			if err != nil {
				return err
			}
			name := chatwoot.CredentialName(api)

			if !yes {
				if !shared.CanPrompt(false) {
					return shared.NewConfirmationRequiredError(fmt.Sprintf("deleting %s requires --yes in non-interactive mode", name))
				}
				confirmed := false
				err := huh.NewConfirm().
					Title(fmt.Sprintf("Delete %s?", name)).
					Affirmative("Delete").
					Negative("Cancel").
					Value(&confirmed).
					Run()
				if err != nil && !errors.Is(err, huh.ErrUserAborted) {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderWarn("Aborted."))
					return nil
				}
			}

			cfg, err := shared.LoadConfig()
			if err != nil {
				return err
			}

			tokenDeleted := false
			if field, ok := secretField(api); ok {
				resolver, err := shared.NewSecrets(cfg)
				if err != nil {
					return err
				}
				err = resolver.Delete(ctx, secrets.Key(name, field), backend)
				switch {
				case err == nil:
					tokenDeleted = true
				case !errors.Is(err, secrets.ErrSecretNotFound):
					return shared.NewCredentialsError("failed to delete token", err)
				}
			}

			if !keepConfig {
				path, err := shared.ConfigFilePath()
				if err != nil {
					return err
				}
				for _, target := range configFields(cfg, api) {
					*target = ""
				}
				if err := config.Save(path, cfg); err != nil {
					return err
				}
			}

			if shared.GetJSON() {
				return shared.WriteJSON(cmd.OutOrStdout(), struct {
					shared.JSONResponse
					Credential   string `json:"credential"`
					TokenDeleted bool   `json:"token_deleted"`
				}{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "credentials delete", Success: true},
					Credential:   name,
					TokenDeleted: tokenDeleted,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Deleted "+name))
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Only delete the token from this backend (keychain, file)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&keepConfig, "keep-config", false, "Keep the non-secret fields in the config file")
	_ = cmd.RegisterFlagCompletionFunc("backend", completion.CompleteSecretsBackend)

	return cmd
}

func newTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "test <api>",
		Short:             "Check that a credential record is accepted by Chatwoot",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteAPIs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			api, err := parseAPI(args[0])
			if err != nil {
				return err
			}

			app, err := shared.Bootstrap(ctx)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(ctx))

			if err := app.Runner.Verify(ctx, api); err != nil {
				return err
			}

			name := chatwoot.CredentialName(api)
			if shared.GetJSON() {
				return shared.WriteJSON(cmd.OutOrStdout(), struct {
					shared.JSONResponse
					Credential string `json:"credential"`
				}{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "credentials test", Success: true},
					Credential:   name,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(name+" is valid"))
			return nil
		},
	}
}
