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

package run

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/cli/prompt"
	"github.com/tombee/chatwoot-connector/internal/commands/completion"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/host"
	"github.com/tombee/chatwoot-connector/internal/operation"
)

type options struct {
	api            string
	params         []string
	paramsFile     string
	items          string
	continueOnFail bool
	when           string
	filter         string
	yes            bool
	noInteractive  bool
}

// NewCommand creates the run command
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "run <resource> <operation>",
		Short: "Run a Chatwoot operation",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `Run executes one Chatwoot operation once per input item.

Parameters come from --params (a JSON or YAML object) overlaid with --param
key=value flags. Values that parse as JSON (numbers, booleans, objects,
arrays) are decoded; everything else is a string. A value starting with "="
is an expression over the item ({json, params, index}) and a value starting
with "$ref:" is a JSON pointer into the item JSON.

Items are read from --items files (glob patterns such as 'data/**/*.json',
or '-' for stdin). Without --items the operation runs once.

Examples:
  chatwoot run contact getAll --param returnAll=true
  chatwoot run message create --param conversationId=42 --param content="Hi"
  chatwoot run contact update --items 'contacts/*.json' \
      --param contactId='=json.id' --param name='$ref:/full_name' --continue-on-fail
  chatwoot run conversation getAll --filter '.[] | select(.status == "open")'`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completion.CompleteResourceOperation,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.api, "api", "", "API the operation belongs to (application, client, platform)")
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "Parameter in key=value format (repeatable)")
	cmd.Flags().StringVar(&opts.paramsFile, "params", "", "JSON or YAML file with parameters (use '-' for stdin)")
	cmd.Flags().StringVarP(&opts.items, "items", "i", "", "Glob of JSON or YAML item files (use '-' for stdin)")
	cmd.Flags().BoolVar(&opts.continueOnFail, "continue-on-fail", false, "Record failed items as {error} and keep going")
	cmd.Flags().StringVar(&opts.when, "when", "", "Only run items for which this expression is true")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "jq expression applied to the output records")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation for destructive operations")
	cmd.Flags().BoolVar(&opts.noInteractive, "no-interactive", false, "Disable prompts for missing parameters")

	_ = cmd.RegisterFlagCompletionFunc("api", completion.CompleteAPIs)
	_ = cmd.RegisterFlagCompletionFunc("params", completion.CompleteItemFiles)
	_ = cmd.RegisterFlagCompletionFunc("items", completion.CompleteItemFiles)

	return cmd
}

func runOperation(cmd *cobra.Command, resource, op string, opts options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outputFormat, err := shared.GetOutputFormat()
	if err != nil {
		return err
	}

	api := operation.API(opts.api)
	if api != "" && !api.Valid() {
		return shared.NewInvalidInputError(fmt.Sprintf("unknown API %q (want application, client or platform)", opts.api), nil)
	}

	params, err := parseParams(opts.params, opts.paramsFile)
	if err != nil {
		return shared.NewInvalidInputError("invalid parameters", err)
	}

	var items []operation.Item
	if opts.items != "" {
		if items, err = loadItems(opts.items); err != nil {
			return shared.NewInvalidInputError("invalid items", err)
		}
	}

	app, err := shared.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.WithoutCancel(ctx))

	def, err := app.Registry.Lookup(resource, op)
	if err != nil {
		return err
	}

	interactive := shared.CanPrompt(opts.noInteractive)
	prompter := prompt.NewSurveyPrompter(interactive)

	if interactive && len(items) == 0 {
		if err := collectMissing(ctx, prompter, def, params); err != nil {
			return shared.NewInvalidInputError("missing parameters", err)
		}
	}

	if def.HasTag(operation.TagDestructive) && !opts.yes {
		confirmed, err := confirm(ctx, prompter, def, len(items))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderWarn("Aborted."))
			return nil
		}
	}

	req := host.RunRequest{
		API:            api,
		Resource:       resource,
		Operation:      op,
		Params:         params,
		Items:          items,
		ContinueOnFail: opts.continueOnFail,
		When:           opts.when,
		Filter:         opts.filter,
	}

	showProgress := interactive && !shared.GetQuiet() && outputFormat == format.Table
	var spinner *shared.Spinner
	if showProgress {
		spinner = shared.NewSpinner()
		req.Observers = append(req.Observers, spinner)
		total := len(items)
		if total == 0 {
			total = 1
		}
		spinner.Start(fmt.Sprintf("%s %s", resource, op), total)
	}

	result, err := app.Runner.Run(ctx, req)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputFormat, result)
}

// collectMissing prompts for required parameters the caller did not pass.
func collectMissing(ctx context.Context, prompter prompt.Prompter, def *operation.Definition, params map[string]interface{}) error {
	missing := prompt.MissingParameters(def.Parameters, params)
	if len(missing) == 0 {
		return nil
	}

	collected, err := prompt.NewInputCollector(prompter).CollectParameters(ctx, missing)
	if err != nil {
		return err
	}
	for k, v := range collected {
		params[k] = v
	}
	return nil
}

// confirm asks before running a destructive operation. Without a terminal
// the run is refused.
func confirm(ctx context.Context, prompter prompt.Prompter, def *operation.Definition, items int) (bool, error) {
	if !prompter.IsInteractive() {
		return false, shared.NewConfirmationRequiredError(fmt.Sprintf(
			"%s %s is destructive; pass --yes to run it non-interactively", def.Resource, def.Operation))
	}

	target := "once"
	if items > 0 {
		target = fmt.Sprintf("for %d items", items)
	}
	return prompter.Confirm(ctx, fmt.Sprintf("%s will run %s. Continue?", def.DisplayName, target))
}

// runEnvelope is the --json document of a run.
type runEnvelope struct {
	shared.JSONResponse
	CorrelationID string                   `json:"correlation_id"`
	Summary       runSummary               `json:"summary"`
	Records       []map[string]interface{} `json:"records"`
}

type runSummary struct {
	Items      int   `json:"items"`
	Succeeded  int   `json:"succeeded"`
	Failed     int   `json:"failed"`
	Skipped    int   `json:"skipped"`
	Records    int   `json:"records"`
	DurationMS int64 `json:"duration_ms"`
}

func writeResult(stdout, stderr io.Writer, outputFormat format.Format, result *host.RunResult) error {
	if shared.GetJSON() {
		records := result.Records
		if records == nil {
			records = []map[string]interface{}{}
		}
		s := result.Summary
		return shared.WriteJSON(stdout, runEnvelope{
			JSONResponse:  shared.JSONResponse{Version: "1.0", Command: "run", Success: s.Failed == 0},
			CorrelationID: result.CorrelationID.String(),
			Summary: runSummary{
				Items:      s.Items,
				Succeeded:  s.Succeeded,
				Failed:     s.Failed,
				Skipped:    s.Skipped,
				Records:    s.Records,
				DurationMS: s.Duration.Milliseconds(),
			},
			Records: records,
		})
	}

	if err := format.Records(stdout, outputFormat, result.Records, format.IsTTY()); err != nil {
		return err
	}

	if !shared.GetQuiet() && outputFormat == format.Table {
		fmt.Fprintln(stderr, shared.RenderSummary(result.Summary))
		fmt.Fprintln(stderr, shared.RenderLabel("correlation id: "+result.CorrelationID.String()))
	}
	return nil
}
