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

package history

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/cli/timeline"
	"github.com/tombee/chatwoot-connector/internal/commands/completion"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/history"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
)

// NewCommand creates the history command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past runs",
		Annotations: map[string]string{
			"group": "execution",
		},
	}

	cmd.AddCommand(newListCommand())

	return cmd
}

type listOptions struct {
	limit         int
	resource      string
	outcome       string
	correlationID string
	timeline      bool
}

func newListCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded item outcomes, newest first",
		Long: `List the item outcomes recorded by past runs.

Every item a run processes is stored with the run's correlation ID, so one
run can be selected with --correlation-id. --timeline draws that run as a
timeline instead of a table.

Examples:
  chatwoot history list
  chatwoot history list --resource contact --outcome error --limit 20
  chatwoot history list --correlation-id 5d1c... --timeline`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", history.DefaultLimit, "Maximum number of entries")
	cmd.Flags().StringVar(&opts.resource, "resource", "", "Only show this resource")
	cmd.Flags().StringVar(&opts.outcome, "outcome", "", "Only show this outcome (success, error, skipped)")
	cmd.Flags().StringVar(&opts.correlationID, "correlation-id", "", "Only show one run")
	cmd.Flags().BoolVar(&opts.timeline, "timeline", false, "Draw the run as a timeline (defaults to the latest run)")
	_ = cmd.RegisterFlagCompletionFunc("outcome", completion.CompleteOutcomes)

	return cmd
}

func runList(cmd *cobra.Command, opts listOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outputFormat, err := shared.GetOutputFormat()
	if err != nil {
		return err
	}
	if opts.limit < 1 {
		return shared.NewInvalidInputError("--limit must be at least 1", nil)
	}
	switch opts.outcome {
	case "", operation.OutcomeSuccess, operation.OutcomeError, operation.OutcomeSkipped:
	default:
		return shared.NewInvalidInputError(fmt.Sprintf("unknown outcome %q (want success, error or skipped)", opts.outcome), nil)
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return shared.NewInvalidInputError("history is disabled (set history.enabled: true)", nil)
	}

	store, err := history.Open(ctx, history.Config{
		Path:   cfg.History.Path,
		Logger: log.WithComponent(shared.NewLogger(cfg), "history"),
	})
	if err != nil {
		return shared.NewExecutionError("failed to open history", err)
	}
	defer store.Close()

	query := history.Query{
		Limit:         opts.limit,
		Resource:      opts.resource,
		Outcome:       opts.outcome,
		CorrelationID: opts.correlationID,
	}

	if opts.timeline && query.CorrelationID == "" {
		latest, err := store.List(ctx, history.Query{Limit: 1, Resource: opts.resource})
		if err != nil {
			return err
		}
		if len(latest) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}
		query.CorrelationID = latest[0].CorrelationID
	}

	entries, err := store.List(ctx, query)
	if err != nil {
		return err
	}

	if opts.timeline && outputFormat == format.Table {
		return writeTimeline(cmd.OutOrStdout(), query.CorrelationID, entries)
	}
	return writeEntries(cmd.OutOrStdout(), outputFormat, entries)
}

func writeEntries(w io.Writer, f format.Format, entries []history.Entry) error {
	if f != format.Table {
		records := make([]map[string]interface{}, 0, len(entries))
		for _, e := range entries {
			record := map[string]interface{}{
				"id":             e.ID,
				"correlation_id": e.CorrelationID,
				"api":            e.API,
				"resource":       e.Resource,
				"operation":      e.Operation,
				"item_index":     e.ItemIndex,
				"outcome":        e.Outcome,
				"records":        e.Records,
				"duration_ms":    e.Duration.Milliseconds(),
				"created_at":     e.CreatedAt.Format(time.RFC3339Nano),
			}
			if e.Error != "" {
				record["error"] = e.Error
			}
			records = append(records, record)
		}
		return format.Records(w, f, records, format.IsTTY())
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(e.CorrelationID),
			e.Resource + "." + e.Operation,
			strconv.Itoa(e.ItemIndex),
			shared.RenderOutcome(e.Outcome),
			strconv.Itoa(e.Records),
			e.Duration.String(),
			format.Cell(e.Error),
		})
	}
	return format.WriteTable(w, []string{"ID", "Time", "Run", "Operation", "Item", "Outcome", "Records", "Duration", "Error"}, rows)
}

func writeTimeline(w io.Writer, runID string, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	// Entries are newest first; the timeline reads oldest first.
	spans := make([]timeline.Span, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		spans = append(spans, timeline.Span{
			Name:     fmt.Sprintf("%s.%s #%d", e.Resource, e.Operation, e.ItemIndex),
			End:      e.CreatedAt,
			Duration: e.Duration,
			Outcome:  e.Outcome,
			Records:  e.Records,
		})
	}

	renderer, err := timeline.NewRenderer()
	if err != nil {
		return shared.NewInvalidInputError("cannot draw timeline", err)
	}
	out, err := renderer.Render(runID, spans)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
