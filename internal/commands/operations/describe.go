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

package operations

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/commands/completion"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/operation"
)

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <resource> <operation>",
		Short: "Show the parameters of an operation",
		Long: `Describe prints an operation's parameters, their types and defaults.

Examples:
  chatwoot operations describe contact create
  chatwoot operations describe message getAll -o yaml`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completion.CompleteResourceOperation,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := shared.GetOutputFormat()
			if err != nil {
				return err
			}

			registry, err := chatwoot.NewRegistry()
			if err != nil {
				return err
			}

			def, err := registry.Lookup(args[0], args[1])
			if err != nil {
				return err
			}

			return writeDescription(cmd.OutOrStdout(), outputFormat, def)
		},
	}
}

func writeDescription(w io.Writer, f format.Format, def *operation.Definition) error {
	isTTY := format.IsTTY()

	if f != format.Table {
		params := make([]map[string]interface{}, 0, len(def.Parameters))
		for _, p := range def.Parameters {
			param := map[string]interface{}{
				"name":     p.Name,
				"type":     p.Type,
				"required": p.Required,
			}
			if p.Description != "" {
				param["description"] = p.Description
			}
			if p.Default != nil {
				param["default"] = p.Default
			}
			if len(p.Options) > 0 {
				param["options"] = p.Options
			}
			if len(p.Fields) > 0 {
				param["fields"] = p.Fields
			}
			params = append(params, param)
		}

		return format.Value(w, f, map[string]interface{}{
			"api":         string(def.API),
			"resource":    def.Resource,
			"operation":   def.Operation,
			"name":        def.DisplayName,
			"description": def.Description,
			"tags":        tagsOf(def),
			"parameters":  params,
		}, isTTY)
	}

	rendered, err := format.Markdown(describeMarkdown(def), isTTY)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}

// describeMarkdown renders def as a markdown document.
func describeMarkdown(def *operation.Definition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s: %s\n\n", title.String(def.Resource), def.DisplayName)
	if def.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", def.Description)
	}
	fmt.Fprintf(&b, "- API: `%s`\n", def.API)
	fmt.Fprintf(&b, "- Command: `chatwoot run %s %s`\n", def.Resource, def.Operation)
	if len(def.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(def.Tags, ", "))
	}

	if len(def.Parameters) == 0 {
		b.WriteString("\nThis operation takes no parameters.\n")
		return b.String()
	}

	b.WriteString("\n## Parameters\n\n")
	b.WriteString("| Name | Type | Required | Default | Description |\n")
	b.WriteString("|------|------|----------|---------|-------------|\n")
	for _, p := range def.Parameters {
		required := ""
		if p.Required {
			required = "yes"
		}
		dflt := ""
		if p.Default != nil {
			dflt = "`" + format.Cell(p.Default) + "`"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s |\n", p.Name, p.Type, required, dflt, escapeCell(p.Description))
	}

	for _, p := range def.Parameters {
		switch {
		case len(p.Options) > 0:
			fmt.Fprintf(&b, "\n### %s\n\nOne of: %s\n", p.Name, quoteAll(p.Options))
		case len(p.Fields) > 0:
			fmt.Fprintf(&b, "\n### %s\n\nAccepted fields: %s\n", p.Name, quoteAll(p.Fields))
		}
	}

	return b.String()
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "`" + v + "`"
	}
	return strings.Join(quoted, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
