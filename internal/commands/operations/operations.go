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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/commands/completion"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/operation"
)

var title = cases.Title(language.English, cases.NoLower)

// NewCommand creates the operations command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "Browse the available Chatwoot operations",
		Annotations: map[string]string{
			"group": "execution",
		},
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newDescribeCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	var apiName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operations",
		Long: `List every resource operation, grouped by API.

Examples:
  chatwoot operations list
  chatwoot operations list --api client
  chatwoot operations list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := shared.GetOutputFormat()
			if err != nil {
				return err
			}

			api := operation.API(apiName)
			if api != "" && !api.Valid() {
				return shared.NewInvalidInputError(fmt.Sprintf("unknown API %q (want application, client or platform)", apiName), nil)
			}

			registry, err := chatwoot.NewRegistry()
			if err != nil {
				return err
			}

			return writeList(cmd.OutOrStdout(), outputFormat, registry, api)
		},
	}

	cmd.Flags().StringVar(&apiName, "api", "", "Only list operations of this API (application, client, platform)")
	_ = cmd.RegisterFlagCompletionFunc("api", completion.CompleteAPIs)

	return cmd
}

func writeList(w io.Writer, f format.Format, registry *operation.Registry, only operation.API) error {
	var defs []*operation.Definition
	if only != "" {
		defs = registry.ListAPI(only)
	} else {
		defs = registry.List()
	}

	if f != format.Table {
		records := make([]map[string]interface{}, 0, len(defs))
		for _, def := range defs {
			records = append(records, map[string]interface{}{
				"api":         string(def.API),
				"resource":    def.Resource,
				"operation":   def.Operation,
				"name":        def.DisplayName,
				"description": def.Description,
				"tags":        tagsOf(def),
			})
		}
		return format.Records(w, f, records, format.IsTTY())
	}

	for i, api := range operation.APIs {
		var rows [][]string
		for _, def := range defs {
			if def.API != api {
				continue
			}
			rows = append(rows, []string{def.Resource, def.Operation, def.DisplayName, strings.Join(def.Tags, ", ")})
		}
		if len(rows) == 0 {
			continue
		}

		if i > 0 && only == "" {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, shared.Header.Render(title.String(string(api))+" API"))
		if err := format.WriteTable(w, []string{"Resource", "Operation", "Name", "Tags"}, rows); err != nil {
			return err
		}
	}
	return nil
}

func tagsOf(def *operation.Definition) []string {
	if def.Tags == nil {
		return []string{}
	}
	return def.Tags
}
