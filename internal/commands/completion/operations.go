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

package completion

import (
	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/operation"
)

// CompleteResourceOperation completes the <resource> <operation> argument
// pair of run and operations describe.
func CompleteResourceOperation(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		registry, err := chatwoot.NewRegistry()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		switch len(args) {
		case 0:
			var completions []string
			for _, api := range operation.APIs {
				for _, resource := range registry.Resources(api) {
					completions = append(completions, resource+"\t"+string(api)+" API")
				}
			}
			return completions, cobra.ShellCompDirectiveNoFileComp

		case 1:
			var completions []string
			for _, def := range registry.List() {
				if def.Resource == args[0] {
					completions = append(completions, def.Operation+"\t"+def.Description)
				}
			}
			return completions, cobra.ShellCompDirectiveNoFileComp
		}

		return nil, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteAPIs completes API names for --api flags and credentials
// arguments.
func CompleteAPIs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		completions := make([]string, 0, len(operation.APIs))
		for _, api := range operation.APIs {
			completions = append(completions, string(api)+"\t"+chatwoot.CredentialName(api))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}
