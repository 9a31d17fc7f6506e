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
)

// CompleteOutputFormats provides completion for --output flag values.
func CompleteOutputFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return []string{
			"table\tHuman-readable table",
			"json\tJSON document",
			"yaml\tYAML document",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteSecretsBackend provides completion for --backend flag values.
func CompleteSecretsBackend(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return []string{
			"keychain\tSystem keychain (macOS/Linux/Windows)",
			"file\tEncrypted file storage",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteOutcomes provides completion for --outcome flag values.
func CompleteOutcomes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return []string{
			"success\tItem succeeded",
			"error\tItem failed",
			"skipped\tItem filtered out by --when",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteItemFiles restricts --items and --params completion to JSON and
// YAML files.
func CompleteItemFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}
