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

package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
)

const docsBaseURL = "https://www.chatwoot.com/developers/api"

// CommandInfo describes one command for machine-readable help.
type CommandInfo struct {
	Name        string     `json:"name" yaml:"name"`
	Path        string     `json:"path" yaml:"path"`
	Short       string     `json:"short" yaml:"short"`
	Long        string     `json:"long,omitempty" yaml:"long,omitempty"`
	Usage       string     `json:"usage" yaml:"usage"`
	Flags       []FlagInfo `json:"flags,omitempty" yaml:"flags,omitempty"`
	Examples    string     `json:"examples,omitempty" yaml:"examples,omitempty"`
	Subcommands []string   `json:"subcommands,omitempty" yaml:"subcommands,omitempty"`
	Group       string     `json:"group,omitempty" yaml:"group,omitempty"`
	Aliases     []string   `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// FlagInfo describes one flag.
type FlagInfo struct {
	Name      string `json:"name" yaml:"name"`
	Shorthand string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Type      string `json:"type" yaml:"type"`
	Usage     string `json:"usage" yaml:"usage"`
	Default   string `json:"default,omitempty" yaml:"default,omitempty"`
	Required  bool   `json:"required" yaml:"required"`
}

// HelpDocument is the machine-readable form of help. Either Commands (the
// whole tree) or Command (one entry) is set.
type HelpDocument struct {
	Version     string        `json:"@version" yaml:"version"`
	Commands    []CommandInfo `json:"commands,omitempty" yaml:"commands,omitempty"`
	Command     *CommandInfo  `json:"command,omitempty" yaml:"command,omitempty"`
	GlobalFlags []FlagInfo    `json:"global_flags,omitempty" yaml:"global_flags,omitempty"`
	DocsURL     string        `json:"docs_url" yaml:"docs_url"`
}

// NewHelpCommand creates the help command. With --json or -o json|yaml it
// describes the command tree for scripts instead of printing usage text.
func NewHelpCommand(rootCmd *cobra.Command) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Long: `Help provides detailed information about commands and their usage.

Run 'chatwoot help' to see all available commands.
Run 'chatwoot help <command>' to see detailed help for a specific command.
Use --json or --output yaml to get machine-readable output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := shared.GetOutputFormat()
			if err != nil {
				return err
			}
			if jsonOutput {
				outputFormat = format.JSON
			}

			target := rootCmd
			if len(args) > 0 {
				found, rest, err := rootCmd.Find(args)
				if err != nil || found == rootCmd || len(rest) > 0 {
					return shared.NewInvalidInputError(fmt.Sprintf("command %q not found", strings.Join(args, " ")), nil)
				}
				target = found
			}

			if outputFormat == format.Table {
				return target.Help()
			}

			doc := HelpDocument{
				Version:     "1.0",
				GlobalFlags: extractGlobalFlags(rootCmd),
				DocsURL:     docsBaseURL + "/",
			}
			if target == rootCmd {
				doc.Commands = commandTree(rootCmd)
			} else {
				info := extractCommandMetadata(target)
				doc.Command = &info
			}
			return format.Value(cmd.OutOrStdout(), outputFormat, doc, false)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

// commandTree lists every visible command below root, depth first, sorted
// by path.
func commandTree(root *cobra.Command) []CommandInfo {
	var out []CommandInfo
	var walk func(*cobra.Command)
	walk = func(c *cobra.Command) {
		for _, sub := range c.Commands() {
			if sub.Hidden || sub.Name() == "help" {
				continue
			}
			out = append(out, extractCommandMetadata(sub))
			walk(sub)
		}
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func extractCommandMetadata(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:     cmd.Name(),
		Path:     cmd.CommandPath(),
		Short:    cmd.Short,
		Long:     cmd.Long,
		Usage:    cmd.UseLine(),
		Examples: cmd.Example,
		Aliases:  cmd.Aliases,
		Group:    groupOf(cmd),
		Flags:    flagsOf(cmd.LocalNonPersistentFlags()),
	}

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, sub.Name())
		}
	}
	return info
}

// groupOf returns the group annotation of cmd or its nearest ancestor.
func groupOf(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if group, ok := c.Annotations["group"]; ok {
			return group
		}
	}
	return ""
}

func extractGlobalFlags(rootCmd *cobra.Command) []FlagInfo {
	return flagsOf(rootCmd.PersistentFlags())
}

func flagsOf(set *pflag.FlagSet) []FlagInfo {
	var flags []FlagInfo
	set.VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden || flag.Name == "help" {
			return
		}
		info := FlagInfo{
			Name:      flag.Name,
			Shorthand: flag.Shorthand,
			Type:      flag.Value.Type(),
			Usage:     flag.Usage,
			Default:   flag.DefValue,
		}
		if required, ok := flag.Annotations[cobra.BashCompOneRequiredFlag]; ok && len(required) > 0 {
			info.Required = required[0] == "true"
		}
		flags = append(flags, info)
	})
	return flags
}
