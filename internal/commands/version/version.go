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

package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
)

// VersionInfo contains version metadata
type VersionInfo struct {
	Version    string `json:"version" yaml:"version"`
	Commit     string `json:"commit" yaml:"commit"`
	BuildDate  string `json:"build_date" yaml:"build_date"`
	GoVersion  string `json:"go_version" yaml:"go_version"`
	Platform   string `json:"platform" yaml:"platform"`
	Operations int    `json:"operations" yaml:"operations"`
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, build date and the number of supported Chatwoot operations.`,
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	outputFormat, err := shared.GetOutputFormat()
	if err != nil {
		return err
	}

	v, c, b := shared.GetVersion()
	info := VersionInfo{
		Version:   v,
		Commit:    c,
		BuildDate: b,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if registry, err := chatwoot.NewRegistry(); err == nil {
		info.Operations = registry.Len()
	}

	if outputFormat != format.Table {
		return format.Value(cmd.OutOrStdout(), outputFormat, info, format.IsTTY())
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "chatwoot version %s\n", info.Version)
	fmt.Fprintf(w, "  commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "  build date: %s\n", info.BuildDate)
	fmt.Fprintf(w, "  go:         %s (%s)\n", info.GoVersion, info.Platform)
	fmt.Fprintf(w, "  operations: %d\n", info.Operations)
	return nil
}
