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

package shared

import (
	"os"

	"golang.org/x/term"
)

// NonInteractiveEnv forces non-interactive mode when set to "true".
const NonInteractiveEnv = "CHATWOOT_NON_INTERACTIVE"

// ciMarkers are environment variables set by common CI systems. A marker
// counts when it is "true" or "1"; pathValued markers count when non-empty.
var ciMarkers = []struct {
	name       string
	pathValued bool
}{
	{name: "CI"},
	{name: "GITHUB_ACTIONS"},
	{name: "GITLAB_CI"},
	{name: "CIRCLECI"},
	{name: "BUILDKITE"},
	{name: "JENKINS_HOME", pathValued: true},
}

// IsNonInteractive reports whether prompts must be avoided: CHATWOOT_NON_INTERACTIVE=true,
// a CI environment, or a stdin that is not a terminal.
func IsNonInteractive() bool {
	if os.Getenv(NonInteractiveEnv) == "true" {
		return true
	}
	if isCIEnvironment() {
		return true
	}
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// CanPrompt reports whether a command may prompt. disabled is the command's
// own --no-interactive flag; --json output never prompts.
func CanPrompt(disabled bool) bool {
	return !disabled && !GetJSON() && !IsNonInteractive()
}

func isCIEnvironment() bool {
	for _, marker := range ciMarkers {
		value := os.Getenv(marker.name)
		if value == "true" || value == "1" {
			return true
		}
		if marker.pathValued && value != "" {
			return true
		}
	}
	return false
}
