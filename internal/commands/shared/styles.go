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
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// CLI style colors using lipgloss
var (
	StatusOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	StatusWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	StatusError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	Muted       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	Bold        = lipgloss.NewStyle().Bold(true)

	// Header styles section headers
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")) // Chatwoot blue
)

// Symbols for status indicators
const (
	SymbolOK    = "✓"
	SymbolWarn  = "⚠"
	SymbolError = "✗"
	SymbolSkip  = "-"
)

// RenderOK renders a success message with green checkmark
func RenderOK(msg string) string {
	return StatusOK.Render(SymbolOK) + " " + msg
}

// RenderWarn renders a warning message with orange symbol
func RenderWarn(msg string) string {
	return StatusWarn.Render(SymbolWarn) + " " + msg
}

// RenderError renders an error message with red X
func RenderError(msg string) string {
	return StatusError.Render(SymbolError) + " " + msg
}

// RenderLabel renders a dim label (for key: value pairs)
func RenderLabel(label string) string {
	return Muted.Render(label)
}

// RenderOutcome renders an item outcome symbol.
func RenderOutcome(outcome string) string {
	switch outcome {
	case operation.OutcomeSuccess:
		return StatusOK.Render(SymbolOK)
	case operation.OutcomeError:
		return StatusError.Render(SymbolError)
	default:
		return Muted.Render(SymbolSkip)
	}
}

// RenderSummary renders the one-line run summary printed after records.
func RenderSummary(s operation.Summary) string {
	line := fmt.Sprintf("%d items: %s succeeded", s.Items, StatusOK.Render(fmt.Sprint(s.Succeeded)))
	if s.Failed > 0 {
		line += ", " + StatusError.Render(fmt.Sprintf("%d failed", s.Failed))
	}
	if s.Skipped > 0 {
		line += ", " + Muted.Render(fmt.Sprintf("%d skipped", s.Skipped))
	}
	return line + Muted.Render(fmt.Sprintf(" (%d records, %s)", s.Records, s.Duration.Round(time.Millisecond)))
}
