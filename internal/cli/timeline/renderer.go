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

// Package timeline renders the items of one run as an ASCII timeline.
package timeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

const (
	// MinTerminalWidth is the minimum supported terminal width
	MinTerminalWidth = 80
	// DefaultWidth is used when the terminal size cannot be detected
	DefaultWidth = 100
	// DefaultBarWidth is the default width for duration bars
	DefaultBarWidth = 40

	StatusIconOK      = "✓"
	StatusIconError   = "✗"
	StatusIconSkipped = "-"
)

// Span is one item of a run. Start is derived from End and Duration.
type Span struct {
	Name     string
	End      time.Time
	Duration time.Duration
	Outcome  string
	Records  int
}

// Start returns when the span began.
func (s Span) Start() time.Time {
	return s.End.Add(-s.Duration)
}

// Renderer renders ASCII timelines.
type Renderer struct {
	Width    int
	BarWidth int
}

// NewRenderer creates a renderer sized to the terminal on stdout.
func NewRenderer() (*Renderer, error) {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = DefaultWidth
	}
	return NewRendererWidth(width)
}

// NewRendererWidth creates a renderer for a fixed width.
func NewRendererWidth(width int) (*Renderer, error) {
	if width < MinTerminalWidth {
		return nil, fmt.Errorf("terminal width %d is too narrow (minimum %d columns)", width, MinTerminalWidth)
	}

	// "│ name(24) bar  duration(6)  icon  records(8) │"
	barWidth := width - 50
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < DefaultBarWidth {
		barWidth = DefaultBarWidth
	}

	return &Renderer{Width: width, BarWidth: barWidth}, nil
}

// Render draws spans under a header naming the run.
func (r *Renderer) Render(runID string, spans []Span) (string, error) {
	if len(spans) == 0 {
		return "", fmt.Errorf("no items to render")
	}

	minTime, maxTime := bounds(spans)
	total := maxTime.Sub(minTime)

	var sb strings.Builder
	border := strings.Repeat("─", r.Width-2)
	sb.WriteString("┌" + border + "┐\n")
	fmt.Fprintf(&sb, "│ Run: %-*s Total: %8s │\n", r.Width-25, truncate(runID, r.Width-25), formatDuration(total))
	sb.WriteString("├" + border + "┤\n")

	records := 0
	for _, span := range spans {
		sb.WriteString(r.renderSpan(span, minTime, total))
		records += span.Records
	}

	sb.WriteString("└" + border + "┘\n")
	fmt.Fprintf(&sb, "%d items, %d records\n", len(spans), records)

	return sb.String(), nil
}

func bounds(spans []Span) (time.Time, time.Time) {
	minTime := spans[0].Start()
	maxTime := spans[0].End
	for _, span := range spans[1:] {
		if span.Start().Before(minTime) {
			minTime = span.Start()
		}
		if span.End.After(maxTime) {
			maxTime = span.End
		}
	}
	return minTime, maxTime
}

func (r *Renderer) renderSpan(span Span, minTime time.Time, total time.Duration) string {
	startPos, barLength := 0, r.BarWidth
	if total > 0 {
		startPos = int(float64(span.Start().Sub(minTime)) / float64(total) * float64(r.BarWidth))
		barLength = int(float64(span.Duration) / float64(total) * float64(r.BarWidth))
	}
	if barLength < 1 {
		barLength = 1
	}
	if startPos >= r.BarWidth {
		startPos = r.BarWidth - 1
	}
	if startPos+barLength > r.BarWidth {
		barLength = r.BarWidth - startPos
	}

	bar := make([]rune, r.BarWidth)
	for i := range bar {
		if i >= startPos && i < startPos+barLength {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}

	return fmt.Sprintf("│ %-24s %s  %6s  %s  %8s │\n",
		truncate(span.Name, 24),
		string(bar),
		formatDuration(span.Duration),
		statusIcon(span.Outcome),
		fmt.Sprintf("%d rec", span.Records),
	)
}

func statusIcon(outcome string) string {
	switch outcome {
	case operation.OutcomeError:
		return StatusIconError
	case operation.OutcomeSkipped:
		return StatusIconSkipped
	}
	return StatusIconOK
}

// truncate shortens a string to maxLen with ellipsis if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
