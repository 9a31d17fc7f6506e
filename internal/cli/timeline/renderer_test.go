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

package timeline

import (
	"strings"
	"testing"
	"time"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

var baseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestRenderer_Render(t *testing.T) {
	r, err := NewRendererWidth(100)
	if err != nil {
		t.Fatal(err)
	}

	spans := []Span{
		{Name: "contact.update #0", End: baseTime.Add(100 * time.Millisecond), Duration: 100 * time.Millisecond, Outcome: operation.OutcomeSuccess, Records: 1},
		{Name: "contact.update #1", End: baseTime.Add(250 * time.Millisecond), Duration: 150 * time.Millisecond, Outcome: operation.OutcomeError},
		{Name: "contact.update #2", End: baseTime.Add(250 * time.Millisecond), Outcome: operation.OutcomeSkipped},
	}

	output, err := r.Render("3f2a9c", spans)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	checks := []string{"Run: 3f2a9c", "250ms", "contact.update #1", StatusIconOK, StatusIconError, "3 items, 1 records"}
	for _, want := range checks {
		if !strings.Contains(output, want) {
			t.Errorf("Render() output missing %q\nOutput:\n%s", want, output)
		}
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if got := len(lines); got != 3+len(spans)+2 {
		t.Errorf("Render() produced %d lines, want %d", got, 3+len(spans)+2)
	}
}

func TestRenderer_RenderEmpty(t *testing.T) {
	r := &Renderer{Width: 100, BarWidth: 40}
	if _, err := r.Render("x", nil); err == nil {
		t.Error("Render() with no spans should fail")
	}
}

func TestRenderer_ZeroTotalDuration(t *testing.T) {
	r := &Renderer{Width: 100, BarWidth: 40}
	output, err := r.Render("x", []Span{{Name: "a", End: baseTime, Outcome: operation.OutcomeSuccess}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(output, strings.Repeat("█", 40)) {
		t.Errorf("zero-length run should fill the bar\n%s", output)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "short string unchanged",
			input:  "short",
			maxLen: 10,
			want:   "short",
		},
		{
			name:   "exact length unchanged",
			input:  "exactly10c",
			maxLen: 10,
			want:   "exactly10c",
		},
		{
			name:   "long string truncated",
			input:  "this is a very long string",
			maxLen: 10,
			want:   "this is...",
		},
		{
			name:   "maxLen <= 3 no ellipsis",
			input:  "test",
			maxLen: 3,
			want:   "tes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		dur  time.Duration
		want string
	}{
		{
			name: "microseconds",
			dur:  500 * time.Microsecond,
			want: "500µs",
		},
		{
			name: "milliseconds",
			dur:  150 * time.Millisecond,
			want: "150ms",
		},
		{
			name: "seconds",
			dur:  2500 * time.Millisecond,
			want: "2.5s",
		},
		{
			name: "minutes",
			dur:  90 * time.Second,
			want: "1.5m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDuration(tt.dur)
			if got != tt.want {
				t.Errorf("formatDuration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	spans := []Span{
		{Name: "span1", End: baseTime.Add(100 * time.Millisecond), Duration: 100 * time.Millisecond},
		{Name: "span2", End: baseTime.Add(200 * time.Millisecond), Duration: 150 * time.Millisecond},
		{Name: "span3", End: baseTime.Add(150 * time.Millisecond), Duration: 140 * time.Millisecond},
	}

	minTime, maxTime := bounds(spans)

	if !minTime.Equal(baseTime) {
		t.Errorf("bounds() minTime = %v, want %v", minTime, baseTime)
	}
	if want := baseTime.Add(200 * time.Millisecond); !maxTime.Equal(want) {
		t.Errorf("bounds() maxTime = %v, want %v", maxTime, want)
	}
}

func TestNewRendererWidth(t *testing.T) {
	if _, err := NewRendererWidth(MinTerminalWidth - 1); err == nil {
		t.Error("NewRendererWidth() should reject narrow terminals")
	}

	r, err := NewRendererWidth(200)
	if err != nil {
		t.Fatal(err)
	}
	if r.BarWidth != 60 {
		t.Errorf("BarWidth = %d, want 60", r.BarWidth)
	}

	r, err = NewRendererWidth(MinTerminalWidth)
	if err != nil {
		t.Fatal(err)
	}
	if r.BarWidth != DefaultBarWidth {
		t.Errorf("BarWidth = %d, want %d", r.BarWidth, DefaultBarWidth)
	}
}
