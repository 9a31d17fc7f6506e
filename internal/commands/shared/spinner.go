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
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// spinnerFrames defines the animation frames for the spinner
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an animated progress line on stderr while a run is in
// flight. It is an operation.Observer and counts completed items.
type Spinner struct {
	mu        sync.Mutex
	out       io.Writer
	message   string
	total     int
	completed int
	failed    int
	startTime time.Time
	active    bool
	done      chan struct{}
	frameIdx  int
	isTTY     bool
}

var _ operation.Observer = (*Spinner)(nil)

// NewSpinner creates a spinner on stderr. Off a terminal it stays silent.
func NewSpinner() *Spinner {
	return &Spinner{
		out:   os.Stderr,
		isTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Start begins the animation for a run of total items.
func (s *Spinner) Start(message string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}

	s.message = message
	s.total = total
	s.completed = 0
	s.failed = 0
	s.startTime = time.Now()
	s.active = true
	s.done = make(chan struct{})
	s.frameIdx = 0

	if !s.isTTY {
		return
	}

	s.render()
	go s.animate(s.done)
}

// ItemCompleted advances the item counter.
func (s *Spinner) ItemCompleted(_ context.Context, outcome operation.ItemOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed++
	if outcome.Outcome == operation.OutcomeError {
		s.failed++
	}
}

// Stop stops the spinner, clears the line and returns the elapsed time.
func (s *Spinner) Stop() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return 0
	}

	elapsed := time.Since(s.startTime)
	s.active = false
	close(s.done)

	if s.isTTY {
		fmt.Fprint(s.out, "\r\033[K")
	}
	return elapsed
}

func (s *Spinner) animate(done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.active {
				s.frameIdx = (s.frameIdx + 1) % len(spinnerFrames)
				s.render()
			}
			s.mu.Unlock()
		}
	}
}

// render draws the current state (must be called with mu held)
func (s *Spinner) render() {
	progress := fmt.Sprintf("%d/%d", s.completed, s.total)
	if s.failed > 0 {
		progress += StatusError.Render(fmt.Sprintf(" %d failed", s.failed))
	}

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s",
		Muted.Render(spinnerFrames[s.frameIdx]),
		s.message,
		progress,
		Muted.Render("("+formatElapsed(time.Since(s.startTime))+")"))
}

// formatElapsed formats a duration for display (e.g., "12s", "1m 23s")
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
