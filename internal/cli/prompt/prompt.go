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

// Package prompt collects operation parameters and confirmations from a
// terminal. It has a non-interactive mode for scripts and CI.
package prompt

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// Prompter defines the interface for interactive input collection.
// Implementations include SurveyPrompter (production) and MockPrompter (testing).
type Prompter interface {
	// PromptString collects a string input from the user
	PromptString(ctx context.Context, name, desc string, def string) (string, error)

	// PromptNumber collects a numeric input from the user
	PromptNumber(ctx context.Context, name, desc string, def float64) (float64, error)

	// PromptBool collects a boolean input from the user
	PromptBool(ctx context.Context, name, desc string, def bool) (bool, error)

	// PromptEnum presents a list of options and collects the user's selection
	PromptEnum(ctx context.Context, name, desc string, options []string, def string) (string, error)

	// PromptJSON collects a JSON value; objectOnly rejects anything but an object
	PromptJSON(ctx context.Context, name, desc string, objectOnly bool) (interface{}, error)

	// Confirm asks a yes/no question that defaults to no
	Confirm(ctx context.Context, message string) (bool, error)

	// IsInteractive returns true if prompts can be displayed
	IsInteractive() bool
}

// InputCollector manages a prompt session for collecting multiple parameters.
type InputCollector struct {
	prompter Prompter
	progress ProgressTracker
	out      io.Writer
}

// ProgressTracker tracks progress through a multi-input prompt session.
type ProgressTracker struct {
	current int
	total   int
}

// NewInputCollector creates a new input collector with the given prompter.
func NewInputCollector(p Prompter) *InputCollector {
	return &InputCollector{
		prompter: p,
		out:      os.Stderr,
	}
}

// SetOutput redirects retry messages (default: os.Stderr).
func (ic *InputCollector) SetOutput(w io.Writer) {
	ic.out = w
}

// SetProgress configures the progress tracker for multi-input sessions.
func (ic *InputCollector) SetProgress(current, total int) {
	ic.progress = ProgressTracker{
		current: current,
		total:   total,
	}
}

// GetProgress returns the current progress information.
func (ic *InputCollector) GetProgress() (current, total int) {
	return ic.progress.current, ic.progress.total
}

// FormatProgressPrefix returns a formatted progress indicator string.
func (ic *InputCollector) FormatProgressPrefix() string {
	if ic.progress.total > 0 {
		return fmt.Sprintf("[%d/%d] ", ic.progress.current, ic.progress.total)
	}
	return ""
}

// CollectParameter prompts for one parameter with retry logic.
// Returns the collected value or an error after MaxRetries attempts.
func (ic *InputCollector) CollectParameter(ctx context.Context, param operation.ParameterInfo) (interface{}, error) {
	if !ic.prompter.IsInteractive() {
		return nil, fmt.Errorf("parameter %q is required (pass --param %s=...)", param.Name, param.Name)
	}

	desc := ic.FormatProgressPrefix() + param.Description
	inputType := TypeOf(param)

	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		value, err := ic.ask(ctx, inputType, param, desc)
		if err == nil {
			return value, nil
		}
		lastErr = err

		// Show validation error without revealing user input
		if attempt < MaxRetries {
			fmt.Fprintf(ic.out, "Error: %s must be a %s (received invalid value)\n", param.Name, inputType)
		}
	}

	return nil, fmt.Errorf("failed to collect parameter %s after %d attempts: %w", param.Name, MaxRetries, lastErr)
}

func (ic *InputCollector) ask(ctx context.Context, inputType InputType, param operation.ParameterInfo, desc string) (interface{}, error) {
	switch inputType {
	case InputTypeNumber:
		return ic.prompter.PromptNumber(ctx, param.Name, desc, 0)
	case InputTypeBoolean:
		return ic.prompter.PromptBool(ctx, param.Name, desc, false)
	case InputTypeEnum:
		def := ""
		if len(param.Options) > 0 {
			def = param.Options[0]
		}
		return ic.prompter.PromptEnum(ctx, param.Name, desc, param.Options, def)
	case InputTypeJSON:
		return ic.prompter.PromptJSON(ctx, param.Name, desc, false)
	case InputTypeObject:
		return ic.prompter.PromptJSON(ctx, param.Name, desc, true)
	default:
		return ic.prompter.PromptString(ctx, param.Name, desc, "")
	}
}

// CollectParameters prompts for each parameter in sequence.
func (ic *InputCollector) CollectParameters(ctx context.Context, params []operation.ParameterInfo) (map[string]interface{}, error) {
	results := make(map[string]interface{}, len(params))

	ic.progress.total = len(params)
	for i, param := range params {
		ic.progress.current = i + 1

		value, err := ic.CollectParameter(ctx, param)
		if err != nil {
			return nil, err
		}
		results[param.Name] = value
	}

	return results, nil
}
