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

package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
)

// ErrNonInteractive is returned by every prompt in non-interactive mode.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// SurveyPrompter implements Prompter using the survey library.
type SurveyPrompter struct {
	interactive bool
	opts        []survey.AskOpt
}

// NewSurveyPrompter creates a new survey-based prompter.
func NewSurveyPrompter(interactive bool, opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{
		interactive: interactive,
		opts:        opts,
	}
}

// PromptString collects a string input using survey.Input.
func (sp *SurveyPrompter) PromptString(_ context.Context, name, desc string, def string) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}

	var result string
	prompt := &survey.Input{
		Message: label(name, desc),
		Default: def,
	}

	err := survey.AskOne(prompt, &result, sp.with(survey.WithValidator(func(ans interface{}) error {
		str, _ := ans.(string)
		if str == "" {
			return errors.New("value is required")
		}
		return ValidateString(str)
	}))...)

	return result, err
}

// PromptNumber collects a numeric input using survey.Input with validation.
func (sp *SurveyPrompter) PromptNumber(_ context.Context, name, desc string, def float64) (float64, error) {
	if !sp.interactive {
		return 0, ErrNonInteractive
	}

	var input string
	defaultStr := ""
	if def != 0 {
		defaultStr = strconv.FormatFloat(def, 'f', -1, 64)
	}

	prompt := &survey.Input{
		Message: label(name, desc),
		Default: defaultStr,
	}

	err := survey.AskOne(prompt, &input, sp.with(survey.WithValidator(func(ans interface{}) error {
		str, _ := ans.(string)
		_, err := ValidateNumber(str)
		return err
	}))...)
	if err != nil {
		return 0, err
	}

	return ValidateNumber(input)
}

// PromptBool collects a boolean input using survey.Confirm.
func (sp *SurveyPrompter) PromptBool(_ context.Context, name, desc string, def bool) (bool, error) {
	if !sp.interactive {
		return false, ErrNonInteractive
	}

	var result bool
	err := survey.AskOne(&survey.Confirm{Message: label(name, desc), Default: def}, &result, sp.opts...)
	return result, err
}

// PromptEnum collects an enum selection using survey.Select.
func (sp *SurveyPrompter) PromptEnum(_ context.Context, name, desc string, options []string, def string) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}

	if len(options) == 0 {
		return "", fmt.Errorf("no options provided for %s", name)
	}

	var result string
	prompt := &survey.Select{
		Message: label(name, desc),
		Options: options,
		Default: def,
	}

	err := survey.AskOne(prompt, &result, sp.opts...)
	return result, err
}

// PromptJSON collects a JSON value using survey.Input with validation.
func (sp *SurveyPrompter) PromptJSON(_ context.Context, name, desc string, objectOnly bool) (interface{}, error) {
	if !sp.interactive {
		return nil, ErrNonInteractive
	}

	parse := ValidateJSON
	hint := "(JSON)"
	if objectOnly {
		parse = func(s string) (interface{}, error) { return ValidateObject(s) }
		hint = "(JSON object)"
	}

	var input string
	err := survey.AskOne(&survey.Input{Message: label(name, desc) + " " + hint}, &input, sp.with(survey.WithValidator(func(ans interface{}) error {
		str, _ := ans.(string)
		_, err := parse(str)
		return err
	}))...)
	if err != nil {
		return nil, err
	}

	return parse(input)
}

// Confirm asks a yes/no question using survey.Confirm.
func (sp *SurveyPrompter) Confirm(_ context.Context, message string) (bool, error) {
	if !sp.interactive {
		return false, ErrNonInteractive
	}

	var result bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &result, sp.opts...)
	return result, err
}

// IsInteractive returns whether the prompter can display interactive prompts.
func (sp *SurveyPrompter) IsInteractive() bool {
	return sp.interactive
}

func (sp *SurveyPrompter) with(opts ...survey.AskOpt) []survey.AskOpt {
	return append(append([]survey.AskOpt{}, sp.opts...), opts...)
}

func label(name, desc string) string {
	if desc == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, desc)
}
