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
	"fmt"
)

// MockPrompter implements Prompter with scripted responses for testing.
// It allows tests to simulate user input without requiring interactive terminals.
type MockPrompter struct {
	responses    []interface{}
	currentIndex int
	interactive  bool
	callLog      []string
}

var _ Prompter = (*MockPrompter)(nil)

// NewMockPrompter creates a new mock prompter with pre-scripted responses.
// A response that is an error is returned as the prompt error.
func NewMockPrompter(interactive bool, responses ...interface{}) *MockPrompter {
	return &MockPrompter{
		responses:   responses,
		interactive: interactive,
		callLog:     make([]string, 0),
	}
}

func (mp *MockPrompter) next(call string) (interface{}, bool, error) {
	mp.callLog = append(mp.callLog, call)

	if mp.currentIndex >= len(mp.responses) {
		return nil, false, nil
	}
	resp := mp.responses[mp.currentIndex]
	mp.currentIndex++

	if err, ok := resp.(error); ok {
		return nil, true, err
	}
	return resp, true, nil
}

// PromptString returns the next string response.
func (mp *MockPrompter) PromptString(_ context.Context, name, _ string, def string) (string, error) {
	resp, ok, err := mp.next(fmt.Sprintf("PromptString(%s)", name))
	if err != nil || !ok {
		return def, err
	}
	if str, ok := resp.(string); ok {
		return str, nil
	}
	return "", fmt.Errorf("mock response is not a string")
}

// PromptNumber returns the next numeric response.
func (mp *MockPrompter) PromptNumber(_ context.Context, name, _ string, def float64) (float64, error) {
	resp, ok, err := mp.next(fmt.Sprintf("PromptNumber(%s)", name))
	if err != nil || !ok {
		return def, err
	}
	switch num := resp.(type) {
	case float64:
		return num, nil
	case int:
		return float64(num), nil
	}
	return 0, fmt.Errorf("mock response is not a number")
}

// PromptBool returns the next boolean response.
func (mp *MockPrompter) PromptBool(_ context.Context, name, _ string, def bool) (bool, error) {
	resp, ok, err := mp.next(fmt.Sprintf("PromptBool(%s)", name))
	if err != nil || !ok {
		return def, err
	}
	if b, ok := resp.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("mock response is not a boolean")
}

// PromptEnum returns the next enum response.
func (mp *MockPrompter) PromptEnum(_ context.Context, name, _ string, options []string, def string) (string, error) {
	resp, ok, err := mp.next(fmt.Sprintf("PromptEnum(%s)", name))
	if err != nil || !ok {
		return def, err
	}
	str, isString := resp.(string)
	if !isString {
		return "", fmt.Errorf("mock response is not a string")
	}
	return ValidateEnum(str, options)
}

// PromptJSON returns the next response as-is.
func (mp *MockPrompter) PromptJSON(_ context.Context, name, _ string, objectOnly bool) (interface{}, error) {
	resp, ok, err := mp.next(fmt.Sprintf("PromptJSON(%s)", name))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no mock response available")
	}
	if _, isObject := resp.(map[string]interface{}); objectOnly && !isObject {
		return nil, fmt.Errorf("mock response is not an object")
	}
	return resp, nil
}

// Confirm returns the next boolean response, or false.
func (mp *MockPrompter) Confirm(_ context.Context, message string) (bool, error) {
	resp, ok, err := mp.next(fmt.Sprintf("Confirm(%s)", message))
	if err != nil || !ok {
		return false, err
	}
	b, _ := resp.(bool)
	return b, nil
}

// IsInteractive returns the configured interactive state.
func (mp *MockPrompter) IsInteractive() bool {
	return mp.interactive
}

// GetCallLog returns the log of all prompt calls made.
func (mp *MockPrompter) GetCallLog() []string {
	return mp.callLog
}

// Reset clears the call log and resets the response index.
func (mp *MockPrompter) Reset() {
	mp.currentIndex = 0
	mp.callLog = make([]string, 0)
}
