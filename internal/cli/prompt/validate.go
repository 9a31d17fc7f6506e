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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ValidateString rejects null bytes, control characters and oversized input.
func ValidateString(input string) error {
	if len(input) > MaxInputSize {
		return fmt.Errorf("input exceeds maximum size of %d bytes", MaxInputSize)
	}

	for i, r := range input {
		if r == 0 {
			return fmt.Errorf("input contains null byte at position %d", i)
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return fmt.Errorf("input contains invalid control character at position %d", i)
		}
	}

	return nil
}

// ValidateNumber validates and parses a numeric input.
func ValidateNumber(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("input is empty")
	}

	num, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("input must be a number")
	}

	return num, nil
}

// ValidateBool validates and parses a boolean input.
// Accepts: y/yes/true/1 and n/no/false/0 (case-insensitive).
func ValidateBool(input string) (bool, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	switch input {
	case "y", "yes", "true", "1":
		return true, nil
	case "n", "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("input must be y/yes/true/1 or n/no/false/0")
	}
}

// ValidateEnum validates an option selection by value or 1-based index.
func ValidateEnum(input string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options available")
	}

	// Check if input is a number (1-indexed selection)
	if idx, err := strconv.Atoi(strings.TrimSpace(input)); err == nil {
		if idx < 1 || idx > len(options) {
			return "", fmt.Errorf("selection must be between 1 and %d", len(options))
		}
		return options[idx-1], nil
	}

	// Check if input matches an option directly
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(input), opt) {
			return opt, nil
		}
	}

	return "", fmt.Errorf("input must be a valid option or number between 1 and %d", len(options))
}

// ValidateJSON parses any JSON value with the nesting depth limit.
func ValidateJSON(input string) (interface{}, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("input is empty")
	}
	if len(input) > MaxInputSize {
		return nil, fmt.Errorf("input exceeds maximum size of %d bytes", MaxInputSize)
	}

	var value interface{}
	if err := json.Unmarshal([]byte(input), &value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := checkDepth(value, 0); err != nil {
		return nil, err
	}
	return value, nil
}

// ValidateObject parses a JSON object, as collection parameters take.
func ValidateObject(input string) (map[string]interface{}, error) {
	value, err := ValidateJSON(input)
	if err != nil {
		return nil, err
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("input must be a JSON object")
	}
	return obj, nil
}

// checkDepth recursively checks the nesting depth of an object.
func checkDepth(v interface{}, depth int) error {
	if depth > MaxNestedDepth {
		return fmt.Errorf("object nesting exceeds maximum depth of %d", MaxNestedDepth)
	}

	switch val := v.(type) {
	case map[string]interface{}:
		for _, nested := range val {
			if err := checkDepth(nested, depth+1); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, nested := range val {
			if err := checkDepth(nested, depth+1); err != nil {
				return err
			}
		}
	}

	return nil
}
