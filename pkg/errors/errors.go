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

// Package errors holds the error contracts shared by the CLI and the
// internal packages.
package errors

import "fmt"

// UserVisibleError is implemented by errors that carry a message and an
// optional suggestion meant for the person running the command.
type UserVisibleError interface {
	error

	// IsUserVisible reports whether the message is safe to show as-is.
	IsUserVisible() bool

	// UserMessage returns the message to print.
	UserMessage() string

	// Suggestion returns actionable guidance, or "".
	Suggestion() string
}

// ConfigError reports a problem with the configuration file or environment.
type ConfigError struct {
	// Key is the offending configuration key, e.g. "http.timeout"
	Key string

	// Reason explains what is wrong
	Reason string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Key != "" {
		msg = fmt.Sprintf("config error at %s", e.Key)
	}
	msg += ": " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// IsUserVisible implements UserVisibleError.
func (e *ConfigError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *ConfigError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *ConfigError) Suggestion() string {
	return "Run 'chatwoot config show' to inspect the effective configuration"
}

// Wrap annotates err with message. It returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
