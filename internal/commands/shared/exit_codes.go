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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tombee/chatwoot-connector/internal/operation"
	pkgerrors "github.com/tombee/chatwoot-connector/pkg/errors"
)

// Exit codes for chatwoot commands
const (
	ExitSuccess          = 0
	ExitExecutionFailed  = 1
	ExitInvalidInput     = 2
	ExitCredentials      = 3
	ExitAPIError         = 4
	ExitConfirmationNeed = 70 // Destructive operation without --yes in non-interactive mode (EX_SOFTWARE)
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates an error for failed runs
func NewExecutionError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitExecutionFailed, Message: msg, Cause: cause}
}

// NewInvalidInputError creates an error for bad flags, parameter files or item files
func NewInvalidInputError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidInput, Message: msg, Cause: cause}
}

// NewCredentialsError creates an error for missing or rejected credentials
func NewCredentialsError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitCredentials, Message: msg, Cause: cause}
}

// NewConfirmationRequiredError creates an error for destructive operations
// that could not be confirmed
func NewConfirmationRequiredError(msg string) *ExitError {
	return &ExitError{Code: ExitConfirmationNeed, Message: msg}
}

// ExitCodeFor picks the exit code for err. An ExitError keeps its own code;
// operation errors map by type.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var opErr *operation.Error
	if errors.As(err, &opErr) {
		switch opErr.Type {
		case operation.ErrorTypeValidation, operation.ErrorTypeMissingField,
			operation.ErrorTypeUnsupported, operation.ErrorTypeFilter:
			return ExitInvalidInput
		case operation.ErrorTypeCredentials:
			return ExitCredentials
		case operation.ErrorTypeAPI:
			return ExitAPIError
		}
	}

	var cfgErr *pkgerrors.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitInvalidInput
	}

	return ExitExecutionFailed
}

// HandleExitError reports err and exits with the matching code
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(ReportError(os.Stderr, err))
}

// ReportError writes err to w (or a JSON error document to stdout in --json
// mode) and returns the exit code.
func ReportError(w io.Writer, err error) int {
	code := ExitCodeFor(err)

	if GetJSON() {
		_ = EmitJSONError("", []JSONError{NewJSONError(err)})
		return code
	}

	fmt.Fprintln(w, RenderError("Error: "+err.Error()))
	if suggestion := userVisibleSuggestion(err); suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
	return code
}

// userVisibleSuggestion walks the chain to the first UserVisibleError and
// returns its suggestion.
func userVisibleSuggestion(err error) string {
	for err != nil {
		if userErr, ok := err.(pkgerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				return userErr.Suggestion()
			}
			return ""
		}
		err = errors.Unwrap(err)
	}
	return ""
}
