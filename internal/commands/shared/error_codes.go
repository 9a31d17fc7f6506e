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
	"os"

	"github.com/tombee/chatwoot-connector/internal/operation"
	pkgerrors "github.com/tombee/chatwoot-connector/pkg/errors"
)

// Error codes for structured JSON output
const (
	// Validation errors (E001-E099)
	ErrorCodeMissingField = "E001" // Missing required field
	ErrorCodeValidation   = "E002" // Invalid parameter value
	ErrorCodeUnsupported  = "E003" // Unknown resource or operation

	// Execution errors (E100-E199)
	ErrorCodeAPI = "E101" // Chatwoot rejected the request

	// Configuration errors (E200-E299)
	ErrorCodeInvalidConfig = "E201" // Invalid configuration
	ErrorCodeCredentials   = "E202" // Missing or unusable credentials

	// Input errors (E300-E399)
	ErrorCodeInvalidInput = "E301" // Invalid flag, params file or items file
	ErrorCodeFileNotFound = "E302" // File not found

	// Other errors (E400-E499)
	ErrorCodeFilter          = "E401" // Invalid --when or --filter expression
	ErrorCodeExecutionFailed = "E403" // Execution failed
)

// ErrorCode maps err to a JSON error code
func ErrorCode(err error) string {
	var opErr *operation.Error
	if errors.As(err, &opErr) {
		switch opErr.Type {
		case operation.ErrorTypeMissingField:
			return ErrorCodeMissingField
		case operation.ErrorTypeValidation:
			return ErrorCodeValidation
		case operation.ErrorTypeUnsupported:
			return ErrorCodeUnsupported
		case operation.ErrorTypeAPI:
			return ErrorCodeAPI
		case operation.ErrorTypeCredentials:
			return ErrorCodeCredentials
		case operation.ErrorTypeFilter:
			return ErrorCodeFilter
		}
	}

	var cfgErr *pkgerrors.ConfigError
	if errors.As(err, &cfgErr) {
		return ErrorCodeInvalidConfig
	}

	if errors.Is(err, os.ErrNotExist) {
		return ErrorCodeFileNotFound
	}

	switch ExitCodeFor(err) {
	case ExitInvalidInput:
		return ErrorCodeInvalidInput
	case ExitCredentials:
		return ErrorCodeCredentials
	}
	return ErrorCodeExecutionFailed
}
