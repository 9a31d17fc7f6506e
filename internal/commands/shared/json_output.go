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
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/tombee/chatwoot-connector/internal/operation"
	pkgerrors "github.com/tombee/chatwoot-connector/pkg/errors"
)

// JSONResponse is the base envelope for all JSON output
type JSONResponse struct {
	Version string `json:"@version"`
	Command string `json:"command,omitempty"`
	Success bool   `json:"success"`
}

// JSONError represents a structured error with code, message and suggestion
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	ItemIndex  *int   `json:"item_index,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

// NewJSONError describes err for JSON output
func NewJSONError(err error) JSONError {
	out := JSONError{
		Code:    ErrorCode(err),
		Message: err.Error(),
	}

	var userErr pkgerrors.UserVisibleError
	if errors.As(err, &userErr) && userErr.IsUserVisible() {
		out.Message = userErr.UserMessage()
		out.Suggestion = userErr.Suggestion()
	}

	var opErr *operation.Error
	if errors.As(err, &opErr) {
		index := opErr.ItemIndex
		out.ItemIndex = &index
		out.StatusCode = opErr.StatusCode
	}
	return out
}

// WriteJSON writes response to w as indented JSON
func WriteJSON(w io.Writer, response interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// EmitJSON writes response to stdout
func EmitJSON(response interface{}) error {
	return WriteJSON(os.Stdout, response)
}

// EmitJSONError creates and emits a JSON error response
func EmitJSONError(command string, errs []JSONError) error {
	type errorResponse struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}

	return EmitJSON(errorResponse{
		JSONResponse: JSONResponse{
			Version: "1.0",
			Command: command,
			Success: false,
		},
		Errors: errs,
	})
}
