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

import "github.com/tombee/chatwoot-connector/internal/operation"

// InputType is how a parameter is collected.
type InputType string

const (
	// InputTypeString collects free text (also used for dates)
	InputTypeString InputType = "string"

	// InputTypeNumber collects integers and floats
	InputTypeNumber InputType = "number"

	// InputTypeBoolean collects yes/no answers
	InputTypeBoolean InputType = "boolean"

	// InputTypeEnum selects one of the parameter options
	InputTypeEnum InputType = "enum"

	// InputTypeJSON collects any JSON value
	InputTypeJSON InputType = "json"

	// InputTypeObject collects a JSON object (collection parameters)
	InputTypeObject InputType = "object"
)

// TypeOf maps an operation parameter type to an input type.
func TypeOf(param operation.ParameterInfo) InputType {
	switch param.Type {
	case operation.ParamNumber:
		return InputTypeNumber
	case operation.ParamBoolean:
		return InputTypeBoolean
	case operation.ParamOptions:
		return InputTypeEnum
	case operation.ParamJSON:
		return InputTypeJSON
	case operation.ParamCollection:
		return InputTypeObject
	default:
		return InputTypeString
	}
}

// MaxRetries is the maximum number of validation retry attempts per input.
const MaxRetries = 3

// MaxInputSize is the maximum allowed input size in bytes.
const MaxInputSize = 65536

// MaxNestedDepth is the maximum allowed nesting depth for JSON values.
const MaxNestedDepth = 10
