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

// MissingParameters returns the required parameters without a default that
// provided does not set, in declaration order. An empty string counts as
// missing.
func MissingParameters(params []operation.ParameterInfo, provided map[string]interface{}) []operation.ParameterInfo {
	missing := make([]operation.ParameterInfo, 0)

	for _, param := range params {
		if !param.Required || param.Default != nil {
			continue
		}
		if value, ok := provided[param.Name]; ok {
			if s, isString := value.(string); !isString || s != "" {
				continue
			}
		}
		missing = append(missing, param)
	}

	return missing
}
