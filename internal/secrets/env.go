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

package secrets

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	// EnvBackendPriority lets environment variables override stored tokens.
	EnvBackendPriority = 100

	envSecretPrefix = "CHATWOOT_SECRET_"
)

// envAliases maps well-known keys to their conventional variable names.
var envAliases = map[string]string{
	"chatwootApi.accessToken":                 "CHATWOOT_API_ACCESS_TOKEN",
	"chatwootPlatformApi.platformAccessToken": "CHATWOOT_PLATFORM_ACCESS_TOKEN",
}

// EnvBackend reads secrets from environment variables. A key is looked up
// as CHATWOOT_SECRET_<KEY> (upper-cased, "." replaced by "_") and then
// under its alias, if it has one.
type EnvBackend struct {
	lookup func(string) (string, bool)
}

// NewEnvBackend creates a backend over the process environment.
func NewEnvBackend() *EnvBackend {
	return &EnvBackend{lookup: os.LookupEnv}
}

// Name returns "env".
func (e *EnvBackend) Name() string {
	return "env"
}

// Get retrieves a secret from the environment.
func (e *EnvBackend) Get(_ context.Context, key string) (string, error) {
	if value, ok := e.lookup(EnvName(key)); ok && value != "" {
		return value, nil
	}
	if alias, ok := envAliases[key]; ok {
		if value, ok := e.lookup(alias); ok && value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: environment variable not set", ErrSecretNotFound)
}

// Set returns ErrReadOnlyBackend.
func (e *EnvBackend) Set(context.Context, string, string) error {
	return ErrReadOnlyBackend
}

// Delete returns ErrReadOnlyBackend.
func (e *EnvBackend) Delete(context.Context, string) error {
	return ErrReadOnlyBackend
}

// List returns the aliased keys whose variables are set. Generic
// CHATWOOT_SECRET_* names cannot be mapped back to keys and are not listed.
func (e *EnvBackend) List(context.Context) ([]string, error) {
	keys := []string{}
	for key, alias := range envAliases {
		if value, ok := e.lookup(alias); ok && value != "" {
			keys = append(keys, key)
			continue
		}
		if value, ok := e.lookup(EnvName(key)); ok && value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Available returns true.
func (e *EnvBackend) Available() bool {
	return true
}

// Priority returns EnvBackendPriority.
func (e *EnvBackend) Priority() int {
	return EnvBackendPriority
}

// ReadOnly returns true.
func (e *EnvBackend) ReadOnly() bool {
	return true
}

// EnvName returns the generic variable name for key.
// Example: "chatwootApi.accessToken" -> "CHATWOOT_SECRET_CHATWOOTAPI_ACCESSTOKEN"
func EnvName(key string) string {
	return envSecretPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
