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
	"errors"
	"strings"
)

var (
	// ErrSecretNotFound is returned when a key does not exist in a backend.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrBackendUnavailable is returned when a backend cannot be used here.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrReadOnlyBackend is returned when writing to a read-only backend.
	ErrReadOnlyBackend = errors.New("backend is read-only")
)

// SecretBackend stores secret values. Backends are queried in priority
// order by the Resolver.
type SecretBackend interface {
	// Name returns the backend identifier ("env", "keychain", "file").
	Name() string

	// Get retrieves a secret. Returns ErrSecretNotFound if not present.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a secret. Returns ErrReadOnlyBackend if not supported.
	Set(ctx context.Context, key string, value string) error

	// Delete removes a secret. Returns ErrSecretNotFound if not present.
	Delete(ctx context.Context, key string) error

	// List returns the keys (never values) this backend can enumerate.
	List(ctx context.Context) ([]string, error)

	// Available reports whether the backend works in this environment.
	Available() bool

	// Priority orders resolution, higher first: env 100, keychain 50, file 25.
	Priority() int
}

// ReadOnlyBackend marks backends that reject writes.
type ReadOnlyBackend interface {
	SecretBackend
	ReadOnly() bool
}

// SecretMetadata describes where a key was found.
type SecretMetadata struct {
	Key      string
	Backend  string
	ReadOnly bool
}

// Key builds the storage key for a credential field.
func Key(credential, field string) string {
	return credential + "." + field
}

// SplitKey is the inverse of Key.
func SplitKey(key string) (credential, field string, ok bool) {
	return strings.Cut(key, ".")
}
