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
	"fmt"
	"sort"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeychainBackendPriority is the priority for the keychain backend.
	KeychainBackendPriority = 50

	// KeychainService is the service name entries are stored under.
	KeychainService = "chatwoot"

	availabilityProbe = "__chatwoot_availability_test__"
)

// KeychainBackend stores secrets in the OS keychain (macOS Keychain, Linux
// Secret Service, Windows Credential Manager).
type KeychainBackend struct {
	service   string
	available bool
}

// NewKeychainBackend creates a keychain backend and probes whether the
// keyring service answers.
func NewKeychainBackend() *KeychainBackend {
	backend := &KeychainBackend{service: KeychainService, available: true}

	_, err := keyring.Get(backend.service, availabilityProbe)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		backend.available = false
	}

	return backend
}

// Name returns "keychain".
func (k *KeychainBackend) Name() string {
	return "keychain"
}

// Get retrieves a secret from the keychain.
func (k *KeychainBackend) Get(_ context.Context, key string) (string, error) {
	if !k.available {
		return "", fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}

	value, err := keyring.Get(k.service, key)
	if err != nil {
		return "", k.wrap(key, err)
	}
	return value, nil
}

// Set stores a secret in the keychain.
func (k *KeychainBackend) Set(_ context.Context, key string, value string) error {
	if !k.available {
		return fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}

	if err := keyring.Set(k.service, key, value); err != nil {
		return k.wrap(key, err)
	}
	return nil
}

// Delete removes a secret from the keychain.
func (k *KeychainBackend) Delete(_ context.Context, key string) error {
	if !k.available {
		return fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}

	if err := keyring.Delete(k.service, key); err != nil {
		return k.wrap(key, err)
	}
	return nil
}

// List probes the well-known credential keys. go-keyring cannot enumerate
// entries, so keys stored under other names are not reported.
func (k *KeychainBackend) List(ctx context.Context) ([]string, error) {
	if !k.available {
		return nil, fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)
	}

	keys := []string{}
	for key := range envAliases {
		if _, err := k.Get(ctx, key); err == nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Available reports whether the keychain answered the probe.
func (k *KeychainBackend) Available() bool {
	return k.available
}

// Priority returns KeychainBackendPriority.
func (k *KeychainBackend) Priority() int {
	return KeychainBackendPriority
}

func (k *KeychainBackend) wrap(key string, err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	if isKeychainUnavailableError(err) {
		return fmt.Errorf("%w: %s", ErrBackendUnavailable, err.Error())
	}
	return fmt.Errorf("keychain error: %w", err)
}

// isKeychainUnavailableError matches the platform messages for a locked or
// missing keyring.
func isKeychainUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"locked",
		"cannot access",
		"permission denied",
		"failed to unlock",
		"user interaction required",
		"secret service",
		"dbus",
		"user canceled",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
