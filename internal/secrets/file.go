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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	// FileBackendPriority is the priority for the encrypted file backend.
	FileBackendPriority = 25

	// MasterKeyEnv holds the passphrase that unlocks the secrets file.
	MasterKeyEnv = "CHATWOOT_MASTER_KEY"

	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	keyLength     = 32
	saltLength    = 16
)

// sealedFile is the on-disk layout of the secrets file.
type sealedFile struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

// FileBackend keeps secrets in one AES-256-GCM encrypted JSON file. The
// encryption key is derived from a master passphrase with Argon2id. It is
// meant for headless hosts without a keyring service.
type FileBackend struct {
	path      string
	master    []byte
	available bool
	mu        sync.RWMutex
}

// NewFileBackend creates a file backend at path (default
// <user config dir>/chatwoot/secrets.enc). The master key is masterKey, else
// CHATWOOT_MASTER_KEY, else the contents of master.key next to the secrets
// file. Without a master key the backend reports itself unavailable.
func NewFileBackend(path, masterKey string) (*FileBackend, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(dir, "chatwoot", "secrets.enc")
	}

	master, err := resolveMasterKey(masterKey, filepath.Join(filepath.Dir(path), "master.key"))
	if err != nil {
		return &FileBackend{path: path}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}

	return &FileBackend{path: path, master: master, available: true}, nil
}

// Name returns "file".
func (f *FileBackend) Name() string {
	return "file"
}

// Get retrieves a secret from the file.
func (f *FileBackend) Get(_ context.Context, key string) (string, error) {
	if !f.available {
		return "", fmt.Errorf("%w: master key not available", ErrBackendUnavailable)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	stored, err := f.load()
	if err != nil {
		return "", err
	}
	value, ok := stored[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	return value, nil
}

// Set stores a secret in the file.
func (f *FileBackend) Set(_ context.Context, key string, value string) error {
	return f.update(func(stored map[string]string) error {
		stored[key] = value
		return nil
	})
}

// Delete removes a secret from the file.
func (f *FileBackend) Delete(_ context.Context, key string) error {
	return f.update(func(stored map[string]string) error {
		if _, ok := stored[key]; !ok {
			return fmt.Errorf("%w: %s", ErrSecretNotFound, key)
		}
		delete(stored, key)
		return nil
	})
}

// List returns every key in the file.
func (f *FileBackend) List(context.Context) ([]string, error) {
	if !f.available {
		return nil, fmt.Errorf("%w: master key not available", ErrBackendUnavailable)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	stored, err := f.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(stored))
	for key := range stored {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Available reports whether a master key was found.
func (f *FileBackend) Available() bool {
	return f.available
}

// Priority returns FileBackendPriority.
func (f *FileBackend) Priority() int {
	return FileBackendPriority
}

func (f *FileBackend) update(mutate func(map[string]string) error) error {
	if !f.available {
		return fmt.Errorf("%w: master key not available", ErrBackendUnavailable)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	stored, err := f.load()
	if err != nil {
		return err
	}
	if err := mutate(stored); err != nil {
		return err
	}
	return f.save(stored)
}

// load decrypts the file. A missing file is an empty store.
func (f *FileBackend) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	var sealed sealedFile
	if err := json.Unmarshal(raw, &sealed); err != nil {
		return nil, fmt.Errorf("invalid secrets file format: %w", err)
	}

	gcm, err := newGCM(f.master, sealed.Salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, sealed.Nonce, sealed.Data, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong master key or corrupted data): %w", err)
	}
	defer clear(plaintext)

	stored := map[string]string{}
	if err := json.Unmarshal(plaintext, &stored); err != nil {
		return nil, fmt.Errorf("invalid decrypted data: %w", err)
	}
	return stored, nil
}

// save encrypts stored with a fresh salt and nonce and replaces the file
// atomically.
func (f *FileBackend) save(stored map[string]string) error {
	plaintext, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal secrets: %w", err)
	}
	defer clear(plaintext)

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := newGCM(f.master, salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	raw, err := json.Marshal(sealedFile{
		Salt:  salt,
		Nonce: nonce,
		Data:  gcm.Seal(nil, nonce, plaintext, nil),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal secrets file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace secrets file: %w", err)
	}
	return nil
}

func newGCM(master, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(master, salt, argon2Time, argon2Memory, argon2Threads, keyLength)
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

func resolveMasterKey(provided, keyPath string) ([]byte, error) {
	if provided != "" {
		return []byte(provided), nil
	}
	if env := os.Getenv(MasterKeyEnv); env != "" {
		return []byte(env), nil
	}

	info, err := os.Lstat(keyPath)
	if err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o077 == 0 {
		if key, err := os.ReadFile(keyPath); err == nil && len(key) > 0 {
			return key, nil
		}
	}

	return nil, fmt.Errorf("master key not available (set %s or create %s with mode 0600)", MasterKeyEnv, keyPath)
}
