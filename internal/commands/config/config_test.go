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

package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/config"
)

// isolate points --config at a file in a temp dir that does not exist yet.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("CHATWOOT_API_ACCESS_TOKEN", "")
	t.Setenv("CHATWOOT_PLATFORM_ACCESS_TOKEN", "")
	t.Setenv("CHATWOOT_MASTER_KEY", "")

	path := filepath.Join(dir, "chatwoot", "config.yaml")
	shared.SetConfigPathForTest(path)
	t.Cleanup(func() {
		shared.SetConfigPathForTest("")
		shared.SetJSONForTest(false)
		shared.SetOutputForTest("")
	})
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewConfigCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInit(t *testing.T) {
	path := isolate(t)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Credentials, cfg.Credentials)

	_, err = execute(t, "init")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))

	_, err = execute(t, "init", "--force")
	require.NoError(t, err)
}

func TestShow_JSONUsesFileKeys(t *testing.T) {
	path := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("credentials:\n  application:\n    account_id: \"42\"\n"), 0o600))
	shared.SetOutputForTest("json")

	out, err := execute(t, "show")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	creds := doc["credentials"].(map[string]interface{})
	app := creds["application"].(map[string]interface{})
	assert.Equal(t, "42", app["account_id"])
	assert.Equal(t, "https://app.chatwoot.com", app["base_url"])
}

func TestShow_TableWithoutFile(t *testing.T) {
	isolate(t)

	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "not created")
	assert.Contains(t, out, "node_name: Chatwoot")
}

func TestShow_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("CHATWOOT_CREDENTIALS_APPLICATION_ACCOUNT_ID", "77")
	shared.SetOutputForTest("yaml")

	out, err := execute(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, `account_id: "77"`)
}

func TestPath(t *testing.T) {
	path := isolate(t)

	out, err := execute(t, "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}
