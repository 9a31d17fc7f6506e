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

package run

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want interface{}
	}{
		{"42", float64(42)},
		{"true", true},
		{"null", nil},
		{`{"plan":"pro"}`, map[string]interface{}{"plan": "pro"}},
		{`[1,2]`, []interface{}{float64(1), float64(2)}},
		{"Hello there", "Hello there"},
		{`"quoted"`, `"quoted"`},
		{"+15551234", "+15551234"},
		{"=json.id", "=json.id"},
		{"$ref:/email", "$ref:/email"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.raw))
		})
	}
}

func TestParseParams(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "params.yaml")
	writeFile(t, file, "conversationId: 7\ncontent: from file\nprivate: false\n")

	params, err := parseParams([]string{"content=from flag", "messageType=outgoing"}, file)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"conversationId": 7,
		"content":        "from flag",
		"private":        false,
		"messageType":    "outgoing",
	}, params)
}

func TestParseParams_JSONFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "params.json")
	writeFile(t, file, `{"returnAll": true}`)

	params, err := parseParams(nil, file)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"returnAll": true}, params)
}

func TestParseParams_Errors(t *testing.T) {
	_, err := parseParams([]string{"no-equals"}, "")
	assert.Error(t, err)

	_, err = parseParams([]string{"=value"}, "")
	assert.Error(t, err)

	_, err = parseParams(nil, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.json")
	writeFile(t, bad, "[1,2]")
	_, err = parseParams(nil, bad)
	assert.Error(t, err)
}

func TestParseParams_Stdin(t *testing.T) {
	stdin = strings.NewReader(`{"query": "ada"}`)
	t.Cleanup(func() { stdin = os.Stdin })

	params, err := parseParams(nil, "-")
	require.NoError(t, err)
	assert.Equal(t, "ada", params["query"])
}

func TestLoadItems_GlobOrderAndShapes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "two.json"), `[{"id": 2}, {"json": {"id": 3}, "params": {"content": "hi"}}]`)
	writeFile(t, filepath.Join(dir, "a", "one.json"), `{"id": 1}`)
	writeFile(t, filepath.Join(dir, "a", "ignored.txt"), `not json`)
	writeFile(t, filepath.Join(dir, "c", "four.yaml"), "- id: 4\n  json: not-an-envelope\n")

	items, err := loadItems(filepath.Join(dir, "**", "*.{json,yaml}"))
	require.NoError(t, err)

	require.Len(t, items, 4)
	assert.Equal(t, operation.Item{JSON: map[string]interface{}{"id": float64(1)}}, items[0])
	assert.Equal(t, operation.Item{JSON: map[string]interface{}{"id": float64(2)}}, items[1])
	assert.Equal(t, operation.Item{
		JSON:   map[string]interface{}{"id": float64(3)},
		Params: map[string]interface{}{"content": "hi"},
	}, items[2])
	assert.Equal(t, map[string]interface{}{"id": 4, "json": "not-an-envelope"}, items[3].JSON)
}

func TestLoadItems_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadItems(filepath.Join(dir, "*.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, filepath.Join(dir, "scalars.json"), `[1, 2]`)
	_, err = loadItems(filepath.Join(dir, "scalars.json"))
	assert.ErrorContains(t, err, "not an object")

	writeFile(t, filepath.Join(dir, "string.json"), `"x"`)
	_, err = loadItems(filepath.Join(dir, "string.json"))
	assert.Error(t, err)

	_, err = loadItems("[")
	assert.Error(t, err)
}

func TestLoadItems_Stdin(t *testing.T) {
	stdin = strings.NewReader(`[{"email": "ada@example.com"}]`)
	t.Cleanup(func() { stdin = os.Stdin })

	items, err := loadItems("-")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ada@example.com", items[0].JSON["email"])
}
