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

package operations

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/cli/format"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/operation"
)

func runCommand(t *testing.T, output string, args ...string) (string, error) {
	t.Helper()

	shared.SetOutputForTest(output)
	t.Cleanup(func() { shared.SetOutputForTest("") })

	var stdout bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestList_JSON(t *testing.T) {
	out, err := runCommand(t, "json", "list")
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &records))

	registry, err := chatwoot.NewRegistry()
	require.NoError(t, err)
	assert.Len(t, records, registry.Len())
	assert.Equal(t, "application", records[0]["api"])
}

func TestList_FilterByAPI(t *testing.T) {
	out, err := runCommand(t, "json", "list", "--api", "client")
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.Equal(t, "client", r["api"])
	}
}

func TestList_UnknownAPI(t *testing.T) {
	_, err := runCommand(t, "json", "list", "--api", "widget")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))
}

func TestList_TableGroupsByAPI(t *testing.T) {
	registry, err := chatwoot.NewRegistry()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeList(&buf, format.Table, registry, ""))

	out := buf.String()
	app := strings.Index(out, "Application API")
	client := strings.Index(out, "Client API")
	platform := strings.Index(out, "Platform API")
	assert.True(t, app >= 0 && client > app && platform > client, "headings in API order:\n%s", out)
	assert.Contains(t, out, "cannedResponse")
}

func TestDescribe_Markdown(t *testing.T) {
	out, err := runCommand(t, "table", "describe", "contact", "create")
	require.NoError(t, err)

	assert.Contains(t, out, "# Contact: Create")
	assert.Contains(t, out, "`chatwoot run contact create`")
	assert.Contains(t, out, "| `inboxId` |")
	assert.Contains(t, out, "### additionalFields")
}

func TestDescribe_JSON(t *testing.T) {
	out, err := runCommand(t, "json", "describe", "message", "getAll")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "message", doc["resource"])
	assert.Equal(t, "getAll", doc["operation"])
	assert.NotEmpty(t, doc["parameters"])
}

func TestDescribe_Unknown(t *testing.T) {
	_, err := runCommand(t, "json", "describe", "contact", "explode")

	var opErr *operation.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, operation.ErrorTypeUnsupported, opErr.Type)
}

func TestDescribeMarkdown_EscapesCells(t *testing.T) {
	def := &operation.Definition{OperationInfo: operation.OperationInfo{
		API:         operation.APIApplication,
		Resource:    "cannedResponse",
		Operation:   "create",
		DisplayName: "Create",
		Parameters: []operation.ParameterInfo{
			{Name: "shortCode", Type: operation.ParamString, Required: true, Description: "a|b"},
			{Name: "mode", Type: operation.ParamOptions, Default: "x", Options: []string{"x", "y"}},
		},
	}}

	md := describeMarkdown(def)
	assert.Contains(t, md, "# CannedResponse: Create")
	assert.Contains(t, md, `| a\|b |`)
	assert.Contains(t, md, "| `mode` | options |  | `x` |")
	assert.Contains(t, md, "One of: `x`, `y`")
}
