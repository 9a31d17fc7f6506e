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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// stdin is replaced in tests
var stdin io.Reader = os.Stdin

// parseParams loads the params file (if any) and overlays --param values.
func parseParams(paramArgs []string, paramsFile string) (map[string]interface{}, error) {
	params := make(map[string]interface{})
	if paramsFile != "" {
		loaded, err := loadParamsFile(paramsFile)
		if err != nil {
			return nil, err
		}
		params = loaded
	}

	for _, arg := range paramArgs {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", arg)
		}
		params[key] = parseValue(raw)
	}

	return params, nil
}

// parseValue decodes raw as JSON when it is a JSON object, array, number,
// boolean or null. Anything else is kept as a string, so "=json.id" and
// "$ref:/id" pass through for the host to resolve.
func parseValue(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !json.Valid([]byte(trimmed)) || strings.HasPrefix(trimmed, `"`) {
		return raw
	}

	var v interface{}
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return raw
	}
	return v
}

// loadParamsFile reads a JSON or YAML object from path, or from stdin for "-".
func loadParamsFile(path string) (map[string]interface{}, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}

	var params map[string]interface{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, &params)
	} else {
		err = json.Unmarshal(data, &params)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse params file %s: %w", path, err)
	}
	if params == nil {
		params = make(map[string]interface{})
	}
	return params, nil
}

// loadItems reads every file matching pattern (doublestar syntax, "-" for
// stdin) in lexical order. A file holds one item object or an array of
// them. An object with only "json" and "params" keys is an item envelope;
// any other object is the item JSON itself.
func loadItems(pattern string) ([]operation.Item, error) {
	var paths []string
	if pattern == "-" {
		paths = []string{"-"}
	} else {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid --items pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q: %w", pattern, os.ErrNotExist)
		}
		sort.Strings(matches)
		paths = matches
	}

	var items []operation.Item
	for _, path := range paths {
		data, err := readSource(path)
		if err != nil {
			return nil, err
		}

		var decoded interface{}
		if isYAML(path) {
			err = yaml.Unmarshal(data, &decoded)
		} else {
			err = json.Unmarshal(data, &decoded)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse items file %s: %w", path, err)
		}

		fileItems, err := toItems(decoded)
		if err != nil {
			return nil, fmt.Errorf("items file %s: %w", path, err)
		}
		items = append(items, fileItems...)
	}

	return items, nil
}

func toItems(decoded interface{}) ([]operation.Item, error) {
	var elements []interface{}
	switch v := decoded.(type) {
	case []interface{}:
		elements = v
	case map[string]interface{}:
		elements = []interface{}{v}
	default:
		return nil, fmt.Errorf("expected an object or an array of objects, got %T", decoded)
	}

	items := make([]operation.Item, 0, len(elements))
	for i, element := range elements {
		obj, ok := element.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("element %d is %T, not an object", i, element)
		}
		items = append(items, toItem(obj))
	}
	return items, nil
}

func toItem(obj map[string]interface{}) operation.Item {
	data, hasJSON := obj["json"].(map[string]interface{})
	if !hasJSON {
		return operation.Item{JSON: obj}
	}

	params, hasParams := obj["params"].(map[string]interface{})
	expected := 1
	if hasParams {
		expected = 2
	}
	if len(obj) != expected {
		return operation.Item{JSON: obj}
	}

	return operation.Item{JSON: data, Params: params}
}

func readSource(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
