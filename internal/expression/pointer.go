package expression

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qri-io/jsonpointer"
)

// Pointer evaluates an RFC 6901 JSON pointer against data. The empty pointer
// returns data itself. Missing paths are an error; an explicit null at an
// existing path resolves to nil.
func Pointer(data interface{}, path string) (interface{}, error) {
	if path == "" {
		return data, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("invalid JSON pointer %q: must begin with '/'", path)
	}

	ptr, err := jsonpointer.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON pointer %q: %w", path, err)
	}
	parent, err := ptr[:len(ptr)-1].Eval(data)
	if err != nil {
		return nil, fmt.Errorf("path not found: %s", path)
	}

	value, ok := child(parent, ptr[len(ptr)-1])
	if !ok {
		return nil, fmt.Errorf("path not found: %s", path)
	}
	return value, nil
}

func child(container interface{}, token string) (interface{}, bool) {
	switch c := container.(type) {
	case map[string]interface{}:
		value, ok := c[token]
		return value, ok
	case []interface{}:
		i, err := strconv.Atoi(token)
		if err != nil || i < 0 || i >= len(c) {
			return nil, false
		}
		return c[i], true
	}
	return nil, false
}
