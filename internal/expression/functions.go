package expression

import (
	"fmt"
	"reflect"
	"strings"
)

// builtins are available to every expression.
var builtins = map[string]interface{}{
	"has":      containsFunc,
	"includes": containsFunc,
	"length":   lenFunc,
}

// containsFunc reports whether a slice holds an element, a map holds a key
// or a string holds a substring.
// Usage: has(json.labels, "vip")
func containsFunc(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("has requires exactly 2 arguments, got %d", len(args))
	}

	collection, target := args[0], args[1]
	if collection == nil {
		return false, nil
	}

	v := reflect.ValueOf(collection)

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if reflect.DeepEqual(v.Index(i).Interface(), target) {
				return true, nil
			}
		}
		return false, nil

	case reflect.Map:
		key := reflect.ValueOf(target)
		if !key.IsValid() || !key.Type().AssignableTo(v.Type().Key()) {
			return false, nil
		}
		return v.MapIndex(key).IsValid(), nil

	case reflect.String:
		substr, ok := target.(string)
		if !ok || substr == "" {
			return false, nil
		}
		return strings.Contains(v.String(), substr), nil

	default:
		return false, nil
	}
}

// lenFunc returns the length of a collection or string.
// Usage: length(json.payload) > 0
func lenFunc(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("length requires exactly 1 argument, got %d", len(args))
	}

	if args[0] == nil {
		return 0, nil
	}

	v := reflect.ValueOf(args[0])

	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return v.Len(), nil
	default:
		return nil, fmt.Errorf("length: unsupported type %T", args[0])
	}
}
