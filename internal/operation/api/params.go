// Package api provides parameter accessors shared by operation handlers.
package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cast"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// Params reads the declared parameters of one input item.
type Params struct {
	host  operation.Host
	index int
}

// NewParams creates an accessor for the parameters of item itemIndex.
func NewParams(host operation.Host, itemIndex int) *Params {
	return &Params{host: host, index: itemIndex}
}

// Raw returns the parameter value and whether it was set.
func (p *Params) Raw(name string) (interface{}, bool) {
	value, ok := p.host.GetParameter(name, p.index)
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// String returns a string parameter, or def when unset.
func (p *Params) String(name, def string) string {
	value, ok := p.Raw(name)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return def
	}
	return s
}

// RequireString returns a string parameter that must be set and non-empty.
func (p *Params) RequireString(name string) (string, error) {
	s := p.String(name, "")
	if s == "" {
		return "", operation.NewMissingFieldsError([]string{name})
	}
	return s, nil
}

// Int returns an integer parameter, or def when unset.
func (p *Params) Int(name string, def int64) (int64, error) {
	value, ok := p.Raw(name)
	if !ok {
		return def, nil
	}
	if s, isString := value.(string); isString && s == "" {
		return def, nil
	}
	n, err := toInt64(value)
	if err != nil {
		return 0, operation.NewValidationError(fmt.Sprintf("Parameter %q must be a number", name))
	}
	return n, nil
}

// RequireInt returns an integer parameter that must be set.
func (p *Params) RequireInt(name string) (int64, error) {
	value, ok := p.Raw(name)
	if !ok {
		return 0, operation.NewMissingFieldsError([]string{name})
	}
	if s, isString := value.(string); isString && s == "" {
		return 0, operation.NewMissingFieldsError([]string{name})
	}
	n, err := toInt64(value)
	if err != nil {
		return 0, operation.NewValidationError(fmt.Sprintf("Parameter %q must be a number", name))
	}
	return n, nil
}

// Bool returns a boolean parameter, or def when unset or unparseable.
func (p *Params) Bool(name string, def bool) bool {
	value, ok := p.Raw(name)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return def
	}
	return b
}

// Object returns a collection parameter as a fresh map. JSON object strings
// are decoded. Unset parameters yield an empty map.
func (p *Params) Object(name string) (map[string]interface{}, error) {
	value, ok := p.Raw(name)
	if !ok {
		return map[string]interface{}{}, nil
	}
	if s, isString := value.(string); isString && s == "" {
		return map[string]interface{}{}, nil
	}

	m, err := cast.ToStringMapE(value)
	if err != nil {
		return nil, operation.NewValidationError(fmt.Sprintf("Parameter %q must be an object", name))
	}

	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// ParseJSONField decodes fields[key] in place when it holds a non-empty JSON
// string. message is returned as a validation error when decoding fails.
func ParseJSONField(fields map[string]interface{}, key, message string) error {
	s, ok := fields[key].(string)
	if !ok || s == "" {
		return nil
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return &operation.Error{
			Type:    operation.ErrorTypeValidation,
			Message: message,
			Cause:   err,
		}
	}
	fields[key] = parsed
	return nil
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case string:
		return strconv.ParseInt(v, 10, 64)
	case json.Number:
		return v.Int64()
	case float64:
		return integral(v)
	case float32:
		return integral(float64(v))
	}
	return cast.ToInt64E(value)
}

func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int64(f), nil
}
