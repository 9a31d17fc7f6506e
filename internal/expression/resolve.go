package expression

import (
	"fmt"
	"strings"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// Value prefixes recognised by ResolveValue.
const (
	ExpressionPrefix = "="
	ReferencePrefix  = "$ref:"
)

// ResolveValue expands a raw parameter value for one item. Strings starting
// with "=" are evaluated as expressions and strings starting with "$ref:" are
// looked up as JSON pointers into the item payload. Other values are returned
// unchanged.
func (e *Evaluator) ResolveValue(name string, raw interface{}, env Env) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return raw, nil
	}

	switch {
	case strings.HasPrefix(s, ReferencePrefix):
		value, err := Pointer(map[string]interface{}(env.JSON), strings.TrimPrefix(s, ReferencePrefix))
		if err != nil {
			return nil, parameterError(name, err)
		}
		return value, nil

	case strings.HasPrefix(s, ExpressionPrefix):
		value, err := e.Value(strings.TrimPrefix(s, ExpressionPrefix), env)
		if err != nil {
			return nil, parameterError(name, err)
		}
		return value, nil
	}

	return raw, nil
}

func parameterError(name string, cause error) error {
	err := operation.NewValidationError(fmt.Sprintf("parameter %q: %s", name, cause))
	err.Cause = cause
	return err
}
