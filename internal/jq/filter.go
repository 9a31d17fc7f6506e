package jq

import (
	"context"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// Filter applies a jq expression to the whole record list of a run.
// The expression receives the records as one array; every value it emits
// becomes output, with arrays spread and non-objects wrapped as {"value": v}.
type Filter struct {
	expression string
	executor   *Executor
}

// NewFilter compiles expression and returns a filter for it.
func NewFilter(expression string) (*Filter, error) {
	executor := NewExecutor(DefaultTimeout, DefaultMaxInputSize)
	if err := executor.Validate(expression); err != nil {
		return nil, operation.NewFilterError(expression, err)
	}
	return &Filter{expression: expression, executor: executor}, nil
}

// Apply implements operation.OutputFilter.
func (f *Filter) Apply(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error) {
	values, err := f.executor.Execute(ctx, f.expression, records)
	if err != nil {
		return nil, operation.NewFilterError(f.expression, err)
	}

	out := make([]map[string]interface{}, 0, len(values))
	for _, value := range values {
		out = append(out, operation.Normalize(value)...)
	}
	return out, nil
}

// Expression returns the source expression.
func (f *Filter) Expression() string {
	return f.expression
}
