package expression

import (
	"context"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// When is an operation.ItemPredicate backed by a boolean expression.
type When struct {
	expression string
	evaluator  *Evaluator
}

var _ operation.ItemPredicate = (*When)(nil)

// NewWhen compiles expression and returns a predicate for it.
func NewWhen(evaluator *Evaluator, expression string) (*When, error) {
	if evaluator == nil {
		evaluator = New()
	}
	if err := evaluator.Validate(expression, true); err != nil {
		return nil, operation.NewFilterError(expression, err)
	}
	return &When{expression: expression, evaluator: evaluator}, nil
}

// Match reports whether item satisfies the expression.
func (w *When) Match(_ context.Context, item operation.Item, itemIndex int) (bool, error) {
	ok, err := w.evaluator.Match(w.expression, EnvFor(item, itemIndex))
	if err != nil {
		return false, operation.NewFilterError(w.expression, err)
	}
	return ok, nil
}

// Expression returns the source expression.
func (w *When) Expression() string {
	return w.expression
}
