package expression

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// Env is the variable set an expression is evaluated against.
type Env struct {
	JSON   map[string]interface{}
	Params map[string]interface{}
	Index  int
}

// EnvFor builds the environment of an input item.
func EnvFor(item operation.Item, index int) Env {
	return Env{JSON: item.JSON, Params: item.Params, Index: index}
}

func (e Env) vars() map[string]interface{} {
	vars := make(map[string]interface{}, len(builtins)+3)
	for name, fn := range builtins {
		vars[name] = fn
	}
	vars["json"] = e.JSON
	vars["params"] = e.Params
	vars["index"] = e.Index
	return vars
}

type cacheKey struct {
	expression string
	boolean    bool
}

// Evaluator compiles expressions once and evaluates them per item.
// It is safe for concurrent use.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[cacheKey]*vm.Program
}

// New creates an evaluator with an empty program cache.
func New() *Evaluator {
	return &Evaluator{
		cache: make(map[cacheKey]*vm.Program),
	}
}

// Match evaluates a boolean expression. An empty expression matches.
func (e *Evaluator) Match(expression string, env Env) (bool, error) {
	if expression == "" {
		return true, nil
	}

	program, err := e.compile(expression, true)
	if err != nil {
		return false, err
	}

	result, err := expr.Run(program, env.vars())
	if err != nil {
		return false, fmt.Errorf("expression evaluation failed: %w", err)
	}

	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T (%v)", result, result)
	}
	return matched, nil
}

// Value evaluates an expression and returns its result.
func (e *Evaluator) Value(expression string, env Env) (interface{}, error) {
	program, err := e.compile(expression, false)
	if err != nil {
		return nil, err
	}

	result, err := expr.Run(program, env.vars())
	if err != nil {
		return nil, fmt.Errorf("expression evaluation failed: %w", err)
	}
	return result, nil
}

// Validate compiles expression without evaluating it.
func (e *Evaluator) Validate(expression string, boolean bool) error {
	_, err := e.compile(expression, boolean)
	return err
}

func (e *Evaluator) compile(expression string, boolean bool) (*vm.Program, error) {
	key := cacheKey{expression: expression, boolean: boolean}

	e.mu.RLock()
	if program, ok := e.cache[key]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	opts := []expr.Option{
		expr.Env(Env{}.vars()),
		expr.AllowUndefinedVariables(),
	}
	if boolean {
		opts = append(opts, expr.AsBool())
	}

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}

	e.mu.Lock()
	e.cache[key] = program
	e.mu.Unlock()

	return program, nil
}

// CacheSize returns the number of compiled programs.
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
