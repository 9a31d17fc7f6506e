package operation

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler executes one operation for one input item.
type Handler func(ctx context.Context, host Host, itemIndex int) (interface{}, error)

// Key addresses an entry of the dispatch table.
type Key struct {
	Resource  string
	Operation string
}

func (k Key) String() string {
	return k.Resource + "." + k.Operation
}

// Definition is one entry of the dispatch table.
type Definition struct {
	OperationInfo
	Handler Handler
}

// Key returns the dispatch key of the definition.
func (d *Definition) Key() Key {
	return Key{Resource: d.Resource, Operation: d.Operation}
}

// Registry maps (resource, operation) pairs to handlers. It is populated once
// at startup and read concurrently afterwards.
type Registry struct {
	mu          sync.RWMutex
	definitions map[Key]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[Key]*Definition),
	}
}

// Register adds definitions to the registry.
// Duplicate keys and definitions without a handler are rejected.
func (r *Registry) Register(defs ...*Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range defs {
		if def == nil || def.Handler == nil {
			return fmt.Errorf("definition without handler")
		}
		if def.Resource == "" || def.Operation == "" {
			return fmt.Errorf("definition requires resource and operation")
		}
		if !def.API.Valid() {
			return fmt.Errorf("%s: unknown api %q", def.Key(), def.API)
		}
		if _, exists := r.definitions[def.Key()]; exists {
			return fmt.Errorf("%s: already registered", def.Key())
		}
		r.definitions[def.Key()] = def
	}

	return nil
}

// Lookup returns the definition registered for resource and operation.
func (r *Registry) Lookup(resource, operation string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.definitions[Key{Resource: resource, Operation: operation}]
	if !exists {
		return nil, NewUnsupportedError(resource, operation)
	}

	return def, nil
}

// List returns all definitions ordered by API, resource and operation.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool {
		if defs[i].API != defs[j].API {
			return apiOrder(defs[i].API) < apiOrder(defs[j].API)
		}
		if defs[i].Resource != defs[j].Resource {
			return defs[i].Resource < defs[j].Resource
		}
		return defs[i].Operation < defs[j].Operation
	})

	return defs
}

// ListAPI returns the definitions of a single API variant.
func (r *Registry) ListAPI(api API) []*Definition {
	var out []*Definition
	for _, def := range r.List() {
		if def.API == api {
			out = append(out, def)
		}
	}
	return out
}

// Resources returns the distinct resources of an API variant in sorted order.
func (r *Registry) Resources(api API) []string {
	seen := make(map[string]bool)
	var out []string
	for _, def := range r.ListAPI(api) {
		if !seen[def.Resource] {
			seen[def.Resource] = true
			out = append(out, def.Resource)
		}
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}

func apiOrder(api API) int {
	for i, a := range APIs {
		if a == api {
			return i
		}
	}
	return len(APIs)
}
