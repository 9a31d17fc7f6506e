package operation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHost struct {
	params map[string]interface{}
}

func (h *stubHost) GetParameter(name string, _ int) (interface{}, bool) {
	v, ok := h.params[name]
	return v, ok
}

func (h *stubHost) GetCredentials(context.Context, string) (Credentials, error) {
	return Credentials{}, nil
}

func (h *stubHost) HTTPRequest(context.Context, *HTTPRequestOptions) (interface{}, error) {
	return nil, errors.New("not wired")
}

func (h *stubHost) NodeName() string { return "Chatwoot" }

func newStubHost(resource, operation string) *stubHost {
	return &stubHost{params: map[string]interface{}{
		ParamAPIType:   "application",
		ParamResource:  resource,
		ParamOperation: operation,
	}}
}

func registryWith(t *testing.T, handler Handler) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Definition{
		OperationInfo: OperationInfo{API: APIApplication, Resource: "contact", Operation: "getAll"},
		Handler:       handler,
	}))
	return reg
}

func items(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{JSON: map[string]interface{}{"n": float64(i)}}
	}
	return out
}

func TestExecutor_SpreadsListsAndAppendsObjects(t *testing.T) {
	handler := func(_ context.Context, _ Host, itemIndex int) (interface{}, error) {
		if itemIndex == 0 {
			return []interface{}{
				map[string]interface{}{"id": float64(1)},
				map[string]interface{}{"id": float64(2)},
			}, nil
		}
		return map[string]interface{}{"id": float64(3)}, nil
	}

	exec := NewExecutor(registryWith(t, handler), ExecutorConfig{})
	records, err := exec.Run(context.Background(), newStubHost("contact", "getAll"), items(2))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, float64(1), records[0]["id"])
	assert.Equal(t, float64(2), records[1]["id"])
	assert.Equal(t, float64(3), records[2]["id"])
}

func TestExecutor_FailFast(t *testing.T) {
	var calls int
	handler := func(_ context.Context, _ Host, itemIndex int) (interface{}, error) {
		calls++
		if itemIndex == 1 {
			return nil, NewValidationError("Custom attributes must be valid JSON")
		}
		return map[string]interface{}{"ok": true}, nil
	}

	exec := NewExecutor(registryWith(t, handler), ExecutorConfig{})
	records, err := exec.Run(context.Background(), newStubHost("contact", "getAll"), items(3))

	require.Error(t, err)
	assert.Nil(t, records)
	assert.Equal(t, 2, calls, "items after the failing one must not run")

	var opErr *Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "Chatwoot", opErr.Node)
	assert.Equal(t, 1, opErr.ItemIndex)
	assert.Equal(t, ErrorTypeValidation, opErr.Type)
}

func TestExecutor_ContinueOnFail(t *testing.T) {
	handler := func(_ context.Context, _ Host, itemIndex int) (interface{}, error) {
		if itemIndex%2 == 1 {
			return nil, NewMissingFieldsError([]string{"email"})
		}
		return map[string]interface{}{"index": itemIndex}, nil
	}

	summary := NewSummaryCollector()
	exec := NewExecutor(registryWith(t, handler), ExecutorConfig{
		ContinueOnFail: true,
		Observers:      []Observer{summary},
	})
	records, err := exec.Run(context.Background(), newStubHost("contact", "getAll"), items(4))
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, 0, records[0]["index"])
	assert.Equal(t, map[string]interface{}{"error": "Missing required fields: email"}, records[1])
	assert.Equal(t, 2, records[2]["index"])
	assert.Equal(t, map[string]interface{}{"error": "Missing required fields: email"}, records[3])

	got := summary.Summary()
	assert.Equal(t, 4, got.Items)
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 2, got.Failed)
	assert.Equal(t, 2, got.Records)
}

func TestExecutor_UnsupportedOperation(t *testing.T) {
	exec := NewExecutor(registryWith(t, func(context.Context, Host, int) (interface{}, error) {
		return nil, nil
	}), ExecutorConfig{ContinueOnFail: true})

	_, err := exec.Run(context.Background(), newStubHost("contact", "merge"), items(1))

	var opErr *Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, ErrorTypeUnsupported, opErr.Type)
	assert.Contains(t, opErr.Message, `"merge"`)
	assert.Contains(t, opErr.Message, `"contact"`)
}

func TestExecutor_APITypeMismatch(t *testing.T) {
	exec := NewExecutor(registryWith(t, func(context.Context, Host, int) (interface{}, error) {
		return nil, nil
	}), ExecutorConfig{})

	host := newStubHost("contact", "getAll")
	host.params[ParamAPIType] = "platform"

	_, err := exec.Run(context.Background(), host, items(1))

	var opErr *Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, ErrorTypeUnsupported, opErr.Type)
}

func TestExecutor_MissingResource(t *testing.T) {
	exec := NewExecutor(NewRegistry(), ExecutorConfig{})
	host := &stubHost{params: map[string]interface{}{}}

	_, err := exec.Run(context.Background(), host, items(1))
	require.Error(t, err)
	assert.Equal(t, "Missing required fields: resource, operation", Message(err))
}

func TestExecutor_NoItems(t *testing.T) {
	exec := NewExecutor(NewRegistry(), ExecutorConfig{})
	records, err := exec.Run(context.Background(), &stubHost{}, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

type evenOnly struct{}

func (evenOnly) Match(_ context.Context, _ Item, itemIndex int) (bool, error) {
	return itemIndex%2 == 0, nil
}

type countFilter struct{}

func (countFilter) Apply(_ context.Context, records []map[string]interface{}) ([]map[string]interface{}, error) {
	return []map[string]interface{}{{"count": len(records)}}, nil
}

func TestExecutor_WhenAndFilter(t *testing.T) {
	var seen []int
	handler := func(_ context.Context, _ Host, itemIndex int) (interface{}, error) {
		seen = append(seen, itemIndex)
		return map[string]interface{}{"i": itemIndex}, nil
	}

	summary := NewSummaryCollector()
	exec := NewExecutor(registryWith(t, handler), ExecutorConfig{
		When:      evenOnly{},
		Filter:    countFilter{},
		Observers: []Observer{summary},
	})

	records, err := exec.Run(context.Background(), newStubHost("contact", "getAll"), items(5))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2, 4}, seen)
	assert.Equal(t, []map[string]interface{}{{"count": 3}}, records)
	assert.Equal(t, 2, summary.Summary().Skipped)
}

func TestExecutor_CancelledContext(t *testing.T) {
	exec := NewExecutor(registryWith(t, func(context.Context, Host, int) (interface{}, error) {
		return map[string]interface{}{}, nil
	}), ExecutorConfig{ContinueOnFail: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.Run(ctx, newStubHost("contact", "getAll"), items(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		result interface{}
		want   []map[string]interface{}
	}{
		{"nil", nil, []map[string]interface{}{{}}},
		{"object", map[string]interface{}{"id": 1}, []map[string]interface{}{{"id": 1}}},
		{"empty list", []interface{}{}, []map[string]interface{}{}},
		{"mixed list", []interface{}{map[string]interface{}{"id": 1}, "x"}, []map[string]interface{}{{"id": 1}, {"value": "x"}}},
		{"scalar", "ok", []map[string]interface{}{{"value": "ok"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.result))
		})
	}
}
