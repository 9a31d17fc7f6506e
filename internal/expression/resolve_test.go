package expression

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

func TestPointer(t *testing.T) {
	data := conversationEnv().JSON

	got, err := Pointer(data, "/meta/sender/email")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got)

	got, err = Pointer(data, "/labels/1")
	require.NoError(t, err)
	assert.Equal(t, "billing", got)

	got, err = Pointer(data, "")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = Pointer(data, "/meta/nothing")
	assert.Error(t, err)

	_, err = Pointer(data, "no-leading-slash")
	assert.Error(t, err)

	_, err = Pointer(data, "/labels/5")
	assert.Error(t, err)
}

func TestPointer_ExplicitNull(t *testing.T) {
	data := map[string]interface{}{
		"assignee": nil,
		"meta":     map[string]interface{}{"team": nil},
		"labels":   []interface{}{"vip", nil},
	}

	for _, path := range []string{"/assignee", "/meta/team", "/labels/1"} {
		got, err := Pointer(data, path)
		require.NoError(t, err, path)
		assert.Nil(t, got, path)
	}

	for _, path := range []string{"/missing", "/meta/missing", "/assignee/id", "/labels/2"} {
		_, err := Pointer(data, path)
		assert.Error(t, err, path)
	}
}

func TestResolveValue(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		raw  interface{}
		want interface{}
	}{
		{"plain string", "hello", "hello"},
		{"number", float64(7), float64(7)},
		{"reference", "$ref:/id", float64(42)},
		{"nested reference", "$ref:/meta/sender/email", "ada@example.com"},
		{"expression", "=json.status", "open"},
		{"expression with index", "=index + 1", 3},
		{"map untouched", map[string]interface{}{"k": "=x"}, map[string]interface{}{"k": "=x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ResolveValue("p", tt.raw, conversationEnv())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveValue_Errors(t *testing.T) {
	e := New()

	for _, raw := range []string{"$ref:/missing", "=json.status ==", "$ref:bad"} {
		_, err := e.ResolveValue("contactId", raw, conversationEnv())

		var opErr *operation.Error
		require.True(t, errors.As(err, &opErr), raw)
		assert.Equal(t, operation.ErrorTypeValidation, opErr.Type)
		assert.Contains(t, opErr.Message, `parameter "contactId"`)
	}
}

func TestWhen(t *testing.T) {
	when, err := NewWhen(nil, `json.status == "open"`)
	require.NoError(t, err)
	assert.Equal(t, `json.status == "open"`, when.Expression())

	ok, err := when.Match(context.Background(), operation.Item{JSON: map[string]interface{}{"status": "open"}}, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = when.Match(context.Background(), operation.Item{JSON: map[string]interface{}{"status": "resolved"}}, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWhen_InvalidExpression(t *testing.T) {
	_, err := NewWhen(New(), `json.status ==`)

	var opErr *operation.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, operation.ErrorTypeFilter, opErr.Type)
}
