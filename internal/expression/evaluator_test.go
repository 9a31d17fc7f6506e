package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conversationEnv() Env {
	return Env{
		JSON: map[string]interface{}{
			"id":     float64(42),
			"status": "open",
			"labels": []interface{}{"vip", "billing"},
			"meta": map[string]interface{}{
				"sender": map[string]interface{}{"email": "ada@example.com"},
			},
		},
		Params: map[string]interface{}{"inboxId": float64(3)},
		Index:  2,
	}
}

func TestEvaluator_Match(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"equality", `json.status == "open"`, true},
		{"inequality", `json.status != "open"`, false},
		{"numeric comparison", `json.id > 40`, true},
		{"in operator", `"vip" in json.labels`, true},
		{"has function", `has(json.labels, "billing")`, true},
		{"includes alias", `includes(json.labels, "sales")`, false},
		{"length function", `length(json.labels) == 2`, true},
		{"nested access", `json.meta.sender.email endsWith "@example.com"`, true},
		{"index variable", `index == 2`, true},
		{"params variable", `params.inboxId == 3`, true},
		{"boolean logic", `json.status == "open" && !(index > 5)`, true},
		{"missing field is nil", `json.assignee == nil`, true},
		{"empty expression", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Match(tt.expr, conversationEnv())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_MatchErrors(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		expr string
	}{
		{"syntax error", `json.status ==`},
		{"non boolean result", `json.id + 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Match(tt.expr, conversationEnv())
			assert.Error(t, err)
		})
	}
}

func TestEvaluator_Value(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		expr string
		want interface{}
	}{
		{"field", `json.meta.sender.email`, "ada@example.com"},
		{"arithmetic", `json.id + 1`, float64(43)},
		{"string concat", `"conv-" + string(index)`, "conv-2"},
		{"ternary", `index == 0 ? "first" : "later"`, "later"},
		{"missing", `json.nothing`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Value(tt.expr, conversationEnv())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_Caching(t *testing.T) {
	e := New()

	for i := 0; i < 3; i++ {
		_, err := e.Match(`json.status == "open"`, conversationEnv())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, e.CacheSize())

	_, err := e.Value(`json.status == "open"`, conversationEnv())
	require.NoError(t, err)
	assert.Equal(t, 2, e.CacheSize(), "boolean and value programs are cached separately")
}
