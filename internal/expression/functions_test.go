package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsFunc(t *testing.T) {
	tests := []struct {
		name       string
		collection interface{}
		target     interface{}
		want       bool
	}{
		{"slice hit", []interface{}{"a", "b"}, "b", true},
		{"slice miss", []interface{}{"a", "b"}, "c", false},
		{"numbers", []interface{}{float64(1), float64(2)}, float64(2), true},
		{"map key", map[string]interface{}{"vip": true}, "vip", true},
		{"map key wrong type", map[string]interface{}{"vip": true}, 1, false},
		{"substring", "customer support", "support", true},
		{"empty substring", "customer", "", false},
		{"nil collection", nil, "a", false},
		{"unsupported", 42, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := containsFunc(tt.collection, tt.target)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := containsFunc("only one")
	assert.Error(t, err)
}

func TestLenFunc(t *testing.T) {
	got, err := lenFunc([]interface{}{1, 2, 3})
	assert.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = lenFunc(nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, got)

	got, err = lenFunc("abc")
	assert.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = lenFunc(3.5)
	assert.Error(t, err)

	_, err = lenFunc()
	assert.Error(t, err)
}
