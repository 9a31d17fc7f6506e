package jq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

func TestFilter_Apply(t *testing.T) {
	records := []map[string]interface{}{
		{"id": float64(1), "name": "Ada", "availability_status": "online"},
		{"id": float64(2), "name": "Grace", "availability_status": "offline"},
	}

	tests := []struct {
		name       string
		expression string
		want       []map[string]interface{}
	}{
		{
			name:       "identity spreads the array",
			expression: ".",
			want:       records,
		},
		{
			name:       "select keeps objects",
			expression: `map(select(.availability_status == "online"))`,
			want:       []map[string]interface{}{records[0]},
		},
		{
			name:       "scalars are wrapped",
			expression: ".[].name",
			want:       []map[string]interface{}{{"value": "Ada"}, {"value": "Grace"}},
		},
		{
			name:       "reshape",
			expression: "{count: length}",
			want:       []map[string]interface{}{{"count": float64(2)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := NewFilter(tt.expression)
			require.NoError(t, err)

			got, err := filter.Apply(context.Background(), records)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFilter_InvalidExpression(t *testing.T) {
	_, err := NewFilter("map(")

	var opErr *operation.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, operation.ErrorTypeFilter, opErr.Type)
}

func TestFilter_RuntimeError(t *testing.T) {
	filter, err := NewFilter(".[0].name.first")
	require.NoError(t, err)

	_, err = filter.Apply(context.Background(), []map[string]interface{}{{"name": "Ada"}})

	var opErr *operation.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, operation.ErrorTypeFilter, opErr.Type)
	assert.Equal(t, ".[0].name.first", filter.Expression())
}

var _ operation.OutputFilter = (*Filter)(nil)
