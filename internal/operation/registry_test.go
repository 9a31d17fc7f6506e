package operation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, Host, int) (interface{}, error) { return nil, nil }

func def(api API, resource, operation string) *Definition {
	return &Definition{
		OperationInfo: OperationInfo{API: api, Resource: resource, Operation: operation},
		Handler:       noop,
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(
		def(APIApplication, "contact", "get"),
		def(APIPlatform, "platformUser", "get"),
	))

	got, err := reg.Lookup("contact", "get")
	require.NoError(t, err)
	assert.Equal(t, APIApplication, got.API)
	assert.Equal(t, "contact.get", got.Key().String())

	_, err = reg.Lookup("contact", "explode")
	var opErr *Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, ErrorTypeUnsupported, opErr.Type)
}

func TestRegistry_RegisterRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition
	}{
		{"nil", nil},
		{"no handler", &Definition{OperationInfo: OperationInfo{API: APIApplication, Resource: "a", Operation: "b"}}},
		{"no resource", def(APIApplication, "", "get")},
		{"unknown api", def(API("graphql"), "contact", "get")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewRegistry().Register(tt.def))
		})
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(def(APIApplication, "team", "get")))
	err := reg.Register(def(APIApplication, "team", "get"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "team.get")
}

func TestRegistry_ListOrdering(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(
		def(APIPlatform, "platformAccount", "get"),
		def(APIApplication, "team", "get"),
		def(APIClient, "clientContact", "create"),
		def(APIApplication, "agent", "getAll"),
		def(APIApplication, "agent", "create"),
	))

	var keys []string
	for _, d := range reg.List() {
		keys = append(keys, d.Key().String())
	}
	assert.Equal(t, []string{
		"agent.create", "agent.getAll", "team.get",
		"clientContact.create",
		"platformAccount.get",
	}, keys)

	assert.Equal(t, []string{"agent", "team"}, reg.Resources(APIApplication))
	assert.Len(t, reg.ListAPI(APIClient), 1)
	assert.Equal(t, 5, reg.Len())
}
