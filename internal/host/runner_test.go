package host

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/config"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/tracing"
)

func newTestRunner(t *testing.T, handler http.HandlerFunc, observers ...operation.Observer) *Runner {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	registry, err := chatwoot.NewRegistry()
	require.NoError(t, err)

	return NewRunner(RunnerConfig{
		Registry: registry,
		Credentials: &ConfigCredentials{
			Config: config.CredentialsConfig{
				Application: config.ApplicationCredentials{BaseURL: server.URL, AccountID: "1"},
				Platform:    config.PlatformCredentials{BaseURL: server.URL},
			},
			Secrets: mapSecrets{
				"chatwootApi.accessToken":                 "app-token",
				"chatwootPlatformApi.platformAccessToken": "p-token",
			},
		},
		Transport: newTestTransport(t),
		Observers: observers,
		Logger:    log.Discard(),
	})
}

func TestRunner_RunWithFilter(t *testing.T) {
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts/1/teams", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"name":"Support"},{"id":2,"name":"Sales"}]`))
	})

	result, err := runner.Run(context.Background(), RunRequest{
		Resource:  "team",
		Operation: "getAll",
		Filter:    `map(select(.name == "Sales"))`,
	})
	require.NoError(t, err)

	assert.Equal(t, []map[string]interface{}{{"id": float64(2), "name": "Sales"}}, result.Records)
	assert.Equal(t, 1, result.Summary.Items)
	assert.True(t, result.CorrelationID.IsValid())
}

func TestRunner_KeepsCorrelationID(t *testing.T) {
	var seen string
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(tracing.HeaderCorrelationID)
		_, _ = w.Write([]byte(`{}`))
	})

	ctx := tracing.ToContext(context.Background(), "550e8400-e29b-41d4-a716-446655440000")
	result, err := runner.Run(ctx, RunRequest{Resource: "account", Operation: "get"})
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", seen)
	assert.Equal(t, tracing.CorrelationID(seen), result.CorrelationID)
}

func TestRunner_APIMismatch(t *testing.T) {
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := runner.Run(context.Background(), RunRequest{
		API:       operation.APIPlatform,
		Resource:  "team",
		Operation: "getAll",
	})
	assert.Error(t, err)
}

func TestRunner_InvalidExpressions(t *testing.T) {
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := runner.Run(context.Background(), RunRequest{Resource: "team", Operation: "getAll", When: "json.x =="})
	assert.Error(t, err)

	_, err = runner.Run(context.Background(), RunRequest{Resource: "team", Operation: "getAll", Filter: "map(("})
	assert.Error(t, err)
}

func TestRunner_ObserversSeeEveryItem(t *testing.T) {
	var outcomes []string
	observer := operation.ObserverFunc(func(_ context.Context, o operation.ItemOutcome) {
		outcomes = append(outcomes, o.Outcome)
	})
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1}`))
	}, observer)

	_, err := runner.Run(context.Background(), RunRequest{
		Resource:  "platformUser",
		Operation: "get",
		Params:    map[string]interface{}{"userId": "=json.id"},
		Items: []operation.Item{
			{JSON: map[string]interface{}{"id": float64(1)}},
			{JSON: map[string]interface{}{"id": float64(2)}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{operation.OutcomeSuccess, operation.OutcomeSuccess}, outcomes)
}

func TestRunner_BrokenFirstItemContinues(t *testing.T) {
	var paths []string
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"id":1,"name":"Ada"}`))
	})

	result, err := runner.Run(context.Background(), RunRequest{
		Resource:       "contact",
		Operation:      "get",
		ContinueOnFail: true,
		Items: []operation.Item{
			{Params: map[string]interface{}{"contactId": "$ref:/missing"}},
			{JSON: map[string]interface{}{"id": float64(1)}, Params: map[string]interface{}{"contactId": "$ref:/id"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Contains(t, result.Records[0], "error")
	assert.NotContains(t, result.Records[0]["error"], "resource, operation")
	assert.Equal(t, map[string]interface{}{"id": float64(1), "name": "Ada"}, result.Records[1])
	assert.Equal(t, []string{"/api/v1/accounts/1/contacts/1"}, paths)
}

func TestRunner_BrokenFirstItemStops(t *testing.T) {
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := runner.Run(context.Background(), RunRequest{
		Resource:  "contact",
		Operation: "get",
		Items: []operation.Item{
			{Params: map[string]interface{}{"contactId": "$ref:/missing"}},
		},
	})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "Missing required fields")
}

func TestRunner_Verify(t *testing.T) {
	var path string
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	require.NoError(t, runner.Verify(context.Background(), operation.APIApplication))
	assert.Equal(t, "/api/v1/accounts/1", path)

	assert.Error(t, runner.Verify(context.Background(), operation.API("graphql")))
}
