package host

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/config"
	"github.com/tombee/chatwoot-connector/internal/expression"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
)

// TestRun_ContactUpdates drives the registry, executor and local host
// against a fake Chatwoot server.
func TestRun_ContactUpdates(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies = map[string]map[string]interface{}{}
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api_access_token") != "app-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/contacts/404") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Resource could not be found"}`))
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		bodies[r.URL.Path] = body
		mu.Unlock()
		_, _ = w.Write([]byte(`{"payload":{"id":1}}`))
	}))
	defer server.Close()

	registry, err := chatwoot.NewRegistry()
	require.NoError(t, err)

	items := []operation.Item{
		{JSON: map[string]interface{}{"id": float64(11), "name": "Ada", "vip": true}},
		{JSON: map[string]interface{}{"id": float64(12), "name": "Lin", "vip": false}},
		{JSON: map[string]interface{}{"id": float64(404), "name": "Gone", "vip": true}},
	}

	host := NewLocal(Options{
		Params: map[string]interface{}{
			"resource":     "contact",
			"operation":    "update",
			"contactId":    "$ref:/id",
			"updateFields": map[string]interface{}{"name": "Renamed"},
		},
		Items: items,
		Credentials: &ConfigCredentials{
			Config:  config.CredentialsConfig{Application: config.ApplicationCredentials{BaseURL: server.URL, AccountID: "9"}},
			Secrets: mapSecrets{"chatwootApi.accessToken": "app-token"},
		},
		Transport: newTestTransport(t),
		Logger:    log.Discard(),
	})

	when, err := expression.NewWhen(nil, "json.vip == true")
	require.NoError(t, err)

	summary := operation.NewSummaryCollector()
	executor := operation.NewExecutor(registry, operation.ExecutorConfig{
		ContinueOnFail: true,
		When:           host.Guard(when),
		Observers:      []operation.Observer{summary},
		Logger:         log.Discard(),
	})

	records, err := executor.Run(context.Background(), host, host.Items())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, records[0])
	assert.Contains(t, records[1], "error")

	assert.Contains(t, bodies, "/api/v1/accounts/9/contacts/11")
	assert.NotContains(t, bodies, "/api/v1/accounts/9/contacts/12")

	s := summary.Summary()
	assert.Equal(t, 3, s.Items)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
}
