package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/transport"
	"github.com/tombee/chatwoot-connector/internal/tracing"
)

type recordedRequest struct {
	method string
	status int
	failed bool
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *fakeRecorder) RecordRequest(_ context.Context, method string, status int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{method: method, status: status, failed: err != nil})
}

func newTestTransport(t *testing.T) transport.Transport {
	t.Helper()
	tr, err := transport.NewHTTPTransport(&transport.HTTPTransportConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	return tr
}

func TestLocal_GetParameterOverlay(t *testing.T) {
	host := NewLocal(Options{
		Params: map[string]interface{}{
			"resource":  "contact",
			"operation": "update",
			"contactId": "$ref:/id",
			"label":     "=json.name + '!'",
		},
		Items: []operation.Item{
			{JSON: map[string]interface{}{"id": float64(7), "name": "Ada"}},
			{JSON: map[string]interface{}{"id": float64(8), "name": "Lin"}, Params: map[string]interface{}{"operation": "get"}},
		},
		Logger: log.Discard(),
	})

	v, ok := host.GetParameter("contactId", 0)
	require.True(t, ok)
	assert.Equal(t, float64(7), v)

	v, _ = host.GetParameter("label", 1)
	assert.Equal(t, "Lin!", v)

	v, _ = host.GetParameter("operation", 0)
	assert.Equal(t, "update", v)
	v, _ = host.GetParameter("operation", 1)
	assert.Equal(t, "get", v, "item params override run params")

	_, ok = host.GetParameter("missing", 0)
	assert.False(t, ok)
}

func TestLocal_Guard(t *testing.T) {
	host := NewLocal(Options{
		Params: map[string]interface{}{"contactId": "$ref:/id"},
		Items: []operation.Item{
			{JSON: map[string]interface{}{"id": float64(1)}},
			{JSON: map[string]interface{}{"name": "no id"}},
		},
		Logger: log.Discard(),
	})
	guard := host.Guard(nil)

	ok, err := guard.Match(context.Background(), host.Items()[0], 0)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = guard.Match(context.Background(), host.Items()[1], 1)
	var opErr *operation.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, operation.ErrorTypeValidation, opErr.Type)

	_, ok = host.GetParameter("contactId", 1)
	assert.False(t, ok)
}

func TestLocal_GetParameterWithBrokenSibling(t *testing.T) {
	host := NewLocal(Options{
		Params: map[string]interface{}{"resource": "contact", "operation": "get"},
		Items: []operation.Item{
			{Params: map[string]interface{}{"contactId": "$ref:/missing", "operation": "='get'"}},
		},
		Logger: log.Discard(),
	})

	v, ok := host.GetParameter("resource", 0)
	require.True(t, ok)
	assert.Equal(t, "contact", v)

	v, ok = host.GetParameter("operation", 0)
	require.True(t, ok)
	assert.Equal(t, "get", v)

	_, ok = host.GetParameter("contactId", 0)
	assert.False(t, ok)
}

type rejectAll struct{}

func (rejectAll) Match(context.Context, operation.Item, int) (bool, error) { return false, nil }

func TestLocal_GuardSkipsBeforeResolving(t *testing.T) {
	host := NewLocal(Options{
		Params: map[string]interface{}{"contactId": "$ref:/missing"},
		Items:  []operation.Item{{JSON: map[string]interface{}{}}},
		Logger: log.Discard(),
	})

	ok, err := host.Guard(rejectAll{}).Match(context.Background(), host.Items()[0], 0)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLocal_HTTPRequest(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	var (
		gotMethod string
		gotQuery  string
		gotBody   map[string]interface{}
		gotHeader http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"payload":{"id":5}}`))
	}))
	defer server.Close()

	recorder := &fakeRecorder{}
	host := NewLocal(Options{Transport: newTestTransport(t), Metrics: recorder, Logger: log.Discard()})

	ctx := tracing.ToContext(context.Background(), "550e8400-e29b-41d4-a716-446655440000")
	got, err := host.HTTPRequest(ctx, &operation.HTTPRequestOptions{
		Method:  "post",
		URL:     server.URL + "/api/v1/accounts/1/contacts",
		Headers: map[string]string{"api_access_token": "secret"},
		Body:    map[string]interface{}{"name": "Ada", "inbox_id": 3},
		Query:   map[string]interface{}{"page": 2, "labels": []interface{}{"a"}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"payload": map[string]interface{}{"id": float64(5)}}, got)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "labels=%5B%22a%22%5D&page=2", gotQuery)
	assert.Equal(t, map[string]interface{}{"name": "Ada", "inbox_id": float64(3)}, gotBody)
	assert.Equal(t, "secret", gotHeader.Get("api_access_token"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", gotHeader.Get(tracing.HeaderCorrelationID))

	require.Len(t, recorder.requests, 1)
	assert.Equal(t, recordedRequest{method: "POST", status: 200}, recorder.requests[0])

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP POST", spans[0].Name)
}

func TestLocal_HTTPRequestLogsRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req-42")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Name is too short"}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	host := NewLocal(Options{Transport: newTestTransport(t), Logger: logger})

	_, err := host.HTTPRequest(context.Background(), &operation.HTTPRequestOptions{
		Method: "POST",
		URL:    server.URL + "/api/v1/accounts/1/contacts",
	})
	require.Error(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, "req-42", entry[log.RequestIDKey])
}

func TestLocal_HTTPRequestFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Resource could not be found"}`))
	}))
	defer server.Close()

	recorder := &fakeRecorder{}
	host := NewLocal(Options{Transport: newTestTransport(t), Metrics: recorder, Logger: log.Discard()})

	_, err := host.HTTPRequest(context.Background(), &operation.HTTPRequestOptions{
		Method: "GET",
		URL:    server.URL + "/api/v1/accounts/1/contacts/99",
	})

	var tErr *transport.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, http.StatusNotFound, tErr.StatusCode)
	assert.Equal(t, []recordedRequest{{method: "GET", status: 404, failed: true}}, recorder.requests)
}

func TestDecodeBody(t *testing.T) {
	assert.Nil(t, decodeBody(nil))
	assert.Nil(t, decodeBody([]byte("  \n")))
	assert.Equal(t, []interface{}{float64(1)}, decodeBody([]byte("[1]")))
	assert.Equal(t, "OK", decodeBody([]byte("OK")))
}

func TestLocal_NoCredentialSource(t *testing.T) {
	_, err := NewLocal(Options{}).GetCredentials(context.Background(), "chatwootApi")
	assert.Error(t, err)
}
