package tracing

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

func TestNewProvider_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "chatwoot-test",
		ServiceVersion: "0.0.0",
	}, sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(context.Background(), "chatwoot.contact.get")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "chatwoot.contact.get", spans[0].Name)

	var serviceName string
	for _, attr := range spans[0].Resource.Attributes() {
		if attr.Key == "service.name" {
			serviceName = attr.Value.AsString()
		}
	}
	assert.Equal(t, "chatwoot-test", serviceName)
}

func TestNewProvider_ConsoleExporter(t *testing.T) {
	var buf bytes.Buffer
	provider, err := NewProvider(context.Background(), Config{
		ServiceName: "chatwoot-test",
		Exporter:    "console",
		Writer:      &buf,
	})
	require.NoError(t, err)

	_, span := provider.Tracer("test").Start(context.Background(), "chatwoot.team.getAll")
	span.End()
	require.NoError(t, provider.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "chatwoot.team.getAll")
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{ServiceName: "x", Exporter: "jaeger"})
	assert.Error(t, err)
}

func TestProvider_MetricsHandler(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{ServiceName: "chatwoot-test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	provider.Metrics().ItemCompleted(context.Background(), operation.ItemOutcome{
		API: operation.APIPlatform, Resource: "user", Operation: "get",
		Outcome: operation.OutcomeSuccess, Records: 1, Duration: time.Millisecond,
	})
	provider.Metrics().RecordRequest(context.Background(), "GET", 200, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	provider.MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "chatwoot_items_total")
	assert.Contains(t, string(body), `resource="user"`)
	assert.Contains(t, string(body), "chatwoot_requests_total")
}
