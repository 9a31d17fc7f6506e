// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package tracing provides OpenTelemetry tracing, Prometheus metrics and
correlation IDs for Chatwoot operation runs.

# Overview

A Provider owns the SDK tracer and meter providers and installs them as the
otel globals, so the executor's per-item spans and the host's request spans
are exported without further wiring:

	provider, err := tracing.NewProvider(ctx, tracing.Config{
	    ServiceName:    "chatwoot",
	    ServiceVersion: version,
	    Exporter:       "otlp",
	    Endpoint:       "localhost:4317",
	})
	defer provider.Shutdown(ctx)

# Metrics

Metrics implements operation.Observer. Attach it to an executor to count
items, and call RecordRequest from the host for every HTTP call:

	executor := operation.NewExecutor(registry, operation.ExecutorConfig{
	    Observers: []operation.Observer{provider.Metrics()},
	})

Metrics exposed by MetricsHandler:

  - chatwoot_items_total{api,resource,operation,outcome}
  - chatwoot_item_duration_seconds{api,resource,operation,outcome}
  - chatwoot_records_total{api,resource,operation,outcome}
  - chatwoot_requests_total{method,status,result}
  - chatwoot_request_duration_seconds{method,status,result}

# Correlation IDs

Every run carries a correlation ID in its context. The host copies it into
the X-Correlation-ID header of outbound requests and the history store keeps
it with each item row:

	ctx, id := tracing.EnsureContext(ctx)
	headers = tracing.InjectHeaders(ctx, headers)

# Subpackages

  - export: span exporter factory (console, OTLP gRPC, OTLP HTTP)
*/
package tracing
