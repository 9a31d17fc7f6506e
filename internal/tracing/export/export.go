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

// Package export builds span exporters for the configured backend.
package export

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// Exporter kinds.
const (
	KindNone     = "none"
	KindConsole  = "console"
	KindOTLP     = "otlp"
	KindOTLPHTTP = "otlp-http"
)

// Config selects and configures an exporter.
type Config struct {
	// Kind is none, console, otlp (gRPC) or otlp-http
	Kind string

	// Endpoint is host:port for otlp and host[:port] for otlp-http
	Endpoint string

	// Insecure disables TLS for the OTLP exporters
	Insecure bool

	// Headers are sent with every OTLP export request
	Headers map[string]string

	// Writer receives console output (default: os.Stderr)
	Writer io.Writer
}

// New returns the exporter for cfg.Kind, or nil for none.
func New(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	switch cfg.Kind {
	case "", KindNone:
		return nil, nil
	case KindConsole:
		return newConsole(cfg)
	case KindOTLP:
		return newOTLPGRPC(ctx, cfg)
	case KindOTLPHTTP:
		return newOTLPHTTP(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Kind)
	}
}

func newConsole(cfg Config) (trace.SpanExporter, error) {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(writer),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create console exporter: %w", err)
	}
	return exporter, nil
}

func newOTLPGRPC(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("otlp exporter requires an endpoint")
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(minTLS())))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
	}
	return exporter, nil
}

func newOTLPHTTP(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("otlp-http exporter requires an endpoint")
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	} else {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(minTLS()))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return exporter, nil
}

func minTLS() *tls.Config {
	return &tls.Config{MinVersion: tls.VersionTLS12}
}
