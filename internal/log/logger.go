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

// Package log configures the structured logger shared by the CLI, the MCP
// server and the item executor.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the log output format.
type Format string

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
	// FormatText writes logfmt-style text.
	FormatText Format = "text"
)

// LevelTrace sits below Debug and is used for request and response bodies.
const LevelTrace = slog.Level(-8)

// Field keys used across the codebase.
const (
	ResourceKey      = "resource"
	OperationKey     = "operation"
	ItemIndexKey     = "item_index"
	StatusCodeKey    = "status_code"
	DurationKey      = "duration_ms"
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	ComponentKey     = "component"
	ToolKey          = "tool"
)

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum level (trace, debug, info, warn, error).
	// Default: info
	Level string

	// Format selects json or text output.
	// Default: json
	Format Format

	// Output receives log lines.
	// Default: os.Stderr
	Output io.Writer

	// AddSource adds file and line to each record.
	AddSource bool
}

// DefaultConfig returns info-level JSON logging to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: FormatJSON,
		Output: os.Stderr,
	}
}

// FromEnv creates a Config from environment variables:
//   - CHATWOOT_DEBUG: true/1 enables debug level and source locations (wins over everything)
//   - CHATWOOT_LOG_LEVEL: trace, debug, info, warn, error (wins over LOG_LEVEL)
//   - LOG_LEVEL: trace, debug, info, warn, error
//   - LOG_FORMAT: json, text
//   - LOG_SOURCE: 1 enables source locations
func FromEnv() *Config {
	cfg := DefaultConfig()

	debug := os.Getenv("CHATWOOT_DEBUG")
	if debug == "true" || debug == "1" {
		cfg.Level = "debug"
		cfg.AddSource = true
	}

	if debug == "" {
		if level := os.Getenv("CHATWOOT_LOG_LEVEL"); level != "" {
			cfg.Level = strings.ToLower(level)
		} else if level := os.Getenv("LOG_LEVEL"); level != "" {
			cfg.Level = strings.ToLower(level)
		}
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}

	if os.Getenv("LOG_SOURCE") == "1" {
		cfg.AddSource = true
	}

	return cfg
}

// New creates a logger from the given configuration.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithCorrelationID returns a logger tagged with a correlation ID.
func WithCorrelationID(logger *slog.Logger, correlationID string) *slog.Logger {
	return logger.With(CorrelationIDKey, correlationID)
}

// WithRequestID returns a logger tagged with a Chatwoot request ID.
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(RequestIDKey, requestID)
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(ComponentKey, component)
}

// WithOperation returns a logger tagged with the selected resource and
// operation.
func WithOperation(logger *slog.Logger, resource, operation string) *slog.Logger {
	return logger.With(
		slog.String(ResourceKey, resource),
		slog.String(OperationKey, operation),
	)
}

// Error creates an error attribute.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// MaskSecret hides all but the last four characters of a token.
// Values of four characters or fewer are fully redacted.
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return "[REDACTED]"
	}
	return "..." + secret[len(secret)-4:]
}

// MaskHeaders returns a copy of headers with credential headers masked.
func MaskHeaders(headers map[string]string) map[string]string {
	masked := make(map[string]string, len(headers))
	for key, value := range headers {
		switch strings.ToLower(key) {
		case "api_access_token", "authorization":
			masked[key] = MaskSecret(value)
		default:
			masked[key] = value
		}
	}
	return masked
}

// Trace logs a message at trace level.
func Trace(ctx context.Context, logger *slog.Logger, msg string, attrs ...slog.Attr) {
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}
	logger.LogAttrs(ctx, LevelTrace, msg, attrs...)
}
