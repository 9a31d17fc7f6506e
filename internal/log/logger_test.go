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

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("expected default format 'json', got %q", cfg.Format)
	}
	if cfg.Output != os.Stderr {
		t.Errorf("expected default output to be os.Stderr")
	}
	if cfg.AddSource {
		t.Errorf("expected default AddSource to be false")
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		envVars    map[string]string
		wantLevel  string
		wantFormat Format
		wantSource bool
	}{
		{
			name:       "defaults",
			envVars:    map[string]string{},
			wantLevel:  "info",
			wantFormat: FormatJSON,
		},
		{
			name:       "debug flag enables source",
			envVars:    map[string]string{"CHATWOOT_DEBUG": "1", "CHATWOOT_LOG_LEVEL": "error"},
			wantLevel:  "debug",
			wantFormat: FormatJSON,
			wantSource: true,
		},
		{
			name:       "prefixed level wins over LOG_LEVEL",
			envVars:    map[string]string{"CHATWOOT_LOG_LEVEL": "WARN", "LOG_LEVEL": "debug"},
			wantLevel:  "warn",
			wantFormat: FormatJSON,
		},
		{
			name:       "generic level and text format",
			envVars:    map[string]string{"LOG_LEVEL": "trace", "LOG_FORMAT": "TEXT", "LOG_SOURCE": "1"},
			wantLevel:  "trace",
			wantFormat: FormatText,
			wantSource: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"CHATWOOT_DEBUG", "CHATWOOT_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE"} {
				t.Setenv(key, "")
				os.Unsetenv(key)
			}
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg := FromEnv()
			if cfg.Level != tt.wantLevel {
				t.Errorf("level = %q, want %q", cfg.Level, tt.wantLevel)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("format = %q, want %q", cfg.Format, tt.wantFormat)
			}
			if cfg.AddSource != tt.wantSource {
				t.Errorf("AddSource = %v, want %v", cfg.AddSource, tt.wantSource)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	WithOperation(WithCorrelationID(logger, "corr-1"), "contact", "create").
		Info("item processed", Error(errors.New("boom")))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON output: %v", err)
	}
	for key, want := range map[string]string{
		"msg":            "item processed",
		"correlation_id": "corr-1",
		"resource":       "contact",
		"operation":      "create",
		"error":          "boom",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %q", key, entry[key], want)
		}
	}
}

func TestNew_TextOutputAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "warn", Format: FormatText, Output: &buf})

	logger.Info("hidden")
	WithComponent(logger, "mcp").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "component=mcp") {
		t.Errorf("expected text output with component, got %s", out)
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	Trace(context.Background(), New(&Config{Level: "debug", Output: &buf}), "body")
	if buf.Len() != 0 {
		t.Errorf("trace should be dropped at debug level, got %s", buf.String())
	}

	Trace(context.Background(), New(&Config{Level: "trace", Output: &buf}), "body", slog.String(StatusCodeKey, "200"))
	if !strings.Contains(buf.String(), `"msg":"body"`) {
		t.Errorf("expected trace record, got %s", buf.String())
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "[REDACTED]"},
		{"abcd", "[REDACTED]"},
		{"sk-1234567890", "...7890"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.input); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMaskHeaders(t *testing.T) {
	headers := map[string]string{
		"api_access_token": "token-abcdef",
		"Accept":           "application/json",
	}
	masked := MaskHeaders(headers)

	if masked["api_access_token"] != "...cdef" {
		t.Errorf("token not masked: %q", masked["api_access_token"])
	}
	if masked["Accept"] != "application/json" {
		t.Errorf("non-secret header changed: %q", masked["Accept"])
	}
	if headers["api_access_token"] != "token-abcdef" {
		t.Errorf("input map was modified")
	}
}
