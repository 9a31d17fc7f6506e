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
	"context"
	"log/slog"
	"time"
)

// ToolCall describes one MCP tool invocation for logging purposes.
type ToolCall struct {
	// Tool is the MCP tool name, e.g. "contact_create".
	Tool string

	// CorrelationID links the call to its spans and history rows.
	CorrelationID string

	// Items is the number of input items in the call.
	Items int
}

// ToolResult is the outcome of a ToolCall.
type ToolResult struct {
	Success    bool
	Error      string
	DurationMs int64
	Records    int
}

// LogToolCall logs an incoming tool call.
func LogToolCall(logger *slog.Logger, call *ToolCall) {
	attrs := []any{
		"event", "tool_call",
		ToolKey, call.Tool,
		"items", call.Items,
	}
	if call.CorrelationID != "" {
		attrs = append(attrs, CorrelationIDKey, call.CorrelationID)
	}

	logger.Info("tool call received", attrs...)
}

// LogToolResult logs the outcome of a tool call.
func LogToolResult(logger *slog.Logger, call *ToolCall, result *ToolResult) {
	attrs := []any{
		"event", "tool_result",
		ToolKey, call.Tool,
		"success", result.Success,
		"records", result.Records,
		DurationKey, result.DurationMs,
	}
	if call.CorrelationID != "" {
		attrs = append(attrs, CorrelationIDKey, call.CorrelationID)
	}
	if result.Error != "" {
		attrs = append(attrs, "error", result.Error)
	}

	level := slog.LevelInfo
	message := "tool call completed"
	if !result.Success {
		level = slog.LevelError
		message = "tool call failed"
	}

	logger.Log(context.Background(), level, message, attrs...)
}

// ToolMiddleware wraps tool handlers with request/response logging.
type ToolMiddleware struct {
	logger *slog.Logger
}

// NewToolMiddleware creates a tool logging middleware.
func NewToolMiddleware(logger *slog.Logger) *ToolMiddleware {
	return &ToolMiddleware{logger: logger}
}

// Handle logs call, runs handler and logs the outcome. The handler returns
// the number of records it produced.
func (m *ToolMiddleware) Handle(call *ToolCall, handler func() (int, error)) (int, error) {
	start := time.Now()
	LogToolCall(m.logger, call)

	records, err := handler()

	result := &ToolResult{
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
		Records:    records,
	}
	if err != nil {
		result.Error = err.Error()
	}
	LogToolResult(m.logger, call, result)

	return records, err
}
