package operation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tombee/chatwoot-connector/internal/operation/transport"
)

// ErrorType classifies operation errors for appropriate handling.
type ErrorType string

const (
	// ErrorTypeAPI indicates the upstream call failed (network error or non-2xx status)
	ErrorTypeAPI ErrorType = "api_error"

	// ErrorTypeValidation indicates invalid parameter data caught before any request
	ErrorTypeValidation ErrorType = "validation_error"

	// ErrorTypeMissingField indicates required fields were absent or empty
	ErrorTypeMissingField ErrorType = "missing_field"

	// ErrorTypeUnsupported indicates an unknown resource/operation pair
	ErrorTypeUnsupported ErrorType = "unsupported_operation"

	// ErrorTypeCredentials indicates credentials could not be resolved
	ErrorTypeCredentials ErrorType = "credentials_error"

	// ErrorTypeFilter indicates an item predicate or output filter failed
	ErrorTypeFilter ErrorType = "filter_error"
)

// Error represents an operation execution error with classification.
type Error struct {
	// Type classifies the error
	Type ErrorType

	// Message is the human-readable error description
	Message string

	// Node names the step the error is attributed to
	Node string

	// ItemIndex is the input item being processed when the error occurred
	ItemIndex int

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Description carries the upstream error detail, usually the response body
	Description string

	// SuggestText provides guidance on how to resolve the error.
	SuggestText string

	// RequestID from the external service
	RequestID string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message

	if e.Node != "" {
		msg = fmt.Sprintf("%s: %s", e.Node, msg)
	}

	if e.Type != "" {
		msg = fmt.Sprintf("%s (type: %s)", msg, e.Type)
	}

	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s [HTTP %d]", msg, e.StatusCode)
	}

	if e.RequestID != "" {
		msg = fmt.Sprintf("%s (request-id: %s)", msg, e.RequestID)
	}

	if e.Cause != nil && e.Cause.Error() != e.Message {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsUserVisible reports that operation errors are always shown to users.
func (e *Error) IsUserVisible() bool {
	return true
}

// UserMessage returns the message without node, type or cause decoration.
func (e *Error) UserMessage() string {
	return e.Message
}

// Suggestion returns actionable guidance for resolving the error.
func (e *Error) Suggestion() string {
	return e.SuggestText
}

// ErrorType returns the classification as a string.
func (e *Error) ErrorType() string {
	return string(e.Type)
}

// NewAPIError wraps a failed upstream call, binding it to node and item.
// Transport errors contribute their status code, request id and response body.
func NewAPIError(node string, itemIndex int, cause error) *Error {
	err := &Error{
		Type:      ErrorTypeAPI,
		Message:   "The service was not able to process your request",
		Node:      node,
		ItemIndex: itemIndex,
		Cause:     cause,
	}

	var transportErr *transport.TransportError
	if !errors.As(cause, &transportErr) {
		if cause != nil {
			err.Description = cause.Error()
		}
		return err
	}

	err.StatusCode = transportErr.StatusCode
	err.RequestID = transportErr.RequestID
	err.Description = strings.TrimSpace(string(transportErr.Body))

	if upstream := upstreamMessage(transportErr.Body); upstream != "" {
		err.Message = upstream
	} else if transportErr.StatusCode > 0 {
		err.Message = fmt.Sprintf("%d %s", transportErr.StatusCode, http.StatusText(transportErr.StatusCode))
	} else {
		err.Message = transportErr.Message
	}

	switch transportErr.Type {
	case transport.ErrorTypeAuth:
		err.SuggestText = "Check the access token and account id of the credential"
	case transport.ErrorTypeClient:
		if transportErr.IsStatusCode(http.StatusNotFound) {
			err.SuggestText = "Verify the resource exists and the id is correct"
		} else {
			err.SuggestText = "Check the operation parameters"
		}
	case transport.ErrorTypeRateLimit:
		err.SuggestText = "The instance is rate limiting requests; " + retryAfterHint(transportErr.Metadata)
	case transport.ErrorTypeServer:
		err.SuggestText = "The Chatwoot instance reported a server error"
	case transport.ErrorTypeConnection, transport.ErrorTypeTimeout:
		err.SuggestText = "Check the base URL and network connectivity"
	}
	if transportErr.IsRetryable() && !transportErr.IsType(transport.ErrorTypeRateLimit) {
		err.SuggestText += "; retrying the request may succeed"
	}

	return err
}

// retryAfterHint renders the Retry-After header the transport captured.
// The header carries either delay seconds or an HTTP date.
func retryAfterHint(metadata map[string]interface{}) string {
	after, _ := metadata[transport.MetadataRetryAfter].(string)
	after = strings.TrimSpace(after)
	if after == "" {
		return "try again later"
	}
	if seconds, err := strconv.Atoi(after); err == nil {
		return fmt.Sprintf("retry after %d seconds", seconds)
	}
	return "retry after " + after
}

// upstreamMessage extracts a human readable message from a Chatwoot error body.
// Chatwoot answers with {"message": "..."}, {"error": "..."} or {"errors": [...]}.
func upstreamMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	for _, key := range []string{"message", "error"} {
		if s, ok := parsed[key].(string); ok && s != "" {
			return s
		}
	}

	if list, ok := parsed["errors"].([]interface{}); ok && len(list) > 0 {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			switch v := item.(type) {
			case string:
				parts = append(parts, v)
			case map[string]interface{}:
				if s, ok := v["message"].(string); ok {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, "; ")
	}

	return ""
}

// NewValidationError creates an error for parameter data rejected before any request.
func NewValidationError(message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewMissingFieldsError creates an error naming the missing required fields in order.
func NewMissingFieldsError(fields []string) *Error {
	return &Error{
		Type:        ErrorTypeMissingField,
		Message:     fmt.Sprintf("Missing required fields: %s", strings.Join(fields, ", ")),
		SuggestText: "Provide values for the listed parameters",
	}
}

// NewUnsupportedError creates an error for an unknown resource/operation pair.
func NewUnsupportedError(resource, operation string) *Error {
	return &Error{
		Type:        ErrorTypeUnsupported,
		Message:     fmt.Sprintf("The operation %q is not supported for resource %q", operation, resource),
		SuggestText: "Run 'chatwoot operations list' to see available operations",
	}
}

// NewCredentialsError creates an error for credentials that could not be resolved.
func NewCredentialsError(name string, cause error) *Error {
	return &Error{
		Type:        ErrorTypeCredentials,
		Message:     fmt.Sprintf("credentials %q are not available", name),
		Cause:       cause,
		SuggestText: "Run 'chatwoot credentials set' to configure them",
	}
}

// NewFilterError creates an error for a failed item predicate or output filter.
func NewFilterError(expression string, cause error) *Error {
	return &Error{
		Type:        ErrorTypeFilter,
		Message:     fmt.Sprintf("filter failed: %s", expression),
		Cause:       cause,
		SuggestText: "Check the expression syntax and the shape of the data",
	}
}

// Message returns the user-facing message of err, preferring UserMessage.
func Message(err error) string {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.UserMessage()
	}
	return err.Error()
}
