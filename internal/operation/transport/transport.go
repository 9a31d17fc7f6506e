// Package transport provides the protocol layer used by the host to send
// Chatwoot requests.
//
// The transport layer separates wire concerns (encoding, status classification,
// timeouts, TLS) from operation concerns (URL building, credential selection,
// response shape). Transports perform exactly one attempt per request and
// report failures as *TransportError.
package transport

import (
	"context"
)

// Transport executes requests with protocol-specific handling.
type Transport interface {
	// Execute sends a request and returns a response.
	// The context controls cancellation and deadlines.
	// Returns TransportError on failure.
	Execute(ctx context.Context, req *Request) (*Response, error)

	// Name returns the transport identifier (e.g., "http").
	Name() string
}

// Request represents a transport-agnostic request.
// Transports validate requests before execution and return InvalidRequest errors
// for invalid method, URL, or other protocol violations.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, PATCH)
	// Required, must be non-empty
	Method string

	// URL is the full request URL without query string
	// Required, must be valid per RFC 3986
	URL string

	// Query holds query string parameters appended to URL
	// Optional, may be nil
	Query map[string]string

	// Headers are request headers (case-insensitive)
	// Optional, may be nil or empty map
	Headers map[string]string

	// Body is the request body
	// Optional, may be nil or empty slice
	Body []byte

	// Metadata contains caller-supplied data carried into logs and errors
	Metadata map[string]interface{}
}

// Response represents a transport-agnostic response.
type Response struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Headers contains response headers
	Headers map[string][]string

	// Body is the response body
	Body []byte

	// Metadata contains transport-specific data (e.g., request ID)
	Metadata map[string]interface{}
}

// Standard metadata keys used across transports
const (
	// MetadataRequestID is the service request ID
	MetadataRequestID = "request_id"

	// MetadataRetryAfter is the Retry-After header of a rejected request
	MetadataRetryAfter = "retry_after"
)
