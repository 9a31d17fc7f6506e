package operation

import (
	"context"
	"fmt"
	"strconv"
)

// Host is the execution context a handler runs against. It supplies
// parameters, credentials and the authenticated HTTP transport, so handlers
// carry no global state and can be exercised with a fake.
type Host interface {
	// GetParameter returns the value of a declared parameter for an item.
	// The boolean is false when the parameter was not supplied.
	GetParameter(name string, itemIndex int) (interface{}, bool)

	// GetCredentials returns the named credential record.
	GetCredentials(ctx context.Context, name string) (Credentials, error)

	// HTTPRequest performs one request and returns the decoded JSON body.
	HTTPRequest(ctx context.Context, opts *HTTPRequestOptions) (interface{}, error)

	// NodeName identifies the step errors are attributed to.
	NodeName() string
}

// HTTPRequestOptions describes one outbound request.
type HTTPRequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    map[string]interface{}
	Query   map[string]interface{}
}

// Credentials is a credential record as stored by the host.
type Credentials map[string]interface{}

// String returns the credential field as a string, or "" when absent.
func (c Credentials) String(key string) string {
	switch v := c[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Item is one input or output record.
type Item struct {
	// JSON is the record payload
	JSON map[string]interface{} `json:"json"`

	// Params overrides run parameters for this item
	Params map[string]interface{} `json:"params,omitempty"`
}
