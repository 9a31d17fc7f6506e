// Package chatwoot implements the Chatwoot Application, Client and Platform
// API operations on top of the operation framework.
//
// Every handler funnels through one of three request builders, which join
// the credential base URL, the variant path prefix and a relative endpoint,
// attach authentication and wrap any failure into a single api_error.
// List operations can drain all pages through ApplicationRequestAllItems.
package chatwoot

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// Request describes one call relative to a variant's API root.
type Request struct {
	Method   string
	Endpoint string
	Body     map[string]interface{}
	Query    map[string]interface{}

	// ItemIndex is the input item the call is made for
	ItemIndex int
}

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PATCH":  true,
	"PUT":    true,
	"DELETE": true,
}

// ApplicationRequest calls {baseUrl}/api/v1/accounts/{accountId}/{endpoint}
// with the account access token.
func ApplicationRequest(ctx context.Context, host operation.Host, req Request) (interface{}, error) {
	creds, err := credentials(ctx, host, CredentialApplication, req)
	if err != nil {
		return nil, err
	}

	return send(ctx, host, req, applicationURL(creds, req.Endpoint), map[string]string{
		AuthHeader: creds.String(FieldAccessToken),
	})
}

// ClientRequest calls {baseUrl}/public/api/v1/inboxes/{inboxIdentifier}/{endpoint}
// without an auth header.
func ClientRequest(ctx context.Context, host operation.Host, req Request) (interface{}, error) {
	creds, err := credentials(ctx, host, CredentialClient, req)
	if err != nil {
		return nil, err
	}

	return send(ctx, host, req, clientURL(creds, req.Endpoint), nil)
}

// PlatformRequest calls {baseUrl}/platform/api/v1/{endpoint} with the
// platform access token.
func PlatformRequest(ctx context.Context, host operation.Host, req Request) (interface{}, error) {
	creds, err := credentials(ctx, host, CredentialPlatform, req)
	if err != nil {
		return nil, err
	}

	return send(ctx, host, req, platformURL(creds, req.Endpoint), map[string]string{
		AuthHeader: creds.String(FieldPlatformAccessToken),
	})
}

func applicationURL(creds operation.Credentials, endpoint string) string {
	return fmt.Sprintf("%s/api/v1/accounts/%s/%s",
		baseURL(creds), url.PathEscape(creds.String(FieldAccountID)), trimEndpoint(endpoint))
}

func clientURL(creds operation.Credentials, endpoint string) string {
	return fmt.Sprintf("%s/public/api/v1/inboxes/%s/%s",
		baseURL(creds), url.PathEscape(creds.String(FieldInboxIdentifier)), trimEndpoint(endpoint))
}

func platformURL(creds operation.Credentials, endpoint string) string {
	return fmt.Sprintf("%s/platform/api/v1/%s", baseURL(creds), trimEndpoint(endpoint))
}

// trimEndpoint strips exactly one leading slash.
func trimEndpoint(endpoint string) string {
	return strings.TrimPrefix(endpoint, "/")
}

func credentials(ctx context.Context, host operation.Host, name string, req Request) (operation.Credentials, error) {
	creds, err := host.GetCredentials(ctx, name)
	if err != nil {
		credErr := operation.NewCredentialsError(name, err)
		credErr.Node = host.NodeName()
		credErr.ItemIndex = req.ItemIndex
		return nil, credErr
	}
	return creds, nil
}

func send(ctx context.Context, host operation.Host, req Request, target string, headers map[string]string) (interface{}, error) {
	method := strings.ToUpper(req.Method)
	if !allowedMethods[method] {
		validationErr := operation.NewValidationError(fmt.Sprintf("unsupported HTTP method %q", req.Method))
		validationErr.Node = host.NodeName()
		validationErr.ItemIndex = req.ItemIndex
		return nil, validationErr
	}

	opts := &operation.HTTPRequestOptions{
		Method:  method,
		URL:     target,
		Headers: headers,
	}
	if len(req.Body) > 0 {
		opts.Body = req.Body
	}
	if len(req.Query) > 0 {
		opts.Query = req.Query
	}

	response, err := host.HTTPRequest(ctx, opts)
	if err != nil {
		return nil, operation.NewAPIError(host.NodeName(), req.ItemIndex, err)
	}
	return response, nil
}
