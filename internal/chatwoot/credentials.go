package chatwoot

import (
	"context"
	"net/url"
	"strings"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// Credential record names, one per API variant.
const (
	CredentialApplication = "chatwootApi"
	CredentialClient      = "chatwootClientApi"
	CredentialPlatform    = "chatwootPlatformApi"
)

// Credential field names.
const (
	FieldBaseURL             = "baseUrl"
	FieldAccessToken         = "accessToken"
	FieldAccountID           = "accountId"
	FieldInboxIdentifier     = "inboxIdentifier"
	FieldContactIdentifier   = "contactIdentifier"
	FieldPlatformAccessToken = "platformAccessToken"
)

// Defaults applied to an Application credential record.
const (
	DefaultBaseURL   = "https://app.chatwoot.com"
	DefaultAccountID = "1"
)

// AuthHeader carries the access token on Application and Platform requests.
const AuthHeader = "api_access_token"

// CredentialName returns the credential record used by an API variant.
func CredentialName(api operation.API) string {
	switch api {
	case operation.APIClient:
		return CredentialClient
	case operation.APIPlatform:
		return CredentialPlatform
	default:
		return CredentialApplication
	}
}

// CredentialFields lists the fields of the credential record used by api,
// secrets last.
func CredentialFields(api operation.API) []string {
	switch api {
	case operation.APIClient:
		return []string{FieldBaseURL, FieldInboxIdentifier, FieldContactIdentifier}
	case operation.APIPlatform:
		return []string{FieldBaseURL, FieldPlatformAccessToken}
	default:
		return []string{FieldBaseURL, FieldAccountID, FieldAccessToken}
	}
}

// IsSecretField reports whether a credential field holds a token.
func IsSecretField(field string) bool {
	return field == FieldAccessToken || field == FieldPlatformAccessToken
}

func baseURL(creds operation.Credentials) string {
	return strings.TrimRight(creds.String(FieldBaseURL), "/")
}

// VerifyCredentials issues the lightweight request that proves a credential
// record works: the account for Application, the configured contact for
// Client and the user list for Platform.
func VerifyCredentials(ctx context.Context, host operation.Host, api operation.API) error {
	name := CredentialName(api)
	creds, err := host.GetCredentials(ctx, name)
	if err != nil {
		return operation.NewCredentialsError(name, err)
	}

	opts := &operation.HTTPRequestOptions{Method: "GET"}
	switch api {
	case operation.APIClient:
		opts.URL = clientURL(creds, "contacts/"+url.PathEscape(creds.String(FieldContactIdentifier)))
	case operation.APIPlatform:
		opts.URL = baseURL(creds) + "/platform/api/v1/users"
		opts.Headers = map[string]string{AuthHeader: creds.String(FieldPlatformAccessToken)}
	default:
		opts.URL = baseURL(creds) + "/api/v1/accounts/" + creds.String(FieldAccountID)
		opts.Headers = map[string]string{AuthHeader: creds.String(FieldAccessToken)}
	}

	if _, err := host.HTTPRequest(ctx, opts); err != nil {
		return operation.NewAPIError(host.NodeName(), 0, err)
	}
	return nil
}
