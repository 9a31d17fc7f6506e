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

package credentials

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/config"
	"github.com/tombee/chatwoot-connector/internal/operation"
)

// NewCommand creates the credentials command for managing the three
// Chatwoot credential records.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage Chatwoot credentials",
		Annotations: map[string]string{
			"group": "setup",
		},
		Long: `Manage the credential records used by each API.

  application  chatwootApi          base URL, account ID, access token
  client       chatwootClientApi    base URL, inbox identifier, contact identifier
  platform     chatwootPlatformApi  base URL, platform access token

Non-secret fields are written to the config file. Tokens are stored in the
system keychain, or in the encrypted secrets file when no keychain is
available (set CHATWOOT_MASTER_KEY). Environment variables such as
CHATWOOT_API_ACCESS_TOKEN take precedence over stored tokens.

Examples:
  chatwoot credentials set application
  echo "$TOKEN" | chatwoot credentials set application --base-url https://chat.example.com --account-id 3 --token-stdin
  chatwoot credentials show application
  chatwoot credentials test application
  chatwoot credentials delete platform --yes`,
	}

	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newTestCommand())

	return cmd
}

// parseAPI accepts an API name or a credential record name.
func parseAPI(arg string) (operation.API, error) {
	for _, api := range operation.APIs {
		if strings.EqualFold(arg, string(api)) || arg == chatwoot.CredentialName(api) {
			return api, nil
		}
	}
	return "", shared.NewInvalidInputError(fmt.Sprintf("unknown API %q (want application, client or platform)", arg), nil)
}

// secretField returns the token field of api's record, if it has one.
func secretField(api operation.API) (string, bool) {
	for _, field := range chatwoot.CredentialFields(api) {
		if chatwoot.IsSecretField(field) {
			return field, true
		}
	}
	return "", false
}

// configFields maps the non-secret fields of api's record to their
// locations in cfg.
func configFields(cfg *config.Config, api operation.API) map[string]*string {
	creds := &cfg.Credentials
	switch api {
	case operation.APIClient:
		return map[string]*string{
			chatwoot.FieldBaseURL:           &creds.Client.BaseURL,
			chatwoot.FieldInboxIdentifier:   &creds.Client.InboxIdentifier,
			chatwoot.FieldContactIdentifier: &creds.Client.ContactIdentifier,
		}
	case operation.APIPlatform:
		return map[string]*string{
			chatwoot.FieldBaseURL: &creds.Platform.BaseURL,
		}
	default:
		return map[string]*string{
			chatwoot.FieldBaseURL:   &creds.Application.BaseURL,
			chatwoot.FieldAccountID: &creds.Application.AccountID,
		}
	}
}

// fieldFlags maps credential fields to their set flags.
var fieldFlags = map[string]string{
	chatwoot.FieldBaseURL:           "base-url",
	chatwoot.FieldAccountID:         "account-id",
	chatwoot.FieldInboxIdentifier:   "inbox-identifier",
	chatwoot.FieldContactIdentifier: "contact-identifier",
}

var fieldLabels = map[string]string{
	chatwoot.FieldBaseURL:             "Base URL",
	chatwoot.FieldAccountID:           "Account ID",
	chatwoot.FieldInboxIdentifier:     "Inbox identifier",
	chatwoot.FieldContactIdentifier:   "Contact identifier",
	chatwoot.FieldAccessToken:         "Access token",
	chatwoot.FieldPlatformAccessToken: "Platform access token",
}
