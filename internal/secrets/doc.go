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

/*
Package secrets stores the token fields of Chatwoot credential records.

Non-secret credential fields (base URL, account ID, inbox identifier) live in
the config file. Tokens are resolved through a priority-ordered chain of
backends:

	env      - CHATWOOT_API_ACCESS_TOKEN, CHATWOOT_PLATFORM_ACCESS_TOKEN, CHATWOOT_SECRET_*
	keychain - OS keychain under the "chatwoot" service
	file     - AES-256-GCM encrypted file unlocked by CHATWOOT_MASTER_KEY

Keys have the form "<credential>.<field>", for example
"chatwootApi.accessToken". Use Key to build them.

	resolver := secrets.NewResolver(
	    secrets.NewEnvBackend(),
	    secrets.NewKeychainBackend(),
	)
	token, err := resolver.Get(ctx, secrets.Key("chatwootApi", "accessToken"))
*/
package secrets
