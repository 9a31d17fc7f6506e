package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/config"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/secrets"
)

// CredentialSource resolves credential records by name.
type CredentialSource interface {
	Credentials(ctx context.Context, name string) (operation.Credentials, error)
}

// SecretGetter reads one stored secret.
type SecretGetter interface {
	Get(ctx context.Context, key string) (string, error)
}

// ConfigCredentials builds credential records from the non-secret fields in
// the configuration and the tokens held by a secrets resolver.
type ConfigCredentials struct {
	Config  config.CredentialsConfig
	Secrets SecretGetter
}

var _ CredentialSource = (*ConfigCredentials)(nil)

// Credentials returns the record named name.
func (c *ConfigCredentials) Credentials(ctx context.Context, name string) (operation.Credentials, error) {
	switch name {
	case chatwoot.CredentialApplication:
		cfg := c.Config.Application
		creds := operation.Credentials{
			chatwoot.FieldBaseURL:   orDefault(cfg.BaseURL, chatwoot.DefaultBaseURL),
			chatwoot.FieldAccountID: orDefault(cfg.AccountID, chatwoot.DefaultAccountID),
		}
		return creds, c.token(ctx, creds, name, chatwoot.FieldAccessToken)

	case chatwoot.CredentialClient:
		cfg := c.Config.Client
		if cfg.InboxIdentifier == "" {
			return nil, fmt.Errorf("%s: inbox identifier is not configured", name)
		}
		return operation.Credentials{
			chatwoot.FieldBaseURL:           orDefault(cfg.BaseURL, chatwoot.DefaultBaseURL),
			chatwoot.FieldInboxIdentifier:   cfg.InboxIdentifier,
			chatwoot.FieldContactIdentifier: cfg.ContactIdentifier,
		}, nil

	case chatwoot.CredentialPlatform:
		creds := operation.Credentials{
			chatwoot.FieldBaseURL: orDefault(c.Config.Platform.BaseURL, chatwoot.DefaultBaseURL),
		}
		return creds, c.token(ctx, creds, name, chatwoot.FieldPlatformAccessToken)
	}

	return nil, fmt.Errorf("unknown credential %q", name)
}

func (c *ConfigCredentials) token(ctx context.Context, creds operation.Credentials, name, field string) error {
	if c.Secrets == nil {
		return fmt.Errorf("%s: no secret store configured", name)
	}

	key := secrets.Key(name, field)
	value, err := c.Secrets.Get(ctx, key)
	if err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return fmt.Errorf("%s is not set (export %s or run 'chatwoot credentials set')", key, secrets.EnvName(key))
		}
		return err
	}

	creds[field] = value
	return nil
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
