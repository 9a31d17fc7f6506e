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

// Package config loads the chatwoot CLI configuration from a YAML file,
// a .env file and CHATWOOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	cwerrors "github.com/tombee/chatwoot-connector/pkg/errors"
)

// EnvPrefix is the prefix of environment variables that override config
// keys, e.g. CHATWOOT_HTTP_TIMEOUT for http.timeout.
const EnvPrefix = "CHATWOOT"

// Tracing exporters.
const (
	ExporterNone     = "none"
	ExporterConsole  = "console"
	ExporterOTLP     = "otlp"
	ExporterOTLPHTTP = "otlp-http"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete CLI configuration.
type Config struct {
	// NodeName is the name errors are attributed to
	NodeName string `mapstructure:"node_name" yaml:"node_name"`

	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	HTTP        HTTPConfig        `mapstructure:"http" yaml:"http"`
	Tracing     TracingConfig     `mapstructure:"tracing" yaml:"tracing"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
	History     HistoryConfig     `mapstructure:"history" yaml:"history"`
	Secrets     SecretsConfig     `mapstructure:"secrets" yaml:"secrets"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level     string `mapstructure:"level" yaml:"level"`
	Format    string `mapstructure:"format" yaml:"format"`
	AddSource bool   `mapstructure:"add_source" yaml:"add_source"`
}

// HTTPConfig configures the outbound transport.
type HTTPConfig struct {
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	TLSInsecure bool          `mapstructure:"tls_insecure" yaml:"tls_insecure"`
	UserAgent   string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	// Exporter is none, console, otlp (gRPC) or otlp-http
	Exporter string `mapstructure:"exporter" yaml:"exporter"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`
}

// MetricsConfig configures the Prometheus endpoint of the MCP server.
type MetricsConfig struct {
	// Addr is the listen address, e.g. ":9464". Empty disables the endpoint.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// HistoryConfig configures the execution history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// SecretsConfig configures token storage.
type SecretsConfig struct {
	// Backend forces writes to one backend (keychain or file); empty picks
	// the highest-priority writable one.
	Backend  string `mapstructure:"backend" yaml:"backend"`
	FilePath string `mapstructure:"file_path" yaml:"file_path"`
}

// CredentialsConfig holds the non-secret fields of the three credential
// records. Tokens are kept by the secrets package.
type CredentialsConfig struct {
	Application ApplicationCredentials `mapstructure:"application" yaml:"application"`
	Client      ClientCredentials      `mapstructure:"client" yaml:"client"`
	Platform    PlatformCredentials    `mapstructure:"platform" yaml:"platform"`
}

// ApplicationCredentials are the chatwootApi fields.
type ApplicationCredentials struct {
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	AccountID string `mapstructure:"account_id" yaml:"account_id"`
}

// ClientCredentials are the chatwootClientApi fields.
type ClientCredentials struct {
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	InboxIdentifier   string `mapstructure:"inbox_identifier" yaml:"inbox_identifier"`
	ContactIdentifier string `mapstructure:"contact_identifier" yaml:"contact_identifier"`
}

// PlatformCredentials are the chatwootPlatformApi fields.
type PlatformCredentials struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		NodeName: "Chatwoot",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "chatwoot-connector",
		},
		Tracing: TracingConfig{
			Exporter: ExporterNone,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    defaultHistoryPath(),
		},
		Credentials: CredentialsConfig{
			Application: ApplicationCredentials{
				BaseURL:   "https://app.chatwoot.com",
				AccountID: "1",
			},
			Client: ClientCredentials{
				BaseURL: "https://app.chatwoot.com",
			},
			Platform: PlatformCredentials{
				BaseURL: "https://app.chatwoot.com",
			},
		},
	}
}

// Load reads configuration from path (or the default path when empty and
// present), then applies .env files and CHATWOOT_* variables. Environment
// values win over the file.
func Load(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()

	if path == "" {
		if p, err := Path(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, &cwerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", path),
				Cause:  err,
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &cwerrors.ConfigError{Reason: "failed to decode configuration", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper returns a viper instance seeded with every default so that
// AutomaticEnv can override any key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	for key, value := range map[string]interface{}{
		"node_name":                             d.NodeName,
		"log.level":                             d.Log.Level,
		"log.format":                            d.Log.Format,
		"log.add_source":                        d.Log.AddSource,
		"http.timeout":                          d.HTTP.Timeout,
		"http.tls_insecure":                     d.HTTP.TLSInsecure,
		"http.user_agent":                       d.HTTP.UserAgent,
		"tracing.exporter":                      d.Tracing.Exporter,
		"tracing.endpoint":                      d.Tracing.Endpoint,
		"tracing.insecure":                      d.Tracing.Insecure,
		"metrics.addr":                          d.Metrics.Addr,
		"history.enabled":                       d.History.Enabled,
		"history.path":                          d.History.Path,
		"secrets.backend":                       d.Secrets.Backend,
		"secrets.file_path":                     d.Secrets.FilePath,
		"credentials.application.base_url":      d.Credentials.Application.BaseURL,
		"credentials.application.account_id":    d.Credentials.Application.AccountID,
		"credentials.client.base_url":           d.Credentials.Client.BaseURL,
		"credentials.client.inbox_identifier":   d.Credentials.Client.InboxIdentifier,
		"credentials.client.contact_identifier": d.Credentials.Client.ContactIdentifier,
		"credentials.platform.base_url":         d.Credentials.Platform.BaseURL,
	} {
		v.SetDefault(key, value)
	}
	return v
}

// loadDotEnv loads ./.env and <config dir>/.env. Variables already set in
// the environment are not overwritten.
func loadDotEnv() {
	_ = godotenv.Load()
	if dir, err := Dir(); err == nil {
		_ = godotenv.Load(dir + string(os.PathSeparator) + ".env")
	}
}

// Validate checks every field and returns a ConfigError wrapping
// ErrInvalidConfig on the first problem.
func (c *Config) Validate() error {
	invalid := func(key, reason string) error {
		return &cwerrors.ConfigError{Key: key, Reason: reason, Cause: ErrInvalidConfig}
	}

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return invalid("log.format", fmt.Sprintf("must be json or text, got %q", c.Log.Format))
	}

	if c.HTTP.Timeout < 0 {
		return invalid("http.timeout", "must be non-negative")
	}

	switch c.Tracing.Exporter {
	case "", ExporterNone, ExporterConsole:
	case ExporterOTLP, ExporterOTLPHTTP:
		if c.Tracing.Endpoint == "" {
			return invalid("tracing.endpoint", "is required for the otlp exporters")
		}
	default:
		return invalid("tracing.exporter", fmt.Sprintf("unknown exporter %q", c.Tracing.Exporter))
	}

	switch c.Secrets.Backend {
	case "", "keychain", "file":
	default:
		return invalid("secrets.backend", fmt.Sprintf("must be keychain or file, got %q", c.Secrets.Backend))
	}

	for key, value := range map[string]string{
		"credentials.application.base_url": c.Credentials.Application.BaseURL,
		"credentials.client.base_url":      c.Credentials.Client.BaseURL,
		"credentials.platform.base_url":    c.Credentials.Platform.BaseURL,
	} {
		if err := validateBaseURL(value); err != nil {
			return invalid(key, err.Error())
		}
	}

	if id := c.Credentials.Application.AccountID; id != "" {
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			return invalid("credentials.application.account_id", fmt.Sprintf("must be a number, got %q", id))
		}
	}

	if c.History.Enabled && c.History.Path == "" {
		return invalid("history.path", "is required when history is enabled")
	}

	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}
