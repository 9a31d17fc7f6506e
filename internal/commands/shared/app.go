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

package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/config"
	"github.com/tombee/chatwoot-connector/internal/history"
	"github.com/tombee/chatwoot-connector/internal/host"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/transport"
	"github.com/tombee/chatwoot-connector/internal/secrets"
	"github.com/tombee/chatwoot-connector/internal/tracing"
)

// App holds the services commands share. It is built once per command
// invocation from the loaded configuration.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Secrets  *secrets.Resolver
	Tracing  *tracing.Provider
	Registry *operation.Registry

	// History is nil when history is disabled
	History *history.Store

	// Observers receive every item outcome of Runner
	Observers []operation.Observer

	Runner *host.Runner
}

// LoadConfig loads the configuration from --config or the default path.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFilePath returns --config or the default config file location.
func ConfigFilePath() (string, error) {
	if path := GetConfigPath(); path != "" {
		return path, nil
	}
	return config.Path()
}

// NewLogger builds the stderr logger. --verbose lowers the level to debug
// and --quiet raises it to error.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Log.Level
	switch {
	case GetVerbose():
		level = "debug"
	case GetQuiet():
		level = "error"
	}

	return log.New(&log.Config{
		Level:     level,
		Format:    log.Format(cfg.Log.Format),
		Output:    os.Stderr,
		AddSource: cfg.Log.AddSource,
	})
}

// NewSecrets builds the resolver over the environment, the OS keychain and
// the encrypted file. The keychain is skipped when the file backend is
// forced.
func NewSecrets(cfg *config.Config) (*secrets.Resolver, error) {
	backends := []secrets.SecretBackend{secrets.NewEnvBackend()}

	if cfg.Secrets.Backend != "file" {
		backends = append(backends, secrets.NewKeychainBackend())
	}

	file, err := secrets.NewFileBackend(cfg.Secrets.FilePath, "")
	if err != nil {
		return nil, fmt.Errorf("secrets file: %w", err)
	}
	backends = append(backends, file)

	return secrets.NewResolver(backends...), nil
}

// NewRunner builds a runner from cfg. metrics and observers may be nil.
func NewRunner(cfg *config.Config, registry *operation.Registry, resolver *secrets.Resolver, metrics host.RequestRecorder, logger *slog.Logger, observers ...operation.Observer) (*host.Runner, error) {
	tr, err := transport.NewHTTPTransport(&transport.HTTPTransportConfig{
		Timeout:     cfg.HTTP.Timeout,
		TLSInsecure: cfg.HTTP.TLSInsecure,
		UserAgent:   cfg.HTTP.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("http transport: %w", err)
	}

	return host.NewRunner(host.RunnerConfig{
		NodeName: cfg.NodeName,
		Registry: registry,
		Credentials: &host.ConfigCredentials{
			Config:  cfg.Credentials,
			Secrets: resolver,
		},
		Transport: tr,
		Metrics:   metrics,
		Observers: observers,
		Logger:    log.WithComponent(logger, "host"),
	}), nil
}

// Bootstrap loads the configuration and builds every shared service.
// Close must be called when the command finishes.
func Bootstrap(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewApp(ctx, cfg)
}

// NewApp builds the services for cfg.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, Logger: NewLogger(cfg)}

	registry, err := chatwoot.NewRegistry()
	if err != nil {
		return nil, err
	}
	app.Registry = registry

	if app.Secrets, err = NewSecrets(cfg); err != nil {
		return nil, err
	}

	v, _, _ := GetVersion()
	app.Tracing, err = tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    "chatwoot",
		ServiceVersion: v,
		Exporter:       cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	observers := []operation.Observer{app.Tracing.Metrics()}
	if cfg.History.Enabled {
		app.History, err = history.Open(ctx, history.Config{
			Path:   cfg.History.Path,
			Logger: log.WithComponent(app.Logger, "history"),
		})
		if err != nil {
			app.Logger.Warn("execution history disabled", log.Error(err))
		} else {
			observers = append(observers, app.History)
		}
	}

	app.Observers = observers
	app.Runner, err = NewRunner(cfg, registry, app.Secrets, app.Tracing.Metrics(), app.Logger, observers...)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	return app, nil
}

// Close flushes spans and closes the history database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Tracing != nil {
		errs = append(errs, a.Tracing.Shutdown(ctx))
	}
	if a.History != nil {
		errs = append(errs, a.History.Close())
	}
	return errors.Join(errs...)
}
