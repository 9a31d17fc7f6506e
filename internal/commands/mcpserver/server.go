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

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/chatwoot-connector/internal/commands/shared"
	"github.com/tombee/chatwoot-connector/internal/config"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/mcp/server"
	"github.com/tombee/chatwoot-connector/internal/tracing"
)

// NewCommand creates the mcp command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
		Annotations: map[string]string{
			"group": "integrations",
		},
	}

	cmd.AddCommand(newServeCommand())

	return cmd
}

func newServeCommand() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Chatwoot operations as MCP tools over stdio",
		Long: `Start an MCP (Model Context Protocol) server on stdin and stdout.

Every Chatwoot operation is exposed as a tool named chatwoot_<resource>_<operation>,
next to chatwoot_operations (list operations) and chatwoot_verify (check
credentials). Destructive tools require confirm=true.

Configuration example for an MCP client:
  {
    "mcpServers": {
      "chatwoot": {
        "command": "chatwoot",
        "args": ["mcp", "serve"]
      }
    }
  }

The config file is watched while the server runs; credential and HTTP
changes apply to the next tool call. With --metrics-addr (or metrics.addr)
Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, metricsAddr, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")

	return cmd
}

// serve runs the MCP server until ctx is done or in is closed.
func serve(ctx context.Context, metricsAddr string, in io.Reader, out io.Writer) error {
	app, err := shared.Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.WithoutCancel(ctx))

	logger := app.Logger
	version, _, _ := shared.GetVersion()

	srv, err := server.NewServer(server.ServerConfig{
		Name:     "chatwoot",
		Version:  version,
		Registry: app.Registry,
		Runner:   app.Runner,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if path, err := shared.ConfigFilePath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			watcher, err := config.NewWatcher(path, log.WithComponent(logger, "config"), reloader(app, srv, logger))
			if err != nil {
				logger.Warn("config reload disabled", log.Error(err))
			} else {
				go watcher.Run(ctx)
			}
		}
	}

	if metricsAddr == "" {
		metricsAddr = app.Config.Metrics.Addr
	}
	if metricsAddr != "" {
		stopMetrics, err := startMetrics(metricsAddr, app.Tracing.MetricsHandler(), logger)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	return srv.Serve(ctx, in, out)
}

// reloader rebuilds the runner from a changed config and swaps it into srv.
func reloader(app *shared.App, srv *server.Server, logger *slog.Logger) func(*config.Config) {
	return func(cfg *config.Config) {
		resolver, err := shared.NewSecrets(cfg)
		if err != nil {
			logger.Warn("keeping previous runner", log.Error(err))
			return
		}
		runner, err := shared.NewRunner(cfg, app.Registry, resolver, app.Tracing.Metrics(), logger, app.Observers...)
		if err != nil {
			logger.Warn("keeping previous runner", log.Error(err))
			return
		}
		srv.SetRunner(runner)
		logger.Info("runner rebuilt from new config")
	}
}

// metricsHandler serves the Prometheus handler at /metrics.
func metricsHandler(metrics http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	return tracing.CorrelationMiddleware(mux)
}

// startMetrics listens on addr and returns a function that stops the server.
func startMetrics(addr string, metrics http.Handler, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	httpServer := &http.Server{
		Handler:           metricsHandler(metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", log.Error(err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}, nil
}
