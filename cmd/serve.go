package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ciforge/migrag/internal/api"
)

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute // completions can take a while
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the migration assistant over HTTP",
		Long: `serve exposes /api/ask and /api/search as a JSON API, with health
probes at /health and /ready and Prometheus metrics at /metrics. The
index must have been prepared beforehand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()

			store, err := openStore(cfg, logger)
			if err != nil {
				return err
			}

			catalog, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer catalog.Close()

			ragAgent, err := newAgent(cfg, store, logger)
			if err != nil {
				return err
			}

			apiServer, err := api.NewServer(api.ServerConfig{
				Logger:    logger,
				Asker:     ragAgent,
				Store:     store,
				Catalog:   catalog,
				RateLimit: cfg.Serve.RateLimit,
			})
			if err != nil {
				return fmt.Errorf("creating API server: %w", err)
			}

			if addr == "" {
				addr = cfg.Serve.Addr
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			srv := &http.Server{
				Addr:              addr,
				Handler:           apiServer.Handler(),
				ReadHeaderTimeout: readHeaderTimeout,
				ReadTimeout:       readTimeout,
				WriteTimeout:      writeTimeout,
				IdleTimeout:       idleTimeout,
			}

			logger.Info("HTTP server ready",
				"addr", addr,
				"api", "/api/*",
				"health", "/health, /ready",
				"chunks", store.Count())

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down HTTP server")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer shutdownCancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutting down server: %w", err)
				}
				<-errCh
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("HTTP server: %w", err)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
