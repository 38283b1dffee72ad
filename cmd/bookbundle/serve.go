package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aluiziolira/bookbundle/api"
	"github.com/aluiziolira/bookbundle/config"
	"github.com/spf13/cobra"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search and bundle analysis API",
		Example: `  bookbundle serve --addr :8080
  curl 'http://localhost:8080/api/books/search?keyword=데미안'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			mux := http.NewServeMux()
			api.New(a.analyzer).Register(mux)
			mux.Handle("GET /metrics", a.metricsHandler())

			server := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("api server listening", slog.String("addr", cfg.ListenAddr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("shutdown signal received, draining requests")
				if err := shutdownServer(server); err != nil {
					slog.Error("api server shutdown failed", slog.Any("error", err))
					return err
				}
				slog.Info("api server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.ListenAddr, "API listen address")
	return cmd
}

func shutdownServer(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
