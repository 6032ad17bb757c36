package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csv2cypher/internal/history"
	"github.com/JonMunkholm/csv2cypher/internal/web"
)

// memoryHistorySize bounds the in-process history kept without a database.
const memoryHistorySize = 500

func (a *app) serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the converter over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			ctx := cmd.Context()

			var store history.Store = history.NewMemory(memoryHistorySize)
			if a.cfg.History.Enabled() {
				pg, err := a.openHistory(ctx, true)
				if err != nil {
					return err
				}
				store = pg
				slog.Info("history database connected")
			}
			defer store.Close()

			server := web.NewServer(a.pipeline(store, ""), store, a.cfg, slog.Default())

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (default SERVER_PORT)")
	return cmd
}
