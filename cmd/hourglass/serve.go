package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/hourglass/internal/api"
	"github.com/Veraticus/hourglass/internal/certs"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Long: `Serve the hourglass REST API.

Requires auth.jwt_secret (HOURGLASS_AUTH_JWT_SECRET). The server shuts down
gracefully on SIGINT or SIGTERM. With --tls the server uses a self-signed
certificate for localhost kept in server.cert_dir.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	authSvc, err := a.authService()
	if err != nil {
		return err
	}

	srv := api.NewServer(authSvc, a.tracker, a.planner, a.analytics)
	httpServer := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           srv.Router(api.Options{CORSOrigins: a.cfg.Server.CORSOrigins}),
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
	}

	listen := httpServer.ListenAndServe
	if a.cfg.Server.TLS {
		cm := certs.NewManager(a.cfg.Server.CertDir)
		tlsCfg, err := cm.TLSConfig()
		if err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
		httpServer.TLSConfig = tlsCfg
		listen = func() error { return httpServer.ListenAndServeTLS("", "") }
		slog.Info("Serving HTTPS", "certificate", cm.CertFile())
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening",
			"addr", httpServer.Addr,
			"tls", a.cfg.Server.TLS,
			"database", a.cfg.Database.Path,
			"timezone", a.loc.String())
		if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Received interrupt signal, shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
