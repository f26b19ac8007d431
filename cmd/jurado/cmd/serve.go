package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the Jurado IA HTTP API.

Examples:
  # Start with defaults (0.0.0.0:8000)
  jurado serve

  # Start on a custom host and port
  jurado serve --host 127.0.0.1 --port 9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host address to bind to")
	serveCmd.Flags().IntP("port", "p", 8000, "Port to listen on")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := web.DefaultConfig()
	cfg.Host = a.cfg.Server.Host
	cfg.Port = a.cfg.Server.Port
	cfg.CORSOrigins = a.cfg.Server.AllowedOrigins
	cfg.MaxUploadBytes = a.cfg.MaxUploadBytes()
	if d := a.cfg.ShutdownTimeout(); d > 0 {
		cfg.ShutdownTimeout = d
	}

	opts := []web.ServerOption{web.WithMetrics(a.metrics), web.WithHostMetrics(a.host)}
	if a.history != nil {
		opts = append(opts, web.WithHistory(a.history))
	}
	server := web.New(cfg, a.judge, a.health, a.logger, opts...)

	errCh := server.Start()
	a.logger.Info("server started",
		"addr", server.Addr(),
		"gemini", a.cfg.APIConfigured(),
		"history", a.history != nil,
	)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	stop()
	a.logger.Info("shutting down server...")
	if err := server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
