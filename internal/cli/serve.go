package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/field-visits/internal/config"
	"github.com/evcraddock/field-visits/internal/logging"
)

type serveOptions struct {
	host    string
	port    int
	envFile string
	dev     bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server.

Settings come from FV_* environment variables and a .env file when present.
Flags override the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "host to bind (default FV_HOST or 127.0.0.1)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "port to listen on (default FV_PORT or 8080)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "load settings from this env file")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "development mode (text logs at debug level)")

	return cmd
}

// loadServeConfig loads the environment and applies flag overrides.
func loadServeConfig(opts serveOptions) (*config.Config, error) {
	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if opts.dev {
		cfg.Server.Dev = true
	}
	if flagDB != "" {
		cfg.Store.DBPath = flagDB
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	cfg, err := loadServeConfig(opts)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Server.Dev)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           a.server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "visit_store", cfg.Store.Visits, "cache", cfg.Cache.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = a.Close(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down server: %w", err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("closing resources: %w", err))
	}
	return errors.Join(errs...)
}
