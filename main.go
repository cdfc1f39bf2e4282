package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cotizador/app"
	"cotizador/config"
	"cotizador/db"
	"cotizador/logger"
	"cotizador/service"
)

var (
	envPath string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cotizador",
	Short: "Quoting front end for the pricing backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file in development (ignores error if file doesn't exist)
		if err := config.LoadDotEnv(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: .env file not found at %s, using system environment variables\n", envPath)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if _, err := logger.New(cfg.LogLevel); err != nil {
			return err
		}
		return nil
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the client storage migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.StorageEnabled() {
			return errors.New("DATABASE_URL is not set")
		}
		return db.RunMigrations(cfg.MigrationURL, cfg.DatabaseURL)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the pricing backend answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		api := service.NewPricingAPI(cfg.RequestTimeout, cfg.AuthScheme, cfg.PricingPath)
		if err := api.Health(cmd.Context(), cfg.APIURL); err != nil {
			return fmt.Errorf("%s: %w", cfg.APIURL, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is up\n", cfg.APIURL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "path to the .env file")
	rootCmd.AddCommand(serveCmd, migrateCmd, healthCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	go application.Sessions.RunWatchdog(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("Server starting on %s (backend %s)", cfg.Addr(), cfg.APIURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
		zap.S().Infof("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
