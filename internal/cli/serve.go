package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/soundclusters/internal/adapters/rest"
	"github.com/ewilliams-labs/soundclusters/internal/config"
	"github.com/ewilliams-labs/soundclusters/internal/worker"
)

var serveAddr string // Listen address, overrides server.addr

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard views and the JSON API",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd, os.Getenv)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, cfg); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}
	},
}

// serve runs the HTTP server until ctx is canceled. Artifact or adapter
// failures are returned before the listener opens.
func serve(ctx context.Context, cfg config.Config) error {
	svc, closeCatalog, err := buildDashboard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	if cfg.Dashboard.WarmWorkers > 0 && cfg.Dashboard.Memoize {
		pool := worker.NewPool(svc, cfg.Dashboard.WarmQueue)
		pool.Start(cfg.Dashboard.WarmWorkers)
		defer pool.Abort()
		queued := pool.SubmitAll()
		logrus.WithField("jobs", queued).Info("warming dashboard views")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           rest.NewHandler(svc),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()
	logrus.Infof("soundclusters is running on %s", cfg.Server.Addr)

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logrus.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("shutdown error")
		}
		return nil
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
}
