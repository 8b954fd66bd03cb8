package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"stillreel/artifacts"
	"stillreel/config"
	"stillreel/credentials"
	"stillreel/engine"
	"stillreel/history"
	"stillreel/logger"
	"stillreel/metrics"
	"stillreel/probe"
	"stillreel/routes"
	"stillreel/workflow"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}
			if err := setupLogging(cfg, cmd.ErrOrStderr(), true); err != nil {
				return err
			}
			defer logger.Close()

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(sigCtx, cfg)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Override the listen address")
	return cmd
}

// serve owns every long-lived resource and tears them down in reverse order.
func serve(ctx context.Context, cfg config.Config) error {
	logger.Info("Starting stillreel server initialization")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another stillreel server is using %s", cfg.DataDir)
	}
	defer lock.Unlock()

	logger.Debug("Initializing history database")
	hist, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return err
	}
	defer hist.Close()

	logger.Debug("Initializing credentials database")
	creds, err := credentials.Open(cfg.CredentialsDBPath())
	if err != nil {
		return err
	}
	defer creds.Close()

	eng := engine.NewFFmpeg(cfg.FFmpegPath)
	defer eng.Close()
	if err := eng.Initialize(ctx); err != nil {
		// every run calls Initialize again
		logger.Warnf("Engine not ready: %v", err)
	}

	store := artifacts.NewStore()
	defer store.Close()

	m := metrics.New()
	ctrl := workflow.New(eng, store, workflow.Options{
		Inspector: newInspector(cfg),
		Recorder:  hist,
		Metrics:   m,
	})
	defer ctrl.Close()

	if !cfg.AdminEnabled() {
		logger.Warn("No JWT secret configured, admin routes are disabled")
	}
	srv := &routes.Server{
		Controller:    ctrl,
		Artifacts:     store,
		History:       hist,
		Credentials:   creds,
		Metrics:       m,
		JWTSecret:     []byte(cfg.JWTSecret),
		ServeDir:      cfg.ServeDir,
		EngineVersion: eng.Version,
	}
	mux := http.NewServeMux()
	srv.Register(mux)

	stopCleanup := startCleanup(ctx, hist, retention(cfg))
	defer stopCleanup()

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("stillreel server listening on http://%s", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newInspector returns an ffprobe-backed inspector, or nil when ffprobe is unavailable.
func newInspector(cfg config.Config) workflow.Inspector {
	if cfg.FFprobePath == "" {
		return nil
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		logger.Warnf("ffprobe %q not found, output clips will not be inspected", cfg.FFprobePath)
		return nil
	}
	return probe.Inspector{Binary: cfg.FFprobePath}
}

func retention(cfg config.Config) time.Duration {
	return time.Duration(cfg.RetentionDays) * 24 * time.Hour
}
