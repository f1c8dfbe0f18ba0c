package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nao1215/samradar/internal/api"
	"github.com/nao1215/samradar/internal/config"
	"github.com/nao1215/samradar/internal/database"
	"github.com/nao1215/samradar/internal/log"
)

// shutdownTimeout bounds how long in-flight scans may finish after a signal.
const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the screening HTTP API",
		Long: `Serve starts an HTTP API that runs scans and exposes the scan history.

Endpoints:
  GET  /health                health check
  POST /api/scans             run a scan: {"entity": "Acme Holdings"}
  GET  /api/scans?entity=...  scan history of an entity
  GET  /api/scans/:id         stored report (database ID or scan ID)
  GET  /api/scans/:id/csv     stored report as CSV
  GET  /api/entities          screened entities

The API has no authentication. Run it behind an internal gateway.

Examples:
  # Listen on the default address
  samradar serve

  # Listen on localhost only, with a response cache
  samradar serve --addr 127.0.0.1:9000 --redis 127.0.0.1:6379`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", api.DefaultServerConfig().Addr,
		"Listen address")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each outbound request")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Concurrent requests per connector")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().String("redis", "",
		"Redis address for the response cache")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"Lifetime of cached responses")
	cmd.Flags().String("nats", "",
		"NATS server URL for scan-completed events")
	cmd.Flags().String("nats-subject", config.DefaultNATSSubject,
		"NATS subject for scan-completed events")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .samradar in current or home directory)")
	cmd.Flags().String("db-dir", "",
		"Scan history directory (default: XDG data directory)")

	return cmd
}

// buildServeConfig creates the server-wide scan configuration.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.RedisAddr, err = flags.GetString("redis"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = flags.GetDuration("cache-ttl"); err != nil {
		return nil, err
	}
	if cfg.NATSURL, err = flags.GetString("nats"); err != nil {
		return nil, err
	}
	if cfg.NATSSubject, err = flags.GetString("nats-subject"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = dbDir(cmd); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if err := loadConfigFile(cfg, nil); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.ValidateOptions(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)
	if cfg.Verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	fetcher, closeFetcher, err := newFetcher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	handler := api.NewHandler(cfg, db, api.PipelineScanFunc(fetcher, logger),
		api.WithPublisher(publisher),
		api.WithLogger(logger),
		api.WithVersion(getVersion()),
	)

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = addr
	srv := api.NewHTTPServer(serverCfg, api.NewServer(handler, logger))

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.ErrOrStderr(), "samradar API listening on %s (history: %s)\n", addr, db.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	fmt.Fprintln(cmd.ErrOrStderr(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
