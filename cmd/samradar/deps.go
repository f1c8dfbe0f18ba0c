package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/samradar/internal/cache"
	"github.com/nao1215/samradar/internal/config"
	"github.com/nao1215/samradar/internal/notify"
	"github.com/nao1215/samradar/internal/source"
	"github.com/nao1215/samradar/internal/transport"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// dbDir returns the --db-dir flag or the XDG data directory.
func dbDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return "", err
	}
	if dir == "" {
		return config.XDGDataDir(), nil
	}
	return dir, nil
}

// newFetcher builds the outbound request path shared by every connector:
// the HTTP client, optionally wrapped in the Redis response cache. The
// returned cleanup closes the Redis connection.
//
// Design decision: An unreachable Redis server only costs speed, so it is
// reported and the scan continues uncached.
func newFetcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (source.Fetcher, func(), error) {
	opts := []transport.Option{
		transport.WithTimeout(cfg.Timeout),
		transport.WithUserAgent(cfg.UserAgent),
		transport.WithMaxBodySize(cfg.MaxBodySize),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, transport.WithProxy(cfg.ProxyAddress))
	}
	client, err := transport.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	noop := func() {}
	if cfg.RedisAddr == "" {
		return client, noop, nil
	}

	rdb, err := cache.Dial(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("response cache disabled", "error", err)
		return client, noop, nil
	}
	logger.Info("response cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)

	cached := cache.New(client, rdb,
		cache.WithTTL(cfg.CacheTTL),
		cache.WithLogger(logger),
	)
	return cached, func() { _ = rdb.Close() }, nil
}

// newPublisher connects to NATS when a URL is configured.
func newPublisher(cfg *config.Config, logger *slog.Logger) (notify.Publisher, error) {
	if cfg.NATSURL == "" {
		return notify.Nop{}, nil
	}
	pub, err := notify.Connect(cfg.NATSURL,
		notify.WithSubject(cfg.NATSSubject),
		notify.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("publishing scan events", "subject", pub.Subject())
	return pub, nil
}
