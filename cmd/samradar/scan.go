package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/samradar/internal/aggregate"
	"github.com/nao1215/samradar/internal/config"
	"github.com/nao1215/samradar/internal/database"
	"github.com/nao1215/samradar/internal/log"
	"github.com/nao1215/samradar/internal/model"
	"github.com/nao1215/samradar/internal/notify"
	"github.com/nao1215/samradar/internal/pipeline"
	"github.com/nao1215/samradar/internal/report"
	"github.com/nao1215/samradar/internal/source"
)

// flagConfigKeys maps scan flags to the .samradar defaults they override.
var flagConfigKeys = map[string]string{
	config.KeyPerSourceLimit:    "per-source",
	config.KeyMaxTotal:          "max-total",
	config.KeyUseNewsData:       "newsdata",
	config.KeyUseAliasDiscovery: "wiki-aliases",
	config.KeyUseGoogleNews:     "google-news",
	config.KeyDomainPriority:    "domain-priority",
}

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [entity...]",
		Short: "Screen entities for sanctions and adverse media",
		Long: `Scan screens one or more person or company names.

For every entity it:
- Looks the name up in the OpenSanctions database
- Expands the name into aliases and a bank of risk-keyword queries
- Searches NewsData, DuckDuckGo, Bing and optionally Google News
- Keeps relevant, deduplicated results and labels each High, Medium or Low

Examples:
  # Screen a single company
  samradar scan "Acme Holdings"

  # Screen several names, four at a time
  samradar scan -b 4 "Acme Holdings" "Globex" "Initech"

  # Export results as CSV
  samradar scan --csv -o acme.csv "Acme Holdings"

  # Prefer wire services and discover aliases on Wikipedia
  samradar scan --domain-priority reuters.com,ft.com --wiki-aliases Lukoil

  # Cache responses in Redis and announce results on NATS
  samradar scan --redis 127.0.0.1:6379 --nats nats://127.0.0.1:4222 Acme

Configuration file (.samradar) example:
  aliases:
    acme: ["Acme", "Acme Holdings"]
  domain_priority: ["reuters.com", "ft.com"]
  defaults:
    per_source_limit: 6
    use_newsdata: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Source flags
	cmd.Flags().IntP("per-source", "n", config.DefaultPerSourceLimit,
		"Results taken from each connector call (1-12)")
	cmd.Flags().Int("max-total", config.DefaultMaxTotal,
		"Stop searching once this many results are collected")
	cmd.Flags().Bool("newsdata", true,
		"Use the NewsData API (requires NEWSDATA_KEY)")
	cmd.Flags().Bool("wiki-aliases", false,
		"Discover extra aliases with a Wikipedia search")
	cmd.Flags().Bool("google-news", false,
		"Also search the Google News RSS feed")
	cmd.Flags().String("domain-priority", "",
		"Comma-separated domains listed first in results (e.g. reuters.com,ft.com)")

	// Transport and concurrency flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each outbound request")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Concurrent requests per connector")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of entities screened concurrently")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")

	// Cache and notification flags
	cmd.Flags().String("redis", "",
		"Redis address for the response cache (e.g. 127.0.0.1:6379)")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"Lifetime of cached responses")
	cmd.Flags().String("nats", "",
		"NATS server URL for scan-completed events")
	cmd.Flags().String("nats-subject", config.DefaultNATSSubject,
		"NATS subject for scan-completed events")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .samradar in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown and --csv)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --csv)")
	cmd.Flags().Bool("csv", false,
		"Output results as CSV (mutually exclusive with --json and --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not store the reports in the scan history database")
	cmd.Flags().String("db-dir", "",
		"Scan history directory (default: XDG data directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

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

	return runScan(ctx, cmd.OutOrStdout(), cfg, fetcher, publisher, logger)
}

// buildConfig creates a Config from cobra command flags, the .samradar
// file and the environment.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.PerSourceLimit, err = flags.GetInt("per-source"); err != nil {
		return nil, err
	}
	if cfg.MaxTotal, err = flags.GetInt("max-total"); err != nil {
		return nil, err
	}
	if cfg.UseNewsData, err = flags.GetBool("newsdata"); err != nil {
		return nil, err
	}
	if cfg.UseAliasDiscovery, err = flags.GetBool("wiki-aliases"); err != nil {
		return nil, err
	}
	if cfg.UseGoogleNews, err = flags.GetBool("google-news"); err != nil {
		return nil, err
	}
	priority, err := flags.GetString("domain-priority")
	if err != nil {
		return nil, err
	}
	cfg.DomainPriority = aggregate.ParsePriorityList(priority)
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
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
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.CSVReport, err = flags.GetBool("csv"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.DBDir, err = dbDir(cmd); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg, func(key string) bool {
		return flags.Changed(flagConfigKeys[key])
	}); err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.Targets = args

	return cfg, nil
}

// loadConfigFile merges the .samradar file into cfg.
// If the user explicitly specified a config file path, it is an error if
// the file does not exist; otherwise a missing file is silently ignored.
func loadConfigFile(cfg *config.Config, explicit func(key string) bool) error {
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.ApplyFile(file, explicit)
	return nil
}

// runScan screens every target and outputs, stores and publishes each report.
func runScan(ctx context.Context, out io.Writer, cfg *config.Config, fetcher source.Fetcher, publisher notify.Publisher, logger *slog.Logger) error {
	// A blank name must never reach the history or the event stream.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"useNewsData", cfg.UseNewsData,
		"newsDataConfigured", cfg.NewsDataKey != "",
		"saveToDB", cfg.SaveToDB,
	)
	if cfg.UseNewsData && cfg.NewsDataKey == "" {
		logger.Warn("NewsData is enabled but " + config.EnvNewsDataKey + " is not set; the connector will be skipped")
	}

	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(cfg, fetcher, []pipeline.Option{pipeline.WithLogger(logger)})
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets)

	// Storage and notification use a fresh context so an interrupted
	// batch still keeps its partial reports.
	storeCtx := context.WithoutCancel(ctx)

	var collected []*model.ScanReport
	for _, r := range reports {
		if r == nil {
			continue
		}
		collected = append(collected, r)

		if err := saveScanReport(storeCtx, db, r, logger); err != nil {
			logger.Error("failed to save scan report", "entity", r.Entity, "error", err)
		}
		if err := publisher.Publish(storeCtx, r); err != nil {
			logger.Warn("failed to publish scan event", "entity", r.Entity, "error", err)
		}
	}

	if err := outputReports(out, cfg, collected); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info("scan finished", "entities", len(collected), "elapsed", time.Since(startTime))

	if batchErr != nil {
		return fmt.Errorf("scan interrupted: %w", batchErr)
	}
	return nil
}

// outputReports writes the reports in the requested format, either to
// out or to cfg.ReportFile.
func outputReports(out io.Writer, cfg *config.Config, reports []*model.ScanReport) error {
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Screening reports name real people, so only the owner may read them.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	// A single JSON document stays valid for one target; several targets
	// are written as one JSON document per line.
	writer := newReportWriter(out, cfg, len(reports) == 1)
	for _, r := range reports {
		if _, err := writer.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// newReportWriter selects the report writer for the configured format.
func newReportWriter(out io.Writer, cfg *config.Config, single bool) report.Writer {
	switch {
	case cfg.JSONReport:
		opts := []report.JSONWriterOption{report.WithVersion(getVersion())}
		if single {
			opts = append(opts, report.WithPrettyPrint())
		}
		return report.NewJSONWriter(out, opts...)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	case cfg.CSVReport:
		return &csvBatchWriter{out: out}
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

// csvBatchWriter writes the CSV header once and then only data rows, so
// several entities end up in one table.
type csvBatchWriter struct {
	out         io.Writer
	wroteHeader bool
}

func (w *csvBatchWriter) Write(r *model.ScanReport) (int, error) {
	var sb strings.Builder
	if _, err := report.NewCSVWriter(&sb).Write(r); err != nil {
		return 0, err
	}
	body := sb.String()
	if w.wroteHeader {
		// Drop the header line of every report after the first.
		if i := strings.IndexByte(body, '\n'); i >= 0 {
			body = body[i+1:]
		}
	}
	w.wroteHeader = true
	return io.WriteString(w.out, body)
}

// saveScanReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, r *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.Save(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database", "entity", r.Entity, "id", id)
	return nil
}
