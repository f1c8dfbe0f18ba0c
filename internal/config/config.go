package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/samradar/internal/model"
)

// Default configuration values.
const (
	// DefaultTimeout applies to every outbound connector request.
	// Public search and news APIs normally answer within a few seconds;
	// 12 seconds tolerates a slow response without stalling a whole stage.
	DefaultTimeout = 12 * time.Second

	// DefaultPerSourceLimit is the number of hits requested per connector call.
	DefaultPerSourceLimit = 6

	// MinPerSourceLimit and MaxPerSourceLimit bound the per-source limit.
	MinPerSourceLimit = 1
	MaxPerSourceLimit = 12

	// DefaultMaxTotal caps the number of adverse-media results per scan.
	DefaultMaxTotal = 120

	// DefaultWorkers is the number of concurrent connector calls within a stage.
	// Kept small because the scrape target rate-limits aggressively.
	DefaultWorkers = 8

	// DefaultBatchSize is the number of entities scanned concurrently.
	DefaultBatchSize = 4

	// DefaultCacheTTL is how long cached connector responses stay valid.
	DefaultCacheTTL = 6 * time.Hour

	// DefaultNATSSubject is the subject scan-completed events are published on.
	DefaultNATSSubject = "samradar.scans.completed"

	// AppName is the application name used for XDG directory paths.
	AppName = "samradar"

	// DefaultUserAgent identifies SAM-Radar in outbound HTTP requests.
	DefaultUserAgent = "sam-radar-bot/1.0 (+https://github.com/nao1215/samradar)"

	// DefaultMaxBodySize limits the response body read from any connector.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// EnvNewsDataKey holds the NewsData API key.
	EnvNewsDataKey = "NEWSDATA_KEY"

	// EnvOpenSanctionsKey holds the optional OpenSanctions API key.
	EnvOpenSanctionsKey = "OPENSANCTIONS_API_KEY"
)

// Config holds all configuration options for SAM-Radar.
// This struct is populated from CLI flags (or an API request), the
// .samradar file and the environment, and is passed through the
// application via dependency injection rather than global state.
//
// Design decision: a single flat struct, as the option count is manageable.
type Config struct {
	// Timeout is the per-request timeout for connector calls.
	Timeout time.Duration

	// PerSourceLimit is the maximum number of hits taken from one connector call.
	PerSourceLimit int

	// MaxTotal caps the aggregated adverse-media result list.
	MaxTotal int

	// Workers is the number of concurrent connector calls within one stage.
	Workers int

	// BatchSize is the number of entities scanned concurrently.
	BatchSize int

	// UseNewsData enables the news API connector. It is still skipped
	// when NewsDataKey is empty.
	UseNewsData bool

	// UseAliasDiscovery enables best-effort alias discovery via Wikipedia search.
	UseAliasDiscovery bool

	// UseGoogleNews enables the Google News RSS connector as the last stage.
	UseGoogleNews bool

	// DomainPriority is the ordered list of domain substrings used to
	// reorder results. Empty means no reordering.
	DomainPriority []string

	// NewsDataKey is the NewsData API key, normally read from NEWSDATA_KEY.
	NewsDataKey string

	// OpenSanctionsKey is the optional OpenSanctions API key.
	OpenSanctionsKey string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// RedisAddr enables the connector response cache when set.
	RedisAddr string

	// CacheTTL is the lifetime of cached connector responses.
	CacheTTL time.Duration

	// NATSURL enables scan-completed notifications when set.
	NATSURL string

	// NATSSubject is the subject notifications are published on.
	NATSSubject string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit path to the .samradar file.
	// If empty, the current directory and then the home directory are searched.
	ConfigFilePath string

	// File holds the contents of the loaded .samradar file, if any.
	File *File

	// JSONReport, MarkdownReport and CSVReport select the report format.
	// At most one may be set; none means the terminal table.
	JSONReport     bool
	MarkdownReport bool
	CSVReport      bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Targets is the list of entity names to scan.
	Targets []string

	// DBDir is the directory holding the scan history database.
	// Defaults to the XDG data directory (~/.local/share/samradar on Linux).
	DBDir string

	// SaveToDB indicates whether scan reports are written to the history database.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (limits, timeouts, and
// the news connector being enabled).
func NewConfig() *Config {
	return &Config{
		Timeout:        DefaultTimeout,
		PerSourceLimit: DefaultPerSourceLimit,
		MaxTotal:       DefaultMaxTotal,
		Workers:        DefaultWorkers,
		BatchSize:      DefaultBatchSize,
		UseNewsData:    true,
		CacheTTL:       DefaultCacheTTL,
		NATSSubject:    DefaultNATSSubject,
		SaveToDB:       true,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for SAM-Radar.
// On Linux: ~/.local/share/samradar
// On macOS: ~/Library/Application Support/samradar
// On Windows: %LOCALAPPDATA%\samradar
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for SAM-Radar.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for SAM-Radar.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ApplyEnv fills credentials that were not set explicitly from the
// environment. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.NewsDataKey == "" {
		c.NewsDataKey = getenv(EnvNewsDataKey)
	}
	if c.OpenSanctionsKey == "" {
		c.OpenSanctionsKey = getenv(EnvOpenSanctionsKey)
	}
}

// ApplyFile merges a loaded .samradar file into the configuration.
// Values from the file's defaults section are applied only for options
// the user did not set explicitly; explicit reports whether an option
// (by its YAML key) was given on the command line. A nil explicit treats
// every option as unset.
func (c *Config) ApplyFile(f *File, explicit func(key string) bool) {
	if f == nil {
		return
	}
	if explicit == nil {
		explicit = func(string) bool { return false }
	}
	c.File = f

	d := f.Defaults
	if d.PerSourceLimit != nil && !explicit(KeyPerSourceLimit) {
		c.PerSourceLimit = *d.PerSourceLimit
	}
	if d.MaxTotal != nil && !explicit(KeyMaxTotal) {
		c.MaxTotal = *d.MaxTotal
	}
	if d.UseNewsData != nil && !explicit(KeyUseNewsData) {
		c.UseNewsData = *d.UseNewsData
	}
	if d.UseAliasDiscovery != nil && !explicit(KeyUseAliasDiscovery) {
		c.UseAliasDiscovery = *d.UseAliasDiscovery
	}
	if d.UseGoogleNews != nil && !explicit(KeyUseGoogleNews) {
		c.UseGoogleNews = *d.UseGoogleNews
	}
	if len(f.DomainPriority) > 0 && !explicit(KeyDomainPriority) {
		c.DomainPriority = append([]string(nil), f.DomainPriority...)
	}
}

// AliasOverrides returns the alias override mapping from the loaded file,
// or nil when no file was loaded.
func (c *Config) AliasOverrides() map[string][]string {
	if c.File == nil {
		return nil
	}
	return c.File.Aliases
}

// Validate checks the scan options and that at least one target is set.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast, and return the first error found because
// fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	for i, target := range c.Targets {
		if _, err := model.NormalizeEntity(target); err != nil {
			return fmt.Errorf("target %d: %w", i+1, err)
		}
	}
	return c.ValidateOptions()
}

// ValidateOptions checks every option except Targets. The HTTP API uses it
// at startup, when entities arrive later with each request.
func (c *Config) ValidateOptions() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.PerSourceLimit < MinPerSourceLimit || c.PerSourceLimit > MaxPerSourceLimit {
		return ErrInvalidPerSourceLimit
	}
	if c.MaxTotal <= 0 {
		return ErrInvalidMaxTotal
	}
	if countTrue(c.JSONReport, c.MarkdownReport, c.CSVReport) > 1 {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	return nil
}

func countTrue(values ...bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}
