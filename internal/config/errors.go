package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no entity name is given to scan.
	ErrNoTarget = errors.New("no target specified: provide at least one entity name")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidWorkers is returned when the fetch worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidPerSourceLimit is returned when the per-source result limit
	// is outside the supported range.
	ErrInvalidPerSourceLimit = errors.New("invalid per-source limit: must be between 1 and 12")

	// ErrInvalidMaxTotal is returned when the global result cap is not positive.
	ErrInvalidMaxTotal = errors.New("invalid max total: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown and --csv is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose only one of --json, --markdown, --csv")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidCacheTTL is returned when the cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be non-negative")
)
