package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/samradar/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "samradar.db"

// timestampLayout sorts lexically in chronological order.
const timestampLayout = "2006-01-02 15:04:05.000000"

// ScanDB provides SQLite-based storage for scan reports.
//
// Design decision: Reports are stored whole as JSON rather than normalized
// into result rows. Reports are only ever read back whole, and the JSON
// form is what the API and the compare command already emit.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scan first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw prevents creating a new file when the database must exist.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; concurrent batch scans and API
	// handlers serialize on this single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// Path returns the database file path.
func (sdb *ScanDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Scan reports store complete scan results as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL UNIQUE,
		entity TEXT NOT NULL COLLATE NOCASE,
		timestamp TEXT NOT NULL,
		report_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_entity ON scan_reports(entity);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// Save stores a complete scan report and returns its database ID.
// Saving the same scan ID twice replaces the stored report.
func (sdb *ScanDB) Save(ctx context.Context, report *model.ScanReport) (int64, error) {
	if report.Error != nil && report.ErrorMessage == "" {
		report.ErrorMessage = report.Error.Error()
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	riskJSON, err := json.Marshal(report.Summary())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize risk summary: %w", err)
	}

	query := `
	INSERT INTO scan_reports (scan_id, entity, timestamp, report_json, risk_summary)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(scan_id) DO UPDATE SET
		report_json = excluded.report_json,
		risk_summary = excluded.risk_summary
	`

	result, err := sdb.db.ExecContext(ctx, query,
		report.ScanID,
		report.Entity,
		report.DateScanned.UTC().Format(timestampLayout),
		string(reportJSON),
		string(riskJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatest retrieves the most recent scan report for an entity.
// Entity names are matched case-insensitively. It returns nil, nil when
// the entity was never scanned.
func (sdb *ScanDB) GetLatest(ctx context.Context, entity string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE entity = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`
	return sdb.queryOne(ctx, query, entity)
}

// GetByID retrieves a scan report by its database ID.
func (sdb *ScanDB) GetByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	return sdb.queryOne(ctx, `SELECT report_json FROM scan_reports WHERE id = ?`, id)
}

// GetByScanID retrieves a scan report by its scan ID.
func (sdb *ScanDB) GetByScanID(ctx context.Context, scanID string) (*model.ScanReport, error) {
	return sdb.queryOne(ctx, `SELECT report_json FROM scan_reports WHERE scan_id = ?`, scanID)
}

func (sdb *ScanDB) queryOne(ctx context.Context, query string, arg any) (*model.ScanReport, error) {
	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, arg).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ListScannedEntities returns every entity with at least one stored scan.
func (sdb *ScanDB) ListScannedEntities(ctx context.Context) ([]string, error) {
	query := `
	SELECT entity FROM scan_reports
	GROUP BY entity
	ORDER BY entity
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	entities := make([]string, 0)
	for rows.Next() {
		var entity string
		if err := rows.Scan(&entity); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

// History retrieves all scan reports for an entity, newest first.
func (sdb *ScanDB) History(ctx context.Context, entity string) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE entity = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	reports := make([]*model.ScanReport, 0)
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.ScanReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ScanReportMetadata contains summary information about a scan report.
// This is used for displaying scan history without loading the full report.
type ScanReportMetadata struct {
	// ID is the unique identifier of the scan report in the database.
	ID int64 `json:"id"`

	// ScanID is the scan's own identifier.
	ScanID string `json:"scan_id"`

	// Entity is the screened entity name.
	Entity string `json:"entity"`

	// Timestamp is when the scan was performed.
	Timestamp time.Time `json:"timestamp"`

	// RiskSummary contains result counts per risk level.
	RiskSummary model.RiskSummary `json:"risk_summary"`
}

// HistoryWithMetadata retrieves scan report metadata for an entity,
// newest first. This is more efficient than History when only metadata
// is needed.
func (sdb *ScanDB) HistoryWithMetadata(ctx context.Context, entity string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, scan_id, entity, timestamp, risk_summary
	FROM scan_reports
	WHERE entity = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	results := make([]ScanReportMetadata, 0)
	for rows.Next() {
		var meta ScanReportMetadata
		var timestamp string
		var riskJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.ScanID, &meta.Entity, &timestamp, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		if riskJSON.Valid && riskJSON.String != "" {
			// A corrupt summary leaves zero counts.
			_ = json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary) //nolint:errcheck
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05", // SQLite default datetime format
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
