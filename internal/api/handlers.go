package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/samradar/internal/config"
	"github.com/nao1215/samradar/internal/database"
	"github.com/nao1215/samradar/internal/model"
	"github.com/nao1215/samradar/internal/notify"
	"github.com/nao1215/samradar/internal/pipeline"
	"github.com/nao1215/samradar/internal/report"
	"github.com/nao1215/samradar/internal/source"
)

// Store is the scan history used by the handlers.
// *database.ScanDB implements it.
type Store interface {
	Save(ctx context.Context, report *model.ScanReport) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.ScanReport, error)
	GetByScanID(ctx context.Context, scanID string) (*model.ScanReport, error)
	HistoryWithMetadata(ctx context.Context, entity string) ([]database.ScanReportMetadata, error)
	ListScannedEntities(ctx context.Context) ([]string, error)
}

// ScanFunc screens one entity with the given configuration.
type ScanFunc func(ctx context.Context, cfg *config.Config, entity string) (*model.ScanReport, error)

// PipelineScanFunc returns a ScanFunc that runs the default pipeline
// built fresh for every request.
func PipelineScanFunc(fetcher source.Fetcher, logger *slog.Logger) ScanFunc {
	return func(ctx context.Context, cfg *config.Config, entity string) (*model.ScanReport, error) {
		p := pipeline.DefaultPipeline(cfg, fetcher, []pipeline.Option{pipeline.WithLogger(logger)})
		return p.Run(ctx, entity)
	}
}

// ScanRequest is the body of POST /api/scans. Unset options fall back to
// the server configuration.
type ScanRequest struct {
	Entity            string   `json:"entity" binding:"required"`
	PerSourceLimit    *int     `json:"per_source_limit"`
	MaxTotal          *int     `json:"max_total"`
	UseNewsData       *bool    `json:"use_newsdata"`
	UseAliasDiscovery *bool    `json:"use_alias_discovery"`
	UseGoogleNews     *bool    `json:"use_google_news"`
	DomainPriority    []string `json:"domain_priority"`
}

// apply returns a copy of base with the request's options set.
func (r *ScanRequest) apply(base *config.Config) *config.Config {
	cfg := *base
	cfg.DomainPriority = append([]string(nil), base.DomainPriority...)

	if r.PerSourceLimit != nil {
		cfg.PerSourceLimit = *r.PerSourceLimit
	}
	if r.MaxTotal != nil {
		cfg.MaxTotal = *r.MaxTotal
	}
	if r.UseNewsData != nil {
		cfg.UseNewsData = *r.UseNewsData
	}
	if r.UseAliasDiscovery != nil {
		cfg.UseAliasDiscovery = *r.UseAliasDiscovery
	}
	if r.UseGoogleNews != nil {
		cfg.UseGoogleNews = *r.UseGoogleNews
	}
	if r.DomainPriority != nil {
		cfg.DomainPriority = r.DomainPriority
	}
	return &cfg
}

// Handler handles HTTP requests for the screening API.
type Handler struct {
	base      *config.Config
	store     Store
	scan      ScanFunc
	publisher notify.Publisher
	logger    *slog.Logger
	version   string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithPublisher sets the publisher notified after every scan.
func WithPublisher(p notify.Publisher) HandlerOption {
	return func(h *Handler) {
		h.publisher = p
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithVersion sets the version reported in JSON responses.
func WithVersion(version string) HandlerOption {
	return func(h *Handler) {
		h.version = version
	}
}

// NewHandler creates a new API handler. base holds the server-wide scan
// options; each request may override some of them.
func NewHandler(base *config.Config, store Store, scan ScanFunc, opts ...HandlerOption) *Handler {
	h := &Handler{
		base:      base,
		store:     store,
		scan:      scan,
		publisher: notify.Nop{},
		version:   "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// CreateScan handles POST /api/scans: it runs a scan, stores the report,
// publishes the completion event and returns the report.
func (h *Handler) CreateScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if _, err := model.NormalizeEntity(req.Entity); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cfg := req.apply(h.base)
	if err := cfg.ValidateOptions(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	scanReport, err := h.scan(ctx, cfg, req.Entity)
	if scanReport == nil {
		if err == nil {
			err = errors.New("scan produced no report")
		}
		_ = c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "scan failed"})
		return
	}
	if err != nil {
		// The report carries the error and whatever finished before it.
		h.logger.Warn("scan finished with error", "entity", scanReport.Entity, "error", err)
	}

	id, err := h.store.Save(ctx, scanReport)
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to store scan report"})
		return
	}

	if err := h.publisher.Publish(ctx, scanReport); err != nil {
		h.logger.Warn("failed to publish scan event", "scan_id", scanReport.ScanID, "error", err)
	}

	c.Header("Location", fmt.Sprintf("/api/scans/%d", id))
	c.Header("X-Scan-Record-ID", strconv.FormatInt(id, 10))
	c.JSON(http.StatusCreated, report.NewJSONReport(scanReport, h.version))
}

// ListScans handles GET /api/scans?entity=<name>.
func (h *Handler) ListScans(c *gin.Context) {
	entity := c.Query("entity")
	if entity == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "missing 'entity' parameter"})
		return
	}

	history, err := h.store.HistoryWithMetadata(c.Request.Context(), entity)
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load scan history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entity": entity,
		"count":  len(history),
		"scans":  history,
	})
}

// GetScan handles GET /api/scans/:id.
func (h *Handler) GetScan(c *gin.Context) {
	scanReport, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.NewJSONReport(scanReport, h.version))
}

// GetScanCSV handles GET /api/scans/:id/csv.
func (h *Handler) GetScanCSV(c *gin.Context) {
	scanReport, ok := h.lookup(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "samradar-"+scanReport.ScanID+".csv"))
	c.Status(http.StatusOK)
	if _, err := report.NewCSVWriter(c.Writer).Write(scanReport); err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// ListEntities handles GET /api/entities.
func (h *Handler) ListEntities(c *gin.Context) {
	entities, err := h.store.ListScannedEntities(c.Request.Context())
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list entities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

// lookup loads the report named by the :id parameter, which is either a
// numeric database ID or a scan ID. It writes the error response itself
// and reports whether a report was found.
func (h *Handler) lookup(c *gin.Context) (*model.ScanReport, bool) {
	param := c.Param("id")
	ctx := c.Request.Context()

	var (
		scanReport *model.ScanReport
		err        error
	)
	if id, convErr := strconv.ParseInt(param, 10, 64); convErr == nil {
		scanReport, err = h.store.GetByID(ctx, id)
	} else {
		scanReport, err = h.store.GetByScanID(ctx, param)
	}

	if err != nil {
		_ = c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load scan report"})
		return nil, false
	}
	if scanReport == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "scan not found"})
		return nil, false
	}
	return scanReport, true
}
