package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/samradar/internal/config"
	"github.com/nao1215/samradar/internal/database"
	"github.com/nao1215/samradar/internal/model"
	"github.com/nao1215/samradar/internal/report"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// recordingPublisher remembers published scan IDs.
type recordingPublisher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, r *model.ScanReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, r.ScanID)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ids...)
}

// fakeScan returns a ScanFunc producing one high-risk result and
// remembering the configuration it was called with.
func fakeScan(seen *config.Config) ScanFunc {
	return func(_ context.Context, cfg *config.Config, entity string) (*model.ScanReport, error) {
		*seen = *cfg
		r := model.NewScanReport(strings.TrimSpace(entity))
		r.Aliases = []string{r.Entity}
		r.Results = []model.Result{
			model.NewResult(model.Hit{
				Source:  "Bing",
				Title:   r.Entity + " charged with fraud",
				Summary: "Court filing",
				Link:    "https://example.com/fraud",
			}, model.RiskHigh),
		}
		return r, nil
	}
}

type testServer struct {
	router    *gin.Engine
	db        *database.ScanDB
	publisher *recordingPublisher
	seen      *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := &recordingPublisher{}
	seen := &config.Config{}
	h := NewHandler(config.NewConfig(), db, fakeScan(seen),
		WithPublisher(pub),
		WithLogger(logger),
		WithVersion("test"),
	)
	return &testServer{
		router:    NewServer(h, logger),
		db:        db,
		publisher: pub,
		seen:      seen,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// TestHealthCheck tests GET /health.
func TestHealthCheck(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("unexpected body %v", body)
	}
}

// TestCreateScan tests POST /api/scans.
func TestCreateScan(t *testing.T) {
	t.Parallel()

	t.Run("runs, stores and publishes a scan", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/scans", `{"entity":"  Acme  "}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var got report.JSONReport
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Report.Entity != "Acme" {
			t.Errorf("expected trimmed entity, got %q", got.Report.Entity)
		}
		if got.Summary.High != 1 {
			t.Errorf("expected 1 high result, got %d", got.Summary.High)
		}
		if rec.Header().Get("Location") == "" {
			t.Error("expected Location header")
		}

		stored, err := s.db.GetByScanID(context.Background(), got.Report.ScanID)
		if err != nil || stored == nil {
			t.Fatalf("expected stored report, got %v, %v", stored, err)
		}
		if ids := s.publisher.published(); len(ids) != 1 || ids[0] != got.Report.ScanID {
			t.Errorf("expected one published event, got %v", ids)
		}
	})

	t.Run("request options override server defaults", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)
		body := `{"entity":"Acme","per_source_limit":3,"use_newsdata":false,"use_alias_discovery":true,"domain_priority":["reuters.com"]}`
		rec := s.do(t, http.MethodPost, "/api/scans", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		if s.seen.PerSourceLimit != 3 {
			t.Errorf("expected per-source limit 3, got %d", s.seen.PerSourceLimit)
		}
		if s.seen.UseNewsData {
			t.Error("expected NewsData disabled")
		}
		if !s.seen.UseAliasDiscovery {
			t.Error("expected alias discovery enabled")
		}
		if len(s.seen.DomainPriority) != 1 || s.seen.DomainPriority[0] != "reuters.com" {
			t.Errorf("unexpected domain priority %v", s.seen.DomainPriority)
		}
		if s.seen.MaxTotal != config.DefaultMaxTotal {
			t.Errorf("expected default max total, got %d", s.seen.MaxTotal)
		}
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)
		tests := []struct {
			name string
			body string
		}{
			{name: "missing entity", body: `{}`},
			{name: "blank entity", body: `{"entity":"   "}`},
			{name: "malformed body", body: `{"entity":`},
			{name: "per-source limit out of range", body: `{"entity":"Acme","per_source_limit":50}`},
		}
		for _, tt := range tests {
			rec := s.do(t, http.MethodPost, "/api/scans", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", tt.name, rec.Code)
			}
		}
		if ids := s.publisher.published(); len(ids) != 0 {
			t.Errorf("expected nothing published, got %v", ids)
		}
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t)
		s.publisher.err = errors.New("nats down")
		rec := s.do(t, http.MethodPost, "/api/scans", `{"entity":"Acme"}`)
		if rec.Code != http.StatusCreated {
			t.Errorf("expected 201, got %d", rec.Code)
		}
	})
}

// TestCreateScanWithoutReport tests a scan function that fails outright.
func TestCreateScanWithoutReport(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	failing := func(context.Context, *config.Config, string) (*model.ScanReport, error) {
		return nil, errors.New("boom")
	}
	h := NewHandler(config.NewConfig(), db, failing, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router := NewServer(h, slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodPost, "/api/scans", bytes.NewBufferString(`{"entity":"Acme"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

// TestStoredScans tests the read endpoints.
func TestStoredScans(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/scans", `{"entity":"Acme"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	recordID := rec.Header().Get("X-Scan-Record-ID")
	var created report.JSONReport
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	t.Run("lists history for an entity", func(t *testing.T) {
		t.Parallel()

		rec := s.do(t, http.MethodGet, "/api/scans?entity=acme", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Count int                           `json:"count"`
			Scans []database.ScanReportMetadata `json:"scans"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body.Count != 1 || body.Scans[0].ScanID != created.Report.ScanID {
			t.Errorf("unexpected history %+v", body)
		}
	})

	t.Run("history requires an entity", func(t *testing.T) {
		t.Parallel()

		if rec := s.do(t, http.MethodGet, "/api/scans", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("gets a scan by record ID and scan ID", func(t *testing.T) {
		t.Parallel()

		for _, id := range []string{recordID, created.Report.ScanID} {
			rec := s.do(t, http.MethodGet, "/api/scans/"+id, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("GET %s: expected 200, got %d", id, rec.Code)
			}
			var got report.JSONReport
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if got.Report.ScanID != created.Report.ScanID {
				t.Errorf("GET %s: expected %q, got %q", id, created.Report.ScanID, got.Report.ScanID)
			}
		}
	})

	t.Run("unknown scan is 404", func(t *testing.T) {
		t.Parallel()

		for _, id := range []string{"9999", "no-such-scan"} {
			if rec := s.do(t, http.MethodGet, "/api/scans/"+id, ""); rec.Code != http.StatusNotFound {
				t.Errorf("GET %s: expected 404, got %d", id, rec.Code)
			}
		}
	})

	t.Run("exports CSV", func(t *testing.T) {
		t.Parallel()

		rec := s.do(t, http.MethodGet, "/api/scans/"+recordID+"/csv", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("expected text/csv, got %q", ct)
		}
		records, err := csv.NewReader(rec.Body).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 2 || records[1][3] != "High" {
			t.Errorf("unexpected CSV %v", records)
		}
	})

	t.Run("lists scanned entities", func(t *testing.T) {
		t.Parallel()

		rec := s.do(t, http.MethodGet, "/api/entities", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Entities []string `json:"entities"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(body.Entities) != 1 || body.Entities[0] != "Acme" {
			t.Errorf("expected [Acme], got %v", body.Entities)
		}
	})
}

// TestScanRequestApply tests that applying a request never mutates the base.
func TestScanRequestApply(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	base.DomainPriority = []string{"ft.com"}
	limit := 2
	req := &ScanRequest{Entity: "Acme", PerSourceLimit: &limit, DomainPriority: []string{"bbc.co.uk"}}

	got := req.apply(base)
	if got.PerSourceLimit != 2 || got.DomainPriority[0] != "bbc.co.uk" {
		t.Errorf("unexpected applied config %+v", got)
	}
	if base.PerSourceLimit != config.DefaultPerSourceLimit || base.DomainPriority[0] != "ft.com" {
		t.Error("expected base config to stay unchanged")
	}
}
