package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/samradar/internal/database"
	"github.com/nao1215/samradar/internal/model"
)

func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	if cmd.Use != "compare [entity]" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}

	flagsWithShort := map[string]string{
		"list":          "l",
		"list-entities": "L",
		"with-scan-id":  "i",
		"since":         "s",
		"json":          "j",
		"markdown":      "m",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}
	if cmd.Flags().Lookup("db-dir") == nil {
		t.Error("expected db-dir flag")
	}
}

// seedHistory stores two scans of Acme Holdings: an older one with a low
// risk result and a newer one that adds a high risk result.
func seedHistory(t *testing.T) (dir string, previousID int64) {
	t.Helper()

	dir = t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	lowResult := model.NewResult(model.Hit{
		Source: "Bing",
		Title:  "Acme Holdings opens new office",
		Link:   "https://news.example/office",
	}, model.RiskLow)
	highResult := model.NewResult(model.Hit{
		Source: "DuckDuckGo",
		Title:  "Acme Holdings charged with fraud",
		Link:   "https://news.example/fraud",
	}, model.RiskHigh)

	previous := model.NewScanReport("Acme Holdings")
	previous.DateScanned = time.Now().Add(-48 * time.Hour)
	previous.Results = []model.Result{lowResult}

	current := model.NewScanReport("Acme Holdings")
	current.Results = []model.Result{highResult, lowResult}

	ctx := context.Background()
	if previousID, err = db.Save(ctx, previous); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if _, err := db.Save(ctx, current); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	return dir, previousID
}

// executeCompare runs the compare command and returns its output.
func executeCompare(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewCompareCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCompareCmd(t *testing.T) {
	t.Parallel()

	t.Run("text comparison of the latest two scans", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		out, err := executeCompare(t, "--db-dir", dir, "Acme Holdings")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, want := range []string{
			"Scan Comparison: Acme Holdings",
			"WORSENED",
			"New Results (1):",
			"[+] [High] DuckDuckGo: Acme Holdings charged with fraud",
			"Unchanged: 1 results",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("entity lookup ignores case", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		if _, err := executeCompare(t, "--db-dir", dir, "acme holdings"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("json comparison decodes into a scan diff", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		out, err := executeCompare(t, "--db-dir", dir, "--json", "Acme Holdings")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var diff model.ScanDiff
		if err := json.Unmarshal([]byte(out), &diff); err != nil {
			t.Fatalf("failed to decode JSON: %v", err)
		}
		if diff.Direction != model.RiskDirectionWorsened {
			t.Errorf("expected worsened, got %q", diff.Direction)
		}
		if len(diff.NewResults) != 1 || diff.UnchangedCount != 1 {
			t.Errorf("expected 1 new and 1 unchanged, got %d/%d", len(diff.NewResults), diff.UnchangedCount)
		}
	})

	t.Run("markdown comparison", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		out, err := executeCompare(t, "--db-dir", dir, "-m", "Acme Holdings")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "# Scan Comparison: Acme Holdings") {
			t.Errorf("expected markdown heading, got:\n%s", out)
		}
		if !strings.Contains(out, "| High | 0 | 1 | +1 |") {
			t.Errorf("expected high risk delta row, got:\n%s", out)
		}
	})

	t.Run("with-scan-id compares against that scan", func(t *testing.T) {
		t.Parallel()

		dir, previousID := seedHistory(t)
		out, err := executeCompare(t, "--db-dir", dir, "-i", strconv.FormatInt(previousID, 10), "Acme Holdings")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "New Results (1):") {
			t.Errorf("expected one new result, got:\n%s", out)
		}
	})

	t.Run("unknown scan id is an error", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		_, err := executeCompare(t, "--db-dir", dir, "-i", "999", "Acme Holdings")
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("since before both scans finds the older one", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		since := time.Now().Add(-72 * time.Hour).Format("2006-01-02")
		if _, err := executeCompare(t, "--db-dir", dir, "-s", since, "Acme Holdings"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid since date is an error", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		_, err := executeCompare(t, "--db-dir", dir, "-s", "yesterday", "Acme Holdings")
		if err == nil || !strings.Contains(err.Error(), "invalid date format") {
			t.Errorf("expected date format error, got %v", err)
		}
	})

	t.Run("single scan is not enough", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := database.Open(dir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.Save(context.Background(), model.NewScanReport("Globex")); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		db.Close()

		_, err = executeCompare(t, "--db-dir", dir, "Globex")
		if err == nil || !strings.Contains(err.Error(), "at least 2 scans") {
			t.Errorf("expected at least 2 scans error, got %v", err)
		}
	})

	t.Run("entity is required", func(t *testing.T) {
		t.Parallel()

		if _, err := executeCompare(t, "--db-dir", t.TempDir()); err == nil {
			t.Error("expected error without entity")
		}
	})

	t.Run("json and markdown conflict", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		if _, err := executeCompare(t, "--db-dir", dir, "-j", "-m", "Acme Holdings"); err == nil {
			t.Error("expected conflicting format error")
		}
	})

	t.Run("list shows scan history", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		out, err := executeCompare(t, "--db-dir", dir, "--list", "Acme Holdings")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "(2 scans)") {
			t.Errorf("expected two scans, got:\n%s", out)
		}
		if !strings.Contains(out, "H:1 L:1") {
			t.Errorf("expected risk summary of latest scan, got:\n%s", out)
		}
	})

	t.Run("list-entities shows screened entities", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		out, err := executeCompare(t, "--db-dir", dir, "-L")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Screened entities (1):") || !strings.Contains(out, "Acme Holdings") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("list-entities on an empty database", func(t *testing.T) {
		t.Parallel()

		out, err := executeCompare(t, "--db-dir", t.TempDir(), "-L")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No screened entities found") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})
}

func TestFormatRiskSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		summary  model.RiskSummary
		expected string
	}{
		{name: "empty summary", summary: model.RiskSummary{}, expected: noResultsMessage},
		{name: "all levels", summary: model.RiskSummary{Sanctions: 1, High: 2, Medium: 3, Low: 4}, expected: "S:1 H:2 M:3 L:4"},
		{name: "zero counts are omitted", summary: model.RiskSummary{High: 1, Low: 2}, expected: "H:1 L:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatRiskSummary(tt.summary); got != tt.expected {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := map[int]string{3: "+3", 0: "0", -2: "-2"}
	for delta, expected := range tests {
		if got := formatDelta(delta); got != expected {
			t.Errorf("formatDelta(%d) = %q, expected %q", delta, got, expected)
		}
	}
}

func TestFormatRiskDirection(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		model.RiskDirectionImproved:  "IMPROVED (risk decreased)",
		model.RiskDirectionWorsened:  "WORSENED (risk increased)",
		model.RiskDirectionUnchanged: "UNCHANGED",
	}
	for direction, expected := range tests {
		if got := formatRiskDirection(direction); got != expected {
			t.Errorf("formatRiskDirection(%q) = %q, expected %q", direction, got, expected)
		}
	}
}
