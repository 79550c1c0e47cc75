package metric

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.SavesTotal == nil || r.RestoresTotal == nil || r.AutosaveFiringsTotal == nil {
		t.Error("metrics not initialised")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
	if Handler() == nil {
		t.Error("Handler() returned nil")
	}
}

func TestHandler_RuntimeMetrics(t *testing.T) {
	body := scrape(t, NewRegistry())

	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process metrics")
	}
}

func TestRecordSave(t *testing.T) {
	r := NewRegistry()

	r.RecordSave(nil, 0.01, 3, 120)
	r.RecordSave(errors.New("disk full"), 0.02, 0, 0)

	if got := testutil.ToFloat64(r.SavesTotal.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("ok saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.SavesTotal.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("failed saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.SaveRecords); got != 3 {
		t.Errorf("save_records = %v, want 3 (failures must not reset it)", got)
	}

	body := scrape(t, r)
	if !strings.Contains(body, "scratchkeep_save_duration_seconds_count 2") {
		t.Error("expected scratchkeep_save_duration_seconds_count 2")
	}
	if !strings.Contains(body, "scratchkeep_save_file_bytes 120") {
		t.Error("expected scratchkeep_save_file_bytes 120")
	}
}

func TestRecordRestore(t *testing.T) {
	r := NewRegistry()
	r.RecordRestore(nil, 0.001, 2)
	r.RecordRestore(nil, 0.001, 3)

	if got := testutil.ToFloat64(r.RestoredDocuments); got != 5 {
		t.Errorf("restored documents = %v, want 5", got)
	}
}

func TestBackupMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordBackup(nil)
	r.RecordBackup(errors.New("x"))
	r.AddPruned(2)
	r.AddPruned(0)

	body := scrape(t, r)
	if !strings.Contains(body, `scratchkeep_backup_updates_total{result="ok"} 1`) {
		t.Error(`expected scratchkeep_backup_updates_total{result="ok"} 1`)
	}
	if !strings.Contains(body, "scratchkeep_backups_pruned_total 2") {
		t.Error("expected scratchkeep_backups_pruned_total 2")
	}
}

func TestAutosaveMetrics(t *testing.T) {
	r := NewRegistry()
	r.SetAutosaveEnabled(true)
	r.RecordAutosave("idle", nil)
	r.RecordAutosave("idle", errors.New("x"))
	r.RecordAutosave("shutdown", nil)

	if got := testutil.ToFloat64(r.AutosaveEnabled); got != 1 {
		t.Errorf("autosave_enabled = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.AutosaveFiringsTotal.WithLabelValues("idle")); got != 2 {
		t.Errorf("idle firings = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.AutosaveErrorsTotal); got != 1 {
		t.Errorf("autosave errors = %v, want 1", got)
	}

	r.SetAutosaveEnabled(false)
	if got := testutil.ToFloat64(r.AutosaveEnabled); got != 0 {
		t.Errorf("autosave_enabled = %v, want 0", got)
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	r.RecordSave(nil, 0, 0, 0)
	r.RecordRestore(nil, 0, 0)
	r.RecordBackup(nil)
	r.AddPruned(1)
	r.RecordAutosave("interval", nil)
	r.SetAutosaveEnabled(true)
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordSave(nil, 0.001, 1, 10)
				r.RecordAutosave("interval", nil)
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(r.SavesTotal.WithLabelValues(ResultOK)); got != 1000 {
		t.Errorf("ok saves = %v, want 1000", got)
	}
}
