package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scratchkeep"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	SavesTotal    *prometheus.CounterVec
	SaveDuration  prometheus.Histogram
	SaveRecords   prometheus.Gauge
	SaveFileBytes prometheus.Gauge

	RestoresTotal     *prometheus.CounterVec
	RestoredDocuments prometheus.Counter
	RestoreDuration   prometheus.Histogram

	BackupUpdatesTotal *prometheus.CounterVec
	BackupsPrunedTotal prometheus.Counter

	AutosaveFiringsTotal *prometheus.CounterVec
	AutosaveErrorsTotal  prometheus.Counter
	AutosaveEnabled      prometheus.Gauge
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,

		SavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Save operations by result.",
		}, []string{"result"}),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Time spent in the save pipeline.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		SaveRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "save_records",
			Help:      "Records written by the last successful save.",
		}),
		SaveFileBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "save_file_bytes",
			Help:      "Size of the save file after the last successful save.",
		}),

		RestoresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restores_total",
			Help:      "Restore operations by result.",
		}, []string{"result"}),
		RestoredDocuments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restored_documents_total",
			Help:      "Documents applied by restores.",
		}),
		RestoreDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "restore_duration_seconds",
			Help:      "Time spent restoring a save file.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),

		BackupUpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_updates_total",
			Help:      "Backup copies by result.",
		}, []string{"result"}),
		BackupsPrunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_pruned_total",
			Help:      "Backup files removed by retention.",
		}),

		AutosaveFiringsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autosave_firings_total",
			Help:      "Autosave firings by trigger.",
		}, []string{"trigger"}),
		AutosaveErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autosave_errors_total",
			Help:      "Autosave firings that failed.",
		}),
		AutosaveEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "autosave_enabled",
			Help:      "1 while an autosave timer is active.",
		}),
	}

	reg.MustRegister(
		r.SavesTotal, r.SaveDuration, r.SaveRecords, r.SaveFileBytes,
		r.RestoresTotal, r.RestoredDocuments, r.RestoreDuration,
		r.BackupUpdatesTotal, r.BackupsPrunedTotal,
		r.AutosaveFiringsTotal, r.AutosaveErrorsTotal, r.AutosaveEnabled,
	)
	return r
}

var (
	global     *Registry
	globalOnce sync.Once
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler serves the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler serves this registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry for tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// RecordSave records one save attempt.
func (r *Registry) RecordSave(err error, seconds float64, records int, bytes int64) {
	if r == nil {
		return
	}
	r.SavesTotal.WithLabelValues(result(err)).Inc()
	r.SaveDuration.Observe(seconds)
	if err == nil {
		r.SaveRecords.Set(float64(records))
		r.SaveFileBytes.Set(float64(bytes))
	}
}

// RecordRestore records one restore attempt.
func (r *Registry) RecordRestore(err error, seconds float64, documents int) {
	if r == nil {
		return
	}
	r.RestoresTotal.WithLabelValues(result(err)).Inc()
	r.RestoreDuration.Observe(seconds)
	r.RestoredDocuments.Add(float64(documents))
}

// RecordBackup records one backup copy.
func (r *Registry) RecordBackup(err error) {
	if r == nil {
		return
	}
	r.BackupUpdatesTotal.WithLabelValues(result(err)).Inc()
}

// AddPruned counts backups removed by retention.
func (r *Registry) AddPruned(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.BackupsPrunedTotal.Add(float64(n))
}

// RecordAutosave records an autosave firing.
func (r *Registry) RecordAutosave(trigger string, err error) {
	if r == nil {
		return
	}
	r.AutosaveFiringsTotal.WithLabelValues(trigger).Inc()
	if err != nil {
		r.AutosaveErrorsTotal.Inc()
	}
}

// SetAutosaveEnabled reports whether a timer is active.
func (r *Registry) SetAutosaveEnabled(on bool) {
	if r == nil {
		return
	}
	if on {
		r.AutosaveEnabled.Set(1)
	} else {
		r.AutosaveEnabled.Set(0)
	}
}
