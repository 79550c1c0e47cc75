package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/scratchkeep/internal/core/domain"
	"github.com/yndnr/scratchkeep/internal/storage/backup"
	"github.com/yndnr/scratchkeep/internal/storage/record"
	"github.com/yndnr/scratchkeep/internal/storage/restore"
	"github.com/yndnr/scratchkeep/internal/storage/savefile"
	"github.com/yndnr/scratchkeep/internal/telemetry/logger"
	"github.com/yndnr/scratchkeep/internal/telemetry/metric"
)

// ErrBackupsDisabled is returned by backup operations when no backup
// directory is configured.
var ErrBackupsDisabled = errors.New("storage: backups are disabled")

// Config configures the storage engine.
type Config struct {
	// Host supplies and receives documents.
	Host domain.Host

	// SavePath is the default save file, used when Save or Restore is
	// given an empty path.
	SavePath string

	// Capture selects the optional record fields written on save.
	Capture record.Options

	// Hooks run against the temp file before each commit.
	Hooks []savefile.PreCommitHook

	// BackupDir enables backups of the default save file. Empty disables
	// them.
	BackupDir    string
	BackupLayout string

	// Retention prunes the backup directory after each backup. Nil keeps
	// every backup.
	Retention backup.Policy

	// Clock drives backup generations. Defaults to time.Now.
	Clock func() time.Time

	Metrics *metric.Registry
	Logger  *slog.Logger
}

// SaveInfo describes a completed save.
type SaveInfo struct {
	ID      string   `json:"id" yaml:"id"`
	Path    string   `json:"path" yaml:"path"`
	Records []string `json:"records" yaml:"records"`
	Bytes   int64    `json:"bytes" yaml:"bytes"`
	Backup  string   `json:"backup,omitempty" yaml:"backup,omitempty"`
	Pruned  []string `json:"pruned,omitempty" yaml:"pruned,omitempty"`
}

// Engine is the persistence facade.
type Engine struct {
	host      domain.Host
	savePath  string
	capture   record.Options
	retention backup.Policy

	writer   *savefile.Writer
	restorer *restore.Restorer
	rotator  *backup.Rotator

	metrics *metric.Registry
	logger  *slog.Logger

	mu           sync.Mutex
	documentMode atomic.Bool
}

// New creates an engine. A configured backup layout is validated here.
func New(cfg Config) (*Engine, error) {
	if cfg.Host == nil {
		return nil, fmt.Errorf("storage: host is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &Engine{
		host:      cfg.Host,
		savePath:  cfg.SavePath,
		capture:   cfg.Capture,
		retention: cfg.Retention,
		writer: savefile.NewWriter(savefile.Config{
			Hooks:  cfg.Hooks,
			Logger: cfg.Logger,
		}),
		restorer: restore.New(cfg.Host, cfg.Logger),
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}

	if cfg.BackupDir != "" {
		rot, err := backup.New(backup.Config{
			Dir:    cfg.BackupDir,
			Layout: cfg.BackupLayout,
			Clock:  cfg.Clock,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		e.rotator = rot
	}
	return e, nil
}

// SavePath returns the default save file.
func (e *Engine) SavePath() string {
	return e.savePath
}

// BackupsEnabled reports whether a backup directory is configured.
func (e *Engine) BackupsEnabled() bool {
	return e.rotator != nil
}

func (e *Engine) resolve(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if e.savePath == "" {
		return "", fmt.Errorf("storage: no save path configured")
	}
	return e.savePath, nil
}

// Save writes every persistable document to path, or to the default save
// file when path is empty.
//
// Saves to the default file also update the current backup generation and
// apply the retention policy. If that step fails the save itself has
// already been committed: the returned SaveInfo is valid alongside the
// error.
func (e *Engine) Save(ctx context.Context, path string) (*SaveInfo, error) {
	target, err := e.resolve(path)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	info := &SaveInfo{ID: ulid.Make().String(), Path: target}
	ctx = logger.WithOperationID(ctx, info.ID)
	log := logger.Tag(ctx, e.logger)
	start := time.Now()

	records := capture(e.host, e.capture)
	info.Records, err = e.writer.Commit(ctx, records, target)
	if err != nil {
		e.metrics.RecordSave(err, time.Since(start).Seconds(), 0, 0)
		log.Error("save failed", "path", target, "error", err)
		return nil, err
	}
	e.host.MarkNotModified(info.Records)

	if st, statErr := os.Stat(target); statErr == nil {
		info.Bytes = st.Size()
	}
	e.metrics.RecordSave(nil, time.Since(start).Seconds(), len(info.Records), info.Bytes)
	log.Info("save committed",
		"path", target,
		"documents", len(info.Records),
		"bytes", info.Bytes,
		"elapsed", time.Since(start))

	if e.rotator == nil || target != e.savePath {
		return info, nil
	}

	info.Backup, err = e.rotator.Update(ctx, target)
	e.metrics.RecordBackup(err)
	if err != nil {
		log.Error("backup failed", "dir", e.rotator.Dir(), "error", err)
		return info, fmt.Errorf("storage: backup: %w", err)
	}

	info.Pruned, err = e.cleanup(ctx)
	if err != nil {
		log.Error("backup cleanup failed", "dir", e.rotator.Dir(), "error", err)
		return info, fmt.Errorf("storage: backup cleanup: %w", err)
	}
	return info, nil
}

// capture encodes every persistable document in host order.
func capture(host domain.Host, opts record.Options) []record.Record {
	var records []record.Record
	for _, doc := range host.Documents() {
		if host.Persistable(doc) {
			records = append(records, record.Encode(doc, opts))
		}
	}
	return records
}

// Restore applies the save file at path, or the default save file when
// path is empty. A missing file returns an error matching
// domain.ErrNotFound; callers doing a best-effort startup restore check
// it with domain.IsNotFound.
func (e *Engine) Restore(ctx context.Context, path string) (*restore.Result, error) {
	source, err := e.resolve(path)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id := ulid.Make().String()
	ctx = logger.WithOperationID(ctx, id)
	log := logger.Tag(ctx, e.logger)
	start := time.Now()

	res, err := e.restorer.Restore(ctx, source)
	if err != nil {
		e.metrics.RecordRestore(err, time.Since(start).Seconds(), 0)
		if domain.IsNotFound(err) {
			log.Debug("nothing to restore", "path", source)
		} else {
			log.Error("restore failed", "path", source, "error", err)
		}
		return res, err
	}

	e.metrics.RecordRestore(nil, time.Since(start).Seconds(), len(res.Names))
	log.Info("save file restored",
		"path", source,
		"documents", len(res.Names),
		"elapsed", time.Since(start))
	return res, nil
}

// NewBackupGeneration starts a new backup generation: the next save to the
// default file writes a new backup instead of overwriting the current one.
func (e *Engine) NewBackupGeneration() (time.Time, error) {
	if e.rotator == nil {
		return time.Time{}, ErrBackupsDisabled
	}
	gen := e.rotator.NewGeneration()
	e.logger.Info("backup generation started", "name", gen.Format(e.rotator.Layout()))
	return gen, nil
}

// Snapshot starts a new backup generation and copies the current default
// save file into it without saving.
func (e *Engine) Snapshot(ctx context.Context) (string, error) {
	if e.rotator == nil {
		return "", ErrBackupsDisabled
	}
	source, err := e.resolve("")
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rotator.NewGeneration()
	path, err := e.rotator.Update(ctx, source)
	e.metrics.RecordBackup(err)
	if err != nil {
		return "", err
	}
	e.logger.Info("backup snapshot written", "path", path)
	return path, nil
}

// CleanupBackups applies the retention policy to the backup directory.
// Without a policy nothing is removed.
func (e *Engine) CleanupBackups(ctx context.Context) ([]string, error) {
	if e.rotator == nil {
		return nil, ErrBackupsDisabled
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cleanup(ctx)
}

// PruneBackups applies policy instead of the configured retention.
func (e *Engine) PruneBackups(ctx context.Context, policy backup.Policy) ([]string, error) {
	if e.rotator == nil {
		return nil, ErrBackupsDisabled
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prune(ctx, policy)
}

func (e *Engine) cleanup(ctx context.Context) ([]string, error) {
	if e.retention == nil {
		return nil, nil
	}
	return e.prune(ctx, e.retention)
}

func (e *Engine) prune(ctx context.Context, policy backup.Policy) ([]string, error) {
	removed, err := e.rotator.Cleanup(ctx, policy)
	e.metrics.AddPruned(len(removed))
	if len(removed) > 0 {
		e.logger.Info("backups pruned", "dir", e.rotator.Dir(), "removed", len(removed))
	}
	return removed, err
}

// Backups lists the backup directory, newest first.
func (e *Engine) Backups() ([]backup.Entry, error) {
	if e.rotator == nil {
		return nil, ErrBackupsDisabled
	}
	return e.rotator.List()
}

// Backup returns the rotator, or nil when backups are disabled.
func (e *Engine) Backup() *backup.Rotator {
	return e.rotator
}

// EnableDocumentMode makes HandleSave route saves of persistable
// documents to Save.
func (e *Engine) EnableDocumentMode() {
	if !e.documentMode.Swap(true) {
		e.logger.Debug("document mode enabled")
	}
}

// DisableDocumentMode turns document mode off.
func (e *Engine) DisableDocumentMode() {
	if e.documentMode.Swap(false) {
		e.logger.Debug("document mode disabled")
	}
}

// DocumentMode reports whether document mode is on.
func (e *Engine) DocumentMode() bool {
	return e.documentMode.Load()
}

// HandleSave is the host's hook for a generic save of the named document.
// With document mode on and the document persistable, it runs Save against
// the default file and reports handled. Otherwise the host should save the
// document its own way.
func (e *Engine) HandleSave(ctx context.Context, name string) (bool, error) {
	if !e.DocumentMode() {
		return false, nil
	}
	for _, doc := range e.host.Documents() {
		if doc.Name() != name {
			continue
		}
		if !e.host.Persistable(doc) {
			return false, nil
		}
		_, err := e.Save(ctx, "")
		return true, err
	}
	return false, nil
}
