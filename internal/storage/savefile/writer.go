package savefile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yndnr/scratchkeep/internal/core/domain"
	"github.com/yndnr/scratchkeep/internal/storage/record"
	"github.com/yndnr/scratchkeep/internal/telemetry/logger"
)

// File layout constants.
const (
	TempSuffix      = ".new"
	DefaultFilePerm = 0600
	DefaultDirPerm  = 0700

	// restrictiveUmask is applied while the temp file is created.
	restrictiveUmask = 0077
)

// PreCommitHook runs against the fully written temp file before it is
// published. An error aborts the commit and leaves the target untouched.
type PreCommitHook func(ctx context.Context, tempPath string) error

// Config configures the writer.
type Config struct {
	Hooks  []PreCommitHook
	Logger *slog.Logger
}

// Writer commits record sets atomically.
type Writer struct {
	hooks  []PreCommitHook
	logger *slog.Logger

	// beforeRename runs between the hooks and the rename. Tests use it to
	// simulate a crash inside the commit window.
	beforeRename func()
}

// NewWriter creates a writer.
func NewWriter(cfg Config) *Writer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Writer{
		hooks:  cfg.Hooks,
		logger: cfg.Logger,
	}
}

// TempPath returns the sibling path a commit to target writes through.
func TempPath(target string) string {
	return target + TempSuffix
}

// Commit serializes records and atomically replaces target with them.
// It returns the names of the committed records.
func (w *Writer) Commit(ctx context.Context, records []record.Record, target string) ([]string, error) {
	if target == "" {
		return nil, fmt.Errorf("savefile: target path is required")
	}

	data, err := record.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("savefile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(target), DefaultDirPerm); err != nil {
		return nil, domain.IOError("mkdir", filepath.Dir(target), err)
	}

	log := logger.Tag(ctx, w.logger)
	temp := TempPath(target)
	published := false
	defer func() {
		if published {
			return
		}
		if err := os.Remove(temp); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove temporary save file", "path", temp, "error", err)
		}
	}()

	if err := writeRestricted(temp, data); err != nil {
		return nil, err
	}

	for _, hook := range w.hooks {
		if err := hook(ctx, temp); err != nil {
			return nil, fmt.Errorf("savefile: pre-commit hook: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("savefile: commit cancelled: %w", err)
	}
	if w.beforeRename != nil {
		w.beforeRename()
	}

	if err := os.Rename(temp, target); err != nil {
		return nil, domain.IOError("rename", target, err)
	}
	published = true

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}

	log.Debug("save file committed",
		"path", target,
		"records", len(records),
		"size_bytes", len(data))

	return names, nil
}

// writeRestricted writes data to path with owner-only permissions. The
// process umask is tightened for the duration of the write and restored
// afterwards whatever the outcome.
func writeRestricted(path string, data []byte) (err error) {
	restore := setUmask(restrictiveUmask)
	defer restore()

	// A temp file left by an interrupted commit may carry other permissions.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.IOError("remove stale", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, DefaultFilePerm)
	if err != nil {
		return domain.IOError("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = domain.IOError("close", path, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return domain.IOError("write", path, err)
	}
	if err := f.Sync(); err != nil {
		return domain.IOError("sync", path, err)
	}
	return nil
}
