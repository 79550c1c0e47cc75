package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yndnr/scratchkeep/internal/core/domain"
	"github.com/yndnr/scratchkeep/internal/storage/savefile"
)

// DirPerm is the mode a missing backup directory is created with.
const DirPerm = 0700

// tempPrefix marks in-progress copies; List skips them.
const tempPrefix = "."

// Config configures a Rotator.
type Config struct {
	Dir    string
	Layout string

	// Clock returns the current time. Defaults to time.Now.
	Clock  func() time.Time
	Logger *slog.Logger
}

// Rotator copies committed save files into the backup directory and prunes
// it.
type Rotator struct {
	dir    string
	layout string
	clock  func() time.Time
	logger *slog.Logger

	mu         sync.Mutex
	generation time.Time
}

// Entry describes one backup file.
type Entry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Time     time.Time `json:"time"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
	Checksum string    `json:"checksum"`
}

// New creates a rotator. The layout is validated and the generation
// marker starts at the current clock time.
func New(cfg Config) (*Rotator, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup: dir is required")
	}
	if cfg.Layout == "" {
		cfg.Layout = DefaultLayout
	}
	if err := ValidateLayout(cfg.Layout); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Rotator{
		dir:        cfg.Dir,
		layout:     cfg.Layout,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		generation: cfg.Clock(),
	}, nil
}

// Dir returns the backup directory.
func (r *Rotator) Dir() string { return r.dir }

// Layout returns the name layout.
func (r *Rotator) Layout() string { return r.layout }

// Generation returns the current generation marker.
func (r *Rotator) Generation() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// NewGeneration moves the marker to now. Later updates write a new backup
// name instead of overwriting the previous one.
func (r *Rotator) NewGeneration() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation = r.clock()
	r.logger.Debug("backup generation started", "generation", r.generation.Format(r.layout))
	return r.generation
}

// Name returns the backup name for the current generation.
func (r *Rotator) Name() string {
	return r.Generation().Format(r.layout)
}

// Update copies the save file at savePath to the current generation's
// backup, keeping its mode and modification time.
func (r *Rotator) Update(ctx context.Context, savePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	if err := os.MkdirAll(r.dir, DirPerm); err != nil {
		return "", domain.IOError("mkdir", r.dir, err)
	}

	name := r.Name()
	dst := filepath.Join(r.dir, name)
	if err := copyFile(savePath, dst); err != nil {
		return "", err
	}

	r.logger.Debug("backup updated", "path", dst)
	return dst, nil
}

// Cleanup hands the raw directory listing to policy and removes exactly
// the names it returns. A missing directory is treated as empty. Policy
// errors are returned unchanged.
func (r *Rotator) Cleanup(ctx context.Context, policy Policy) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}

	names, err := r.names()
	if err != nil {
		return nil, err
	}

	doomed, err := policy(names)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(doomed))
	for _, name := range doomed {
		if filepath.Base(name) != name || name == "." || name == ".." {
			return removed, fmt.Errorf("backup: policy returned invalid name %q", name)
		}
		p := filepath.Join(r.dir, name)
		if err := os.Remove(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, domain.IOError("remove", p, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// List returns the backups in the directory, newest first. In-progress
// copies and anything that is not a regular file are skipped.
func (r *Rotator) List() ([]Entry, error) {
	names, err := r.names()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, tempPrefix) {
			continue
		}
		p := filepath.Join(r.dir, name)
		st, err := os.Lstat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, domain.IOError("stat", p, err)
		}
		if !st.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, domain.IOError("read", p, err)
		}
		e := Entry{
			Name:     name,
			Path:     p,
			Size:     st.Size(),
			ModTime:  st.ModTime(),
			Checksum: savefile.Checksum(data),
		}
		if t, err := time.ParseInLocation(r.layout, name, time.Local); err == nil {
			e.Time = t
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name > entries[j].Name })
	return entries, nil
}

func (r *Rotator) names() ([]string, error) {
	d, err := os.Open(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.IOError("open", r.dir, err)
	}
	defer d.Close()

	names, err := d.Readdirnames(-1)
	if err != nil {
		return nil, domain.IOError("list", r.dir, err)
	}
	return names, nil
}

// copyFile copies src to dst through a temp file in dst's directory.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrNotFound.WithDetails(src)
		}
		return domain.IOError("open", src, err)
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return domain.IOError("stat", src, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), tempPrefix+filepath.Base(dst)+".*")
	if err != nil {
		return domain.IOError("create", dst, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return domain.IOError("copy", src, err)
	}
	if err = tmp.Sync(); err != nil {
		return domain.IOError("sync", tmpPath, err)
	}
	if err = tmp.Chmod(st.Mode().Perm()); err != nil {
		return domain.IOError("chmod", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return domain.IOError("close", tmpPath, err)
	}
	if err = os.Chtimes(tmpPath, st.ModTime(), st.ModTime()); err != nil {
		return domain.IOError("chtimes", tmpPath, err)
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return domain.IOError("rename", dst, err)
	}
	return nil
}
