package restore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yndnr/scratchkeep/internal/core/domain"
	"github.com/yndnr/scratchkeep/internal/storage/record"
	"github.com/yndnr/scratchkeep/internal/storage/savefile"
	"github.com/yndnr/scratchkeep/internal/telemetry/logger"
)

// Result describes a completed restore.
type Result struct {
	Path     string
	Names    []string
	Versions map[int]int
}

// Restorer applies save files to a host.
type Restorer struct {
	host   domain.Host
	logger *slog.Logger
}

// New creates a restorer bound to host.
func New(host domain.Host, logger *slog.Logger) *Restorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Restorer{host: host, logger: logger}
}

// Restore reads the save file at path and applies every record to the
// host. A missing file returns an error matching domain.ErrNotFound.
func (r *Restorer) Restore(ctx context.Context, path string) (*Result, error) {
	records, info, err := savefile.Load(path)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path:     path,
		Names:    make([]string, 0, len(records)),
		Versions: info.Versions,
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("restore: %w", err)
		}
		if err := r.Apply(rec); err != nil {
			return res, err
		}
		res.Names = append(res.Names, rec.Name)
	}

	logger.Tag(ctx, r.logger).Debug("save file restored",
		"path", path,
		"documents", len(res.Names))
	return res, nil
}

// Apply writes one record into the host, creating the document if needed.
// Fields are applied as content, mode, cursor, narrowing, mark-active;
// absent fields are skipped.
func (r *Restorer) Apply(rec record.Record) error {
	ed, err := r.host.Open(rec.Name)
	if err != nil {
		return fmt.Errorf("restore: open %q: %w", rec.Name, err)
	}

	if err := ed.ReplaceContent(rec.Content); err != nil {
		return fmt.Errorf("restore: %q content: %w", rec.Name, err)
	}
	if rec.Mode != nil {
		if err := ed.SetMode(*rec.Mode); err != nil {
			return fmt.Errorf("restore: %q mode: %w", rec.Name, err)
		}
	}
	if rec.Cursor != nil {
		if err := ed.SetCursor(*rec.Cursor); err != nil {
			return fmt.Errorf("restore: %q cursor: %w", rec.Name, err)
		}
	}
	if rec.Narrowing != nil {
		if err := ed.SetNarrowing(*rec.Narrowing); err != nil {
			return fmt.Errorf("restore: %q narrowing: %w", rec.Name, err)
		}
	}
	if rec.MarkActive != nil {
		if err := ed.SetMarkActive(*rec.MarkActive); err != nil {
			return fmt.Errorf("restore: %q mark_active: %w", rec.Name, err)
		}
	}
	return nil
}
