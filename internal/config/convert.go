package config

import (
	"time"

	"github.com/yndnr/scratchkeep/internal/autosave"
	"github.com/yndnr/scratchkeep/internal/storage/backup"
	"github.com/yndnr/scratchkeep/internal/storage/record"
)

// CaptureOptions returns the record options the save section selects.
func (c *Config) CaptureOptions() record.Options {
	return record.Options{
		Mode:      c.Save.Capture.Mode,
		Cursor:    c.Save.Capture.Cursor,
		Narrowing: c.Save.Capture.Narrowing,
		Formatted: c.Save.Capture.Formatted,
		Legacy:    c.Save.Legacy,
	}
}

// AutosaveSpec parses the autosave spec.
func (c *Config) AutosaveSpec() (autosave.Spec, error) {
	return autosave.ParseSpec(c.Autosave.Spec)
}

// RetentionPolicy assembles the backup retention policy. A backup is
// removed when any configured limit selects it. Nil means keep everything.
func (c *Config) RetentionPolicy(now func() time.Time) backup.Policy {
	var policies []backup.Policy
	if c.Backup.KeepCount > 0 {
		policies = append(policies, backup.KeepNewest(c.Backup.KeepCount))
	}
	if c.Backup.KeepFor > 0 {
		policies = append(policies, backup.KeepNewerThan(c.Backup.KeepFor, c.Backup.Layout, now))
	}

	switch len(policies) {
	case 0:
		return nil
	case 1:
		return policies[0]
	default:
		return backup.Chain(policies...)
	}
}
