package config

import (
	"os"
	"path/filepath"

	"github.com/yndnr/scratchkeep/internal/storage/backup"
)

// Default configuration values.
const (
	DefaultFileMode     = "0600"
	DefaultAutosaveSpec = "off"
	DefaultBackupLayout = backup.DefaultLayout

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	appDir = ".scratchkeep"
)

// DefaultConfigPath returns ~/.scratchkeep/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), appDir, "config.yaml")
}

// DefaultSavePath returns ~/.scratchkeep/scratch.json.
func DefaultSavePath() string {
	return filepath.Join(homeDir(), appDir, "scratch.json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Save: SaveSection{
			Path:     DefaultSavePath(),
			FileMode: DefaultFileMode,
			Include:  []string{},
			Capture: CaptureSection{
				Mode:      true,
				Cursor:    true,
				Narrowing: true,
			},
		},
		Autosave: AutosaveSection{
			Spec: DefaultAutosaveSpec,
		},
		Backup: BackupSection{
			Layout: DefaultBackupLayout,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultMap returns the defaults as flat koanf keys. Every key the
// environment may set must appear here.
func DefaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"save.path":              d.Save.Path,
		"save.file_mode":         d.Save.FileMode,
		"save.include":           d.Save.Include,
		"save.legacy":            d.Save.Legacy,
		"save.capture.mode":      d.Save.Capture.Mode,
		"save.capture.cursor":    d.Save.Capture.Cursor,
		"save.capture.narrowing": d.Save.Capture.Narrowing,
		"save.capture.formatted": d.Save.Capture.Formatted,
		"autosave.spec":          d.Autosave.Spec,
		"backup.dir":             d.Backup.Dir,
		"backup.layout":          d.Backup.Layout,
		"backup.keep_count":      d.Backup.KeepCount,
		"backup.keep_for":        d.Backup.KeepFor,
		"metrics.addr":           d.Metrics.Addr,
		"log.level":              d.Log.Level,
		"log.format":             d.Log.Format,
	}
}
