package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yndnr/scratchkeep/internal/autosave"
	"github.com/yndnr/scratchkeep/internal/storage/backup"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifySave(&cfg.Save); err != nil {
		return err
	}
	if _, err := autosave.ParseSpec(cfg.Autosave.Spec); err != nil {
		return fmt.Errorf("autosave.spec: %w", err)
	}
	if err := verifyBackup(&cfg.Backup); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifySave(cfg *SaveSection) error {
	if cfg.Path == "" {
		return errors.New("save.path is required")
	}
	if _, err := cfg.Mode(); err != nil {
		return err
	}
	return nil
}

func verifyBackup(cfg *BackupSection) error {
	if cfg.KeepCount < 0 {
		return errors.New("backup.keep_count must not be negative")
	}
	if cfg.KeepFor < 0 {
		return errors.New("backup.keep_for must not be negative")
	}
	if cfg.Dir == "" {
		return nil
	}
	if err := backup.ValidateLayout(cfg.Layout); err != nil {
		return fmt.Errorf("backup.layout: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not text or json", cfg.Format)
	}
	return nil
}

// Mode parses FileMode as an octal permission.
func (s *SaveSection) Mode() (os.FileMode, error) {
	n, err := strconv.ParseUint(s.FileMode, 8, 32)
	if err != nil || n > 0o777 {
		return 0, fmt.Errorf("save.file_mode %q is not an octal permission", s.FileMode)
	}
	return os.FileMode(n), nil
}
