package config

import "time"

// Config is the root configuration.
type Config struct {
	Save     SaveSection     `koanf:"save" json:"save" yaml:"save"`
	Autosave AutosaveSection `koanf:"autosave" json:"autosave" yaml:"autosave"`
	Backup   BackupSection   `koanf:"backup" json:"backup" yaml:"backup"`
	Metrics  MetricsSection  `koanf:"metrics" json:"metrics" yaml:"metrics"`
	Log      LogSection      `koanf:"log" json:"log" yaml:"log"`
}

// SaveSection configures the save file.
type SaveSection struct {
	Path string `koanf:"path" json:"path" yaml:"path"`

	// FileMode is the octal mode the committed file ends up with.
	FileMode string `koanf:"file_mode" json:"file_mode" yaml:"file_mode"`

	// Include lists path.Match patterns of document names to persist.
	// Empty persists every document.
	Include []string `koanf:"include" json:"include" yaml:"include"`

	// Legacy writes version 1 records.
	Legacy bool `koanf:"legacy" json:"legacy" yaml:"legacy"`

	Capture CaptureSection `koanf:"capture" json:"capture" yaml:"capture"`
}

// CaptureSection selects the optional record fields.
type CaptureSection struct {
	Mode      bool `koanf:"mode" json:"mode" yaml:"mode"`
	Cursor    bool `koanf:"cursor" json:"cursor" yaml:"cursor"`
	Narrowing bool `koanf:"narrowing" json:"narrowing" yaml:"narrowing"`
	Formatted bool `koanf:"formatted" json:"formatted" yaml:"formatted"`
}

// AutosaveSection configures the autosave timer.
type AutosaveSection struct {
	// Spec is "off", "interval:<duration>" or "idle:<duration>".
	Spec string `koanf:"spec" json:"spec" yaml:"spec"`
}

// BackupSection configures backups of the save file.
type BackupSection struct {
	// Dir enables backups. Empty disables them.
	Dir    string `koanf:"dir" json:"dir" yaml:"dir"`
	Layout string `koanf:"layout" json:"layout" yaml:"layout"`

	// KeepCount keeps the newest N backups. Zero disables the limit.
	KeepCount int `koanf:"keep_count" json:"keep_count" yaml:"keep_count"`
	// KeepFor keeps backups younger than this. Zero disables the limit.
	KeepFor time.Duration `koanf:"keep_for" json:"keep_for" yaml:"keep_for"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	// Addr is the listen address. Empty disables the endpoint.
	Addr string `koanf:"addr" json:"addr" yaml:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}
