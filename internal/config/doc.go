// Package config defines the scratchkeep configuration.
//
// Values are resolved by confloader in priority order: built-in defaults,
// the YAML config file, SCRATCHKEEP_* environment variables, then
// command-line overrides. Keys use koanf dotted paths, e.g.
// SCRATCHKEEP_BACKUP_KEEP_COUNT sets backup.keep_count.
package config
