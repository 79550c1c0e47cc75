// Package confloader loads layered configuration with koanf.
//
// Sources are applied in order: defaults, YAML file, environment, then an
// optional map of overrides (usually command-line flags). Environment
// variables are resolved against the keys already known from defaults, so
// SCRATCHKEEP_BACKUP_KEEP_COUNT maps to backup.keep_count rather than
// backup.keep.count.
//
// The Watcher wraps fsnotify and reports changes to a single file or to
// every file in a directory.
package confloader
