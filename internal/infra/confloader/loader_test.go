package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Save struct {
		Path     string `koanf:"path"`
		FileMode string `koanf:"file_mode"`
	} `koanf:"save"`
	Backup struct {
		KeepCount int           `koanf:"keep_count"`
		KeepFor   time.Duration `koanf:"keep_for"`
	} `koanf:"backup"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return p
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.FilePath() != "/path/to/config.yaml" {
		t.Errorf("FilePath() = %q, want %q", l.FilePath(), "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
save:
  path: "/var/lib/scratch.json"
backup:
  keep_count: 7
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := l.GetString("save.path"); got != "/var/lib/scratch.json" {
		t.Errorf("save.path = %q", got)
	}
	if got := l.GetInt("backup.keep_count"); got != 7 {
		t.Errorf("backup.keep_count = %d, want 7", got)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	if err := NewLoader().LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	if err := NewLoader().LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv_KnownKeys(t *testing.T) {
	t.Setenv("SCRATCHKEEP_SAVE_FILE_MODE", "0640")
	t.Setenv("SCRATCHKEEP_BACKUP_KEEP_COUNT", "3")

	l := NewLoader()
	l.LoadMap(map[string]any{
		"save.file_mode":    "0600",
		"backup.keep_count": 0,
	})
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if got := l.GetString("save.file_mode"); got != "0640" {
		t.Errorf("save.file_mode = %q, want 0640", got)
	}
	if got := l.GetInt("backup.keep_count"); got != 3 {
		t.Errorf("backup.keep_count = %d, want 3", got)
	}
}

func TestLoader_LoadEnv_UnknownKeys(t *testing.T) {
	t.Setenv("MYAPP_METRICS_ADDR", ":9090")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.GetString("metrics.addr"); got != ":9090" {
		t.Errorf("metrics.addr = %q, want :9090", got)
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{
		"save.path": "/tmp/s.json",
		"debug":     true,
	}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if got := l.GetString("save.path"); got != "/tmp/s.json" {
		t.Errorf("save.path = %q", got)
	}
	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
save:
  path: "from-file"
  file_mode: "0644"
backup:
  keep_count: 2
`)
	t.Setenv("SCRATCHKEEP_SAVE_PATH", "from-env")
	t.Setenv("SCRATCHKEEP_BACKUP_KEEP_COUNT", "4")

	l := NewLoader(
		WithConfigFile(path),
		WithDefaults(map[string]any{
			"save.path":         "default",
			"save.file_mode":    "0600",
			"backup.keep_count": 0,
			"backup.keep_for":   "0s",
		}),
		WithOverrides(map[string]any{"backup.keep_count": 9}),
	)

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Save.Path != "from-env" {
		t.Errorf("Path = %q, want from-env (env overrides file)", cfg.Save.Path)
	}
	if cfg.Save.FileMode != "0644" {
		t.Errorf("FileMode = %q, want 0644 (file overrides default)", cfg.Save.FileMode)
	}
	if cfg.Backup.KeepCount != 9 {
		t.Errorf("KeepCount = %d, want 9 (overrides win)", cfg.Backup.KeepCount)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_Load_Duration(t *testing.T) {
	path := writeConfig(t, "backup:\n  keep_for: 72h\n")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backup.KeepFor != 72*time.Hour {
		t.Errorf("KeepFor = %v, want 72h", cfg.Backup.KeepFor)
	}
}

func TestLoader_Load_Reload(t *testing.T) {
	path := writeConfig(t, "save:\n  path: first\n")
	l := NewLoader(WithConfigFile(path))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatal(err)
	}

	os.WriteFile(path, []byte("backup:\n  keep_count: 1\n"), 0644)
	var again testConfig
	if err := l.Load(&again); err != nil {
		t.Fatal(err)
	}
	if again.Save.Path != "" {
		t.Errorf("reload kept stale value %q", again.Save.Path)
	}
	if again.Backup.KeepCount != 1 {
		t.Errorf("KeepCount = %d, want 1", again.Backup.KeepCount)
	}
}
