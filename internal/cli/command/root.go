package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scratchkeep/internal/cli/output"
	"github.com/yndnr/scratchkeep/internal/config"
	"github.com/yndnr/scratchkeep/internal/infra/buildinfo"
	"github.com/yndnr/scratchkeep/internal/storage"
	"github.com/yndnr/scratchkeep/internal/storage/savefile"
	"github.com/yndnr/scratchkeep/internal/telemetry/logger"
	"github.com/yndnr/scratchkeep/internal/telemetry/metric"
	"github.com/yndnr/scratchkeep/internal/workspace"
)

const runtimeKey = "runtime"

// Runtime is the state shared by all commands.
type Runtime struct {
	Config     *config.Config
	ConfigPath string
	Overrides  map[string]any

	Log     logger.Logger
	Slog    *slog.Logger
	Metrics *metric.Registry

	Format output.Format
	Wide   bool
	Out    io.Writer
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "scratchkeep",
		Usage:   "Persist scratch documents across restarts",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SaveCommand(),
			RestoreCommand(),
			InspectCommand(),
			BackupCommand(),
			WatchCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: setup,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default ~/.scratchkeep/config.yaml if present)",
			EnvVars: []string{"SCRATCHKEEP_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "save-file",
			Aliases: []string{"f"},
			Usage:   "Save file, overriding save.path",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log at debug level",
		},
	}
}

// flagOverrides maps global flags onto configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("save-file") {
		overrides["save.path"] = c.String("save-file")
	}
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}

func setup(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}

	overrides := flagOverrides(c)
	cfg, path, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	}
	if logCfg.Output == nil {
		logCfg.Output = os.Stderr
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[runtimeKey] = &Runtime{
		Config:     cfg,
		ConfigPath: path,
		Overrides:  overrides,
		Log:        log,
		Slog:       logger.Slog(log),
		Metrics:    metric.NewRegistry(),
		Format:     format,
		Wide:       c.Bool("wide"),
		Out:        out,
	}
	return nil
}

// GetRuntime retrieves the runtime prepared by the Before hook.
func GetRuntime(c *cli.Context) *Runtime {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt
	}
	return nil
}

// Print writes data in the selected output format.
func (rt *Runtime) Print(data any) error {
	return output.NewFormatter(rt.Format, rt.Wide).Format(rt.Out, data)
}

// WorkspaceOptions returns the persistence filter from save.include.
func (rt *Runtime) WorkspaceOptions() []workspace.Option {
	if len(rt.Config.Save.Include) == 0 {
		return nil
	}
	return []workspace.Option{workspace.WithPatterns(rt.Config.Save.Include...)}
}

// NewEngine builds a storage engine for host from the configuration.
func (rt *Runtime) NewEngine(host *workspace.Workspace) (*storage.Engine, error) {
	cfg := rt.Config
	mode, err := cfg.Save.Mode()
	if err != nil {
		return nil, err
	}

	var hooks []savefile.PreCommitHook
	if mode != savefile.DefaultFilePerm {
		hooks = append(hooks, savefile.ChmodHook(mode))
	}

	return storage.New(storage.Config{
		Host:         host,
		SavePath:     cfg.Save.Path,
		Capture:      cfg.CaptureOptions(),
		Hooks:        hooks,
		BackupDir:    cfg.Backup.Dir,
		BackupLayout: cfg.Backup.Layout,
		Retention:    cfg.RetentionPolicy(time.Now),
		Metrics:      rt.Metrics,
		Logger:       rt.Slog,
	})
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s requires exactly one argument: %s", c.Command.Name, name)
	}
	return c.Args().First(), nil
}
