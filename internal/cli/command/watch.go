package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scratchkeep/internal/autosave"
	"github.com/yndnr/scratchkeep/internal/config"
	"github.com/yndnr/scratchkeep/internal/core/domain"
	"github.com/yndnr/scratchkeep/internal/infra/confloader"
	"github.com/yndnr/scratchkeep/internal/infra/shutdown"
	"github.com/yndnr/scratchkeep/internal/storage"
	"github.com/yndnr/scratchkeep/internal/telemetry/logger"
	"github.com/yndnr/scratchkeep/internal/workspace"
)

const (
	shutdownTimeout = 30 * time.Second
	eventDebounce   = 100 * time.Millisecond
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Keep DIR persisted: restore it, autosave on changes and save on exit",
		ArgsUsage: "DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "autosave",
				Usage: "Autosave spec overriding autosave.spec (off, interval:5m, idle:30s)",
			},
			&cli.BoolFlag{
				Name:  "document-mode",
				Usage: "Save immediately whenever a persisted file in DIR is written",
			},
		},
		Action: watchAction,
	}
}

// watchSession is one run of the watch command.
type watchSession struct {
	rt      *Runtime
	dir     string
	log     *slog.Logger
	ws      *workspace.Workspace
	engine  *storage.Engine
	sched   *autosave.Scheduler
	handler *shutdown.Handler

	// autosaveFlag pins the autosave spec across config reloads.
	autosaveFlag string

	mu         sync.Mutex
	finalSave  func()
	dirWatcher *confloader.Watcher
	cfgWatcher *confloader.Watcher
}

func watchAction(c *cli.Context) error {
	rt := GetRuntime(c)
	dir, err := requireArg(c, "DIR")
	if err != nil {
		return err
	}

	s, err := newWatchSession(rt, dir, c.String("autosave"))
	if err != nil {
		return err
	}
	if c.Bool("document-mode") {
		s.engine.EnableDocumentMode()
	}
	if err := s.start(c.Context); err != nil {
		s.handler.Shutdown(context.Background())
		return err
	}

	s.log.Info("watching", "dir", dir, "save_file", s.engine.SavePath())
	return s.handler.Wait(c.Context)
}

func newWatchSession(rt *Runtime, dir, autosaveFlag string) (*watchSession, error) {
	ws := workspace.New(rt.WorkspaceOptions()...)
	engine, err := rt.NewEngine(ws)
	if err != nil {
		return nil, err
	}

	s := &watchSession{
		rt:           rt,
		dir:          dir,
		log:          rt.Slog.With("component", "watch"),
		ws:           ws,
		engine:       engine,
		handler:      shutdown.NewHandler(shutdownTimeout, rt.Slog),
		autosaveFlag: autosaveFlag,
	}
	s.sched = autosave.New(autosave.Config{
		Save:     s.save,
		Shutdown: s.handler,
		Metrics:  rt.Metrics,
		Logger:   rt.Slog,
	})
	return s, nil
}

func (s *watchSession) save(ctx context.Context) error {
	_, err := s.engine.Save(ctx, "")
	return err
}

// start restores DIR, applies the autosave spec and starts the watchers.
// Hooks are registered first to last; shutdown runs them in reverse.
func (s *watchSession) start(ctx context.Context) error {
	if err := s.restore(ctx); err != nil {
		return err
	}
	if _, err := s.engine.NewBackupGeneration(); err != nil && !errors.Is(err, storage.ErrBackupsDisabled) {
		return err
	}

	if err := s.startMetrics(); err != nil {
		return err
	}
	if err := s.applyAutosave(s.rt.Config); err != nil {
		return err
	}
	if err := s.startDirWatcher(); err != nil {
		return err
	}
	if s.rt.ConfigPath != "" {
		if err := s.startConfigWatcher(); err != nil {
			return err
		}
	}

	s.handler.OnShutdown("watchers", func(context.Context) error {
		s.stopWatchers()
		s.sched.Disable()
		return nil
	})
	return nil
}

// restore loads the save file into DIR, then picks up every file DIR
// holds. A missing save file is not an error.
func (s *watchSession) restore(ctx context.Context) error {
	res, err := s.engine.Restore(ctx, "")
	switch {
	case domain.IsNotFound(err):
		s.log.Info("no save file yet", "path", s.engine.SavePath())
	case err != nil:
		return err
	default:
		if err := workspace.WriteDir(s.dir, s.ws); err != nil {
			return err
		}
		s.log.Info("restored", "documents", len(res.Names))
	}

	loaded, err := workspace.LoadDir(s.dir)
	if err != nil {
		return err
	}
	for _, name := range loaded.Names() {
		if err := s.ws.LoadFile(s.dir, name); err != nil {
			return err
		}
	}
	return nil
}

// applyAutosave enables the autosave spec from cfg, or the --autosave
// flag when given. While autosave is off a plain save hook keeps the
// exit save.
func (s *watchSession) applyAutosave(cfg *config.Config) error {
	raw := cfg.Autosave.Spec
	if s.autosaveFlag != "" {
		raw = s.autosaveFlag
	}
	spec, err := autosave.ParseSpec(raw)
	if err != nil {
		return err
	}
	if err := s.sched.Enable(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.sched.Enabled() && s.finalSave != nil:
		s.finalSave()
		s.finalSave = nil
	case !s.sched.Enabled() && s.finalSave == nil:
		s.finalSave = s.handler.OnShutdown("final save", s.save)
	}
	return nil
}

func (s *watchSession) startDirWatcher() error {
	w, err := confloader.NewWatcher(
		confloader.WithWatcherLogger(s.log),
		confloader.WithDebounce(eventDebounce),
	)
	if err != nil {
		return err
	}
	if err := w.WatchDir(s.dir); err != nil {
		w.Stop()
		return err
	}
	w.OnChange(s.fileChanged)
	w.StartAsync()

	s.mu.Lock()
	s.dirWatcher = w
	s.mu.Unlock()
	return nil
}

// fileChanged loads a written file into its document and reports the
// activity. In document mode a persisted document is saved at once.
func (s *watchSession) fileChanged(path string) {
	name := filepath.Base(path)
	if filepath.Dir(path) != filepath.Clean(s.dir) || name == "" || name[0] == '.' {
		return
	}
	if err := s.ws.LoadFile(s.dir, name); err != nil {
		if !domain.IsNotFound(err) {
			s.log.Warn("reload failed", "file", path, "error", err)
		}
		return
	}

	ctx := logger.WithLogger(context.Background(), s.rt.Log)
	handled, err := s.engine.HandleSave(ctx, name)
	if err != nil {
		logger.L(ctx).Error("document save failed", "name", name, "error", err)
	}
	if !handled {
		s.sched.Touch()
	}
}

func (s *watchSession) startConfigWatcher() error {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(s.log))
	if err != nil {
		return err
	}
	if err := w.Watch(s.rt.ConfigPath); err != nil {
		w.Stop()
		return err
	}
	w.OnChange(s.reloadConfig)
	w.StartAsync()

	s.mu.Lock()
	s.cfgWatcher = w
	s.mu.Unlock()
	return nil
}

// reloadConfig applies the parts of a changed config file that can change
// at runtime: the autosave spec and the log level.
func (s *watchSession) reloadConfig(path string) {
	cfg, _, err := config.Load(path, s.rt.Overrides)
	if err != nil {
		s.log.Warn("config reload rejected", "path", path, "error", err)
		return
	}
	logger.SetLevel(cfg.Log.Level)
	if err := s.applyAutosave(cfg); err != nil {
		s.log.Warn("autosave spec rejected", "spec", cfg.Autosave.Spec, "error", err)
		return
	}
	s.rt.Config.Autosave = cfg.Autosave
	s.log.Info("config reloaded",
		"path", path,
		"autosave", s.sched.Spec().String(),
		"log_level", logger.GetLevel())
}

func (s *watchSession) startMetrics() error {
	addr := s.rt.Config.Metrics.Addr
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.rt.Metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.log.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server failed", "error", err)
		}
	}()

	s.handler.OnShutdown("metrics", func(ctx context.Context) error {
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	return nil
}

func (s *watchSession) stopWatchers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range []*confloader.Watcher{s.dirWatcher, s.cfgWatcher} {
		if w != nil {
			if err := w.Stop(); err != nil {
				s.log.Warn("stop watcher", "error", err)
			}
		}
	}
}
