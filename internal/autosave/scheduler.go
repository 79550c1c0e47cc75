package autosave

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/scratchkeep/internal/telemetry/metric"
)

// Trigger label values.
const (
	TriggerInterval = "interval"
	TriggerIdle     = "idle"
	TriggerShutdown = "shutdown"
)

// SaveFunc runs the full save pipeline against the default path.
type SaveFunc func(ctx context.Context) error

// ShutdownRegistrar registers a hook that runs when the process stops.
// The returned function removes it.
type ShutdownRegistrar interface {
	OnShutdown(name string, hook func(context.Context) error) (unregister func())
}

// Config configures a Scheduler.
type Config struct {
	Save     SaveFunc
	Shutdown ShutdownRegistrar

	// OnError is called for every failed firing.
	OnError func(trigger string, err error)

	Clock   Clock
	Logger  *slog.Logger
	Metrics *metric.Registry
}

// Scheduler owns the autosave timer.
type Scheduler struct {
	save     SaveFunc
	shutdown ShutdownRegistrar
	onError  func(string, error)
	clock    Clock
	logger   *slog.Logger
	metrics  *metric.Registry

	// transition serializes Enable and Disable.
	transition sync.Mutex

	mu         sync.Mutex
	spec       Spec
	cancel     context.CancelFunc
	done       chan struct{}
	activity   chan struct{}
	unregister func()

	failures  atomic.Int64
	sometimes rate.Sometimes
}

// New creates a disabled scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scheduler{
		save:      cfg.Save,
		shutdown:  cfg.Shutdown,
		onError:   cfg.OnError,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		sometimes: rate.Sometimes{First: 1, Interval: time.Minute},
	}
}

// Enable replaces any running timer with one for spec. An Off spec just
// disables.
func (s *Scheduler) Enable(spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s.transition.Lock()
	defer s.transition.Unlock()

	s.stop()
	if !spec.Enabled() {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	activity := make(chan struct{}, 1)

	var unregister func()
	if s.shutdown != nil {
		unregister = s.shutdown.OnShutdown("autosave", s.shutdownSave)
	}

	s.mu.Lock()
	s.spec = spec
	s.cancel = cancel
	s.done = done
	s.activity = activity
	s.unregister = unregister
	s.mu.Unlock()

	go s.run(ctx, spec, activity, done)

	s.metrics.SetAutosaveEnabled(true)
	s.logger.Info("autosave enabled", "spec", spec.String())
	return nil
}

// Disable stops the timer and removes the shutdown hook. A save that is
// already running completes first. Calling Disable when nothing is
// enabled is a no-op.
func (s *Scheduler) Disable() {
	s.transition.Lock()
	defer s.transition.Unlock()
	s.stop()
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	cancel, done, unregister := s.cancel, s.done, s.unregister
	was := s.spec
	s.spec = Spec{}
	s.cancel, s.done, s.activity, s.unregister = nil, nil, nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	if unregister != nil {
		unregister()
	}

	s.metrics.SetAutosaveEnabled(false)
	s.logger.Info("autosave disabled", "spec", was.String())
}

// Spec returns the active spec, Off when disabled.
func (s *Scheduler) Spec() Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Enabled reports whether a timer is running.
func (s *Scheduler) Enabled() bool {
	return s.Spec().Enabled()
}

// Touch reports host activity. In idle mode it restarts the idle period
// and re-arms a timer that has already fired.
func (s *Scheduler) Touch() {
	s.mu.Lock()
	ch := s.activity
	s.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Failures returns how many firings have failed since creation.
func (s *Scheduler) Failures() int64 {
	return s.failures.Load()
}

func (s *Scheduler) run(ctx context.Context, spec Spec, activity <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timer := s.clock.NewTimer(spec.Period)
	fire := timer.C()
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	trigger := TriggerInterval
	if spec.Mode == Idle {
		trigger = TriggerIdle
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-activity:
			if spec.Mode != Idle {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = s.clock.NewTimer(spec.Period)
			fire = timer.C()

		case <-fire:
			s.fire(context.WithoutCancel(ctx), trigger)
			if spec.Mode == Idle {
				// Stay quiet until the next activity.
				timer, fire = nil, nil
				continue
			}
			timer = s.clock.NewTimer(spec.Period)
			fire = timer.C()
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, trigger string) error {
	if s.save == nil {
		return nil
	}
	err := s.save(ctx)
	s.metrics.RecordAutosave(trigger, err)
	if err != nil {
		s.report(trigger, err)
	}
	return err
}

func (s *Scheduler) report(trigger string, err error) {
	n := s.failures.Add(1)
	if s.onError != nil {
		s.onError(trigger, err)
	}
	s.sometimes.Do(func() {
		s.logger.Warn("autosave failed",
			"trigger", trigger,
			"failures", n,
			"error", err)
	})
}

func (s *Scheduler) shutdownSave(ctx context.Context) error {
	return s.fire(ctx, TriggerShutdown)
}
