package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/scratchkeep/internal/core/domain"
	"github.com/yndnr/scratchkeep/internal/telemetry/metric"
)

type manualTimer struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *manualTimer) C() <-chan time.Time { return t.c }
func (t *manualTimer) Stop() bool          { return !t.stopped.Swap(true) }
func (t *manualTimer) Fire()               { t.c <- time.Now() }

type manualClock struct {
	timers chan *manualTimer
}

func newManualClock() *manualClock {
	return &manualClock{timers: make(chan *manualTimer, 16)}
}

func (c *manualClock) NewTimer(time.Duration) Timer {
	t := &manualTimer{c: make(chan time.Time, 1)}
	c.timers <- t
	return t
}

func (c *manualClock) next(t *testing.T) *manualTimer {
	t.Helper()
	select {
	case tm := <-c.timers:
		return tm
	case <-time.After(2 * time.Second):
		t.Fatal("no timer was armed")
		return nil
	}
}

func (c *manualClock) none(t *testing.T) {
	t.Helper()
	select {
	case <-c.timers:
		t.Fatal("unexpected timer armed")
	case <-time.After(100 * time.Millisecond):
	}
}

type registrar struct {
	mu    sync.Mutex
	hooks map[int]func(context.Context) error
	next  int
}

func (r *registrar) OnShutdown(_ string, hook func(context.Context) error) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hooks == nil {
		r.hooks = make(map[int]func(context.Context) error)
	}
	r.next++
	id := r.next
	r.hooks[id] = hook
	return func() {
		r.mu.Lock()
		delete(r.hooks, id)
		r.mu.Unlock()
	}
}

func (r *registrar) active() []func(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []func(context.Context) error
	for _, h := range r.hooks {
		out = append(out, h)
	}
	return out
}

type harness struct {
	clock   *manualClock
	reg     *registrar
	metrics *metric.Registry
	saves   chan struct{}
	err     atomic.Value
	s       *Scheduler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:   newManualClock(),
		reg:     &registrar{},
		metrics: metric.NewRegistry(),
		saves:   make(chan struct{}, 16),
	}
	h.s = New(Config{
		Save: func(context.Context) error {
			h.saves <- struct{}{}
			if err, ok := h.err.Load().(error); ok {
				return err
			}
			return nil
		},
		Shutdown: h.reg,
		Clock:    h.clock,
		Metrics:  h.metrics,
	})
	t.Cleanup(h.s.Disable)
	return h
}

func (h *harness) waitSave(t *testing.T) {
	t.Helper()
	select {
	case <-h.saves:
	case <-time.After(2 * time.Second):
		t.Fatal("save was not called")
	}
}

func (h *harness) noSave(t *testing.T) {
	t.Helper()
	select {
	case <-h.saves:
		t.Fatal("unexpected save")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestScheduler_Interval(t *testing.T) {
	h := newHarness(t)
	if err := h.s.Enable(Spec{Mode: Interval, Period: time.Minute}); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	t1 := h.clock.next(t)
	t1.Fire()
	h.waitSave(t)

	t2 := h.clock.next(t)
	t2.Fire()
	h.waitSave(t)
	h.clock.next(t)

	if got := testutil.ToFloat64(h.metrics.AutosaveFiringsTotal.WithLabelValues(TriggerInterval)); got != 2 {
		t.Errorf("interval firings = %v, want 2", got)
	}
}

func TestScheduler_IntervalIgnoresTouch(t *testing.T) {
	h := newHarness(t)
	h.s.Enable(Spec{Mode: Interval, Period: time.Minute})
	h.clock.next(t)

	h.s.Touch()
	h.clock.none(t)
}

func TestScheduler_IdleFiresOncePerIdleSpan(t *testing.T) {
	h := newHarness(t)
	if err := h.s.Enable(Spec{Mode: Idle, Period: 30 * time.Second}); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	t1 := h.clock.next(t)
	h.s.Touch()
	t2 := h.clock.next(t)
	if !t1.stopped.Load() {
		t.Error("activity should cancel the pending idle timer")
	}

	t2.Fire()
	h.waitSave(t)

	// Fired once; nothing is armed until the host is active again.
	h.clock.none(t)
	h.noSave(t)

	h.s.Touch()
	t3 := h.clock.next(t)
	t3.Fire()
	h.waitSave(t)
}

func TestScheduler_EnableReplacesTimer(t *testing.T) {
	h := newHarness(t)
	spec := Spec{Mode: Interval, Period: time.Minute}

	h.s.Enable(spec)
	t1 := h.clock.next(t)
	h.s.Enable(spec)
	t2 := h.clock.next(t)

	if !t1.stopped.Load() {
		t.Error("re-enabling should stop the previous timer")
	}
	if n := len(h.reg.active()); n != 1 {
		t.Errorf("active shutdown hooks = %d, want 1", n)
	}

	t1.Fire()
	h.noSave(t)

	t2.Fire()
	h.waitSave(t)
	h.noSave(t)
}

func TestScheduler_Disable(t *testing.T) {
	h := newHarness(t)
	h.s.Enable(Spec{Mode: Idle, Period: time.Second})
	t1 := h.clock.next(t)

	h.s.Disable()
	h.s.Disable()

	if h.s.Enabled() {
		t.Error("Enabled() should be false after Disable")
	}
	if !t1.stopped.Load() {
		t.Error("Disable should stop the timer")
	}
	if n := len(h.reg.active()); n != 0 {
		t.Errorf("active shutdown hooks = %d, want 0", n)
	}
	if got := testutil.ToFloat64(h.metrics.AutosaveEnabled); got != 0 {
		t.Errorf("autosave_enabled = %v, want 0", got)
	}

	h.s.Touch()
	h.clock.none(t)
}

func TestScheduler_EnableOffDisables(t *testing.T) {
	h := newHarness(t)
	h.s.Enable(Spec{Mode: Interval, Period: time.Minute})
	h.clock.next(t)

	if err := h.s.Enable(Spec{}); err != nil {
		t.Fatalf("Enable(off): %v", err)
	}
	if h.s.Enabled() {
		t.Error("Enable(off) should leave the scheduler disabled")
	}
}

func TestScheduler_EnableInvalid(t *testing.T) {
	h := newHarness(t)
	h.s.Enable(Spec{Mode: Interval, Period: time.Minute})
	h.clock.next(t)

	err := h.s.Enable(Spec{Mode: Idle})
	if !errors.Is(err, domain.ErrInvalidSpec) {
		t.Fatalf("Enable error = %v, want ErrInvalidSpec", err)
	}
	if got := h.s.Spec(); got.Mode != Interval {
		t.Errorf("invalid spec should keep the running timer, got %+v", got)
	}
}

func TestScheduler_DisableWaitsForInFlightSave(t *testing.T) {
	clock := newManualClock()
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	s := New(Config{
		Clock: clock,
		Save: func(context.Context) error {
			close(started)
			<-release
			finished.Store(true)
			return nil
		},
	})
	s.Enable(Spec{Mode: Interval, Period: time.Minute})
	clock.next(t).Fire()
	<-started

	disabled := make(chan struct{})
	go func() {
		s.Disable()
		close(disabled)
	}()

	select {
	case <-disabled:
		t.Fatal("Disable returned while a save was running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-disabled:
	case <-time.After(2 * time.Second):
		t.Fatal("Disable did not return")
	}
	if !finished.Load() {
		t.Error("in-flight save should complete")
	}
}

func TestScheduler_ErrorsAreReported(t *testing.T) {
	h := newHarness(t)
	h.err.Store(errors.New("disk full"))

	var (
		mu       sync.Mutex
		triggers []string
	)
	h.s.onError = func(trigger string, err error) {
		mu.Lock()
		triggers = append(triggers, trigger)
		mu.Unlock()
	}

	h.s.Enable(Spec{Mode: Interval, Period: time.Minute})
	h.clock.next(t).Fire()
	h.waitSave(t)

	// Still running after a failure.
	h.clock.next(t).Fire()
	h.waitSave(t)
	h.clock.next(t)

	if got := h.s.Failures(); got != 2 {
		t.Errorf("Failures() = %d, want 2", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(triggers) != 2 || triggers[0] != TriggerInterval {
		t.Errorf("OnError triggers = %v", triggers)
	}
	if got := testutil.ToFloat64(h.metrics.AutosaveErrorsTotal); got != 2 {
		t.Errorf("autosave_errors_total = %v, want 2", got)
	}
}

func TestScheduler_ShutdownHookSaves(t *testing.T) {
	h := newHarness(t)
	h.s.Enable(Spec{Mode: Idle, Period: time.Hour})
	h.clock.next(t)

	hooks := h.reg.active()
	if len(hooks) != 1 {
		t.Fatalf("active shutdown hooks = %d, want 1", len(hooks))
	}
	if err := hooks[0](context.Background()); err != nil {
		t.Fatalf("shutdown hook: %v", err)
	}
	h.waitSave(t)

	if got := testutil.ToFloat64(h.metrics.AutosaveFiringsTotal.WithLabelValues(TriggerShutdown)); got != 1 {
		t.Errorf("shutdown firings = %v, want 1", got)
	}
}
