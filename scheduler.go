package stardust

import (
	"fmt"
	"slices"
	"time"
)

// DefaultMaxStep is the largest step, in nominal frames, a single tick will
// simulate.
const DefaultMaxStep = 4.0

// SchedulerConfig controls a Scheduler. Zero values take defaults.
type SchedulerConfig struct {
	// Clock is the time source. Default: SystemClock.
	Clock Clock
	// Monitor receives one RecordFrame per tick. Default: a started
	// monitor on the same clock.
	Monitor *PerformanceMonitor
	// MaxStep clamps the per-tick step so a stalled host does not explode
	// the simulation. Default DefaultMaxStep.
	MaxStep float64
	// Debug logs per-tick timing.
	Debug bool
	// OnError is called after a handle's step or paint fails.
	OnError func(h *Handle, err error)
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Monitor == nil {
		c.Monitor = NewPerformanceMonitor(MonitorConfig{Clock: c.Clock})
		c.Monitor.Start()
	}
	if c.MaxStep <= 0 {
		c.MaxStep = DefaultMaxStep
	}
	return c
}

// SchedulerStats is a snapshot of a Scheduler.
type SchedulerStats struct {
	Handles  int
	Running  int
	Paused   int
	Ticks    int
	Failures int
	Pending  int // deferred calls not yet run
	LastStep float64
}

type deferredCall struct {
	at time.Time
	fn func()
}

// Scheduler is the single render loop shared by every handle. The host
// calls Tick once per frame; nothing runs between ticks.
type Scheduler struct {
	clock    Clock
	monitor  *PerformanceMonitor
	maxStep  float64
	debug    bool
	onError  func(*Handle, error)
	handles  []*Handle
	deferred []deferredCall
	last     time.Time
	started  bool
	ticks    int
	failures int
	lastStep float64
	snapshot []*Handle
	failed   map[*Handle]bool
}

// NewScheduler creates an idle scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		clock:   cfg.Clock,
		monitor: cfg.Monitor,
		maxStep: cfg.MaxStep,
		debug:   cfg.Debug,
		onError: cfg.OnError,
		failed:  make(map[*Handle]bool),
	}
}

// Monitor returns the scheduler's performance monitor.
func (s *Scheduler) Monitor() *PerformanceMonitor {
	return s.monitor
}

// Register adds h to the loop. Registering a stopped or already registered
// handle does nothing.
func (s *Scheduler) Register(h *Handle) {
	if h == nil || h.state == HandleStopped || h.scheduler == s {
		return
	}
	if h.scheduler != nil {
		h.scheduler.Unregister(h)
	}
	h.scheduler = s
	s.handles = append(s.handles, h)
	if s.debug {
		debugCheckHandleCount(s)
	}
}

// Unregister removes h from the loop. It does not stop it.
func (s *Scheduler) Unregister(h *Handle) {
	if h == nil || h.scheduler != s {
		return
	}
	h.scheduler = nil
	if i := slices.Index(s.handles, h); i >= 0 {
		s.handles = slices.Delete(s.handles, i, i+1)
	}
}

// Handles returns a copy of the registered handles in registration order.
func (s *Scheduler) Handles() []*Handle {
	return slices.Clone(s.handles)
}

// Len returns the number of registered handles.
func (s *Scheduler) Len() int {
	return len(s.handles)
}

// StopAll stops every registered handle.
func (s *Scheduler) StopAll() {
	for _, h := range slices.Clone(s.handles) {
		h.Stop()
	}
}

// After runs fn on the first tick at least delay from now. Calls are
// fire-and-forget and run after the tick's paint phase.
func (s *Scheduler) After(delay time.Duration, fn func()) {
	if fn == nil {
		return
	}
	s.deferred = append(s.deferred, deferredCall{at: s.clock.Now().Add(delay), fn: fn})
}

// step returns the clamped step since the previous tick, in nominal frames.
// The first tick steps one frame.
func (s *Scheduler) step(now time.Time) float64 {
	if !s.started {
		s.started = true
		s.last = now
		return 1
	}
	dt := framesFor(now.Sub(s.last))
	s.last = now
	return clamp(dt, 0, s.maxStep)
}

// Tick runs one frame: record the frame with the monitor, read the quality
// settings, step every running handle, paint every live handle, then run
// the deferred calls that came due.
func (s *Scheduler) Tick() {
	now := s.clock.Now()
	dt := s.step(now)
	s.lastStep = dt
	s.ticks++

	s.monitor.RecordFrame()
	fc := FrameContext{
		DT:       dt,
		Tier:     s.monitor.Quality(),
		Settings: s.monitor.QualitySettings(),
	}

	// Handles started or stopped during the tick take effect next tick.
	s.snapshot = append(s.snapshot[:0], s.handles...)
	clear(s.failed)

	var stats tickStats
	stepStart := time.Now()
	for _, h := range s.snapshot {
		if err := s.tickHandle(h, fc); err != nil {
			s.fail(h, err)
			stats.failures++
		}
	}
	stats.stepTime = time.Since(stepStart)

	paintStart := time.Now()
	for _, h := range s.snapshot {
		if h.state == HandleStopped || s.failed[h] {
			continue
		}
		if s.debug {
			stats.regions += len(h.comp.MergeDirtyRects())
		}
		if err := s.paintHandle(h); err != nil {
			s.fail(h, err)
			stats.failures++
		}
		stats.particles += h.effect.Len()
	}
	stats.paintTime = time.Since(paintStart)
	stats.handleCount = len(s.snapshot)

	// Expired handles stop after their last paint.
	for _, h := range s.snapshot {
		if h.state == HandleRunning && h.expired() {
			h.Stop()
		}
	}

	s.runDeferred(now)
	s.debugLog(stats)
}

// tickHandle steps one handle. A stopped handle is left untouched, which
// is what makes Stop immediate even for a tick already in flight.
func (s *Scheduler) tickHandle(h *Handle, fc FrameContext) (err error) {
	if h.state != HandleRunning {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("effect %s panicked: %v", h.kind, r)
		}
	}()

	h.elapsed += time.Duration(fc.DT * float64(frameDuration))
	h.frames++
	h.rescale(fc.Settings.CanvasScale)
	fc.Elapsed = h.elapsed
	fc.Scale = h.scale
	if err := h.effect.Update(fc); err != nil {
		return fmt.Errorf("effect %s: %w", h.kind, err)
	}
	return nil
}

func (s *Scheduler) paintHandle(h *Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("paint %s panicked: %v", h.kind, r)
		}
	}()
	h.comp.Paint(h.effect.Draw)
	return nil
}

// fail records a per-handle failure. The handle keeps running and is
// retried on the next tick.
func (s *Scheduler) fail(h *Handle, err error) {
	s.failed[h] = true
	s.failures++
	h.failures++
	logf("handle %d (%s in %q) skipped this frame: %v", h.id, h.kind, h.container.ID, err)
	h.emit(EventFailed, err)
	if s.onError != nil {
		s.onError(h, err)
	}
}

// runDeferred runs and drops every deferred call due at now. Calls queued
// by a running call wait for the next tick.
func (s *Scheduler) runDeferred(now time.Time) {
	if len(s.deferred) == 0 {
		return
	}
	var due []func()
	pending := s.deferred[:0]
	for _, d := range s.deferred {
		if !now.Before(d.at) {
			due = append(due, d.fn)
		} else {
			pending = append(pending, d)
		}
	}
	s.deferred = pending
	for _, fn := range due {
		s.runCall(fn)
	}
}

func (s *Scheduler) runCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.failures++
			logf("deferred call panicked: %v", r)
		}
	}()
	fn()
}

// Stats returns a snapshot of the scheduler.
func (s *Scheduler) Stats() SchedulerStats {
	st := SchedulerStats{
		Handles:  len(s.handles),
		Ticks:    s.ticks,
		Failures: s.failures,
		Pending:  len(s.deferred),
		LastStep: s.lastStep,
	}
	for _, h := range s.handles {
		switch h.state {
		case HandleRunning:
			st.Running++
		case HandlePaused:
			st.Paused++
		}
	}
	return st
}
