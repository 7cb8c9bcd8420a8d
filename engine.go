package stardust

import (
	"fmt"
	"time"
)

// EventKind identifies an EngineEvent.
type EventKind uint8

const (
	EventStarted EventKind = iota
	EventStopped
	EventPaused
	EventResumed
	EventFailed
	EventQualityChanged
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventFailed:
		return "failed"
	case EventQualityChanged:
		return "quality-changed"
	default:
		return "unknown"
	}
}

// EngineEvent describes a handle lifecycle change or a quality change.
// Handle fields are zero for quality events; Tier is zero for handle events.
type EngineEvent struct {
	Kind        EventKind
	HandleID    uint64
	ContainerID string
	Slot        string
	Effect      EffectKind
	Tier        QualityTier
	Settings    QualitySettings
	Err         error
}

// EventSink receives engine events synchronously, on the ticking goroutine.
type EventSink interface {
	Publish(ev EngineEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev EngineEvent)

// Publish calls f(ev).
func (f EventSinkFunc) Publish(ev EngineEvent) {
	f(ev)
}

// EngineConfig controls an Engine. Zero values take defaults.
type EngineConfig struct {
	// Clock is shared by the monitor and the scheduler. Default: SystemClock.
	Clock Clock
	// Pool sizes the shared particle pool. Default: 512 preallocated,
	// 8192 max.
	Pool PoolConfig
	// Monitor configures frame monitoring. InitialTier defaults to the
	// probed device tier. Clock is ignored in favor of EngineConfig.Clock.
	Monitor MonitorConfig
	// SurfaceFactory allocates effect canvases and layers. Default:
	// ImageSurface.
	SurfaceFactory SurfaceFactory
	// MaxStep clamps the per-tick step. Default DefaultMaxStep.
	MaxStep float64
	// ReducedMotion forces QualityLow when true. Default: read from the
	// environment with PrefersReducedMotion.
	ReducedMotion *bool
	// Debug enables per-tick timing logs.
	Debug bool
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Pool.InitialSize == 0 && c.Pool.MaxSize == 0 {
		c.Pool = PoolConfig{InitialSize: 512, MaxSize: 8192}
	}
	c.Monitor.Clock = c.Clock
	if c.Monitor.InitialTier == 0 {
		c.Monitor.InitialTier = DeviceTier(ProbeDevice())
	}
	if c.SurfaceFactory == nil {
		c.SurfaceFactory = NewImageSurfaceFactory()
	}
	if c.ReducedMotion == nil {
		rm := PrefersReducedMotion()
		c.ReducedMotion = &rm
	}
	return c
}

// EngineStats is a snapshot of the whole engine.
type EngineStats struct {
	FPS         int
	Quality     QualityTier
	Override    bool
	Pool        PoolStats
	Scheduler   SchedulerStats
	Compositors []CompositorStats
	Handles     int
	Particles   int
}

type slotKey struct {
	container string
	slot      string
}

// Engine owns the monitor, the particle pool and the scheduler, and is the
// entry point for starting and stopping effects. It is not safe for
// concurrent use; call it from the goroutine that ticks it.
type Engine struct {
	config    EngineConfig
	monitor   *PerformanceMonitor
	pool      *ParticlePool
	scheduler *Scheduler
	factory   SurfaceFactory
	slots     map[slotKey]*Handle
	sink      EventSink
	nextID    uint64
	closed    bool
}

// NewEngine creates an engine and starts its monitor.
func NewEngine(cfg EngineConfig) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		config:  cfg,
		pool:    NewParticlePool(cfg.Pool),
		factory: cfg.SurfaceFactory,
		slots:   make(map[slotKey]*Handle),
	}

	userCallback := cfg.Monitor.OnQualityChange
	mcfg := cfg.Monitor
	mcfg.OnQualityChange = func(tier QualityTier, settings QualitySettings) {
		e.emit(EngineEvent{Kind: EventQualityChanged, Tier: tier, Settings: settings})
		if userCallback != nil {
			userCallback(tier, settings)
		}
	}
	e.monitor = NewPerformanceMonitor(mcfg)
	if *cfg.ReducedMotion {
		logf("reduced motion requested, forcing %s quality", QualityLow)
		e.monitor.SetOverride(QualityLow)
	}
	e.monitor.Start()

	e.scheduler = NewScheduler(SchedulerConfig{
		Clock:   cfg.Clock,
		Monitor: e.monitor,
		MaxStep: cfg.MaxStep,
		Debug:   cfg.Debug,
	})
	return e
}

// Monitor returns the engine's performance monitor.
func (e *Engine) Monitor() *PerformanceMonitor { return e.monitor }

// Pool returns the engine's particle pool.
func (e *Engine) Pool() *ParticlePool { return e.pool }

// Scheduler returns the engine's scheduler.
func (e *Engine) Scheduler() *Scheduler { return e.scheduler }

// SetEventSink sets the receiver of engine events. Nil disables events.
func (e *Engine) SetEventSink(sink EventSink) {
	e.sink = sink
}

func (e *Engine) emit(ev EngineEvent) {
	if e.sink != nil {
		e.sink.Publish(ev)
	}
}

// Start begins an effect in container. Configuration errors are logged and
// returned with a nil handle; they wrap ErrNoContainer, ErrUnknownEffect,
// ErrInvalidConfig or ErrEngineClosed. An effect already running in the same
// container and slot is stopped first.
func (e *Engine) Start(c Container, kind EffectKind, cfg EffectConfig) (*Handle, error) {
	h, err := e.start(c, kind, cfg)
	if err != nil {
		logf("start %s in %q: %v", kind, c.ID, err)
		return nil, err
	}
	return h, nil
}

func (e *Engine) start(c Container, kind EffectKind, cfg EffectConfig) (*Handle, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}
	if c.ID == "" {
		return nil, fmt.Errorf("%w: empty container id", ErrNoContainer)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("%w: container %q has size %dx%d", ErrNoContainer, c.ID, c.Width, c.Height)
	}
	if _, ok := catalog[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, kind)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scale := e.monitor.QualitySettings().CanvasScale
	canvas := e.factory(canvasSize(c.Width, scale), canvasSize(c.Height, scale))
	comp := NewCompositor(canvas, e.factory)
	env := effectEnv{
		pool:   e.pool,
		comp:   comp,
		width:  float64(c.Width),
		height: float64(c.Height),
		scale:  scale,
	}
	eff, resolved, err := newEffect(kind, cfg, env)
	if err != nil {
		if d, ok := canvas.(interface{ Dispose() }); ok {
			d.Dispose()
		}
		return nil, err
	}

	key := slotKey{c.ID, cfg.Slot}
	if old := e.slots[key]; old != nil {
		old.Stop()
	}

	e.nextID++
	h := newHandle(e.nextID, c, kind, resolved, eff, comp, scale)
	h.engine = e
	e.slots[key] = h
	e.scheduler.Register(h)
	h.emit(EventStarted, nil)
	return h, nil
}

// handleStopped forgets h's slot.
func (e *Engine) handleStopped(h *Handle) {
	key := slotKey{h.container.ID, h.config.Slot}
	if e.slots[key] == h {
		delete(e.slots, key)
	}
}

// Lookup returns the handle running in a container slot, or nil.
func (e *Engine) Lookup(containerID, slot string) *Handle {
	return e.slots[slotKey{containerID, slot}]
}

// Stop stops h. A nil or stopped handle is ignored.
func (e *Engine) Stop(h *Handle) {
	if h != nil {
		h.Stop()
	}
}

// Pause pauses h.
func (e *Engine) Pause(h *Handle) {
	if h != nil {
		h.Pause()
	}
}

// Play resumes h.
func (e *Engine) Play(h *Handle) {
	if h != nil {
		h.Play()
	}
}

// Handles returns the live handles in start order.
func (e *Engine) Handles() []*Handle {
	return e.scheduler.Handles()
}

// Tick advances every effect by one frame. It does nothing once closed.
func (e *Engine) Tick() {
	if e.closed {
		return
	}
	e.scheduler.Tick()
}

// After runs fn on a tick at least delay from now.
func (e *Engine) After(delay time.Duration, fn func()) {
	e.scheduler.After(delay, fn)
}

// SetQualityOverride pins the quality tier, bypassing adaptation.
func (e *Engine) SetQualityOverride(tier QualityTier) {
	e.monitor.SetOverride(tier)
}

// ClearQualityOverride returns to adaptive quality.
func (e *Engine) ClearQualityOverride() {
	e.monitor.ClearOverride()
}

// Stats returns a snapshot of the engine.
func (e *Engine) Stats() EngineStats {
	ms := e.monitor.Stats()
	st := EngineStats{
		FPS:       ms.FPS,
		Quality:   ms.Quality,
		Override:  ms.Override,
		Pool:      e.pool.Stats(),
		Scheduler: e.scheduler.Stats(),
	}
	for _, h := range e.scheduler.handles {
		st.Handles++
		st.Particles += h.Particles()
		st.Compositors = append(st.Compositors, h.comp.Stats())
	}
	return st
}

// Close stops every effect, empties the pool and stops the monitor. Further
// Start calls fail with ErrEngineClosed. Close is idempotent.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.scheduler.StopAll()
	e.pool.Clear()
	e.monitor.Stop()
	e.closed = true
}
