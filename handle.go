package stardust

import (
	"math"
	"time"
)

// HandleState is the lifecycle state of a Handle.
type HandleState uint8

const (
	HandleRunning HandleState = iota
	HandlePaused
	HandleStopped // terminal
)

// String returns the state name.
func (s HandleState) String() string {
	switch s {
	case HandleRunning:
		return "running"
	case HandlePaused:
		return "paused"
	case HandleStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Handle is one running effect instance: its container, its canvas and
// compositor, and the effect driving them. Handles are created by
// Engine.Start and driven by a Scheduler.
type Handle struct {
	id        uint64
	container Container
	kind      EffectKind
	config    EffectConfig
	effect    Effect
	canvas    Surface
	comp      *Compositor
	scale     float64
	state     HandleState
	elapsed   time.Duration
	frames    int
	failures  int

	scheduler *Scheduler
	engine    *Engine
}

func newHandle(id uint64, c Container, kind EffectKind, cfg EffectConfig, eff Effect, comp *Compositor, scale float64) *Handle {
	return &Handle{
		id:        id,
		container: c,
		kind:      kind,
		config:    cfg,
		effect:    eff,
		canvas:    comp.Main(),
		comp:      comp,
		scale:     scale,
	}
}

// ID returns the handle's engine-unique id.
func (h *Handle) ID() uint64 { return h.id }

// Container returns the container the effect renders into.
func (h *Handle) Container() Container { return h.container }

// Kind returns the catalog entry the handle was started from.
func (h *Handle) Kind() EffectKind { return h.kind }

// Config returns the configuration the handle was started with.
func (h *Handle) Config() EffectConfig { return h.config }

// Slot returns the handle's slot within its container.
func (h *Handle) Slot() string { return h.config.Slot }

// State returns the lifecycle state.
func (h *Handle) State() HandleState { return h.state }

// Active reports whether the handle has not been stopped.
func (h *Handle) Active() bool { return h.state != HandleStopped }

// Elapsed returns the simulated time the handle has run, excluding pauses.
func (h *Handle) Elapsed() time.Duration { return h.elapsed }

// Frames returns the number of ticks that stepped the handle.
func (h *Handle) Frames() int { return h.frames }

// Failures returns the number of ticks the handle was skipped for an error.
func (h *Handle) Failures() int { return h.failures }

// Canvas returns the surface the effect paints into. Its size is the
// container size times Scale.
func (h *Handle) Canvas() Surface { return h.canvas }

// Scale returns the canvas backing scale.
func (h *Handle) Scale() float64 { return h.scale }

// Compositor returns the handle's dirty-rect compositor.
func (h *Handle) Compositor() *Compositor { return h.comp }

// Effect returns the running effect.
func (h *Handle) Effect() Effect { return h.effect }

// Particles returns the number of live particles or rings.
func (h *Handle) Particles() int {
	if h.state == HandleStopped {
		return 0
	}
	return h.effect.Len()
}

// Pause suspends stepping. Only a running handle can be paused.
func (h *Handle) Pause() {
	if h.state != HandleRunning {
		return
	}
	h.state = HandlePaused
	h.emit(EventPaused, nil)
}

// Play resumes a paused handle.
func (h *Handle) Play() {
	if h.state != HandlePaused {
		return
	}
	h.state = HandleRunning
	h.emit(EventResumed, nil)
}

// Stop ends the handle and releases its particles. It takes effect
// immediately and is safe to call any number of times.
func (h *Handle) Stop() {
	if h.state == HandleStopped {
		return
	}
	h.state = HandleStopped
	h.effect.Release()
	if h.scheduler != nil {
		h.scheduler.Unregister(h)
	}
	if h.engine != nil {
		h.engine.handleStopped(h)
	}
	if d, ok := h.canvas.(interface{ Dispose() }); ok {
		d.Dispose()
	}
	h.emit(EventStopped, nil)
}

// expired reports whether the handle's duration has run out or its effect
// finished on its own.
func (h *Handle) expired() bool {
	if h.config.Duration > 0 && h.elapsed >= h.config.Duration {
		return true
	}
	return h.effect.Done()
}

type resizable interface {
	Resize(w, h int)
}

// rescale resizes the canvas for a new backing scale. Surfaces that cannot
// resize keep their size.
func (h *Handle) rescale(scale float64) {
	if scale <= 0 || scale == h.scale {
		return
	}
	r, ok := h.canvas.(resizable)
	if !ok {
		return
	}
	h.scale = scale
	r.Resize(canvasSize(h.container.Width, scale), canvasSize(h.container.Height, scale))
	h.comp.MarkAllDirty()
}

// canvasSize is the backing size of a container edge at scale.
func canvasSize(n int, scale float64) int {
	return max(1, int(math.Ceil(float64(n)*scale)))
}

func (h *Handle) emit(kind EventKind, err error) {
	if h.engine == nil {
		return
	}
	h.engine.emit(EngineEvent{
		Kind:        kind,
		HandleID:    h.id,
		ContainerID: h.container.ID,
		Slot:        h.config.Slot,
		Effect:      h.kind,
		Err:         err,
	})
}
