package stardust

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeEffect is a scriptable Effect that marks one dirty pixel per update.
type fakeEffect struct {
	comp *Compositor

	updates  int
	draws    int
	released int
	dts      []float64
	lastFC   FrameContext

	err         error // returned by the next Update, then cleared
	panicUpdate bool
	panicDraw   bool
	done        bool
	n           int
	onUpdate    func()
}

func (e *fakeEffect) Update(fc FrameContext) error {
	e.updates++
	e.dts = append(e.dts, fc.DT)
	e.lastFC = fc
	if e.onUpdate != nil {
		e.onUpdate()
	}
	if e.panicUpdate {
		panic("update exploded")
	}
	if e.comp != nil {
		e.comp.MarkDirty(1, 1, 1, 1)
	}
	if err := e.err; err != nil {
		e.err = nil
		return err
	}
	return nil
}

func (e *fakeEffect) Draw(Surface, DirtyRect) {
	if e.panicDraw {
		panic("draw exploded")
	}
	e.draws++
}

func (e *fakeEffect) Done() bool { return e.done }
func (e *fakeEffect) Len() int   { return e.n }
func (e *fakeEffect) Release()   { e.released++ }

type schedulerFixture struct {
	clock *ManualClock
	mon   *PerformanceMonitor
	s     *Scheduler
	ids   uint64
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	quietLogs(t)
	clk := NewManualClock(testEpoch)
	mon := NewPerformanceMonitor(MonitorConfig{Clock: clk, InitialTier: QualityHigh})
	mon.Start()
	return &schedulerFixture{
		clock: clk,
		mon:   mon,
		s:     NewScheduler(SchedulerConfig{Clock: clk, Monitor: mon}),
	}
}

// add registers a 100x100 handle driving eff.
func (f *schedulerFixture) add(eff *fakeEffect, cfg EffectConfig) *Handle {
	f.ids++
	comp := NewCompositor(newRecordingSurface(100, 100), recordingFactory)
	eff.comp = comp
	h := newHandle(f.ids, Container{ID: "box", Width: 100, Height: 100}, "fake", cfg, eff, comp, 1)
	f.s.Register(h)
	return h
}

// tick advances the clock by d and ticks once.
func (f *schedulerFixture) tick(d time.Duration) {
	f.clock.Advance(d)
	f.s.Tick()
}

func TestSchedulerStepClamp(t *testing.T) {
	f := newSchedulerFixture(t)
	eff := &fakeEffect{}
	f.add(eff, EffectConfig{})

	f.tick(time.Hour)             // first tick is always one frame
	f.tick(50 * time.Millisecond) // three frames
	f.tick(time.Second)           // clamped
	f.tick(0)                     // no time passed
	f.tick(frameDuration / 2)     // half a frame

	want := []float64{1, 3, DefaultMaxStep, 0, 0.5}
	if len(eff.dts) != len(want) {
		t.Fatalf("dts = %v, want %v", eff.dts, want)
	}
	for i := range want {
		if d := eff.dts[i] - want[i]; d > 1e-6 || d < -1e-6 {
			t.Errorf("tick %d: dt = %v, want %v", i, eff.dts[i], want[i])
		}
	}
	if st := f.s.Stats(); st.Ticks != 5 {
		t.Errorf("Ticks = %d", st.Ticks)
	}
	if got := f.mon.Stats().FrameCount; got != 5 {
		t.Errorf("monitor frames = %d, want 5", got)
	}
}

func TestSchedulerCustomMaxStep(t *testing.T) {
	clk := NewManualClock(testEpoch)
	s := NewScheduler(SchedulerConfig{Clock: clk, MaxStep: 2})
	s.Tick()
	clk.Advance(time.Second)
	s.Tick()
	if got := s.Stats().LastStep; got != 2 {
		t.Errorf("LastStep = %v, want 2", got)
	}
	if !s.Monitor().IsMonitoring() {
		t.Error("default monitor not started")
	}
}

func TestSchedulerPaintsAfterStep(t *testing.T) {
	f := newSchedulerFixture(t)
	eff := &fakeEffect{n: 7}
	h := f.add(eff, EffectConfig{})

	f.tick(frameDuration)
	if eff.updates != 1 || eff.draws != 1 {
		t.Errorf("updates %d, draws %d", eff.updates, eff.draws)
	}
	if eff.lastFC.Tier != QualityHigh || eff.lastFC.Scale != 1 {
		t.Errorf("frame context = %+v", eff.lastFC)
	}
	if h.Frames() != 1 || h.Elapsed() != frameDuration {
		t.Errorf("frames %d, elapsed %v", h.Frames(), h.Elapsed())
	}
	if h.Particles() != 7 {
		t.Errorf("Particles = %d", h.Particles())
	}
}

func TestSchedulerSkipsPausedHandles(t *testing.T) {
	f := newSchedulerFixture(t)
	eff := &fakeEffect{}
	h := f.add(eff, EffectConfig{})

	f.tick(frameDuration)
	h.Pause()
	h.Pause()
	f.tick(frameDuration)
	f.tick(frameDuration)
	if eff.updates != 1 {
		t.Errorf("paused handle stepped: %d updates", eff.updates)
	}
	if h.Elapsed() != frameDuration {
		t.Errorf("elapsed advanced while paused: %v", h.Elapsed())
	}
	if st := f.s.Stats(); st.Paused != 1 || st.Running != 0 {
		t.Errorf("stats = %+v", st)
	}

	h.Play()
	f.tick(frameDuration)
	if eff.updates != 2 || h.State() != HandleRunning {
		t.Errorf("after Play: updates %d, state %v", eff.updates, h.State())
	}
}

func TestHandleStopIsImmediateAndIdempotent(t *testing.T) {
	f := newSchedulerFixture(t)
	eff := &fakeEffect{}
	h := f.add(eff, EffectConfig{})
	f.tick(frameDuration)

	h.Stop()
	h.Stop()
	h.Pause()
	h.Play()
	if h.State() != HandleStopped || h.Active() {
		t.Fatalf("state = %v", h.State())
	}
	if eff.released != 1 {
		t.Errorf("Release called %d times, want 1", eff.released)
	}
	if !h.Canvas().(*recordingSurface).disposed {
		t.Error("canvas not disposed")
	}
	if f.s.Len() != 0 {
		t.Errorf("scheduler still holds %d handles", f.s.Len())
	}

	f.tick(frameDuration)
	if eff.updates != 1 || eff.draws != 1 {
		t.Errorf("stopped handle touched: updates %d, draws %d", eff.updates, eff.draws)
	}
	if h.Particles() != 0 {
		t.Error("stopped handle reports particles")
	}

	f.s.Register(h)
	if f.s.Len() != 0 {
		t.Error("stopped handle re-registered")
	}
}

// A handle stopped by another handle during the same tick is not stepped
// or painted afterwards.
func TestStopDuringTick(t *testing.T) {
	f := newSchedulerFixture(t)
	victim := &fakeEffect{}
	killer := &fakeEffect{}
	f.add(killer, EffectConfig{})
	vh := f.add(victim, EffectConfig{})
	killer.onUpdate = func() { vh.Stop() }

	f.tick(frameDuration)
	if victim.updates != 0 || victim.draws != 0 {
		t.Errorf("victim ran after stop: updates %d, draws %d", victim.updates, victim.draws)
	}
	if killer.draws != 1 {
		t.Errorf("killer draws = %d", killer.draws)
	}
}

func TestHandleDurationExpires(t *testing.T) {
	f := newSchedulerFixture(t)
	eff := &fakeEffect{}
	h := f.add(eff, EffectConfig{Duration: 3 * frameDuration})

	f.tick(frameDuration)
	f.tick(frameDuration)
	if h.State() != HandleRunning {
		t.Fatalf("stopped early after %v", h.Elapsed())
	}
	f.tick(frameDuration)
	if h.State() != HandleStopped {
		t.Errorf("still %v after %v", h.State(), h.Elapsed())
	}
	if eff.draws != 3 {
		t.Errorf("draws = %d, want the last frame painted", eff.draws)
	}
}

func TestHandleStopsWhenEffectDone(t *testing.T) {
	f := newSchedulerFixture(t)
	eff := &fakeEffect{}
	h := f.add(eff, EffectConfig{})
	f.tick(frameDuration)
	eff.done = true
	f.tick(frameDuration)
	if h.State() != HandleStopped || eff.draws != 2 {
		t.Errorf("state %v, draws %d", h.State(), eff.draws)
	}
}

func TestSchedulerIsolatesFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*fakeEffect)
		recover func(*fakeEffect)
		want    string
	}{
		{
			"update error",
			func(e *fakeEffect) { e.err = errors.New("bad frame") },
			func(*fakeEffect) {},
			"bad frame",
		},
		{
			"update panic",
			func(e *fakeEffect) { e.panicUpdate = true },
			func(e *fakeEffect) { e.panicUpdate = false },
			"panicked: update exploded",
		},
		{
			"draw panic",
			func(e *fakeEffect) { e.panicDraw = true },
			func(e *fakeEffect) { e.panicDraw = false },
			"paint fake panicked: draw exploded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSchedulerFixture(t)
			logs := captureLogs(t)
			var reported []error
			f.s.onError = func(_ *Handle, err error) { reported = append(reported, err) }

			bad := &fakeEffect{}
			good := &fakeEffect{}
			bh := f.add(bad, EffectConfig{})
			f.add(good, EffectConfig{})

			tt.setup(bad)
			f.tick(frameDuration)
			if bh.Failures() != 1 || len(reported) != 1 {
				t.Fatalf("failures %d, reported %d", bh.Failures(), len(reported))
			}
			if !strings.Contains(reported[0].Error(), tt.want) {
				t.Errorf("error = %v, want %q", reported[0], tt.want)
			}
			if bad.draws != 0 {
				t.Errorf("failed handle painted %d times", bad.draws)
			}
			if good.updates != 1 || good.draws != 1 {
				t.Errorf("healthy handle disturbed: updates %d, draws %d", good.updates, good.draws)
			}
			if !strings.Contains(logs.String(), "skipped this frame") {
				t.Errorf("log = %q", logs.String())
			}

			tt.recover(bad)
			f.tick(frameDuration)
			if bh.State() != HandleRunning || bad.draws != 1 {
				t.Errorf("no recovery: state %v, draws %d", bh.State(), bad.draws)
			}
			if st := f.s.Stats(); st.Failures != 1 {
				t.Errorf("scheduler failures = %d", st.Failures)
			}
		})
	}
}

func TestSchedulerAfter(t *testing.T) {
	f := newSchedulerFixture(t)
	eff := &fakeEffect{}
	f.add(eff, EffectConfig{})

	var order []string
	f.s.After(100*time.Millisecond, func() {
		order = append(order, "late")
		if eff.draws == 0 {
			t.Error("deferred call ran before paint")
		}
		f.s.After(0, func() { order = append(order, "nested") })
	})
	f.s.After(0, func() { order = append(order, "now") })
	f.s.After(0, nil)
	if st := f.s.Stats(); st.Pending != 2 {
		t.Fatalf("Pending = %d, want 2", st.Pending)
	}

	f.tick(0)
	f.tick(50 * time.Millisecond)
	if strings.Join(order, ",") != "now" {
		t.Fatalf("order after 50ms = %v", order)
	}
	f.tick(50 * time.Millisecond)
	if strings.Join(order, ",") != "now,late" {
		t.Fatalf("order after 100ms = %v", order)
	}
	f.tick(0)
	if strings.Join(order, ",") != "now,late,nested" {
		t.Errorf("order = %v", order)
	}
}

func TestSchedulerAfterRecoversPanic(t *testing.T) {
	f := newSchedulerFixture(t)
	ran := false
	f.s.After(0, func() { panic("deferred boom") })
	f.s.After(0, func() { ran = true })
	f.tick(0)
	if !ran {
		t.Error("panicking call blocked the next one")
	}
	if f.s.Stats().Failures != 1 {
		t.Errorf("failures = %d", f.s.Stats().Failures)
	}
}

func TestSchedulerRescalesOnQualityChange(t *testing.T) {
	f := newSchedulerFixture(t)
	eff := &fakeEffect{}
	h := f.add(eff, EffectConfig{})
	f.tick(frameDuration)

	f.mon.SetOverride(QualityLow)
	f.tick(frameDuration)

	canvas := h.Canvas().(*recordingSurface)
	if h.Scale() != 0.5 || eff.lastFC.Scale != 0.5 {
		t.Errorf("scale: handle %v, frame %v", h.Scale(), eff.lastFC.Scale)
	}
	if canvas.w != 50 || canvas.h != 50 || canvas.resizes != 1 {
		t.Errorf("canvas %dx%d after %d resizes", canvas.w, canvas.h, canvas.resizes)
	}

	f.tick(frameDuration)
	if canvas.resizes != 1 {
		t.Error("canvas resized without a tier change")
	}
}

func TestSchedulerRegistration(t *testing.T) {
	f := newSchedulerFixture(t)
	a := f.add(&fakeEffect{}, EffectConfig{})
	b := f.add(&fakeEffect{}, EffectConfig{})
	f.s.Register(a)
	if f.s.Len() != 2 {
		t.Fatalf("Len = %d", f.s.Len())
	}

	hs := f.s.Handles()
	hs[0] = nil
	if f.s.Handles()[0] != a {
		t.Error("Handles exposed internal slice")
	}

	f.s.Unregister(a)
	if f.s.Len() != 1 || a.State() != HandleRunning {
		t.Error("Unregister should not stop the handle")
	}
	f.s.StopAll()
	if b.State() != HandleStopped || f.s.Len() != 0 {
		t.Errorf("StopAll left %d handles", f.s.Len())
	}
}

func TestSchedulerDebugLogs(t *testing.T) {
	logs := captureLogs(t)
	clk := NewManualClock(testEpoch)
	s := NewScheduler(SchedulerConfig{Clock: clk, Debug: true})
	s.Tick()
	out := logs.String()
	if !strings.Contains(out, "step:") || !strings.Contains(out, "handles: 0") {
		t.Errorf("debug log = %q", out)
	}
}

func TestSchedulerRegionCountOnlyInDebug(t *testing.T) {
	for _, debug := range []bool{false, true} {
		f := newSchedulerFixture(t)
		f.s.debug = debug
		logs := captureLogs(t)
		f.add(&fakeEffect{}, EffectConfig{})
		f.tick(frameDuration)

		out := logs.String()
		switch {
		case debug && !strings.Contains(out, "regions: 1"):
			t.Errorf("debug log = %q, want one painted region", out)
		case !debug && out != "":
			t.Errorf("non-debug tick logged %q", out)
		}
	}
}

func TestHandleStateString(t *testing.T) {
	for state, want := range map[HandleState]string{
		HandleRunning:  "running",
		HandlePaused:   "paused",
		HandleStopped:  "stopped",
		HandleState(9): "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}

func TestCanvasSize(t *testing.T) {
	tests := []struct {
		n     int
		scale float64
		want  int
	}{
		{100, 1, 100},
		{100, 0.75, 75},
		{101, 0.5, 51},
		{1, 0.3, 1},
	}
	for _, tt := range tests {
		if got := canvasSize(tt.n, tt.scale); got != tt.want {
			t.Errorf("canvasSize(%d, %v) = %d, want %d", tt.n, tt.scale, got, tt.want)
		}
	}
}
