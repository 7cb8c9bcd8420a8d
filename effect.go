package stardust

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// EffectKind names an entry in the effect catalog.
type EffectKind string

const (
	EffectStarfield     EffectKind = "starfield"
	EffectSpiralGalaxy  EffectKind = "spiral_galaxy"
	EffectQuantumCloud  EffectKind = "quantum_cloud"
	EffectAccretionDisk EffectKind = "accretion_disk"
	EffectPulsar        EffectKind = "pulsar"
	EffectNebula        EffectKind = "nebula"
	EffectCosmicDust    EffectKind = "cosmic_dust"
	EffectExplosion     EffectKind = "explosion"
	EffectStellarWind   EffectKind = "stellar_wind"
	EffectMagneticField EffectKind = "magnetic_field"
	EffectBlackHole     EffectKind = "black_hole"
	EffectShockwave     EffectKind = "shockwave"
)

// Sentinel errors returned by Engine.Start and EffectConfig.Validate.
var (
	ErrNoContainer   = errors.New("stardust: no container")
	ErrUnknownEffect = errors.New("stardust: unknown effect")
	ErrInvalidConfig = errors.New("stardust: invalid effect config")
	ErrEngineClosed  = errors.New("stardust: engine closed")
)

// EffectConfig tunes one effect instance. Zero values take the effect's
// catalog defaults; unset pointer fields likewise.
type EffectConfig struct {
	// Count is the particle count at high quality (or ring count for
	// shockwave). Lower tiers scale it by their ParticleMultiplier.
	Count int
	// Speed scales linear motion, in pixels per nominal frame.
	Speed float64
	// RotationSpeed is the base angular speed of orbital effects, in
	// radians per nominal frame.
	RotationSpeed float64
	// Colors are the palette stops particles are tinted from.
	Colors Palette
	// Duration stops the effect once elapsed. Zero runs until stopped,
	// except for one-shot effects, which end on their own.
	Duration time.Duration
	// FadeIn and FadeOut shape the effect's opacity envelope.
	FadeIn, FadeOut time.Duration
	Boundary        *Boundary
	Gravity         *Vec2
	Friction        float64
	Bounce          float64
	// Arms is the number of spiral arms.
	Arms          int
	WaveAmplitude float64
	WaveFrequency float64
	// Origin is where bursts and rings start, in container pixels.
	// Default: container center.
	Origin *Vec2
	// Slot distinguishes several concurrent effects in one container.
	Slot string
}

// Validate reports shape errors. Omitted fields are never errors.
func (c EffectConfig) Validate() error {
	switch {
	case c.Count < 0:
		return fmt.Errorf("%w: count %d is negative", ErrInvalidConfig, c.Count)
	case c.Duration < 0:
		return fmt.Errorf("%w: duration %v is negative", ErrInvalidConfig, c.Duration)
	case c.FadeIn < 0 || c.FadeOut < 0:
		return fmt.Errorf("%w: fade durations must not be negative", ErrInvalidConfig)
	case c.Speed < 0:
		return fmt.Errorf("%w: speed %g is negative", ErrInvalidConfig, c.Speed)
	case c.Arms < 0:
		return fmt.Errorf("%w: arms %d is negative", ErrInvalidConfig, c.Arms)
	case c.Friction < 0 || c.Friction > 1:
		return fmt.Errorf("%w: friction %g outside [0, 1]", ErrInvalidConfig, c.Friction)
	case c.Bounce < 0:
		return fmt.Errorf("%w: bounce %g is negative", ErrInvalidConfig, c.Bounce)
	case c.WaveAmplitude < 0:
		return fmt.Errorf("%w: wave amplitude %g is negative", ErrInvalidConfig, c.WaveAmplitude)
	case c.Boundary != nil && *c.Boundary > BoundaryNone:
		return fmt.Errorf("%w: unknown boundary %d", ErrInvalidConfig, *c.Boundary)
	}
	return nil
}

// FrameContext is what an effect sees of the current tick.
type FrameContext struct {
	// DT is the step in nominal frames (1 = 1/60 s).
	DT       float64
	Elapsed  time.Duration
	Tier     QualityTier
	Settings QualitySettings
	// Scale is the backing scale of the canvas the effect draws into.
	Scale float64
}

// Effect is one running visual. Update advances the simulation and marks
// the regions it changed on its compositor; Draw renders into a region of
// the effect canvas.
type Effect interface {
	Update(fc FrameContext) error
	Draw(dst Surface, clip DirtyRect)
	// Done reports whether a self-terminating effect has finished.
	Done() bool
	// Len returns the number of live particles or rings.
	Len() int
	// Release returns every pooled resource. The effect is unusable after.
	Release()
}

// effectEnv is what an effect is built against.
type effectEnv struct {
	pool          *ParticlePool
	comp          *Compositor
	width, height float64
	scale         float64
}

func (env effectEnv) center() Vec2 {
	return Vec2{env.width / 2, env.height / 2}
}

// radius is half the container's shorter side.
func (env effectEnv) radius() float64 {
	return math.Min(env.width, env.height) / 2
}

// newEffect builds the catalog effect for kind. It returns cfg with the
// catalog defaults filled in.
func newEffect(kind EffectKind, cfg EffectConfig, env effectEnv) (Effect, EffectConfig, error) {
	r, ok := catalog[kind]
	if !ok {
		return nil, cfg, fmt.Errorf("%w: %q", ErrUnknownEffect, kind)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	cfg = r.resolve(cfg)
	if r.rings {
		return newRingEffect(cfg, env), cfg, nil
	}
	return newParticleEffect(kind, r, cfg, env), cfg, nil
}

// lifeAlpha selects how a particle's remaining life shows in its opacity.
type lifeAlpha uint8

const (
	lifeAlphaNone   lifeAlpha = iota
	lifeAlphaLinear           // fades out as life runs down
	lifeAlphaHump             // fades in, then out
)

// particleEffect runs a catalog recipe over one ParticleField.
type particleEffect struct {
	kind     EffectKind
	recipe   *effectRecipe
	cfg      EffectConfig
	env      effectEnv
	field    *ParticleField
	emitters []*Emitter
	budget   budget
	envelope *Envelope
	fired    bool
	spawnSeq int
	alpha    float64
}

func newParticleEffect(kind EffectKind, r *effectRecipe, cfg EffectConfig, env effectEnv) *particleEffect {
	fcfg := FieldConfig{
		Motion:        r.motion,
		Width:         env.width,
		Height:        env.height,
		Boundary:      *cfg.Boundary,
		Gravity:       *cfg.Gravity,
		Friction:      cfg.Friction,
		Bounce:        cfg.Bounce,
		WaveAmplitude: cfg.WaveAmplitude,
		WaveFrequency: cfg.WaveFrequency,
	}
	e := &particleEffect{
		kind:     kind,
		recipe:   r,
		cfg:      cfg,
		env:      env,
		field:    NewParticleField(fcfg),
		envelope: NewEnvelope(framesFor(cfg.FadeIn), framesFor(cfg.FadeOut)),
	}
	e.field.OnSteal(e.markParticle)
	e.budget = newBudget(0)
	if r.setup != nil {
		r.setup(e)
	}
	return e
}

// scale is the current canvas scale.
func (e *particleEffect) scale() float64 {
	if e.env.scale <= 0 {
		return 1
	}
	return e.env.scale
}

// target is the tier-scaled particle count.
func (e *particleEffect) target(mult float64) float64 {
	n := float64(e.cfg.Count) * mult
	if e.cfg.Count > 0 && n < 1 {
		n = 1
	}
	return n
}

// Update steps the field, keeps the particle count at budget, and marks the
// before and after footprint of every particle dirty.
func (e *particleEffect) Update(fc FrameContext) error {
	if fc.Scale > 0 {
		e.env.scale = fc.Scale
	}
	e.markParticles()

	if e.cfg.Duration > 0 && !e.envelope.Releasing() && fc.Elapsed >= e.cfg.Duration-e.cfg.FadeOut {
		e.envelope.Release()
	}
	e.alpha = e.envelope.Update(fc.DT)

	pool := e.env.pool
	if e.recipe.oneShot {
		if !e.fired {
			e.fired = true
			e.recipe.fire(e, int(math.Round(e.target(fc.Settings.ParticleMultiplier))))
		}
	} else {
		e.budget.Retarget(e.target(fc.Settings.ParticleMultiplier))
	}
	n := e.budget.Step(fc.DT)
	if !e.recipe.oneShot {
		pool.ReleaseMany(e.field.Trim(n))
	}

	for _, em := range e.emitters {
		em.Config().MaxAlive = n
		if e.recipe.spin {
			em.Config().Angle += e.cfg.RotationSpeed * fc.DT
		}
		// MaxAlive 0 means unlimited, so an empty budget skips emission.
		if n > 0 {
			em.Update(fc.DT, pool, e.field)
		}
	}

	pool.ReleaseMany(e.field.Step(fc.DT))
	if e.recipe.capture > 0 {
		e.captureCore()
	}

	if !e.recipe.oneShot && len(e.emitters) == 0 {
		// Refill from spare capacity only. Stealing at the cap would take
		// particles back out of this same field.
		for k := min(n-e.field.Len(), pool.Available()); k > 0; k-- {
			e.field.Add(pool.Acquire(e.recipe.spawn(e)))
		}
	}

	e.markParticles()
	return nil
}

// captureCore releases particles that fell into the central sink.
func (e *particleEffect) captureCore() {
	c := e.env.center()
	rr := e.recipe.capture * e.env.radius()
	ps := e.field.Particles()
	for i := len(ps) - 1; i >= 0; i-- {
		p := ps[i]
		if math.Hypot(p.X-c.X, p.Y-c.Y) < rr {
			e.env.pool.Release(p)
		}
	}
}

// footprint is the canvas area p covers, halo and a one pixel margin
// included.
func (e *particleEffect) footprint(p *Particle) Rect {
	return p.Bounds(p.Radius*e.recipe.glow + 1).Scale(e.scale())
}

func (e *particleEffect) markParticle(p *Particle) {
	b := e.footprint(p)
	e.env.comp.MarkDirty(b.X, b.Y, b.Width, b.Height)
}

func (e *particleEffect) markParticles() {
	for _, p := range e.field.Particles() {
		e.markParticle(p)
	}
}

// Draw fills every particle that reaches into clip.
func (e *particleEffect) Draw(dst Surface, clip DirtyRect) {
	if e.alpha <= 0 {
		return
	}
	s := e.scale()
	t := e.field.Time()
	area := Rect{X: float64(clip.X), Y: float64(clip.Y), Width: float64(clip.Width), Height: float64(clip.Height)}
	for _, p := range e.field.Particles() {
		if !e.footprint(p).Intersects(area) {
			continue
		}
		cx, cy := p.X*s, p.Y*s
		a := p.Color.A * e.alpha
		switch e.recipe.lifeAlpha {
		case lifeAlphaLinear:
			a *= p.Life
		case lifeAlphaHump:
			a *= math.Sin(p.Life * math.Pi)
		}
		if e.recipe.twinkle > 0 {
			a *= 1 - e.recipe.twinkle*(0.5+0.5*math.Sin(t*0.05+p.Phase))
		}
		if e.recipe.glow > 0 {
			dst.FillCircle(cx, cy, p.Radius*(1+e.recipe.glow)*s, p.Color.WithAlpha(a*0.25))
		}
		dst.FillCircle(cx, cy, p.Radius*s, p.Color.WithAlpha(a))
	}
}

// Done reports whether a one-shot effect has spent every particle, or the
// fade-out has finished.
func (e *particleEffect) Done() bool {
	if e.envelope.Done() {
		return true
	}
	return e.recipe.oneShot && e.fired && e.field.Len() == 0
}

// Len returns the number of particles in the field.
func (e *particleEffect) Len() int {
	return e.field.Len()
}

// Release hands every particle back to the pool.
func (e *particleEffect) Release() {
	e.markParticles()
	e.env.pool.ReleaseMany(e.field.Drain())
	e.emitters = nil
}

// ring is one expanding shockwave front.
type ring struct {
	delay  float64
	radius *Tween
	alpha  *Tween
	color  Color
}

// ringEffect draws expanding rings eased by tweens. It holds no particles.
type ringEffect struct {
	cfg    EffectConfig
	env    effectEnv
	origin Vec2
	rings  []*ring
	width  float64
}

func newRingEffect(cfg EffectConfig, env effectEnv) *ringEffect {
	origin := env.center()
	if cfg.Origin != nil {
		origin = *cfg.Origin
	}
	// The farthest corner bounds how far a front has to travel.
	reach := math.Max(
		math.Hypot(origin.X, origin.Y),
		math.Hypot(env.width-origin.X, env.height-origin.Y),
	)
	life := framesFor(cfg.Duration) * 0.6
	gap := framesFor(cfg.Duration) * 0.4 / float64(max(cfg.Count, 1))
	e := &ringEffect{cfg: cfg, env: env, origin: origin, width: 3}
	for i := 0; i < cfg.Count; i++ {
		e.rings = append(e.rings, &ring{
			delay:  float64(i) * gap,
			radius: NewTween(0, reach*cfg.Speed, life, shockEase),
			alpha:  NewTween(1, 0, life, fadeEase),
			color:  cfg.Colors.At(float64(i) / float64(max(cfg.Count-1, 1))),
		})
	}
	return e
}

func (e *ringEffect) scale() float64 {
	if e.env.scale <= 0 {
		return 1
	}
	return e.env.scale
}

func (e *ringEffect) mark() {
	s := e.scale()
	for _, r := range e.rings {
		if r.delay > 0 || r.radius.Value <= 0 {
			continue
		}
		ext := r.radius.Value + e.width + 1
		e.env.comp.MarkDirty((e.origin.X-ext)*s, (e.origin.Y-ext)*s, 2*ext*s, 2*ext*s)
	}
}

// Update grows every started ring and drops the finished ones.
func (e *ringEffect) Update(fc FrameContext) error {
	if fc.Scale > 0 {
		e.env.scale = fc.Scale
	}
	e.mark()
	live := e.rings[:0]
	for _, r := range e.rings {
		if r.delay > 0 {
			r.delay -= fc.DT
			live = append(live, r)
			continue
		}
		r.radius.Update(fc.DT)
		r.alpha.Update(fc.DT)
		if !r.alpha.Done {
			live = append(live, r)
		}
	}
	e.rings = live
	e.mark()
	return nil
}

// Draw strokes every visible ring.
func (e *ringEffect) Draw(dst Surface, _ DirtyRect) {
	s := e.scale()
	for _, r := range e.rings {
		if r.delay > 0 {
			continue
		}
		dst.StrokeCircle(e.origin.X*s, e.origin.Y*s, r.radius.Value*s, e.width*s, r.color.WithAlpha(r.color.A*r.alpha.Value))
	}
}

// Done reports whether every ring has faded out.
func (e *ringEffect) Done() bool {
	return len(e.rings) == 0
}

// Len returns the number of rings still visible or pending.
func (e *ringEffect) Len() int {
	return len(e.rings)
}

// Release marks the remaining rings for erasure and drops them.
func (e *ringEffect) Release() {
	e.mark()
	e.rings = nil
}
