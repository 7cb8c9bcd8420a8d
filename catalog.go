package stardust

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/tanema/gween/ease"
)

var (
	shockEase = ease.OutCubic
	fadeEase  = ease.InQuad
)

// effectRecipe is one row of the catalog: the defaults for an EffectConfig
// plus the hooks that place particles.
type effectRecipe struct {
	defaults EffectConfig
	boundary Boundary
	gravity  Vec2

	motion    Motion
	oneShot   bool
	rings     bool
	spin      bool    // emitters rotate at RotationSpeed
	capture   float64 // sink radius as a fraction of the container radius
	glow      float64 // halo radius as a fraction of particle radius
	twinkle   float64 // depth of the opacity shimmer, [0, 1]
	lifeAlpha lifeAlpha

	setup func(e *particleEffect)
	spawn func(e *particleEffect) ParticleProps
	fire  func(e *particleEffect, count int)
}

// resolve fills every zero field of cfg from the recipe defaults.
func (r *effectRecipe) resolve(cfg EffectConfig) EffectConfig {
	d := r.defaults
	if cfg.Count == 0 {
		cfg.Count = d.Count
	}
	if cfg.Speed == 0 {
		cfg.Speed = d.Speed
	}
	if cfg.RotationSpeed == 0 {
		cfg.RotationSpeed = d.RotationSpeed
	}
	if len(cfg.Colors) == 0 {
		cfg.Colors = slices.Clone(d.Colors)
	}
	if cfg.Duration == 0 {
		cfg.Duration = d.Duration
	}
	if cfg.FadeIn == 0 {
		cfg.FadeIn = d.FadeIn
	}
	if cfg.FadeOut == 0 {
		cfg.FadeOut = d.FadeOut
	}
	if cfg.Boundary == nil {
		b := r.boundary
		cfg.Boundary = &b
	}
	if cfg.Gravity == nil {
		g := r.gravity
		cfg.Gravity = &g
	}
	if cfg.Friction == 0 {
		cfg.Friction = d.Friction
	}
	if cfg.Bounce == 0 {
		cfg.Bounce = d.Bounce
	}
	if cfg.Arms == 0 {
		cfg.Arms = max(d.Arms, 1)
	}
	if cfg.WaveAmplitude == 0 {
		cfg.WaveAmplitude = d.WaveAmplitude
	}
	if cfg.WaveFrequency == 0 {
		cfg.WaveFrequency = d.WaveFrequency
	}
	return cfg
}

// Kinds returns every catalog entry, sorted.
func Kinds() []EffectKind {
	out := make([]EffectKind, 0, len(catalog))
	for k := range catalog {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

const fadeDefault = 500 * time.Millisecond

var catalog = map[EffectKind]*effectRecipe{
	EffectStarfield: {
		defaults: EffectConfig{
			Count:  200,
			Speed:  0.15,
			Colors: Palette{Hex("#ffffff"), Hex("#cfe3ff"), Hex("#fff4d6")},
			FadeIn: fadeDefault,
		},
		boundary: BoundaryWrap,
		motion:   MotionBallistic,
		twinkle:  0.6,
		spawn:    spawnStar,
	},
	EffectSpiralGalaxy: {
		defaults: EffectConfig{
			Count:         400,
			RotationSpeed: 0.012,
			Arms:          4,
			Colors:        Palette{Hex("#fff8e7"), Hex("#9db4ff"), Hex("#4b3a8c")},
			FadeIn:        fadeDefault,
		},
		motion: MotionOrbital,
		glow:   1.5,
		spawn:  spawnSpiralStar,
	},
	EffectQuantumCloud: {
		defaults: EffectConfig{
			Count:         220,
			RotationSpeed: 0.004,
			WaveAmplitude: 0.18,
			WaveFrequency: 0.04,
			Colors:        HueRamp(180, 280, 0.9, 0.65, 4),
			FadeIn:        fadeDefault,
		},
		motion:  MotionOrbital,
		twinkle: 0.8,
		spawn:   spawnCloudParticle,
	},
	EffectAccretionDisk: {
		defaults: EffectConfig{
			Count:         320,
			RotationSpeed: 0.02,
			Colors:        Palette{Hex("#ffffff"), Hex("#ffd27a"), Hex("#ff7b29"), Hex("#8a1c00")},
			FadeIn:        fadeDefault,
		},
		motion: MotionOrbital,
		glow:   1,
		spawn:  spawnDiskParticle,
	},
	EffectPulsar: {
		defaults: EffectConfig{
			Count:         160,
			Speed:         3,
			RotationSpeed: 0.05,
			Colors:        Palette{Hex("#e0f7ff"), Hex("#7fd4ff"), Hex("#2f6bff")},
			FadeIn:        fadeDefault,
		},
		boundary:  BoundaryNone,
		motion:    MotionBallistic,
		spin:      true,
		glow:      1,
		lifeAlpha: lifeAlphaLinear,
		setup:     setupPulsar,
	},
	EffectNebula: {
		defaults: EffectConfig{
			Count:  60,
			Speed:  0.2,
			Colors: Palette{Hex("#7b2ff7").WithAlpha(0.25), Hex("#f107a3").WithAlpha(0.2), Hex("#2d6cdf").WithAlpha(0.25)},
			FadeIn: 2 * fadeDefault,
		},
		boundary:  BoundaryWrap,
		motion:    MotionBallistic,
		lifeAlpha: lifeAlphaHump,
		spawn:     spawnNebulaPuff,
	},
	EffectCosmicDust: {
		defaults: EffectConfig{
			Count:    150,
			Speed:    0.6,
			Friction: 0.999,
			Colors:   Palette{Hex("#c9c3b5"), Hex("#a89f91"), Hex("#e8e2d0")},
			FadeIn:   fadeDefault,
		},
		boundary:  BoundaryWrap,
		gravity:   Vec2{0, 0.002},
		motion:    MotionBallistic,
		lifeAlpha: lifeAlphaHump,
		spawn:     spawnDust,
	},
	EffectExplosion: {
		defaults: EffectConfig{
			Count:    20,
			Speed:    1,
			Friction: 0.98,
			Bounce:   0.8,
			Colors:   HueRamp(30, 90, 1, 0.6, 6),
			Duration: 3 * time.Second,
		},
		boundary:  BoundaryBounce,
		gravity:   Vec2{0, 0.1},
		motion:    MotionBallistic,
		oneShot:   true,
		lifeAlpha: lifeAlphaLinear,
		fire:      fireExplosion,
	},
	EffectStellarWind: {
		defaults: EffectConfig{
			Count:  180,
			Speed:  1.5,
			Colors: Palette{Hex("#fffbe6"), Hex("#ffe08a"), Hex("#ffb347")},
			FadeIn: fadeDefault,
		},
		boundary:  BoundaryNone,
		motion:    MotionBallistic,
		lifeAlpha: lifeAlphaLinear,
		setup:     setupStellarWind,
	},
	EffectMagneticField: {
		defaults: EffectConfig{
			Count:    200,
			Speed:    0.5,
			Friction: 0.99,
			Colors:   HueRamp(200, 320, 0.85, 0.6, 5),
			FadeIn:   fadeDefault,
		},
		boundary:  BoundaryBounce,
		motion:    MotionForceField,
		lifeAlpha: lifeAlphaHump,
		setup:     setupMagneticField,
		spawn:     spawnScattered,
	},
	EffectBlackHole: {
		defaults: EffectConfig{
			Count:    250,
			Speed:    1.2,
			Friction: 0.998,
			Colors:   Palette{Hex("#ffffff"), Hex("#ffb36b"), Hex("#a13dff")},
			FadeIn:   fadeDefault,
		},
		boundary: BoundaryBounce,
		motion:   MotionForceField,
		capture:  0.06,
		setup:    setupBlackHole,
		spawn:    spawnInfalling,
	},
	EffectShockwave: {
		defaults: EffectConfig{
			Count:    3,
			Speed:    1,
			Colors:   Palette{Hex("#ffffff"), Hex("#8fd3ff"), Hex("#3a5cff")},
			Duration: 2 * time.Second,
		},
		rings: true,
	},
}

// polar places a particle at angle/dist around the container center.
func polar(e *particleEffect, angle, dist float64) (x, y float64) {
	c := e.env.center()
	return c.X + math.Cos(angle)*dist, c.Y + math.Sin(angle)*dist
}

func spawnStar(e *particleEffect) ParticleProps {
	c := &e.cfg
	return ParticleProps{
		X:      rand.Float64() * e.env.width,
		Y:      rand.Float64() * e.env.height,
		VX:     (rand.Float64() - 0.5) * c.Speed,
		VY:     (rand.Float64() - 0.5) * c.Speed,
		Radius: 0.5 + rand.Float64()*1.5,
		Color:  c.Colors.Pick(),
		Phase:  rand.Float64() * 2 * math.Pi,
	}
}

func spawnSpiralStar(e *particleEffect) ParticleProps {
	c := &e.cfg
	arm := e.spawnSeq % c.Arms
	e.spawnSeq++
	maxR := e.env.radius() * 0.9
	t := rand.Float64() * 4 * math.Pi
	dist := t/(4*math.Pi)*maxR + rand.Float64()*maxR*0.05
	angle := t + float64(arm)*2*math.Pi/float64(c.Arms) + (rand.Float64()-0.5)*0.5
	frac := dist / maxR
	x, y := polar(e, angle, dist)
	return ParticleProps{
		X:            x,
		Y:            y,
		Radius:       0.8 + rand.Float64()*0.7,
		Color:        c.Colors.At(frac).WithAlpha(math.Max(0.1, 0.9-frac*0.7)),
		Angle:        angle,
		AngularSpeed: c.RotationSpeed * (0.5 + rand.Float64()),
		Distance:     dist,
	}
}

func spawnCloudParticle(e *particleEffect) ParticleProps {
	c := &e.cfg
	dist := math.Sqrt(rand.Float64()) * e.env.radius() * 0.72
	angle := rand.Float64() * 2 * math.Pi
	dir := 1.0
	if rand.IntN(2) == 0 {
		dir = -1
	}
	x, y := polar(e, angle, dist)
	return ParticleProps{
		X:            x,
		Y:            y,
		Radius:       1 + rand.Float64()*1.5,
		Color:        c.Colors.Pick().WithAlpha(0.7),
		Angle:        angle,
		AngularSpeed: dir * c.RotationSpeed * (0.5 + rand.Float64()),
		Distance:     dist,
		Phase:        rand.Float64() * 2 * math.Pi,
	}
}

func spawnDiskParticle(e *particleEffect) ParticleProps {
	c := &e.cfg
	inner := e.env.radius() * 0.18
	outer := e.env.radius() * 0.76
	dist := inner + rand.Float64()*(outer-inner)
	angle := rand.Float64() * 2 * math.Pi
	x, y := polar(e, angle, dist)
	return ParticleProps{
		X:      x,
		Y:      y,
		Radius: 0.8 + rand.Float64()*1.2,
		Color:  c.Colors.At((dist - inner) / (outer - inner)),
		Angle:  angle,
		// Inner orbits run faster.
		AngularSpeed: c.RotationSpeed * math.Sqrt(inner/dist),
		Distance:     dist,
	}
}

func spawnNebulaPuff(e *particleEffect) ParticleProps {
	c := &e.cfg
	return ParticleProps{
		X:      rand.Float64() * e.env.width,
		Y:      rand.Float64() * e.env.height,
		VX:     (rand.Float64() - 0.5) * c.Speed,
		VY:     (rand.Float64() - 0.5) * c.Speed,
		Radius: 6 + rand.Float64()*18,
		Color:  c.Colors.Pick(),
		Decay:  0.001 + rand.Float64()*0.002,
	}
}

func spawnDust(e *particleEffect) ParticleProps {
	c := &e.cfg
	angle := rand.Float64() * 2 * math.Pi
	v := c.Speed * (0.3 + rand.Float64()*0.7)
	return ParticleProps{
		X:      rand.Float64() * e.env.width,
		Y:      rand.Float64() * e.env.height,
		VX:     math.Cos(angle) * v,
		VY:     math.Sin(angle) * v,
		Radius: 0.5 + rand.Float64(),
		Color:  c.Colors.Pick(),
		Decay:  0.003 + rand.Float64()*0.003,
	}
}

func spawnScattered(e *particleEffect) ParticleProps {
	c := &e.cfg
	return ParticleProps{
		X:      rand.Float64() * e.env.width,
		Y:      rand.Float64() * e.env.height,
		VX:     (rand.Float64() - 0.5) * c.Speed,
		VY:     (rand.Float64() - 0.5) * c.Speed,
		Radius: 1 + rand.Float64(),
		Color:  c.Colors.Pick(),
		Decay:  0.002 + rand.Float64()*0.003,
	}
}

// spawnInfalling places a particle in the outer disk on a roughly
// tangential path so the attractor bends it into a decaying orbit.
func spawnInfalling(e *particleEffect) ParticleProps {
	c := &e.cfg
	dist := e.env.radius() * (0.55 + rand.Float64()*0.4)
	angle := rand.Float64() * 2 * math.Pi
	x, y := polar(e, angle, dist)
	v := c.Speed * (0.7 + rand.Float64()*0.6)
	return ParticleProps{
		X:      x,
		Y:      y,
		VX:     -math.Sin(angle) * v,
		VY:     math.Cos(angle) * v,
		Radius: 0.8 + rand.Float64()*1.2,
		Color:  c.Colors.Pick(),
		Mass:   0.5 + rand.Float64(),
	}
}

func setupBlackHole(e *particleEffect) {
	c := e.env.center()
	e.field.AddForce(Force{X: c.X, Y: c.Y, Strength: 4, Radius: e.env.radius() * 1.4, Kind: ForceAttract})
}

func setupMagneticField(e *particleEffect) {
	w, h := e.env.width, e.env.height
	r := e.env.radius() * 1.2
	e.field.AddForce(Force{X: w * 0.3, Y: h / 2, Strength: 3, Radius: r, Kind: ForceAttract})
	e.field.AddForce(Force{X: w * 0.7, Y: h / 2, Strength: 3, Radius: r, Kind: ForceRepel})
}

// emitterRate is the emissions per second that keep count particles alive
// at the given per-frame decay.
func emitterRate(count int, decay float64) float64 {
	return float64(count) * decay * 60
}

func setupPulsar(e *particleEffect) {
	c := e.env.center()
	const decay = 0.015
	for _, angle := range []float64{0, math.Pi} {
		e.emitters = append(e.emitters, NewEmitter(EmitterConfig{
			X:      c.X,
			Y:      c.Y,
			Rate:   emitterRate(e.cfg.Count, decay) / 2,
			Angle:  angle,
			Spread: 0.15,
			Speed:  e.cfg.Speed,
			Decay:  decay,
			Size:   1,
			Colors: e.cfg.Colors,
		}))
	}
}

func setupStellarWind(e *particleEffect) {
	c := e.env.center()
	const decay = 0.008
	e.emitters = append(e.emitters, NewEmitter(EmitterConfig{
		X:      c.X,
		Y:      c.Y,
		Rate:   emitterRate(e.cfg.Count, decay),
		Speed:  e.cfg.Speed,
		Decay:  decay,
		Size:   0.5,
		Colors: e.cfg.Colors,
	}))
}

func fireExplosion(e *particleEffect, count int) {
	o := e.env.center()
	if e.cfg.Origin != nil {
		o = *e.cfg.Origin
	}
	speed := Range{2 * e.cfg.Speed, 5 * e.cfg.Speed}
	Burst(e.env.pool, e.field, o.X, o.Y, count, speed, Range{0.02, 0.03}, e.cfg.Colors)
}
