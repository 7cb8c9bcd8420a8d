package stardust

import (
	"math"
	"math/rand/v2"
)

// EmitterConfig controls how an Emitter spawns particles. Zero values take
// the documented defaults.
type EmitterConfig struct {
	// X and Y are the spawn position in field pixels.
	X, Y float64
	// Rate is the number of emissions per second. Zero emits only on Burst.
	Rate float64
	// Burst is the number of particles spawned per emission. Default 1.
	Burst int
	// Angle is the mean emission direction in radians.
	Angle float64
	// Spread is the full width of the emission cone in radians. Default 2π.
	Spread float64
	// Speed is the nominal speed in pixels per frame. Each particle gets
	// between half and all of it. Default 2.
	Speed float64
	// Life is the starting life of spawned particles. Default 1.
	Life float64
	// Decay is the per-frame life decay. Default 0.01.
	Decay float64
	// Size is the minimum particle radius; up to 2px are added. Default 2.
	Size float64
	// Colors are sampled per particle. Default white.
	Colors Palette
	// MaxAlive stops emission while the target field already holds this
	// many particles. Zero means no limit.
	MaxAlive int
}

func (c EmitterConfig) withDefaults() EmitterConfig {
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.Spread == 0 {
		c.Spread = 2 * math.Pi
	}
	if c.Speed == 0 {
		c.Speed = 2
	}
	if c.Life == 0 {
		c.Life = 1
	}
	if c.Decay == 0 {
		c.Decay = 0.01
	}
	if c.Size == 0 {
		c.Size = 2
	}
	return c
}

// Emitter spawns pooled particles into a field at a steady rate.
type Emitter struct {
	config    EmitterConfig
	emitAccum float64
	active    bool
}

// NewEmitter creates an active emitter.
func NewEmitter(cfg EmitterConfig) *Emitter {
	return &Emitter{config: cfg.withDefaults(), active: true}
}

// Start resumes emission.
func (e *Emitter) Start() {
	e.active = true
}

// Stop halts emission. Particles already spawned live out their life.
func (e *Emitter) Stop() {
	e.active = false
}

// IsActive reports whether the emitter is emitting.
func (e *Emitter) IsActive() bool {
	return e.active
}

// Config returns a pointer to the emitter's config for live tuning.
func (e *Emitter) Config() *EmitterConfig {
	return &e.config
}

// Update advances the emission clock by dt nominal frames and spawns every
// emission that came due. It returns the number of particles spawned.
func (e *Emitter) Update(dt float64, pool *ParticlePool, field *ParticleField) int {
	if !e.active || e.config.Rate <= 0 || dt <= 0 {
		return 0
	}
	e.emitAccum += e.config.Rate * dt / 60
	spawned := 0
	for e.emitAccum >= 1.0 {
		e.emitAccum -= 1.0
		for b := 0; b < e.config.Burst; b++ {
			if e.config.MaxAlive > 0 && field.Len() >= e.config.MaxAlive {
				// Drop the rest of the backlog rather than bursting later.
				e.emitAccum = 0
				return spawned
			}
			field.Add(pool.Acquire(e.spawnProps()))
			spawned++
		}
	}
	return spawned
}

func (e *Emitter) spawnProps() ParticleProps {
	c := &e.config
	angle := c.Angle + (rand.Float64()-0.5)*c.Spread
	speed := c.Speed * (0.5 + rand.Float64()*0.5)
	return ParticleProps{
		X:      c.X,
		Y:      c.Y,
		VX:     math.Cos(angle) * speed,
		VY:     math.Sin(angle) * speed,
		Radius: c.Size + rand.Float64()*2,
		Color:  c.Colors.Pick(),
		Life:   c.Life,
		Decay:  c.Decay,
	}
}

// Burst spawns count particles at (x, y) on evenly spaced headings, the
// shape of a one-shot explosion. It returns the spawned particles.
func Burst(pool *ParticlePool, field *ParticleField, x, y float64, count int, speed Range, decay Range, colors Palette) []*Particle {
	if count <= 0 {
		return nil
	}
	out := make([]*Particle, 0, count)
	for i := 0; i < count; i++ {
		angle := float64(i) / float64(count) * 2 * math.Pi
		v := speed.Random()
		p := pool.Acquire(ParticleProps{
			X:      x,
			Y:      y,
			VX:     math.Cos(angle) * v,
			VY:     math.Sin(angle) * v,
			Radius: 2 + rand.Float64()*3,
			Color:  colors.Pick(),
			Life:   1,
			Decay:  decay.Random(),
		})
		field.Add(p)
		out = append(out, p)
	}
	return out
}
