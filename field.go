package stardust

import "math"

// Motion selects how a ParticleField integrates its particles.
type Motion uint8

const (
	// MotionBallistic applies gravity and friction, then integrates
	// position from velocity.
	MotionBallistic Motion = iota
	// MotionOrbital places particles on a pulsing circle around the field
	// center from their polar state.
	MotionOrbital
	// MotionForceField applies point attractors and repulsors, then
	// integrates ballistically.
	MotionForceField
)

// String returns the motion model name.
func (m Motion) String() string {
	switch m {
	case MotionBallistic:
		return "ballistic"
	case MotionOrbital:
		return "orbital"
	case MotionForceField:
		return "force-field"
	default:
		return "unknown"
	}
}

// Boundary selects what happens when a particle leaves the field bounds.
type Boundary uint8

const (
	BoundaryBounce Boundary = iota // reflect velocity, clamp position
	BoundaryWrap                   // re-enter from the opposite edge
	BoundaryNone                   // let particles leave
)

// ForceKind is the direction of a point force.
type ForceKind uint8

const (
	ForceAttract ForceKind = iota // pull toward the force position
	ForceRepel                    // push away from the force position
)

// Force is a point attractor or repulsor. Particles within Radius receive an
// impulse scaled by Strength * (1 - distance/Radius).
type Force struct {
	X, Y     float64
	Strength float64
	Radius   float64
	Kind     ForceKind
	Disabled bool
}

// FieldConfig controls a ParticleField. Zero values take the documented
// defaults.
type FieldConfig struct {
	Motion Motion
	// Width and Height are the field bounds in pixels. A zero size disables
	// boundary handling.
	Width, Height float64
	Boundary      Boundary
	// Gravity is added to velocity every nominal frame.
	Gravity Vec2
	// Friction multiplies velocity every nominal frame. Default 1 (none).
	Friction float64
	// Bounce is the restitution applied on wall contact. Default 0.8.
	Bounce float64
	// Center is the orbit center for MotionOrbital. Default: bounds center.
	Center *Vec2
	// WaveAmplitude and WaveFrequency modulate orbit radius:
	// r = Distance * (1 + WaveAmplitude * sin(WaveFrequency*t + Phase)).
	WaveAmplitude float64
	WaveFrequency float64
	// ImpulseScale scales force impulses. Default 0.1.
	ImpulseScale float64
}

func (c FieldConfig) withDefaults() FieldConfig {
	if c.Friction == 0 {
		c.Friction = 1
	}
	if c.Bounce == 0 {
		c.Bounce = 0.8
	}
	if c.ImpulseScale == 0 {
		c.ImpulseScale = 0.1
	}
	return c
}

// lifeEpsilon absorbs floating-point residue so a particle that has decayed
// by exactly its starting life reads as expired.
const lifeEpsilon = 1e-9

// ParticleField advances a set of borrowed particles one frame at a time.
// It never touches the pool: expired particles are handed back to the
// caller, which releases and replaces them.
type ParticleField struct {
	config    FieldConfig
	particles []*Particle
	forces    []*Force
	expired   []*Particle
	time      float64 // accumulated nominal frames
	onSteal   func(p *Particle)
}

// NewParticleField creates an empty field.
func NewParticleField(cfg FieldConfig) *ParticleField {
	return &ParticleField{config: cfg.withDefaults()}
}

// Config returns a pointer to the field's config for live tuning.
func (f *ParticleField) Config() *FieldConfig {
	return &f.config
}

// SetBounds resizes the field.
func (f *ParticleField) SetBounds(w, h float64) {
	f.config.Width, f.config.Height = w, h
}

// Center returns the orbit center.
func (f *ParticleField) Center() Vec2 {
	if f.config.Center != nil {
		return *f.config.Center
	}
	return Vec2{f.config.Width / 2, f.config.Height / 2}
}

// Time returns the number of nominal frames the field has been stepped.
func (f *ParticleField) Time() float64 {
	return f.time
}

// Add takes p into the field. A particle already owned by another field is
// moved, never shared.
func (f *ParticleField) Add(p *Particle) {
	if p == nil || p.owner == f {
		return
	}
	if p.owner != nil {
		p.owner.detach(p)
	}
	p.owner = f
	p.fieldIndex = len(f.particles)
	f.particles = append(f.particles, p)
}

// detach swap-removes p from the field.
func (f *ParticleField) detach(p *Particle) {
	i := p.fieldIndex
	last := len(f.particles) - 1
	if p.owner != f || i < 0 || i > last || f.particles[i] != p {
		return
	}
	if i != last {
		moved := f.particles[last]
		f.particles[i] = moved
		moved.fieldIndex = i
	}
	f.particles[last] = nil
	f.particles = f.particles[:last]
	p.owner = nil
	p.fieldIndex = -1
}

// OnSteal sets fn to run when the pool reclaims one of the field's particles
// at its cap, while the particle still holds its last position.
func (f *ParticleField) OnSteal(fn func(p *Particle)) {
	f.onSteal = fn
}

// Len returns the number of particles in the field.
func (f *ParticleField) Len() int {
	return len(f.particles)
}

// Particles returns the field's particles. The slice MUST NOT be mutated and
// is invalidated by the next Step, Add, Trim, or Drain.
func (f *ParticleField) Particles() []*Particle {
	return f.particles
}

// Trim removes particles beyond the first n and returns them so the caller
// can release them.
func (f *ParticleField) Trim(n int) []*Particle {
	if n < 0 {
		n = 0
	}
	if len(f.particles) <= n {
		return nil
	}
	out := make([]*Particle, 0, len(f.particles)-n)
	for len(f.particles) > n {
		p := f.particles[len(f.particles)-1]
		f.detach(p)
		out = append(out, p)
	}
	return out
}

// Drain removes every particle and returns them.
func (f *ParticleField) Drain() []*Particle {
	return f.Trim(0)
}

// AddForce registers a point force and returns it for live tuning.
func (f *ParticleField) AddForce(force Force) *Force {
	fc := &force
	f.forces = append(f.forces, fc)
	return fc
}

// RemoveForce unregisters fc.
func (f *ParticleField) RemoveForce(fc *Force) {
	for i, other := range f.forces {
		if other == fc {
			f.forces = append(f.forces[:i], f.forces[i+1:]...)
			return
		}
	}
}

// Forces returns the registered forces. The slice MUST NOT be mutated.
func (f *ParticleField) Forces() []*Force {
	return f.forces
}

// Step advances every particle by dt nominal frames and decays its life.
// Particles whose life reaches zero are removed from the field and returned;
// the returned slice is only valid until the next Step.
func (f *ParticleField) Step(dt float64) []*Particle {
	f.expired = f.expired[:0]
	if dt <= 0 {
		return f.expired
	}
	f.time += dt

	friction := math.Pow(f.config.Friction, dt)
	center := f.Center()

	i := 0
	for i < len(f.particles) {
		p := f.particles[i]

		switch f.config.Motion {
		case MotionOrbital:
			f.orbit(p, center, dt)
		default:
			if len(f.forces) > 0 {
				f.applyForces(p, dt)
			}
			f.integrate(p, friction, dt)
		}

		p.Life -= p.Decay * dt
		if p.Life <= lifeEpsilon {
			p.Life = 0
			// detach swaps the last particle into slot i; do not advance.
			f.detach(p)
			f.expired = append(f.expired, p)
			continue
		}
		i++
	}
	return f.expired
}

// integrate is the ballistic Euler step followed by boundary handling.
func (f *ParticleField) integrate(p *Particle, friction, dt float64) {
	p.VX += f.config.Gravity.X * dt
	p.VY += f.config.Gravity.Y * dt
	p.VX *= friction
	p.VY *= friction
	p.X += p.VX * dt
	p.Y += p.VY * dt
	f.collide(p)
}

// collide applies the boundary policy. Bounce reflects the velocity and then
// clamps, so one frame of overshoot cannot leave a particle outside.
func (f *ParticleField) collide(p *Particle) {
	w, h := f.config.Width, f.config.Height
	if w <= 0 || h <= 0 {
		return
	}
	switch f.config.Boundary {
	case BoundaryBounce:
		if p.X < 0 || p.X > w {
			p.VX *= -f.config.Bounce
			p.X = clamp(p.X, 0, w)
		}
		if p.Y < 0 || p.Y > h {
			p.VY *= -f.config.Bounce
			p.Y = clamp(p.Y, 0, h)
		}
	case BoundaryWrap:
		p.X = wrap(p.X, w)
		p.Y = wrap(p.Y, h)
	}
}

func wrap(v, size float64) float64 {
	if v >= 0 && v <= size {
		return v
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

// orbit derives the Cartesian position from polar state. Velocity is set to
// the frame's displacement so trails and dirty tracking see real motion.
func (f *ParticleField) orbit(p *Particle, center Vec2, dt float64) {
	p.Angle += p.AngularSpeed * dt
	r := p.Distance
	if f.config.WaveAmplitude != 0 {
		r *= 1 + f.config.WaveAmplitude*math.Sin(f.config.WaveFrequency*f.time+p.Phase)
	}
	x := center.X + math.Cos(p.Angle)*r
	y := center.Y + math.Sin(p.Angle)*r
	p.VX, p.VY = x-p.X, y-p.Y
	p.X, p.Y = x, y
}

// applyForces adds every in-range force impulse to p's velocity. A particle
// sitting exactly on a force has no direction to it and is skipped.
func (f *ParticleField) applyForces(p *Particle, dt float64) {
	mass := p.Mass
	if mass <= 0 {
		mass = 1
	}
	for _, fc := range f.forces {
		if fc.Disabled || fc.Radius <= 0 {
			continue
		}
		dx := fc.X - p.X
		dy := fc.Y - p.Y
		d := math.Hypot(dx, dy)
		if d == 0 || d >= fc.Radius {
			continue
		}
		intensity := (fc.Radius - d) / fc.Radius
		k := fc.Strength * intensity * f.config.ImpulseScale * dt / (d * mass)
		if fc.Kind == ForceRepel {
			k = -k
		}
		p.VX += dx * k
		p.VY += dy * k
	}
}
