package stardust

import (
	"math"
	"math/rand/v2"
)

// Particle is a transient point-mass simulation record. Particles are owned
// by a ParticlePool and borrowed by at most one ParticleField while in use.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	Color  Color
	// Life is the remaining life in [0, 1]. The particle expires at 0.
	Life float64
	// Decay is subtracted from Life once per nominal frame.
	Decay float64
	Mass  float64

	// Orbital state, used by MotionOrbital fields.
	Angle        float64 // radians
	AngularSpeed float64 // radians per nominal frame
	Distance     float64 // base orbit radius
	Phase        float64 // wave phase offset

	inUse      bool
	seq        uint64 // acquisition order, for steal-oldest
	poolIndex  int    // slot in the pool's active slice
	owner      *ParticleField
	fieldIndex int // slot in the owner's particle slice
}

// InUse reports whether the particle is currently checked out of its pool.
func (p *Particle) InUse() bool {
	return p.inUse
}

// Alive reports whether the particle still has life left.
func (p *Particle) Alive() bool {
	return p.Life > 0
}

// ParticleProps initializes a particle on Acquire. Zero fields take defaults:
// Radius 1, Life 1, Mass 1, Color white.
type ParticleProps struct {
	X, Y         float64
	VX, VY       float64
	Radius       float64
	Color        Color
	Life         float64
	Decay        float64
	Mass         float64
	Angle        float64
	AngularSpeed float64
	Distance     float64
	Phase        float64
}

// reset overwrites every simulation field of p from props.
func (p *Particle) reset(props ParticleProps) {
	p.X, p.Y = props.X, props.Y
	p.VX, p.VY = props.VX, props.VY
	p.Radius = props.Radius
	if p.Radius == 0 {
		p.Radius = 1
	}
	p.Color = props.Color
	if p.Color == (Color{}) {
		p.Color = ColorWhite
	}
	p.Life = props.Life
	if p.Life == 0 {
		p.Life = 1
	}
	p.Decay = props.Decay
	p.Mass = props.Mass
	if p.Mass == 0 {
		p.Mass = 1
	}
	p.Angle = props.Angle
	p.AngularSpeed = props.AngularSpeed
	p.Distance = props.Distance
	p.Phase = props.Phase
}

// Bounds returns the particle's axis-aligned footprint, padded by pad pixels
// on every side.
func (p *Particle) Bounds(pad float64) Rect {
	r := p.Radius + pad
	return Rect{X: p.X - r, Y: p.Y - r, Width: 2 * r, Height: 2 * r}
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Random returns a random float64 in [Min, Max].
func (r Range) Random() float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}

// Lerp returns the value at fraction t between Min and Max.
func (r Range) Lerp(t float64) float64 {
	return lerp(r.Min, r.Max, t)
}
