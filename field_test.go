package stardust

import (
	"math"
	"testing"
)

func addParticle(pool *ParticlePool, field *ParticleField, props ParticleProps) *Particle {
	p := pool.Acquire(props)
	field.Add(p)
	return p
}

func TestFieldDefaults(t *testing.T) {
	f := NewParticleField(FieldConfig{})
	cfg := f.Config()
	assertNear(t, "Friction", cfg.Friction, 1)
	assertNear(t, "Bounce", cfg.Bounce, 0.8)
	assertNear(t, "ImpulseScale", cfg.ImpulseScale, 0.1)
}

func TestBallisticGravityAndFriction(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Gravity: Vec2{0, 0.5}, Friction: 0.5})
	p := addParticle(pool, f, ParticleProps{X: 10, Y: 10, VX: 2})

	f.Step(1)
	assertNear(t, "VX", p.VX, 1)
	assertNear(t, "VY", p.VY, 0.25)
	assertNear(t, "X", p.X, 11)
	assertNear(t, "Y", p.Y, 10.25)
}

func TestFrictionScalesWithDT(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Friction: 0.5})
	p := addParticle(pool, f, ParticleProps{VX: 4})
	f.Step(2)
	assertNear(t, "VX", p.VX, 1)
	assertNear(t, "X", p.X, 2)
}

func TestBounceKeepsParticlesInside(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Width: 100, Height: 100, Boundary: BoundaryBounce})
	right := addParticle(pool, f, ParticleProps{X: 99, Y: 50, VX: 5})
	top := addParticle(pool, f, ParticleProps{X: 50, Y: 1, VY: -30})

	f.Step(1)
	assertNear(t, "right X", right.X, 100)
	assertNear(t, "right VX", right.VX, -4)
	assertNear(t, "top Y", top.Y, 0)
	assertNear(t, "top VY", top.VY, 24)

	for i := 0; i < 500; i++ {
		f.Step(1)
		for _, p := range f.Particles() {
			if p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 100 {
				t.Fatalf("frame %d: particle escaped to (%v, %v)", i, p.X, p.Y)
			}
		}
	}
}

func TestWrapReentersOppositeEdge(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Width: 100, Height: 100, Boundary: BoundaryWrap})
	p := addParticle(pool, f, ParticleProps{X: 99, Y: 2, VX: 5, VY: -5})

	f.Step(1)
	assertNear(t, "X", p.X, 4)
	assertNear(t, "Y", p.Y, 97)
	assertNear(t, "VX", p.VX, 5)
}

func TestBoundaryNoneLetsParticlesLeave(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Width: 100, Height: 100, Boundary: BoundaryNone})
	p := addParticle(pool, f, ParticleProps{X: 99, VX: 5})
	f.Step(1)
	assertNear(t, "X", p.X, 104)
}

func TestOrbitalPosition(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Motion: MotionOrbital, Width: 100, Height: 100})
	p := addParticle(pool, f, ParticleProps{Distance: 10, AngularSpeed: math.Pi / 2})

	f.Step(1)
	assertNear(t, "Angle", p.Angle, math.Pi/2)
	assertNear(t, "X", p.X, 50)
	assertNear(t, "Y", p.Y, 60)
	assertNear(t, "VY", p.VY, 60)
}

func TestOrbitalCustomCenter(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Motion: MotionOrbital, Center: &Vec2{5, 5}})
	p := addParticle(pool, f, ParticleProps{Distance: 3})
	f.Step(1)
	assertNear(t, "X", p.X, 8)
	assertNear(t, "Y", p.Y, 5)
}

func TestOrbitalWave(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{
		Motion:        MotionOrbital,
		Width:         100,
		Height:        100,
		WaveAmplitude: 0.5,
		WaveFrequency: math.Pi / 2,
	})
	p := addParticle(pool, f, ParticleProps{Distance: 10})

	f.Step(1) // sin(π/2) = 1: radius 15
	assertNear(t, "X", p.X, 65)
	assertNear(t, "Y", p.Y, 50)
}

func TestForceDirection(t *testing.T) {
	tests := []struct {
		name string
		kind ForceKind
		want float64
	}{
		{"attract", ForceAttract, 0.09},
		{"repel", ForceRepel, -0.09},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewParticlePool(PoolConfig{})
			f := NewParticleField(FieldConfig{Motion: MotionForceField})
			f.AddForce(Force{X: 50, Y: 50, Strength: 1, Radius: 100, Kind: tt.kind})
			p := addParticle(pool, f, ParticleProps{X: 40, Y: 50})

			f.Step(1)
			assertNear(t, "VX", p.VX, tt.want)
			assertNear(t, "VY", p.VY, 0)
			assertNear(t, "X", p.X, 40+tt.want)
		})
	}
}

func TestForceOutOfRangeOrDisabled(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Motion: MotionForceField})
	f.AddForce(Force{X: 0, Y: 0, Strength: 5, Radius: 10})
	off := f.AddForce(Force{X: 60, Y: 50, Strength: 5, Radius: 50})
	off.Disabled = true
	p := addParticle(pool, f, ParticleProps{X: 50, Y: 50})

	f.Step(1)
	assertNear(t, "VX", p.VX, 0)
	assertNear(t, "VY", p.VY, 0)

	f.RemoveForce(off)
	if len(f.Forces()) != 1 {
		t.Errorf("forces = %d, want 1", len(f.Forces()))
	}
}

// A particle sitting exactly on a force, or between two forces at the same
// point, must not pick up a NaN velocity.
func TestForceSingularities(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Motion: MotionForceField, Width: 100, Height: 100})
	f.AddForce(Force{X: 50, Y: 50, Strength: 3, Radius: 40, Kind: ForceAttract})
	f.AddForce(Force{X: 50, Y: 50, Strength: 3, Radius: 40, Kind: ForceRepel})
	on := addParticle(pool, f, ParticleProps{X: 50, Y: 50})
	near := addParticle(pool, f, ParticleProps{X: 45, Y: 50})

	for i := 0; i < 60; i++ {
		f.Step(1)
	}
	for _, p := range []*Particle{on, near} {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.VX) || math.IsNaN(p.VY) {
			t.Fatalf("NaN state: %+v", p)
		}
	}
	assertNear(t, "on-force X", on.X, 50)
	assertNear(t, "balanced VX", near.VX, 0)
}

func TestHeavyParticlesAccelerateLess(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Motion: MotionForceField})
	f.AddForce(Force{X: 50, Y: 50, Strength: 1, Radius: 100})
	light := addParticle(pool, f, ParticleProps{X: 40, Y: 50})
	heavy := addParticle(pool, f, ParticleProps{X: 40, Y: 50, Mass: 3})
	f.Step(1)
	assertNear(t, "heavy VX", heavy.VX, light.VX/3)
}

func TestStepExpiresAtZeroLife(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{})
	p := addParticle(pool, f, ParticleProps{Decay: 0.1})
	keep := addParticle(pool, f, ParticleProps{})

	for i := 1; i < 10; i++ {
		if out := f.Step(1); len(out) != 0 {
			t.Fatalf("frame %d: %d expired early", i, len(out))
		}
	}
	out := f.Step(1)
	if len(out) != 1 || out[0] != p {
		t.Fatalf("frame 10: expired = %v", out)
	}
	assertNear(t, "Life", p.Life, 0)
	if p.Alive() {
		t.Error("expired particle reports alive")
	}
	if f.Len() != 1 || f.Particles()[0] != keep {
		t.Errorf("field after expiry: len %d", f.Len())
	}
}

func TestStepNonPositiveDTIsNoOp(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{Gravity: Vec2{0, 1}})
	p := addParticle(pool, f, ParticleProps{X: 3, VX: 1, Decay: 1})

	for _, dt := range []float64{0, -1} {
		if out := f.Step(dt); len(out) != 0 {
			t.Errorf("Step(%v) expired %d", dt, len(out))
		}
	}
	assertNear(t, "X", p.X, 3)
	assertNear(t, "Life", p.Life, 1)
	assertNear(t, "Time", f.Time(), 0)
}

func TestTrimAndDrain(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	f := NewParticleField(FieldConfig{})
	for i := 0; i < 5; i++ {
		addParticle(pool, f, ParticleProps{X: float64(i)})
	}

	if out := f.Trim(5); out != nil {
		t.Errorf("Trim at size returned %d", len(out))
	}
	out := f.Trim(2)
	if len(out) != 3 || f.Len() != 2 {
		t.Fatalf("Trim(2): returned %d, len %d", len(out), f.Len())
	}
	pool.ReleaseMany(out)

	rest := f.Drain()
	if len(rest) != 2 || f.Len() != 0 {
		t.Errorf("Drain: returned %d, len %d", len(rest), f.Len())
	}
	pool.ReleaseMany(rest)
	if st := pool.Stats(); st.ActiveCount != 0 {
		t.Errorf("pool active after release = %d", st.ActiveCount)
	}
}

func TestAddMovesOwnership(t *testing.T) {
	pool := NewParticlePool(PoolConfig{})
	a := NewParticleField(FieldConfig{})
	b := NewParticleField(FieldConfig{})
	p := addParticle(pool, a, ParticleProps{})
	addParticle(pool, a, ParticleProps{})

	b.Add(p)
	b.Add(p)
	if a.Len() != 1 || b.Len() != 1 {
		t.Fatalf("lens = %d, %d, want 1, 1", a.Len(), b.Len())
	}
	if a.Particles()[0] == p {
		t.Error("particle still in its old field")
	}
}

func TestMotionString(t *testing.T) {
	tests := []struct {
		m    Motion
		want string
	}{
		{MotionBallistic, "ballistic"},
		{MotionOrbital, "orbital"},
		{MotionForceField, "force-field"},
		{Motion(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("Motion(%d).String() = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func BenchmarkFieldStep(b *testing.B) {
	pool := NewParticlePool(PoolConfig{InitialSize: 1000})
	f := NewParticleField(FieldConfig{Width: 800, Height: 600, Gravity: Vec2{0, 0.1}})
	for i := 0; i < 1000; i++ {
		addParticle(pool, f, ParticleProps{X: float64(i % 800), Y: 300, VX: 1, VY: -1})
	}
	b.ReportAllocs()
	for b.Loop() {
		f.Step(1)
	}
}
