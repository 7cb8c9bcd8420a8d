package stardust

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// budget eases an effect's particle count toward its tier-scaled target so a
// quality change thins or fills the field over a few frames instead of
// popping.
type budget struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
}

// budgetFrequency and budgetDamping give a critically damped settle in
// roughly a third of a second.
const (
	budgetFrequency = 6.0
	budgetDamping   = 1.0
)

func newBudget(initial float64) budget {
	return budget{
		spring: harmonica.NewSpring(harmonica.FPS(60), budgetFrequency, budgetDamping),
		pos:    initial,
		target: initial,
	}
}

// Retarget sets the count the budget eases toward.
func (b *budget) Retarget(n float64) {
	b.target = n
}

// Step advances the spring by dt nominal frames and returns the current
// whole-particle budget, never negative.
func (b *budget) Step(dt float64) int {
	steps := int(math.Ceil(dt))
	for i := 0; i < steps; i++ {
		b.pos, b.vel = b.spring.Update(b.pos, b.vel, b.target)
	}
	if math.Abs(b.pos-b.target) < 0.5 && math.Abs(b.vel) < 0.5 {
		b.pos, b.vel = b.target, 0
	}
	return max(0, int(math.Round(b.pos)))
}

// Settled reports whether the budget has reached its target.
func (b *budget) Settled() bool {
	return b.pos == b.target && b.vel == 0
}
