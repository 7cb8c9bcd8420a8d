package stardust

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates one value from a start to an end over a duration measured
// in nominal frames. Call Update(dt) each frame and read Value.
type Tween struct {
	tw    *gween.Tween
	Value float64
	Done  bool
}

// NewTween creates a tween from → to over frames nominal frames using fn.
// A non-positive duration finishes immediately at to.
func NewTween(from, to, frames float64, fn ease.TweenFunc) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	if frames <= 0 {
		return &Tween{Value: to, Done: true}
	}
	return &Tween{
		tw:    gween.New(float32(from), float32(to), float32(frames), fn),
		Value: from,
	}
}

// Update advances the tween by dt nominal frames and returns the new value.
func (t *Tween) Update(dt float64) float64 {
	if t.Done || t.tw == nil {
		return t.Value
	}
	val, finished := t.tw.Update(float32(dt))
	t.Value = float64(val)
	t.Done = finished
	return t.Value
}

// Envelope is the opacity curve of an effect: a fade-in when it starts and
// a fade-out once released. An envelope with no fade-out ends the instant it
// is released.
type Envelope struct {
	in      *Tween
	out     *Tween
	fadeOut float64
	alpha   float64
}

// NewEnvelope creates an envelope with the given fade lengths in nominal
// frames.
func NewEnvelope(fadeIn, fadeOut float64) *Envelope {
	e := &Envelope{
		in:      NewTween(0, 1, fadeIn, ease.OutQuad),
		fadeOut: fadeOut,
	}
	e.alpha = e.in.Value
	return e
}

// Update advances the envelope and returns the current opacity.
func (e *Envelope) Update(dt float64) float64 {
	if e.out != nil {
		e.alpha = e.out.Update(dt)
		return e.alpha
	}
	e.alpha = e.in.Update(dt)
	return e.alpha
}

// Release starts the fade-out from the current opacity. Releasing twice has
// no further effect.
func (e *Envelope) Release() {
	if e.out != nil {
		return
	}
	e.out = NewTween(e.alpha, 0, e.fadeOut, ease.InQuad)
	if e.out.Done {
		e.alpha = 0
	}
}

// Releasing reports whether Release has been called.
func (e *Envelope) Releasing() bool {
	return e.out != nil
}

// Done reports whether the fade-out has finished.
func (e *Envelope) Done() bool {
	return e.out != nil && e.out.Done
}

// Alpha returns the current opacity.
func (e *Envelope) Alpha() float64 {
	return e.alpha
}
