package stardust

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// overlayRefresh is the number of updates between overlay redraws.
const overlayRefresh = 30

// StatsOverlay renders the engine's FPS, quality tier and pool counters.
// The text is refreshed about twice a second.
type StatsOverlay struct {
	engine *Engine
	image  *ebiten.Image
	ticks  int
	X, Y   float64
}

// NewStatsOverlay creates an overlay for engine.
func NewStatsOverlay(engine *Engine) *StatsOverlay {
	// 180x64 fits four lines of debug text.
	return &StatsOverlay{
		engine: engine,
		image:  ebiten.NewImage(180, 64),
		ticks:  overlayRefresh,
	}
}

// Text returns the overlay's current text.
func (o *StatsOverlay) Text() string {
	st := o.engine.Stats()
	tier := st.Quality.String()
	if st.Override {
		tier += " (pinned)"
	}
	return fmt.Sprintf("FPS: %d  TPS: %.1f\nQuality: %s\nEffects: %d  Particles: %d\nPool: %d free / %d total",
		st.FPS, ebiten.ActualTPS(), tier, st.Handles, st.Particles, st.Pool.PoolSize, st.Pool.TotalAllocated)
}

// Update redraws the overlay text when it is due.
func (o *StatsOverlay) Update() {
	o.ticks++
	if o.ticks < overlayRefresh {
		return
	}
	o.ticks = 0

	o.image.Clear()
	// Semi-transparent background for readability
	o.image.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.image, o.Text())
}

// Draw draws the overlay onto screen.
func (o *StatsOverlay) Draw(screen *ebiten.Image) {
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(o.X, o.Y)
	screen.DrawImage(o.image, &op)
}
