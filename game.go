package stardust

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig holds optional settings for Run.
type RunConfig struct {
	// Title sets the window title.
	Title string
	// Width and Height set the window and logical screen size. Default
	// 800x600.
	Width, Height int
	// ShowStats draws the stats overlay in the top-left corner.
	ShowStats bool
	// ClearColor fills the screen before the effect canvases are drawn.
	ClearColor Color
	// ScreenshotDir receives captures queued with Game.Screenshot.
	// Default DefaultScreenshotDir.
	ScreenshotDir string
	// Update, if set, is called once per frame before the engine ticks.
	// Returning an error ends the run loop with that error.
	Update func() error
}

func (c RunConfig) withDefaults() RunConfig {
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = DefaultScreenshotDir
	}
	return c
}

// Game wraps an Engine as an ebiten.Game. Run uses it; hosts that own their
// own ebiten.Game can embed it or call its methods directly.
type Game struct {
	engine  *Engine
	config  RunConfig
	overlay *StatsOverlay
	shots   []string
}

// NewGame creates a Game driving engine.
func NewGame(engine *Engine, cfg RunConfig) *Game {
	cfg = cfg.withDefaults()
	g := &Game{engine: engine, config: cfg}
	if cfg.ShowStats {
		g.overlay = NewStatsOverlay(engine)
	}
	return g
}

// Update runs the user callback, then ticks the engine.
func (g *Game) Update() error {
	if g.config.Update != nil {
		if err := g.config.Update(); err != nil {
			return err
		}
	}
	g.engine.Tick()
	if g.overlay != nil {
		g.overlay.Update()
	}
	return nil
}

// Draw blits every live handle's canvas at its container position, scaled
// back up from the canvas backing scale.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.config.ClearColor.A > 0 {
		screen.Fill(g.config.ClearColor.toRGBA())
	} else {
		screen.Fill(color.Transparent)
	}
	DrawHandles(screen, g.engine.Handles())
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
	g.flushScreenshots(screen)
}

// DrawHandles draws the canvas of every handle backed by an ImageSurface.
func DrawHandles(screen *ebiten.Image, handles []*Handle) {
	for _, h := range handles {
		is, ok := h.Canvas().(*ImageSurface)
		if !ok || !h.Active() {
			continue
		}
		c := h.Container()
		is.DrawScaled(screen, float64(c.X), float64(c.Y), 1/h.Scale())
	}
}

// Layout returns the configured screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.config.Width, g.config.Height
}

// Run opens a window and drives engine until the window closes or the
// Update callback returns an error. The engine is closed on return.
func Run(engine *Engine, cfg RunConfig) error {
	if engine == nil {
		return fmt.Errorf("run: nil engine: %w", ErrEngineClosed)
	}
	g := NewGame(engine, cfg)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(g.config.Width, g.config.Height)
	defer engine.Close()
	return ebiten.RunGame(g)
}
