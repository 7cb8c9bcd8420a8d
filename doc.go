// Package stardust is a performance-adaptive particle animation engine for
// [Ebitengine].
//
// Stardust drives cosmic background effects (starfields, spiral galaxies,
// accretion disks, pulsars, explosions and more) from one explicit render
// loop, and scales their fidelity to the frame rate the host actually
// achieves.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	engine := stardust.NewEngine(stardust.EngineConfig{})
//	engine.Start(stardust.Container{ID: "sky", Width: 640, Height: 480},
//		stardust.EffectStarfield, stardust.EffectConfig{})
//	stardust.Run(engine, stardust.RunConfig{
//		Title: "Stars", Width: 640, Height: 480,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Engine.Tick] and [DrawHandles] directly:
//
//	func (g *Game) Update() error        { g.engine.Tick(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { stardust.DrawHandles(s, g.engine.Handles()) }
//
// # Adaptive quality
//
// A [PerformanceMonitor] averages the last 60 frame times and, every 120
// frames, moves between [QualityLow], [QualityMedium] and [QualityHigh]
// with hysteresis: below 30 FPS drops straight to low, 30 to 50 FPS drops
// high to medium, 55 FPS lifts low to medium, and 58 FPS lifts anything to
// high. Each tier maps to a particle multiplier and a canvas backing scale.
// [Engine.SetQualityOverride] pins a tier.
//
// # Particles
//
// Particles come from a shared [ParticlePool] and are stepped by a
// [ParticleField] under one of three motion models: ballistic (gravity,
// friction, wall bounce or wrap), orbital (polar motion around a center with
// an optional pulsing radius) or force-field (point attractors and
// repulsors). Steps are measured in nominal frames of 1/60 s.
//
// # Partial redraw
//
// Every effect paints through a [Compositor], which tracks the rectangles
// that changed, merges overlapping ones (collapsing to a single bounding box
// above ten), and clears and redraws only those regions.
//
// # Scheduling
//
// One [Scheduler] ticks every [Handle]. Handles can be paused, resumed and
// stopped; stopping is immediate and idempotent. Failures in one effect are
// logged and skip that effect for the frame without affecting the others.
// Lifecycle and quality events can be forwarded to an ECS world with the
// [Donburi] adapter in stardust/ecs.
//
// Diagnostics are written to [LogOutput] as "[stardust] ..." lines.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package stardust
