package stardust

import (
	"math"
	"time"
)

// QualityTier is a discrete fidelity setting. Tiers are ordered:
// QualityLow < QualityMedium < QualityHigh. The zero value means "unset".
type QualityTier uint8

const (
	QualityLow QualityTier = iota + 1
	QualityMedium
	QualityHigh
)

// String returns the lowercase tier name.
func (q QualityTier) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return "unset"
	}
}

// QualitySettings are the scaling factors derived from a tier.
type QualitySettings struct {
	// ParticleMultiplier scales every effect's particle budget.
	ParticleMultiplier float64
	// CanvasScale scales the backing resolution of effect canvases.
	CanvasScale float64
}

var qualityLevels = [...]QualitySettings{
	QualityLow:    {ParticleMultiplier: 0.3, CanvasScale: 0.5},
	QualityMedium: {ParticleMultiplier: 0.6, CanvasScale: 0.75},
	QualityHigh:   {ParticleMultiplier: 1.0, CanvasScale: 1.0},
}

// Settings returns the fixed settings for q. Unset tiers resolve to high.
func (q QualityTier) Settings() QualitySettings {
	if q < QualityLow || q > QualityHigh {
		return qualityLevels[QualityHigh]
	}
	return qualityLevels[q]
}

// QualityThresholds are the FPS bands of the tier state machine. Upgrading
// needs a higher FPS than the one that caused the downgrade, so a frame rate
// hovering near a boundary does not flap between tiers.
type QualityThresholds struct {
	// Low: below this FPS, drop straight to QualityLow.
	Low int
	// Downgrade: below this FPS (and at or above Low), high drops to medium.
	Downgrade int
	// Recover: at or above this FPS, low climbs to medium.
	Recover int
	// Upgrade: at or above this FPS, any tier climbs to high.
	Upgrade int
}

// DefaultThresholds are the bands used when MonitorConfig leaves them zero.
var DefaultThresholds = QualityThresholds{Low: 30, Downgrade: 50, Recover: 55, Upgrade: 58}

// MonitorConfig controls a PerformanceMonitor. Zero values take the
// documented defaults.
type MonitorConfig struct {
	// SampleSize is the number of frame deltas averaged for FPS. Default 60.
	SampleSize int
	// AdjustEvery is the number of recorded frames between tier
	// re-evaluations. Default 120.
	AdjustEvery int
	// DisableAdaptive turns off automatic tier adjustment.
	DisableAdaptive bool
	// InitialTier is the tier before any measurement. Default QualityHigh.
	InitialTier QualityTier
	// Thresholds are the hysteresis bands. Zero value means DefaultThresholds.
	Thresholds QualityThresholds
	// OnQualityChange is called after every effective tier change.
	OnQualityChange func(tier QualityTier, settings QualitySettings)
	// Clock is the time source. Default SystemClock.
	Clock Clock
}

func (c MonitorConfig) withDefaults() MonitorConfig {
	if c.SampleSize <= 0 {
		c.SampleSize = 60
	}
	if c.AdjustEvery <= 0 {
		c.AdjustEvery = 120
	}
	if c.InitialTier == 0 {
		c.InitialTier = QualityHigh
	}
	if c.Thresholds == (QualityThresholds{}) {
		c.Thresholds = DefaultThresholds
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	return c
}

// MonitorStats is a snapshot of a PerformanceMonitor.
type MonitorStats struct {
	FPS          int
	Quality      QualityTier
	AvgFrameTime float64 // milliseconds
	FrameCount   int
	Monitoring   bool
	Override     bool
}

// PerformanceMonitor samples frame pacing and derives a quality tier. It has
// no timer of its own: the scheduler calls RecordFrame once per rendered
// frame.
type PerformanceMonitor struct {
	config     MonitorConfig
	samples    frameRing
	lastFrame  time.Time
	fps        int
	quality    QualityTier
	override   QualityTier
	frameCount int
	monitoring bool
}

// NewPerformanceMonitor creates a stopped monitor.
func NewPerformanceMonitor(cfg MonitorConfig) *PerformanceMonitor {
	cfg = cfg.withDefaults()
	return &PerformanceMonitor{
		config:  cfg,
		samples: newFrameRing(cfg.SampleSize),
		fps:     60,
		quality: cfg.InitialTier,
	}
}

// Start enables recording and resets the last-frame timestamp so the first
// delta does not include the idle time before Start.
func (m *PerformanceMonitor) Start() {
	m.monitoring = true
	m.lastFrame = m.config.Clock.Now()
}

// Stop disables recording. Samples are kept.
func (m *PerformanceMonitor) Stop() {
	m.monitoring = false
}

// IsMonitoring reports whether RecordFrame currently has any effect.
func (m *PerformanceMonitor) IsMonitoring() bool {
	return m.monitoring
}

// RecordFrame records the time since the previous frame. Call it exactly
// once per rendered frame.
func (m *PerformanceMonitor) RecordFrame() {
	if !m.monitoring {
		return
	}
	now := m.config.Clock.Now()
	delta := millis(now.Sub(m.lastFrame))
	m.lastFrame = now
	m.record(delta)
}

// RecordDelta records a frame that took ms milliseconds. It is the entry
// point for fixed-timestep drivers that do not read a clock.
func (m *PerformanceMonitor) RecordDelta(ms float64) {
	if !m.monitoring {
		return
	}
	m.record(ms)
}

func (m *PerformanceMonitor) record(ms float64) {
	m.samples.push(ms)
	m.frameCount++

	if avg := m.samples.average(); avg > 0 {
		m.fps = int(math.Round(1000 / avg))
	}

	if !m.config.DisableAdaptive && m.frameCount%m.config.AdjustEvery == 0 {
		m.AdjustQuality()
	}
}

// AdjustQuality re-evaluates the tier from the current FPS. It does nothing
// while a manual override is active.
func (m *PerformanceMonitor) AdjustQuality() {
	if m.override != 0 {
		return
	}
	th := m.config.Thresholds
	old := m.quality
	next := old

	switch {
	case m.fps < th.Low && old != QualityLow:
		next = QualityLow
	case m.fps < th.Downgrade && m.fps >= th.Low && old == QualityHigh:
		next = QualityMedium
	case m.fps >= th.Recover && old == QualityLow:
		next = QualityMedium
	case m.fps >= th.Upgrade && old != QualityHigh:
		next = QualityHigh
	}

	if next == old {
		return
	}
	m.quality = next
	logf("quality adjusted: %s → %s (fps %d)", old, next, m.fps)
	m.notify(next)
}

// SetOverride forces tier, bypassing automatic adjustment until
// ClearOverride is called.
func (m *PerformanceMonitor) SetOverride(tier QualityTier) {
	if tier < QualityLow || tier > QualityHigh {
		return
	}
	old := m.Quality()
	m.override = tier
	if tier != old {
		logf("quality override: %s → %s", old, tier)
		m.notify(tier)
	}
}

// ClearOverride returns control to automatic adjustment.
func (m *PerformanceMonitor) ClearOverride() {
	if m.override == 0 {
		return
	}
	old := m.override
	m.override = 0
	if m.quality != old {
		m.notify(m.quality)
	}
}

func (m *PerformanceMonitor) notify(tier QualityTier) {
	if m.config.OnQualityChange != nil {
		m.config.OnQualityChange(tier, tier.Settings())
	}
}

// FPS returns the rolling-average frame rate.
func (m *PerformanceMonitor) FPS() int {
	return m.fps
}

// Quality returns the effective tier (the override when one is set).
func (m *PerformanceMonitor) Quality() QualityTier {
	if m.override != 0 {
		return m.override
	}
	return m.quality
}

// QualitySettings returns the settings of the effective tier.
func (m *PerformanceMonitor) QualitySettings() QualitySettings {
	return m.Quality().Settings()
}

// Stats returns a snapshot of the monitor.
func (m *PerformanceMonitor) Stats() MonitorStats {
	return MonitorStats{
		FPS:          m.fps,
		Quality:      m.Quality(),
		AvgFrameTime: m.samples.average(),
		FrameCount:   m.frameCount,
		Monitoring:   m.monitoring,
		Override:     m.override != 0,
	}
}

// Reset clears samples and counters. The tier is kept.
func (m *PerformanceMonitor) Reset() {
	m.samples.reset()
	m.frameCount = 0
	m.fps = 60
	m.lastFrame = m.config.Clock.Now()
}

// frameRing is a fixed-capacity ring of frame deltas with a running sum.
type frameRing struct {
	buf  []float64
	head int
	n    int
	sum  float64
}

func newFrameRing(capacity int) frameRing {
	return frameRing{buf: make([]float64, capacity)}
}

// push appends v, evicting the oldest sample when full.
func (r *frameRing) push(v float64) {
	if r.n == len(r.buf) {
		r.sum -= r.buf[r.head]
	} else {
		r.n++
	}
	r.buf[r.head] = v
	r.sum += v
	r.head = (r.head + 1) % len(r.buf)
	// The running sum drifts after many evictions; resync once per lap.
	if r.head == 0 && r.n == len(r.buf) {
		r.sum = 0
		for _, s := range r.buf {
			r.sum += s
		}
	}
}

func (r *frameRing) len() int {
	return r.n
}

func (r *frameRing) average() float64 {
	if r.n == 0 {
		return 0
	}
	return r.sum / float64(r.n)
}

func (r *frameRing) reset() {
	r.head = 0
	r.n = 0
	r.sum = 0
}
