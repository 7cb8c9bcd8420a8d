package stardust

import (
	"fmt"
	"io"
	"os"
	"time"
)

// LogOutput receives the package's diagnostic lines. Set it to io.Discard to
// silence them.
var LogOutput io.Writer = os.Stderr

// logf writes a single tagged diagnostic line.
func logf(format string, args ...any) {
	if LogOutput == nil {
		return
	}
	_, _ = fmt.Fprintf(LogOutput, "[stardust] "+format+"\n", args...)
}

// tickStats holds per-tick timing and work counters.
// Only populated when the scheduler runs in debug mode.
type tickStats struct {
	stepTime    time.Duration
	paintTime   time.Duration
	handleCount int
	particles   int
	regions     int
	failures    int
}

// debugLog prints timing and work stats for one tick.
func (s *Scheduler) debugLog(stats tickStats) {
	if !s.debug {
		return
	}
	logf("step: %v | paint: %v | total: %v",
		stats.stepTime, stats.paintTime, stats.stepTime+stats.paintTime)
	logf("handles: %d | particles: %d | regions: %d | failures: %d",
		stats.handleCount, stats.particles, stats.regions, stats.failures)
}

// debugMaxHandles is the running-handle count above which debug mode warns.
const debugMaxHandles = 64

func debugCheckHandleCount(s *Scheduler) {
	if len(s.handles) > debugMaxHandles {
		logf("warning: %d handles registered (threshold %d)", len(s.handles), debugMaxHandles)
	}
}
