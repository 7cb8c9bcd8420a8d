package stardust

import (
	"os"
	"runtime"
	"strings"
)

// DeviceInfo carries the capability hints used to pick an initial tier
// before any frame has been measured.
type DeviceInfo struct {
	Cores    int
	MemoryGB float64
}

// ProbeDevice reads the host's core count and total memory. Memory is zero
// on platforms where it cannot be determined.
func ProbeDevice() DeviceInfo {
	return DeviceInfo{
		Cores:    runtime.NumCPU(),
		MemoryGB: float64(totalMemoryBytes()) / (1 << 30),
	}
}

// DeviceTier estimates a tier from capability hints. Missing hints (zero
// cores or memory) estimate low.
func DeviceTier(info DeviceInfo) QualityTier {
	switch {
	case info.Cores >= 8 && info.MemoryGB >= 8:
		return QualityHigh
	case info.Cores >= 4 && info.MemoryGB >= 4:
		return QualityMedium
	default:
		return QualityLow
	}
}

// ReducedMotionEnv is the environment variable consulted by
// PrefersReducedMotion.
const ReducedMotionEnv = "STARDUST_REDUCED_MOTION"

// PrefersReducedMotion reports whether the user asked for reduced motion.
// The result is informational: the caller decides what to do with it.
func PrefersReducedMotion() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(ReducedMotionEnv))) {
	case "1", "true", "yes", "on", "reduce":
		return true
	}
	return false
}
