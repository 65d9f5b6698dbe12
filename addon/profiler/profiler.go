package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/artryazanov/reshade-wide-capture-addon/common"
)

// Profiler tracks buffer-scan throughput and memory statistics for the addon.
// Outputs stats to the log at a configurable interval. Not safe for concurrent
// use; callers tick it from under their own lock.
type Profiler struct {
	scanCount      int
	detectedScans  int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	logger         *slog.Logger
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 5 seconds; logging defaults to silent.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: 5 * time.Second,
		logger:         common.NopLogger(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Tick should be called once per scanned buffer to track scan throughput.
// Logs statistics when the update interval has elapsed: scans per second, the
// share of scans that ran with a camera already identified, heap usage, and
// allocation rate.
//
// Parameters:
//   - cameraKnown: whether a camera buffer was identified at scan time
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(cameraKnown bool) bool {
	p.scanCount++
	if cameraKnown {
		p.detectedScans++
	}

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	scansPerSec := float64(p.scanCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap bytes. TotalAlloc: cumulative, tracks churn.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	p.logger.Info("scan profile",
		"scansPerSec", scansPerSec,
		"scans", p.scanCount,
		"withCamera", p.detectedScans,
		"heapMB", allocMB,
		"allocRateMBps", allocRateMB,
	)

	p.scanCount = 0
	p.detectedScans = 0
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
