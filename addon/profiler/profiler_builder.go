package profiler

import (
	"log/slog"
	"time"
)

type ProfilerOption func(*Profiler)

// WithInterval sets how often the profiler emits a stats line.
//
// Parameters:
//   - interval: the minimum time between log lines
//
// Returns:
//   - ProfilerOption: a function that sets the interval
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogger sets the stats sink. Defaults to a silent logger.
//
// Parameters:
//   - logger: the logger to emit stats to
//
// Returns:
//   - ProfilerOption: a function that sets the logger
func WithLogger(logger *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}
