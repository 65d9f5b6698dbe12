package cubemap

import (
	"log/slog"

	"github.com/artryazanov/reshade-wide-capture-addon/addon/camera"
	"github.com/artryazanov/reshade-wide-capture-addon/addon/interceptor"
	"github.com/artryazanov/reshade-wide-capture-addon/addon/profiler"
)

type ManagerOption func(*managerImpl)

// WithController supplies a pre-built camera controller instead of the
// default one.
//
// Parameters:
//   - c: the controller to use
//
// Returns:
//   - ManagerOption: the option to apply
func WithController(c camera.Controller) ManagerOption {
	return func(m *managerImpl) {
		m.controller = c
	}
}

// WithInterceptor supplies a pre-built buffer interceptor. The caller is
// responsible for wiring its scanner.
//
// Parameters:
//   - i: the interceptor to use
//
// Returns:
//   - ManagerOption: the option to apply
func WithInterceptor(i interceptor.Interceptor) ManagerOption {
	return func(m *managerImpl) {
		m.icept = i
	}
}

// WithFaceSize fixes the edge length every face is rescaled to during
// assembly. Zero means use the front face's native width.
//
// Parameters:
//   - size: edge length in pixels
//
// Returns:
//   - ManagerOption: the option to apply
func WithFaceSize(size int) ManagerOption {
	return func(m *managerImpl) {
		if size > 0 {
			m.faceSize = size
		}
	}
}

// WithWorkers sets the worker pool size used for assembly and face saving.
//
// Parameters:
//   - workers: pool size, minimum 1
//
// Returns:
//   - ManagerOption: the option to apply
func WithWorkers(workers int) ManagerOption {
	return func(m *managerImpl) {
		if workers >= 1 {
			m.workers = workers
		}
	}
}

// WithProfiler attaches a scan-rate profiler, ticked on every buffer event.
//
// Parameters:
//   - p: the profiler to tick
//
// Returns:
//   - ManagerOption: the option to apply
func WithProfiler(p *profiler.Profiler) ManagerOption {
	return func(m *managerImpl) {
		m.prof = p
	}
}

// WithLogger sets the logger for face bookkeeping diagnostics.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ManagerOption: the option to apply
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *managerImpl) {
		if logger != nil {
			m.logger = logger
		}
	}
}
