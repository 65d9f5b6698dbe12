package host

import "log/slog"

type HostOption func(*hostImpl)

// WithSink wires the capture sink that receives buffer lifecycle events.
//
// Parameters:
//   - sink: the sink to notify
//
// Returns:
//   - HostOption: the option to apply
func WithSink(sink CaptureSink) HostOption {
	return func(h *hostImpl) {
		h.sink = sink
	}
}

// WithWindowSize sets the dimensions of the surface window.
//
// Parameters:
//   - width: window width in pixels
//   - height: window height in pixels
//
// Returns:
//   - HostOption: the option to apply
func WithWindowSize(width, height int) HostOption {
	return func(h *hostImpl) {
		if width > 0 && height > 0 {
			h.width = width
			h.height = height
		}
	}
}

// WithWindowTitle sets the surface window title.
//
// Parameters:
//   - title: the title string
//
// Returns:
//   - HostOption: the option to apply
func WithWindowTitle(title string) HostOption {
	return func(h *hostImpl) {
		h.title = title
	}
}

// WithVisibleWindow shows the surface window instead of keeping it hidden.
//
// Returns:
//   - HostOption: the option to apply
func WithVisibleWindow() HostOption {
	return func(h *hostImpl) {
		h.visible = true
	}
}

// WithLogger sets the logger for host diagnostics.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - HostOption: the option to apply
func WithLogger(logger *slog.Logger) HostOption {
	return func(h *hostImpl) {
		if logger != nil {
			h.logger = logger
		}
	}
}
