package camera

import "log/slog"

type ControllerOption func(*controllerImpl)

// WithLogger sets the diagnostic sink for the controller. The controller
// defaults to a silent logger; scan correctness never depends on the sink.
//
// Parameters:
//   - logger: the logger to emit diagnostics to
//
// Returns:
//   - ControllerOption: a function that sets the logger
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *controllerImpl) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFov sets the vertical field of view, in radians, of synthesized
// projection matrices.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - ControllerOption: a function that sets the field of view
func WithFov(fov float32) ControllerOption {
	return func(c *controllerImpl) {
		c.fov = fov
	}
}

// WithAspect sets the aspect ratio of synthesized projection matrices.
// Cube faces are square, so this defaults to 1.0.
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - ControllerOption: a function that sets the aspect ratio
func WithAspect(aspect float32) ControllerOption {
	return func(c *controllerImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near plane of synthesized projection matrices.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - ControllerOption: a function that sets the near plane
func WithNear(near float32) ControllerOption {
	return func(c *controllerImpl) {
		c.near = near
	}
}

// WithFar sets the far plane of synthesized projection matrices.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - ControllerOption: a function that sets the far plane
func WithFar(far float32) ControllerOption {
	return func(c *controllerImpl) {
		c.far = far
	}
}

// WithSampleRate sets how often a scan is eligible for verbose logging:
// roughly 1 in every rate scans. Defaults to 500. Values below 1 are ignored.
//
// Parameters:
//   - rate: the sampling divisor
//
// Returns:
//   - ControllerOption: a function that sets the sampling rate
func WithSampleRate(rate int) ControllerOption {
	return func(c *controllerImpl) {
		if rate >= 1 {
			c.sampleRate = rate
		}
	}
}
