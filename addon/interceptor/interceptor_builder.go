package interceptor

import "log/slog"

type InterceptorOption func(*interceptorImpl)

// WithScanner sets the downstream scanner that receives unmapped buffer
// contents. Without one the interceptor only maintains its ledger.
//
// Parameters:
//   - scanner: the scan entry point to forward to
//
// Returns:
//   - InterceptorOption: a function that sets the scanner
func WithScanner(scanner Scanner) InterceptorOption {
	return func(i *interceptorImpl) {
		i.scanner = scanner
	}
}

// WithMinForwardSize sets the size, in bytes, a buffer must exceed at unmap to
// be forwarded. Defaults to 64, the size of a single 4x4 float matrix.
//
// Parameters:
//   - size: the exclusive lower size bound
//
// Returns:
//   - InterceptorOption: a function that sets the threshold
func WithMinForwardSize(size int) InterceptorOption {
	return func(i *interceptorImpl) {
		i.minForwardSize = size
	}
}

// WithLogger sets the diagnostic sink for the interceptor. Defaults to a
// silent logger.
//
// Parameters:
//   - logger: the logger to emit diagnostics to
//
// Returns:
//   - InterceptorOption: a function that sets the logger
func WithLogger(logger *slog.Logger) InterceptorOption {
	return func(i *interceptorImpl) {
		if logger != nil {
			i.logger = logger
		}
	}
}
