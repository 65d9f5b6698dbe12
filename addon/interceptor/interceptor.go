package interceptor

import (
	"log/slog"
	"sync"

	"github.com/artryazanov/reshade-wide-capture-addon/common"
)

// Scanner receives the final contents of a buffer when its CPU mapping ends.
// Implemented by the camera detector.
type Scanner interface {
	// OnScanBuffer ingests a buffer observed at unmap time. The data slice is
	// borrowed and only valid for the duration of the call.
	//
	// Parameters:
	//   - handle: the GPU resource handle the buffer belongs to
	//   - data: the final buffer contents
	OnScanBuffer(handle uint64, data []byte)
}

// Interceptor tracks GPU buffers currently mapped for CPU access and forwards
// their final contents downstream on unmap. It holds no matrix logic.
//
// All methods are safe for concurrent use.
type Interceptor interface {
	// OnMapBuffer records the mapped view for a resource. The view must stay
	// valid until the matching OnUnmapBuffer call, per the capture layer's
	// contract. A nil or empty view is ignored.
	//
	// Parameters:
	//   - handle: the GPU resource handle being mapped
	//   - data: the CPU-visible view of the mapped buffer
	OnMapBuffer(handle uint64, data []byte)

	// OnUnmapBuffer removes the ledger entry for a resource and, if one was
	// present and large enough to hold a matrix, forwards its contents to the
	// scanner. Unknown handles are silently ignored: a map/unmap pair may
	// legitimately not have been observed.
	//
	// Parameters:
	//   - handle: the GPU resource handle being unmapped
	OnUnmapBuffer(handle uint64)

	// MappedCount returns the number of in-flight mappings in the ledger.
	//
	// Returns:
	//   - int: the current ledger size
	MappedCount() int
}

type interceptorImpl struct {
	mu *sync.Mutex

	ledger         map[uint64][]byte
	minForwardSize int

	scanner Scanner
	logger  *slog.Logger
}

// Compile-time interface compliance check
var _ Interceptor = &interceptorImpl{}

// NewInterceptor creates a new buffer interceptor. Buffers must exceed 64
// bytes at unmap to be forwarded; use WithMinForwardSize to change that.
//
// Parameters:
//   - options: functional options to configure the interceptor
//
// Returns:
//   - Interceptor: the newly created interceptor
func NewInterceptor(options ...InterceptorOption) Interceptor {
	i := &interceptorImpl{
		mu:             &sync.Mutex{},
		ledger:         make(map[uint64][]byte),
		minForwardSize: 64,
		logger:         common.NopLogger(),
	}
	for _, option := range options {
		option(i)
	}
	return i
}

func (i *interceptorImpl) OnMapBuffer(handle uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	i.mu.Lock()
	i.ledger[handle] = data
	i.mu.Unlock()
}

func (i *interceptorImpl) OnUnmapBuffer(handle uint64) {
	i.mu.Lock()
	data, ok := i.ledger[handle]
	if ok {
		delete(i.ledger, handle)
	}
	i.mu.Unlock()

	// Forward outside the ledger lock; the scan runs under the detector's
	// own mutex and may take a while on larger buffers.
	if ok && len(data) > i.minForwardSize && i.scanner != nil {
		i.logger.Debug("forwarding unmapped buffer", "handle", handle, "size", len(data))
		i.scanner.OnScanBuffer(handle, data)
	}
}

func (i *interceptorImpl) MappedCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ledger)
}
