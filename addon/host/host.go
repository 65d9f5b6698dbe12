package host

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/artryazanov/reshade-wide-capture-addon/common"
)

// CaptureSink receives the buffer lifecycle events a capture layer observes.
// The map view passed to OnMapBuffer stays valid until the matching
// OnUnmapBuffer returns.
type CaptureSink interface {
	// OnMapBuffer is called when a buffer is mapped for CPU writes.
	OnMapBuffer(handle uint64, data []byte)

	// OnUnmapBuffer is called just before mapped contents are committed to
	// the GPU.
	OnUnmapBuffer(handle uint64)

	// OnUpdateBuffer is called for direct full-buffer writes.
	OnUpdateBuffer(handle uint64, data []byte)
}

// Host is a reference capture layer: a real WebGPU device whose constant
// buffer traffic is mirrored to a CaptureSink the way a graphics API hook
// would see it. Applications use it to exercise the detection pipeline
// against actual GPU uploads.
//
// Buffer handles start at 1; 0 is never issued.
type Host interface {
	// CreateConstantBuffer allocates a uniform buffer on the device.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - size: buffer size in bytes
	//
	// Returns:
	//   - uint64: the handle identifying the buffer to later calls
	//   - error: error if the device rejects the allocation
	CreateConstantBuffer(label string, size uint64) (uint64, error)

	// UpdateBuffer writes data to a buffer through the queue and reports the
	// write to the sink.
	//
	// Parameters:
	//   - handle: the buffer to write
	//   - data: the bytes to upload, at most the buffer size
	//
	// Returns:
	//   - error: error if the handle is unknown or data oversized
	UpdateBuffer(handle uint64, data []byte) error

	// MapWriteBuffer opens a CPU-visible staging mapping for a buffer and
	// reports the mapped view to the sink. The caller writes through the
	// returned slice, then commits with UnmapBuffer.
	//
	// Parameters:
	//   - handle: the buffer to map
	//
	// Returns:
	//   - []byte: the writable mapped view
	//   - error: error if the handle is unknown or already mapped
	MapWriteBuffer(handle uint64) ([]byte, error)

	// UnmapBuffer notifies the sink of the final mapped contents, unmaps the
	// staging memory and copies it into the target buffer on the GPU.
	//
	// Parameters:
	//   - handle: the buffer to unmap
	//
	// Returns:
	//   - error: error if the handle has no open mapping or the copy fails
	UnmapBuffer(handle uint64) error

	// Poll pumps window events and device callbacks once.
	//
	// Returns:
	//   - bool: false once the window asked to close
	Poll() bool

	// Close releases all buffers, the device and the window.
	//
	// Returns:
	//   - error: always nil, reserved for future teardown failures
	Close() error
}

type hostBuffer struct {
	buf  *wgpu.Buffer
	size uint64
}

type hostImpl struct {
	mu *sync.Mutex

	window  *surfaceWindow
	surface *wgpu.Surface
	device  *wgpu.Device
	queue   *wgpu.Queue

	buffers    map[uint64]*hostBuffer
	staging    map[uint64]*wgpu.Buffer
	nextHandle uint64

	sink   CaptureSink
	logger *slog.Logger

	width, height int
	title         string
	visible       bool
}

// Ensure hostImpl implements Host.
var _ Host = &hostImpl{}

// NewHost creates a WebGPU device behind a (by default hidden) GLFW window
// and wires its buffer traffic to the configured sink.
//
// Parameters:
//   - options: functional options to configure the host
//
// Returns:
//   - Host: the initialized host
//   - error: error if window, adapter or device creation fails
func NewHost(options ...HostOption) (Host, error) {
	h := &hostImpl{
		mu:         &sync.Mutex{},
		buffers:    make(map[uint64]*hostBuffer),
		staging:    make(map[uint64]*wgpu.Buffer),
		nextHandle: 1,
		logger:     common.NopLogger(),
		width:      640,
		height:     480,
		title:      "capture host",
	}
	for _, option := range options {
		option(h)
	}

	win, err := newSurfaceWindow(h.width, h.height, h.title, h.visible)
	if err != nil {
		return nil, err
	}
	h.window = win

	instance := wgpu.CreateInstance(nil)
	h.surface = instance.CreateSurface(win.surfaceDescriptor())

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: h.surface,
	})
	if err != nil {
		win.close()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Capture Host Device",
	})
	if err != nil {
		win.close()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	h.device = device
	h.queue = device.GetQueue()

	h.logger.Info("capture host ready", "width", h.width, "height", h.height, "visible", h.visible)
	return h, nil
}

func (h *hostImpl) CreateConstantBuffer(label string, size uint64) (uint64, error) {
	buf, err := h.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	handle := h.nextHandle
	h.nextHandle++
	h.buffers[handle] = &hostBuffer{buf: buf, size: size}
	h.logger.Debug("constant buffer created", "handle", handle, "label", label, "size", size)
	return handle, nil
}

func (h *hostImpl) UpdateBuffer(handle uint64, data []byte) error {
	h.mu.Lock()
	entry, ok := h.buffers[handle]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown buffer handle %d", handle)
	}
	if uint64(len(data)) > entry.size {
		return fmt.Errorf("write of %d bytes exceeds buffer %d size %d", len(data), handle, entry.size)
	}

	h.queue.WriteBuffer(entry.buf, 0, data)
	if h.sink != nil {
		h.sink.OnUpdateBuffer(handle, data)
	}
	return nil
}

func (h *hostImpl) MapWriteBuffer(handle uint64) ([]byte, error) {
	h.mu.Lock()
	entry, ok := h.buffers[handle]
	if !ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("unknown buffer handle %d", handle)
	}
	if _, open := h.staging[handle]; open {
		h.mu.Unlock()
		return nil, fmt.Errorf("buffer %d is already mapped", handle)
	}
	h.mu.Unlock()

	// MappedAtCreation gives an immediately writable staging allocation
	// without a map-async round trip.
	staging, err := h.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "staging",
		Size:             entry.size,
		Usage:            wgpu.BufferUsageMapWrite | wgpu.BufferUsageCopySrc,
		MappedAtCreation: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer for %d: %w", handle, err)
	}
	view := staging.GetMappedRange(0, uint(entry.size))

	h.mu.Lock()
	h.staging[handle] = staging
	h.mu.Unlock()

	if h.sink != nil {
		h.sink.OnMapBuffer(handle, view)
	}
	return view, nil
}

func (h *hostImpl) UnmapBuffer(handle uint64) error {
	h.mu.Lock()
	staging, open := h.staging[handle]
	entry := h.buffers[handle]
	delete(h.staging, handle)
	h.mu.Unlock()
	if !open || entry == nil {
		return fmt.Errorf("buffer %d has no open mapping", handle)
	}

	// The sink reads the final contents while the view is still valid, then
	// the staging memory is committed and copied to the real buffer.
	if h.sink != nil {
		h.sink.OnUnmapBuffer(handle)
	}
	if err := staging.Unmap(); err != nil {
		staging.Release()
		return fmt.Errorf("failed to unmap staging for %d: %w", handle, err)
	}

	encoder, err := h.device.CreateCommandEncoder(nil)
	if err != nil {
		staging.Release()
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	if err := encoder.CopyBufferToBuffer(staging, 0, entry.buf, 0, entry.size); err != nil {
		encoder.Release()
		staging.Release()
		return fmt.Errorf("failed to encode copy for %d: %w", handle, err)
	}
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		staging.Release()
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	h.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	staging.Release()
	return nil
}

func (h *hostImpl) Poll() bool {
	h.window.poll()
	h.device.Poll(false, nil)
	return !h.window.shouldClose()
}

func (h *hostImpl) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for handle, staging := range h.staging {
		staging.Release()
		delete(h.staging, handle)
	}
	for handle, entry := range h.buffers {
		entry.buf.Release()
		delete(h.buffers, handle)
	}
	h.queue.Release()
	h.device.Release()
	h.surface.Release()
	h.window.close()
	return nil
}
