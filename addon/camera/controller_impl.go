package camera

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/artryazanov/reshade-wide-capture-addon/common"
)

const (
	// minScanSize rejects buffers too small to hold a 4x4 float matrix.
	minScanSize = 64
	// maxMappedScanSize caps buffers arriving through the mapped path;
	// mapped memory is assumed uncached and slow to read.
	maxMappedScanSize = 4096

	// noisyLogLimit caps verbose logging of the known noisy buffer size class
	// for the lifetime of the controller.
	noisyLogLimit = 5
	noisySizeMin  = 9000
	noisySizeMax  = 11000

	// dumpSizeMin/Max bound the one-shot full float dump to standard constant
	// buffer sizes (both exclusive).
	dumpSizeMin = 200
	dumpSizeMax = 2000
)

// bufferState is the cached snapshot of one scanned buffer, keyed by resource
// handle. Matrix offsets are float element indices; -1 means never matched.
type bufferState struct {
	data       []byte
	viewOffset int
	projOffset int
	isCamera   bool
}

type controllerImpl struct {
	mu *sync.Mutex

	cache        map[uint64]*bufferState
	cameraHandle uint64

	lastView [16]float32
	lastProj [16]float32

	isTransposed bool
	isRH         bool

	worldUp    [3]float32
	upDetected bool

	// Synthesized projection parameters used by GetModifiedBufferData.
	fov    float32
	aspect float32
	near   float32
	far    float32

	// Diagnostic sampling state, owned per instance.
	sampleRate    int
	scanCount     int
	noisyLogCount int
	dumpDone      bool

	logger *slog.Logger
}

// Compile-time interface compliance check
var _ Controller = &controllerImpl{}

// NewController creates a new camera detector/rewriter. Synthesized
// projections default to a 90 degree vertical field of view, aspect ratio 1.0,
// near plane 0.1 and far plane 1000.0; logging is silent unless configured.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerOption) Controller {
	c := &controllerImpl{
		mu:         &sync.Mutex{},
		cache:      make(map[uint64]*bufferState),
		worldUp:    [3]float32{0, 1, 0},
		fov:        float32(math.Pi / 2),
		aspect:     1.0,
		near:       0.1,
		far:        1000.0,
		sampleRate: 500,
		logger:     common.NopLogger(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *controllerImpl) OnUpdateBuffer(handle uint64, data []byte) {
	c.scanBuffer(handle, data, false)
}

func (c *controllerImpl) OnScanBuffer(handle uint64, data []byte) {
	c.scanBuffer(handle, data, true)
}

// scanBuffer is the shared ingestion path for both the mapped and direct
// update routes. It snapshots the buffer into the cache and walks it in
// 4-float-aligned windows looking for view and projection signatures.
func (c *controllerImpl) scanBuffer(handle uint64, data []byte, mapped bool) {
	size := len(data)
	if size < minScanSize {
		return
	}
	if mapped && size > maxMappedScanSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sampled := c.scanCount%c.sampleRate == 0
	c.scanCount++

	state, ok := c.cache[handle]
	if !ok {
		state = &bufferState{viewOffset: -1, projOffset: -1}
		c.cache[handle] = state
	}
	if len(state.data) != size {
		state.data = make([]byte, size)
	}
	copy(state.data, data)

	floats := common.Floats(state.data)
	floatCount := len(floats)

	// The ~10KB class updates every frame in some titles without ever being
	// the camera; cap its verbose logging for the process lifetime.
	noisy := size >= noisySizeMin && size < noisySizeMax
	verbose := false
	if sampled {
		if !noisy {
			verbose = true
		} else if c.noisyLogCount < noisyLogLimit {
			verbose = true
			c.noisyLogCount++
		}
	}

	if verbose && c.cameraHandle == 0 {
		c.logger.Debug("scanning buffer",
			"handle", handle, "size", size, "mapped", mapped,
			"f0", floats[0], "f1", floats[1], "f2", floats[2], "f3", floats[3])
	}

	if c.cameraHandle == 0 && !c.dumpDone && size > dumpSizeMin && size < dumpSizeMax {
		c.dumpDone = true
		c.dumpFloats(handle, size, floats)
	}

	for i := 0; i+16 <= floatCount; i += 4 {
		matched, transposed := IsViewMatrix(floats[i:])
		if !matched {
			continue
		}
		state.viewOffset = i
		state.isCamera = true

		c.logger.Info("found view matrix", "handle", handle, "offset", i, "transposed", transposed)

		c.isTransposed = transposed
		copy(c.lastView[:], floats[i:i+16])
		if transposed {
			common.Transpose4(c.lastView[:], c.lastView[:])
		}

		if !c.upDetected {
			c.detectWorldUp()
		}

		c.cameraHandle = handle
		break
	}

	for i := 0; i+16 <= floatCount; i += 4 {
		if !IsProjectionMatrix(floats[i:]) {
			continue
		}
		state.projOffset = i
		state.isCamera = true

		c.isRH = IsRightHandedProjection(floats[i:])
		copy(c.lastProj[:], floats[i:i+16])

		c.logger.Info("found projection matrix", "handle", handle, "offset", i, "rightHanded", c.isRH)

		c.cameraHandle = handle
		break
	}
}

// dumpFloats emits the one-shot full float dump used to eyeball candidate
// constant buffer layouts before a camera has been identified, 8 floats per
// line. Diagnostic only.
func (c *controllerImpl) dumpFloats(handle uint64, size int, floats []float32) {
	c.logger.Debug("full buffer dump start", "handle", handle, "size", size)
	for i := 0; i+8 <= len(floats); i += 8 {
		var sb strings.Builder
		for j := 0; j < 8; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatFloat(floats[i+j]))
		}
		c.logger.Debug("buffer dump line", "byteOffset", i*4, "floats", sb.String())
	}
	c.logger.Debug("full buffer dump end", "handle", handle)
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', 6, 32)
}

func (c *controllerImpl) GetModifiedBufferData(face CubeFace) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cameraHandle == 0 {
		return nil, false
	}
	state, ok := c.cache[c.cameraHandle]
	if !ok {
		return nil, false
	}

	// Copy the full snapshot first: bytes outside the matrix slots (bone
	// data, scene constants) must survive verbatim.
	out := make([]byte, len(state.data))
	copy(out, state.data)
	floatCount := len(out) / 4

	if state.viewOffset >= 0 && state.viewOffset+16 <= floatCount {
		view := c.viewMatrixForFace(face)
		if c.isTransposed {
			common.Transpose4(view[:], view[:])
		}
		common.PutFloats(out[state.viewOffset*4:], view[:])
	}

	if state.projOffset >= 0 && state.projOffset+16 <= floatCount {
		var proj [16]float32
		if c.isRH {
			common.PerspectiveFovRH(proj[:], c.fov, c.aspect, c.near, c.far)
		} else {
			common.PerspectiveFovLH(proj[:], c.fov, c.aspect, c.near, c.far)
		}
		common.PutFloats(out[state.projOffset*4:], proj[:])
	}

	return out, true
}

// viewMatrixForFace synthesizes the look-at matrix for one cube face from the
// last known game view. The eye position is recovered from the inverse view's
// translation row; face directions follow the detected up-axis convention,
// with the front/back pair swapped by handedness in the Y-up case.
// Caller must hold the mutex.
func (c *controllerImpl) viewMatrixForFace(face CubeFace) [16]float32 {
	var inv [16]float32
	if !common.Invert4(inv[:], c.lastView[:]) {
		common.Identity(inv[:])
	}
	eye := [3]float32{inv[12], inv[13], inv[14]}

	zUp := math.Abs(float64(c.worldUp[2])) > 0.9

	var up, down, front, back [3]float32
	right := [3]float32{1, 0, 0}
	left := [3]float32{-1, 0, 0}
	if zUp {
		up = [3]float32{0, 0, 1}
		down = [3]float32{0, 0, -1}
		front = [3]float32{0, 1, 0}
		back = [3]float32{0, -1, 0}
	} else {
		up = [3]float32{0, 1, 0}
		down = [3]float32{0, -1, 0}
		if c.isRH {
			front = [3]float32{0, 0, -1}
			back = [3]float32{0, 0, 1}
		} else {
			front = [3]float32{0, 0, 1}
			back = [3]float32{0, 0, -1}
		}
	}

	var target [3]float32
	upRef := c.worldUp
	switch face {
	case FaceRight:
		target = right
	case FaceLeft:
		target = left
	case FaceUp:
		// Looking straight along the up axis makes the world up reference
		// degenerate; use the forward direction instead.
		target = up
		upRef = front
	case FaceDown:
		target = down
		upRef = [3]float32{-front[0], -front[1], -front[2]}
	case FaceFront:
		target = front
	case FaceBack:
		target = back
	}

	at := [3]float32{eye[0] + target[0], eye[1] + target[1], eye[2] + target[2]}

	var m [16]float32
	if c.isRH {
		common.LookAtRH(m[:], eye, at, upRef)
	} else {
		common.LookAtLH(m[:], eye, at, upRef)
	}
	return m
}

// detectWorldUp infers the world up axis from the inverse view's second row
// (the camera's up basis in world space). Runs once; the result is sticky for
// the controller's lifetime. Caller must hold the mutex.
func (c *controllerImpl) detectWorldUp() {
	var inv [16]float32
	if !common.Invert4(inv[:], c.lastView[:]) {
		// A singular view matrix cannot tell us anything; leave detection
		// unarmed so the next view match retries.
		return
	}
	worldUp := common.Normalize3([3]float32{inv[4], inv[5], inv[6]})

	y := worldUp[1]
	z := worldUp[2]
	if math.Abs(float64(z)) > math.Abs(float64(y)) {
		if z > 0 {
			c.worldUp = [3]float32{0, 0, 1}
		} else {
			c.worldUp = [3]float32{0, 0, -1}
		}
		c.logger.Info("detected z-up world", "sign", z)
	} else {
		if y > 0 {
			c.worldUp = [3]float32{0, 1, 0}
		} else {
			c.worldUp = [3]float32{0, -1, 0}
		}
		c.logger.Info("detected y-up world", "sign", y)
	}
	c.upDetected = true
}

func (c *controllerImpl) CameraBuffer() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameraHandle
}

func (c *controllerImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastView
}

func (c *controllerImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastProj
}

func (c *controllerImpl) IsTransposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isTransposed
}

func (c *controllerImpl) IsRightHanded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRH
}

func (c *controllerImpl) WorldUp() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldUp
}

func (c *controllerImpl) WorldUpDetected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upDetected
}
