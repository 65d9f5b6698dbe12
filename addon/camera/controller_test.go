package camera

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/artryazanov/reshade-wide-capture-addon/common"
)

const testEps = 1e-4

// countingHandler records every message it handles, for asserting on log
// emission counts without caring about formatting.
type countingHandler struct {
	mu   sync.Mutex
	msgs map[string]int
}

func newCountingHandler() *countingHandler {
	return &countingHandler{msgs: make(map[string]int)}
}

func (h *countingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *countingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs[r.Message]++
	return nil
}
func (h *countingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *countingHandler) WithGroup(string) slog.Handler      { return h }

func (h *countingHandler) count(msg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.msgs[msg]
}

func bufFromFloats(fs []float32) []byte {
	b := make([]byte, len(fs)*4)
	common.PutFloats(b, fs)
	return b
}

func matrixAt(t *testing.T, buf []byte, floatOffset int) [16]float32 {
	t.Helper()
	fs := common.Floats(buf)
	if floatOffset+16 > len(fs) {
		t.Fatalf("matrix at float offset %d does not fit buffer of %d floats", floatOffset, len(fs))
	}
	var m [16]float32
	copy(m[:], fs[floatOffset:])
	return m
}

func matricesNear(a, b [16]float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > testEps {
			return false
		}
	}
	return true
}

// cameraConstants builds a combined constant buffer: 8 floats of junk, a view
// matrix, a projection matrix, then 8 more floats of trailing payload.
// View sits at float offset 8, projection at 24, total 48 floats (192 bytes).
func cameraConstants(view, proj [16]float32) []byte {
	fs := make([]float32, 48)
	for i := 0; i < 8; i++ {
		fs[i] = 9
		fs[40+i] = 7
	}
	copy(fs[8:], view[:])
	copy(fs[24:], proj[:])
	return bufFromFloats(fs)
}

func testView() [16]float32 {
	var v [16]float32
	common.LookAtRH(v[:], [3]float32{1, 2, 3}, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})
	return v
}

func testProj() [16]float32 {
	var p [16]float32
	common.PerspectiveFovRH(p[:], 1.2, 16.0/9.0, 0.5, 500.0)
	return p
}

func TestScan_RejectsSmallBuffers(t *testing.T) {
	c := NewController()
	view := testView()
	c.OnUpdateBuffer(1, bufFromFloats(view[:])[:60])
	if c.CameraBuffer() != 0 {
		t.Error("camera detected in an under-64-byte buffer")
	}
	if _, ok := c.GetModifiedBufferData(FaceFront); ok {
		t.Error("rewrite succeeded with no cached camera buffer")
	}
}

func TestScan_MappedSizeCap(t *testing.T) {
	// A buffer that would match, padded past the mapped-path cap.
	view := testView()
	fs := make([]float32, 1200) // 4800 bytes
	copy(fs, view[:])
	big := bufFromFloats(fs)

	c := NewController()
	c.OnScanBuffer(1, big)
	if c.CameraBuffer() != 0 {
		t.Error("mapped buffer over 4096 bytes was scanned")
	}

	// The direct update path has no cap.
	c.OnUpdateBuffer(1, big)
	if c.CameraBuffer() != 1 {
		t.Error("update path rejected a large buffer")
	}
}

func TestScan_DetectsCombinedBuffer(t *testing.T) {
	view := testView()
	proj := testProj()

	c := NewController()
	c.OnScanBuffer(7, cameraConstants(view, proj))

	if got := c.CameraBuffer(); got != 7 {
		t.Fatalf("CameraBuffer = %d, want 7", got)
	}
	if c.IsTransposed() {
		t.Error("row-major view flagged as transposed")
	}
	if !c.IsRightHanded() {
		t.Error("projection with m[11] = -1 not classified right-handed")
	}
	if got := c.ViewMatrix(); !matricesNear(got, view) {
		t.Errorf("ViewMatrix = %v, want %v", got, view)
	}
	if got := c.ProjectionMatrix(); !matricesNear(got, proj) {
		t.Errorf("ProjectionMatrix = %v, want %v", got, proj)
	}
	if !c.WorldUpDetected() {
		t.Error("world-up not detected after a view match")
	}
	if up := c.WorldUp(); up != ([3]float32{0, 1, 0}) {
		t.Errorf("WorldUp = %v, want (0,1,0)", up)
	}
}

func TestScan_SeparateViewAndProjectionBuffers(t *testing.T) {
	view := testView()
	proj := testProj()

	viewBuf := make([]float32, 20)
	copy(viewBuf, view[:])
	projBuf := make([]float32, 20)
	copy(projBuf, proj[:])

	c := NewController()
	c.OnUpdateBuffer(1, bufFromFloats(viewBuf))
	if c.CameraBuffer() != 1 {
		t.Fatal("view-only buffer not adopted as camera buffer")
	}
	c.OnUpdateBuffer(2, bufFromFloats(projBuf))
	if c.CameraBuffer() != 2 {
		t.Fatal("projection-only buffer did not take over as camera buffer")
	}
	if got := c.ViewMatrix(); !matricesNear(got, view) {
		t.Error("view matrix from the earlier buffer was lost")
	}
	if got := c.ProjectionMatrix(); !matricesNear(got, proj) {
		t.Error("projection matrix not remembered")
	}
}

func TestGetModifiedBufferData_NoCamera(t *testing.T) {
	c := NewController()
	if out, ok := c.GetModifiedBufferData(FaceRight); ok || out != nil {
		t.Error("rewrite succeeded before any scan found a camera")
	}
}

func TestGetModifiedBufferData_PreservesUnrelatedBytes(t *testing.T) {
	input := cameraConstants(testView(), testProj())
	c := NewController()
	c.OnScanBuffer(3, input)

	for _, face := range AllFaces() {
		t.Run(face.String(), func(t *testing.T) {
			out, ok := c.GetModifiedBufferData(face)
			if !ok {
				t.Fatal("rewrite failed for a detected camera buffer")
			}
			if len(out) != len(input) {
				t.Fatalf("output size %d, want %d", len(out), len(input))
			}
			// Leading junk: float offsets [0, 8).
			if !bytes.Equal(out[:8*4], input[:8*4]) {
				t.Error("leading payload bytes were modified")
			}
			// Trailing junk: float offsets [40, 48).
			if !bytes.Equal(out[40*4:], input[40*4:]) {
				t.Error("trailing payload bytes were modified")
			}
		})
	}
}

func TestGetModifiedBufferData_FaceMatrices(t *testing.T) {
	// Y-up, right-handed camera at the origin: identity view plus an RH
	// projection at float offset 16.
	var view, proj [16]float32
	common.Identity(view[:])
	common.PerspectiveFovRH(proj[:], 1.0, 1.5, 0.3, 800)

	fs := make([]float32, 32)
	copy(fs, view[:])
	copy(fs[16:], proj[:])

	c := NewController()
	c.OnUpdateBuffer(4, bufFromFloats(fs))

	if up := c.WorldUp(); up != ([3]float32{0, 1, 0}) {
		t.Fatalf("WorldUp = %v, want (0,1,0)", up)
	}
	if !c.IsRightHanded() {
		t.Fatal("expected right-handed detection")
	}

	eye := [3]float32{0, 0, 0}
	tests := []struct {
		face   CubeFace
		target [3]float32
		up     [3]float32
	}{
		{FaceFront, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{FaceBack, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{FaceRight, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{FaceLeft, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
		// Up/down use the forward axis as the up reference, negated for down.
		{FaceUp, [3]float32{0, 1, 0}, [3]float32{0, 0, -1}},
		{FaceDown, [3]float32{0, -1, 0}, [3]float32{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.face.String(), func(t *testing.T) {
			out, ok := c.GetModifiedBufferData(tt.face)
			if !ok {
				t.Fatal("rewrite failed")
			}

			var want [16]float32
			common.LookAtRH(want[:], eye, tt.target, tt.up)
			if c.IsTransposed() {
				common.Transpose4(want[:], want[:])
			}
			if got := matrixAt(t, out, 0); !matricesNear(got, want) {
				t.Errorf("face view = %v, want %v", got, want)
			}

			var wantProj [16]float32
			common.PerspectiveFovRH(wantProj[:], float32(math.Pi/2), 1.0, 0.1, 1000.0)
			if got := matrixAt(t, out, 16); !matricesNear(got, wantProj) {
				t.Errorf("face projection = %v, want %v", got, wantProj)
			}
		})
	}
}

func TestScan_TransposedView(t *testing.T) {
	view := testView()
	var transposed [16]float32
	common.Transpose4(transposed[:], view[:])

	c := NewController()
	c.OnUpdateBuffer(5, bufFromFloats(transposed[:]))

	if !c.IsTransposed() {
		t.Fatal("column-major view not flagged as transposed")
	}
	// The stored matrix is converted back to row-major.
	if got := c.ViewMatrix(); !matricesNear(got, view) {
		t.Errorf("ViewMatrix = %v, want the untransposed matrix %v", got, view)
	}

	// Replacements are written back in the buffer's own orientation.
	out, ok := c.GetModifiedBufferData(FaceRight)
	if !ok {
		t.Fatal("rewrite failed")
	}
	got := matrixAt(t, out, 0)

	var inv [16]float32
	if !common.Invert4(inv[:], view[:]) {
		t.Fatal("test view not invertible")
	}
	eye := [3]float32{inv[12], inv[13], inv[14]}
	var want [16]float32
	// No projection was found, so handedness defaults to left-handed.
	common.LookAtLH(want[:], eye, [3]float32{eye[0] + 1, eye[1], eye[2]}, [3]float32{0, 1, 0})
	common.Transpose4(want[:], want[:])
	if !matricesNear(got, want) {
		t.Errorf("rewritten view = %v, want %v", got, want)
	}
}

func TestWorldUp_StickyOnce(t *testing.T) {
	var zUpView, yUpView [16]float32
	common.LookAtRH(zUpView[:], [3]float32{3, 4, 1}, [3]float32{0, 0, 1}, [3]float32{0, 0, 1})
	common.LookAtRH(yUpView[:], [3]float32{3, 4, 1}, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})

	c := NewController()
	c.OnUpdateBuffer(1, bufFromFloats(zUpView[:]))
	if up := c.WorldUp(); up != ([3]float32{0, 0, 1}) {
		t.Fatalf("WorldUp = %v, want (0,0,1)", up)
	}

	c.OnUpdateBuffer(1, bufFromFloats(yUpView[:]))
	if up := c.WorldUp(); up != ([3]float32{0, 0, 1}) {
		t.Errorf("WorldUp changed to %v after a later scan; detection must be sticky", up)
	}
	if !c.WorldUpDetected() {
		t.Error("WorldUpDetected lost its value")
	}
}

func TestStaleOffset_SkippedPerMatrix(t *testing.T) {
	input := cameraConstants(testView(), testProj())
	c := NewController()
	c.OnUpdateBuffer(9, input)

	// Rescan the same handle with a smaller, matrix-free buffer. The stale
	// offsets no longer fit and must be skipped rather than written.
	small := make([]float32, 16)
	for i := range small {
		small[i] = 5
	}
	smallBuf := bufFromFloats(small)
	c.OnUpdateBuffer(9, smallBuf)

	out, ok := c.GetModifiedBufferData(FaceFront)
	if !ok {
		t.Fatal("rewrite failed for a known camera handle")
	}
	if !bytes.Equal(out, smallBuf) {
		t.Error("stale matrix offsets were written into a resized buffer")
	}
}

func TestNoisyClassLogging_RateLimited(t *testing.T) {
	h := newCountingHandler()
	c := NewController(
		WithLogger(slog.New(h)),
		WithSampleRate(1), // make every scan eligible for verbose logging
	)

	noisy := make([]byte, 9600) // in the known noisy size class, no matrices
	for i := 0; i < 20; i++ {
		c.OnUpdateBuffer(11, noisy)
	}
	if got := h.count("scanning buffer"); got > 5 {
		t.Errorf("noisy class produced %d verbose logs, want at most 5", got)
	}

	// A non-noisy buffer stays loggable afterwards.
	quiet := make([]byte, 256)
	c.OnUpdateBuffer(12, quiet)
	if got := h.count("scanning buffer"); got != 6 {
		t.Errorf("verbose log count = %d after a non-noisy scan, want 6", got)
	}
}
