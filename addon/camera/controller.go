package camera

// Controller is the camera detector and rewriter. It ingests raw constant
// buffer snapshots from the capture layer, scans them for view/projection
// matrix signatures, remembers which buffer holds the active camera, and on
// demand produces a modified copy of that buffer redirected at one of the six
// cube-face directions.
//
// All methods are safe for concurrent use; the capture layer may invoke them
// from any of its threads.
type Controller interface {
	// OnUpdateBuffer ingests a buffer written through a direct update path
	// (not CPU-mapped). No upper size cap is applied.
	//
	// The data slice is borrowed: it is only valid for the duration of the
	// call and is copied internally before returning.
	//
	// Parameters:
	//   - handle: the GPU resource handle the buffer belongs to
	//   - data: the full buffer contents
	OnUpdateBuffer(handle uint64, data []byte)

	// OnScanBuffer ingests a buffer read back from a CPU mapping. Mapped
	// memory is assumed uncached, so buffers over 4096 bytes are skipped to
	// bound scan cost.
	//
	// The data slice is borrowed: it is only valid for the duration of the
	// call and is copied internally before returning.
	//
	// Parameters:
	//   - handle: the GPU resource handle the buffer belongs to
	//   - data: the full buffer contents observed at unmap
	OnScanBuffer(handle uint64, data []byte)

	// GetModifiedBufferData returns a copy of the cached camera buffer with
	// the detected view and/or projection matrices replaced for the requested
	// cube face. Every byte outside the replaced matrix slots is preserved
	// verbatim. Matrix offsets that no longer fit the buffer's current size
	// are skipped for that matrix only.
	//
	// Parameters:
	//   - face: the cube face to synthesize matrices for
	//
	// Returns:
	//   - []byte: the rewritten buffer, or nil if no camera buffer is known
	//   - bool: false if no camera buffer has been identified yet or its
	//     cache entry is missing
	GetModifiedBufferData(face CubeFace) ([]byte, bool)

	// CameraBuffer returns the handle of the buffer currently believed to
	// hold the active camera, or 0 if none has been identified.
	//
	// Returns:
	//   - uint64: the camera buffer handle or 0
	CameraBuffer() uint64

	// ViewMatrix returns the last observed game view matrix, row-major.
	// Zero until a view matrix has been detected.
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the last observed game projection matrix as it
	// appeared in the buffer. Zero until a projection matrix has been detected.
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// IsTransposed reports whether the detected view matrix was stored
	// column-major, meaning synthesized replacements are transposed before
	// being written back.
	//
	// Returns:
	//   - bool: true if the buffer stores the view matrix column-major
	IsTransposed() bool

	// IsRightHanded reports the handedness inferred from the last matched
	// projection matrix. Defaults to false (left-handed) until a projection
	// is found.
	//
	// Returns:
	//   - bool: true if the projection is right-handed
	IsRightHanded() bool

	// WorldUp returns the detected world up axis, one of (0,±1,0) or (0,0,±1).
	// Defaults to (0,1,0) until world-up detection has run.
	//
	// Returns:
	//   - [3]float32: the world up vector
	WorldUp() [3]float32

	// WorldUpDetected reports whether world-up detection has run. Detection
	// runs exactly once, on the first view matrix found, and the result is
	// never recomputed.
	//
	// Returns:
	//   - bool: true once world-up has been determined
	WorldUpDetected() bool
}
