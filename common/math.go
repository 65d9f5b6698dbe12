package common

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m[:16] {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in row-major order (DirectX row-vector convention),
// so transforming by out applies a first, then b.
// Result: out = a * b. out may alias a or b.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[r*4+k] * b[k*4+c]
			}
			buf[r*4+c] = sum
		}
	}
	copy(out, buf[:])
}

// Transpose4 writes the transpose of m into out. out may alias m.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements)
func Transpose4(out, m []float32) {
	var buf [16]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			buf[r*4+c] = m[c*4+r]
		}
	}
	copy(out, buf[:])
}

// Normalize3 returns v scaled to unit length. A zero vector is returned unchanged.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - [3]float32: the normalized vector
func Normalize3(v [3]float32) [3]float32 {
	val := float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if val == 0 {
		return v
	}
	invLen := 1.0 / float32(math.Sqrt(val))
	return [3]float32{v[0] * invLen, v[1] * invLen, v[2] * invLen}
}

// Invert4 computes the inverse of a 4x4 matrix using the Laplace expansion
// (cofactor) method. The flat-array result is the same whether m is read as
// row-major or column-major. If the matrix is singular (determinant ≈ 0) the
// output is left unchanged and the function returns false.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements)
//
// Returns:
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(out, m []float32) bool {
	// 2x2 sub-determinants of the upper-left and lower-right quadrants.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}

	invDet := 1.0 / det

	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	return true
}

// lookAt assembles a row-major view matrix from a precomputed camera forward
// (z) axis. Shared by LookAtRH and LookAtLH, which differ only in the sign of
// that axis.
func lookAt(out []float32, eye, z, up [3]float32) {
	z = Normalize3(z)

	x := Normalize3([3]float32{
		up[1]*z[2] - up[2]*z[1],
		up[2]*z[0] - up[0]*z[2],
		up[0]*z[1] - up[1]*z[0],
	})

	y := [3]float32{
		z[1]*x[2] - z[2]*x[1],
		z[2]*x[0] - z[0]*x[2],
		z[0]*x[1] - z[1]*x[0],
	}

	out[0], out[1], out[2], out[3] = x[0], y[0], z[0], 0
	out[4], out[5], out[6], out[7] = x[1], y[1], z[1], 0
	out[8], out[9], out[10], out[11] = x[2], y[2], z[2], 0
	out[12] = -(x[0]*eye[0] + x[1]*eye[1] + x[2]*eye[2])
	out[13] = -(y[0]*eye[0] + y[1]*eye[1] + y[2]*eye[2])
	out[14] = -(z[0]*eye[0] + z[1]*eye[1] + z[2]*eye[2])
	out[15] = 1
}

// LookAtRH creates a right-handed, row-major view matrix (row-vector
// convention) positioning the camera at eye looking toward target. The
// translation lives in elements 12-14, elements 3/7/11 are 0 and element 15
// is 1 - the layout the buffer classifier keys on.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: up reference vector defining camera roll
func LookAtRH(out []float32, eye, target, up [3]float32) {
	lookAt(out, eye, [3]float32{eye[0] - target[0], eye[1] - target[1], eye[2] - target[2]}, up)
}

// LookAtLH creates a left-handed, row-major view matrix (row-vector
// convention) positioning the camera at eye looking toward target.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: up reference vector defining camera roll
func LookAtLH(out []float32, eye, target, up [3]float32) {
	lookAt(out, eye, [3]float32{target[0] - eye[0], target[1] - eye[1], target[2] - eye[2]}, up)
}

// PerspectiveFovRH creates a right-handed, row-major perspective projection
// with finite near/far planes. Element 11 is -1 and element 15 is 0.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func PerspectiveFovRH(out []float32, fovY, aspect, near, far float32) {
	h := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	for i := range out[:16] {
		out[i] = 0
	}
	out[0] = h / aspect
	out[5] = h
	out[10] = far / (near - far)
	out[11] = -1
	out[14] = (near * far) / (near - far)
}

// PerspectiveFovLH creates a left-handed, row-major perspective projection
// with finite near/far planes. Element 11 is 1 and element 15 is 0.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func PerspectiveFovLH(out []float32, fovY, aspect, near, far float32) {
	h := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	for i := range out[:16] {
		out[i] = 0
	}
	out[0] = h / aspect
	out[5] = h
	out[10] = far / (far - near)
	out[11] = 1
	out[14] = -(near * far) / (far - near)
}

// Floats decodes a byte buffer into a freshly allocated float32 slice,
// little-endian, ignoring any trailing partial element.
//
// Parameters:
//   - b: source byte buffer
//
// Returns:
//   - []float32: the decoded floats (len(b)/4 elements)
func Floats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// PutFloats encodes f into b little-endian, starting at the beginning of b.
// b must hold at least len(f)*4 bytes.
//
// Parameters:
//   - b: destination byte buffer
//   - f: the floats to encode
func PutFloats(b []byte, f []float32) {
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
