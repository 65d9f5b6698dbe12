package camera

import "math"

// matchTolerance is the absolute tolerance applied to every "must be zero" and
// "must be one" slot in the matrix classifiers. Real game buffers carry
// float precision noise, so exact comparison would miss valid matrices.
const matchTolerance = 0.1

func near(v, target float32) bool {
	return math.Abs(float64(v-target)) < matchTolerance
}

// IsViewMatrix classifies 16 floats as a potential view matrix.
//
// A row-major candidate has its last column ~(0,0,0,1): elements 3, 7, 11 near
// zero and element 15 near one. A column-major (transposed) candidate has its
// last row ~(0,0,0,1): elements 12, 13, 14 near zero and element 15 near one.
//
// This is a heuristic: an orthogonal world/model matrix with no scale produces
// the same pattern and cannot be distinguished here. Callers accept that
// precision/recall trade-off.
//
// Parameters:
//   - m: the candidate window (at least 16 elements)
//
// Returns:
//   - ok: true if either pattern matched
//   - transposed: true if the column-major pattern matched, telling downstream
//     code the stored orientation
func IsViewMatrix(m []float32) (ok, transposed bool) {
	rowMajor := near(m[3], 0) && near(m[7], 0) && near(m[11], 0) && near(m[15], 1)
	colMajor := near(m[12], 0) && near(m[13], 0) && near(m[14], 0) && near(m[15], 1)
	return rowMajor || colMajor, colMajor
}

// IsProjectionMatrix classifies 16 floats as a perspective projection matrix.
// Matches the canonical sparsity pattern regardless of handedness:
//
//	[ x 0 0 0 ]
//	[ 0 x 0 0 ]
//	[ 0 0 x ±1]
//	[ 0 0 x 0 ]
//
// Parameters:
//   - m: the candidate window (at least 16 elements)
//
// Returns:
//   - bool: true if the pattern matched
func IsProjectionMatrix(m []float32) bool {
	if !near(m[1], 0) || !near(m[2], 0) || !near(m[3], 0) {
		return false
	}
	if !near(m[4], 0) || !near(m[6], 0) || !near(m[7], 0) {
		return false
	}
	if !near(m[15], 0) {
		return false
	}
	return near(m[11], 1) || near(m[11], -1)
}

// IsRightHandedProjection reports whether a matched projection matrix is
// right-handed. Element 11 is -1 for right-handed projections, +1 for
// left-handed ones.
//
// Parameters:
//   - m: a window that already passed IsProjectionMatrix
//
// Returns:
//   - bool: true if right-handed
func IsRightHandedProjection(m []float32) bool {
	return m[11] < -0.9
}
