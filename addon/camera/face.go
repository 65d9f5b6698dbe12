package camera

// CubeFace identifies one of the six logical view directions used when
// capturing a cubemap. Values carry no data beyond identity.
type CubeFace int

const (
	FaceRight CubeFace = iota
	FaceLeft
	FaceUp
	FaceDown
	FaceFront
	FaceBack
)

var faceNames = [...]string{"right", "left", "up", "down", "front", "back"}

// String returns the lowercase face name, or "unknown" for out-of-range values.
//
// Returns:
//   - string: the face name
func (f CubeFace) String() string {
	if f < FaceRight || f > FaceBack {
		return "unknown"
	}
	return faceNames[f]
}

// AllFaces returns the six cube faces in capture order.
//
// Returns:
//   - [6]CubeFace: Right, Left, Up, Down, Front, Back
func AllFaces() [6]CubeFace {
	return [6]CubeFace{FaceRight, FaceLeft, FaceUp, FaceDown, FaceFront, FaceBack}
}
