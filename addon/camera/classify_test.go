package camera

import "testing"

// mat builds a 16-float window with the given index/value overrides on an
// otherwise plausible rotation-plus-translation block.
func mat(overrides map[int]float32) []float32 {
	m := []float32{
		0.5, 0.5, 0.7, 0.2,
		-0.5, 0.8, 0.1, 0.2,
		0.7, -0.1, -0.7, 0.2,
		3.0, -4.0, 12.0, 0.5,
	}
	for i, v := range overrides {
		m[i] = v
	}
	return m
}

func TestIsViewMatrix(t *testing.T) {
	tests := []struct {
		name           string
		m              []float32
		wantMatch      bool
		wantTransposed bool
	}{
		{
			"row-major: zeros at 3/7/11, one at 15",
			mat(map[int]float32{3: 0, 7: 0, 11: 0, 15: 1}),
			true, false,
		},
		{
			"column-major: zeros at 12/13/14, one at 15",
			mat(map[int]float32{12: 0, 13: 0, 14: 0, 15: 1}),
			true, true,
		},
		{
			"within tolerance",
			mat(map[int]float32{3: 0.05, 7: -0.09, 11: 0.0, 15: 0.95}),
			true, false,
		},
		{
			"last element not one",
			mat(map[int]float32{3: 0, 7: 0, 11: 0, 15: 0}),
			false, false,
		},
		{
			"no zero pattern anywhere",
			mat(map[int]float32{15: 1}),
			false, false,
		},
		{
			"element 11 outside tolerance",
			mat(map[int]float32{3: 0, 7: 0, 11: 0.2, 15: 1}),
			false, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMatch, gotTransposed := IsViewMatrix(tt.m)
			if gotMatch != tt.wantMatch {
				t.Errorf("match = %v, want %v", gotMatch, tt.wantMatch)
			}
			if gotMatch && gotTransposed != tt.wantTransposed {
				t.Errorf("transposed = %v, want %v", gotTransposed, tt.wantTransposed)
			}
		})
	}
}

func projPattern(m11 float32) []float32 {
	return []float32{
		1.2, 0, 0, 0,
		0, 1.2, 0, 0,
		0, 0, -1.001, m11,
		0, 0, -0.1, 0,
	}
}

func TestIsProjectionMatrix(t *testing.T) {
	tests := []struct {
		name string
		m    []float32
		want bool
	}{
		{"right-handed", projPattern(-1), true},
		{"left-handed", projPattern(1), true},
		{"w coupling not unit", projPattern(0.5), false},
		{"dirty upper row", func() []float32 { m := projPattern(-1); m[1] = 0.3; return m }(), false},
		{"dirty second row", func() []float32 { m := projPattern(-1); m[6] = -0.2; return m }(), false},
		{"element 15 not zero", func() []float32 { m := projPattern(-1); m[15] = 1; return m }(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProjectionMatrix(tt.m); got != tt.want {
				t.Errorf("IsProjectionMatrix = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRightHandedProjection(t *testing.T) {
	if !IsRightHandedProjection(projPattern(-1)) {
		t.Error("m[11] = -1 classified left-handed")
	}
	if IsRightHandedProjection(projPattern(1)) {
		t.Error("m[11] = 1 classified right-handed")
	}
}

func TestCubeFaceString(t *testing.T) {
	want := map[CubeFace]string{
		FaceRight: "right", FaceLeft: "left", FaceUp: "up",
		FaceDown: "down", FaceFront: "front", FaceBack: "back",
		CubeFace(99): "unknown",
	}
	for face, name := range want {
		if face.String() != name {
			t.Errorf("CubeFace(%d).String() = %q, want %q", face, face.String(), name)
		}
	}
	if len(AllFaces()) != 6 {
		t.Errorf("AllFaces() returned %d faces", len(AllFaces()))
	}
}
