package math

import "testing"

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformVec3(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformVec3(Vec3{1, 2, 3})

	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformVec3: got %v, want %v", got, want)
	}

	got = Scale(2, 2, 2).TransformVec3(Vec3{1, 2, 3})
	want = Vec3{2, 4, 6}
	if got != want {
		t.Errorf("TransformVec3 with scale: got %v, want %v", got, want)
	}
}

func TestGridToWorld(t *testing.T) {
	m := GridToWorld(Vec3{100, 200, 0}, Vec3{10, 10, 2})

	tests := []struct {
		cell Vec3
		want Vec3
	}{
		{Vec3{0, 0, 0}, Vec3{100, 200, 0}},
		{Vec3{1, 0, 0}, Vec3{110, 200, 0}},
		{Vec3{2.5, 3, 4}, Vec3{125, 230, 8}},
	}
	for _, tc := range tests {
		if got := m.TransformVec3(tc.cell); got != tc.want {
			t.Errorf("GridToWorld(%v) = %v, want %v", tc.cell, got, tc.want)
		}
	}

	// Directions ignore the origin.
	if got := m.TransformDirection(Vec3{1, 0, 0}); got != (Vec3{10, 0, 0}) {
		t.Errorf("TransformDirection = %v, want (10, 0, 0)", got)
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(1, 2, 3)
	tr := m.Transpose()
	if tr[3] != 1 || tr[7] != 2 || tr[11] != 3 {
		t.Errorf("Transpose: got row 3 (%f, %f, %f), want (1, 2, 3)", tr[3], tr[7], tr[11])
	}
	if tr.Transpose() != m {
		t.Error("double transpose should restore the matrix")
	}
}

func TestNormalMatrix(t *testing.T) {
	// A plane tilted 45 degrees, squashed along x. The normal must stay
	// perpendicular to the transformed surface.
	m := Scale(2, 1, 1)
	tangent := m.TransformDirection(Vec3{1, -1, 0})
	normal := m.NormalMatrix().TransformDirection(Vec3{1, 1, 0})

	if d := tangent.Dot(normal); abs(d) > 1e-5 {
		t.Errorf("normal not perpendicular after transform: dot = %f", d)
	}
}

func TestInverse(t *testing.T) {
	m := GridToWorld(Vec3{3, 4, 5}, Vec3{2, 4, 8})
	p := Vec3{1, 2, 3}
	back := m.Inverse().TransformVec3(m.TransformVec3(p))
	if back.Sub(p).Length() > 1e-5 {
		t.Errorf("Inverse round trip: got %v, want %v", back, p)
	}

	var singular Mat4
	if singular.Inverse() != Identity() {
		t.Error("singular matrix should invert to identity")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
