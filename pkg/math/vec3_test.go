package math

import "testing"

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 12}.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestFromBytes(t *testing.T) {
	got := FromBytes([3]uint8{0, 255, 51})
	want := Vec3{0, 1, 0.2}
	if got.Sub(want).Length() > 1e-6 {
		t.Errorf("FromBytes = %v, want %v", got, want)
	}
}

func TestDirectionFromBytes(t *testing.T) {
	got := DirectionFromBytes([3]uint8{255, 128, 128})
	if got.X < 0.999 || abs(got.Y) > 0.01 || abs(got.Z) > 0.01 {
		t.Errorf("DirectionFromBytes = %v, want ~(1, 0, 0)", got)
	}
	l := DirectionFromBytes([3]uint8{10, 200, 90}).Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("direction length = %v, want ~1", l)
	}
	for _, b := range [][3]uint8{{127, 127, 127}, {128, 127, 128}} {
		if got := DirectionFromBytes(b); got != (Vec3{}) {
			t.Errorf("DirectionFromBytes(%v) = %v, want zero", b, got)
		}
	}
}

func TestDot(t *testing.T) {
	if d := (Vec3{1, 2, 3}).Dot(Vec3{4, -5, 6}); d != 12 {
		t.Errorf("Dot = %v, want 12", d)
	}
}

func TestFaceNormal(t *testing.T) {
	n := FaceNormal(Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0})
	if n != (Vec3{0, 0, 1}) {
		t.Errorf("FaceNormal = %v, want (0, 0, 1)", n)
	}
}
