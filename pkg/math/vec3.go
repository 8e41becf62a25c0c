// Package math provides the vector and matrix types used to place
// display-file geometry in world space.
package math

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// FromBytes maps a quantized byte triple onto [0,1] per axis.
func FromBytes(b [3]uint8) Vec3 {
	return Vec3{float32(b[0]) / 255, float32(b[1]) / 255, float32(b[2]) / 255}
}

// DirectionFromBytes maps a quantized byte triple onto [-1,1] per axis and
// normalizes the result. Triples made only of the centre bytes 127 and 128
// carry no direction and return the zero vector.
func DirectionFromBytes(b [3]uint8) Vec3 {
	v := Vec3{
		float32(b[0])/127.5 - 1,
		float32(b[1])/127.5 - 1,
		float32(b[2])/127.5 - 1,
	}
	if v.Length() < 0.01 {
		return Vec3{}
	}
	return v.Normalize()
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Normalize returns a unit vector, or the zero vector for zero input.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Array returns the components as an array, the layout glTF accessors use.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// FaceNormal returns the unit normal of triangle a, b, c with
// counter-clockwise winding.
func FaceNormal(a, b, c Vec3) Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}
