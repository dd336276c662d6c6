// Package geom provides the small amount of 2D vector math the combat motions need.
// Angles are expressed in degrees, counter-clockwise from the +X axis.
package geom

import "math"

// Vec2 is a point or direction in world units.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Zero is the zero vector.
var Zero = Vec2{}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Normalized returns v scaled to unit length, or the zero vector when v is
// too short to have a direction.
//
// Postcondition: Returns a vector of length 1 or the zero vector.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Zero
	}
	return Vec2{v.X / l, v.Y / l}
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vec2) float64 { return b.Sub(a).Len() }

// Lerp interpolates between a and b; t is clamped to [0, 1].
func Lerp(a, b Vec2, t float64) Vec2 {
	t = Clamp01(t)
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Lerp1 interpolates between scalars a and b; t is clamped to [0, 1].
func Lerp1(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}

// Clamp01 clamps t to [0, 1].
func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}

// MoveTowards moves current toward target by at most maxStep without overshooting.
//
// Precondition: maxStep >= 0.
// Postcondition: Dist(result, target) == max(0, Dist(current, target) - maxStep).
func MoveTowards(current, target Vec2, maxStep float64) Vec2 {
	delta := target.Sub(current)
	d := delta.Len()
	if d <= maxStep || d == 0 {
		return target
	}
	return current.Add(delta.Scale(maxStep / d))
}

// AngleDeg returns the heading of v in degrees in (-180, 180].
func AngleDeg(v Vec2) float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// Rotate rotates v counter-clockwise by deg degrees.
func Rotate(v Vec2, deg float64) Vec2 {
	rad := deg * math.Pi / 180
	s, c := math.Sincos(rad)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// FromAngle returns the unit vector pointing at deg degrees.
func FromAngle(deg float64) Vec2 {
	return Rotate(Vec2{1, 0}, deg)
}
