// Package geom provides the 3D vector math shared by kinematics, aiming, and AI steering.
package geom

import "math"

// Epsilon is the length below which a vector is treated as degenerate.
const Epsilon = 1e-9

// Vec3 is an immutable 3D vector value.
type Vec3 struct {
	X float64 `msgpack:"x" yaml:"x"`
	Y float64 `msgpack:"y" yaml:"y"`
	Z float64 `msgpack:"z" yaml:"z"`
}

// V is shorthand for Vec3{x, y, z}.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Zero is the origin.
var Zero = Vec3{}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LenSq() float64 { return v.Dot(v) }

func (v Vec3) Len() float64 { return math.Sqrt(v.LenSq()) }

// Distance returns |v - o|.
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Len() }

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// IsZero reports whether v is shorter than Epsilon.
func (v Vec3) IsZero() bool { return v.LenSq() < Epsilon*Epsilon }

// Normalize returns the unit vector along v.
//
// Postcondition: ok is false, and the zero vector is returned, when v is
// degenerate or non-finite.
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.Len()
	if !isFinite(l) || l < Epsilon {
		return Zero, false
	}
	n := v.Scale(1 / l)
	if !n.IsFinite() {
		return Zero, false
	}
	return n, true
}

// Lerp returns v + (o - v) * t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 { return v.Add(o.Sub(v).Scale(t)) }

// ClampLen returns v scaled down to at most maxLen.
func (v Vec3) ClampLen(maxLen float64) Vec3 {
	l := v.Len()
	if l <= maxLen || l < Epsilon {
		return v
	}
	return v.Scale(maxLen / l)
}

// Basis returns two unit vectors perpendicular to the unit vector forward and
// to each other. The world Y axis is used as the reference up unless forward
// is nearly parallel to it.
func Basis(forward Vec3) (right, up Vec3) {
	ref := Vec3{0, 1, 0}
	if math.Abs(forward.Dot(ref)) > 0.99 {
		ref = Vec3{1, 0, 0}
	}
	right, _ = forward.Cross(ref).Normalize()
	up, _ = right.Cross(forward).Normalize()
	return right, up
}

// Perturb tilts the unit vector dir by yaw and pitch radians.
//
// Postcondition: the result is a unit vector; dir is returned unchanged when
// the perturbation degenerates.
func Perturb(dir Vec3, yaw, pitch float64) Vec3 {
	if yaw == 0 && pitch == 0 {
		return dir
	}
	right, up := Basis(dir)
	out, ok := dir.Add(right.Scale(math.Tan(yaw))).Add(up.Scale(math.Tan(pitch))).Normalize()
	if !ok {
		return dir
	}
	return out
}

// RotateToward turns the unit vector from toward the unit vector to by at most
// maxAngle radians.
func RotateToward(from, to Vec3, maxAngle float64) Vec3 {
	cos := clamp(from.Dot(to), -1, 1)
	angle := math.Acos(cos)
	if angle <= maxAngle || angle < Epsilon {
		return to
	}
	perp, ok := to.Sub(from.Scale(cos)).Normalize()
	if !ok {
		// antiparallel: rotate about any perpendicular axis
		perp, _ = Basis(from)
	}
	return from.Scale(math.Cos(maxAngle)).Add(perp.Scale(math.Sin(maxAngle)))
}

// SegmentPointDistance returns the distance from p to the segment [a, b].
func SegmentPointDistance(a, b, p Vec3) float64 {
	ab := b.Sub(a)
	denom := ab.LenSq()
	if denom < Epsilon*Epsilon {
		return p.Distance(a)
	}
	t := clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	return p.Distance(a.Add(ab.Scale(t)))
}

// SegmentParam returns the parameter in [0, 1] of the point on [a, b] closest to p.
func SegmentParam(a, b, p Vec3) float64 {
	ab := b.Sub(a)
	denom := ab.LenSq()
	if denom < Epsilon*Epsilon {
		return 0
	}
	return clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool { return isFinite(f) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
