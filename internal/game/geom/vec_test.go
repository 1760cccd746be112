package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func drawVec(t *rapid.T, label string) Vec3 {
	return V(
		rapid.Float64Range(-1000, 1000).Draw(t, label+".x"),
		rapid.Float64Range(-1000, 1000).Draw(t, label+".y"),
		rapid.Float64Range(-1000, 1000).Draw(t, label+".z"),
	)
}

func TestNormalizeDegenerate(t *testing.T) {
	_, ok := Zero.Normalize()
	assert.False(t, ok)
	_, ok = V(math.NaN(), 0, 0).Normalize()
	assert.False(t, ok)
	_, ok = V(math.Inf(1), 0, 0).Normalize()
	assert.False(t, ok)

	n, ok := V(3, 0, 4).Normalize()
	assert.True(t, ok)
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Z, 1e-12)
}

func TestCrossIsPerpendicular(t *testing.T) {
	c := V(1, 0, 0).Cross(V(0, 1, 0))
	assert.Equal(t, V(0, 0, 1), c)
}

func TestSegmentPointDistance(t *testing.T) {
	a, b := V(0, 0, 0), V(10, 0, 0)
	assert.InDelta(t, 2.0, SegmentPointDistance(a, b, V(5, 2, 0)), 1e-12)
	assert.InDelta(t, 5.0, SegmentPointDistance(a, b, V(-3, 4, 0)), 1e-12)
	assert.InDelta(t, 0.5, SegmentParam(a, b, V(5, 2, 0)), 1e-12)
	// degenerate segment collapses to a point
	assert.InDelta(t, 5.0, SegmentPointDistance(a, a, V(3, 4, 0)), 1e-12)
}

func TestRotateTowardLimitsAngle(t *testing.T) {
	from := V(1, 0, 0)
	to := V(0, 0, 1)
	out := RotateToward(from, to, math.Pi/8)
	assert.InDelta(t, 1.0, out.Len(), 1e-9)
	assert.InDelta(t, math.Cos(math.Pi/8), out.Dot(from), 1e-9)

	assert.Equal(t, to, RotateToward(from, to, math.Pi))
}

func TestPropertyPerturbKeepsUnitLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir, ok := drawVec(t, "dir").Normalize()
		if !ok {
			t.Skip("degenerate direction")
		}
		yaw := rapid.Float64Range(-0.5, 0.5).Draw(t, "yaw")
		pitch := rapid.Float64Range(-0.5, 0.5).Draw(t, "pitch")
		out := Perturb(dir, yaw, pitch)
		if math.Abs(out.Len()-1) > 1e-9 {
			t.Fatalf("perturbed direction has length %v", out.Len())
		}
		// tilt never exceeds the combined angle
		maxAngle := math.Atan(math.Hypot(math.Tan(yaw), math.Tan(pitch)))
		if math.Acos(clamp(out.Dot(dir), -1, 1)) > maxAngle+1e-6 {
			t.Fatalf("perturbation exceeded %v rad", maxAngle)
		}
	})
}

func TestPropertyBasisIsOrthonormal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f, ok := drawVec(t, "f").Normalize()
		if !ok {
			t.Skip("degenerate direction")
		}
		r, u := Basis(f)
		for _, d := range []float64{r.Dot(f), u.Dot(f), r.Dot(u)} {
			if math.Abs(d) > 1e-9 {
				t.Fatalf("basis not orthogonal: %v", d)
			}
		}
	})
}
