// Package aim solves lead prediction for constant-speed projectiles fired at
// linearly moving targets.
package aim

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// MaxInterceptTime is the largest accepted time-to-intercept.
const MaxInterceptTime = 100.0

const nearZero = 1e-6

// InterceptPoint returns where a projectile of the given speed fired from
// shooter must be aimed to meet a target at target moving with targetVel.
//
// It solves |target + targetVel*t - shooter| = speed*t for the smallest
// non-negative t. A vanishing quadratic term falls back to the linear root,
// and an unreachable target falls back to distance/speed. A stationary
// target yields target itself.
//
// Postcondition: ok is false when t is non-finite, negative, or beyond
// MaxInterceptTime, or when any input is non-finite.
func InterceptPoint(shooter, target, targetVel geom.Vec3, speed float64) (geom.Vec3, bool) {
	return InterceptPointWithin(shooter, target, targetVel, speed, MaxInterceptTime)
}

// InterceptPointWithin is InterceptPoint with an explicit time horizon.
func InterceptPointWithin(shooter, target, targetVel geom.Vec3, speed, horizon float64) (geom.Vec3, bool) {
	if !shooter.IsFinite() || !target.IsFinite() || !targetVel.IsFinite() || !geom.IsFinite(speed) {
		return geom.Zero, false
	}
	if targetVel.IsZero() {
		return target, true
	}
	t, ok := interceptTime(target.Sub(shooter), targetVel, speed)
	if !ok || !geom.IsFinite(t) || t < 0 || t > horizon {
		return geom.Zero, false
	}
	p := target.Add(targetVel.Scale(t))
	if !p.IsFinite() {
		return geom.Zero, false
	}
	return p, true
}

func interceptTime(toTarget, vel geom.Vec3, speed float64) (float64, bool) {
	a := vel.LenSq() - speed*speed
	b := 2 * toTarget.Dot(vel)
	c := toTarget.LenSq()

	naive := func() (float64, bool) {
		if math.Abs(speed) < nearZero {
			return 0, false
		}
		return math.Sqrt(c) / math.Abs(speed), true
	}

	if math.Abs(a) < nearZero {
		if math.Abs(b) < nearZero {
			return naive()
		}
		return -c / b, true
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return naive()
	}
	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	switch {
	case t1 >= 0:
		return t1, true
	case t2 >= 0:
		return t2, true
	}
	return 0, false
}

// LeadDirection is LeadDirectionWithin bounded by MaxInterceptTime.
func LeadDirection(shooter, target, targetVel geom.Vec3, speed float64) (dir geom.Vec3, predicted bool, ok bool) {
	return LeadDirectionWithin(shooter, target, targetVel, speed, MaxInterceptTime)
}

// LeadDirectionWithin returns the unit aim direction from shooter toward the
// intercept point, degrading to the target's current position when no
// intercept within horizon can be predicted.
//
// Postcondition: ok is false only when shooter and target coincide or
// inputs are non-finite.
func LeadDirectionWithin(shooter, target, targetVel geom.Vec3, speed, horizon float64) (dir geom.Vec3, predicted bool, ok bool) {
	aimAt, predicted := InterceptPointWithin(shooter, target, targetVel, speed, horizon)
	if !predicted {
		aimAt = target
	}
	dir, ok = aimAt.Sub(shooter).Normalize()
	if !ok && predicted {
		dir, ok = target.Sub(shooter).Normalize()
	}
	return dir, predicted, ok
}
