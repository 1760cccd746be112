package ai

import (
	"github.com/cory-johannsen/skirmish/internal/game/aim"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Profile is the engagement envelope of an AI class.
type Profile struct {
	MinRange float64
	MaxRange float64
	// FireAlignment is the minimum facing/aim dot product required to fire.
	FireAlignment float64
	Flank         bool
	LeadAim       bool
}

var (
	// BasicProfile drives fighters and corvettes: direct pursuit, naive evasion.
	BasicProfile = Profile{MinRange: 20, MaxRange: 100, FireAlignment: 0.9}
	// EliteProfile drives frigates and capital ships.
	EliteProfile = Profile{MinRange: 25, MaxRange: 120, FireAlignment: 0.85, Flank: true, LeadAim: true}
)

// ProfileFor returns the envelope for the elite flag.
func ProfileFor(elite bool) Profile {
	if elite {
		return EliteProfile
	}
	return BasicProfile
}

const (
	patrolArrival = 10.0
	patrolSpeed   = 0.5
	flankShare    = 0.6
)

// Body is the read-only kinematic view of the controlled ship.
type Body struct {
	Position geom.Vec3
	Velocity geom.Vec3
	// Facing is a unit vector.
	Facing   geom.Vec3
	MaxSpeed float64
}

// TargetView is the read-only kinematic view of the current target.
type TargetView struct {
	Position geom.Vec3
	Velocity geom.Vec3
}

// Command is the maneuver requested for one tick.
type Command struct {
	// Velocity is the desired velocity; the world clamps it to MaxSpeed.
	Velocity geom.Vec3
	// Face is the desired unit facing; zero keeps the current facing.
	Face geom.Vec3
	Fire bool
	// Predicted is set when the aim point came from the intercept solver.
	Predicted bool
}

// Maneuver computes the movement and fire command for the controller's
// state. target is nil when the controller has no live target;
// projectileSpeed is the speed of the selected weapon's shots.
func (c *Controller) Maneuver(self Body, target *TargetView, projectileSpeed float64) Command {
	prof := ProfileFor(c.Elite)

	switch c.State() {
	case StatePatrol:
		return c.patrol(self)
	case StateRetreat:
		return retreat(self, target, c.PatrolPoint)
	}
	if target == nil {
		return c.patrol(self)
	}

	toTarget := target.Position.Sub(self.Position)
	dist := toTarget.Len()
	dirToTarget, ok := toTarget.Normalize()
	if !ok {
		return Command{}
	}

	aimDir := dirToTarget
	predicted := false
	if prof.LeadAim {
		if d, p, ok := aim.LeadDirectionWithin(self.Position, target.Position, target.Velocity, projectileSpeed, c.Horizon); ok {
			aimDir, predicted = d, p
		}
	}

	switch c.State() {
	case StatePursue:
		return Command{Velocity: aimDir.Scale(self.MaxSpeed), Face: aimDir, Predicted: predicted}

	case StateAttack:
		speed := self.MaxSpeed * (0.5 + 0.5*clamp01(c.Aggression))
		var vel geom.Vec3
		switch {
		case dist > prof.MaxRange:
			vel = dirToTarget.Scale(speed)
		case dist < prof.MinRange:
			vel = dirToTarget.Scale(-speed)
		}
		if prof.Flank {
			right, _ := geom.Basis(dirToTarget)
			vel = vel.Add(right.Scale(speed * flankShare))
		}
		inRange := dist >= prof.MinRange && dist <= prof.MaxRange
		aligned := self.Facing.Dot(aimDir) >= prof.FireAlignment
		return Command{Velocity: vel, Face: aimDir, Fire: inRange && aligned, Predicted: predicted}

	case StateEvade:
		right, up := geom.Basis(dirToTarget)
		vel := right.Scale(self.MaxSpeed)
		if prof.Flank {
			// break away and climb instead of a flat sidestep
			vel = right.Add(up.Scale(0.5)).Sub(dirToTarget.Scale(0.5))
			vel, _ = vel.Normalize()
			vel = vel.Scale(self.MaxSpeed)
		}
		return Command{Velocity: vel}
	}
	return Command{}
}

func (c *Controller) patrol(self Body) Command {
	to := c.PatrolPoint.Sub(self.Position)
	if to.Len() < patrolArrival {
		return Command{}
	}
	dir, ok := to.Normalize()
	if !ok {
		return Command{}
	}
	return Command{Velocity: dir.Scale(self.MaxSpeed * patrolSpeed), Face: dir}
}

func retreat(self Body, target *TargetView, home geom.Vec3) Command {
	var away geom.Vec3
	if target != nil {
		away = self.Position.Sub(target.Position)
	} else {
		away = home.Sub(self.Position)
	}
	dir, ok := away.Normalize()
	if !ok {
		return Command{}
	}
	return Command{Velocity: dir.Scale(self.MaxSpeed), Face: dir}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
