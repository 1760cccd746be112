// Package projectile implements per-shot kinematics: straight-line travel,
// homing steering, lifetime countdown, and the piercing hit ledger.
package projectile

import (
	"github.com/yohamta/donburi"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

// VelocityInheritance is the share of the firing ship's velocity added to a new shot.
const VelocityInheritance = 0.3

// Projectile is one shot in flight. Owner and HomingTarget are weak
// handles: the world may destroy either actor at any time, and every use
// must check liveness first.
type Projectile struct {
	Owner        donburi.Entity
	OwnerFaction combat.Faction
	Type         weapon.Type

	Damage     float64
	ShieldMult float64
	HullMult   float64
	Critical   bool
	Lifetime   float64

	Piercing       bool
	AreaRadius     float64
	HomingStrength float64
	HomingTarget   donburi.Entity

	InitialDirection geom.Vec3
	Velocity         geom.Vec3
	Position         geom.Vec3
	PrevPosition     geom.Vec3

	hits map[donburi.Entity]struct{}
}

// FromShot builds a projectile for shot fired by owner from origin.
//
// Postcondition: Velocity == shot.Direction*shot.Speed + ownerVelocity*VelocityInheritance;
// InitialDirection == shot.Direction; HomingTarget is unset.
func FromShot(shot weapon.Shot, owner donburi.Entity, faction combat.Faction, origin, ownerVelocity geom.Vec3) Projectile {
	vel := shot.Direction.Scale(shot.Speed)
	if inherited := ownerVelocity.Scale(VelocityInheritance); inherited.IsFinite() {
		vel = vel.Add(inherited)
	}
	return Projectile{
		Owner:            owner,
		OwnerFaction:     faction,
		Type:             shot.Type,
		Damage:           shot.Damage,
		ShieldMult:       shot.ShieldMult,
		HullMult:         shot.HullMult,
		Critical:         shot.Critical,
		Lifetime:         shot.Lifetime,
		Piercing:         shot.Behavior.Piercing,
		AreaRadius:       shot.Behavior.AreaRadius,
		HomingStrength:   shot.Behavior.HomingStrength,
		HomingTarget:     donburi.Null,
		InitialDirection: shot.Direction,
		Velocity:         vel,
		Position:         origin,
		PrevPosition:     origin,
	}
}

// Homing reports whether the projectile steers toward a target.
func (p *Projectile) Homing() bool { return p.HomingStrength > 0 }

// Facing returns the orientation of the shot. It follows the launch
// direction, not the velocity, so inherited ship momentum never rotates it.
func (p *Projectile) Facing() geom.Vec3 { return p.InitialDirection }

// Advance integrates position over dt and counts down the lifetime.
//
// Postcondition: PrevPosition holds the position before the step, so
// [PrevPosition, Position] is the swept segment for collision.
func (p *Projectile) Advance(dt float64) {
	p.PrevPosition = p.Position
	next := p.Position.Add(p.Velocity.Scale(dt))
	if next.IsFinite() {
		p.Position = next
	}
	p.Lifetime -= dt
}

// Expired reports whether the lifetime has run out.
func (p *Projectile) Expired() bool { return p.Lifetime <= 0 }

// Steer blends the heading toward target by min(HomingStrength*dt, 1),
// keeping the speed unchanged.
//
// Postcondition: |Velocity| is unchanged. Returns false, leaving Velocity
// untouched, when any intermediate vector is degenerate or non-finite.
func (p *Projectile) Steer(target geom.Vec3, dt float64) bool {
	speed := p.Velocity.Len()
	heading, ok := p.Velocity.Normalize()
	if !ok {
		return false
	}
	toTarget, ok := target.Sub(p.Position).Normalize()
	if !ok {
		return false
	}
	k := min(p.HomingStrength*dt, 1)
	if !(k > 0) {
		return false
	}
	blended, ok := heading.Lerp(toTarget, k).Normalize()
	if !ok {
		return false
	}
	next := blended.Scale(speed)
	if !next.IsFinite() {
		return false
	}
	p.Velocity = next
	return true
}

// AlreadyHit reports whether e has been resolved against this projectile.
func (p *Projectile) AlreadyHit(e donburi.Entity) bool {
	_, ok := p.hits[e]
	return ok
}

// MarkHit records a resolved hit against e.
func (p *Projectile) MarkHit(e donburi.Entity) {
	if p.hits == nil {
		p.hits = make(map[donburi.Entity]struct{})
	}
	p.hits[e] = struct{}{}
}

// HitCount returns the number of actors resolved against this projectile.
func (p *Projectile) HitCount() int { return len(p.hits) }

// Hit returns the damage application for this projectile at areaFactor.
func (p *Projectile) Hit(areaFactor float64) combat.Hit {
	return combat.Hit{
		Damage:           p.Damage,
		ShieldMultiplier: p.ShieldMult,
		HullMultiplier:   p.HullMult,
		AreaFactor:       areaFactor,
	}
}
