// Package combat holds the per-actor combat attributes (health, shield,
// energy, stat bonuses, faction) and the shield-before-hull damage resolver.
package combat

import "math"

// Faction is the friend/foe tag of an actor. It never changes at runtime.
type Faction int

const (
	FactionPlayer Faction = iota
	FactionEnemy
	FactionNeutral
)

// String returns the lower-case faction name.
func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "player"
	case FactionEnemy:
		return "enemy"
	case FactionNeutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// ParseFaction maps a faction name back to its Faction.
//
// Postcondition: ok is false for unrecognised names.
func ParseFaction(s string) (Faction, bool) {
	switch s {
	case "player":
		return FactionPlayer, true
	case "enemy":
		return FactionEnemy, true
	case "neutral":
		return FactionNeutral, true
	}
	return FactionNeutral, false
}

// Hostile reports whether a should target b. Only player and enemy are
// mutually hostile; neutrals are never acquired as targets.
func Hostile(a, b Faction) bool {
	return (a == FactionPlayer && b == FactionEnemy) || (a == FactionEnemy && b == FactionPlayer)
}

// Friendly reports whether fire from a must not collide with b.
func Friendly(a, b Faction) bool { return a == b }

// Health is an actor's hull pool.
//
// Invariant: 0 <= Current <= Max.
type Health struct {
	Current float64 `msgpack:"current"`
	Max     float64 `msgpack:"max"`
}

// NewHealth returns a full pool of size max.
func NewHealth(max float64) Health { return Health{Current: max, Max: max} }

// Ratio returns Current/Max, or 0 for an empty pool.
func (h Health) Ratio() float64 { return ratio(h.Current, h.Max) }

// Dead reports whether the hull is exhausted.
func (h Health) Dead() bool { return h.Current <= 0 }

// Damage subtracts amount, clamping at zero. Non-finite or negative amounts are ignored.
func (h *Health) Damage(amount float64) {
	if !finite(amount) || amount <= 0 {
		return
	}
	h.Current = clamp(h.Current-amount, 0, h.Max)
}

// Shield is an actor's regenerating shield pool.
//
// Invariant: 0 <= Current <= Max; the pool recharges only once
// SinceLastHit >= RechargeDelay.
type Shield struct {
	Current       float64 `msgpack:"current"`
	Max           float64 `msgpack:"max"`
	RechargeRate  float64 `msgpack:"recharge_rate"`
	RechargeDelay float64 `msgpack:"recharge_delay"`
	SinceLastHit  float64 `msgpack:"since_last_hit"`
}

// NewShield returns a full shield.
func NewShield(max, rechargeRate, rechargeDelay float64) Shield {
	return Shield{
		Current:       max,
		Max:           max,
		RechargeRate:  rechargeRate,
		RechargeDelay: rechargeDelay,
		SinceLastHit:  rechargeDelay,
	}
}

// Ratio returns Current/Max, or 0 when the actor has no shield capacity.
func (s Shield) Ratio() float64 { return ratio(s.Current, s.Max) }

// Tick advances the time since the last hit and, once the delay has
// elapsed, recharges at RechargeRate*mult per second.
//
// Precondition: dt >= 0.
// Postcondition: 0 <= Current <= Max.
func (s *Shield) Tick(dt, mult float64) {
	if !finite(dt) || dt <= 0 {
		return
	}
	s.SinceLastHit += dt
	if s.SinceLastHit < s.RechargeDelay || s.Current >= s.Max {
		return
	}
	gain := s.RechargeRate * mult * dt
	if !finite(gain) || gain <= 0 {
		return
	}
	s.Current = clamp(s.Current+gain, 0, s.Max)
}

// Energy is the pool that fuels weapon fire.
type Energy struct {
	Current      float64 `msgpack:"current"`
	Max          float64 `msgpack:"max"`
	RechargeRate float64 `msgpack:"recharge_rate"`
}

// NewEnergy returns a full energy pool.
func NewEnergy(max, rechargeRate float64) Energy {
	return Energy{Current: max, Max: max, RechargeRate: rechargeRate}
}

// Ratio returns Current/Max, or 0 for an empty pool.
func (e Energy) Ratio() float64 { return ratio(e.Current, e.Max) }

// Has reports whether cost can be paid.
func (e Energy) Has(cost float64) bool { return e.Current >= cost }

// Consume subtracts cost when affordable.
//
// Postcondition: returns false, leaving Current unchanged, when Current < cost.
func (e *Energy) Consume(cost float64) bool {
	if !e.Has(cost) {
		return false
	}
	e.Current = clamp(e.Current-cost, 0, e.Max)
	return true
}

// Tick regenerates toward Max at RechargeRate*mult per second.
func (e *Energy) Tick(dt, mult float64) {
	gain := e.RechargeRate * mult * dt
	if !finite(gain) || gain <= 0 {
		return
	}
	e.Current = clamp(e.Current+gain, 0, e.Max)
}

func ratio(cur, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return cur / max
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
