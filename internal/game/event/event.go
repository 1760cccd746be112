// Package event defines the one-way notifications the combat core emits
// and a non-blocking bus that fans them out to consumers.
package event

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Kind names an event type.
type Kind string

const (
	KindHit            Kind = "hit"
	KindActorDestroyed Kind = "actor_destroyed"
	KindShieldBroken   Kind = "shield_broken"
	KindDamageDealt    Kind = "damage_dealt"
	KindKill           Kind = "kill"
	KindOverheated     Kind = "overheated"
)

// Event is implemented by every notification type.
type Event interface {
	Kind() Kind
}

// Actor identifies a combatant in events. ID is stable for the actor's
// lifetime and never reused.
type Actor struct {
	ID      uuid.UUID      `msgpack:"id"`
	Class   string         `msgpack:"class"`
	Faction combat.Faction `msgpack:"faction"`
}

// Hit is emitted for every resolved hit, direct or splash.
type Hit struct {
	Target   Actor     `msgpack:"target"`
	Position geom.Vec3 `msgpack:"position"`
	Damage   float64   `msgpack:"damage"`
	Critical bool      `msgpack:"critical"`
	Splash   bool      `msgpack:"splash"`
}

// ActorDestroyed is emitted once when an actor is removed at end of tick.
type ActorDestroyed struct {
	Actor    Actor     `msgpack:"actor"`
	Position geom.Vec3 `msgpack:"position"`
	IsEnemy  bool      `msgpack:"is_enemy"`
}

// ShieldBroken is emitted when a hit drives a shield to zero.
type ShieldBroken struct {
	Actor    Actor     `msgpack:"actor"`
	Position geom.Vec3 `msgpack:"position"`
}

// DamageDealt credits the owner of a projectile with damage applied.
type DamageDealt struct {
	Source Actor   `msgpack:"source"`
	Target Actor   `msgpack:"target"`
	Amount float64 `msgpack:"amount"`
}

// Kill credits the owner of the projectile that destroyed an actor.
type Kill struct {
	Killer  Actor `msgpack:"killer"`
	Victim  Actor `msgpack:"victim"`
	IsEnemy bool  `msgpack:"is_enemy"`
}

// Overheated is emitted when a shot brings a weapon to its heat cap.
type Overheated struct {
	Actor  Actor  `msgpack:"actor"`
	Weapon string `msgpack:"weapon"`
}

func (Hit) Kind() Kind            { return KindHit }
func (ActorDestroyed) Kind() Kind { return KindActorDestroyed }
func (ShieldBroken) Kind() Kind   { return KindShieldBroken }
func (DamageDealt) Kind() Kind    { return KindDamageDealt }
func (Kill) Kind() Kind           { return KindKill }
func (Overheated) Kind() Kind     { return KindOverheated }
