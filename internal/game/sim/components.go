package sim

import (
	"github.com/google/uuid"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/projectile"
	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

// Handle is a weak, generation-checked reference to an entity in a World.
type Handle = donburi.Entity

// identity is the immutable part of an actor.
type identity struct {
	ID      uuid.UUID
	Seq     uint64
	Name    string
	Class   ship.Class
	Faction combat.Faction
	Player  bool
}

func (id *identity) ref() event.Actor {
	return event.Actor{ID: id.ID, Class: string(id.Class), Faction: id.Faction}
}

// body is an actor's kinematic state and the motion requested for this tick.
type body struct {
	Position geom.Vec3
	Velocity geom.Vec3
	Facing   geom.Vec3
	MaxSpeed float64
	TurnRate float64
	Radius   float64

	WantVelocity geom.Vec3
	WantFacing   geom.Vec3
}

// vitals holds the combatant pools. Shield and Energy are optional.
type vitals struct {
	Health combat.Health
	Shield *combat.Shield
	Energy *combat.Energy
	Bonus  combat.StatBonus
}

func (v *vitals) shieldRatio() float64 {
	if v.Shield == nil {
		return 0
	}
	return v.Shield.Ratio()
}

type arms struct {
	Mount *weapon.Mount
}

type brain struct {
	Controller *ai.Controller
}

// pilot buffers player intents between ticks.
type pilot struct {
	FirePrimary     bool
	SecondaryHeld   bool
	SecondaryFinish bool
	Aim             geom.Vec3
	Steer           geom.Vec3
}

// shot is a projectile in flight plus the bookkeeping the world needs
// after its owner may be gone.
type shot struct {
	Seq      uint64
	OwnerRef event.Actor
	projectile.Projectile
}

var (
	identityComponent = donburi.NewComponentType[identity]()
	bodyComponent     = donburi.NewComponentType[body]()
	vitalsComponent   = donburi.NewComponentType[vitals]()
	armsComponent     = donburi.NewComponentType[arms]()
	brainComponent    = donburi.NewComponentType[brain]()
	pilotComponent    = donburi.NewComponentType[pilot]()
	shotComponent     = donburi.NewComponentType[shot]()

	actorQuery = donburi.NewQuery(filter.Contains(identityComponent, bodyComponent, vitalsComponent))
	shotQuery  = donburi.NewQuery(filter.Contains(shotComponent))
)
