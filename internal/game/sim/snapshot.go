package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cory-johannsen/skirmish/internal/game/aim"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

// WeaponView is the read model of one mounted weapon.
type WeaponView struct {
	ID          string  `msgpack:"id"`
	Type        string  `msgpack:"type"`
	Cooldown    float64 `msgpack:"cooldown"`
	Heat        float64 `msgpack:"heat"`
	Overheated  bool    `msgpack:"overheated"`
	Ammo        int     `msgpack:"ammo"`
	Reserve     int     `msgpack:"reserve"`
	Reloading   bool    `msgpack:"reloading"`
	Charge      float64 `msgpack:"charge"`
	AltFireMode string  `msgpack:"alt_fire"`
}

// ActorView is the read model of one actor.
type ActorView struct {
	ID       uuid.UUID      `msgpack:"id"`
	Name     string         `msgpack:"name"`
	Class    string         `msgpack:"class"`
	Faction  string         `msgpack:"faction"`
	Player   bool           `msgpack:"player"`
	Position geom.Vec3      `msgpack:"position"`
	Velocity geom.Vec3      `msgpack:"velocity"`
	Facing   geom.Vec3      `msgpack:"facing"`
	Health   combat.Health  `msgpack:"health"`
	Shield   *combat.Shield `msgpack:"shield,omitempty"`
	Energy   *combat.Energy `msgpack:"energy,omitempty"`
	AIState  string         `msgpack:"ai_state,omitempty"`
	Target   *uuid.UUID     `msgpack:"target,omitempty"`
	Current  int            `msgpack:"current_weapon"`
	Weapons  []WeaponView   `msgpack:"weapons"`
}

// ProjectileView is the read model of one projectile.
type ProjectileView struct {
	Owner    uuid.UUID `msgpack:"owner"`
	Type     string    `msgpack:"type"`
	Position geom.Vec3 `msgpack:"position"`
	Velocity geom.Vec3 `msgpack:"velocity"`
	Facing   geom.Vec3 `msgpack:"facing"`
	Lifetime float64   `msgpack:"lifetime"`
	Homing   bool      `msgpack:"homing"`
}

// Snapshot is a copy of the world state; it shares nothing with the world.
type Snapshot struct {
	Tick        uint64           `msgpack:"tick"`
	Time        float64          `msgpack:"time"`
	Actors      []ActorView      `msgpack:"actors"`
	Projectiles []ProjectileView `msgpack:"projectiles"`
}

// Encode serializes the snapshot with msgpack.
func (s Snapshot) Encode() ([]byte, error) {
	b, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a msgpack-encoded snapshot.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return s, nil
}

// Snapshot returns the current state, actors in spawn order and
// projectiles in launch order.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{Tick: w.tick, Time: w.time}
	for _, a := range w.actors() {
		snap.Actors = append(snap.Actors, w.actorView(a))
	}
	for _, sr := range w.shots() {
		p := &sr.s.Projectile
		snap.Projectiles = append(snap.Projectiles, ProjectileView{
			Owner:    sr.s.OwnerRef.ID,
			Type:     string(p.Type),
			Position: p.Position,
			Velocity: p.Velocity,
			Facing:   p.Facing(),
			Lifetime: p.Lifetime,
			Homing:   p.Homing(),
		})
	}
	return snap
}

// Actor returns the read model of the actor h.
func (w *World) Actor(h Handle) (ActorView, bool) {
	a, ok := w.actor(h)
	if !ok {
		return ActorView{}, false
	}
	return w.actorView(a), true
}

func (w *World) actorView(a *actor) ActorView {
	v := ActorView{
		ID:       a.id.ID,
		Name:     a.id.Name,
		Class:    string(a.id.Class),
		Faction:  a.id.Faction.String(),
		Player:   a.id.Player,
		Position: a.body.Position,
		Velocity: a.body.Velocity,
		Facing:   a.body.Facing,
		Health:   a.vit.Health,
	}
	if a.vit.Shield != nil {
		s := *a.vit.Shield
		v.Shield = &s
	}
	if a.vit.Energy != nil {
		e := *a.vit.Energy
		v.Energy = &e
	}
	if a.ctrl != nil {
		v.AIState = a.ctrl.State()
		if t, ok := w.actor(a.ctrl.Target); ok {
			id := t.id.ID
			v.Target = &id
		}
	}
	if a.mount != nil {
		v.Current = a.mount.Current
		for _, wpn := range a.mount.Weapons {
			v.Weapons = append(v.Weapons, weaponView(wpn))
		}
	}
	return v
}

func weaponView(wpn *weapon.Weapon) WeaponView {
	return WeaponView{
		ID:          wpn.Profile.ID,
		Type:        string(wpn.Profile.Type),
		Cooldown:    wpn.State.Cooldown,
		Heat:        wpn.State.Heat,
		Overheated:  wpn.State.Overheated,
		Ammo:        wpn.State.CurrentAmmo,
		Reserve:     wpn.State.ReserveAmmo,
		Reloading:   wpn.State.Reloading,
		Charge:      wpn.State.AltFireCharge,
		AltFireMode: string(wpn.Profile.AltFire),
	}
}

// AimAssist is a lead indicator for a player.
type AimAssist struct {
	Target    uuid.UUID `msgpack:"target"`
	Current   geom.Vec3 `msgpack:"current"`
	Lead      geom.Vec3 `msgpack:"lead"`
	Predicted bool      `msgpack:"predicted"`
}

// AimAssist computes the lead point on the nearest hostile within the
// acquisition radius for h's current weapon.
//
// Postcondition: ok is false when h is stale, unarmed, or has no hostile in
// range. When the intercept cannot be predicted, Lead is the target's
// current position and Predicted is false.
func (w *World) AimAssist(h Handle) (AimAssist, bool) {
	a, ok := w.actor(h)
	if !ok {
		return AimAssist{}, false
	}
	active := a.mount.Active()
	if active == nil {
		return AimAssist{}, false
	}
	actors := w.actors()
	c, ok := combat.NearestHostile(a.body.Position, a.id.Faction, contactsOf(actors), w.opts.AcquisitionRadius)
	if !ok {
		return AimAssist{}, false
	}
	target, _ := w.actor(c.Handle)
	speed := active.Profile.ProjectileSpeed * a.vit.Bonus.ProjectileSpeed
	out := AimAssist{Target: target.id.ID, Current: c.Position, Lead: c.Position}
	if lead, ok := aim.InterceptPointWithin(a.body.Position, c.Position, c.Velocity, speed, w.opts.InterceptHorizon); ok {
		out.Lead, out.Predicted = lead, true
	}
	return out, true
}
