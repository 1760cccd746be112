package sim

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

// IntentKind names a discrete player input.
type IntentKind string

const (
	IntentFirePrimary        IntentKind = "fire_primary"
	IntentFireSecondaryStart IntentKind = "fire_secondary_start"
	IntentFireSecondaryStop  IntentKind = "fire_secondary_stop"
	IntentSelectWeapon       IntentKind = "select_weapon"
	IntentReload             IntentKind = "reload"
	IntentSteer              IntentKind = "steer"
	IntentAim                IntentKind = "aim"
)

// Intent is a player command applied on the next Step.
type Intent struct {
	Kind IntentKind
	// Index is the mount slot for select_weapon.
	Index int
	// Vector is the desired velocity for steer or the aim direction for aim.
	Vector geom.Vec3
}

// Submit queues or applies intent for the player actor h.
//
// Fire intents are buffered and consumed by the next Step; a refused shot is
// dropped and the caller may retry. select_weapon and reload take effect
// immediately.
//
// Postcondition: returns an error only for a stale handle, a non-player
// actor, an out-of-range index, a non-finite vector or an unknown kind.
func (w *World) Submit(h Handle, in Intent) error {
	a, ok := w.actor(h)
	if !ok {
		return ErrUnknownActor
	}
	if a.pilot == nil {
		return ErrNotPlayer
	}
	p := a.pilot

	switch in.Kind {
	case IntentFirePrimary:
		p.FirePrimary = true
	case IntentFireSecondaryStart:
		p.SecondaryHeld = true
		p.SecondaryFinish = false
		if active := a.mount.Active(); active != nil && active.Profile.AltFire == weapon.AltCharged {
			active.BeginCharge()
		}
	case IntentFireSecondaryStop:
		// a refused charged release keeps its charge and may be released again
		if active := a.mount.Active(); p.SecondaryHeld || (active != nil && active.State.Charging) {
			p.SecondaryFinish = true
		}
		p.SecondaryHeld = false
	case IntentSelectWeapon:
		if !a.mount.Select(in.Index) {
			return fmt.Errorf("select_weapon: index %d out of range [0,%d)", in.Index, a.mount.Len())
		}
	case IntentReload:
		if active := a.mount.Active(); active != nil {
			active.StartReload()
		}
	case IntentSteer:
		if !in.Vector.IsFinite() {
			return fmt.Errorf("steer: vector %v is not finite", in.Vector)
		}
		p.Steer = in.Vector
	case IntentAim:
		if !in.Vector.IsFinite() {
			return fmt.Errorf("aim: vector %v is not finite", in.Vector)
		}
		p.Aim = in.Vector
	default:
		return fmt.Errorf("unknown intent kind %q", in.Kind)
	}
	return nil
}
