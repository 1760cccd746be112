// Package weapon models weapon profiles, per-weapon firing state, mounts, and
// the fire/refuse decision that produces projectile shot descriptions.
package weapon

import "fmt"

// Type tags a weapon family. The tag alone determines projectile behavior.
type Type string

const (
	TypeLaser      Type = "laser"
	TypePlasma     Type = "plasma"
	TypeIonCannon  Type = "ion_cannon"
	TypeAutocannon Type = "autocannon"
	TypeMissile    Type = "missile"
	TypeRailgun    Type = "railgun"
	TypeFlakCannon Type = "flak_cannon"
)

// Types lists every known weapon type.
var Types = []Type{
	TypeLaser, TypePlasma, TypeIonCannon, TypeAutocannon,
	TypeMissile, TypeRailgun, TypeFlakCannon,
}

// Validate reports an error for unknown type tags.
func (t Type) Validate() error {
	for _, known := range Types {
		if t == known {
			return nil
		}
	}
	return fmt.Errorf("unknown weapon type %q", string(t))
}

// Behavior is the projectile behavior implied by a weapon type.
type Behavior struct {
	// HomingStrength is the per-second heading blend toward a target; 0 disables homing.
	HomingStrength float64
	// AreaRadius is the splash radius; 0 disables splash.
	AreaRadius float64
	Piercing   bool
}

const (
	missileHoming = 4.0
	missileSplash = 6.0
	flakSplash    = 10.0
)

// BehaviorFor returns the projectile behavior of t.
//
// Postcondition: missile homes strongly with medium splash; railgun pierces;
// flak cannon splashes; every other type has no special behavior.
func BehaviorFor(t Type) Behavior {
	switch t {
	case TypeMissile:
		return Behavior{HomingStrength: missileHoming, AreaRadius: missileSplash}
	case TypeRailgun:
		return Behavior{Piercing: true}
	case TypeFlakCannon:
		return Behavior{AreaRadius: flakSplash}
	default:
		return Behavior{}
	}
}
