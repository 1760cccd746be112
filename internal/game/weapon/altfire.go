package weapon

import "fmt"

// AltMode names a secondary fire pattern. The empty mode means the weapon
// has no alt-fire.
type AltMode string

const (
	AltNone       AltMode = ""
	AltBurst      AltMode = "burst"
	AltShotgun    AltMode = "shotgun"
	AltSwarm      AltMode = "swarm"
	AltCharged    AltMode = "charged"
	AltOvercharge AltMode = "overcharge"
)

// Validate reports an error for unknown modes.
func (m AltMode) Validate() error {
	switch m {
	case AltNone, AltBurst, AltShotgun, AltSwarm, AltCharged, AltOvercharge:
		return nil
	}
	return fmt.Errorf("unknown alt_fire mode %q", string(m))
}

// AltPattern is the numeric description of an alt-fire mode.
type AltPattern struct {
	Shots int
	// EnergyMult scales the profile energy cost for the whole volley.
	EnergyMult float64
	// DamageScale scales per-shot damage.
	DamageScale float64
	// SpreadMult scales the profile spread; ExtraSpread is added after scaling.
	SpreadMult  float64
	ExtraSpread float64
	// CooldownIntervals sets the cooldown in multiples of the base interval.
	CooldownIntervals float64
	ForcePiercing     bool
	// ForceHoming overrides the type's homing strength when positive.
	ForceHoming float64
}

// AltFireFor returns the pattern of m.
//
// Postcondition: ok is false for AltNone.
func AltFireFor(m AltMode) (AltPattern, bool) {
	switch m {
	case AltBurst:
		return AltPattern{Shots: 3, EnergyMult: 2.5, DamageScale: 0.8, SpreadMult: 2, CooldownIntervals: 2}, true
	case AltShotgun:
		return AltPattern{Shots: 6, EnergyMult: 3, DamageScale: 0.5, SpreadMult: 1, ExtraSpread: 0.15, CooldownIntervals: 2.5}, true
	case AltSwarm:
		return AltPattern{Shots: 4, EnergyMult: 2, DamageScale: 0.6, SpreadMult: 1, ExtraSpread: 0.2, CooldownIntervals: 3, ForceHoming: 3}, true
	case AltCharged:
		return AltPattern{Shots: 1, EnergyMult: 1, DamageScale: 1, SpreadMult: 1, CooldownIntervals: 2}, true
	case AltOvercharge:
		return AltPattern{Shots: 1, EnergyMult: 4, DamageScale: 2, SpreadMult: 0, CooldownIntervals: 4, ForcePiercing: true}, true
	}
	return AltPattern{}, false
}

// chargeScale turns accumulated charge into the damage and energy factor of
// a charged shot: 1 at zero charge, 2.5 at MaxCharge.
func chargeScale(charge float64) float64 {
	return 1 + 1.5*min(max(charge, 0), MaxCharge)/MaxCharge
}
