package combat

import (
	"fmt"
	"strings"
)

// StatBonus is the multiplier bundle supplied by the progression layer. It
// is read-only for the duration of a tick.
type StatBonus struct {
	Damage             float64 `msgpack:"damage" yaml:"damage"`
	FireRate           float64 `msgpack:"fire_rate" yaml:"fire_rate"`
	ShieldRecharge     float64 `msgpack:"shield_recharge" yaml:"shield_recharge"`
	EnergyRecharge     float64 `msgpack:"energy_recharge" yaml:"energy_recharge"`
	CriticalChance     float64 `msgpack:"critical_chance" yaml:"critical_chance"`
	CriticalMultiplier float64 `msgpack:"critical_multiplier" yaml:"critical_multiplier"`
	EvasionChance      float64 `msgpack:"evasion_chance" yaml:"evasion_chance"`
	ProjectileSpeed    float64 `msgpack:"projectile_speed" yaml:"projectile_speed"`
}

// NeutralBonus returns the bundle that leaves every number unchanged.
func NeutralBonus() StatBonus {
	return StatBonus{
		Damage:             1,
		FireRate:           1,
		ShieldRecharge:     1,
		EnergyRecharge:     1,
		CriticalChance:     0,
		CriticalMultiplier: 2,
		EvasionChance:      0,
		ProjectileSpeed:    1,
	}
}

// Validate checks that every multiplier is a finite non-negative number,
// that FireRate is positive, and that both chances lie in [0, 1].
//
// Postcondition: Returns nil or an error describing all violations.
func (b StatBonus) Validate() error {
	var errs []string
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"damage", b.Damage},
		{"shield_recharge", b.ShieldRecharge},
		{"energy_recharge", b.EnergyRecharge},
		{"critical_multiplier", b.CriticalMultiplier},
		{"projectile_speed", b.ProjectileSpeed},
	} {
		if !finite(f.v) || f.v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be a finite non-negative number, got %v", f.name, f.v))
		}
	}
	if !finite(b.FireRate) || b.FireRate <= 0 {
		errs = append(errs, fmt.Sprintf("fire_rate must be positive, got %v", b.FireRate))
	}
	if !(b.CriticalChance >= 0 && b.CriticalChance <= 1) {
		errs = append(errs, fmt.Sprintf("critical_chance must be in [0, 1], got %v", b.CriticalChance))
	}
	if !(b.EvasionChance >= 0 && b.EvasionChance <= 1) {
		errs = append(errs, fmt.Sprintf("evasion_chance must be in [0, 1], got %v", b.EvasionChance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid stat bonus: %s", strings.Join(errs, "; "))
	}
	return nil
}
