// Package ship provides the ship-class table used to spawn combatants.
package ship

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Class identifies a base hull preset.
type Class string

const (
	Fighter     Class = "fighter"
	Corvette    Class = "corvette"
	Frigate     Class = "frigate"
	CapitalShip Class = "capital_ship"
)

// IsElite reports whether AI ships of this class fly with the elite profile.
func (c Class) IsElite() bool {
	return c == Frigate || c == CapitalShip
}

// ClassDef is the starting configuration of a ship class, loaded from YAML.
type ClassDef struct {
	ID             Class    `yaml:"id"`
	Name           string   `yaml:"name"`
	Hull           float64  `yaml:"hull"`
	Shield         float64  `yaml:"shield"`
	ShieldRecharge float64  `yaml:"shield_recharge"`
	ShieldDelay    float64  `yaml:"shield_delay"`
	Energy         float64  `yaml:"energy"`
	EnergyRecharge float64  `yaml:"energy_recharge"`
	MaxSpeed       float64  `yaml:"max_speed"`
	TurnRate       float64  `yaml:"turn_rate"` // radians per second
	Radius         float64  `yaml:"radius"`
	Weapons        []string `yaml:"weapons"`
	Aggression     float64  `yaml:"aggression"`
	// EvasionThreshold is the per-evaluation probability of breaking off an attack.
	EvasionThreshold float64 `yaml:"evasion_threshold"`
	// Points is the default progression award for destroying this class.
	Points int `yaml:"points"`
}

// Validate checks that the definition satisfies basic invariants.
//
// Precondition: d must not be nil.
// Postcondition: Returns nil iff every violation list is empty; all
// violations are reported together.
func (d *ClassDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if !(d.Hull > 0) || math.IsInf(d.Hull, 0) {
		errs = append(errs, fmt.Errorf("hull must be > 0, got %v", d.Hull))
	}
	if !(d.MaxSpeed > 0) || math.IsInf(d.MaxSpeed, 0) {
		errs = append(errs, fmt.Errorf("max_speed must be > 0, got %v", d.MaxSpeed))
	}
	if !(d.Radius > 0) || math.IsInf(d.Radius, 0) {
		errs = append(errs, fmt.Errorf("radius must be > 0, got %v", d.Radius))
	}
	for name, v := range map[string]float64{
		"shield":          d.Shield,
		"shield_recharge": d.ShieldRecharge,
		"shield_delay":    d.ShieldDelay,
		"energy":          d.Energy,
		"energy_recharge": d.EnergyRecharge,
		"turn_rate":       d.TurnRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, fmt.Errorf("%s must be a finite non-negative number, got %v", name, v))
		}
	}
	for name, v := range map[string]float64{
		"aggression":        d.Aggression,
		"evasion_threshold": d.EvasionThreshold,
	} {
		if !(v >= 0 && v <= 1) {
			errs = append(errs, fmt.Errorf("%s must be in [0,1], got %v", name, v))
		}
	}
	if d.Points < 0 {
		errs = append(errs, fmt.Errorf("points must be >= 0, got %d", d.Points))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ship class %q validation failed: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// NewHealth returns a full hull pool.
func (d *ClassDef) NewHealth() combat.Health {
	return combat.NewHealth(d.Hull)
}

// NewShield returns a full shield, or nil when the class carries none.
func (d *ClassDef) NewShield() *combat.Shield {
	if d.Shield <= 0 {
		return nil
	}
	s := combat.NewShield(d.Shield, d.ShieldRecharge, d.ShieldDelay)
	return &s
}

// NewEnergy returns a full energy pool, or nil when the class carries none.
func (d *ClassDef) NewEnergy() *combat.Energy {
	if d.Energy <= 0 {
		return nil
	}
	e := combat.NewEnergy(d.Energy, d.EnergyRecharge)
	return &e
}

// AIConfig returns the controller tuning for ships of this class.
func (d *ClassDef) AIConfig() ai.Config {
	return ai.Config{
		Aggression:       d.Aggression,
		EvasionThreshold: d.EvasionThreshold,
		Elite:            d.ID.IsElite(),
	}
}

// DefaultClasses returns the four built-in presets.
//
// Postcondition: every returned definition passes Validate.
func DefaultClasses() []*ClassDef {
	return []*ClassDef{
		{
			ID: Fighter, Name: "Fighter",
			Hull: 50, Shield: 30, ShieldRecharge: 8, ShieldDelay: 3,
			Energy: 100, EnergyRecharge: 20,
			MaxSpeed: 40, TurnRate: 3, Radius: 2,
			Weapons:    []string{"laser", "autocannon"},
			Aggression: 0.8, EvasionThreshold: 0.3,
			Points: 10,
		},
		{
			ID: Corvette, Name: "Corvette",
			Hull: 100, Shield: 60, ShieldRecharge: 10, ShieldDelay: 3.5,
			Energy: 150, EnergyRecharge: 25,
			MaxSpeed: 30, TurnRate: 2, Radius: 3,
			Weapons:    []string{"laser", "missile"},
			Aggression: 0.6, EvasionThreshold: 0.25,
			Points: 25,
		},
		{
			ID: Frigate, Name: "Frigate",
			Hull: 200, Shield: 120, ShieldRecharge: 12, ShieldDelay: 4,
			Energy: 250, EnergyRecharge: 30,
			MaxSpeed: 20, TurnRate: 1.2, Radius: 5,
			Weapons:    []string{"plasma", "ion_cannon", "missile"},
			Aggression: 0.5, EvasionThreshold: 0.2,
			Points: 60,
		},
		{
			ID: CapitalShip, Name: "Capital Ship",
			Hull: 500, Shield: 300, ShieldRecharge: 20, ShieldDelay: 5,
			Energy: 500, EnergyRecharge: 50,
			MaxSpeed: 12, TurnRate: 0.6, Radius: 10,
			Weapons:    []string{"railgun", "flak_cannon", "ion_cannon", "missile"},
			Aggression: 0.4, EvasionThreshold: 0.1,
			Points: 150,
		},
	}
}
