package weapon

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile defines the static properties of a weapon loaded from YAML.
type Profile struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Type            Type    `yaml:"type"`
	Damage          float64 `yaml:"damage"`
	FireRate        float64 `yaml:"fire_rate"` // shots per second
	ProjectileSpeed float64 `yaml:"projectile_speed"`
	EnergyCost      float64 `yaml:"energy_cost"`
	Spread          float64 `yaml:"spread"` // radians, uniform per axis
	ShieldMult      float64 `yaml:"shield_damage_multiplier"`
	HullMult        float64 `yaml:"hull_damage_multiplier"`
	Lifetime        float64 `yaml:"lifetime"` // seconds
	HeatPerShot     float64 `yaml:"heat_per_shot"`
	MaxHeat         float64 `yaml:"max_heat"` // 0 = no heat cap
	CoolingRate     float64 `yaml:"cooling_rate"`
	MaxAmmo         int     `yaml:"max_ammo"` // 0 = unlimited
	ReserveAmmo     int     `yaml:"reserve_ammo"`
	ReloadTime      float64 `yaml:"reload_time"`
	AltFire         AltMode `yaml:"alt_fire"`
}

// UnlimitedAmmo reports whether the weapon never consumes rounds.
func (p *Profile) UnlimitedAmmo() bool { return p.MaxAmmo == 0 }

// HeatCapped reports whether the weapon can overheat.
func (p *Profile) HeatCapped() bool { return p.MaxHeat > 0 }

// Interval returns the base seconds between shots.
func (p *Profile) Interval() float64 { return 1 / p.FireRate }

// Validate checks that the Profile satisfies its invariants.
//
// Precondition: p is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (p *Profile) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if err := p.Type.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := p.AltFire.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !positive(p.FireRate) {
		errs = append(errs, fmt.Errorf("fire_rate must be > 0, got %v", p.FireRate))
	}
	if !positive(p.ProjectileSpeed) {
		errs = append(errs, fmt.Errorf("projectile_speed must be > 0, got %v", p.ProjectileSpeed))
	}
	if !positive(p.Lifetime) {
		errs = append(errs, fmt.Errorf("lifetime must be > 0, got %v", p.Lifetime))
	}
	for name, v := range map[string]float64{
		"damage":                   p.Damage,
		"energy_cost":              p.EnergyCost,
		"spread":                   p.Spread,
		"shield_damage_multiplier": p.ShieldMult,
		"hull_damage_multiplier":   p.HullMult,
		"heat_per_shot":            p.HeatPerShot,
		"max_heat":                 p.MaxHeat,
		"cooling_rate":             p.CoolingRate,
		"reload_time":              p.ReloadTime,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, fmt.Errorf("%s must be a finite non-negative number, got %v", name, v))
		}
	}
	if p.Spread >= math.Pi/2 {
		errs = append(errs, fmt.Errorf("spread must be < pi/2, got %v", p.Spread))
	}
	if p.MaxAmmo < 0 || p.ReserveAmmo < 0 {
		errs = append(errs, errors.New("max_ammo and reserve_ammo must be >= 0"))
	}
	if p.MaxAmmo > 0 && p.ReloadTime <= 0 {
		errs = append(errs, errors.New("ammo-fed weapons need reload_time > 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon %q validation failed: %w", p.ID, errors.Join(errs...))
	}
	return nil
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

// LoadProfiles reads all *.yaml files from dir, parses each as a Profile,
// validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Profiles or the first encountered error.
func LoadProfiles(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadProfiles: cannot read directory %q: %w", dir, err)
	}

	var profiles []*Profile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadProfiles: cannot read file %q: %w", path, err)
		}
		var p Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("LoadProfiles: cannot parse file %q: %w", path, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("LoadProfiles: invalid weapon in %q: %w", path, err)
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

// DefaultProfiles returns the built-in weapon table, one profile per type.
//
// Postcondition: every returned profile passes Validate.
func DefaultProfiles() []*Profile {
	return []*Profile{
		{
			ID: "laser", Name: "Pulse Laser", Type: TypeLaser,
			Damage: 12, FireRate: 4, ProjectileSpeed: 120, EnergyCost: 5, Spread: 0.01,
			ShieldMult: 2.5, HullMult: 0.3, Lifetime: 2,
			AltFire: AltBurst,
		},
		{
			ID: "plasma", Name: "Plasma Thrower", Type: TypePlasma,
			Damage: 20, FireRate: 2, ProjectileSpeed: 80, EnergyCost: 10, Spread: 0.02,
			ShieldMult: 1.2, HullMult: 1.2, Lifetime: 2.5,
			HeatPerShot: 8, MaxHeat: 100, CoolingRate: 20,
			AltFire: AltCharged,
		},
		{
			ID: "ion_cannon", Name: "Ion Cannon", Type: TypeIonCannon,
			Damage: 15, FireRate: 1.5, ProjectileSpeed: 90, EnergyCost: 12, Spread: 0.005,
			ShieldMult: 3, HullMult: 0.2, Lifetime: 2,
		},
		{
			ID: "autocannon", Name: "Autocannon", Type: TypeAutocannon,
			Damage: 6, FireRate: 10, ProjectileSpeed: 140, Spread: 0.04,
			ShieldMult: 0.6, HullMult: 1.4, Lifetime: 1.5,
			HeatPerShot: 2, MaxHeat: 100, CoolingRate: 25,
			MaxAmmo: 60, ReserveAmmo: 240, ReloadTime: 2,
			AltFire: AltShotgun,
		},
		{
			ID: "missile", Name: "Seeker Missile", Type: TypeMissile,
			Damage: 40, FireRate: 0.5, ProjectileSpeed: 50,
			ShieldMult: 0.8, HullMult: 2, Lifetime: 5,
			MaxAmmo: 4, ReserveAmmo: 16, ReloadTime: 3,
			AltFire: AltSwarm,
		},
		{
			ID: "railgun", Name: "Railgun", Type: TypeRailgun,
			Damage: 60, FireRate: 0.4, ProjectileSpeed: 250, EnergyCost: 30,
			ShieldMult: 1, HullMult: 1.5, Lifetime: 1.5,
			HeatPerShot: 40, MaxHeat: 100, CoolingRate: 15,
			AltFire: AltOvercharge,
		},
		{
			ID: "flak_cannon", Name: "Flak Cannon", Type: TypeFlakCannon,
			Damage: 8, FireRate: 2, ProjectileSpeed: 70, EnergyCost: 6, Spread: 0.1,
			ShieldMult: 1, HullMult: 1, Lifetime: 1.2,
			AltFire: AltShotgun,
		},
	}
}
