package weapon

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Refusal is the reason a fire request was declined.
type Refusal int

const (
	NotRefused Refusal = iota
	OnCooldown
	InsufficientEnergy
	Reloading
	Overheated
	OutOfAmmo
	NoAltFire
	InvalidAim
)

// String returns the refusal name.
func (r Refusal) String() string {
	switch r {
	case NotRefused:
		return "fired"
	case OnCooldown:
		return "on_cooldown"
	case InsufficientEnergy:
		return "insufficient_energy"
	case Reloading:
		return "reloading"
	case Overheated:
		return "overheated"
	case OutOfAmmo:
		return "out_of_ammo"
	case NoAltFire:
		return "no_alt_fire"
	case InvalidAim:
		return "invalid_aim"
	default:
		return "unknown"
	}
}

// Roller is the randomness used for crit and spread draws.
type Roller interface {
	Chance(p float64, purpose string) bool
	Uniform(lo, hi float64, purpose string) float64
}

// Shot describes one projectile to spawn. Direction is a unit vector.
type Shot struct {
	Type       Type
	Direction  geom.Vec3
	Speed      float64
	Damage     float64
	Critical   bool
	ShieldMult float64
	HullMult   float64
	Lifetime   float64
	Behavior   Behavior
}

// Outcome is the result of a fire request.
type Outcome struct {
	Refused     Refusal
	Shots       []Shot
	EnergySpent float64
	// HeatCrossed is set when this volley drove heat to the cap.
	HeatCrossed bool
}

// Fired reports whether any projectile was produced.
func (o Outcome) Fired() bool { return o.Refused == NotRefused }

var primaryPattern = AltPattern{Shots: 1, EnergyMult: 1, DamageScale: 1, SpreadMult: 1, CooldownIntervals: 1}

// TryFire attempts a primary shot along aim.
//
// Refusals are checked in order: OnCooldown, InsufficientEnergy, Reloading,
// Overheated, OutOfAmmo. A refused request mutates nothing. A nil energy pool
// means the weapon is not energy-fed.
//
// Postcondition: on success energy is debited, heat and ammo are updated,
// an empty magazine with reserve starts a reload, and
// Cooldown == (1/FireRate)/bonus.FireRate.
func (w *Weapon) TryFire(energy *combat.Energy, bonus combat.StatBonus, aim geom.Vec3, r Roller) Outcome {
	return w.fire(primaryPattern, 1, energy, bonus, aim, r)
}

// TryAltFire attempts the weapon's alt-fire volley. Charged mode consumes
// the accumulated charge, scaling damage and energy cost by up to 2.5x.
//
// Postcondition: same refusal order and bookkeeping as TryFire; the cooldown
// is set to the pattern's explicit interval multiple.
func (w *Weapon) TryAltFire(energy *combat.Energy, bonus combat.StatBonus, aim geom.Vec3, r Roller) Outcome {
	pattern, ok := AltFireFor(w.Profile.AltFire)
	if !ok {
		return Outcome{Refused: NoAltFire}
	}
	scale := 1.0
	if w.Profile.AltFire == AltCharged {
		scale = chargeScale(w.State.AltFireCharge)
	}
	out := w.fire(pattern, scale, energy, bonus, aim, r)
	if out.Fired() && w.Profile.AltFire == AltCharged {
		w.CancelCharge()
	}
	return out
}

// Readiness returns the reason a volley costing energyMult would be declined now,
// or NotRefused.
func (w *Weapon) Readiness(energy *combat.Energy, energyMult float64) Refusal {
	s := &w.State
	p := w.Profile
	switch {
	case s.Cooldown > 0:
		return OnCooldown
	case energy != nil && !energy.Has(p.EnergyCost*energyMult):
		return InsufficientEnergy
	case s.Reloading:
		return Reloading
	case p.HeatCapped() && s.Heat >= p.MaxHeat:
		return Overheated
	case !p.UnlimitedAmmo() && s.CurrentAmmo <= 0:
		return OutOfAmmo
	}
	return NotRefused
}

func (w *Weapon) fire(pat AltPattern, scale float64, energy *combat.Energy, bonus combat.StatBonus, aim geom.Vec3, r Roller) Outcome {
	dir, ok := aim.Normalize()
	if !ok {
		return Outcome{Refused: InvalidAim}
	}
	energyMult := pat.EnergyMult * scale
	if reason := w.Readiness(energy, energyMult); reason != NotRefused {
		return Outcome{Refused: reason}
	}

	s := &w.State
	p := w.Profile

	n := pat.Shots
	if !p.UnlimitedAmmo() {
		n = min(n, s.CurrentAmmo)
	}

	var out Outcome
	if energy != nil {
		cost := p.EnergyCost * energyMult
		energy.Consume(cost)
		out.EnergySpent = cost
	}

	if p.HeatPerShot > 0 {
		wasCapped := s.Overheated
		s.Heat += p.HeatPerShot * float64(n)
		if p.HeatCapped() && s.Heat >= p.MaxHeat && !wasCapped {
			s.Overheated = true
			out.HeatCrossed = true
		}
	}

	if !p.UnlimitedAmmo() {
		s.CurrentAmmo -= n
		if s.CurrentAmmo == 0 && s.ReserveAmmo > 0 {
			w.StartReload()
		}
	}

	fireRate := bonus.FireRate
	if !(fireRate > 0) {
		fireRate = 1
	}
	s.Cooldown = pat.CooldownIntervals * p.Interval() / fireRate

	speed := p.ProjectileSpeed * bonus.ProjectileSpeed
	if !(speed > 0) || !geom.IsFinite(speed) {
		speed = p.ProjectileSpeed
	}
	behavior := BehaviorFor(p.Type)
	if pat.ForcePiercing {
		behavior.Piercing = true
	}
	if pat.ForceHoming > 0 {
		behavior.HomingStrength = pat.ForceHoming
	}
	spread := p.Spread*pat.SpreadMult + pat.ExtraSpread

	out.Shots = make([]Shot, 0, n)
	for i := 0; i < n; i++ {
		damage := p.Damage * pat.DamageScale * scale * bonus.Damage
		crit := r.Chance(bonus.CriticalChance, "critical")
		if crit {
			damage *= bonus.CriticalMultiplier
		}
		shotDir := dir
		if spread > 0 {
			yaw := r.Uniform(-spread, spread, "spread_yaw")
			pitch := r.Uniform(-spread, spread, "spread_pitch")
			shotDir = geom.Perturb(dir, yaw, pitch)
		}
		out.Shots = append(out.Shots, Shot{
			Type:       p.Type,
			Direction:  shotDir,
			Speed:      speed,
			Damage:     damage,
			Critical:   crit,
			ShieldMult: p.ShieldMult,
			HullMult:   p.HullMult,
			Lifetime:   p.Lifetime,
			Behavior:   behavior,
		})
	}
	return out
}
