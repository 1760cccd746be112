package ai

import "github.com/cory-johannsen/skirmish/internal/game/weapon"

// ShieldedRatio is the target shield ratio above which shield-breakers are preferred.
const ShieldedRatio = 0.25

// TargetStatus is the read-only view of a target used for weapon choice.
type TargetStatus struct {
	HealthRatio float64
	ShieldRatio float64
}

// SelectWeapon returns the mount index best suited to target.
//
// Rules: a shielded target (ratio > 0.25) gets the highest shield
// multiplier; a wounded target (health < 0.5) gets a missile if one is
// mounted, else the highest hull multiplier; otherwise the highest hull
// multiplier. Ties keep the earliest weapon.
//
// Postcondition: ok is false, and the mount must be left alone, when it
// holds fewer than two weapons.
func SelectWeapon(m *weapon.Mount, target TargetStatus) (int, bool) {
	if m.Len() < 2 {
		return 0, false
	}
	byShield := func(p *weapon.Profile) float64 { return p.ShieldMult }
	byHull := func(p *weapon.Profile) float64 { return p.HullMult }

	switch {
	case target.ShieldRatio > ShieldedRatio:
		return best(m, byShield), true
	case target.HealthRatio < WoundedHealth:
		for i, w := range m.Weapons {
			if w.Profile.Type == weapon.TypeMissile {
				return i, true
			}
		}
		return best(m, byHull), true
	default:
		return best(m, byHull), true
	}
}

func best(m *weapon.Mount, score func(*weapon.Profile) float64) int {
	idx := 0
	top := score(m.Weapons[0].Profile)
	for i, w := range m.Weapons[1:] {
		if s := score(w.Profile); s > top {
			idx, top = i+1, s
		}
	}
	return idx
}
