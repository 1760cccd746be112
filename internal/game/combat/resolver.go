package combat

// HitOutcome classifies how a resolved hit was distributed.
type HitOutcome int

const (
	// ShieldAbsorbed means the shield took the whole hit and is still up.
	ShieldAbsorbed HitOutcome = iota
	// ShieldBroken means the hit drove the shield to zero.
	ShieldBroken
	// HullDamaged means the shield was already down and the hull took the hit.
	HullDamaged
)

// String returns a human-readable outcome label.
func (o HitOutcome) String() string {
	switch o {
	case ShieldAbsorbed:
		return "shield absorbed"
	case ShieldBroken:
		return "shield broken"
	case HullDamaged:
		return "hull damaged"
	default:
		return "unknown"
	}
}

// Area factors applied to both shield and hull damage.
const (
	DirectHitFactor = 1.0
	SplashFactor    = 0.5
)

// Hit describes one damage application.
type Hit struct {
	Damage           float64
	ShieldMultiplier float64
	HullMultiplier   float64
	// AreaFactor is DirectHitFactor or SplashFactor.
	AreaFactor float64
}

// HitResult holds what ResolveHit actually applied.
type HitResult struct {
	Outcome HitOutcome
	// ShieldDamage is the amount removed from the shield pool.
	ShieldDamage float64
	// HullDamage is the amount removed from the health pool, including overflow.
	HullDamage float64
	// Overflow is the hull damage converted from shield damage past zero.
	Overflow  float64
	Destroyed bool
}

// Total returns the damage removed from both pools.
func (r HitResult) Total() float64 { return r.ShieldDamage + r.HullDamage }

// ResolveHit applies hit to health and the optional shield, shield first.
//
// When the shield is up it takes Damage*ShieldMultiplier*AreaFactor. Any
// amount past zero is converted to hull damage as
// overflow*HullMultiplier/ShieldMultiplier. This is not a 1:1 carry and must
// stay that way: weapon balance is tuned against it. With the shield down the
// hull takes Damage*HullMultiplier*AreaFactor. Every hit resets the shield's
// recharge delay.
//
// Precondition: health must be non-nil; shield may be nil.
// Postcondition: 0 <= health.Current <= health.Max and 0 <= shield.Current <= shield.Max.
func ResolveHit(health *Health, shield *Shield, hit Hit) HitResult {
	shieldDamage := hit.Damage * hit.ShieldMultiplier * hit.AreaFactor
	hullDamage := hit.Damage * hit.HullMultiplier * hit.AreaFactor
	if !finite(shieldDamage) || shieldDamage < 0 {
		shieldDamage = 0
	}
	if !finite(hullDamage) || hullDamage < 0 {
		hullDamage = 0
	}

	var res HitResult
	if shield != nil {
		shield.SinceLastHit = 0
	}

	if shield != nil && shield.Current > 0 {
		before := shield.Current
		remaining := before - shieldDamage
		if remaining > 0 {
			shield.Current = remaining
			res.Outcome = ShieldAbsorbed
			res.ShieldDamage = shieldDamage
			return res
		}
		shield.Current = 0
		res.Outcome = ShieldBroken
		res.ShieldDamage = before
		if remaining < 0 && hit.ShieldMultiplier > 0 {
			overflow := -remaining * hit.HullMultiplier / hit.ShieldMultiplier
			if finite(overflow) && overflow > 0 {
				res.Overflow = overflow
				res.HullDamage = applyHull(health, overflow)
			}
		}
		res.Destroyed = health.Dead()
		return res
	}

	res.Outcome = HullDamaged
	res.HullDamage = applyHull(health, hullDamage)
	res.Destroyed = health.Dead()
	return res
}

func applyHull(h *Health, amount float64) float64 {
	before := h.Current
	h.Damage(amount)
	return before - h.Current
}
