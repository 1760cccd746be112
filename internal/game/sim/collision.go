package sim

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

type contact struct {
	a *actor
	t float64 // position along the swept segment
}

// collide tests every projectile's swept segment against every actor.
//
// Owners and actors of the owner's faction are never hit. Candidates are
// resolved nearest-first along the segment; a non-piercing projectile stops
// at its first resolved hit. Actors already at zero health are skipped, and
// a piercing projectile never resolves twice against the same actor.
func (w *World) collide(ts *tickState, shots []*shotRef) {
	for _, sr := range shots {
		s := sr.s
		var hits []contact
		for _, a := range ts.actors {
			if !w.hittable(s, a) {
				continue
			}
			if geom.SegmentPointDistance(s.PrevPosition, s.Position, a.body.Position) <= a.body.Radius {
				hits = append(hits, contact{a: a, t: geom.SegmentParam(s.PrevPosition, s.Position, a.body.Position)})
			}
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].t < hits[j].t })

		for _, c := range hits {
			if !c.a.alive() {
				continue
			}
			s.MarkHit(c.a.h)
			if w.roller.Chance(c.a.vit.Bonus.EvasionChance, "evasion") {
				w.logger.Debug("hit evaded", zap.String("actor", c.a.id.ID.String()))
				continue
			}
			impact := s.PrevPosition.Lerp(s.Position, c.t)
			w.applyHit(ts, s, c.a, combat.DirectHitFactor, impact)
			if s.AreaRadius > 0 {
				w.splash(ts, s, c.a, impact)
			}
			if !s.Piercing {
				ts.consumed[sr.h] = true
				break
			}
		}
	}
}

func (w *World) hittable(s *shot, a *actor) bool {
	return a.h != s.Owner &&
		!combat.Friendly(s.OwnerFaction, a.id.Faction) &&
		a.alive() && !s.AlreadyHit(a.h)
}

// splash applies area damage around impact to every other eligible actor.
func (w *World) splash(ts *tickState, s *shot, direct *actor, impact geom.Vec3) {
	for _, a := range ts.actors {
		if a == direct || a.h == s.Owner {
			continue
		}
		if combat.Friendly(s.OwnerFaction, a.id.Faction) || !a.alive() {
			continue
		}
		if a.body.Position.Distance(impact) <= s.AreaRadius {
			w.applyHit(ts, s, a, combat.SplashFactor, impact)
		}
	}
}

func (w *World) applyHit(ts *tickState, s *shot, a *actor, factor float64, impact geom.Vec3) {
	res := combat.ResolveHit(&a.vit.Health, a.vit.Shield, s.Hit(factor))
	target := a.id.ref()
	ts.emit(event.Hit{
		Target:   target,
		Position: impact,
		Damage:   res.Total(),
		Critical: s.Critical,
		Splash:   factor != combat.DirectHitFactor,
	})
	if res.Outcome == combat.ShieldBroken {
		ts.emit(event.ShieldBroken{Actor: target, Position: a.body.Position})
	}
	if total := res.Total(); total > 0 {
		ts.emit(event.DamageDealt{Source: s.OwnerRef, Target: target, Amount: total})
	}
	if res.Destroyed {
		if _, already := ts.dying[a.h]; !already {
			owner := s.OwnerRef
			ts.dying[a.h] = &owner
		}
	}
}
