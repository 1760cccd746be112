package sim

import (
	"context"
	"sort"

	"github.com/yohamta/donburi"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/projectile"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

// AITransition records a state change made by an AI actor during a Step.
type AITransition struct {
	Actor event.Actor
	ai.Transition
}

// Report is the outcome of one Step.
type Report struct {
	Tick        uint64
	Time        float64
	Events      []event.Event
	Transitions []AITransition
}

// tickState carries the per-step bookkeeping shared by the systems.
type tickState struct {
	dt       float64
	actors   []*actor
	index    map[Handle]*actor
	contacts []combat.Contact[Handle]
	dying    map[Handle]*event.Actor // victim -> killer, nil when unknown
	consumed map[Handle]bool
	report   *Report
}

func (ts *tickState) emit(e event.Event) { ts.report.Events = append(ts.report.Events, e) }

func (ts *tickState) live(h Handle) (*actor, bool) {
	a, ok := ts.index[h]
	if !ok || !a.alive() {
		return nil, false
	}
	return a, true
}

// Step advances the world by dt seconds.
//
// Systems run in a fixed order: target acquisition, weapon selection,
// weapon tick and firing, projectile kinematics, ship kinematics,
// collision and damage, passive regeneration, AI state evaluation, and
// finally removal of destroyed actors and spent projectiles. No entity is
// removed before the last phase, so handles read earlier in the tick stay
// valid until it ends.
//
// Postcondition: a non-finite or non-positive dt is a no-op.
func (w *World) Step(ctx context.Context, dt float64) Report {
	rep := Report{Tick: w.tick, Time: w.time}
	if !geom.IsFinite(dt) || dt <= 0 {
		w.logger.Warn("step skipped: invalid dt", zap.Float64("dt", dt))
		return rep
	}

	ts := &tickState{
		dt:       dt,
		actors:   w.actors(),
		dying:    make(map[Handle]*event.Actor),
		consumed: make(map[Handle]bool),
		report:   &rep,
	}
	ts.index = make(map[Handle]*actor, len(ts.actors))
	for _, a := range ts.actors {
		ts.index[a.h] = a
	}
	ts.contacts = contactsOf(ts.actors)

	w.acquireTargets(ts)
	w.selectWeapons(ts)
	w.fireWeapons(ts)
	shots := w.shots()
	w.moveProjectiles(ts, shots)
	w.moveShips(ts)
	w.collide(ts, shots)
	w.regenerate(ts)
	w.evaluateAI(ctx, ts)
	w.reap(ts, shots)

	w.tick++
	w.time += dt
	rep.Tick = w.tick
	rep.Time = w.time
	return rep
}

func (w *World) acquireTargets(ts *tickState) {
	for _, a := range ts.actors {
		if a.ctrl == nil || !a.alive() {
			continue
		}
		if c, ok := combat.NearestHostile(a.body.Position, a.id.Faction, ts.contacts, w.opts.AcquisitionRadius); ok {
			a.ctrl.Target = c.Handle
		} else {
			a.ctrl.Target = donburi.Null
		}
	}
}

func (w *World) selectWeapons(ts *tickState) {
	for _, a := range ts.actors {
		if a.ctrl == nil || a.mount.Len() < 2 {
			continue
		}
		t, ok := ts.live(a.ctrl.Target)
		if !ok {
			continue
		}
		if idx, ok := ai.SelectWeapon(a.mount, ai.TargetStatus{
			HealthRatio: t.vit.Health.Ratio(),
			ShieldRatio: t.vit.shieldRatio(),
		}); ok {
			a.mount.Select(idx)
		}
	}
}

func (w *World) fireWeapons(ts *tickState) {
	for _, a := range ts.actors {
		if !a.alive() {
			continue
		}
		a.mount.Tick(ts.dt)
		switch {
		case a.ctrl != nil:
			w.fireAI(ts, a)
		case a.pilot != nil:
			w.firePlayer(ts, a)
		}
	}
}

func (w *World) fireAI(ts *tickState, a *actor) {
	active := a.mount.Active()
	speed := 0.0
	if active != nil {
		speed = active.Profile.ProjectileSpeed * a.vit.Bonus.ProjectileSpeed
	}
	var target *ai.TargetView
	if t, ok := ts.live(a.ctrl.Target); ok {
		target = &ai.TargetView{Position: t.body.Position, Velocity: t.body.Velocity}
	}
	cmd := a.ctrl.Maneuver(ai.Body{
		Position: a.body.Position,
		Velocity: a.body.Velocity,
		Facing:   a.body.Facing,
		MaxSpeed: a.body.MaxSpeed,
	}, target, speed)
	a.body.WantVelocity = cmd.Velocity
	a.body.WantFacing = cmd.Face

	if !cmd.Fire || active == nil {
		return
	}
	aim := cmd.Face
	if aim.IsZero() {
		aim = a.body.Facing
	}
	w.launch(ts, a, active, active.TryFire(a.vit.Energy, a.vit.Bonus, aim, w.roller))
}

func (w *World) firePlayer(ts *tickState, a *actor) {
	p := a.pilot
	a.body.WantVelocity = p.Steer
	aim := p.Aim
	if aim.IsZero() {
		aim = a.body.Facing
	} else {
		a.body.WantFacing = aim
	}

	active := a.mount.Active()
	if active == nil {
		p.FirePrimary, p.SecondaryFinish = false, false
		return
	}
	if p.FirePrimary {
		p.FirePrimary = false
		w.launch(ts, a, active, active.TryFire(a.vit.Energy, a.vit.Bonus, aim, w.roller))
	}
	if active.Profile.AltFire == weapon.AltCharged {
		if p.SecondaryFinish {
			w.launch(ts, a, active, active.TryAltFire(a.vit.Energy, a.vit.Bonus, aim, w.roller))
		}
	} else if p.SecondaryHeld {
		w.launch(ts, a, active, active.TryAltFire(a.vit.Energy, a.vit.Bonus, aim, w.roller))
	}
	p.SecondaryFinish = false
}

// launch turns a fire outcome into projectiles in the world.
func (w *World) launch(ts *tickState, a *actor, wpn *weapon.Weapon, out weapon.Outcome) {
	if !out.Fired() {
		w.logger.Debug("fire refused",
			zap.String("actor", a.id.ID.String()),
			zap.String("weapon", wpn.Profile.ID),
			zap.Stringer("reason", out.Refused),
		)
		return
	}
	if out.HeatCrossed {
		ts.emit(event.Overheated{Actor: a.id.ref(), Weapon: wpn.Profile.ID})
		w.logger.Debug("weapon overheated",
			zap.String("actor", a.id.ID.String()),
			zap.String("weapon", wpn.Profile.ID),
		)
	}

	lock := donburi.Null
	if a.ctrl != nil {
		if _, ok := ts.live(a.ctrl.Target); ok {
			lock = a.ctrl.Target
		}
	}
	for _, s := range out.Shots {
		origin := a.body.Position.Add(s.Direction.Scale(a.body.Radius))
		p := projectile.FromShot(s, a.h, a.id.Faction, origin, a.body.Velocity)
		if p.Homing() {
			p.HomingTarget = lock
		}
		w.seq++
		e := w.ecs.Create(shotComponent)
		shotComponent.SetValue(w.ecs.Entry(e), shot{Seq: w.seq, OwnerRef: a.id.ref(), Projectile: p})
	}
}

func (w *World) moveProjectiles(ts *tickState, shots []*shotRef) {
	for _, sr := range shots {
		p := &sr.s.Projectile
		if p.Homing() {
			target, ok := ts.live(p.HomingTarget)
			if !ok || !combat.Hostile(p.OwnerFaction, target.id.Faction) {
				// stale or never set: reacquire within lock range
				p.HomingTarget = donburi.Null
				if c, found := combat.NearestHostile(p.Position, p.OwnerFaction, ts.contacts, w.opts.HomingLockRange); found {
					p.HomingTarget = c.Handle
					target = ts.index[c.Handle]
					ok = true
				}
			}
			if ok {
				p.Steer(target.body.Position, ts.dt)
			}
		}
		p.Advance(ts.dt)
	}
}

func (w *World) moveShips(ts *tickState) {
	for _, a := range ts.actors {
		b := a.body
		if vel := b.WantVelocity.ClampLen(b.MaxSpeed); vel.IsFinite() {
			b.Velocity = vel
		}
		if want, ok := b.WantFacing.Normalize(); ok {
			if b.TurnRate > 0 {
				b.Facing = geom.RotateToward(b.Facing, want, b.TurnRate*ts.dt)
			} else {
				b.Facing = want
			}
		}
		if next := b.Position.Add(b.Velocity.Scale(ts.dt)); next.IsFinite() {
			b.Position = next
		}
	}
}

func (w *World) regenerate(ts *tickState) {
	for _, a := range ts.actors {
		if !a.alive() {
			continue
		}
		if a.vit.Shield != nil {
			a.vit.Shield.Tick(ts.dt, a.vit.Bonus.ShieldRecharge)
		}
		if a.vit.Energy != nil {
			a.vit.Energy.Tick(ts.dt, a.vit.Bonus.EnergyRecharge)
		}
	}
}

func (w *World) evaluateAI(ctx context.Context, ts *tickState) {
	for _, a := range ts.actors {
		if a.ctrl == nil || !a.alive() {
			continue
		}
		_, hasTarget := ts.live(a.ctrl.Target)
		tr, ok := a.ctrl.Evaluate(ctx, ai.Status{
			HealthRatio: a.vit.Health.Ratio(),
			ShieldRatio: a.vit.shieldRatio(),
			HasTarget:   hasTarget,
		}, ts.dt, w.roller)
		if ok {
			ts.report.Transitions = append(ts.report.Transitions, AITransition{Actor: a.id.ref(), Transition: tr})
		}
	}
}

// reap removes destroyed actors and spent projectiles, emitting the
// destruction events in spawn order.
func (w *World) reap(ts *tickState, shots []*shotRef) {
	var dead []*actor
	for h := range ts.dying {
		dead = append(dead, ts.index[h])
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i].id.Seq < dead[j].id.Seq })

	for _, a := range dead {
		victim := a.id.ref()
		isEnemy := a.id.Faction == combat.FactionEnemy
		ts.emit(event.ActorDestroyed{Actor: victim, Position: a.body.Position, IsEnemy: isEnemy})
		if killer := ts.dying[a.h]; killer != nil {
			ts.emit(event.Kill{Killer: *killer, Victim: victim, IsEnemy: isEnemy})
		}
		w.logger.Info("actor destroyed",
			zap.String("id", a.id.ID.String()),
			zap.String("class", string(a.id.Class)),
			zap.Stringer("faction", a.id.Faction),
		)
		delete(w.byID, a.id.ID)
		w.ecs.Remove(a.h)
	}

	for _, sr := range shots {
		if ts.consumed[sr.h] || sr.s.Expired() {
			w.ecs.Remove(sr.h)
		}
	}
}
