// Package sim runs the fixed-step combat world: actors and projectiles in a
// donburi ECS, advanced one tick at a time in a fixed system order.
package sim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

var (
	// ErrUnknownActor is returned for a handle that is stale or not an actor.
	ErrUnknownActor = errors.New("unknown actor")
	// ErrNotPlayer is returned when an intent targets an AI-driven actor.
	ErrNotPlayer = errors.New("actor is not player-controlled")
	// ErrEnemyCap is returned when spawning would exceed MaxEnemies.
	ErrEnemyCap = errors.New("enemy cap reached")
)

// Options are the world tunables.
type Options struct {
	AcquisitionRadius float64
	HomingLockRange   float64
	InterceptHorizon  float64
	// MaxEnemies caps live enemy actors; 0 means no cap.
	MaxEnemies int
	// AIInterval is the AI evaluation period in seconds.
	AIInterval float64
}

// DefaultOptions returns the stock tunables.
func DefaultOptions() Options {
	return Options{
		AcquisitionRadius: 200,
		HomingLockRange:   100,
		InterceptHorizon:  100,
		MaxEnemies:        15,
		AIInterval:        ai.DefaultEvalInterval,
	}
}

// OptionsFrom converts the simulation section of the server config.
func OptionsFrom(cfg config.SimulationConfig) Options {
	return Options{
		AcquisitionRadius: cfg.AcquisitionRadius,
		HomingLockRange:   cfg.HomingLockRange,
		InterceptHorizon:  cfg.InterceptHorizon,
		MaxEnemies:        cfg.MaxEnemies,
		AIInterval:        cfg.AIInterval.Seconds(),
	}
}

// World owns every actor and projectile of one battle.
//
// A World is not safe for concurrent use; callers serialize access.
type World struct {
	ecs     donburi.World
	opts    Options
	weapons *weapon.Registry
	classes *ship.Registry
	roller  *dice.Roller
	logger  *zap.Logger

	seq  uint64
	tick uint64
	time float64
	byID map[uuid.UUID]Handle
}

// New creates an empty world.
//
// Precondition: weapons, classes and roller must be non-nil.
// Postcondition: a nil logger is replaced by a no-op logger.
func New(opts Options, weapons *weapon.Registry, classes *ship.Registry, roller *dice.Roller, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World{
		ecs:     donburi.NewWorld(),
		opts:    opts,
		weapons: weapons,
		classes: classes,
		roller:  roller,
		logger:  logger,
		byID:    make(map[uuid.UUID]Handle),
	}
}

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 { return w.tick }

// Time returns the simulated seconds elapsed.
func (w *World) Time() float64 { return w.time }

// SpawnSpec describes an actor to create.
type SpawnSpec struct {
	Class    ship.Class
	Name     string
	Faction  combat.Faction
	Position geom.Vec3
	// Facing defaults to +Z when zero.
	Facing geom.Vec3
	// Player actors take intents instead of an AI controller.
	Player bool
	// Bonus defaults to combat.NeutralBonus when nil.
	Bonus *combat.StatBonus
	// PatrolPoint defaults to Position when nil.
	PatrolPoint *geom.Vec3
}

// Spawn creates an actor from its class definition.
//
// Postcondition: returns the handle and stable ID of the new actor, or an
// error for an unknown class, invalid bonus, non-finite position, or when an
// enemy would exceed MaxEnemies.
func (w *World) Spawn(spec SpawnSpec) (Handle, uuid.UUID, error) {
	def, ok := w.classes.Class(spec.Class)
	if !ok {
		return donburi.Null, uuid.Nil, fmt.Errorf("spawn: unknown ship class %q", spec.Class)
	}
	if !spec.Position.IsFinite() {
		return donburi.Null, uuid.Nil, fmt.Errorf("spawn: position %v is not finite", spec.Position)
	}
	bonus := combat.NeutralBonus()
	if spec.Bonus != nil {
		if err := spec.Bonus.Validate(); err != nil {
			return donburi.Null, uuid.Nil, fmt.Errorf("spawn: %w", err)
		}
		bonus = *spec.Bonus
	}
	if spec.Faction == combat.FactionEnemy && w.opts.MaxEnemies > 0 && w.countFaction(combat.FactionEnemy) >= w.opts.MaxEnemies {
		return donburi.Null, uuid.Nil, fmt.Errorf("spawn %s: %w (%d)", spec.Class, ErrEnemyCap, w.opts.MaxEnemies)
	}
	guns, err := w.weapons.Build(def.Weapons)
	if err != nil {
		return donburi.Null, uuid.Nil, fmt.Errorf("spawn %s: %w", spec.Class, err)
	}

	facing, ok := spec.Facing.Normalize()
	if !ok {
		facing = geom.V(0, 0, 1)
	}
	name := spec.Name
	if name == "" {
		name = def.Name
	}
	w.seq++
	id := identity{
		ID:      uuid.New(),
		Seq:     w.seq,
		Name:    name,
		Class:   def.ID,
		Faction: spec.Faction,
		Player:  spec.Player,
	}

	var e Handle
	if spec.Player {
		e = w.ecs.Create(identityComponent, bodyComponent, vitalsComponent, armsComponent, pilotComponent)
	} else {
		e = w.ecs.Create(identityComponent, bodyComponent, vitalsComponent, armsComponent, brainComponent)
	}
	entry := w.ecs.Entry(e)
	identityComponent.SetValue(entry, id)
	bodyComponent.SetValue(entry, body{
		Position: spec.Position,
		Facing:   facing,
		MaxSpeed: def.MaxSpeed,
		TurnRate: def.TurnRate,
		Radius:   def.Radius,
	})
	vitalsComponent.SetValue(entry, vitals{
		Health: def.NewHealth(),
		Shield: def.NewShield(),
		Energy: def.NewEnergy(),
		Bonus:  bonus,
	})
	armsComponent.SetValue(entry, arms{Mount: weapon.NewMount(guns...)})
	if !spec.Player {
		patrol := spec.Position
		if spec.PatrolPoint != nil {
			patrol = *spec.PatrolPoint
		}
		cfg := def.AIConfig()
		cfg.Interval = w.opts.AIInterval
		cfg.Horizon = w.opts.InterceptHorizon
		ctrl := ai.NewController(cfg, patrol, w.logger.With(zap.String("actor", id.ID.String())))
		brainComponent.SetValue(entry, brain{Controller: ctrl})
	}

	w.byID[id.ID] = e
	w.logger.Debug("actor spawned",
		zap.String("id", id.ID.String()),
		zap.String("class", string(def.ID)),
		zap.Stringer("faction", spec.Faction),
		zap.Bool("player", spec.Player),
	)
	return e, id.ID, nil
}

// Lookup resolves a stable actor ID to its live handle.
func (w *World) Lookup(id uuid.UUID) (Handle, bool) {
	h, ok := w.byID[id]
	if !ok || !w.ecs.Valid(h) {
		return donburi.Null, false
	}
	return h, true
}

// Alive reports whether h refers to a live actor.
func (w *World) Alive(h Handle) bool {
	_, ok := w.actor(h)
	return ok
}

// ActorCount returns the number of live actors.
func (w *World) ActorCount() int { return actorQuery.Count(w.ecs) }

// ProjectileCount returns the number of projectiles in flight.
func (w *World) ProjectileCount() int { return shotQuery.Count(w.ecs) }

func (w *World) countFaction(f combat.Faction) int {
	n := 0
	actorQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if identityComponent.Get(entry).Faction == f {
			n++
		}
	})
	return n
}

// actor is a resolved view over an actor's components for one tick.
type actor struct {
	h     Handle
	id    *identity
	body  *body
	vit   *vitals
	mount *weapon.Mount
	ctrl  *ai.Controller
	pilot *pilot
}

func (a *actor) alive() bool { return !a.vit.Health.Dead() }

func (w *World) view(entry *donburi.Entry) *actor {
	a := &actor{
		h:    entry.Entity(),
		id:   identityComponent.Get(entry),
		body: bodyComponent.Get(entry),
		vit:  vitalsComponent.Get(entry),
	}
	if entry.HasComponent(armsComponent) {
		a.mount = armsComponent.Get(entry).Mount
	}
	if entry.HasComponent(brainComponent) {
		a.ctrl = brainComponent.Get(entry).Controller
	}
	if entry.HasComponent(pilotComponent) {
		a.pilot = pilotComponent.Get(entry)
	}
	return a
}

func (w *World) actor(h Handle) (*actor, bool) {
	if h == donburi.Null || !w.ecs.Valid(h) {
		return nil, false
	}
	entry := w.ecs.Entry(h)
	if !entry.HasComponent(identityComponent) || !entry.HasComponent(vitalsComponent) {
		return nil, false
	}
	return w.view(entry), true
}

// actors returns every live actor in spawn order.
func (w *World) actors() []*actor {
	var out []*actor
	actorQuery.Each(w.ecs, func(entry *donburi.Entry) {
		out = append(out, w.view(entry))
	})
	sort.Slice(out, func(i, j int) bool { return out[i].id.Seq < out[j].id.Seq })
	return out
}

// shots returns every projectile in launch order.
func (w *World) shots() []*shotRef {
	var out []*shotRef
	shotQuery.Each(w.ecs, func(entry *donburi.Entry) {
		out = append(out, &shotRef{h: entry.Entity(), s: shotComponent.Get(entry)})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].s.Seq < out[j].s.Seq })
	return out
}

type shotRef struct {
	h Handle
	s *shot
}

func contactsOf(actors []*actor) []combat.Contact[Handle] {
	out := make([]combat.Contact[Handle], 0, len(actors))
	for _, a := range actors {
		if !a.alive() {
			continue
		}
		out = append(out, combat.Contact[Handle]{
			Handle:   a.h,
			Faction:  a.id.Faction,
			Position: a.body.Position,
			Velocity: a.body.Velocity,
		})
	}
	return out
}
