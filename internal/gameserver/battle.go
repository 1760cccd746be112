// Package gameserver hosts battles: it advances each battle's world on a
// fixed tick, publishes the tick's events to the battle bus and serves the
// CombatService gRPC API.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// ErrUnknownActor is returned when an actor ID is not live in the battle.
var ErrUnknownActor = errors.New("unknown actor")

// Battle is one simulation world plus its event bus. The world is guarded by
// a mutex so intents, reads and steps from different goroutines serialize.
type Battle struct {
	ID uuid.UUID

	mu     sync.Mutex
	world  *sim.World
	bus    *event.Bus
	dt     float64
	tick   atomic.Uint64
	logger *zap.Logger
}

// NewBattle wraps world. dt is the fixed step length in seconds.
//
// Precondition: world must be non-nil; dt must be > 0.
// Postcondition: Returns a Battle with a fresh ID and an open bus.
func NewBattle(world *sim.World, dt float64, logger *zap.Logger) *Battle {
	if world == nil {
		panic("gameserver.NewBattle: world must not be nil")
	}
	if !(dt > 0) {
		panic("gameserver.NewBattle: dt must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	return &Battle{
		ID:     id,
		world:  world,
		bus:    event.NewBus(),
		dt:     dt,
		logger: logger.With(zap.Stringer("battle", id)),
	}
}

// Bus returns the battle's event bus.
func (b *Battle) Bus() *event.Bus { return b.bus }

// Step advances the world by one fixed step and publishes its events.
//
// Postcondition: the report's events are published in emission order.
func (b *Battle) Step(ctx context.Context) sim.Report {
	b.mu.Lock()
	report := b.world.Step(ctx, b.dt)
	b.mu.Unlock()

	b.tick.Store(report.Tick)
	b.bus.Publish(report.Events...)
	for _, tr := range report.Transitions {
		b.logger.Debug("ai transition",
			zap.Stringer("actor", tr.Actor.ID),
			zap.String("from", tr.From),
			zap.String("to", tr.To),
		)
	}
	return report
}

// Tick returns the number of completed steps.
func (b *Battle) Tick() uint64 { return b.tick.Load() }

// Spawn creates an actor and returns its stable ID.
func (b *Battle) Spawn(spec sim.SpawnSpec) (uuid.UUID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, id, err := b.world.Spawn(spec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("spawning %s: %w", spec.Class, err)
	}
	b.logger.Info("actor spawned",
		zap.Stringer("actor", id),
		zap.String("class", string(spec.Class)),
		zap.Stringer("faction", spec.Faction),
		zap.Bool("player", spec.Player),
	)
	return id, nil
}

// Submit applies a player intent.
//
// Postcondition: ErrUnknownActor when id is not live; otherwise the
// world's Submit error, if any.
func (b *Battle) Submit(id uuid.UUID, in sim.Intent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.world.Lookup(id)
	if !ok {
		return ErrUnknownActor
	}
	return b.world.Submit(h, in)
}

// Snapshot returns a copy of the world state.
func (b *Battle) Snapshot() sim.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.world.Snapshot()
}

// Actor returns the read model of actor id.
func (b *Battle) Actor(id uuid.UUID) (sim.ActorView, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.world.Lookup(id)
	if !ok {
		return sim.ActorView{}, false
	}
	return b.world.Actor(h)
}

// AimAssist returns the lead indicator for actor id.
//
// Postcondition: ok is false when there is nothing to aim at; the error is
// ErrUnknownActor when id is not live.
func (b *Battle) AimAssist(id uuid.UUID) (sim.AimAssist, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.world.Lookup(id)
	if !ok {
		return sim.AimAssist{}, false, ErrUnknownActor
	}
	aa, ok := b.world.AimAssist(h)
	return aa, ok, nil
}

// ActorCount returns the number of live actors.
func (b *Battle) ActorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.world.ActorCount()
}

// ActorInfo adapts Actor for the scripting engine's engine.actor callback.
//
// Postcondition: returns nil for a malformed or unknown ID.
func (b *Battle) ActorInfo(id string) *scripting.ActorInfo {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	v, ok := b.Actor(uid)
	if !ok {
		return nil
	}
	return &scripting.ActorInfo{
		ID:        v.ID.String(),
		Class:     v.Class,
		Faction:   v.Faction,
		Health:    v.Health.Current,
		MaxHealth: v.Health.Max,
	}
}

// Close closes the bus; subscribers see their channels close.
func (b *Battle) Close() { b.bus.Close() }
