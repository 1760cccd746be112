package gameserver_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
)

const testDt = 1.0 / 60

func newTestBattle(t *testing.T) *gameserver.Battle {
	t.Helper()
	weapons, err := weapon.NewRegistryFrom(weapon.DefaultProfiles())
	require.NoError(t, err)
	classes, err := ship.NewRegistry(ship.DefaultClasses())
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	roller := dice.NewLoggedRoller(dice.NewFixedSource(0.5), logger)
	w := sim.New(sim.DefaultOptions(), weapons, classes, roller, logger)
	b := gameserver.NewBattle(w, testDt, logger)
	t.Cleanup(b.Close)
	return b
}

// duel spawns a player fighter at the origin facing +Z and an enemy fighter
// 30 units ahead of it.
func duel(t *testing.T, b *gameserver.Battle) (player, enemy uuid.UUID) {
	t.Helper()
	player, err := b.Spawn(sim.SpawnSpec{Class: ship.Fighter, Name: "Red", Faction: combat.FactionPlayer, Player: true})
	require.NoError(t, err)
	enemy, err = b.Spawn(sim.SpawnSpec{Class: ship.Fighter, Name: "Bandit", Faction: combat.FactionEnemy, Position: geom.V(0, 0, 30)})
	require.NoError(t, err)
	return player, enemy
}

func TestBattle_SpawnAndActorInfo(t *testing.T) {
	b := newTestBattle(t)
	player, _ := duel(t, b)
	assert.Equal(t, 2, b.ActorCount())

	v, ok := b.Actor(player)
	require.True(t, ok)
	assert.True(t, v.Player)
	assert.Equal(t, "Red", v.Name)

	info := b.ActorInfo(player.String())
	require.NotNil(t, info)
	assert.Equal(t, "fighter", info.Class)
	assert.Equal(t, "player", info.Faction)
	assert.Equal(t, 50.0, info.MaxHealth)

	assert.Nil(t, b.ActorInfo("not-a-uuid"))
	assert.Nil(t, b.ActorInfo(uuid.NewString()))
}

func TestBattle_SpawnUnknownClass(t *testing.T) {
	b := newTestBattle(t)
	_, err := b.Spawn(sim.SpawnSpec{Class: "dreadnought", Faction: combat.FactionEnemy})
	assert.Error(t, err)
}

func TestBattle_SubmitErrors(t *testing.T) {
	b := newTestBattle(t)
	_, enemy := duel(t, b)
	assert.ErrorIs(t, b.Submit(uuid.New(), sim.Intent{Kind: sim.IntentFirePrimary}), gameserver.ErrUnknownActor)
	assert.ErrorIs(t, b.Submit(enemy, sim.Intent{Kind: sim.IntentFirePrimary}), sim.ErrNotPlayer)
}

func TestBattle_StepPublishesEvents(t *testing.T) {
	b := newTestBattle(t)
	player, enemy := duel(t, b)
	sub := b.Bus().Subscribe(64)

	require.NoError(t, b.Submit(player, sim.Intent{Kind: sim.IntentFirePrimary}))
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		b.Step(ctx)
	}
	assert.Equal(t, uint64(30), b.Tick())

	var kinds []event.Kind
	for len(sub.C) > 0 {
		kinds = append(kinds, (<-sub.C).Kind())
	}
	assert.Contains(t, kinds, event.KindHit)
	assert.Contains(t, kinds, event.KindShieldBroken)
	assert.Contains(t, kinds, event.KindDamageDealt)

	v, ok := b.Actor(enemy)
	require.True(t, ok)
	require.NotNil(t, v.Shield)
	assert.Zero(t, v.Shield.Current)
	assert.Equal(t, 50.0, v.Health.Current)
}

func TestNewBattle_PanicsOnBadArgs(t *testing.T) {
	assert.Panics(t, func() { gameserver.NewBattle(nil, testDt, nil) })
}
