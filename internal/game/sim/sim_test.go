package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

const (
	slotGun = iota
	slotRail
	slotFlak
	slotLaser
	slotMissile
)

func testGun(id string, typ weapon.Type) *weapon.Profile {
	return &weapon.Profile{
		ID: id, Name: id, Type: typ,
		Damage: 10, FireRate: 1, ProjectileSpeed: 100,
		ShieldMult: 1, HullMult: 1, Lifetime: 5,
	}
}

func testClasses() []*ship.ClassDef {
	classes := []*ship.ClassDef{
		{
			ID: "gunship", Name: "Gunship", Hull: 100, Energy: 100,
			MaxSpeed: 10, Radius: 2,
			Weapons: []string{"gun", "rail", "flak", "laser", "missile"},
		},
		{ID: "target", Name: "Target", Hull: 100, MaxSpeed: 10, Radius: 2},
		{ID: "drone", Name: "Drone", Hull: 5, MaxSpeed: 10, Radius: 2},
	}
	return append(classes, ship.DefaultClasses()...)
}

func newTestWorld(t *testing.T, opts Options) *World {
	t.Helper()
	profiles := []*weapon.Profile{
		testGun("gun", weapon.TypeAutocannon),
		testGun("rail", weapon.TypeRailgun),
		testGun("flak", weapon.TypeFlakCannon),
		testGun("missile", weapon.TypeMissile),
	}
	for _, p := range weapon.DefaultProfiles() {
		if p.ID != "missile" {
			profiles = append(profiles, p)
		}
	}
	weapons, err := weapon.NewRegistryFrom(profiles)
	require.NoError(t, err)
	classes, err := ship.NewRegistry(testClasses())
	require.NoError(t, err)
	// 0.5 centres every spread draw and fails every non-trivial chance below 0.5
	roller := dice.NewLoggedRoller(dice.NewFixedSource(0.5), nil)
	return New(opts, weapons, classes, roller, zaptest.NewLogger(t))
}

func spawn(t *testing.T, w *World, spec SpawnSpec) Handle {
	t.Helper()
	h, _, err := w.Spawn(spec)
	require.NoError(t, err)
	return h
}

func player(t *testing.T, w *World, slot int) Handle {
	t.Helper()
	h := spawn(t, w, SpawnSpec{Class: "gunship", Faction: combat.FactionPlayer, Player: true})
	require.NoError(t, w.Submit(h, Intent{Kind: IntentSelectWeapon, Index: slot}))
	return h
}

func enemyAt(t *testing.T, w *World, class ship.Class, pos geom.Vec3) Handle {
	t.Helper()
	return spawn(t, w, SpawnSpec{Class: class, Faction: combat.FactionEnemy, Position: pos})
}

func view(t *testing.T, w *World, h Handle) ActorView {
	t.Helper()
	v, ok := w.Actor(h)
	require.True(t, ok)
	return v
}

func eventsOf[E event.Event](rep Report) []E {
	var out []E
	for _, e := range rep.Events {
		if v, ok := e.(E); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestSpawnUnknownClass(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	_, _, err := w.Spawn(SpawnSpec{Class: "dreadnought"})
	assert.ErrorContains(t, err, "unknown ship class")
}

func TestSpawnEnemyCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxEnemies = 2
	w := newTestWorld(t, opts)
	enemyAt(t, w, "target", geom.V(0, 0, 10))
	enemyAt(t, w, "target", geom.V(0, 0, 20))

	_, _, err := w.Spawn(SpawnSpec{Class: "target", Faction: combat.FactionEnemy})
	assert.True(t, errors.Is(err, ErrEnemyCap))

	// other factions are not capped
	spawn(t, w, SpawnSpec{Class: "target", Faction: combat.FactionNeutral})
	assert.Equal(t, 3, w.ActorCount())
}

func TestSpawnAssignsStableIDs(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	h, id, err := w.Spawn(SpawnSpec{Class: ship.Fighter, Faction: combat.FactionEnemy})
	require.NoError(t, err)

	got, ok := w.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, h, got)

	v := view(t, w, h)
	assert.Equal(t, "Fighter", v.Name)
	assert.Equal(t, 50.0, v.Health.Current)
	require.NotNil(t, v.Shield)
	assert.Equal(t, 30.0, v.Shield.Current)
	assert.Equal(t, "patrol", v.AIState)
}

func TestPiercingShotHitsEveryAlignedEnemy(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotRail)
	targets := []Handle{
		enemyAt(t, w, "target", geom.V(0, 0, 10)),
		enemyAt(t, w, "target", geom.V(0, 0, 20)),
		enemyAt(t, w, "target", geom.V(0, 0, 30)),
	}

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	rep := w.Step(context.Background(), 1)

	hits := eventsOf[event.Hit](rep)
	assert.Len(t, hits, 3)
	for _, h := range targets {
		assert.Equal(t, 90.0, view(t, w, h).Health.Current)
	}
	assert.Equal(t, 1, w.ProjectileCount(), "piercing shots survive collision")

	// a second tick never re-resolves against the same actors
	rep = w.Step(context.Background(), 0.1)
	assert.Empty(t, eventsOf[event.Hit](rep))
}

func TestNonPiercingShotStopsAtFirstHit(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotGun)
	first := enemyAt(t, w, "target", geom.V(0, 0, 20))
	closest := enemyAt(t, w, "target", geom.V(0, 0, 10))

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	rep := w.Step(context.Background(), 1)

	require.Len(t, eventsOf[event.Hit](rep), 1)
	assert.Equal(t, 100.0, view(t, w, first).Health.Current, "spawned first but further along the segment")
	assert.Equal(t, 90.0, view(t, w, closest).Health.Current)
	assert.Zero(t, w.ProjectileCount())
}

func TestSplashDamagesNearbyEnemiesAtHalf(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotFlak)
	direct := enemyAt(t, w, "target", geom.V(0, 0, 10))
	beside := enemyAt(t, w, "target", geom.V(5, 0, 10))
	distant := enemyAt(t, w, "target", geom.V(40, 0, 10))

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	rep := w.Step(context.Background(), 1)

	assert.Equal(t, 90.0, view(t, w, direct).Health.Current)
	assert.Equal(t, 95.0, view(t, w, beside).Health.Current)
	assert.Equal(t, 100.0, view(t, w, distant).Health.Current)

	var splash int
	for _, h := range eventsOf[event.Hit](rep) {
		if h.Splash {
			splash++
		}
	}
	assert.Equal(t, 1, splash)
}

func TestFriendlyActorsAreNotHit(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotGun)
	ally := spawn(t, w, SpawnSpec{Class: "target", Faction: combat.FactionPlayer, Player: true, Position: geom.V(0, 0, 10)})
	enemy := enemyAt(t, w, "target", geom.V(0, 0, 20))

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	w.Step(context.Background(), 1)

	assert.Equal(t, 100.0, view(t, w, ally).Health.Current)
	assert.Equal(t, 90.0, view(t, w, enemy).Health.Current)
}

func TestNeutralsAreDamagedButNeverTargeted(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotGun)
	neutral := spawn(t, w, SpawnSpec{Class: "target", Faction: combat.FactionNeutral, Position: geom.V(0, 0, 10)})
	enemy := enemyAt(t, w, "target", geom.V(50, 0, 0))

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	w.Step(context.Background(), 1)

	assert.Equal(t, 90.0, view(t, w, neutral).Health.Current)
	assert.Nil(t, view(t, w, neutral).Target)

	pv := view(t, w, p)
	ev := view(t, w, enemy)
	require.NotNil(t, ev.Target)
	assert.Equal(t, pv.ID, *ev.Target)
}

func TestLaserBreaksFighterShieldExactly(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotLaser)
	fighter := enemyAt(t, w, ship.Fighter, geom.V(0, 0, 20))

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	rep := w.Step(context.Background(), 0.2)

	v := view(t, w, fighter)
	assert.Equal(t, 0.0, v.Shield.Current)
	assert.Equal(t, 50.0, v.Health.Current)
	broken := eventsOf[event.ShieldBroken](rep)
	require.Len(t, broken, 1)
	assert.Equal(t, v.ID, broken[0].Actor.ID)
}

func TestDestroyedActorRemovedAtEndOfTick(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotGun)
	_, droneID, err := w.Spawn(SpawnSpec{Class: "drone", Faction: combat.FactionEnemy, Position: geom.V(0, 0, 10)})
	require.NoError(t, err)

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	rep := w.Step(context.Background(), 1)

	destroyed := eventsOf[event.ActorDestroyed](rep)
	require.Len(t, destroyed, 1)
	assert.Equal(t, droneID, destroyed[0].Actor.ID)
	assert.True(t, destroyed[0].IsEnemy)

	kills := eventsOf[event.Kill](rep)
	require.Len(t, kills, 1)
	assert.Equal(t, view(t, w, p).ID, kills[0].Killer.ID)

	dealt := eventsOf[event.DamageDealt](rep)
	require.Len(t, dealt, 1)
	assert.Equal(t, 5.0, dealt[0].Amount, "hull clamps at zero")

	_, ok := w.Lookup(droneID)
	assert.False(t, ok)
	assert.Equal(t, 1, w.ActorCount())

	// destruction events come after the hits that caused them
	last := rep.Events[len(rep.Events)-1]
	assert.Equal(t, event.KindKill, last.Kind())
}

func TestHomingReacquiresAfterTargetDestroyed(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotMissile)
	first := enemyAt(t, w, "drone", geom.V(0, 0, 60))
	second := enemyAt(t, w, "target", geom.V(60, 0, 40))

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	w.Step(context.Background(), 0.05)
	shots := w.shots()
	require.Len(t, shots, 1)
	s := shots[0].s
	assert.Equal(t, first, s.HomingTarget, "nearest hostile within lock range")
	speed := s.Velocity.Len()

	// destroy the lock target outside the projectile's knowledge
	w.ecs.Remove(first)

	w.Step(context.Background(), 0.05)
	s = w.shots()[0].s
	assert.Equal(t, second, s.HomingTarget)
	assert.InDelta(t, speed, s.Velocity.Len(), 1e-9)
}

func TestHomingWithoutTargetFliesStraight(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotMissile)
	enemyAt(t, w, "target", geom.V(500, 0, 0))

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	w.Step(context.Background(), 0.05)
	w.Step(context.Background(), 0.05)

	s := w.shots()[0].s
	assert.Equal(t, donburi.Null, s.HomingTarget)
	assert.InDelta(t, 0.0, s.Velocity.X, 1e-12)
}

func TestCriticallyDamagedEnemyRetreatsNextTick(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	player(t, w, slotGun)
	e := enemyAt(t, w, "target", geom.V(0, 0, 50))

	a, ok := w.actor(e)
	require.True(t, ok)
	a.vit.Health.Current = 10

	rep := w.Step(context.Background(), 1.0/60)
	assert.Equal(t, "retreat", view(t, w, e).AIState)
	require.Len(t, rep.Transitions, 1)
	assert.Equal(t, "retreat", rep.Transitions[0].To)
}

func TestEnemyEngagesAfterEvaluationInterval(t *testing.T) {
	opts := DefaultOptions()
	opts.AIInterval = 0.5
	w := newTestWorld(t, opts)
	player(t, w, slotGun)
	e := enemyAt(t, w, ship.Fighter, geom.V(0, 0, 60))

	for i := 0; i < 30; i++ {
		w.Step(context.Background(), 0.05)
	}
	assert.Equal(t, "attack", view(t, w, e).AIState)
}

func TestSubmitValidation(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotGun)
	e := enemyAt(t, w, "target", geom.V(0, 0, 50))

	assert.ErrorIs(t, w.Submit(e, Intent{Kind: IntentFirePrimary}), ErrNotPlayer)
	assert.ErrorContains(t, w.Submit(p, Intent{Kind: IntentSelectWeapon, Index: 9}), "out of range")
	assert.ErrorContains(t, w.Submit(p, Intent{Kind: "dance"}), "unknown intent")

	w.ecs.Remove(e)
	assert.ErrorIs(t, w.Submit(e, Intent{Kind: IntentReload}), ErrUnknownActor)
}

func TestSteerMovesPlayerClampedToMaxSpeed(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotGun)

	require.NoError(t, w.Submit(p, Intent{Kind: IntentSteer, Vector: geom.V(100, 0, 0)}))
	w.Step(context.Background(), 1)

	v := view(t, w, p)
	assert.InDelta(t, 10.0, v.Position.X, 1e-9)
}

func TestChargedAltFireReleasesOnStop(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := spawn(t, w, SpawnSpec{Class: ship.Frigate, Faction: combat.FactionPlayer, Player: true})
	// frigate slot 0 is plasma, charged alt-fire

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFireSecondaryStart}))
	w.Step(context.Background(), 0.5)
	assert.Zero(t, w.ProjectileCount())
	assert.Greater(t, view(t, w, p).Weapons[0].Charge, 0.0)

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFireSecondaryStop}))
	w.Step(context.Background(), 0.01)
	assert.Equal(t, 1, w.ProjectileCount())
	assert.Zero(t, view(t, w, p).Weapons[0].Charge)
}

func TestRefusedChargedReleaseKeepsCharge(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := spawn(t, w, SpawnSpec{Class: ship.Frigate, Faction: combat.FactionPlayer, Player: true})
	ctx := context.Background()

	require.NoError(t, w.Submit(p, Intent{Kind: IntentFireSecondaryStart}))
	w.Step(ctx, 0.5)
	w.Step(ctx, 0.5)
	require.InDelta(t, 1.0, view(t, w, p).Weapons[0].Charge, 1e-9)

	// the primary shot puts the plasma on cooldown before the release is tried
	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	require.NoError(t, w.Submit(p, Intent{Kind: IntentFireSecondaryStop}))
	w.Step(ctx, 0.01)
	assert.Equal(t, 1, w.ProjectileCount())
	assert.GreaterOrEqual(t, view(t, w, p).Weapons[0].Charge, 1.0, "refused release must not drop the charge")

	w.Step(ctx, 0.6)
	require.NoError(t, w.Submit(p, Intent{Kind: IntentFireSecondaryStop}))
	w.Step(ctx, 0.01)
	assert.Equal(t, 2, w.ProjectileCount())
	assert.Zero(t, view(t, w, p).Weapons[0].Charge)
}

func TestInvalidDtIsNoop(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	player(t, w, slotGun)
	rep := w.Step(context.Background(), -1)
	assert.Zero(t, rep.Tick)
	assert.Zero(t, w.Tick())
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotGun)
	enemyAt(t, w, ship.Corvette, geom.V(0, 0, 90))
	require.NoError(t, w.Submit(p, Intent{Kind: IntentFirePrimary}))
	w.Step(context.Background(), 0.1)

	b, err := w.Snapshot().Encode()
	require.NoError(t, err)
	snap, err := DecodeSnapshot(b)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snap.Tick)
	require.Len(t, snap.Actors, 2)
	assert.Equal(t, "Gunship", snap.Actors[0].Name)
	assert.Equal(t, "Corvette", snap.Actors[1].Name)
	assert.Len(t, snap.Projectiles, 1)
	assert.Equal(t, snap.Actors[0].ID, snap.Projectiles[0].Owner)
}

func TestAimAssistLeadsMovingTarget(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotGun)
	e := enemyAt(t, w, "target", geom.V(0, 0, 50))
	a, _ := w.actor(e)
	a.body.Velocity = geom.V(20, 0, 0)

	assist, ok := w.AimAssist(p)
	require.True(t, ok)
	assert.True(t, assist.Predicted)
	assert.Greater(t, assist.Lead.X, 0.0)
	assert.Equal(t, geom.V(0, 0, 50), assist.Current)
}

func TestAimAssistNoTargetInRange(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	p := player(t, w, slotGun)
	enemyAt(t, w, "target", geom.V(0, 0, 500))
	_, ok := w.AimAssist(p)
	assert.False(t, ok)
}
