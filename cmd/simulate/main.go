// Package main runs a scenario headless for a fixed span of simulated time
// and logs the outcome. Player ships fly on an aim-assist autopilot when
// -autopilot is set, otherwise they hold position.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/content"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/progression"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "content/scenarios/ambush.yaml", "path to the scenario YAML file")
	seconds := flag.Float64("seconds", 60, "simulated seconds to run")
	autopilot := flag.Bool("autopilot", true, "fire player weapons at the aim-assist lead point")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	pack, err := content.Load(cfg, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	defer pack.Close()

	scenario, err := gameserver.LoadScenario(*scenarioPath)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}
	battle := pack.NewBattle(cfg.Simulation, logger)
	defer battle.Close()
	roster, err := scenario.Populate(battle)
	if err != nil {
		logger.Fatal("populating scenario", zap.Error(err))
	}

	tracker := progression.NewTracker(pack.Classes, pack.Scripts, battle.ID.String(), logger)
	steps := int(*seconds * float64(cfg.Simulation.TickRateHz))
	counts := make(map[event.Kind]int)
	ctx := context.Background()
	start := time.Now()

	for i := 0; i < steps; i++ {
		if *autopilot {
			for _, id := range roster.Players {
				fly(battle, id)
			}
		}
		report := battle.Step(ctx)
		for _, e := range report.Events {
			counts[e.Kind()]++
			tracker.Apply(e)
		}
		if !enemiesRemain(battle, roster.AI) {
			logger.Info("all enemy ships destroyed", zap.Uint64("tick", report.Tick))
			break
		}
	}

	snap := battle.Snapshot()
	logger.Info("simulation finished",
		zap.String("scenario", scenario.ID),
		zap.Uint64("ticks", snap.Tick),
		zap.Float64("simulated_seconds", snap.Time),
		zap.Duration("wall", time.Since(start)),
		zap.Int("survivors", len(snap.Actors)),
		zap.Int("hits", counts[event.KindHit]),
		zap.Int("shields_broken", counts[event.KindShieldBroken]),
		zap.Int("destroyed", counts[event.KindActorDestroyed]),
		zap.Int("overheats", counts[event.KindOverheated]),
	)
	for i, s := range tracker.Leaderboard() {
		logger.Info("standing",
			zap.Int("rank", i+1),
			zap.Stringer("actor", s.ID),
			zap.String("class", s.Class),
			zap.Int("points", s.Points),
			zap.Int("kills", s.Kills),
			zap.Float64("damage", s.Damage),
		)
	}
}

// fly aims player id at its aim-assist lead point and pulls the trigger.
func fly(b *gameserver.Battle, id uuid.UUID) {
	self, ok := b.Actor(id)
	if !ok {
		return
	}
	aa, ok, err := b.AimAssist(id)
	if err != nil || !ok {
		return
	}
	dir, ok := aa.Lead.Sub(self.Position).Normalize()
	if !ok {
		return
	}
	_ = b.Submit(id, sim.Intent{Kind: sim.IntentAim, Vector: dir})
	_ = b.Submit(id, sim.Intent{Kind: sim.IntentFirePrimary})
}

func enemiesRemain(b *gameserver.Battle, ids []uuid.UUID) bool {
	for _, id := range ids {
		if v, ok := b.Actor(id); ok && v.Faction == "enemy" {
			return true
		}
	}
	return false
}
