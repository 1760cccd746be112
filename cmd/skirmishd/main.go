// Package main provides the skirmish daemon: it hosts a scenario battle,
// advances it on a fixed tick and serves the CombatService gRPC API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/content"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/progression"
	"github.com/cory-johannsen/skirmish/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "content/scenarios/ambush.yaml", "path to the scenario YAML file")
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

	logger.Info("starting skirmish daemon",
		zap.String("grpc_addr", cfg.GameServer.Addr()),
		zap.Int("tick_rate_hz", cfg.Simulation.TickRateHz),
	)

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
	roster, err := scenario.Populate(battle)
	if err != nil {
		logger.Fatal("populating scenario", zap.Error(err))
	}
	logger.Info("battle created",
		zap.Stringer("battle", battle.ID),
		zap.String("scenario", scenario.ID),
		zap.Int("players", len(roster.Players)),
		zap.Int("ai", len(roster.AI)),
	)

	tracker := progression.NewTracker(pack.Classes, pack.Scripts, battle.ID.String(), logger)

	ticks := gameserver.NewTickManager(cfg.Simulation.TickInterval())
	ticks.Register(battle)

	svc := gameserver.NewCombatService(logger)
	svc.Host(battle)
	grpcServer := grpc.NewServer()
	gameserver.RegisterCombatServiceServer(grpcServer, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("progression", &server.FuncService{
		StartFn: func() error {
			if err := tracker.Run(ctx, battle.Bus().Subscribe(0)); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	})

	lifecycle.Add("ticks", &server.FuncService{
		StartFn: func() error {
			if err := ticks.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
		StopFn: func() {
			cancel()
			battle.Close()
			for i, s := range tracker.Leaderboard() {
				logger.Info("final standing",
					zap.Int("rank", i+1),
					zap.Stringer("actor", s.ID),
					zap.String("class", s.Class),
					zap.Int("points", s.Points),
					zap.Int("kills", s.Kills),
				)
			}
		},
	})

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.GameServer.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.GameServer.Addr(), err)
			}
			logger.Info("gRPC server listening",
				zap.String("addr", lis.Addr().String()),
			)
			return grpcServer.Serve(lis)
		},
		StopFn: func() {
			grpcServer.GracefulStop()
		},
	})

	logger.Info("skirmish daemon initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
