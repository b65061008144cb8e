// Package main runs a tactical battle from a scenario file with every side
// under AI control and logs the outcome.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/config"
	"github.com/Zeldazackman/VoreWar/internal/lifecycle"
	"github.com/Zeldazackman/VoreWar/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/tacsim.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "", "scenario file; overrides simulation.scenario")
	seed := flag.Uint64("seed", 0, "RNG seed; overrides simulation.seed when non-zero")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *scenarioPath != "" {
		cfg.Simulation.Scenario = *scenarioPath
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	// Initialize logger
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	sim, err := newSimulation(cfg, logger)
	if err != nil {
		logger.Fatal("building simulation", zap.Error(err))
	}
	logger.Info("simulation initialized",
		zap.String("scenario", sim.scenario.Name),
		zap.Int("sides", len(sim.scenario.Sides)),
		zap.Int("units", len(sim.scenario.Units)),
		zap.Uint64("seed", cfg.Simulation.Seed),
		zap.Duration("startup", time.Since(start)),
	)

	lc := lifecycle.New(logger)
	sim.register(lc)
	if err := lc.Run(context.Background()); err != nil {
		logger.Error("simulation interrupted", zap.Error(err))
	}
	sim.summarize()
}
