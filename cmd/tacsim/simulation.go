package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/config"
	"github.com/Zeldazackman/VoreWar/internal/game/ai"
	"github.com/Zeldazackman/VoreWar/internal/game/battle"
	"github.com/Zeldazackman/VoreWar/internal/game/combat"
	"github.com/Zeldazackman/VoreWar/internal/game/dice"
	"github.com/Zeldazackman/VoreWar/internal/game/pathfind"
	"github.com/Zeldazackman/VoreWar/internal/game/scenario"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
	"github.com/Zeldazackman/VoreWar/internal/lifecycle"
	"github.com/Zeldazackman/VoreWar/internal/observability"
	"github.com/Zeldazackman/VoreWar/internal/scripting"
)

// simulation is one fully wired battle.
type simulation struct {
	scenario *scenario.Scenario
	battle   *battle.Battle
	log      *battle.Log
	driver   *battle.Driver
	scripts  *scripting.Manager
	logger   *zap.Logger

	result battle.Result
}

// sourceFor returns the RNG stream for a component. A zero seed is
// non-deterministic; otherwise each stream is offset so components never
// share draws.
func sourceFor(seed, stream uint64) dice.Source {
	if seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(seed + stream)
}

func newSimulation(cfg config.Config, logger *zap.Logger) (*simulation, error) {
	sc, err := scenario.Load(cfg.Simulation.Scenario)
	if err != nil {
		return nil, err
	}
	profiles, err := loadRegistry(cfg.Simulation.ProfilesDir)
	if err != nil {
		return nil, err
	}
	scripts, err := loadScripts(cfg.Simulation, profiles, sourceFor(cfg.Simulation.Seed, 1), logger)
	if err != nil {
		return nil, err
	}

	tuning := cfg.Tactics.Tuning()
	model := combat.NewModel()
	var battleRand dice.Source = sourceFor(cfg.Simulation.Seed, 0)
	if logger.Core().Enabled(zap.DebugLevel) {
		battleRand = dice.NewLoggedSource(battleRand, logger.Named("rng"))
	}

	sim := &simulation{scenario: sc, log: battle.NewLog(), scripts: scripts, logger: logger}
	events := battle.Tee{sim.log, observability.NewZapEventLog(logger, func() int { return sim.battle.CurrentTurn() })}
	b, err := battle.New(sc.Board, sc.Units, battle.Options{
		Model:              model,
		Rand:               battleRand,
		Events:             events,
		Logger:             logger,
		RangedCaptureRange: tuning.RangedCaptureRange,
		LeapRange:          tuning.LeapRange,
	})
	if err != nil {
		scripts.Close()
		return nil, err
	}
	sim.battle = b
	scripts.GetCombatant = func(uid string) *scripting.CombatantInfo {
		u, ok := b.Unit(uid)
		if !ok {
			return nil
		}
		return &scripting.CombatantInfo{
			UID:         u.ID,
			Name:        u.Name,
			Side:        int(u.Side),
			HP:          u.Health,
			MaxHP:       u.MaxHealth,
			Movement:    u.Movement,
			X:           u.Pos.X,
			Y:           u.Pos.Y,
			Surrendered: u.Surrendered,
		}
	}

	paths := pathfind.New(b.Board(), b)
	var sides []battle.Stepper
	for i, side := range sc.Sides {
		var profile *ai.Profile
		if side.Profile != "" {
			p, ok := profiles.ProfileFor(side.Profile)
			if !ok {
				scripts.Close()
				return nil, fmt.Errorf("side %q: unknown profile %q", side.Name, side.Profile)
			}
			profile = p
		}
		policy := side.Retreat
		if policy == nil {
			policy = cfg.Retreat.Policy()
		}
		if side.NoRetreat {
			policy = nil
		}
		sides = append(sides, ai.New(ai.Config{
			Side:             side.Side,
			Defending:        side.Defending,
			DefendingVillage: side.DefendingVillage,
			Policy:           policy,
			Profile:          profile,
			Tuning:           tuning,
		}, ai.Deps{
			World:   b,
			Actions: b,
			Paths:   paths,
			Combat:  model,
			Spells:  b,
			Rand:    sourceFor(cfg.Simulation.Seed, uint64(2+i)),
			Events:  events,
			Scripts: scripts,
			Logger:  logger,
		}))
	}
	sim.driver = battle.NewDriver(b, sides, battle.DriverOptions{
		MaxTurns:        cfg.Simulation.MaxTurns,
		MaxStepsPerTurn: cfg.Simulation.MaxStepsPerTurn,
		StepDelay:       cfg.Simulation.StepDelay,
		Logger:          logger,
	})
	return sim, nil
}

func loadRegistry(dir string) (*ai.Registry, error) {
	reg := ai.NewRegistry()
	if dir == "" {
		return reg, nil
	}
	profiles, err := ai.LoadProfiles(dir)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// loadScripts loads the shared scripts into the global VM and any
// subdirectory named after a profile's script scope into that scope.
func loadScripts(sim config.SimulationConfig, profiles *ai.Registry, src dice.Source, logger *zap.Logger) (*scripting.Manager, error) {
	mgr := scripting.NewManager(src, logger)
	if sim.ScriptsDir == "" {
		return mgr, nil
	}
	if err := mgr.LoadGlobal(sim.ScriptsDir, sim.ScriptInstructionLimit); err != nil {
		mgr.Close()
		return nil, err
	}
	for _, scope := range profiles.Scopes() {
		dir := filepath.Join(sim.ScriptsDir, scope)
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := mgr.LoadScope(scope, dir, sim.ScriptInstructionLimit); err != nil {
			mgr.Close()
			return nil, err
		}
	}
	return mgr, nil
}

// register adds the script VMs and the battle to lc. The VMs close only
// after the battle has stopped.
func (s *simulation) register(lc *lifecycle.Lifecycle) {
	lc.Add("scripts", &lifecycle.FuncService{
		StartFn: func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		StopFn: s.scripts.Close,
	})
	lc.Add("battle", &lifecycle.FuncService{
		StartFn: func(ctx context.Context) error {
			res, err := s.driver.Run(ctx)
			s.result = res
			return err
		},
	})
}

// summarize logs the outcome and the per-side survivors.
func (s *simulation) summarize() {
	fields := []zap.Field{
		zap.String("scenario", s.scenario.Name),
		zap.String("reason", string(s.result.Reason)),
		zap.Int("turns", s.result.Turns),
		zap.Int("steps", s.result.Steps),
		zap.Int("notices", len(s.log.Entries())),
		zap.Int("fled", len(s.battle.Fled())),
	}
	if s.result.Reason == battle.EndVictory {
		fields = append(fields, zap.String("winner", s.sideName(s.result.Winner)))
	}
	for _, side := range s.scenario.Sides {
		fields = append(fields, zap.Int("standing_"+side.Name, len(s.battle.Standing(side.Side))))
	}
	s.logger.Info("simulation complete", fields...)
}

func (s *simulation) sideName(side unit.Side) string {
	if sd, ok := s.scenario.SideFor(side); ok && sd.Name != "" {
		return sd.Name
	}
	return fmt.Sprintf("side %d", side)
}
