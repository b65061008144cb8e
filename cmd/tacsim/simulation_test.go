package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zeldazackman/VoreWar/internal/config"
	"github.com/Zeldazackman/VoreWar/internal/game/battle"
	"github.com/Zeldazackman/VoreWar/internal/lifecycle"
)

const repoRoot = "../.."

func testConfig(t *testing.T, seed uint64) config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(repoRoot, "configs", "tacsim.yaml"))
	require.NoError(t, err)
	cfg.Simulation.Seed = seed
	cfg.Simulation.MaxTurns = 60
	cfg.Simulation.Scenario = filepath.Join(repoRoot, cfg.Simulation.Scenario)
	cfg.Simulation.ProfilesDir = filepath.Join(repoRoot, cfg.Simulation.ProfilesDir)
	cfg.Simulation.ScriptsDir = filepath.Join(repoRoot, cfg.Simulation.ScriptsDir)
	return cfg
}

func runSimulation(t *testing.T, cfg config.Config) (*simulation, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	sim, err := newSimulation(cfg, logger)
	require.NoError(t, err)
	lc := lifecycle.New(logger)
	sim.register(lc)
	require.NoError(t, lc.Run(context.Background()))
	sim.summarize()
	return sim, logs
}

func TestSimulation_FordRunsToAnEnd(t *testing.T) {
	sim, logs := runSimulation(t, testConfig(t, 5))

	assert.Equal(t, "Battle at the Ford", sim.scenario.Name)
	assert.Contains(t, []battle.EndReason{battle.EndVictory, battle.EndAnnihilate, battle.EndMaxTurns}, sim.result.Reason)
	assert.Positive(t, sim.result.Steps)
	assert.NotEmpty(t, sim.log.Entries())
	assert.Equal(t, 1, logs.FilterMessage("simulation complete").Len())
	assert.Positive(t, logs.FilterLoggerName("battle").Len(), "notices reach the structured log")
}

func TestSimulation_SeedReplays(t *testing.T) {
	a, _ := runSimulation(t, testConfig(t, 17))
	b, _ := runSimulation(t, testConfig(t, 17))
	assert.Equal(t, a.result, b.result)
	assert.Equal(t, a.log.Entries(), b.log.Entries())
}

func TestSimulation_UnknownProfile(t *testing.T) {
	cfg := testConfig(t, 1)
	dir := t.TempDir()
	scenario := `
scenario:
  name: Lone
  board: ["....", "...."]
  sides:
    - {side: 0, name: a, profile: nobody}
    - {side: 1, name: b}
  units:
    - {id: x, side: 0, x: 0, y: 0, movement: 2, health: 5}
    - {id: y, side: 1, x: 3, y: 1, movement: 2, health: 5}
`
	path := filepath.Join(dir, "lone.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))
	cfg.Simulation.Scenario = path

	_, err := newSimulation(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
}

func TestSimulation_MissingScenario(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.Simulation.Scenario = filepath.Join(t.TempDir(), "absent.yaml")
	_, err := newSimulation(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestSimulation_CombatantLookupForScripts(t *testing.T) {
	sim, err := newSimulation(testConfig(t, 3), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(sim.scripts.Close)

	info := sim.scripts.GetCombatant("captain")
	require.NotNil(t, info)
	assert.Equal(t, "Captain Aldric", info.Name)
	assert.Equal(t, 20, info.HP)
	assert.Equal(t, 5, info.X)
	assert.Nil(t, sim.scripts.GetCombatant("ghost"))
}

func TestSourceFor_SeededStreamsDiffer(t *testing.T) {
	a, b := sourceFor(9, 0), sourceFor(9, 1)
	same := true
	for range 16 {
		if a.Intn(1000) != b.Intn(1000) {
			same = false
		}
	}
	assert.False(t, same)
}
