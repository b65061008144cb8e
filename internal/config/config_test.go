package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Zeldazackman/VoreWar/internal/game/ai"
)

func validConfig() Config {
	d := ai.DefaultTuning()
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tactics: TacticsConfig{
			MinRetreatTurn:     d.MinRetreatTurn,
			StalemateTurn:      d.StalemateTurn,
			RetreatHysteresis:  d.RetreatHysteresis,
			ScatterAttempts:    d.ScatterAttempts,
			ScatterRadius:      d.ScatterRadius,
			SpellOdds:          d.SpellOdds,
			HealCeiling:        d.HealCeiling,
			LeapRange:          d.LeapRange,
			LeapReach:          d.LeapReach,
			ApproachDistance:   d.ApproachDistance,
			MaxSearchDistance:  d.MaxSearchDistance,
			RangedCaptureRange: d.RangedCaptureRange,
			CaptureChanceFloor: d.CaptureChanceFloor,
			BiterChanceFloor:   d.BiterChanceFloor,
			BiterMinDamage:     d.BiterMinDamage,
		},
		Retreat: RetreatConfig{
			Enabled:       true,
			MinPowerRatio: 0.3,
		},
		Simulation: SimulationConfig{
			Seed:            7,
			MaxTurns:        200,
			MaxStepsPerTurn: 500,
			Scenario:        "content/scenarios/ford.yaml",
			ProfilesDir:     "content/profiles",
			ScriptsDir:      "content/scripts",
		},
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tacsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ai.DefaultTuning(), cfg.Tactics.Tuning())
	assert.True(t, cfg.Retreat.Enabled)
	assert.Equal(t, 200, cfg.Simulation.MaxTurns)
	assert.Equal(t, 500, cfg.Simulation.MaxStepsPerTurn)
	assert.Equal(t, time.Duration(0), cfg.Simulation.StepDelay)
	assert.Equal(t, "content/scripts", cfg.Simulation.ScriptsDir)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: console
tactics:
  spell_odds: 5
  heal_ceiling: 0.5
retreat:
  min_power_ratio: 0.6
  consumption_threshold: 2
simulation:
  seed: 42
  max_turns: 30
  step_delay: 250ms
  scenario: battles/hill.yaml
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 5, cfg.Tactics.SpellOdds)
	assert.InDelta(t, 0.5, cfg.Tactics.HealCeiling, 1e-9)
	assert.Equal(t, ai.DefaultTuning().LeapRange, cfg.Tactics.LeapRange, "unset keys keep defaults")
	assert.InDelta(t, 0.6, cfg.Retreat.MinPowerRatio, 1e-9)
	assert.Equal(t, 2, cfg.Retreat.ConsumptionThreshold)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, 30, cfg.Simulation.MaxTurns)
	assert.Equal(t, 250*time.Millisecond, cfg.Simulation.StepDelay)
	assert.Equal(t, "battles/hill.yaml", cfg.Simulation.Scenario)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: loud
simulation:
  max_turns: 0
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "simulation.max_turns")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TACTICS_LOGGING_LEVEL", "warn")
	t.Setenv("TACTICS_SIMULATION_SEED", "99")
	t.Setenv("TACTICS_TACTICS_SPELL_ODDS", "3")
	path := writeConfig(t, `
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, uint64(99), cfg.Simulation.Seed)
	assert.Equal(t, 3, cfg.Tactics.SpellOdds)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidateAggregatesViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Tactics.SpellOdds = 0
	cfg.Tactics.RetreatHysteresis = 0.9
	cfg.Tactics.HealCeiling = 1.5
	cfg.Retreat.MinPowerRatio = -1
	cfg.Simulation.StepDelay = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"tactics.spell_odds",
		"tactics.retreat_hysteresis",
		"tactics.heal_ceiling",
		"retreat.min_power_ratio",
		"simulation.step_delay",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateNegativeDistances(t *testing.T) {
	cfg := validConfig()
	cfg.Tactics.LeapReach = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leap_reach")
}

func TestTuningCarriesUnexposedDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Tactics.SpellOdds = 9
	got := cfg.Tactics.Tuning()
	assert.Equal(t, 9, got.SpellOdds)
	assert.Equal(t, ai.DefaultTuning().PowerRatioEpsilon, got.PowerRatioEpsilon)
	assert.Equal(t, ai.DefaultTuning().AcidImmuneFactor, got.AcidImmuneFactor)
}

func TestRetreatPolicy(t *testing.T) {
	r := RetreatConfig{Enabled: true, MinPowerRatio: 0.4, ConsumptionThreshold: 1}
	p := r.Policy()
	require.NotNil(t, p)
	assert.InDelta(t, 0.4, p.MinPowerRatio, 1e-9)
	assert.Equal(t, 1, p.ConsumptionThreshold)

	r.Enabled = false
	assert.Nil(t, r.Policy())
}

func TestPropertyFractionsInRangeValidate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Tactics.HealCeiling = rapid.Float64Range(0, 1).Draw(t, "heal_ceiling")
		cfg.Tactics.CaptureChanceFloor = rapid.Float64Range(0, 1).Draw(t, "capture_floor")
		if err := cfg.Validate(); err != nil {
			t.Fatalf("expected valid config, got %v", err)
		}
	})
}

func TestPropertyNonPositiveMaxTurnsRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Simulation.MaxTurns = rapid.IntRange(-1000, 0).Draw(t, "max_turns")
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected error for max_turns=%d", cfg.Simulation.MaxTurns)
		}
	})
}
