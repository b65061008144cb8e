// Package config provides Viper-based configuration loading for the tactical battle simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Zeldazackman/VoreWar/internal/game/ai"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// TacticsConfig holds the tactical AI's tuning constants.
type TacticsConfig struct {
	MinRetreatTurn     int     `mapstructure:"min_retreat_turn"`
	StalemateTurn      int     `mapstructure:"stalemate_turn"`
	RetreatHysteresis  float64 `mapstructure:"retreat_hysteresis"`
	ScatterAttempts    int     `mapstructure:"scatter_attempts"`
	ScatterRadius      int     `mapstructure:"scatter_radius"`
	SpellOdds          int     `mapstructure:"spell_odds"`
	HealCeiling        float64 `mapstructure:"heal_ceiling"`
	LeapRange          int     `mapstructure:"leap_range"`
	LeapReach          int     `mapstructure:"leap_reach"`
	ApproachDistance   int     `mapstructure:"approach_distance"`
	MaxSearchDistance  int     `mapstructure:"max_search_distance"`
	RangedCaptureRange int     `mapstructure:"ranged_capture_range"`
	CaptureChanceFloor float64 `mapstructure:"capture_chance_floor"`
	BiterChanceFloor   float64 `mapstructure:"biter_chance_floor"`
	BiterMinDamage     int     `mapstructure:"biter_min_damage"`
}

// Tuning converts the configured constants to ai.Tuning. Fields the
// configuration does not expose keep their ai.DefaultTuning values.
func (t TacticsConfig) Tuning() ai.Tuning {
	out := ai.DefaultTuning()
	out.MinRetreatTurn = t.MinRetreatTurn
	out.StalemateTurn = t.StalemateTurn
	out.RetreatHysteresis = t.RetreatHysteresis
	out.ScatterAttempts = t.ScatterAttempts
	out.ScatterRadius = t.ScatterRadius
	out.SpellOdds = t.SpellOdds
	out.HealCeiling = t.HealCeiling
	out.LeapRange = t.LeapRange
	out.LeapReach = t.LeapReach
	out.ApproachDistance = t.ApproachDistance
	out.MaxSearchDistance = t.MaxSearchDistance
	out.RangedCaptureRange = t.RangedCaptureRange
	out.CaptureChanceFloor = t.CaptureChanceFloor
	out.BiterChanceFloor = t.BiterChanceFloor
	out.BiterMinDamage = t.BiterMinDamage
	return out
}

// RetreatConfig is the default retreat policy for sides whose scenario
// entry names none.
type RetreatConfig struct {
	// Enabled false means sides without a scenario policy never retreat.
	Enabled              bool    `mapstructure:"enabled"`
	MinPowerRatio        float64 `mapstructure:"min_power_ratio"`
	ConsumptionThreshold int     `mapstructure:"consumption_threshold"`
}

// Policy returns the configured policy, or nil when disabled.
func (r RetreatConfig) Policy() *ai.RetreatPolicy {
	if !r.Enabled {
		return nil
	}
	return &ai.RetreatPolicy{MinPowerRatio: r.MinPowerRatio, ConsumptionThreshold: r.ConsumptionThreshold}
}

// SimulationConfig holds battle-run settings.
type SimulationConfig struct {
	// Seed feeds the deterministic RNG; 0 selects a non-deterministic source.
	Seed            uint64        `mapstructure:"seed"`
	MaxTurns        int           `mapstructure:"max_turns"`
	MaxStepsPerTurn int           `mapstructure:"max_steps_per_turn"`
	StepDelay       time.Duration `mapstructure:"step_delay"`
	Scenario        string        `mapstructure:"scenario"`
	ProfilesDir     string        `mapstructure:"profiles_dir"`
	ScriptsDir      string        `mapstructure:"scripts_dir"`
	// ScriptInstructionLimit bounds each Lua call; 0 uses the scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Tactics    TacticsConfig    `mapstructure:"tactics"`
	Retreat    RetreatConfig    `mapstructure:"retreat"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTactics(c.Tactics); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRetreat(c.Retreat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateTactics(t TacticsConfig) error {
	var errs []string
	positive := []struct {
		name string
		v    int
	}{
		{"tactics.scatter_attempts", t.ScatterAttempts},
		{"tactics.spell_odds", t.SpellOdds},
		{"tactics.leap_range", t.LeapRange},
		{"tactics.approach_distance", t.ApproachDistance},
		{"tactics.max_search_distance", t.MaxSearchDistance},
	}
	for _, p := range positive {
		if p.v < 1 {
			errs = append(errs, fmt.Sprintf("%s must be >= 1, got %d", p.name, p.v))
		}
	}
	if t.MinRetreatTurn < 0 {
		errs = append(errs, fmt.Sprintf("tactics.min_retreat_turn must be >= 0, got %d", t.MinRetreatTurn))
	}
	if t.StalemateTurn < 0 {
		errs = append(errs, fmt.Sprintf("tactics.stalemate_turn must be >= 0, got %d", t.StalemateTurn))
	}
	if t.ScatterRadius < 0 || t.LeapReach < 0 || t.RangedCaptureRange < 0 || t.BiterMinDamage < 0 {
		errs = append(errs, "tactics.scatter_radius, leap_reach, ranged_capture_range and biter_min_damage must be >= 0")
	}
	if t.RetreatHysteresis < 1 {
		errs = append(errs, fmt.Sprintf("tactics.retreat_hysteresis must be >= 1, got %g", t.RetreatHysteresis))
	}
	fractions := []struct {
		name string
		v    float64
	}{
		{"tactics.heal_ceiling", t.HealCeiling},
		{"tactics.capture_chance_floor", t.CaptureChanceFloor},
		{"tactics.biter_chance_floor", t.BiterChanceFloor},
	}
	for _, f := range fractions {
		if f.v < 0 || f.v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1], got %g", f.name, f.v))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRetreat(r RetreatConfig) error {
	var errs []string
	if r.MinPowerRatio < 0 {
		errs = append(errs, fmt.Sprintf("retreat.min_power_ratio must be >= 0, got %g", r.MinPowerRatio))
	}
	if r.ConsumptionThreshold < 0 {
		errs = append(errs, fmt.Sprintf("retreat.consumption_threshold must be >= 0, got %d", r.ConsumptionThreshold))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.MaxTurns < 1 {
		errs = append(errs, fmt.Sprintf("simulation.max_turns must be >= 1, got %d", s.MaxTurns))
	}
	if s.MaxStepsPerTurn < 1 {
		errs = append(errs, fmt.Sprintf("simulation.max_steps_per_turn must be >= 1, got %d", s.MaxStepsPerTurn))
	}
	if s.StepDelay < 0 {
		errs = append(errs, "simulation.step_delay must not be negative")
	}
	if s.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("simulation.script_instruction_limit must be >= 0, got %d", s.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Defaults returns the configuration built from defaults and environment
// overrides alone, for running without a config file.
func Defaults() (Config, error) {
	return LoadFromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	// Environment variable overrides with TACTICS_ prefix
	v.SetEnvPrefix("TACTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	d := ai.DefaultTuning()
	v.SetDefault("tactics.min_retreat_turn", d.MinRetreatTurn)
	v.SetDefault("tactics.stalemate_turn", d.StalemateTurn)
	v.SetDefault("tactics.retreat_hysteresis", d.RetreatHysteresis)
	v.SetDefault("tactics.scatter_attempts", d.ScatterAttempts)
	v.SetDefault("tactics.scatter_radius", d.ScatterRadius)
	v.SetDefault("tactics.spell_odds", d.SpellOdds)
	v.SetDefault("tactics.heal_ceiling", d.HealCeiling)
	v.SetDefault("tactics.leap_range", d.LeapRange)
	v.SetDefault("tactics.leap_reach", d.LeapReach)
	v.SetDefault("tactics.approach_distance", d.ApproachDistance)
	v.SetDefault("tactics.max_search_distance", d.MaxSearchDistance)
	v.SetDefault("tactics.ranged_capture_range", d.RangedCaptureRange)
	v.SetDefault("tactics.capture_chance_floor", d.CaptureChanceFloor)
	v.SetDefault("tactics.biter_chance_floor", d.BiterChanceFloor)
	v.SetDefault("tactics.biter_min_damage", d.BiterMinDamage)

	v.SetDefault("retreat.enabled", true)
	v.SetDefault("retreat.min_power_ratio", 0.3)
	v.SetDefault("retreat.consumption_threshold", 0)

	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.max_turns", 200)
	v.SetDefault("simulation.max_steps_per_turn", 500)
	v.SetDefault("simulation.step_delay", "0s")
	v.SetDefault("simulation.scenario", "content/scenarios/ford.yaml")
	v.SetDefault("simulation.profiles_dir", "content/profiles")
	v.SetDefault("simulation.scripts_dir", "content/scripts")
	v.SetDefault("simulation.script_instruction_limit", 0)
}
