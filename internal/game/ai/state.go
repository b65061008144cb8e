package ai

// RetreatPolicy decides when a side gives up the fight.
//
// A zero MinPowerRatio disables the power check; a zero ConsumptionThreshold
// disables the capture-count check.
type RetreatPolicy struct {
	MinPowerRatio        float64 `yaml:"min_power_ratio" json:"min_power_ratio"`
	ConsumptionThreshold int     `yaml:"consumption_threshold" json:"consumption_threshold"`
}

// StrategicState holds the side-wide facts recomputed once per turn.
//
// Invariant: only the strategic evaluator and the capture paths write to it.
type StrategicState struct {
	// OnlySurrendered is true when every enemy still in play has surrendered.
	OnlySurrendered bool `yaml:"only_surrendered" json:"only_surrendered"`
	// LacksCapturers is true when no friendly combatant can make progress by capturing.
	LacksCapturers bool `yaml:"lacks_capturers" json:"lacks_capturers"`
	// Retreating persists across turns with hysteresis.
	Retreating bool `yaml:"retreating" json:"retreating"`
	// Consumed counts enemies captured by this side during the battle.
	Consumed int `yaml:"consumed" json:"consumed"`
	// LastTurn is the turn the evaluator last ran for.
	LastTurn int `yaml:"last_turn" json:"last_turn"`
}

// Tuning carries the numeric constants of the order planner and evaluator.
type Tuning struct {
	// MinRetreatTurn is the first turn on which a retreat may begin.
	MinRetreatTurn int
	// StalemateTurn is the turn after which surrendered enemies become fair game.
	StalemateTurn int
	// RetreatHysteresis multiplies MinPowerRatio to get the exit threshold.
	RetreatHysteresis float64
	// PowerRatioEpsilon is the smallest MinPowerRatio treated as configured.
	PowerRatioEpsilon float64
	ScatterAttempts   int
	ScatterRadius     int
	// SpellOdds gives a 1-in-SpellOdds chance of trying a spell each order.
	SpellOdds int
	// HealCeiling is the health fraction above which heal targets are skipped.
	HealCeiling float64
	// LeapRange is the farthest tile a leap may start from.
	LeapRange int
	// LeapReach is added to movement when searching for leap targets.
	LeapReach         int
	ApproachDistance  int
	MaxSearchDistance int
	// RangedCaptureRange is how far a ranged capturer paths to before capturing.
	RangedCaptureRange int
	CaptureChanceFloor float64
	BiterChanceFloor   float64
	BiterMinDamage     int
	AcidImmuneFactor   float64
	// DefaultDamageEstimate is the per-hit damage assumed when ranking leap targets.
	DefaultDamageEstimate int
}

// DefaultTuning returns the standard constants.
func DefaultTuning() Tuning {
	return Tuning{
		MinRetreatTurn:        4,
		StalemateTurn:         150,
		RetreatHysteresis:     1.2,
		PowerRatioEpsilon:     0.0001,
		ScatterAttempts:       4,
		ScatterRadius:         2,
		SpellOdds:             2,
		HealCeiling:           0.84,
		LeapRange:             4,
		LeapReach:             2,
		ApproachDistance:      15,
		MaxSearchDistance:     999,
		RangedCaptureRange:    4,
		CaptureChanceFloor:    0.5,
		BiterChanceFloor:      0.25,
		BiterMinDamage:        2,
		AcidImmuneFactor:      0.5,
		DefaultDamageEstimate: 4,
	}
}

// withDefaults fills the fields of t that have no usable zero value from
// DefaultTuning. A fully zero Tuning becomes DefaultTuning.
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t == (Tuning{}) {
		return d
	}
	if t.SpellOdds <= 0 {
		t.SpellOdds = d.SpellOdds
	}
	if t.ScatterAttempts <= 0 {
		t.ScatterAttempts = d.ScatterAttempts
	}
	if t.LeapRange <= 0 {
		t.LeapRange = d.LeapRange
	}
	if t.ApproachDistance <= 0 {
		t.ApproachDistance = d.ApproachDistance
	}
	if t.MaxSearchDistance <= 0 {
		t.MaxSearchDistance = d.MaxSearchDistance
	}
	if t.RetreatHysteresis <= 0 {
		t.RetreatHysteresis = d.RetreatHysteresis
	}
	if t.PowerRatioEpsilon <= 0 {
		t.PowerRatioEpsilon = d.PowerRatioEpsilon
	}
	if t.DefaultDamageEstimate <= 0 {
		t.DefaultDamageEstimate = d.DefaultDamageEstimate
	}
	return t
}
