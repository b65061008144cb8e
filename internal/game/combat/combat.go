// Package combat implements the reference combat model: success chances,
// damage estimates, and army power for tactical battles.
package combat

import (
	"math"

	"github.com/Zeldazackman/VoreWar/internal/game/dice"
	"github.com/Zeldazackman/VoreWar/internal/game/spell"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// Outcome is the 4-tier result of a resolved roll.
type Outcome int

const (
	CritSuccess Outcome = iota
	Success
	Failure
	CritFailure
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case CritSuccess:
		return "critical success"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case CritFailure:
		return "critical failure"
	default:
		return "unknown"
	}
}

// Succeeded reports whether o is a success of either tier.
func (o Outcome) Succeeded() bool { return o == CritSuccess || o == Success }

const (
	minChance = 0.05
	maxChance = 0.95

	baseAttack       = 0.75
	attackPerLevel   = 0.05
	baseCapture      = 0.85
	captureHealthPen = 0.6
	capturePerLevel  = 0.03
	surrenderBonus   = 0.3
	baseMagic        = 0.7
	magicPerLevel    = 0.05

	// unarmed is the damage expression used when no weapon is equipped.
	unarmed = "1d3"
)

// Model is the reference implementation of the AI's combat estimator.
// Parsed damage expressions are cached per expression string.
//
// Model is not safe for concurrent use.
type Model struct {
	exprs map[string]dice.Expression
}

// NewModel returns a ready Model.
func NewModel() *Model {
	return &Model{exprs: make(map[string]dice.Expression)}
}

// Clamp limits a chance to [0.05, 0.95].
//
// Postcondition: 0.05 <= Clamp(x) <= 0.95.
func Clamp(chance float64) float64 {
	return math.Max(minChance, math.Min(maxChance, chance))
}

func levelDiff(a, b *unit.Combatant) float64 {
	return float64(a.Level - b.Level)
}

// AttackChance estimates a weapon hit: 0.75 shifted by 0.05 per level of difference.
func (m *Model) AttackChance(attacker, target *unit.Combatant, _ bool) float64 {
	return Clamp(baseAttack + attackPerLevel*levelDiff(attacker, target))
}

// CaptureChance favors wounded, lower-level, and surrendered targets.
func (m *Model) CaptureChance(capturer, target *unit.Combatant) float64 {
	c := baseCapture - captureHealthPen*target.HealthFraction() + capturePerLevel*levelDiff(capturer, target)
	if target.Surrendered {
		c += surrenderBonus
	}
	return Clamp(c)
}

// MagicChance estimates a spell landing on target.
func (m *Model) MagicChance(caster, target *unit.Combatant, _ *spell.Spell) float64 {
	return Clamp(baseMagic + magicPerLevel*levelDiff(caster, target))
}

// WeaponDamage returns the rounded average damage of the relevant weapon.
// A missing or unparsable weapon deals unarmed damage.
func (m *Model) WeaponDamage(attacker, _ *unit.Combatant, ranged bool) int {
	return int(math.Round(m.damageExpr(attacker, ranged).Average()))
}

// ArmyPower sums level weighted by remaining health over units.
func (m *Model) ArmyPower(units []*unit.Combatant) float64 {
	var total float64
	for _, u := range units {
		total += float64(u.Level) * (0.5 + 0.5*u.HealthFraction())
	}
	return total
}

func (m *Model) damageExpr(attacker *unit.Combatant, ranged bool) dice.Expression {
	w := attacker.Melee
	if ranged {
		w = attacker.Ranged
	}
	raw := unarmed
	if w != nil && w.Damage != "" {
		raw = w.Damage
	}
	if e, ok := m.exprs[raw]; ok {
		return e
	}
	e, err := dice.Parse(raw)
	if err != nil {
		e = dice.MustParse(unarmed)
	}
	m.exprs[raw] = e
	return e
}
