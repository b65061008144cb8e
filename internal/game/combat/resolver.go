package combat

import (
	"github.com/Zeldazackman/VoreWar/internal/game/dice"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// critBand is the fraction of the success range that counts as critical.
const critBand = 0.1

// AttackResult holds the outcome of a single weapon attack.
type AttackResult struct {
	AttackerID string
	TargetID   string
	// Roll is the raw percentile roll in [0,100).
	Roll    int
	Chance  float64
	Outcome Outcome
	// BaseDamage is the rolled weapon damage before the outcome multiplier.
	BaseDamage int
}

// EffectiveDamage returns the damage dealt after applying the outcome multiplier.
//
// Postcondition: Returns >= 0.
func (r AttackResult) EffectiveDamage() int {
	switch r.Outcome {
	case CritSuccess:
		return r.BaseDamage * 2
	case Success:
		return r.BaseDamage
	default:
		return 0
	}
}

// OutcomeFor maps a percentile roll against chance to the 4-tier result.
// The lowest tenth of the success band is critical; the matching top slice
// of the failure band is a critical failure.
//
// Precondition: 0 <= roll < 100.
func OutcomeFor(roll int, chance float64) Outcome {
	r := float64(roll)
	hit := chance * 100
	switch {
	case r < hit*critBand:
		return CritSuccess
	case r < hit:
		return Success
	case r >= 100-(100-hit)*critBand:
		return CritFailure
	default:
		return Failure
	}
}

// ResolveAttack rolls an attack and its damage.
//
// Precondition: attacker, target, and src must be non-nil.
// Postcondition: BaseDamage >= 0.
func (m *Model) ResolveAttack(attacker, target *unit.Combatant, ranged bool, src dice.Source) AttackResult {
	chance := m.AttackChance(attacker, target, ranged)
	roll := src.Intn(100)
	dmg := m.damageExpr(attacker, ranged).Roll(src)
	if dmg < 0 {
		dmg = 0
	}
	return AttackResult{
		AttackerID: attacker.ID,
		TargetID:   target.ID,
		Roll:       roll,
		Chance:     chance,
		Outcome:    OutcomeFor(roll, chance),
		BaseDamage: dmg,
	}
}

// ResolveCapture rolls a capture attempt.
func (m *Model) ResolveCapture(capturer, target *unit.Combatant, src dice.Source) Outcome {
	return OutcomeFor(src.Intn(100), m.CaptureChance(capturer, target))
}

// ResolveChance rolls against an arbitrary chance, such as a spell landing.
func ResolveChance(chance float64, src dice.Source) Outcome {
	return OutcomeFor(src.Intn(100), chance)
}
