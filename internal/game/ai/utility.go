package ai

import (
	"cmp"
	"slices"

	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// PotentialTarget is one ranked candidate in a selector's list.
//
// Utility values are only comparable within a single list.
type PotentialTarget struct {
	Target   *unit.Combatant
	Chance   float64
	Distance int
	Utility  float64
}

// DefaultUtility scores a damage-dealing interaction: the success chance
// divided by the number of hits needed to bring the target down, floored at one hit.
//
// A non-positive damage estimate is treated as 1.
func DefaultUtility(chance float64, health, damage int) float64 {
	if damage <= 0 {
		damage = 1
	}
	hits := float64(health) / float64(damage)
	if hits < 1 {
		hits = 1
	}
	return chance / hits
}

// BlastUtility scores an area spell by its net effect.
func BlastUtility(enemies, allies int) float64 {
	return float64(enemies - allies)
}

func damageTarget(t *unit.Combatant, chance float64, distance, damage int) PotentialTarget {
	return PotentialTarget{
		Target:   t,
		Chance:   chance,
		Distance: distance,
		Utility:  DefaultUtility(chance, t.Health, damage),
	}
}

func chanceTarget(t *unit.Combatant, chance float64, distance int) PotentialTarget {
	return PotentialTarget{Target: t, Chance: chance, Distance: distance, Utility: chance}
}

// Rank orders candidates for use by a behavior.
//
// Postcondition: if any candidate has Distance < 2 the result holds exactly
// that one adjacent candidate with the smallest distance, ties broken by
// higher chance then higher utility. Otherwise the result is sorted by
// descending utility, keeping input order among equals.
func Rank(cands []PotentialTarget) []PotentialTarget {
	prime := -1
	for i, c := range cands {
		if c.Distance >= 2 {
			continue
		}
		if prime < 0 || betterPrime(c, cands[prime]) {
			prime = i
		}
	}
	if prime >= 0 {
		return []PotentialTarget{cands[prime]}
	}
	slices.SortStableFunc(cands, func(a, b PotentialTarget) int {
		return cmp.Compare(b.Utility, a.Utility)
	})
	return cands
}

func betterPrime(c, best PotentialTarget) bool {
	if c.Distance != best.Distance {
		return c.Distance < best.Distance
	}
	if c.Chance != best.Chance {
		return c.Chance > best.Chance
	}
	return c.Utility > best.Utility
}
