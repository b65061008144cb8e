package ai

import (
	"github.com/Zeldazackman/VoreWar/internal/game/spell"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// offensive reports whether u is a legal attack target for this side right now.
// Surrendered enemies qualify only when nobody can capture them or the
// battle has stalled.
func (a *TacticalAI) offensive(u *unit.Combatant) bool {
	if u == nil || !u.Targetable || u.Side == a.side {
		return false
	}
	if !u.Surrendered {
		return true
	}
	if a.state.OnlySurrendered && a.state.LacksCapturers {
		return true
	}
	return a.world.CurrentTurn() > a.tuning.StalemateTurn
}

func (a *TacticalAI) worthCapturing(actor, target *unit.Combatant, chance float64) bool {
	if chance > a.tuning.CaptureChanceFloor {
		return true
	}
	return actor.Has(unit.TraitBiter) &&
		chance > a.tuning.BiterChanceFloor &&
		actor.Melee != nil &&
		a.combat.WeaponDamage(actor, target, false) > a.tuning.BiterMinDamage
}

// CaptureTargets lists enemies actor could capture, within movement range
// unless anyDistance is set.
func (a *TacticalAI) CaptureTargets(actor *unit.Combatant, anyDistance bool) []PotentialTarget {
	free := actor.Capacity.Free()
	if !actor.CanCapture() || free < 1 {
		return nil
	}
	var cands []PotentialTarget
	for _, u := range a.world.Units() {
		if u == nil || !u.Targetable || u.Side == a.side || u.Bulk > free {
			continue
		}
		d := actor.Pos.MovesTo(u.Pos)
		if d > actor.Movement && !anyDistance {
			continue
		}
		if u.CaptureAverse > 0 {
			continue
		}
		chance := a.combat.CaptureChance(actor, u)
		if !a.worthCapturing(actor, u, chance) {
			continue
		}
		if d > 1 && !a.world.FreeSpaceAround(u.Pos, actor) {
			continue
		}
		if u.Has(unit.TraitAcidImmune) {
			chance *= a.tuning.AcidImmuneFactor
		}
		cands = append(cands, chanceTarget(u, chance, d))
	}
	return Rank(cands)
}

// LeapCaptureTargets lists capture targets within leap reach.
func (a *TacticalAI) LeapCaptureTargets(actor *unit.Combatant) []PotentialTarget {
	free := actor.Capacity.Free()
	if !actor.CanCapture() || free < 1 {
		return nil
	}
	reach := a.tuning.LeapReach + actor.Movement
	var cands []PotentialTarget
	for _, u := range a.world.Units() {
		if u == nil || !u.Targetable || u.Side == a.side || u.Bulk > free || u.CaptureAverse > 0 {
			continue
		}
		d := actor.Pos.MovesTo(u.Pos)
		if d > reach || !a.world.FreeSpaceAround(u.Pos, actor) {
			continue
		}
		chance := a.combat.CaptureChance(actor, u)
		if chance <= a.tuning.CaptureChanceFloor {
			continue
		}
		cands = append(cands, chanceTarget(u, chance, d))
	}
	return Rank(cands)
}

// LeapTargets lists melee leap targets within leap reach.
func (a *TacticalAI) LeapTargets(actor *unit.Combatant) []PotentialTarget {
	reach := a.tuning.LeapReach + actor.Movement
	var cands []PotentialTarget
	for _, u := range a.world.Units() {
		if !a.offensive(u) {
			continue
		}
		d := actor.Pos.MovesTo(u.Pos)
		if d > reach || !a.world.FreeSpaceAround(u.Pos, actor) {
			continue
		}
		chance := a.combat.AttackChance(actor, u, false)
		cands = append(cands, damageTarget(u, chance, d, a.tuning.DefaultDamageEstimate))
	}
	return Rank(cands)
}

// RangedTargets lists enemies for actor's ranged weapon at any distance.
func (a *TacticalAI) RangedTargets(actor *unit.Combatant) []PotentialTarget {
	if !actor.IsRanged() {
		return nil
	}
	var cands []PotentialTarget
	for _, u := range a.world.Units() {
		if !a.offensive(u) {
			continue
		}
		d := actor.Pos.MovesTo(u.Pos)
		chance := a.combat.AttackChance(actor, u, true)
		cands = append(cands, damageTarget(u, chance, d, a.combat.WeaponDamage(actor, u, true)))
	}
	return Rank(cands)
}

// MeleeTargets lists enemies for melee. Targets within movement range with
// no free tile beside them are left out.
func (a *TacticalAI) MeleeTargets(actor *unit.Combatant) []PotentialTarget {
	var cands []PotentialTarget
	for _, u := range a.world.Units() {
		if !a.offensive(u) {
			continue
		}
		d := actor.Pos.MovesTo(u.Pos)
		if d > 1 && d < actor.Movement && !a.world.FreeSpaceAround(u.Pos, actor) {
			continue
		}
		chance := a.combat.AttackChance(actor, u, false)
		cands = append(cands, damageTarget(u, chance, d, a.combat.WeaponDamage(actor, u, false)))
	}
	return Rank(cands)
}

// SpellTargets lists legal targets for sp. Area spells score by net blast
// effect; support spells score by cast chance.
func (a *TacticalAI) SpellTargets(actor *unit.Combatant, sp *spell.Spell) []PotentialTarget {
	var cands []PotentialTarget
	for _, u := range a.world.Units() {
		if u == nil || !u.Targetable || u.Surrendered {
			continue
		}
		if sp.Kind == spell.KindStatus && u.HasEffect(sp.Status) {
			continue
		}
		d := actor.Pos.MovesTo(u.Pos)
		enemy := u.Side != a.side
		switch {
		case enemy && sp.Targets.Has(spell.TargetEnemy):
			chance := a.combat.MagicChance(actor, u, sp)
			if sp.AreaOfEffect > 0 {
				net := a.blast(actor, u, sp.AreaOfEffect)
				if net <= 0 {
					continue
				}
				cands = append(cands, PotentialTarget{Target: u, Chance: chance, Distance: d, Utility: net})
				continue
			}
			damage := sp.Potency
			if sp.Kind != spell.KindDamage {
				cands = append(cands, chanceTarget(u, chance, d))
				continue
			}
			cands = append(cands, damageTarget(u, chance, d, damage))
		case !enemy && sp.Targets.Has(spell.TargetAlly):
			if sp.Kind == spell.KindHeal && u.HealthFraction() > a.tuning.HealCeiling {
				continue
			}
			cands = append(cands, chanceTarget(u, a.combat.MagicChance(actor, u, sp), d))
		}
	}
	return Rank(cands)
}

func (a *TacticalAI) blast(actor, center *unit.Combatant, radius int) float64 {
	var enemies, allies int
	for _, u := range a.world.UnitsWithin(center.Pos, radius) {
		if u == nil || !u.Targetable {
			continue
		}
		if u.Side == actor.Side {
			allies++
		} else {
			enemies++
		}
	}
	return BlastUtility(enemies, allies)
}
