package ai

import (
	"github.com/Zeldazackman/VoreWar/internal/game/dice"
	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/spell"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// retreatImmune reports whether actor keeps fighting while its side retreats.
func retreatImmune(actor *unit.Combatant) bool {
	return actor.Kind == unit.KindSummon ||
		actor.Kind == unit.KindMercenary ||
		actor.Has(unit.TraitFearless)
}

func (a *TacticalAI) retreatRow() int {
	if a.defending {
		return 0
	}
	return a.world.Board().Height() - 1
}

// retreat walks actor toward its home edge, leaving the battle once there.
func (a *TacticalAI) retreat(actor *unit.Combatant) Outcome {
	row := a.retreatRow()
	if actor.Pos.Y == row {
		a.actions.AttemptRetreat(actor)
		if actor.Targetable {
			a.fightWithoutMoving(actor)
		}
		a.actions.ClearMovement(actor)
		return OutcomeAction
	}
	path := a.paths.FindPathTowardRow(actor.Pos, actor.Has(unit.TraitFlight), row, actor)
	if len(path) > 0 {
		a.plan = newPlan(actor, path, nil)
		return OutcomePlan
	}
	a.fightWithoutMoving(actor)
	a.actions.ClearMovement(actor)
	return OutcomeAction
}

// planTo queues a path toward to. On failure the pending plan is cleared.
func (a *TacticalAI) planTo(actor *unit.Combatant, to grid.Pos, within, maxDistance int, cmd *Command) bool {
	path := a.paths.FindPath(actor.Pos, to, within, actor, maxDistance)
	if len(path) == 0 {
		a.plan = nil
		return false
	}
	a.plan = newPlan(actor, path, cmd)
	return true
}

// planWithinTurn is planTo restricted to plans actor can finish this turn.
func (a *TacticalAI) planWithinTurn(actor *unit.Combatant, to grid.Pos, within, maxDistance int, cmd *Command) bool {
	if a.planTo(actor, to, within, maxDistance, cmd) && a.plan.Remaining() < actor.Movement {
		return true
	}
	a.plan = nil
	return false
}

// fightWithoutMoving tries an adjacent capture, then a ranged shot beyond
// melee range, then an adjacent melee attack.
func (a *TacticalAI) fightWithoutMoving(actor *unit.Combatant) bool {
	if actor.CanCapture() {
		for _, t := range a.CaptureTargets(actor, false) {
			if t.Distance < 2 {
				a.capture(actor, t.Target)
				return true
			}
		}
	}
	if actor.IsRanged() {
		for _, t := range a.RangedTargets(actor) {
			if t.Distance > 1 && t.Distance <= actor.Ranged.Range {
				a.actions.Attack(actor, t.Target, true)
				return true
			}
		}
	}
	for _, t := range a.MeleeTargets(actor) {
		if t.Distance < 2 {
			a.actions.Attack(actor, t.Target, false)
			return true
		}
	}
	return false
}

func (a *TacticalAI) leapCapture(actor *unit.Combatant) Outcome {
	for _, t := range a.LeapCaptureTargets(actor) {
		switch {
		case t.Distance < 2:
			a.capture(actor, t.Target)
			return OutcomeAction
		case t.Distance <= a.tuning.LeapRange:
			if a.actions.CaptureLeap(actor, t.Target) {
				a.state.Consumed++
			}
			return OutcomeAction
		}
		cmd := &Command{Kind: CommandCaptureLeap, TargetID: t.Target.ID}
		if a.planTo(actor, t.Target.Pos, a.tuning.LeapRange, a.tuning.LeapReach+actor.Movement, cmd) {
			return OutcomePlan
		}
	}
	return OutcomeNone
}

// captureTargets acts on the capture list. With anyDistance only the best
// candidate is considered.
func (a *TacticalAI) captureTargets(actor *unit.Combatant, anyDistance bool) Outcome {
	for _, t := range a.CaptureTargets(actor, anyDistance) {
		if t.Distance < 2 {
			a.capture(actor, t.Target)
			return OutcomeAction
		}
		cmd := &Command{Kind: CommandCapture, TargetID: t.Target.ID}
		found := a.planTo(actor, t.Target.Pos, 1, a.tuning.MaxSearchDistance, cmd)
		if actor.Has(unit.TraitRangedCapture) {
			if found && a.plan.Remaining() < actor.Movement {
				return OutcomePlan
			}
			found = a.planTo(actor, t.Target.Pos, a.tuning.RangedCaptureRange, a.tuning.MaxSearchDistance, cmd)
		}
		if found && (anyDistance || a.plan.Remaining() < actor.Movement) {
			return OutcomePlan
		}
		a.plan = nil
		if anyDistance {
			break
		}
	}
	return OutcomeNone
}

func (a *TacticalAI) resurrect(actor *unit.Combatant) Outcome {
	sp, ok := actor.SpellOfKind(spell.KindResurrection)
	if !ok || !sp.Affordable(actor.Mana) {
		return OutcomeNone
	}
	if a.world.ResurrectTarget(actor) == nil {
		return OutcomeNone
	}
	if a.scatterCast(actor, sp) {
		return OutcomeAction
	}
	return OutcomeNone
}

// scatterCast tries sp at random open tiles around actor.
func (a *TacticalAI) scatterCast(actor *unit.Combatant, sp *spell.Spell) bool {
	r := a.tuning.ScatterRadius
	for i := 0; i < a.tuning.ScatterAttempts; i++ {
		at := grid.Pos{
			X: dice.Between(a.rand, actor.Pos.X-r, actor.Pos.X+r+1),
			Y: dice.Between(a.rand, actor.Pos.Y-r, actor.Pos.Y+r+1),
		}
		if !a.world.OpenTile(at, nil) {
			continue
		}
		if a.spells.TryCastAt(actor, sp, at) {
			return true
		}
	}
	return false
}

func (a *TacticalAI) castSpell(actor *unit.Combatant) Outcome {
	if len(actor.Spells) == 0 {
		return OutcomeNone
	}
	sp := actor.Spells[a.rand.Intn(len(actor.Spells))]
	if sp == nil || !sp.Affordable(actor.Mana) || sp.Kind == spell.KindResurrection {
		return OutcomeNone
	}
	if a.world.OnlyOneSideVisible() {
		return OutcomeNone
	}
	if sp.Kind == spell.KindSummon {
		if a.scatterCast(actor, sp) {
			return OutcomeAction
		}
		return OutcomeNone
	}
	for _, t := range a.SpellTargets(actor, sp) {
		if t.Distance <= sp.Range {
			a.spells.TryCast(actor, sp, t.Target)
			return OutcomeAction
		}
		if t.Distance < actor.Movement {
			cmd := &Command{Kind: CommandCast, TargetID: t.Target.ID, Spell: sp}
			if a.planWithinTurn(actor, t.Target.Pos, sp.Range, actor.Movement, cmd) {
				return OutcomePlan
			}
		}
	}
	return OutcomeNone
}

func (a *TacticalAI) meleeLeap(actor *unit.Combatant) Outcome {
	for _, t := range a.LeapTargets(actor) {
		switch {
		case t.Distance < 2:
			a.actions.Attack(actor, t.Target, false)
			return OutcomeAction
		case t.Distance <= a.tuning.LeapRange:
			a.actions.MeleeLeap(actor, t.Target)
			return OutcomeAction
		}
		cmd := &Command{Kind: CommandMeleeLeap, TargetID: t.Target.ID}
		if a.planTo(actor, t.Target.Pos, a.tuning.LeapRange, a.tuning.LeapReach+actor.Movement, cmd) {
			return OutcomePlan
		}
	}
	return OutcomeNone
}

func (a *TacticalAI) attack(actor *unit.Combatant) Outcome {
	if actor.IsRanged() {
		return a.rangedAttack(actor)
	}
	return a.meleeAttack(actor)
}

func (a *TacticalAI) rangedAttack(actor *unit.Combatant) Outcome {
	targets := a.RangedTargets(actor)
	if len(targets) == 0 {
		return OutcomeNone
	}
	w := actor.Ranged
	for _, t := range targets {
		if t.Distance <= w.Range && (t.Distance > 1 || (w.Omni && t.Distance > 0)) {
			a.actions.Attack(actor, t.Target, true)
			return OutcomeAction
		}
	}
	reserve := targets[0].Target
	if actor.Pos.MovesTo(reserve.Pos) > 1 {
		cmd := &Command{Kind: CommandRangedAttack, TargetID: reserve.ID}
		if a.planTo(actor, reserve.Pos, w.Range, a.tuning.MaxSearchDistance, cmd) {
			return OutcomePlan
		}
		if a.planTo(actor, reserve.Pos, a.tuning.ApproachDistance, a.tuning.MaxSearchDistance, nil) {
			return OutcomePlan
		}
	}
	if a.randomWalk(actor) {
		a.actions.ClearMovement(actor)
		return OutcomeAction
	}
	return a.meleeAttack(actor)
}

func (a *TacticalAI) meleeAttack(actor *unit.Combatant) Outcome {
	targets := a.MeleeTargets(actor)
	if len(targets) == 0 {
		return OutcomeNone
	}
	for _, t := range targets {
		if t.Distance < 2 {
			a.actions.Attack(actor, t.Target, false)
			return OutcomeAction
		}
		if t.Distance >= actor.Movement {
			continue
		}
		kind := CommandAttack
		if actor.Has(unit.TraitFinisher) && a.actions.CanFinish(actor) {
			kind = CommandFinisher
		}
		cmd := &Command{Kind: kind, TargetID: t.Target.ID}
		if a.planWithinTurn(actor, t.Target.Pos, 1, actor.Movement, cmd) {
			return OutcomePlan
		}
	}
	if a.planTo(actor, targets[0].Target.Pos, ClosestApproach, a.tuning.MaxSearchDistance, nil) {
		return OutcomePlan
	}
	a.randomWalk(actor)
	a.actions.ClearMovement(actor)
	return OutcomeAction
}

// randomWalk steps actor one tile, starting from a random direction and
// trying each of the eight in turn.
func (a *TacticalAI) randomWalk(actor *unit.Combatant) bool {
	d := a.rand.Intn(grid.DirectionCount)
	for range grid.DirectionCount {
		if a.actions.Step(actor, grid.Direction(d)) {
			return true
		}
		d = (d + 1) % grid.DirectionCount
	}
	return false
}
