package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// Outcome is the result of trying one behavior.
type Outcome int

const (
	// OutcomeNone means the behavior did not commit; the next one is tried.
	OutcomeNone Outcome = iota
	// OutcomeAction means an immediate action was taken.
	OutcomeAction
	// OutcomePlan means a PendingPlan was queued.
	OutcomePlan
	// OutcomePass means nothing applied and the combatant's turn was ended.
	OutcomePass
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAction:
		return "action"
	case OutcomePlan:
		return "plan"
	case OutcomePass:
		return "pass"
	default:
		return "none"
	}
}

// behavior is one handler in the priority chain. applies is the built-in
// capability gate evaluated before any profile precondition.
type behavior struct {
	id      BehaviorID
	applies func(actor *unit.Combatant) bool
	run     func(actor *unit.Combatant) Outcome
}

func (a *TacticalAI) buildChain() []behavior {
	canLeap := func(actor *unit.Combatant) bool {
		return actor.Has(unit.TraitLeap) && actor.Movement >= 2
	}
	always := func(*unit.Combatant) bool { return true }
	return []behavior{
		{id: BehaviorLeapCapture, applies: func(actor *unit.Combatant) bool {
			return canLeap(actor) && actor.CanCapture()
		}, run: a.leapCapture},
		{id: BehaviorCapture, applies: (*unit.Combatant).CanCapture, run: func(actor *unit.Combatant) Outcome {
			return a.captureTargets(actor, false)
		}},
		{id: BehaviorResurrect, applies: always, run: a.resurrect},
		{id: BehaviorSpells, applies: func(actor *unit.Combatant) bool {
			return a.rand.Intn(a.tuning.SpellOdds) == 0 || !actor.HasWeapon()
		}, run: a.castSpell},
		{id: BehaviorMeleeLeap, applies: func(actor *unit.Combatant) bool {
			return canLeap(actor) && !actor.IsRanged()
		}, run: a.meleeLeap},
		{id: BehaviorAttack, applies: always, run: a.attack},
		{id: BehaviorDistantCapture, applies: (*unit.Combatant).CanCapture, run: func(actor *unit.Combatant) Outcome {
			return a.captureTargets(actor, true)
		}},
	}
}

// newOrder picks a fresh decision for actor.
//
// Postcondition: any previous PendingPlan is discarded; a returned
// OutcomePlan leaves exactly one plan owned by actor.
func (a *TacticalAI) newOrder(actor *unit.Combatant) Outcome {
	a.plan = nil
	if a.state.Retreating && !retreatImmune(actor) {
		out := a.retreat(actor)
		a.logger.Debug("order", actorField(actor), zap.String("behavior", "retreat"), zap.Stringer("outcome", out))
		return out
	}
	for _, b := range a.chain {
		if !b.applies(actor) || !a.permitted(b.id, actor) {
			continue
		}
		if out := b.run(actor); out != OutcomeNone {
			a.logger.Debug("order", actorField(actor), zap.String("behavior", string(b.id)), zap.Stringer("outcome", out))
			return out
		}
	}
	a.plan = nil
	a.actions.ClearMovement(actor)
	a.logger.Debug("order", actorField(actor), zap.String("behavior", "pass"), zap.Stringer("outcome", OutcomePass))
	return OutcomePass
}

// permitted applies the profile rule for id. Lua failures count as false.
func (a *TacticalAI) permitted(id BehaviorID, actor *unit.Combatant) bool {
	rule, ok := a.profile.RuleFor(id)
	if !ok {
		return true
	}
	if rule.Disabled {
		return false
	}
	if rule.Precondition == "" {
		return true
	}
	val, err := a.scripts.CallHook(a.profile.ScriptScope, rule.Precondition, lua.LString(actor.ID))
	if err != nil {
		a.logger.Warn("precondition failed",
			actorField(actor), zap.String("behavior", string(id)), zap.Error(err))
		return false
	}
	return val == lua.LTrue
}

func actorField(actor *unit.Combatant) zap.Field {
	return zap.String("actor", actor.ID)
}

func commandField(cmd *Command) zap.Field {
	return zap.Stringer("command", cmd.Kind)
}
