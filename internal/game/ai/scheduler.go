package ai

import (
	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/game/dice"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// Deps bundles the collaborators a TacticalAI consumes.
//
// World, Actions, Paths, Combat, Spells, and Rand are required. Events and
// Logger default to no-ops. Scripts is required only when the profile
// carries Lua preconditions.
type Deps struct {
	World   World
	Actions Actions
	Paths   Pathfinder
	Combat  CombatModel
	Spells  Caster
	Rand    dice.Source
	Events  EventLog
	Scripts ScriptCaller
	Logger  *zap.Logger
}

// Config selects the side a TacticalAI controls and how it behaves.
type Config struct {
	Side unit.Side
	// Defending marks the tactical defender: it retreats toward the low edge
	// and its morale notices name Defenders.
	Defending bool
	// DefendingVillage doubles friendly power when weighing a retreat.
	DefendingVillage bool
	// Policy may be nil to disable retreat.
	Policy *RetreatPolicy
	// Profile may be nil for DefaultProfile.
	Profile *Profile
	// Tuning fields with no usable zero value take their DefaultTuning value.
	Tuning Tuning
}

// TacticalAI drives one side's combatants one unit of work at a time.
//
// Invariant: at most one PendingPlan exists and it belongs to the combatant
// that was advanced when it was created.
type TacticalAI struct {
	side      unit.Side
	defending bool
	village   bool
	policy    *RetreatPolicy
	profile   *Profile
	tuning    Tuning

	world   World
	actions Actions
	paths   Pathfinder
	combat  CombatModel
	spells  Caster
	rand    dice.Source
	events  EventLog
	scripts ScriptCaller
	logger  *zap.Logger

	state StrategicState
	plan  *PendingPlan
	chain []behavior
}

// New constructs a TacticalAI.
//
// Precondition: the required members of deps must not be nil; deps.Scripts
// must not be nil when cfg.Profile needs scripts.
func New(cfg Config, deps Deps) *TacticalAI {
	switch {
	case deps.World == nil:
		panic("ai.New: World must not be nil")
	case deps.Actions == nil:
		panic("ai.New: Actions must not be nil")
	case deps.Paths == nil:
		panic("ai.New: Paths must not be nil")
	case deps.Combat == nil:
		panic("ai.New: Combat must not be nil")
	case deps.Spells == nil:
		panic("ai.New: Spells must not be nil")
	case deps.Rand == nil:
		panic("ai.New: Rand must not be nil")
	}
	profile := cfg.Profile
	if profile == nil {
		profile = DefaultProfile()
	}
	if profile.NeedsScripts() && deps.Scripts == nil {
		panic("ai.New: profile " + profile.ID + " has preconditions but Scripts is nil")
	}
	events := deps.Events
	if events == nil {
		events = nopEvents{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &TacticalAI{
		side:      cfg.Side,
		defending: cfg.Defending,
		village:   cfg.DefendingVillage,
		profile:   profile,
		tuning:    cfg.Tuning.withDefaults(),
		world:     deps.World,
		actions:   deps.Actions,
		paths:     deps.Paths,
		combat:    deps.Combat,
		spells:    deps.Spells,
		rand:      deps.Rand,
		events:    events,
		scripts:   deps.Scripts,
		logger:    logger.With(zap.Int("side", int(cfg.Side))),
		state:     StrategicState{LastTurn: -1},
	}
	a.SetRetreatPolicy(cfg.Policy)
	a.chain = a.buildChain()
	return a
}

// AdvanceOneStep performs one unit of work for the first eligible combatant:
// one step of its pending plan or one fresh decision.
//
// Postcondition: returns false iff no combatant of this side is targetable
// with movement remaining.
func (a *TacticalAI) AdvanceOneStep() bool {
	if turn := a.world.CurrentTurn(); turn != a.state.LastTurn {
		a.plan = nil
		a.reassess(turn)
		a.state.LastTurn = turn
	}
	finished := false
	for _, actor := range a.world.Units() {
		if actor == nil || !actor.Targetable || actor.Side != a.side || actor.Movement <= 0 {
			continue
		}
		if a.plan != nil && a.plan.Owner == actor {
			if a.continuePlan(actor) {
				return true
			}
			// An exhausted plan spends this pass; the owner gets a fresh
			// order on the next call.
			finished = finished || actor.Targetable && actor.Movement > 0
			continue
		}
		a.newOrder(actor)
		return true
	}
	return finished
}

// continuePlan advances actor's plan by one waypoint. It returns false when
// the plan was already exhausted and no step was taken.
func (a *TacticalAI) continuePlan(actor *unit.Combatant) bool {
	p := a.plan
	if a.state.Retreating && actor.Movement == 1 && !a.world.TileShared(actor.Pos) {
		a.fightWithoutMoving(actor)
		if actor.Movement <= 0 {
			a.plan = nil
			return true
		}
	}
	if p.Remaining() == 0 {
		a.finish(actor, p)
		return false
	}
	next := p.pop()
	if actor.Movement == 1 && !a.world.OpenTile(next, actor) {
		a.actions.ClearMovement(actor)
		a.plan = nil
		return true
	}
	if !a.actions.MoveTo(actor, next) {
		a.invoke(actor, p.Action)
		a.actions.ClearMovement(actor)
		a.plan = nil
		return true
	}
	switch {
	case actor.Movement == 1 && actor.IsRanged() && !a.world.TileShared(actor.Pos):
		a.plan = nil
	case p.Remaining() == 0 || actor.Movement <= 0:
		a.finish(actor, p)
	}
	return true
}

// finish completes p: its deferred action if any, else the turn ends.
func (a *TacticalAI) finish(actor *unit.Combatant, p *PendingPlan) {
	a.plan = nil
	if p.Action != nil {
		a.invoke(actor, p.Action)
		return
	}
	a.actions.ClearMovement(actor)
}

// State returns a snapshot of the strategic state.
func (a *TacticalAI) State() StrategicState { return a.state }

// Restore replaces the strategic state, e.g. when resuming a saved battle.
// Any pending plan is dropped.
func (a *TacticalAI) Restore(s StrategicState) {
	a.state = s
	a.plan = nil
}

// RetreatPolicy returns the configured policy, or false when retreat is disabled.
func (a *TacticalAI) RetreatPolicy() (RetreatPolicy, bool) {
	if a.policy == nil {
		return RetreatPolicy{}, false
	}
	return *a.policy, true
}

// SetRetreatPolicy replaces the policy; nil disables retreat. The value is copied.
func (a *TacticalAI) SetRetreatPolicy(p *RetreatPolicy) {
	if p == nil {
		a.policy = nil
		return
	}
	cp := *p
	a.policy = &cp
}

// Plan returns the pending plan, or nil.
func (a *TacticalAI) Plan() *PendingPlan { return a.plan }

// Side returns the side this AI controls.
func (a *TacticalAI) Side() unit.Side { return a.side }
