package ai

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/spell"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// CommandKind selects the action a Command performs.
type CommandKind int

const (
	CommandAttack CommandKind = iota
	CommandRangedAttack
	CommandCapture
	CommandCaptureLeap
	CommandMeleeLeap
	CommandFinisher
	CommandCast
)

var commandNames = map[CommandKind]string{
	CommandAttack:       "attack",
	CommandRangedAttack: "ranged_attack",
	CommandCapture:      "capture",
	CommandCaptureLeap:  "capture_leap",
	CommandMeleeLeap:    "melee_leap",
	CommandFinisher:     "finisher",
	CommandCast:         "cast",
}

func (k CommandKind) String() string {
	if n, ok := commandNames[k]; ok {
		return n
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is an action deferred until a plan's waypoints run out.
// The target is held by ID and re-resolved when the command fires.
type Command struct {
	Kind     CommandKind
	TargetID string
	// Spell is set for CommandCast.
	Spell *spell.Spell
}

// PendingPlan is the single outstanding multi-step order.
//
// Invariant: Steps never contains Owner's current tile.
type PendingPlan struct {
	ID     string
	Owner  *unit.Combatant
	Steps  []grid.Pos
	Action *Command
}

func newPlan(owner *unit.Combatant, steps []grid.Pos, action *Command) *PendingPlan {
	return &PendingPlan{ID: uuid.NewString(), Owner: owner, Steps: steps, Action: action}
}

// Remaining returns the number of waypoints left.
func (p *PendingPlan) Remaining() int { return len(p.Steps) }

func (p *PendingPlan) pop() grid.Pos {
	next := p.Steps[0]
	p.Steps = p.Steps[1:]
	return next
}

// lookup finds an in-play combatant by ID.
func (a *TacticalAI) lookup(id string) *unit.Combatant {
	for _, u := range a.world.Units() {
		if u != nil && u.ID == id {
			if !u.Targetable {
				return nil
			}
			return u
		}
	}
	return nil
}

// invoke runs cmd for actor. A target that has left play is skipped.
func (a *TacticalAI) invoke(actor *unit.Combatant, cmd *Command) {
	if cmd == nil {
		return
	}
	target := a.lookup(cmd.TargetID)
	if target == nil {
		a.logger.Debug("deferred target gone",
			actorField(actor), commandField(cmd))
		return
	}
	a.logger.Debug("deferred command", actorField(actor), commandField(cmd))
	switch cmd.Kind {
	case CommandAttack:
		a.actions.Attack(actor, target, false)
	case CommandRangedAttack:
		a.actions.Attack(actor, target, true)
	case CommandCapture:
		a.capture(actor, target)
	case CommandCaptureLeap:
		if a.actions.CaptureLeap(actor, target) {
			a.state.Consumed++
		}
	case CommandMeleeLeap:
		a.actions.MeleeLeap(actor, target)
	case CommandFinisher:
		a.actions.Finish(actor, target)
	case CommandCast:
		if cmd.Spell != nil {
			a.spells.TryCast(actor, cmd.Spell, target)
		}
	}
}

func (a *TacticalAI) capture(actor, target *unit.Combatant) {
	if a.actions.Capture(actor, target) {
		a.state.Consumed++
	}
}
