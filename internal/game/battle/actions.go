package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/game/combat"
	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// MoveTo steps c onto the adjacent tile p, paying its terrain cost.
//
// Postcondition: returns false and leaves c unchanged when p is not adjacent,
// not open, or costs more than c's remaining movement.
func (b *Battle) MoveTo(c *unit.Combatant, p grid.Pos) bool {
	if !c.InPlay() || c.Pos.MovesTo(p) != 1 || !b.OpenTile(p, c) {
		return false
	}
	cost := b.board.Cost(p, c.Has(unit.TraitFlight))
	if cost > c.Movement {
		return false
	}
	c.Pos = p
	c.Movement -= cost
	return true
}

// Step moves c one tile in direction d.
func (b *Battle) Step(c *unit.Combatant, d grid.Direction) bool {
	return b.MoveTo(c, c.Pos.Add(d))
}

// ClearMovement ends c's turn.
func (b *Battle) ClearMovement(c *unit.Combatant) { c.ClearMovement() }

func (b *Battle) ready(c, target *unit.Combatant) bool {
	return c.InPlay() && c.Movement > 0 && target != nil && target.InPlay()
}

// attackReach returns the maximum distance c can strike from.
func attackReach(c *unit.Combatant, ranged bool) int {
	if ranged {
		if c.Ranged == nil {
			return 0
		}
		return c.Ranged.Range
	}
	return 1
}

// Attack resolves a weapon attack of c against target. It ends c's turn.
// An out-of-range attack is ignored.
func (b *Battle) Attack(c, target *unit.Combatant, ranged bool) {
	if !b.ready(c, target) {
		return
	}
	d := c.Pos.MovesTo(target.Pos)
	if d == 0 || d > attackReach(c, ranged) {
		return
	}
	b.strike(c, target, ranged, 1)
	c.ClearMovement()
}

// strike rolls one attack and applies mult × its damage.
func (b *Battle) strike(c, target *unit.Combatant, ranged bool, mult int) combat.AttackResult {
	r := b.model.ResolveAttack(c, target, ranged, b.rand)
	dmg := r.EffectiveDamage() * mult
	b.logger.Debug("attack",
		zap.String("attacker", c.ID),
		zap.String("target", target.ID),
		zap.String("outcome", r.Outcome.String()),
		zap.Int("damage", dmg),
	)
	if dmg == 0 {
		b.events.Notice(fmt.Sprintf("%s attacks %s: %s.", c.Name, target.Name, r.Outcome))
		return r
	}
	b.events.Notice(fmt.Sprintf("%s attacks %s: %s for %d damage.", c.Name, target.Name, r.Outcome, dmg))
	b.damage(target, dmg)
	return r
}

// damage reduces target's health, killing it at zero.
func (b *Battle) damage(target *unit.Combatant, amount int) {
	target.Health -= amount
	if target.Health > 0 {
		return
	}
	target.Health = 0
	target.Dead = true
	target.Movement = 0
	b.events.Notice(fmt.Sprintf("%s falls.", target.Name))
}

// captureReach returns the distance c can capture from.
func (b *Battle) captureReach(c *unit.Combatant) int {
	if c.Has(unit.TraitRangedCapture) {
		return b.rangedCaptureRange
	}
	return 1
}

// Capture attempts to take target into c's capacity. It ends c's turn when attempted.
//
// Postcondition: on success target is no longer targetable and c.Capacity.Used grows by target.Bulk.
func (b *Battle) Capture(c, target *unit.Combatant) bool {
	if !b.ready(c, target) || !c.CanCapture() {
		return false
	}
	d := c.Pos.MovesTo(target.Pos)
	if d == 0 || d > b.captureReach(c) || c.Capacity.Free() < target.Bulk {
		return false
	}
	c.ClearMovement()
	return b.resolveCapture(c, target)
}

func (b *Battle) resolveCapture(c, target *unit.Combatant) bool {
	out := b.model.ResolveCapture(c, target, b.rand)
	if !out.Succeeded() {
		b.events.Notice(fmt.Sprintf("%s fails to capture %s.", c.Name, target.Name))
		return false
	}
	target.Targetable = false
	target.Movement = 0
	c.Capacity.Used += target.Bulk
	b.captor[target.ID] = c.ID
	b.events.Notice(fmt.Sprintf("%s captures %s.", c.Name, target.Name))
	b.logger.Info("capture", zap.String("captor", c.ID), zap.String("prey", target.ID))
	return true
}

// landing returns the open tile next to target nearest to c, within the leap range.
func (b *Battle) landing(c, target *unit.Combatant) (grid.Pos, bool) {
	best, found := grid.Pos{}, false
	for _, n := range target.Pos.Neighbours() {
		if !b.OpenTile(n, c) || c.Pos.MovesTo(n) > b.leapRange {
			continue
		}
		if !found || c.Pos.MovesTo(n) < c.Pos.MovesTo(best) {
			best, found = n, true
		}
	}
	return best, found
}

func (b *Battle) leap(c, target *unit.Combatant) bool {
	if c.Pos.MovesTo(target.Pos) <= 1 {
		return true
	}
	at, ok := b.landing(c, target)
	if !ok {
		return false
	}
	c.Pos = at
	b.events.Notice(fmt.Sprintf("%s leaps at %s.", c.Name, target.Name))
	return true
}

// CaptureLeap leaps next to target and attempts a capture. A leap with no
// landing tile still ends c's turn.
func (b *Battle) CaptureLeap(c, target *unit.Combatant) bool {
	if !b.ready(c, target) || !c.CanCapture() || c.Capacity.Free() < target.Bulk {
		return false
	}
	landed := b.leap(c, target)
	c.ClearMovement()
	if !landed {
		b.events.Notice(fmt.Sprintf("%s finds no room to leap at %s.", c.Name, target.Name))
		return false
	}
	return b.resolveCapture(c, target)
}

// MeleeLeap leaps next to target and strikes it. A leap with no landing
// tile still ends c's turn.
func (b *Battle) MeleeLeap(c, target *unit.Combatant) {
	if !b.ready(c, target) {
		return
	}
	landed := b.leap(c, target)
	c.ClearMovement()
	if !landed {
		b.events.Notice(fmt.Sprintf("%s finds no room to leap at %s.", c.Name, target.Name))
		return
	}
	b.strike(c, target, false, 1)
}

// CanFinish reports whether c may use its finishing strike this turn.
func (b *Battle) CanFinish(c *unit.Combatant) bool {
	if !c.Has(unit.TraitFinisher) || c.Movement <= 0 {
		return false
	}
	last, used := b.finished[c.ID]
	return !used || last != b.turn
}

// Finish delivers a double-damage melee strike, once per turn.
func (b *Battle) Finish(c, target *unit.Combatant) {
	if !b.ready(c, target) || !b.CanFinish(c) || c.Pos.MovesTo(target.Pos) != 1 {
		return
	}
	b.finished[c.ID] = b.turn
	b.strike(c, target, false, 2)
	c.ClearMovement()
}

// AttemptRetreat removes c from the battle when it stands on a board edge row.
func (b *Battle) AttemptRetreat(c *unit.Combatant) {
	if !c.InPlay() {
		return
	}
	if c.Pos.Y != 0 && c.Pos.Y != b.board.Height()-1 {
		return
	}
	c.Targetable = false
	c.Movement = 0
	b.fled = append(b.fled, c)
	b.events.Notice(fmt.Sprintf("%s flees the battle.", c.Name))
	b.logger.Info("retreat", zap.String("unit", c.ID), zap.Int("turn", b.turn))
}
