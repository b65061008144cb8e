package ai

import (
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
	"go.uber.org/zap"
)

// reassess recomputes the strategic state for turn.
func (a *TacticalAI) reassess(turn int) {
	var friendly, enemies, capturers []*unit.Combatant
	for _, u := range a.world.Units() {
		if u == nil || !u.InPlay() {
			continue
		}
		if u.Side == a.side {
			friendly = append(friendly, u)
			if u.CanCapture() {
				capturers = append(capturers, u)
			}
			continue
		}
		enemies = append(enemies, u)
	}

	a.state.OnlySurrendered = true
	for _, e := range enemies {
		if !e.Surrendered {
			a.state.OnlySurrendered = false
			break
		}
	}

	a.state.LacksCapturers = len(capturers) == 0
	if a.state.OnlySurrendered {
		a.state.LacksCapturers = !anyCanConsume(capturers, enemies)
	}

	a.evaluateRetreat(turn, fighting(friendly), fighting(enemies))
}

// anyCanConsume reports whether some capturer has room to ever hold some enemy.
func anyCanConsume(capturers, enemies []*unit.Combatant) bool {
	for _, c := range capturers {
		for _, e := range enemies {
			if c.Capacity.Total > e.Bulk {
				return true
			}
		}
	}
	return false
}

func fighting(units []*unit.Combatant) []*unit.Combatant {
	out := make([]*unit.Combatant, 0, len(units))
	for _, u := range units {
		if !u.Surrendered {
			out = append(out, u)
		}
	}
	return out
}

// evaluateRetreat runs the morale state machine.
//
// Precondition: friendly and enemies hold only in-play, non-surrendered units.
// Invariant: once retreating, the side only recovers when the power ratio
// exceeds MinPowerRatio * RetreatHysteresis or no enemy power remains.
func (a *TacticalAI) evaluateRetreat(turn int, friendly, enemies []*unit.Combatant) {
	p := a.policy
	if p == nil || turn < a.tuning.MinRetreatTurn {
		return
	}
	if p.ConsumptionThreshold > 0 && a.state.Consumed >= p.ConsumptionThreshold && !a.state.OnlySurrendered {
		a.setRetreating(true, "have eaten their fill and are retreating")
		return
	}
	if p.MinPowerRatio <= a.tuning.PowerRatioEpsilon {
		return
	}
	ours := a.combat.ArmyPower(friendly)
	theirs := a.combat.ArmyPower(enemies)
	if a.village {
		ours *= 2
	}
	if theirs > 0 && ours/theirs < p.MinPowerRatio {
		a.setRetreating(true, "have lost heart and are retreating")
		return
	}
	if a.state.Retreating && (theirs <= 0 || ours/theirs > p.MinPowerRatio*a.tuning.RetreatHysteresis) {
		a.setRetreating(false, "have regained their courage")
	}
}

func (a *TacticalAI) setRetreating(on bool, reason string) {
	if a.state.Retreating == on {
		return
	}
	a.state.Retreating = on
	who := "Attackers"
	if a.defending {
		who = "Defenders"
	}
	a.events.Notice(who + " " + reason)
	a.logger.Info("morale changed",
		zap.Int("side", int(a.side)),
		zap.Bool("retreating", on),
		zap.Int("consumed", a.state.Consumed))
}
