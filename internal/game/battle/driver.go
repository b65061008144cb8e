package battle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// Stepper advances one side's combatants one unit of work at a time.
// *ai.TacticalAI satisfies it.
type Stepper interface {
	AdvanceOneStep() bool
	Side() unit.Side
}

// EndReason explains why Run stopped.
type EndReason string

const (
	EndVictory    EndReason = "victory"
	EndMaxTurns   EndReason = "max_turns"
	EndAnnihilate EndReason = "annihilation"
	EndCanceled   EndReason = "canceled"
)

// Result summarizes a finished battle.
type Result struct {
	Reason EndReason
	// Winner is meaningful only when Reason is EndVictory.
	Winner unit.Side
	Turns  int
	Steps  int
}

// DriverOptions bounds a run. Zero values mean 200 turns, 500 steps per side
// per turn and no delay.
type DriverOptions struct {
	MaxTurns        int
	MaxStepsPerTurn int
	// StepDelay pauses between steps, for watching a battle unfold.
	StepDelay time.Duration
	Logger    *zap.Logger
}

// Driver runs the turn loop of a Battle.
type Driver struct {
	battle   *Battle
	sides    []Stepper
	maxTurns int
	maxSteps int
	delay    time.Duration
	logger   *zap.Logger
}

// NewDriver constructs a Driver. Sides act in the given order every turn.
//
// Precondition: b must not be nil and sides must be non-empty.
func NewDriver(b *Battle, sides []Stepper, opts DriverOptions) *Driver {
	if b == nil {
		panic("battle.NewDriver: battle must not be nil")
	}
	if len(sides) == 0 {
		panic("battle.NewDriver: at least one side is required")
	}
	d := &Driver{
		battle:   b,
		sides:    sides,
		maxTurns: opts.MaxTurns,
		maxSteps: opts.MaxStepsPerTurn,
		delay:    opts.StepDelay,
		logger:   opts.Logger,
	}
	if d.maxTurns <= 0 {
		d.maxTurns = 200
	}
	if d.maxSteps <= 0 {
		d.maxSteps = 500
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// Run plays turns until one side remains, no side remains, the turn limit
// is reached, or ctx is cancelled.
//
// Postcondition: the returned error is non-nil only for cancellation and wraps ctx.Err().
func (d *Driver) Run(ctx context.Context) (Result, error) {
	res := Result{}
	for d.battle.CurrentTurn() <= d.maxTurns {
		for _, s := range d.sides {
			d.battle.ResetMovement(s.Side())
			steps, err := d.drive(ctx, s)
			res.Steps += steps
			if err != nil {
				res.Reason = EndCanceled
				res.Turns = d.battle.CurrentTurn()
				return res, fmt.Errorf("battle.Driver.Run: turn %d: %w", res.Turns, err)
			}
			if r, done := d.decided(); done {
				res.Reason, res.Winner = r.Reason, r.Winner
				res.Turns = d.battle.CurrentTurn()
				d.logger.Info("battle over",
					zap.String("reason", string(res.Reason)),
					zap.Int("winner", int(res.Winner)),
					zap.Int("turns", res.Turns),
				)
				return res, nil
			}
		}
		d.battle.AdvanceTurn()
	}
	res.Reason = EndMaxTurns
	res.Turns = d.maxTurns
	d.logger.Info("battle over", zap.String("reason", string(res.Reason)), zap.Int("turns", res.Turns))
	return res, nil
}

// drive steps s until it reports no work or the per-turn bound is hit.
func (d *Driver) drive(ctx context.Context, s Stepper) (int, error) {
	steps := 0
	for s.AdvanceOneStep() {
		steps++
		if steps >= d.maxSteps {
			d.logger.Warn("step bound reached; ending side's turn",
				zap.Int("side", int(s.Side())),
				zap.Int("turn", d.battle.CurrentTurn()),
			)
			for _, u := range d.battle.Standing(s.Side()) {
				u.ClearMovement()
			}
			break
		}
		if err := d.pause(ctx); err != nil {
			return steps, err
		}
	}
	return steps, ctx.Err()
}

func (d *Driver) pause(ctx context.Context) error {
	if d.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.delay):
		return nil
	}
}

func (d *Driver) decided() (Result, bool) {
	if side, ok := d.battle.Winner(); ok {
		return Result{Reason: EndVictory, Winner: side}, true
	}
	for _, s := range d.sides {
		if len(d.battle.Standing(s.Side())) > 0 {
			return Result{}, false
		}
	}
	return Result{Reason: EndAnnihilate}, true
}
