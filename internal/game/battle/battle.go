// Package battle is the reference tactical battle: it owns the roster, the
// board and the turn counter, and carries out the moves, attacks, captures
// and spells the tactical AI decides on.
package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Zeldazackman/VoreWar/internal/game/ai"
	"github.com/Zeldazackman/VoreWar/internal/game/combat"
	"github.com/Zeldazackman/VoreWar/internal/game/dice"
	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

var (
	_ ai.World   = (*Battle)(nil)
	_ ai.Actions = (*Battle)(nil)
	_ ai.Caster  = (*Battle)(nil)
)

// Options configures a Battle. Model defaults to combat.NewModel; Events and
// Logger default to no-ops.
type Options struct {
	Model  *combat.Model
	Rand   dice.Source
	Events ai.EventLog
	Logger *zap.Logger
	// RangedCaptureRange is the capture reach of TraitRangedCapture units; 0 means 4.
	RangedCaptureRange int
	// LeapRange is the distance a leap may cover; 0 means 4.
	LeapRange int
}

// Battle holds the live state of one tactical battle.
//
// Invariant: units keeps insertion order; byID indexes every member of units.
type Battle struct {
	board  *grid.Board
	units  []*unit.Combatant
	byID   map[string]*unit.Combatant
	turn   int
	model  *combat.Model
	rand   dice.Source
	events ai.EventLog
	logger *zap.Logger

	rangedCaptureRange int
	leapRange          int

	// captor maps a captured combatant's ID to its captor's ID.
	captor map[string]string
	// fled lists combatants that left through their retreat edge, in order.
	fled []*unit.Combatant
	// finished records the turn each combatant last used its finishing strike.
	finished map[string]int
	oneSided bool
}

// New constructs a Battle at turn 1.
//
// Precondition: board and opts.Rand must not be nil; unit IDs must be unique and non-empty.
// Postcondition: returns an error naming the first duplicate or empty ID.
func New(board *grid.Board, units []*unit.Combatant, opts Options) (*Battle, error) {
	if board == nil {
		panic("battle.New: board must not be nil")
	}
	if opts.Rand == nil {
		panic("battle.New: Rand must not be nil")
	}
	b := &Battle{
		board:              board,
		byID:               make(map[string]*unit.Combatant, len(units)),
		turn:               1,
		model:              opts.Model,
		rand:               opts.Rand,
		events:             opts.Events,
		logger:             opts.Logger,
		rangedCaptureRange: opts.RangedCaptureRange,
		leapRange:          opts.LeapRange,
		captor:             make(map[string]string),
		finished:           make(map[string]int),
	}
	if b.model == nil {
		b.model = combat.NewModel()
	}
	if b.events == nil {
		b.events = NewLog()
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.rangedCaptureRange <= 0 {
		b.rangedCaptureRange = 4
	}
	if b.leapRange <= 0 {
		b.leapRange = 4
	}
	for _, u := range units {
		if err := b.add(u); err != nil {
			return nil, fmt.Errorf("battle.New: %w", err)
		}
	}
	return b, nil
}

func (b *Battle) add(u *unit.Combatant) error {
	if u == nil || u.ID == "" {
		return fmt.Errorf("combatant must have an id")
	}
	if _, dup := b.byID[u.ID]; dup {
		return fmt.Errorf("duplicate combatant %q", u.ID)
	}
	b.units = append(b.units, u)
	b.byID[u.ID] = u
	return nil
}

// CurrentTurn returns the turn counter, starting at 1.
func (b *Battle) CurrentTurn() int { return b.turn }

// AdvanceTurn moves to the next turn and ticks status effects down.
//
// Postcondition: CurrentTurn is incremented; expired effects are removed.
func (b *Battle) AdvanceTurn() {
	b.turn++
	for _, u := range b.units {
		for name, left := range u.Effects {
			if left <= 1 {
				delete(u.Effects, name)
				continue
			}
			u.Effects[name] = left - 1
		}
	}
}

// Units returns every combatant in insertion order. The slice is a copy;
// the combatants are shared.
func (b *Battle) Units() []*unit.Combatant {
	out := make([]*unit.Combatant, len(b.units))
	copy(out, b.units)
	return out
}

// Unit returns the combatant with id.
func (b *Battle) Unit(id string) (*unit.Combatant, bool) {
	u, ok := b.byID[id]
	return u, ok
}

// Board returns the tactical board.
func (b *Battle) Board() *grid.Board { return b.board }

// Events returns the notice sink.
func (b *Battle) Events() ai.EventLog { return b.events }

// Fled returns the combatants that retreated, in the order they left.
func (b *Battle) Fled() []*unit.Combatant {
	out := make([]*unit.Combatant, len(b.fled))
	copy(out, b.fled)
	return out
}

// CaptorOf returns the ID of the combatant holding id.
func (b *Battle) CaptorOf(id string) (string, bool) {
	c, ok := b.captor[id]
	return c, ok
}

// SetOneSideVisible toggles the information asymmetry reported to the AI.
func (b *Battle) SetOneSideVisible(v bool) { b.oneSided = v }

// OnlyOneSideVisible reports whether only one side can see the other.
func (b *Battle) OnlyOneSideVisible() bool { return b.oneSided }

func (b *Battle) occupant(p grid.Pos, except *unit.Combatant) *unit.Combatant {
	for _, u := range b.units {
		if u != except && u.InPlay() && u.Pos == p {
			return u
		}
	}
	return nil
}

// OpenTile reports whether mover could stand on p: on the board, passable
// terrain for mover, and not held by any other combatant in play.
func (b *Battle) OpenTile(p grid.Pos, mover *unit.Combatant) bool {
	if !b.board.InBounds(p) {
		return false
	}
	flying := mover != nil && mover.Has(unit.TraitFlight)
	if b.board.Cost(p, flying) == grid.Impassable {
		return false
	}
	return b.occupant(p, mover) == nil
}

// TileShared reports whether more than one combatant in play stands on p.
func (b *Battle) TileShared(p grid.Pos) bool {
	n := 0
	for _, u := range b.units {
		if u.InPlay() && u.Pos == p {
			n++
		}
	}
	return n > 1
}

// FreeSpaceAround reports whether any neighbour of p is open for mover.
func (b *Battle) FreeSpaceAround(p grid.Pos, mover *unit.Combatant) bool {
	for _, n := range p.Neighbours() {
		if b.OpenTile(n, mover) {
			return true
		}
	}
	return false
}

// UnitsWithin returns the combatants in play within radius moves of p.
func (b *Battle) UnitsWithin(p grid.Pos, radius int) []*unit.Combatant {
	var out []*unit.Combatant
	for _, u := range b.units {
		if u.InPlay() && u.Pos.MovesTo(p) <= radius {
			out = append(out, u)
		}
	}
	return out
}

// ResurrectTarget returns the first fallen soldier of caster's side that was
// not captured, or nil.
func (b *Battle) ResurrectTarget(caster *unit.Combatant) *unit.Combatant {
	for _, u := range b.units {
		if u.Side != caster.Side || !u.Dead || u.Kind != unit.KindSoldier {
			continue
		}
		if _, held := b.captor[u.ID]; held {
			continue
		}
		return u
	}
	return nil
}

// Standing returns the combatants of side still in play.
func (b *Battle) Standing(side unit.Side) []*unit.Combatant {
	var out []*unit.Combatant
	for _, u := range b.units {
		if u.Side == side && u.InPlay() {
			out = append(out, u)
		}
	}
	return out
}

// Winner returns the only side with combatants in play. ok is false while
// two or more sides remain, or when none do.
func (b *Battle) Winner() (side unit.Side, ok bool) {
	seen := make(map[unit.Side]bool)
	for _, u := range b.units {
		if u.InPlay() {
			seen[u.Side] = true
			side = u.Side
		}
	}
	return side, len(seen) == 1
}

// ResetMovement restores movement for every combatant of side.
func (b *Battle) ResetMovement(side unit.Side) {
	for _, u := range b.units {
		if u.Side == side {
			u.ResetMovement()
		}
	}
}
