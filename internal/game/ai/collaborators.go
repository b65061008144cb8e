package ai

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/spell"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// ClosestApproach is passed as a minimum distance to ask the Pathfinder for a
// path that ends as near the goal as the mover can get.
const ClosestApproach = -1

// Pathfinder finds walkable waypoint sequences. The returned path excludes
// the starting tile; an empty or nil path means no route.
type Pathfinder interface {
	// FindPath plots a route from from that ends within minDistance moves of to,
	// exploring no further than maxDistance movement cost.
	FindPath(from, to grid.Pos, minDistance int, mover *unit.Combatant, maxDistance int) []grid.Pos
	// FindPathTowardRow plots a route to any tile on row.
	FindPathTowardRow(from grid.Pos, flying bool, row int, mover *unit.Combatant) []grid.Pos
}

// CombatModel estimates interaction outcomes. Chances are in [0,1].
type CombatModel interface {
	AttackChance(attacker, target *unit.Combatant, ranged bool) float64
	CaptureChance(capturer, target *unit.Combatant) float64
	MagicChance(caster, target *unit.Combatant, sp *spell.Spell) float64
	// WeaponDamage estimates the damage one hit deals to target.
	WeaponDamage(attacker, target *unit.Combatant, ranged bool) int
	// ArmyPower aggregates the fighting strength of units.
	ArmyPower(units []*unit.Combatant) float64
}

// Caster is the spell subsystem's cast operation.
type Caster interface {
	TryCast(caster *unit.Combatant, sp *spell.Spell, target *unit.Combatant) bool
	TryCastAt(caster *unit.Combatant, sp *spell.Spell, at grid.Pos) bool
}

// World answers board and roster queries. The AI never mutates through it.
type World interface {
	// CurrentTurn is the authoritative turn counter.
	CurrentTurn() int
	// Units returns every combatant in a fixed, stable order.
	Units() []*unit.Combatant
	Board() *grid.Board
	// OpenTile reports whether mover could stand on p; a nil mover asks about any unit.
	OpenTile(p grid.Pos, mover *unit.Combatant) bool
	// TileShared reports whether more than one unit stands on p.
	TileShared(p grid.Pos) bool
	// FreeSpaceAround reports whether an open tile for mover exists next to p.
	FreeSpaceAround(p grid.Pos, mover *unit.Combatant) bool
	UnitsWithin(p grid.Pos, radius int) []*unit.Combatant
	// ResurrectTarget returns a fallen ally caster could raise, or nil.
	ResurrectTarget(caster *unit.Combatant) *unit.Combatant
	// OnlyOneSideVisible reports an information asymmetry between the sides.
	OnlyOneSideVisible() bool
}

// Actions are the mutating operations the AI invokes on its combatants.
type Actions interface {
	// MoveTo steps c onto an adjacent tile, paying its movement cost.
	MoveTo(c *unit.Combatant, p grid.Pos) bool
	// Step moves c one tile in direction d.
	Step(c *unit.Combatant, d grid.Direction) bool
	Attack(c, target *unit.Combatant, ranged bool)
	// Capture attempts to take target into c's capacity; true on success.
	Capture(c, target *unit.Combatant) bool
	// CaptureLeap leaps at target and attempts a capture; true on success.
	CaptureLeap(c, target *unit.Combatant) bool
	MeleeLeap(c, target *unit.Combatant)
	// CanFinish reports whether c's finishing strike is available right now.
	CanFinish(c *unit.Combatant) bool
	Finish(c, target *unit.Combatant)
	// AttemptRetreat removes c from the battle through its retreat edge.
	AttemptRetreat(c *unit.Combatant)
	ClearMovement(c *unit.Combatant)
}

// EventLog receives human-readable battle notices.
type EventLog interface {
	Notice(msg string)
}

// ScriptCaller evaluates behavior preconditions.
type ScriptCaller interface {
	// CallHook calls a named Lua function in scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

type nopEvents struct{}

func (nopEvents) Notice(string) {}
