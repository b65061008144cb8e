// Package pathfind plots movement paths across the tactical board.
package pathfind

import (
	"container/heap"

	"github.com/Zeldazackman/VoreWar/internal/game/grid"
	"github.com/Zeldazackman/VoreWar/internal/game/unit"
)

// ClosestApproach as a minimum distance asks for the reachable tile nearest the goal.
const ClosestApproach = -1

// Occupancy reports whether mover may enter p. Bounds and terrain are
// checked separately against the board.
type Occupancy interface {
	OpenTile(p grid.Pos, mover *unit.Combatant) bool
}

// AStar searches the board with tile movement costs.
//
// Invariant: board and occ are non-nil.
type AStar struct {
	board *grid.Board
	occ   Occupancy
}

// New constructs an AStar.
//
// Precondition: board and occ must not be nil.
func New(board *grid.Board, occ Occupancy) *AStar {
	if board == nil {
		panic("pathfind.New: board must not be nil")
	}
	if occ == nil {
		panic("pathfind.New: occupancy must not be nil")
	}
	return &AStar{board: board, occ: occ}
}

type node struct {
	pos   grid.Pos
	cost  int
	score int
	index int
}

// frontier is a min-heap of nodes by score, then cost.
type frontier []*node

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].score != f[j].score {
		return f[i].score < f[j].score
	}
	return f[i].cost < f[j].cost
}
func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}
func (f *frontier) Push(x any) {
	n := x.(*node)
	n.index = len(*f)
	*f = append(*f, n)
}
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	x := old[n-1]
	*f = old[:n-1]
	return x
}

type search struct {
	goal      func(grid.Pos) bool
	heuristic func(grid.Pos) int
	// maxCost bounds the accumulated movement cost; negative means unbounded.
	maxCost int
	flying  bool
	mover   *unit.Combatant
}

// run expands nodes from start and returns the came-from map, the cost map,
// and the first goal tile reached.
func (a *AStar) run(start grid.Pos, s search) (map[grid.Pos]grid.Pos, map[grid.Pos]int, grid.Pos, bool) {
	from := map[grid.Pos]grid.Pos{}
	cost := map[grid.Pos]int{start: 0}
	open := &frontier{}
	heap.Push(open, &node{pos: start, score: s.heuristic(start)})
	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.cost > cost[cur.pos] {
			continue
		}
		if cur.pos != start && s.goal(cur.pos) {
			return from, cost, cur.pos, true
		}
		for _, next := range cur.pos.Neighbours() {
			step := a.board.Cost(next, s.flying)
			if step < 0 || !a.occ.OpenTile(next, s.mover) {
				continue
			}
			c := cur.cost + step
			if s.maxCost >= 0 && c > s.maxCost {
				continue
			}
			if old, seen := cost[next]; seen && old <= c {
				continue
			}
			cost[next] = c
			from[next] = cur.pos
			heap.Push(open, &node{pos: next, cost: c, score: c + s.heuristic(next)})
		}
	}
	return from, cost, grid.Pos{}, false
}

func rebuild(from map[grid.Pos]grid.Pos, start, end grid.Pos) []grid.Pos {
	var rev []grid.Pos
	for p := end; p != start; p = from[p] {
		rev = append(rev, p)
	}
	path := make([]grid.Pos, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// FindPath returns the waypoints from from to a tile within minDistance
// moves of to, excluding from itself. maxDistance bounds the total movement
// cost. With ClosestApproach the path ends on the reachable tile nearest to.
//
// Postcondition: returns nil when no such path exists or from already qualifies.
func (a *AStar) FindPath(from, to grid.Pos, minDistance int, mover *unit.Combatant, maxDistance int) []grid.Pos {
	flying := mover != nil && mover.Has(unit.TraitFlight)
	if minDistance == ClosestApproach {
		return a.closest(from, to, mover, flying, maxDistance)
	}
	if from.MovesTo(to) <= minDistance {
		return nil
	}
	came, _, end, ok := a.run(from, search{
		goal: func(p grid.Pos) bool { return p.MovesTo(to) <= minDistance },
		heuristic: func(p grid.Pos) int {
			if h := p.MovesTo(to) - minDistance; h > 0 {
				return h
			}
			return 0
		},
		maxCost: maxDistance,
		flying:  flying,
		mover:   mover,
	})
	if !ok {
		return nil
	}
	return rebuild(came, from, end)
}

// closest explores every tile within maxDistance and picks the one nearest
// to, preferring cheaper tiles on ties.
func (a *AStar) closest(from, to grid.Pos, mover *unit.Combatant, flying bool, maxDistance int) []grid.Pos {
	came, cost, _, _ := a.run(from, search{
		goal:      func(grid.Pos) bool { return false },
		heuristic: func(grid.Pos) int { return 0 },
		maxCost:   maxDistance,
		flying:    flying,
		mover:     mover,
	})
	var best grid.Pos
	found := false
	for p, c := range cost {
		if p == from {
			continue
		}
		if !found || nearer(p, c, best, cost[best], to) {
			best, found = p, true
		}
	}
	if !found || best.MovesTo(to) >= from.MovesTo(to) {
		return nil
	}
	return rebuild(came, from, best)
}

// nearer orders candidate end tiles by distance to goal, then cost, then position.
func nearer(p grid.Pos, pc int, q grid.Pos, qc int, goal grid.Pos) bool {
	if dp, dq := p.MovesTo(goal), q.MovesTo(goal); dp != dq {
		return dp < dq
	}
	if pc != qc {
		return pc < qc
	}
	return less(p, q)
}

// less orders positions for deterministic tie breaks.
func less(p, q grid.Pos) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// FindPathTowardRow returns the waypoints to the nearest reachable tile on row.
func (a *AStar) FindPathTowardRow(from grid.Pos, flying bool, row int, mover *unit.Combatant) []grid.Pos {
	if from.Y == row {
		return nil
	}
	came, _, end, ok := a.run(from, search{
		goal: func(p grid.Pos) bool { return p.Y == row },
		heuristic: func(p grid.Pos) int {
			if p.Y > row {
				return p.Y - row
			}
			return row - p.Y
		},
		maxCost: -1,
		flying:  flying,
		mover:   mover,
	})
	if !ok {
		return nil
	}
	return rebuild(came, from, end)
}
