// Package grid provides tile positions, move distances, and the tactical board.
package grid

import "fmt"

// Pos is a tile coordinate on the tactical board.
type Pos struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// String returns "(x,y)".
func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Add returns p offset by d.
func (p Pos) Add(d Direction) Pos {
	off := offsets[d]
	return Pos{X: p.X + off.X, Y: p.Y + off.Y}
}

// MovesTo returns the number of single-tile moves between p and q when
// diagonal steps are allowed (Chebyshev distance).
//
// Postcondition: MovesTo(q) == q.MovesTo(p) and MovesTo(p) == 0.
func (p Pos) MovesTo(q Pos) int {
	dx := abs(p.X - q.X)
	dy := abs(p.Y - q.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Direction is one of the eight neighbouring tile directions, clockwise from north.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// DirectionCount is the number of neighbouring directions.
const DirectionCount = 8

var offsets = [DirectionCount]Pos{
	{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// Neighbours returns the eight tiles surrounding p in Direction order.
// Tiles may lie off the board; callers check with Board.InBounds.
func (p Pos) Neighbours() [DirectionCount]Pos {
	var out [DirectionCount]Pos
	for d := range DirectionCount {
		out[d] = p.Add(Direction(d))
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
