package grid

import (
	"errors"
	"fmt"
)

// TileType classifies a board tile.
type TileType int

const (
	TileGrass TileType = iota
	TileForest
	TileWater
	TileWall
)

// String returns the tile's name.
func (t TileType) String() string {
	switch t {
	case TileGrass:
		return "grass"
	case TileForest:
		return "forest"
	case TileWater:
		return "water"
	case TileWall:
		return "wall"
	default:
		return "unknown"
	}
}

// Impassable is the cost reported for tiles a walker can never enter.
const Impassable = -1

// Cost returns the movement points needed to enter a tile of this type.
// Flying movers treat water as grass. Walls are impassable to everyone.
//
// Postcondition: returns Impassable or a value >= 1.
func (t TileType) Cost(flying bool) int {
	switch t {
	case TileGrass:
		return 1
	case TileForest:
		if flying {
			return 1
		}
		return 2
	case TileWater:
		if flying {
			return 1
		}
		return Impassable
	default:
		return Impassable
	}
}

// Board is a fixed-size grid of tile classifications indexed [x][y].
//
// Invariant: every column has exactly Height entries.
type Board struct {
	tiles  [][]TileType
	width  int
	height int
}

// NewBoard creates a width x height board of grass.
//
// Precondition: width > 0 and height > 0.
func NewBoard(width, height int) *Board {
	if width <= 0 || height <= 0 {
		panic("grid.NewBoard: width and height must be positive")
	}
	tiles := make([][]TileType, width)
	for x := range tiles {
		tiles[x] = make([]TileType, height)
	}
	return &Board{tiles: tiles, width: width, height: height}
}

// ParseBoard builds a board from text rows. Row 0 of the input is the top
// of the board (highest y). Glyphs: '.' grass, 'f' forest, '~' water, '#' wall.
//
// Postcondition: returns an error if rows are empty, ragged, or contain unknown glyphs.
func ParseBoard(rows []string) (*Board, error) {
	if len(rows) == 0 {
		return nil, errors.New("grid.ParseBoard: no rows")
	}
	width := len(rows[0])
	if width == 0 {
		return nil, errors.New("grid.ParseBoard: empty first row")
	}
	b := NewBoard(width, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("grid.ParseBoard: row %d has width %d, want %d", i, len(row), width)
		}
		y := len(rows) - 1 - i
		for x, r := range row {
			t, ok := glyphs[r]
			if !ok {
				return nil, fmt.Errorf("grid.ParseBoard: row %d col %d: unknown glyph %q", i, x, r)
			}
			b.tiles[x][y] = t
		}
	}
	return b, nil
}

var glyphs = map[rune]TileType{
	'.': TileGrass,
	'f': TileForest,
	'~': TileWater,
	'#': TileWall,
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// InBounds reports whether p lies on the board.
func (b *Board) InBounds(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.width && p.Y < b.height
}

// Tile returns the classification at p; off-board positions report TileWall.
func (b *Board) Tile(p Pos) TileType {
	if !b.InBounds(p) {
		return TileWall
	}
	return b.tiles[p.X][p.Y]
}

// Set changes the classification at p. Off-board positions are ignored.
func (b *Board) Set(p Pos, t TileType) {
	if b.InBounds(p) {
		b.tiles[p.X][p.Y] = t
	}
}

// Cost returns the movement cost of entering p for a mover.
//
// Postcondition: off-board tiles are Impassable.
func (b *Board) Cost(p Pos, flying bool) int {
	return b.Tile(p).Cost(flying)
}
