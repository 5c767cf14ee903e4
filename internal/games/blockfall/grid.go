package blockfall

import "github.com/vovakirdan/blockfall/internal/core"

// GridCell is a single playfield cell. The zero value is empty.
type GridCell struct {
	Locked bool
	Color  core.Color
}

// Grid is the fixed-size occupancy map of locked cells.
//
// Coordinates are center-origin with +y up: x in [-W/2, W/2), y in [-H/2, H/2).
// The ceiling is not a wall; only game-over logic bounds the top.
type Grid struct {
	width  int
	height int
	cells  [][]GridCell // indexed [row][col], row 0 is the floor
}

// NewGrid creates an empty grid of the given size in cells.
func NewGrid(width, height int) *Grid {
	g := &Grid{width: width, height: height}
	g.cells = make([][]GridCell, height)
	for r := range g.cells {
		g.cells[r] = make([]GridCell, width)
	}
	return g
}

// Width returns the board width in cells.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the board height in cells.
func (g *Grid) Height() int {
	return g.height
}

// MinX returns the leftmost column coordinate.
func (g *Grid) MinX() int { return -g.width / 2 }

// MaxX returns one past the rightmost column coordinate.
func (g *Grid) MaxX() int { return g.width / 2 }

// MinY returns the floor row coordinate.
func (g *Grid) MinY() int { return -g.height / 2 }

// MaxY returns one past the top row coordinate.
func (g *Grid) MaxY() int { return g.height / 2 }

// InsideX reports whether x lies between the side walls.
func (g *Grid) InsideX(x int) bool {
	return x >= g.MinX() && x < g.MaxX()
}

// Inside reports whether p lies within the walls, floor and top row.
func (g *Grid) Inside(p core.Point) bool {
	return g.InsideX(p.X) && p.Y >= g.MinY() && p.Y < g.MaxY()
}

func (g *Grid) index(p core.Point) (row, col int) {
	return p.Y - g.MinY(), p.X - g.MinX()
}

// Occupied reports whether p holds a locked cell. Points outside the board
// are never occupied.
func (g *Grid) Occupied(p core.Point) bool {
	return g.At(p).Locked
}

// At returns the cell at p, or an empty cell outside the board.
func (g *Grid) At(p core.Point) GridCell {
	if !g.Inside(p) {
		return GridCell{}
	}
	row, col := g.index(p)
	return g.cells[row][col]
}

// Lock marks p as locked with the given color. It returns false and leaves
// the grid untouched if p is outside the board or already locked.
func (g *Grid) Lock(p core.Point, c core.Color) bool {
	if !g.Inside(p) {
		return false
	}
	row, col := g.index(p)
	if g.cells[row][col].Locked {
		return false
	}
	g.cells[row][col] = GridCell{Locked: true, Color: c}
	return true
}

// RowCount returns the number of locked cells on row y.
func (g *Grid) RowCount(y int) int {
	if y < g.MinY() || y >= g.MaxY() {
		return 0
	}
	n := 0
	for _, c := range g.cells[y-g.MinY()] {
		if c.Locked {
			n++
		}
	}
	return n
}

// RowFull reports whether every column of row y is locked.
func (g *Grid) RowFull(y int) bool {
	return g.RowCount(y) == g.width
}

// ClearRow empties row y and shifts every row above it down by one.
// The top row becomes empty. Out-of-range rows are ignored.
func (g *Grid) ClearRow(y int) {
	if y < g.MinY() || y >= g.MaxY() {
		return
	}
	row := y - g.MinY()
	cleared := g.cells[row]
	copy(g.cells[row:], g.cells[row+1:])
	for i := range cleared {
		cleared[i] = GridCell{}
	}
	g.cells[g.height-1] = cleared
}

// LockedCount returns the total number of locked cells.
func (g *Grid) LockedCount() int {
	n := 0
	for y := g.MinY(); y < g.MaxY(); y++ {
		n += g.RowCount(y)
	}
	return n
}

// Each calls fn for every locked cell, bottom row first.
func (g *Grid) Each(fn func(p core.Point, c core.Color)) {
	for r, row := range g.cells {
		for c, cell := range row {
			if cell.Locked {
				fn(core.Point{X: c + g.MinX(), Y: r + g.MinY()}, cell.Color)
			}
		}
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	clone := NewGrid(g.width, g.height)
	for r := range g.cells {
		copy(clone.cells[r], g.cells[r])
	}
	return clone
}
