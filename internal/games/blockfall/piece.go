package blockfall

import "github.com/vovakirdan/blockfall/internal/core"

// Piece is the active falling piece: a shape, an anchor on the grid, a
// rotation state, a mask of cells already removed by a line clear and the
// rows each remaining cell has been dropped by clears beneath it.
type Piece struct {
	ShapeIndex int
	Anchor     core.Point
	Rotation   int // quarter turns, 0-3
	Color      core.Color
	Moving     bool

	shape   Shape
	removed [MaxShapeCells]bool
	dropped [MaxShapeCells]int
}

// NewPiece creates a moving piece of the given shape at anchor.
func NewPiece(shapeIndex int, shape Shape, anchor core.Point, color core.Color) *Piece {
	return &Piece{
		ShapeIndex: shapeIndex,
		Anchor:     anchor,
		Color:      color,
		Moving:     true,
		shape:      shape,
	}
}

// Shape returns the piece's shape.
func (p *Piece) Shape() Shape {
	return p.shape
}

// Offsets returns the rotated offsets of the remaining cells, relative to
// the anchor.
func (p *Piece) Offsets() []core.Point {
	return p.offsetsAt(p.Rotation)
}

func (p *Piece) offsetsAt(rotation int) []core.Point {
	out := make([]core.Point, 0, len(p.shape.Offsets))
	for i, off := range p.shape.Offsets {
		if p.removed[i] {
			continue
		}
		r := rotateOffsetN(off, rotation)
		r.Y -= p.dropped[i]
		out = append(out, r)
	}
	return out
}

// Cells returns the absolute grid cells of the piece.
func (p *Piece) Cells() []core.Point {
	return p.cellsAt(p.Anchor, p.Rotation)
}

// cellsAt returns the cells the piece would occupy at anchor and rotation.
func (p *Piece) cellsAt(anchor core.Point, rotation int) []core.Point {
	offs := p.offsetsAt(rotation)
	for i := range offs {
		offs[i] = offs[i].Add(anchor)
	}
	return offs
}

// Remaining returns the number of cells not yet removed.
func (p *Piece) Remaining() int {
	n := 0
	for i := range p.shape.Offsets {
		if !p.removed[i] {
			n++
		}
	}
	return n
}

// Empty reports whether every cell of the piece has been removed.
func (p *Piece) Empty() bool {
	return p.Remaining() == 0
}

// RemoveRow follows a grid row clear: cells on row y are removed and cells
// above it drop one row, as the locked cells around them do. It returns how
// many cells were removed.
func (p *Piece) RemoveRow(y int) int {
	n := 0
	for i, off := range p.shape.Offsets {
		if p.removed[i] {
			continue
		}
		cy := rotateOffsetN(off, p.Rotation).Y - p.dropped[i] + p.Anchor.Y
		switch {
		case cy == y:
			p.removed[i] = true
			n++
		case cy > y:
			p.dropped[i]++
		}
	}
	return n
}
