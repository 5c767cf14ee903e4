package blockfall

import "github.com/vovakirdan/blockfall/internal/core"

// MaxShapeCells is the largest number of cells a catalog shape may have.
const MaxShapeCells = 5

// Shape is an immutable set of cell offsets relative to a piece's anchor.
// Offsets use +y up, matching grid coordinates.
type Shape struct {
	Name    string
	Offsets []core.Point
}

// Len returns the number of cells in the shape.
func (s Shape) Len() int {
	return len(s.Offsets)
}

// Shapes is the piece catalog. Every shape contains the origin offset, so a
// locked spawn origin always blocks a new piece.
var Shapes = []Shape{
	{Name: "hook", Offsets: []core.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}, {X: -1, Y: 1}}},
	{Name: "bar", Offsets: []core.Point{{X: 0, Y: 0}, {X: -1, Y: 0}, {X: 1, Y: 0}}},
	{Name: "tee", Offsets: []core.Point{{X: 0, Y: 0}, {X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: -1}}},
	{Name: "zig", Offsets: []core.Point{{X: 0, Y: 0}, {X: -1, Y: 0}, {X: -1, Y: 1}, {X: 0, Y: -1}}},
	{Name: "zag", Offsets: []core.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: -1}, {X: 0, Y: -1}}},
}

// ShapeCount returns the number of shapes in the catalog.
func ShapeCount() int {
	return len(Shapes)
}

// GetShape returns the shape at the given catalog index, or nil.
func GetShape(index int) *Shape {
	if index < 0 || index >= len(Shapes) {
		return nil
	}
	return &Shapes[index]
}

// rotateOffset applies a quarter turn: (x, y) -> (y, -x).
func rotateOffset(p core.Point) core.Point {
	return core.Point{X: p.Y, Y: -p.X}
}

// rotateOffsetN applies n quarter turns.
func rotateOffsetN(p core.Point, n int) core.Point {
	for range ((n % 4) + 4) % 4 {
		p = rotateOffset(p)
	}
	return p
}
