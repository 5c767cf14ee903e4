package blockfall

import "github.com/vovakirdan/blockfall/internal/core"

// CellSnapshot is one colored cell in grid coordinates.
type CellSnapshot struct {
	Pos   core.Point
	Color core.Color
}

// Snapshot captures the complete game state for rendering and determinism
// testing.
type Snapshot struct {
	Tick         uint64
	Width        int
	Height       int
	Locked       []CellSnapshot // bottom row first, left to right
	Piece        []CellSnapshot // empty between pieces
	PieceShape   string
	Score        int
	RowsCleared  int
	PiecesLocked int
	Phase        Phase
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	if g.engine == nil {
		return Snapshot{}
	}
	s := g.engine.Snapshot()
	s.Tick = g.tick
	return s
}

// Snapshot returns the engine's state without a tick count.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Width:        e.grid.Width(),
		Height:       e.grid.Height(),
		Score:        e.score,
		RowsCleared:  e.rowsCleared,
		PiecesLocked: e.piecesLocked,
		Phase:        e.phase,
	}
	e.grid.Each(func(p core.Point, c core.Color) {
		s.Locked = append(s.Locked, CellSnapshot{Pos: p, Color: c})
	})
	if e.piece != nil {
		s.PieceShape = e.piece.shape.Name
		for _, p := range e.piece.Cells() {
			s.Piece = append(s.Piece, CellSnapshot{Pos: p, Color: e.piece.Color})
		}
	}
	return s
}
