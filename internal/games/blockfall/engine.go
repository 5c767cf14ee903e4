package blockfall

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/core"
)

// Phase is the engine's top-level state.
type Phase int

const (
	PhasePlaying Phase = iota
	PhasePaused
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// DefaultScorePerRow is the score awarded for each cleared row.
const DefaultScorePerRow = 100

// Rules fixes the board and the rule variants for one engine.
type Rules struct {
	Width       int
	Height      int
	ScorePerRow int

	// ValidateRotation rejects rotations that would leave the board or
	// overlap locked cells. When false, rotation is applied unconditionally.
	ValidateRotation bool

	// Strict turns invariant violations into panics instead of warnings.
	Strict bool

	// Catalog overrides the shape catalog. Nil means Shapes.
	Catalog []Shape

	// Colors overrides the piece palette. Nil means core.BlockColors.
	Colors []core.Color
}

// DefaultRules returns the standard 10x20 rules with validated rotation.
func DefaultRules() Rules {
	return Rules{
		Width:            10,
		Height:           20,
		ScorePerRow:      DefaultScorePerRow,
		ValidateRotation: true,
	}
}

// SpawnOrigin returns the fixed anchor for new pieces: top-center, low
// enough that every catalog shape fits under the top row.
func (r Rules) SpawnOrigin() core.Point {
	return core.Point{X: 0, Y: r.Height/2 - 2}
}

// Engine is the simulation context: it owns the grid, the falling piece,
// the score and the phase, and applies commands to them.
type Engine struct {
	rules   Rules
	catalog []Shape
	colors  []core.Color
	spawn   core.Point

	grid  *Grid
	piece *Piece
	phase Phase

	score        int
	rowsCleared  int
	piecesLocked int

	rng        *rand.Rand
	logger     *log.Logger
	onGameOver func(finalScore int)
}

// NewEngine creates an engine with an empty grid and no falling piece.
// Call Spawn to start play. A nil logger uses the default logger.
func NewEngine(rules Rules, rng *rand.Rand, logger *log.Logger) *Engine {
	if rules.ScorePerRow <= 0 {
		rules.ScorePerRow = DefaultScorePerRow
	}
	catalog := rules.Catalog
	if len(catalog) == 0 {
		catalog = Shapes
	}
	for _, s := range catalog {
		if s.Len() == 0 || s.Len() > MaxShapeCells {
			panic(fmt.Sprintf("blockfall: shape %q has %d cells, want 1-%d", s.Name, s.Len(), MaxShapeCells))
		}
	}
	colors := rules.Colors
	if len(colors) == 0 {
		colors = core.BlockColors
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if logger == nil {
		logger = log.Default().WithPrefix("blockfall")
	}

	return &Engine{
		rules:   rules,
		catalog: catalog,
		colors:  colors,
		spawn:   rules.SpawnOrigin(),
		grid:    NewGrid(rules.Width, rules.Height),
		phase:   PhasePlaying,
		rng:     rng,
		logger:  logger,
	}
}

// OnGameOver registers fn to be called once, with the final score, when the
// game ends.
func (e *Engine) OnGameOver(fn func(finalScore int)) {
	e.onGameOver = fn
}

// Grid returns the playfield.
func (e *Engine) Grid() *Grid { return e.grid }

// Piece returns the falling piece, or nil between pieces.
func (e *Engine) Piece() *Piece { return e.piece }

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// RowsCleared returns the number of rows cleared so far.
func (e *Engine) RowsCleared() int { return e.rowsCleared }

// PiecesLocked returns the number of pieces locked into the grid so far.
func (e *Engine) PiecesLocked() int { return e.piecesLocked }

// SpawnPoint returns the anchor new pieces are created at.
func (e *Engine) SpawnPoint() core.Point { return e.spawn }

// Rules returns the rules the engine was created with.
func (e *Engine) Rules() Rules { return e.rules }

// Apply runs commands in order. Commands after a game over are dropped.
func (e *Engine) Apply(cmds []Command) {
	for _, cmd := range cmds {
		if e.phase == PhaseGameOver {
			return
		}
		switch cmd.Kind {
		case CmdPauseToggle:
			e.TogglePause()
		case CmdTickDown:
			e.TickDown()
		case CmdMoveSides:
			e.MoveSides(cmd.Dir)
		case CmdRotate:
			e.Rotate()
		}
	}
}

// TogglePause switches between playing and paused. It has no effect after
// game over.
func (e *Engine) TogglePause() {
	switch e.phase {
	case PhasePlaying:
		e.phase = PhasePaused
	case PhasePaused:
		e.phase = PhasePlaying
	}
}

// Spawn creates a new falling piece with a random shape and color at the
// spawn origin. It returns false and ends the game if the spawn cells are
// already locked.
func (e *Engine) Spawn() bool {
	idx := e.rng.Intn(len(e.catalog))
	color := e.colors[e.rng.Intn(len(e.colors))]
	return e.SpawnShape(idx, color)
}

// SpawnShape creates a falling piece of a specific catalog shape.
func (e *Engine) SpawnShape(index int, color core.Color) bool {
	if e.phase == PhaseGameOver {
		return false
	}
	if index < 0 || index >= len(e.catalog) {
		e.violation("spawn of unknown shape %d", index)
		return false
	}

	piece := NewPiece(index, e.catalog[index], e.spawn, color)
	for _, c := range piece.Cells() {
		if e.grid.Occupied(c) {
			e.logger.Debug("spawn blocked", "shape", piece.shape.Name, "cell", c)
			e.piece = nil
			e.gameOver()
			return false
		}
	}

	e.piece = piece
	e.logger.Debug("spawned piece", "shape", piece.shape.Name, "anchor", piece.Anchor)
	return true
}

// TickDown applies one step of gravity. It returns true if the piece moved.
// A piece that cannot move stops: it either ends the game (if it stopped at
// the spawn origin) or locks into the grid, after which complete rows are
// cleared and the next piece spawns, all before TickDown returns.
func (e *Engine) TickDown() bool {
	if e.phase != PhasePlaying {
		return false
	}

	if e.piece != nil && e.piece.Empty() {
		e.logger.Debug("despawned empty piece")
		e.piece = nil
	}

	moved := false
	if e.piece != nil {
		moved = e.fall()
		if !moved {
			e.piece.Moving = false
			e.settle()
		}
	}

	e.ClearCompleteRows()

	if e.piece == nil && e.phase == PhasePlaying {
		e.Spawn()
	}
	return moved
}

// fall moves the piece down one row if nothing is below it. Floor contact
// is checked for every cell before any locked cell is checked.
func (e *Engine) fall() bool {
	cells := e.piece.Cells()
	for _, c := range cells {
		if c.Y-1 < e.grid.MinY() {
			return false
		}
	}
	for _, c := range cells {
		if e.grid.Occupied(core.Point{X: c.X, Y: c.Y - 1}) {
			return false
		}
	}
	e.piece.Anchor.Y--
	return true
}

// settle resolves a piece that has stopped moving.
func (e *Engine) settle() {
	if e.piece.Anchor == e.spawn {
		e.logger.Debug("piece stopped at spawn origin")
		e.gameOver()
		return
	}

	for _, c := range e.piece.Cells() {
		if !e.grid.Lock(c, e.piece.Color) {
			e.violation("cannot lock cell %v", c)
		}
	}
	e.piecesLocked++
	e.logger.Debug("locked piece", "shape", e.piece.shape.Name, "anchor", e.piece.Anchor)
	e.piece = nil
}

// MoveSides shifts the falling piece one column in dir (-1 left, +1 right).
// The move is all-or-nothing: any cell hitting a wall or a locked cell
// rejects it. A zero dir is a no-op.
func (e *Engine) MoveSides(dir int) bool {
	if e.phase != PhasePlaying || dir == 0 || e.piece == nil || !e.piece.Moving {
		return false
	}
	if e.piece.Empty() {
		e.violation("move of an empty piece")
		return false
	}
	if dir > 0 {
		dir = 1
	} else {
		dir = -1
	}

	anchor := core.Point{X: e.piece.Anchor.X + dir, Y: e.piece.Anchor.Y}
	for _, c := range e.piece.cellsAt(anchor, e.piece.Rotation) {
		if !e.grid.InsideX(c.X) || e.grid.Occupied(c) {
			return false
		}
	}
	e.piece.Anchor = anchor
	return true
}

// Rotate turns the falling piece a quarter turn, (x, y) -> (y, -x) about its
// anchor. With rotation validation enabled, a rotation that would leave the
// board or overlap a locked cell is rejected; there are no wall kicks.
func (e *Engine) Rotate() bool {
	if e.phase != PhasePlaying || e.piece == nil || !e.piece.Moving {
		return false
	}
	if e.piece.Empty() {
		e.violation("rotation of an empty piece")
		return false
	}

	next := (e.piece.Rotation + 1) % 4
	if e.rules.ValidateRotation {
		for _, c := range e.piece.cellsAt(e.piece.Anchor, next) {
			if !e.grid.InsideX(c.X) || c.Y < e.grid.MinY() || e.grid.Occupied(c) {
				return false
			}
		}
	}
	e.piece.Rotation = next
	return true
}

// ClearCompleteRows clears every row whose locked cell count equals the
// board width, lowest first, rescanning after each clear until no row is
// complete. Cells of the falling piece never count. It returns the number of
// rows cleared.
func (e *Engine) ClearCompleteRows() int {
	cleared := 0
	for {
		y, ok := e.lowestCompleteRow()
		if !ok {
			return cleared
		}
		e.ClearRow(y)
		e.score += e.rules.ScorePerRow
		e.rowsCleared++
		cleared++
		e.logger.Debug("cleared row", "y", y, "score", e.score)
	}
}

func (e *Engine) lowestCompleteRow() (int, bool) {
	for y := e.grid.MinY(); y < e.grid.MaxY(); y++ {
		if e.grid.RowFull(y) {
			return y, true
		}
	}
	return 0, false
}

// ClearRow removes row y from the grid, compacting the rows above it. The
// falling piece loses its cells on that row and its cells above drop with
// the compacted rows, so it never overlaps a locked cell. A falling piece
// left with no cells is discarded.
func (e *Engine) ClearRow(y int) {
	e.grid.ClearRow(y)
	if e.piece == nil {
		return
	}
	if e.piece.RemoveRow(y) > 0 && e.piece.Empty() {
		e.logger.Debug("line clear emptied falling piece")
		e.piece = nil
	}
}

func (e *Engine) gameOver() {
	if e.phase == PhaseGameOver {
		return
	}
	e.phase = PhaseGameOver
	e.logger.Debug("game over", "score", e.score)
	if e.onGameOver != nil {
		e.onGameOver(e.score)
	}
}

func (e *Engine) violation(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if e.rules.Strict {
		panic("blockfall: invariant violation: " + msg)
	}
	e.logger.Warn("invariant violation", "detail", msg)
}
