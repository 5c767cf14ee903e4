package blockfall

import (
	"io"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/core"
)

const (
	shapeHook = iota
	shapeBar
	shapeTee
	shapeZig
	shapeZag
)

var dotShape = Shape{Name: "dot", Offsets: []core.Point{{X: 0, Y: 0}}}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestEngine(t *testing.T, rules Rules) *Engine {
	t.Helper()
	return NewEngine(rules, rand.New(rand.NewSource(42)), quietLogger())
}

func lowestY(cells []core.Point) int {
	y := cells[0].Y
	for _, c := range cells[1:] {
		y = min(y, c.Y)
	}
	return y
}

func TestSpawnOrigin(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	if got := e.SpawnPoint(); got != core.Pt(0, 8) {
		t.Errorf("Expected spawn at (0,8), got %v", got)
	}
	for i := range Shapes {
		e := newTestEngine(t, DefaultRules())
		e.SpawnShape(i, core.ColorRed)
		for _, c := range e.Piece().Cells() {
			if !e.Grid().Inside(c) {
				t.Errorf("Shape %s spawns outside the board at %v", Shapes[i].Name, c)
			}
		}
	}
}

func TestTickDownStopsAtFloor(t *testing.T) {
	for i, shape := range Shapes {
		t.Run(shape.Name, func(t *testing.T) {
			e := newTestEngine(t, DefaultRules())
			if !e.SpawnShape(i, core.ColorRed) {
				t.Fatal("Spawn on an empty board should succeed")
			}
			piece := e.Piece()

			var last []core.Point
			for range 100 {
				last = piece.Cells()
				if !e.TickDown() {
					break
				}
			}

			if got := lowestY(last); got != -10 {
				t.Errorf("Piece stopped with lowest cell at y=%d, want -10", got)
			}
			for _, c := range last {
				if !e.Grid().Occupied(c) {
					t.Errorf("Cell %v should be locked where the piece stopped", c)
				}
			}
			if piece.Moving {
				t.Error("Stopped piece should no longer be moving")
			}
			if e.PiecesLocked() != 1 {
				t.Errorf("Expected 1 locked piece, got %d", e.PiecesLocked())
			}
			if e.Piece() == nil || e.Piece() == piece {
				t.Error("A new piece should spawn after locking")
			}
		})
	}
}

func TestBarFallsEighteenRows(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	e.SpawnShape(shapeBar, core.ColorRed)

	moves := 0
	for e.TickDown() {
		moves++
	}
	if moves != 18 {
		t.Errorf("Expected 18 moves from y=8 to y=-10, got %d", moves)
	}
	for x := -1; x <= 1; x++ {
		if !e.Grid().Occupied(core.Pt(x, -10)) {
			t.Errorf("Expected locked cell at (%d,-10)", x)
		}
	}
}

func TestDropIntoGapClearsOneRow(t *testing.T) {
	rules := DefaultRules()
	rules.Catalog = []Shape{dotShape}
	e := newTestEngine(t, rules)

	fillRow(e.Grid(), -10, 0)
	e.Grid().Lock(core.Pt(3, -9), core.ColorBlue)
	e.SpawnShape(0, core.ColorRed)

	for range 100 {
		if e.PiecesLocked() > 0 {
			break
		}
		e.TickDown()
	}

	if e.PiecesLocked() != 1 {
		t.Fatalf("Dot should have locked, locked=%d", e.PiecesLocked())
	}
	if e.Score() != DefaultScorePerRow {
		t.Errorf("Expected score %d, got %d", DefaultScorePerRow, e.Score())
	}
	if e.RowsCleared() != 1 {
		t.Errorf("Expected 1 row cleared, got %d", e.RowsCleared())
	}
	if !e.Grid().Occupied(core.Pt(3, -10)) {
		t.Error("Cell above the cleared row should have shifted down")
	}
	if e.Grid().LockedCount() != 1 {
		t.Errorf("Expected 1 locked cell after clear, got %d", e.Grid().LockedCount())
	}

	// Further ticks do not score the same row again.
	e.TickDown()
	if e.Score() != DefaultScorePerRow {
		t.Errorf("Score changed without a new clear: %d", e.Score())
	}
}

func TestSpawnOnLockedOriginEndsGame(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	calls := 0
	final := -1
	e.OnGameOver(func(score int) {
		calls++
		final = score
	})

	e.Grid().Lock(e.SpawnPoint(), core.ColorRed)

	if e.SpawnShape(shapeBar, core.ColorBlue) {
		t.Fatal("Spawn over a locked origin should fail")
	}
	if e.Phase() != PhaseGameOver {
		t.Errorf("Expected game over, got %v", e.Phase())
	}
	if e.Piece() != nil {
		t.Error("No piece should exist after a blocked spawn")
	}
	if calls != 1 || final != 0 {
		t.Errorf("Expected one game over callback with score 0, got %d calls score %d", calls, final)
	}

	// Nothing moves after game over.
	if e.TickDown() || e.MoveSides(1) || e.Rotate() {
		t.Error("Commands must be ignored after game over")
	}
	e.TogglePause()
	if e.Phase() != PhaseGameOver {
		t.Error("Pause must not leave game over")
	}
	if e.Spawn() {
		t.Error("Spawn must fail after game over")
	}
	if calls != 1 {
		t.Errorf("Game over callback should fire once, fired %d times", calls)
	}
}

func TestStackToTopEndsGame(t *testing.T) {
	rules := DefaultRules()
	rules.Catalog = []Shape{Shapes[shapeHook]}
	e := newTestEngine(t, rules)
	over := false
	e.OnGameOver(func(int) { over = true })
	e.Spawn()

	for range 1000 {
		if e.Phase() == PhaseGameOver {
			break
		}
		e.TickDown()
	}
	if !over || e.Phase() != PhaseGameOver {
		t.Fatal("Stacking pieces in one column should end the game")
	}
	if e.RowsCleared() != 0 {
		t.Errorf("A single column never completes a row, got %d clears", e.RowsCleared())
	}
}

func TestMoveSidesStaysInsideWalls(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := newTestEngine(t, DefaultRules())
	e.Spawn()

	for range 5000 {
		if e.Phase() == PhaseGameOver {
			break
		}
		switch rng.Intn(4) {
		case 0:
			e.TickDown()
		case 1:
			e.Rotate()
		default:
			dir := 1
			if rng.Intn(2) == 0 {
				dir = -1
			}
			if e.MoveSides(dir) {
				for _, c := range e.Piece().Cells() {
					if c.X < -5 || c.X >= 5 {
						t.Fatalf("Accepted move put cell %v outside the walls", c)
					}
				}
			}
		}
	}
}

func TestMoveSidesAllOrNothing(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	e.SpawnShape(shapeBar, core.ColorRed)

	moves := 0
	for e.MoveSides(-1) {
		moves++
	}
	if moves != 4 {
		t.Errorf("Bar should move 4 columns left from x=0, moved %d", moves)
	}
	if got := e.Piece().Anchor; got != core.Pt(-4, 8) {
		t.Errorf("Expected anchor (-4,8), got %v", got)
	}

	// A locked cell to the right blocks the whole piece.
	e.Grid().Lock(core.Pt(-2, 8), core.ColorBlue)
	if e.MoveSides(1) {
		t.Error("Move into a locked cell should be rejected")
	}
	if got := e.Piece().Anchor; got != core.Pt(-4, 8) {
		t.Errorf("Rejected move changed the anchor to %v", got)
	}
	if e.MoveSides(0) {
		t.Error("Zero direction should be a no-op")
	}
}

func TestRotateFourTimesIsIdentity(t *testing.T) {
	for _, shape := range Shapes {
		for _, off := range shape.Offsets {
			if got := rotateOffsetN(off, 4); got != off {
				t.Errorf("%s: four turns of %v gave %v", shape.Name, off, got)
			}
		}
	}

	for i, shape := range Shapes {
		e := newTestEngine(t, DefaultRules())
		e.SpawnShape(i, core.ColorRed)
		before := e.Piece().Cells()
		for range 4 {
			if !e.Rotate() {
				t.Fatalf("%s: rotation on an empty board should succeed", shape.Name)
			}
		}
		after := e.Piece().Cells()
		for j := range before {
			if before[j] != after[j] {
				t.Errorf("%s: cell %d moved from %v to %v after four turns", shape.Name, j, before[j], after[j])
			}
		}
	}
}

func TestRotateOffset(t *testing.T) {
	if got := rotateOffset(core.Pt(1, 0)); got != core.Pt(0, -1) {
		t.Errorf("(1,0) should rotate to (0,-1), got %v", got)
	}
	if got := rotateOffset(core.Pt(0, 1)); got != core.Pt(1, 0) {
		t.Errorf("(0,1) should rotate to (1,0), got %v", got)
	}
}

func TestRotationValidation(t *testing.T) {
	blocked := core.Pt(0, 7) // below the spawn origin, hit by a vertical bar

	validated := newTestEngine(t, DefaultRules())
	validated.Grid().Lock(blocked, core.ColorBlue)
	validated.SpawnShape(shapeBar, core.ColorRed)
	if validated.Rotate() {
		t.Error("Validated rotation into a locked cell should be rejected")
	}
	if validated.Piece().Rotation != 0 {
		t.Error("Rejected rotation must not change the piece")
	}

	rules := DefaultRules()
	rules.ValidateRotation = false
	classic := newTestEngine(t, rules)
	classic.Grid().Lock(blocked, core.ColorBlue)
	classic.SpawnShape(shapeBar, core.ColorRed)
	if !classic.Rotate() {
		t.Error("Unvalidated rotation should always apply")
	}
}

func TestRotationRejectedAtWall(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	e.SpawnShape(shapeHook, core.ColorRed)
	for e.MoveSides(1) {
	}
	// Hook cells span x 3..4 at the right wall; a quarter turn reaches x=5.
	if e.Piece().Anchor.X != 4 {
		t.Fatalf("Expected hook against the right wall, anchor %v", e.Piece().Anchor)
	}
	if e.Rotate() {
		t.Error("Rotation through the right wall should be rejected")
	}
}

func TestRowWithOneGapDoesNotClear(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	fillRow(e.Grid(), -10, 4)

	if n := e.ClearCompleteRows(); n != 0 {
		t.Errorf("Row with W-1 cells should not clear, cleared %d", n)
	}
	if e.Score() != 0 {
		t.Errorf("Expected score 0, got %d", e.Score())
	}
}

func TestClearCompleteRowsCascade(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	fillRow(e.Grid(), -10)
	fillRow(e.Grid(), -9)
	fillRow(e.Grid(), -7)
	e.Grid().Lock(core.Pt(0, -8), core.ColorRed)

	if n := e.ClearCompleteRows(); n != 3 {
		t.Fatalf("Expected 3 rows cleared, got %d", n)
	}
	if e.Score() != 3*DefaultScorePerRow {
		t.Errorf("Expected score %d, got %d", 3*DefaultScorePerRow, e.Score())
	}
	if e.Grid().LockedCount() != 1 {
		t.Errorf("Expected 1 cell left, got %d", e.Grid().LockedCount())
	}
	if c := e.Grid().At(core.Pt(0, -10)); !c.Locked || c.Color != core.ColorRed {
		t.Errorf("Remaining cell should drop to the floor, got %+v", c)
	}
}

func TestClearRowTrimsFallingPiece(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	e.SpawnShape(shapeHook, core.ColorRed)

	// Hook cells: (0,8) (0,9) (0,7) (-1,9).
	e.ClearRow(9)
	if p := e.Piece(); p == nil || p.Remaining() != 2 {
		t.Fatalf("Expected 2 hook cells after clearing row 9, got %v", p)
	}

	e.ClearRow(8)
	e.ClearRow(7)
	if e.Piece() != nil {
		t.Error("A piece with no cells left should be discarded")
	}
}

func TestClearRowDropsPieceCellsAbove(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	e.SpawnShape(shapeHook, core.ColorRed)
	piece := e.Piece()
	piece.Anchor = core.Pt(0, 0)

	// Hook cells: (0,0) (0,1) (0,-1) (-1,1), tucked under an overhang at (0,2).
	e.Grid().Lock(core.Pt(0, 2), core.ColorBlue)
	e.Grid().Lock(core.Pt(3, -1), core.ColorBlue)

	e.ClearRow(0)

	if e.Piece() != piece {
		t.Fatal("Piece with cells left should stay in play")
	}
	want := map[core.Point]bool{core.Pt(0, 0): true, core.Pt(-1, 0): true, core.Pt(0, -1): true}
	cells := piece.Cells()
	if len(cells) != len(want) {
		t.Fatalf("Expected %d cells after the clear, got %v", len(want), cells)
	}
	for _, c := range cells {
		if !want[c] {
			t.Errorf("Unexpected piece cell %v", c)
		}
		if e.Grid().Occupied(c) {
			t.Errorf("Piece cell %v overlaps a locked cell", c)
		}
	}
	if !e.Grid().Occupied(core.Pt(0, 1)) {
		t.Error("Overhang should drop to (0,1)")
	}
	if !e.Grid().Occupied(core.Pt(3, -1)) {
		t.Error("Rows below the cleared row must not move")
	}

	// The dropped cells keep falling as one piece.
	if !e.TickDown() {
		t.Fatal("Piece should still fall after the clear")
	}
	if got := lowestY(piece.Cells()); got != -2 {
		t.Errorf("Expected lowest cell at y=-2 after one tick, got %d", got)
	}
}

func TestTickDownDespawnsEmptyPiece(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	e.SpawnShape(shapeBar, core.ColorRed)
	old := e.Piece()
	old.RemoveRow(old.Anchor.Y)

	if !old.Empty() {
		t.Fatal("Bar should be empty after removing its only row")
	}
	e.TickDown()
	if e.Piece() == old {
		t.Error("Empty piece should be despawned on the next tick")
	}
	if e.PiecesLocked() != 0 {
		t.Errorf("Empty piece must not count as locked, got %d", e.PiecesLocked())
	}
	if e.Piece() == nil {
		t.Error("A fresh piece should spawn after despawning")
	}
}

func TestStrictViolationPanics(t *testing.T) {
	rules := DefaultRules()
	rules.Strict = true
	e := newTestEngine(t, rules)
	e.SpawnShape(shapeBar, core.ColorRed)
	e.Piece().RemoveRow(8)

	defer func() {
		if recover() == nil {
			t.Error("Strict mode should panic when moving an empty piece")
		}
	}()
	e.MoveSides(1)
}

func TestLenientViolationIsIgnored(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	e.SpawnShape(shapeBar, core.ColorRed)
	e.Piece().RemoveRow(8)

	if e.MoveSides(1) || e.Rotate() {
		t.Error("Moving an empty piece should be rejected")
	}
}

func TestGravityNeverLiftsLockedCells(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	e := newTestEngine(t, DefaultRules())
	e.Spawn()

	for range 3000 {
		if e.Phase() == PhaseGameOver {
			break
		}
		if rng.Intn(3) == 0 {
			e.MoveSides(rng.Intn(3) - 1)
			continue
		}

		before := e.Grid().Clone()
		rows := e.RowsCleared()
		e.TickDown()
		if e.RowsCleared() != rows {
			continue
		}
		before.Each(func(p core.Point, c core.Color) {
			if got := e.Grid().At(p); !got.Locked || got.Color != c {
				t.Fatalf("Locked cell %v changed without a row clear", p)
			}
		})
	}
}

func TestPauseBlocksCommands(t *testing.T) {
	e := newTestEngine(t, DefaultRules())
	e.SpawnShape(shapeTee, core.ColorRed)
	anchor := e.Piece().Anchor

	e.Apply([]Command{{Kind: CmdPauseToggle}, {Kind: CmdTickDown}, {Kind: CmdMoveSides, Dir: 1}, {Kind: CmdRotate}})
	if e.Phase() != PhasePaused {
		t.Fatalf("Expected paused, got %v", e.Phase())
	}
	if e.Piece().Anchor != anchor || e.Piece().Rotation != 0 {
		t.Error("Paused engine must not move the piece")
	}

	e.Apply([]Command{{Kind: CmdPauseToggle}, {Kind: CmdTickDown}})
	if e.Phase() != PhasePlaying {
		t.Fatalf("Expected playing, got %v", e.Phase())
	}
	if e.Piece().Anchor.Y != anchor.Y-1 {
		t.Error("Tick after unpause should move the piece down")
	}
}

func TestNewEngineRejectsOversizedShape(t *testing.T) {
	rules := DefaultRules()
	rules.Catalog = []Shape{{Name: "big", Offsets: make([]core.Point, MaxShapeCells+1)}}

	defer func() {
		if recover() == nil {
			t.Error("Shapes with more than 5 cells should be rejected")
		}
	}()
	NewEngine(rules, nil, quietLogger())
}

func TestPhaseString(t *testing.T) {
	if PhasePlaying.String() != "playing" || PhasePaused.String() != "paused" || PhaseGameOver.String() != "game_over" {
		t.Error("Unexpected phase names")
	}
}
