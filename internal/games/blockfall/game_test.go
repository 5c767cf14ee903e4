package blockfall

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/registry"
)

func newTestGame(t *testing.T, g *Game, seed int64) *Game {
	t.Helper()
	SetLogger(quietLogger())
	t.Cleanup(func() { SetLogger(nil) })
	g.ResetWith(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: seed}, config.DefaultBlockfallConfig())
	return g
}

func scriptedInput(i int) core.InputFrame {
	in := core.NewInputFrame()
	switch i % 7 {
	case 0:
		in.Hold(core.ActionLeft)
	case 2:
		in.Set(core.ActionRotate)
	case 3, 4:
		in.Hold(core.ActionRight)
	case 5:
		in.Hold(core.ActionSoftDrop)
	}
	return in
}

func TestDeterministicWithSeed(t *testing.T) {
	a := newTestGame(t, New(), 12345)
	b := newTestGame(t, New(), 12345)

	for i := range 2000 {
		a.Step(scriptedInput(i))
		b.Step(scriptedInput(i))
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	if !reflect.DeepEqual(sa, sb) {
		t.Fatalf("Same seed and input should give the same state:\n%+v\n%+v", sa, sb)
	}
	if sa.PiecesLocked == 0 {
		t.Error("Expected at least one piece to lock in 2000 frames")
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	var shapes [2][]string
	for i, seed := range []int64{1, 2} {
		g := newTestGame(t, New(), seed)
		for range 20 {
			shapes[i] = append(shapes[i], g.Snapshot().PieceShape)
			g.Engine().piece = nil
			g.Engine().Spawn()
		}
	}
	if reflect.DeepEqual(shapes[0], shapes[1]) {
		t.Error("Different seeds should produce different piece sequences")
	}
}

func TestTakeGameOverOnce(t *testing.T) {
	g := newTestGame(t, New(), 1)

	if _, ok := g.TakeGameOver(); ok {
		t.Fatal("No game over before the game ends")
	}

	e := g.Engine()
	e.piece = nil
	e.Grid().Lock(e.SpawnPoint(), core.ColorRed)
	e.Spawn()

	if !g.State().GameOver {
		t.Fatal("Blocked spawn should end the game")
	}
	score, ok := g.TakeGameOver()
	if !ok || score != 0 {
		t.Errorf("Expected game over with score 0, got %d %v", score, ok)
	}
	if _, ok := g.TakeGameOver(); ok {
		t.Error("Game over should be reported only once")
	}

	// Frames after game over change nothing.
	before := g.Snapshot()
	g.Step(scriptedInput(0))
	after := g.Snapshot()
	before.Tick, after.Tick = 0, 0
	if !reflect.DeepEqual(before, after) {
		t.Error("State changed after game over")
	}
}

func TestPauseFromInput(t *testing.T) {
	g := newTestGame(t, New(), 1)

	in := core.NewInputFrame()
	in.Set(core.ActionPause)
	g.Step(in)
	if !g.State().Paused {
		t.Fatal("Pause action should pause the game")
	}

	anchor := g.Engine().Piece().Anchor
	for range 200 {
		g.Step(core.NewInputFrame())
	}
	if g.Engine().Piece().Anchor != anchor {
		t.Error("Piece moved while paused")
	}

	g.Step(in)
	if g.State().Paused {
		t.Error("Second pause action should resume")
	}
}

func TestClassicModeSkipsRotationCheck(t *testing.T) {
	g := newTestGame(t, NewClassic(), 1)
	if g.Engine().Rules().ValidateRotation {
		t.Error("Classic mode should not validate rotation")
	}
	if g.ID() != "blockfall_classic" {
		t.Errorf("Unexpected ID %s", g.ID())
	}

	std := newTestGame(t, New(), 1)
	if !std.Engine().Rules().ValidateRotation {
		t.Error("Standard mode should validate rotation")
	}
}

func TestRegistered(t *testing.T) {
	for _, id := range []string{"blockfall", "blockfall_classic"} {
		g, err := registry.Create(id)
		if err != nil {
			t.Fatalf("Create(%q): %v", id, err)
		}
		if _, ok := g.(registry.GameOverReporter); !ok {
			t.Errorf("%s should report game over", id)
		}
		if _, ok := g.(registry.HoldWindower); !ok {
			t.Errorf("%s should expose a hold window", id)
		}
		if _, ok := g.(registry.LoggerSetter); !ok {
			t.Errorf("%s should accept a host logger", id)
		}
	}
}

func TestRunStatsFollowEngine(t *testing.T) {
	if rows, pieces := New().RunStats(); rows != 0 || pieces != 0 {
		t.Errorf("Unstarted game should report zero stats, got %d/%d", rows, pieces)
	}

	g := newTestGame(t, New(), 5)
	for i := range 3000 {
		g.Step(scriptedInput(i))
	}

	rows, pieces := g.RunStats()
	snap := g.Snapshot()
	if rows != snap.RowsCleared || pieces != snap.PiecesLocked {
		t.Errorf("RunStats = %d/%d, snapshot = %d/%d", rows, pieces, snap.RowsCleared, snap.PiecesLocked)
	}
	if pieces == 0 {
		t.Error("Expected pieces to lock over 3000 frames")
	}
}

func TestGameLoggerReachesEngine(t *testing.T) {
	var buf bytes.Buffer
	host := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}).With("user", "ann")

	g := New()
	g.SetLogger(host)
	g.ResetWith(core.RuntimeConfig{TickRate: 60, Seed: 1}, config.DefaultBlockfallConfig())

	out := buf.String()
	if !strings.Contains(out, "spawned piece") {
		t.Fatalf("Engine debug lines should reach the game logger, got %q", out)
	}
	if !strings.Contains(out, "user=ann") {
		t.Errorf("Host fields missing from engine log lines: %q", out)
	}
	if !strings.Contains(out, "blockfall") {
		t.Errorf("Game prefix missing from engine log lines: %q", out)
	}
}

func TestRender(t *testing.T) {
	g := newTestGame(t, New(), 1)
	screen := core.NewScreen(80, 24)
	g.Render(screen)

	out := screen.String()
	if !strings.Contains(out, "Blockfall") || !strings.Contains(out, "Score: 0") {
		t.Errorf("HUD missing from render:\n%s", out)
	}
	if !strings.ContainsRune(out, BlockChar) {
		t.Error("Falling piece should be drawn")
	}

	small := core.NewScreen(20, 10)
	g.Render(small)
	if !strings.Contains(small.String(), "Window too small") {
		t.Error("Small screens should show a size warning")
	}
}

func TestRenderPieceColumns(t *testing.T) {
	g := newTestGame(t, New(), 1)
	e := g.Engine()
	e.piece = nil
	e.SpawnShape(shapeBar, core.ColorRed)

	screen := core.NewScreen(80, 24)
	g.Render(screen)

	// Row 8 is the second row inside the box.
	row := screen.Row(hudHeight + 1 + (e.Grid().MaxY() - 1 - 8))
	if n := strings.Count(row, string(BlockChar)); n != 3*cellWidth {
		t.Errorf("Bar should cover %d characters, got %d in %q", 3*cellWidth, n, row)
	}
}
