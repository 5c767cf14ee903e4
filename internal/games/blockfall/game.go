// Package blockfall implements a falling-block puzzle game.
// Pieces fall under a gravity timer, shift and rotate on command, lock when
// they come to rest, and full rows are cleared for points.
package blockfall

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/registry"
)

// Mode selects the rule variant.
type Mode string

const (
	ModeStandard Mode = "standard" // Rotation is checked against walls and locked cells
	ModeClassic  Mode = "classic"  // Rotation is applied unconditionally
)

// Visual characters for rendering
const (
	BlockChar = '█'
	EmptyChar = '·'
)

// configPath stores the custom config path set via CLI
var configPath string

// pkgLogger is shared by every engine the package creates.
var pkgLogger *log.Logger

// SetConfigPath sets the config file path used on the next Reset.
func SetConfigPath(path string) {
	configPath = path
}

// SetLogger sets the logger engines report to. Nil restores the default.
func SetLogger(l *log.Logger) {
	pkgLogger = l
}

// Game adapts the engine and scheduler to the platform's game interface.
type Game struct {
	mode      Mode
	cfg       config.BlockfallConfig
	runtime   core.RuntimeConfig
	engine    *Engine
	scheduler *Scheduler
	log       *log.Logger
	tick      uint64

	gameOverPending bool
	finalScore      int
}

// New creates a standard Blockfall game.
func New() *Game {
	return &Game{mode: ModeStandard}
}

// NewClassic creates a Blockfall game with unchecked rotation.
func NewClassic() *Game {
	return &Game{mode: ModeClassic}
}

func init() {
	registry.Register("blockfall", func() registry.Game {
		return New()
	})
	registry.Register("blockfall_classic", func() registry.Game {
		return NewClassic()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeClassic {
		return "blockfall_classic"
	}
	return "blockfall"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeClassic {
		return "Blockfall (Classic)"
	}
	return "Blockfall"
}

// SetLogger routes this game's engine logs to l, tagged with the game
// prefix. It takes effect on the next Reset.
func (g *Game) SetLogger(l *log.Logger) {
	if l == nil {
		g.log = nil
		return
	}
	g.log = l.WithPrefix("blockfall")
}

// Reset loads configuration and starts a new game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	gameCfg, err := config.LoadBlockfall(configPath)
	if err != nil {
		g.logger().Warn("using default config", "error", err)
		gameCfg = config.DefaultBlockfallConfig()
	}
	g.ResetWith(cfg, gameCfg)
}

// ResetWith starts a new game with an explicit configuration.
func (g *Game) ResetWith(cfg core.RuntimeConfig, gameCfg config.BlockfallConfig) {
	g.runtime = cfg
	g.cfg = gameCfg
	g.tick = 0
	g.gameOverPending = false
	g.finalScore = 0

	rules := Rules{
		Width:            gameCfg.Board.Width,
		Height:           gameCfg.Board.Height,
		ScorePerRow:      gameCfg.Scoring.PerRow,
		ValidateRotation: gameCfg.Rules.ValidateRotation && g.mode != ModeClassic,
		Strict:           gameCfg.Rules.Strict,
	}

	g.engine = NewEngine(rules, rand.New(rand.NewSource(cfg.Seed)), g.logger())
	g.engine.OnGameOver(func(score int) {
		g.gameOverPending = true
		g.finalScore = score
	})
	g.scheduler = NewScheduler(Timing{
		GravityPeriod:      gameCfg.Timing.GravityPeriod.Std(),
		SoftDropMultiplier: gameCfg.Timing.SoftDropMultiplier,
		LateralPeriod:      gameCfg.Timing.LateralPeriod.Std(),
	})
	g.engine.Spawn()
}

func (g *Game) logger() *log.Logger {
	if g.log != nil {
		return g.log
	}
	if pkgLogger != nil {
		return pkgLogger
	}
	return log.Default().WithPrefix("blockfall")
}

// Step advances the game by one frame.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.engine == nil {
		return core.StepResult{State: g.State()}
	}
	g.tick++

	frame := FrameInputFrom(in, g.runtime.FrameDuration())
	g.engine.Apply(g.scheduler.Frame(frame, g.engine.Phase()))

	return core.StepResult{State: g.State()}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.engine == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.engine.Score(),
		GameOver: g.engine.Phase() == PhaseGameOver,
		Paused:   g.engine.Phase() == PhasePaused,
	}
}

// TakeGameOver reports the final score the first time it is called after the
// game ends, and false on every other call.
func (g *Game) TakeGameOver() (int, bool) {
	if !g.gameOverPending {
		return 0, false
	}
	g.gameOverPending = false
	return g.finalScore, true
}

// RunStats returns the rows cleared and pieces locked in the current game.
func (g *Game) RunStats() (int, int) {
	if g.engine == nil {
		return 0, 0
	}
	return g.engine.RowsCleared(), g.engine.PiecesLocked()
}

// Engine exposes the simulation for hosts and tests.
func (g *Game) Engine() *Engine {
	return g.engine
}

// HoldWindow returns how long the frontend should treat a key as held
// after its last key event.
func (g *Game) HoldWindow() time.Duration {
	return g.cfg.Input.HoldWindow.Std()
}

// --- Rendering ---

const (
	hudHeight = 2
	cellWidth = 2 // each grid cell is drawn two characters wide
)

// Render draws the board, HUD and overlays.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.engine == nil {
		return
	}

	g.renderHUD(dst)

	grid := g.engine.Grid()
	boardW := grid.Width()*cellWidth + 2
	boardH := grid.Height() + 2
	if dst.Width() < boardW || dst.Height() < boardH+hudHeight {
		dst.DrawTextCentered(dst.Height()/2, "Window too small")
		return
	}

	box := core.NewRect((dst.Width()-boardW)/2, hudHeight, boardW, boardH)
	dst.DrawBox(box, core.ColorGray)

	// Empty cells
	for y := grid.MinY(); y < grid.MaxY(); y++ {
		for x := grid.MinX(); x < grid.MaxX(); x++ {
			sx, sy := g.toScreen(box, core.Point{X: x, Y: y})
			dst.SetColored(sx+1, sy, EmptyChar, core.ColorGray)
		}
	}

	grid.Each(func(p core.Point, c core.Color) {
		g.drawBlock(dst, box, p, c)
	})

	if piece := g.engine.Piece(); piece != nil {
		for _, p := range piece.Cells() {
			if grid.Inside(p) {
				g.drawBlock(dst, box, p, piece.Color)
			}
		}
	}

	switch g.engine.Phase() {
	case PhaseGameOver:
		g.renderOverlay(dst, "Game Over", fmt.Sprintf("Score: %d  R: restart", g.engine.Score()))
	case PhasePaused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// toScreen maps a grid point to the left character of its screen cell.
func (g *Game) toScreen(box core.Rect, p core.Point) (int, int) {
	grid := g.engine.Grid()
	col := p.X - grid.MinX()
	row := grid.MaxY() - 1 - p.Y
	return box.X + 1 + col*cellWidth, box.Y + 1 + row
}

func (g *Game) drawBlock(dst *core.Screen, box core.Rect, p core.Point, c core.Color) {
	sx, sy := g.toScreen(box, p)
	for i := range cellWidth {
		dst.SetColored(sx+i, sy, BlockChar, c)
	}
}

func (g *Game) renderHUD(dst *core.Screen) {
	hud := fmt.Sprintf(" %s | Score: %d  Rows: %d  Pieces: %d",
		g.Title(), g.engine.Score(), g.engine.RowsCleared(), g.engine.PiecesLocked())
	dst.DrawText(0, 0, hud)
	dst.DrawHLine(0, 1, dst.Width(), '─')
}

// renderOverlay draws a centered two-line message box.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	maxLen := max(len([]rune(line1)), len([]rune(line2)))
	boxW := maxLen + 4
	boxH := 5
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	for y := box.Y + 1; y < box.Bottom()-1; y++ {
		for x := box.X + 1; x < box.Right()-1; x++ {
			dst.Set(x, y, ' ')
		}
	}
	dst.DrawBox(box, core.ColorBrightWhite)
	dst.DrawTextCentered(box.Y+1, line1)
	dst.DrawTextCentered(box.Y+3, line2)
}
