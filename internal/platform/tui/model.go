package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// helpHeight is the number of rows reserved below the game for the help bar.
const helpHeight = 1

// maxFrameElapsed caps the time credited to one frame after a stall.
const maxFrameElapsed = 250 * time.Millisecond

// Result is the outcome of a finished game session.
type Result struct {
	GameID     string
	FinalScore int  // Score of the most recent game that ended
	GameOver   bool // Whether any game ended during the session
}

// Model is the Bubble Tea model that runs one game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	logger     *log.Logger
	config     core.RuntimeConfig
	fixedSeed  bool
	keys       *KeyMapper
	help       help.Model
	holds      *HoldTracker
	inputFrame core.InputFrame
	lastTick   time.Time
	gameState  core.GameState
	result     Result
	embedded   bool // Back returns to a session menu instead of quitting
	quitting   bool
	backToMenu bool
	scoreSaved bool
}

// NewModel creates a new Bubble Tea model for the given game.
// A nil store disables score saving.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig) Model {
	fixedSeed := cfg.Seed != 0
	if !fixedSeed {
		cfg.Seed = time.Now().UnixNano()
	}

	window := DefaultHoldWindow
	if hw, ok := game.(registry.HoldWindower); ok {
		window = hw.HoldWindow()
	}

	h := help.New()
	h.Width = cfg.ScreenW

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, gameHeight(cfg.ScreenH)),
		store:      store,
		logger:     log.Default(),
		config:     cfg,
		fixedSeed:  fixedSeed,
		keys:       NewKeyMapper(),
		help:       h,
		holds:      NewHoldTracker(window),
		inputFrame: core.NewInputFrame(),
		result:     Result{GameID: game.ID()},
	}
}

// WithLogger returns a copy of the model that logs to l. Games that accept
// a logger are handed l too.
func (m Model) WithLogger(l *log.Logger) Model {
	if l == nil {
		return m
	}
	m.logger = l
	if ls, ok := m.game.(registry.LoggerSetter); ok {
		ls.SetLogger(l)
	}
	return m
}

func gameHeight(screenH int) int {
	return max(screenH-helpHeight, 1)
}

func (m Model) gameConfig() core.RuntimeConfig {
	cfg := m.config
	cfg.ScreenH = gameHeight(cfg.ScreenH)
	return cfg
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.gameConfig())
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg, time.Now())

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg, now time.Time) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keys.MapKey(msg)
	switch {
	case isQuit:
		m.quitting = true
		return m, tea.Quit

	case action == core.ActionBack:
		if m.embedded && (m.gameState.GameOver || m.gameState.Paused) {
			m.backToMenu = true
		}

	case action == core.ActionRestart:
		if m.gameState.GameOver {
			m.inputFrame.Set(core.ActionRestart)
		}

	case IsHoldAction(action):
		m.holds.Press(action, now)

	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}

	return m, nil
}

// handleResize processes window resize events. The board has a fixed size,
// so the game keeps running and only the screen buffer changes.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, gameHeight(msg.Height))
	m.help.Width = msg.Width
	return m, nil
}

// handleTick runs one simulation frame using the real time since the last
// tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	elapsed := m.config.FrameDuration()
	if !m.lastTick.IsZero() {
		elapsed = min(now.Sub(m.lastTick), maxFrameElapsed)
	}
	m.lastTick = now

	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		if !m.fixedSeed {
			m.config.Seed = time.Now().UnixNano()
		}
		m.game.Reset(m.gameConfig())
		m.gameState = m.game.State()
		m.scoreSaved = false
		m.holds.Reset()
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	m.inputFrame.Elapsed = elapsed
	m.holds.Apply(&m.inputFrame, now)

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.checkGameOver()

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// checkGameOver records the final score once per finished game.
func (m *Model) checkGameOver() {
	score, ended := 0, false
	if r, ok := m.game.(registry.GameOverReporter); ok {
		score, ended = r.TakeGameOver()
	} else if m.gameState.GameOver && !m.scoreSaved {
		score, ended = m.gameState.Score, true
	}
	if !ended {
		return
	}

	rec := storage.Record{Score: score}
	if r, ok := m.game.(registry.StatsReporter); ok {
		rec.RowsCleared, rec.PiecesLocked = r.RunStats()
	}

	m.scoreSaved = true
	m.result.FinalScore = score
	m.result.GameOver = true
	m.logger.Info("game over", "game", m.game.ID(), "score", score,
		"rows", rec.RowsCleared, "pieces", rec.PiecesLocked)

	if m.store == nil || score <= 0 {
		return
	}
	if _, err := m.store.SaveScore(m.game.ID(), rec); err != nil {
		m.logger.Error("could not save score", "error", err)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := config.UserDir()
	if dir == "" {
		m.logger.Warn("cannot save screenshot: no home directory")
		return
	}
	dir = filepath.Join(dir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("cannot save screenshot", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("cannot save screenshot", "error", err)
		return
	}
	m.logger.Debug("saved screenshot", "path", path)
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys.Keys()))
}

// IsQuitting returns true if the user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the user requested to go back to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Result returns the session outcome so far.
func (m Model) Result() Result {
	return m.result
}

// Run starts the Bubble Tea program for a game and returns its outcome.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) (Result, error) {
	model := NewModel(game, store, cfg).WithLogger(logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return Result{GameID: game.ID()}, fmt.Errorf("tui: %w", err)
	}

	m, ok := finalModel.(Model)
	if !ok {
		return Result{GameID: game.ID()}, nil
	}
	return m.Result(), nil
}
