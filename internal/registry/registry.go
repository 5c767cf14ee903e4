// Package registry provides a global registry for game factories.
// Game variants register themselves in init() functions so that the
// frontends can list and create them by ID.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/core"
)

// Game is the interface every game variant implements.
// Games hold pure simulation logic and never import Bubble Tea; the
// platform handles input mapping, timing, and terminal output.
type Game interface {
	// ID returns a unique identifier (e.g. "blockfall").
	// Used for CLI commands and score storage.
	ID() string

	// Title returns a human-readable name for menus.
	Title() string

	// Reset starts a new game. Called once at start and again on restart.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one frame.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into the screen buffer.
	Render(dst *core.Screen)

	// State returns the current score, game over and pause flags.
	State() core.GameState
}

// GameOverReporter is implemented by games that report the end of a game
// exactly once, so the host can announce and persist the final score.
type GameOverReporter interface {
	TakeGameOver() (finalScore int, ok bool)
}

// HoldWindower is implemented by games that read held keys. Terminals only
// report key presses, so the host treats a key as held for this long after
// its last press or repeat.
type HoldWindower interface {
	HoldWindow() time.Duration
}

// StatsReporter is implemented by games that count rows cleared and pieces
// locked, so the host can store them alongside the final score.
type StatsReporter interface {
	RunStats() (rowsCleared, piecesLocked int)
}

// LoggerSetter is implemented by games that accept a host logger, so a
// session's log fields reach the game's own log lines.
type LoggerSetter interface {
	SetLogger(l *log.Logger)
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new instance of a game.
type Factory func() Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a game factory to the registry.
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f

	// Get title by creating a temporary instance
	titles[id] = f().Title()
}

// List returns information about all registered games, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new game by its ID.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}

	return f(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
