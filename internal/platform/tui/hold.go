package tui

import (
	"time"

	"github.com/vovakirdan/blockfall/internal/core"
)

// DefaultHoldWindow is used when the game does not provide its own.
const DefaultHoldWindow = 60 * time.Millisecond

// HoldTracker emulates held keys on terminals, which report key presses and
// auto-repeats but never releases. A key counts as held until the window
// passes without another press of it.
type HoldTracker struct {
	window time.Duration
	last   map[core.Action]time.Time
}

// NewHoldTracker creates a tracker. A non-positive window uses
// DefaultHoldWindow.
func NewHoldTracker(window time.Duration) *HoldTracker {
	if window <= 0 {
		window = DefaultHoldWindow
	}
	return &HoldTracker{
		window: window,
		last:   make(map[core.Action]time.Time),
	}
}

// Window returns the hold window.
func (h *HoldTracker) Window() time.Duration {
	return h.window
}

// Press records a key press or repeat at now.
func (h *HoldTracker) Press(a core.Action, now time.Time) {
	h.last[a] = now
}

// Held reports whether a is held at now.
func (h *HoldTracker) Held(a core.Action, now time.Time) bool {
	t, ok := h.last[a]
	if !ok {
		return false
	}
	if now.Sub(t) > h.window {
		delete(h.last, a)
		return false
	}
	return true
}

// Apply marks every held action on the frame.
func (h *HoldTracker) Apply(frame *core.InputFrame, now time.Time) {
	for a := range h.last {
		if h.Held(a, now) {
			frame.Hold(a)
		}
	}
}

// Reset releases every key.
func (h *HoldTracker) Reset() {
	clear(h.last)
}
