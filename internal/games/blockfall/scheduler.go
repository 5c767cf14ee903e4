package blockfall

import (
	"time"

	"github.com/vovakirdan/blockfall/internal/core"
)

// CommandKind identifies a discrete engine command.
type CommandKind int

const (
	CmdPauseToggle CommandKind = iota
	CmdTickDown
	CmdMoveSides
	CmdRotate
)

func (k CommandKind) String() string {
	switch k {
	case CmdPauseToggle:
		return "pause"
	case CmdTickDown:
		return "tick_down"
	case CmdMoveSides:
		return "move_sides"
	case CmdRotate:
		return "rotate"
	default:
		return "unknown"
	}
}

// Command is one discrete instruction for the engine.
type Command struct {
	Kind CommandKind
	Dir  int // -1 or +1 for CmdMoveSides
}

// Timing holds the scheduler periods.
type Timing struct {
	GravityPeriod      time.Duration
	SoftDropMultiplier float64
	LateralPeriod      time.Duration
}

// DefaultTiming returns a one-second gravity period, a 25x soft drop and a
// lateral repeat of 1/25 of the gravity period.
func DefaultTiming() Timing {
	return Timing{
		GravityPeriod:      time.Second,
		SoftDropMultiplier: 25,
		LateralPeriod:      40 * time.Millisecond,
	}
}

// FrameInput is the input sampled once per frame by the host.
type FrameInput struct {
	Left     bool // held
	Right    bool // held
	SoftDrop bool // held
	Rotate   bool // key-down edge
	Pause    bool // key-down edge
	Elapsed  time.Duration
}

// FrameInputFrom converts a platform input frame. Movement keys are read as
// held levels, Rotate and Pause as edges.
func FrameInputFrom(in core.InputFrame, fallback time.Duration) FrameInput {
	elapsed := in.Elapsed
	if elapsed <= 0 {
		elapsed = fallback
	}
	return FrameInput{
		Left:     in.IsHeld(core.ActionLeft),
		Right:    in.IsHeld(core.ActionRight),
		SoftDrop: in.IsHeld(core.ActionSoftDrop),
		Rotate:   in.Has(core.ActionRotate),
		Pause:    in.Has(core.ActionPause),
		Elapsed:  elapsed,
	}
}

// Scheduler turns elapsed time and input into an ordered command list using
// two accumulating timers, each reset to zero when it fires.
type Scheduler struct {
	timing  Timing
	gravity time.Duration
	lateral time.Duration
}

// NewScheduler creates a scheduler with both timers at zero.
func NewScheduler(t Timing) *Scheduler {
	if t.SoftDropMultiplier < 1 {
		t.SoftDropMultiplier = 1
	}
	return &Scheduler{timing: t}
}

// Timing returns the scheduler's periods.
func (s *Scheduler) Timing() Timing {
	return s.timing
}

// Frame returns the commands for one frame, in order: pause toggle, then
// (unless paused) gravity tick, lateral move and rotate. phase is the engine
// phase before the frame; nothing is emitted after game over. Timers do not
// advance while paused.
func (s *Scheduler) Frame(in FrameInput, phase Phase) []Command {
	if phase == PhaseGameOver {
		return nil
	}

	var cmds []Command
	paused := phase == PhasePaused
	if in.Pause {
		cmds = append(cmds, Command{Kind: CmdPauseToggle})
		paused = !paused
	}
	if paused {
		return cmds
	}

	step := in.Elapsed
	if in.SoftDrop {
		step = time.Duration(float64(step) * s.timing.SoftDropMultiplier)
	}
	s.gravity += step
	if s.gravity >= s.timing.GravityPeriod {
		s.gravity = 0
		cmds = append(cmds, Command{Kind: CmdTickDown})
	}

	s.lateral += in.Elapsed
	if s.lateral >= s.timing.LateralPeriod {
		s.lateral = 0
		if dir := lateralDir(in); dir != 0 {
			cmds = append(cmds, Command{Kind: CmdMoveSides, Dir: dir})
		}
	}

	if in.Rotate {
		cmds = append(cmds, Command{Kind: CmdRotate})
	}
	return cmds
}

// GravityProgress returns how far the gravity timer is toward its period.
func (s *Scheduler) GravityProgress() time.Duration {
	return s.gravity
}

// Reset zeroes both timers.
func (s *Scheduler) Reset() {
	s.gravity = 0
	s.lateral = 0
}

func lateralDir(in FrameInput) int {
	dir := 0
	if in.Right {
		dir++
	}
	if in.Left {
		dir--
	}
	return dir
}
