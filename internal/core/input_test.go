package core

import (
	"testing"
	"time"
)

func TestInputFrameEdgesAndHolds(t *testing.T) {
	f := NewInputFrame()
	f.Set(ActionRotate)
	f.Hold(ActionLeft)
	f.Elapsed = 16 * time.Millisecond

	if !f.Has(ActionRotate) {
		t.Error("Has(Rotate) should be true")
	}
	if f.Has(ActionLeft) {
		t.Error("held action should not register as an edge")
	}
	if !f.IsHeld(ActionLeft) {
		t.Error("IsHeld(Left) should be true")
	}

	clone := f.Clone()
	f.Clear()

	if f.Has(ActionRotate) || f.IsHeld(ActionLeft) || f.Elapsed != 0 {
		t.Error("Clear should reset edges, holds and elapsed")
	}
	if !clone.Has(ActionRotate) || !clone.IsHeld(ActionLeft) || clone.Elapsed != 16*time.Millisecond {
		t.Error("Clone should be unaffected by Clear on the original")
	}
}

func TestZeroValueInputFrame(t *testing.T) {
	var f InputFrame
	if f.Has(ActionPause) || f.IsHeld(ActionSoftDrop) {
		t.Error("zero frame should report nothing")
	}
	f.Set(ActionPause)
	f.Hold(ActionSoftDrop)
	if !f.Has(ActionPause) || !f.IsHeld(ActionSoftDrop) {
		t.Error("Set/Hold should lazily allocate maps")
	}
}

func TestActionString(t *testing.T) {
	if ActionSoftDrop.String() != "SoftDrop" {
		t.Errorf("String() = %q", ActionSoftDrop.String())
	}
	if Action(99).String() != "Unknown" {
		t.Errorf("unknown action should stringify as Unknown")
	}
}
