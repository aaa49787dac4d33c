package profile

import (
	"slices"
	"testing"
)

func TestMake(t *testing.T) {
	p := Make(WithMode("cpu"), WithPath("/tmp/prof"), WithQuiet(true))

	if p != (Profiler{Mode: "cpu", Path: "/tmp/prof", Quiet: true}) {
		t.Errorf("options not applied: %+v", p)
	}
}

func TestStart_NoMode(t *testing.T) {
	s := Make(WithPath(t.TempDir())).Start()

	if _, ok := s.(ignore); !ok {
		t.Errorf("expected no-op stopper, got %T", s)
	}

	s.Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	s := Make(WithMode("bogus"), WithPath(t.TempDir()), WithQuiet(true)).Start()

	if _, ok := s.(ignore); !ok {
		t.Errorf("expected no-op stopper, got %T", s)
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !Enabled {
		if len(modes) != 0 {
			t.Errorf("expected no modes without profiling support, got %v", modes)
		}

		return
	}

	if !slices.IsSorted(modes) || !slices.Contains(modes, "cpu") {
		t.Errorf("unexpected modes %v", modes)
	}
}
