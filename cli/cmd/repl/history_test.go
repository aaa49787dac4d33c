package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistory_PersistAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load missing file: %v", err)
	}

	adds := []Entry{
		{"EXIBIR 1;", modeEval},
		{"vars", modeCtrl},
		{"QUANDO (x) INICIO\nEXIBIR x;\nFIM", modeEval},
		{`EXIBIR "a\nb";`, modeEval},
	}

	for _, e := range adds {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("add %q: %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if lines := strings.Count(string(data), "\n"); lines != len(adds) {
		t.Errorf("history file has %d lines, want %d:\n%s", lines, len(adds), data)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	got := loaded.Entries()
	if len(got) != len(adds) {
		t.Fatalf("loaded %d entries, want %d", len(got), len(adds))
	}

	for i := range adds {
		if got[i] != adds[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], adds[i])
		}
	}
}

func TestHistory_Dedupe(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "b", "a"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	if err := h.Add("a", modeCtrl); err != nil {
		t.Fatal(err)
	}

	want := []Entry{{"b", modeEval}, {"a", modeEval}, {"a", modeCtrl}}

	got := h.Entries()
	if len(got) != len(want) {
		t.Fatalf("entries = %+v, want %+v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if reloaded.Len() != len(want) {
		t.Errorf("reloaded %d entries, want %d", reloaded.Len(), len(want))
	}
}

func TestHistory_LegacyAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	content := "EXIBIR 1;\n\nC:quit\nE:EXIBIR 2;\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []Entry{{"EXIBIR 1;", modeEval}, {"quit", modeCtrl}, {"EXIBIR 2;", modeEval}}
	for i, w := range want {
		got, err := h.Entry(i)
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}

		if got != w {
			t.Errorf("entry %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestHistory_Bounds(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("   ", modeEval); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 0 {
		t.Errorf("blank line was recorded")
	}

	if err := h.Add("EXIBIR 1;", modeEval); err != nil {
		t.Fatal(err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want %v", i, err, ErrOutOfBounds)
		}
	}
}
