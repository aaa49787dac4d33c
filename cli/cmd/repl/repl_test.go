package repl

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	sess := newSession(log.Discard(), nil)

	return newModel(t.Context(), sess, NewHistory(""), log.Discard())
}

func press(t *testing.T, m model, key tea.KeyType) (model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(tea.KeyMsg{Type: key})

	return next.(model), cmd
}

func submit(t *testing.T, m model, line string) (model, tea.Cmd) {
	t.Helper()

	m.input.SetValue(line)

	return press(t, m, tea.KeyEnter)
}

func TestModel_Continuation(t *testing.T) {
	m := testModel(t)

	m, _ = submit(t, m, "QUANDO (VERDADEIRO) INICIO")
	if len(m.pending) != 1 || m.busy {
		t.Fatalf("pending = %q, busy = %v", m.pending, m.busy)
	}

	if !strings.Contains(m.input.Prompt, contPrompt) {
		t.Errorf("prompt = %q, want continuation prompt", m.input.Prompt)
	}

	m, _ = submit(t, m, `EXIBIR "sim";`)
	if len(m.pending) != 2 {
		t.Fatalf("pending = %q", m.pending)
	}

	m, cmd := submit(t, m, "FIM")
	if len(m.pending) != 0 || !m.busy || cmd == nil {
		t.Fatalf("pending = %q, busy = %v, cmd = %v", m.pending, m.busy, cmd)
	}

	if m.history.Len() != 1 {
		t.Fatalf("history has %d entries", m.history.Len())
	}

	entry, _ := m.history.Entry(0)
	if want := "QUANDO (VERDADEIRO) INICIO\nEXIBIR \"sim\";\nFIM"; entry.Line != want {
		t.Errorf("history entry = %q, want %q", entry.Line, want)
	}

	if m.lastSource != entry.Line {
		t.Errorf("lastSource = %q", m.lastSource)
	}
}

func TestModel_DiscardPending(t *testing.T) {
	m := testModel(t)

	m, _ = submit(t, m, "ENQUANTO (FALSO) INICIO")
	m, _ = press(t, m, tea.KeyCtrlC)

	if len(m.pending) != 0 || m.quitting {
		t.Fatalf("pending = %q, quitting = %v", m.pending, m.quitting)
	}

	if !strings.Contains(m.input.Prompt, evalPrompt) {
		t.Errorf("prompt = %q, want eval prompt", m.input.Prompt)
	}
}

func TestModel_SyntaxError(t *testing.T) {
	m := testModel(t)

	m, cmd := submit(t, m, "EXIBIR ;")
	if m.busy || len(m.pending) != 0 || cmd == nil {
		t.Fatalf("busy = %v, pending = %q", m.busy, m.pending)
	}

	if m.history.Len() != 1 {
		t.Errorf("failed input should be kept in history")
	}
}

func TestModel_BlankInput(t *testing.T) {
	m := testModel(t)

	m, cmd := submit(t, m, "   ")
	if cmd != nil || m.busy || len(m.pending) != 0 {
		t.Errorf("blank input should do nothing")
	}
}

func TestModel_CtrlC(t *testing.T) {
	m := testModel(t)

	m.input.SetValue("EXIB")
	m, _ = press(t, m, tea.KeyCtrlC)

	if m.input.Value() != "" || m.quitting {
		t.Fatalf("first Ctrl+C should clear the input")
	}

	m, cmd := press(t, m, tea.KeyCtrlC)
	if !m.quitting || cmd == nil {
		t.Errorf("Ctrl+C on empty line should quit")
	}
}

func TestModel_BusyIgnoresInput(t *testing.T) {
	m := testModel(t)
	m.busy = true

	m, cmd := submit(t, m, "EXIBIR 1;")
	if cmd != nil || m.history.Len() != 0 {
		t.Errorf("input accepted while busy")
	}

	m, _ = press(t, m, tea.KeyCtrlD)
	if m.quitting {
		t.Errorf("Ctrl+D quit while busy")
	}
}

func TestModel_Answer(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(askMsg{})
	m = next.(model)
	m.busy = true

	if !m.asking || !strings.Contains(m.input.Prompt, askPrompt) {
		t.Fatalf("asking = %v, prompt = %q", m.asking, m.input.Prompt)
	}

	m, cmd := submit(t, m, "42")
	if m.asking || cmd == nil || m.input.Value() != "" {
		t.Errorf("answer not submitted")
	}

	if m.history.Len() != 0 {
		t.Errorf("answers should not be recorded in history")
	}
}

func TestModel_Finish(t *testing.T) {
	m := testModel(t)
	m.busy = true

	if err := m.session.interp.Environment().Declare("total", lang.TypeNumber, lang.Number(3)); err != nil {
		t.Fatal(err)
	}

	next, cmd := m.Update(doneMsg{err: errors.New("boom")})
	m = next.(model)

	if m.busy || m.asking || cmd == nil {
		t.Errorf("busy = %v, asking = %v", m.busy, m.asking)
	}

	if len(m.names) != 1 || m.names[0] != "total" {
		t.Errorf("names = %q, want [total]", m.names)
	}

	next, _ = m.Update(doneMsg{err: ErrInterrupted})
	if next.(model).busy {
		t.Errorf("still busy after interrupt")
	}
}

func TestModel_CtrlMode(t *testing.T) {
	m := testModel(t)

	m.input.SetValue("EXIBIR 1")
	m, _ = press(t, m, tea.KeyEsc)

	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("mode = %v, input = %q", m.mode, m.input.Value())
	}

	m, cmd := submit(t, m, "vars")
	if cmd == nil || m.history.Len() != 1 {
		t.Errorf("vars command not executed")
	}

	m, _ = press(t, m, tea.KeyEsc)
	if m.mode != modeEval || m.input.Value() != "EXIBIR 1" {
		t.Errorf("mode = %v, input = %q", m.mode, m.input.Value())
	}

	m, _ = press(t, m, tea.KeyEsc)

	m, cmd = submit(t, m, "quit")
	if !m.quitting || cmd == nil {
		t.Errorf("quit command did not quit")
	}
}

func TestModel_HistoryNavigation(t *testing.T) {
	m := testModel(t)

	_ = m.history.Add("EXIBIR 1;", modeEval)
	_ = m.history.Add("vars", modeCtrl)
	_ = m.history.Add("EXIBIR 2;", modeEval)
	m.historyIdx = m.history.Len()

	m, _ = press(t, m, tea.KeyUp)
	if m.input.Value() != "EXIBIR 2;" {
		t.Fatalf("input = %q", m.input.Value())
	}

	m, _ = press(t, m, tea.KeyUp)
	if m.input.Value() != "vars" || m.mode != modeCtrl {
		t.Fatalf("input = %q, mode = %v", m.input.Value(), m.mode)
	}

	m, _ = press(t, m, tea.KeyShiftUp)
	if m.input.Value() != "vars" {
		t.Errorf("in-mode navigation left ctrl entries: %q", m.input.Value())
	}

	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyDown)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("input = %q, idx = %d", m.input.Value(), m.historyIdx)
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := testModel(t)
	m.names = []string{"contador"}

	m.input.SetValue("EXIBIR conta")
	m.input.SetCursor(len("EXIBIR conta"))
	refreshMatches(&m, false)

	if len(m.matches) == 0 {
		t.Fatal("expected completion candidates")
	}

	m, _ = press(t, m, tea.KeyTab)
	if !strings.HasPrefix(m.input.Value(), "EXIBIR ") || m.input.Value() == "EXIBIR conta" {
		t.Errorf("tab did not complete: %q", m.input.Value())
	}
}

func TestModel_NoCompletionInText(t *testing.T) {
	m := testModel(t)

	m.input.SetValue(`EXIBIR "EXI`)
	m.input.SetCursor(len(`EXIBIR "EXI`))
	refreshMatches(&m, false)

	if len(m.matches) != 0 {
		t.Errorf("completed inside a text literal: %v", m.matches)
	}
}
