package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/log"
)

// editedMsg is sent when editing produced a program that parses.
type editedMsg struct {
	prog   *lang.Program
	source string
}

// editCancelledMsg is sent when the user cleared the editor content or
// declined to re-edit after a parse error.
type editCancelledMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "» "
	contPrompt = "… "
	askPrompt  = "? "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this cruft
  vars     List declared variables
  reset    Discard every variable except the presets
  edit     Edit the last program in external $EDITOR and run it
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type statements to run them; variables persist between inputs
  An unfinished block or text literal continues on the next line
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C to interrupt a running program or discard the current input
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	askPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true).
			Underline(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("4")).
				Bold(true).
				Underline(true)
)

// formatCommand formats an eval echo line with prompt and input styled.
func formatCommand(input string, continued bool) string {
	prompt := evalPrompt
	if continued {
		prompt = contPrompt
	}

	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// formatAnswer formats the echo of a line typed in reply to PERGUNTAR.
func formatAnswer(input string) string {
	return askPromptStyle.Render(askPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx          context.Context
	session      *session
	input        textinput.Model
	logger       log.Logger
	history      *History
	historyIdx   int
	names        []string      // declared variables, refreshed while idle
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
	pending      []string // lines of an unfinished program
	lastSource   string   // most recent program submitted in eval mode
	busy         bool     // a program is running
	asking       bool     // the running program waits for a line
}

// Run starts the REPL. Presets are declared in the session environment
// before the first prompt and again after every reset.
func Run(
	ctx context.Context,
	cacheDir string,
	logger log.Logger,
	presets []lang.Preset,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("preset_count", len(presets)))

	sess := newSession(logger, presets)
	if err := sess.declare(ctx); err != nil {
		return err
	}

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()))

	p := tea.NewProgram(newModel(ctx, sess, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	sess.interrupt()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return context.Cause(ctx)
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	sess *session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctx:        ctx,
		session:    sess,
		input:      ti,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		names:      sess.interp.Environment().Names(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.session.wait())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case outputMsg:
		text := strings.TrimSuffix(msg.text, "\n")

		return m, tea.Sequence(tea.Println(resultStyle.Render(text)), m.session.wait())

	case askMsg:
		m.asking = true
		m.refreshPrompt()
		refreshMatches(&m, false)

		return m, m.session.wait()

	case doneMsg:
		return m.finish(msg)

	case editedMsg:
		m.logger.TraceContext(m.ctx, "repl edit complete",
			slog.Int("statement_count", len(msg.prog.Stmts)))

		m.lastSource = msg.source
		_ = m.history.Add(msg.source, modeEval)
		m.historyIdx = m.history.Len()

		return m.run(msg.prog, formatCommand(strings.TrimSpace(msg.source), false))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch {
	case m.asking:
		b.WriteString(hintStyle.Render("The program is waiting for a line of input"))

	case m.busy:
		b.WriteString(hintStyle.Render("Running (Ctrl+C to interrupt)"))

	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case strings.TrimSpace(input) != "":

	case len(m.pending) > 0:
		b.WriteString(hintStyle.Render("Continue the program or press Ctrl+C to discard it"))

	case m.mode == modeEval:
		b.WriteString(hintStyle.Render("Type a statement or press Esc for commands"))

	default:
		b.WriteString(hintStyle.Render(
			"Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx, "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)))

	switch msg.Type {
	case tea.KeyCtrlC:
		return m.handleInterrupt()

	case tea.KeyCtrlD:
		if m.input.Value() == "" && !m.busy {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1)

	case tea.KeyShiftTab:
		return m.cycle(-1)

	case tea.KeyUp:
		return m.historyPrev(false)

	case tea.KeyDown:
		return m.historyNext(false)

	case tea.KeyShiftUp:
		return m.historyPrev(true)

	case tea.KeyShiftDown:
		return m.historyNext(true)

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.busy {
			return m, nil
		}

		return m.toggleMode()

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.Type == tea.KeySpace {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// handleInterrupt implements Ctrl+C: stop a running program, otherwise
// discard an unfinished program, otherwise clear the input line, otherwise
// quit.
func (m model) handleInterrupt() (model, tea.Cmd) {
	switch {
	case m.busy:
		m.session.interrupt()

		return m, nil

	case len(m.pending) > 0:
		m.pending = nil
		m.input.SetValue("")
		m.refreshPrompt()
		refreshMatches(&m, false)

		return m, tea.Println(hintStyle.Render("discarded"))

	case m.input.Value() != "":
		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	default:
		m.quitting = true

		return m, tea.Quit
	}
}

// cycle moves the tab selection by step, wrapping at either end.
func (m model) cycle(step int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also drops the candidate bar once the typed
// word already equals the only candidate.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// refreshPrompt sets the prompt for the current mode and session state.
func (m *model) refreshPrompt() {
	switch {
	case m.asking:
		m.input.Prompt = askPromptStyle.Render(askPrompt)
	case m.mode == modeCtrl:
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	case len(m.pending) > 0:
		m.input.Prompt = promptStyle.Render(contPrompt)
	default:
		m.input.Prompt = promptStyle.Render(evalPrompt)
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	raw := m.input.Value()

	if m.asking {
		m.asking = false
		m.input.SetValue("")
		m.refreshPrompt()

		return m, tea.Sequence(tea.Println(formatAnswer(raw)), m.session.answer(raw))
	}

	if m.busy {
		return m, nil
	}

	if m.mode == modeCtrl {
		input := strings.TrimSpace(raw)
		if input == "" {
			return m, nil
		}

		m.ctrlText, m.ctrlCursor = "", 0
		m.input.SetValue("")
		_ = m.history.Add(input, modeCtrl)
		m.historyIdx = m.history.Len()

		m.logger.TraceContext(m.ctx, "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	if strings.TrimSpace(raw) == "" && len(m.pending) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCommand(raw, len(m.pending) > 0))

	m.evalText, m.evalCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	m.pending = append(m.pending, raw)
	source := strings.Join(m.pending, "\n")

	prog, err := lang.Parse(m.ctx, source, lang.WithLogger(m.logger))
	if err != nil {
		var perr *lang.ParseError
		if errors.As(err, &perr) && perr.Incomplete() {
			m.refreshPrompt()

			return m, echo
		}
	}

	m.pending = nil
	m.refreshPrompt()

	_ = m.history.Add(source, modeEval)
	m.historyIdx = m.history.Len()

	m.logger.TraceContext(m.ctx, "repl eval",
		slog.Int("source_length", len(source)),
		slog.Bool("parsed", err == nil))

	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(err.Error())))
	}

	m.lastSource = source

	return m.run(prog, "", echo)
}

// run echoes the submitted input and starts prog in the session.
// Either a preformatted echo line or a print command may be given.
func (m model) run(prog *lang.Program, line string, echo ...tea.Cmd) (model, tea.Cmd) {
	if line != "" {
		echo = append(echo, tea.Println(line))
	}

	if len(prog.Stmts) == 0 {
		return m, tea.Sequence(echo...)
	}

	m.busy = true
	m.matches = nil

	return m, tea.Sequence(append(echo, m.session.start(m.ctx, prog))...)
}

// finish handles the completion of a program.
func (m model) finish(msg doneMsg) (model, tea.Cmd) {
	m.busy = false
	m.asking = false
	m.names = m.session.interp.Environment().Names()
	m.refreshPrompt()
	refreshMatches(&m, false)

	m.logger.DebugContext(m.ctx, "repl program finished",
		slog.Duration("elapsed", msg.elapsed),
		slog.Bool("failed", msg.err != nil))

	cmds := []tea.Cmd{m.session.wait()}

	switch {
	case msg.err == nil:
	case errors.Is(msg.err, ErrInterrupted):
		cmds = append(cmds, tea.Println(hintStyle.Render("interrupted")))
	default:
		cmds = append(cmds, tea.Println(errorStyle.Render(msg.err.Error())))
	}

	return m, tea.Batch(cmds...)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(formatCtrlCommand(input))

	cmd := parts[0]

	m.logger.TraceContext(m.ctx, "repl exec command",
		slog.String("command", cmd),
		slog.Any("args", parts[1:]))

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "v", "vars":
		return m, tea.Sequence(echoCmd, tea.Println(m.listVariables()))

	case "r", "reset":
		if err := m.session.reset(m.ctx); err != nil {
			return m, tea.Sequence(echoCmd,
				tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		m.names = m.session.interp.Environment().Names()

		return m, tea.Sequence(echoCmd,
			tea.Println(hintStyle.Render("environment reset")))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"))
	}
}

// edit opens the last program in the external editor.
func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		ctx:    m.ctx,
		source: m.lastSource,
		logger: m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editCancelledMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.prog == nil:
			return editCancelledMsg{}
		default:
			return editedMsg{prog: cmd.prog, source: cmd.edited}
		}
	})
}

func (m model) listVariables() string {
	var b strings.Builder

	for name, binding := range m.session.interp.Environment().All() {
		value := binding.Value.String()
		if binding.Type == lang.TypeText {
			value = strconv.Quote(value)
		}

		fmt.Fprintf(&b, "  %s %s %s\n",
			name, hintStyle.Render(binding.Type.String()), value)
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no variables)")
	}

	return b.String()
}

// historyPrev recalls the previous entry. With sameMode it skips entries
// entered in the other mode; otherwise it switches mode to match the entry.
func (m model) historyPrev(sameMode bool) (model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	for i := m.historyIdx - 1; i >= 0; i-- {
		entry, err := m.history.Entry(i)
		if err != nil || sameMode && entry.Mode != m.mode {
			continue
		}

		return m.recall(i, entry), nil
	}

	return m, nil
}

// historyNext recalls the next entry, clearing the input past the newest.
func (m model) historyNext(sameMode bool) (model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	for i := m.historyIdx + 1; i < m.history.Len(); i++ {
		entry, err := m.history.Entry(i)
		if err != nil || sameMode && entry.Mode != m.mode {
			continue
		}

		return m.recall(i, entry), nil
	}

	if m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m, nil
}

func (m model) recall(i int, entry Entry) model {
	if m.mode != entry.Mode {
		m, _ = m.switchToMode(entry.Mode)
	}

	// Multi-line programs are recalled joined onto one line.
	line := strings.ReplaceAll(entry.Line, "\n", " ")

	m.historyIdx = i
	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	refreshMatches(&m, false)

	return m
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	m.refreshPrompt()

	if mode == modeEval {
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m, nil
}
