package repl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/log"
)

// Messages produced by a running program.
type (
	// outputMsg carries one write from EXIBIR or FALAR.
	outputMsg struct{ text string }
	// askMsg reports that PERGUNTAR is waiting for a line.
	askMsg struct{}
	// doneMsg reports that a program finished.
	doneMsg struct {
		err     error
		elapsed time.Duration
	}
)

// session owns the persistent interpreter and runs one program at a time
// in its own goroutine. Everything the program writes or asks for is
// delivered to the UI through events.
type session struct {
	interp  *lang.Interpreter
	logger  log.Logger
	presets []lang.Preset
	events  chan tea.Msg
	lines   chan string

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelCauseFunc
	pending []byte
}

func newSession(logger log.Logger, presets []lang.Preset) *session {
	s := &session{
		logger:  logger,
		presets: presets,
		events:  make(chan tea.Msg, 64),
		lines:   make(chan string),
		ctx:     context.Background(),
	}

	s.interp = lang.NewInterpreter(
		lang.WithInput(askReader{s}),
		lang.WithOutput(outputWriter{s.events}),
		lang.WithLogger(logger),
	)

	return s
}

// declare predefines the session presets in the current environment.
func (s *session) declare(ctx context.Context) error {
	return lang.DeclarePresets(ctx, s.interp.Environment(), s.presets,
		lang.WithLogger(s.logger))
}

// reset replaces the environment with a fresh one holding only the presets.
func (s *session) reset(ctx context.Context) error {
	s.interp.Reset()

	return s.declare(ctx)
}

// wait returns a command that delivers the next event.
func (s *session) wait() tea.Cmd {
	return func() tea.Msg { return <-s.events }
}

// start returns a command that runs prog in the background.
// Completion is reported with a [doneMsg].
func (s *session) start(parent context.Context, prog *lang.Program) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancelCause(parent)

		s.mu.Lock()
		s.ctx, s.cancel = ctx, cancel
		s.mu.Unlock()

		go func() {
			began := time.Now()
			err := s.interp.Run(ctx, prog)

			cancel(nil)

			s.logger.TraceContext(parent, "repl run complete",
				slog.Int("statement_count", len(prog.Stmts)),
				slog.Bool("failed", err != nil))

			s.events <- doneMsg{err: err, elapsed: time.Since(began)}
		}()

		return nil
	}
}

// interrupt cancels the running program, if any.
func (s *session) interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel(ErrInterrupted)
	}
}

// answer returns a command that hands line to a waiting PERGUNTAR.
func (s *session) answer(line string) tea.Cmd {
	ctx := s.context()

	return func() tea.Msg {
		select {
		case s.lines <- line:
		case <-ctx.Done():
		}

		return nil
	}
}

func (s *session) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ctx
}

// askReader is the interpreter's input. Each read with nothing buffered
// asks the UI for a line and blocks until one is submitted or the program
// is interrupted.
type askReader struct{ s *session }

func (r askReader) Read(p []byte) (int, error) {
	s := r.s

	s.mu.Lock()
	if len(s.pending) > 0 {
		n := copy(p, s.pending)
		s.pending = s.pending[n:]
		s.mu.Unlock()

		return n, nil
	}

	ctx := s.ctx
	s.mu.Unlock()

	select {
	case s.events <- askMsg{}:
	case <-ctx.Done():
		return 0, context.Cause(ctx)
	}

	select {
	case line := <-s.lines:
		s.mu.Lock()
		defer s.mu.Unlock()

		s.pending = append(s.pending, line...)
		s.pending = append(s.pending, '\n')

		n := copy(p, s.pending)
		s.pending = s.pending[n:]

		return n, nil

	case <-ctx.Done():
		return 0, context.Cause(ctx)
	}
}

// outputWriter forwards program output to the UI.
type outputWriter struct{ events chan<- tea.Msg }

func (w outputWriter) Write(p []byte) (int, error) {
	w.events <- outputMsg{text: string(p)}

	return len(p), nil
}
