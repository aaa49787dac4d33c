package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors returned by this package are derived from these with [Error.At],
// [Error.Wrap] and [Error.With]; errors.Is matches a derived error against
// the sentinel it came from.
var (
	ErrLexical             = NewError("lexical error")
	ErrSyntax              = NewError("syntax error")
	ErrUndeclaredVariable  = NewError("undeclared variable")
	ErrRedeclaredVariable  = NewError("redeclared variable")
	ErrTypeMismatch        = NewError("type mismatch")
	ErrDivisionByZero      = NewError("division by zero")
	ErrInvalidInput        = NewError("invalid input conversion")
	ErrUnsupportedOperator = NewError("unsupported operator")
	ErrReadSource          = NewError("failed to read source")
	ErrReadInput           = NewError("failed to read input")
	ErrWriteOutput         = NewError("failed to write output")
	ErrInvalidPreset       = NewError("invalid preset")
)

// Error represents an error with an optional source position and structured
// logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	pos   Position    // Zero when not tied to source
	attrs []slog.Attr // Attributes for structured logging
	base  *Error      // Sentinel this error was derived from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The message has the form "<line>:<col>: <msg>: <err>", omitting any part
// that is not set.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.pos.IsValid() {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || e.root() == t.root()
}

// Position returns the source position of e, if any.
func (e *Error) Position() Position { return e.pos }

// Message returns the message of e without position or cause.
func (e *Error) Message() string { return e.msg }

// Cause returns the error wrapped by e.
func (e *Error) Cause() error { return e.err }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos.IsValid() {
		attrs = append(attrs, slog.String("pos", e.pos.String()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// At creates a new Error tied to a source position.
func (e *Error) At(pos Position) *Error {
	d := e.derive()
	d.pos = pos

	return d
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	d := e.derive()
	d.attrs = newAttrs

	return d
}

func (e *Error) derive() *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		pos:   e.pos,
		attrs: e.attrs, // Share attrs
		base:  e.root(),
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// ParseError reports the diagnostics that prevented a source text from being
// parsed. It holds every lexical error found, or the first syntax error.
type ParseError struct {
	Diagnostics []*Error
	Source      string // The original source input
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return ErrSyntax.Error()
	}

	lines := strings.Split(e.Source, "\n")

	var buf strings.Builder

	for i, diag := range e.Diagnostics {
		if i > 0 {
			buf.WriteByte('\n')
		}

		buf.WriteString(diag.Error())
		writeSnippet(&buf, lines, diag.pos)
	}

	return buf.String()
}

// Unwrap returns the diagnostics so that errors.Is matches [ErrLexical] and
// [ErrSyntax].
func (e *ParseError) Unwrap() []error {
	errs := make([]error, len(e.Diagnostics))
	for i, diag := range e.Diagnostics {
		errs[i] = diag
	}

	return errs
}

// Incomplete reports whether parsing failed only because the source ended
// early, such as an open block or an unterminated text literal.
func (e *ParseError) Incomplete() bool {
	if len(e.Diagnostics) == 0 {
		return false
	}

	first := e.Diagnostics[0]
	if errors.Is(first, errUnterminated) {
		return true
	}

	return first.Is(ErrSyntax) && first.pos.Offset >= len(e.Source)
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.Diagnostics)+1)
	attrs = append(attrs, slog.Int("count", len(e.Diagnostics)))

	for i, diag := range e.Diagnostics {
		attrs = append(attrs, slog.Any(strconv.Itoa(i), diag))
	}

	return slog.GroupValue(attrs...)
}

// writeSnippet writes the source line at pos followed by a caret marking the
// column.
func writeSnippet(buf *strings.Builder, lines []string, pos Position) {
	if pos.Line < 1 || pos.Line > len(lines) {
		return
	}

	num := strconv.Itoa(pos.Line)

	buf.WriteString("\n  ")
	buf.WriteString(num)
	buf.WriteString(" | ")
	buf.WriteString(strings.TrimRight(lines[pos.Line-1], "\r"))
	buf.WriteString("\n  ")
	buf.WriteString(strings.Repeat(" ", len(num)+3))

	if pos.Column > 1 {
		buf.WriteString(strings.Repeat(" ", pos.Column-1))
	}

	buf.WriteByte('^')
}
