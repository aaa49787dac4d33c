package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used to colorize a record. Styles are bound to a
// renderer for the handler's writer, so output that is not a terminal is
// written without escape sequences.
type palette struct {
	key   lipgloss.Style
	text  lipgloss.Style
	num   lipgloss.Style
	yes   lipgloss.Style
	no    lipgloss.Style
	span  lipgloss.Style
	stamp lipgloss.Style
	fail  lipgloss.Style
	null  lipgloss.Style

	trace lipgloss.Style
	debug lipgloss.Style
	info  lipgloss.Style
	warn  lipgloss.Style
	error lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:   fg("8"),
		text:  fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		span:  fg("5"),
		stamp: fg("4"),
		fail:  fg("9"),
		null:  fg("8").Italic(true),

		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		error: fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.error
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// field is a flattened attribute ready to be written.
type field struct {
	key   string
	value slog.Value
	level bool
}

// prettyHandler writes colorized records either as a single line of
// key=value pairs or as an indented object.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  *palette
	json   bool
	prefix string
	fields []field
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return newPrettyHandler(w, opts, false)
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return newPrettyHandler(w, opts, true)
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, json bool) *prettyHandler {
	h := &prettyHandler{
		mu:    &sync.Mutex{},
		w:     w,
		style: newPalette(w),
		json:  json,
	}

	if opts != nil {
		h.opts = *opts
	}

	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.fields)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.builtin(fields, slog.Time(slog.TimeKey, r.Time), false)
	}

	fields = h.builtin(fields, slog.Any(slog.LevelKey, r.Level), true)

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			loc := src.File + ":" + strconv.Itoa(src.Line)
			fields = h.builtin(fields, slog.String(slog.SourceKey, loc), false)
		}
	}

	fields = h.builtin(fields, slog.String(slog.MessageKey, r.Message), false)
	fields = append(fields, h.fields...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.flatten(fields, h.prefix, a)

		return true
	})

	var buf bytes.Buffer
	if h.json {
		h.writeObject(&buf, fields, r.Level)
	} else {
		h.writeLine(&buf, fields, r.Level)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.fields = append([]field(nil), h.fields...)

	for _, a := range attrs {
		c.fields = h.flatten(c.fields, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// builtin appends one of the record's own attributes after passing it
// through ReplaceAttr.
func (h *prettyHandler) builtin(fields []field, a slog.Attr, level bool) []field {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, field{key: a.Key, value: a.Value.Resolve(), level: level})
}

// flatten appends a, expanding groups into dotted keys.
func (h *prettyHandler) flatten(fields []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return fields
		}

		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range group {
			fields = h.flatten(fields, prefix, g)
		}

		return fields
	}

	if h.opts.ReplaceAttr != nil {
		var groups []string
		if prefix != "" {
			groups = strings.Split(strings.TrimSuffix(prefix, "."), ".")
		}

		a = h.opts.ReplaceAttr(groups, a)
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, field{key: prefix + a.Key, value: a.Value})
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []field, level slog.Level) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(f.key))
		buf.WriteByte('=')
		buf.WriteString(h.render(f, level, quoteText))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []field, level slog.Level) {
	buf.WriteString("{\n")

	for i, f := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(strconv.Quote(f.key)))
		buf.WriteString(": ")
		buf.WriteString(h.render(f, level, strconv.Quote))
	}

	buf.WriteString("\n}\n")
}

// render formats the value of f. Strings are passed through quote.
func (h *prettyHandler) render(f field, level slog.Level, quote func(string) string) string {
	v := f.value
	if f.level {
		return h.style.level(level).Render(quote(v.String()))
	}

	switch v.Kind() {
	case slog.KindString:
		return h.style.text.Render(quote(v.String()))

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.style.num.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")

	case slog.KindDuration:
		return h.style.span.Render(quote(v.Duration().String()))

	case slog.KindTime:
		return h.style.stamp.Render(quote(v.Time().Format(time.RFC3339)))

	default:
		switch x := v.Any().(type) {
		case nil:
			return h.style.null.Render("null")
		case error:
			return h.style.fail.Render(quote(x.Error()))
		case fmt.Stringer:
			return h.style.text.Render(quote(x.String()))
		default:
			return h.style.text.Render(quote(fmt.Sprint(x)))
		}
	}
}

// quoteText quotes s only if it would otherwise be ambiguous in a line of
// key=value pairs.
func quoteText(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"\t\r\n") {
		return strconv.Quote(s)
	}

	return s
}
