package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/log"
)

// Fmt parses a script and writes it back in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical lusa syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as abstract syntax tree."`
}

// parseScript reads and parses the named script.
func parseScript(ctx context.Context, name, format string) (*lang.Program, error) {
	src, path, err := readScript(ctx, name)
	if err != nil {
		return nil, err
	}

	prog, err := lang.Parse(ctx, src)
	if err != nil {
		log.DebugContext(ctx, "format failed",
			slog.String("script", path),
			slog.String("format", format))

		return nil, err
	}

	return prog, nil
}

// Native formats a script as canonical lusa syntax.
type Native struct {
	Indent int `default:"2" help:"Indent width of block contents." short:"i"`

	Script string `arg:"" default:"-" help:"Script file, name on the search path, or '-' for stdin." name:"script"`
}

// Run executes the fmt command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseScript(ctx, f.Script, "native")
	if err != nil {
		return err
	}

	return prog.Format(ctx, streamsFrom(ctx).Out, f.Indent)
}

// JSON formats the syntax tree of a script as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output." short:"i"`

	Script string `arg:"" default:"-" help:"Script file, name on the search path, or '-' for stdin." name:"script"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseScript(ctx, j.Script, "json")
	if err != nil {
		return err
	}

	return prog.FormatJSON(ctx, streamsFrom(ctx).Out, j.Indent)
}

// YAML formats the syntax tree of a script as YAML.
type YAML struct {
	Indent int  `default:"2" help:"Indent width for YAML output."     short:"i"`
	Flow   bool `            help:"Use flow style for collections."`

	Script string `arg:"" default:"-" help:"Script file, name on the search path, or '-' for stdin." name:"script"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseScript(ctx, y.Script, "yaml")
	if err != nil {
		return err
	}

	return prog.FormatYAML(ctx, streamsFrom(ctx).Out, y.Indent, y.Flow)
}

// AST prints the syntax tree of a script.
type AST struct {
	Script string `arg:"" default:"-" help:"Script file, name on the search path, or '-' for stdin." name:"script"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseScript(ctx, a.Script, "ast")
	if err != nil {
		return err
	}

	prog.Print(streamsFrom(ctx).Out)

	return nil
}
