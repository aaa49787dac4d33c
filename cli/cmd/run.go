package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/log"
)

// Run parses a script and executes it.
type Run struct {
	Set []lang.Preset `help:"Declare a variable from an expression before the script runs (name=expression)." placeholder:"NAME=EXPR" sep:"none" short:"s"`

	Script string `arg:"" default:"-" help:"Script file, name on the search path, or '-' for stdin." name:"script"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, path, err := readScript(ctx, r.Script)
	if err != nil {
		return err
	}

	logger := log.Default().With(slog.String("script", path))

	prog, err := lang.Parse(ctx, src, lang.WithLogger(logger))
	if err != nil {
		return err
	}

	streams := streamsFrom(ctx)

	// A script read from stdin has consumed it, so PERGUNTAR sees end of input.
	interp := lang.NewInterpreter(
		lang.WithLogger(logger),
		lang.WithInput(streams.In),
		lang.WithOutput(streams.Out),
	)

	if err := lang.DeclarePresets(ctx, interp.Environment(), r.Set,
		lang.WithLogger(logger)); err != nil {
		return err
	}

	return interp.Run(ctx, prog)
}
