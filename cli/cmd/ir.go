package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/lusa/lang/llvm"
	"github.com/ardnew/lusa/log"
)

// IR compiles a script to LLVM IR.
type IR struct {
	Output string `default:"-" help:"Output file or '-' for stdout." short:"o"`

	Script string `arg:"" default:"-" help:"Script file, name on the search path, or '-' for stdin." name:"script"`
}

// Run executes the ir command.
func (c *IR) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseScript(ctx, c.Script, "ir")
	if err != nil {
		return err
	}

	w := streamsFrom(ctx).Out

	if c.Output != stdinSource {
		file, err := os.Create(c.Output)
		if err != nil {
			return ErrWriteOutput.
				With(slog.String("file", c.Output)).
				Wrap(err)
		}
		defer file.Close()

		w = file
	}

	err = llvm.Write(ctx, w, prog, llvm.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "wrote ir",
		slog.String("script", c.Script),
		slog.String("output", c.Output))

	return nil
}
