package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/log"
)

// Check parses scripts without running them and reports their diagnostics.
type Check struct {
	Quiet bool `help:"Do not print the name of each valid script." short:"q"`

	Scripts []string `arg:"" default:"-" help:"Script files, names on the search path, or '-' for stdin." name:"script"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	streams := streamsFrom(ctx)
	seen := make(map[fileKey]struct{})
	checked, failed := 0, 0

	for _, name := range c.Scripts {
		src, path, err := readScript(ctx, name)
		if err != nil {
			return err
		}

		if path != stdinSource {
			if err := uniqueFile(path, seen); errors.Is(err, errDuplicate) {
				log.DebugContext(ctx, "skip duplicate script",
					slog.String("script", path))

				continue
			}
		}

		checked++

		if _, err := lang.Parse(ctx, src); err != nil {
			failed++

			fmt.Fprintf(streams.Err, "%s:%v\n", path, err)

			continue
		}

		if !c.Quiet {
			fmt.Fprintf(streams.Out, "%s: ok\n", path)
		}
	}

	if failed > 0 {
		return ErrCheckFailed.
			With(slog.Int("failed", failed)).
			Wrap(fmt.Errorf("%d of %d scripts have errors", failed, checked))
	}

	return nil
}
