package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/lusa/cli"
	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:])

	stop()

	if err != nil {
		// Script diagnostics are for the script author, not the log.
		var (
			perr *lang.ParseError
			lerr *lang.Error
		)

		if errors.As(err, &perr) || errors.As(err, &lerr) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			log.Error(
				"run failed",
				slog.Any("error", err),
			) // slog automatically uses LogValue()
		}

		os.Exit(1)
	}
}
