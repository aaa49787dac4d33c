package cmd

import (
	"context"

	"github.com/ardnew/lusa/cli/cmd/repl"
	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/log"
)

// Repl starts an interactive session.
type Repl struct {
	Set []lang.Preset `help:"Declare a variable from an expression before the first prompt (name=expression)." placeholder:"NAME=EXPR" sep:"none" short:"s"`

	History string `default:"${cache}" help:"Directory holding the input history. Empty keeps history in memory only."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	return repl.Run(ctx, r.History, log.Default(), r.Set)
}
