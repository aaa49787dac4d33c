package lang

import (
	"context"
	"io"
	"os"

	"github.com/ardnew/lusa/log"
)

// options configures parsing and execution.
type options struct {
	logger log.Logger
	input  io.Reader
	output io.Writer
	env    *Environment
}

// Option configures parsing or evaluation behavior.
type Option func(*options)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInput sets the reader PERGUNTAR reads lines from. Defaults to
// [os.Stdin].
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.input = r
	}
}

// WithOutput sets the writer EXIBIR and FALAR write to. Defaults to
// [os.Stdout].
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithEnvironment makes the interpreter execute against env instead of a
// fresh environment.
func WithEnvironment(env *Environment) Option {
	return func(o *options) {
		o.env = env
	}
}

// applyDefaults sets default option values.
func applyDefaults(o *options) {
	o.input = os.Stdin
	o.output = os.Stdout
}

// applyOptions applies functional options over the defaults.
func applyOptions(opts ...Option) options {
	var o options

	applyDefaults(&o)

	for _, opt := range opts {
		opt(&o)
	}

	if o.input == nil {
		o.input = eofReader{}
	}

	if o.output == nil {
		o.output = io.Discard
	}

	if o.env == nil {
		o.env = NewEnvironment()
	}

	return o
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// Run parses src and executes it with a new [Interpreter].
func Run(ctx context.Context, src string, opts ...Option) error {
	prog, err := Parse(ctx, src, opts...)
	if err != nil {
		return err
	}

	return NewInterpreter(opts...).Run(ctx, prog)
}
