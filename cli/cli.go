package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lusa/cli/cmd"
	"github.com/ardnew/lusa/log"
	"github.com/ardnew/lusa/pkg"
)

// CLI is the top-level command-line interface for lusa.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Include []string `help:"Directory searched for scripts given by name (repeatable)." placeholder:"DIR" short:"I" type:"path"`

	Run   cmd.Run   `cmd:"" default:"withargs" help:"Run a script (default)."`
	Check cmd.Check `cmd:""                    help:"Check scripts for errors without running them."`
	Fmt   cmd.Fmt   `cmd:""                    help:"Format a script."`
	IR    cmd.IR    `cmd:"" name:"ir"          help:"Compile a script to LLVM IR."`
	Repl  cmd.Repl  `cmd:""                    help:"Start an interactive session."`
	Init  cmd.Init  `cmd:""                    help:"Initialize configuration file."`
}

// Option configures [Run].
type Option func(*options)

type options struct {
	streams cmd.Streams
}

// WithStreams sets the standard streams used by commands. Help and usage
// text also go to s.Out and s.Err when both are set.
func WithStreams(s cmd.Streams) Option {
	return func(o *options) { o.streams = s }
}

// Run executes the lusa CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args []string,
	opts ...Option,
) error {
	var (
		cli CLI
		o   options
	)

	for _, opt := range opts {
		opt(&o)
	}

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	parserOpts := []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath("config.json")),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	}

	if o.streams.Out != nil && o.streams.Err != nil {
		parserOpts = append(parserOpts, kong.Writers(o.streams.Out, o.streams.Err))
	}

	parser, err := kong.New(&cli, parserOpts...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	dirs := searchPath(cli.Include)

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithStreams(ctx, o.streams)
	ctx = cmd.WithSearchPath(ctx, dirs)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	log.TraceContext(ctx, "search path", slog.Any("dirs", dirs))

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}
