// Package cmd implements the lusa subcommands: run, check, fmt, ir, repl,
// and init.
//
// Commands receive their kong context, standard streams, and script search
// path through [context.Context]; see [WithContext], [WithStreams], and
// [WithSearchPath].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
