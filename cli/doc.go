// Package cli contains the command line interface for lusa.
//
// # Usage
//
//	lusa [flags] [script]           run a script (default command)
//	lusa check [script ...]         report diagnostics without running
//	lusa fmt [native|json|yaml|ast] [script]
//	lusa ir [-o file] [script]      compile to LLVM IR
//	lusa repl                       interactive session
//	lusa init [--force]             write the configuration file
//
// A script argument is a file path, a name looked up in the search path, or
// "-" for stdin. The search path holds each --include directory followed by
// the directories listed in the LUSA_PATH environment variable. A name
// without an extension also matches the name with ".lusa" appended.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (for example ~/.config/lusa/config.yaml). Keys are flag names;
// nested mappings join their keys with a hyphen:
//
//	log:
//	  level: debug
//	include:
//	  - ~/lusa/lib
//
// A config.json file in the same directory is also read. Command-line flags
// override both. Running "lusa init" writes config.yaml from the current
// flag values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o lusa .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/lusa/pprof)
package cli
