// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("script loaded", slog.String("file", path))
//	logger.Error("run failed", slog.Any("error", err))
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The package-level functions use a default logger writing to
// [DefaultOutput], which [Config] reconfigures.
//
// # Supported Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace is used by the interpreter to report
// every statement it executes.
//
// # Output Formats
//
// Two output formats are supported: [FormatText] (default) and [FormatJSON].
// With [WithPretty] enabled, both are colorized using lipgloss styles when
// the output is a terminal.
package log
