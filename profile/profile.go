package profile

import "strings"

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler configures a file-based profiling session.
type Profiler struct {
	Mode  string // one of [Modes]
	Path  string // output directory
	Quiet bool   // suppress the profiler's own log lines
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling and returns a [Stopper] that ends it.
//
// If the binary was built without the pprof tag, or p.Mode is empty or
// unknown, Start returns a no-op. Both Start and Stop are always safely
// callable.
func (p Profiler) Start() Stopper {
	mode := strings.ToLower(strings.TrimSpace(p.Mode))
	if mode == "" {
		return ignore{}
	}

	return start(mode, p.Path, p.Quiet)
}

// Option modifies a [Profiler].
type Option func(Profiler) Profiler

// Make returns a Profiler with opts applied.
func Make(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// WithMode returns an option setting the profiling mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath returns an option setting the output directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet returns an option setting the quiet flag.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

type ignore struct{}

func (ignore) Stop() {}
