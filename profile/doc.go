// Package profile provides optional runtime profiling for the lusa
// interpreter using [github.com/pkg/profile].
//
// Profiling must be enabled at build time with the "pprof" build tag:
//
//	go build -tags pprof ./...
//
// Without the tag, [Modes] is empty and [Profiler.Start] is a no-op.
//
// A session writes one profile to the configured directory, named after
// its mode (cpu.pprof, mem.pprof, and so on):
//
//	stop := profile.Make(
//		profile.WithMode("cpu"),
//		profile.WithPath(dir),
//	).Start()
//	defer stop.Stop()
//
// Inspect the result with go tool pprof:
//
//	go tool pprof -http=: lusa cpu.pprof
//
// With the tag, [net/http/pprof] handlers are also registered on
// [net/http.DefaultServeMux].
package profile
