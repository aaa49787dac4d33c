package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lusa/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Streams are the standard streams of a command. Scripts read PERGUNTAR
// input from In and write EXIBIR and FALAR output to Out. Diagnostics go
// to Err.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type (
	streamsKey    struct{}
	searchPathKey struct{}
)

// WithStreams returns a new context.Context whose commands use s.
// Nil members of s fall back to the process streams.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// WithSearchPath returns a new context.Context containing the directories
// searched, in order, for scripts given by name.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// stdinSource is the special script name for reading from stdin.
const stdinSource = "-"

// locate resolves a script argument to a readable file path.
//
// An existing file is used as is. Otherwise a bare name (no directory part)
// is looked up in each directory of the search path, and a name without an
// extension also tries the name with the lusa extension appended.
func locate(ctx context.Context, name string) (string, error) {
	if name == stdinSource {
		return name, nil
	}

	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = append(candidates, name+pkg.Extension)
	}

	for _, c := range candidates {
		if isFile(c) {
			return c, nil
		}
	}

	if filepath.Base(name) == name {
		for _, dir := range searchPathFrom(ctx) {
			for _, c := range candidates {
				if path := filepath.Join(dir, c); isFile(path) {
					return path, nil
				}
			}
		}
	}

	return "", ErrScriptNotFound.
		With(slog.String("script", name)).
		Wrap(fs.ErrNotExist)
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// readScript locates and reads the named script. It returns the source text
// and the path it was read from.
func readScript(ctx context.Context, name string) (src, path string, err error) {
	path, err = locate(ctx, name)
	if err != nil {
		return "", "", err
	}

	var data []byte

	if path == stdinSource {
		data, err = io.ReadAll(streamsFrom(ctx).In)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return "", path, ErrReadScript.
			With(slog.String("script", path)).
			Wrap(err)
	}

	return string(data), path, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// errDuplicate reports a script that was already named by another argument.
var errDuplicate = errors.New("duplicate script")

// uniqueFile reports an error if the file at path has been seen before, and
// records it as seen otherwise. Symlinks are resolved and device/inode pairs
// are compared, so different spellings of one file are detected.
func uniqueFile(path string, seen map[fileKey]struct{}) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return err
	}

	key, ok := makeFileKey(info)
	if !ok {
		return nil
	}

	if _, exists := seen[key]; exists {
		return errDuplicate
	}

	seen[key] = struct{}{}

	return nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
