package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the base prefix string used to construct the path to the
// configuration directory and the prefix for environment variable identifiers.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with [Name]
//   - "*.test" (go test binaries): replaced with [Name]
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		return prefixOf(id)
	},
)

// generated names the prefix cannot be derived from.
var generated = []*regexp.Regexp{
	regexp.MustCompile(`^__debug_bin\d*$`), // dlv default output
	regexp.MustCompile(`\.test$`),          // go test binaries
}

func prefixOf(path string) string {
	base := strings.TrimLeft(filepath.Base(path), "."+string(filepath.Separator))

	for _, rex := range generated {
		if rex.MatchString(base) {
			return Name
		}
	}

	if id := strings.TrimSuffix(base, filepath.Ext(base)); id != "" {
		return id
	}

	return Name
}

// EnvPath returns the name of the environment variable holding the script
// search path, for example LUSA_PATH.
func EnvPath() string {
	return strings.ToUpper(Name) + "_PATH"
}

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserConfigDir, ".config"), Prefix())
	},
)

// CacheDir returns the cache directory path used for transient files such as
// REPL history and profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserCacheDir, ".cache"), Prefix())
	},
)

// userDir returns the directory reported by fn, falling back to a hidden
// directory in the home directory, then to the working directory.
func userDir(fn func() (string, error), hidden string) string {
	if dir, err := fn(); err == nil {
		return dir
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, hidden)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}
