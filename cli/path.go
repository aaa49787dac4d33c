package cli

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/ardnew/mung"

	"github.com/ardnew/lusa/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// DefaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	// Create base config directory
	err := os.MkdirAll(pkg.ConfigDir(), defaultDirMode)
	if err != nil {
		return err
	}

	// Create base cache directory
	return os.MkdirAll(pkg.CacheDir(), defaultDirMode)
}

// searchPath returns the directories searched for scripts given by name.
//
// Directories named by include come first, followed by those listed in the
// environment variable named by [pkg.EnvPath]. Duplicates and entries that
// are not existing directories are dropped.
func searchPath(include []string) []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(pkg.EnvPath())),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(include...),
	).String()

	return slices.DeleteFunc(filepath.SplitList(list), func(dir string) bool {
		return !isDir(dir)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
