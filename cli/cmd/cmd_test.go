package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeScript creates a script file in dir and returns its path.
func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// TestStreamsDefault tests that missing streams fall back to the process
// streams.
func TestStreamsDefault(t *testing.T) {
	s := streamsFrom(context.Background())

	if s.In != os.Stdin || s.Out != os.Stdout || s.Err != os.Stderr {
		t.Errorf("streamsFrom(empty) = %+v, want process streams", s)
	}

	var out strings.Builder

	s = streamsFrom(WithStreams(context.Background(), Streams{Out: &out}))
	if s.Out != &out {
		t.Error("WithStreams did not keep the given output")
	}

	if s.In != os.Stdin {
		t.Error("WithStreams did not default the missing input")
	}
}

// TestLocate tests script resolution against the working directory and the
// search path.
func TestLocate(t *testing.T) {
	dir := t.TempDir()
	lib := t.TempDir()

	direct := writeScript(t, dir, "direct.lusa", "")
	writeScript(t, lib, "soma.lusa", "")
	writeScript(t, lib, "plain", "")

	ctx := WithSearchPath(context.Background(), []string{t.TempDir(), lib})

	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr bool
	}{
		{name: "stdin", arg: "-", want: "-"},
		{name: "existing_path", arg: direct, want: direct},
		{name: "extension_appended", arg: strings.TrimSuffix(direct, ".lusa"), want: direct},
		{name: "search_path", arg: "soma.lusa", want: filepath.Join(lib, "soma.lusa")},
		{name: "search_path_extension", arg: "soma", want: filepath.Join(lib, "soma.lusa")},
		{name: "search_path_no_extension", arg: "plain", want: filepath.Join(lib, "plain")},
		{name: "missing", arg: "nada", wantErr: true},
		{name: "directory_not_searched", arg: filepath.Join("sub", "soma.lusa"), wantErr: true},
		{name: "directory_is_not_script", arg: lib, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locate(ctx, tt.arg)

			if tt.wantErr {
				if !errors.Is(err, ErrScriptNotFound) {
					t.Errorf("locate(%q) error = %v, want ErrScriptNotFound", tt.arg, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("locate(%q) unexpected error: %v", tt.arg, err)
			}

			if got != tt.want {
				t.Errorf("locate(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

// TestReadScriptStdin tests reading a script from the configured input.
func TestReadScriptStdin(t *testing.T) {
	ctx := WithStreams(context.Background(), Streams{
		In: strings.NewReader("EXIBIR 1;"),
	})

	src, path, err := readScript(ctx, "-")
	if err != nil {
		t.Fatal(err)
	}

	if src != "EXIBIR 1;" || path != "-" {
		t.Errorf("readScript(-) = %q, %q", src, path)
	}
}

// TestUniqueFile tests that different spellings of one file are detected.
func TestUniqueFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "a.lusa", "")
	other := writeScript(t, dir, "b.lusa", "")

	link := filepath.Join(dir, "link.lusa")
	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	seen := make(map[fileKey]struct{})

	if err := uniqueFile(path, seen); err != nil {
		t.Fatalf("first file: %v", err)
	}

	if err := uniqueFile(other, seen); err != nil {
		t.Fatalf("second file: %v", err)
	}

	for _, dup := range []string{path, link, filepath.Join(dir, ".", "a.lusa")} {
		if err := uniqueFile(dup, seen); !errors.Is(err, errDuplicate) {
			t.Errorf("uniqueFile(%q) = %v, want errDuplicate", dup, err)
		}
	}
}
