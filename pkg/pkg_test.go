package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("expected Version to be %q, got %q", content, Version)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("expected at least one author")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/usr/local/bin/lusa", "lusa"},
		{"/tmp/__debug_bin3012", Name},
		{"/tmp/go-build/b001/cli.test", Name},
		{"/opt/.hidden", "hidden"},
		{"C:/bin/lusa.exe", "lusa"},
		{"/", Name},
	}

	for _, tt := range tests {
		if got := prefixOf(tt.path); got != tt.want {
			t.Errorf("prefixOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestEnvPath(t *testing.T) {
	if got := EnvPath(); got != "LUSA_PATH" {
		t.Errorf("expected LUSA_PATH, got %q", got)
	}
}

func TestUserDir(t *testing.T) {
	dir := t.TempDir()

	ok := func() (string, error) { return dir, nil }
	if got := userDir(ok, ".config"); got != dir {
		t.Errorf("expected %q, got %q", dir, got)
	}

	t.Setenv("HOME", dir)

	fail := func() (string, error) { return "", errors.New("unset") }
	if got, want := userDir(fail, ".cache"), filepath.Join(dir, ".cache"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDirs(t *testing.T) {
	for name, dir := range map[string]string{
		"config": ConfigDir(),
		"cache":  CacheDir(),
	} {
		if filepath.Base(dir) != Prefix() {
			t.Errorf("%s dir %q must end with %q", name, dir, Prefix())
		}
	}
}
