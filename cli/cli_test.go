package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/lusa/cli/cmd"
	"github.com/ardnew/lusa/lang"
	"github.com/ardnew/lusa/pkg"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "lusa-cli-test-*")
	if err != nil {
		panic(err)
	}

	// Keep configuration and cache out of the user's home directory.
	os.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	os.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	os.Setenv(pkg.EnvPath(), "")

	code := m.Run()

	os.RemoveAll(dir)
	os.Exit(code)
}

func run(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()

	var out, errOut strings.Builder

	err := Run(context.Background(), func(int) {}, args, WithStreams(cmd.Streams{
		In:  strings.NewReader(in),
		Out: &out,
		Err: &errOut,
	}))

	return out.String(), err
}

func TestRunDefaultCommand(t *testing.T) {
	dir := t.TempDir()

	script := filepath.Join(dir, "ola.lusa")
	if err := os.WriteFile(script, []byte(`EXIBIR "olá" CONCATENA " mundo";`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"path", []string{script}},
		{"explicit_run", []string{"run", script}},
		{"include", []string{"--include", dir, "ola"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, "", tt.args...)
			if err != nil {
				t.Fatal(err)
			}

			if got != "olá mundo\n" {
				t.Errorf("output = %q", got)
			}
		})
	}
}

func TestRunStdinWithPreset(t *testing.T) {
	got, err := run(t, "EXIBIR n VEZES 2;", "run", "--set", "n=4 + 1", "-")
	if err != nil {
		t.Fatal(err)
	}

	if got != "10\n" {
		t.Errorf("output = %q, want 10", got)
	}
}

func TestRunScriptError(t *testing.T) {
	_, err := run(t, "EXIBIR x;", "-")

	var lerr *lang.Error
	if !errors.As(err, &lerr) || !errors.Is(err, lang.ErrUndeclaredVariable) {
		t.Errorf("error = %v, want undeclared variable", err)
	}
}

func TestRunVersion(t *testing.T) {
	out, _ := run(t, "", "--version")

	if !strings.Contains(out, pkg.Version) {
		t.Errorf("version output = %q, want %q", out, pkg.Version)
	}
}

func TestRunInitWritesConfig(t *testing.T) {
	if _, err := run(t, "", "--log-level=warn", "init", "--force"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(configPath(baseConfig))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "log-level: warn") {
		t.Errorf("config.yaml missing log level:\n%s", data)
	}

	// The written file configures later runs.
	cfg := loadConfig(t, string(data))
	if cfg["log-level"] != "warn" {
		t.Errorf("reloaded log-level = %v", cfg["log-level"])
	}
}
