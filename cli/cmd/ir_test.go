package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/lusa/lang/llvm"
)

// TestIRRun tests writing IR to stdout and to a file.
func TestIRRun(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "soma.lusa", "GUARDAR 1 MAIS 2 COMO x COM NUMERO; EXIBIR x;")

	var out strings.Builder

	ctx := WithStreams(context.Background(), Streams{Out: &out})

	if err := (&IR{Script: script, Output: "-"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), "define i32 @main()") {
		t.Errorf("stdout missing main:\n%s", out.String())
	}

	file := filepath.Join(dir, "soma.ll")

	if err := (&IR{Script: script, Output: file}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != out.String() {
		t.Error("file output differs from stdout output")
	}
}

// TestIRUnsupported tests that TEXTO variables are rejected.
func TestIRUnsupported(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "texto.lusa", `GUARDAR "a" COMO s COM TEXTO;`)

	ctx := WithStreams(context.Background(), Streams{Out: &strings.Builder{}})

	err := (&IR{Script: script, Output: "-"}).Run(ctx)
	if !errors.Is(err, llvm.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}
