package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/lusa/lang"
)

func runScript(t *testing.T, r *Run, in string) (string, error) {
	t.Helper()

	var out strings.Builder

	ctx := WithStreams(context.Background(), Streams{
		In:  strings.NewReader(in),
		Out: &out,
		Err: &strings.Builder{},
	})

	err := r.Run(ctx)

	return out.String(), err
}

// TestRunScript tests running scripts from files and presets.
func TestRunScript(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		src     string
		set     []lang.Preset
		input   string
		want    string
		wantErr error
	}{
		{
			name: "countdown",
			src: `GUARDAR 3 COMO n COM NUMERO;
ENQUANTO n MAIOR 0 INICIO
  EXIBIR n;
  n RECEBE n MENOS 1;
FIM`,
			want: "3\n2\n1\n",
		},
		{
			name:  "ask",
			src:   "GUARDAR 0 COMO n COM NUMERO; PERGUNTAR n; EXIBIR n VEZES 2;",
			input: "21\n",
			want:  "42\n",
		},
		{
			name: "preset",
			src:  "EXIBIR limite MAIS 1;",
			set:  []lang.Preset{{Name: "limite", Source: "2 * 5"}},
			want: "11\n",
		},
		{
			name:    "partial_output_kept",
			src:     `EXIBIR "antes"; EXIBIR 1 DIVIDIDO 0;`,
			want:    "antes\n",
			wantErr: lang.ErrDivisionByZero,
		},
		{
			name:    "syntax_error",
			src:     "EXIBIR 1",
			wantErr: lang.ErrSyntax,
		},
		{
			name:    "preset_error",
			src:     "EXIBIR 1;",
			set:     []lang.Preset{{Name: "x", Source: "("}},
			wantErr: lang.ErrInvalidPreset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, dir, tt.name+".lusa", tt.src)

			got, err := runScript(t, &Run{Script: path, Set: tt.set}, tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Run() output = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRunStdin tests that a script read from stdin leaves no input for
// PERGUNTAR.
func TestRunStdin(t *testing.T) {
	got, err := runScript(t, &Run{Script: "-"}, `FALAR "olá";`)
	if err != nil {
		t.Fatal(err)
	}

	if got != "olá\n" {
		t.Errorf("output = %q", got)
	}

	_, err = runScript(t, &Run{Script: "-"}, "GUARDAR 0 COMO n COM NUMERO; PERGUNTAR n;")
	if !errors.Is(err, lang.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

// TestRunNotFound tests the error for a missing script.
func TestRunNotFound(t *testing.T) {
	_, err := runScript(t, &Run{Script: "nao-existe"}, "")
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("error = %v, want ErrScriptNotFound", err)
	}
}
