package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// TestCheckRun tests reporting of valid, invalid, and duplicate scripts.
func TestCheckRun(t *testing.T) {
	dir := t.TempDir()

	good := writeScript(t, dir, "good.lusa", "GUARDAR 1 COMO x COM NUMERO;")
	bad := writeScript(t, dir, "bad.lusa", "GUARDAR 1 COMO x COM;")
	lexical := writeScript(t, dir, "lexical.lusa", "EXIBIR 1 @ 2; EXIBIR 3 # 4;")

	tests := []struct {
		name      string
		scripts   []string
		quiet     bool
		wantOut   []string
		wantErr   []string
		wantFail  bool
		wantLines int
	}{
		{
			name:      "valid",
			scripts:   []string{good},
			wantOut:   []string{good + ": ok"},
			wantLines: 1,
		},
		{
			name:      "quiet",
			scripts:   []string{good},
			quiet:     true,
			wantLines: 0,
		},
		{
			name:      "duplicate_skipped",
			scripts:   []string{good, good},
			wantOut:   []string{good + ": ok"},
			wantLines: 1,
		},
		{
			name:     "syntax_error",
			scripts:  []string{good, bad},
			wantOut:  []string{good + ": ok"},
			wantErr:  []string{bad + ":1:"},
			wantFail: true,
		},
		{
			name:     "lexical_errors",
			scripts:  []string{lexical},
			wantErr:  []string{"1:10", "1:24"},
			wantFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut strings.Builder

			ctx := WithStreams(context.Background(), Streams{Out: &out, Err: &errOut})

			err := (&Check{Scripts: tt.scripts, Quiet: tt.quiet}).Run(ctx)

			if tt.wantFail != errors.Is(err, ErrCheckFailed) {
				t.Fatalf("Check.Run() error = %v, wantFail %v", err, tt.wantFail)
			}

			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, out.String())
				}
			}

			for _, want := range tt.wantErr {
				if !strings.Contains(errOut.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, errOut.String())
				}
			}

			if !tt.wantFail {
				if got := strings.Count(out.String(), "\n"); got != tt.wantLines {
					t.Errorf("stdout has %d lines, want %d:\n%s", got, tt.wantLines, out.String())
				}
			}
		})
	}
}
