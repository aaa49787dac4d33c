package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

func TestWordBounds_Operators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "EXI", 3, "EXI", 0, 3},
		{"after_space", "EXIBIR idad", 11, "idad", 7, 11},
		{"after_paren", "QUANDO (x", 9, "x", 8, 9},
		{"after_plus", "a + id", 6, "id", 4, 6},
		{"after_terminator", "EXIBIR a;EX", 11, "EX", 9, 11},
		{"after_brace", "{EXIBIR", 7, "EXIBIR", 1, 7},
		{"after_comparison", "a >= to", 7, "to", 5, 7},
		{"after_quote", `"ola`, 4, "ola", 1, 4},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "CONCATENA", 3, "CONCATENA", 0, 9},
		{"at_start", "MAIS", 0, "MAIS", 0, 4},
		{"between_operators", "a*b", 2, "b", 2, 3},
		{"underscore", "total_geral", 11, "total_geral", 0, 11},
		{"accented", "SENÃO", len("SENÃO"), "SENÃO", 0, len("SENÃO")},
		{"cursor_past_end", "ab", 10, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestInText(t *testing.T) {
	tests := []struct {
		input  string
		offset int
		want   bool
	}{
		{`EXIBIR x`, 7, false},
		{`EXIBIR "ol`, 8, true},
		{`EXIBIR "ola" CONCATENA x`, 23, false},
		{`EXIBIR "a" CONCATENA "b`, 22, true},
	}

	for _, tt := range tests {
		if got := inText(tt.input, tt.offset); got != tt.want {
			t.Errorf("inText(%q, %d) = %v, want %v", tt.input, tt.offset, got, tt.want)
		}
	}
}

func TestEvalCandidates(t *testing.T) {
	got := evalCandidates([]string{"idade", "nome", "idade"})

	for _, want := range []string{"GUARDAR", "EXIBIR", "VERDADEIRO", "idade", "nome"} {
		if !slices.Contains(got, want) {
			t.Errorf("candidates missing %q", want)
		}
	}

	count := 0

	for _, c := range got {
		if c == "idade" {
			count++
		}
	}

	if count != 1 {
		t.Errorf("expected one %q candidate, found %d", "idade", count)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Find("a", []string{"alfa", "beta", "gama", "delta", "zeta"})
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}

	if bar := renderCandidateBar(nil, -1, false, 80); bar != "" {
		t.Errorf("empty matches rendered %q", bar)
	}

	if bar := renderCandidateBar(matches, -1, false, 0); bar != "" {
		t.Errorf("zero width rendered %q", bar)
	}

	wide := renderCandidateBar(matches, 0, true, 200)
	if strings.Contains(wide, "...") {
		t.Errorf("wide bar should not be ellipsized: %q", wide)
	}

	narrow := renderCandidateBar(matches, 0, true, 12)
	if !strings.Contains(narrow, "...") {
		t.Errorf("narrow bar should be ellipsized: %q", narrow)
	}

	if w := lipgloss.Width(narrow); w > 12+lipgloss.Width("  ...") {
		t.Errorf("narrow bar too wide: %d", w)
	}
}

func TestRenderCandidate_PlainText(t *testing.T) {
	match := fuzzy.Find("GR", []string{"GUARDAR"})[0]

	got := renderCandidate(match, false)
	if lipgloss.Width(got) != len("GUARDAR") {
		t.Errorf("rendered width = %d, want %d", lipgloss.Width(got), len("GUARDAR"))
	}
}
