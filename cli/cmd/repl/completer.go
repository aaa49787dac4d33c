package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/lusa/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "reset", "edit", "clear", "quit"}

// isWordBoundary reports whether r delimits a word for completion purposes:
// whitespace, the terminator, parentheses, the text delimiter and the
// characters of the symbolic operator aliases.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', ';', '(', ')', '"',
		'{', '}', '+', '-', '*', '/',
		'!', '=', '<', '>', '|', '&':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor position and its byte boundaries
// within input. It returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inText reports whether offset lies inside a text literal, where nothing
// is completed.
func inText(input string, offset int) bool {
	return strings.Count(input[:min(offset, len(input))], `"`)%2 == 1
}

// evalCandidates returns the keywords followed by the declared variable names
// that are not already keywords.
func evalCandidates(names []string) []string {
	candidates := lang.Keywords()

	for _, name := range names {
		if !slices.Contains(candidates, name) {
			candidates = append(candidates, name)
		}
	}

	return candidates
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best first, along with the word boundaries.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)
	if word == "" || m.busy && !m.asking {
		return nil, wordStart, wordEnd
	}

	var candidates []string

	switch {
	case m.mode == modeCtrl:
		candidates = ctrlCommands
	case m.asking || inText(input, wordStart):
		return nil, wordStart, wordEnd
	default:
		candidates = evalCandidates(m.names)
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1
		if i > 0 && used+entryWidth+ellipsisWidth > width && !last ||
			i > 0 && used+entryWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
