package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// Entry is a single history line and the mode it was entered in.
type Entry struct {
	Line string
	Mode inputMode
}

// prefix returns the persisted mode marker of e.
func (e Entry) prefix() string {
	if e.Mode == modeCtrl {
		return "C:"
	}

	return "E:"
}

// History manages input history with file persistence.
//
// Multi-line eval input is stored with its line breaks escaped so that every
// entry occupies one line of the history file.
type History struct {
	path    string
	entries []Entry
	mu      sync.RWMutex
}

// NewHistory creates a new History persisted at path.
// An empty path keeps history in memory only.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads history entries from the history file.
// A missing file is not an error.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry := Entry{Mode: modeEval}

		if s, ok := strings.CutPrefix(line, "C:"); ok {
			entry.Mode, line = modeCtrl, s
		} else if s, ok := strings.CutPrefix(line, "E:"); ok {
			line = s
		}

		entry.Line = unescapeLine(line)
		h.entries = append(h.entries, entry)
	}

	return scanner.Err()
}

// Add appends line to the history in the given mode. An existing identical
// entry is moved to the end instead of being duplicated.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	entry := Entry{Line: line, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if h.path == "" {
		return nil
	}

	if i >= 0 {
		return h.rewrite()
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.prefix() + escapeLine(entry.Line) + "\n")

	return err
}

// Entry retrieves a historic entry by index. Index 0 is the oldest entry.
func (h *History) Entry(i int) (Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return Entry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries, oldest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// rewrite replaces the history file with the current entries.
// Must be called with h.mu held.
func (h *History) rewrite() error {
	file, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	for _, entry := range h.entries {
		w.WriteString(entry.prefix())
		w.WriteString(escapeLine(entry.Line))
		w.WriteByte('\n')
	}

	return w.Flush()
}

var (
	lineEscaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	lineUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n")
)

func escapeLine(s string) string   { return lineEscaper.Replace(s) }
func unescapeLine(s string) string { return lineUnescaper.Replace(s) }
