// Package history keeps committed queries across sessions.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"greptui/internal/domain"
)

// Entry is one committed query as stored on disk
type Entry struct {
	Pattern    string    `toml:"pattern"`
	AndPattern string    `toml:"and,omitempty"`
	NotPattern string    `toml:"not,omitempty"`
	Flags      []string  `toml:"flags,omitempty"`
	Paths      []string  `toml:"paths,omitempty"`
	At         time.Time `toml:"at"`
}

type file struct {
	Entries []Entry `toml:"entry"`
}

// Store reads and writes the history file
type Store struct {
	path  string
	limit int
}

// NewStore creates a store for path keeping at most limit entries. An empty
// path selects DefaultPath().
func NewStore(path string, limit int) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path, limit: limit}
}

// DefaultPath returns $XDG_STATE_HOME/greptui/history.toml
func DefaultPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "greptui", "history.toml")
}

// Path returns the history file
func (s *Store) Path() string {
	return s.path
}

// Limit returns the maximum number of entries kept
func (s *Store) Limit() int {
	return s.limit
}

// Load returns the stored entries, oldest first. A missing file is an empty
// history.
func (s *Store) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var f file
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("failed to parse history %s:%d:%d: %w", s.path, row, col, err)
		}
		return nil, fmt.Errorf("failed to parse history %s: %w", s.path, err)
	}
	return s.trim(f.Entries), nil
}

// Save replaces the history file with entries. The file is written next to
// the target and renamed over it.
func (s *Store) Save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := toml.Marshal(file{Entries: s.trim(entries)})
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.toml")
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}

func (s *Store) trim(entries []Entry) []Entry {
	if s.limit > 0 && len(entries) > s.limit {
		return entries[len(entries)-s.limit:]
	}
	return entries
}

// EntryFor converts a query to its stored form
func EntryFor(q domain.Query, at time.Time) Entry {
	e := Entry{
		Pattern:    q.Pattern,
		AndPattern: q.AndPattern,
		NotPattern: q.NotPattern,
		At:         at.UTC().Truncate(time.Second),
	}
	for _, f := range q.Flags.List() {
		e.Flags = append(e.Flags, f.String())
	}
	if len(q.Paths) > 0 {
		e.Paths = append([]string(nil), q.Paths...)
	}
	return e
}

// Query converts a stored entry back. Unknown flag names are skipped so a
// file written by a newer version still loads.
func (e Entry) Query() domain.Query {
	q := domain.Query{Pattern: e.Pattern, AndPattern: e.AndPattern, NotPattern: e.NotPattern}
	for _, name := range e.Flags {
		if f, ok := domain.FlagByName(name); ok {
			q.Flags = q.Flags.With(f)
		}
	}
	if len(e.Paths) > 0 {
		q.Paths = append([]string(nil), e.Paths...)
	}
	q.Cursor = q.RuneLen()
	return q
}

// Queries converts entries to queries, oldest first
func Queries(entries []Entry) []domain.Query {
	out := make([]domain.Query, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Query())
	}
	return out
}
