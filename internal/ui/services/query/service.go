// Package query holds the pure edit operations on a domain.Query. Every
// function takes a query by value and returns the edited copy; the caller
// decides whether an edit should trigger a search.
package query

import (
	"unicode"

	"greptui/internal/domain"
)

// InsertChar inserts r at the cursor and advances the cursor.
// Line breaks are ignored: the pattern is a single line.
func InsertChar(q domain.Query, r rune) domain.Query {
	if r == '\n' || r == '\r' {
		return normalize(q)
	}
	return InsertText(q, string(r))
}

// InsertText inserts s at the cursor, dropping line breaks
func InsertText(q domain.Query, s string) domain.Query {
	q = normalize(q)
	var ins []rune
	for _, r := range s {
		if r != '\n' && r != '\r' {
			ins = append(ins, r)
		}
	}
	if len(ins) == 0 {
		return q
	}

	runes := []rune(q.Pattern)
	out := make([]rune, 0, len(runes)+len(ins))
	out = append(out, runes[:q.Cursor]...)
	out = append(out, ins...)
	out = append(out, runes[q.Cursor:]...)

	q.Pattern = string(out)
	q.Cursor += len(ins)
	return q
}

// DeleteBeforeCursor removes the rune left of the cursor (backspace)
func DeleteBeforeCursor(q domain.Query) domain.Query {
	q = normalize(q)
	if q.Cursor == 0 {
		return q
	}
	runes := []rune(q.Pattern)
	q.Pattern = string(append(runes[:q.Cursor-1:q.Cursor-1], runes[q.Cursor:]...))
	q.Cursor--
	return q
}

// DeleteAfterCursor removes the rune under the cursor (delete)
func DeleteAfterCursor(q domain.Query) domain.Query {
	q = normalize(q)
	runes := []rune(q.Pattern)
	if q.Cursor >= len(runes) {
		return q
	}
	q.Pattern = string(append(runes[:q.Cursor:q.Cursor], runes[q.Cursor+1:]...))
	return q
}

// DeleteWordBeforeCursor removes the word left of the cursor along with any
// whitespace between it and the cursor
func DeleteWordBeforeCursor(q domain.Query) domain.Query {
	q = normalize(q)
	runes := []rune(q.Pattern)
	i := q.Cursor
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	q.Pattern = string(append(runes[:i:i], runes[q.Cursor:]...))
	q.Cursor = i
	return q
}

// DeleteToEnd removes everything right of the cursor
func DeleteToEnd(q domain.Query) domain.Query {
	q = normalize(q)
	q.Pattern = string([]rune(q.Pattern)[:q.Cursor])
	return q
}

// DeleteToStart removes everything left of the cursor
func DeleteToStart(q domain.Query) domain.Query {
	q = normalize(q)
	q.Pattern = string([]rune(q.Pattern)[q.Cursor:])
	q.Cursor = 0
	return q
}

// MoveCursor moves the cursor by delta runes, clamped to the pattern
func MoveCursor(q domain.Query, delta int) domain.Query {
	q.Cursor += delta
	return normalize(q)
}

// MoveToStart puts the cursor before the first rune
func MoveToStart(q domain.Query) domain.Query {
	q.Cursor = 0
	return q
}

// MoveToEnd puts the cursor after the last rune
func MoveToEnd(q domain.Query) domain.Query {
	q.Cursor = q.RuneLen()
	return q
}

// ToggleFlag flips f. Turning on a pattern engine while another engine is
// active does nothing.
func ToggleFlag(q domain.Query, f domain.Flag) domain.Query {
	q = normalize(q)
	if q.Flags.Has(f) {
		q.Flags = q.Flags.Without(f)
		return q
	}
	if f.IsEngine() {
		if _, active := q.Flags.Engine(); active {
			return q
		}
	}
	q.Flags = q.Flags.With(f)
	return q
}

// Clear empties the pattern. Flags and paths are kept.
func Clear(q domain.Query) domain.Query {
	q.Pattern = ""
	q.Cursor = 0
	return q
}

// Replace swaps in the patterns and flags of other, keeping paths, with the
// cursor at the end. Used when recalling history.
func Replace(q, other domain.Query) domain.Query {
	q.Pattern = other.Pattern
	q.AndPattern = other.AndPattern
	q.NotPattern = other.NotPattern
	q.Flags = other.Flags
	return MoveToEnd(q)
}

func normalize(q domain.Query) domain.Query {
	if q.Cursor < 0 {
		q.Cursor = 0
	}
	if n := q.RuneLen(); q.Cursor > n {
		q.Cursor = n
	}
	return q
}
