package domain

import "slices"

// Flag is a single git grep option the user can toggle
type Flag uint16

// Search flags. The first four are the core set shown in the legend;
// the rest mirror less common git grep options.
const (
	IgnoreCase Flag = 1 << iota
	FixedStrings
	WordRegexp
	InvertMatch
	ExtendedRegexp
	PerlRegexp
	Untracked
	NoIndex
	NoRecursive
)

// AllFlags lists every flag in legend order
var AllFlags = []Flag{
	IgnoreCase,
	FixedStrings,
	WordRegexp,
	InvertMatch,
	ExtendedRegexp,
	PerlRegexp,
	Untracked,
	NoIndex,
	NoRecursive,
}

// EngineFlags are mutually exclusive: at most one pattern engine may be active
var EngineFlags = []Flag{FixedStrings, ExtendedRegexp, PerlRegexp}

var flagNames = map[Flag]string{
	IgnoreCase:     "ignore-case",
	FixedStrings:   "fixed-strings",
	WordRegexp:     "word-regexp",
	InvertMatch:    "invert-match",
	ExtendedRegexp: "extended-regexp",
	PerlRegexp:     "perl-regexp",
	Untracked:      "untracked",
	NoIndex:        "no-index",
	NoRecursive:    "no-recursive",
}

// String returns the long git grep option name without dashes
func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return "unknown"
}

// FlagByName looks up a flag by its long option name
func FlagByName(name string) (Flag, bool) {
	for f, n := range flagNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// IsEngine reports whether f selects the pattern engine
func (f Flag) IsEngine() bool {
	return slices.Contains(EngineFlags, f)
}

// Flags is a set of Flag values
type Flags uint16

// Has reports whether f is set
func (fs Flags) Has(f Flag) bool { return fs&Flags(f) != 0 }

// With returns the set with f added
func (fs Flags) With(f Flag) Flags { return fs | Flags(f) }

// Without returns the set with f removed
func (fs Flags) Without(f Flag) Flags { return fs &^ Flags(f) }

// List returns the active flags in legend order
func (fs Flags) List() []Flag {
	var out []Flag
	for _, f := range AllFlags {
		if fs.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Engine returns the active engine flag, if any
func (fs Flags) Engine() (Flag, bool) {
	for _, f := range EngineFlags {
		if fs.Has(f) {
			return f, true
		}
	}
	return 0, false
}

// Query is the user-composed pattern plus search options.
// Cursor is a rune offset into Pattern, always within 0..RuneLen().
// AndPattern and NotPattern narrow the match: a line must also match
// AndPattern and must not match NotPattern. Empty means unused.
type Query struct {
	Pattern    string
	Cursor     int
	Flags      Flags
	AndPattern string
	NotPattern string
	Paths      []string // pathspecs given at startup
}

// RuneLen returns the pattern length in runes
func (q Query) RuneLen() int {
	return len([]rune(q.Pattern))
}

// Clone returns a deep copy safe to hand to another goroutine
func (q Query) Clone() Query {
	c := q
	if q.Paths != nil {
		c.Paths = slices.Clone(q.Paths)
	}
	return c
}

// Equal compares everything except the cursor
func (q Query) Equal(o Query) bool {
	return q.Pattern == o.Pattern && q.Flags == o.Flags &&
		q.AndPattern == o.AndPattern && q.NotPattern == o.NotPattern &&
		slices.Equal(q.Paths, o.Paths)
}

// SearchRequest is an immutable snapshot of a query taken at commit time
type SearchRequest struct {
	Query Query
	Seq   uint64
}

// OutcomeStatus tells whether a search produced output
type OutcomeStatus int

const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	if s == OutcomeFailed {
		return "failed"
	}
	return "success"
}

// SearchOutcome is the completed result of one SearchRequest
type SearchOutcome struct {
	Seq       uint64
	Status    OutcomeStatus
	Lines     []string // raw output, Success only
	Message   string   // Failed only
	Truncated bool     // output was cut at the configured maximum
}

// MatchEntry is one parsed line of search output
type MatchEntry struct {
	Path string
	Line int
	Text string
}

// FileGroup holds the matches of one file in ascending line order
type FileGroup struct {
	Path    string
	Entries []MatchEntry
}
