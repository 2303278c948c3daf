package results

import "greptui/internal/domain"

// Direction moves the selection through the flattened match list
type Direction string

const (
	DirectionNext     Direction = "next"
	DirectionPrev     Direction = "prev"
	DirectionPageDown Direction = "pagedown"
	DirectionPageUp   Direction = "pageup"
	DirectionFirst    Direction = "first"
	DirectionLast     Direction = "last"
	DirectionNextFile Direction = "nextfile"
	DirectionPrevFile Direction = "prevfile"
)

// RowKind tells file headers from match lines
type RowKind int

const (
	RowFile RowKind = iota
	RowMatch
)

// Row is one visible line of the result list
type Row struct {
	Kind      RowKind
	Path      string
	Count     int               // RowFile: matches in the file
	Collapsed bool              // RowFile: the matches are hidden
	Entry     domain.MatchEntry // RowMatch only
	Selected  bool
}

// Window is the visible slice of rows plus how many rows are hidden
// above and below it
type Window struct {
	Rows   []Row
	Offset int
	Above  int
	Below  int
}

// rowRef locates a row: entry is -1 for the file header
type rowRef struct {
	group int
	entry int
}
