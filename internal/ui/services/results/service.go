package results

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"greptui/internal/domain"
	"greptui/internal/logging"
	"greptui/internal/ui/services/navigation"
)

// ParseLine splits a "path:line:content" record on its first two colons
func ParseLine(line string) (domain.MatchEntry, bool) {
	path, rest, ok := strings.Cut(line, ":")
	if !ok || path == "" {
		return domain.MatchEntry{}, false
	}
	num, text, ok := strings.Cut(rest, ":")
	if !ok {
		return domain.MatchEntry{}, false
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 || strings.HasPrefix(num, "+") {
		return domain.MatchEntry{}, false
	}
	return domain.MatchEntry{Path: path, Line: n, Text: text}, true
}

// Parse converts raw output lines, skipping the ones that do not parse
func Parse(lines []string) []domain.MatchEntry {
	entries := make([]domain.MatchEntry, 0, len(lines))
	for _, l := range lines {
		if e, ok := ParseLine(l); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Group splits entries into runs of consecutive entries with the same path.
// A path that shows up again after another file starts a new group. Within
// a group an entry whose line number does not exceed the previous one is
// dropped.
func Group(entries []domain.MatchEntry) []domain.FileGroup {
	var groups []domain.FileGroup
	for _, e := range entries {
		n := len(groups)
		if n == 0 || groups[n-1].Path != e.Path {
			groups = append(groups, domain.FileGroup{Path: e.Path, Entries: []domain.MatchEntry{e}})
			continue
		}
		g := &groups[n-1]
		if e.Line <= g.Entries[len(g.Entries)-1].Line {
			continue
		}
		g.Entries = append(g.Entries, e)
	}
	return groups
}

// Service owns the result tree, the selected match and the scroll window.
// A collapsed file shows only its header row; the selection then rests on
// that header and stands for the file's first match.
type Service struct {
	groups    []domain.FileGroup
	entries   []domain.MatchEntry // flattened in display order
	entryRow  []int               // row of each entry, the header row when collapsed
	entryGrp  []int               // group of each entry
	entryStop []int               // stop of each entry
	groupHead []int               // first entry of each group
	rows      []rowRef
	stops     []int // entries the selection can rest on, in display order
	selected  int   // index into entries, -1 for none

	collapsed map[string]bool

	nav *navigation.Service
	log *logrus.Entry
}

// NewService creates an empty result model
func NewService() *Service {
	return &Service{
		selected:  -1,
		collapsed: make(map[string]bool),
		nav:       navigation.NewService(),
		log:       logging.NewLogger("results"),
	}
}

// Rebuild replaces the tree with the parsed output and returns the number
// of entries kept. The selected match survives when the same path and line
// are still present; otherwise the first match is selected. Collapsed files
// stay collapsed while they still have matches.
func (s *Service) Rebuild(lines []string) int {
	prev, hadPrev := s.Selected()

	parsed := Parse(lines)
	groups := Group(parsed)
	present := make(map[string]bool, len(groups))
	for _, g := range groups {
		present[g.Path] = true
	}
	for path := range s.collapsed {
		if !present[path] {
			delete(s.collapsed, path)
		}
	}
	s.groups = groups
	s.layout()
	if skipped := len(lines) - len(s.entries); skipped > 0 {
		s.log.WithFields(logrus.Fields{"lines": len(lines), "skipped": skipped}).Debug("skipped unparseable output lines")
	}

	s.selected = -1
	if hadPrev {
		if i, ok := s.IndexOf(prev.Path, prev.Line); ok {
			s.selected = s.stops[s.entryStop[i]]
		}
	}
	s.nav.SetRowCount(len(s.rows))
	if s.selected < 0 {
		s.nav.Reset()
		if len(s.stops) > 0 {
			s.selected = s.stops[0]
		}
	}
	s.syncCursor()
	return len(s.entries)
}

// Clear empties the tree
func (s *Service) Clear() {
	s.Rebuild(nil)
}

// layout flattens the groups into rows and selection stops
func (s *Service) layout() {
	s.entries = s.entries[:0]
	s.entryRow = s.entryRow[:0]
	s.entryGrp = s.entryGrp[:0]
	s.entryStop = s.entryStop[:0]
	s.groupHead = s.groupHead[:0]
	s.rows = s.rows[:0]
	s.stops = s.stops[:0]
	for gi, g := range s.groups {
		header := len(s.rows)
		s.groupHead = append(s.groupHead, len(s.entries))
		s.rows = append(s.rows, rowRef{group: gi, entry: -1})
		folded := s.collapsed[g.Path]
		if folded {
			s.stops = append(s.stops, len(s.entries))
		}
		for _, e := range g.Entries {
			idx := len(s.entries)
			s.entryGrp = append(s.entryGrp, gi)
			if folded {
				s.entryRow = append(s.entryRow, header)
				s.entryStop = append(s.entryStop, len(s.stops)-1)
			} else {
				s.entryRow = append(s.entryRow, len(s.rows))
				s.entryStop = append(s.entryStop, len(s.stops))
				s.stops = append(s.stops, idx)
				s.rows = append(s.rows, rowRef{group: gi, entry: idx})
			}
			s.entries = append(s.entries, e)
		}
	}
}

// ToggleCollapse folds or unfolds the file of the selected match. It reports
// whether anything changed.
func (s *Service) ToggleCollapse() bool {
	if s.selected < 0 {
		return false
	}
	path := s.groups[s.entryGrp[s.selected]].Path
	if s.collapsed[path] {
		delete(s.collapsed, path)
	} else {
		s.collapsed[path] = true
	}
	s.relayout()
	return true
}

// ToggleCollapseAll folds every file, or unfolds them all when every file
// is already folded
func (s *Service) ToggleCollapseAll() bool {
	if len(s.groups) == 0 {
		return false
	}
	all := true
	for _, g := range s.groups {
		if !s.collapsed[g.Path] {
			all = false
			break
		}
	}
	for _, g := range s.groups {
		if all {
			delete(s.collapsed, g.Path)
		} else {
			s.collapsed[g.Path] = true
		}
	}
	s.relayout()
	return true
}

// IsCollapsed reports whether path is folded
func (s *Service) IsCollapsed(path string) bool {
	return s.collapsed[path]
}

func (s *Service) relayout() {
	s.layout()
	if s.selected >= 0 {
		s.selected = s.stops[s.entryStop[s.selected]]
	}
	s.nav.SetRowCount(len(s.rows))
	s.syncCursor()
}

// IndexOf finds the flattened index of the entry at path and line
func (s *Service) IndexOf(path string, line int) (int, bool) {
	for i, e := range s.entries {
		if e.Path == path && e.Line == line {
			return i, true
		}
	}
	return -1, false
}

// MoveSelection moves the selection without wrapping. It reports whether
// the selection changed.
func (s *Service) MoveSelection(dir Direction) bool {
	if len(s.stops) == 0 {
		return false
	}
	old := s.selected
	pos := s.entryStop[s.selected]
	last := len(s.stops) - 1

	switch dir {
	case DirectionNext:
		pos++
	case DirectionPrev:
		pos--
	case DirectionPageDown:
		pos += s.nav.PageSize()
	case DirectionPageUp:
		pos -= s.nav.PageSize()
	case DirectionFirst:
		pos = 0
	case DirectionLast:
		pos = last
	case DirectionNextFile:
		g := s.entryGrp[s.selected]
		if g+1 < len(s.groups) {
			pos = s.entryStop[s.firstOfGroup(g+1)]
		}
	case DirectionPrevFile:
		g := s.entryGrp[s.selected]
		first := s.firstOfGroup(g)
		if s.selected != first {
			pos = s.entryStop[first]
		} else if g > 0 {
			pos = s.entryStop[s.firstOfGroup(g-1)]
		}
	}

	if pos < 0 {
		pos = 0
	}
	if pos > last {
		pos = last
	}
	s.selected = s.stops[pos]
	s.syncCursor()
	return s.selected != old
}

func (s *Service) firstOfGroup(g int) int {
	return s.groupHead[g]
}

// syncCursor moves the viewport cursor to the selected entry, revealing its
// file header first when it is the group's first match
func (s *Service) syncCursor() {
	if s.selected < 0 {
		s.nav.MoveToIndex(0)
		return
	}
	row := s.entryRow[s.selected]
	if s.rows[row].entry >= 0 && row > 0 && s.rows[row-1].entry < 0 {
		s.nav.Reveal(row - 1)
	}
	s.nav.MoveToIndex(row)
}

// ScrollWindow sets the viewport height and returns the visible rows,
// scrolling minimally to keep the selection visible
func (s *Service) ScrollWindow(height int) Window {
	s.nav.SetViewportHeight(height)
	return s.Window()
}

// Window returns the visible rows for the current viewport
func (s *Service) Window() Window {
	start, end := s.nav.Window()
	w := Window{
		Offset: start,
		Above:  start,
		Below:  len(s.rows) - end,
		Rows:   make([]Row, 0, end-start),
	}
	if w.Below < 0 {
		w.Below = 0
	}
	selGroup := -1
	if s.selected >= 0 {
		selGroup = s.entryGrp[s.selected]
	}
	for r := start; r < end; r++ {
		ref := s.rows[r]
		g := s.groups[ref.group]
		if ref.entry < 0 {
			folded := s.collapsed[g.Path]
			w.Rows = append(w.Rows, Row{
				Kind:      RowFile,
				Path:      g.Path,
				Count:     len(g.Entries),
				Collapsed: folded,
				Selected:  folded && ref.group == selGroup,
			})
			continue
		}
		w.Rows = append(w.Rows, Row{
			Kind:     RowMatch,
			Path:     g.Path,
			Entry:    s.entries[ref.entry],
			Selected: ref.entry == s.selected,
		})
	}
	return w
}

// Selected returns the selected match. On a collapsed file this is the
// file's first match.
func (s *Service) Selected() (domain.MatchEntry, bool) {
	if s.selected < 0 || s.selected >= len(s.entries) {
		return domain.MatchEntry{}, false
	}
	return s.entries[s.selected], true
}

// SelectedIndex returns the flattened index of the selection, or -1
func (s *Service) SelectedIndex() int {
	return s.selected
}

// Groups returns the result tree
func (s *Service) Groups() []domain.FileGroup {
	return s.groups
}

// TotalEntries returns the number of matches
func (s *Service) TotalEntries() int {
	return len(s.entries)
}

// TotalFiles returns the number of file groups
func (s *Service) TotalFiles() int {
	return len(s.groups)
}

// ViewportHeight returns the current viewport height
func (s *Service) ViewportHeight() int {
	return s.nav.GetViewportHeight()
}
