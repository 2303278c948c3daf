package results

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greptui/internal/domain"
)

var todoOutput = []string{
	"a.rs:3:// TODO fix",
	"a.rs:9:// TODO later",
	"b.rs:1:TODO: x",
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want domain.MatchEntry
		ok   bool
	}{
		{"a.rs:3:// TODO fix", domain.MatchEntry{Path: "a.rs", Line: 3, Text: "// TODO fix"}, true},
		{"a.go:12:x := map[string]int{\"a:b\": 1}", domain.MatchEntry{Path: "a.go", Line: 12, Text: "x := map[string]int{\"a:b\": 1}"}, true},
		{"empty.txt:4:", domain.MatchEntry{Path: "empty.txt", Line: 4, Text: ""}, true},
		{"no colons", domain.MatchEntry{}, false},
		{"path:only", domain.MatchEntry{}, false},
		{"path:x:not a number", domain.MatchEntry{}, false},
		{"path:0:zero", domain.MatchEntry{}, false},
		{"path:+3:plus", domain.MatchEntry{}, false},
		{":3:no path", domain.MatchEntry{}, false},
		{"", domain.MatchEntry{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebuildTodoScenario(t *testing.T) {
	s := NewService()
	n := s.Rebuild(todoOutput)

	assert.Equal(t, 3, n)
	assert.Equal(t, []domain.FileGroup{
		{Path: "a.rs", Entries: []domain.MatchEntry{
			{Path: "a.rs", Line: 3, Text: "// TODO fix"},
			{Path: "a.rs", Line: 9, Text: "// TODO later"},
		}},
		{Path: "b.rs", Entries: []domain.MatchEntry{
			{Path: "b.rs", Line: 1, Text: "TODO: x"},
		}},
	}, s.Groups())

	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "a.rs", sel.Path)
	assert.Equal(t, 3, sel.Line)
	assert.Equal(t, 2, s.TotalFiles())
}

func TestRebuildEmptyOutput(t *testing.T) {
	s := NewService()
	s.Rebuild(todoOutput)

	assert.Equal(t, 0, s.Rebuild(nil))
	assert.Empty(t, s.Groups())
	assert.Equal(t, -1, s.SelectedIndex())
	_, ok := s.Selected()
	assert.False(t, ok)

	w := s.ScrollWindow(10)
	assert.Empty(t, w.Rows)
	assert.Zero(t, w.Above)
	assert.Zero(t, w.Below)
}

func TestRebuildSkipsMalformedLines(t *testing.T) {
	s := NewService()
	n := s.Rebuild([]string{"garbage", "a.rs:3:ok", "Binary file x matches", "a.rs:nope:bad"})

	assert.Equal(t, 1, n)
	require.Len(t, s.Groups(), 1)
	assert.Equal(t, "a.rs", s.Groups()[0].Path)
}

func TestGroupKeepsLinesStrictlyIncreasing(t *testing.T) {
	groups := Group([]domain.MatchEntry{
		{Path: "a", Line: 5},
		{Path: "a", Line: 5},
		{Path: "a", Line: 2},
		{Path: "a", Line: 7},
		{Path: "b", Line: 1},
	})

	require.Len(t, groups, 2)
	var lines []int
	for _, e := range groups[0].Entries {
		lines = append(lines, e.Line)
	}
	assert.Equal(t, []int{5, 7}, lines)
	assert.Equal(t, "b", groups[1].Path)
}

func TestGroupStartsNewGroupWhenPathReturns(t *testing.T) {
	groups := Group([]domain.MatchEntry{
		{Path: "a", Line: 5},
		{Path: "b", Line: 1},
		{Path: "a", Line: 2},
	})

	require.Len(t, groups, 3)
	assert.Equal(t, []string{"a", "b", "a"}, []string{groups[0].Path, groups[1].Path, groups[2].Path})
	assert.Equal(t, 2, groups[2].Entries[0].Line, "a lower line in a later run is kept")
}

func TestRebuildKeepsEveryEntryOfRepeatedPath(t *testing.T) {
	s := NewService()
	n := s.Rebuild([]string{"a:5:x", "b:1:y", "a:2:z"})

	assert.Equal(t, 3, n)
	assert.Equal(t, 3, s.TotalFiles())

	s.MoveSelection(DirectionNextFile)
	s.MoveSelection(DirectionNextFile)
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, domain.MatchEntry{Path: "a", Line: 2, Text: "z"}, sel)
}

func TestRebuildPreservesSelectionIdentity(t *testing.T) {
	s := NewService()
	s.Rebuild([]string{"fileA:2:x", "fileA:10:target", "fileB:1:y"})
	s.MoveSelection(DirectionNext)
	sel, _ := s.Selected()
	require.Equal(t, 10, sel.Line)
	require.Equal(t, 1, s.SelectedIndex())

	// new matches before the selection shift its flattened index
	s.Rebuild([]string{"aaa:1:new", "aaa:4:new", "fileA:2:x", "fileA:7:new", "fileA:10:target changed text"})

	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "fileA", sel.Path)
	assert.Equal(t, 10, sel.Line)
	assert.Equal(t, "target changed text", sel.Text)
	assert.Equal(t, 4, s.SelectedIndex())
}

func TestRebuildResetsSelectionWhenEntryGone(t *testing.T) {
	s := NewService()
	s.Rebuild(todoOutput)
	s.MoveSelection(DirectionLast)

	s.Rebuild([]string{"c.rs:5:other", "c.rs:6:more"})
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, domain.MatchEntry{Path: "c.rs", Line: 5, Text: "other"}, sel)
}

func TestMoveSelectionClampsWithoutWrapping(t *testing.T) {
	s := NewService()
	s.Rebuild(todoOutput)

	assert.False(t, s.MoveSelection(DirectionPrev))
	assert.Equal(t, 0, s.SelectedIndex())

	assert.True(t, s.MoveSelection(DirectionNext))
	assert.True(t, s.MoveSelection(DirectionNext))
	assert.False(t, s.MoveSelection(DirectionNext))
	assert.Equal(t, 2, s.SelectedIndex())
}

func TestMoveSelectionOnEmptyTree(t *testing.T) {
	s := NewService()
	for _, d := range []Direction{DirectionNext, DirectionPrev, DirectionLast, DirectionNextFile} {
		assert.False(t, s.MoveSelection(d))
	}
	assert.Equal(t, -1, s.SelectedIndex())
}

func TestMoveSelectionByFile(t *testing.T) {
	s := NewService()
	s.Rebuild([]string{"a:1:x", "a:2:x", "b:1:x", "b:2:x", "c:1:x"})

	s.MoveSelection(DirectionNextFile)
	assert.Equal(t, 2, s.SelectedIndex())
	s.MoveSelection(DirectionNextFile)
	assert.Equal(t, 4, s.SelectedIndex())
	assert.False(t, s.MoveSelection(DirectionNextFile))

	s.MoveSelection(DirectionPrev)
	s.MoveSelection(DirectionPrevFile)
	assert.Equal(t, 2, s.SelectedIndex(), "first jumps to start of current file")
	s.MoveSelection(DirectionPrevFile)
	assert.Equal(t, 0, s.SelectedIndex())
}

func manyLines(files, perFile int) []string {
	var out []string
	for f := 0; f < files; f++ {
		for l := 1; l <= perFile; l++ {
			out = append(out, fmt.Sprintf("f%02d.txt:%d:line %d", f, l, l))
		}
	}
	return out
}

func TestScrollWindowKeepsSelectionVisible(t *testing.T) {
	s := NewService()
	s.Rebuild(manyLines(3, 5)) // 18 rows: 3 headers + 15 entries

	w := s.ScrollWindow(4)
	require.Len(t, w.Rows, 4)
	assert.Equal(t, RowFile, w.Rows[0].Kind)
	assert.True(t, w.Rows[1].Selected)
	assert.Zero(t, w.Above)
	assert.Equal(t, 14, w.Below)

	// rows 1..3 are visible; moving to row 4 scrolls by exactly one
	s.MoveSelection(DirectionNext)
	s.MoveSelection(DirectionNext)
	assert.Zero(t, s.Window().Offset)
	s.MoveSelection(DirectionNext)
	w = s.Window()
	assert.Equal(t, 1, w.Offset)
	assert.True(t, w.Rows[3].Selected)

	// moving back up inside the window does not scroll
	s.MoveSelection(DirectionPrev)
	assert.Equal(t, 1, s.Window().Offset)
}

func TestScrollWindowRevealsFileHeader(t *testing.T) {
	s := NewService()
	s.Rebuild(manyLines(3, 5))
	s.ScrollWindow(4)

	for i := 0; i < 5; i++ {
		s.MoveSelection(DirectionNext)
	}
	// selection is the first entry of f01 at row 7; its header is row 6
	w := s.Window()
	sel, _ := s.Selected()
	assert.Equal(t, "f01.txt", sel.Path)
	assert.Equal(t, 1, sel.Line)
	assert.Equal(t, 4, w.Offset)
	assert.Equal(t, RowFile, w.Rows[2].Kind)
	assert.Equal(t, "f01.txt", w.Rows[2].Path)
	assert.Equal(t, 5, w.Rows[2].Count)
	assert.True(t, w.Rows[3].Selected)
}

func TestScrollWindowResizeKeepsSelection(t *testing.T) {
	s := NewService()
	s.Rebuild(manyLines(1, 50))
	s.ScrollWindow(10)
	s.MoveSelection(DirectionLast)

	w := s.ScrollWindow(5)
	assert.True(t, w.Rows[len(w.Rows)-1].Selected)
	assert.Zero(t, w.Below)
	assert.Equal(t, 46, w.Above)
}

func TestPageMoves(t *testing.T) {
	s := NewService()
	s.Rebuild(manyLines(1, 30))
	s.ScrollWindow(10)

	s.MoveSelection(DirectionPageDown)
	assert.Equal(t, 9, s.SelectedIndex())
	s.MoveSelection(DirectionPageUp)
	assert.Equal(t, 0, s.SelectedIndex())
	s.MoveSelection(DirectionLast)
	s.MoveSelection(DirectionPageDown)
	assert.Equal(t, 29, s.SelectedIndex())
}

func TestToggleCollapseHidesFileMatches(t *testing.T) {
	s := NewService()
	s.Rebuild([]string{"a:1:x", "a:2:x", "b:1:x", "b:2:x"})
	s.ScrollWindow(10)
	s.MoveSelection(DirectionNext)

	require.True(t, s.ToggleCollapse())
	assert.True(t, s.IsCollapsed("a"))

	w := s.Window()
	require.Len(t, w.Rows, 4)
	assert.Equal(t, Row{Kind: RowFile, Path: "a", Count: 2, Collapsed: true, Selected: true}, w.Rows[0])
	assert.Equal(t, RowFile, w.Rows[1].Kind)
	assert.Equal(t, "b", w.Rows[1].Path)

	// the header stands for the file's first match
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, sel.Line)
	assert.Equal(t, 4, s.TotalEntries())

	require.True(t, s.ToggleCollapse())
	assert.False(t, s.IsCollapsed("a"))
	assert.Len(t, s.Window().Rows, 6)
}

func TestSelectionSkipsCollapsedMatches(t *testing.T) {
	s := NewService()
	s.Rebuild([]string{"a:1:x", "b:1:x", "b:2:x", "b:3:x", "c:1:x"})
	s.ScrollWindow(10)
	s.MoveSelection(DirectionNext)
	s.ToggleCollapse()

	s.MoveSelection(DirectionFirst)
	s.MoveSelection(DirectionNext)
	sel, _ := s.Selected()
	assert.Equal(t, domain.MatchEntry{Path: "b", Line: 1, Text: "x"}, sel)
	assert.True(t, s.Window().Rows[2].Selected, "header of b is highlighted")

	s.MoveSelection(DirectionNext)
	sel, _ = s.Selected()
	assert.Equal(t, "c", sel.Path)

	s.MoveSelection(DirectionPrevFile)
	sel, _ = s.Selected()
	assert.Equal(t, "b", sel.Path)
	assert.Equal(t, 1, s.SelectedIndex())
}

func TestToggleCollapseAll(t *testing.T) {
	s := NewService()
	s.Rebuild(todoOutput)
	s.ScrollWindow(10)
	s.MoveSelection(DirectionLast)

	require.True(t, s.ToggleCollapseAll())
	w := s.Window()
	require.Len(t, w.Rows, 2)
	assert.True(t, w.Rows[0].Collapsed)
	assert.True(t, w.Rows[1].Collapsed)
	assert.True(t, w.Rows[1].Selected)

	assert.False(t, s.MoveSelection(DirectionNext))
	assert.True(t, s.MoveSelection(DirectionPrev))
	assert.Equal(t, 0, s.SelectedIndex())

	require.True(t, s.ToggleCollapseAll())
	assert.Len(t, s.Window().Rows, 5)
	assert.False(t, s.IsCollapsed("a.rs"))
}

func TestCollapseSurvivesRebuild(t *testing.T) {
	s := NewService()
	s.Rebuild(todoOutput)
	s.ToggleCollapse()

	s.Rebuild(append([]string{"a.rs:1:new"}, todoOutput...))
	assert.True(t, s.IsCollapsed("a.rs"))
	sel, _ := s.Selected()
	assert.Equal(t, domain.MatchEntry{Path: "a.rs", Line: 1, Text: "new"}, sel)

	// a file without matches forgets its state
	s.Rebuild([]string{"b.rs:1:TODO: x"})
	s.Rebuild(todoOutput)
	assert.False(t, s.IsCollapsed("a.rs"))
}

func TestToggleCollapseOnEmptyTree(t *testing.T) {
	s := NewService()
	assert.False(t, s.ToggleCollapse())
	assert.False(t, s.ToggleCollapseAll())
}
