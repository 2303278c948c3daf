package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greptui/internal/domain"
	"greptui/internal/git"
	"greptui/internal/ui/coordinator"
	"greptui/internal/ui/input/keymap"
	inputtypes "greptui/internal/ui/input/types"
	"greptui/internal/ui/services/search"
	"greptui/internal/ui/state"
)

type fakePager struct {
	shown []string
	err   error
}

func (p *fakePager) Show(r io.Reader) error {
	b, _ := io.ReadAll(r)
	p.shown = append(p.shown, string(b))
	return p.err
}

type harness struct {
	t      *testing.T
	model  *Model
	runner *search.Service
	pager  *fakePager
}

func newHarness(t *testing.T, fn search.SearchFunc) *harness {
	t.Helper()
	runner := search.NewService(fn, nil)
	t.Cleanup(runner.Close)
	coord := coordinator.NewCoordinator(runner, domain.Query{})
	pager := &fakePager{}
	m := NewModel(coord, runner, Options{Keys: keymap.Default(), PreviewContext: 1, Pager: pager})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return &harness{t: t, model: m, runner: runner, pager: pager}
}

func staticSearch(lines ...string) search.SearchFunc {
	return func(ctx context.Context, q domain.Query) (git.Result, error) {
		return git.Result{Lines: lines}, nil
	}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.model.Update(msg)
	return cmd
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) key(t tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: t})
}

// settle waits for the runner to signal and lets the model poll
func (h *harness) settle() {
	h.t.Helper()
	select {
	case <-h.runner.Ready():
	case <-time.After(5 * time.Second):
		h.t.Fatal("search did not finish")
	}
	h.send(outcomeReadyMsg{})
}

// run executes cmd and feeds the resulting messages back, expanding batches
func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.run(c)
		}
		return
	}
	if msg != nil {
		h.run(h.send(msg))
	}
}

func (h *harness) snapshot() coordinator.Snapshot {
	return h.model.coord.Snapshot()
}

func TestViewBeforeSize(t *testing.T) {
	runner := search.NewService(staticSearch(), nil)
	defer runner.Close()
	m := NewModel(coordinator.NewCoordinator(runner, domain.Query{}), runner, Options{Keys: keymap.Default()})
	assert.Equal(t, "Loading...", m.View())
}

func TestTypeCommitAndBrowse(t *testing.T) {
	h := newHarness(t, staticSearch("a.rs:3:// TODO fix", "a.rs:9:// TODO later", "b.rs:1:TODO: x"))

	h.typeText("TODO")
	assert.Equal(t, state.StatusEditing, h.snapshot().Status)
	assert.Contains(t, h.model.View(), "$ git grep -n -I -e TODO")

	h.key(tea.KeyEnter)
	assert.Equal(t, inputtypes.ModeBrowse, h.model.Mode())
	h.settle()

	snap := h.snapshot()
	assert.Equal(t, state.StatusBrowsing, snap.Status)
	assert.Equal(t, domain.MatchEntry{Path: "a.rs", Line: 3, Text: "// TODO fix"}, snap.Selected)

	view := h.model.View()
	assert.Contains(t, view, "[RESULT]: 3 lines, 2 files")
	assert.Contains(t, view, "b.rs")

	h.typeText("j")
	assert.Equal(t, 9, h.snapshot().Selected.Line)
	h.typeText("J")
	assert.Equal(t, "b.rs", h.snapshot().Selected.Path)
}

func TestFailureFocusesPattern(t *testing.T) {
	h := newHarness(t, func(ctx context.Context, q domain.Query) (git.Result, error) {
		return git.Result{}, domain.NewSearchError(nil, "fatal: not a git repository")
	})

	h.typeText("TODO")
	h.key(tea.KeyEnter)
	h.settle()

	assert.Equal(t, state.StatusError, h.snapshot().Status)
	assert.Equal(t, inputtypes.ModeEdit, h.model.Mode())
	assert.Contains(t, h.model.View(), "fatal: not a git repository")

	h.typeText("!")
	assert.Equal(t, "TODO!", h.snapshot().Query.Pattern)
	assert.Equal(t, state.StatusEditing, h.snapshot().Status)
}

func TestQuitFromBrowse(t *testing.T) {
	h := newHarness(t, staticSearch("a.rs:1:x"))
	h.typeText("x")
	h.key(tea.KeyEnter)
	h.settle()

	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	q, ok := h.model.LastCommitted()
	require.True(t, ok)
	assert.Equal(t, "x", q.Pattern)
}

func TestEscQuitsWhileEditing(t *testing.T) {
	h := newHarness(t, staticSearch())
	h.typeText("q")
	assert.Equal(t, "q", h.snapshot().Query.Pattern)

	cmd := h.key(tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	_, ok := h.model.LastCommitted()
	assert.False(t, ok)
}

func TestHelpOpensPager(t *testing.T) {
	h := newHarness(t, staticSearch())

	cmd := h.key(tea.KeyF1)
	assert.Equal(t, "", h.model.View())
	h.run(cmd)

	require.Len(t, h.pager.shown, 1)
	assert.Contains(t, h.pager.shown[0], "greptui help")
	assert.Contains(t, h.pager.shown[0], "ignore case")
	assert.NotEqual(t, "", h.model.View())
}

func TestPreviewShowsSelectedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo TODO\nthree\nfour\n"), 0o644))

	h := newHarness(t, staticSearch(path+":2:two TODO"))
	h.typeText("TODO")
	h.key(tea.KeyEnter)
	h.settle()

	h.run(h.key(tea.KeyEnter))

	require.Len(t, h.pager.shown, 1)
	out := h.pager.shown[0]
	assert.Contains(t, out, path+":2")
	assert.Contains(t, out, "     1  one")
	assert.Contains(t, out, ">      2  two TODO")
	assert.Contains(t, out, "four")
}

func TestPreviewErrorIsShown(t *testing.T) {
	h := newHarness(t, staticSearch("missing.txt:2:x"))
	h.typeText("x")
	h.key(tea.KeyEnter)
	h.settle()

	h.run(h.key(tea.KeyEnter))

	assert.Empty(t, h.pager.shown)
	assert.Contains(t, h.snapshot().StatusMessage, "missing.txt")
}

func TestPagerErrorIsShown(t *testing.T) {
	h := newHarness(t, staticSearch())
	h.pager.err = errors.New("no tty")

	h.run(h.key(tea.KeyF1))
	assert.Equal(t, "pager: no tty", h.snapshot().StatusMessage)
}

func TestLegendToggleResizesResults(t *testing.T) {
	lines := make([]string, 0, 50)
	for i := 1; i <= 50; i++ {
		lines = append(lines, "f.txt:"+strconv.Itoa(i)+":x")
	}
	h := newHarness(t, staticSearch(lines...))
	h.typeText("x")
	h.key(tea.KeyEnter)
	h.settle()

	withLegend := h.model.coord.Results.ViewportHeight()
	h.typeText("H")
	assert.Equal(t, withLegend+2, h.model.coord.Results.ViewportHeight())
}

func TestCommitFromCommandLine(t *testing.T) {
	runner := search.NewService(staticSearch("a.rs:1:TODO"), nil)
	defer runner.Close()
	coord := coordinator.NewCoordinator(runner, domain.Query{Pattern: "TODO"})
	m := NewModel(coord, runner, Options{Keys: keymap.Default(), Pager: &fakePager{}})

	m.Commit()
	assert.Equal(t, inputtypes.ModeBrowse, m.Mode())
	q, ok := m.LastCommitted()
	require.True(t, ok)
	assert.Equal(t, "TODO", q.Pattern)
}
