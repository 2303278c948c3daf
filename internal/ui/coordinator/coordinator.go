package coordinator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"greptui/internal/domain"
	"greptui/internal/eventbus"
	"greptui/internal/git"
	"greptui/internal/logging"
	"greptui/internal/ui/input/types"
	"greptui/internal/ui/services/query"
	"greptui/internal/ui/services/results"
	"greptui/internal/ui/state"
)

// Searcher is the part of the search runner the coordinator drives
type Searcher interface {
	Submit(req domain.SearchRequest)
	Poll() (domain.SearchOutcome, bool)
}

// Coordinator is the session controller. It owns the session state, applies
// input actions and search outcomes to it, and derives render snapshots.
// All methods must be called from the UI loop goroutine.
type Coordinator struct {
	state    *state.SessionState
	Results  *results.Service
	searcher Searcher

	bus          eventbus.EventBus
	log          *logrus.Entry
	historyLimit int
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithBus publishes search lifecycle events on bus
func WithBus(bus eventbus.EventBus) Option {
	return func(c *Coordinator) { c.bus = bus }
}

// WithHistory seeds history recall with earlier queries, oldest first,
// keeping at most limit entries
func WithHistory(history []domain.Query, limit int) Option {
	return func(c *Coordinator) {
		c.historyLimit = limit
		for _, q := range history {
			c.pushHistory(q)
		}
	}
}

// WithLegend sets the initial legend visibility
func WithLegend(show bool) Option {
	return func(c *Coordinator) { c.state.ShowLegend = show }
}

// NewCoordinator creates a session in the Editing state with initial as the query
func NewCoordinator(searcher Searcher, initial domain.Query, opts ...Option) *Coordinator {
	initial = query.MoveToEnd(initial.Clone())
	c := &Coordinator{
		state:        state.NewSessionState(initial),
		Results:      results.NewService(),
		searcher:     searcher,
		bus:          eventbus.NullBus{},
		log:          logging.NewLogger("session"),
		historyLimit: 100,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.HistoryIndex = len(c.state.History)
	return c
}

// State returns a copy of the session state
func (c *Coordinator) State() state.SessionState {
	return *c.state
}

// Status returns the state machine position
func (c *Coordinator) Status() state.Status {
	return c.state.Status
}

// Exited reports whether quit was dispatched
func (c *Coordinator) Exited() bool {
	return c.state.Status == state.StatusExited
}

// LastCommitted returns the query of the most recent commit
func (c *Coordinator) LastCommitted() (domain.Query, bool) {
	if c.state.LastCommitted == nil {
		return domain.Query{}, false
	}
	return c.state.LastCommitted.Clone(), true
}

// HasResults implements types.Context
func (c *Coordinator) HasResults() bool {
	return c.Results.TotalEntries() > 0
}

// HasSelection implements types.Context
func (c *Coordinator) HasSelection() bool {
	_, ok := c.Results.Selected()
	return ok
}

// IsSearching implements types.Context
func (c *Coordinator) IsSearching() bool {
	return c.state.Pending
}

// Notify shows message on the status line until the next action
func (c *Coordinator) Notify(message string) {
	c.state.StatusMessage = message
}

// Resize sets the number of result rows the view can show
func (c *Coordinator) Resize(height int) {
	c.Results.ScrollWindow(height)
}

// Dispatch applies one input action. Actions arriving after quit are ignored.
func (c *Coordinator) Dispatch(action types.Action) {
	if c.Exited() {
		return
	}
	c.state.StatusMessage = ""

	switch a := action.(type) {
	case types.InsertTextAction:
		c.edit(func(q domain.Query) domain.Query { return query.InsertText(q, a.Text) })
	case types.DeleteAction:
		c.edit(deleteFunc(a.Kind))
	case types.MoveCursorAction:
		c.edit(func(q domain.Query) domain.Query { return query.MoveCursor(q, a.Delta) })
	case types.CursorBoundaryAction:
		if a.End {
			c.edit(query.MoveToEnd)
		} else {
			c.edit(query.MoveToStart)
		}
	case types.ClearPatternAction:
		c.edit(query.Clear)
	case types.ToggleFlagAction:
		c.toggleFlag(a)
	case types.RecallHistoryAction:
		c.recall(a.Delta)
	case types.CommitAction:
		c.commit()
	case types.NavigateAction:
		c.Results.MoveSelection(a.Direction)
	case types.ToggleCollapseAction:
		if a.All {
			c.Results.ToggleCollapseAll()
		} else {
			c.Results.ToggleCollapse()
		}
	case types.ToggleLegendAction:
		c.state.ShowLegend = !c.state.ShowLegend
	case types.QuitAction:
		c.state.Status = state.StatusExited
		c.log.WithField("force", a.Force).Debug("session exited")
	}
}

func deleteFunc(kind types.DeleteKind) func(domain.Query) domain.Query {
	switch kind {
	case types.DeleteAfterCursor:
		return query.DeleteAfterCursor
	case types.DeleteWordBeforeCursor:
		return query.DeleteWordBeforeCursor
	case types.DeleteToEnd:
		return query.DeleteToEnd
	case types.DeleteToStart:
		return query.DeleteToStart
	default:
		return query.DeleteBeforeCursor
	}
}

// toggleFlag flips one flag. A conflicting engine flag leaves the query and
// status untouched and nothing is searched, so the notice stays on screen.
func (c *Coordinator) toggleFlag(a types.ToggleFlagAction) {
	next := query.ToggleFlag(c.state.Query, a.Flag)
	if next.Flags == c.state.Query.Flags {
		active, _ := next.Flags.Engine()
		c.state.StatusMessage = fmt.Sprintf("--%s conflicts with --%s", a.Flag, active)
		return
	}
	c.edit(func(domain.Query) domain.Query { return next })
	if a.Commit {
		c.commit()
	}
}

// edit applies a query edit. Any edit puts the session into Editing; the
// search is not rerun until the next commit.
func (c *Coordinator) edit(fn func(domain.Query) domain.Query) {
	c.state.Query = fn(c.state.Query)
	c.state.Status = state.StatusEditing
}

func (c *Coordinator) commit() {
	c.state.CommittedSeq++
	q := c.state.Query.Clone()
	c.state.LastCommitted = &q
	c.state.Pending = true
	c.state.ErrorMessage = ""
	c.state.Status = state.StatusSearching
	c.resetRecall()

	c.log.WithFields(logrus.Fields{"seq": c.state.CommittedSeq, "command": git.CommandLine(q)}).Info("search committed")
	c.searcher.Submit(domain.SearchRequest{Query: q.Clone(), Seq: c.state.CommittedSeq})
}

// pushHistory appends a completed query. A recall in progress keeps
// pointing at the same entry.
func (c *Coordinator) pushHistory(q domain.Query) {
	h := c.state.History
	if n := len(h); n > 0 && h[n-1].Equal(q) {
		return
	}
	recalling := c.state.Draft != nil
	h = append(h, q.Clone())
	dropped := 0
	if c.historyLimit > 0 && len(h) > c.historyLimit {
		dropped = len(h) - c.historyLimit
		h = h[dropped:]
	}
	c.state.History = h
	if !recalling {
		c.state.HistoryIndex = len(h)
		return
	}
	c.state.HistoryIndex -= dropped
	if c.state.HistoryIndex < 0 {
		c.state.HistoryIndex = 0
	}
}

func (c *Coordinator) resetRecall() {
	c.state.HistoryIndex = len(c.state.History)
	c.state.Draft = nil
}

// recall replaces the pattern with an earlier commit. Stepping past the
// newest entry restores what was being typed before recall started.
func (c *Coordinator) recall(delta int) {
	n := len(c.state.History)
	if n == 0 {
		return
	}
	if c.state.HistoryIndex == n && c.state.Draft == nil {
		draft := c.state.Query.Clone()
		c.state.Draft = &draft
	}

	idx := c.state.HistoryIndex + delta
	if idx < 0 {
		idx = 0
	}
	if idx > n {
		idx = n
	}
	if idx == c.state.HistoryIndex {
		return
	}
	c.state.HistoryIndex = idx

	if idx == n {
		draft := *c.state.Draft
		c.state.Draft = nil
		c.edit(func(q domain.Query) domain.Query { return query.Replace(q, draft) })
		return
	}
	entry := c.state.History[idx]
	c.edit(func(q domain.Query) domain.Query { return query.Replace(q, entry) })
}

// Poll applies the outcome of the latest commit if the runner has one.
// It reports whether the session changed.
func (c *Coordinator) Poll() bool {
	if c.Exited() {
		return false
	}
	out, ok := c.searcher.Poll()
	if !ok {
		return false
	}
	return c.apply(out)
}

func (c *Coordinator) apply(out domain.SearchOutcome) bool {
	if out.Seq != c.state.CommittedSeq || !c.state.Pending {
		c.log.WithFields(logrus.Fields{"seq": out.Seq, "committed": c.state.CommittedSeq}).Debug("ignoring stale outcome")
		return false
	}
	c.state.Pending = false
	q := c.state.LastCommitted.Clone()

	if out.Status == domain.OutcomeFailed {
		c.fail(q, out.Message)
		return true
	}

	n := c.Results.Rebuild(out.Lines)
	if n == 0 && len(out.Lines) > 0 {
		c.fail(q, fmt.Sprintf("could not parse git grep output: %q", out.Lines[0]))
		return true
	}

	c.state.ErrorMessage = ""
	c.state.Truncated = out.Truncated
	c.state.RawLines = len(out.Lines)
	if c.state.Status == state.StatusSearching {
		c.state.Status = state.StatusBrowsing
	}
	if out.Truncated {
		c.state.StatusMessage = fmt.Sprintf("output truncated after %d lines", len(out.Lines))
	}
	c.pushHistory(q)
	c.bus.Publish(eventbus.SearchCompletedEvent{Seq: out.Seq, Query: q, Lines: n, Truncated: out.Truncated})
	return true
}

// fail records a search failure. The result tree is cleared so stale matches
// are not shown next to the error.
func (c *Coordinator) fail(q domain.Query, message string) {
	c.Results.Clear()
	c.state.ErrorMessage = message
	c.state.Truncated = false
	c.state.RawLines = 0
	if c.state.Status == state.StatusSearching {
		c.state.Status = state.StatusError
	} else {
		c.state.StatusMessage = message
	}
	c.log.WithField("error", message).Warn("search failed")
	c.bus.Publish(eventbus.SearchFailedEvent{Seq: c.state.CommittedSeq, Query: q, Message: message})
}
