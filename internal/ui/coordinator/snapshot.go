package coordinator

import (
	"greptui/internal/domain"
	"greptui/internal/git"
	"greptui/internal/ui/services/results"
	"greptui/internal/ui/state"
)

// Snapshot is everything the renderer needs for one frame
type Snapshot struct {
	Status        state.Status
	Query         domain.Query
	CommandLine   string       // command for the query as currently typed
	Committed     string       // command of the latest commit, "" before the first
	Searched      domain.Query // query of the latest commit, used for highlighting
	Pending       bool
	ErrorMessage  string
	StatusMessage string
	ShowLegend    bool

	Window        results.Window
	TotalLines    int
	TotalFiles    int
	Selected      domain.MatchEntry
	HasSelection  bool
	SelectedIndex int
	Truncated     bool
}

// Snapshot derives the render snapshot from the session state
func (c *Coordinator) Snapshot() Snapshot {
	s := Snapshot{
		Status:        c.state.Status,
		Query:         c.state.Query.Clone(),
		CommandLine:   git.CommandLine(c.state.Query),
		Pending:       c.state.Pending,
		ErrorMessage:  c.state.ErrorMessage,
		StatusMessage: c.state.StatusMessage,
		ShowLegend:    c.state.ShowLegend,
		Window:        c.Results.Window(),
		TotalLines:    c.Results.TotalEntries(),
		TotalFiles:    c.Results.TotalFiles(),
		SelectedIndex: c.Results.SelectedIndex(),
		Truncated:     c.state.Truncated,
	}
	if c.state.LastCommitted != nil {
		s.Committed = git.CommandLine(*c.state.LastCommitted)
		s.Searched = c.state.LastCommitted.Clone()
	}
	s.Selected, s.HasSelection = c.Results.Selected()
	return s
}
