package state

import (
	"greptui/internal/domain"
)

// Status is the session state machine position
type Status int

const (
	StatusEditing Status = iota
	StatusSearching
	StatusBrowsing
	StatusError
	StatusExited
)

func (s Status) String() string {
	switch s {
	case StatusEditing:
		return "Editing"
	case StatusSearching:
		return "Searching"
	case StatusBrowsing:
		return "Browsing"
	case StatusError:
		return "Error"
	case StatusExited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// SessionState contains the session state owned by the coordinator. The
// result tree and selection live in the coordinator's results service.
type SessionState struct {
	Status Status
	Query  domain.Query

	// Search bookkeeping
	CommittedSeq  uint64        // sequence number of the latest commit
	LastCommitted *domain.Query // query of the latest commit, nil before the first
	Pending       bool          // the latest commit has no outcome yet

	// Outcome details
	ErrorMessage string // set in StatusError
	Truncated    bool   // the displayed results were cut at the maximum
	RawLines     int    // output lines of the displayed search

	// UI state
	ShowLegend    bool
	StatusMessage string // transient notice, cleared by the next action

	// History recall
	History      []domain.Query // oldest first
	HistoryIndex int            // len(History) when not recalling
	Draft        *domain.Query  // query being edited before recall started
}

// NewSessionState creates the initial state with an empty query
func NewSessionState(q domain.Query) *SessionState {
	return &SessionState{
		Status:     StatusEditing,
		Query:      q,
		ShowLegend: true,
	}
}
