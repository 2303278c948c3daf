package types

import tea "github.com/charmbracelet/bubbletea"

// Mode represents an input mode
type Mode int

const (
	ModeEdit   Mode = iota // keys edit the pattern
	ModeBrowse             // keys move through results
)

func (m Mode) String() string {
	if m == ModeBrowse {
		return "browse"
	}
	return "edit"
}

// Action represents a command the model should execute
type Action interface {
	Type() string
}

// Context provides read-only access to session state needed for input handling
type Context interface {
	HasResults() bool
	HasSelection() bool
	IsSearching() bool
}

// ModeHandler handles input for a specific mode
type ModeHandler interface {
	// HandleKey processes a key message and returns actions and whether to consume the event
	HandleKey(msg tea.KeyMsg, ctx Context) ([]Action, bool)

	// Enter is called when entering this mode
	Enter(ctx Context) []Action

	// Exit is called when leaving this mode
	Exit(ctx Context) []Action

	// Name returns the mode name for display
	Name() string
}
