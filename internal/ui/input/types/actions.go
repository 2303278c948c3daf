package types

import (
	"greptui/internal/domain"
	"greptui/internal/ui/services/results"
)

// Pattern editing actions
type InsertTextAction struct {
	Text string
}

func (a InsertTextAction) Type() string { return "insert_text" }

// DeleteKind selects what a DeleteAction removes
type DeleteKind int

const (
	DeleteBeforeCursor DeleteKind = iota
	DeleteAfterCursor
	DeleteWordBeforeCursor
	DeleteToEnd
	DeleteToStart
)

type DeleteAction struct {
	Kind DeleteKind
}

func (a DeleteAction) Type() string { return "delete" }

type MoveCursorAction struct {
	Delta int
}

func (a MoveCursorAction) Type() string { return "move_cursor" }

type CursorBoundaryAction struct {
	End bool // false moves to the start
}

func (a CursorBoundaryAction) Type() string { return "cursor_boundary" }

type ClearPatternAction struct{}

func (a ClearPatternAction) Type() string { return "clear_pattern" }

// ToggleFlagAction flips a flag. With Commit set the search reruns when
// the flags actually changed.
type ToggleFlagAction struct {
	Flag   domain.Flag
	Commit bool
}

func (a ToggleFlagAction) Type() string { return "toggle_flag" }

// RecallHistoryAction steps through earlier commits; -1 is older
type RecallHistoryAction struct {
	Delta int
}

func (a RecallHistoryAction) Type() string { return "recall_history" }

// Search actions
type CommitAction struct{}

func (a CommitAction) Type() string { return "commit" }

// Result navigation
type NavigateAction struct {
	Direction results.Direction
}

func (a NavigateAction) Type() string { return "navigate" }

// ToggleCollapseAction folds the selected file, or every file with All set
type ToggleCollapseAction struct {
	All bool
}

func (a ToggleCollapseAction) Type() string { return "toggle_collapse" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// View actions
type OpenPreviewAction struct{}

func (a OpenPreviewAction) Type() string { return "open_preview" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type ToggleLegendAction struct{}

func (a ToggleLegendAction) Type() string { return "toggle_legend" }

type QuitAction struct {
	Force bool // true for Ctrl+C, false for 'q'
}

func (a QuitAction) Type() string { return "quit" }
