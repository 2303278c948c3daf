package modes

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"greptui/internal/ui/input/keymap"
	"greptui/internal/ui/input/types"
)

// EditMode routes keys to the pattern editor
type EditMode struct {
	keys *keymap.KeyMap
}

func NewEditMode(keys *keymap.KeyMap) *EditMode {
	return &EditMode{keys: keys}
}

func (m *EditMode) Name() string {
	return "edit"
}

func (m *EditMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *EditMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *EditMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	// text goes straight into the pattern, including pastes
	switch {
	case msg.Type == tea.KeyRunes && !msg.Alt:
		return []types.Action{types.InsertTextAction{Text: string(msg.Runes)}}, true
	case msg.Type == tea.KeySpace && !msg.Alt:
		return []types.Action{types.InsertTextAction{Text: " "}}, true
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Commit):
		return []types.Action{types.CommitAction{}, types.ChangeModeAction{Mode: types.ModeBrowse}}, true
	case key.Matches(msg, k.Abort):
		return []types.Action{types.QuitAction{Force: msg.Type == tea.KeyCtrlC}}, true
	case key.Matches(msg, k.CursorLeft):
		return []types.Action{types.MoveCursorAction{Delta: -1}}, true
	case key.Matches(msg, k.CursorRight):
		return []types.Action{types.MoveCursorAction{Delta: 1}}, true
	case key.Matches(msg, k.LineStart):
		return []types.Action{types.CursorBoundaryAction{End: false}}, true
	case key.Matches(msg, k.LineEnd):
		return []types.Action{types.CursorBoundaryAction{End: true}}, true
	case key.Matches(msg, k.DeleteBack):
		return []types.Action{types.DeleteAction{Kind: types.DeleteBeforeCursor}}, true
	case key.Matches(msg, k.DeleteFwd):
		return []types.Action{types.DeleteAction{Kind: types.DeleteAfterCursor}}, true
	case key.Matches(msg, k.DeleteWord):
		return []types.Action{types.DeleteAction{Kind: types.DeleteWordBeforeCursor}}, true
	case key.Matches(msg, k.KillToEnd):
		return []types.Action{types.DeleteAction{Kind: types.DeleteToEnd}}, true
	case key.Matches(msg, k.KillToStart):
		return []types.Action{types.DeleteAction{Kind: types.DeleteToStart}}, true
	case key.Matches(msg, k.HistoryPrev):
		return []types.Action{types.RecallHistoryAction{Delta: -1}}, true
	case key.Matches(msg, k.HistoryNext):
		return []types.Action{types.RecallHistoryAction{Delta: 1}}, true
	case key.Matches(msg, k.EditHelp):
		return []types.Action{types.ToggleHelpAction{}}, true
	case key.Matches(msg, k.FocusResults):
		if !ctx.HasResults() {
			return nil, true
		}
		return []types.Action{types.ChangeModeAction{Mode: types.ModeBrowse}}, true
	}

	if msg.Alt {
		if flag, ok := k.Flag(strings.TrimPrefix(msg.String(), "alt+")); ok {
			return []types.Action{types.ToggleFlagAction{Flag: flag}}, true
		}
	}
	return nil, false
}
