package modes

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"greptui/internal/ui/input/keymap"
	"greptui/internal/ui/input/types"
	"greptui/internal/ui/services/results"
)

// BrowseMode moves through results. Flag keys toggle the flag and rerun the
// search in one step.
type BrowseMode struct {
	keys *keymap.KeyMap
}

func NewBrowseMode(keys *keymap.KeyMap) *BrowseMode {
	return &BrowseMode{keys: keys}
}

func (m *BrowseMode) Name() string {
	return "browse"
}

func (m *BrowseMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *BrowseMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func navigate(d results.Direction) []types.Action {
	return []types.Action{types.NavigateAction{Direction: d}}
}

func (m *BrowseMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return []types.Action{types.QuitAction{Force: msg.Type == tea.KeyCtrlC}}, true
	case key.Matches(msg, k.Up):
		return navigate(results.DirectionPrev), true
	case key.Matches(msg, k.Down):
		return navigate(results.DirectionNext), true
	case key.Matches(msg, k.PageUp):
		return navigate(results.DirectionPageUp), true
	case key.Matches(msg, k.PageDown):
		return navigate(results.DirectionPageDown), true
	case key.Matches(msg, k.Top):
		return navigate(results.DirectionFirst), true
	case key.Matches(msg, k.Bottom):
		return navigate(results.DirectionLast), true
	case key.Matches(msg, k.NextFile):
		return navigate(results.DirectionNextFile), true
	case key.Matches(msg, k.PrevFile):
		return navigate(results.DirectionPrevFile), true
	case key.Matches(msg, k.Collapse):
		return []types.Action{types.ToggleCollapseAction{}}, true
	case key.Matches(msg, k.CollapseAll):
		return []types.Action{types.ToggleCollapseAction{All: true}}, true
	case key.Matches(msg, k.Preview):
		if !ctx.HasSelection() {
			return nil, true
		}
		return []types.Action{types.OpenPreviewAction{}}, true
	case key.Matches(msg, k.FocusPattern):
		return []types.Action{types.ChangeModeAction{Mode: types.ModeEdit}}, true
	case key.Matches(msg, k.Rerun):
		return []types.Action{types.CommitAction{}}, true
	case key.Matches(msg, k.Help):
		return []types.Action{types.ToggleHelpAction{}}, true
	case key.Matches(msg, k.Legend):
		return []types.Action{types.ToggleLegendAction{}}, true
	}

	if flag, ok := k.Flag(msg.String()); ok {
		return []types.Action{types.ToggleFlagAction{Flag: flag, Commit: true}}, true
	}
	return nil, false
}
