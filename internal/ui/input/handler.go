package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"greptui/internal/ui/input/keymap"
	"greptui/internal/ui/input/modes"
	"greptui/internal/ui/input/types"
)

// Handler turns key messages into actions for the current mode and tracks
// mode changes
type Handler struct {
	currentMode types.Mode
	modes       map[types.Mode]types.ModeHandler
	keys        *keymap.KeyMap
}

func New(keys keymap.KeyMap) *Handler {
	h := &Handler{
		currentMode: types.ModeEdit,
		modes:       make(map[types.Mode]types.ModeHandler),
		keys:        &keys,
	}

	h.modes[types.ModeEdit] = modes.NewEditMode(h.keys)
	h.modes[types.ModeBrowse] = modes.NewBrowseMode(h.keys)

	return h
}

// HandleKey returns the actions for msg. ChangeModeAction is applied here
// and not passed on; Exit and Enter actions of the modes involved are.
func (h *Handler) HandleKey(msg tea.KeyMsg, ctx types.Context) []types.Action {
	handler := h.modes[h.currentMode]
	if handler == nil {
		return nil
	}

	actions, consumed := handler.HandleKey(msg, ctx)
	if !consumed {
		return nil
	}

	var out []types.Action
	for _, action := range actions {
		change, ok := action.(types.ChangeModeAction)
		if !ok {
			out = append(out, action)
			continue
		}
		out = append(out, h.switchTo(change.Mode, ctx)...)
	}
	return out
}

// ChangeMode switches mode outside of key handling, e.g. when a search
// fails and the pattern takes focus
func (h *Handler) ChangeMode(mode types.Mode, ctx types.Context) []types.Action {
	return h.switchTo(mode, ctx)
}

func (h *Handler) switchTo(mode types.Mode, ctx types.Context) []types.Action {
	if mode == h.currentMode {
		return nil
	}
	var out []types.Action
	if cur := h.modes[h.currentMode]; cur != nil {
		out = append(out, cur.Exit(ctx)...)
	}
	h.currentMode = mode
	if next := h.modes[mode]; next != nil {
		out = append(out, next.Enter(ctx)...)
	}
	return out
}

// CurrentMode returns the active mode
func (h *Handler) CurrentMode() types.Mode {
	return h.currentMode
}

// ModeName returns the display name of the active mode
func (h *Handler) ModeName() string {
	if m := h.modes[h.currentMode]; m != nil {
		return m.Name()
	}
	return h.currentMode.String()
}

// Keys returns the bindings in use
func (h *Handler) Keys() *keymap.KeyMap {
	return h.keys
}
