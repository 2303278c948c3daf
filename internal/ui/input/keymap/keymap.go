package keymap

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"

	"greptui/internal/domain"
)

// EditKeys are active while the pattern has focus. Printable keys are
// inserted into the pattern and never reach these bindings.
type EditKeys struct {
	Commit       key.Binding
	CursorLeft   key.Binding
	CursorRight  key.Binding
	LineStart    key.Binding
	LineEnd      key.Binding
	DeleteBack   key.Binding
	DeleteFwd    key.Binding
	DeleteWord   key.Binding
	KillToEnd    key.Binding
	KillToStart  key.Binding
	HistoryPrev  key.Binding
	HistoryNext  key.Binding
	FocusResults key.Binding
	Abort        key.Binding
	EditHelp     key.Binding
}

// BrowseKeys are active while the result list has focus
type BrowseKeys struct {
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Top          key.Binding
	Bottom       key.Binding
	NextFile     key.Binding
	PrevFile     key.Binding
	Collapse     key.Binding
	CollapseAll  key.Binding
	Preview      key.Binding
	FocusPattern key.Binding
	Rerun        key.Binding
	Help         key.Binding
	Legend       key.Binding
	Quit         key.Binding
}

// FlagKeys toggle search flags. In browse mode the keys apply as is; while
// editing the same keys are reached with alt.
type FlagKeys struct {
	IgnoreCase     key.Binding
	FixedStrings   key.Binding
	WordRegexp     key.Binding
	InvertMatch    key.Binding
	ExtendedRegexp key.Binding
	PerlRegexp     key.Binding
	Untracked      key.Binding
	NoIndex        key.Binding
	NoRecursive    key.Binding
}

// KeyMap holds every binding. Config overrides address fields by their
// snake_case name, e.g. next_file = ["n"].
type KeyMap struct {
	EditKeys
	BrowseKeys
	FlagKeys
}

// Default returns the built-in bindings
func Default() KeyMap {
	return KeyMap{
		EditKeys: EditKeys{
			Commit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
			CursorLeft:   key.NewBinding(key.WithKeys("left", "ctrl+b"), key.WithHelp("←", "cursor left")),
			CursorRight:  key.NewBinding(key.WithKeys("right", "ctrl+f"), key.WithHelp("→", "cursor right")),
			LineStart:    key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("ctrl+a", "start")),
			LineEnd:      key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("ctrl+e", "end")),
			DeleteBack:   key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("bksp", "delete")),
			DeleteFwd:    key.NewBinding(key.WithKeys("delete", "ctrl+d"), key.WithHelp("del", "delete forward")),
			DeleteWord:   key.NewBinding(key.WithKeys("ctrl+w", "alt+backspace"), key.WithHelp("ctrl+w", "delete word")),
			KillToEnd:    key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "kill to end")),
			KillToStart:  key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "kill to start")),
			HistoryPrev:  key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "older")),
			HistoryNext:  key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "newer")),
			FocusResults: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "results")),
			Abort:        key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
			EditHelp:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		},
		BrowseKeys: BrowseKeys{
			Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/↑", "up")),
			Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/↓", "down")),
			PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u", "ctrl+b"), key.WithHelp("pgup", "page up")),
			PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d", "ctrl+f"), key.WithHelp("pgdn", "page down")),
			Top:          key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
			Bottom:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
			NextFile:     key.NewBinding(key.WithKeys("J", "]"), key.WithHelp("J", "next file")),
			PrevFile:     key.NewBinding(key.WithKeys("K", "["), key.WithHelp("K", "prev file")),
			Collapse:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "fold file")),
			CollapseAll:  key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "fold all files")),
			Preview:      key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "preview")),
			FocusPattern: key.NewBinding(key.WithKeys("/", "e", "tab"), key.WithHelp("/", "edit pattern")),
			Rerun:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rerun")),
			Help:         key.NewBinding(key.WithKeys("?", "f1"), key.WithHelp("?", "help")),
			Legend:       key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "legend")),
			Quit:         key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		FlagKeys: FlagKeys{
			IgnoreCase:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "ignore case")),
			FixedStrings:   key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "fixed strings")),
			WordRegexp:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "whole word")),
			InvertMatch:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "invert")),
			ExtendedRegexp: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "extended regexp")),
			PerlRegexp:     key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "perl regexp")),
			Untracked:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "untracked")),
			NoIndex:        key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "no index")),
			NoRecursive:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "no recursive")),
		},
	}
}

// Flag returns the flag bound to k, if any
func (f FlagKeys) Flag(k string) (domain.Flag, bool) {
	for _, b := range []struct {
		binding key.Binding
		flag    domain.Flag
	}{
		{f.IgnoreCase, domain.IgnoreCase},
		{f.FixedStrings, domain.FixedStrings},
		{f.WordRegexp, domain.WordRegexp},
		{f.InvertMatch, domain.InvertMatch},
		{f.ExtendedRegexp, domain.ExtendedRegexp},
		{f.PerlRegexp, domain.PerlRegexp},
		{f.Untracked, domain.Untracked},
		{f.NoIndex, domain.NoIndex},
		{f.NoRecursive, domain.NoRecursive},
	} {
		if key.Matches(keyName(k), b.binding) {
			return b.flag, true
		}
	}
	return 0, false
}

// Binding returns the toggle binding for flag
func (f FlagKeys) Binding(flag domain.Flag) key.Binding {
	switch flag {
	case domain.IgnoreCase:
		return f.IgnoreCase
	case domain.FixedStrings:
		return f.FixedStrings
	case domain.WordRegexp:
		return f.WordRegexp
	case domain.InvertMatch:
		return f.InvertMatch
	case domain.ExtendedRegexp:
		return f.ExtendedRegexp
	case domain.PerlRegexp:
		return f.PerlRegexp
	case domain.Untracked:
		return f.Untracked
	case domain.NoIndex:
		return f.NoIndex
	default:
		return f.NoRecursive
	}
}

// ShortHelp implements help.KeyMap for the legend line
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.FocusResults, k.Preview, k.NextFile, k.Help, k.Legend, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Commit, k.CursorLeft, k.CursorRight, k.LineStart, k.LineEnd, k.HistoryPrev, k.HistoryNext},
		{k.DeleteBack, k.DeleteFwd, k.DeleteWord, k.KillToEnd, k.KillToStart, k.FocusResults, k.Abort},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.NextFile, k.PrevFile, k.Collapse, k.CollapseAll},
		{k.Preview, k.FocusPattern, k.Rerun, k.Help, k.Legend, k.Quit},
		{k.IgnoreCase, k.FixedStrings, k.WordRegexp, k.InvertMatch, k.ExtendedRegexp, k.PerlRegexp, k.Untracked, k.NoIndex, k.NoRecursive},
	}
}

type keyName string

func (k keyName) String() string { return string(k) }

// ApplyOverrides replaces bindings in km from overrides keyed by the
// snake_case field name. Embedded structs are walked; the help text of a
// replaced binding is kept.
func ApplyOverrides(km any, overrides map[string][]string) {
	if len(overrides) == 0 {
		return
	}
	v := reflect.ValueOf(km)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	applyOverrides(v.Elem(), overrides)
}

func applyOverrides(v reflect.Value, overrides map[string][]string) {
	bindingType := reflect.TypeOf(key.Binding{})
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)
		if !field.CanSet() {
			continue
		}
		if sf.Anonymous && field.Kind() == reflect.Struct {
			applyOverrides(field, overrides)
			continue
		}
		if sf.Type != bindingType {
			continue
		}
		keys, ok := overrides[camelToSnake(sf.Name)]
		if !ok || len(keys) == 0 {
			continue
		}
		desc := field.Interface().(key.Binding).Help().Desc
		field.Set(reflect.ValueOf(key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], desc))))
	}
}

// UnknownOverrides returns the override names that match no binding
func UnknownOverrides(overrides map[string][]string) []string {
	known := map[string]bool{}
	collectNames(reflect.TypeOf(KeyMap{}), known)
	var unknown []string
	for name := range overrides {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

func collectNames(t reflect.Type, into map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			collectNames(sf.Type, into)
			continue
		}
		into[camelToSnake(sf.Name)] = true
	}
}

// camelToSnake turns NextFile into next_file
func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
