package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"

	"greptui/internal/domain"
)

func TestCamelToSnake(t *testing.T) {
	assert.Equal(t, "next_file", camelToSnake("NextFile"))
	assert.Equal(t, "quit", camelToSnake("Quit"))
	assert.Equal(t, "delete_fwd", camelToSnake("DeleteFwd"))
}

func TestApplyOverridesKeepsHelpText(t *testing.T) {
	km := Default()
	ApplyOverrides(&km, map[string][]string{
		"quit":        {"x", "ctrl+q"},
		"perl_regexp": {"p"},
		"commit":      {},
	})

	assert.Equal(t, []string{"x", "ctrl+q"}, km.Quit.Keys())
	assert.Equal(t, "x", km.Quit.Help().Key)
	assert.Equal(t, "quit", km.Quit.Help().Desc)
	assert.Equal(t, []string{"p"}, km.PerlRegexp.Keys())

	// empty lists leave the default alone
	assert.Equal(t, []string{"enter"}, km.Commit.Keys())
}

func TestApplyOverridesIgnoresNonPointers(t *testing.T) {
	km := Default()
	ApplyOverrides(km, map[string][]string{"quit": {"x"}})
	assert.Equal(t, []string{"q", "esc", "ctrl+c"}, km.Quit.Keys())
}

func TestUnknownOverrides(t *testing.T) {
	unknown := UnknownOverrides(map[string][]string{"next_file": {"n"}, "nxt_file": {"n"}})
	assert.Equal(t, []string{"nxt_file"}, unknown)
}

func TestFlagLookup(t *testing.T) {
	km := Default()
	for _, f := range domain.AllFlags {
		b := km.Binding(f)
		got, ok := km.Flag(b.Keys()[0])
		assert.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}
	_, ok := km.Flag("z")
	assert.False(t, ok)
}

func TestFullHelpCoversFlags(t *testing.T) {
	km := Default()
	var all []key.Binding
	for _, col := range km.FullHelp() {
		all = append(all, col...)
	}
	for _, f := range domain.AllFlags {
		assert.Contains(t, all, km.Binding(f))
	}
}
