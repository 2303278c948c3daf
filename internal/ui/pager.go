package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"greptui/internal/domain"
	"greptui/internal/ui/input/keymap"
)

// Pager shows text full screen until the user leaves it
type Pager interface {
	Show(r io.Reader) error
}

// OvPager runs the ov pager on the released terminal
type OvPager struct {
	program *tea.Program
}

// NewOvPager creates a pager bound to no program yet
func NewOvPager() *OvPager {
	return &OvPager{}
}

// SetProgram sets the program whose terminal is released while paging
func (p *OvPager) SetProgram(program *tea.Program) {
	p.program = program
}

// Show pages r with ov
func (p *OvPager) Show(r io.Reader) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// let ov leave the alternate screen before we take it back
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(r)
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// BuildPreview renders the file of entry with line numbers, starting
// context lines above the match. The matched line is marked.
func BuildPreview(entry domain.MatchEntry, context int) (string, error) {
	f, err := os.Open(entry.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", entry.Path, err)
	}
	defer f.Close()

	return renderPreview(f, entry, context)
}

func renderPreview(r io.Reader, entry domain.MatchEntry, context int) (string, error) {
	if context < 0 {
		context = 0
	}
	start := entry.Line - context
	if start < 1 {
		start = 1
	}

	marker := lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	number := lipgloss.NewStyle().Foreground(lipgloss.Color("78"))

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s:%d", entry.Path, entry.Line)))
	b.WriteString("\n\n")

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if n < start {
			continue
		}
		prefix := "  "
		if n == entry.Line {
			prefix = marker.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, number.Render(fmt.Sprintf("%6d", n)), sc.Text())
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", entry.Path, err)
	}
	if n < entry.Line {
		return "", fmt.Errorf("%s has %d lines, match was on line %d", entry.Path, n, entry.Line)
	}
	return b.String(), nil
}

// HelpText renders every binding of km grouped by section
func HelpText(km keymap.KeyMap) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))

	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	sections := []string{"Pattern", "Editing", "Results", "Actions", "Flags"}
	columns := km.FullHelp()

	var help strings.Builder
	help.WriteString(titleStyle.Render("greptui help"))
	help.WriteString("\n")

	for i, col := range columns {
		if i < len(sections) {
			help.WriteString(sectionStyle.Render(sections[i]))
			help.WriteString("\n")
		}
		for _, b := range col {
			keys := keysOf(b)
			pad := max(1, 24-lipgloss.Width(keys))
			help.WriteString("  " + keyStyle.Render(keys) + strings.Repeat(" ", pad) + descStyle.Render(b.Help().Desc) + "\n")
		}
		help.WriteString("\n")
	}

	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  Flag keys toggle and rerun while browsing; hold alt to toggle while editing."))
	help.WriteString("\n")
	return help.String()
}

func keysOf(b key.Binding) string {
	return strings.Join(b.Keys(), ", ")
}
