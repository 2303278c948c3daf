package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Prompt      lipgloss.Style
	Command     lipgloss.Style
	Dim         lipgloss.Style
	Header      lipgloss.Style
	FileHeader  lipgloss.Style
	LineNumber  lipgloss.Style
	Highlight   lipgloss.Style
	SelectionBg lipgloss.Style
	Scroll      lipgloss.Style
	FlagOn      lipgloss.Style
	FlagOff     lipgloss.Style
	Help        lipgloss.Style

	StatusError     lipgloss.Style
	StatusWarning   lipgloss.Style
	StatusSearching lipgloss.Style
	StatusSuccess   lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Prompt:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Command:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Dim:         lipgloss.NewStyle().Faint(true),
		Header:      lipgloss.NewStyle().Bold(true),
		FileHeader:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		LineNumber:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Highlight:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		SelectionBg: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		FlagOn:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // yellow
		FlagOff:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Help:        lipgloss.NewStyle().Faint(true),

		StatusError:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusSearching: lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		StatusSuccess:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
	}
}
