package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"greptui/internal/domain"
	"greptui/internal/ui/coordinator"
	"greptui/internal/ui/input/types"
	"greptui/internal/ui/state"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width       int
	Height      int
	Snapshot    coordinator.Snapshot
	Mode        types.Mode
	PatternView string // the pattern line with its cursor
	Spinner     string
	Help        help.Model
	Keys        help.KeyMap
	FlagKeys    func(domain.Flag) string
}

// Fixed lines around the result rows: title, pattern, command, blank,
// result header, two scroll indicators and the status line
const baseChrome = 8

// legendChrome is the flags line and the key help line
const legendChrome = 2

// ResultHeight returns how many result rows fit in a terminal of height lines
func ResultHeight(height int, showLegend bool) int {
	h := height - baseChrome
	if showLegend {
		h -= legendChrome
	}
	if h < 1 {
		h = 1
	}
	return h
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
	rows   *RowRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles: styles,
		rows:   NewRowRenderer(styles),
	}
}

// Styles returns the renderer's styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render produces the complete view
func (r *Renderer) Render(vs ViewState) string {
	snap := vs.Snapshot
	width := vs.Width
	if width <= 0 {
		width = 80
	}

	var top []string
	top = append(top, r.renderTitle(vs, width))
	top = append(top, truncate(r.styles.Prompt.Render("pattern> ")+vs.PatternView, width))
	if snap.ShowLegend {
		top = append(top, truncate(r.renderFlags(vs), width))
	}
	top = append(top, truncate(r.styles.Command.Render("$ "+snap.CommandLine), width))
	top = append(top, "")
	top = append(top, truncate(r.renderResultHeader(snap), width))

	body := r.renderBody(vs, width)

	var bottom []string
	bottom = append(bottom, truncate(r.renderStatus(snap), width))
	if snap.ShowLegend {
		h := vs.Help
		h.Width = width
		bottom = append(bottom, h.ShortHelpView(vs.Keys.ShortHelp()))
	}

	lines := append(top, body...)
	if vs.Height > 0 {
		if pad := vs.Height - len(lines) - len(bottom); pad > 0 {
			lines = append(lines, make([]string, pad)...)
		}
	}
	lines = append(lines, bottom...)
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderTitle(vs ViewState, width int) string {
	logo := r.styles.Title.Render("greptui")

	var right string
	switch vs.Snapshot.Status {
	case state.StatusSearching:
		right = r.styles.StatusSearching.Render(strings.TrimSpace(vs.Spinner + " searching"))
	case state.StatusError:
		right = r.styles.StatusError.Render("error")
	case state.StatusBrowsing:
		right = r.styles.StatusSuccess.Render("done")
	default:
		right = r.styles.Dim.Render("editing")
		if vs.Snapshot.Pending {
			right = r.styles.StatusSearching.Render(strings.TrimSpace(vs.Spinner+" searching")) + " " + right
		}
	}
	right += r.styles.Dim.Render(fmt.Sprintf(" [%s]", vs.Mode))

	padding := width - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

func (r *Renderer) renderFlags(vs ViewState) string {
	flags := vs.Snapshot.Query.Flags
	parts := make([]string, 0, len(domain.AllFlags))
	for _, f := range domain.AllFlags {
		label := f.String()
		if vs.FlagKeys != nil {
			if k := vs.FlagKeys(f); k != "" {
				label = k + ":" + label
			}
		}
		if flags.Has(f) {
			parts = append(parts, r.styles.FlagOn.Render("["+label+"]"))
		} else {
			parts = append(parts, r.styles.FlagOff.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) renderResultHeader(snap coordinator.Snapshot) string {
	switch {
	case snap.Status == state.StatusError:
		return r.styles.StatusError.Render("[ERROR]")
	case snap.Committed == "":
		return r.styles.Dim.Render("[RESULT]: type a pattern and press enter")
	case snap.Pending && snap.TotalLines == 0:
		return r.styles.Header.Render("[RESULT]: ") + r.styles.StatusSearching.Render("searching...")
	}
	header := r.styles.Header.Render(fmt.Sprintf("[RESULT]: %d %s, %d %s",
		snap.TotalLines, plural(snap.TotalLines, "line", "lines"),
		snap.TotalFiles, plural(snap.TotalFiles, "file", "files")))
	if snap.Truncated {
		header += r.styles.StatusWarning.Render(" (truncated)")
	}
	return header
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// renderBody renders the scroll indicators and the visible rows. It always
// returns ResultHeight+2 lines so the layout does not jump.
func (r *Renderer) renderBody(vs ViewState, width int) []string {
	snap := vs.Snapshot
	height := ResultHeight(vs.Height, snap.ShowLegend)
	if vs.Height <= 0 {
		height = len(snap.Window.Rows)
	}

	if snap.Status == state.StatusError {
		msg := strings.Split(strings.TrimRight(snap.ErrorMessage, "\n"), "\n")
		lines := []string{""}
		for i := 0; i < height && i < len(msg); i++ {
			lines = append(lines, truncate(r.styles.StatusError.Render(msg[i]), width))
		}
		return fill(lines, height+2)
	}

	w := snap.Window
	lines := make([]string, 0, height+2)
	if w.Above > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↑ %d more above", w.Above)))
	} else {
		lines = append(lines, "")
	}
	for i, row := range w.Rows {
		if i >= height {
			break
		}
		lines = append(lines, r.rows.RenderRow(row, snap.Searched, width))
	}
	lines = fill(lines, height+1)
	if w.Below > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below", w.Below)))
	} else {
		lines = append(lines, "")
	}
	return lines
}

func fill(lines []string, n int) []string {
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines
}

func (r *Renderer) renderStatus(snap coordinator.Snapshot) string {
	switch {
	case snap.StatusMessage != "":
		return r.styles.StatusWarning.Render(snap.StatusMessage)
	case snap.HasSelection:
		return r.styles.Dim.Render(fmt.Sprintf("%s:%d  (%d/%d)", snap.Selected.Path, snap.Selected.Line, snap.SelectedIndex+1, snap.TotalLines))
	}
	return ""
}
