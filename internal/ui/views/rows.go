package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"greptui/internal/domain"
	"greptui/internal/ui/services/results"
)

// RowRenderer renders file headers and match lines of the result list
type RowRenderer struct {
	styles *Styles
}

// NewRowRenderer creates a new row renderer
func NewRowRenderer(styles *Styles) *RowRenderer {
	return &RowRenderer{styles: styles}
}

// RenderRow renders one row of the result window. q is used to highlight
// the matched text where that can be done without a regex engine.
func (r *RowRenderer) RenderRow(row results.Row, q domain.Query, width int) string {
	if row.Kind == results.RowFile {
		return r.renderFile(row, width)
	}
	return r.renderMatch(row, q, width)
}

func (r *RowRenderer) renderFile(row results.Row, width int) string {
	noun := "lines"
	if row.Count == 1 {
		noun = "line"
	}
	line := fmt.Sprintf("%s %s", r.styles.FileHeader.Render(row.Path), r.styles.Dim.Render(fmt.Sprintf("(%d %s)", row.Count, noun)))
	if row.Collapsed {
		line += r.styles.Dim.Render(" …")
	}
	if row.Selected {
		line = r.styles.SelectionBg.Render(">") + " " + line
	}
	return truncate(line, width)
}

func (r *RowRenderer) renderMatch(row results.Row, q domain.Query, width int) string {
	num := fmt.Sprintf("%6d", row.Entry.Line)
	text := expandTabs(row.Entry.Text)

	// the number column is 6 wide, plus the marker and two spaces
	avail := width - 9
	if width > 0 && avail > 0 {
		text = truncatePlain(text, avail)
	}

	marker := " "
	numStyle := r.styles.LineNumber
	textStyle := lipgloss.NewStyle()
	hl := r.styles.Highlight
	if row.Selected {
		marker = ">"
		numStyle = numStyle.Inherit(r.styles.SelectionBg)
		textStyle = textStyle.Inherit(r.styles.SelectionBg)
		hl = hl.Inherit(r.styles.SelectionBg)
	}

	body := highlightMatch(text, literalPattern(q), q.Flags.Has(domain.IgnoreCase), hl, textStyle)
	line := textStyle.Render(marker+" ") + numStyle.Render(num) + textStyle.Render("  ") + body

	if row.Selected && width > 0 {
		if pad := width - lipgloss.Width(line); pad > 0 {
			line += r.styles.SelectionBg.Render(strings.Repeat(" ", pad))
		}
	}
	return line
}

// literalPattern returns the pattern when it matches itself literally,
// otherwise ""
func literalPattern(q domain.Query) string {
	if q.Pattern == "" || q.Flags.Has(domain.InvertMatch) {
		return ""
	}
	if q.Flags.Has(domain.FixedStrings) {
		return q.Pattern
	}
	if strings.ContainsAny(q.Pattern, `.[]()*+?{}|^$\`) {
		return ""
	}
	return q.Pattern
}

// highlightMatch highlights every occurrence of pattern within text
func highlightMatch(text, pattern string, ignoreCase bool, highlightStyle, normalStyle lipgloss.Style) string {
	if pattern == "" {
		return normalStyle.Render(text)
	}
	haystack, needle := text, pattern
	if ignoreCase {
		haystack, needle = strings.ToLower(text), strings.ToLower(pattern)
		// case folding changed byte offsets; give up on highlighting
		if len(haystack) != len(text) || len(needle) != len(pattern) {
			return normalStyle.Render(text)
		}
	}

	var b strings.Builder
	for {
		i := strings.Index(haystack, needle)
		if i < 0 {
			break
		}
		if i > 0 {
			b.WriteString(normalStyle.Render(text[:i]))
		}
		b.WriteString(highlightStyle.Render(text[i : i+len(needle)]))
		text, haystack = text[i+len(needle):], haystack[i+len(needle):]
	}
	if text != "" {
		b.WriteString(normalStyle.Render(text))
	}
	return b.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// truncatePlain cuts unstyled text to width cells
func truncatePlain(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > width-1 {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + "…"
}

// truncate cuts a styled line to width cells
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
