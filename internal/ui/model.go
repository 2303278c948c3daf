package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"greptui/internal/domain"
	"greptui/internal/logging"
	"greptui/internal/ui/coordinator"
	"greptui/internal/ui/input"
	"greptui/internal/ui/input/keymap"
	inputtypes "greptui/internal/ui/input/types"
	"greptui/internal/ui/state"
	"greptui/internal/ui/views"
)

// Runner is the readiness side of the search runner
type Runner interface {
	Ready() <-chan struct{}
	Done() <-chan struct{}
}

// Options configure the UI model
type Options struct {
	Keys           keymap.KeyMap
	PreviewContext int
	Pager          Pager
}

// Model is the bubbletea model. It owns nothing but presentation state;
// the session lives in the coordinator and is only touched from Update.
type Model struct {
	coord  *coordinator.Coordinator
	runner Runner
	input  *input.Handler
	pager  Pager
	log    *logrus.Entry

	renderer *views.Renderer
	spinner  spinner.Model
	pattern  textinput.Model
	help     help.Model

	width          int
	height         int
	previewContext int
	spinning       bool
	inPager        bool
}

// NewModel creates the UI model around a session and its search runner
func NewModel(coord *coordinator.Coordinator, runner Runner, opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	pager := opts.Pager
	if pager == nil {
		pager = NewOvPager()
	}

	m := &Model{
		coord:          coord,
		runner:         runner,
		input:          input.New(opts.Keys),
		pager:          pager,
		log:            logging.NewLogger("ui"),
		renderer:       views.NewRenderer(),
		spinner:        sp,
		pattern:        ti,
		help:           help.New(),
		previewContext: opts.PreviewContext,
	}
	m.syncPattern()
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	if ov, ok := m.pager.(*OvPager); ok {
		ov.SetProgram(p)
	}
}

// Init starts waiting for search outcomes
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForOutcome(), m.startSpinner())
}

// waitForOutcome blocks in a command goroutine until the runner signals.
// It never touches the session.
func (m *Model) waitForOutcome() tea.Cmd {
	ready, done := m.runner.Ready(), m.runner.Done()
	return func() tea.Msg {
		select {
		case <-ready:
			return outcomeReadyMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning || !m.coord.IsSearching() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// outcomes are applied whatever woke us up
	m.coord.Poll()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.pattern.Width = max(10, msg.Width-12)

	case outcomeReadyMsg:
		cmds = append(cmds, m.waitForOutcome())

	case spinner.TickMsg:
		if !m.coord.IsSearching() {
			m.spinning = false
			break
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case previewMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("preview failed")
			m.coord.Notify(msg.err.Error())
			break
		}
		cmds = append(cmds, m.showInPager(msg.content))

	case pagerDoneMsg:
		m.inPager = false
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("pager failed")
			m.coord.Notify("pager: " + msg.err.Error())
		}

	case tea.KeyMsg:
		if m.inPager {
			break
		}
		for _, action := range m.input.HandleKey(msg, m.coord) {
			if cmd := m.processAction(action); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	if m.coord.Exited() {
		return m, tea.Quit
	}

	m.followStatus()
	m.resize()
	m.syncPattern()
	cmds = append(cmds, m.startSpinner())
	return m, tea.Batch(cmds...)
}

// processAction executes actions that need the terminal; everything else
// goes to the session
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch action.(type) {
	case inputtypes.OpenPreviewAction:
		entry, ok := m.coord.Results.Selected()
		if !ok {
			return nil
		}
		return m.buildPreview(entry)
	case inputtypes.ToggleHelpAction:
		return m.showInPager(HelpText(*m.input.Keys()))
	default:
		m.coord.Dispatch(action)
		return nil
	}
}

// Commit searches for the current query and focuses the results, as if
// enter had been pressed. Used for a pattern given on the command line.
func (m *Model) Commit() {
	m.coord.Dispatch(inputtypes.CommitAction{})
	for _, a := range m.input.ChangeMode(inputtypes.ModeBrowse, m.coord) {
		m.coord.Dispatch(a)
	}
	m.syncPattern()
}

func (m *Model) buildPreview(entry domain.MatchEntry) tea.Cmd {
	context := m.previewContext
	return func() tea.Msg {
		content, err := BuildPreview(entry, context)
		return previewMsg{content: content, err: err}
	}
}

func (m *Model) showInPager(content string) tea.Cmd {
	m.inPager = true
	pager := m.pager
	return func() tea.Msg {
		return pagerDoneMsg{err: pager.Show(strings.NewReader(content))}
	}
}

// followStatus moves focus to the pattern when a search fails so the query
// can be fixed right away
func (m *Model) followStatus() {
	if m.coord.Status() == state.StatusError && m.input.CurrentMode() == inputtypes.ModeBrowse {
		for _, a := range m.input.ChangeMode(inputtypes.ModeEdit, m.coord) {
			m.coord.Dispatch(a)
		}
	}
}

func (m *Model) resize() {
	if m.height == 0 {
		return
	}
	m.coord.Resize(views.ResultHeight(m.height, m.coord.State().ShowLegend))
}

func (m *Model) syncPattern() {
	q := m.coord.State().Query
	if m.pattern.Value() != q.Pattern {
		m.pattern.SetValue(q.Pattern)
	}
	m.pattern.SetCursor(q.Cursor)
	if m.input.CurrentMode() == inputtypes.ModeEdit {
		m.pattern.Focus()
	} else {
		m.pattern.Blur()
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.inPager {
		return ""
	}

	keys := m.input.Keys()
	return m.renderer.Render(views.ViewState{
		Width:       m.width,
		Height:      m.height,
		Snapshot:    m.coord.Snapshot(),
		Mode:        m.input.CurrentMode(),
		PatternView: m.pattern.View(),
		Spinner:     m.spinner.View(),
		Help:        m.help,
		Keys:        keys,
		FlagKeys: func(f domain.Flag) string {
			if k := keys.Binding(f).Keys(); len(k) > 0 {
				return k[0]
			}
			return ""
		},
	})
}

// LastCommitted returns the query of the latest commit, for printing on exit
func (m *Model) LastCommitted() (domain.Query, bool) {
	return m.coord.LastCommitted()
}

// Mode returns the input mode
func (m *Model) Mode() inputtypes.Mode {
	return m.input.CurrentMode()
}
