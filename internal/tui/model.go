// Package tui is an interactive terminal search screen for the knowledge base.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/output"
	"github.com/Aman-CERP/kbsearch/internal/search"
)

// Searcher is the engine surface the TUI needs.
type Searcher interface {
	Load() *index.Index
	Search(query string, k int, hint string) []search.Result
	QueryLanguage(query, hint string) lang.Tag
}

// loadedMsg reports that the first snapshot is ready.
type loadedMsg struct {
	generation uint64
	chunks     int
	terms      int
}

// Model is the Bubble Tea model for the search screen.
type Model struct {
	searcher Searcher
	k        int
	styles   output.Styles

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	results   []search.Result
	cursor    int
	lastQuery string
	queryLang lang.Tag
	hints     []string
	hintIdx   int

	status  string
	loading bool
	ready   bool
	width   int
}

// New creates the model. k is the number of results per query.
func New(s Searcher, k int, styles output.Styles) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask the knowledge base and press Enter"
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Header

	hints := []string{""}
	for _, t := range lang.Tags() {
		hints = append(hints, string(t))
	}

	return Model{
		searcher: s,
		k:        k,
		styles:   styles,
		input:    ti,
		viewport: viewport.New(80, 10),
		spinner:  sp,
		hints:    hints,
		status:   "Loading knowledge base…",
		loading:  true,
		width:    80,
	}
}

// Init starts the cursor blink, the spinner and the index load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	s := m.searcher
	return func() tea.Msg {
		ix := s.Load()
		return loadedMsg{generation: ix.Generation(), chunks: ix.Len(), terms: ix.TermCount()}
	}
}

// Update handles key, window and load events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		// header, input box (3 lines), status, spacer
		reserved := 1 + 3 + 1 + 1
		_, frame := resultBoxStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-reserved-frame)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil

	case loadedMsg:
		m.loading = false
		m.status = fmt.Sprintf("Loaded %d chunks, %d terms (generation %d).", msg.chunks, msg.terms, msg.generation)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		}

		switch msg.String() {
		case "enter":
			m.runQuery()
			return m, nil
		case "down", "ctrl+n":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrent())
				m.viewport.GotoTop()
			}
			return m, nil
		case "up", "ctrl+p":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrent())
				m.viewport.GotoTop()
			}
			return m, nil
		case "ctrl+l":
			m.hintIdx = (m.hintIdx + 1) % len(m.hints)
			m.status = "Query language: " + m.hintLabel()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) runQuery() {
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		return
	}
	hint := m.hints[m.hintIdx]

	m.results = m.searcher.Search(q, m.k, hint)
	m.queryLang = m.searcher.QueryLanguage(q, hint)
	m.cursor = 0
	m.lastQuery = q
	m.loading = false
	if len(m.results) == 0 {
		m.status = fmt.Sprintf("No results for %q [%s]", q, m.queryLang)
	} else {
		m.status = fmt.Sprintf("%d results for %q [%s]  ↑/↓ to browse", len(m.results), q, m.queryLang)
	}
	m.viewport.SetContent(m.renderCurrent())
	m.viewport.GotoTop()
}

func (m Model) hintLabel() string {
	if h := m.hints[m.hintIdx]; h != "" {
		return h
	}
	return "auto"
}

// View renders the screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.styles.Header.Render("Knowledge Base Search") +
		m.styles.Dim.Render(fmt.Sprintf("  lang:%s  k:%d", m.hintLabel(), m.k))

	status := m.styles.Label.Render(m.status)
	if m.loading {
		status = m.spinner.View() + " " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		resultBoxStyle.Width(max(20, m.width-2)).Render(m.viewport.View()),
		queryBoxStyle.Width(max(20, m.width-2)).Render(m.input.View()),
		status,
		m.styles.Dim.Render("enter search · ↑/↓ results · ctrl+l language · esc quit"),
	)
}

func (m Model) renderCurrent() string {
	if len(m.results) == 0 {
		return m.styles.Dim.Render("No results yet.")
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("%s  %s",
		m.styles.Title.Render(fmt.Sprintf("%d/%d %s", m.cursor+1, len(m.results), r.Title)),
		m.styles.Score.Render(fmt.Sprintf("score=%.3f", r.Score)))
	meta := m.styles.Label.Render(fmt.Sprintf("%s · %s · %s", r.ChunkID, r.Source, r.Lang))
	body := lipgloss.NewStyle().Width(max(20, m.viewport.Width)).
		Render(output.HighlightBest(r, m.lastQuery, m.styles.Mark))
	return title + "\n" + meta + "\n\n" + body
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, s Searcher, k int, styles output.Styles) error {
	p := tea.NewProgram(New(s, k, styles), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
