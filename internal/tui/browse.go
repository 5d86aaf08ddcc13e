// Package tui is the interactive library browser: a filterable document
// table on the left, a rendered preview on the right. Browsing never
// writes to the library.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/ethicslab/aigov/internal/library"
	"github.com/ethicslab/aigov/internal/types"
)

var (
	colorSubtle    = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("205")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHighlight)
	helpStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	previewFrame = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)
)

// Model is the browser state.
type Model struct {
	lib *library.Library

	all     []types.Document // every managed document, sorted by path
	visible []types.Document // rows currently in the table

	table    table.Model
	preview  viewport.Model
	renderer *glamour.TermRenderer

	previewPath string
	filter      string
	isFiltering bool

	width  int
	height int
	err    error
}

// New scans the library and builds the browser model.
func New(lib *library.Library) (Model, error) {
	documents, _, err := lib.Scan()
	if err != nil {
		return Model{}, err
	}
	sort.Slice(documents, func(i, j int) bool { return documents[i].Path < documents[j].Path })

	columns := []table.Column{
		{Title: "Kind", Width: 12},
		{Title: "Tier", Width: 12},
		{Title: "Title", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(colorHighlight).
		Bold(false)
	t.SetStyles(s)

	m := Model{
		lib:     lib,
		all:     documents,
		table:   t,
		preview: viewport.New(60, 15),
	}
	m.preview.SetContent(helpStyle.Render("Select a document and press enter."))
	m.rebuildRows()
	return m, nil
}

// Browse runs the browser until the user quits.
func Browse(lib *library.Library) error {
	m, err := New(lib)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if m.isFiltering {
			switch msg.Type {
			case tea.KeyEsc:
				m.isFiltering = false
				m.filter = ""
				m.rebuildRows()
			case tea.KeyEnter:
				m.isFiltering = false
			case tea.KeyBackspace:
				if len(m.filter) > 0 {
					m.filter = m.filter[:len(m.filter)-1]
					m.rebuildRows()
				}
			case tea.KeyRunes:
				m.filter += string(msg.Runes)
				m.rebuildRows()
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.filter != "" {
				m.filter = ""
				m.rebuildRows()
				return m, nil
			}
			return m, tea.Quit
		case "/":
			m.isFiltering = true
			m.filter = ""
			m.rebuildRows()
			return m, nil
		case "enter":
			m.loadPreview()
			return m, nil
		case "pgup", "pgdown":
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("browse: %v", m.err))
	}

	right := m.preview.View()
	if m.previewPath != "" {
		right = helpStyle.Render(m.previewPath) + "\n" + right
	}

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.table.View(),
		previewFrame.Render(right),
	)

	return titleStyle.Render("aigov library") + "\n" + body + "\n" + m.footerView()
}

// layout reflows both panes after a resize.
func (m *Model) layout() {
	leftWidth := m.width * 2 / 5
	if leftWidth < 30 {
		leftWidth = 30
	}
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 20 {
		rightWidth = 20
	}
	paneHeight := m.height - 5
	if paneHeight < 5 {
		paneHeight = 5
	}

	titleWidth := leftWidth - 28
	if titleWidth < 10 {
		titleWidth = 10
	}
	m.table.SetColumns([]table.Column{
		{Title: "Kind", Width: 12},
		{Title: "Tier", Width: 12},
		{Title: "Title", Width: titleWidth},
	})
	m.table.SetWidth(leftWidth)
	m.table.SetHeight(paneHeight)

	m.preview.Width = rightWidth
	m.preview.Height = paneHeight - 1

	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(rightWidth-2),
	)
	if m.previewPath != "" {
		m.loadPreview()
	}
}

// rebuildRows filters the master list into the table.
func (m *Model) rebuildRows() {
	needle := strings.ToLower(m.filter)

	m.visible = m.visible[:0]
	rows := make([]table.Row, 0, len(m.all))
	for _, doc := range m.all {
		if needle != "" && !matches(doc, needle) {
			continue
		}
		m.visible = append(m.visible, doc)
		rows = append(rows, table.Row{
			string(doc.Front.Kind),
			string(doc.Front.Tier),
			doc.Front.Title,
		})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// matches reports whether a document survives the filter.
func matches(doc types.Document, needle string) bool {
	for _, field := range []string{
		string(doc.Front.Kind),
		string(doc.Front.Tier),
		string(doc.Front.Category),
		doc.Front.Title,
		doc.Path,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// selected returns the document under the cursor.
func (m *Model) selected() (types.Document, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return types.Document{}, false
	}
	return m.visible[idx], true
}

// loadPreview renders the selected document into the right pane.
func (m *Model) loadPreview() {
	doc, ok := m.selected()
	if !ok {
		return
	}

	rendered := doc.Body
	if m.renderer != nil {
		if out, err := m.renderer.Render(doc.Body); err == nil {
			rendered = out
		}
	}

	m.previewPath = doc.Path
	m.preview.SetContent(rendered)
	m.preview.GotoTop()
}

func (m Model) footerView() string {
	var status string
	switch {
	case m.isFiltering:
		status = fmt.Sprintf("Filter: %s█", m.filter)
	case m.filter != "":
		status = fmt.Sprintf("Filter: %s (esc to clear)", m.filter)
	default:
		status = "Press / to filter"
	}
	return helpStyle.Render(fmt.Sprintf("%d/%d documents · ↑/↓ select · enter preview · pgup/pgdn scroll · q quit · %s",
		len(m.visible), len(m.all), status))
}
