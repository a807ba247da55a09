// Package browse implements the interactive paged resource browser of
// haloctl.
package browse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yaroslav/haloclient/cmd/haloctl/printer"
	"github.com/yaroslav/haloclient/models"
)

// Page is one fetched page of objects in their JSON form.
type Page = models.ListResult[map[string]interface{}]

// PageFrom converts any list result to a Page.
func PageFrom(list interface{}) (Page, error) {
	var page Page

	data, err := json.Marshal(list)
	if err != nil {
		return page, fmt.Errorf("failed to encode list: %w", err)
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return page, fmt.Errorf("failed to decode list: %w", err)
	}
	return page, nil
}

// Fetcher loads one page. Pages are 1-based.
type Fetcher func(ctx context.Context, page, size int) (Page, error)

// PageMsg carries a fetched page.
type PageMsg struct {
	Page Page
}

// ErrorMsg carries a failed fetch.
type ErrorMsg struct {
	Err error
}

// Model is the browser state.
type Model struct {
	ctx     context.Context
	title   string
	fetch   Fetcher
	columns []printer.Column
	size    int
	now     func() time.Time

	table   table.Model
	help    help.Model
	page    int
	current Page
	loading bool
	err     error
	width   int
	height  int
}

// New creates a browser over fetch showing size objects per page.
func New(ctx context.Context, title string, columns []printer.Column, size int, fetch Fetcher) Model {
	if size <= 0 {
		size = 20
	}

	tableColumns := make([]table.Column, len(columns))
	for i, c := range columns {
		tableColumns[i] = table.Column{Title: c.Header, Width: len(c.Header) + 2}
	}

	t := table.New(
		table.WithColumns(tableColumns),
		table.WithFocused(true),
		// Room for the header and its border
		table.WithHeight(size+2),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Gray).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(PrimaryColor).
		Bold(false)
	t.SetStyles(s)

	return Model{
		ctx:     ctx,
		title:   title,
		fetch:   fetch,
		columns: columns,
		size:    size,
		now:     time.Now,
		table:   t,
		help:    help.New(),
		page:    1,
		loading: true,
	}
}

// Init fetches the first page.
func (m Model) Init() tea.Cmd {
	return m.fetchPage(1)
}

func (m Model) fetchPage(page int) tea.Cmd {
	fetch, ctx, size := m.fetch, m.ctx, m.size
	return func() tea.Msg {
		result, err := fetch(ctx, page, size)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		if result.Page == 0 {
			result.Page = page
		}
		return PageMsg{Page: result}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PageMsg:
		m.loading = false
		m.err = nil
		m.current = msg.Page
		m.page = msg.Page.Page
		m.setRows(msg.Page.Items)
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 8; h > 0 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, Keys.Next):
			if m.loading || !m.current.HasNext {
				return m, nil
			}
			m.loading = true
			return m, m.fetchPage(m.page + 1)
		case key.Matches(msg, Keys.Previous):
			if m.loading || m.page <= 1 {
				return m, nil
			}
			m.loading = true
			return m, m.fetchPage(m.page - 1)
		case key.Matches(msg, Keys.Refresh):
			m.loading = true
			return m, m.fetchPage(m.page)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) setRows(items []map[string]interface{}) {
	cells := printer.Rows(items, m.columns, m.now())

	// Widen columns to fit their content
	cols := m.table.Columns()
	for _, row := range cells {
		for i, cell := range row {
			if w := lipgloss.Width(cell) + 2; i < len(cols) && w > cols[i].Width {
				cols[i].Width = w
			}
		}
	}
	m.table.SetColumns(cols)

	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		rows[i] = table.Row(row)
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// Selected returns the name in the first column of the selected row.
func (m Model) Selected() string {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// View renders the browser.
func (m Model) View() string {
	title := TitleStyle.Render(m.title)

	var body string
	switch {
	case m.err != nil:
		body = ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.loading && len(m.current.Items) == 0:
		body = "Loading..."
	case len(m.current.Items) == 0:
		body = "No resources found."
	default:
		body = m.table.View()
	}

	status := StatusStyle.Render(fmt.Sprintf("page %d/%d · %d total", m.page, max(m.current.TotalPages, 1), m.current.Total))
	if m.loading {
		status += StatusStyle.Render(" · loading")
	}

	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		body,
		"",
		status,
		m.help.View(Keys),
	))
}
