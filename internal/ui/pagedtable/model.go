// Package pagedtable combines a bubbles table with a paginator so that
// long lists are shown one page at a time with a selectable page size.
package pagedtable

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailfront/internal/theme"
)

// headerLines is the height of the table header: the titles plus the
// bottom border drawn by theme.TableStyles.
const headerLines = 2

// Model is a table that only holds the rows of the current page.
type Model struct {
	table   table.Model
	pager   paginator.Model
	columns []table.Column
	rows    []table.Row
	sizes   []int
	sizeIdx int
}

// New creates a paged table. The first column absorbs any width left over
// by the others. pageSize must be one of sizes, otherwise the first size is
// used.
func New(columns []table.Column, sizes []int, pageSize int) Model {
	if len(sizes) == 0 {
		sizes = []int{10}
	}
	idx := max(slices.Index(sizes, pageSize), 0)

	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = sizes[idx]

	t := table.New(
		table.WithColumns(slices.Clone(columns)),
		table.WithFocused(true),
		table.WithStyles(theme.TableStyles()),
	)
	t.SetHeight(sizes[idx] + headerLines)

	return Model{
		table:   t,
		pager:   p,
		columns: columns,
		sizes:   sizes,
		sizeIdx: idx,
	}
}

// SetRows replaces the full row set. The current page is kept when it
// still exists, otherwise the last page is shown.
func (m *Model) SetRows(rows []table.Row) {
	m.rows = rows
	if len(rows) == 0 {
		m.pager.TotalPages = 1
	} else {
		m.pager.SetTotalPages(len(rows))
	}
	if m.pager.Page >= m.pager.TotalPages {
		m.pager.Page = m.pager.TotalPages - 1
	}
	m.refresh()
}

// Len returns the number of rows across all pages.
func (m Model) Len() int {
	return len(m.rows)
}

// Index returns the position of the selected row in the full row set.
func (m Model) Index() (int, bool) {
	if len(m.rows) == 0 || m.table.Cursor() < 0 {
		return 0, false
	}
	start, _ := m.pager.GetSliceBounds(len(m.rows))
	idx := start + m.table.Cursor()
	if idx >= len(m.rows) {
		return 0, false
	}
	return idx, true
}

// Page returns the zero-based current page.
func (m Model) Page() int {
	return m.pager.Page
}

// PageSize returns the number of rows per page.
func (m Model) PageSize() int {
	return m.pager.PerPage
}

// NextPage moves to the following page, if any, and selects its first row.
func (m *Model) NextPage() {
	if m.pager.OnLastPage() {
		return
	}
	m.pager.NextPage()
	m.table.SetCursor(0)
	m.refresh()
}

// PrevPage moves to the preceding page, if any, and selects its first row.
func (m *Model) PrevPage() {
	if m.pager.OnFirstPage() {
		return
	}
	m.pager.PrevPage()
	m.table.SetCursor(0)
	m.refresh()
}

// CyclePageSize switches to the next page size and returns to the first
// page.
func (m *Model) CyclePageSize() int {
	m.sizeIdx = (m.sizeIdx + 1) % len(m.sizes)
	m.pager.PerPage = m.sizes[m.sizeIdx]
	m.pager.Page = 0
	m.table.SetHeight(m.pager.PerPage + headerLines)
	m.table.SetCursor(0)
	m.SetRows(m.rows)
	return m.pager.PerPage
}

// Label describes the visible range, such as "6-10 of 12".
func (m Model) Label() string {
	if len(m.rows) == 0 {
		return "0 of 0"
	}
	start, end := m.pager.GetSliceBounds(len(m.rows))
	return fmt.Sprintf("%d-%d of %d", start+1, end, len(m.rows))
}

// Update forwards row navigation to the table.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table followed by the page indicator.
func (m Model) View() string {
	footer := theme.MutedStyle.Render(fmt.Sprintf(
		"%s  page %s  rows/page %d",
		m.Label(), m.pager.View(), m.pager.PerPage,
	))
	return lipgloss.JoinVertical(lipgloss.Left, m.table.View(), footer)
}

// SetWidth fits the columns to width.
func (m *Model) SetWidth(width int) {
	m.table.SetWidth(width)

	cols := slices.Clone(m.columns)
	if len(cols) > 0 {
		fixed := 0
		for _, c := range cols[1:] {
			fixed += c.Width + 2
		}
		cols[0].Width = max(width-fixed-2, m.columns[0].Width)
	}
	m.table.SetColumns(cols)
}

// Focus gives keyboard focus to the table.
func (m *Model) Focus() {
	m.table.Focus()
}

// Blur removes keyboard focus from the table.
func (m *Model) Blur() {
	m.table.Blur()
}

func (m *Model) refresh() {
	start, end := m.pager.GetSliceBounds(len(m.rows))
	m.table.SetRows(m.rows[start:end])
	if m.table.Cursor() < 0 && end > start {
		m.table.SetCursor(0)
	}
}
