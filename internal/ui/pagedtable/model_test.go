package pagedtable

import (
	"fmt"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(n int) []table.Row {
	out := make([]table.Row, n)
	for i := range out {
		out[i] = table.Row{fmt.Sprintf("row %d", i)}
	}
	return out
}

func newTable(pageSize int) Model {
	return New([]table.Column{{Title: "Name", Width: 10}}, []int{5, 10, 15}, pageSize)
}

func TestLabelAndPaging(t *testing.T) {
	m := newTable(5)
	m.SetRows(rows(12))

	assert.Equal(t, "1-5 of 12", m.Label())

	m.NextPage()
	assert.Equal(t, 1, m.Page())
	assert.Equal(t, "6-10 of 12", m.Label())

	m.NextPage()
	assert.Equal(t, "11-12 of 12", m.Label())

	// Already on the last page.
	m.NextPage()
	assert.Equal(t, 2, m.Page())

	m.PrevPage()
	m.PrevPage()
	m.PrevPage()
	assert.Equal(t, 0, m.Page())
}

func TestIndexIsAbsolute(t *testing.T) {
	m := newTable(5)
	m.SetRows(rows(12))
	m.NextPage()

	idx, ok := m.Index()
	require.True(t, ok)
	assert.Equal(t, 5, idx)
}

func TestEmptyTable(t *testing.T) {
	m := newTable(5)
	m.SetRows(nil)

	assert.Equal(t, "0 of 0", m.Label())
	_, ok := m.Index()
	assert.False(t, ok)
}

func TestShrinkingRowsClampsPage(t *testing.T) {
	m := newTable(5)
	m.SetRows(rows(12))
	m.NextPage()
	m.NextPage()

	m.SetRows(rows(4))
	assert.Equal(t, 0, m.Page())
	assert.Equal(t, "1-4 of 4", m.Label())
}

func TestCyclePageSize(t *testing.T) {
	m := newTable(5)
	m.SetRows(rows(12))
	m.NextPage()

	assert.Equal(t, 10, m.CyclePageSize())
	assert.Equal(t, 0, m.Page())
	assert.Equal(t, "1-10 of 12", m.Label())

	assert.Equal(t, 15, m.CyclePageSize())
	assert.Equal(t, "1-12 of 12", m.Label())

	assert.Equal(t, 5, m.CyclePageSize())
}

func TestUnknownPageSizeFallsBackToFirst(t *testing.T) {
	m := newTable(7)
	assert.Equal(t, 5, m.PageSize())
}
