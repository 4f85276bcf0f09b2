// Package campaigns is the campaign screen: a paginated table of target
// lists and the dialog used to create and edit them.
package campaigns

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/recipients"
	"github.com/nhle/mailfront/internal/theme"
	"github.com/nhle/mailfront/internal/ui"
	"github.com/nhle/mailfront/internal/ui/pagedtable"
)

// Backend is the part of the mail API the campaign screen talks to.
type Backend interface {
	ListCampaigns(ctx context.Context) ([]model.Campaign, error)
	SaveCampaign(ctx context.Context, c model.Campaign) (*model.Campaign, error)
	DeleteCampaign(ctx context.Context, id int64) error
}

// Cache keeps the last campaign list for offline browsing.
type Cache interface {
	ReplaceCampaigns(ctx context.Context, campaigns []model.Campaign) error
	GetCampaigns(ctx context.Context) ([]model.Campaign, error)
}

// now is replaced in tests.
var now = time.Now

// CloseMsg signals the parent to leave the campaign screen.
type CloseMsg struct{}

type mode int

const (
	modeList mode = iota
	modeEditor
	modeConfirmDelete
)

type formBindings struct {
	confirm bool
}

type campaignsLoadedMsg struct {
	campaigns []model.Campaign
	cached    bool
	err       error
}

type campaignSavedMsg struct {
	campaign *model.Campaign
	isNew    bool
	err      error
}

type campaignDeletedMsg struct{ err error }

// Model is the Bubble Tea model for the campaign screen.
type Model struct {
	mode        mode
	backend     Backend
	cache       Cache
	keys        *keys.KeyMap
	campaigns   []model.Campaign
	table       pagedtable.Model
	editor      editor
	importer    *recipients.Importer
	editorGen   int
	confirmForm *huh.Form
	fb          *formBindings
	spinner     spinner.Model
	loading     bool
	saving      bool
	offline     bool
	width       int
	height      int
}

var columns = []table.Column{
	{Title: "Name", Width: 24},
	{Title: "Emails", Width: 8},
	{Title: "Created At", Width: 18},
}

// New creates the campaign screen.
func New(b Backend, c Cache, k *keys.KeyMap, pageSize, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		mode:     modeList,
		backend:  b,
		cache:    c,
		keys:     k,
		table:    pagedtable.New(columns, model.PageSizes, pageSize),
		fb:       &formBindings{},
		importer: recipients.NewImporter(),
		spinner:  sp,
	}
	m.SetSize(width, height)
	return m
}

// Init loads the campaign list.
func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh reloads campaigns from the backend.
func (m *Model) Refresh() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.loadCampaigns())
}

// InputActive reports whether the screen is consuming typed characters.
func (m Model) InputActive() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case campaignsLoadedMsg:
		m.loading = false
		m.offline = msg.cached
		if msg.err != nil && !msg.cached {
			return m, ui.Failure(fmt.Errorf("fetching campaigns: %w", msg.err))
		}
		m.setCampaigns(msg.campaigns)
		if msg.cached {
			return m, ui.Failure(fmt.Errorf("backend unreachable, showing cached campaigns: %w", msg.err))
		}
		return m, nil

	case campaignSavedMsg:
		m.saving = false
		if msg.err != nil {
			// Keep the dialog open so nothing typed is lost.
			m.editor.err = msg.err
			return m, ui.Failure(msg.err)
		}
		m.mode = modeList
		verb := "updated"
		if msg.isNew {
			verb = "created"
		}
		text := "Campaign " + verb
		if msg.campaign != nil {
			text = fmt.Sprintf("Campaign %q %s", msg.campaign.Name, verb)
		}
		return m, tea.Batch(m.Refresh(), ui.Status(text))

	case campaignDeletedMsg:
		m.mode = modeList
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		return m, tea.Batch(m.Refresh(), ui.Status("Campaign removed"))

	case editorSubmitMsg:
		m.saving = true
		return m, tea.Batch(m.spinner.Tick, m.saveCampaign(msg.campaign))

	case editorCancelMsg:
		m.mode = modeList
		return m, nil

	case importDoneMsg:
		if m.mode != modeEditor || msg.gen != m.editor.gen {
			slog.Debug("dropping import for a closed editor", "file", msg.name)
			return m, nil
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if m.loading || m.saving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActive(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeEditor:
		if m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	case modeConfirmDelete:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeList
			return m, nil
		}
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Refresh()

	case key.Matches(msg, m.keys.New):
		return m.openEditor(model.NewCampaign(now()))

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.openEditor(c)

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()

	case key.Matches(msg, m.keys.NextPage):
		m.table.NextPage()
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		m.table.PrevPage()
		return m, nil

	case key.Matches(msg, m.keys.PageSize):
		n := m.table.CyclePageSize()
		return m, ui.Status(fmt.Sprintf("Showing %d rows per page", n))
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) openEditor(c model.Campaign) (Model, tea.Cmd) {
	m.editorGen++
	m.editor = newEditor(c, m.keys, m.importer, m.editorGen, m.width, m.height)
	m.mode = modeEditor
	return m, nil
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if c, ok := m.selected(); ok {
		name = c.Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete campaign %q?", name)).
				Description("The target list is removed from the server.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		c, ok := m.selected()
		if m.fb.confirm && ok && c.ID != nil {
			return m, m.deleteCampaign(*c.ID)
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActive(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeEditor:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the campaign screen.
func (m Model) View() string {
	switch m.mode {
	case modeEditor:
		v := m.editor.View()
		if m.saving {
			v += "\n  " + m.spinner.View() + " Saving..."
		}
		return v
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	title := "Target Lists"
	if m.offline {
		title += " (offline)"
	}
	b.WriteString(theme.TitleStyle.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.campaigns) == 0:
		b.WriteString(m.spinner.View() + " Loading campaigns...")
	case len(m.campaigns) == 0:
		b.WriteString(theme.MutedStyle.Italic(true).Render(
			"No campaigns yet. Press 'n' to create one.",
		))
	default:
		b.WriteString(m.table.View())
	}

	b.WriteString("\n\n")
	b.WriteString(theme.MutedStyle.Render(
		"n new | e/enter edit | d delete | h/l page | s rows | r refresh | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width - 4)
	if m.mode == modeEditor {
		m.editor.setSize(width, height)
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func (m *Model) setCampaigns(campaigns []model.Campaign) {
	m.campaigns = campaigns
	rows := make([]table.Row, len(campaigns))
	for i, c := range campaigns {
		rows[i] = table.Row{
			c.Name,
			strconv.Itoa(len(c.Emails)),
			formatCreated(c),
		}
	}
	m.table.SetRows(rows)
}

func (m Model) selected() (model.Campaign, bool) {
	idx, ok := m.table.Index()
	if !ok || idx >= len(m.campaigns) {
		return model.Campaign{}, false
	}
	return m.campaigns[idx], true
}

func formatCreated(c model.Campaign) string {
	if c.CreatedAt.IsZero() {
		return "-"
	}
	return c.CreatedAt.Local().Format("2006-01-02 15:04")
}

// loadCampaigns fetches the list and refreshes the cache. When the backend
// cannot be reached the cached copy is returned instead.
func (m Model) loadCampaigns() tea.Cmd {
	b, c := m.backend, m.cache
	return func() tea.Msg {
		ctx := context.Background()
		campaigns, err := b.ListCampaigns(ctx)
		if err == nil {
			if cacheErr := c.ReplaceCampaigns(ctx, campaigns); cacheErr != nil {
				slog.WarnContext(ctx, "caching campaigns failed", "error", cacheErr)
			}
			return campaignsLoadedMsg{campaigns: campaigns}
		}

		cached, cacheErr := c.GetCampaigns(ctx)
		if cacheErr != nil || len(cached) == 0 {
			return campaignsLoadedMsg{err: err}
		}
		return campaignsLoadedMsg{campaigns: cached, cached: true, err: err}
	}
}

func (m Model) saveCampaign(c model.Campaign) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		saved, err := b.SaveCampaign(context.Background(), c)
		return campaignSavedMsg{campaign: saved, isNew: c.IsNew(), err: err}
	}
}

func (m Model) deleteCampaign(id int64) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		err := b.DeleteCampaign(context.Background(), id)
		return campaignDeletedMsg{err: err}
	}
}

// Owns reports whether msg is a result of work this screen started, so
// the parent can deliver it while another screen is active.
func (m Model) Owns(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case campaignsLoadedMsg, campaignSavedMsg, campaignDeletedMsg, importDoneMsg:
		return true
	case spinner.TickMsg:
		return msg.ID == m.spinner.ID()
	}
	return false
}
