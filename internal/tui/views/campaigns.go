package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/forms"
	"github.com/xpost-dev/xpost/internal/tui"
	"github.com/xpost-dev/xpost/internal/tui/commands"
)

const (
	msgCampaignCreated      = "Campaign created successfully!"
	msgCampaignCreateFailed = "Failed to create campaign"
	msgCampaignToggleFailed = "Failed to toggle campaign"
	msgCampaignDeleteFailed = "Failed to delete campaign"
	msgConfirmDelete        = "Delete this campaign?"
	campaignsViewName       = "campaigns"
)

const (
	campFieldName = iota
	campFieldDescription
	campFieldRecurrence
	campFieldTotal
)

// CampaignsModel lists campaigns and hosts the create form.
type CampaignsModel struct {
	deps *Deps

	campaigns []api.Campaign
	loaded    bool
	loadErr   error
	selected  int

	showForm bool
	inputs   []textinput.Model
	focus    int

	phase         tui.Phase
	dialog        Dialog
	pendingDelete int

	width  int
	height int
}

// NewCampaignsModel creates a CampaignsModel with the form hidden.
func NewCampaignsModel(deps *Deps, width, height int) CampaignsModel {
	inputs := make([]textinput.Model, campFieldTotal)
	placeholders := []string{
		"Campaign name",
		"Description (optional)",
		"e.g., 0 9 * * * (daily at 9 AM)",
	}
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		ti.Prompt = "› "
		inputs[i] = ti
	}

	return CampaignsModel{
		deps:   deps,
		inputs: inputs,
		width:  width,
		height: height,
	}
}

// Init loads the campaign list.
func (m CampaignsModel) Init() tea.Cmd {
	return commands.LoadCampaignsCmd(m.deps.Client)
}

// Campaigns returns the loaded campaigns.
func (m CampaignsModel) Campaigns() []api.Campaign {
	return m.campaigns
}

// Phase reports the request state.
func (m CampaignsModel) Phase() tui.Phase {
	return m.phase
}

// Dialog returns the dialog currently shown, if any.
func (m CampaignsModel) Dialog() Dialog {
	return m.dialog
}

// FormVisible reports whether the create form is shown.
func (m CampaignsModel) FormVisible() bool {
	return m.showForm
}

// CapturesInput reports whether keys belong to a dialog or the form.
func (m CampaignsModel) CapturesInput() bool {
	return m.dialog.Open() || m.showForm
}

// Update handles messages for the campaigns view.
func (m CampaignsModel) Update(msg tea.Msg) (CampaignsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tui.CampaignsLoadedMsg:
		m.loaded = true
		m.loadErr = msg.Err
		if msg.Err != nil {
			m.deps.logFailure(campaignsViewName, "load campaigns", msg.Err)
			return m, nil
		}
		m.campaigns = msg.Campaigns
		if m.selected >= len(m.campaigns) {
			m.selected = max(len(m.campaigns)-1, 0)
		}
		return m, nil

	case tui.CampaignCreatedMsg:
		if msg.Err != nil {
			m.deps.logFailure(campaignsViewName, "create campaign", msg.Err)
			m.phase = tui.PhaseFailed
			m.dialog = Alert(msgCampaignCreateFailed)
			return m, nil
		}
		m.phase = tui.PhaseSucceeded
		m.dialog = Alert(msgCampaignCreated)
		m.resetForm()
		return m, m.Init()

	case tui.CampaignToggledMsg:
		if msg.Err != nil {
			m.deps.logFailure(campaignsViewName, "toggle campaign", msg.Err)
			m.phase = tui.PhaseFailed
			m.dialog = Alert(msgCampaignToggleFailed)
			return m, nil
		}
		m.phase = tui.PhaseIdle
		return m, m.Init()

	case tui.CampaignDeletedMsg:
		if msg.Err != nil {
			m.deps.logFailure(campaignsViewName, "delete campaign", msg.Err)
			m.phase = tui.PhaseFailed
			m.dialog = Alert(msgCampaignDeleteFailed)
			return m, nil
		}
		m.phase = tui.PhaseIdle
		return m, m.Init()

	case tea.KeyMsg:
		if m.dialog.Open() {
			return m.handleDialog(msg)
		}
		if m.showForm {
			return m.handleFormKey(msg)
		}
		return m.handleListKey(msg)
	}

	return m, nil
}

func (m CampaignsModel) handleDialog(msg tea.KeyMsg) (CampaignsModel, tea.Cmd) {
	var res DialogResult
	m.dialog, res = m.dialog.Update(msg)
	switch res {
	case DialogAccepted:
		id := m.pendingDelete
		m.pendingDelete = 0
		m.phase = tui.PhaseSubmitting
		return m, commands.DeleteCampaignCmd(m.deps.Client, id)
	case DialogRejected:
		m.pendingDelete = 0
	case DialogDismissed:
		m.phase = tui.PhaseIdle
	}
	return m, nil
}

func (m CampaignsModel) handleListKey(msg tea.KeyMsg) (CampaignsModel, tea.Cmd) {
	if m.phase == tui.PhaseSubmitting {
		return m, nil
	}
	switch msg.String() {
	case tui.KeyUp, "k":
		if m.selected > 0 {
			m.selected--
		}
	case tui.KeyDown, "j":
		if m.selected < len(m.campaigns)-1 {
			m.selected++
		}
	case "n":
		m.showForm = true
		m.setFocus(campFieldName)
	case "r":
		return m, m.Init()
	case "t":
		if c, ok := m.current(); ok {
			m.phase = tui.PhaseSubmitting
			return m, commands.ToggleCampaignCmd(m.deps.Client, c.ID)
		}
	case "d":
		if c, ok := m.current(); ok {
			m.pendingDelete = c.ID
			m.dialog = Confirm(msgConfirmDelete)
		}
	}
	return m, nil
}

func (m CampaignsModel) handleFormKey(msg tea.KeyMsg) (CampaignsModel, tea.Cmd) {
	switch msg.String() {
	case tui.KeyEsc:
		m.showForm = false
		m.setFocus(-1)
		return m, nil
	case tui.KeyTab, tui.KeyDown:
		m.setFocus((m.focus + 1) % campFieldTotal)
		return m, nil
	case tui.KeyShiftTab, tui.KeyUp:
		m.setFocus((m.focus + campFieldTotal - 1) % campFieldTotal)
		return m, nil
	case tui.KeyEnter, "ctrl+s":
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m CampaignsModel) submit() (CampaignsModel, tea.Cmd) {
	if m.phase == tui.PhaseSubmitting {
		return m, nil
	}
	in, err := forms.ParseCampaign(
		m.inputs[campFieldName].Value(),
		m.inputs[campFieldDescription].Value(),
		m.inputs[campFieldRecurrence].Value(),
	)
	if err != nil {
		m.dialog = Alert(err.Error())
		return m, nil
	}
	m.phase = tui.PhaseSubmitting
	return m, commands.CreateCampaignCmd(m.deps.Client, in)
}

func (m *CampaignsModel) resetForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.showForm = false
	m.setFocus(-1)
}

// setFocus focuses one form field; -1 blurs them all.
func (m *CampaignsModel) setFocus(field int) {
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	m.focus = max(field, 0)
}

func (m CampaignsModel) current() (api.Campaign, bool) {
	if m.selected < 0 || m.selected >= len(m.campaigns) {
		return api.Campaign{}, false
	}
	return m.campaigns[m.selected], true
}

// View renders the campaigns view.
func (m CampaignsModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Campaigns"))
	b.WriteString("\n\n")

	if m.showForm {
		b.WriteString(tui.SectionStyle.Render("Create New Campaign"))
		b.WriteString("\n")
		labels := []string{"Campaign Name", "Description", "Recurrence (Cron Expression)"}
		for i, in := range m.inputs {
			b.WriteString(fieldLabel(labels[i], m.focus == i))
			b.WriteString("\n")
			b.WriteString(in.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.dialog.Open() {
		b.WriteString(m.dialog.View())
		b.WriteString("\n\n")
	}

	b.WriteString(tui.SectionStyle.Render("All Campaigns"))
	b.WriteString("\n")
	switch {
	case !m.loaded:
		b.WriteString(tui.DimStyle.Render("Loading..."))
		b.WriteString("\n")
	case m.loadErr != nil:
		b.WriteString(tui.ErrorStyle.Render("Could not load campaigns. Press r to retry."))
		b.WriteString("\n")
	case len(m.campaigns) == 0:
		b.WriteString(tui.DimStyle.Render("No campaigns yet. Create your first campaign!"))
		b.WriteString("\n")
	default:
		for i, c := range m.campaigns {
			b.WriteString(m.renderCampaign(i, c))
		}
	}

	b.WriteString("\n")
	if m.showForm {
		b.WriteString(tui.HelpLine(tui.Relabel(tui.DefaultKeyMap.Enter, "create"), tui.DefaultKeyMap.Tab, tui.Relabel(tui.DefaultKeyMap.Escape, "cancel")))
	} else {
		b.WriteString(tui.HelpLine(tui.Relabel(tui.DefaultKeyMap.New, "new campaign"), tui.DefaultKeyMap.Toggle, tui.DefaultKeyMap.Delete, tui.DefaultKeyMap.Reload))
	}
	return frame(b.String(), m.width)
}

func (m CampaignsModel) renderCampaign(i int, c api.Campaign) string {
	cursor := "  "
	name := c.Name
	if i == m.selected && !m.showForm {
		cursor = tui.SelectedStyle.Render("▸ ")
		name = tui.SelectedStyle.Render(name)
	}
	badge := tui.BadgeInactive
	if c.Active {
		badge = tui.BadgeActive
	}

	var b strings.Builder
	b.WriteString(cursor + name + " " + badge + "\n")
	if c.Description != "" {
		b.WriteString("    " + truncate(c.Description, 70) + "\n")
	}
	if c.Recurrence != "" {
		b.WriteString(tui.DimStyle.Render("    Recurrence: "+c.Recurrence) + "\n")
	}
	return b.String()
}
