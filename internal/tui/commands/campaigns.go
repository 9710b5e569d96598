package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/tui"
)

// LoadCampaignsCmd fetches the campaign list.
func LoadCampaignsCmd(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		list, err := c.Campaigns.List(context.Background())
		return tui.CampaignsLoadedMsg{Campaigns: list, Err: err}
	}
}

// CreateCampaignCmd submits a validated campaign form.
func CreateCampaignCmd(c *api.Client, in api.CampaignInput) tea.Cmd {
	return func() tea.Msg {
		camp, err := c.Campaigns.Create(context.Background(), in)
		return tui.CampaignCreatedMsg{Campaign: camp, Err: err}
	}
}

// ToggleCampaignCmd flips a campaign's active flag.
func ToggleCampaignCmd(c *api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		camp, err := c.Campaigns.Toggle(context.Background(), id)
		return tui.CampaignToggledMsg{Campaign: camp, Err: err}
	}
}

// DeleteCampaignCmd removes a campaign.
func DeleteCampaignCmd(c *api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		err := c.Campaigns.Delete(context.Background(), id)
		return tui.CampaignDeletedMsg{ID: id, Err: err}
	}
}
