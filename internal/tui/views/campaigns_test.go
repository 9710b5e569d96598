package views

import (
	"net/http"
	"strconv"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/testutil"
	"github.com/xpost-dev/xpost/internal/tui"
)

func loadCampaigns(t *testing.T, deps *Deps) CampaignsModel {
	t.Helper()
	m := NewCampaignsModel(deps, 100, 40)
	m, _ = m.Update(mustFind[tui.CampaignsLoadedMsg](t, m.Init()))
	return m
}

func TestCampaignToggleRoundTrip(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	c := fb.AddCampaign("alice", api.Campaign{Name: "Launch", Active: true})
	m := loadCampaigns(t, deps)
	assert.Contains(t, m.View(), "Active")

	m, cmd := m.Update(keyRunes("t"))
	toggled := mustFind[tui.CampaignToggledMsg](t, cmd)
	require.NoError(t, toggled.Err)
	assert.False(t, toggled.Campaign.Active)

	m, cmd = m.Update(toggled)
	assert.False(t, m.Dialog().Open(), "toggling has no success dialog")
	m, _ = m.Update(mustFind[tui.CampaignsLoadedMsg](t, cmd))
	require.Len(t, m.Campaigns(), 1)
	assert.False(t, m.Campaigns()[0].Active)
	assert.Contains(t, m.View(), "Inactive")

	m, cmd = m.Update(keyRunes("t"))
	m, cmd = m.Update(mustFind[tui.CampaignToggledMsg](t, cmd))
	m, _ = m.Update(mustFind[tui.CampaignsLoadedMsg](t, cmd))
	assert.True(t, m.Campaigns()[0].Active)

	stored, ok := fb.Campaign(c.ID)
	require.True(t, ok)
	assert.True(t, stored.Active)
}

func TestCampaignDeleteConfirms(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	c := fb.AddCampaign("alice", api.Campaign{Name: "Old"})
	m := loadCampaigns(t, deps)

	m, _ = m.Update(keyRunes("d"))
	require.True(t, m.Dialog().IsConfirm())
	assert.Equal(t, "Delete this campaign?", m.Dialog().Message)

	m, cmd := m.Update(keyRunes("n"))
	assert.Nil(t, cmd)
	_, ok := fb.Campaign(c.ID)
	assert.True(t, ok, "declining keeps the campaign")

	m, _ = m.Update(keyRunes("d"))
	m, cmd = m.Update(keyRunes("y"))
	deleted := mustFind[tui.CampaignDeletedMsg](t, cmd)
	require.NoError(t, deleted.Err)
	assert.Equal(t, c.ID, deleted.ID)

	m, cmd = m.Update(deleted)
	m, _ = m.Update(mustFind[tui.CampaignsLoadedMsg](t, cmd))
	assert.Empty(t, m.Campaigns())
	assert.Contains(t, m.View(), "No campaigns yet. Create your first campaign!")

	_, ok = fb.Campaign(c.ID)
	assert.False(t, ok)
}

func TestCampaignCreate(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	m := loadCampaigns(t, deps)

	m, _ = m.Update(keyRunes("n"))
	require.True(t, m.FormVisible())
	require.True(t, m.CapturesInput())
	m.inputs[campFieldName].SetValue("Q4 push")
	m.inputs[campFieldRecurrence].SetValue("0 9 * * *")

	m, cmd := m.Update(keyType(tea.KeyEnter))
	created := mustFind[tui.CampaignCreatedMsg](t, cmd)
	require.NoError(t, created.Err)
	assert.True(t, created.Campaign.Active)
	assert.Equal(t, "0 9 * * *", created.Campaign.Recurrence)

	m, cmd = m.Update(created)
	assert.Equal(t, "Campaign created successfully!", m.Dialog().Message)
	assert.False(t, m.FormVisible())

	m, _ = m.Update(mustFind[tui.CampaignsLoadedMsg](t, cmd))
	require.Len(t, m.Campaigns(), 1)
	assert.Equal(t, "Q4 push", m.Campaigns()[0].Name)
}

func TestCampaignCreateRequiresName(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	m := loadCampaigns(t, deps)

	m, _ = m.Update(keyRunes("n"))
	m, cmd := m.Update(keyType(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Contains(t, m.Dialog().Message, "name is required")
	assert.Equal(t, 0, fb.Count(http.MethodPost, "/api/campaigns/"))

	m, _ = m.Update(keyType(tea.KeyEnter))
	m, _ = m.Update(keyType(tea.KeyEsc))
	assert.False(t, m.FormVisible())
}

func TestCampaignFailures(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	c := fb.AddCampaign("alice", api.Campaign{Name: "Broken", Active: true})
	path := "/api/campaigns/" + strconv.Itoa(c.ID)
	fb.Fail(http.MethodPost, path+"/toggle", http.StatusInternalServerError, "boom")
	fb.Fail(http.MethodDelete, path, http.StatusInternalServerError, "boom")
	m := loadCampaigns(t, deps)

	m, cmd := m.Update(keyRunes("t"))
	m, cmd = m.Update(mustFind[tui.CampaignToggledMsg](t, cmd))
	assert.Nil(t, cmd)
	assert.Equal(t, "Failed to toggle campaign", m.Dialog().Message)
	m, _ = m.Update(keyType(tea.KeyEnter))

	m, _ = m.Update(keyRunes("d"))
	m, cmd = m.Update(keyRunes("y"))
	m, _ = m.Update(mustFind[tui.CampaignDeletedMsg](t, cmd))
	assert.Equal(t, "Failed to delete campaign", m.Dialog().Message)
}
