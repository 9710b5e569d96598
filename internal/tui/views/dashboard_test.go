package views

import (
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/testutil"
	"github.com/xpost-dev/xpost/internal/tui"
)

// loadDashboard runs Init and feeds every result back into the model.
func loadDashboard(t *testing.T, deps *Deps) DashboardModel {
	t.Helper()
	m := NewDashboardModel(deps, 100, 40)
	assert.True(t, m.Loading())
	for _, msg := range testutil.Drain(m.Init()) {
		m, _ = m.Update(msg)
	}
	return m
}

func TestDashboardRendersSummaryAndRecent(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	fb.AddTweet("alice", api.Tweet{Text: "Shipping the new release today"})
	fb.SetSummary(api.AnalyticsSummary{
		TotalTweets:       1234,
		TotalEngagement:   56789,
		AvgEngagementRate: 0.0345,
		BestTimeSlots:     []api.TimeSlot{{Hour: 9, AvgEngagement: 12}},
	})
	fb.SetTrends(api.EngagementTrends{Data: []api.TrendPoint{
		{Date: "2026-10-01", TotalEngagement: 3},
		{Date: "2026-10-02", TotalEngagement: 9},
	}})

	m := loadDashboard(t, deps)
	assert.False(t, m.Loading())

	view := m.View()
	assert.Contains(t, view, "Welcome back, @alice_x!")
	assert.Contains(t, view, "1,234")
	assert.Contains(t, view, "56,789")
	assert.Contains(t, view, "3.45%")
	assert.Contains(t, view, "09:00")
	assert.Contains(t, view, "Engagement Trend")
	assert.Contains(t, view, "Shipping the new release today")

	req := fb.Requests()
	var sawRecent bool
	for _, r := range req {
		if r.Path == "/api/tweets/" {
			sawRecent = true
			assert.Contains(t, r.Query, "limit=10")
		}
	}
	assert.True(t, sawRecent)
}

func TestDashboardSummaryFailureKeepsRecent(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	fb.AddTweet("alice", api.Tweet{Text: "Still visible"})
	fb.Fail(http.MethodGet, "/api/analytics/summary", http.StatusInternalServerError, "boom")

	m := loadDashboard(t, deps)
	assert.False(t, m.Loading())

	view := m.View()
	assert.NotContains(t, view, "Total Tweets")
	assert.Contains(t, view, "Recent Tweets")
	assert.Contains(t, view, "Still visible")
	assert.True(t, deps.Session.IsAuthenticated(), "a server error is not a session failure")
}

func TestDashboardRecentFailureKeepsStats(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	fb.Fail(http.MethodGet, "/api/tweets/", http.StatusInternalServerError, "boom")

	m := loadDashboard(t, deps)
	view := m.View()
	assert.Contains(t, view, "Total Tweets")
	assert.Contains(t, view, "N/A")
	assert.NotContains(t, view, "Recent Tweets")
}

func TestDashboardEmpty(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")

	m := loadDashboard(t, deps)
	view := m.View()
	assert.Contains(t, view, "No tweets yet. Start creating!")
	assert.NotContains(t, view, "Engagement Trend")
}

func TestDashboardLoadingUntilBothSettle(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")

	m := NewDashboardModel(deps, 100, 40)
	msgs := testutil.Drain(m.Init())

	summary, ok := testutil.Find[tui.SummaryLoadedMsg](msgs)
	require.True(t, ok)
	recent, ok := testutil.Find[tui.RecentTweetsLoadedMsg](msgs)
	require.True(t, ok)

	m, _ = m.Update(summary)
	assert.True(t, m.Loading())
	assert.Contains(t, m.View(), "Loading...")

	m, _ = m.Update(recent)
	assert.False(t, m.Loading())
}

func TestDashboardReload(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	m := loadDashboard(t, deps)

	before := fb.Count(http.MethodGet, "/api/analytics/summary")
	m, cmd := m.Update(keyRunes("r"))
	assert.True(t, m.Loading())
	for _, msg := range testutil.Drain(cmd) {
		m, _ = m.Update(msg)
	}
	assert.False(t, m.Loading())
	assert.Equal(t, before+1, fb.Count(http.MethodGet, "/api/analytics/summary"))

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
}
