// Package commands provides Bubble Tea commands for TUI operations.
// Each command performs one backend call and returns its result message;
// none of them block on timers.
package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/tui"
)

// LoadSummaryCmd fetches the analytics summary for the last days.
func LoadSummaryCmd(c *api.Client, days int) tea.Cmd {
	return func() tea.Msg {
		s, err := c.Analytics.Summary(context.Background(), days)
		return tui.SummaryLoadedMsg{Summary: s, Err: err}
	}
}

// LoadRecentTweetsCmd fetches the newest posts for the dashboard.
func LoadRecentTweetsCmd(c *api.Client, limit int) tea.Cmd {
	return func() tea.Msg {
		tweets, err := c.Tweets.List(context.Background(), "", limit)
		return tui.RecentTweetsLoadedMsg{Tweets: tweets, Err: err}
	}
}

// LoadTrendsCmd fetches the daily engagement series.
func LoadTrendsCmd(c *api.Client, days int) tea.Cmd {
	return func() tea.Msg {
		tr, err := c.Analytics.EngagementTrends(context.Background(), days)
		return tui.TrendsLoadedMsg{Trends: tr, Err: err}
	}
}
