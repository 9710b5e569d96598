package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/tui"
)

// LoadTweetsCmd fetches the post list. An empty status lists every status.
func LoadTweetsCmd(c *api.Client, status string, limit int) tea.Cmd {
	return func() tea.Msg {
		tweets, err := c.Tweets.List(context.Background(), status, limit)
		return tui.TweetsLoadedMsg{Tweets: tweets, Err: err}
	}
}

// CreateTweetCmd submits a validated compose form.
func CreateTweetCmd(c *api.Client, in api.TweetCreate) tea.Cmd {
	return func() tea.Msg {
		t, err := c.Tweets.Create(context.Background(), in)
		return tui.TweetCreatedMsg{Tweet: t, Err: err}
	}
}

// PostTweetCmd publishes a post immediately.
func PostTweetCmd(c *api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		t, err := c.Tweets.PostNow(context.Background(), id)
		return tui.TweetPostedMsg{Tweet: t, Err: err}
	}
}

// LoadTweetMetricsCmd fetches the engagement history of one post.
func LoadTweetMetricsCmd(c *api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		m, err := c.Analytics.TweetMetrics(context.Background(), id)
		return tui.TweetMetricsLoadedMsg{TweetID: id, Metrics: m, Err: err}
	}
}

// AnalyzeTextCmd asks the AI service to assess text.
func AnalyzeTextCmd(c *api.Client, text string) tea.Cmd {
	return func() tea.Msg {
		a, err := c.AI.Analyze(context.Background(), text)
		return tui.AnalysisMsg{Text: text, Analysis: a, Err: err}
	}
}
