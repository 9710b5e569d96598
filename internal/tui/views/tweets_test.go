package views

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/testutil"
	"github.com/xpost-dev/xpost/internal/tui"
)

func loadTweets(t *testing.T, deps *Deps) TweetsModel {
	t.Helper()
	m := NewTweetsModel(deps, 100, 40)
	m, _ = m.Update(mustFind[tui.TweetsLoadedMsg](t, m.Init()))
	return m
}

func TestComposerRejectsOverLimit(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	m := loadTweets(t, deps)

	m, _ = m.Update(keyType(tea.KeyTab))
	require.True(t, m.CapturesInput())
	m.text.SetValue(strings.Repeat("a", 281))
	assert.Contains(t, m.View(), "281/280")

	m, cmd := m.Update(keyType(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	require.True(t, m.Dialog().Open())
	assert.Contains(t, m.Dialog().Message, "text must be at most 280 characters")
	assert.Equal(t, 0, fb.Count(http.MethodPost, "/api/tweets/"))
	assert.Equal(t, 0, fb.TweetCount())
}

func TestComposerAcceptsExactLimit(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	m := loadTweets(t, deps)

	m, _ = m.Update(keyType(tea.KeyTab))
	m.text.SetValue(strings.Repeat("é", 280))

	m, cmd := m.Update(keyType(tea.KeyCtrlS))
	assert.Equal(t, tui.PhaseSubmitting, m.Phase())

	m, _ = m.Update(keyType(tea.KeyCtrlS))
	assert.Equal(t, tui.PhaseSubmitting, m.Phase(), "second submit is ignored while in flight")

	created := mustFind[tui.TweetCreatedMsg](t, cmd)
	require.NoError(t, created.Err)
	assert.Equal(t, api.StatusDraft, created.Tweet.Status)

	m, cmd = m.Update(created)
	require.True(t, m.Dialog().Open())
	assert.Equal(t, "Tweet created successfully!", m.Dialog().Message)
	assert.Empty(t, m.text.Value(), "form resets after success")

	m, _ = m.Update(mustFind[tui.TweetsLoadedMsg](t, cmd))
	assert.Len(t, m.Tweets(), 1)
	assert.Equal(t, 1, fb.Count(http.MethodPost, "/api/tweets/"))
}

func TestComposerSchedules(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	m := loadTweets(t, deps)

	m, _ = m.Update(keyType(tea.KeyTab))
	m.text.SetValue("Launch day")
	m.schedule.SetValue("2030-01-02 09:30")
	m.media.SetValue("https://example.com/a.png")

	_, cmd := m.Update(keyType(tea.KeyCtrlS))
	created := mustFind[tui.TweetCreatedMsg](t, cmd)
	require.NoError(t, created.Err)
	assert.Equal(t, api.StatusScheduled, created.Tweet.Status)
	assert.Equal(t, []string{"https://example.com/a.png"}, created.Tweet.MediaLinks)
}

func TestComposerCreateFailure(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	fb.Fail(http.MethodPost, "/api/tweets/", http.StatusInternalServerError, "boom")
	m := loadTweets(t, deps)

	m, _ = m.Update(keyType(tea.KeyTab))
	m.text.SetValue("hello")
	m, cmd := m.Update(keyType(tea.KeyCtrlS))

	m, cmd = m.Update(mustFind[tui.TweetCreatedMsg](t, cmd))
	assert.Nil(t, cmd, "failures do not reload")
	assert.Equal(t, tui.PhaseFailed, m.Phase())
	assert.Equal(t, "Failed to create tweet", m.Dialog().Message)
	assert.Equal(t, "hello", m.text.Value(), "text is kept for another try")
}

func TestPostNowConfirmsThenReloads(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	tw := fb.AddTweet("alice", api.Tweet{Text: "ready to go"})
	m := loadTweets(t, deps)

	m, cmd := m.Update(keyRunes("p"))
	assert.Nil(t, cmd)
	require.True(t, m.Dialog().IsConfirm())
	assert.Equal(t, "Post this tweet now?", m.Dialog().Message)

	m, cmd = m.Update(keyRunes("y"))
	posted := mustFind[tui.TweetPostedMsg](t, cmd)
	require.NoError(t, posted.Err)

	m, cmd = m.Update(posted)
	assert.Equal(t, "Tweet posted successfully!", m.Dialog().Message)
	m, _ = m.Update(mustFind[tui.TweetsLoadedMsg](t, cmd))

	stored, ok := fb.Tweet(tw.ID)
	require.True(t, ok)
	assert.Equal(t, api.StatusPosted, stored.Status)

	m, _ = m.Update(keyType(tea.KeyEnter))
	m, cmd = m.Update(keyRunes("p"))
	assert.Nil(t, cmd)
	assert.False(t, m.Dialog().Open(), "posted tweets cannot be posted again")
}

func TestPostNowDeclined(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	fb.AddTweet("alice", api.Tweet{Text: "not yet"})
	m := loadTweets(t, deps)

	m, _ = m.Update(keyRunes("p"))
	m, cmd := m.Update(keyRunes("n"))
	assert.Nil(t, cmd)
	assert.False(t, m.Dialog().Open())
	assert.Equal(t, 0, fb.Count(http.MethodPost, "/api/tweets/1/post"))
}

func TestPostNowFailure(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	tw := fb.AddTweet("alice", api.Tweet{Text: "flaky"})
	fb.Fail(http.MethodPost, "/api/tweets/"+strconv.Itoa(tw.ID)+"/post", http.StatusBadGateway, "upstream")
	m := loadTweets(t, deps)

	m, _ = m.Update(keyRunes("p"))
	m, cmd := m.Update(keyRunes("y"))
	m, _ = m.Update(mustFind[tui.TweetPostedMsg](t, cmd))
	assert.Equal(t, "Failed to post tweet", m.Dialog().Message)
}

func TestTweetMetricsAndAnalysis(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	tw := fb.AddTweet("alice", api.Tweet{Text: "Big news!"})
	impressions := 900
	fb.SetMetrics(tw.ID, []api.Metric{{TweetID: tw.ID, Likes: 12, Retweets: 3, Replies: 1, Impressions: &impressions}})
	m := loadTweets(t, deps)

	m, cmd := m.Update(keyRunes("m"))
	m, _ = m.Update(mustFind[tui.TweetMetricsLoadedMsg](t, cmd))
	view := m.View()
	assert.Contains(t, view, "Metrics")
	assert.Contains(t, view, "♥ 12")

	m, cmd = m.Update(keyRunes("a"))
	m, _ = m.Update(mustFind[tui.AnalysisMsg](t, cmd))
	assert.Contains(t, m.View(), "Sentiment: positive")
}

func TestListRendersStatusAndScore(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	score := 0.87
	fb.AddTweet("alice", api.Tweet{Text: "from the model", GeneratedByAI: true, ViralScore: &score})
	m := loadTweets(t, deps)

	view := m.View()
	assert.Contains(t, view, "draft")
	assert.Contains(t, view, "AI")
	assert.Contains(t, view, "87%")
}

func TestTweetsEmpty(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	m := loadTweets(t, deps)
	assert.Contains(t, m.View(), "No tweets yet.")
	assert.False(t, m.CapturesInput())
}

func TestAlertDismissKeepsSaveInFlight(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	fb.AddTweet("alice", api.Tweet{Text: "existing"})
	m := loadTweets(t, deps)

	m, _ = m.Update(keyType(tea.KeyTab))
	m.text.SetValue("only once")
	m, cmd := m.Update(keyType(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	require.Equal(t, tui.PhaseSubmitting, m.Phase())

	// A metrics failure arrives and is acknowledged while the save is pending.
	m, _ = m.Update(tui.TweetMetricsLoadedMsg{TweetID: 1, Err: errors.New("boom")})
	require.Equal(t, msgMetricsFailed, m.Dialog().Message)
	m, _ = m.Update(keyType(tea.KeyEnter))
	assert.Equal(t, tui.PhaseSubmitting, m.Phase())

	_, again := m.Update(keyType(tea.KeyCtrlS))
	assert.Nil(t, again, "no duplicate create")

	m, _ = m.Update(mustFind[tui.TweetCreatedMsg](t, cmd))
	m, _ = m.Update(keyType(tea.KeyEnter))
	assert.Equal(t, tui.PhaseIdle, m.Phase())
	assert.Equal(t, 1, fb.Count(http.MethodPost, "/api/tweets/"))
}

func TestPostNowHintFollowsStatus(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedInDeps(t, fb, "alice")
	fb.AddTweet("alice", api.Tweet{Text: "draft one"})
	m := loadTweets(t, deps)
	assert.Contains(t, m.View(), "p: post now")

	fb2 := testutil.NewFakeBackend(t)
	deps2 := loggedInDeps(t, fb2, "alice")
	fb2.AddTweet("alice", api.Tweet{Text: "already out", Status: api.StatusPosted})
	m2 := loadTweets(t, deps2)
	assert.NotContains(t, m2.View(), "p: post now")
}
