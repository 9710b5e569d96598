package api_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/testutil"
)

func TestTweetsCreateDraftAndScheduled(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c := newAuthedClient(t, fb, "alice")
	ctx := context.Background()

	draft, err := c.Tweets.Create(ctx, api.TweetCreate{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, api.StatusDraft, draft.Status)
	assert.NotNil(t, draft.MediaLinks)
	assert.True(t, draft.CanPostNow())

	when := time.Date(2030, 1, 2, 15, 4, 0, 0, time.UTC)
	sched, err := c.Tweets.Create(ctx, api.TweetCreate{
		Text:        "later",
		ScheduledAt: api.NewTime(when),
		MediaLinks:  []string{"https://example.com/a.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, api.StatusScheduled, sched.Status)
	require.NotNil(t, sched.ScheduledAt)
	assert.True(t, sched.ScheduledAt.Equal(when))

	got, err := c.Tweets.Get(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a.png"}, got.MediaLinks)

	list, err := c.Tweets.List(ctx, api.StatusScheduled, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sched.ID, list[0].ID)
}

func TestTweetsListHonoursLimit(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c := newAuthedClient(t, fb, "alice")
	for i := 0; i < 12; i++ {
		fb.AddTweet("alice", api.Tweet{Text: "t"})
	}

	list, err := c.Tweets.List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, list, 10)

	req, _ := fb.LastRequest()
	assert.Equal(t, "limit=10", req.Query)
}

func TestTweetsPostNow(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c := newAuthedClient(t, fb, "alice")
	ctx := context.Background()
	tw := fb.AddTweet("alice", api.Tweet{Text: "ship it", Status: api.StatusDraft})

	posted, err := c.Tweets.PostNow(ctx, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, api.StatusPosted, posted.Status)
	assert.False(t, posted.CanPostNow())
	assert.NotNil(t, posted.PostedAt)

	_, err = c.Tweets.PostNow(ctx, tw.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
}

func TestTweetsGetMissing(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c := newAuthedClient(t, fb, "alice")

	_, err := c.Tweets.Get(context.Background(), 9999)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
	assert.Contains(t, err.Error(), "Tweet not found")
}

func TestTweetsCreateValidationDetail(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c := newAuthedClient(t, fb, "alice")

	_, err := c.Tweets.Create(context.Background(), api.TweetCreate{Text: strings.Repeat("x", 281)})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, api.StatusCode(err))
	assert.Contains(t, err.Error(), "text: ensure this value has at most 280 characters")
}

func TestAIGenerateAndAnalyze(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c := newAuthedClient(t, fb, "alice")
	ctx := context.Background()
	fb.SetVariantScores(0.42, 0.8, 0.1)

	resp, err := c.AI.Generate(ctx, api.GenerateRequest{
		Topic:           "AI and future of work",
		Tone:            "professional",
		NumVariants:     3,
		IncludeHashtags: true,
		IncludeCTA:      true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Variants, 3)
	assert.InDelta(t, 0.42, resp.Variants[0].ViralScore, 1e-9)
	assert.Equal(t, "professional", resp.Metadata["tone"])

	drafts, err := c.Tweets.List(ctx, api.StatusDraft, 0)
	require.NoError(t, err)
	assert.Len(t, drafts, 3)
	for _, d := range drafts {
		assert.True(t, d.GeneratedByAI)
	}

	analysis, err := c.AI.Analyze(ctx, "Big news today!")
	require.NoError(t, err)
	assert.Equal(t, "positive", analysis.Sentiment)
	assert.NotEmpty(t, analysis.Suggestions)

	req, _ := fb.LastRequest()
	assert.Contains(t, req.Query, "text=Big+news+today")
}

func TestAnalytics(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c := newAuthedClient(t, fb, "alice")
	ctx := context.Background()

	fb.SetSummary(api.AnalyticsSummary{
		TotalTweets:       4,
		TotalEngagement:   1234,
		AvgEngagementRate: 2.5,
		BestTimeSlots:     []api.TimeSlot{{Hour: 9, AvgEngagement: 40}},
	})
	sum, err := c.Analytics.Summary(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1234, sum.TotalEngagement)
	require.Len(t, sum.BestTimeSlots, 1)
	assert.Equal(t, 9, sum.BestTimeSlots[0].Hour)

	req, _ := fb.LastRequest()
	assert.Equal(t, "days=30", req.Query)

	tw := fb.AddTweet("alice", api.Tweet{Text: "m"})
	fb.SetMetrics(tw.ID, []api.Metric{{ID: 1, TweetID: tw.ID, Likes: 3, Retweets: 1}})
	metrics, err := c.Analytics.TweetMetrics(ctx, tw.ID)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 3, metrics[0].Likes)

	fb.SetTrends(api.EngagementTrends{Data: []api.TrendPoint{{Date: "2024-01-01", TotalEngagement: 5}}})
	trends, err := c.Analytics.EngagementTrends(ctx, 7)
	require.NoError(t, err)
	require.Len(t, trends.Data, 1)
	req, _ = fb.LastRequest()
	assert.Equal(t, "days=7", req.Query)
}

func TestCampaignToggleRoundTrip(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c := newAuthedClient(t, fb, "alice")
	ctx := context.Background()
	camp := fb.AddCampaign("alice", api.Campaign{Name: "Weekly", Active: false})

	_, err := c.Campaigns.Toggle(ctx, camp.ID)
	require.NoError(t, err)
	list, err := c.Campaigns.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Active)

	_, err = c.Campaigns.Toggle(ctx, camp.ID)
	require.NoError(t, err)
	list, err = c.Campaigns.List(ctx)
	require.NoError(t, err)
	assert.False(t, list[0].Active)
}

func TestCampaignCRUD(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c := newAuthedClient(t, fb, "alice")
	ctx := context.Background()

	created, err := c.Campaigns.Create(ctx, api.CampaignInput{Name: "Launch", Recurrence: "0 9 * * 1"})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.NotNil(t, created.Slots)

	updated, err := c.Campaigns.Update(ctx, created.ID, api.CampaignInput{Name: "Launch v2", Description: "second wave"})
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", updated.Name)

	got, err := c.Campaigns.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "second wave", got.Description)

	require.NoError(t, c.Campaigns.Delete(ctx, created.ID))
	list, err := c.Campaigns.List(ctx)
	require.NoError(t, err)
	for _, camp := range list {
		assert.NotEqual(t, created.ID, camp.ID)
	}

	err = c.Campaigns.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
}
