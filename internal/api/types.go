package api

import (
	"bytes"
	"fmt"
	"time"
)

// Tweet status values reported by the backend. Other strings are passed through.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPosted    = "posted"
	StatusFailed    = "failed"
)

// Time is a timestamp that accepts both RFC 3339 and the offset-less
// ISO 8601 form the backend emits for naive datetimes (read as UTC).
type Time struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses s using RFC 3339 first and then the naive layouts.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("time must be a JSON string, got %s", data)
	}
	parsed, err := ParseTime(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}

// NewTime wraps a time.Time.
func NewTime(t time.Time) *Time {
	return &Time{Time: t}
}

// User is the authenticated account.
type User struct {
	ID              int    `json:"id"`
	Username        string `json:"username"`
	TwitterUsername string `json:"twitter_username,omitempty"`
	CreatedAt       *Time  `json:"created_at,omitempty"`
}

// DisplayName prefers the platform handle over the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.TwitterUsername != "" {
		return "@" + u.TwitterUsername
	}
	return u.Username
}

// Credentials is the login body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}

// Tweet is a post owned by the backend.
type Tweet struct {
	ID             int      `json:"id"`
	UserID         int      `json:"user_id"`
	Text           string   `json:"text"`
	Status         string   `json:"status"`
	CreatedAt      Time     `json:"created_at"`
	ScheduledAt    *Time    `json:"scheduled_at,omitempty"`
	PostedAt       *Time    `json:"posted_at,omitempty"`
	MediaLinks     []string `json:"media_links"`
	GeneratedByAI  bool     `json:"generated_by_ai"`
	ViralScore     *float64 `json:"viral_score,omitempty"`
	TweetIDTwitter string   `json:"tweet_id_twitter,omitempty"`
}

// CanPostNow reports whether the "post now" action applies.
func (t Tweet) CanPostNow() bool {
	return t.Status == StatusDraft || t.Status == StatusScheduled
}

// TweetCreate is the compose body. MediaLinks is always sent.
type TweetCreate struct {
	Text        string   `json:"text"`
	ScheduledAt *Time    `json:"scheduled_at,omitempty"`
	MediaLinks  []string `json:"media_links"`
}

// GenerateRequest asks the backend for AI-written variants.
type GenerateRequest struct {
	Topic           string `json:"topic"`
	Tone            string `json:"tone"`
	NumVariants     int    `json:"num_variants"`
	IncludeHashtags bool   `json:"include_hashtags"`
	IncludeCTA      bool   `json:"include_cta"`
}

// GeneratedVariant is one AI-written post with its predicted score.
type GeneratedVariant struct {
	Text       string  `json:"text"`
	ViralScore float64 `json:"viral_score"`
}

// GenerateResponse lists variants. The backend has already saved them as drafts.
type GenerateResponse struct {
	Variants []GeneratedVariant `json:"variants"`
	Metadata map[string]any     `json:"metadata,omitempty"`
}

// Analysis is the AI assessment of a piece of text.
type Analysis struct {
	Sentiment       string   `json:"sentiment"`
	EngagementScore float64  `json:"engagement_score"`
	Suggestions     []string `json:"suggestions"`
}

// TimeSlot is an hour of day ranked by average engagement.
type TimeSlot struct {
	Hour          int     `json:"hour"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// AnalyticsSummary aggregates engagement over a trailing window.
type AnalyticsSummary struct {
	TotalTweets       int        `json:"total_tweets"`
	TotalEngagement   int        `json:"total_engagement"`
	AvgEngagementRate float64    `json:"avg_engagement_rate"`
	TopTweet          *Tweet     `json:"top_tweet,omitempty"`
	BestTimeSlots     []TimeSlot `json:"best_time_slots"`
}

// Metric is one engagement sample for a post.
type Metric struct {
	ID             int      `json:"id"`
	TweetID        int      `json:"tweet_id"`
	Timestamp      Time     `json:"timestamp"`
	Likes          int      `json:"likes"`
	Retweets       int      `json:"retweets"`
	Replies        int      `json:"replies"`
	Impressions    *int     `json:"impressions,omitempty"`
	EngagementRate *float64 `json:"engagement_rate,omitempty"`
}

// TrendPoint is one day of aggregated engagement.
type TrendPoint struct {
	Date            string `json:"date"`
	Tweets          int    `json:"tweets"`
	Likes           int    `json:"likes"`
	Retweets        int    `json:"retweets"`
	Replies         int    `json:"replies"`
	TotalEngagement int    `json:"total_engagement"`
}

// EngagementTrends is the per-day series.
type EngagementTrends struct {
	Data []TrendPoint `json:"data"`
}

// Campaign is a recurring posting schedule. Recurrence and slots are opaque.
type Campaign struct {
	ID          int              `json:"id"`
	UserID      int              `json:"user_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Recurrence  string           `json:"recurrence,omitempty"`
	Active      bool             `json:"active"`
	Slots       []map[string]any `json:"slots"`
	CreatedAt   Time             `json:"created_at"`
}

// CampaignInput is the create/update body. Slots is always sent.
type CampaignInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Recurrence  string           `json:"recurrence,omitempty"`
	Slots       []map[string]any `json:"slots"`
}
