package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultListLimit is the backend's page size for tweet listings.
	DefaultListLimit = 50
	// DefaultWindowDays is the analytics window when none is given.
	DefaultWindowDays = 30
)

// ============================================================================
// Auth
// ============================================================================

// AuthService covers /auth.
type AuthService struct{ c *Client }

// Register creates an account. It never logs in.
func (s *AuthService) Register(ctx context.Context, username, twitterUsername string) (*User, error) {
	q := url.Values{"username": {username}}
	if twitterUsername != "" {
		q.Set("twitter_username", twitterUsername)
	}
	var u User
	if err := s.c.do(ctx, http.MethodPost, "/auth/register", q, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Token, error) {
	var tok Token
	body := Credentials{Username: username, Password: password}
	if err := s.c.do(ctx, http.MethodPost, "/auth/login", nil, body, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("login: response has no access_token")
	}
	return &tok, nil
}

// ============================================================================
// Tweets
// ============================================================================

// TweetsService covers /api/tweets.
type TweetsService struct{ c *Client }

// List returns the user's posts, newest first. An empty status lists all;
// limit <= 0 uses DefaultListLimit.
func (s *TweetsService) List(ctx context.Context, status string, limit int) ([]Tweet, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if status != "" {
		q.Set("status", status)
	}
	var tweets []Tweet
	if err := s.c.do(ctx, http.MethodGet, "/api/tweets/", q, nil, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (s *TweetsService) Get(ctx context.Context, id int) (*Tweet, error) {
	var t Tweet
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tweets/%d", id), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create saves a draft, or a scheduled post when ScheduledAt is set.
func (s *TweetsService) Create(ctx context.Context, in TweetCreate) (*Tweet, error) {
	if in.MediaLinks == nil {
		in.MediaLinks = []string{}
	}
	var t Tweet
	if err := s.c.do(ctx, http.MethodPost, "/api/tweets/", nil, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// PostNow publishes a draft or scheduled post immediately.
func (s *TweetsService) PostNow(ctx context.Context, id int) (*Tweet, error) {
	var t Tweet
	if err := s.c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tweets/%d/post", id), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ============================================================================
// AI
// ============================================================================

// AIService covers /api/ai.
type AIService struct{ c *Client }

// Generate asks for variants. The backend stores each one as a draft.
func (s *AIService) Generate(ctx context.Context, in GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := s.c.do(ctx, http.MethodPost, "/api/ai/generate", nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AIService) Analyze(ctx context.Context, text string) (*Analysis, error) {
	var a Analysis
	q := url.Values{"text": {text}}
	if err := s.c.do(ctx, http.MethodPost, "/api/ai/analyze", q, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ============================================================================
// Analytics
// ============================================================================

// AnalyticsService covers /api/analytics.
type AnalyticsService struct{ c *Client }

func windowQuery(days int) url.Values {
	if days <= 0 {
		days = DefaultWindowDays
	}
	return url.Values{"days": {strconv.Itoa(days)}}
}

// Summary aggregates the trailing window of days (DefaultWindowDays when <= 0).
func (s *AnalyticsService) Summary(ctx context.Context, days int) (*AnalyticsSummary, error) {
	var sum AnalyticsSummary
	if err := s.c.do(ctx, http.MethodGet, "/api/analytics/summary", windowQuery(days), nil, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

// TweetMetrics returns the engagement history of one post.
func (s *AnalyticsService) TweetMetrics(ctx context.Context, tweetID int) ([]Metric, error) {
	var metrics []Metric
	path := fmt.Sprintf("/api/analytics/tweets/%d/metrics", tweetID)
	if err := s.c.do(ctx, http.MethodGet, path, nil, nil, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

func (s *AnalyticsService) EngagementTrends(ctx context.Context, days int) (*EngagementTrends, error) {
	var trends EngagementTrends
	if err := s.c.do(ctx, http.MethodGet, "/api/analytics/engagement-trends", windowQuery(days), nil, &trends); err != nil {
		return nil, err
	}
	return &trends, nil
}

// ============================================================================
// Campaigns
// ============================================================================

// CampaignsService covers /api/campaigns.
type CampaignsService struct{ c *Client }

func (s *CampaignsService) List(ctx context.Context) ([]Campaign, error) {
	var campaigns []Campaign
	if err := s.c.do(ctx, http.MethodGet, "/api/campaigns/", nil, nil, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (s *CampaignsService) Get(ctx context.Context, id int) (*Campaign, error) {
	var c Campaign
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/campaigns/%d", id), nil, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CampaignsService) Create(ctx context.Context, in CampaignInput) (*Campaign, error) {
	if in.Slots == nil {
		in.Slots = []map[string]any{}
	}
	var c Campaign
	if err := s.c.do(ctx, http.MethodPost, "/api/campaigns/", nil, in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CampaignsService) Update(ctx context.Context, id int, in CampaignInput) (*Campaign, error) {
	if in.Slots == nil {
		in.Slots = []map[string]any{}
	}
	var c Campaign
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/api/campaigns/%d", id), nil, in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CampaignsService) Delete(ctx context.Context, id int) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/campaigns/%d", id), nil, nil, nil)
}

// Toggle flips the active flag and returns the updated campaign.
func (s *CampaignsService) Toggle(ctx context.Context, id int) (*Campaign, error) {
	var c Campaign
	if err := s.c.do(ctx, http.MethodPost, fmt.Sprintf("/api/campaigns/%d/toggle", id), nil, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
