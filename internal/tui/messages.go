package tui

import (
	"github.com/xpost-dev/xpost/internal/api"
)

// ResultMsg is implemented by every message that reports a backend call.
type ResultMsg interface {
	ResultErr() error
}

// ============================================================================
// Session Messages
// ============================================================================

// LoginResultMsg reports a login attempt.
type LoginResultMsg struct {
	OK bool
}

// RegisterResultMsg reports a registration attempt.
type RegisterResultMsg struct {
	OK bool
}

// ============================================================================
// Dashboard Messages
// ============================================================================

// SummaryLoadedMsg carries the analytics summary.
type SummaryLoadedMsg struct {
	Summary *api.AnalyticsSummary
	Err     error
}

// RecentTweetsLoadedMsg carries the dashboard's recent posts.
type RecentTweetsLoadedMsg struct {
	Tweets []api.Tweet
	Err    error
}

// TrendsLoadedMsg carries the engagement trend series.
type TrendsLoadedMsg struct {
	Trends *api.EngagementTrends
	Err    error
}

// ============================================================================
// Tweet Messages
// ============================================================================

// TweetsLoadedMsg carries the post list.
type TweetsLoadedMsg struct {
	Tweets []api.Tweet
	Err    error
}

// TweetCreatedMsg reports a compose submission.
type TweetCreatedMsg struct {
	Tweet *api.Tweet
	Err   error
}

// TweetPostedMsg reports a "post now" action.
type TweetPostedMsg struct {
	Tweet *api.Tweet
	Err   error
}

// TweetMetricsLoadedMsg carries one post's engagement history.
type TweetMetricsLoadedMsg struct {
	TweetID int
	Metrics []api.Metric
	Err     error
}

// AnalysisMsg carries an AI assessment of a text.
type AnalysisMsg struct {
	Text     string
	Analysis *api.Analysis
	Err      error
}

// ============================================================================
// AI Messages
// ============================================================================

// VariantsGeneratedMsg carries generated variants.
type VariantsGeneratedMsg struct {
	Response *api.GenerateResponse
	Err      error
}

// ============================================================================
// Campaign Messages
// ============================================================================

// CampaignsLoadedMsg carries the campaign list.
type CampaignsLoadedMsg struct {
	Campaigns []api.Campaign
	Err       error
}

// CampaignCreatedMsg reports a create submission.
type CampaignCreatedMsg struct {
	Campaign *api.Campaign
	Err      error
}

// CampaignToggledMsg reports an active flip.
type CampaignToggledMsg struct {
	Campaign *api.Campaign
	Err      error
}

// CampaignDeletedMsg reports a deletion.
type CampaignDeletedMsg struct {
	ID  int
	Err error
}

// ============================================================================
// Control Messages
// ============================================================================

// CtrlCResetMsg is sent when the Ctrl+C confirmation window expires.
type CtrlCResetMsg struct{}

// NavigateMsg asks the App to switch routes. The guard still applies.
type NavigateMsg struct {
	To Route
}

func (m SummaryLoadedMsg) ResultErr() error      { return m.Err }
func (m RecentTweetsLoadedMsg) ResultErr() error { return m.Err }
func (m TrendsLoadedMsg) ResultErr() error       { return m.Err }
func (m TweetsLoadedMsg) ResultErr() error       { return m.Err }
func (m TweetCreatedMsg) ResultErr() error       { return m.Err }
func (m TweetPostedMsg) ResultErr() error        { return m.Err }
func (m TweetMetricsLoadedMsg) ResultErr() error { return m.Err }
func (m AnalysisMsg) ResultErr() error           { return m.Err }
func (m VariantsGeneratedMsg) ResultErr() error  { return m.Err }
func (m CampaignsLoadedMsg) ResultErr() error    { return m.Err }
func (m CampaignCreatedMsg) ResultErr() error    { return m.Err }
func (m CampaignToggledMsg) ResultErr() error    { return m.Err }
func (m CampaignDeletedMsg) ResultErr() error    { return m.Err }
