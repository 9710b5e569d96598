// Package tui implements the terminal user interface using Bubble Tea.
package tui

// Route is a client-side location. Only RouteLogin is public.
type Route string

const (
	RouteLogin      Route = "/"
	RouteDashboard  Route = "/dashboard"
	RouteTweets     Route = "/tweets"
	RouteAIGenerate Route = "/ai-generate"
	RouteCampaigns  Route = "/campaigns"
)

// NavRoutes are the protected routes in tab-bar order; index+1 is the hotkey.
var NavRoutes = []Route{RouteDashboard, RouteTweets, RouteAIGenerate, RouteCampaigns}

// Protected reports whether the route requires a session.
func (r Route) Protected() bool {
	return r != RouteLogin
}

// Title is the tab label for the route.
func (r Route) Title() string {
	switch r {
	case RouteLogin:
		return "Login"
	case RouteDashboard:
		return "Dashboard"
	case RouteTweets:
		return "Tweets"
	case RouteAIGenerate:
		return "AI Generate"
	case RouteCampaigns:
		return "Campaigns"
	default:
		return string(r)
	}
}

// Phase is the request state of a view: idle, submitting, then succeeded or
// failed until the user acknowledges the result.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Model holds the application-level TUI state shared across views.
type Model struct {
	Route        Route
	Width        int
	Height       int
	CtrlCPending bool

	// Notice is shown once on the login view, e.g. after a rejected credential.
	Notice string
}

// NewModel creates a Model at the login route.
func NewModel() *Model {
	return &Model{
		Route:  RouteLogin,
		Width:  80,
		Height: 24,
	}
}
