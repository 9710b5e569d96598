// Package app provides the main TUI application that wires all views together.
package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/tui"
	"github.com/xpost-dev/xpost/internal/tui/views"
)

const (
	ctrlCTimeout   = time.Second
	noticeExpired  = "Session expired. Please log in again."
	redirectNotice = "Session ended. Redirecting to login..."
)

// App is the main TUI application that wires all views together.
// It owns navigation: every route change goes through tui.Guard.
type App struct {
	model *tui.Model
	deps  *views.Deps

	// View models
	loginView     views.LoginModel
	dashboardView views.DashboardModel
	tweetsView    views.TweetsModel
	generateView  views.GenerateModel
	campaignsView views.CampaignsModel
}

// New creates a new App. The first route is decided in Init.
func New(deps *views.Deps) *App {
	model := tui.NewModel()
	return &App{
		model:     model,
		deps:      deps,
		loginView: views.NewLoginModel(deps, model.Width, model.Height),
	}
}

// Route returns the route currently rendered.
func (a *App) Route() tui.Route {
	return a.model.Route
}

// Init opens the dashboard, or the login view when there is no session.
func (a *App) Init() tea.Cmd {
	return a.navigate(tui.RouteDashboard)
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.update(msg)
	if guardCmd := a.enforceGuard(); guardCmd != nil {
		return model, tea.Batch(cmd, guardCmd)
	}
	return model, cmd
}

func (a *App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		return a, a.updateActive(msg)

	case tea.KeyMsg:
		if model, cmd, handled := a.handleGlobalKey(msg); handled {
			return model, cmd
		}

	case tui.CtrlCResetMsg:
		// Reset Ctrl+C confirmation state after timeout
		a.model.CtrlCPending = false
		return a, nil

	case tui.NavigateMsg:
		return a, a.navigate(msg.To)

	case tui.LoginResultMsg:
		cmd := a.updateActive(msg)
		if msg.OK && a.deps.Session.IsAuthenticated() {
			return a, a.navigate(tui.RouteDashboard)
		}
		return a, cmd
	}

	if res, ok := msg.(tui.ResultMsg); ok && api.IsUnauthorized(res.ResultErr()) {
		a.model.Notice = noticeExpired
		return a, a.navigate(tui.RouteLogin)
	}

	return a, a.updateActive(msg)
}

// handleGlobalKey processes keys that work on every view.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, tui.DefaultKeyMap.CtrlC):
		if a.model.CtrlCPending {
			// Second press within timeout - exit
			return a, tea.Quit, true
		}
		// First press - set pending and start timeout
		a.model.CtrlCPending = true
		return a, tea.Tick(ctrlCTimeout, func(time.Time) tea.Msg {
			return tui.CtrlCResetMsg{}
		}), true

	case key.Matches(msg, tui.DefaultKeyMap.Logout):
		if !a.model.Route.Protected() {
			return a, nil, false
		}
		a.deps.Session.Logout()
		return a, a.navigate(tui.RouteLogin), true
	}

	if !a.model.Route.Protected() || a.activeCapturesInput() {
		return a, nil, false
	}

	switch {
	case key.Matches(msg, tui.DefaultKeyMap.Navigate):
		i, _ := strconv.Atoi(msg.String())
		return a, a.navigate(tui.NavRoutes[i-1]), true
	case key.Matches(msg, tui.DefaultKeyMap.Escape):
		if a.model.Route != tui.RouteDashboard {
			return a, a.navigate(tui.RouteDashboard), true
		}
	}
	return a, nil, false
}

// navigate resolves the requested route through the guard and mounts a
// fresh view for it.
func (a *App) navigate(requested tui.Route) tea.Cmd {
	route := tui.Guard(requested, a.deps.Session.IsAuthenticated())
	a.model.Route = route
	w, h := a.model.Width, a.model.Height

	switch route {
	case tui.RouteLogin:
		a.loginView = views.NewLoginModel(a.deps, w, h)
		a.loginView.SetNotice(a.model.Notice)
		a.model.Notice = ""
		return a.loginView.Init()
	case tui.RouteDashboard:
		a.dashboardView = views.NewDashboardModel(a.deps, w, h)
		return a.dashboardView.Init()
	case tui.RouteTweets:
		a.tweetsView = views.NewTweetsModel(a.deps, w, h)
		return a.tweetsView.Init()
	case tui.RouteAIGenerate:
		a.generateView = views.NewGenerateModel(a.deps, w, h)
		return a.generateView.Init()
	case tui.RouteCampaigns:
		a.campaignsView = views.NewCampaignsModel(a.deps, w, h)
		return a.campaignsView.Init()
	}
	return nil
}

// enforceGuard re-checks the current route, e.g. after a credential was
// rejected while a request was in flight.
func (a *App) enforceGuard() tea.Cmd {
	if tui.Guard(a.model.Route, a.deps.Session.IsAuthenticated()) == a.model.Route {
		return nil
	}
	return a.navigate(a.model.Route)
}

// updateActive forwards msg to the mounted view. Results meant for other
// views fall through their Update unhandled.
func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.model.Route {
	case tui.RouteLogin:
		a.loginView, cmd = a.loginView.Update(msg)
	case tui.RouteDashboard:
		a.dashboardView, cmd = a.dashboardView.Update(msg)
	case tui.RouteTweets:
		a.tweetsView, cmd = a.tweetsView.Update(msg)
	case tui.RouteAIGenerate:
		a.generateView, cmd = a.generateView.Update(msg)
	case tui.RouteCampaigns:
		a.campaignsView, cmd = a.campaignsView.Update(msg)
	}
	return cmd
}

func (a *App) activeCapturesInput() bool {
	switch a.model.Route {
	case tui.RouteLogin:
		return a.loginView.CapturesInput()
	case tui.RouteDashboard:
		return a.dashboardView.CapturesInput()
	case tui.RouteTweets:
		return a.tweetsView.CapturesInput()
	case tui.RouteAIGenerate:
		return a.generateView.CapturesInput()
	case tui.RouteCampaigns:
		return a.campaignsView.CapturesInput()
	}
	return false
}

// View renders the current route.
func (a *App) View() string {
	var content string

	if tui.Guard(a.model.Route, a.deps.Session.IsAuthenticated()) != a.model.Route {
		content = tui.WarningStyle.Render(redirectNotice)
		return a.centerContent(content)
	}

	switch a.model.Route {
	case tui.RouteLogin:
		content = a.loginView.View()
	case tui.RouteDashboard:
		content = a.dashboardView.View()
	case tui.RouteTweets:
		content = a.tweetsView.View()
	case tui.RouteAIGenerate:
		content = a.generateView.View()
	case tui.RouteCampaigns:
		content = a.campaignsView.View()
	default:
		content = "Unknown route"
	}

	if a.model.Route.Protected() {
		content = lipgloss.JoinVertical(lipgloss.Center, a.renderTabBar(), "", content, a.renderStatusLine())
	} else if a.model.CtrlCPending {
		content = lipgloss.JoinVertical(lipgloss.Center, content, a.renderStatusLine())
	}

	return a.centerContent(content)
}

// centerContent centers the given content both horizontally and vertically.
func (a *App) centerContent(content string) string {
	return lipgloss.Place(
		a.model.Width,
		a.model.Height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// renderTabBar renders the navigation tabs with the active route highlighted.
func (a *App) renderTabBar() string {
	var rendered []string
	for i, r := range tui.NavRoutes {
		label := strconv.Itoa(i+1) + " " + r.Title()
		if r == a.model.Route {
			rendered = append(rendered, tui.ActiveTabStyle.Render(label))
		} else {
			rendered = append(rendered, tui.InactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (a *App) renderStatusLine() string {
	var parts []string
	if u := a.deps.Session.User(); u != nil {
		parts = append(parts, "Signed in as "+u.DisplayName())
	}
	if a.model.CtrlCPending {
		parts = append(parts, tui.WarningStyle.Render("Press Ctrl+C again to exit"))
	} else if a.model.Route.Protected() {
		parts = append(parts, "Ctrl+L: Logout")
	}
	return tui.DimStyle.Render(strings.Join(parts, "    "))
}
