package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/config"
	"github.com/xpost-dev/xpost/internal/session"
	"github.com/xpost-dev/xpost/internal/storage"
	"github.com/xpost-dev/xpost/internal/testutil"
	"github.com/xpost-dev/xpost/internal/tui"
	"github.com/xpost-dev/xpost/internal/tui/views"
)

func newDeps(t *testing.T, fb *testutil.FakeBackend) *views.Deps {
	t.Helper()
	client, err := api.NewClient(fb.URL())
	require.NoError(t, err)

	sess := session.New(client.Auth, storage.NewMemory(), zerolog.Nop())
	client.SetTokenSource(sess)
	client.SetUnauthorizedHandler(sess.HandleUnauthorized)

	return &views.Deps{
		Client:   client,
		Session:  sess,
		Config:   config.DefaultConfig(),
		Logger:   zerolog.Nop(),
		Location: time.UTC,
	}
}

func loggedIn(t *testing.T, fb *testutil.FakeBackend) *views.Deps {
	t.Helper()
	fb.AddUser("alice", "alice_x")
	deps := newDeps(t, fb)
	require.True(t, deps.Session.Login(context.Background(), "alice", "pw"))
	return deps
}

// feed runs cmd and passes each resulting message back into the app.
func feed(a *App, cmd tea.Cmd) {
	for _, msg := range testutil.Drain(cmd) {
		a.Update(msg)
	}
}

func press(a *App, s string) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return cmd
}

func pressType(a *App, k tea.KeyType) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: k})
	return cmd
}

func TestInitWithoutSessionShowsLogin(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	a := New(newDeps(t, fb))
	a.Init()

	assert.Equal(t, tui.RouteLogin, a.Route())
	assert.Contains(t, a.View(), "Login")
	assert.NotContains(t, a.View(), "1 Dashboard")
	assert.Empty(t, fb.Requests(), "no protected request is attempted")
}

func TestInitWithSessionShowsDashboard(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	a := New(loggedIn(t, fb))
	feed(a, a.Init())

	assert.Equal(t, tui.RouteDashboard, a.Route())
	view := a.View()
	assert.Contains(t, view, "1 Dashboard")
	assert.Contains(t, view, "Welcome back, @alice_x!")
}

func TestNumberKeysNavigate(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	a := New(loggedIn(t, fb))
	feed(a, a.Init())

	feed(a, press(a, "2"))
	assert.Equal(t, tui.RouteTweets, a.Route())

	feed(a, press(a, "3"))
	assert.Equal(t, tui.RouteAIGenerate, a.Route())

	// The topic field has focus, so digits are typed, not navigation.
	press(a, "4")
	assert.Equal(t, tui.RouteAIGenerate, a.Route())

	pressType(a, tea.KeyEsc)
	assert.Equal(t, tui.RouteAIGenerate, a.Route(), "first esc leaves the topic field")
	feed(a, pressType(a, tea.KeyEsc))
	assert.Equal(t, tui.RouteDashboard, a.Route())

	feed(a, press(a, "4"))
	assert.Equal(t, tui.RouteCampaigns, a.Route())
	assert.Contains(t, a.View(), "No campaigns yet")
}

func TestLoginResultNavigatesToDashboard(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.AddUser("alice", "")
	deps := newDeps(t, fb)
	a := New(deps)
	a.Init()
	require.Equal(t, tui.RouteLogin, a.Route())

	require.True(t, deps.Session.Login(context.Background(), "alice", "pw"))
	_, cmd := a.Update(tui.LoginResultMsg{OK: true})
	assert.Equal(t, tui.RouteDashboard, a.Route())
	assert.NotNil(t, cmd, "dashboard loads on arrival")
}

func TestFailedLoginStaysOnLogin(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	a := New(newDeps(t, fb))
	a.Init()

	a.Update(tui.LoginResultMsg{OK: false})
	assert.Equal(t, tui.RouteLogin, a.Route())
	assert.Contains(t, a.View(), "Login failed")
}

func TestLogoutReturnsToLogin(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedIn(t, fb)
	a := New(deps)
	feed(a, a.Init())

	pressType(a, tea.KeyCtrlL)
	assert.Equal(t, tui.RouteLogin, a.Route())
	assert.False(t, deps.Session.IsAuthenticated())

	// Protected routes stay out of reach.
	a.Update(tui.NavigateMsg{To: tui.RouteCampaigns})
	assert.Equal(t, tui.RouteLogin, a.Route())
}

func TestRejectedCredentialRoutesToLogin(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedIn(t, fb)
	a := New(deps)
	feed(a, a.Init())

	fb.Fail(http.MethodGet, "/api/tweets/", http.StatusUnauthorized, "Could not validate credentials")
	feed(a, press(a, "2"))

	assert.False(t, deps.Session.IsAuthenticated())
	assert.Equal(t, tui.RouteLogin, a.Route())
	assert.Contains(t, a.View(), "Session expired. Please log in again.")
}

func TestViewChecksGuard(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	deps := loggedIn(t, fb)
	a := New(deps)
	feed(a, a.Init())

	deps.Session.Logout()
	assert.Contains(t, a.View(), "Redirecting to login")
	assert.NotContains(t, a.View(), "Welcome back")

	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, tui.RouteLogin, a.Route())
}

func TestResultsForOtherViewsAreDropped(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	a := New(loggedIn(t, fb))
	feed(a, a.Init())

	_, cmd := a.Update(tui.CampaignsLoadedMsg{Campaigns: []api.Campaign{{Name: "stray"}}})
	assert.Nil(t, cmd)
	assert.Equal(t, tui.RouteDashboard, a.Route())
	assert.NotContains(t, a.View(), "stray")
}

func TestCtrlCTwiceQuits(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	a := New(loggedIn(t, fb))
	feed(a, a.Init())

	cmd := pressType(a, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.Contains(t, a.View(), "Press Ctrl+C again to exit")

	cmd = pressType(a, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestCtrlCResets(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	a := New(loggedIn(t, fb))
	feed(a, a.Init())

	pressType(a, tea.KeyCtrlC)
	a.Update(tui.CtrlCResetMsg{})
	assert.NotContains(t, a.View(), "Press Ctrl+C again")

	cmd := pressType(a, tea.KeyCtrlC)
	require.NotNil(t, cmd, "first press starts a new window instead of quitting")
}
