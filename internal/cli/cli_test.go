package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/config"
	xlog "github.com/xpost-dev/xpost/internal/log"
	"github.com/xpost-dev/xpost/internal/storage"
	"github.com/xpost-dev/xpost/internal/testutil"
)

func setup(t *testing.T) (*testutil.FakeBackend, string) {
	t.Helper()
	color.NoColor = true
	fb := testutil.NewFakeBackend(t)
	dir := testutil.TempHome(t, nil)
	t.Setenv("XPOST_API_URL", fb.URL())
	return fb, dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestLoginStatusLogout(t *testing.T) {
	fb, _ := setup(t)
	fb.AddUser("alice", "alice_x")
	fb.SetSummary(api.AnalyticsSummary{
		TotalTweets:       1234,
		TotalEngagement:   56789,
		AvgEngagementRate: 0.0345,
		BestTimeSlots:     []api.TimeSlot{{Hour: 9, AvgEngagement: 12}},
	})

	out, err := run(t, "pw\n", "login", "-u", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as @alice_x.")

	// A new process restores the stored credential.
	out, err = run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as alice")
	assert.Contains(t, out, "from now")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "56,789")
	assert.Contains(t, out, "3.45%")
	assert.Contains(t, out, "09:00")

	out, err = run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	out, err = run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
	assert.Equal(t, 1, fb.Count(http.MethodGet, "/api/analytics/summary"))
}

func TestLoginPromptsForUsername(t *testing.T) {
	fb, _ := setup(t)
	fb.AddUser("bob", "")

	out, err := run(t, "bob\npw\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: ")
	assert.Contains(t, out, "Logged in as bob.")
}

func TestLoginFailures(t *testing.T) {
	fb, _ := setup(t)

	_, err := run(t, "\n", "login", "-u", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required")
	assert.Empty(t, fb.Requests(), "validation happens before any request")

	_, err = run(t, "pw\n", "login", "-u", "nobody")
	assert.ErrorIs(t, err, errLoginFailed)
}

func TestRegister(t *testing.T) {
	fb, _ := setup(t)

	out, err := run(t, "", "register", "-u", "carol", "--handle", "@carol_x")
	require.NoError(t, err)
	assert.Contains(t, out, "Registration successful! Please login.")

	req, ok := fb.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "/auth/register", req.Path)
	assert.Equal(t, "twitter_username=carol_x&username=carol", req.Query)

	out, err = run(t, "pw\n", "login", "-u", "carol")
	require.NoError(t, err)
	assert.Contains(t, out, "@carol_x")

	_, err = run(t, "", "register", "-u", "carol")
	assert.Error(t, err, "duplicate usernames are rejected")
}

func TestStatusLog(t *testing.T) {
	fb, _ := setup(t)
	fb.AddUser("alice", "")

	_, err := run(t, "pw\n", "login", "-u", "nobody")
	require.Error(t, err)

	out, err := run(t, "", "status", "--log", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent log")
	assert.Contains(t, out, "login_failed")
}

func TestInitWritesConfig(t *testing.T) {
	_, dir := setup(t)

	out, err := run(t, "", "init", "--api-url", "http://example.test:9000")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:9000", cfg.API.BaseURL)

	out, err = run(t, "n\n", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	_, err = run(t, "", "init", "--force", "--api-url", "ftp://nope")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	setup(t)
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "xpost dev\n", out)
}

func TestCleanKeepsRecentEntries(t *testing.T) {
	fb, dir := setup(t)
	fb.AddUser("alice", "")

	// Each failed login logs the rejected request and the login failure.
	for i := 0; i < 3; i++ {
		_, err := run(t, "pw\n", "login", "-u", "nobody")
		require.Error(t, err)
	}

	out, err := run(t, "", "clean", "--keep", "1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would remove 5 log entries.")

	out, err = run(t, "", "clean", "--keep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 5 log entries.")

	entries, err := xlog.ReadAll(xlog.Path(dir))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, err = run(t, "", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "No log entries to clean up.")
}

func TestFailingCommandClosesStorage(t *testing.T) {
	setup(t)
	e, err := bootstrap(context.Background())
	require.NoError(t, err)

	cmd := &cobra.Command{}
	cmd.SetContext(context.WithValue(context.Background(), envKey{}, e))
	runE := withEnv(func(*cobra.Command, *env) error { return errors.New("boom") })
	require.EqualError(t, runE(cmd, nil), "boom")

	_, _, err = e.store.Get(storage.TokenKey)
	assert.Error(t, err, "storage is closed after a failing command")
}
