package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/tui"
	"github.com/xpost-dev/xpost/internal/tui/commands"
)

const dashboardViewName = "dashboard"

// DashboardModel shows the analytics summary, an engagement sparkline and
// the most recent posts. The three loads run concurrently; a failed load
// only hides its own section.
type DashboardModel struct {
	deps    *Deps
	spinner spinner.Model

	summary *api.AnalyticsSummary
	recent  []api.Tweet
	trends  *api.EngagementTrends

	summaryDone bool
	recentDone  bool
	trendsDone  bool
	recentErr   error

	width  int
	height int
}

// NewDashboardModel creates a DashboardModel in the loading state.
func NewDashboardModel(deps *Deps, width, height int) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = tui.SelectedStyle

	return DashboardModel{
		deps:    deps,
		spinner: s,
		width:   width,
		height:  height,
	}
}

// Init starts the spinner and the three loads.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m DashboardModel) load() tea.Cmd {
	cfg := m.deps.Config.Dashboard
	return tea.Batch(
		commands.LoadSummaryCmd(m.deps.Client, cfg.SummaryDays),
		commands.LoadRecentTweetsCmd(m.deps.Client, cfg.RecentLimit),
		commands.LoadTrendsCmd(m.deps.Client, cfg.SummaryDays),
	)
}

// Loading reports whether the summary or recent posts are still pending.
func (m DashboardModel) Loading() bool {
	return !m.summaryDone || !m.recentDone
}

// CapturesInput is false: the dashboard has no text fields.
func (m DashboardModel) CapturesInput() bool {
	return false
}

// Update handles messages for the dashboard view.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tui.SummaryLoadedMsg:
		m.summaryDone = true
		m.summary = msg.Summary
		if msg.Err != nil {
			m.summary = nil
			m.deps.logFailure(dashboardViewName, "load summary", msg.Err)
		}
		return m, nil

	case tui.RecentTweetsLoadedMsg:
		m.recentDone = true
		m.recent = msg.Tweets
		m.recentErr = msg.Err
		if msg.Err != nil {
			m.recent = nil
			m.deps.logFailure(dashboardViewName, "load recent tweets", msg.Err)
		}
		return m, nil

	case tui.TrendsLoadedMsg:
		m.trendsDone = true
		m.trends = msg.Trends
		if msg.Err != nil {
			m.trends = nil
			m.deps.logFailure(dashboardViewName, "load engagement trends", msg.Err)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" && !m.Loading() {
			m.summaryDone, m.recentDone, m.trendsDone = false, false, false
			return m, tea.Batch(m.spinner.Tick, m.load())
		}
	}

	return m, nil
}

// View renders the dashboard view.
func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Dashboard"))
	b.WriteString("\n")
	if u := m.deps.Session.User(); u != nil {
		b.WriteString(fmt.Sprintf("Welcome back, %s!", u.DisplayName()))
	} else {
		b.WriteString("Welcome back!")
	}
	b.WriteString("\n\n")

	if m.Loading() {
		b.WriteString(m.spinner.View() + " Loading...")
		return frame(b.String(), m.width)
	}

	if m.summary != nil {
		b.WriteString(m.renderStats())
		b.WriteString("\n\n")
	}

	if m.trends != nil && len(m.trends.Data) > 0 {
		b.WriteString(m.renderTrends())
		b.WriteString("\n\n")
	}

	if m.recentErr == nil {
		b.WriteString(m.renderRecent())
		b.WriteString("\n")
	}

	b.WriteString(tui.HelpLine(tui.DefaultKeyMap.Reload, tui.DefaultKeyMap.Navigate, tui.DefaultKeyMap.Logout, tui.DefaultKeyMap.CtrlC))
	return frame(b.String(), m.width)
}

func (m DashboardModel) renderStats() string {
	s := m.summary
	card := func(label, value string) string {
		return tui.StatCardStyle.Render(label + "\n" + tui.StatValueStyle.Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Tweets", humanize.Comma(int64(s.TotalTweets))),
		card("Total Engagement", humanize.Comma(int64(s.TotalEngagement))),
		card("Avg Engagement", formatRate(s.AvgEngagementRate)),
		card("Best Hour", bestHour(s.BestTimeSlots)),
	)
}

func (m DashboardModel) renderTrends() string {
	values := make([]float64, len(m.trends.Data))
	for i, p := range m.trends.Data {
		values[i] = float64(p.TotalEngagement)
	}
	first := m.trends.Data[0].Date
	last := m.trends.Data[len(m.trends.Data)-1].Date
	return tui.SectionStyle.Render("Engagement Trend") + "\n" +
		tui.SelectedStyle.Render(sparkline(values)) + "\n" +
		tui.DimStyle.Render(first+" → "+last)
}

func (m DashboardModel) renderRecent() string {
	var b strings.Builder
	b.WriteString(tui.SectionStyle.Render("Recent Tweets"))
	b.WriteString("\n")
	if len(m.recent) == 0 {
		b.WriteString(tui.DimStyle.Render("No tweets yet. Start creating!"))
		b.WriteString("\n")
		return b.String()
	}
	for _, t := range m.recent {
		line := fmt.Sprintf("%s %s", tui.StatusBadge(t.Status), truncate(t.Text, 60))
		if t.ViralScore != nil {
			line += tui.DimStyle.Render("  Viral Score: " + formatScore(*t.ViralScore))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
