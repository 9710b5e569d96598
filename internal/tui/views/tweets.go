package views

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/forms"
	"github.com/xpost-dev/xpost/internal/tui"
	"github.com/xpost-dev/xpost/internal/tui/commands"
)

const (
	msgTweetCreated      = "Tweet created successfully!"
	msgTweetCreateFailed = "Failed to create tweet"
	msgTweetPosted       = "Tweet posted successfully!"
	msgTweetPostFailed   = "Failed to post tweet"
	msgConfirmPost       = "Post this tweet now?"
	msgMetricsFailed     = "Failed to load metrics"
	msgAnalyzeFailed     = "Failed to analyze tweet"
	tweetsViewName       = "tweets"
)

type tweetsFocus int

const (
	focusList tweetsFocus = iota
	focusText
	focusSchedule
	focusMedia
)

// TweetsModel lists posts and hosts the composer.
type TweetsModel struct {
	deps *Deps

	tweets   []api.Tweet
	loaded   bool
	loadErr  error
	selected int

	focus    tweetsFocus
	text     textarea.Model
	schedule textinput.Model
	media    textinput.Model

	phase       tui.Phase
	dialog      Dialog
	pendingPost int

	metricsFor int
	metrics    []api.Metric
	analysis   *api.Analysis
	analyzed   string

	width  int
	height int
}

// NewTweetsModel creates a TweetsModel with the list focused.
func NewTweetsModel(deps *Deps, width, height int) TweetsModel {
	ta := textarea.New()
	ta.Placeholder = "What's happening?"
	// Longer input is allowed so the length check can report it.
	ta.CharLimit = 1000
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(4)

	schedule := textinput.New()
	schedule.Placeholder = "YYYY-MM-DD HH:MM (optional)"
	schedule.CharLimit = 16
	schedule.Prompt = "› "

	media := textinput.New()
	media.Placeholder = "https://… comma separated (optional)"
	media.CharLimit = 1000
	media.Prompt = "› "

	return TweetsModel{
		deps:     deps,
		text:     ta,
		schedule: schedule,
		media:    media,
		width:    width,
		height:   height,
	}
}

// Init loads the post list.
func (m TweetsModel) Init() tea.Cmd {
	return m.reload()
}

func (m TweetsModel) reload() tea.Cmd {
	return commands.LoadTweetsCmd(m.deps.Client, "", m.deps.Config.Tweets.ListLimit)
}

// Tweets returns the loaded posts.
func (m TweetsModel) Tweets() []api.Tweet {
	return m.tweets
}

// Phase reports the request state.
func (m TweetsModel) Phase() tui.Phase {
	return m.phase
}

// Dialog returns the dialog currently shown, if any.
func (m TweetsModel) Dialog() Dialog {
	return m.dialog
}

// CapturesInput reports whether keys belong to a dialog or a form field.
func (m TweetsModel) CapturesInput() bool {
	return m.dialog.Open() || m.focus != focusList
}

// Update handles messages for the tweets view.
func (m TweetsModel) Update(msg tea.Msg) (TweetsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 20 {
			m.text.SetWidth(min(msg.Width-12, 80))
		}
		return m, nil

	case tui.TweetsLoadedMsg:
		m.loaded = true
		m.loadErr = msg.Err
		if msg.Err != nil {
			m.deps.logFailure(tweetsViewName, "load tweets", msg.Err)
			return m, nil
		}
		m.tweets = msg.Tweets
		if m.selected >= len(m.tweets) {
			m.selected = max(len(m.tweets)-1, 0)
		}
		return m, nil

	case tui.TweetCreatedMsg:
		if msg.Err != nil {
			m.deps.logFailure(tweetsViewName, "create tweet", msg.Err)
			m.phase = tui.PhaseFailed
			m.dialog = Alert(msgTweetCreateFailed)
			return m, nil
		}
		m.phase = tui.PhaseSucceeded
		m.dialog = Alert(msgTweetCreated)
		m.resetForm()
		return m, m.reload()

	case tui.TweetPostedMsg:
		if msg.Err != nil {
			m.deps.logFailure(tweetsViewName, "post tweet", msg.Err)
			m.phase = tui.PhaseFailed
			m.dialog = Alert(msgTweetPostFailed)
			return m, nil
		}
		m.phase = tui.PhaseSucceeded
		m.dialog = Alert(msgTweetPosted)
		return m, m.reload()

	case tui.TweetMetricsLoadedMsg:
		if msg.Err != nil {
			m.deps.logFailure(tweetsViewName, "load metrics", msg.Err)
			m.dialog = Alert(msgMetricsFailed)
			return m, nil
		}
		m.metricsFor = msg.TweetID
		m.metrics = msg.Metrics
		return m, nil

	case tui.AnalysisMsg:
		if msg.Err != nil {
			m.deps.logFailure(tweetsViewName, "analyze tweet", msg.Err)
			m.dialog = Alert(msgAnalyzeFailed)
			return m, nil
		}
		m.analysis = msg.Analysis
		m.analyzed = msg.Text
		return m, nil

	case tea.KeyMsg:
		if m.dialog.Open() {
			return m.handleDialog(msg)
		}
		if m.focus == focusList {
			return m.handleListKey(msg)
		}
		return m.handleComposerKey(msg)
	}

	return m, nil
}

func (m TweetsModel) handleDialog(msg tea.KeyMsg) (TweetsModel, tea.Cmd) {
	var res DialogResult
	m.dialog, res = m.dialog.Update(msg)
	switch res {
	case DialogAccepted:
		id := m.pendingPost
		m.pendingPost = 0
		m.phase = tui.PhaseSubmitting
		return m, commands.PostTweetCmd(m.deps.Client, id)
	case DialogRejected:
		m.pendingPost = 0
	case DialogDismissed:
		// A metrics or analysis alert can close while a save is still in flight.
		if m.phase == tui.PhaseSucceeded || m.phase == tui.PhaseFailed {
			m.phase = tui.PhaseIdle
		}
	}
	return m, nil
}

func (m TweetsModel) handleListKey(msg tea.KeyMsg) (TweetsModel, tea.Cmd) {
	switch msg.String() {
	case tui.KeyUp, "k":
		if m.selected > 0 {
			m.selected--
		}
	case tui.KeyDown, "j":
		if m.selected < len(m.tweets)-1 {
			m.selected++
		}
	case tui.KeyTab, "n":
		m.setFocus(focusText)
	case "r":
		return m, m.reload()
	case "p":
		t, ok := m.current()
		if !ok || !t.CanPostNow() || m.phase == tui.PhaseSubmitting {
			return m, nil
		}
		m.pendingPost = t.ID
		m.dialog = Confirm(msgConfirmPost)
	case "m":
		if t, ok := m.current(); ok {
			return m, commands.LoadTweetMetricsCmd(m.deps.Client, t.ID)
		}
	case "a":
		if t, ok := m.current(); ok {
			return m, commands.AnalyzeTextCmd(m.deps.Client, t.Text)
		}
	}
	return m, nil
}

func (m TweetsModel) handleComposerKey(msg tea.KeyMsg) (TweetsModel, tea.Cmd) {
	switch msg.String() {
	case tui.KeyEsc:
		m.setFocus(focusList)
		return m, nil
	case tui.KeyTab:
		m.setFocus(m.focus%3 + 1)
		return m, nil
	case tui.KeyShiftTab:
		m.setFocus((m.focus+1)%3 + 1)
		return m, nil
	case "ctrl+s":
		return m.submit()
	case "ctrl+e":
		text := strings.TrimSpace(m.text.Value())
		if text == "" {
			return m, nil
		}
		return m, commands.AnalyzeTextCmd(m.deps.Client, text)
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusText:
		m.text, cmd = m.text.Update(msg)
	case focusSchedule:
		m.schedule, cmd = m.schedule.Update(msg)
	case focusMedia:
		m.media, cmd = m.media.Update(msg)
	}
	return m, cmd
}

// submit validates the composer. Invalid input opens a dialog and sends
// nothing.
func (m TweetsModel) submit() (TweetsModel, tea.Cmd) {
	if m.phase == tui.PhaseSubmitting {
		return m, nil
	}
	in, err := forms.ParseTweetForm(m.text.Value(), m.schedule.Value(), m.media.Value(), m.deps.location())
	if err != nil {
		m.dialog = Alert(err.Error())
		return m, nil
	}
	m.phase = tui.PhaseSubmitting
	return m, commands.CreateTweetCmd(m.deps.Client, in)
}

func (m *TweetsModel) resetForm() {
	m.text.Reset()
	m.schedule.SetValue("")
	m.media.SetValue("")
	m.setFocus(focusList)
}

func (m *TweetsModel) setFocus(f tweetsFocus) {
	m.focus = f
	m.text.Blur()
	m.schedule.Blur()
	m.media.Blur()
	switch f {
	case focusText:
		m.text.Focus()
	case focusSchedule:
		m.schedule.Focus()
	case focusMedia:
		m.media.Focus()
	}
}

func (m TweetsModel) current() (api.Tweet, bool) {
	if m.selected < 0 || m.selected >= len(m.tweets) {
		return api.Tweet{}, false
	}
	return m.tweets[m.selected], true
}

// View renders the tweets view.
func (m TweetsModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Tweets"))
	b.WriteString("\n\n")

	b.WriteString(m.renderComposer())
	b.WriteString("\n")

	if m.dialog.Open() {
		b.WriteString(m.dialog.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderList())

	if t, ok := m.current(); ok && m.metricsFor == t.ID {
		b.WriteString("\n")
		b.WriteString(m.renderMetrics())
	}
	if m.analysis != nil {
		b.WriteString("\n")
		b.WriteString(m.renderAnalysis())
	}

	b.WriteString("\n")
	if m.focus == focusList {
		b.WriteString(m.listHelp())
	} else {
		b.WriteString(tui.HelpLine(tui.Relabel(tui.DefaultKeyMap.Submit, "save"), tui.DefaultKeyMap.AnalyzeNew, tui.DefaultKeyMap.Tab, tui.Relabel(tui.DefaultKeyMap.Escape, "back to list")))
	}
	return frame(b.String(), m.width)
}

// listHelp offers post now only for a post that can still be posted.
func (m TweetsModel) listHelp() string {
	bindings := []key.Binding{tui.DefaultKeyMap.Compose}
	if t, ok := m.current(); ok && t.CanPostNow() {
		bindings = append(bindings, tui.DefaultKeyMap.PostNow)
	}
	bindings = append(bindings, tui.DefaultKeyMap.Metrics, tui.DefaultKeyMap.Analyze, tui.DefaultKeyMap.Reload)
	return tui.HelpLine(bindings...)
}

func (m TweetsModel) renderComposer() string {
	var b strings.Builder
	b.WriteString(tui.SectionStyle.Render("Create New Tweet"))
	b.WriteString("\n")
	b.WriteString(m.text.View())
	b.WriteString("\n")

	n := utf8.RuneCountInString(m.text.Value())
	counter := fmt.Sprintf("%d/%d", n, forms.MaxTweetLength)
	if n > forms.MaxTweetLength {
		b.WriteString(tui.ErrorStyle.Render(counter))
	} else {
		b.WriteString(tui.DimStyle.Render(counter))
	}
	b.WriteString("\n")

	b.WriteString(fieldLabel("Schedule for later (optional)", m.focus == focusSchedule))
	b.WriteString("\n")
	b.WriteString(m.schedule.View())
	b.WriteString("\n")
	b.WriteString(fieldLabel("Media links", m.focus == focusMedia))
	b.WriteString("\n")
	b.WriteString(m.media.View())
	b.WriteString("\n")

	if m.phase == tui.PhaseSubmitting {
		b.WriteString(tui.DimStyle.Render("Saving..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (m TweetsModel) renderList() string {
	var b strings.Builder
	b.WriteString(tui.SectionStyle.Render("All Tweets"))
	b.WriteString("\n")

	switch {
	case !m.loaded:
		b.WriteString(tui.DimStyle.Render("Loading..."))
		b.WriteString("\n")
		return b.String()
	case m.loadErr != nil:
		b.WriteString(tui.ErrorStyle.Render("Could not load tweets. Press r to retry."))
		b.WriteString("\n")
		return b.String()
	case len(m.tweets) == 0:
		b.WriteString(tui.DimStyle.Render("No tweets yet."))
		b.WriteString("\n")
		return b.String()
	}

	loc := m.deps.location()
	for i, t := range m.tweets {
		cursor := "  "
		text := truncate(t.Text, 60)
		if i == m.selected && m.focus == focusList {
			cursor = tui.SelectedStyle.Render("▸ ")
			text = tui.SelectedStyle.Render(text)
		}
		line := cursor + tui.StatusBadge(t.Status) + " "
		if t.GeneratedByAI {
			line += tui.BadgeAI + " "
		}
		line += text
		if t.ViralScore != nil {
			line += tui.DimStyle.Render("  Viral Score: " + formatScore(*t.ViralScore))
		}
		b.WriteString(line)
		b.WriteString("\n")
		if t.ScheduledAt != nil && !t.ScheduledAt.IsZero() {
			b.WriteString(tui.DimStyle.Render("    Scheduled: " + formatWhen(t.ScheduledAt.Time, loc)))
			b.WriteString("\n")
		}
		if t.PostedAt != nil && !t.PostedAt.IsZero() {
			b.WriteString(tui.DimStyle.Render("    Posted: " + formatWhen(t.PostedAt.Time, loc)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m TweetsModel) renderMetrics() string {
	var b strings.Builder
	b.WriteString(tui.SectionStyle.Render("Metrics"))
	b.WriteString("\n")
	if len(m.metrics) == 0 {
		b.WriteString(tui.DimStyle.Render("No metrics recorded yet."))
		b.WriteString("\n")
		return b.String()
	}
	loc := m.deps.location()
	for _, mt := range m.metrics {
		line := fmt.Sprintf("%s  ♥ %d  ⟲ %d  ↩ %d",
			mt.Timestamp.In(loc).Format(forms.ScheduleLayout), mt.Likes, mt.Retweets, mt.Replies)
		if mt.Impressions != nil {
			line += fmt.Sprintf("  👁 %d", *mt.Impressions)
		}
		if mt.EngagementRate != nil {
			line += "  " + formatRate(*mt.EngagementRate)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m TweetsModel) renderAnalysis() string {
	var b strings.Builder
	b.WriteString(tui.SectionStyle.Render("Analysis"))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render(truncate(m.analyzed, 60)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Sentiment: %s    Engagement score: %s\n",
		m.analysis.Sentiment, formatScore(m.analysis.EngagementScore)))
	for _, s := range m.analysis.Suggestions {
		b.WriteString(wrap("• "+s, m.width-8))
		b.WriteString("\n")
	}
	return b.String()
}
