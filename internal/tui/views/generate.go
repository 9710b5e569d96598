package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/forms"
	"github.com/xpost-dev/xpost/internal/tui"
	"github.com/xpost-dev/xpost/internal/tui/commands"
)

const (
	msgGenerateFailed  = "Failed to generate tweets. Make sure the AI API key (GEMINI_API_KEY) is configured on the backend."
	generateViewName   = "ai-generate"
	defaultNumVariants = 3
	maxNumVariants     = 5
)

const (
	genFieldTopic = iota
	genFieldTone
	genFieldVariants
	genFieldHashtags
	genFieldCTA
	genFieldTotal
)

// GenerateModel is the AI generator form and its latest results.
type GenerateModel struct {
	deps    *Deps
	spinner spinner.Model

	topic    textinput.Model
	tone     int
	count    int
	hashtags bool
	cta      bool
	focus    int

	phase    tui.Phase
	dialog   Dialog
	variants []api.GeneratedVariant

	width  int
	height int
}

// NewGenerateModel creates a GenerateModel with default options.
func NewGenerateModel(deps *Deps, width, height int) GenerateModel {
	topic := textinput.New()
	topic.Placeholder = "e.g., AI and future of work"
	topic.CharLimit = 200
	topic.Prompt = "› "
	topic.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = tui.SelectedStyle

	return GenerateModel{
		deps:     deps,
		spinner:  s,
		topic:    topic,
		count:    defaultNumVariants,
		hashtags: true,
		cta:      true,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the generator view.
func (m GenerateModel) Init() tea.Cmd {
	return textinput.Blink
}

// Variants returns the variants from the latest successful generation.
func (m GenerateModel) Variants() []api.GeneratedVariant {
	return m.variants
}

// Phase reports the request state.
func (m GenerateModel) Phase() tui.Phase {
	return m.phase
}

// Dialog returns the dialog currently shown, if any.
func (m GenerateModel) Dialog() Dialog {
	return m.dialog
}

// CapturesInput reports whether keys belong to a dialog or the topic field.
func (m GenerateModel) CapturesInput() bool {
	return m.dialog.Open() || m.focus == genFieldTopic
}

// Update handles messages for the generator view.
func (m GenerateModel) Update(msg tea.Msg) (GenerateModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.phase != tui.PhaseSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tui.VariantsGeneratedMsg:
		if msg.Err != nil {
			m.deps.logFailure(generateViewName, "generate variants", msg.Err)
			m.phase = tui.PhaseFailed
			m.dialog = Alert(msgGenerateFailed)
			return m, nil
		}
		m.phase = tui.PhaseSucceeded
		m.variants = msg.Response.Variants
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m GenerateModel) handleKey(msg tea.KeyMsg) (GenerateModel, tea.Cmd) {
	if m.dialog.Open() {
		var res DialogResult
		m.dialog, res = m.dialog.Update(msg)
		if res != DialogPending {
			m.phase = tui.PhaseIdle
		}
		return m, nil
	}

	switch msg.String() {
	case tui.KeyEnter, "ctrl+s":
		return m.submit()
	case tui.KeyEsc:
		// Leaves the topic field; a second esc is handled by the App.
		m.setFocus(genFieldTone)
		return m, nil
	case tui.KeyTab, tui.KeyDown:
		m.setFocus((m.focus + 1) % genFieldTotal)
		return m, nil
	case tui.KeyShiftTab, tui.KeyUp:
		m.setFocus((m.focus + genFieldTotal - 1) % genFieldTotal)
		return m, nil
	}

	if m.focus == genFieldTopic {
		var cmd tea.Cmd
		m.topic, cmd = m.topic.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case tui.KeyLeft, "h", "-":
		m.adjust(-1)
	case tui.KeyRight, "l", "+", tui.KeySpace:
		m.adjust(1)
	}
	return m, nil
}

// adjust changes the focused option by delta.
func (m *GenerateModel) adjust(delta int) {
	switch m.focus {
	case genFieldTone:
		n := len(forms.Tones)
		m.tone = (m.tone + delta + n) % n
	case genFieldVariants:
		m.count = min(max(m.count+delta, 1), maxNumVariants)
	case genFieldHashtags:
		m.hashtags = !m.hashtags
	case genFieldCTA:
		m.cta = !m.cta
	}
}

func (m GenerateModel) submit() (GenerateModel, tea.Cmd) {
	if m.phase == tui.PhaseSubmitting {
		return m, nil
	}
	in, err := forms.ParseGenerate(m.topic.Value(), forms.Tones[m.tone], m.count, m.hashtags, m.cta)
	if err != nil {
		m.dialog = Alert(err.Error())
		return m, nil
	}
	m.phase = tui.PhaseSubmitting
	return m, tea.Batch(m.spinner.Tick, commands.GenerateCmd(m.deps.Client, in))
}

func (m *GenerateModel) setFocus(field int) {
	m.focus = field
	if field == genFieldTopic {
		m.topic.Focus()
	} else {
		m.topic.Blur()
	}
}

// View renders the generator view.
func (m GenerateModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("AI Tweet Generator"))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Generate viral tweets using Google Gemini AI"))
	b.WriteString("\n\n")

	b.WriteString(fieldLabel("Topic", m.focus == genFieldTopic))
	b.WriteString("\n")
	b.WriteString(m.topic.View())
	b.WriteString("\n\n")

	b.WriteString(option("Tone", "‹ "+forms.Tones[m.tone]+" ›", m.focus == genFieldTone))
	b.WriteString(option("Number of Variants (1-5)", fmt.Sprintf("‹ %d ›", m.count), m.focus == genFieldVariants))
	b.WriteString(option("Include Hashtags", checkbox(m.hashtags), m.focus == genFieldHashtags))
	b.WriteString(option("Include Call-to-Action", checkbox(m.cta), m.focus == genFieldCTA))
	b.WriteString("\n")

	if m.phase == tui.PhaseSubmitting {
		b.WriteString(m.spinner.View() + " Generating...")
		b.WriteString("\n\n")
	}

	if m.dialog.Open() {
		b.WriteString(m.dialog.View())
		b.WriteString("\n\n")
	}

	if len(m.variants) > 0 {
		b.WriteString(tui.SectionStyle.Render("Generated Tweets"))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render("Saved to your tweets as drafts."))
		b.WriteString("\n\n")
		for i, v := range m.variants {
			b.WriteString(wrap(fmt.Sprintf("%d. %s", i+1, v.Text), m.width-8))
			b.WriteString("\n")
			b.WriteString(tui.DimStyle.Render("   Viral Score: ") + tui.StatValueStyle.Render(formatScore(v.ViralScore)) + "  " + tui.BadgeAI)
			b.WriteString("\n\n")
		}
	}

	b.WriteString(tui.HelpLine(tui.Relabel(tui.DefaultKeyMap.Enter, "generate"), tui.DefaultKeyMap.Tab, tui.DefaultKeyMap.Option))
	return frame(b.String(), m.width)
}

func option(label, value string, focused bool) string {
	return fieldLabel(label, focused) + ": " + value + "\n"
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
