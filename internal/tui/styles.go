package tui

import "github.com/charmbracelet/lipgloss"

// Color constants.
const (
	primaryColor   = "#7C3AED" // Purple
	secondaryColor = "#10B981" // Green
	warningColor   = "#F59E0B" // Amber
	errorColor     = "#EF4444" // Red
	dimColor       = "#6B7280" // Gray
	accentColor    = "#1DA1F2" // Blue
)

// Style variables for consistent TUI rendering.
var (
	// BoxStyle provides a rounded border box with primary color.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Padding(1, 2)

	// DialogStyle frames acknowledgment and confirmation dialogs.
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(warningColor)).
			Padding(0, 2)

	// TitleStyle renders titles in primary color with bold.
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// SectionStyle renders section headings inside a view.
	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(accentColor)).
			Bold(true)

	// SelectedStyle highlights selected items in primary color.
	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// DimStyle renders dim/muted text.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(dimColor))

	// SuccessStyle renders success messages in green.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(secondaryColor))

	// ErrorStyle renders error messages in red.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(errorColor))

	// WarningStyle renders warning messages in amber.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(warningColor))

	// StatValueStyle renders the big numbers on the dashboard.
	StatValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	// StatCardStyle frames one dashboard statistic.
	StatCardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(dimColor)).
			Padding(0, 1).
			Width(18)

	// ActiveTabStyle renders the active tab.
	ActiveTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(primaryColor)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 2)

	// InactiveTabStyle renders inactive tabs.
	InactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#374151")).
				Foreground(lipgloss.Color("#9CA3AF")).
				Padding(0, 2)

	// FocusedFieldStyle marks the label of the focused form field.
	FocusedFieldStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(primaryColor)).
				Bold(true)
)

// Post status badges (pre-rendered strings).
var (
	BadgeDraft     = DimStyle.Render("draft")
	BadgeScheduled = WarningStyle.Render("scheduled")
	BadgePosted    = SuccessStyle.Render("posted")
	BadgeFailed    = ErrorStyle.Render("failed")

	BadgeActive   = SuccessStyle.Render("Active")
	BadgeInactive = DimStyle.Render("Inactive")
	BadgeAI       = SectionStyle.Render("AI")
)

// StatusBadge renders a post status; unknown statuses pass through dimmed.
func StatusBadge(status string) string {
	switch status {
	case "draft":
		return BadgeDraft
	case "scheduled":
		return BadgeScheduled
	case "posted":
		return BadgePosted
	case "failed":
		return BadgeFailed
	default:
		return DimStyle.Render(status)
	}
}
