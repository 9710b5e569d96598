package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/tui"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// formatRate renders a 0..1 engagement rate as "x.xx%".
func formatRate(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// formatScore renders a 0..1 viral score as a whole percentage.
func formatScore(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// bestHour returns the first slot's hour as "HH:00", or "N/A".
func bestHour(slots []api.TimeSlot) string {
	if len(slots) == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%02d:00", slots[0].Hour)
}

// formatWhen renders t in loc with a relative suffix.
func formatWhen(t time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s (%s)", t.In(loc).Format("2006-01-02 15:04"), humanize.Time(t))
}

// sparkline maps values onto block characters scaled to their maximum.
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if peak > 0 && v > 0 {
			idx = int(v / peak * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// wrap word-wraps s to width, leaving it alone when width is too small.
func wrap(s string, width int) string {
	if width < 20 {
		return s
	}
	return wordwrap.String(s, width)
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// frame boxes view content to the terminal width.
func frame(content string, termWidth int) string {
	width := termWidth - 4
	if width < 40 {
		width = 76
	}
	return tui.BoxStyle.Width(width).Render(content)
}
