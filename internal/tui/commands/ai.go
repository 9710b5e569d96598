package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/tui"
)

// GenerateCmd requests AI variants. The backend also stores them as drafts.
func GenerateCmd(c *api.Client, in api.GenerateRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := c.AI.Generate(context.Background(), in)
		return tui.VariantsGeneratedMsg{Response: resp, Err: err}
	}
}
