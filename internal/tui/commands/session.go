package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/session"
	"github.com/xpost-dev/xpost/internal/tui"
)

// LoginCmd authenticates through the session store.
func LoginCmd(s *session.Store, username, password string) tea.Cmd {
	return func() tea.Msg {
		return tui.LoginResultMsg{OK: s.Login(context.Background(), username, password)}
	}
}

// RegisterCmd creates an account. It never logs in.
func RegisterCmd(s *session.Store, username, twitterUsername string) tea.Cmd {
	return func() tea.Msg {
		return tui.RegisterResultMsg{OK: s.Register(context.Background(), username, twitterUsername)}
	}
}
