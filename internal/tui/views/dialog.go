package views

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xpost-dev/xpost/internal/tui"
)

// DialogResult is the outcome of a key press on an open dialog.
type DialogResult int

const (
	DialogPending DialogResult = iota
	DialogDismissed
	DialogAccepted
	DialogRejected
)

// Dialog is a modal acknowledgment or yes/no confirmation.
// While open it consumes every key press.
type Dialog struct {
	Message string
	confirm bool
	open    bool
}

// Alert opens an acknowledgment dialog.
func Alert(message string) Dialog {
	return Dialog{Message: message, open: true}
}

// Confirm opens a yes/no dialog.
func Confirm(message string) Dialog {
	return Dialog{Message: message, confirm: true, open: true}
}

// Open reports whether the dialog is showing.
func (d Dialog) Open() bool {
	return d.open
}

// IsConfirm reports whether the dialog asks a question.
func (d Dialog) IsConfirm() bool {
	return d.confirm
}

// Update handles a key press and closes the dialog once answered.
func (d Dialog) Update(msg tea.KeyMsg) (Dialog, DialogResult) {
	if !d.open {
		return d, DialogPending
	}
	if d.confirm {
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Confirm):
			return Dialog{}, DialogAccepted
		case key.Matches(msg, tui.DefaultKeyMap.Deny):
			return Dialog{}, DialogRejected
		}
		return d, DialogPending
	}
	switch msg.String() {
	case tui.KeyEnter, tui.KeyEsc, tui.KeySpace:
		return Dialog{}, DialogDismissed
	}
	return d, DialogPending
}

// View renders the dialog, or "" when closed.
func (d Dialog) View() string {
	if !d.open {
		return ""
	}
	hint := tui.HelpLine(tui.Relabel(tui.DefaultKeyMap.Enter, "OK"))
	if d.confirm {
		hint = tui.HelpLine(tui.DefaultKeyMap.Confirm, tui.DefaultKeyMap.Deny)
	}
	return tui.DialogStyle.Render(d.Message + "\n\n" + hint)
}
