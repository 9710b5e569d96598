// Package views provides TUI view components for the xpost dashboard.
package views

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/config"
	xlog "github.com/xpost-dev/xpost/internal/log"
	"github.com/xpost-dev/xpost/internal/session"
)

// Deps holds the services shared by every view.
type Deps struct {
	Client   *api.Client
	Session  *session.Store
	Config   *config.Config
	Logger   zerolog.Logger
	Location *time.Location
}

func (d *Deps) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

// logFailure records a failed view action. Request details are already
// logged by the client; this line ties the failure to the view.
func (d *Deps) logFailure(view, action string, err error) {
	d.Logger.Error().
		Str("event", xlog.EventActionFailed).
		Str("view", view).
		Err(err).
		Msg(action)
}
