// Package cli defines Cobra command definitions for the xpost CLI.
// This file contains the root command, version flag, and the startup
// sequence shared by every subcommand.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xpost-dev/xpost/internal/api"
	"github.com/xpost-dev/xpost/internal/config"
	xlog "github.com/xpost-dev/xpost/internal/log"
	"github.com/xpost-dev/xpost/internal/session"
	"github.com/xpost-dev/xpost/internal/storage"
	"github.com/xpost-dev/xpost/internal/tui"
	"github.com/xpost-dev/xpost/internal/tui/app"
	"github.com/xpost-dev/xpost/internal/tui/views"
)

var version = "dev" // set via ldflags at build time

// skipBootstrap marks commands that must not touch the state directory.
const skipBootstrap = "skip-bootstrap"

// env is everything a command needs after startup.
type env struct {
	dir     string
	cfg     *config.Config
	logger  zerolog.Logger
	store   *storage.SQLiteStore
	client  *api.Client
	session *session.Store
}

func (e *env) close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// bootstrap resolves config, opens the log and credential storage, and
// restores any saved session.
func bootstrap(ctx context.Context) (*env, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(ctx, dir)
	if err != nil {
		return nil, err
	}

	logger, err := xlog.New(dir, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	store, err := storage.OpenSQLite(dir)
	if err != nil {
		return nil, fmt.Errorf("opening credential storage: %w", err)
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
		api.WithLogger(logger),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sess := session.New(client.Auth, store, logger)
	client.SetTokenSource(sess)
	client.SetUnauthorizedHandler(sess.HandleUnauthorized)

	if err := sess.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	return &env{
		dir:     dir,
		cfg:     cfg,
		logger:  logger,
		store:   store,
		client:  client,
		session: sess,
	}, nil
}

type envKey struct{}

// envFrom returns the env prepared by the root's PersistentPreRunE.
func envFrom(cmd *cobra.Command) *env {
	e, _ := cmd.Context().Value(envKey{}).(*env)
	return e
}

// withEnv hands fn the env prepared by the root's PersistentPreRunE and
// closes it once fn returns, whether or not fn failed.
func withEnv(fn func(cmd *cobra.Command, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)
		if e == nil {
			return errors.New("xpost was not initialised")
		}
		defer e.close()
		return fn(cmd, e)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xpost",
		Short: "Terminal dashboard for automated social-media posting",
		Long: `xpost talks to an xpost backend: compose and schedule posts,
generate variants with AI, track engagement and manage campaigns.

Run without arguments in a terminal to open the dashboard.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipBootstrap] != "" {
				return nil
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(ctx, envKey{}, e))
			return nil
		},
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			// When no subcommand is provided, launch TUI if TTY, show help otherwise
			if !tui.IsTTY() {
				return cmd.Help()
			}
			return tui.Run(app.New(&views.Deps{
				Client:   e.client,
				Session:  e.session,
				Config:   e.cfg,
				Logger:   e.logger,
				Location: time.Local,
			}))
		}),
	}

	root.AddCommand(newInitCmd())
	root.AddCommand(newLoginCmd())
	root.AddCommand(newRegisterCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newCleanCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
