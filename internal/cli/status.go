// status.go implements the "xpost status" command showing the session and
// an engagement summary.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xpost-dev/xpost/internal/api"
	xlog "github.com/xpost-dev/xpost/internal/log"
)

var (
	labelColor = color.New(color.Bold)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed)
	dimColor   = color.New(color.Faint)
)

func newStatusCmd() *cobra.Command {
	var logLines int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session state and engagement summary",
		Long: `Display the backend in use, whether a credential is stored and when it
expires, and the analytics summary for the configured window.`,
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, labelColor.Sprint("xpost status"))
			fmt.Fprintf(out, "Backend: %s\n", e.client.BaseURL())

			if !e.session.IsAuthenticated() {
				fmt.Fprintf(out, "Session: %s\n", warnColor.Sprint("not logged in"))
				fmt.Fprintln(out, dimColor.Sprint("Run 'xpost login' to sign in."))
			} else {
				printSession(out, e)
				printSummary(cmd, out, e)
			}

			if logLines > 0 {
				return printLog(out, e.dir, logLines)
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&logLines, "log", 0, "Also print the last N diagnostics log entries")

	return cmd
}

func printSession(out io.Writer, e *env) {
	line := okColor.Sprint("logged in")
	if u := e.session.User(); u != nil {
		line += " as " + u.DisplayName()
	}
	if exp, ok := e.session.ExpiresAt(); ok {
		line += dimColor.Sprintf(" (expires %s)", humanize.Time(exp))
	}
	fmt.Fprintf(out, "Session: %s\n", line)
}

func printSummary(cmd *cobra.Command, out io.Writer, e *env) {
	days := e.cfg.Dashboard.SummaryDays
	summary, err := e.client.Analytics.Summary(cmd.Context(), days)
	if err != nil {
		if api.IsUnauthorized(err) {
			fmt.Fprintln(out, errColor.Sprint("Session expired. Please log in again."))
			return
		}
		fmt.Fprintf(out, "Summary: %s\n", errColor.Sprintf("unavailable (%v)", err))
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, labelColor.Sprintf("Last %d days", days))
	fmt.Fprintf(out, "  Total Tweets:     %s\n", humanize.Comma(int64(summary.TotalTweets)))
	fmt.Fprintf(out, "  Total Engagement: %s\n", humanize.Comma(int64(summary.TotalEngagement)))
	fmt.Fprintf(out, "  Avg Engagement:   %.2f%%\n", summary.AvgEngagementRate*100)
	if len(summary.BestTimeSlots) > 0 {
		fmt.Fprintf(out, "  Best Hour:        %02d:00\n", summary.BestTimeSlots[0].Hour)
	}
}

func printLog(out io.Writer, dir string, n int) error {
	entries, err := xlog.Tail(xlog.Path(dir), n)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, labelColor.Sprint("Recent log"))
	if len(entries) == 0 {
		fmt.Fprintln(out, dimColor.Sprint("  (empty)"))
		return nil
	}
	for _, en := range entries {
		level := en.Level
		switch level {
		case "error":
			level = errColor.Sprint(level)
		case "warn":
			level = warnColor.Sprint(level)
		}
		fmt.Fprintf(out, "  %s  %-5s  %-18s %s", en.Time.Local().Format(time.DateTime), level, en.Event, en.Message)
		if en.Error != "" {
			fmt.Fprintf(out, ": %s", en.Error)
		}
		fmt.Fprintln(out)
	}
	return nil
}
