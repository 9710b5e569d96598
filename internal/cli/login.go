// login.go implements the "xpost login", "xpost register" and "xpost logout"
// commands.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xpost-dev/xpost/internal/forms"
)

var errLoginFailed = errors.New("login failed; run 'xpost status --log 10' for details")

func newLoginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the credential",
		Long: `Exchange a username and password for a credential. The credential is
stored in ~/.xpost/xpost.db and reused by the dashboard until it expires
or the backend rejects it.

Examples:
  xpost login             # Prompt for username and password
  xpost login -u alice    # Prompt for password only
`,
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())

			if e.session.IsAuthenticated() {
				fmt.Fprintf(out, "Already logged in as %s.\n", e.session.User().DisplayName())
				fmt.Fprint(out, "Replace existing credential? [y/N]: ")
				confirm, _ := readLine(in)
				if strings.ToLower(confirm) != "y" {
					fmt.Fprintln(out, "Keeping existing credential.")
					return nil
				}
			}

			if username == "" {
				fmt.Fprint(out, "Username: ")
				username, _ = readLine(in)
			}

			// Prompt for password (hidden input)
			fmt.Fprint(out, "Password: ")
			password, err := readSecret(cmd, in)
			fmt.Fprintln(out) // newline after hidden input
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}

			if err := forms.ValidateLogin(username, password); err != nil {
				return err
			}

			if !e.session.Login(cmd.Context(), username, password) {
				return errLoginFailed
			}

			fmt.Fprintf(out, "Logged in as %s.\n", e.session.User().DisplayName())
			return nil
		}),
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")

	return cmd
}

func newRegisterCmd() *cobra.Command {
	var (
		username string
		handle   string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			out := cmd.OutOrStdout()

			if username == "" {
				fmt.Fprint(out, "Username: ")
				username, _ = readLine(bufio.NewReader(cmd.InOrStdin()))
			}

			name, twitterUsername, err := forms.ParseRegister(username, handle)
			if err != nil {
				return err
			}

			if !e.session.Register(cmd.Context(), name, twitterUsername) {
				return errors.New("registration failed; run 'xpost status --log 10' for details")
			}

			fmt.Fprintln(out, "Registration successful! Please login.")
			return nil
		}),
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVar(&handle, "handle", "", "Twitter handle to link (optional)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential",
		RunE: withEnv(func(cmd *cobra.Command, e *env) error {
			if !e.session.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			e.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		}),
	}
}

// readSecret reads a password without echo when stdin is a terminal, and a
// plain line otherwise (pipes, tests).
func readSecret(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
