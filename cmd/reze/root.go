package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/client"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// app carries the global flags and streams shared by every subcommand
type app struct {
	server      string
	sessionFile string
	timeout     time.Duration

	in  *bufio.Reader
	out io.Writer
	err io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: bufio.NewReader(in), out: out, err: errOut}

	root := &cobra.Command{
		Use:           "reze",
		Short:         "Reze research assistant client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.server, "server", envOr("REZE_SERVER", client.DefaultBaseURL), "Relay API base URL")
	flags.StringVar(&a.sessionFile, "session-file", envOr("REZE_SESSION_FILE", client.DefaultSessionPath()), "Where the signed-in session is kept")
	flags.DurationVar(&a.timeout, "timeout", 60*time.Second, "Timeout for non-streaming calls")

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.settingsCmd(),
		a.chatCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (a *app) api() *client.APIClient {
	return client.NewAPIClient(client.APIOptions{BaseURL: a.server, Timeout: a.timeout})
}

// session restores the saved session from the session file
func (a *app) session() (*client.Session, error) {
	s := client.NewSession(a.api(), client.FileStore{Path: a.sessionFile})
	if err := s.Restore(); err != nil {
		return nil, err
	}
	return s, nil
}

// signedIn is session plus a check that the user is logged in
func (a *app) signedIn() (*client.Session, error) {
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	if s.View() != client.ViewBrowser {
		return nil, fmt.Errorf("%w: run `reze login` first", client.ErrSignedOut)
	}
	return s, nil
}

// prompt reads one line, printing label first
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.err, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
