package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/GriffinCanCode/Reze/backend/internal/client"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/spf13/cobra"
)

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
}

func (a *app) chatCmd() *cobra.Command {
	var research bool
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the assistant; starts an interactive prompt when no message is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.signedIn()
			if err != nil {
				return err
			}
			assistant := client.NewAssistant(a.api(), s, newTerminalView(a.out, a.err))

			if len(args) > 0 {
				ctx, cancel := signalContext()
				defer cancel()
				if err := assistant.Submit(ctx, strings.Join(args, " "), research); err != nil {
					return cause(err)
				}
				return nil
			}
			return a.interactive(assistant, research)
		},
	}
	cmd.Flags().BoolVarP(&research, "research", "r", false, "Search the web and YouTube before answering")
	return cmd
}

// interactive reads one message per line until EOF or an exit command.
// Ctrl+C cancels the answer in progress, not the session.
func (a *app) interactive(assistant *client.Assistant, research bool) error {
	fmt.Fprintln(a.err, "Interactive mode (type 'exit' or press Ctrl+D to quit)")
	for {
		line, err := a.prompt("\nYou: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.err)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if exitCommands[strings.ToLower(line)] {
			return nil
		}

		ctx, cancel := signalContext()
		err = assistant.Submit(ctx, line, research)
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(a.err, "(%v)\n", cause(err))
		}
	}
}

// terminalView prints the assistant's answer as it grows. Status lines go to
// errOut so that the answer alone can be piped.
type terminalView struct {
	out    io.Writer
	errOut io.Writer
	// printed is how much of each assistant block has been written
	printed map[int]int
	// open is set while the last line written to out lacks its newline
	open bool
}

func newTerminalView(out, errOut io.Writer) *terminalView {
	return &terminalView{out: out, errOut: errOut, printed: make(map[int]int)}
}

func (v *terminalView) StatusChanged(s client.Status) {
	switch s {
	case client.StatusSearching:
		fmt.Fprintln(v.errOut, "Searching...")
	case client.StatusGenerating:
		fmt.Fprintln(v.errOut, "Generating answer...")
	case client.StatusIdle:
		v.endLine()
	}
}

func (v *terminalView) BlockAdded(index int, b client.Block) {
	v.endLine()
	if b.Role != types.RoleAssistant {
		return
	}
	v.printed[index] = 0
	v.BlockUpdated(index, b)
	if strings.HasPrefix(b.Text, client.FallbackPrefix) {
		v.endLine()
	}
}

func (v *terminalView) BlockUpdated(index int, b client.Block) {
	done := v.printed[index]
	if len(b.Text) <= done {
		return
	}
	fmt.Fprint(v.out, b.Text[done:])
	v.printed[index] = len(b.Text)
	v.open = !strings.HasSuffix(b.Text, "\n")
}

func (v *terminalView) endLine() {
	if v.open {
		fmt.Fprintln(v.out)
		v.open = false
	}
}

// cause drops the short label the assistant shows so the CLI can report
// what actually went wrong.
func cause(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
