// Package console implements the Operator Console / Driver: a flag-less
// stdin line grammar that sends OperatorCommands to the Command Service and
// prints its reply. It is a plain bufio.Scanner line loop, not a full-screen
// TUI — a scripted line grammar needs a line in, line out contract, not an
// alt-buffer program.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sls-core/sim/internal/command"
)

var (
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	badStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
)

// ErrUnknownCommand is what Run reports for a line that parseLine rejects
// (one that matches no grammar production); the console keeps reading.
var ErrUnknownCommand = errors.New("console: unknown command")

// Console reads lines from in, sends the corresponding command to svc, and
// writes the formatted reply (or error) to out.
type Console struct {
	svc *command.Service
	in  *bufio.Scanner
	out io.Writer
}

func New(svc *command.Service, in io.Reader, out io.Writer) *Console {
	return &Console{svc: svc, in: bufio.NewScanner(in), out: out}
}

// Run reads lines until EOF, ctx cancellation, or a "quit"/"exit" line.
// It returns nil on a normal quit/exit, and a non-nil error on transport
// failure — callers should exit 0 on a nil return, non-zero otherwise.
func (c *Console) Run(ctx context.Context) error {
	for c.in.Scan() {
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		cmd, ok := parseLine(line)
		if !ok {
			fmt.Fprintln(c.out, badStyle.Render(fmt.Sprintf("error: %s", ErrUnknownCommand)))
			continue
		}

		reply, err := c.svc.Send(ctx, cmd)
		if err != nil {
			fmt.Fprintln(c.out, badStyle.Render(fmt.Sprintf("error: %s", err)))
			return err
		}
		c.printReply(reply)
	}
	if err := c.in.Err(); err != nil {
		return err
	}
	return nil
}

func (c *Console) printReply(r command.Reply) {
	ok, goBit := 0, 0
	if r.OK {
		ok = 1
	}
	if r.MissionGo {
		goBit = 1
	}
	line := fmt.Sprintf("ok=%d go=%d throttle=%d", ok, goBit, r.ThrottlePct)
	if r.OK {
		fmt.Fprintln(c.out, okStyle.Render(line))
	} else {
		fmt.Fprintln(c.out, badStyle.Render(line))
	}
}

// parseLine implements the grammar "status | go | nogo | abort |
// throttle <N> | quit | exit" (case-sensitive, trimmed). throttle <N> with
// N out of range is still accepted here; the Command Service clamps it.
func parseLine(line string) (command.Command, bool) {
	switch line {
	case "status":
		return command.Command{Type: command.Status}, true
	case "go":
		return command.Command{Type: command.Go}, true
	case "nogo":
		return command.Command{Type: command.NoGo}, true
	case "abort":
		return command.Command{Type: command.Abort}, true
	}

	if rest, found := strings.CutPrefix(line, "throttle "); found {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return command.Command{}, false
		}
		return command.Command{Type: command.Throttle, Value: int32(n)}, true
	}

	return command.Command{}, false
}
