// Command sls-console is the standalone operator console binary: it reads
// operator command lines from stdin and prints replies. The command
// transport is an in-process channel with no native socket, so this binary
// hosts its own minimal Command Service bound to a fresh VehicleState
// rather than attaching to a separately-running sls-sim process; sls-sim
// also embeds a console subsystem for in-process operation against the
// live simulator.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sls-core/sim/internal/command"
	"github.com/sls-core/sim/internal/console"
	"github.com/sls-core/sim/internal/vehicle"
)

func main() {
	os.Exit(run())
}

func run() int {
	state := vehicle.New(100_000, 100)
	svc := command.NewService(state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	c := console.New(svc, os.Stdin, os.Stdout)
	if err := c.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "sls-console:", err)
		return 1
	}
	return 0
}
