// Command hsmctl renders, runs and explores state machine definitions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/atlekbai/hsm/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
