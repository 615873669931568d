package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/litemigrate/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil && !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "litemigrate: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
