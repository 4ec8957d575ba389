package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakif/snippetbox/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, os.Args[1:], cli.Options{}); err != nil {
		cli.NewUI(os.Stderr, false).Error(cli.Message(err))
		stop()
		os.Exit(1)
	}
}
