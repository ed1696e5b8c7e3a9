package main

import (
	"context"
	"os"
	"os/signal"

	"mergefold.dev/mergefold/internal/cli"
	mergefolderrors "mergefold.dev/mergefold/internal/errors"
	"mergefold.dev/mergefold/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd := cli.NewRootCmd(version, commit, date)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		tui.NewSplog().Error("%s", err)
		os.Exit(mergefolderrors.ExitCode(err))
	}
}
