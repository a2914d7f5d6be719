// Command emotive classifies a CSV of headlines by emotion and writes the
// pooled and per-category report tables and charts to a directory.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "emotive",
		Short:        "Emotion analysis of news headlines",
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())
	return root
}
