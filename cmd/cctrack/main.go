package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cctrack/cctrack/internal/commands"
)

func main() {
	ctx := context.Background()

	rootCmd := &cobra.Command{
		Use:   "cctrack",
		Short: "Local usage tracking for Claude Code",
		Long:  `Records Claude Code session activity into a local SQLite database via hooks, and reports on sessions, tokens, tools, and plans.`,
	}

	rootCmd.AddCommand(
		commands.NewHookCommand(),
		commands.NewStatsCommand(),
		commands.NewInstallCommand(),
		commands.NewUninstallCommand(),
		commands.NewMigrateCommand(),
		commands.NewBackfillCommand(),
		commands.NewQueryCommand(),
		commands.NewMonitorCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
