package commands

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cctrack/cctrack/internal/pricing"
	"github.com/cctrack/cctrack/internal/stats"
)

func NewStatsCommand() *cobra.Command {
	var (
		dbPath  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics",
		Long:  `Show aggregate usage statistics from the tracking database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, path, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				noColor = true
			}

			var size int64 = -1
			if info, err := os.Stat(path); err == nil {
				size = info.Size()
			}

			reporter := stats.NewReporter(st.DB(), noColor, pricing.NewService())
			report, err := reporter.Render(cmd.Context(), path, size)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}
			fmt.Print(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the tracking database")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}
