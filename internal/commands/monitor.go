package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cctrack/cctrack/internal/monitor"
)

func NewMonitorCommand() *cobra.Command {
	var (
		dbPath     string
		interval   int
		noColor    bool
		continuous bool
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Live view of tracking activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveDBPath(dbPath)
			if err != nil {
				return err
			}

			m := monitor.New(monitor.Options{
				DBPath:     path,
				Interval:   time.Duration(interval) * time.Second,
				NoColor:    noColor,
				Continuous: continuous,
			})
			return m.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the tracking database")
	cmd.Flags().IntVar(&interval, "interval", 5, "Refresh interval in seconds")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&continuous, "continuous", false, "Keep refreshing until quit")
	return cmd
}
