package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cctrack/cctrack/internal/migrate"
)

func NewMigrateCommand() *cobra.Command {
	var (
		dbPath   string
		fromPath string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Import legacy JSONL tool-usage logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if fromPath == "" {
				fromPath = legacyLogPath()
			}

			out, err := migrate.FromFile(fromPath, st)
			if err != nil {
				return err
			}

			removed, err := st.DedupTokenUsage()
			if err != nil {
				return fmt.Errorf("dedup token usage: %w", err)
			}
			if removed > 0 {
				fmt.Printf("Removed %d duplicate token usage rows.\n", removed)
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the tracking database")
	cmd.Flags().StringVar(&fromPath, "from", "", "Path to the legacy JSONL log")
	return cmd
}
