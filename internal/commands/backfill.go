package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cctrack/cctrack/internal/backfill"
)

func NewBackfillCommand() *cobra.Command {
	var (
		dbPath      string
		projectsDir string
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Import plans from historical transcripts",
		Long:  `Scan transcript files under the Claude Code projects directory and import plan proposals recorded before tracking was installed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if projectsDir == "" {
				projectsDir = defaultProjectsDir()
			}

			out, err := backfill.FromDir(projectsDir, st)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the tracking database")
	cmd.Flags().StringVar(&projectsDir, "projects", "", "Path to the Claude Code projects directory")
	return cmd
}
