package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cctrack/cctrack/internal/query"
)

func NewQueryCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "query [sql]",
		Short: "Run an ad-hoc SQL query against the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			out, err := query.Execute(st.DB(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the tracking database")
	return cmd
}
