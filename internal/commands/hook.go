package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cctrack/cctrack/internal/hook"
)

// NewHookCommand builds the entry point Claude Code invokes for every
// registered hook event. It must never fail the hosting session: all
// errors go to stderr and the process exits zero.
func NewHookCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Process a hook event from stdin",
		Long:  `Reads a Claude Code hook event from stdin and records it in the tracking database. Always exits successfully so a tracking failure never blocks the session.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runHook(dbPath); err != nil {
				fmt.Fprintf(os.Stderr, "cctrack hook: %v\n", err)
			}
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the tracking database")
	return cmd
}

func runHook(dbPath string) error {
	st, _, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	return hook.NewDispatcher(st).Dispatch(os.Stdin)
}
