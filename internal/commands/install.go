package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cctrack/cctrack/internal/settings"
)

func NewInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Register the tracking hook in Claude Code settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			binary, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate binary: %w", err)
			}
			settingsPath, err := settings.Path()
			if err != nil {
				return err
			}

			added, err := settings.Install(settingsPath, binary+" hook")
			if err != nil {
				return err
			}
			if added == 0 {
				fmt.Println("Hook is already installed.")
				return nil
			}

			fmt.Printf("Hook added to %s for %d events.\n", settingsPath, added)
			fmt.Println("Installed successfully.")
			fmt.Println()
			fmt.Println("  Tracking starts on your next Claude Code session.")
			fmt.Println("  View stats anytime:  cctrack stats")
			return nil
		},
	}
	return cmd
}
