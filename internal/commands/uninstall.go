package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cctrack/cctrack/internal/settings"
	"github.com/cctrack/cctrack/internal/store"
)

func NewUninstallCommand() *cobra.Command {
	var keepData bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the tracking hook and optionally the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			binary, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate binary: %w", err)
			}
			settingsPath, err := settings.Path()
			if err != nil {
				return err
			}

			removed, err := settings.Uninstall(settingsPath, binary+" hook")
			if err != nil {
				return err
			}
			if removed > 0 {
				fmt.Printf("Hook removed from %s for %d events.\n", settingsPath, removed)
			} else {
				fmt.Println("No matching hook found in settings.")
			}

			dbPath, err := store.DefaultPath()
			if err == nil && !keepData {
				if _, statErr := os.Stat(dbPath); statErr == nil {
					prompt := fmt.Sprintf("Delete tracking database? (%s)", dbPath)
					if settings.Confirm(prompt, os.Stdin, os.Stdout) {
						if err := os.Remove(dbPath); err != nil {
							return fmt.Errorf("delete database: %w", err)
						}
						fmt.Println("Database deleted.")
					} else {
						fmt.Printf("Database kept at %s\n", dbPath)
					}
				}
			}

			fmt.Println("Uninstalled successfully.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepData, "keep-data", false, "Keep the tracking database without prompting")
	return cmd
}
