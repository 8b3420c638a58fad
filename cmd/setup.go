package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/acumon/internal/config"
	"github.com/theirongolddev/acumon/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runSetupForm()
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// runSetupForm shows the setup form and saves the answers. Aborting the form
// leaves the config file untouched.
func runSetupForm() error {
	// Read the file alone so flag overrides are not persisted.
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return err
	}

	v := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(&v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if err := v.Apply(&cfg); err != nil {
		return err
	}
	if err := config.SaveTo(configPath(), cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", configPath())
	fmt.Println("  Run `acumon setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return "not configured"
	}
	if len(s) > 8 {
		return s[:2] + "..." + s[len(s)-2:]
	}
	return "****"
}
