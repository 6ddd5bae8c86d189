package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bhs-ops/inserv/internal/deploy"
)

var statusCmd = &cobra.Command{
	Use:   "status <service-name>",
	Short: "Show whether a BHS service is installed and running",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	installer := deploy.NewInstaller(cfg, deploy.NewSystemdManager(), deploy.NewFileStager(), deploy.NewRootChecker(), newLogger())

	installed, active, err := installer.Status(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("inserv status: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Installed: %s\n", yesNo(installed))
	fmt.Fprintf(w, "Active:    %s\n", yesNo(active))

	// Non-zero exit when the service is not up, so scripts can gate on it.
	if !installed {
		cmd.SilenceUsage = true
		return fmt.Errorf("inserv status: %s is not installed", name)
	}
	if !active {
		cmd.SilenceUsage = true
		return fmt.Errorf("inserv status: %s is not active", name)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
