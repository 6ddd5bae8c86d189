package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bhs-ops/inserv/internal/deploy"
)

var purge bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <service-name>",
	Short: "Remove a BHS service and its systemd unit",
	Args:  cobra.ExactArgs(1),
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVar(&purge, "purge", false, "also remove the shared log directory")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	installer := deploy.NewInstaller(cfg, deploy.NewSystemdManager(), deploy.NewFileStager(), deploy.NewRootChecker(), newLogger())

	if err := installer.Uninstall(cmd.Context(), name, purge); err != nil {
		return fmt.Errorf("inserv uninstall: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s uninstalled\n", name)
	return nil
}
