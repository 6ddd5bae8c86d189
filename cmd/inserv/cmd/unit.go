package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bhs-ops/inserv/internal/deploy"
)

var unitCmd = &cobra.Command{
	Use:   "unit <service-name>",
	Short: "Print the generated systemd unit for a service",
	Long: "Print the unit file inserv would generate for the named service when the\n" +
		"source directory does not provide one. Useful for review before installing.",
	Args: cobra.ExactArgs(1),
	RunE: runUnit,
}

func init() {
	rootCmd.AddCommand(unitCmd)
}

func runUnit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	installer := deploy.NewInstaller(cfg, deploy.NewSystemdManager(), deploy.NewFileStager(), deploy.NewRootChecker(), newLogger())

	content, err := installer.RenderUnit(args[0])
	if err != nil {
		return fmt.Errorf("inserv unit: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}
