package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bhs-ops/inserv/internal/deploy"
)

var (
	installStart  bool
	installDBTest bool
)

var installCmd = &cobra.Command{
	Use:   "install <service-name>",
	Short: "Install a BHS service as a systemd unit",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installStart, "start", false, "start the service immediately after installation")
	installCmd.Flags().BoolVar(&installDBTest, "db-test", false, "point the service at the test database")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.UseTestDatabase = installDBTest

	installer := deploy.NewInstaller(cfg, deploy.NewSystemdManager(), deploy.NewFileStager(), deploy.NewRootChecker(), newLogger())

	results, err := installer.Install(cmd.Context(), name)
	printResults(cmd.OutOrStdout(), results)
	if err != nil {
		return fmt.Errorf("inserv install: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s installed successfully\n", name)

	if installStart {
		if err := installer.Start(cmd.Context(), name); err != nil {
			return fmt.Errorf("inserv install: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s started\n", name)
	}
	return nil
}

func loadConfig() (deploy.InstallConfig, error) {
	cfg, err := deploy.LoadConfig(cfgFile)
	if err != nil {
		return cfg, fmt.Errorf("inserv: %w", err)
	}
	if sourceDir != "" {
		cfg.SourceDir = sourceDir
	}
	return cfg, nil
}

func printResults(w io.Writer, results []deploy.Result) {
	ok := color.New(color.FgGreen).SprintFunc()
	failed := color.New(color.FgRed).SprintFunc()

	for _, r := range results {
		if r.OK {
			fmt.Fprintf(w, "  %-20s %s\n", r.Step, ok("ok"))
			continue
		}
		fmt.Fprintf(w, "  %-20s %s  %s\n", r.Step, failed("failed"), r.Detail)
	}
}
