package main

import (
	"os"

	"github.com/marmos91/maxpathlen/pkg/config"
	"github.com/marmos91/maxpathlen/pkg/report"
	"github.com/spf13/cobra"
)

func policyMain(command *cobra.Command, _ []string) error {
	cfg, closeLog, err := loadConfig(command)
	if err != nil {
		return err
	}
	defer closeLog()

	state := config.CreateDetector().Detect(cfg.RegistryPath)
	report.NewText(os.Stdout, os.Stderr).ReportPolicy(state)
	return nil
}

var policyCommand = &cobra.Command{
	Use:   "policy",
	Short: "Show whether extended file paths are enabled on this host",
	Args:  cobra.NoArgs,
	RunE:  policyMain,
}

var policyConfiguration runConfiguration

func init() {
	flags := policyCommand.Flags()
	flags.SortFlags = false
	flags.StringVarP(&policyConfiguration.logLevel, "log-level", "l", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	flags.StringVar(&policyConfiguration.registryPath, "registry-path", "", "Location of the extended path policy value")
}
