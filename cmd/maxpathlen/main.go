package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/maxpathlen/internal/logger"
	"github.com/marmos91/maxpathlen/pkg/config"
	"github.com/marmos91/maxpathlen/pkg/metrics"
	"github.com/marmos91/maxpathlen/pkg/random"
	"github.com/marmos91/maxpathlen/pkg/report"
	"github.com/marmos91/maxpathlen/pkg/runner"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// rootMain probes every volume and reports the limits found.
func rootMain(command *cobra.Command, _ []string) error {
	cfg, closeLog, err := loadConfig(command)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := report.New(cfg.Report.Format, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	probeMetrics := config.InitializeMetrics(cfg)
	names := random.New(cfg.EffectiveSeed())

	r := runner.New(runner.Config{
		Detector:      config.CreateDetector(),
		Enumerator:    config.CreateEnumerator(cfg),
		Prober:        config.CreateProber(cfg, names, probeMetrics),
		Reporter:      rep,
		Metrics:       probeMetrics,
		PolicyLocator: cfg.RegistryPath,
		Parallelism:   cfg.Parallelism,
	})

	_, runErr := r.Run(ctx)

	if err := rep.Close(); err != nil {
		logger.Error("Failed to write report: %v", err)
	}

	if cfg.Report.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.Report.MetricsFile); err != nil {
			logger.Error("Failed to write metrics file: %v", err)
		} else {
			logger.Info("Metrics written to %s", cfg.Report.MetricsFile)
		}
	}

	if runErr != nil {
		// Already printed by the reporter.
		return errSilent
	}
	return nil
}

// errSilent makes the command fail without printing anything more.
var errSilent = errors.New("")

// loadConfig reads the configuration with the changed flags layered on top
// and configures logging from it.
func loadConfig(command *cobra.Command) (*config.Config, func(), error) {
	cfg, err := config.LoadWithOverrides(rootConfiguration.configPath, collectOverrides(command.Flags()))
	if err != nil {
		return nil, nil, err
	}

	closer, err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return nil, nil, err
	}

	for _, readErr := range cfg.ReadErrors {
		logger.Warn("%v", readErr)
	}

	return cfg, func() { _ = closer.Close() }, nil
}

// rootCommand is the root command.
var rootCommand = &cobra.Command{
	Use:   "maxpathlen",
	Short: "Measure the longest file path each volume accepts",
	Long: `maxpathlen creates a deep chain of randomly named directories on every
writable volume and then files of increasing path length inside it, until the
filesystem refuses one. The longest accepted path is reported per volume and
everything created is removed afterwards.`,
	Version:       version,
	Args:          cobra.NoArgs,
	RunE:          rootMain,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// rootConfiguration stores configuration for the root command.
var rootConfiguration runConfiguration

func init() {
	// Keep subcommands in registration order.
	cobra.EnableCommandSorting = false

	rootCommand.SetVersionTemplate("maxpathlen version {{ .Version }}\n")
	rootCommand.CompletionOptions.HiddenDefaultCmd = true

	flags := rootCommand.Flags()
	flags.SortFlags = false
	registerRunFlags(flags, &rootConfiguration)

	rootCommand.PersistentFlags().StringVarP(&rootConfiguration.configPath, "config", "c", "",
		"Path to config file (default: "+config.GetDefaultConfigPath()+")")

	rootCommand.AddCommand(
		volumesCommand,
		policyCommand,
		initCommand,
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		if err != errSilent {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
